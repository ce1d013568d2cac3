package zcml

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
)

// Namespaces understood by the common directives.
const (
	ZopeNamespace = "http://namespaces.zope.org/zope"
	MetaNamespace = "http://namespaces.zope.org/meta"
	ZCMLNamespace = "http://namespaces.zope.org/zcml"

	// AnyNamespace registers a directive under every namespace. An exact
	// namespace match takes precedence.
	AnyNamespace = "*"
)

// HandlerFunc handles one directive occurrence.
type HandlerFunc func(c *Context, d *Directive) error

type directiveKey struct {
	namespace string
	name      string
}

type directiveDef struct {
	handler  HandlerFunc
	grouping bool
}

// Context is the state of one configuration load.
type Context struct {
	logger *slog.Logger

	features   map[string]struct{}
	directives map[directiveKey]directiveDef
	actions    []Action
	executed   int

	processed   map[string]bool
	includePath []string
	basePath    string
	file        string
}

// ContextOption configures a Context.
type ContextOption func(*Context)

// WithLogger sets the logger used while processing. The default discards.
func WithLogger(logger *slog.Logger) ContextOption {
	return func(c *Context) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithBasePath sets the directory that relative paths resolve against
// before any file has been opened.
func WithBasePath(dir string) ContextOption {
	return func(c *Context) {
		c.basePath = dir
	}
}

// NewContext returns an empty context with no directives registered.
func NewContext(opts ...ContextOption) *Context {
	c := &Context{
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		features:   make(map[string]struct{}),
		directives: make(map[directiveKey]directiveDef),
		processed:  make(map[string]bool),
		basePath:   ".",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Logger returns the context's logger.
func (c *Context) Logger() *slog.Logger { return c.logger }

// ProvideFeature marks name as present. Providing a feature twice has no
// further effect.
func (c *Context) ProvideFeature(name string) {
	if _, ok := c.features[name]; ok {
		return
	}
	c.features[name] = struct{}{}
	c.logger.Debug("feature provided", "feature", name)
}

// HasFeature reports whether name has been provided.
func (c *Context) HasFeature(name string) bool {
	_, ok := c.features[name]
	return ok
}

// Features returns the provided features in sorted order.
func (c *Context) Features() []string {
	out := make([]string, 0, len(c.features))
	for f := range c.features {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// DefineDirective registers a simple directive. Simple directives may not
// contain child elements.
func (c *Context) DefineDirective(namespace, name string, handler HandlerFunc) error {
	return c.define(namespace, name, directiveDef{handler: handler})
}

// DefineGroupingDirective registers a directive whose child elements are
// processed after its handler returns.
func (c *Context) DefineGroupingDirective(namespace, name string, handler HandlerFunc) error {
	return c.define(namespace, name, directiveDef{handler: handler, grouping: true})
}

func (c *Context) define(namespace, name string, def directiveDef) error {
	key := directiveKey{namespace: namespace, name: name}
	if _, exists := c.directives[key]; exists {
		return fmt.Errorf("zcml: %w: {%s}%s", ErrDirectiveDefined, namespace, name)
	}
	c.logger.Debug("defining directive", "namespace", namespace, "name", name, "grouping", def.grouping)
	c.directives[key] = def
	return nil
}

func (c *Context) lookup(namespace, name string) (directiveDef, error) {
	if def, ok := c.directives[directiveKey{namespace: namespace, name: name}]; ok {
		return def, nil
	}
	if def, ok := c.directives[directiveKey{namespace: AnyNamespace, name: name}]; ok {
		return def, nil
	}
	return directiveDef{}, fmt.Errorf("%w: {%s}%s", ErrUnknownDirective, namespace, name)
}

// Path resolves p against the directory of the file being processed.
func (c *Context) Path(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(c.basePath, p)
}

// Exclude marks a file as already processed so that later includes skip it.
func (c *Context) Exclude(path string) {
	c.processed[fileKey(c.Path(path))] = true
}

// Processed reports whether path has already been processed or excluded.
func (c *Context) Processed(path string) bool {
	return c.processed[fileKey(c.Path(path))]
}

// IncludePath returns the chain of files leading to the current one.
func (c *Context) IncludePath() []string {
	return append([]string(nil), c.includePath...)
}

func fileKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// ValidateFeatureName rejects names that cannot be used in a "have"
// condition.
func ValidateFeatureName(name string) error {
	if name == "" {
		return fmt.Errorf("feature name is empty")
	}
	if strings.ContainsAny(name, " \t\r\n") {
		return fmt.Errorf("feature name %q must be a single word", name)
	}
	return nil
}
