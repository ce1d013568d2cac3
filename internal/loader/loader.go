// Package loader loads a ZCML file into a fresh configuration context.
//
// It is startup glue: create a context, register the common directives,
// declare the requested features, process the file and return the context.
// Errors from the engine are returned as they are.
package loader

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/dmitriyb/zcmlload/internal/security"
	"github.com/dmitriyb/zcmlload/internal/zcml"
)

// Engine is the directive interpreter the loader delegates to.
// zcml.DefaultEngine implements it.
type Engine interface {
	NewContext(opts ...zcml.ContextOption) *zcml.Context
	RegisterCommonDirectives(c *zcml.Context) error
	ProcessFile(ctx context.Context, path string, c *zcml.Context, execute bool) (*zcml.Context, error)
	ProcessReader(ctx context.Context, r io.Reader, name string, c *zcml.Context, execute bool) (*zcml.Context, error)
}

type options struct {
	engine     Engine
	features   []string
	execute    bool
	security   *security.Manager
	directives []func(*zcml.Context) error
	logger     *slog.Logger
}

// Option configures a load.
type Option func(*options)

// WithFeatures declares features before any directive is processed. Names
// must be non-empty single words; the load fails otherwise.
func WithFeatures(names ...string) Option {
	return func(o *options) {
		o.features = append(o.features, names...)
	}
}

// WithExecute controls whether actions run. It defaults to true; false
// parses and validates the file and leaves the actions pending.
func WithExecute(execute bool) Option {
	return func(o *options) {
		o.execute = execute
	}
}

// WithSystemInteraction runs the load inside a system-user interaction on m.
// The interaction ends when the load returns, whether or not it failed.
func WithSystemInteraction(m *security.Manager) Option {
	return func(o *options) {
		o.security = m
	}
}

// WithEngine replaces zcml.DefaultEngine.
func WithEngine(e Engine) Option {
	return func(o *options) {
		o.engine = e
	}
}

// WithDirectives registers additional directives after the common ones.
func WithDirectives(register ...func(*zcml.Context) error) Option {
	return func(o *options) {
		o.directives = append(o.directives, register...)
	}
}

// WithLogger sets the logger for the loader and the context it creates.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		engine:  zcml.DefaultEngine,
		execute: true,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Load processes the ZCML file at path.
func Load(ctx context.Context, path string, opts ...Option) (*zcml.Context, error) {
	return load(ctx, path, newOptions(opts), func(ctx context.Context, e Engine, c *zcml.Context, execute bool) (*zcml.Context, error) {
		return e.ProcessFile(ctx, path, c, execute)
	})
}

// LoadReader processes a ZCML document read from r. name identifies the
// document and anchors relative includes; it may be empty.
func LoadReader(ctx context.Context, r io.Reader, name string, opts ...Option) (*zcml.Context, error) {
	return load(ctx, name, newOptions(opts), func(ctx context.Context, e Engine, c *zcml.Context, execute bool) (*zcml.Context, error) {
		return e.ProcessReader(ctx, r, name, c, execute)
	})
}

type processFunc func(ctx context.Context, e Engine, c *zcml.Context, execute bool) (*zcml.Context, error)

func load(ctx context.Context, name string, o *options, process processFunc) (*zcml.Context, error) {
	logger := o.logger.With("component", "loader", "file", name)

	for _, f := range o.features {
		if err := zcml.ValidateFeatureName(f); err != nil {
			return nil, fmt.Errorf("features: %w", err)
		}
	}

	if o.security != nil {
		i, err := o.security.NewInteraction(security.SystemParticipation)
		if err != nil {
			return nil, err
		}
		defer o.security.EndInteraction()
		ctx = security.WithInteraction(ctx, i)
		logger.Debug("system interaction started", "interaction", i.ID)
	}

	c := o.engine.NewContext(zcml.WithLogger(o.logger))
	if err := o.engine.RegisterCommonDirectives(c); err != nil {
		return nil, err
	}
	for _, register := range o.directives {
		if err := register(c); err != nil {
			return nil, fmt.Errorf("register directives: %w", err)
		}
	}
	for _, f := range o.features {
		c.ProvideFeature(f)
	}

	c, err := process(ctx, o.engine, c, o.execute)
	if err != nil {
		return nil, err
	}
	logger.Info("configuration loaded",
		"execute", o.execute,
		"features", len(c.Features()),
		"executed", c.Executed(),
		"pending", len(c.Actions()))
	return c, nil
}
