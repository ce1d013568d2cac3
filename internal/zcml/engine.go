package zcml

import (
	"context"
	"io"
)

// Engine is the file-level entry point to the directive interpreter. The
// zero value is ready to use.
type Engine struct{}

// DefaultEngine is the engine used when none is injected.
var DefaultEngine = Engine{}

// NewContext returns an empty context.
func (Engine) NewContext(opts ...ContextOption) *Context {
	return NewContext(opts...)
}

// RegisterCommonDirectives installs the built-in directives into c.
func (Engine) RegisterCommonDirectives(c *Context) error {
	return RegisterCommonDirectives(c)
}

// ProcessFile processes path into c and, when execute is true, runs the
// resulting actions. On failure the context is not returned.
func (Engine) ProcessFile(ctx context.Context, path string, c *Context, execute bool) (*Context, error) {
	if err := c.IncludeFile(path); err != nil {
		return nil, err
	}
	return finish(ctx, c, execute)
}

// ProcessReader is ProcessFile for a document read from r.
func (Engine) ProcessReader(ctx context.Context, r io.Reader, name string, c *Context, execute bool) (*Context, error) {
	if err := c.IncludeReader(r, name); err != nil {
		return nil, err
	}
	return finish(ctx, c, execute)
}

func finish(ctx context.Context, c *Context, execute bool) (*Context, error) {
	if !execute {
		c.logger.Debug("execution disabled, leaving actions pending", "pending", len(c.actions))
		return c, nil
	}
	if err := c.ExecuteActions(ctx); err != nil {
		return nil, err
	}
	return c, nil
}
