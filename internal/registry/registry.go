// Package registry holds the components that configuration registers.
//
// Components are registered as utilities, keyed by the interface name they
// provide and an optional name. Configuration documents register utilities
// with the <utility> directive; registration is deferred to action
// execution, so a load with execution disabled leaves the registry untouched.
package registry

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/dmitriyb/zcmlload/internal/security"
)

// ManageServices is the permission a guarded registry requires for
// registrations.
const ManageServices security.Permission = "zope.ManageServices"

type utilityKey struct {
	provides string
	name     string
}

// Registry maps (provides, name) pairs to components. It is safe for
// concurrent use.
type Registry struct {
	mu        sync.RWMutex
	utilities map[utilityKey]any

	guard  *security.Manager
	perm   security.Permission
	logger *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithGuard makes Provide require perm in the manager's active interaction.
func WithGuard(m *security.Manager, perm security.Permission) Option {
	return func(r *Registry) {
		r.guard = m
		r.perm = perm
	}
}

// WithLogger sets the registry's logger. The default discards.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		utilities: make(map[utilityKey]any),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Provide registers component as the utility providing provides under name,
// replacing any earlier registration.
func (r *Registry) Provide(ctx context.Context, provides, name string, component any) error {
	if provides == "" {
		return fmt.Errorf("registry: provides is required")
	}
	if r.guard != nil {
		if err := r.guard.CheckPermission(r.perm); err != nil {
			return fmt.Errorf("registry: register %s %q: %w", provides, name, err)
		}
	}

	r.mu.Lock()
	r.utilities[utilityKey{provides: provides, name: name}] = component
	r.mu.Unlock()

	attrs := []any{"provides", provides, "name", name}
	if i := security.FromContext(ctx); i != nil {
		attrs = append(attrs, "interaction", i.ID)
	}
	r.logger.Debug("utility registered", attrs...)
	return nil
}

// Lookup returns the utility registered for provides and name.
func (r *Registry) Lookup(provides, name string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.utilities[utilityKey{provides: provides, name: name}]
	return c, ok
}

// Len returns the number of registered utilities.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.utilities)
}

// Provided returns the registered keys as "provides" or "provides/name",
// sorted.
func (r *Registry) Provided() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.utilities))
	for k := range r.utilities {
		s := k.provides
		if k.name != "" {
			s += "/" + k.name
		}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func utilityDiscriminator(provides, name string) string {
	if name == "" {
		return "utility/" + provides
	}
	return "utility/" + provides + "/" + name
}
