package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitriyb/zcmlload/internal/zcml"
)

// Factory builds a component when its registration runs.
type Factory func(ctx context.Context) (any, error)

// Factories maps the factory attribute of a <utility> directive to the Go
// code that builds the component.
type Factories map[string]Factory

// RegisterDirectives returns a hook that defines the <utility> directive in
// the zope namespace:
//
//	<utility provides="IMailer" name="smtp" factory="smtpMailer" />
//
// Attributes and the factory key are checked while parsing. The factory
// runs and the component is registered only when actions execute.
func RegisterDirectives(reg *Registry, factories Factories) func(*zcml.Context) error {
	return func(c *zcml.Context) error {
		return c.DefineDirective(zcml.ZopeNamespace, "utility", func(c *zcml.Context, d *zcml.Directive) error {
			return utilityDirective(reg, factories, c, d)
		})
	}
}

func utilityDirective(reg *Registry, factories Factories, c *zcml.Context, d *zcml.Directive) error {
	provides, err := d.RequireAttr("provides")
	if err != nil {
		return err
	}
	key, err := d.RequireAttr("factory")
	if err != nil {
		return err
	}
	if strings.TrimSpace(provides) == "" {
		return fmt.Errorf("utility: provides must not be empty")
	}
	if key == "" {
		return fmt.Errorf("utility: factory must not be empty")
	}
	factory, ok := factories[key]
	if !ok {
		return fmt.Errorf("utility: unknown factory %q", key)
	}
	name := d.Attr("name", "")

	c.Action(zcml.Action{
		Discriminator: utilityDiscriminator(provides, name),
		Info:          d.Info,
		Callable: func(ctx context.Context) error {
			component, err := factory(ctx)
			if err != nil {
				return fmt.Errorf("factory %q: %w", key, err)
			}
			return reg.Provide(ctx, provides, name, component)
		},
	})
	return nil
}
