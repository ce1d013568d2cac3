package zcml

import (
	"errors"
	"fmt"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// RegisterCommonDirectives installs the built-in vocabulary into c:
// configure, include, includeOverrides and exclude in every namespace, and
// provides in the meta namespace.
func RegisterCommonDirectives(c *Context) error {
	return errors.Join(
		c.DefineGroupingDirective(AnyNamespace, "configure", configureDirective),
		c.DefineDirective(AnyNamespace, "include", includeDirective),
		c.DefineDirective(AnyNamespace, "includeOverrides", includeOverridesDirective),
		c.DefineDirective(AnyNamespace, "exclude", excludeDirective),
		c.DefineDirective(MetaNamespace, "provides", providesDirective),
	)
}

func configureDirective(*Context, *Directive) error { return nil }

func providesDirective(c *Context, d *Directive) error {
	feature, err := d.RequireAttr("feature")
	if err != nil {
		return err
	}
	if err := ValidateFeatureName(feature); err != nil {
		return err
	}
	c.ProvideFeature(feature)
	return nil
}

func includeDirective(c *Context, d *Directive) error {
	paths, err := includeTargets(c, d)
	if err != nil {
		return err
	}
	for _, p := range paths {
		c.logger.Debug("including file", "file", p, "from", d.Info.String())
		if err := c.IncludeFile(p); err != nil {
			return err
		}
	}
	return nil
}

// includeOverridesDirective includes files whose actions take the include
// path of the including file, so they win conflicts against actions from
// files included elsewhere.
func includeOverridesDirective(c *Context, d *Directive) error {
	start := len(c.actions)
	path := c.IncludePath()
	if err := includeDirective(c, d); err != nil {
		return err
	}
	// Conflicts inside the included files are settled before their
	// actions are lifted to the includer's path.
	resolved, err := resolveConflicts(c.actions[start:])
	if err != nil {
		return err
	}
	for i := range resolved {
		resolved[i].IncludePath = path
	}
	c.actions = append(c.actions[:start], resolved...)
	return nil
}

func excludeDirective(c *Context, d *Directive) error {
	paths, err := includeTargets(c, d)
	if err != nil {
		return err
	}
	for _, p := range paths {
		c.Exclude(p)
	}
	return nil
}

// includeTargets resolves the file or files attribute of an include-like
// directive. Glob matches are returned sorted.
func includeTargets(c *Context, d *Directive) ([]string, error) {
	if d.HasAttr("package") {
		return nil, fmt.Errorf("%s: the package attribute is not supported", d.Name)
	}
	file, files := d.Attr("file", ""), d.Attr("files", "")
	switch {
	case file != "" && files != "":
		return nil, fmt.Errorf("%s: file and files are mutually exclusive", d.Name)
	case files != "":
		matches, err := doublestar.FilepathGlob(c.Path(files))
		if err != nil {
			return nil, fmt.Errorf("%s: bad pattern %q: %w", d.Name, files, err)
		}
		sort.Strings(matches)
		return matches, nil
	case file != "":
		return []string{c.Path(file)}, nil
	default:
		return []string{c.Path("configure.zcml")}, nil
	}
}
