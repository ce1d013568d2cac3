package zcml

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/beevik/etree"
)

// Directive is one element of a ZCML document, as seen by its handler.
type Directive struct {
	Namespace string
	Name      string
	Info      SourceInfo

	attrs map[string]string
}

// Attr returns the unqualified attribute name, or dflt when it is absent.
func (d *Directive) Attr(name, dflt string) string {
	if v, ok := d.attrs[name]; ok {
		return v
	}
	return dflt
}

// HasAttr reports whether the unqualified attribute name is present.
func (d *Directive) HasAttr(name string) bool {
	_, ok := d.attrs[name]
	return ok
}

// RequireAttr returns the attribute value or an error naming the missing
// attribute.
func (d *Directive) RequireAttr(name string) (string, error) {
	v, ok := d.attrs[name]
	if !ok {
		return "", fmt.Errorf("%s: missing required attribute %q", d.Name, name)
	}
	return v, nil
}

// IncludeFile processes the document at path, relative paths resolving
// against the file currently being processed. A file is processed at most
// once per context; later includes of the same file are skipped.
func (c *Context) IncludeFile(path string) error {
	path = c.Path(path)
	key := fileKey(path)
	if c.processed[key] {
		c.logger.Debug("skipping already processed file", "file", path)
		return nil
	}
	c.processed[key] = true

	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return &ConfigurationError{Info: SourceInfo{File: path}, Err: err}
	}
	return c.processDocument(doc, path, filepath.Dir(path))
}

// IncludeReader processes a document read from r. name identifies the
// document in errors and include paths; its directory, when name is not
// empty, becomes the base for relative includes.
func (c *Context) IncludeReader(r io.Reader, name string) error {
	base := c.basePath
	if name != "" {
		key := fileKey(c.Path(name))
		if c.processed[key] {
			return nil
		}
		c.processed[key] = true
		base = filepath.Dir(c.Path(name))
	} else {
		name = "<stream>"
	}

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return &ConfigurationError{Info: SourceInfo{File: name}, Err: err}
	}
	return c.processDocument(doc, name, base)
}

func (c *Context) processDocument(doc *etree.Document, file, base string) error {
	root := doc.Root()
	if root == nil {
		return &ConfigurationError{Info: SourceInfo{File: file}, Err: errors.New("document has no root element")}
	}

	prevBase, prevFile := c.basePath, c.file
	c.basePath, c.file = base, file
	c.includePath = append(c.includePath, file)
	defer func() {
		c.basePath, c.file = prevBase, prevFile
		c.includePath = c.includePath[:len(c.includePath)-1]
	}()

	c.logger.Debug("processing file", "file", file, "depth", len(c.includePath))
	return c.processElement(root)
}

func (c *Context) processElement(el *etree.Element) error {
	info := SourceInfo{File: c.file, Path: el.GetPath()}
	fail := func(err error) error {
		var cfgErr *ConfigurationError
		if errors.As(err, &cfgErr) {
			return err
		}
		return &ConfigurationError{Info: info, Err: err}
	}

	d := &Directive{
		Namespace: el.NamespaceURI(),
		Name:      el.Tag,
		Info:      info,
		attrs:     make(map[string]string, len(el.Attr)),
	}
	condition, hasCondition := "", false
	for _, a := range el.Attr {
		switch {
		case a.Space == "xmlns", a.Space == "" && a.Key == "xmlns":
		case a.Space == "":
			d.attrs[a.Key] = a.Value
		case a.NamespaceURI() == ZCMLNamespace && a.Key == "condition":
			condition, hasCondition = a.Value, true
		}
	}

	if hasCondition {
		ok, err := c.evaluateCondition(condition)
		if err != nil {
			return fail(err)
		}
		if !ok {
			c.logger.Debug("condition not met, skipping", "condition", condition, "source", info.String())
			return nil
		}
	}

	def, err := c.lookup(d.Namespace, d.Name)
	if err != nil {
		return fail(err)
	}
	children := el.ChildElements()
	if !def.grouping && len(children) > 0 {
		return fail(fmt.Errorf("%s: directive does not accept child elements", d.Name))
	}
	if err := def.handler(c, d); err != nil {
		return fail(err)
	}
	for _, child := range children {
		if err := c.processElement(child); err != nil {
			return err
		}
	}
	return nil
}
