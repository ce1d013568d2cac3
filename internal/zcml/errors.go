package zcml

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrUnknownDirective is returned for elements with no registered handler.
	ErrUnknownDirective = errors.New("unknown directive")
	// ErrInvalidCondition is returned for zcml:condition values that cannot
	// be evaluated.
	ErrInvalidCondition = errors.New("invalid condition")
	// ErrDirectiveDefined is returned when a directive is registered twice.
	ErrDirectiveDefined = errors.New("directive already defined")
)

// SourceInfo locates a directive: the file it came from and the element
// path inside that file.
type SourceInfo struct {
	File string
	Path string
}

func (s SourceInfo) String() string {
	if s.Path == "" {
		return s.File
	}
	return s.File + ":" + s.Path
}

// ConfigurationError reports a failure while parsing a document or handling
// one of its directives.
type ConfigurationError struct {
	Info SourceInfo
	Err  error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("zcml: %s: %v", e.Info, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// ActionError reports a failing deferred action.
type ActionError struct {
	Info          SourceInfo
	Discriminator string
	Err           error
}

func (e *ActionError) Error() string {
	if e.Discriminator == "" {
		return fmt.Sprintf("zcml: action at %s: %v", e.Info, e.Err)
	}
	return fmt.Sprintf("zcml: action %s at %s: %v", e.Discriminator, e.Info, e.Err)
}

func (e *ActionError) Unwrap() error { return e.Err }

// ConflictError lists actions whose discriminators collide without one
// overriding the others.
type ConflictError struct {
	Conflicts map[string][]SourceInfo
}

func (e *ConflictError) Error() string {
	keys := make([]string, 0, len(e.Conflicts))
	for k := range e.Conflicts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("zcml: conflicting configuration actions")
	for _, k := range keys {
		fmt.Fprintf(&b, "\n  for %s", k)
		for _, info := range e.Conflicts[k] {
			fmt.Fprintf(&b, "\n    %s", info)
		}
	}
	return b.String()
}
