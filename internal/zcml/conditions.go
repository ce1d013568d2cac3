package zcml

import (
	"fmt"
	"strings"
)

// evaluateCondition evaluates a zcml:condition expression.
//
//	have FEATURE
//	not-have FEATURE
func (c *Context) evaluateCondition(expr string) (bool, error) {
	fields := strings.Fields(expr)
	if len(fields) == 0 {
		return false, fmt.Errorf("%w: empty condition", ErrInvalidCondition)
	}
	verb, args := fields[0], fields[1:]
	switch verb {
	case "have", "not-have":
		if len(args) != 1 {
			return false, fmt.Errorf("%w: %q takes exactly one feature name", ErrInvalidCondition, verb)
		}
		have := c.HasFeature(args[0])
		if verb == "not-have" {
			return !have, nil
		}
		return have, nil
	default:
		return false, fmt.Errorf("%w: unsupported verb %q", ErrInvalidCondition, verb)
	}
}
