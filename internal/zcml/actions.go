package zcml

import (
	"context"
	"sort"
)

// Action is a deferred configuration step emitted by a directive.
//
// Actions sharing a non-empty Discriminator conflict. A conflict is resolved
// in favour of the action whose IncludePath is a strict prefix of all the
// others' paths, which is how includeOverrides takes effect.
type Action struct {
	Discriminator string
	Callable      func(ctx context.Context) error
	Order         int
	IncludePath   []string
	Info          SourceInfo
}

// Action queues a. When a.IncludePath is nil the current include path is
// used.
func (c *Context) Action(a Action) {
	if a.IncludePath == nil {
		a.IncludePath = c.IncludePath()
	}
	c.actions = append(c.actions, a)
}

// Actions returns the pending actions in emission order.
func (c *Context) Actions() []Action {
	return append([]Action(nil), c.actions...)
}

// Executed returns how many actions have run on this context.
func (c *Context) Executed() int { return c.executed }

// ExecuteActions resolves conflicts among the pending actions and runs the
// remaining ones sorted by Order, then by emission order. Pending actions
// are cleared even when an action fails.
func (c *Context) ExecuteActions(ctx context.Context) error {
	pending := c.actions
	c.actions = nil

	resolved, err := resolveConflicts(pending)
	if err != nil {
		return err
	}
	for _, a := range resolved {
		if err := ctx.Err(); err != nil {
			return err
		}
		if a.Callable == nil {
			continue
		}
		c.logger.Debug("executing action", "discriminator", a.Discriminator, "source", a.Info.String())
		if err := a.Callable(ctx); err != nil {
			return &ActionError{Info: a.Info, Discriminator: a.Discriminator, Err: err}
		}
		c.executed++
	}
	return nil
}

type indexedAction struct {
	Action
	index int
}

func resolveConflicts(actions []Action) ([]Action, error) {
	var (
		out       []indexedAction
		byDisc    = make(map[string][]indexedAction)
		discOrder []string
	)
	for i, a := range actions {
		ia := indexedAction{Action: a, index: i}
		if a.Discriminator == "" {
			out = append(out, ia)
			continue
		}
		if _, seen := byDisc[a.Discriminator]; !seen {
			discOrder = append(discOrder, a.Discriminator)
		}
		byDisc[a.Discriminator] = append(byDisc[a.Discriminator], ia)
	}

	conflicts := make(map[string][]SourceInfo)
	for _, disc := range discOrder {
		group := byDisc[disc]
		sort.SliceStable(group, func(i, j int) bool {
			return pathLess(group[i].IncludePath, group[j].IncludePath)
		})
		base := group[0]
		out = append(out, base)
		for _, other := range group[1:] {
			if !isPrefix(base.IncludePath, other.IncludePath) || equalPaths(base.IncludePath, other.IncludePath) {
				if _, ok := conflicts[disc]; !ok {
					conflicts[disc] = []SourceInfo{base.Info}
				}
				conflicts[disc] = append(conflicts[disc], other.Info)
			}
		}
	}
	if len(conflicts) > 0 {
		return nil, &ConflictError{Conflicts: conflicts}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].index < out[j].index
	})
	result := make([]Action, len(out))
	for i, ia := range out {
		result[i] = ia.Action
	}
	return result, nil
}

// pathLess orders shorter include paths first, then lexically.
func pathLess(a, b []string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func isPrefix(prefix, path []string) bool {
	if len(prefix) > len(path) {
		return false
	}
	for i := range prefix {
		if prefix[i] != path[i] {
			return false
		}
	}
	return true
}

func equalPaths(a, b []string) bool {
	return len(a) == len(b) && isPrefix(a, b)
}
