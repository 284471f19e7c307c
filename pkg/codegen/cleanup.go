package codegen

import "github.com/markflorisson88/minivect/pkg/miniast"

// Cleanup is the reduced visitor used once a loop body has been finalized.
// It walks generically except at For nodes, where it visits only the
// escaping header clauses (init, condition, step) and never the body, which
// the primary pass already disposed of. Header clauses execute outside the
// body's disposal scope and would otherwise leak release obligations.
type Cleanup struct {
	onTemp func(*miniast.Temp) error
}

// NewCleanup returns a cleanup visitor calling onTemp for every temporary it
// reaches.
func NewCleanup(onTemp func(*miniast.Temp) error) *Cleanup {
	return &Cleanup{onTemp: onTemp}
}

// Visit walks n without emitting anything itself.
func (c *Cleanup) Visit(n miniast.Node) error {
	switch v := n.(type) {
	case *miniast.For:
		for _, clause := range []miniast.Node{v.Init, v.Condition, v.Step} {
			if clause == nil {
				continue
			}
			if err := c.Visit(clause); err != nil {
				return err
			}
		}
		return nil
	case *miniast.Temp:
		if c.onTemp == nil {
			return nil
		}
		return c.onTemp(v)
	default:
		for _, child := range miniast.Children(n) {
			if err := c.Visit(child); err != nil {
				return err
			}
		}
		return nil
	}
}
