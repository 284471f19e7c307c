// Package codegen lowers a miniast tree to C source text through a
// dispatch-by-kind visitor. The traversal core in this file is shared by the
// primary generator and the cleanup pass; the concrete lowering rules live in
// ccodegen.go and cleanup.go.
package codegen

import (
	"errors"
	"fmt"

	"github.com/markflorisson88/minivect/pkg/codewriter"
	"github.com/markflorisson88/minivect/pkg/miniast"
	"github.com/markflorisson88/minivect/pkg/minitypes"
)

// ErrUnhandledKind reports a node kind that reached the dispatcher with no
// specialized handler and no generic fallback. It always means an unmodeled
// kind; generation cannot continue.
var ErrUnhandledKind = errors.New("unhandled node kind")

// Context supplies the semantic decisions the generator cannot make from the
// tree alone: type rendering, error protection, and disposal synthesis.
type Context interface {
	// DeclareType renders a type as its textual declaration form.
	DeclareType(t minitypes.Type) string
	// MayError reports whether executing the generated code for n can raise
	// a target-level runtime error.
	MayError(n miniast.Node) bool
	// ErrorHandler installs a new innermost protected scope and returns its
	// handler.
	ErrorHandler(w *codewriter.Writer) ErrorHandler
	// TempAcquired records that lowering declared the temporary t under its
	// mangled name, so disposal synthesis can release it later.
	TempAcquired(t *miniast.Temp, mangled string)
	// GenerateDisposalCode emits resource-release code at the cursor for
	// everything acquired while lowering n.
	GenerateDisposalCode(at *codewriter.Cursor, n miniast.Node) error
}

// ErrorHandler marks the control points of one protected scope in the
// generated text.
type ErrorHandler interface {
	// CatchHere marks the resume point after the protected region; both the
	// normal fall-through path and the caught-error path pass through it.
	CatchHere(w *codewriter.Writer)
	// Cascade propagates an in-flight error to the next enclosing protected
	// scope, or out of the function at the outermost scope.
	Cascade(w *codewriter.Writer)
}

// visitFn is the dispatch entry point of a visitor.
type visitFn func(miniast.Node) ([]string, error)

// visitChild is the null-safe visit: absent children produce no results.
func visitChild(visit visitFn, n miniast.Node) ([]string, error) {
	if n == nil {
		return nil, nil
	}
	return visit(n)
}

// visitChildren recurses into every child of n in field order, discarding
// results. This is the generic fallback for kinds without specialized
// lowering.
func visitChildren(visit visitFn, n miniast.Node) error {
	for _, c := range miniast.Children(n) {
		if _, err := visit(c); err != nil {
			return err
		}
	}
	return nil
}

// results visits each child in order and concatenates all outputs into one
// fixed-order slice, flattening multi-valued results. It is the formatting
// primitive for handlers that interpolate several children into one line.
func results(visit visitFn, children ...miniast.Node) ([]string, error) {
	out := make([]string, 0, len(children))
	for _, c := range children {
		rs, err := visitChild(visit, c)
		if err != nil {
			return nil, err
		}
		out = append(out, rs...)
	}
	return out, nil
}

// single visits a child expected to render to exactly one string. A nil
// child renders to the empty string.
func single(visit visitFn, n miniast.Node) (string, error) {
	if n == nil {
		return "", nil
	}
	rs, err := visit(n)
	if err != nil {
		return "", err
	}
	if len(rs) != 1 {
		return "", fmt.Errorf("codegen: node %T rendered %d values, want 1", n, len(rs))
	}
	return rs[0], nil
}

func unhandled(n miniast.Node) ([]string, error) {
	return nil, fmt.Errorf("codegen: %w: %T", ErrUnhandledKind, n)
}
