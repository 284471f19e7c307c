// Package semantics implements the semantic context consulted during code
// generation: C type rendering, the may-error predicate, the goto-based
// error-handler chain, and disposal synthesis for refcounted temporaries.
package semantics

import (
	"fmt"

	"github.com/markflorisson88/minivect/pkg/codegen"
	"github.com/markflorisson88/minivect/pkg/codewriter"
	"github.com/markflorisson88/minivect/pkg/miniast"
	"github.com/markflorisson88/minivect/pkg/minitypes"
)

// CContext serves one generation run. It tracks the active protected scopes
// and the object temporaries acquired so far, keyed by source-level name.
type CContext struct {
	handlers []*gotoHandler
	counter  int

	// acquired maps a temp's source name to its mangled declaration name.
	// Entries persist for the whole run; each disposal pass releases the
	// names it reaches exactly once.
	acquired map[string]string

	// statusDeclared tracks the functions (by declaration point) that
	// already declare the error status variable.
	statusDeclared map[*codewriter.Cursor]bool
	statusName     string
}

// New returns a fresh context for one generation run.
func New() *CContext {
	return &CContext{
		acquired:       make(map[string]string),
		statusDeclared: make(map[*codewriter.Cursor]bool),
	}
}

// DeclareType renders t in C declaration form.
func (c *CContext) DeclareType(t minitypes.Type) string {
	if t == nil {
		return "int"
	}
	return t.String()
}

// MayError reports whether the generated code for n can raise at target
// runtime. Object-typed operations are the only raising constructs.
func (c *CContext) MayError(n miniast.Node) bool {
	may := false
	miniast.Walk(n, func(n miniast.Node) bool {
		switch v := n.(type) {
		case *miniast.Binop:
			if v.Typ != nil && v.Typ.IsObject() {
				may = true
			}
		case *miniast.Unop:
			if v.Typ != nil && v.Typ.IsObject() {
				may = true
			}
		case *miniast.Cast:
			if v.Typ != nil && v.Typ.IsObject() {
				may = true
			}
		}
		return !may
	})
	return may
}

// ErrorHandler installs a new innermost protected scope. The first handler
// in a function also declares the status variable at the declaration point.
func (c *CContext) ErrorHandler(w *codewriter.Writer) codegen.ErrorHandler {
	c.ensureStatus(w)
	h := &gotoHandler{
		ctx:   c,
		label: w.Fresh(fmt.Sprintf("__mv_error%d", c.counter)),
	}
	c.counter++
	c.handlers = append(c.handlers, h)
	return h
}

func (c *CContext) ensureStatus(w *codewriter.Writer) {
	if c.statusName == "" {
		c.statusName = w.Fresh("__mv_status")
	}
	if w.DeclarationPoint == nil || c.statusDeclared[w.DeclarationPoint] {
		return
	}
	c.statusDeclared[w.DeclarationPoint] = true
	w.DeclarationPoint.EmitLine(fmt.Sprintf("int %s = 0;", c.statusName))
}

// TempAcquired records a declared object temporary for later disposal.
func (c *CContext) TempAcquired(t *miniast.Temp, mangled string) {
	c.acquired[t.Name] = mangled
}

// GenerateDisposalCode emits a release for every object temporary acquired
// under n, using the cleanup traversal so already-disposed loop bodies are
// not revisited. A temporary referenced several times under n is released
// once. Finding an object temporary that was never lowered is a contract
// violation and fails the run.
func (c *CContext) GenerateDisposalCode(at *codewriter.Cursor, n miniast.Node) error {
	if n == nil {
		return nil
	}
	released := make(map[string]bool)
	cleanup := codegen.NewCleanup(func(t *miniast.Temp) error {
		if t.Typ == nil || !t.Typ.IsObject() {
			return nil
		}
		name, ok := c.acquired[t.Name]
		if !ok {
			return fmt.Errorf("semantics: disposal requested for temp %q that was never lowered", t.Name)
		}
		if released[name] {
			return nil
		}
		released[name] = true
		at.EmitLine(fmt.Sprintf("obj_release(%s);", name))
		return nil
	})
	return cleanup.Visit(n)
}

// gotoHandler is one protected scope. CatchHere emits the label both the
// fall-through and the caught path reach; Cascade pops the scope and
// forwards a pending error to the enclosing one, or out of the function.
type gotoHandler struct {
	ctx   *CContext
	label string
}

func (h *gotoHandler) CatchHere(w *codewriter.Writer) {
	w.EmitLine(h.label + ":;")
}

func (h *gotoHandler) Cascade(w *codewriter.Writer) {
	h.ctx.pop(h)
	if outer := h.ctx.top(); outer != nil {
		w.EmitLine(fmt.Sprintf("if (%s != 0) goto %s;", h.ctx.statusName, outer.label))
		return
	}
	w.EmitLine(fmt.Sprintf("if (%s != 0) return %s;", h.ctx.statusName, h.ctx.statusName))
}

func (c *CContext) pop(h *gotoHandler) {
	for i := len(c.handlers) - 1; i >= 0; i-- {
		if c.handlers[i] == h {
			c.handlers = append(c.handlers[:i], c.handlers[i+1:]...)
			return
		}
	}
}

func (c *CContext) top() *gotoHandler {
	if len(c.handlers) == 0 {
		return nil
	}
	return c.handlers[len(c.handlers)-1]
}
