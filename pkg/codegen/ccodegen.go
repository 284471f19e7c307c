package codegen

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/markflorisson88/minivect/pkg/codewriter"
	"github.com/markflorisson88/minivect/pkg/miniast"
)

// CCodeGen lowers a tree to C. One instance serves one generation run; it
// owns the per-run mutable state (declared-temp set, label counter, name
// side tables) and must not be shared between runs.
type CCodeGen struct {
	ctx Context
	w   *codewriter.Writer
	log *zap.Logger

	declaredTemps map[string]bool
	labelNames    map[*miniast.Label]string
	funcNames     map[*miniast.Function]string
	labelCounter  int
}

// Option configures a CCodeGen.
type Option func(*CCodeGen)

// WithLogger sets the debug logger. The default is a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(g *CCodeGen) {
		if log != nil {
			g.log = log
		}
	}
}

// New returns a generator writing through w and consulting ctx.
func New(ctx Context, w *codewriter.Writer, opts ...Option) *CCodeGen {
	g := &CCodeGen{
		ctx:           ctx,
		w:             w,
		log:           zap.NewNop(),
		declaredTemps: make(map[string]bool),
		labelNames:    make(map[*miniast.Label]string),
		funcNames:     make(map[*miniast.Function]string),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// GenerateProgram lowers every function in p.
func (g *CCodeGen) GenerateProgram(p *miniast.Program) error {
	for _, fn := range p.Functions {
		if _, err := g.Visit(fn); err != nil {
			return err
		}
	}
	return nil
}

// FunctionName returns the mangled name assigned to fn during this run.
func (g *CCodeGen) FunctionName(fn *miniast.Function) (string, bool) {
	name, ok := g.funcNames[fn]
	return name, ok
}

// LabelName returns the mangled name assigned to l during this run.
func (g *CCodeGen) LabelName(l *miniast.Label) (string, bool) {
	name, ok := g.labelNames[l]
	return name, ok
}

// Visit dispatches on the node's kind. Expression kinds yield exactly one
// rendered string; statement kinds emit through the writer and yield none.
// An unlisted kind is a fatal dispatch failure.
func (g *CCodeGen) Visit(n miniast.Node) ([]string, error) {
	switch v := n.(type) {
	case *miniast.Function:
		return nil, g.visitFunction(v)
	case *miniast.FunctionArgument:
		return g.visitFunctionArgument(v)
	case *miniast.StatementList:
		return nil, visitChildren(g.Visit, v)
	case *miniast.For:
		return nil, g.visitFor(v)
	case *miniast.Return:
		return nil, g.visitReturn(v)
	case *miniast.Assignment:
		return nil, g.visitAssignment(v)
	case *miniast.Jump:
		return nil, g.visitJump(v)
	case *miniast.JumpTarget:
		return nil, g.visitJumpTarget(v)
	case *miniast.AssignmentExpr:
		rs, err := results(g.Visit, v.Lhs, v.Rhs)
		if err != nil {
			return nil, err
		}
		if len(rs) != 2 {
			return nil, fmt.Errorf("codegen: assignment rendered %d operands, want 2", len(rs))
		}
		return []string{fmt.Sprintf("%s = %s", rs[0], rs[1])}, nil
	case *miniast.Binop:
		lhs, err := single(g.Visit, v.Lhs)
		if err != nil {
			return nil, err
		}
		rhs, err := single(g.Visit, v.Rhs)
		if err != nil {
			return nil, err
		}
		return []string{fmt.Sprintf("(%s %s %s)", lhs, v.Operator, rhs)}, nil
	case *miniast.Unop:
		op, err := single(g.Visit, v.Operand)
		if err != nil {
			return nil, err
		}
		return []string{fmt.Sprintf("(%s%s)", v.Operator, op)}, nil
	case *miniast.Cast:
		op, err := single(g.Visit, v.Operand)
		if err != nil {
			return nil, err
		}
		return []string{fmt.Sprintf("((%s) %s)", g.ctx.DeclareType(v.Typ), op)}, nil
	case *miniast.Dereference:
		op, err := single(g.Visit, v.Operand)
		if err != nil {
			return nil, err
		}
		return []string{fmt.Sprintf("(*%s)", op)}, nil
	case *miniast.SingleIndex:
		rs, err := results(g.Visit, v.Lhs, v.Rhs)
		if err != nil {
			return nil, err
		}
		if len(rs) != 2 {
			return nil, fmt.Errorf("codegen: index rendered %d operands, want 2", len(rs))
		}
		return []string{fmt.Sprintf("(%s[%s])", rs[0], rs[1])}, nil
	case *miniast.Temp:
		return g.visitTemp(v)
	case *miniast.Variable:
		return []string{g.w.Mangle(v.Name)}, nil
	case *miniast.ArrayAttribute:
		return []string{v.Name}, nil
	case *miniast.Constant:
		return []string{formatConstant(v.Value)}, nil
	case *miniast.Label:
		return []string{g.labelName(v)}, nil
	default:
		return unhandled(n)
	}
}

// visitFunction emits the forward prototype and the definition, and captures
// the declaration point every inner temporary will be declared at.
func (g *CCodeGen) visitFunction(n *miniast.Function) error {
	name := g.w.Mangle(n.Name + n.SpecializationName)
	g.funcNames[n] = name
	// temporaries are scoped per function
	g.declaredTemps = make(map[string]bool)

	argNodes := make([]miniast.Node, len(n.Arguments))
	for i, a := range n.Arguments {
		argNodes[i] = a
	}
	args, err := results(g.Visit, argNodes...)
	if err != nil {
		return err
	}

	proto := fmt.Sprintf("static int %s(%s)", name, strings.Join(args, ", "))
	g.w.Protos.EmitLine(proto + ";")
	g.w.EmitLine(proto + " {")
	g.w.DeclarationPoint = g.w.InsertionPoint()
	g.log.Debug("lowering function", zap.String("name", name))
	if err := visitChildren(g.Visit, n); err != nil {
		return err
	}
	g.w.EmitLine("}")
	return nil
}

// visitFunctionArgument renders one formal argument; an argument binding
// several variables renders them comma-joined in one result.
func (g *CCodeGen) visitFunctionArgument(n *miniast.FunctionArgument) ([]string, error) {
	parts := make([]string, 0, len(n.Variables))
	for _, v := range n.Variables {
		name, err := single(g.Visit, v)
		if err != nil {
			return nil, err
		}
		parts = append(parts, fmt.Sprintf("%s %s", g.ctx.DeclareType(v.Typ), name))
	}
	return []string{strings.Join(parts, ", ")}, nil
}

// visitFor lowers a counted loop. Bodies that may raise are protected by an
// error handler; disposal code for the body runs exactly once on every path
// leaving the body, normal or caught. Tiled loops share the enclosing
// declaration/loop scope instead of opening their own.
func (g *CCodeGen) visitFor(n *miniast.For) error {
	var handler ErrorHandler
	if n.Body != nil && g.ctx.MayError(n.Body) {
		handler = g.ctx.ErrorHandler(g.w)
	}
	g.log.Debug("lowering loop", zap.Bool("tiled", n.Tiled), zap.Bool("protected", handler != nil))

	// absent header clauses render empty, as in C's for (;;)
	init, err := single(g.Visit, n.Init)
	if err != nil {
		return err
	}
	cond, err := single(g.Visit, n.Condition)
	if err != nil {
		return err
	}
	step, err := single(g.Visit, n.Step)
	if err != nil {
		return err
	}
	g.w.EmitLine(fmt.Sprintf("for (%s; %s; %s) {", init, cond, step))

	if !n.Tiled {
		g.w.PushDeclarationLevel(g.w.InsertionPoint())
		g.w.PushLoopLevel(g.w.InsertionPoint())
	}

	// the init clause also runs inside the loop scope
	if _, err := visitChild(g.Visit, n.Init); err != nil {
		return err
	}
	if _, err := visitChild(g.Visit, n.Body); err != nil {
		return err
	}

	var disposal *codewriter.Cursor
	if handler != nil {
		handler.CatchHere(g.w)
		disposal = g.w.InsertionPoint()
		handler.Cascade(g.w)
	} else {
		disposal = g.w.InsertionPoint()
	}
	if err := g.ctx.GenerateDisposalCode(disposal, n.Body); err != nil {
		return err
	}

	if !n.Tiled {
		g.w.PopDeclarationLevel()
		g.w.PopLoopLevel()
	}
	g.w.EmitLine("}")
	return nil
}

func (g *CCodeGen) visitReturn(n *miniast.Return) error {
	if n.Operand == nil {
		g.w.EmitLine("return 0;")
		return nil
	}
	op, err := single(g.Visit, n.Operand)
	if err != nil {
		return err
	}
	g.w.EmitLine(fmt.Sprintf("return %s;", op))
	return nil
}

func (g *CCodeGen) visitAssignment(n *miniast.Assignment) error {
	s, err := single(g.Visit, n.Operand)
	if err != nil {
		return err
	}
	g.w.EmitLine(s + ";")
	return nil
}

// visitTemp declares the temporary at the function's declaration point the
// first time its mangled name is seen; later visits reuse the declaration.
func (g *CCodeGen) visitTemp(n *miniast.Temp) ([]string, error) {
	name := g.w.Mangle(n.Name)
	if !g.declaredTemps[name] {
		g.declaredTemps[name] = true
		if g.w.DeclarationPoint == nil {
			return nil, fmt.Errorf("codegen: temp %q lowered outside a function", n.Name)
		}
		g.w.DeclarationPoint.EmitLine(fmt.Sprintf("%s %s;", g.ctx.DeclareType(n.Typ), name))
		if n.Typ != nil && n.Typ.IsObject() {
			g.ctx.TempAcquired(n, name)
		}
	}
	return []string{name}, nil
}

func (g *CCodeGen) visitJump(n *miniast.Jump) error {
	name, err := single(g.Visit, n.Target)
	if err != nil {
		return err
	}
	g.w.EmitLine(fmt.Sprintf("goto %s;", name))
	return nil
}

func (g *CCodeGen) visitJumpTarget(n *miniast.JumpTarget) error {
	name, err := single(g.Visit, n.Target)
	if err != nil {
		return err
	}
	g.w.EmitLine(name + ":")
	return nil
}

// labelName assigns a globally unique name on first visit and memoizes it,
// so jumps visited before the label resolve to the same name. Claiming the
// name through the writer keeps labels and mangled variables apart.
func (g *CCodeGen) labelName(n *miniast.Label) string {
	if name, ok := g.labelNames[n]; ok {
		return name
	}
	name := g.w.Fresh(fmt.Sprintf("%s%d", n.Name, g.labelCounter))
	g.labelCounter++
	g.labelNames[n] = name
	return name
}

func formatConstant(v any) string {
	switch c := v.(type) {
	case string:
		return c
	case float64:
		return fmt.Sprintf("%g", c)
	case float32:
		return fmt.Sprintf("%g", c)
	default:
		return fmt.Sprintf("%v", c)
	}
}
