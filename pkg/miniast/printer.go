// Package miniast tree dumping for debug output.
package miniast

import (
	"fmt"
	"io"
	"strings"
)

// Printer writes a human-readable dump of a tree.
type Printer struct {
	w      io.Writer
	indent int
}

// NewPrinter creates a new tree printer.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// PrintProgram dumps every function in prog.
func (p *Printer) PrintProgram(prog *Program) {
	for _, fn := range prog.Functions {
		p.printFunction(fn)
		fmt.Fprintln(p.w)
	}
}

func (p *Printer) printFunction(fn *Function) {
	fmt.Fprintf(p.w, "function %s%s(", fn.Name, fn.SpecializationName)
	for i, arg := range fn.Arguments {
		if i > 0 {
			fmt.Fprint(p.w, "; ")
		}
		for j, v := range arg.Variables {
			if j > 0 {
				fmt.Fprint(p.w, ", ")
			}
			fmt.Fprintf(p.w, "%s %s", v.Typ.String(), v.Name)
		}
	}
	fmt.Fprintln(p.w, ")")
	p.indent++
	p.printStmt(fn.Body)
	p.indent--
}

func (p *Printer) writeIndent() {
	fmt.Fprint(p.w, strings.Repeat("  ", p.indent))
}

// PrintStmt dumps a statement subtree.
func (p *Printer) PrintStmt(stmt Stmt) {
	p.printStmt(stmt)
}

func (p *Printer) printStmt(stmt Stmt) {
	switch s := stmt.(type) {
	case *StatementList:
		for _, inner := range s.Stmts {
			p.printStmt(inner)
		}

	case *Assignment:
		p.writeIndent()
		p.printExpr(s.Operand)
		fmt.Fprintln(p.w)

	case *Return:
		p.writeIndent()
		fmt.Fprint(p.w, "return")
		if s.Operand != nil {
			fmt.Fprint(p.w, " ")
			p.printExpr(s.Operand)
		}
		fmt.Fprintln(p.w)

	case *For:
		p.writeIndent()
		fmt.Fprint(p.w, "for")
		if s.Tiled {
			fmt.Fprint(p.w, " [tiled]")
		}
		fmt.Fprint(p.w, " (")
		p.printExprOpt(s.Init)
		fmt.Fprint(p.w, "; ")
		p.printExprOpt(s.Condition)
		fmt.Fprint(p.w, "; ")
		p.printExprOpt(s.Step)
		fmt.Fprintln(p.w, ")")
		p.indent++
		p.printStmt(s.Body)
		p.indent--

	case *Jump:
		p.writeIndent()
		fmt.Fprintf(p.w, "goto %s\n", s.Target.Name)

	case *JumpTarget:
		fmt.Fprintf(p.w, "%s:\n", s.Target.Name)

	case nil:

	default:
		p.writeIndent()
		fmt.Fprintf(p.w, "<unknown stmt %T>\n", stmt)
	}
}

func (p *Printer) printExprOpt(expr Expr) {
	if expr == nil {
		return
	}
	p.printExpr(expr)
}

func (p *Printer) printExpr(expr Expr) {
	switch e := expr.(type) {
	case *Constant:
		fmt.Fprintf(p.w, "%v", e.Value)

	case *Variable:
		fmt.Fprint(p.w, e.Name)

	case *ArrayAttribute:
		fmt.Fprintf(p.w, "@%s", e.Name)

	case *Temp:
		fmt.Fprintf(p.w, "$%s", e.Name)

	case *Binop:
		fmt.Fprint(p.w, "(")
		p.printExpr(e.Lhs)
		fmt.Fprintf(p.w, " %s ", e.Operator)
		p.printExpr(e.Rhs)
		fmt.Fprint(p.w, ")")

	case *Unop:
		fmt.Fprintf(p.w, "(%s", e.Operator)
		p.printExpr(e.Operand)
		fmt.Fprint(p.w, ")")

	case *Cast:
		fmt.Fprintf(p.w, "(%s)", e.Typ.String())
		p.printExpr(e.Operand)

	case *Dereference:
		fmt.Fprint(p.w, "*")
		p.printExpr(e.Operand)

	case *SingleIndex:
		p.printExpr(e.Lhs)
		fmt.Fprint(p.w, "[")
		p.printExpr(e.Rhs)
		fmt.Fprint(p.w, "]")

	case *AssignmentExpr:
		p.printExpr(e.Lhs)
		fmt.Fprint(p.w, " = ")
		p.printExpr(e.Rhs)

	default:
		fmt.Fprintf(p.w, "<unknown expr %T>", expr)
	}
}
