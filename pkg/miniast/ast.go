// Package miniast defines the typed expression/statement tree lowered by the
// code generator. The tree is a strict hierarchy owned top-down; no node is
// shared by two parents. Names assigned during generation (mangled function
// names, label names) live in side tables owned by the generator, never on
// the nodes themselves.
package miniast

import "github.com/markflorisson88/minivect/pkg/minitypes"

// Node is the base interface for all tree nodes
type Node interface {
	implNode()
}

// Expr is the interface for value-producing nodes
type Expr interface {
	Node
	implExpr()
}

// Stmt is the interface for statement nodes
type Stmt interface {
	Node
	implStmt()
}

// --- Expressions ---

// Constant is a literal value
type Constant struct {
	Value any
	Typ   minitypes.Type
}

// Variable is a named source-level variable
type Variable struct {
	Name string
	Typ  minitypes.Type
}

// ArrayAttribute is a precomputed attribute of an array operand (shape,
// strides, data pointer). Its name is already target-level and is rendered
// verbatim, without mangling.
type ArrayAttribute struct {
	Name string
	Typ  minitypes.Type
}

// Temp is a generator-introduced temporary. Temporaries are declared at
// function granularity so they can be hoisted and reused across loop levels.
type Temp struct {
	Name string
	Typ  minitypes.Type
}

// Binop is a binary operation; Operator is the target-level symbol
type Binop struct {
	Operator string
	Lhs      Expr
	Rhs      Expr
	Typ      minitypes.Type
}

// Unop is a prefix unary operation
type Unop struct {
	Operator string
	Operand  Expr
	Typ      minitypes.Type
}

// Cast converts Operand to Typ
type Cast struct {
	Operand Expr
	Typ     minitypes.Type
}

// Dereference is a pointer load (*p)
type Dereference struct {
	Operand Expr
}

// SingleIndex is a single-dimension index (lhs[rhs])
type SingleIndex struct {
	Lhs Expr
	Rhs Expr
}

// AssignmentExpr is a value-producing assignment, usable as a sub-expression
type AssignmentExpr struct {
	Lhs Expr
	Rhs Expr
}

// Label is a jump target name. Its mangled form is assigned on first visit
// and memoized, so jumps visited before the label resolve to the same name.
type Label struct {
	Name string
}

// --- Statements ---

// StatementList is an ordered sequence of statements
type StatementList struct {
	Stmts []Stmt
}

// Assignment is an assignment executed for effect
type Assignment struct {
	Operand *AssignmentExpr
}

// Return returns Operand from the enclosing function
type Return struct {
	Operand Expr
}

// For is a C-style counted loop. Tiled loops share the enclosing
// declaration/loop scope instead of opening their own.
type For struct {
	Init      Expr
	Condition Expr
	Step      Expr
	Body      Stmt
	Tiled     bool
}

// Jump transfers control to Target
type Jump struct {
	Target *Label
}

// JumpTarget marks the position Target jumps to
type JumpTarget struct {
	Target *Label
}

// --- Functions ---

// FunctionArgument groups the variables bound by one formal argument
// (a vector argument expands to data pointer plus strides).
type FunctionArgument struct {
	Variables []*Variable
}

// Function is a function definition
type Function struct {
	Name string
	// SpecializationName distinguishes specialized instances of the same
	// source function; appended to Name before mangling.
	SpecializationName string
	Arguments          []*FunctionArgument
	Body               Stmt
}

// Program is a collection of functions handed to the generator. It is not a
// Node; the generator is invoked per function root.
type Program struct {
	Functions []*Function
}

// --- Interface implementations ---

func (*Constant) implNode()          {}
func (*Variable) implNode()          {}
func (*ArrayAttribute) implNode()    {}
func (*Temp) implNode()              {}
func (*Binop) implNode()             {}
func (*Unop) implNode()              {}
func (*Cast) implNode()              {}
func (*Dereference) implNode()       {}
func (*SingleIndex) implNode()       {}
func (*AssignmentExpr) implNode()    {}
func (*Label) implNode()             {}
func (*StatementList) implNode()     {}
func (*Assignment) implNode()        {}
func (*Return) implNode()            {}
func (*For) implNode()               {}
func (*Jump) implNode()              {}
func (*JumpTarget) implNode()        {}
func (*FunctionArgument) implNode()  {}
func (*Function) implNode()          {}

func (*Constant) implExpr()       {}
func (*Variable) implExpr()       {}
func (*ArrayAttribute) implExpr() {}
func (*Temp) implExpr()           {}
func (*Binop) implExpr()          {}
func (*Unop) implExpr()           {}
func (*Cast) implExpr()           {}
func (*Dereference) implExpr()    {}
func (*SingleIndex) implExpr()    {}
func (*AssignmentExpr) implExpr() {}

func (*StatementList) implStmt() {}
func (*Assignment) implStmt()    {}
func (*Return) implStmt()        {}
func (*For) implStmt()           {}
func (*Jump) implStmt()          {}
func (*JumpTarget) implStmt()    {}

// Children returns the child nodes of n in field order, skipping nil fields.
// This is the single source of truth for generic traversal.
func Children(n Node) []Node {
	switch v := n.(type) {
	case *Binop:
		return kids(v.Lhs, v.Rhs)
	case *Unop:
		return kids(v.Operand)
	case *Cast:
		return kids(v.Operand)
	case *Dereference:
		return kids(v.Operand)
	case *SingleIndex:
		return kids(v.Lhs, v.Rhs)
	case *AssignmentExpr:
		return kids(v.Lhs, v.Rhs)
	case *StatementList:
		out := make([]Node, 0, len(v.Stmts))
		for _, s := range v.Stmts {
			if s != nil {
				out = append(out, s)
			}
		}
		return out
	case *Assignment:
		if v.Operand == nil {
			return nil
		}
		return []Node{v.Operand}
	case *Return:
		return kids(v.Operand)
	case *For:
		return kids(v.Init, v.Condition, v.Step, v.Body)
	case *Jump:
		if v.Target == nil {
			return nil
		}
		return []Node{v.Target}
	case *JumpTarget:
		if v.Target == nil {
			return nil
		}
		return []Node{v.Target}
	case *FunctionArgument:
		out := make([]Node, 0, len(v.Variables))
		for _, a := range v.Variables {
			out = append(out, a)
		}
		return out
	case *Function:
		out := make([]Node, 0, len(v.Arguments)+1)
		for _, a := range v.Arguments {
			out = append(out, a)
		}
		if v.Body != nil {
			out = append(out, v.Body)
		}
		return out
	default:
		// Constant, Variable, ArrayAttribute, Temp, Label are leaves
		return nil
	}
}

func kids(nodes ...Node) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if n == nil || isNilNode(n) {
			continue
		}
		out = append(out, n)
	}
	return out
}

// isNilNode catches typed-nil interface values (e.g. a nil *Binop stored in
// an Expr field).
func isNilNode(n Node) bool {
	switch v := n.(type) {
	case *Constant:
		return v == nil
	case *Variable:
		return v == nil
	case *ArrayAttribute:
		return v == nil
	case *Temp:
		return v == nil
	case *Binop:
		return v == nil
	case *Unop:
		return v == nil
	case *Cast:
		return v == nil
	case *Dereference:
		return v == nil
	case *SingleIndex:
		return v == nil
	case *AssignmentExpr:
		return v == nil
	case *Label:
		return v == nil
	case *StatementList:
		return v == nil
	case *Assignment:
		return v == nil
	case *Return:
		return v == nil
	case *For:
		return v == nil
	case *Jump:
		return v == nil
	case *JumpTarget:
		return v == nil
	case *FunctionArgument:
		return v == nil
	case *Function:
		return v == nil
	}
	return false
}

// Walk calls fn on n and recurses into its children in field order.
// Traversal stops below any node for which fn returns false.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range Children(n) {
		Walk(c, fn)
	}
}

// Seq builds a StatementList, flattening nested lists and dropping nils.
func Seq(stmts ...Stmt) *StatementList {
	out := &StatementList{}
	for _, s := range stmts {
		if s == nil {
			continue
		}
		if inner, ok := s.(*StatementList); ok {
			out.Stmts = append(out.Stmts, inner.Stmts...)
			continue
		}
		out.Stmts = append(out.Stmts, s)
	}
	return out
}
