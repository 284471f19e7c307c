// Package treeload builds a miniast.Program from a declarative YAML
// description. It stands in for the upstream parser/type-checker so the CLI
// has an input format; the generator itself never depends on it.
package treeload

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/markflorisson88/minivect/pkg/miniast"
	"github.com/markflorisson88/minivect/pkg/minitypes"
)

type programSpec struct {
	Functions []functionSpec `yaml:"functions"`
}

type functionSpec struct {
	Name           string         `yaml:"name"`
	Specialization string         `yaml:"specialization,omitempty"`
	Arguments      []argumentSpec `yaml:"arguments"`
	Body           []stmtSpec     `yaml:"body"`
}

type argumentSpec struct {
	Variables []varSpec `yaml:"variables"`
}

type varSpec struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type stmtSpec struct {
	Return *returnSpec `yaml:"return,omitempty"`
	Assign *assignSpec `yaml:"assign,omitempty"`
	For    *forSpec    `yaml:"for,omitempty"`
	Goto   string      `yaml:"goto,omitempty"`
	Target string      `yaml:"target,omitempty"`
	Block  []stmtSpec  `yaml:"block,omitempty"`
}

type returnSpec struct {
	Expr *exprSpec `yaml:"expr"`
}

type assignSpec struct {
	Lhs *exprSpec `yaml:"lhs"`
	Rhs *exprSpec `yaml:"rhs"`
}

type forSpec struct {
	Init      *exprSpec  `yaml:"init"`
	Condition *exprSpec  `yaml:"condition"`
	Step      *exprSpec  `yaml:"step"`
	Body      []stmtSpec `yaml:"body"`
	Tiled     bool       `yaml:"tiled,omitempty"`
}

type exprSpec struct {
	Constant  yaml.Node   `yaml:"constant,omitempty"`
	Variable  *varSpec    `yaml:"variable,omitempty"`
	Attribute *varSpec    `yaml:"attribute,omitempty"`
	Temp      *varSpec    `yaml:"temp,omitempty"`
	Binop     *binopSpec  `yaml:"binop,omitempty"`
	Unop      *unopSpec   `yaml:"unop,omitempty"`
	Cast      *castSpec   `yaml:"cast,omitempty"`
	Deref     *exprSpec   `yaml:"deref,omitempty"`
	Index     *indexSpec  `yaml:"index,omitempty"`
	Assign    *assignSpec `yaml:"assign,omitempty"`
}

type binopSpec struct {
	Op   string    `yaml:"op"`
	Lhs  *exprSpec `yaml:"lhs"`
	Rhs  *exprSpec `yaml:"rhs"`
	Type string    `yaml:"type,omitempty"`
}

type unopSpec struct {
	Op      string    `yaml:"op"`
	Operand *exprSpec `yaml:"operand"`
	Type    string    `yaml:"type,omitempty"`
}

type castSpec struct {
	Type    string    `yaml:"type"`
	Operand *exprSpec `yaml:"operand"`
}

type indexSpec struct {
	Lhs *exprSpec `yaml:"lhs"`
	Rhs *exprSpec `yaml:"rhs"`
}

// loader resolves label names to shared Label nodes so a goto and its target
// reference the same node.
type loader struct {
	labels map[string]*miniast.Label
}

// Load parses a YAML program description into a tree.
func Load(data []byte) (*miniast.Program, error) {
	var spec programSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("treeload: %w", err)
	}
	l := &loader{labels: make(map[string]*miniast.Label)}
	prog := &miniast.Program{}
	for _, fs := range spec.Functions {
		fn, err := l.function(fs)
		if err != nil {
			return nil, err
		}
		prog.Functions = append(prog.Functions, fn)
	}
	return prog, nil
}

func (l *loader) function(fs functionSpec) (*miniast.Function, error) {
	if fs.Name == "" {
		return nil, fmt.Errorf("treeload: function without a name")
	}
	fn := &miniast.Function{
		Name:               fs.Name,
		SpecializationName: fs.Specialization,
	}
	for _, as := range fs.Arguments {
		arg := &miniast.FunctionArgument{}
		for _, vs := range as.Variables {
			typ, err := parseType(vs.Type)
			if err != nil {
				return nil, err
			}
			arg.Variables = append(arg.Variables, &miniast.Variable{Name: vs.Name, Typ: typ})
		}
		fn.Arguments = append(fn.Arguments, arg)
	}
	body, err := l.stmts(fs.Body)
	if err != nil {
		return nil, err
	}
	fn.Body = body
	return fn, nil
}

func (l *loader) stmts(specs []stmtSpec) (*miniast.StatementList, error) {
	out := &miniast.StatementList{}
	for _, ss := range specs {
		st, err := l.stmt(ss)
		if err != nil {
			return nil, err
		}
		out.Stmts = append(out.Stmts, st)
	}
	return out, nil
}

func (l *loader) stmt(ss stmtSpec) (miniast.Stmt, error) {
	switch {
	case ss.Return != nil:
		var operand miniast.Expr
		if ss.Return.Expr != nil {
			e, err := l.expr(ss.Return.Expr)
			if err != nil {
				return nil, err
			}
			operand = e
		}
		return &miniast.Return{Operand: operand}, nil
	case ss.Assign != nil:
		ae, err := l.assign(ss.Assign)
		if err != nil {
			return nil, err
		}
		return &miniast.Assignment{Operand: ae}, nil
	case ss.For != nil:
		return l.forStmt(ss.For)
	case ss.Goto != "":
		return &miniast.Jump{Target: l.label(ss.Goto)}, nil
	case ss.Target != "":
		return &miniast.JumpTarget{Target: l.label(ss.Target)}, nil
	case ss.Block != nil:
		return l.stmts(ss.Block)
	default:
		return nil, fmt.Errorf("treeload: empty statement")
	}
}

func (l *loader) forStmt(fs *forSpec) (*miniast.For, error) {
	init, err := l.exprOrNil(fs.Init)
	if err != nil {
		return nil, err
	}
	cond, err := l.exprOrNil(fs.Condition)
	if err != nil {
		return nil, err
	}
	step, err := l.exprOrNil(fs.Step)
	if err != nil {
		return nil, err
	}
	body, err := l.stmts(fs.Body)
	if err != nil {
		return nil, err
	}
	return &miniast.For{
		Init:      init,
		Condition: cond,
		Step:      step,
		Body:      body,
		Tiled:     fs.Tiled,
	}, nil
}

func (l *loader) exprOrNil(es *exprSpec) (miniast.Expr, error) {
	if es == nil {
		return nil, nil
	}
	return l.expr(es)
}

func (l *loader) expr(es *exprSpec) (miniast.Expr, error) {
	switch {
	case !es.Constant.IsZero():
		return constant(&es.Constant)
	case es.Variable != nil:
		typ, err := parseType(es.Variable.Type)
		if err != nil {
			return nil, err
		}
		return &miniast.Variable{Name: es.Variable.Name, Typ: typ}, nil
	case es.Attribute != nil:
		typ, err := parseType(es.Attribute.Type)
		if err != nil {
			return nil, err
		}
		return &miniast.ArrayAttribute{Name: es.Attribute.Name, Typ: typ}, nil
	case es.Temp != nil:
		typ, err := parseType(es.Temp.Type)
		if err != nil {
			return nil, err
		}
		return &miniast.Temp{Name: es.Temp.Name, Typ: typ}, nil
	case es.Binop != nil:
		lhs, err := l.expr(es.Binop.Lhs)
		if err != nil {
			return nil, err
		}
		rhs, err := l.expr(es.Binop.Rhs)
		if err != nil {
			return nil, err
		}
		typ, err := parseType(es.Binop.Type)
		if err != nil {
			return nil, err
		}
		return &miniast.Binop{Operator: es.Binop.Op, Lhs: lhs, Rhs: rhs, Typ: typ}, nil
	case es.Unop != nil:
		op, err := l.expr(es.Unop.Operand)
		if err != nil {
			return nil, err
		}
		typ, err := parseType(es.Unop.Type)
		if err != nil {
			return nil, err
		}
		return &miniast.Unop{Operator: es.Unop.Op, Operand: op, Typ: typ}, nil
	case es.Cast != nil:
		op, err := l.expr(es.Cast.Operand)
		if err != nil {
			return nil, err
		}
		typ, err := parseType(es.Cast.Type)
		if err != nil {
			return nil, err
		}
		return &miniast.Cast{Operand: op, Typ: typ}, nil
	case es.Deref != nil:
		op, err := l.expr(es.Deref)
		if err != nil {
			return nil, err
		}
		return &miniast.Dereference{Operand: op}, nil
	case es.Index != nil:
		lhs, err := l.expr(es.Index.Lhs)
		if err != nil {
			return nil, err
		}
		rhs, err := l.expr(es.Index.Rhs)
		if err != nil {
			return nil, err
		}
		return &miniast.SingleIndex{Lhs: lhs, Rhs: rhs}, nil
	case es.Assign != nil:
		return l.assign(es.Assign)
	default:
		return nil, fmt.Errorf("treeload: empty expression")
	}
}

func (l *loader) assign(as *assignSpec) (*miniast.AssignmentExpr, error) {
	lhs, err := l.expr(as.Lhs)
	if err != nil {
		return nil, err
	}
	rhs, err := l.expr(as.Rhs)
	if err != nil {
		return nil, err
	}
	return &miniast.AssignmentExpr{Lhs: lhs, Rhs: rhs}, nil
}

func (l *loader) label(name string) *miniast.Label {
	if lbl, ok := l.labels[name]; ok {
		return lbl
	}
	lbl := &miniast.Label{Name: name}
	l.labels[name] = lbl
	return lbl
}

func constant(n *yaml.Node) (miniast.Expr, error) {
	var iv int64
	if err := n.Decode(&iv); err == nil {
		return &miniast.Constant{Value: iv, Typ: minitypes.Int()}, nil
	}
	var fv float64
	if err := n.Decode(&fv); err == nil {
		return &miniast.Constant{Value: fv, Typ: minitypes.Double()}, nil
	}
	var sv string
	if err := n.Decode(&sv); err == nil {
		return &miniast.Constant{Value: sv, Typ: minitypes.Int()}, nil
	}
	return nil, fmt.Errorf("treeload: unsupported constant at line %d", n.Line)
}

func parseType(name string) (minitypes.Type, error) {
	switch name {
	case "", "int":
		return minitypes.Int(), nil
	case "char":
		return minitypes.Tint{Size: minitypes.I8}, nil
	case "short":
		return minitypes.Tint{Size: minitypes.I16}, nil
	case "long":
		return minitypes.Long(), nil
	case "float":
		return minitypes.Tfloat{}, nil
	case "double":
		return minitypes.Double(), nil
	case "object":
		return minitypes.Object(), nil
	default:
		if len(name) > 1 && name[len(name)-1] == '*' {
			elem, err := parseType(strings.TrimSpace(name[:len(name)-1]))
			if err != nil {
				return nil, err
			}
			return minitypes.Pointer(elem), nil
		}
		return nil, fmt.Errorf("treeload: unknown type %q", name)
	}
}
