// Package minitypes defines the small type model consumed by the code
// generator: scalars, pointers, and refcounted runtime objects.
package minitypes

import "fmt"

// Type is the interface for all generator-visible types
type Type interface {
	implType()
	// String returns the C declaration form of the type
	String() string
	// IsObject reports whether values of this type are refcounted runtime
	// objects. Object operations may raise at target runtime and object
	// temporaries need disposal code.
	IsObject() bool
}

// IntSize represents the width of integer types
type IntSize int

const (
	I8 IntSize = iota
	I16
	I32
	I64
)

// Tint is a signed integer type
type Tint struct {
	Size IntSize
}

func (t Tint) String() string {
	switch t.Size {
	case I8:
		return "char"
	case I16:
		return "short"
	case I64:
		return "long long"
	default:
		return "int"
	}
}

// Tfloat is a floating-point type
type Tfloat struct {
	Double bool
}

func (t Tfloat) String() string {
	if t.Double {
		return "double"
	}
	return "float"
}

// Tpointer is a pointer to an element type
type Tpointer struct {
	Elem Type
}

func (t Tpointer) String() string {
	return fmt.Sprintf("%s *", t.Elem.String())
}

// Tobject is a refcounted runtime object reference
type Tobject struct{}

func (t Tobject) String() string {
	return "obj_t *"
}

func (Tint) implType()     {}
func (Tfloat) implType()   {}
func (Tpointer) implType() {}
func (Tobject) implType()  {}

func (Tint) IsObject() bool     { return false }
func (Tfloat) IsObject() bool   { return false }
func (Tpointer) IsObject() bool { return false }
func (Tobject) IsObject() bool  { return true }

// Int returns the default int type
func Int() Type { return Tint{Size: I32} }

// Long returns the widest integer type
func Long() Type { return Tint{Size: I64} }

// Double returns the double-precision float type
func Double() Type { return Tfloat{Double: true} }

// Object returns the refcounted object type
func Object() Type { return Tobject{} }

// Pointer returns a pointer to elem
func Pointer(elem Type) Type { return Tpointer{Elem: elem} }
