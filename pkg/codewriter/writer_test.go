package codewriter

import (
	"strings"
	"testing"
)

func TestEmitLineAppendsInOrder(t *testing.T) {
	w := New()
	w.EmitLine("a")
	w.EmitLine("b")
	if got := w.String(); got != "a\nb\n" {
		t.Errorf("got %q, want %q", got, "a\nb\n")
	}
}

func TestInsertionPointReceivesLaterWrites(t *testing.T) {
	w := New()
	w.EmitLine("first")
	ip := w.InsertionPoint()
	w.EmitLine("third")
	ip.EmitLine("second")

	want := "first\nsecond\nthird\n"
	if got := w.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestInsertionPointsPreserveCreationOrder(t *testing.T) {
	w := New()
	a := w.InsertionPoint()
	b := w.InsertionPoint()
	w.EmitLine("tail")

	// written out of creation order
	b.EmitLine("b1")
	a.EmitLine("a1")
	a.EmitLine("a2")

	want := "a1\na2\nb1\ntail\n"
	if got := w.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestNestedInsertionPoints(t *testing.T) {
	w := New()
	w.EmitLine("head")
	outer := w.InsertionPoint()
	w.EmitLine("tail")

	outer.EmitLine("o1")
	inner := outer.InsertionPoint()
	outer.EmitLine("o2")
	inner.EmitLine("i1")

	want := "head\no1\ni1\no2\ntail\n"
	if got := w.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPrototypeStreamFlushedFirst(t *testing.T) {
	w := New()
	w.EmitLine("int f(void) {")
	w.EmitLine("}")
	w.Protos.EmitLine("int f(void);")

	got := w.String()
	want := "int f(void);\n\nint f(void) {\n}\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestNoPrototypesNoBlankLine(t *testing.T) {
	w := New()
	w.EmitLine("x")
	if got := w.String(); got != "x\n" {
		t.Errorf("got %q, want %q", got, "x\n")
	}
}

func TestMangleCleanIdentifierIsIdentity(t *testing.T) {
	w := New()
	if got := w.Mangle("f"); got != "f" {
		t.Errorf("Mangle(f) = %q, want f", got)
	}
	if got := w.Mangle("x_1"); got != "x_1" {
		t.Errorf("Mangle(x_1) = %q, want x_1", got)
	}
}

func TestMangleReservedWord(t *testing.T) {
	w := New()
	got := w.Mangle("for")
	if got == "for" {
		t.Fatal("reserved word must be renamed")
	}
	if !strings.HasPrefix(got, "__mv_") {
		t.Errorf("got %q, want __mv_ prefix", got)
	}
}

func TestMangleIsMemoized(t *testing.T) {
	w := New()
	first := w.Mangle("a.b")
	second := w.Mangle("a.b")
	if first != second {
		t.Errorf("repeated mangle differs: %q vs %q", first, second)
	}
}

func TestMangleAvoidsSanitizationCollisions(t *testing.T) {
	w := New()
	a := w.Mangle("a.b")
	b := w.Mangle("a?b")
	if a == b {
		t.Errorf("distinct inputs mangled to same name %q", a)
	}
}

func TestFreshReturnsBaseWhenFree(t *testing.T) {
	w := New()
	if got := w.Fresh("end0"); got != "end0" {
		t.Errorf("Fresh(end0) = %q, want end0", got)
	}
}

func TestFreshAvoidsMangledNames(t *testing.T) {
	w := New()
	w.Mangle("end0")
	if got := w.Fresh("end0"); got == "end0" {
		t.Error("Fresh reused a name already claimed by Mangle")
	}
}

func TestFreshReservesAgainstLaterMangle(t *testing.T) {
	w := New()
	label := w.Fresh("end0")
	if got := w.Mangle("end0"); got == label {
		t.Errorf("Mangle collided with fresh name %q", label)
	}
}

func TestFreshIsNotMemoized(t *testing.T) {
	w := New()
	a := w.Fresh("tmp")
	b := w.Fresh("tmp")
	if a == b {
		t.Errorf("repeated Fresh returned same name %q", a)
	}
}

func TestScopeStacks(t *testing.T) {
	w := New()
	if w.DeclarationDepth() != 0 || w.LoopDepth() != 0 {
		t.Fatal("new writer must have empty scope stacks")
	}

	d := w.InsertionPoint()
	l := w.InsertionPoint()
	w.PushDeclarationLevel(d)
	w.PushLoopLevel(l)

	if w.DeclarationDepth() != 1 || w.LoopDepth() != 1 {
		t.Errorf("depths after push: %d/%d, want 1/1", w.DeclarationDepth(), w.LoopDepth())
	}
	if got := w.PopDeclarationLevel(); got != d {
		t.Error("PopDeclarationLevel returned wrong cursor")
	}
	if got := w.PopLoopLevel(); got != l {
		t.Error("PopLoopLevel returned wrong cursor")
	}
	if w.DeclarationPushes != 1 || w.LoopPushes != 1 {
		t.Errorf("push counters: %d/%d, want 1/1", w.DeclarationPushes, w.LoopPushes)
	}
}
