// Package codewriter provides the ordered text sink used by code generation.
// Output is a chain of chunks; an insertion point is a stable cursor into the
// chain that can receive more lines after later text has already been written.
// Writes through different cursors appear in final output in cursor creation
// order, not call order.
package codewriter

import (
	"strings"
)

// chunk is one segment of the output document. Chunks form a singly linked
// list; linearization walks the list from the head.
type chunk struct {
	lines []string
	next  *chunk
}

// Cursor is a stable position in a document. Lines emitted through a cursor
// are appended at that logical position regardless of what has been written
// elsewhere since the cursor was created.
type Cursor struct {
	doc *document
	c   *chunk
}

type document struct {
	head *chunk
}

func newDocument() (*document, *Cursor) {
	h := &chunk{}
	d := &document{head: h}
	return d, &Cursor{doc: d, c: h}
}

// EmitLine appends one line at the cursor's position.
func (cu *Cursor) EmitLine(line string) {
	cu.c.lines = append(cu.c.lines, line)
}

// InsertionPoint returns a new cursor fixed at the current position. The
// receiving cursor continues after it, so lines written later through the
// returned cursor appear before anything the receiver emits from now on.
func (cu *Cursor) InsertionPoint() *Cursor {
	point := &chunk{}
	rest := &chunk{}
	rest.next = cu.c.next
	point.next = rest
	cu.c.next = point
	cu.c = rest
	return &Cursor{doc: cu.doc, c: point}
}

func (d *document) render(b *strings.Builder) {
	for c := d.head; c != nil; c = c.next {
		for _, line := range c.lines {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
}

func (d *document) empty() bool {
	for c := d.head; c != nil; c = c.next {
		if len(c.lines) > 0 {
			return false
		}
	}
	return true
}

// Writer is the code sink for one generation run. It owns the main document,
// the forward-declaration stream, the scope-tracking cursor stacks, and the
// mangling table. A Writer must not be shared between concurrent runs.
type Writer struct {
	main   *document
	cursor *Cursor

	// Protos receives forward declarations; it is flushed before the main
	// document in final output.
	Protos *Cursor
	protos *document

	// DeclarationPoint receives temporary-variable declarations for the
	// enclosing function. Function lowering resets it at each function head.
	DeclarationPoint *Cursor

	declarationLevels []*Cursor
	loopLevels        []*Cursor

	// Push/pop discipline is the generator's responsibility; the counters
	// record total pushes so the discipline is observable from outside.
	DeclarationPushes int
	LoopPushes        int

	prefix  string
	mangled map[string]string
	taken   map[string]bool
}

// New returns an empty Writer. Mangled names that need renaming are prefixed
// with "__mv_".
func New() *Writer {
	main, cur := newDocument()
	protos, protoCur := newDocument()
	return &Writer{
		main:    main,
		cursor:  cur,
		protos:  protos,
		Protos:  protoCur,
		prefix:  "__mv_",
		mangled: make(map[string]string),
		taken:   make(map[string]bool),
	}
}

// EmitLine appends a line at the writer's current position.
func (w *Writer) EmitLine(line string) {
	w.cursor.EmitLine(line)
}

// InsertionPoint returns a stable cursor at the writer's current position.
func (w *Writer) InsertionPoint() *Cursor {
	return w.cursor.InsertionPoint()
}

// Mangle maps a source-level name to a target-level identifier. Clean C
// identifiers that are not reserved words map to themselves; anything else is
// sanitized and prefixed. The mapping is memoized per writer, so repeated
// requests are stable and two distinct inputs never collide.
func (w *Writer) Mangle(name string) string {
	if out, ok := w.mangled[name]; ok {
		return out
	}
	out := name
	if !isCleanIdent(name) || cReserved[name] {
		out = w.prefix + sanitize(name)
	}
	for w.taken[out] {
		out = w.prefix + out
	}
	w.mangled[name] = out
	w.taken[out] = true
	return out
}

// Fresh claims a target-level identifier derived from base: base itself when
// it is clean and unclaimed, a prefixed variant otherwise. Unlike Mangle the
// result is not memoized, so generated names (labels, status variables) never
// alias a source-level name that happens to spell the same.
func (w *Writer) Fresh(base string) string {
	out := base
	if !isCleanIdent(base) || cReserved[base] {
		out = w.prefix + sanitize(base)
	}
	for w.taken[out] {
		out = w.prefix + out
	}
	w.taken[out] = true
	return out
}

// PushDeclarationLevel records a new declaration scope cursor.
func (w *Writer) PushDeclarationLevel(c *Cursor) {
	w.declarationLevels = append(w.declarationLevels, c)
	w.DeclarationPushes++
}

// PopDeclarationLevel removes the innermost declaration scope cursor.
func (w *Writer) PopDeclarationLevel() *Cursor {
	n := len(w.declarationLevels)
	c := w.declarationLevels[n-1]
	w.declarationLevels = w.declarationLevels[:n-1]
	return c
}

// DeclarationDepth returns the current declaration scope nesting depth.
func (w *Writer) DeclarationDepth() int { return len(w.declarationLevels) }

// PushLoopLevel records a new loop scope cursor.
func (w *Writer) PushLoopLevel(c *Cursor) {
	w.loopLevels = append(w.loopLevels, c)
	w.LoopPushes++
}

// PopLoopLevel removes the innermost loop scope cursor.
func (w *Writer) PopLoopLevel() *Cursor {
	n := len(w.loopLevels)
	c := w.loopLevels[n-1]
	w.loopLevels = w.loopLevels[:n-1]
	return c
}

// LoopDepth returns the current loop scope nesting depth.
func (w *Writer) LoopDepth() int { return len(w.loopLevels) }

// String linearizes the document: forward declarations first, then the main
// body, with all insertion-point writes merged in cursor order.
func (w *Writer) String() string {
	var b strings.Builder
	if !w.protos.empty() {
		w.protos.render(&b)
		b.WriteByte('\n')
	}
	w.main.render(&b)
	return b.String()
}

func isCleanIdent(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func sanitize(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

var cReserved = map[string]bool{
	"auto": true, "break": true, "case": true, "char": true, "const": true,
	"continue": true, "default": true, "do": true, "double": true, "else": true,
	"enum": true, "extern": true, "float": true, "for": true, "goto": true,
	"if": true, "inline": true, "int": true, "long": true, "register": true,
	"restrict": true, "return": true, "short": true, "signed": true,
	"sizeof": true, "static": true, "struct": true, "switch": true,
	"typedef": true, "union": true, "unsigned": true, "void": true,
	"volatile": true, "while": true,
}
