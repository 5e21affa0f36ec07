package lang

import (
	"bytes"
	"strings"
	"sync"
)

// Padding selects the spacing written around an operator symbol.
type Padding uint8

// Padding policies.
const (
	PadNone   Padding = iota // "-x", "x++"
	PadSuffix                // "a, b", "a; b"
	PadBoth                  // "a + b", "x = 1"
)

var bufferPool = sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

// Writer renders nodes as canonical source text.
type Writer struct {
	buf *bytes.Buffer
}

// NewWriter returns a Writer backed by a pooled buffer. Call Release when
// done to return the buffer to the pool.
func NewWriter() *Writer {
	buf, _ := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()

	return &Writer{buf: buf}
}

// Release returns the buffer to the pool. The Writer must not be used
// afterward.
func (w *Writer) Release() {
	if w.buf != nil {
		bufferPool.Put(w.buf)
		w.buf = nil
	}
}

// String returns the text written so far.
func (w *Writer) String() string { return w.buf.String() }

// WriteString appends s, separating it from a preceding "+" or "-" that
// would otherwise lex together with s as "++" or "--".
func (w *Writer) WriteString(s string) {
	if n := w.buf.Len(); n > 0 && s != "" {
		last := w.buf.Bytes()[n-1]
		if (last == '+' || last == '-') && s[0] == last {
			w.buf.WriteByte(' ')
		}
	}

	w.buf.WriteString(s)
}

// Op writes an operator symbol with the given padding.
func (w *Writer) Op(sym string, pad Padding) {
	switch pad {
	case PadBoth:
		w.buf.WriteByte(' ')
		w.buf.WriteString(sym)
		w.buf.WriteByte(' ')
	case PadSuffix:
		w.buf.WriteString(sym)
		w.buf.WriteByte(' ')
	default:
		w.WriteString(sym)
	}
}

// Node writes n.
func (w *Writer) Node(n Node) { n.Write(w) }

// List writes nodes separated by sep with suffix padding.
func (w *Writer) List(nodes []Node, sep string) {
	for i, n := range nodes {
		if i > 0 {
			w.Op(sep, PadSuffix)
		}

		n.Write(w)
	}
}

// Format returns the canonical source text of n.
func Format(n Node) string {
	w := NewWriter()
	defer w.Release()

	n.Write(w)

	return w.String()
}

func (n *Sequence) Write(w *Writer) { w.List(n.Statements, ";") }

func (n *Assign) Write(w *Writer) {
	w.Node(n.Target)
	w.Op(assignSymbol(n.Op), PadBoth)
	w.Node(n.Value)
}

func assignSymbol(op Op) string {
	switch op {
	case OpAnd:
		return "&="
	case OpOr:
		return "|="
	default:
		return op.String() + "="
	}
}

func (n *Increment) Write(w *Writer) {
	sym := "++"
	if n.Op == OpSub {
		sym = "--"
	}

	if n.Prefix {
		w.Op(sym, PadNone)
		w.Node(n.Target)

		return
	}

	w.Node(n.Target)
	w.Op(sym, PadNone)
}

func (n *Declare) Write(w *Writer) {
	w.WriteString(n.Type.String())
	w.WriteString(" ")
	w.WriteString(n.Name)

	if n.Init != nil {
		w.Op("=", PadBoth)
		w.Node(n.Init)
	}
}

func (n *Ternary) Write(w *Writer) {
	w.Node(n.Cond)
	w.Op("?", PadBoth)
	w.Node(n.Then)
	w.Op(":", PadBoth)
	w.Node(n.Else)
}

func (n *Logical) Write(w *Writer) {
	for i, operand := range n.Operands {
		if i > 0 {
			w.Op(n.Op.String(), PadBoth)
		}

		w.Node(operand)
	}
}

func (n *Compare) Write(w *Writer) {
	w.Node(n.Left)
	w.Op(n.Op.String(), PadBoth)
	w.Node(n.Right)
}

func (n *Chain) Write(w *Writer) {
	w.Node(n.Left)

	for _, t := range n.Terms {
		w.Op(t.Op.String(), PadBoth)
		w.Node(t.Operand)
	}
}

func (n *UnaryExpr) Write(w *Writer) {
	w.Op(n.Op.String(), PadNone)
	w.Node(n.Operand)
}

func (n *Index) Write(w *Writer) {
	w.Node(n.Base)

	for _, g := range n.Groups {
		w.WriteString("[")
		w.List(g, ",")
		w.WriteString("]")
	}
}

func (n *Literal) Write(w *Writer) {
	if n.Raw == "" {
		w.WriteString(n.Value.Literal())

		return
	}

	w.WriteString(n.Raw)
}

func (n *Variable) Write(w *Writer) { w.WriteString(n.Name) }

func (n *Call) Write(w *Writer) {
	w.WriteString(n.Name)
	w.WriteString("(")
	w.List(n.Args, ",")
	w.WriteString(")")
}

func (n *Group) Write(w *Writer) {
	w.WriteString("(")
	w.Node(n.Inner)
	w.WriteString(")")
}

func (n *ArrayLiteral) Write(w *Writer) {
	w.WriteString("{")
	w.List(n.Elements, ",")
	w.WriteString("}")
}

func (n *NewValue) Write(w *Writer) {
	w.WriteString("new ")
	w.WriteString(n.Type.String())
	w.WriteString("(")
	w.List(n.Args, ",")
	w.WriteString(")")
}

func (n *NewArrayExpr) Write(w *Writer) {
	w.WriteString("new ")
	w.WriteString(n.Type.Kind.String())
	w.WriteString("[")

	if n.Sizes != nil {
		w.List(n.Sizes, ",")
	} else {
		w.WriteString(strings.Repeat(",", n.Type.Arity()-1))
	}

	w.WriteString("]")

	for _, arity := range n.Type.Ranks[1:] {
		w.WriteString("[" + strings.Repeat(",", arity-1) + "]")
	}

	if n.Init != nil {
		w.Node(n.Init)
	}
}
