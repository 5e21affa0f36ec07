package lang

import (
	"math"
	"slices"
	"strconv"
	"strings"
)

// Kind is the tag of a Value.
type Kind uint8

// Value kinds.
const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindFloat2
	KindFloat3
	KindFloat4
	KindString

	// KindAny is never the kind of a Value. It is the declared type of
	// bindings created by assignment to an undeclared name, which accept a
	// value of any kind.
	KindAny
)

// String returns the type keyword for k.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindFloat2:
		return "float2"
	case KindFloat3:
		return "float3"
	case KindFloat4:
		return "float4"
	case KindString:
		return "string"
	case KindAny:
		return "any"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// width returns the number of float components of a vector kind, 1 for
// float, and 0 otherwise.
func (k Kind) width() int {
	switch k {
	case KindFloat:
		return 1
	case KindFloat2:
		return 2
	case KindFloat3:
		return 3
	case KindFloat4:
		return 4
	default:
		return 0
	}
}

func (k Kind) isNumeric() bool { return k == KindInt || k == KindFloat }

func (k Kind) isVector() bool { return k.width() > 1 }

// vectorKind returns the vector kind with n components.
func vectorKind(n int) (Kind, bool) {
	switch n {
	case 2:
		return KindFloat2, true
	case 3:
		return KindFloat3, true
	case 4:
		return KindFloat4, true
	default:
		return KindNull, false
	}
}

// kindNamed returns the kind of a type keyword.
func kindNamed(name string) (Kind, bool) {
	switch name {
	case "bool":
		return KindBool, true
	case "int":
		return KindInt, true
	case "float":
		return KindFloat, true
	case "float2":
		return KindFloat2, true
	case "float3":
		return KindFloat3, true
	case "float4":
		return KindFloat4, true
	case "string":
		return KindString, true
	default:
		return KindNull, false
	}
}

// Type is a value kind with zero or more array ranks. Ranks holds the arity
// of each rank from outermost to innermost: int[] is {1}, int[,] is {2}, and
// int[][,] is an array of two-dimensional int arrays, {1, 2}.
type Type struct {
	Kind  Kind
	Ranks []int
}

// Scalar returns the non-array type of kind k.
func Scalar(k Kind) Type { return Type{Kind: k} }

// ArrayType returns the type of an array with the given arity whose elements
// have type elem.
func ArrayType(elem Type, arity int) Type {
	return Type{
		Kind:  elem.Kind,
		Ranks: append([]int{arity}, elem.Ranks...),
	}
}

// IsArray reports whether t has at least one rank.
func (t Type) IsArray() bool { return len(t.Ranks) > 0 }

// Arity returns the number of dimensions of the outermost rank of t.
func (t Type) Arity() int {
	if !t.IsArray() {
		return 0
	}

	return t.Ranks[0]
}

// Elem returns the element type of an array type, or t itself.
func (t Type) Elem() Type {
	if !t.IsArray() {
		return t
	}

	return Type{Kind: t.Kind, Ranks: t.Ranks[1:]}
}

// Equal reports whether t and u denote the same type.
func (t Type) Equal(u Type) bool {
	return t.Kind == u.Kind && slices.Equal(t.Ranks, u.Ranks)
}

// String returns the source spelling of t, e.g. "float[,][]".
func (t Type) String() string {
	var sb strings.Builder

	sb.WriteString(t.Kind.String())

	for _, n := range t.Ranks {
		sb.WriteByte('[')
		sb.WriteString(strings.Repeat(",", n-1))
		sb.WriteByte(']')
	}

	return sb.String()
}

// ParseType parses the source spelling of a type.
func ParseType(s string) (Type, error) {
	l, err := NewLexer("", s)
	if err != nil {
		return Type{}, err
	}

	tok := l.Token()
	if tok.Kind != TokenType {
		return Type{}, ErrUnknownType.WithPosition(tok.Pos).
			WithDetail(tok.String())
	}

	kind, _ := kindNamed(tok.Text)
	t := Scalar(kind)

	if err := l.Next(); err != nil {
		return Type{}, err
	}

	for l.Token().Is("[") {
		arity, err := scanArity(l)
		if err != nil {
			return Type{}, err
		}

		t.Ranks = append(t.Ranks, arity)
	}

	if tok := l.Token(); tok.Kind != TokenEOF {
		return Type{}, ErrUnexpectedToken.WithPosition(tok.Pos).
			WithDetail(tok.String())
	}

	return t, nil
}

// scanArity consumes a rank group containing only commas, "[,,]", and
// returns its arity.
func scanArity(l *Lexer) (int, error) {
	if err := l.Next(); err != nil { // skip '['
		return 0, err
	}

	arity := 1

	for l.Token().Is(",") {
		arity++

		if err := l.Next(); err != nil {
			return 0, err
		}
	}

	if tok := l.Token(); !tok.Is("]") {
		return 0, ErrUnexpectedToken.WithPosition(tok.Pos).
			WithDetail("expected \"]\", found " + tok.String())
	}

	return arity, l.Next()
}

// Value is a tagged union holding exactly one datum of one kind. Array
// values refer to a shared *Array, so copies of an array value alias the
// same elements.
type Value struct {
	typ Type
	b   bool
	i   int64
	f   [4]float64
	s   string
	arr *Array
}

// Null returns the null value.
func Null() Value { return Value{} }

// Bool returns a bool value.
func Bool(b bool) Value { return Value{typ: Scalar(KindBool), b: b} }

// Int returns an int value.
func Int(i int64) Value { return Value{typ: Scalar(KindInt), i: i} }

// Float returns a float value.
func Float(f float64) Value {
	return Value{typ: Scalar(KindFloat), f: [4]float64{f}}
}

// Vec2 returns a float2 value.
func Vec2(v Float2) Value {
	return Value{typ: Scalar(KindFloat2), f: [4]float64{v.X, v.Y}}
}

// Vec3 returns a float3 value.
func Vec3(v Float3) Value {
	return Value{typ: Scalar(KindFloat3), f: [4]float64{v.X, v.Y, v.Z}}
}

// Vec4 returns a float4 value.
func Vec4(v Float4) Value {
	return Value{typ: Scalar(KindFloat4), f: [4]float64{v.X, v.Y, v.Z, v.W}}
}

// Vector returns the float, float2, float3 or float4 value with the given
// components.
func Vector(c ...float64) (Value, bool) {
	if len(c) == 1 {
		return Float(c[0]), true
	}

	kind, ok := vectorKind(len(c))
	if !ok {
		return Value{}, false
	}

	v := Value{typ: Scalar(kind)}
	copy(v.f[:], c)

	return v, true
}

// String returns a string value.
func String(s string) Value { return Value{typ: Scalar(KindString), s: s} }

// ArrayOf returns an array value referring to a.
func ArrayOf(a *Array) Value { return Value{typ: a.Type(), arr: a} }

// NullArray returns the null value of array type t.
func NullArray(t Type) Value { return Value{typ: t} }

// Zero returns the default value of type t.
func Zero(t Type) Value {
	switch {
	case t.IsArray():
		return NullArray(t)
	case t.Kind == KindAny:
		return Null()
	default:
		return Value{typ: t}
	}
}

// Kind returns the kind of v. For arrays it is the kind of the innermost
// elements; use IsArray to distinguish.
func (v Value) Kind() Kind { return v.typ.Kind }

// Type returns the full type of v.
func (v Value) Type() Type { return v.typ }

// IsArray reports whether v is an array value, possibly null.
func (v Value) IsArray() bool { return v.typ.IsArray() }

// IsNull reports whether v is null or a null array.
func (v Value) IsNull() bool {
	if v.IsArray() {
		return v.arr == nil
	}

	return v.typ.Kind == KindNull
}

// Bool returns the datum of a bool value.
func (v Value) Bool() (bool, bool) {
	return v.b, v.is(KindBool)
}

// Int returns the datum of an int value.
func (v Value) Int() (int64, bool) {
	return v.i, v.is(KindInt)
}

// Float returns the datum of a float value.
func (v Value) Float() (float64, bool) {
	return v.f[0], v.is(KindFloat)
}

// Number returns an int or float value as a float64.
func (v Value) Number() (float64, bool) {
	switch {
	case v.is(KindInt):
		return float64(v.i), true
	case v.is(KindFloat):
		return v.f[0], true
	default:
		return 0, false
	}
}

// Float2 returns the datum of a float2 value.
func (v Value) Float2() (Float2, bool) {
	return Float2{v.f[0], v.f[1]}, v.is(KindFloat2)
}

// Float3 returns the datum of a float3 value.
func (v Value) Float3() (Float3, bool) {
	return Float3{v.f[0], v.f[1], v.f[2]}, v.is(KindFloat3)
}

// Float4 returns the datum of a float4 value.
func (v Value) Float4() (Float4, bool) {
	return Float4{v.f[0], v.f[1], v.f[2], v.f[3]}, v.is(KindFloat4)
}

// Components returns the components of a float or vector value.
func (v Value) Components() ([]float64, bool) {
	if v.IsArray() {
		return nil, false
	}

	n := v.typ.Kind.width()
	if n == 0 {
		return nil, false
	}

	return slices.Clone(v.f[:n]), true
}

// Text returns the datum of a string value.
func (v Value) Text() (string, bool) {
	return v.s, v.is(KindString)
}

// Array returns the array referred to by an array value. A null array
// returns nil and true.
func (v Value) Array() (*Array, bool) {
	return v.arr, v.IsArray()
}

func (v Value) is(k Kind) bool {
	return v.typ.Kind == k && !v.IsArray()
}

// String returns the display form of v. Strings are returned without quotes.
func (v Value) String() string {
	if v.IsArray() {
		if v.arr == nil {
			return "null"
		}

		return v.arr.String()
	}

	switch v.typ.Kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return formatFloat(v.f[0])
	case KindFloat2:
		return Float2{v.f[0], v.f[1]}.String()
	case KindFloat3:
		return Float3{v.f[0], v.f[1], v.f[2]}.String()
	case KindFloat4:
		return Float4{v.f[0], v.f[1], v.f[2], v.f[3]}.String()
	case KindString:
		return v.s
	default:
		return "null"
	}
}

// Literal returns source text that evaluates to a value equal to v.
func (v Value) Literal() string {
	if v.IsArray() {
		if v.arr == nil {
			return "null"
		}

		return v.arr.literal()
	}

	switch v.typ.Kind {
	case KindFloat:
		return floatLiteral(v.f[0])
	case KindFloat2, KindFloat3, KindFloat4:
		n := v.typ.Kind.width()
		part := make([]string, n)

		for i := range n {
			part[i] = floatLiteral(v.f[i])
		}

		return "new " + v.typ.Kind.String() +
			"(" + strings.Join(part, ", ") + ")"
	case KindString:
		return strconv.Quote(v.s)
	default:
		return v.String()
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// floatLiteral formats f so that it lexes as a real literal.
func floatLiteral(f float64) string {
	switch {
	case math.IsNaN(f):
		return "(0.0 / 0.0)"
	case math.IsInf(f, 1):
		return "(1.0 / 0.0)"
	case math.IsInf(f, -1):
		return "(-1.0 / 0.0)"
	}

	s := formatFloat(f)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}

	return s
}
