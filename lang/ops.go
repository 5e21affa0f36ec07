package lang

import (
	"log/slog"
	"math"
	"strconv"
	"strings"
)

// Op identifies a unary or binary operator.
type Op uint8

// Operators.
const (
	OpNone Op = iota
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpAnd
	OpOr
	OpEq
	OpNotEq
	OpLess
	OpGreater
	OpLessEq
	OpGreaterEq
	OpNeg
	OpNot
	OpPos
)

var opSymbol = [...]string{
	OpNone:      "",
	OpAdd:       "+",
	OpSub:       "-",
	OpMul:       "*",
	OpDiv:       "/",
	OpMod:       "%",
	OpAnd:       "&&",
	OpOr:        "||",
	OpEq:        "==",
	OpNotEq:     "!=",
	OpLess:      "<",
	OpGreater:   ">",
	OpLessEq:    "<=",
	OpGreaterEq: ">=",
	OpNeg:       "-",
	OpNot:       "!",
	OpPos:       "+",
}

// String returns the source symbol of op.
func (op Op) String() string {
	if int(op) < len(opSymbol) {
		return opSymbol[op]
	}

	return "Op(" + strconv.Itoa(int(op)) + ")"
}

// Operator tables used by the parser, keyed by source symbol.
var (
	additiveOps       = map[string]Op{"+": OpAdd, "-": OpSub}
	multiplicativeOps = map[string]Op{"*": OpMul, "/": OpDiv, "%": OpMod}
	equalityOps       = map[string]Op{"==": OpEq, "!=": OpNotEq}
	relationalOps     = map[string]Op{
		"<": OpLess, ">": OpGreater, "<=": OpLessEq, ">=": OpGreaterEq,
	}
	unaryOps  = map[string]Op{"-": OpNeg, "!": OpNot, "+": OpPos}
	assignOps = map[string]Op{
		"=":  OpNone,
		"+=": OpAdd,
		"-=": OpSub,
		"*=": OpMul,
		"/=": OpDiv,
		"%=": OpMod,
		"&=": OpAnd,
		"|=": OpOr,
	}
)

// Binary applies a binary operator to a and b.
//
// Arithmetic promotes int to float when the operands are mixed, applies
// componentwise to vectors of equal width, and broadcasts a scalar across a
// vector. Add concatenates when either operand is a string. Logical
// operators require bool on both sides. Relational operators compare
// numbers and strings. Integer division or modulus by zero fails; float
// division follows IEEE 754.
func Binary(op Op, a, b Value) (Value, error) {
	switch op {
	case OpEq:
		return Bool(Equal(a, b)), nil

	case OpNotEq:
		return Bool(!Equal(a, b)), nil

	case OpAnd, OpOr:
		x, xok := a.Bool()
		y, yok := b.Bool()

		if !xok || !yok {
			return Value{}, mismatch(op, a, b)
		}

		if op == OpAnd {
			return Bool(x && y), nil
		}

		return Bool(x || y), nil

	case OpLess, OpGreater, OpLessEq, OpGreaterEq:
		return compare(op, a, b)

	case OpAdd, OpSub, OpMul, OpDiv, OpMod:
		if op == OpAdd && (a.is(KindString) || b.is(KindString)) {
			return String(a.String() + b.String()), nil
		}

		return arithmetic(op, a, b)

	default:
		return Value{}, ErrOperator.WithDetail("not a binary operator: " +
			op.String())
	}
}

// Unary applies a prefix operator to v.
func Unary(op Op, v Value) (Value, error) {
	switch op {
	case OpPos:
		if !v.IsArray() {
			return v, nil
		}

	case OpNeg:
		if i, ok := v.Int(); ok {
			return Int(-i), nil
		}

		if !v.IsArray() && v.typ.Kind.width() > 0 {
			for i := range v.typ.Kind.width() {
				v.f[i] = -v.f[i]
			}

			return v, nil
		}

	case OpNot:
		if b, ok := v.Bool(); ok {
			return Bool(!b), nil
		}

	default:
		return Value{}, ErrOperator.WithDetail("not a unary operator: " +
			op.String())
	}

	return Value{}, ErrKindMismatch.
		WithDetail(op.String() + v.Type().String()).
		With(slog.String("operator", op.String()),
			slog.String("operand", v.Type().String()))
}

// Equal reports whether a and b are equal. It never fails: ints and floats
// compare numerically, vectors componentwise, arrays by shape and elements,
// and values of unrelated kinds are unequal.
func Equal(a, b Value) bool {
	if a.IsArray() || b.IsArray() {
		switch {
		case a.IsNull() && b.IsNull():
			return true
		case !a.IsArray() || !b.IsArray():
			return false
		default:
			return a.arr.Equal(b.arr)
		}
	}

	if x, ok := a.Number(); ok {
		if y, ok := b.Number(); ok {
			if a.is(KindInt) && b.is(KindInt) {
				return a.i == b.i
			}

			return x == y
		}

		return false
	}

	if a.typ.Kind != b.typ.Kind {
		return false
	}

	switch a.typ.Kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindString:
		return a.s == b.s
	default:
		return a.f == b.f
	}
}

// CastInt converts an index value to an int. Ints convert directly; floats
// convert only when integral and within the range of int.
func CastInt(v Value) (int, error) {
	if i, ok := v.Int(); ok {
		return int(i), nil
	}

	if f, ok := v.Float(); ok && f == math.Trunc(f) &&
		f >= math.MinInt64 && f < math.MaxInt64 {
		return int(f), nil
	}

	return 0, ErrInvalidIndex.WithDetail(v.Type().String() + " " + v.Literal())
}

func compare(op Op, a, b Value) (Value, error) {
	var c int

	switch {
	case a.is(KindInt) && b.is(KindInt):
		c = cmpOrdered(a.i, b.i)

	case a.is(KindString) && b.is(KindString):
		c = strings.Compare(a.s, b.s)

	default:
		x, xok := a.Number()
		y, yok := b.Number()

		if !xok || !yok {
			return Value{}, mismatch(op, a, b)
		}

		if math.IsNaN(x) || math.IsNaN(y) {
			return Bool(false), nil
		}

		c = cmpOrdered(x, y)
	}

	switch op {
	case OpLess:
		return Bool(c < 0), nil
	case OpGreater:
		return Bool(c > 0), nil
	case OpLessEq:
		return Bool(c <= 0), nil
	default:
		return Bool(c >= 0), nil
	}
}

func cmpOrdered[T int64 | float64](x, y T) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	default:
		return 0
	}
}

func arithmetic(op Op, a, b Value) (Value, error) {
	if a.IsArray() || b.IsArray() {
		return Value{}, mismatch(op, a, b)
	}

	if a.is(KindInt) && b.is(KindInt) {
		return intArithmetic(op, a.i, b.i)
	}

	wa, wb := numericWidth(a), numericWidth(b)
	if wa == 0 || wb == 0 || (wa != wb && wa != 1 && wb != 1) {
		return Value{}, mismatch(op, a, b)
	}

	// Promote ints to float so that only float and vector widths remain.
	if a.is(KindInt) {
		a = Float(float64(a.i))
	}

	if b.is(KindInt) {
		b = Float(float64(b.i))
	}

	r := a
	if wb > wa {
		r = b
	}

	for i := range max(wa, wb) {
		p, q := a.f[0], b.f[0]
		if wa > 1 {
			p = a.f[i]
		}

		if wb > 1 {
			q = b.f[i]
		}

		r.f[i] = floatArithmetic(op, p, q)
	}

	return r, nil
}

// numericWidth returns the component count of a numeric scalar or vector,
// or 0 for anything else.
func numericWidth(v Value) int {
	if v.is(KindInt) {
		return 1
	}

	return v.typ.Kind.width()
}

func intArithmetic(op Op, x, y int64) (Value, error) {
	switch op {
	case OpAdd:
		return Int(x + y), nil
	case OpSub:
		return Int(x - y), nil
	case OpMul:
		return Int(x * y), nil
	}

	if y == 0 {
		return Value{}, ErrDivideByZero.With(
			slog.String("operator", op.String()),
			slog.Int64("left", x),
		)
	}

	if op == OpDiv {
		return Int(x / y), nil
	}

	return Int(x % y), nil
}

func floatArithmetic(op Op, x, y float64) float64 {
	switch op {
	case OpAdd:
		return x + y
	case OpSub:
		return x - y
	case OpMul:
		return x * y
	case OpDiv:
		return x / y
	default:
		return math.Mod(x, y)
	}
}

func mismatch(op Op, a, b Value) *Error {
	return ErrKindMismatch.
		WithDetail(a.Type().String() + " " + op.String() + " " +
			b.Type().String()).
		With(
			slog.String("operator", op.String()),
			slog.String("left", a.Type().String()),
			slog.String("right", b.Type().String()),
		)
}
