package lang

import (
	"math"
	"slices"
	"strconv"
	"strings"
)

// Coerce converts v for storage in a binding or element of type t.
//
// An int widens to float. Arrays convert element-wise, and a nested array of
// one-dimensional ranks reshapes into a multi-dimensional block when it is
// rectangular. Null converts to a null array of any array type. Narrowing
// and unrelated kinds fail with ErrType.
func Coerce(v Value, t Type) (Value, error) {
	if t.IsArray() {
		return coerceArray(v, t)
	}

	switch {
	case t.Kind == KindAny:
		return v, nil
	case v.IsArray():
		return Value{}, cannotAssign(v, t)
	case v.typ.Kind == t.Kind:
		return v, nil
	case v.typ.Kind == KindInt && t.Kind == KindFloat:
		return Float(float64(v.i)), nil
	default:
		return Value{}, cannotAssign(v, t)
	}
}

func coerceArray(v Value, t Type) (Value, error) {
	switch {
	case v.IsNull():
		return NullArray(t), nil
	case !v.IsArray():
		return Value{}, cannotAssign(v, t)
	case v.typ.Equal(t):
		return v, nil
	}

	var (
		dims []int
		data []Value
	)

	switch a := v.arr; {
	case len(a.Dims) == t.Arity():
		dims, data = a.Dims, a.Data

	case len(a.Dims) == 1 && t.Arity() > 1:
		var err error
		if dims, data, err = flatten(v, t.Arity()); err != nil {
			return Value{}, err
		}

	default:
		return Value{}, cannotAssign(v, t)
	}

	out, err := NewArray(t.Elem(), dims...)
	if err != nil {
		return Value{}, err
	}

	for i, x := range data {
		if out.Data[i], err = Coerce(x, t.Elem()); err != nil {
			return Value{}, err
		}
	}

	return ArrayOf(out), nil
}

// flatten collects the elements found depth levels into a nest of
// one-dimensional arrays, along with the extent of each level.
func flatten(v Value, depth int) ([]int, []Value, error) {
	a, ok := v.Array()
	if !ok || a == nil || len(a.Dims) != 1 {
		return nil, nil, ErrShapeMismatch.WithDetail(
			"expected nested one-dimensional arrays, found " +
				v.Type().String(),
		)
	}

	if depth == 1 {
		return slices.Clone(a.Dims), a.Data, nil
	}

	inner := make([]int, depth-1)
	leaves := make([]Value, 0, len(a.Data))

	for i, x := range a.Data {
		d, l, err := flatten(x, depth-1)
		if err != nil {
			return nil, nil, err
		}

		if i == 0 {
			inner = d
		} else if !slices.Equal(inner, d) {
			return nil, nil, ErrShapeMismatch.WithDetail("jagged array")
		}

		leaves = append(leaves, l...)
	}

	return append([]int{a.Dims[0]}, inner...), leaves, nil
}

// arrayLiteral returns a one-dimensional array holding vals. The element type
// is the common type of vals, with int promoted to float when both appear.
func arrayLiteral(vals []Value) (Value, error) {
	elem := Scalar(KindAny)

	for i, v := range vals {
		if i == 0 {
			elem = v.Type()

			continue
		}

		var ok bool
		if elem, ok = unify(elem, v.Type()); !ok {
			return Value{}, ErrType.WithDetail(
				"mixed array elements " + elem.String() + " and " +
					v.Type().String(),
			)
		}
	}

	a, err := NewArray(elem, len(vals))
	if err != nil {
		return Value{}, err
	}

	for i, v := range vals {
		if a.Data[i], err = Coerce(v, elem); err != nil {
			return Value{}, err
		}
	}

	return ArrayOf(a), nil
}

func unify(a, b Type) (Type, bool) {
	switch {
	case a.Equal(b):
		return a, true
	case a.Kind == KindNull && !a.IsArray():
		return b, true
	case b.Kind == KindNull && !b.IsArray():
		return a, true
	case !slices.Equal(a.Ranks, b.Ranks):
		return a, false
	case a.Kind == KindAny:
		return b, true
	case b.Kind == KindAny:
		return a, true
	case a.Kind.isNumeric() && b.Kind.isNumeric():
		return Type{Kind: KindFloat, Ranks: a.Ranks}, true
	default:
		return a, false
	}
}

// Convert constructs a scalar of type t from args, as in "new float3(1, 2, 3)".
// With no arguments it returns the default value of t.
func Convert(t Type, args []Value) (Value, error) {
	if t.IsArray() {
		return Value{}, ErrType.WithDetail("cannot construct array type " +
			t.String() + " from arguments")
	}

	if len(args) == 0 {
		return Zero(t), nil
	}

	if w := t.Kind.width(); w > 1 {
		return convertVector(t, w, args)
	}

	if len(args) != 1 {
		return Value{}, ErrArgument.WithDetail(
			t.String() + " takes 1 argument, found " + strconv.Itoa(len(args)),
		)
	}

	v := args[0]

	switch t.Kind {
	case KindString:
		return String(v.String()), nil

	case KindBool:
		switch {
		case v.is(KindBool):
			return v, nil
		case v.is(KindInt):
			return Bool(v.i != 0), nil
		case v.is(KindString):
			b, err := strconv.ParseBool(strings.TrimSpace(v.s))
			if err != nil {
				return Value{}, ErrArgument.Wrap(err)
			}

			return Bool(b), nil
		}

	case KindInt:
		switch {
		case v.is(KindInt):
			return v, nil
		case v.is(KindFloat):
			if math.IsNaN(v.f[0]) || math.IsInf(v.f[0], 0) {
				return Value{}, ErrArgument.WithDetail(v.String())
			}

			return Int(int64(v.f[0])), nil
		case v.is(KindBool):
			if v.b {
				return Int(1), nil
			}

			return Int(0), nil
		case v.is(KindString):
			i, err := parseInt(strings.TrimSpace(v.s))
			if err != nil {
				return Value{}, ErrArgument.Wrap(err)
			}

			return Int(i), nil
		}

	case KindFloat:
		if f, ok := v.Number(); ok {
			return Float(f), nil
		}

		if s, ok := v.Text(); ok {
			f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return Value{}, ErrArgument.Wrap(err)
			}

			return Float(f), nil
		}
	}

	return Value{}, cannotConvert(v, t)
}

func convertVector(t Type, w int, args []Value) (Value, error) {
	c := make([]float64, w)

	switch {
	case len(args) == w:
		for i, a := range args {
			f, ok := a.Number()
			if !ok {
				return Value{}, cannotConvert(a, t)
			}

			c[i] = f
		}

	case len(args) != 1:
		return Value{}, ErrArgument.WithDetail(
			t.String() + " takes 1 or " + strconv.Itoa(w) +
				" arguments, found " + strconv.Itoa(len(args)),
		)

	case args[0].typ.Kind == t.Kind && !args[0].IsArray():
		return args[0], nil

	case args[0].is(KindString):
		var err error
		if c, err = parseComponents(args[0].s, w); err != nil {
			return Value{}, err
		}

	default:
		f, ok := args[0].Number()
		if !ok {
			return Value{}, cannotConvert(args[0], t)
		}

		for i := range c {
			c[i] = f
		}
	}

	v, _ := Vector(c...)

	return v, nil
}

// parseInt parses a decimal or 0x-prefixed hexadecimal integer.
func parseInt(s string) (int64, error) {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var (
		u   uint64
		err error
	)

	if h, ok := strings.CutPrefix(strings.ToLower(s), "0x"); ok {
		u, err = strconv.ParseUint(h, 16, 64)
	} else {
		u, err = strconv.ParseUint(s, 10, 64)
	}

	if err != nil {
		return 0, err
	}

	switch {
	case neg && u <= 1<<63:
		return -int64(u), nil
	case !neg && u < 1<<63:
		return int64(u), nil
	default:
		return 0, strconv.ErrRange
	}
}

func cannotAssign(v Value, t Type) *Error {
	return ErrType.WithDetail("cannot assign " + v.Type().String() +
		" to " + t.String())
}

func cannotConvert(v Value, t Type) *Error {
	return ErrType.WithDetail("cannot convert " + v.Type().String() +
		" to " + t.String())
}
