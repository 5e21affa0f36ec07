package lang

import (
	"slices"
	"strconv"
	"strings"
)

// Array is one rank of a possibly nested array value: a row-major block of
// elements with len(Dims) dimensions. Elements of a nested rank are
// themselves array values, null until assigned.
type Array struct {
	Elem Type
	Dims []int
	Data []Value
}

// MaxArrayLen bounds the total number of elements in one array rank.
const MaxArrayLen = 1 << 20

// NewArray returns an array of the given dimensions with every element set to
// the default value of elem. The product of dims may not exceed MaxArrayLen.
func NewArray(elem Type, dims ...int) (*Array, error) {
	if len(dims) == 0 {
		return nil, ErrArraySize.WithDetail("no dimensions")
	}

	n := 1

	for _, d := range dims {
		if d < 0 {
			return nil, ErrArraySize.WithDetail(strconv.Itoa(d))
		}

		if d != 0 && n > MaxArrayLen/d {
			return nil, ErrArraySize.WithDetail(
				"more than " + strconv.Itoa(MaxArrayLen) + " elements",
			)
		}

		n *= d
	}

	data := make([]Value, n)

	zero := Zero(elem)
	for i := range data {
		data[i] = zero
	}

	return &Array{Elem: elem, Dims: slices.Clone(dims), Data: data}, nil
}

// BuildArray returns a new array value of type t with the given outermost
// dimensions. Inner ranks of t are left null.
func BuildArray(t Type, dims []int) (Value, error) {
	if !t.IsArray() {
		return Value{}, ErrType.WithDetail("not an array type: " + t.String())
	}

	if len(dims) != t.Arity() {
		return Value{}, ErrArraySize.WithDetail(
			"type " + t.String() + " needs " + strconv.Itoa(t.Arity()) +
				" sizes, found " + strconv.Itoa(len(dims)),
		)
	}

	a, err := NewArray(t.Elem(), dims...)
	if err != nil {
		return Value{}, err
	}

	return ArrayOf(a), nil
}

// Type returns the type of an array value referring to a.
func (a *Array) Type() Type { return ArrayType(a.Elem, len(a.Dims)) }

// Len returns the total number of elements in a.
func (a *Array) Len() int { return len(a.Data) }

// At returns the element at idx, which must hold one index per dimension.
func (a *Array) At(idx ...int) (Value, error) {
	off, err := a.offset(idx)
	if err != nil {
		return Value{}, err
	}

	return a.Data[off], nil
}

// Set stores v converted to the element type at idx.
func (a *Array) Set(v Value, idx ...int) error {
	off, err := a.offset(idx)
	if err != nil {
		return err
	}

	c, err := Coerce(v, a.Elem)
	if err != nil {
		return err
	}

	a.Data[off] = c

	return nil
}

func (a *Array) offset(idx []int) (int, error) {
	if len(idx) != len(a.Dims) {
		return 0, ErrIndexArity.WithDetail(
			"expected " + strconv.Itoa(len(a.Dims)) + ", found " +
				strconv.Itoa(len(idx)),
		)
	}

	off := 0

	for i, x := range idx {
		if x < 0 || x >= a.Dims[i] {
			return 0, ErrIndexOutOfRange.WithDetail(
				"index " + strconv.Itoa(x) + " with length " +
					strconv.Itoa(a.Dims[i]),
			)
		}

		off = off*a.Dims[i] + x
	}

	return off, nil
}

// Equal reports whether a and b have the same shape and pairwise equal
// elements.
func (a *Array) Equal(b *Array) bool {
	if a == b {
		return true
	}

	if a == nil || b == nil || !slices.Equal(a.Dims, b.Dims) {
		return false
	}

	for i := range a.Data {
		if !Equal(a.Data[i], b.Data[i]) {
			return false
		}
	}

	return true
}

// String returns a brace-delimited display form of a.
func (a *Array) String() string {
	return a.format(func(v Value) string {
		if s, ok := v.Text(); ok {
			return strconv.Quote(s)
		}

		return v.String()
	})
}

func (a *Array) literal() string {
	return a.format(Value.Literal)
}

func (a *Array) format(elem func(Value) string) string {
	var sb strings.Builder

	a.formatDim(&sb, 0, 0, elem)

	return sb.String()
}

func (a *Array) formatDim(
	sb *strings.Builder,
	dim, off int,
	elem func(Value) string,
) {
	stride := 1
	for _, d := range a.Dims[dim+1:] {
		stride *= d
	}

	sb.WriteByte('{')

	for i := range a.Dims[dim] {
		if i > 0 {
			sb.WriteString(", ")
		}

		if dim == len(a.Dims)-1 {
			sb.WriteString(elem(a.Data[off+i]))
		} else {
			a.formatDim(sb, dim+1, off+i*stride, elem)
		}
	}

	sb.WriteByte('}')
}

// GetIndex applies each index group of path to successive ranks of v.
// Each group must supply one index per dimension of its rank.
func GetIndex(v Value, path [][]int) (Value, error) {
	for _, idx := range path {
		a, err := indexable(v)
		if err != nil {
			return Value{}, err
		}

		if v, err = a.At(idx...); err != nil {
			return Value{}, err
		}
	}

	return v, nil
}

// SetIndex stores x at the element of v addressed by path, mutating the
// referenced array in place.
func SetIndex(v Value, path [][]int, x Value) error {
	if len(path) == 0 {
		return ErrIndexArity.WithDetail("no index")
	}

	parent, err := GetIndex(v, path[:len(path)-1])
	if err != nil {
		return err
	}

	a, err := indexable(parent)
	if err != nil {
		return err
	}

	return a.Set(x, path[len(path)-1]...)
}

func indexable(v Value) (*Array, error) {
	a, ok := v.Array()

	switch {
	case !ok:
		return nil, ErrNotIndexable.WithDetail(v.Type().String())
	case a == nil:
		return nil, ErrNotIndexable.WithDetail("null " + v.Type().String())
	default:
		return a, nil
	}
}
