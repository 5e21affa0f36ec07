package lang

import (
	"encoding/json"
	"reflect"
	"slices"
)

// ToMap converts a node to a native Go map structure describing its kind,
// position and children.
func ToMap(n Node) map[string]any {
	if n == nil {
		return nil
	}

	m := map[string]any{"pos": n.Pos().String()}

	switch n := n.(type) {
	case *Sequence:
		m["node"] = "sequence"
		m["statements"] = toMaps(n.Statements)

	case *Assign:
		m["node"] = "assign"
		m["op"] = assignSymbol(n.Op)
		m["target"] = ToMap(n.Target)
		m["value"] = ToMap(n.Value)

	case *Increment:
		m["node"] = "increment"
		m["op"] = n.Op.String() + n.Op.String()
		m["prefix"] = n.Prefix
		m["target"] = ToMap(n.Target)

	case *Declare:
		m["node"] = "declare"
		m["type"] = n.Type.String()
		m["name"] = n.Name

		if n.Init != nil {
			m["init"] = ToMap(n.Init)
		}

	case *Ternary:
		m["node"] = "ternary"
		m["cond"] = ToMap(n.Cond)
		m["then"] = ToMap(n.Then)
		m["else"] = ToMap(n.Else)

	case *Logical:
		m["node"] = "logical"
		m["op"] = n.Op.String()
		m["operands"] = toMaps(n.Operands)

	case *Compare:
		m["node"] = "compare"
		m["op"] = n.Op.String()
		m["left"] = ToMap(n.Left)
		m["right"] = ToMap(n.Right)

	case *Chain:
		terms := make([]any, len(n.Terms))
		for i, t := range n.Terms {
			terms[i] = map[string]any{
				"op":      t.Op.String(),
				"operand": ToMap(t.Operand),
			}
		}

		m["node"] = "chain"
		m["left"] = ToMap(n.Left)
		m["terms"] = terms

	case *UnaryExpr:
		m["node"] = "unary"
		m["op"] = n.Op.String()
		m["operand"] = ToMap(n.Operand)

	case *Index:
		groups := make([]any, len(n.Groups))
		for i, g := range n.Groups {
			groups[i] = toMaps(g)
		}

		m["node"] = "index"
		m["base"] = ToMap(n.Base)
		m["groups"] = groups

	case *Literal:
		m["node"] = "literal"
		m["type"] = n.Value.Type().String()
		m["value"] = n.Value.Native()

	case *Variable:
		m["node"] = "variable"
		m["name"] = n.Name

	case *Call:
		m["node"] = "call"
		m["name"] = n.Name
		m["args"] = toMaps(n.Args)

	case *Group:
		m["node"] = "group"
		m["inner"] = ToMap(n.Inner)

	case *ArrayLiteral:
		m["node"] = "array"
		m["elements"] = toMaps(n.Elements)

	case *NewValue:
		m["node"] = "new"
		m["type"] = n.Type.String()
		m["args"] = toMaps(n.Args)

	case *NewArrayExpr:
		m["node"] = "new_array"
		m["type"] = n.Type.String()

		if n.Sizes != nil {
			m["sizes"] = toMaps(n.Sizes)
		}

		if n.Init != nil {
			m["init"] = ToMap(n.Init)
		}

	default:
		m["node"] = reflect.TypeOf(n).String()
	}

	return m
}

func toMaps(nodes []Node) []any {
	out := make([]any, len(nodes))
	for i, n := range nodes {
		out[i] = ToMap(n)
	}

	return out
}

// MarshalJSON implements json.Marshaler for Program.
func (p *Program) MarshalJSON() ([]byte, error) {
	return json.Marshal(ToMap(p.Root))
}

// Native converts v to a native Go value: nil, bool, int64, float64,
// []float64 for vectors, string, or nested []any for arrays. A
// multi-dimensional array becomes nested slices, one level per dimension.
func (v Value) Native() any {
	if v.IsArray() {
		if v.arr == nil {
			return nil
		}

		return v.arr.native(0, 0)
	}

	switch v.typ.Kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f[0]
	case KindFloat2, KindFloat3, KindFloat4:
		return slices.Clone(v.f[:v.typ.Kind.width()])
	case KindString:
		return v.s
	default:
		return nil
	}
}

func (a *Array) native(dim, off int) []any {
	stride := 1
	for _, d := range a.Dims[dim+1:] {
		stride *= d
	}

	out := make([]any, a.Dims[dim])

	for i := range out {
		if dim == len(a.Dims)-1 {
			out[i] = a.Data[off+i].Native()
		} else {
			out[i] = a.native(dim+1, off+i*stride)
		}
	}

	return out
}

// ValueOf converts a native Go value to a Value. Slices become
// one-dimensional arrays typed by their elements; []float64 of length 2 to 4
// is not treated as a vector.
func ValueOf(x any) (Value, error) {
	switch x := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return x, nil
	case bool:
		return Bool(x), nil
	case int:
		return Int(int64(x)), nil
	case int8:
		return Int(int64(x)), nil
	case int16:
		return Int(int64(x)), nil
	case int32:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case uint8:
		return Int(int64(x)), nil
	case uint16:
		return Int(int64(x)), nil
	case uint32:
		return Int(int64(x)), nil
	case float32:
		return Float(float64(x)), nil
	case float64:
		return Float(x), nil
	case string:
		return String(x), nil
	case Float2:
		return Vec2(x), nil
	case Float3:
		return Vec3(x), nil
	case Float4:
		return Vec4(x), nil
	}

	rv := reflect.ValueOf(x)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return Value{}, ErrType.WithDetail("unsupported native type " +
			rv.Type().String())
	}

	vals := make([]Value, rv.Len())

	for i := range vals {
		v, err := ValueOf(rv.Index(i).Interface())
		if err != nil {
			return Value{}, err
		}

		vals[i] = v
	}

	return arrayLiteral(vals)
}
