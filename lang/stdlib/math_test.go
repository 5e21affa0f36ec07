package stdlib

import (
	"errors"
	"testing"

	"github.com/ardnew/vexpr/lang"
)

func TestBuiltins_Values(t *testing.T) {
	r := New()

	tests := []struct {
		name string
		src  string
		want lang.Value
	}{
		// Math
		{"abs int", "abs(-3)", lang.Int(3)},
		{"abs float", "abs(-1.5)", lang.Float(1.5)},
		{"abs vector", "abs(new float2(-1, 2))", lang.Vec2(lang.Float2{X: 1, Y: 2})},
		{"floor float", "floor(2.7)", lang.Float(2)},
		{"floor int", "floor(3)", lang.Int(3)},
		{"ceil", "ceil(2.1)", lang.Float(3)},
		{"round vector", "round(new float2(1.4, 1.6))", lang.Vec2(lang.Float2{X: 1, Y: 2})},
		{"sqrt int", "sqrt(16)", lang.Float(4)},
		{"pow", "pow(2, 10)", lang.Float(1024)},
		{"sin zero", "sin(0)", lang.Float(0)},
		{"cos zero", "cos(0)", lang.Float(1)},
		{"min ints", "min(3, 1, 2)", lang.Int(1)},
		{"min keeps kind", "min(1, 2.5)", lang.Int(1)},
		{"max mixed", "max(1, 2.5)", lang.Float(2.5)},
		{"max single", "max(7)", lang.Int(7)},
		{"clamp high", "clamp(5, 0, 3)", lang.Int(3)},
		{"clamp low", "clamp(-1, 0, 3)", lang.Int(0)},
		{"clamp inside", "clamp(1.5, 0, 3)", lang.Float(1.5)},
		{"lerp numbers", "lerp(0, 10, 0.5)", lang.Float(5)},
		{
			"lerp vectors",
			"lerp(new float2(0, 0), new float2(2, 4), 0.5)",
			lang.Vec2(lang.Float2{X: 1, Y: 2}),
		},

		// Vectors
		{"dot", "dot(new float3(1, 2, 3), new float3(4, 5, 6))", lang.Float(32)},
		{"length", "length(new float2(3, 4))", lang.Float(5)},
		{"normalize", "normalize(new float2(3, 4))", lang.Vec2(lang.Float2{X: 0.6, Y: 0.8})},
		{"normalize zero", "normalize(new float2(0, 0))", lang.Vec2(lang.Float2{})},
		{
			"cross",
			"cross(new float3(1, 0, 0), new float3(0, 1, 0))",
			lang.Vec3(lang.Float3{Z: 1}),
		},

		// Text
		{"len string", `len("héllo")`, lang.Int(5)},
		{"len array", "len({1, 2, 3})", lang.Int(3)},
		{"len vector", "len(new float4(0))", lang.Int(4)},
		{"upper", `upper("abc")`, lang.String("ABC")},
		{"lower", `lower("ABC")`, lang.String("abc")},
		{"trim", `trim("  x ")`, lang.String("x")},
		{"str", "str(1.5)", lang.String("1.5")},
		{"toint", `toint("0x10")`, lang.Int(16)},
		{"tofloat", "tofloat(2)", lang.Float(2)},
		{"nested", `len(str(abs(-120)))`, lang.Int(3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := evaluate(t, r, tt.src)
			if err != nil {
				t.Fatalf("evaluate error: %v", err)
			}

			if !sameValue(got, tt.want) {
				t.Errorf("expected %s, got %s", tt.want.Literal(), got.Literal())
			}
		})
	}
}

func TestBuiltins_Errors(t *testing.T) {
	r := New()

	tests := []struct {
		name    string
		src     string
		wantErr error
	}{
		{"abs no args", "abs()", lang.ErrArgument},
		{"abs string", `abs("x")`, lang.ErrArgument},
		{"pow arity", "pow(1)", lang.ErrArgument},
		{"min string", `min(1, "a")`, lang.ErrArgument},
		{"lerp bool", "lerp(true, false, 1)", lang.ErrKindMismatch},
		{"dot widths", "dot(new float2(1), new float3(1))", lang.ErrArgument},
		{"dot scalar", "dot(1, 2)", lang.ErrArgument},
		{"cross float2", "cross(new float2(1), new float2(1))", lang.ErrArgument},
		{"len bool", "len(true)", lang.ErrArgument},
		{"upper int", "upper(1)", lang.ErrArgument},
		{"toint garbage", `toint("x")`, lang.ErrArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := evaluate(t, r, tt.src)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}

			if !errors.Is(err, lang.ErrCall) {
				t.Errorf("expected call error, got %v", err)
			}

			if _, ok := lang.PositionOf(err); !ok {
				t.Errorf("expected position in %v", err)
			}
		})
	}
}
