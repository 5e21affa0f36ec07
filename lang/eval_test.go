package lang

import (
	"context"
	"errors"
	"strings"
	"testing"
)

var errBoom = errors.New("boom")

var testHost = Functions{
	"sum": func(_ context.Context, args []Value) (Value, error) {
		var total int64

		for _, a := range args {
			i, ok := a.Int()
			if !ok {
				return Value{}, ErrArgument.WithDetail(a.Type().String())
			}

			total += i
		}

		return Int(total), nil
	},
	"fail": func(context.Context, []Value) (Value, error) {
		return Value{}, errBoom
	},
}

func evaluate(t *testing.T, src string, opts ...Option) (Value, error) {
	t.Helper()

	prog, err := Compile(t.Context(), src, opts...)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	return prog.Evaluate(t.Context(), testHost)
}

func sameValue(a, b Value) bool {
	return a.Type().Equal(b.Type()) && Equal(a, b)
}

func TestEvaluate_Values(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want Value
	}{
		// Precedence and associativity
		{"mul before add", "1 + 2 * 3", Int(7)},
		{"group first", "(1 + 2) * 3", Int(9)},
		{"left fold sub", "10 - 4 - 3", Int(3)},
		{"left fold mul mod", "2 * 3 % 4", Int(2)},
		{"int division truncates", "7 / 2", Int(3)},
		{"negative modulo", "-7 % 3", Int(-1)},
		{"unary binds tighter", "-2 * 3", Int(-6)},
		{"comparison under equality", "1 < 2 == true", Bool(true)},

		// Numeric promotion
		{"int plus float", "1 + 2.5", Float(3.5)},
		{"float division", "7 / 2.0", Float(3.5)},
		{"float by zero", "1.0 / 0 > 1e308", Bool(true)},
		{"hex literal", "0x1F", Int(31)},
		{"exponent literal", "1e3", Float(1000)},
		{"leading dot", ".5", Float(0.5)},
		{"float suffix", "2.5f", Float(2.5)},

		// Strings
		{"concat", `"ab" + "cd"`, String("abcd")},
		{"concat int right", `"a" + 1`, String("a1")},
		{"concat int left", `1 + "a"`, String("1a")},
		{"concat bool", `"x" + true`, String("xtrue")},
		{"string compare", `"a" < "b"`, Bool(true)},

		// Vectors
		{"vector add", "new float2(1, 2) + new float2(3, 4)", Vec2(Float2{4, 6})},
		{"vector scale right", "new float3(1, 2, 3) * 2", Vec3(Float3{2, 4, 6})},
		{"vector scale left", "2 * new float3(1, 2, 3)", Vec3(Float3{2, 4, 6})},
		{"vector negate", "-new float2(1, -2)", Vec2(Float2{-1, 2})},
		{"vector splat", "new float3(1)", Vec3(Float3{1, 1, 1})},
		{"vector from string", `new float2("1, 2")`, Vec2(Float2{1, 2})},

		// Comparison and equality
		{"less", "1 < 2", Bool(true)},
		{"less equal", "2 <= 2", Bool(true)},
		{"mixed less", "1 < 1.5", Bool(true)},
		{"int equals float", "1 == 1.0", Bool(true)},
		{"unrelated kinds unequal", `1 == "1"`, Bool(false)},
		{"null equals null", "null == null", Bool(true)},
		{"array equality", "{1, 2} == {1, 2}", Bool(true)},
		{"array inequality", "{1, 2} != {1, 3}", Bool(true)},

		// Logic
		{"not", "!true", Bool(false)},
		{"and", "true && false", Bool(false)},
		{"or", "false || true", Bool(true)},
		{"and chain", "true && true && true", Bool(true)},
		{"mixed logic", "true && false || !false", Bool(true)},
		{"and short circuit", "false && (1 / 0 == 1)", Bool(false)},
		{"or short circuit", "true || (1 / 0 == 1)", Bool(true)},

		// Ternary
		{"ternary then", "true ? 1 : 2", Int(1)},
		{"ternary else", "false ? 1 : 2", Int(2)},
		{"ternary nested", "true ? false ? 1 : 2 : 3", Int(2)},

		// Variables and assignment
		{"compound add keeps int", "x = 5; x += 3", Int(8)},
		{"compound chain", "int x = 5; x -= 2; x *= 4", Int(12)},
		{"declared float widens int", "float f = 1; f", Float(1)},
		{"bool and assign", "bool b = true; b &= false", Bool(false)},
		{"bool or assign", "bool b = false; b |= true", Bool(true)},
		{"right associative assign", "a = b = 3; a + b", Int(6)},
		{"group sees outer", "x = 2; (x * 10)", Int(20)},
		{"group declaration value", "(int y = 1) + 1", Int(2)},
		{"trailing semicolon", "x = 1; x;", Int(1)},

		// Arrays
		{"literal index", "int[] a = {1, 2, 3}; a[1]", Int(2)},
		{"sized then assign", "int[] a = new int[3]; a[2] = 7; a[2]", Int(7)},
		{"block index", "int[,] m = new int[2, 3]; m[1, 2] = 5; m[1, 2]", Int(5)},
		{"jagged reshape", "int[,] m = {{1, 2}, {3, 4}}; m[1, 0]", Int(3)},
		{"nested ranks", "int[][] j = new int[2][]; j[0] = {1, 2, 3}; j[0][2]", Int(3)},
		{"new with initializer", "new int[]{4, 5, 6}[1]", Int(5)},
		{"new block initializer", "new int[,]{{1, 2}, {3, 4}}[1, 1]", Int(4)},
		{"new sized initializer", "new int[2]{1, 2}[1]", Int(2)},
		{"literal unifies to float", "{1, 2.5}[0]", Float(1)},
		{"declared float elements", "float[] a = {1, 2.5}; a[0]", Float(1)},
		{"integral float index", "int[] a = {1, 2, 3}; a[1.0]", Int(2)},
		{"arrays are references", "a = {1, 2, 3}; b = a; b[0] = 9; a[0]", Int(9)},
		{"element increment", "int[] a = {1, 2}; a[0]++; a[0]", Int(2)},
		{"element prefix increment", "int[] a = {1, 2}; ++a[1]", Int(3)},
		{"element compound", "int[] a = {1, 2}; a[1] *= 5", Int(10)},
		{"postfix in sum", "x = 5; y = 1 + x++; y * 10 + x", Int(66)},
		{"postfix left operand", "x = 5; x++ + 1", Int(6)},
		{"postfix then read", "x = 5; x++ + x", Int(11)},
		{"negated postfix", "x = 5; -x++", Int(-5)},
		{"postfix argument", "x = 5; sum(x++, x)", Int(11)},
		{"prefix and postfix", "x = 1; y = --x + x--; y * 10 + x", Int(-1)},
		{"element postfix in product", "int[] a = {1, 2}; a[1]++ * 10 + a[1]", Int(23)},
		{"unary plus bool", "+true", Bool(true)},
		{"unary plus string", `+"s"`, String("s")},

		// Construction
		{"new int truncates", "new int(2.7)", Int(2)},
		{"new float", "new float(3)", Float(3)},
		{"new string", "new string(12)", String("12")},
		{"new bool default", "new bool()", Bool(false)},

		// Host calls
		{"host call", "sum(1, 2, 3)", Int(6)},
		{"nested host call", "sum(1, sum(2, 3)) * 2", Int(12)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := evaluate(t, tt.src)
			if err != nil {
				t.Fatalf("evaluate error: %v", err)
			}

			if !sameValue(got, tt.want) {
				t.Errorf("expected %s (%s), got %s (%s)",
					tt.want.Literal(), tt.want.Type(), got.Literal(), got.Type())
			}
		})
	}
}

func TestEvaluate_Errors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		want  error
		class Class
	}{
		{"int divide by zero", "1 / 0", ErrDivideByZero, ClassOperator},
		{"int modulo by zero", "1 % 0", ErrDivideByZero, ClassOperator},
		{"kind mismatch", "1 + true", ErrKindMismatch, ClassOperator},
		{"negate bool", "-true", ErrKindMismatch, ClassOperator},
		{"not int", "!1", ErrKindMismatch, ClassOperator},
		{"ordering bools", "true < false", ErrKindMismatch, ClassOperator},
		{"ternary needs bool", "1 ? 2 : 3", ErrType, ClassEvaluate},
		{"and left needs bool", "1 && true", ErrType, ClassEvaluate},
		{"or left needs bool", "1 || true", ErrType, ClassEvaluate},
		{"and right needs bool", "true && 1", ErrType, ClassEvaluate},
		{"or right needs bool", "false || 1", ErrType, ClassEvaluate},
		{"narrowing assignment", "int x = 1.5", ErrType, ClassEvaluate},
		{"mixed array literal", `{1, "a"}`, ErrType, ClassEvaluate},
		{"group scope hidden", "(int y = 1); y", ErrUnresolved, ClassEvaluate},
		{"index past end", "int[] a = {1, 2, 3}; a[3]", ErrIndexOutOfRange, ClassIndex},
		{"negative index", "int[] a = {1, 2, 3}; a[-1]", ErrIndexOutOfRange, ClassIndex},
		{"fractional index", "int[] a = {1, 2, 3}; a[1.5]", ErrInvalidIndex, ClassIndex},
		{"string index", `int[] a = {1, 2, 3}; a["x"]`, ErrInvalidIndex, ClassIndex},
		{"index arity", "int[,] m = new int[2, 2]; m[1]", ErrIndexArity, ClassIndex},
		{"index null array", "int[] a; a[0]", ErrNotIndexable, ClassIndex},
		{"index scalar", "x = 1; x[0]", ErrNotIndexable, ClassIndex},
		{"initializer shape", "new int[2]{1, 2, 3}", ErrShapeMismatch, ClassIndex},
		{"jagged block", "int[,] m = {{1, 2}, {3}}", ErrShapeMismatch, ClassIndex},
		{"negative size", "new int[-1]", ErrArraySize, ClassIndex},
		{"size overflow", "new int[4294967296, 4294967296]", ErrArraySize, ClassIndex},
		{"size too large", "new int[2305843009213693952]", ErrArraySize, ClassIndex},
		{"huge float index", "int[] a = {1, 2, 3}; a[1e300]", ErrInvalidIndex, ClassIndex},
		{"unknown function", "nope(1)", ErrUnknownFunction, ClassEvaluate},
		{"host failure", "fail()", errBoom, ClassEvaluate},
		{"host argument", `sum("x")`, ErrArgument, ClassEvaluate},
		{"vector arity", "new float3(1, 2)", ErrArgument, ClassEvaluate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := evaluate(t, tt.src)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}

			if got := ClassOf(err); got != tt.class {
				t.Errorf("expected class %v, got %v", tt.class, got)
			}

			if _, ok := PositionOf(err); !ok {
				t.Errorf("expected a position in %v", err)
			}
		})
	}
}

func TestEvaluate_LogicalRejectsAlike(t *testing.T) {
	_, andErr := evaluate(t, "1 && true")
	_, orErr := evaluate(t, "1 || true")

	if !errors.Is(andErr, ErrType) || !errors.Is(orErr, ErrType) {
		t.Fatalf("expected type errors, got %v and %v", andErr, orErr)
	}

	if ClassOf(andErr) != ClassOf(orErr) {
		t.Errorf("expected equal classes, got %v and %v",
			ClassOf(andErr), ClassOf(orErr))
	}
}

func TestEvaluate_Increment(t *testing.T) {
	scope := NewScope()
	if err := scope.Define("x", Int(5)); err != nil {
		t.Fatalf("define error: %v", err)
	}

	tests := []struct {
		src    string
		result int64
		after  int64
	}{
		{"x++", 5, 6},
		{"++x", 7, 7},
		{"x--", 7, 6},
		{"--x", 5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := evaluate(t, tt.src, WithScope(scope))
			if err != nil {
				t.Fatalf("evaluate error: %v", err)
			}

			if !sameValue(got, Int(tt.result)) {
				t.Errorf("expected result %d, got %s", tt.result, got.Literal())
			}

			x, err := scope.Get("x")
			if err != nil {
				t.Fatalf("get error: %v", err)
			}

			if !sameValue(x, Int(tt.after)) {
				t.Errorf("expected x = %d, got %s", tt.after, x.Literal())
			}
		})
	}
}

func TestEvaluate_IndexBounds(t *testing.T) {
	scope := NewScope()

	if _, err := evaluate(t, "int[] a = {10, 20, 30}", WithScope(scope)); err != nil {
		t.Fatalf("evaluate error: %v", err)
	}

	for i, want := range []int64{10, 20, 30} {
		src := "a[" + Int(int64(i)).Literal() + "]"

		got, err := evaluate(t, src, WithScope(scope))
		if err != nil {
			t.Fatalf("%s: evaluate error: %v", src, err)
		}

		if !sameValue(got, Int(want)) {
			t.Errorf("%s: expected %d, got %s", src, want, got.Literal())
		}
	}

	if _, err := evaluate(t, "a[3]", WithScope(scope)); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("expected out of range, got %v", err)
	}
}

func TestEvaluate_StatePersists(t *testing.T) {
	scope := NewScope()
	if err := scope.Define("n", Int(0)); err != nil {
		t.Fatalf("define error: %v", err)
	}

	prog, err := Compile(t.Context(), "n += 1", WithScope(scope))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	for want := int64(1); want <= 3; want++ {
		got, err := prog.Evaluate(t.Context(), nil)
		if err != nil {
			t.Fatalf("evaluate error: %v", err)
		}

		if !sameValue(got, Int(want)) {
			t.Errorf("expected %d, got %s", want, got.Literal())
		}
	}

	// n was not declared by the program
	prog.Reset()

	if n, _ := scope.Get("n"); !sameValue(n, Int(3)) {
		t.Errorf("expected n = 3 after reset, got %s", n.Literal())
	}
}

func TestProgram_Reset(t *testing.T) {
	prog, err := Compile(t.Context(), "int n = 4; (float f = 2.5)")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if _, err := prog.Evaluate(t.Context(), nil); err != nil {
		t.Fatalf("evaluate error: %v", err)
	}

	if n, _ := prog.Scope().Get("n"); !sameValue(n, Int(4)) {
		t.Fatalf("expected n = 4, got %s", n.Literal())
	}

	prog.Reset()

	if n, _ := prog.Scope().Get("n"); !sameValue(n, Int(0)) {
		t.Errorf("expected n = 0 after reset, got %s", n.Literal())
	}

	frames := prog.Scopes()
	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(frames))
	}

	if f, _ := frames[1].Get("f"); !sameValue(f, Float(0)) {
		t.Errorf("expected f = 0 after reset, got %s", f.Literal())
	}
}

func TestEvaluate_SideEffectsBeforeError(t *testing.T) {
	scope := NewScope()

	_, err := evaluate(t, "x = 1; x = 2; x / 0", WithScope(scope))
	if !errors.Is(err, ErrDivideByZero) {
		t.Fatalf("expected divide by zero, got %v", err)
	}

	x, err := scope.Get("x")
	if err != nil {
		t.Fatalf("get error: %v", err)
	}

	if !sameValue(x, Int(2)) {
		t.Errorf("expected x = 2, got %s", x.Literal())
	}
}

func TestEvaluate_NoHost(t *testing.T) {
	prog, err := Compile(t.Context(), "sum(1)")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if _, err := prog.Evaluate(t.Context(), nil); !errors.Is(err, ErrNoHost) {
		t.Errorf("expected no host error, got %v", err)
	}
}

func TestEvaluate_CanceledContext(t *testing.T) {
	prog, err := Compile(t.Context(), "sum(1)")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err = prog.Evaluate(ctx, testHost)
	if !errors.Is(err, context.Canceled) || !errors.Is(err, ErrCall) {
		t.Errorf("expected canceled call, got %v", err)
	}
}

func TestEvaluate_ErrorMessage(t *testing.T) {
	src := "1 +\n  true"

	_, err := evaluate(t, src, WithSourceName("expr"))
	if err == nil {
		t.Fatal("expected error")
	}

	want := "expr:1:3: operator error: 1 + true: mismatched operand kinds: int + bool"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}

	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *Error, got %T", err)
	}

	if v, ok := e.Attr("operator"); !ok || v.String() != "+" {
		t.Errorf("expected operator attribute +, got %v", v)
	}

	if got := Snippet(err, src); !strings.HasSuffix(got, "        ^\n") {
		t.Errorf("unexpected snippet %q", got)
	}
}
