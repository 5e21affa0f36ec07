package lang

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestParse_Collapse(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"1", "*lang.Literal"},
		{"x", "*lang.Variable"},
		{"(1)", "*lang.Group"},
		{"1 + 2", "*lang.Chain"},
		{"1 + 2 * 3", "*lang.Chain"},
		{"1 < 2", "*lang.Compare"},
		{"true && false", "*lang.Logical"},
		{"true ? 1 : 2", "*lang.Ternary"},
		{"-1", "*lang.UnaryExpr"},
		{"x = 1", "*lang.Assign"},
		{"x = 1; x", "*lang.Sequence"},
		{"x = 1;", "*lang.Assign"},
		{"int x", "*lang.Declare"},
		{"f(1)", "*lang.Call"},
		{"{1, 2}", "*lang.ArrayLiteral"},
		{"{1, 2}[0]", "*lang.Index"},
		{"new int(1)", "*lang.NewValue"},
		{"new int[2]", "*lang.NewArrayExpr"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			prog, err := Compile(t.Context(), tt.src)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}

			if got := typeName(prog.Root); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func typeName(n Node) string { return fmt.Sprintf("%T", n) }

func TestParse_ChainKeepsSourceOrder(t *testing.T) {
	prog, err := Compile(t.Context(), "a = 1; a - 2 + 3 - 4")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	seq, ok := prog.Root.(*Sequence)
	if !ok {
		t.Fatalf("expected sequence, got %s", typeName(prog.Root))
	}

	chain, ok := seq.Statements[1].(*Chain)
	if !ok {
		t.Fatalf("expected chain, got %s", typeName(seq.Statements[1]))
	}

	want := []Op{OpSub, OpAdd, OpSub}
	if len(chain.Terms) != len(want) {
		t.Fatalf("expected %d terms, got %d", len(want), len(chain.Terms))
	}

	for i, op := range want {
		if chain.Terms[i].Op != op {
			t.Errorf("term %d: expected %v, got %v", i, op, chain.Terms[i].Op)
		}
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{"empty input", "", ErrUnexpectedToken},
		{"dangling operator", "1 +", ErrUnexpectedToken},
		{"unclosed group", "(1 + 2", ErrUnexpectedToken},
		{"missing colon", "true ? 1", ErrUnexpectedToken},
		{"chained relational", "1 < 2 < 3", ErrUnexpectedToken},
		{"chained equality", "1 == 2 == 3", ErrUnexpectedToken},
		{"trailing operand", "1 2", ErrUnexpectedToken},
		{"empty index", "a = {1}; a[]", ErrUnexpectedToken},
		{"unclosed array", "{1, 2", ErrUnexpectedToken},
		{"declaration without name", "int = 1", ErrUnexpectedToken},
		{"literal target", "1 = 2", ErrInvalidTarget},
		{"expression target", "x = 1; x + 1 = 2", ErrInvalidTarget},
		{"postfix on literal", "5++", ErrInvalidTarget},
		{"prefix on literal", "++5", ErrInvalidTarget},
		{"postfix on group", "x = 1; (x)++", ErrInvalidTarget},
		{"postfix on postfix", "x = 1; x++++", ErrInvalidTarget},
		{"postfix on call", "f()++ + 1", ErrInvalidTarget},
		{"call target", "f() = 1", ErrInvalidTarget},
		{"unknown type", "new foo(1)", ErrUnknownType},
		{"deferred without initializer", "new int[]", ErrMissingInitializer},
		{"redeclared", "int x; int x", ErrRedeclared},
		{"integer overflow", "99999999999999999999", ErrInvalidNumber},
		{"lexer error", "1 @ 2", ErrInvalidCharacter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(t.Context(), tt.src)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}

			if got := ClassOf(err); got != ClassParse {
				t.Errorf("expected parse class, got %v", got)
			}

			if _, ok := PositionOf(err); !ok {
				t.Errorf("expected a position in %v", err)
			}
		})
	}
}

func TestParse_MaxDepth(t *testing.T) {
	src := strings.Repeat("(", 300) + "1" + strings.Repeat(")", 300)

	if _, err := Compile(t.Context(), src); !errors.Is(err, ErrMaxDepthExceeded) {
		t.Errorf("expected max depth error, got %v", err)
	}

	prog, err := Compile(t.Context(), src, WithMaxDepth(1000))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	got, err := prog.Evaluate(t.Context(), nil)
	if err != nil {
		t.Fatalf("evaluate error: %v", err)
	}

	if !sameValue(got, Int(1)) {
		t.Errorf("expected 1, got %s", got.Literal())
	}
}

func TestParse_RollbackOnError(t *testing.T) {
	scope := NewScope()

	if _, err := Compile(t.Context(), "int x = 1; y = 2; 1 +", WithScope(scope)); err == nil {
		t.Fatal("expected parse error")
	}

	for _, name := range []string{"x", "y"} {
		if _, ok := scope.Lookup(name); ok {
			t.Errorf("expected %s to be rolled back", name)
		}
	}

	if scope.Len() != 0 {
		t.Errorf("expected empty scope, got %v", scope.Names())
	}
}

func TestParse_DeclarationsBindAtParseTime(t *testing.T) {
	scope := NewScope()

	prog, err := Compile(t.Context(), "float f; g = 1; (int hidden = 2)", WithScope(scope))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if typ, ok := scope.Lookup("f"); !ok || !typ.Equal(Scalar(KindFloat)) {
		t.Errorf("expected f declared float, got %v %v", typ, ok)
	}

	if typ, ok := scope.Lookup("g"); !ok || !typ.Equal(Scalar(KindAny)) {
		t.Errorf("expected g declared any, got %v %v", typ, ok)
	}

	if _, ok := scope.Lookup("hidden"); ok {
		t.Error("expected hidden to stay in its group frame")
	}

	if got := len(prog.Scopes()); got != 2 {
		t.Errorf("expected 2 frames, got %d", got)
	}
}

func TestParse_Positions(t *testing.T) {
	prog, err := Compile(t.Context(), "a = 1;\n  a * 2", WithSourceName("p"))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	var got []string

	Walk(prog.Root, func(n Node) bool {
		got = append(got, n.Pos().String())

		return true
	})

	want := []string{"p:1:1", "p:1:1", "p:1:1", "p:1:5", "p:2:3", "p:2:3", "p:2:7"}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestParseType(t *testing.T) {
	tests := []struct {
		src     string
		want    string
		wantErr bool
	}{
		{"int", "int", false},
		{"float3[]", "float3[]", false},
		{"float[,][]", "float[,][]", false},
		{"string[,,]", "string[,,]", false},
		{"foo", "", true},
		{"int[", "", true},
		{"int x", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			typ, err := ParseType(tt.src)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %v", typ)
				}

				return
			}

			if err != nil {
				t.Fatalf("parse error: %v", err)
			}

			if typ.String() != tt.want {
				t.Errorf("expected %s, got %s", tt.want, typ)
			}
		})
	}
}
