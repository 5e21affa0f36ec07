package repl

import (
	"context"
	"errors"
	"io"
	"slices"
	"testing"

	"github.com/ardnew/vexpr/lang"
	"github.com/ardnew/vexpr/lang/stdlib"
	"github.com/ardnew/vexpr/log"
)

func newTestSession() *Session {
	logger := log.Make(io.Discard)

	return NewSession(stdlib.New(stdlib.WithLogger(logger)), nil, logger)
}

func TestSession_Eval(t *testing.T) {
	s := newTestSession()

	lines := []struct {
		src  string
		want string
	}{
		{"int x = 2", "2"},
		{"x * 3", "6"},
		{"y = x + 1", "3"},
		{"x += y; x", "5"},
		{"abs(-x)", "5"},
		{`"n=" + str(x)`, "n=5"},
	}

	for _, tt := range lines {
		v, err := s.Eval(t.Context(), tt.src)
		if err != nil {
			t.Fatalf("Eval(%q) error: %v", tt.src, err)
		}

		if got := v.String(); got != tt.want {
			t.Errorf("Eval(%q) = %q, want %q", tt.src, got, tt.want)
		}
	}

	if _, err := s.Eval(t.Context(), "1 +"); !errors.Is(err, lang.ErrParse) {
		t.Errorf("expected parse error, got %v", err)
	}

	if _, err := s.Eval(t.Context(), "int x"); err == nil {
		t.Error("expected redeclaration to fail")
	}
}

func TestSession_Vars(t *testing.T) {
	s := newTestSession()

	for _, src := range []string{"int a = 1", `string b = "hi"`} {
		if _, err := s.Eval(t.Context(), src); err != nil {
			t.Fatalf("Eval(%q) error: %v", src, err)
		}
	}

	vars := s.Vars()
	if len(vars) != 2 {
		t.Fatalf("expected 2 vars, got %d", len(vars))
	}

	want := []struct{ name, typ, literal string }{
		{"a", "int", "1"},
		{"b", "string", `"hi"`},
	}

	for i, w := range want {
		got := vars[i]
		if got.Name != w.name ||
			got.Type.String() != w.typ ||
			got.Value.Literal() != w.literal {
			t.Errorf("vars[%d] = %s %s = %s, want %s %s = %s", i,
				got.Type, got.Name, got.Value.Literal(), w.typ, w.name, w.literal)
		}
	}

	s.Reset()

	if n := len(s.Vars()); n != 0 {
		t.Errorf("expected no vars after reset, got %d", n)
	}

	if _, err := s.Eval(t.Context(), "a"); err == nil {
		t.Error("expected reset variable to be unresolved")
	}
}

func TestSession_Check(t *testing.T) {
	s := newTestSession()

	if err := s.Check(t.Context(), "int z = 1; z * 2"); err != nil {
		t.Fatalf("Check error: %v", err)
	}

	if n := len(s.Vars()); n != 0 {
		t.Errorf("expected check not to declare, got %d vars", n)
	}

	if err := s.Check(t.Context(), "(1 + 2"); !errors.Is(err, lang.ErrParse) {
		t.Errorf("expected parse error, got %v", err)
	}

	// The checked declaration did not leak, so it can be declared for real.
	if _, err := s.Eval(t.Context(), "int z = 4"); err != nil {
		t.Errorf("Eval error: %v", err)
	}
}

func TestSession_Functions(t *testing.T) {
	s := newTestSession()

	if !s.IsFunction("abs") {
		t.Error("expected abs to be a function")
	}

	if s.IsFunction("nope") {
		t.Error("expected nope not to be a function")
	}

	if fns := s.Functions(); !slices.IsSorted(fns) || len(fns) == 0 {
		t.Errorf("expected sorted function names, got %v", fns)
	}

	tests := []struct {
		name       string
		wantSig    string
		wantParams []string
	}{
		{"clamp", "clamp(x, lo, hi)", []string{"x", "lo", "hi"}},
		{"nope", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, params := s.Signature(tt.name)
			if sig != tt.wantSig || !slices.Equal(params, tt.wantParams) {
				t.Errorf("Signature(%q) = %q %v, want %q %v",
					tt.name, sig, params, tt.wantSig, tt.wantParams)
			}
		})
	}
}

// bareHost has functions but no parameter names.
type bareHost struct{ lang.Functions }

func (bareHost) Names() []string { return []string{"f"} }
func (bareHost) Params(string) ([]string, bool) { return nil, false }

func TestSession_SignatureUnknownParams(t *testing.T) {
	host := bareHost{lang.Functions{
		"f": func(context.Context, []lang.Value) (lang.Value, error) {
			return lang.Int(1), nil
		},
	}}

	s := NewSession(host, nil, log.Make(io.Discard))

	if sig, _ := s.Signature("f"); sig != "f(...)" {
		t.Errorf("expected f(...), got %q", sig)
	}

	v, err := s.Eval(t.Context(), "f() + 1")
	if err != nil {
		t.Fatalf("Eval error: %v", err)
	}

	if v.String() != "2" {
		t.Errorf("expected 2, got %s", v)
	}
}

func TestSession_Candidates(t *testing.T) {
	s := newTestSession()

	if _, err := s.Eval(t.Context(), "float3 pos"); err != nil {
		t.Fatalf("Eval error: %v", err)
	}

	got := s.Candidates()

	for _, want := range []string{"pos", "dot", "float3", "true"} {
		if !slices.Contains(got, want) {
			t.Errorf("expected candidate %q in %v", want, got)
		}
	}
}
