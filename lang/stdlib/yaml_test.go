package stdlib

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/ardnew/vexpr/lang"
)

const functionYAML = `functions:
  area:
    params: [w, h]
    body: w * h
  twice:
    params: [x]
    body: x * 2
`

func TestLoadYAML(t *testing.T) {
	r := New()

	names, err := r.LoadYAML(t.Context(), strings.NewReader(functionYAML))
	if err != nil {
		t.Fatalf("load error: %v", err)
	}

	if !slices.Equal(names, []string{"area", "twice"}) {
		t.Errorf("expected [area twice], got %v", names)
	}

	got, err := evaluate(t, r, "twice(area(2, 3))")
	if err != nil {
		t.Fatalf("evaluate error: %v", err)
	}

	if !sameValue(got, lang.Int(12)) {
		t.Errorf("expected 12, got %s", got.Literal())
	}
}

func TestLoadYAML_Empty(t *testing.T) {
	names, err := Empty().LoadYAML(t.Context(), strings.NewReader(""))
	if err != nil {
		t.Fatalf("load error: %v", err)
	}

	if len(names) != 0 {
		t.Errorf("expected no functions, got %v", names)
	}
}

func TestLoadYAML_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr error
	}{
		{"unknown field", "bogus: 1\n", ErrFunctionFile},
		{"missing body", "functions:\n  f:\n    params: [x]\n", ErrFunctionFile},
		{"malformed", "functions: [\n", ErrFunctionFile},
		{"bad body", "functions:\n  f:\n    body: 1 +\n", ErrExprCompile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Empty().LoadYAML(t.Context(), strings.NewReader(tt.src))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}

			if !errors.Is(err, lang.ErrParse) {
				t.Errorf("expected parse category, got %v", err)
			}
		})
	}
}

func TestDefine(t *testing.T) {
	r := Empty()

	names, err := r.Define(map[string]ExprDef{
		"sq":  {Params: []string{"x"}, Body: "x * x"},
		"inc": {Params: []string{"x"}, Body: "x + 1"},
	})
	if err != nil {
		t.Fatalf("define error: %v", err)
	}

	if !slices.Equal(names, []string{"inc", "sq"}) {
		t.Errorf("expected [inc sq], got %v", names)
	}

	got, err := evaluate(t, r, "sq(inc(2))")
	if err != nil {
		t.Fatalf("evaluate error: %v", err)
	}

	if !sameValue(got, lang.Int(9)) {
		t.Errorf("expected 9, got %s", got.Literal())
	}

	if _, err := r.Define(map[string]ExprDef{"empty": {}}); !errors.Is(err, ErrFunctionFile) {
		t.Errorf("expected function file error, got %v", err)
	}
}
