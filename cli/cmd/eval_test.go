package cmd

import (
	"errors"
	"slices"
	"testing"

	"github.com/ardnew/vexpr/lang"
)

func TestEvalRun(t *testing.T) {
	tests := []struct {
		name string
		eval Eval
		want string
	}{
		{
			name: "precedence",
			eval: Eval{Expr: []string{"1 + 2 * 3"}},
			want: "7\n",
		},
		{
			name: "shared_scope",
			eval: Eval{Expr: []string{"int x = 2", "x * 3"}},
			want: "2\n6\n",
		},
		{
			name: "let",
			eval: Eval{Let: []string{"int n = 4", "n++"}, Expr: []string{"n * n"}},
			want: "25\n",
		},
		{
			name: "func",
			eval: Eval{Func: []string{"area(w, h)=w * h"}, Expr: []string{"area(3, 4)"}},
			want: "12\n",
		},
		{
			name: "string",
			eval: Eval{Expr: []string{`upper("abc")`}},
			want: "ABC\n",
		},
		{
			name: "json",
			eval: Eval{Output: outputJSON, Expr: []string{"{1, 2}"}},
			want: "[1,2]\n",
		},
		{
			name: "yaml",
			eval: Eval{Output: outputYAML, Indent: 2, Expr: []string{"40 + 2"}},
			want: "42\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := captureStdout(t)

			if err := tt.eval.Run(t.Context()); err != nil {
				t.Fatalf("Eval.Run() error = %v", err)
			}

			if got := out.String(); got != tt.want {
				t.Errorf("Eval.Run() output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEvalRun_Stdin(t *testing.T) {
	out := captureStdout(t)
	replaceStdin(t, "2 * 21")

	if err := (&Eval{}).Run(t.Context()); err != nil {
		t.Fatalf("Eval.Run() error = %v", err)
	}

	if got := out.String(); got != "42\n" {
		t.Errorf("Eval.Run() output = %q, want %q", got, "42\n")
	}
}

func TestEvalRun_Errors(t *testing.T) {
	tests := []struct {
		name      string
		eval      Eval
		wantErr   error
		wantClass lang.Class
	}{
		{"parse", Eval{Expr: []string{"1 +"}}, ErrExpression, lang.ClassParse},
		{"type", Eval{Expr: []string{"1 ? 2 : 3"}}, ErrExpression, lang.ClassEvaluate},
		{"unresolved", Eval{Expr: []string{"nope"}}, ErrExpression, lang.ClassEvaluate},
		{"bad_let", Eval{Let: []string{"int x = "}, Expr: []string{"1"}}, ErrExpression, lang.ClassParse},
		{"bad_func", Eval{Func: []string{"f"}, Expr: []string{"1"}}, ErrFuncFlag, lang.ClassUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			captureStdout(t)

			err := tt.eval.Run(t.Context())
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}

			if got := lang.ClassOf(err); got != tt.wantClass {
				t.Errorf("expected class %v, got %v", tt.wantClass, got)
			}
		})
	}
}

func TestParseFuncFlag(t *testing.T) {
	tests := []struct {
		def        string
		wantName   string
		wantParams []string
		wantBody   string
		wantErr    bool
	}{
		{def: "area(w, h)=w * h", wantName: "area", wantParams: []string{"w", "h"}, wantBody: "w * h"},
		{def: "count=len(args)", wantName: "count", wantBody: "len(args)"},
		{def: " sq ( x ) = x * x ", wantName: "sq", wantParams: []string{"x"}, wantBody: "x * x"},
		{def: "none()=1", wantName: "none", wantBody: "1"},
		{def: "eq(a, b)=a == b", wantName: "eq", wantParams: []string{"a", "b"}, wantBody: "a == b"},
		{def: "f", wantErr: true},
		{def: "f=", wantErr: true},
		{def: "f(x=x", wantErr: true},
		{def: "(x)=x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.def, func(t *testing.T) {
			name, params, body, err := parseFuncFlag(tt.def)
			if tt.wantErr {
				if !errors.Is(err, ErrFuncFlag) {
					t.Errorf("expected func flag error, got %v", err)
				}

				return
			}

			if err != nil {
				t.Fatalf("parseFuncFlag() error = %v", err)
			}

			if name != tt.wantName || !slices.Equal(params, tt.wantParams) || body != tt.wantBody {
				t.Errorf("parseFuncFlag(%q) = (%q, %v, %q), want (%q, %v, %q)",
					tt.def, name, params, body, tt.wantName, tt.wantParams, tt.wantBody)
			}
		})
	}
}
