package repl

import (
	"strings"
	"testing"
)

func TestDetectFunctionCall(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		cursor    int
		wantName  string
		wantIndex int
		wantIn    bool
	}{
		{"empty", "", 0, "", 0, false},
		{"no_call", "a + b", 5, "", 0, false},
		{"open_call", "dot(", 4, "dot", 0, true},
		{"first_arg", "dot(a", 5, "dot", 0, true},
		{"second_arg", "dot(a, ", 7, "dot", 1, true},
		{"third_arg", "clamp(x, 0, ", 12, "clamp", 2, true},
		{"closed_call", "dot(a, b)", 9, "", 0, false},
		{"space_before_paren", "dot (a, ", 8, "dot", 1, true},
		{"nested_inner", "max(abs(x", 9, "abs", 0, true},
		{"nested_outer", "max(abs(x), ", 12, "max", 1, true},
		{"grouping_paren", "(a + b", 6, "", 0, false},
		{"grouping_in_call", "max(1, (a + b", 13, "max", 1, true},
		{"comma_in_array", "len([1, 2], ", 12, "len", 1, true},
		{"comma_in_inner_call", "max(min(1, 2), 3, ", 18, "max", 2, true},
		{"index_inside_call", "abs(v[0", 7, "abs", 0, true},
		{"cursor_mid_input", "dot(a, b) + 1", 5, "dot", 0, true},
		{"keyword_paren", "new float2(1, ", 14, "", 0, false},
		{"number_before_paren", "2(", 2, "", 0, false},
		{"cursor_past_end", "abs(", 10, "abs", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detectFunctionCall(tt.input, tt.cursor)
			if got.name != tt.wantName ||
				got.argIndex != tt.wantIndex ||
				got.inCall != tt.wantIn {
				t.Errorf("detectFunctionCall(%q, %d) = %+v, want {%s %d %v}",
					tt.input, tt.cursor, got, tt.wantName, tt.wantIndex, tt.wantIn)
			}
		})
	}
}

func TestArgIndex(t *testing.T) {
	tests := []struct {
		args string
		want int
	}{
		{"", 0},
		{"a", 0},
		{"a, b", 1},
		{"a, b, c", 2},
		{"f(a, b), c", 1},
		{"[1, 2, 3]", 0},
		{"{1, 2}, ", 1},
	}

	for _, tt := range tests {
		t.Run(tt.args, func(t *testing.T) {
			if got := argIndex(tt.args); got != tt.want {
				t.Errorf("argIndex(%q) = %d, want %d", tt.args, got, tt.want)
			}
		})
	}
}

func TestFormatSignature(t *testing.T) {
	tests := []struct {
		name   string
		params []string
		want   string
	}{
		{"hostname", nil, "hostname()"},
		{"clamp", []string{"x", "lo", "hi"}, "clamp(x, lo, hi)"},
		{"min", []string{"...x"}, "min(...x)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatSignature(tt.name, tt.params); got != tt.want {
				t.Errorf("formatSignature() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderSignatureHint(t *testing.T) {
	tests := []struct {
		name       string
		signature  string
		params     []string
		currentArg int
		wantName   string
	}{
		{"no_params", "hostname()", nil, 0, "hostname"},
		{"first_param", "dot(a, b)", []string{"a", "b"}, 0, "dot"},
		{"second_param", "dot(a, b)", []string{"a", "b"}, 1, "dot"},
		{"variadic", "max(...x)", []string{"...x"}, 3, "max"},
		{"past_last", "abs(x)", []string{"x"}, 4, "abs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := renderSignatureHint(tt.signature, tt.params, tt.currentArg)
			if !strings.Contains(got, tt.wantName) {
				t.Errorf("renderSignatureHint() = %q, want name %q", got, tt.wantName)
			}

			for _, p := range tt.params {
				if !strings.Contains(got, p) {
					t.Errorf("renderSignatureHint() = %q, want param %q", got, p)
				}
			}
		})
	}

	if got := renderSignatureHint("", nil, 0); got != "" {
		t.Errorf("expected empty hint, got %q", got)
	}
}
