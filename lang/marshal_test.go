package lang

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestToMap(t *testing.T) {
	prog, err := Compile(t.Context(), "x = {1, 2}; x[0] + 1")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	m := ToMap(prog.Root)
	if m["node"] != "sequence" {
		t.Fatalf("expected sequence, got %v", m["node"])
	}

	stmts, ok := m["statements"].([]any)
	if !ok || len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %v", m["statements"])
	}

	chain, ok := stmts[1].(map[string]any)
	if !ok || chain["node"] != "chain" {
		t.Fatalf("expected chain, got %v", stmts[1])
	}

	left, ok := chain["left"].(map[string]any)
	if !ok || left["node"] != "index" {
		t.Errorf("expected index operand, got %v", chain["left"])
	}

	if chain["pos"] != "1:13" {
		t.Errorf("expected position 1:13, got %v", chain["pos"])
	}
}

func TestProgram_FormatJSON(t *testing.T) {
	prog, err := Compile(t.Context(), "1 + 2")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	var buf bytes.Buffer
	if err := prog.FormatJSON(t.Context(), &buf, 0); err != nil {
		t.Fatalf("format error: %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("invalid JSON %q: %v", buf.String(), err)
	}

	if m["node"] != "chain" {
		t.Errorf("expected chain, got %v", m["node"])
	}

	buf.Reset()

	if err := prog.FormatJSON(t.Context(), &buf, 2); err != nil {
		t.Fatalf("format error: %v", err)
	}

	if !strings.Contains(buf.String(), "\n  \"") {
		t.Errorf("expected indented JSON, got %q", buf.String())
	}
}

func TestProgram_FormatYAML(t *testing.T) {
	prog, err := Compile(t.Context(), "f(1)")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	var buf bytes.Buffer
	if err := prog.FormatYAML(t.Context(), &buf, 2); err != nil {
		t.Fatalf("format error: %v", err)
	}

	for _, want := range []string{"node: call", "name: f"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("expected %q in %q", want, buf.String())
		}
	}
}

func TestProgram_FormatNative(t *testing.T) {
	prog, err := Compile(t.Context(), "x=1;x*2")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	var buf bytes.Buffer
	if err := prog.FormatNative(t.Context(), &buf); err != nil {
		t.Fatalf("format error: %v", err)
	}

	if got := buf.String(); got != "x = 1; x * 2\n" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestProgram_Print(t *testing.T) {
	prog, err := Compile(t.Context(), "1 + 2 * f(3)")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	var buf bytes.Buffer
	if err := prog.Print(&buf); err != nil {
		t.Fatalf("print error: %v", err)
	}

	want := []string{
		"chain + @1:1",
		"  literal int 1 @1:1",
		"  chain * @1:5",
		"    literal int 2 @1:5",
		"    call f @1:9",
		"      literal int 3 @1:11",
	}

	if got := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n"); !reflect.DeepEqual(got, want) {
		t.Errorf("expected\n%s\ngot\n%s", strings.Join(want, "\n"), buf.String())
	}
}

func TestValue_Native(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want any
	}{
		{"null", "null", nil},
		{"bool", "true", true},
		{"int", "3", int64(3)},
		{"float", "1.5", 1.5},
		{"vector", "new float2(1, 2)", []float64{1, 2}},
		{"string", `"s"`, "s"},
		{"array", "{1, 2}", []any{int64(1), int64(2)}},
		{
			"block", "new int[,]{{1, 2}, {3, 4}}",
			[]any{[]any{int64(1), int64(2)}, []any{int64(3), int64(4)}},
		},
		{"null array", "int[] a; a", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := evaluate(t, tt.src)
			if err != nil {
				t.Fatalf("evaluate error: %v", err)
			}

			if got := v.Native(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %#v, got %#v", tt.want, got)
			}
		})
	}
}

func TestValueOf(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want Value
	}{
		{"nil", nil, Null()},
		{"bool", true, Bool(true)},
		{"int", 7, Int(7)},
		{"uint8", uint8(200), Int(200)},
		{"float32", float32(0.5), Float(0.5)},
		{"string", "s", String("s")},
		{"vector", Float3{1, 2, 3}, Vec3(Float3{1, 2, 3})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValueOf(tt.in)
			if err != nil {
				t.Fatalf("convert error: %v", err)
			}

			if !sameValue(got, tt.want) {
				t.Errorf("expected %s, got %s", tt.want.Literal(), got.Literal())
			}
		})
	}

	t.Run("slice", func(t *testing.T) {
		got, err := ValueOf([]any{1, 2.5})
		if err != nil {
			t.Fatalf("convert error: %v", err)
		}

		if got.Type().String() != "float[]" {
			t.Errorf("expected float[], got %s", got.Type())
		}
	})

	t.Run("unsupported", func(t *testing.T) {
		if _, err := ValueOf(map[string]int{}); !errors.Is(err, ErrType) {
			t.Errorf("expected type error, got %v", err)
		}
	})
}

func TestFormatValue(t *testing.T) {
	v, err := evaluate(t, "{1, 2}")
	if err != nil {
		t.Fatalf("evaluate error: %v", err)
	}

	var buf bytes.Buffer
	if err := FormatValueJSON(&buf, v, 0); err != nil {
		t.Fatalf("format error: %v", err)
	}

	if got := buf.String(); got != "[1,2]\n" {
		t.Errorf("unexpected JSON %q", got)
	}

	buf.Reset()

	if err := FormatValueYAML(t.Context(), &buf, v, 0); err != nil {
		t.Fatalf("format error: %v", err)
	}

	if got := strings.TrimSpace(buf.String()); got != "[1, 2]" {
		t.Errorf("unexpected YAML %q", got)
	}
}
