package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func decodeRecord(t *testing.T, line []byte) map[string]any {
	t.Helper()

	var rec map[string]any
	if err := json.Unmarshal(line, &rec); err != nil {
		t.Fatalf("invalid JSON record %q: %v", line, err)
	}

	return rec
}

func TestLogger_JSON(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithPretty(false), WithLevel(LevelTrace))
	logger.TraceContext(t.Context(), "compiled",
		slog.String("source", "<arg>"), slog.Int("nodes", 3))

	rec := decodeRecord(t, buf.Bytes())

	if rec["level"] != "TRACE" {
		t.Errorf("level = %v, want TRACE", rec["level"])
	}

	if rec["msg"] != "compiled" || rec["source"] != "<arg>" || rec["nodes"] != 3.0 {
		t.Errorf("record = %v", rec)
	}

	if _, ok := rec["time"].(string); !ok {
		t.Errorf("time = %v, want a string", rec["time"])
	}
}

func TestLogger_Filtering(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithPretty(false), WithLevel(LevelWarn))

	logger.Trace("t")
	logger.Debug("d")
	logger.Info("i")

	if buf.Len() != 0 {
		t.Fatalf("records below warn written: %s", buf.String())
	}

	logger.Warn("w")
	logger.Error("e")

	if n := strings.Count(buf.String(), "\n"); n != 2 {
		t.Errorf("wrote %d records, want 2", n)
	}

	if logger.Enabled(t.Context(), LevelInfo) || !logger.Enabled(t.Context(), LevelError) {
		t.Error("Enabled disagrees with the configured level")
	}
}

func TestLogger_Text(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithPretty(false), WithFormat(FormatText), WithTimeLayout("none"))
	logger.InfoContext(t.Context(), "loaded", slog.String("file", "f.yaml"))

	if got, want := buf.String(), "level=INFO msg=loaded file=f.yaml\n"; got != want {
		t.Errorf("record = %q, want %q", got, want)
	}
}

func TestLogger_Caller(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithPretty(false), WithCaller(true))
	logger.Info("here")

	rec := decodeRecord(t, buf.Bytes())

	src, ok := rec["source"].(map[string]any)
	if !ok {
		t.Fatalf("source = %v", rec["source"])
	}

	if file, _ := src["file"].(string); !strings.HasSuffix(file, "log_test.go") {
		t.Errorf("source file = %q, want this test file", file)
	}
}

func TestLogger_WithAndWrap(t *testing.T) {
	var buf bytes.Buffer

	base := Make(&buf, WithPretty(false))
	tagged := base.With(slog.String("component", "lang"))

	tagged.Info("one")

	if rec := decodeRecord(t, buf.Bytes()); rec["component"] != "lang" {
		t.Errorf("With attribute missing: %v", rec)
	}

	buf.Reset()
	base.Info("two")

	if rec := decodeRecord(t, buf.Bytes()); rec["component"] != nil {
		t.Error("With modified the receiver")
	}

	wrapped := base.Wrap(WithLevel(LevelError), WithFormat(FormatText))

	if wrapped.Level() != LevelError || wrapped.Format() != FormatText {
		t.Errorf("Wrap: level %v format %v", wrapped.Level(), wrapped.Format())
	}

	if base.Level() != DefaultLevel || base.Format() != DefaultFormat {
		t.Error("Wrap modified the receiver")
	}
}

func TestLogger_Zero(t *testing.T) {
	var logger Logger

	logger.Error("ignored")
	logger = logger.With(slog.Bool("k", true))

	if logger.Level() != DefaultLevel || logger.Format() != DefaultFormat {
		t.Error("zero logger should report defaults")
	}
}

func TestDefault(t *testing.T) {
	var buf bytes.Buffer

	prev := SetDefault(Make(&buf, WithPretty(false), WithLevel(LevelDebug)))
	t.Cleanup(func() { SetDefault(prev) })

	DebugContext(t.Context(), "debugging", slog.String("key", "value"))

	rec := decodeRecord(t, buf.Bytes())
	if rec["level"] != "DEBUG" || rec["key"] != "value" {
		t.Errorf("record = %v", rec)
	}

	Config(WithLevel(LevelError))

	if Default().Level() != LevelError {
		t.Errorf("Config did not apply: %v", Default().Level())
	}

	buf.Reset()
	WarnContext(t.Context(), "dropped")

	if buf.Len() != 0 {
		t.Errorf("record below level written: %s", buf.String())
	}
}

func TestDefault_Concurrent(t *testing.T) {
	var buf syncBuffer

	prev := SetDefault(Make(&buf, WithPretty(false)))
	t.Cleanup(func() { SetDefault(prev) })

	var wg sync.WaitGroup

	for range 8 {
		wg.Go(func() {
			Config(WithLevel(LevelInfo))
			InfoContext(t.Context(), "concurrent")
		})
	}

	wg.Wait()

	if n := strings.Count(buf.String(), "concurrent"); n != 8 {
		t.Errorf("wrote %d records, want 8", n)
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}
