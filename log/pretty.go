package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the styles of pretty records. Styles render plain text when
// the output is not a terminal.
type palette struct {
	key, str, num, yes, no, dur, time, null, err lipgloss.Style
	level                                          map[Level]lipgloss.Style
}

func newPalette(w io.Writer) *palette {
	r := lipgloss.NewRenderer(w)
	fg := func(c string) lipgloss.Style { return r.NewStyle().Foreground(lipgloss.Color(c)) }

	return &palette{
		key:  fg("8"),
		str:  fg("6"),
		num:  fg("3"),
		yes:  fg("2"),
		no:   fg("1"),
		dur:  fg("5"),
		time: fg("4"),
		null: fg("8"),
		err:  fg("1").Bold(true),
		level: map[Level]lipgloss.Style{
			LevelTrace: fg("4"),
			LevelDebug: fg("4").Bold(true),
			LevelInfo:  fg("2").Bold(true),
			LevelWarn:  fg("3").Bold(true),
			LevelError: fg("1").Bold(true),
		},
	}
}

func (p *palette) levelStyle(l Level) lipgloss.Style {
	for _, at := range []Level{LevelError, LevelWarn, LevelInfo, LevelDebug} {
		if l >= at {
			return p.level[at]
		}
	}

	return p.level[LevelTrace]
}

// prettyHandler writes records for reading on a terminal: one line of
// key=value pairs in text format, or an unquoted indented object in JSON
// format. Group names qualify the keys of their attributes.
type prettyHandler struct {
	cfg    config
	style  *palette
	mu     *sync.Mutex
	attrs  []slog.Attr // qualified by the groups open when they were added
	prefix string
}

func newPrettyHandler(c config) *prettyHandler {
	return &prettyHandler{cfg: c, style: newPalette(c.output), mu: &sync.Mutex{}}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.Level(h.cfg.level)
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append(h.attrs[:len(h.attrs):len(h.attrs)], h.qualify(attrs)...)

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.prefix = h.prefix + name + "."

	return &c
}

func (h *prettyHandler) qualify(attrs []slog.Attr) []slog.Attr {
	out := make([]slog.Attr, 0, len(attrs))
	for _, a := range attrs {
		out = appendFlat(out, h.prefix, a)
	}

	return out
}

// appendFlat appends a with its key qualified by prefix, replacing group
// values by their members.
func appendFlat(out []slog.Attr, prefix string, a slog.Attr) []slog.Attr {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() != slog.KindGroup {
		if a.Key == "" {
			return out
		}

		return append(out, slog.Attr{Key: prefix + a.Key, Value: a.Value})
	}

	if a.Key != "" {
		prefix += a.Key + "."
	}

	for _, m := range a.Value.Group() {
		out = appendFlat(out, prefix, m)
	}

	return out
}

// field is a rendered key and value.
type field struct{ key, val string }

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make([]field, 0, 4+len(h.attrs)+r.NumAttrs())

	if !r.Time.IsZero() {
		if s := h.cfg.formatTime(r.Time); s != "" {
			fields = append(fields, field{slog.TimeKey, h.style.time.Render(s)})
		}
	}

	level := Level(r.Level)
	fields = append(fields, field{slog.LevelKey, h.style.levelStyle(level).Render(level.label())})

	if h.cfg.caller {
		if src := r.Source(); src != nil && src.File != "" {
			fields = append(fields, field{
				slog.SourceKey,
				h.style.str.Render(src.File + ":" + strconv.Itoa(src.Line)),
			})
		}
	}

	fields = append(fields, field{slog.MessageKey, h.style.str.Render(r.Message)})

	attrs := append(make([]slog.Attr, 0, len(h.attrs)+r.NumAttrs()), h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		attrs = appendFlat(attrs, h.prefix, a)

		return true
	})

	for _, a := range attrs {
		fields = append(fields, field{a.Key, h.value(a.Value)})
	}

	var buf bytes.Buffer

	if h.cfg.format == FormatJSON {
		h.writeObject(&buf, fields)
	} else {
		h.writeLine(&buf, fields)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.cfg.output.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) writeLine(buf *bytes.Buffer, fields []field) {
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(' ')
		}

		buf.WriteString(h.style.key.Render(f.key))
		buf.WriteByte('=')
		buf.WriteString(f.val)
	}

	buf.WriteByte('\n')
}

func (h *prettyHandler) writeObject(buf *bytes.Buffer, fields []field) {
	buf.WriteString("{\n")

	for i, f := range fields {
		if i > 0 {
			buf.WriteString(",\n")
		}

		buf.WriteString("  ")
		buf.WriteString(h.style.key.Render(f.key))
		buf.WriteString(": ")
		buf.WriteString(f.val)
	}

	buf.WriteString("\n}\n")
}

func (h *prettyHandler) value(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return h.style.str.Render(v.String())
	case slog.KindInt64, slog.KindUint64, slog.KindFloat64:
		return h.style.num.Render(v.String())
	case slog.KindBool:
		if v.Bool() {
			return h.style.yes.Render("true")
		}

		return h.style.no.Render("false")
	case slog.KindDuration:
		return h.style.dur.Render(v.Duration().String())
	case slog.KindTime:
		return h.style.time.Render(h.cfg.formatTime(v.Time()))
	}

	switch x := v.Any().(type) {
	case nil:
		return h.style.null.Render("null")
	case error:
		return h.style.err.Render(x.Error())
	case fmt.Stringer:
		return h.style.str.Render(x.String())
	}

	return h.style.str.Render(v.String())
}
