// Package log writes structured log records with [log/slog].
//
// A [Logger] is made once with functional options and never changes:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelTrace),
//		log.WithFormat(log.FormatText),
//		log.WithTimeLayout("Kitchen"))
//
//	logger.TraceContext(ctx, "compiled", slog.String("source", name))
//
// Every logging method takes [slog.Attr] values, never loose key/value pairs.
// [LevelTrace] sits below [slog.LevelDebug] and is printed as TRACE; the
// compiler and evaluator log at this level.
//
// The package-level functions log through a default logger, written to
// standard error, that the command line reconfigures with [Config] as flags
// are parsed.
//
// # Pretty output
//
// [WithPretty] (the default) styles records for a terminal with lipgloss:
// text records are one line of key=value pairs, JSON records are an indented
// object without quoting. Attributes of groups and [slog.LogValuer] values
// are flattened into dotted keys. Styles are dropped automatically when the
// output is not a terminal.
package log
