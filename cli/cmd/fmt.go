package cmd

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ardnew/vexpr/lang"
	"github.com/ardnew/vexpr/log"
)

// programs caches compiled sources, so a source named more than once is
// parsed once.
var programs = sync.OnceValue(func() *lang.Cache {
	return lang.NewCache(log.Default())
})

// Fmt parses expressions and formats them in the chosen format. Nothing is
// evaluated.
type Fmt struct {
	Native Native `cmd:"" default:"withargs" help:"Format as canonical source text (default)."`
	JSON   JSON   `cmd:""                    help:"Format the syntax tree as JSON."`
	YAML   YAML   `cmd:""                    help:"Format the syntax tree as YAML."`
	AST    AST    `cmd:""                    help:"Print the syntax tree with positions."`
}

// Native formats input as canonical source text.
type Native struct {
	Source []string `arg:"" default:"-" help:"Expression, '@FILE' to read a file, or '-' for stdin." name:"source"`
}

// Run executes the native command.
func (f *Native) Run(ctx context.Context) error {
	return formatSources(ctx, "native", f.Source, func(p *lang.Program) error {
		return p.FormatNative(ctx, stdout)
	})
}

// JSON formats the syntax tree as JSON.
type JSON struct {
	Indent int `default:"2" help:"Indent width for JSON output" short:"i"`

	Source []string `arg:"" default:"-" help:"Expression, '@FILE' to read a file, or '-' for stdin." name:"source"`
}

// Run executes the json command.
func (j *JSON) Run(ctx context.Context) error {
	return formatSources(ctx, "json", j.Source, func(p *lang.Program) error {
		return p.FormatJSON(ctx, stdout, j.Indent)
	})
}

// YAML formats the syntax tree as YAML.
type YAML struct {
	Indent int `default:"2" help:"Indent width for YAML output" short:"i"`

	Source []string `arg:"" default:"-" help:"Expression, '@FILE' to read a file, or '-' for stdin." name:"source"`
}

// Run executes the yaml command.
func (y *YAML) Run(ctx context.Context) error {
	return formatSources(ctx, "yaml", y.Source, func(p *lang.Program) error {
		return p.FormatYAML(ctx, stdout, y.Indent)
	})
}

// AST prints the syntax tree, one node per line.
type AST struct {
	Source []string `arg:"" default:"-" help:"Expression, '@FILE' to read a file, or '-' for stdin." name:"source"`
}

// Run executes the ast command.
func (a *AST) Run(ctx context.Context) error {
	return formatSources(ctx, "ast", a.Source, func(p *lang.Program) error {
		return p.Print(stdout)
	})
}

// formatSources compiles each source and writes it with format.
func formatSources(
	ctx context.Context,
	name string,
	sources []string,
	format func(*lang.Program) error,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	for _, arg := range sources {
		src, text, err := readSource(arg)
		if err != nil {
			return err
		}

		prog, err := programs().Compile(ctx, text,
			lang.WithSourceName(src),
			lang.WithLogger(log.Default()),
		)
		if err != nil {
			return expressionError(err, src, text)
		}

		if err := format(prog); err != nil {
			return ErrWriteResult.With(slog.String("format", name)).Wrap(err)
		}
	}

	return nil
}
