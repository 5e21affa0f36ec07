package lang

import (
	"context"
	"io"
	"log/slog"

	"github.com/klauspost/readahead"

	"github.com/ardnew/vexpr/log"
)

// Program is a compiled expression together with the variable frames it was
// parsed into. The frames persist across evaluations until Reset.
//
// A Program is not safe for concurrent evaluation.
type Program struct {
	Root     Node
	source   string
	scope    *Scope
	scopes   []*Scope
	declared []declaration // includes bindings added to the root frame
	opts     options
	logger   log.Logger
}

// options holds Program configuration.
// This type is gob-encodable for cache key hashing.
type options struct {
	MaxDepth   int
	SourceName string
}

// Option configures compilation.
type Option func(*Program)

// WithMaxDepth sets the maximum nesting depth of the expression.
func WithMaxDepth(depth int) Option {
	return func(p *Program) {
		p.opts.MaxDepth = depth
	}
}

// WithSourceName sets the source name reported in positions.
func WithSourceName(name string) Option {
	return func(p *Program) {
		p.opts.SourceName = name
	}
}

// WithScope compiles into the given root frame instead of a new one.
// Declarations at the top level of the expression are added to it, and its
// existing bindings are visible to the expression.
func WithScope(scope *Scope) Option {
	return func(p *Program) {
		p.scope = scope
	}
}

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(p *Program) {
		p.logger = logger
	}
}

// applyDefaults sets default option values on a Program.
func applyDefaults(p *Program) {
	p.opts.MaxDepth = DefaultMaxDepth
}

// applyOptions applies functional options to a Program.
func applyOptions(p *Program, opts ...Option) {
	for _, opt := range opts {
		opt(p)
	}
}

// Compile parses source into a Program.
func Compile(ctx context.Context, source string, opts ...Option) (*Program, error) {
	prog := &Program{source: source}

	applyDefaults(prog)
	applyOptions(prog, opts...)

	if prog.scope == nil {
		prog.scope = NewScope()
	}

	lex, err := NewLexer(prog.opts.SourceName, source)
	if err != nil {
		return nil, err
	}

	lex.Trace(ctx, prog.logger)

	p := newParser(lex, prog.scope, prog.opts.MaxDepth)

	root, err := p.parseProgram()
	if err != nil {
		prog.logger.TraceContext(ctx, "compile failed",
			slog.String("source_name", prog.opts.SourceName),
			slog.Any("error", err))

		return nil, err
	}

	prog.Root = root
	prog.scopes = p.scopes
	prog.declared = p.declared

	prog.logger.TraceContext(ctx, "compile complete",
		slog.String("source_name", prog.opts.SourceName),
		slog.Int("source_bytes", len(source)),
		slog.Int("frames", len(prog.scopes)))

	return prog, nil
}

// CompileReader reads all of r and compiles it.
func CompileReader(
	ctx context.Context,
	r io.Reader,
	opts ...Option,
) (*Program, error) {
	// Wrap reader with async read-ahead for concurrent I/O.
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).
			With(slog.String("source", "reader"))
	}

	return Compile(ctx, string(data), opts...)
}

// Evaluate evaluates the program, dispatching function calls to host.
func (p *Program) Evaluate(ctx context.Context, host Host) (Value, error) {
	v, err := p.Root.Evaluate(ctx, host)
	if err != nil {
		p.logger.TraceContext(ctx, "evaluate failed",
			slog.String("class", ClassOf(err).String()),
			slog.Any("error", err))

		return Value{}, err
	}

	p.logger.TraceContext(ctx, "evaluate complete",
		slog.String("type", v.Type().String()))

	return v, nil
}

// Scope returns the root frame of the program.
func (p *Program) Scope() *Scope { return p.scope }

// Scopes returns every frame created while compiling, root first.
func (p *Program) Scopes() []*Scope { return p.scopes }

// Source returns the source text the program was compiled from.
func (p *Program) Source() string { return p.source }

// Format returns the canonical source text of the program.
func (p *Program) Format() string { return Format(p.Root) }

// Reset restores every variable declared by the program to its default
// value. Bindings of a root frame supplied with WithScope that the program
// did not declare are left unchanged.
func (p *Program) Reset() {
	for _, s := range p.scopes[1:] {
		s.Reset()
	}

	for _, d := range p.declared {
		if b, ok := d.scope.vars[d.name]; ok {
			b.value = Zero(b.typ)
		}
	}
}
