package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ardnew/vexpr/lang"
	"github.com/ardnew/vexpr/lang/stdlib"
	"github.com/ardnew/vexpr/log"
)

// Output formats of evaluated results.
const (
	outputNative = "native"
	outputJSON   = "json"
	outputYAML   = "yaml"
)

// Eval evaluates expressions and prints each result.
//
// Every statement shares one root scope, so variables declared with --let
// or by an earlier expression are visible to later ones.
type Eval struct {
	Let    []string `help:"Statement to evaluate before the expressions (repeatable)." placeholder:"STMT"             sep:"none" short:"l"`
	Func   []string `help:"Define a function NAME(PARAMS)=BODY in expr-lang."          placeholder:"NAME(PARAMS)=BODY" sep:"none" short:"F"`
	Output string   `help:"Result format (${enum})."                                 default:"native"                enum:"native,json,yaml" short:"o"`
	Indent int      `help:"Indent width for json and yaml results."                  default:"2"                     short:"i"`

	Expr []string `arg:"" help:"Expression, '@FILE' to read a file, or '-' for stdin." name:"expr" optional:""`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	reg, err := newRegistry(ctx)
	if err != nil {
		return err
	}

	for _, def := range e.Func {
		if err := defineFunc(reg, def); err != nil {
			return err
		}
	}

	scope := lang.NewScope()

	for _, stmt := range e.Let {
		if _, err := evaluate(ctx, reg, scope, "<let>", stmt); err != nil {
			return err
		}
	}

	exprs := e.Expr
	if len(exprs) == 0 {
		exprs = []string{stdinSource}
	}

	for _, arg := range exprs {
		name, source, err := readSource(arg)
		if err != nil {
			return err
		}

		v, err := evaluate(ctx, reg, scope, name, source)
		if err != nil {
			return err
		}

		if err := e.write(ctx, v); err != nil {
			return ErrWriteResult.With(slog.String("format", e.Output)).Wrap(err)
		}
	}

	return nil
}

func (e *Eval) write(ctx context.Context, v lang.Value) error {
	switch e.Output {
	case outputJSON:
		return lang.FormatValueJSON(stdout, v, e.Indent)
	case outputYAML:
		return lang.FormatValueYAML(ctx, stdout, v, e.Indent)
	default:
		_, err := fmt.Fprintln(stdout, v.String())

		return err
	}
}

// evaluate compiles source into scope and evaluates it.
func evaluate(
	ctx context.Context,
	host lang.Host,
	scope *lang.Scope,
	name, source string,
) (lang.Value, error) {
	prog, err := lang.Compile(ctx, source,
		lang.WithScope(scope),
		lang.WithSourceName(name),
		lang.WithLogger(log.Default()),
	)
	if err != nil {
		return lang.Value{}, expressionError(err, name, source)
	}

	v, err := prog.Evaluate(ctx, host)
	if err != nil {
		return lang.Value{}, expressionError(err, name, source)
	}

	return v, nil
}

// defineFunc registers the function defined by def, written as
// NAME(PARAMS)=BODY or NAME=BODY.
func defineFunc(reg *stdlib.Registry, def string) error {
	name, params, body, err := parseFuncFlag(def)
	if err != nil {
		return err
	}

	if err := reg.RegisterExpr(name, params, body); err != nil {
		return ErrFuncFlag.With(slog.String("func", name)).Wrap(err)
	}

	return nil
}

func parseFuncFlag(def string) (name string, params []string, body string, err error) {
	head, body, ok := strings.Cut(def, "=")
	if !ok || strings.TrimSpace(body) == "" {
		return "", nil, "", ErrFuncFlag.
			With(slog.String("func", def)).
			Wrap(errors.New("expected NAME(PARAMS)=BODY"))
	}

	head = strings.TrimSpace(head)

	name, list, hasParams := strings.Cut(head, "(")
	name = strings.TrimSpace(name)

	if hasParams {
		list, ok = strings.CutSuffix(strings.TrimSpace(list), ")")
		if !ok {
			return "", nil, "", ErrFuncFlag.
				With(slog.String("func", def)).
				Wrap(errors.New("unterminated parameter list"))
		}

		for param := range strings.SplitSeq(list, ",") {
			if param = strings.TrimSpace(param); param != "" {
				params = append(params, param)
			}
		}
	}

	if name == "" {
		return "", nil, "", ErrFuncFlag.
			With(slog.String("func", def)).
			Wrap(errors.New("missing function name"))
	}

	return name, params, strings.TrimSpace(body), nil
}
