package cmd

import (
	"context"

	"github.com/ardnew/vexpr/cli/cmd/repl"
	"github.com/ardnew/vexpr/lang"
	"github.com/ardnew/vexpr/log"
)

// Repl starts an interactive session.
type Repl struct {
	Let  []string `help:"Statement to evaluate before the session starts (repeatable)." placeholder:"STMT"             sep:"none" short:"l"`
	Func []string `help:"Define a function NAME(PARAMS)=BODY in expr-lang."            placeholder:"NAME(PARAMS)=BODY" sep:"none" short:"F"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	session, err := r.session(ctx)
	if err != nil {
		return err
	}

	cacheDir := ""
	if ktx := kongContextFrom(ctx); ktx != nil {
		cacheDir = ktx.Model.Vars()[CacheIdentifier]
	}

	return repl.Run(ctx, session, cacheDir, log.Default())
}

// session builds the registry and evaluates the --let statements into the
// root scope of a new session.
func (r *Repl) session(ctx context.Context) (*repl.Session, error) {
	reg, err := newRegistry(ctx)
	if err != nil {
		return nil, err
	}

	for _, def := range r.Func {
		if err := defineFunc(reg, def); err != nil {
			return nil, err
		}
	}

	scope := lang.NewScope()

	for _, stmt := range r.Let {
		if _, err := evaluate(ctx, reg, scope, "<let>", stmt); err != nil {
			return nil, err
		}
	}

	return repl.NewSession(reg, scope, log.Default()), nil
}
