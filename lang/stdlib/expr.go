package stdlib

import (
	"context"
	"log/slog"
	"slices"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/vm"

	"github.com/ardnew/vexpr/lang"
)

// Errors returned by functions written in expr-lang.
var (
	ErrExprCompile  = lang.ErrParse.Derive("expr compile failed")
	ErrExprEvaluate = lang.ErrEvaluate.Derive("expr evaluation failed")
)

// argsName is the expr-lang identifier holding the call arguments.
const argsName = "args"

// RegisterExpr compiles body as an expr-lang expression and binds it to
// name. Inside body, each of params refers to the argument at the same
// position and "args" holds every argument as a list, so functions may
// accept more arguments than they name. Arguments are passed as native Go
// values (see [lang.Value.Native]) and the result is converted back with
// [lang.ValueOf].
func (r *Registry) RegisterExpr(name string, params []string, body string) error {
	program, err := expr.Compile(body,
		expr.Env(map[string]any{argsName: []any{}}),
		expr.Patch(&paramPatcher{params: params}),
	)
	if err != nil {
		return ErrExprCompile.Wrap(err).
			With(slog.String("function", name), slog.String("source", body))
	}

	r.logger.Debug("compiled expr function",
		slog.String("function", name),
		slog.Any("params", params))

	r.Register(name, exprFunc(name, len(params), body, program))

	r.mutex.Lock()
	r.params[name] = append(slices.Clone(params), "..."+argsName)
	r.mutex.Unlock()

	return nil
}

func exprFunc(name string, arity int, body string, program *vm.Program) lang.Func {
	return func(_ context.Context, args []lang.Value) (lang.Value, error) {
		if err := requireArgs(name, args, arity, -1); err != nil {
			return lang.Value{}, err
		}

		native := make([]any, len(args))
		for i, v := range args {
			native[i] = v.Native()
		}

		out, err := vm.Run(program, map[string]any{argsName: native})
		if err != nil {
			return lang.Value{}, ErrExprEvaluate.Wrap(err).
				With(slog.String("function", name), slog.String("source", body))
		}

		v, err := lang.ValueOf(out)
		if err != nil {
			return lang.Value{}, ErrExprEvaluate.Wrap(err).
				With(slog.String("function", name))
		}

		return v, nil
	}
}

// paramPatcher rewrites each identifier naming a parameter into an index
// expression on the argument list, so "a + b" with params [a b] runs as
// "args[0] + args[1]".
type paramPatcher struct {
	params []string
}

// Visit implements ast.Visitor.
func (p *paramPatcher) Visit(node *ast.Node) {
	ident, ok := (*node).(*ast.IdentifierNode)
	if !ok {
		return
	}

	i := slices.Index(p.params, ident.Value)
	if i < 0 {
		return
	}

	ast.Patch(node, &ast.MemberNode{
		Node:     &ast.IdentifierNode{Value: argsName},
		Property: &ast.IntegerNode{Value: i},
	})
}
