package lang

import (
	"context"
	"log/slog"
	"maps"
	"slices"
)

// Host dispatches function calls made by an expression. It is supplied to
// each top-level evaluation and is never consulted for variables.
type Host interface {
	Call(ctx context.Context, name string, args []Value) (Value, error)
}

// HostFunc adapts a function to the Host interface.
type HostFunc func(ctx context.Context, name string, args []Value) (Value, error)

// Call calls f.
func (f HostFunc) Call(
	ctx context.Context,
	name string,
	args []Value,
) (Value, error) {
	return f(ctx, name, args)
}

// Func is a host function bound to a name.
type Func func(ctx context.Context, args []Value) (Value, error)

// Functions is a Host backed by a map of named functions.
type Functions map[string]Func

// Call calls the function registered as name.
func (f Functions) Call(
	ctx context.Context,
	name string,
	args []Value,
) (Value, error) {
	fn, ok := f[name]
	if !ok {
		return Value{}, ErrUnknownFunction.WithDetail(name).
			With(slog.String("function", name))
	}

	return fn(ctx, args)
}

// Names returns the sorted function names.
func (f Functions) Names() []string {
	return slices.Sorted(maps.Keys(f))
}
