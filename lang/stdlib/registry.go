// Package stdlib provides a ready-made [lang.Host] with math, vector, text
// and system functions, and lets applications add their own functions in Go
// or as expr-lang expressions.
package stdlib

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"sync"

	"github.com/ardnew/vexpr/lang"
	"github.com/ardnew/vexpr/log"
)

// Registry is a [lang.Host] that dispatches calls to registered functions.
// It is safe for concurrent use.
type Registry struct {
	mutex   sync.RWMutex
	funcs   map[string]lang.Func
	params  map[string][]string
	environ map[string]string
	logger  log.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used to trace calls.
func WithLogger(logger log.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// New returns a Registry holding every built-in function.
func New(opts ...Option) *Registry {
	r := Empty(opts...)

	r.registerMath()
	r.registerVector()
	r.registerText()
	r.registerSys()

	return r
}

// Empty returns a Registry with no functions.
func Empty(opts ...Option) *Registry {
	r := &Registry{
		funcs:  make(map[string]lang.Func),
		params: make(map[string][]string),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Register binds fn to name, replacing any function already bound to it.
func (r *Registry) Register(name string, fn lang.Func) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.funcs[name] = fn
	delete(r.params, name)
}

// Params returns the parameter names of the function bound to name. A name
// prefixed with "..." accepts any number of trailing arguments.
func (r *Registry) Params(name string) ([]string, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if params, ok := r.params[name]; ok {
		return slices.Clone(params), true
	}

	if _, ok := r.funcs[name]; !ok {
		return nil, false
	}

	params, ok := builtinParams[name]

	return slices.Clone(params), ok
}

// Has reports whether a function is bound to name.
func (r *Registry) Has(name string) bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	_, ok := r.funcs[name]

	return ok
}

// Names returns the sorted names of every registered function.
func (r *Registry) Names() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return slices.Sorted(maps.Keys(r.funcs))
}

// Call implements [lang.Host].
func (r *Registry) Call(
	ctx context.Context,
	name string,
	args []lang.Value,
) (lang.Value, error) {
	r.mutex.RLock()
	fn, ok := r.funcs[name]
	r.mutex.RUnlock()

	if !ok {
		return lang.Value{}, lang.ErrUnknownFunction.WithDetail(name).
			With(slog.String("function", name))
	}

	r.logger.TraceContext(ctx, "call",
		slog.String("function", name),
		slog.Int("args", len(args)))

	return fn(ctx, args)
}

// requireArgs checks that the number of args is within [lo, hi]. A negative
// hi means no upper bound.
func requireArgs(name string, args []lang.Value, lo, hi int) error {
	n := len(args)
	if n >= lo && (hi < 0 || n <= hi) {
		return nil
	}

	var want string

	switch {
	case lo == hi:
		want = strconv.Itoa(lo)
	case hi < 0:
		want = "at least " + strconv.Itoa(lo)
	default:
		want = strconv.Itoa(lo) + "-" + strconv.Itoa(hi)
	}

	return lang.ErrArgument.
		WithDetail(name + " expects " + want + " argument(s), got " +
			strconv.Itoa(n)).
		With(slog.String("function", name), slog.Int("args", n))
}

// argError reports an argument of the wrong type.
func argError(name string, v lang.Value, want string) error {
	return lang.ErrArgument.
		WithDetail(name + " requires " + want + ", found " + v.Type().String()).
		With(slog.String("function", name))
}
