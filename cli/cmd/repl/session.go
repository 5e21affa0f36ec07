package repl

import (
	"context"
	"log/slog"
	"slices"
	"strconv"

	"github.com/ardnew/vexpr/lang"
	"github.com/ardnew/vexpr/log"
)

// Host is the function context of a session. It also describes its
// functions for completion and signature hints.
type Host interface {
	lang.Host

	// Names returns the sorted name of every callable function.
	Names() []string

	// Params returns the parameter names of the function bound to name.
	Params(name string) ([]string, bool)
}

// Binding is a variable visible in a session.
type Binding struct {
	Name  string
	Type  lang.Type
	Value lang.Value
}

// Session evaluates input lines against a persistent root scope, so
// variables declared on one line remain visible on the next.
type Session struct {
	host   Host
	scope  *lang.Scope
	logger log.Logger
	lines  int
}

// NewSession returns a session that evaluates into scope, calling functions
// on host. A nil scope starts empty.
func NewSession(host Host, scope *lang.Scope, logger log.Logger) *Session {
	if scope == nil {
		scope = lang.NewScope()
	}

	return &Session{host: host, scope: scope, logger: logger}
}

// Eval compiles and evaluates one input line.
func (s *Session) Eval(ctx context.Context, input string) (lang.Value, error) {
	s.lines++

	prog, err := lang.Compile(ctx, input,
		lang.WithScope(s.scope),
		lang.WithSourceName("<"+strconv.Itoa(s.lines)+">"),
		lang.WithLogger(s.logger),
	)
	if err != nil {
		return lang.Value{}, err
	}

	v, err := prog.Evaluate(ctx, s.host)
	if err != nil {
		return lang.Value{}, err
	}

	s.logger.TraceContext(ctx, "session eval",
		slog.Int("line", s.lines),
		slog.String("type", v.Type().String()),
		slog.Int("vars", s.scope.Len()))

	return v, nil
}

// Check compiles source in a child of the session scope. It reports syntax
// and name errors without declaring anything in the session.
func (s *Session) Check(ctx context.Context, source string) error {
	_, err := lang.Compile(ctx, source,
		lang.WithScope(s.scope.Child()),
		lang.WithLogger(s.logger),
	)

	return err
}

// Reset discards every variable.
func (s *Session) Reset() {
	s.scope = lang.NewScope()
}

// Vars returns every variable in declaration order.
func (s *Session) Vars() []Binding {
	names := s.scope.Names()
	vars := make([]Binding, 0, len(names))

	for _, name := range names {
		t, _ := s.scope.Lookup(name)
		v, _ := s.scope.Get(name)

		vars = append(vars, Binding{Name: name, Type: t, Value: v})
	}

	return vars
}

// Functions returns the sorted names of every callable function.
func (s *Session) Functions() []string {
	return s.host.Names()
}

// IsFunction reports whether name is a callable function.
func (s *Session) IsFunction(name string) bool {
	_, ok := slices.BinarySearch(s.host.Names(), name)

	return ok
}

// Candidates returns every name that may complete a word: variables,
// functions and keywords.
func (s *Session) Candidates() []string {
	names := s.scope.Names()
	names = append(names, s.host.Names()...)
	names = append(names, lang.Keywords()...)

	return names
}

// Signature returns the call signature of the named function and its
// parameter names, or "" if the function is unknown.
func (s *Session) Signature(name string) (signature string, params []string) {
	params, ok := s.host.Params(name)
	if !ok {
		if !s.IsFunction(name) {
			return "", nil
		}

		params = []string{"..."}
	}

	return formatSignature(name, params), params
}
