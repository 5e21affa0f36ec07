package lang

import (
	"log/slog"
	"slices"
)

// Scope is a frame of named variable bindings with an optional parent frame.
// Lookups walk outward from the innermost frame.
//
// A Scope is not safe for concurrent use.
type Scope struct {
	parent *Scope
	vars   map[string]*binding
	order  []string
}

type binding struct {
	typ   Type
	value Value
}

// NewScope returns an empty root frame.
func NewScope() *Scope {
	return &Scope{vars: make(map[string]*binding)}
}

// Child returns a new frame whose parent is s.
func (s *Scope) Child() *Scope {
	c := NewScope()
	c.parent = s

	return c
}

// Parent returns the enclosing frame, or nil for a root frame.
func (s *Scope) Parent() *Scope { return s.parent }

// Declare binds name to type t in this frame, initialized to the default
// value of t. It fails if name is already bound in this frame.
func (s *Scope) Declare(name string, t Type) error {
	if _, ok := s.vars[name]; ok {
		return ErrRedeclared.WithDetail(name).
			With(slog.String("name", name))
	}

	s.vars[name] = &binding{typ: t, value: Zero(t)}
	s.order = append(s.order, name)

	return nil
}

// Define declares name with the type of v in this frame and assigns v.
func (s *Scope) Define(name string, v Value) error {
	t := v.Type()
	if t.Kind == KindNull && !t.IsArray() {
		t = Scalar(KindAny)
	}

	if err := s.Declare(name, t); err != nil {
		return err
	}

	s.vars[name].value = v

	return nil
}

// undeclare removes a binding created by Declare in this frame.
func (s *Scope) undeclare(name string) {
	delete(s.vars, name)

	if i := slices.Index(s.order, name); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
}

// Lookup returns the declared type of name, searching outward.
func (s *Scope) Lookup(name string) (Type, bool) {
	b := s.find(name)
	if b == nil {
		return Type{}, false
	}

	return b.typ, true
}

// Get returns the value bound to name, searching outward.
func (s *Scope) Get(name string) (Value, error) {
	b := s.find(name)
	if b == nil {
		return Value{}, unresolved(name)
	}

	return b.value, nil
}

// Set replaces the value bound to name, converting it to the declared type.
func (s *Scope) Set(name string, v Value) error {
	b := s.find(name)
	if b == nil {
		return unresolved(name)
	}

	c, err := Coerce(v, b.typ)
	if err != nil {
		return err
	}

	b.value = c

	return nil
}

// SetIndex stores v at the element addressed by path within the array bound
// to name.
func (s *Scope) SetIndex(name string, v Value, path [][]int) error {
	b := s.find(name)
	if b == nil {
		return unresolved(name)
	}

	return SetIndex(b.value, path, v)
}

// Names returns every visible name, innermost frame first, without
// duplicates.
func (s *Scope) Names() []string {
	var names []string

	seen := make(map[string]bool)

	for f := s; f != nil; f = f.parent {
		for _, name := range f.order {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}

	return names
}

// Len returns the number of bindings in this frame.
func (s *Scope) Len() int { return len(s.order) }

// Reset restores every binding in this frame to the default value of its
// declared type.
func (s *Scope) Reset() {
	for _, b := range s.vars {
		b.value = Zero(b.typ)
	}
}

func (s *Scope) find(name string) *binding {
	for f := s; f != nil; f = f.parent {
		if b, ok := f.vars[name]; ok {
			return b
		}
	}

	return nil
}

func unresolved(name string) *Error {
	return ErrUnresolved.WithDetail(name).With(slog.String("name", name))
}
