package lang

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
)

// Error categories. Every sentinel below is derived from exactly one of
// these, and errors.Is reports a match against its category as well as
// against the sentinel itself.
var (
	ErrParse    = NewError("parse error")
	ErrOperator = NewError("operator error")
	ErrIndex    = NewError("index error")
	ErrEvaluate = NewError("evaluation error")
)

// Parse errors.
var (
	ErrUnexpectedToken    = ErrParse.Derive("unexpected token")
	ErrInvalidNumber      = ErrParse.Derive("invalid number literal")
	ErrUnterminatedString = ErrParse.Derive("unterminated string")
	ErrUnterminatedBlock  = ErrParse.Derive("unterminated block comment")
	ErrInvalidEscape      = ErrParse.Derive("invalid escape sequence")
	ErrInvalidCharacter   = ErrParse.Derive("invalid character")
	ErrUnknownType        = ErrParse.Derive("unknown type")
	ErrInvalidTarget      = ErrParse.Derive("invalid assignment target")
	ErrMissingInitializer = ErrParse.Derive("array size requires initializer")
	ErrMaxDepthExceeded   = ErrParse.Derive("maximum nesting depth exceeded")
	ErrReadInput          = ErrParse.Derive("failed to read input")
)

// Operator errors.
var (
	ErrKindMismatch = ErrOperator.Derive("mismatched operand kinds")
	ErrDivideByZero = ErrOperator.Derive("division by zero")
)

// Index errors.
var (
	ErrIndexOutOfRange = ErrIndex.Derive("index out of range")
	ErrInvalidIndex    = ErrIndex.Derive("invalid array index")
	ErrIndexArity      = ErrIndex.Derive("wrong number of indices")
	ErrNotIndexable    = ErrIndex.Derive("value is not indexable")
	ErrArraySize       = ErrIndex.Derive("invalid array size")
	ErrShapeMismatch   = ErrIndex.Derive("array shape mismatch")
)

// Evaluation errors.
var (
	ErrType            = ErrEvaluate.Derive("type error")
	ErrUnresolved      = ErrEvaluate.Derive("unresolved name")
	ErrRedeclared      = ErrEvaluate.Derive("name already declared")
	ErrNoHost          = ErrEvaluate.Derive("no host context")
	ErrCall            = ErrEvaluate.Derive("function call failed")
	ErrUnknownFunction = ErrEvaluate.Derive("unknown function")
	ErrArgument        = ErrEvaluate.Derive("invalid argument")
)

// Error represents an error with optional structured logging attributes and
// a source position.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg    string
	detail string
	err    error       // Wrapped error (for errors.Unwrap)
	attrs  []slog.Attr // Attributes for structured logging
	pos    Position
	kind   *Error // Sentinel this error was created from
	parent *Error // Category of a derived sentinel
}

// NewError creates a new sentinel Error with a message.
func NewError(msg string) *Error {
	e := &Error{msg: msg}
	e.kind = e

	return e
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Derive creates a new sentinel that also matches e with errors.Is.
func (e *Error) Derive(msg string) *Error {
	d := &Error{msg: msg, parent: e.kind}
	d.kind = d

	return d
}

// Error implements the error interface.
func (e *Error) Error() string {
	// Build error message from whichever fields are set:
	//
	//   "<pos>: <msg>: <detail>: <err>"
	part := make([]string, 0, 4)

	if e.pos.IsValid() {
		part = append(part, e.pos.String())
	}

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.detail != "" {
		part = append(part, e.detail)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel e was created from, or one of
// that sentinel's categories.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.kind == nil {
		return false
	}

	for k := e.kind; k != nil; k = k.parent {
		if k == t.kind {
			return true
		}
	}

	return false
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+4)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.detail != "" {
		attrs = append(attrs, slog.String("detail", e.detail))
	}

	if e.pos.IsValid() {
		attrs = append(attrs, slog.String("position", e.pos.String()))
	}

	if e.err != nil {
		attrs = append(attrs, slog.Any("cause", e.err))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	c := e.clone()
	c.err = err

	return c
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	c := e.clone()
	c.attrs = make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(c.attrs, e.attrs)
	copy(c.attrs[len(e.attrs):], attrs)

	return c
}

// WithPosition returns a copy of e located at pos.
func (e *Error) WithPosition(pos Position) *Error {
	c := e.clone()
	c.pos = pos

	return c
}

// WithDetail returns a copy of e with a human-readable detail appended to its
// message.
func (e *Error) WithDetail(detail string) *Error {
	c := e.clone()
	c.detail = detail

	return c
}

// Position returns the source position of e, or the zero Position.
func (e *Error) Position() Position { return e.pos }

// Attr returns the value of the first attribute named key.
func (e *Error) Attr(key string) (slog.Value, bool) {
	for _, a := range e.attrs {
		if a.Key == key {
			return a.Value, true
		}
	}

	return slog.Value{}, false
}

func (e *Error) clone() *Error {
	return &Error{
		msg:    e.msg,
		detail: e.detail,
		err:    e.err,
		attrs:  e.attrs, // Share attrs
		pos:    e.pos,
		kind:   e.kind,
	}
}

// Class identifies the broad category of a failure.
type Class int

// Failure categories.
const (
	ClassUnknown Class = iota
	ClassParse
	ClassOperator
	ClassIndex
	ClassEvaluate
)

// String returns the name of c.
func (c Class) String() string {
	switch c {
	case ClassParse:
		return "parse"
	case ClassOperator:
		return "operator"
	case ClassIndex:
		return "index"
	case ClassEvaluate:
		return "evaluate"
	default:
		return "unknown"
	}
}

// ClassOf returns the category of the outermost categorized error in err's
// chain.
func ClassOf(err error) Class {
	for err != nil {
		if e, ok := err.(*Error); ok {
			switch {
			case e.Is(ErrParse):
				return ClassParse
			case e.Is(ErrOperator):
				return ClassOperator
			case e.Is(ErrIndex):
				return ClassIndex
			case e.Is(ErrEvaluate):
				return ClassEvaluate
			}
		}

		err = errors.Unwrap(err)
	}

	return ClassUnknown
}

// PositionOf returns the innermost source position recorded in err's chain.
func PositionOf(err error) (Position, bool) {
	var (
		pos   Position
		found bool
	)

	for err != nil {
		if e, ok := err.(*Error); ok && e.pos.IsValid() {
			pos, found = e.pos, true
		}

		err = errors.Unwrap(err)
	}

	return pos, found
}

// Snippet renders the line of source containing the position of err with a
// caret under the failing column. It returns the empty string if err carries
// no position within source.
func Snippet(err error, source string) string {
	pos, ok := PositionOf(err)
	if !ok {
		return ""
	}

	lines := strings.Split(source, "\n")
	if pos.Line < 1 || pos.Line > len(lines) {
		return ""
	}

	var src strings.Builder

	// Print the line with line number
	src.WriteString("  ")
	src.WriteString(strconv.Itoa(pos.Line))
	src.WriteString(" | ")
	src.WriteString(lines[pos.Line-1])
	src.WriteRune('\n')

	// +5 accounts for: 2 leading spaces + " | " (3 chars)
	padding := strings.Repeat(" ", len(strconv.Itoa(pos.Line))+5)

	if pos.Column > 0 {
		padding += strings.Repeat(" ", pos.Column-1)
	}

	src.WriteString(padding + "^\n")

	return src.String()
}
