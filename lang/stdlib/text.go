package stdlib

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/ardnew/vexpr/lang"
)

func (r *Registry) registerText() {
	r.Register("len", textLen)
	r.Register("upper", stringFunc("upper", strings.ToUpper))
	r.Register("lower", stringFunc("lower", strings.ToLower))
	r.Register("trim", stringFunc("trim", strings.TrimSpace))
	r.Register("str", conversion(lang.KindString))
	r.Register("toint", conversion(lang.KindInt))
	r.Register("tofloat", conversion(lang.KindFloat))
}

// textLen returns the number of runes in a string, the number of elements
// in an array, or the number of components in a vector.
func textLen(_ context.Context, args []lang.Value) (lang.Value, error) {
	if err := requireArgs("len", args, 1, 1); err != nil {
		return lang.Value{}, err
	}

	v := args[0]

	if s, ok := v.Text(); ok {
		return lang.Int(int64(utf8.RuneCountInString(s))), nil
	}

	if a, ok := v.Array(); ok {
		if a == nil {
			return lang.Int(0), nil
		}

		return lang.Int(int64(a.Len())), nil
	}

	if c, ok := v.Components(); ok && len(c) > 1 {
		return lang.Int(int64(len(c))), nil
	}

	return lang.Value{}, argError("len", v, "a string, array or vector")
}

func stringFunc(name string, fn func(string) string) lang.Func {
	return func(_ context.Context, args []lang.Value) (lang.Value, error) {
		if err := requireArgs(name, args, 1, 1); err != nil {
			return lang.Value{}, err
		}

		s, ok := args[0].Text()
		if !ok {
			return lang.Value{}, argError(name, args[0], "a string")
		}

		return lang.String(fn(s)), nil
	}
}

// conversion returns a function behaving like the construction expression
// of kind k.
func conversion(k lang.Kind) lang.Func {
	return func(_ context.Context, args []lang.Value) (lang.Value, error) {
		return lang.Convert(lang.Scalar(k), args)
	}
}
