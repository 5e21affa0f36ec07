package stdlib

import (
	"context"
	"math"

	"github.com/ardnew/vexpr/lang"
)

// registerMath registers the numeric functions. Functions of one argument
// apply componentwise to vectors.
func (r *Registry) registerMath() {
	r.Register("abs", mathAbs)
	r.Register("floor", rounding("floor", math.Floor))
	r.Register("ceil", rounding("ceil", math.Ceil))
	r.Register("round", rounding("round", math.Round))
	r.Register("sqrt", componentwise("sqrt", math.Sqrt))
	r.Register("sin", componentwise("sin", math.Sin))
	r.Register("cos", componentwise("cos", math.Cos))
	r.Register("tan", componentwise("tan", math.Tan))
	r.Register("pow", mathPow)
	r.Register("min", extremum("min", lang.OpLess))
	r.Register("max", extremum("max", lang.OpGreater))
	r.Register("clamp", mathClamp)
	r.Register("lerp", mathLerp)
}

// mapComponents applies fn to every component of a float or vector value.
// An int argument is treated as a float.
func mapComponents(
	name string,
	v lang.Value,
	fn func(float64) float64,
) (lang.Value, error) {
	if i, ok := v.Int(); ok {
		v = lang.Float(float64(i))
	}

	c, ok := v.Components()
	if !ok {
		return lang.Value{}, argError(name, v, "a number or vector")
	}

	for i := range c {
		c[i] = fn(c[i])
	}

	out, _ := lang.Vector(c...)

	return out, nil
}

func componentwise(name string, fn func(float64) float64) lang.Func {
	return func(_ context.Context, args []lang.Value) (lang.Value, error) {
		if err := requireArgs(name, args, 1, 1); err != nil {
			return lang.Value{}, err
		}

		return mapComponents(name, args[0], fn)
	}
}

// rounding returns ints unchanged.
func rounding(name string, fn func(float64) float64) lang.Func {
	return func(_ context.Context, args []lang.Value) (lang.Value, error) {
		if err := requireArgs(name, args, 1, 1); err != nil {
			return lang.Value{}, err
		}

		if _, ok := args[0].Int(); ok {
			return args[0], nil
		}

		return mapComponents(name, args[0], fn)
	}
}

func mathAbs(_ context.Context, args []lang.Value) (lang.Value, error) {
	if err := requireArgs("abs", args, 1, 1); err != nil {
		return lang.Value{}, err
	}

	if i, ok := args[0].Int(); ok {
		if i < 0 {
			return lang.Int(-i), nil
		}

		return args[0], nil
	}

	return mapComponents("abs", args[0], math.Abs)
}

func mathPow(_ context.Context, args []lang.Value) (lang.Value, error) {
	if err := requireArgs("pow", args, 2, 2); err != nil {
		return lang.Value{}, err
	}

	x, ok := args[0].Number()
	if !ok {
		return lang.Value{}, argError("pow", args[0], "a number")
	}

	y, ok := args[1].Number()
	if !ok {
		return lang.Value{}, argError("pow", args[1], "a number")
	}

	return lang.Float(math.Pow(x, y)), nil
}

// extremum returns the argument that wins every comparison by op. Arguments
// are returned unconverted, so min(1, 2.5) is the int 1.
func extremum(name string, op lang.Op) lang.Func {
	return func(_ context.Context, args []lang.Value) (lang.Value, error) {
		if err := requireArgs(name, args, 1, -1); err != nil {
			return lang.Value{}, err
		}

		best := args[0]

		if _, ok := best.Number(); !ok {
			return lang.Value{}, argError(name, best, "numbers")
		}

		for _, v := range args[1:] {
			if _, ok := v.Number(); !ok {
				return lang.Value{}, argError(name, v, "numbers")
			}

			wins, err := lang.Binary(op, v, best)
			if err != nil {
				return lang.Value{}, err
			}

			if b, _ := wins.Bool(); b {
				best = v
			}
		}

		return best, nil
	}
}

func mathClamp(ctx context.Context, args []lang.Value) (lang.Value, error) {
	if err := requireArgs("clamp", args, 3, 3); err != nil {
		return lang.Value{}, err
	}

	hi, err := extremum("clamp", lang.OpLess)(ctx, []lang.Value{args[0], args[2]})
	if err != nil {
		return lang.Value{}, err
	}

	return extremum("clamp", lang.OpGreater)(ctx, []lang.Value{hi, args[1]})
}

// mathLerp computes a + (b - a) * t, which works for numbers and vectors
// alike.
func mathLerp(_ context.Context, args []lang.Value) (lang.Value, error) {
	if err := requireArgs("lerp", args, 3, 3); err != nil {
		return lang.Value{}, err
	}

	a, b, t := args[0], args[1], args[2]

	d, err := lang.Binary(lang.OpSub, b, a)
	if err != nil {
		return lang.Value{}, err
	}

	if d, err = lang.Binary(lang.OpMul, d, t); err != nil {
		return lang.Value{}, err
	}

	return lang.Binary(lang.OpAdd, a, d)
}
