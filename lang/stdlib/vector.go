package stdlib

import (
	"context"
	"math"

	"github.com/ardnew/vexpr/lang"
)

func (r *Registry) registerVector() {
	r.Register("dot", vecDot)
	r.Register("length", vecLength)
	r.Register("normalize", vecNormalize)
	r.Register("cross", vecCross)
}

// vectorArg returns the components of a float2, float3 or float4 argument.
func vectorArg(name string, v lang.Value) ([]float64, error) {
	c, ok := v.Components()
	if !ok || len(c) < 2 {
		return nil, argError(name, v, "a vector")
	}

	return c, nil
}

func vecDot(_ context.Context, args []lang.Value) (lang.Value, error) {
	if err := requireArgs("dot", args, 2, 2); err != nil {
		return lang.Value{}, err
	}

	a, err := vectorArg("dot", args[0])
	if err != nil {
		return lang.Value{}, err
	}

	b, err := vectorArg("dot", args[1])
	if err != nil {
		return lang.Value{}, err
	}

	if len(a) != len(b) {
		return lang.Value{}, argError("dot", args[1], args[0].Type().String())
	}

	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}

	return lang.Float(sum), nil
}

func vecLength(_ context.Context, args []lang.Value) (lang.Value, error) {
	if err := requireArgs("length", args, 1, 1); err != nil {
		return lang.Value{}, err
	}

	c, err := vectorArg("length", args[0])
	if err != nil {
		return lang.Value{}, err
	}

	return lang.Float(norm(c)), nil
}

// vecNormalize returns the zero vector unchanged.
func vecNormalize(_ context.Context, args []lang.Value) (lang.Value, error) {
	if err := requireArgs("normalize", args, 1, 1); err != nil {
		return lang.Value{}, err
	}

	c, err := vectorArg("normalize", args[0])
	if err != nil {
		return lang.Value{}, err
	}

	if n := norm(c); n != 0 {
		for i := range c {
			c[i] /= n
		}
	}

	v, _ := lang.Vector(c...)

	return v, nil
}

func vecCross(_ context.Context, args []lang.Value) (lang.Value, error) {
	if err := requireArgs("cross", args, 2, 2); err != nil {
		return lang.Value{}, err
	}

	a, ok := args[0].Float3()
	if !ok {
		return lang.Value{}, argError("cross", args[0], "float3")
	}

	b, ok := args[1].Float3()
	if !ok {
		return lang.Value{}, argError("cross", args[1], "float3")
	}

	return lang.Vec3(a.Cross(b)), nil
}

func norm(c []float64) float64 {
	var sum float64
	for _, x := range c {
		sum += x * x
	}

	return math.Sqrt(sum)
}
