package lang

import (
	"math"
	"strconv"
	"strings"
)

// Float2 is a two-component vector.
type Float2 struct{ X, Y float64 }

// Float3 is a three-component vector.
type Float3 struct{ X, Y, Z float64 }

// Float4 is a four-component vector.
type Float4 struct{ X, Y, Z, W float64 }

func (v Float2) String() string { return formatComponents(v.X, v.Y) }

func (v Float3) String() string { return formatComponents(v.X, v.Y, v.Z) }

func (v Float4) String() string { return formatComponents(v.X, v.Y, v.Z, v.W) }

// Dot returns the dot product of v and u.
func (v Float3) Dot(u Float3) float64 { return v.X*u.X + v.Y*u.Y + v.Z*u.Z }

// Cross returns the cross product of v and u.
func (v Float3) Cross(u Float3) Float3 {
	return Float3{
		X: v.Y*u.Z - v.Z*u.Y,
		Y: v.Z*u.X - v.X*u.Z,
		Z: v.X*u.Y - v.Y*u.X,
	}
}

// Length returns the Euclidean length of v.
func (v Float3) Length() float64 { return math.Sqrt(v.Dot(v)) }

// ParseFloat2 parses "(x, y)", "x, y" or "x y".
func ParseFloat2(s string) (Float2, error) {
	c, err := parseComponents(s, 2)
	if err != nil {
		return Float2{}, err
	}

	return Float2{c[0], c[1]}, nil
}

// ParseFloat3 parses "(x, y, z)", "x, y, z" or "x y z".
func ParseFloat3(s string) (Float3, error) {
	c, err := parseComponents(s, 3)
	if err != nil {
		return Float3{}, err
	}

	return Float3{c[0], c[1], c[2]}, nil
}

// ParseFloat4 parses "(x, y, z, w)", "x, y, z, w" or "x y z w".
func ParseFloat4(s string) (Float4, error) {
	c, err := parseComponents(s, 4)
	if err != nil {
		return Float4{}, err
	}

	return Float4{c[0], c[1], c[2], c[3]}, nil
}

func formatComponents(c ...float64) string {
	part := make([]string, len(c))
	for i, f := range c {
		part[i] = formatFloat(f)
	}

	return "(" + strings.Join(part, ", ") + ")"
}

func parseComponents(s string, n int) ([]float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")

	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})

	if len(fields) != n {
		return nil, ErrArgument.WithDetail(
			"expected " + strconv.Itoa(n) + " components, found " +
				strconv.Itoa(len(fields)),
		)
	}

	c := make([]float64, n)

	for i, f := range fields {
		x, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, ErrArgument.Wrap(err)
		}

		c[i] = x
	}

	return c, nil
}
