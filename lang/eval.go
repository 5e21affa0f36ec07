package lang

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
)

// Evaluate evaluates each statement in order and returns the last value.
func (n *Sequence) Evaluate(ctx context.Context, host Host) (Value, error) {
	var v Value

	for _, s := range n.Statements {
		var err error
		if v, err = s.Evaluate(ctx, host); err != nil {
			return Value{}, err
		}
	}

	return v, nil
}

// Evaluate stores the right-hand value into the target and returns the
// stored value.
func (n *Assign) Evaluate(ctx context.Context, host Host) (Value, error) {
	return update(ctx, host, n.Target, n.OpPos, func(cur func() (Value, error)) (Value, error) {
		var lhs Value

		if n.Op != OpNone {
			var err error
			if lhs, err = cur(); err != nil {
				return Value{}, err
			}
		}

		rhs, err := n.Value.Evaluate(ctx, host)
		if err != nil || n.Op == OpNone {
			return rhs, err
		}

		res, err := Binary(n.Op, lhs, rhs)
		if err != nil {
			return Value{}, operatorError(n.OpPos, n.Op, lhs, rhs, err)
		}

		return res, nil
	})
}

// Evaluate adds or subtracts one from the target. A prefix increment returns
// the stored value, a postfix increment the value before the update.
func (n *Increment) Evaluate(ctx context.Context, host Host) (Value, error) {
	var old Value

	v, err := update(ctx, host, n.Target, n.pos, func(cur func() (Value, error)) (Value, error) {
		var err error
		if old, err = cur(); err != nil {
			return Value{}, err
		}

		res, err := Binary(n.Op, old, Int(1))
		if err != nil {
			return Value{}, operatorError(n.pos, n.Op, old, Int(1), err)
		}

		return res, nil
	})

	if err != nil || n.Prefix {
		return v, err
	}

	return old, nil
}

// update evaluates the index path of target, if any, then computes a new
// value with compute, stores it, and returns the stored value. The cur
// function passed to compute reads the current value of the target.
func update(
	ctx context.Context,
	host Host,
	target Node,
	pos Position,
	compute func(cur func() (Value, error)) (Value, error),
) (Value, error) {
	switch t := target.(type) {
	case *Variable:
		v, err := compute(func() (Value, error) {
			return t.Evaluate(ctx, host)
		})
		if err != nil {
			return Value{}, err
		}

		if err := t.scope.Set(t.Name, v); err != nil {
			return Value{}, locate(pos, err)
		}

		return t.scope.Get(t.Name)

	case *Index:
		base, ok := t.Base.(*Variable)
		if !ok {
			return Value{}, ErrInvalidTarget.WithPosition(t.pos)
		}

		path, err := t.path(ctx, host)
		if err != nil {
			return Value{}, err
		}

		v, err := compute(func() (Value, error) {
			arr, err := base.Evaluate(ctx, host)
			if err != nil {
				return Value{}, err
			}

			elem, err := GetIndex(arr, path)

			return elem, locate(t.pos, err)
		})
		if err != nil {
			return Value{}, err
		}

		if err := base.scope.SetIndex(base.Name, v, path); err != nil {
			return Value{}, locate(t.pos, err)
		}

		arr, err := base.scope.Get(base.Name)
		if err != nil {
			return Value{}, locate(t.pos, err)
		}

		elem, err := GetIndex(arr, path)

		return elem, locate(t.pos, err)

	default:
		return Value{}, ErrInvalidTarget.WithPosition(pos)
	}
}

// Evaluate initializes the declared name and returns its value.
func (n *Declare) Evaluate(ctx context.Context, host Host) (Value, error) {
	v := Zero(n.Type)

	if n.Init != nil {
		var err error
		if v, err = n.Init.Evaluate(ctx, host); err != nil {
			return Value{}, err
		}
	}

	if err := n.scope.Set(n.Name, v); err != nil {
		return Value{}, locate(n.pos, err)
	}

	return n.scope.Get(n.Name)
}

// Evaluate returns the value of Then or Else depending on the bool Cond.
func (n *Ternary) Evaluate(ctx context.Context, host Host) (Value, error) {
	cond, err := n.Cond.Evaluate(ctx, host)
	if err != nil {
		return Value{}, err
	}

	b, ok := cond.Bool()
	if !ok {
		return Value{}, ErrType.WithPosition(n.Cond.Pos()).
			WithDetail("condition must be bool, found " + cond.Type().String()).
			With(slog.String("operator", "?:"),
				slog.String("operand", cond.Literal()))
	}

	if b {
		return n.Then.Evaluate(ctx, host)
	}

	return n.Else.Evaluate(ctx, host)
}

// Evaluate evaluates operands until the result is decided: the first true
// operand of "||" or the first false operand of "&&". Every operand
// evaluated must be bool.
func (n *Logical) Evaluate(ctx context.Context, host Host) (Value, error) {
	decided := n.Op == OpOr

	for _, operand := range n.Operands {
		v, err := operand.Evaluate(ctx, host)
		if err != nil {
			return Value{}, err
		}

		b, ok := v.Bool()
		if !ok {
			return Value{}, ErrType.WithPosition(operand.Pos()).
				WithDetail("operand of " + n.Op.String() + " must be bool, found " +
					v.Type().String()).
				With(slog.String("operator", n.Op.String()),
					slog.String("operand", v.Literal()))
		}

		if b == decided {
			return Bool(decided), nil
		}
	}

	return Bool(!decided), nil
}

// Evaluate applies the comparison operator.
func (n *Compare) Evaluate(ctx context.Context, host Host) (Value, error) {
	lhs, err := n.Left.Evaluate(ctx, host)
	if err != nil {
		return Value{}, err
	}

	rhs, err := n.Right.Evaluate(ctx, host)
	if err != nil {
		return Value{}, err
	}

	v, err := Binary(n.Op, lhs, rhs)
	if err != nil {
		return Value{}, operatorError(n.OpPos, n.Op, lhs, rhs, err)
	}

	return v, nil
}

// Evaluate folds the terms left to right.
func (n *Chain) Evaluate(ctx context.Context, host Host) (Value, error) {
	acc, err := n.Left.Evaluate(ctx, host)
	if err != nil {
		return Value{}, err
	}

	for _, t := range n.Terms {
		rhs, err := t.Operand.Evaluate(ctx, host)
		if err != nil {
			return Value{}, err
		}

		res, err := Binary(t.Op, acc, rhs)
		if err != nil {
			return Value{}, operatorError(t.Pos, t.Op, acc, rhs, err)
		}

		acc = res
	}

	return acc, nil
}

// Evaluate applies the prefix operator.
func (n *UnaryExpr) Evaluate(ctx context.Context, host Host) (Value, error) {
	v, err := n.Operand.Evaluate(ctx, host)
	if err != nil {
		return Value{}, err
	}

	res, err := Unary(n.Op, v)
	if err != nil {
		return Value{}, ErrOperator.WithPosition(n.pos).
			WithDetail(n.Op.String() + v.Literal()).
			With(slog.String("operator", n.Op.String()),
				slog.String("operand", v.Literal())).
			Wrap(err)
	}

	return res, nil
}

// Evaluate returns the element or sub-array addressed by the index groups.
func (n *Index) Evaluate(ctx context.Context, host Host) (Value, error) {
	base, err := n.Base.Evaluate(ctx, host)
	if err != nil {
		return Value{}, err
	}

	path, err := n.path(ctx, host)
	if err != nil {
		return Value{}, err
	}

	v, err := GetIndex(base, path)
	if err != nil {
		return Value{}, locate(n.pos, err)
	}

	return v, nil
}

// path evaluates every index expression to an int.
func (n *Index) path(ctx context.Context, host Host) ([][]int, error) {
	path := make([][]int, len(n.Groups))

	for i, group := range n.Groups {
		path[i] = make([]int, len(group))

		for j, expr := range group {
			v, err := expr.Evaluate(ctx, host)
			if err != nil {
				return nil, err
			}

			if path[i][j], err = CastInt(v); err != nil {
				return nil, locate(expr.Pos(), err)
			}
		}
	}

	return path, nil
}

// Evaluate returns the constant value.
func (n *Literal) Evaluate(context.Context, Host) (Value, error) {
	return n.Value, nil
}

// Evaluate returns the current value of the variable.
func (n *Variable) Evaluate(context.Context, Host) (Value, error) {
	if n.scope == nil {
		return Value{}, locate(n.pos, unresolved(n.Name))
	}

	v, err := n.scope.Get(n.Name)
	if err != nil {
		return Value{}, locate(n.pos, err)
	}

	return v, nil
}

// Evaluate evaluates the arguments left to right and dispatches the call to
// the host.
func (n *Call) Evaluate(ctx context.Context, host Host) (Value, error) {
	if host == nil {
		return Value{}, ErrNoHost.WithPosition(n.pos).WithDetail(n.Name)
	}

	args := make([]Value, len(n.Args))

	for i, arg := range n.Args {
		var err error
		if args[i], err = arg.Evaluate(ctx, host); err != nil {
			return Value{}, err
		}
	}

	if err := ctx.Err(); err != nil {
		return Value{}, ErrCall.WithPosition(n.pos).WithDetail(n.Name).Wrap(err)
	}

	v, err := host.Call(ctx, n.Name, args)
	if err != nil {
		return Value{}, ErrCall.WithPosition(n.pos).WithDetail(n.Name).
			With(slog.String("function", n.Name),
				slog.Int("args", len(args))).
			Wrap(err)
	}

	return v, nil
}

// Evaluate evaluates the enclosed expression.
func (n *Group) Evaluate(ctx context.Context, host Host) (Value, error) {
	return n.Inner.Evaluate(ctx, host)
}

// Evaluate returns a new array of the element values.
func (n *ArrayLiteral) Evaluate(ctx context.Context, host Host) (Value, error) {
	vals := make([]Value, len(n.Elements))

	for i, e := range n.Elements {
		var err error
		if vals[i], err = e.Evaluate(ctx, host); err != nil {
			return Value{}, err
		}
	}

	v, err := arrayLiteral(vals)
	if err != nil {
		return Value{}, locate(n.pos, err)
	}

	return v, nil
}

// Evaluate converts the arguments to the constructed type.
func (n *NewValue) Evaluate(ctx context.Context, host Host) (Value, error) {
	args := make([]Value, len(n.Args))

	for i, a := range n.Args {
		var err error
		if args[i], err = a.Evaluate(ctx, host); err != nil {
			return Value{}, err
		}
	}

	v, err := Convert(n.Type, args)
	if err != nil {
		return Value{}, locate(n.pos, err)
	}

	return v, nil
}

// Evaluate builds the array, copying the initializer when present.
func (n *NewArrayExpr) Evaluate(ctx context.Context, host Host) (Value, error) {
	var (
		init Value
		err  error
	)

	if n.Init != nil {
		if init, err = n.Init.Evaluate(ctx, host); err != nil {
			return Value{}, err
		}

		if init, err = Coerce(init, n.Type); err != nil {
			return Value{}, locate(n.Init.pos, err)
		}

		if n.Sizes == nil {
			return init, nil
		}
	}

	dims := make([]int, len(n.Sizes))

	for i, s := range n.Sizes {
		v, err := s.Evaluate(ctx, host)
		if err != nil {
			return Value{}, err
		}

		if dims[i], err = CastInt(v); err != nil {
			return Value{}, locate(s.Pos(), err)
		}
	}

	if n.Init == nil {
		v, err := BuildArray(n.Type, dims)
		if err != nil {
			return Value{}, locate(n.pos, err)
		}

		return v, nil
	}

	if a, _ := init.Array(); a == nil || !slices.Equal(a.Dims, dims) {
		return Value{}, ErrShapeMismatch.WithPosition(n.pos).
			WithDetail("initializer shape " + shape(init) +
				" does not match " + formatDims(dims))
	}

	return init, nil
}

func shape(v Value) string {
	a, _ := v.Array()
	if a == nil {
		return "null"
	}

	return formatDims(a.Dims)
}

func formatDims(dims []int) string {
	b := []byte{'['}

	for i, d := range dims {
		if i > 0 {
			b = append(b, ", "...)
		}

		b = strconv.AppendInt(b, int64(d), 10)
	}

	return string(append(b, ']'))
}

// operatorError reports a failed binary operation with both operands.
func operatorError(pos Position, op Op, lhs, rhs Value, err error) error {
	return ErrOperator.WithPosition(pos).
		WithDetail(lhs.Literal() + " " + op.String() + " " + rhs.Literal()).
		With(
			slog.String("operator", op.String()),
			slog.String("left", lhs.Literal()),
			slog.String("right", rhs.Literal()),
		).
		Wrap(err)
}

// locate attaches pos to err if err is an unpositioned *Error.
func locate(pos Position, err error) error {
	if err == nil {
		return nil
	}

	if e, ok := err.(*Error); ok && !e.pos.IsValid() {
		return e.WithPosition(pos)
	}

	return err
}
