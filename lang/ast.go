package lang

import (
	"context"
)

// Node is an element of a parsed expression tree. Nodes are immutable after
// parsing; evaluation mutates only the Scope frames they were parsed in.
type Node interface {
	// Pos returns the position of the first token of the node.
	Pos() Position

	// Evaluate computes the value of the node. The host receives every
	// function call; variables are resolved through the node's Scope.
	Evaluate(ctx context.Context, host Host) (Value, error)

	// Write renders canonical source text for the node.
	Write(w *Writer)
}

type node struct{ pos Position }

func (n node) Pos() Position { return n.pos }

// Sequence is a list of statements separated by ";". It evaluates each in
// order and yields the value of the last.
type Sequence struct {
	node
	Statements []Node
}

// Assign stores the value of an expression into a variable or array
// element. Op is OpNone for plain "=", otherwise the binary operator of a
// compound assignment such as "+=".
type Assign struct {
	node
	Target Node // *Variable or *Index of a *Variable
	Op     Op
	OpPos  Position
	Value  Node
}

// Increment adds (OpAdd) or subtracts (OpSub) one from a variable or array
// element. A prefix increment yields the new value, a postfix increment the
// old one.
type Increment struct {
	node
	Target Node
	Op     Op
	Prefix bool
}

// Declare binds a typed name in the enclosing frame and initializes it each
// time it is evaluated.
type Declare struct {
	node
	Type  Type
	Name  string
	Init  Node // nil for the default value of Type
	scope *Scope
}

// Ternary selects one of two expressions by a bool condition.
type Ternary struct {
	node
	Cond Node
	Then Node
	Else Node
}

// Logical is a short-circuit chain of "&&" (OpAnd) or "||" (OpOr) operands.
type Logical struct {
	node
	Op       Op
	Operands []Node
}

// Compare applies a single equality or relational operator.
type Compare struct {
	node
	Op    Op
	OpPos Position
	Left  Node
	Right Node
}

// Term is one (operator, operand) step of a Chain.
type Term struct {
	Op      Op
	Pos     Position
	Operand Node
}

// Chain folds additive or multiplicative operators left to right, in the
// order they appear in source.
type Chain struct {
	node
	Left  Node
	Terms []Term
}

// UnaryExpr applies a prefix "+", "-" or "!".
type UnaryExpr struct {
	node
	Op      Op
	Operand Node
}

// Index applies one or more bracketed index groups to a base expression.
// Each group addresses one array rank and holds one index per dimension.
type Index struct {
	node
	Base   Node
	Groups [][]Node
}

// Literal is a constant. Raw holds its source text.
type Literal struct {
	node
	Raw   string
	Value Value
}

// Variable reads a name from the frame it was parsed in.
type Variable struct {
	node
	Name  string
	scope *Scope
}

// Call passes its evaluated arguments to the host function Name.
type Call struct {
	node
	Name string
	Args []Node
}

// Group is a parenthesized expression with its own child frame.
type Group struct {
	node
	Inner Node
	Scope *Scope
}

// ArrayLiteral builds a one-dimensional array from "{a, b, ...}".
type ArrayLiteral struct {
	node
	Elements []Node
}

// NewValue constructs a scalar with "new T(args)".
type NewValue struct {
	node
	Type Type
	Args []Node
}

// NewArrayExpr constructs an array with "new T[sizes][...]...". Sizes is nil
// when the first rank is sized by the trailing initializer.
type NewArrayExpr struct {
	node
	Type  Type
	Sizes []Node
	Init  *ArrayLiteral
}

// NewLiteral returns a literal node for v with canonical source text.
func NewLiteral(v Value) *Literal {
	return &Literal{Raw: v.Literal(), Value: v}
}

// Scope returns the frame that a variable is resolved from.
func (n *Variable) Scope() *Scope { return n.scope }

// Scope returns the frame that a declaration binds its name in.
func (n *Declare) Scope() *Scope { return n.scope }

// isTarget reports whether n may appear on the left of an assignment.
func isTarget(n Node) bool {
	switch t := n.(type) {
	case *Variable:
		return true
	case *Index:
		_, ok := t.Base.(*Variable)

		return ok
	default:
		return false
	}
}

// Walk calls fn for n and each of its descendants in source order, stopping
// early when fn returns false.
func Walk(n Node, fn func(Node) bool) bool {
	if n == nil {
		return true
	}

	if !fn(n) {
		return false
	}

	for _, c := range children(n) {
		if !Walk(c, fn) {
			return false
		}
	}

	return true
}

func children(n Node) []Node {
	switch n := n.(type) {
	case *Sequence:
		return n.Statements
	case *Assign:
		return []Node{n.Target, n.Value}
	case *Increment:
		return []Node{n.Target}
	case *Declare:
		if n.Init != nil {
			return []Node{n.Init}
		}
	case *Ternary:
		return []Node{n.Cond, n.Then, n.Else}
	case *Logical:
		return n.Operands
	case *Compare:
		return []Node{n.Left, n.Right}
	case *Chain:
		c := []Node{n.Left}
		for _, t := range n.Terms {
			c = append(c, t.Operand)
		}

		return c
	case *UnaryExpr:
		return []Node{n.Operand}
	case *Index:
		c := []Node{n.Base}
		for _, g := range n.Groups {
			c = append(c, g...)
		}

		return c
	case *Call:
		return n.Args
	case *Group:
		return []Node{n.Inner}
	case *ArrayLiteral:
		return n.Elements
	case *NewValue:
		return n.Args
	case *NewArrayExpr:
		c := append([]Node(nil), n.Sizes...)
		if n.Init != nil {
			c = append(c, n.Init)
		}

		return c
	}

	return nil
}
