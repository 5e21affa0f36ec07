package lang

import (
	"log/slog"
	"strconv"
	"strings"
)

// DefaultMaxDepth is the default maximum nesting depth of an expression.
// Users may modify this before compiling to change the default.
var DefaultMaxDepth = 256

// parser holds the parser state. Each grammar level is a method that
// obtains its left operand from the next higher level and returns that
// operand unchanged when its own operator is absent.
type parser struct {
	lex      *Lexer
	scope    *Scope
	scopes   []*Scope
	declared []declaration
	depth    int
	maxDepth int
}

type declaration struct {
	scope *Scope
	name  string
}

func newParser(lex *Lexer, root *Scope, maxDepth int) *parser {
	return &parser{
		lex:      lex,
		scope:    root,
		scopes:   []*Scope{root},
		maxDepth: maxDepth,
	}
}

// parseProgram parses the entire input as one expression.
func (p *parser) parseProgram() (Node, error) {
	root, err := p.expression()
	if err == nil && p.tok().Kind != TokenEOF {
		err = p.unexpected("end of input")
	}

	if err != nil {
		p.rollback()

		return nil, err
	}

	return root, nil
}

// rollback removes every binding declared by a failed parse.
func (p *parser) rollback() {
	for _, d := range p.declared {
		d.scope.undeclare(d.name)
	}

	p.declared = nil
}

// expression parses: Assignment (';' Assignment)* ';'?.
func (p *parser) expression() (Node, error) {
	first, err := p.assignment()
	if err != nil || !p.tok().Is(";") {
		return first, err
	}

	stmts := []Node{first}

	for p.tok().Is(";") {
		if err := p.next(); err != nil {
			return nil, err
		}

		if p.tok().Kind == TokenEOF || p.tok().Is(")") {
			break
		}

		stmt, err := p.assignment()
		if err != nil {
			return nil, err
		}

		stmts = append(stmts, stmt)
	}

	if len(stmts) == 1 {
		return first, nil
	}

	return &Sequence{node: node{first.Pos()}, Statements: stmts}, nil
}

// assignment parses a declaration, or a target followed by an assignment
// operator, or falls through to a ternary.
func (p *parser) assignment() (Node, error) {
	if p.tok().Kind == TokenType {
		return p.declaration()
	}

	lhs, err := p.ternary()
	if err != nil {
		return nil, err
	}

	tok := p.tok()

	// A target followed by "++" or "--" was consumed by indexed.
	if tok.Is("++", "--") {
		return nil, invalidTarget(tok)
	}

	op, ok := lookupOp(assignOps, tok)
	if !ok {
		return lhs, nil
	}

	if !isTarget(lhs) {
		return nil, invalidTarget(tok)
	}

	if err := p.next(); err != nil {
		return nil, err
	}

	// Plain assignment to a name not bound anywhere declares it in the
	// innermost frame with no fixed type.
	if v, ok := lhs.(*Variable); ok && op == OpNone {
		if _, bound := v.scope.Lookup(v.Name); !bound {
			if err := p.declare(v.Name, Scalar(KindAny)); err != nil {
				return nil, ErrParse.WithPosition(v.pos).Wrap(err)
			}
		}
	}

	rhs, err := p.assignment()
	if err != nil {
		return nil, err
	}

	return &Assign{
		node:   node{lhs.Pos()},
		Target: lhs,
		Op:     op,
		OpPos:  tok.Pos,
		Value:  rhs,
	}, nil
}

// declaration parses: Type Ranks* Identifier ('=' Assignment)?.
func (p *parser) declaration() (Node, error) {
	start := p.tok().Pos

	typ, err := p.typeSpec()
	if err != nil {
		return nil, err
	}

	name := p.tok()
	if name.Kind != TokenIdent {
		return nil, p.unexpected("identifier")
	}

	if err := p.declare(name.Text, typ); err != nil {
		return nil, ErrParse.WithPosition(name.Pos).Wrap(err)
	}

	if err := p.next(); err != nil {
		return nil, err
	}

	decl := &Declare{
		node:  node{start},
		Type:  typ,
		Name:  name.Text,
		scope: p.scope,
	}

	if p.tok().Is("=") {
		if err := p.next(); err != nil {
			return nil, err
		}

		if decl.Init, err = p.assignment(); err != nil {
			return nil, err
		}
	}

	return decl, nil
}

// typeSpec parses a type keyword followed by rank groups such as "[,]".
func (p *parser) typeSpec() (Type, error) {
	tok := p.tok()

	kind, ok := kindNamed(tok.Text)
	if tok.Kind != TokenType || !ok {
		return Type{}, ErrUnknownType.WithPosition(tok.Pos).
			WithDetail(tok.String())
	}

	if err := p.next(); err != nil {
		return Type{}, err
	}

	t := Scalar(kind)

	for p.tok().Is("[") {
		arity, err := scanArity(p.lex)
		if err != nil {
			return Type{}, err
		}

		t.Ranks = append(t.Ranks, arity)
	}

	return t, nil
}

// ternary parses: LogicalOr ('?' Ternary ':' Ternary)?.
func (p *parser) ternary() (Node, error) {
	cond, err := p.logicalOr()
	if err != nil || !p.tok().Is("?") {
		return cond, err
	}

	if err := p.next(); err != nil {
		return nil, err
	}

	then, err := p.ternary()
	if err != nil {
		return nil, err
	}

	if err := p.expect(":"); err != nil {
		return nil, err
	}

	els, err := p.ternary()
	if err != nil {
		return nil, err
	}

	return &Ternary{
		node: node{cond.Pos()},
		Cond: cond,
		Then: then,
		Else: els,
	}, nil
}

func (p *parser) logicalOr() (Node, error) {
	return p.logical("||", OpOr, p.logicalAnd)
}

func (p *parser) logicalAnd() (Node, error) {
	return p.logical("&&", OpAnd, p.equality)
}

// logical parses: operand (sym operand)*.
func (p *parser) logical(
	sym string,
	op Op,
	operand func() (Node, error),
) (Node, error) {
	left, err := operand()
	if err != nil || !p.tok().Is(sym) {
		return left, err
	}

	n := &Logical{node: node{left.Pos()}, Op: op, Operands: []Node{left}}

	for p.tok().Is(sym) {
		if err := p.next(); err != nil {
			return nil, err
		}

		right, err := operand()
		if err != nil {
			return nil, err
		}

		n.Operands = append(n.Operands, right)
	}

	return n, nil
}

func (p *parser) equality() (Node, error) {
	return p.comparison(equalityOps, p.relational)
}

func (p *parser) relational() (Node, error) {
	return p.comparison(relationalOps, p.add)
}

// comparison parses: operand (op operand)?. A second operator of the same
// level is an error.
func (p *parser) comparison(
	ops map[string]Op,
	operand func() (Node, error),
) (Node, error) {
	left, err := operand()
	if err != nil {
		return nil, err
	}

	tok := p.tok()

	op, ok := lookupOp(ops, tok)
	if !ok {
		return left, nil
	}

	if err := p.next(); err != nil {
		return nil, err
	}

	right, err := operand()
	if err != nil {
		return nil, err
	}

	if _, again := lookupOp(ops, p.tok()); again {
		return nil, p.unexpected("a single comparison")
	}

	return &Compare{
		node:  node{left.Pos()},
		Op:    op,
		OpPos: tok.Pos,
		Left:  left,
		Right: right,
	}, nil
}

func (p *parser) add() (Node, error) {
	return p.chain(additiveOps, p.multiply)
}

func (p *parser) multiply() (Node, error) {
	return p.chain(multiplicativeOps, p.unary)
}

// chain parses: operand (op operand)*, recording each operator with its
// right operand in source order.
func (p *parser) chain(
	ops map[string]Op,
	operand func() (Node, error),
) (Node, error) {
	left, err := operand()
	if err != nil {
		return nil, err
	}

	var terms []Term

	for {
		tok := p.tok()

		op, ok := lookupOp(ops, tok)
		if !ok {
			break
		}

		if err := p.next(); err != nil {
			return nil, err
		}

		right, err := operand()
		if err != nil {
			return nil, err
		}

		terms = append(terms, Term{Op: op, Pos: tok.Pos, Operand: right})
	}

	if len(terms) == 0 {
		return left, nil
	}

	return &Chain{node: node{left.Pos()}, Left: left, Terms: terms}, nil
}

// unary parses: ('+' | '-' | '!')* Indexed.
func (p *parser) unary() (Node, error) {
	tok := p.tok()

	p.depth++
	defer func() { p.depth-- }()

	if p.depth > p.maxDepth {
		return nil, ErrMaxDepthExceeded.WithPosition(tok.Pos).
			With(slog.Int("max_depth", p.maxDepth))
	}

	op, ok := lookupOp(unaryOps, tok)
	if !ok {
		return p.indexed()
	}

	if err := p.next(); err != nil {
		return nil, err
	}

	operand, err := p.unary()
	if err != nil {
		return nil, err
	}

	return &UnaryExpr{node: node{tok.Pos}, Op: op, Operand: operand}, nil
}

// indexed parses: Primary ('[' Ternary (',' Ternary)* ']')* ('++' | '--')?,
// where the postfix increment applies only to an assignment target.
func (p *parser) indexed() (Node, error) {
	n, err := p.subscript()
	if err != nil {
		return nil, err
	}

	tok := p.tok()
	if !tok.Is("++", "--") || !isTarget(n) {
		return n, nil
	}

	if err := p.next(); err != nil {
		return nil, err
	}

	return &Increment{
		node:   node{n.Pos()},
		Target: n,
		Op:     incrementOp(tok),
	}, nil
}

func (p *parser) subscript() (Node, error) {
	base, err := p.primary()
	if err != nil || !p.tok().Is("[") {
		return base, err
	}

	n := &Index{node: node{base.Pos()}, Base: base}

	for p.tok().Is("[") {
		if err := p.next(); err != nil {
			return nil, err
		}

		group, err := p.list("]")
		if err != nil {
			return nil, err
		}

		if len(group) == 0 {
			return nil, p.unexpected("index")
		}

		n.Groups = append(n.Groups, group)
	}

	return n, nil
}

// primary parses a literal, variable, call, prefix increment, parenthesized
// group, array literal, or new expression.
func (p *parser) primary() (Node, error) {
	tok := p.tok()

	switch tok.Kind {
	case TokenInt, TokenHex, TokenReal, TokenString, TokenBoolean, TokenNull:
		return p.literal()

	case TokenIdent:
		if err := p.next(); err != nil {
			return nil, err
		}

		if !p.tok().Is("(") {
			return &Variable{
				node:  node{tok.Pos},
				Name:  tok.Text,
				scope: p.scope,
			}, nil
		}

		args, err := p.arguments()
		if err != nil {
			return nil, err
		}

		return &Call{node: node{tok.Pos}, Name: tok.Text, Args: args}, nil

	case TokenNew:
		return p.newExpr()

	case TokenPunct:
		switch tok.Text {
		case "(":
			return p.group()

		case "{":
			lit, err := p.arrayLiteral()
			if err != nil {
				return nil, err
			}

			return lit, nil

		case "++", "--":
			if err := p.next(); err != nil {
				return nil, err
			}

			target, err := p.subscript()
			if err != nil {
				return nil, err
			}

			if !isTarget(target) {
				return nil, invalidTarget(tok)
			}

			return &Increment{
				node:   node{tok.Pos},
				Target: target,
				Op:     incrementOp(tok),
				Prefix: true,
			}, nil
		}
	}

	return nil, p.unexpected("expression")
}

func (p *parser) literal() (Node, error) {
	tok := p.tok()

	var v Value

	switch tok.Kind {
	case TokenInt, TokenHex:
		i, err := parseInt(tok.Text)
		if err != nil {
			return nil, ErrInvalidNumber.WithPosition(tok.Pos).
				WithDetail(tok.Text)
		}

		v = Int(i)

	case TokenReal:
		f, err := strconv.ParseFloat(strings.TrimRight(tok.Text, "fF"), 64)
		if err != nil {
			return nil, ErrInvalidNumber.WithPosition(tok.Pos).
				WithDetail(tok.Text)
		}

		v = Float(f)

	case TokenString:
		s, err := strconv.Unquote(tok.Text)
		if err != nil {
			return nil, ErrInvalidEscape.WithPosition(tok.Pos).
				WithDetail(tok.Text)
		}

		v = String(s)

	case TokenBoolean:
		v = Bool(tok.Text == "true")

	default:
		v = Null()
	}

	if err := p.next(); err != nil {
		return nil, err
	}

	return &Literal{node: node{tok.Pos}, Raw: tok.Text, Value: v}, nil
}

// group parses: '(' Expression ')', opening a child frame for the
// enclosed expression.
func (p *parser) group() (Node, error) {
	start := p.tok().Pos

	if err := p.next(); err != nil {
		return nil, err
	}

	parent := p.scope
	p.scope = parent.Child()
	p.scopes = append(p.scopes, p.scope)

	inner, err := p.expression()

	frame := p.scope
	p.scope = parent

	if err != nil {
		return nil, err
	}

	if err := p.expect(")"); err != nil {
		return nil, err
	}

	return &Group{node: node{start}, Inner: inner, Scope: frame}, nil
}

// arrayLiteral parses: '{' (Ternary (',' Ternary)*)? '}'.
func (p *parser) arrayLiteral() (*ArrayLiteral, error) {
	start := p.tok().Pos

	if err := p.expect("{"); err != nil {
		return nil, err
	}

	elems, err := p.list("}")
	if err != nil {
		return nil, err
	}

	return &ArrayLiteral{node: node{start}, Elements: elems}, nil
}

// newExpr parses "new T(args)" or "new T[sizes][,]... {init}?". The first
// rank group holds one size per dimension, or only commas when the
// initializer determines the sizes. Later groups hold only commas.
func (p *parser) newExpr() (Node, error) {
	start := p.tok().Pos

	if err := p.next(); err != nil {
		return nil, err
	}

	tok := p.tok()

	kind, ok := kindNamed(tok.Text)
	if tok.Kind != TokenType || !ok {
		return nil, ErrUnknownType.WithPosition(tok.Pos).
			WithDetail(tok.String())
	}

	if err := p.next(); err != nil {
		return nil, err
	}

	if p.tok().Is("(") {
		args, err := p.arguments()
		if err != nil {
			return nil, err
		}

		return &NewValue{node: node{start}, Type: Scalar(kind), Args: args}, nil
	}

	if err := p.expect("["); err != nil {
		return nil, err
	}

	var sizes []Node

	arity := 1

	if p.tok().Is("]", ",") {
		for p.tok().Is(",") {
			arity++

			if err := p.next(); err != nil {
				return nil, err
			}
		}

		if err := p.expect("]"); err != nil {
			return nil, err
		}
	} else {
		var err error
		if sizes, err = p.list("]"); err != nil {
			return nil, err
		}

		arity = len(sizes)
	}

	n := &NewArrayExpr{
		node:  node{start},
		Type:  Type{Kind: kind, Ranks: []int{arity}},
		Sizes: sizes,
	}

	for p.tok().Is("[") {
		arity, err := scanArity(p.lex)
		if err != nil {
			return nil, err
		}

		n.Type.Ranks = append(n.Type.Ranks, arity)
	}

	if p.tok().Is("{") {
		init, err := p.arrayLiteral()
		if err != nil {
			return nil, err
		}

		n.Init = init
	} else if sizes == nil {
		return nil, ErrMissingInitializer.WithPosition(p.tok().Pos).
			WithDetail(n.Type.String())
	}

	return n, nil
}

// arguments parses: '(' (Ternary (',' Ternary)*)? ')'.
func (p *parser) arguments() ([]Node, error) {
	if err := p.expect("("); err != nil {
		return nil, err
	}

	return p.list(")")
}

// list parses comma-separated ternaries up to and including the closing
// symbol. The opening symbol has already been consumed.
func (p *parser) list(closing string) ([]Node, error) {
	var nodes []Node

	if p.tok().Is(closing) {
		return nodes, p.next()
	}

	for {
		n, err := p.ternary()
		if err != nil {
			return nil, err
		}

		nodes = append(nodes, n)

		if !p.tok().Is(",") {
			break
		}

		if err := p.next(); err != nil {
			return nil, err
		}
	}

	return nodes, p.expect(closing)
}

// declare binds name in the current frame and records it for rollback.
func (p *parser) declare(name string, t Type) error {
	if err := p.scope.Declare(name, t); err != nil {
		return err
	}

	p.declared = append(p.declared, declaration{scope: p.scope, name: name})

	return nil
}

// Helper methods

func (p *parser) tok() Token { return p.lex.Token() }

func (p *parser) next() error { return p.lex.Next() }

func (p *parser) expect(sym string) error {
	if !p.tok().Is(sym) {
		return p.unexpected(strconv.Quote(sym))
	}

	return p.next()
}

func (p *parser) unexpected(expected string) *Error {
	tok := p.tok()

	return ErrUnexpectedToken.WithPosition(tok.Pos).
		WithDetail("expected " + expected + ", found " + tok.String()).
		With(
			slog.String("expected", expected),
			slog.String("found", tok.Text),
		)
}

func invalidTarget(tok Token) *Error {
	return ErrInvalidTarget.WithPosition(tok.Pos).
		WithDetail("operator " + strconv.Quote(tok.Text)).
		With(slog.String("operator", tok.Text))
}

func incrementOp(tok Token) Op {
	if tok.Text == "--" {
		return OpSub
	}

	return OpAdd
}

func lookupOp(ops map[string]Op, tok Token) (Op, bool) {
	if tok.Kind != TokenPunct {
		return OpNone, false
	}

	op, ok := ops[tok.Text]

	return op, ok
}
