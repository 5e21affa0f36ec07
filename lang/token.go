package lang

import (
	"maps"
	"slices"
	"strconv"
)

// TokenKind classifies a lexical token.
type TokenKind int

// Token kinds.
const (
	TokenEOF     TokenKind = iota
	TokenIdent             // variable or function name
	TokenInt               // decimal integer literal
	TokenHex               // 0x-prefixed integer literal
	TokenReal              // floating-point literal
	TokenString            // double-quoted string literal
	TokenBoolean           // true or false
	TokenNull              // null
	TokenType              // type keyword: bool int float float2 float3 float4 string
	TokenNew               // new
	TokenPunct             // operator or bracket; Text holds the symbol
)

// String returns the name of k.
func (k TokenKind) String() string {
	switch k {
	case TokenEOF:
		return "end of input"
	case TokenIdent:
		return "identifier"
	case TokenInt, TokenHex:
		return "integer"
	case TokenReal:
		return "real"
	case TokenString:
		return "string"
	case TokenBoolean:
		return "boolean"
	case TokenNull:
		return "null"
	case TokenType:
		return "type"
	case TokenNew:
		return "new"
	case TokenPunct:
		return "punctuation"
	default:
		return "TokenKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Position identifies a location in named source text.
// Line and Column are 1-based; the zero Position is invalid.
type Position struct {
	Source string
	Offset int
	Line   int
	Column int
}

// IsValid reports whether p refers to a real location.
func (p Position) IsValid() bool { return p.Line > 0 }

// String returns "source:line:column", omitting the source when unnamed.
func (p Position) String() string {
	if !p.IsValid() {
		return p.Source
	}

	s := strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
	if p.Source != "" {
		s = p.Source + ":" + s
	}

	return s
}

// Token is a single lexical element. Text is the raw source text of the
// token, including quotes for strings.
type Token struct {
	Kind TokenKind
	Text string
	Pos  Position
}

// Is reports whether t is punctuation matching one of symbols.
func (t Token) Is(symbols ...string) bool {
	return t.Kind == TokenPunct && slices.Contains(symbols, t.Text)
}

// String returns a description of t suitable for diagnostics.
func (t Token) String() string {
	if t.Kind == TokenEOF {
		return t.Kind.String()
	}

	return strconv.Quote(t.Text)
}

// punctuation lists every operator and bracket symbol, longest first within
// each leading character so that the lexer can match greedily.
var punctuation = []string{
	"+=", "++", "+",
	"-=", "--", "-",
	"*=", "*",
	"/=", "/",
	"%=", "%",
	"&=", "&&",
	"|=", "||",
	"==", "=",
	"!=", "!",
	"<=", "<",
	">=", ">",
	"?", ":", "(", ")", "[", "]", "{", "}", ",", ";",
}

// keywords maps reserved words to their token kind.
var keywords = map[string]TokenKind{
	"true":   TokenBoolean,
	"false":  TokenBoolean,
	"null":   TokenNull,
	"new":    TokenNew,
	"bool":   TokenType,
	"int":    TokenType,
	"float":  TokenType,
	"float2": TokenType,
	"float3": TokenType,
	"float4": TokenType,
	"string": TokenType,
}

// Keywords returns the reserved words in sorted order.
func Keywords() []string {
	return slices.Sorted(maps.Keys(keywords))
}
