package lang

import (
	"bytes"
	"context"
	"log/slog"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/ardnew/vexpr/log"
)

// Lexer converts source text into tokens. It holds exactly one current token
// and advances with Next.
type Lexer struct {
	input  []byte
	source string
	pos    int
	line   int
	col    int
	tok    Token

	ctx    context.Context
	logger log.Logger
}

// NewLexer returns a Lexer over text positioned at the first token.
// The source name is used in diagnostics only.
func NewLexer(source, text string) (*Lexer, error) {
	l := &Lexer{
		input:  []byte(text),
		source: source,
		pos:    0,
		line:   1,
		col:    1,
	}

	if err := l.Next(); err != nil {
		return nil, err
	}

	return l, nil
}

// Token returns the current token.
func (l *Lexer) Token() Token { return l.tok }

// Source returns the source name given to NewLexer.
func (l *Lexer) Source() string { return l.source }

// Line returns the line of the current token.
func (l *Lexer) Line() int { return l.tok.Pos.Line }

// Column returns the column of the current token.
func (l *Lexer) Column() int { return l.tok.Pos.Column }

// Trace logs the current token, and each token Next scans after it, to
// logger at trace level.
func (l *Lexer) Trace(ctx context.Context, logger log.Logger) {
	l.ctx, l.logger = ctx, logger
	l.trace()
}

// Next advances past the current token. Once the input is exhausted the
// current token remains TokenEOF.
func (l *Lexer) Next() error {
	if err := l.scan(); err != nil {
		return err
	}

	l.trace()

	return nil
}

func (l *Lexer) trace() {
	if l.ctx == nil {
		return
	}

	l.logger.TraceContext(l.ctx, "token",
		slog.String("kind", l.tok.Kind.String()),
		slog.String("text", l.tok.Text),
		slog.String("position", l.tok.Pos.String()))
}

func (l *Lexer) scan() error {
	if err := l.skipWhitespaceAndComments(); err != nil {
		return err
	}

	start := l.position()

	if l.eof() {
		l.tok = Token{Kind: TokenEOF, Pos: start}

		return nil
	}

	ch := l.peek()

	switch {
	case isDigit(ch) || (ch == '.' && isDigit(l.peekAt(1))):
		return l.scanNumber(start)

	case ch == '"':
		return l.scanString(start)

	case isIdentifierStart(ch):
		return l.scanWord(start)
	}

	for _, sym := range punctuation {
		if l.peekN(len(sym)) == sym {
			for range len(sym) {
				l.advance()
			}

			l.tok = Token{Kind: TokenPunct, Text: sym, Pos: start}

			return nil
		}
	}

	return ErrInvalidCharacter.WithPosition(start).
		With(slog.String("character", strconv.QuoteRune(ch)))
}

func (l *Lexer) scanWord(start Position) error {
	for !l.eof() && isIdentifierContinue(l.peek()) {
		l.advance()
	}

	text := string(l.input[start.Offset:l.pos])

	kind, ok := keywords[text]
	if !ok {
		kind = TokenIdent
	}

	l.tok = Token{Kind: kind, Text: text, Pos: start}

	return nil
}

func (l *Lexer) scanNumber(start Position) error {
	kind := TokenInt

	invalid := func() error {
		// Consume the rest of the malformed literal for the diagnostic.
		for !l.eof() && (isIdentifierContinue(l.peek()) || l.peek() == '.') {
			l.advance()
		}

		return ErrInvalidNumber.WithPosition(start).
			With(slog.String("literal", string(l.input[start.Offset:l.pos])))
	}

	if l.peek() == '0' && (l.peekAt(1) == 'x' || l.peekAt(1) == 'X') {
		l.advance()
		l.advance()

		n := 0
		for !l.eof() && isHexDigit(l.peek()) {
			l.advance()
			n++
		}

		if n == 0 || (!l.eof() && isIdentifierContinue(l.peek())) {
			return invalid()
		}

		l.tok = Token{
			Kind: TokenHex,
			Text: string(l.input[start.Offset:l.pos]),
			Pos:  start,
		}

		return nil
	}

	l.digits()

	if l.peek() == '.' {
		kind = TokenReal

		l.advance()
		l.digits()
	}

	if l.peek() == 'e' || l.peek() == 'E' {
		kind = TokenReal

		l.advance()

		if l.peek() == '+' || l.peek() == '-' {
			l.advance()
		}

		if l.digits() == 0 {
			return invalid()
		}
	}

	if l.peek() == 'f' || l.peek() == 'F' {
		kind = TokenReal

		l.advance()
	}

	if !l.eof() && (isIdentifierContinue(l.peek()) || l.peek() == '.') {
		return invalid()
	}

	l.tok = Token{
		Kind: kind,
		Text: string(l.input[start.Offset:l.pos]),
		Pos:  start,
	}

	return nil
}

func (l *Lexer) digits() int {
	n := 0
	for !l.eof() && isDigit(l.peek()) {
		l.advance()
		n++
	}

	return n
}

func (l *Lexer) scanString(start Position) error {
	l.advance() // skip opening quote

	for !l.eof() {
		ch := l.peek()

		switch ch {
		case '\n':
			return ErrUnterminatedString.WithPosition(start)

		case '\\':
			l.advance() // skip backslash

			if !l.eof() {
				l.advance() // skip escaped char
			}

			continue

		case '"':
			l.advance() // skip closing quote

			text := string(l.input[start.Offset:l.pos])
			if _, err := strconv.Unquote(text); err != nil {
				return ErrInvalidEscape.WithPosition(start).
					With(slog.String("literal", text))
			}

			l.tok = Token{Kind: TokenString, Text: text, Pos: start}

			return nil
		}

		l.advance()
	}

	return ErrUnterminatedString.WithPosition(start)
}

// Helper methods

func (l *Lexer) peek() rune {
	if l.eof() {
		return 0
	}

	r, _ := utf8.DecodeRune(l.input[l.pos:])

	return r
}

// peekAt returns the byte-sized rune n bytes ahead, or 0.
func (l *Lexer) peekAt(n int) rune {
	if l.pos+n >= len(l.input) {
		return 0
	}

	return rune(l.input[l.pos+n])
}

func (l *Lexer) peekN(n int) string {
	if l.pos+n > len(l.input) {
		return string(l.input[l.pos:])
	}

	return string(l.input[l.pos : l.pos+n])
}

func (l *Lexer) advance() {
	if l.eof() {
		return
	}

	r, size := utf8.DecodeRune(l.input[l.pos:])

	l.pos += size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
}

func (l *Lexer) eof() bool {
	return l.pos >= len(l.input)
}

func (l *Lexer) position() Position {
	return Position{
		Source: l.source,
		Offset: l.pos,
		Line:   l.line,
		Column: l.col,
	}
}

func (l *Lexer) skipWhitespaceAndComments() error {
	for {
		for !l.eof() && unicode.IsSpace(l.peek()) {
			l.advance()
		}

		switch {
		case l.eof():
			return nil

		case l.peekN(2) == "//", l.peek() == '#':
			for !l.eof() && l.peek() != '\n' {
				l.advance()
			}

		case l.peekN(2) == "/*":
			start := l.position()

			l.advance() // skip '/'
			l.advance() // skip '*'

			for !bytes.HasPrefix(l.input[l.pos:], []byte("*/")) {
				if l.eof() {
					return ErrUnterminatedBlock.WithPosition(start)
				}

				l.advance()
			}

			l.advance() // skip '*'
			l.advance() // skip '/'

		default:
			return nil
		}
	}
}

// Character classification

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func isIdentifierStart(r rune) bool {
	return unicode.In(r,
		unicode.L,  // Letter
		unicode.Nl, // Letter, Number
		unicode.Other_ID_Start,
	) || r == '_'
}

func isIdentifierContinue(r rune) bool {
	return unicode.In(r,
		unicode.L,  // Letter
		unicode.Nl, // Letter, Number
		unicode.Other_ID_Start,
		unicode.Mn, // Mark, Nonspacing
		unicode.Mc, // Mark, Spacing Combining
		unicode.Nd, // Number, Decimal Digit
		unicode.Pc, // Punctuation, Connector
		unicode.Other_ID_Continue,
	)
}
