package repl

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/vexpr/lang"
)

// signatureHintStyle styles for parameter hints.
var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
	signatureSeparatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// functionCall represents a detected function call in the input.
type functionCall struct {
	name     string // function name
	argIndex int    // current argument index (0-based)
	inCall   bool   // true if cursor is inside parameter list
}

// detectFunctionCall reports whether the cursor is inside the argument list
// of a function call, and if so the function name and argument index.
// Parentheses that only group an expression are skipped, as are commas
// nested in brackets, braces or inner calls.
func detectFunctionCall(input string, cursor int) functionCall {
	if cursor > len(input) {
		cursor = len(input)
	}

	depth := 0

	for open := cursor; open > 0; {
		r, size := utf8.DecodeLastRuneInString(input[:open])
		open -= size

		switch r {
		case ')', ']', '}':
			depth++

			continue

		case '[', '{':
			if depth > 0 {
				depth--
			}

			continue

		case '(':
			if depth > 0 {
				depth--

				continue
			}
		default:
			continue
		}

		name := identBefore(input, open)
		if name == "" {
			// A grouping parenthesis; keep looking for an enclosing call.
			continue
		}

		return functionCall{
			name:     name,
			argIndex: argIndex(input[open+1 : cursor]),
			inCall:   true,
		}
	}

	return functionCall{}
}

// identBefore returns the identifier ending at byte offset end, ignoring
// whitespace between it and end. Keywords are not identifiers.
func identBefore(input string, end int) string {
	end = len(strings.TrimRight(input[:end], " \t"))
	start := end

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if !isIdentRune(r) {
			break
		}

		start -= size
	}

	name := input[start:end]
	if name == "" || isDigitRune(name[0]) || isKeyword(name) {
		return ""
	}

	return name
}

// argIndex counts the commas at nesting depth zero in args.
func argIndex(args string) int {
	index, depth := 0, 0

	for _, r := range args {
		switch r {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				index++
			}
		}
	}

	return index
}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

func isDigitRune(b byte) bool { return b >= '0' && b <= '9' }

func isKeyword(name string) bool {
	_, ok := slices.BinarySearch(lang.Keywords(), name)

	return ok
}

// formatSignature formats a function signature with parameter names.
func formatSignature(name string, params []string) string {
	return name + "(" + strings.Join(params, ", ") + ")"
}

// renderSignatureHint renders the function signature with the current
// parameter highlighted.
func renderSignatureHint(
	signature string,
	params []string,
	currentArgIdx int,
) string {
	if signature == "" {
		return ""
	}

	openParen := strings.Index(signature, "(")
	if openParen == -1 {
		return signatureStyle.Render(signature)
	}

	funcName := signature[:openParen]

	if len(params) == 0 {
		return signatureNameStyle.Render(funcName) +
			signatureStyle.Render("()")
	}

	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(funcName))
	b.WriteString(signatureStyle.Render("("))

	for i, param := range params {
		if i > 0 {
			b.WriteString(signatureSeparatorStyle.Render(", "))
		}

		// A variadic parameter stays highlighted for every trailing argument.
		isVariadic := strings.HasPrefix(param, "...")

		if (isVariadic && currentArgIdx >= i) ||
			(!isVariadic && currentArgIdx == i) {
			b.WriteString(currentParamStyle.Render(param))
		} else {
			b.WriteString(signatureStyle.Render(param))
		}
	}

	b.WriteString(signatureStyle.Render(")"))

	return b.String()
}
