package lex

import (
	"regexp"
	"strconv"
	"strings"

	"go.tauq.dev/tauq/tqerr"
)

var (
	integerRe = regexp.MustCompile(`^-?(0|[1-9][0-9]*)$`)
	floatRe   = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)
)

func isBoundary(r rune) bool {
	switch r {
	case '[', ']', '{', '}', ';', '#', '"':
		return true
	}

	return r == ' ' || r == '\t'
}

// ScanLine tokenizes one physical line into zero or more logical lines,
// splitting on unquoted top-level ';'. Comments ('#' to end of line) are
// stripped before tokenization reaches them. lineNo is the 1-based
// physical line number used to attribute locations in returned tokens and
// errors.
func ScanLine(line string, lineNo int) ([]LogicalLine, error) {
	runes := []rune(line)

	var (
		result []LogicalLine
		cur    []Token
	)

	i := 0
	col := 1

	for i < len(runes) {
		c := runes[i]

		switch {
		case c == '#':
			i = len(runes)
		case c == ' ' || c == '\t':
			i++
			col++
		case c == ';':
			result = append(result, LogicalLine{Tokens: cur, Line: lineNo})
			cur = nil
			i++
			col++
		case c == '[':
			cur = append(cur, Token{Kind: LBracket, Text: "[", Line: lineNo, Col: col})
			i++
			col++
		case c == ']':
			cur = append(cur, Token{Kind: RBracket, Text: "]", Line: lineNo, Col: col})
			i++
			col++
		case c == '{':
			cur = append(cur, Token{Kind: LBrace, Text: "{", Line: lineNo, Col: col})
			i++
			col++
		case c == '}':
			cur = append(cur, Token{Kind: RBrace, Text: "}", Line: lineNo, Col: col})
			i++
			col++
		case c == '"':
			tok, ni, nc, err := scanString(runes, i, col, lineNo)
			if err != nil {
				return nil, err
			}

			cur = append(cur, tok)
			i, col = ni, nc
		default:
			tok, ni, nc := scanBareword(runes, i, col, lineNo)
			cur = append(cur, tok)
			i, col = ni, nc
		}
	}

	result = append(result, LogicalLine{Tokens: cur, Line: lineNo})

	for idx := range result {
		classify(&result[idx])
	}

	return result, nil
}

func scanString(runes []rune, start, startCol, lineNo int) (Token, int, int, error) {
	var sb strings.Builder

	i := start + 1
	col := startCol + 1

	for i < len(runes) {
		c := runes[i]

		switch c {
		case '"':
			return Token{Kind: String, Text: sb.String(), Line: lineNo, Col: startCol}, i + 1, col + 1, nil
		case '\\':
			if i+1 >= len(runes) {
				return Token{}, 0, 0, tqerr.New(tqerr.KindLexical, lineNo, col, "unterminated escape sequence")
			}

			esc := runes[i+1]

			switch esc {
			case '"':
				sb.WriteRune('"')
			case '\\':
				sb.WriteRune('\\')
			case '/':
				sb.WriteRune('/')
			case 'n':
				sb.WriteRune('\n')
			case 'r':
				sb.WriteRune('\r')
			case 't':
				sb.WriteRune('\t')
			case 'b':
				sb.WriteRune('\b')
			case 'f':
				sb.WriteRune('\f')
			case 'u':
				if i+5 >= len(runes) {
					return Token{}, 0, 0, tqerr.New(tqerr.KindLexical, lineNo, col, "incomplete \\u escape")
				}

				hex := string(runes[i+2 : i+6])

				n, err := strconv.ParseUint(hex, 16, 32)
				if err != nil {
					return Token{}, 0, 0, tqerr.New(tqerr.KindLexical, lineNo, col, "invalid \\u escape %q", hex)
				}

				sb.WriteRune(rune(n))
				i += 4
				col += 4
			default:
				return Token{}, 0, 0, tqerr.New(tqerr.KindLexical, lineNo, col, "invalid escape sequence \\%c", esc)
			}

			i += 2
			col += 2
		default:
			sb.WriteRune(c)
			i++
			col++
		}
	}

	return Token{}, 0, 0, tqerr.New(tqerr.KindLexical, lineNo, startCol, "unterminated string literal")
}

func scanBareword(runes []rune, start, startCol, lineNo int) (Token, int, int) {
	i := start
	col := startCol

	for i < len(runes) && !isBoundary(runes[i]) {
		i++
		col++
	}

	text := string(runes[start:i])

	return classifyBareword(text, lineNo, startCol), i, col
}

func classifyBareword(text string, lineNo, col int) Token {
	switch text {
	case "true":
		return Token{Kind: Bool, Text: text, BoolVal: true, Line: lineNo, Col: col}
	case "false":
		return Token{Kind: Bool, Text: text, BoolVal: false, Line: lineNo, Col: col}
	case "null":
		return Token{Kind: Null, Text: text, Line: lineNo, Col: col}
	}

	if integerRe.MatchString(text) {
		return Token{Kind: Number, NumberKind: Integer, Text: text, Line: lineNo, Col: col}
	}

	if floatRe.MatchString(text) && strings.ContainsAny(text, ".eE") {
		return Token{Kind: Number, NumberKind: Float, Text: text, Line: lineNo, Col: col}
	}

	return Token{Kind: Ident, Text: text, Line: lineNo, Col: col}
}

// classify promotes a logical line's leading token into Directive or
// SchemaSep where applicable. A line whose sole token is the bareword
// "---" is a schema separator; a line whose first token is a bareword
// starting with '!' is a directive, and the remaining tokens on the line
// become its DirectiveArgs.
func classify(ll *LogicalLine) {
	if len(ll.Tokens) == 0 {
		return
	}

	if len(ll.Tokens) == 1 && ll.Tokens[0].Kind == Ident && ll.Tokens[0].Text == "---" {
		ll.Tokens[0].Kind = SchemaSep

		return
	}

	first := &ll.Tokens[0]
	if first.Kind != Ident || !strings.HasPrefix(first.Text, "!") {
		return
	}

	name := strings.TrimPrefix(first.Text, "!")
	args := ll.Tokens[1:]

	ll.Tokens = []Token{{
		Kind:          Directive,
		Text:          name,
		DirectiveArgs: args,
		Line:          first.Line,
		Col:           first.Col,
	}}
}
