// Package emit renders a [value.Value] tree back into TQN text, either
// pretty (one logical line per physical line) or minified (the whole
// document folded onto a single physical line, logical lines joined by
// ';'). It mirrors the parser's grammar exactly: anything emit produces,
// package tqn can parse back to an equal tree.
package emit

import (
	"regexp"
	"strconv"
	"strings"

	"go.tauq.dev/tauq/value"
)

var (
	integerRe = regexp.MustCompile(`^-?(0|[1-9][0-9]*)$`)
	floatRe   = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)
)

// needsQuote reports whether s must be written as a quoted string literal
// to round-trip, i.e. it would otherwise lex as a different token kind
// (a bareword, a number, true/false/null) or contains a character that
// terminates a bareword.
func needsQuote(s string) bool {
	if s == "" || s == "true" || s == "false" || s == "null" {
		return true
	}

	// A leading '!' bareword lexes as a directive, and a lone "---" as a
	// schema separator, when either starts a line.
	if strings.HasPrefix(s, "!") || s == "---" {
		return true
	}

	if integerRe.MatchString(s) || (floatRe.MatchString(s) && strings.ContainsAny(s, ".eE")) {
		return true
	}

	for _, r := range s {
		switch r {
		case '[', ']', '{', '}', ';', '#', '"', ' ', '\t', '\n', '\r':
			return true
		}
	}

	return false
}

func quoteString(s string) string {
	var sb strings.Builder

	sb.WriteByte('"')

	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteRune(r)
		}
	}

	sb.WriteByte('"')

	return sb.String()
}

func renderString(s string) string {
	if needsQuote(s) {
		return quoteString(s)
	}

	return s
}

func renderFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}

	return s
}

// renderScalar renders any Value as a single bareword/literal token. It
// is only correct for scalar kinds; arrays and objects must go through
// the structural renderers in tree.go.
func renderScalar(v value.Value) string {
	switch v.Kind() {
	case value.KindNull:
		return "null"
	case value.KindBool:
		if v.Bool() {
			return "true"
		}

		return "false"
	case value.KindInteger:
		return strconv.FormatInt(v.Int(), 10)
	case value.KindFloat:
		return renderFloat(v.Float())
	case value.KindString:
		return renderString(v.String())
	default:
		return ""
	}
}
