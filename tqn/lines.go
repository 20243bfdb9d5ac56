package tqn

import (
	"strings"

	"go.tauq.dev/tauq/lex"
	"go.tauq.dev/tauq/tqerr"
)

// defaultMaxLineLength bounds a single physical line, guarding against
// pathological inputs (e.g. one enormous minified line) consuming
// unbounded memory during lexing. Callers needing a different bound pass
// WithMaxLineLength to NewParser/Parse.
const defaultMaxLineLength = 16 << 20

// lineSource serves logical lines one at a time, splitting each physical
// line into possibly several logical lines (via unquoted ';') before it
// is handed to the parser. This is the single read position shared by
// the tree-building and streaming drivers.
type lineSource struct {
	physLines     []string
	physIdx       int
	queue         []lex.LogicalLine
	maxLineLength int
}

func newLineSource(text string, maxLineLength int) (*lineSource, error) {
	if strings.HasPrefix(text, "﻿") {
		return nil, tqerr.New(tqerr.KindIO, 1, 1, "byte-order mark is not permitted")
	}

	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimSuffix(lines[i], "\r")
	}

	return &lineSource{physLines: lines, maxLineLength: maxLineLength}, nil
}

// next returns the next logical line, or ok=false once input is
// exhausted.
func (ls *lineSource) next() (lex.LogicalLine, bool, error) {
	for len(ls.queue) == 0 {
		ls.physIdx++
		if ls.physIdx > len(ls.physLines) {
			return lex.LogicalLine{}, false, nil
		}

		raw := ls.physLines[ls.physIdx-1]
		if len(raw) > ls.maxLineLength {
			return lex.LogicalLine{}, false, tqerr.New(tqerr.KindResource, ls.physIdx, 1,
				"line exceeds maximum length of %d bytes", ls.maxLineLength)
		}

		lls, err := lex.ScanLine(raw, ls.physIdx)
		if err != nil {
			return lex.LogicalLine{}, false, err
		}

		ls.queue = lls
	}

	ll := ls.queue[0]
	ls.queue = ls.queue[1:]

	return ll, true, nil
}
