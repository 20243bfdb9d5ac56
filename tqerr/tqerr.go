// Package tqerr defines the single error type produced by every tauq
// subsystem: the lexer, the parser, the schema registry, the emitter and
// the tqq preprocessor all report failures as a *tqerr.Error so a caller
// never needs to type-switch across packages to find a location.
package tqerr

import (
	"errors"
	"fmt"
)

// Kind classifies the failure. Callers distinguish failure categories with
// [errors.Is] against the sentinel matching a Kind (e.g. [ErrSyntax]),
// never by inspecting Message text.
type Kind int

const (
	// KindLexical covers malformed tokens: unterminated strings, stray
	// control characters, bad escape sequences.
	KindLexical Kind = iota
	// KindSyntax covers structurally invalid input: unbalanced brackets,
	// a key with no value, wrong token where a directive name was
	// expected.
	KindSyntax
	// KindSchema covers schema violations: redefinition, undefined
	// reference, unknown !use target.
	KindSchema
	// KindArity covers row/schema field count mismatches.
	KindArity
	// KindDirective covers tqq directive failures: unknown directive,
	// bad argument, disallowed in safe mode.
	KindDirective
	// KindResource covers configured limits being exceeded: line length,
	// nesting depth, import depth, import cycles.
	KindResource
	// KindIO covers failures reading input or executing a subprocess.
	KindIO
)

// String renders the Kind the same way it appears in [Error.Error].
func (k Kind) String() string {
	switch k {
	case KindLexical:
		return "lexical error"
	case KindSyntax:
		return "syntax error"
	case KindSchema:
		return "schema error"
	case KindArity:
		return "arity error"
	case KindDirective:
		return "directive error"
	case KindResource:
		return "resource error"
	case KindIO:
		return "io error"
	default:
		return "error"
	}
}

// Sentinel errors, one per Kind, for use with [errors.Is]. [Error.Unwrap]
// includes the matching sentinel alongside any wrapped cause.
var (
	ErrLexical   = errors.New("lexical error")
	ErrSyntax    = errors.New("syntax error")
	ErrSchema    = errors.New("schema error")
	ErrArity     = errors.New("arity error")
	ErrDirective = errors.New("directive error")
	ErrResource  = errors.New("resource error")
	ErrIO        = errors.New("io error")
)

func sentinel(k Kind) error {
	switch k {
	case KindLexical:
		return ErrLexical
	case KindSyntax:
		return ErrSyntax
	case KindSchema:
		return ErrSchema
	case KindArity:
		return ErrArity
	case KindDirective:
		return ErrDirective
	case KindResource:
		return ErrResource
	case KindIO:
		return ErrIO
	default:
		return ErrSyntax
	}
}

// Error is a located tauq failure. File is empty for in-memory input (the
// top-level document); tqq sets it to the originating import path.
type Error struct {
	Kind    Kind
	Message string
	File    string
	Line    int
	Column  int
	Err     error
}

// New builds an Error at the given location.
func New(kind Kind, line, col int, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Line:    line,
		Column:  col,
	}
}

// Wrap builds an Error around a lower-level cause, preserving it for
// [errors.Unwrap].
func Wrap(kind Kind, line, col int, cause error, format string, args ...any) *Error {
	e := New(kind, line, col, format, args...)
	e.Err = cause

	return e
}

// WithFile returns a copy of e annotated with the originating file path,
// used by tqq when an error surfaces from an imported document.
func (e *Error) WithFile(file string) *Error {
	cp := *e
	cp.File = file

	return &cp
}

func (e *Error) Error() string {
	loc := e.File
	if loc == "" {
		loc = "<input>"
	}

	return fmt.Sprintf("%s:%d:%d: %s: %s", loc, e.Line, e.Column, e.Kind, e.Message)
}

// Unwrap exposes both the Kind sentinel (for errors.Is(err, tqerr.ErrSyntax))
// and the wrapped cause (if any).
func (e *Error) Unwrap() []error {
	s := sentinel(e.Kind)
	if e.Err != nil {
		return []error{s, e.Err}
	}

	return []error{s}
}
