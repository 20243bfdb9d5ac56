package tqn

import (
	"strconv"

	"go.tauq.dev/tauq/lex"
	"go.tauq.dev/tauq/schema"
	"go.tauq.dev/tauq/tqerr"
	"go.tauq.dev/tauq/value"
)

// bracketCloses reports whether the bracket opened at toks[openPos] is
// balanced by end of toks, returning the index of its matching closer.
// This is the same-line lookahead that decides whether a container value
// can be parsed inline or needs to continue on following lines.
func bracketCloses(toks []lex.Token, openPos int) (int, bool) {
	openKind := toks[openPos].Kind

	var closeKind lex.Kind
	if openKind == lex.LBracket {
		closeKind = lex.RBracket
	} else {
		closeKind = lex.RBrace
	}

	depth := 0

	for i := openPos; i < len(toks); i++ {
		switch toks[i].Kind {
		case lex.LBracket, lex.LBrace:
			depth++
		case lex.RBracket, lex.RBrace:
			depth--
			if depth == 0 {
				if toks[i].Kind != closeKind {
					return -1, false
				}

				return i, true
			}
		}
	}

	return -1, false
}

// checkNestingDepth guards the mutually-recursive inline parse functions
// against pathologically deep same-line bracket nesting: without this,
// input like "[[[[...]]]]" would recurse until the Go stack overflows
// instead of producing the typed resource error §5 requires.
func checkNestingDepth(depth, lineNo int) error {
	if depth > maxScopeDepth {
		return tqerr.New(tqerr.KindResource, lineNo, 0, "nested scope depth exceeds %d", maxScopeDepth)
	}

	return nil
}

// parseInlineValue parses exactly one value starting at toks[pos],
// recursing into nested brackets that close within the same token slice.
// It never spans logical lines: an unclosed bracket is always a syntax
// error from this function's perspective. Multi-line continuation is
// decided one level up, by the caller checking [bracketCloses] before
// calling in. depth tracks same-line bracket nesting against
// maxScopeDepth.
func parseInlineValue(toks []lex.Token, pos int, lineNo int, depth int) (value.Value, int, error) {
	if err := checkNestingDepth(depth, lineNo); err != nil {
		return value.Value{}, pos, err
	}

	if pos >= len(toks) {
		return value.Value{}, pos, tqerr.New(tqerr.KindSyntax, lineNo, 0, "expected a value, found end of line")
	}

	t := toks[pos]

	switch t.Kind {
	case lex.Number:
		return numberValue(t), pos + 1, nil
	case lex.Bool:
		return value.Bool(t.BoolVal), pos + 1, nil
	case lex.Null:
		return value.Null(), pos + 1, nil
	case lex.String, lex.Ident:
		return value.Str(t.Text), pos + 1, nil
	case lex.LBracket:
		return parseInlineArray(toks, pos, lineNo, depth)
	case lex.LBrace:
		return parseInlineFreeObject(toks, pos, lineNo, depth)
	default:
		return value.Value{}, pos, tqerr.New(tqerr.KindSyntax, lineNo, t.Col, "unexpected token where a value was expected")
	}
}

func numberValue(t lex.Token) value.Value {
	if t.NumberKind == lex.Integer {
		n, err := strconv.ParseInt(t.Text, 10, 64)
		if err != nil {
			f, _ := strconv.ParseFloat(t.Text, 64)

			return value.Float(f)
		}

		return value.Int(n)
	}

	f, _ := strconv.ParseFloat(t.Text, 64)

	return value.Float(f)
}

func parseInlineArray(toks []lex.Token, pos int, lineNo int, depth int) (value.Value, int, error) {
	pos++ // consume '['

	var elems []value.Value

	for {
		if pos >= len(toks) {
			return value.Value{}, pos, tqerr.New(tqerr.KindSyntax, lineNo, 0, "unterminated [ array")
		}

		if toks[pos].Kind == lex.RBracket {
			return value.NewArray(elems), pos + 1, nil
		}

		v, np, err := parseInlineValue(toks, pos, lineNo, depth+1)
		if err != nil {
			return value.Value{}, pos, err
		}

		elems = append(elems, v)
		pos = np
	}
}

func parseInlineFreeObject(toks []lex.Token, pos int, lineNo int, depth int) (value.Value, int, error) {
	pos++ // consume '{'

	obj := value.NewObject()

	for {
		if pos >= len(toks) {
			return value.Value{}, pos, tqerr.New(tqerr.KindSyntax, lineNo, 0, "unterminated { object")
		}

		if toks[pos].Kind == lex.RBrace {
			return value.Obj(obj), pos + 1, nil
		}

		keyTok := toks[pos]
		if keyTok.Kind != lex.Ident && keyTok.Kind != lex.String {
			return value.Value{}, pos, tqerr.New(tqerr.KindSyntax, lineNo, keyTok.Col, "expected a field name")
		}

		pos++

		v, np, err := parseInlineValue(toks, pos, lineNo, depth+1)
		if err != nil {
			return value.Value{}, pos, err
		}

		obj.Set(keyTok.Text, v)
		pos = np
	}
}

// parseFieldValue parses the value of a single schema field at toks[pos],
// dispatching on the field's declared shape (scalar, nested schema
// object, bare list, or list of nested schema objects). Schema fields are
// always inline: a row is one logical line by definition.
func parseFieldValue(toks []lex.Token, pos int, lineNo int, f schema.Field, reg *schema.Registry, depth int) (value.Value, int, error) {
	if err := checkNestingDepth(depth, lineNo); err != nil {
		return value.Value{}, pos, err
	}

	switch {
	case f.IsList && f.TypeName != "":
		return parseListOfRows(toks, pos, lineNo, f.TypeName, reg, depth)
	case f.IsList:
		return parseInlineValue(toks, pos, lineNo, depth)
	case f.TypeName != "":
		nested, ok := reg.Lookup(f.TypeName)
		if !ok {
			return value.Value{}, pos, tqerr.New(tqerr.KindSchema, lineNo, 0,
				"field %q references undefined schema %q", f.Name, f.TypeName)
		}

		return parseSchemaRow(toks, pos, lineNo, nested, reg, depth)
	default:
		return parseInlineValue(toks, pos, lineNo, depth)
	}
}

// parseSchemaRow parses "{ v1 v2 ... vN }" as one row of sch, where N is
// sch.Arity(). It is used both for nested type-annotated fields and,
// recursively, for elements of a field typed as a list of such rows.
func parseSchemaRow(toks []lex.Token, pos int, lineNo int, sch *schema.Schema, reg *schema.Registry, depth int) (value.Value, int, error) {
	if pos >= len(toks) || toks[pos].Kind != lex.LBrace {
		return value.Value{}, pos, tqerr.New(tqerr.KindSyntax, lineNo, 0, "expected { to open a %q row", sch.Name)
	}

	pos++

	obj := value.NewObject()

	for _, f := range sch.Fields {
		v, np, err := parseFieldValue(toks, pos, lineNo, f, reg, depth+1)
		if err != nil {
			return value.Value{}, pos, err
		}

		obj.Set(f.Name, v)
		pos = np
	}

	if pos >= len(toks) || toks[pos].Kind != lex.RBrace {
		return value.Value{}, pos, tqerr.New(tqerr.KindArity, lineNo, 0,
			"row for schema %q does not match its %d declared fields", sch.Name, sch.Arity())
	}

	return value.Obj(obj), pos + 1, nil
}

func parseListOfRows(toks []lex.Token, pos int, lineNo int, typeName string, reg *schema.Registry, depth int) (value.Value, int, error) {
	if pos >= len(toks) || toks[pos].Kind != lex.LBracket {
		return value.Value{}, pos, tqerr.New(tqerr.KindSyntax, lineNo, 0, "expected [ to open a list of %q rows", typeName)
	}

	pos++

	nested, ok := reg.Lookup(typeName)
	if !ok {
		return value.Value{}, pos, tqerr.New(tqerr.KindSchema, lineNo, 0, "undefined schema %q", typeName)
	}

	var elems []value.Value

	for {
		if pos >= len(toks) {
			return value.Value{}, pos, tqerr.New(tqerr.KindSyntax, lineNo, 0, "unterminated [ list of %q rows", typeName)
		}

		if toks[pos].Kind == lex.RBracket {
			return value.NewArray(elems), pos + 1, nil
		}

		v, np, err := parseSchemaRow(toks, pos, lineNo, nested, reg, depth+1)
		if err != nil {
			return value.Value{}, pos, err
		}

		elems = append(elems, v)
		pos = np
	}
}
