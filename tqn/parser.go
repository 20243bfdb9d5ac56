// Package tqn implements the value parser and schema state machine: the
// recursive-descent driver that turns a sequence of lexed logical lines
// into a tree of [value.Value]s (or, via [RecordStream], a pull-based sequence
// of rows), tracking !def/!use schema activation and the open-bracket
// stack along the way.
package tqn

import (
	"strings"

	"go.tauq.dev/tauq/lex"
	"go.tauq.dev/tauq/schema"
	"go.tauq.dev/tauq/tqerr"
	"go.tauq.dev/tauq/value"
)

// maxScopeDepth bounds how many nested brackets ([/{ continuations, per
// §5's "maximum nested scope depth") may be open at once, guarding
// against unbounded stack growth from pathologically deep input.
const maxScopeDepth = 256

// parseConfig holds the resource bounds a Parser enforces, overridable
// via ParseOption.
type parseConfig struct {
	maxLineLength int
}

// ParseOption configures resource bounds for NewParser/Parse.
type ParseOption func(*parseConfig)

// WithMaxLineLength overrides the default maximum physical line length
// (16 MiB).
func WithMaxLineLength(n int) ParseOption {
	return func(c *parseConfig) { c.maxLineLength = n }
}

// Parser drives the frame stack described in [frame]. Use [Parse] for the
// common case of building a full tree; Parser itself is exported so
// [RecordStream] can drive the same state machine one logical line at a time.
type Parser struct {
	reg   *schema.Registry
	stack []*frame
	lines *lineSource
}

// NewParser prepares a Parser over text. It does not consume any input
// until Run or a manual step is called.
func NewParser(text string, opts ...ParseOption) (*Parser, error) {
	cfg := parseConfig{maxLineLength: defaultMaxLineLength}
	for _, opt := range opts {
		opt(&cfg)
	}

	ls, err := newLineSource(text, cfg.maxLineLength)
	if err != nil {
		return nil, err
	}

	return &Parser{
		reg:   schema.NewRegistry(),
		stack: []*frame{newRootFrame()},
		lines: ls,
	}, nil
}

// Parse parses text into a single Value tree.
func Parse(text string, opts ...ParseOption) (value.Value, error) {
	p, err := NewParser(text, opts...)
	if err != nil {
		return value.Value{}, err
	}

	return p.Run()
}

// Run drives the parser to completion, returning the parsed document.
func (p *Parser) Run() (value.Value, error) {
	for {
		ll, ok, err := p.lines.next()
		if err != nil {
			return value.Value{}, err
		}

		if !ok {
			break
		}

		if err := p.step(ll); err != nil {
			return value.Value{}, err
		}
	}

	if len(p.stack) != 1 {
		top := p.stack[len(p.stack)-1]

		return value.Value{}, tqerr.New(tqerr.KindSyntax, top.openLine, top.openCol, "unterminated bracket opened here")
	}

	return p.stack[0].finalValue(), nil
}

func (p *Parser) top() *frame { return p.stack[len(p.stack)-1] }

// push opens a new nested scope, erroring once maxScopeDepth is reached
// rather than growing the stack without bound.
func (p *Parser) push(f *frame, lineNo int) error {
	if len(p.stack) > maxScopeDepth {
		return tqerr.New(tqerr.KindResource, lineNo, 0, "nested scope depth exceeds %d", maxScopeDepth)
	}

	p.stack = append(p.stack, f)

	return nil
}

// pop closes the top frame, attaching its value to the new top per its
// attachTarget.
func (p *Parser) pop() {
	f := p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]

	v := f.finalValue()
	parent := p.top()

	switch f.attach.kind {
	case attachArrayAppend:
		parent.appendValue(v)
	case attachObjectKey:
		if parent.object == nil {
			parent.object = value.NewObject()
		}

		parent.object.Set(f.attach.key, v)
	}
}

// step processes one logical line against the current top frame, peeling
// any leading closing brackets first (popping completed multi-line
// frames), then dispatching the remainder.
func (p *Parser) step(ll lex.LogicalLine) error {
	toks := ll.Tokens
	if len(toks) == 0 {
		return nil
	}

	if toks[0].Kind == lex.Directive {
		return p.handleDirective(toks[0], ll.Line)
	}

	if toks[0].Kind == lex.SchemaSep {
		p.top().schema = nil

		return nil
	}

	for len(toks) > 0 && p.closesTop(toks[0]) {
		p.pop()
		toks = toks[1:]
	}

	if len(toks) == 0 {
		return nil
	}

	return p.dispatch(toks, ll.Line)
}

func (p *Parser) closesTop(t lex.Token) bool {
	if len(p.stack) < 2 {
		return false
	}

	top := p.top()

	switch top.kind {
	case frameArray:
		return t.Kind == lex.RBracket
	case frameFreeObject:
		return t.Kind == lex.RBrace
	default:
		return false
	}
}

func (p *Parser) dispatch(toks []lex.Token, lineNo int) error {
	top := p.top()

	if top.schema != nil {
		return p.consumeRow(top, toks, lineNo)
	}

	switch top.kind {
	case frameArray:
		return p.consumeArrayElements(top, toks, lineNo)
	case frameRoot, frameFreeObject:
		return p.consumeKeyValue(top, toks, lineNo)
	default:
		return tqerr.New(tqerr.KindSyntax, lineNo, 0, "unexpected content")
	}
}

// consumeKeyValue handles one "key value" line in an object-shaped scope.
// If the value is a [ or { that is the last token on the line and does
// not close by end of line, a new multi-line frame is pushed instead of
// erroring.
func (p *Parser) consumeKeyValue(top *frame, toks []lex.Token, lineNo int) error {
	keyTok := toks[0]
	if keyTok.Kind != lex.Ident && keyTok.Kind != lex.String {
		return tqerr.New(tqerr.KindSyntax, lineNo, keyTok.Col, "expected a field name")
	}

	rest := toks[1:]
	if len(rest) == 0 {
		return tqerr.New(tqerr.KindSyntax, lineNo, keyTok.Col, "missing value for key %q", keyTok.Text)
	}

	if pending, ok := p.tryOpenContinuation(rest, 0, lineNo); ok {
		pending.attach = attachTarget{kind: attachObjectKey, key: keyTok.Text}

		return p.push(pending, lineNo)
	}

	v, consumed, err := parseInlineValue(rest, 0, lineNo, 0)
	if err != nil {
		return err
	}

	if consumed != len(rest) {
		return tqerr.New(tqerr.KindSyntax, lineNo, rest[consumed].Col, "unexpected trailing content")
	}

	if top.kind == frameRoot && !top.resolveRootAsObject() {
		return tqerr.New(tqerr.KindSyntax, lineNo, keyTok.Col,
			"cannot mix key-value fields with schema rows at document scope")
	}

	if top.object == nil {
		top.object = value.NewObject()
	}

	top.object.Set(keyTok.Text, v)

	return nil
}

// consumeArrayElements handles a line of zero or more bare elements
// inside an already-open, schema-less array frame.
func (p *Parser) consumeArrayElements(top *frame, toks []lex.Token, lineNo int) error {
	pos := 0

	for pos < len(toks) {
		if pending, ok := p.tryOpenContinuation(toks, pos, lineNo); ok {
			pending.attach = attachTarget{kind: attachArrayAppend}

			return p.push(pending, lineNo)
		}

		v, np, err := parseInlineValue(toks, pos, lineNo, 0)
		if err != nil {
			return err
		}

		top.appendValue(v)
		pos = np
	}

	return nil
}

// consumeRow handles a line against an active schema: it must produce
// exactly sch.Arity() values, which become one row object appended to an
// enclosing array (or, at document scope, upgrade an undetermined root
// into an array of rows).
func (p *Parser) consumeRow(top *frame, toks []lex.Token, lineNo int) error {
	obj := value.NewObject()
	pos := 0

	for _, f := range top.schema.Fields {
		if pos >= len(toks) {
			return tqerr.New(tqerr.KindArity, lineNo, 0,
				"row has fewer values than schema %q declares (%d fields)", top.schema.Name, top.schema.Arity())
		}

		v, np, err := parseFieldValue(toks, pos, lineNo, f, p.reg, 0)
		if err != nil {
			return err
		}

		obj.Set(f.Name, v)
		pos = np
	}

	if pos != len(toks) {
		return tqerr.New(tqerr.KindArity, lineNo, toks[pos].Col,
			"row has more values than schema %q declares (%d fields)", top.schema.Name, top.schema.Arity())
	}

	row := value.Obj(obj)

	if top.kind == frameRoot && !top.resolveRootAsArray() {
		return tqerr.New(tqerr.KindSyntax, lineNo, 0,
			"cannot mix schema rows with key-value fields at document scope")
	}

	top.appendValue(row)

	return nil
}

// tryOpenContinuation checks whether toks[pos] opens a [ or { that is the
// last token on the line without closing: if so it returns a fresh frame
// ready to be pushed. It does not consume or mutate toks.
func (p *Parser) tryOpenContinuation(toks []lex.Token, pos int, lineNo int) (*frame, bool) {
	if pos >= len(toks) {
		return nil, false
	}

	t := toks[pos]
	if t.Kind != lex.LBracket && t.Kind != lex.LBrace {
		return nil, false
	}

	if _, closes := bracketCloses(toks, pos); closes {
		return nil, false
	}

	if pos != len(toks)-1 {
		return nil, false
	}

	if t.Kind == lex.LBracket {
		return &frame{kind: frameArray, openLine: t.Line, openCol: t.Col}, true
	}

	return &frame{kind: frameFreeObject, openLine: t.Line, openCol: t.Col}, true
}

func (p *Parser) handleDirective(d lex.Token, lineNo int) error {
	switch d.Text {
	case "def":
		return p.handleDef(d, lineNo)
	case "use":
		return p.handleUse(d, lineNo)
	case "schemas":
		return nil
	default:
		return tqerr.New(tqerr.KindDirective, lineNo, d.Col, "unknown directive !%s", d.Text)
	}
}

func (p *Parser) handleDef(d lex.Token, lineNo int) error {
	args := d.DirectiveArgs
	if len(args) == 0 || (args[0].Kind != lex.Ident && args[0].Kind != lex.String) {
		return tqerr.New(tqerr.KindDirective, lineNo, d.Col, "!def requires a schema name")
	}

	name := args[0].Text

	fields, err := parseFieldDecls(args[1:], lineNo)
	if err != nil {
		return err
	}

	top := p.top()
	if top.kind == frameFreeObject {
		return tqerr.New(tqerr.KindDirective, lineNo, d.Col,
			"!def is not valid inside a free object; open an array instead")
	}

	sch := &schema.Schema{Name: name, Fields: fields}
	if err := p.reg.Define(sch, lineNo, d.Col); err != nil {
		return err
	}

	top.schema = sch

	return nil
}

func (p *Parser) handleUse(d lex.Token, lineNo int) error {
	args := d.DirectiveArgs
	if len(args) != 1 || (args[0].Kind != lex.Ident && args[0].Kind != lex.String) {
		return tqerr.New(tqerr.KindDirective, lineNo, d.Col, "!use requires exactly one schema name")
	}

	top := p.top()
	if top.kind == frameFreeObject {
		return tqerr.New(tqerr.KindDirective, lineNo, d.Col,
			"!use is not valid inside a free object; open an array instead")
	}

	sch, err := p.reg.MustUse(args[0].Text, lineNo, d.Col)
	if err != nil {
		return err
	}

	top.schema = sch

	return nil
}

// parseFieldDecls parses the field-declaration tokens following a schema
// name in !def: a sequence of barewords, each either a plain name, a
// "name:Type" nested-object annotation, or a "name:" bareword followed by
// a bracketed list marker ("[]" for a bare list, "[Type]" for a list of
// nested rows).
func parseFieldDecls(toks []lex.Token, lineNo int) ([]schema.Field, error) {
	var fields []schema.Field

	i := 0

	for i < len(toks) {
		t := toks[i]
		if t.Kind != lex.Ident {
			return nil, tqerr.New(tqerr.KindDirective, lineNo, t.Col, "expected a field name")
		}

		name := t.Text

		if idx := strings.IndexByte(name, ':'); idx >= 0 {
			base, rest := name[:idx], name[idx+1:]

			if rest != "" {
				fields = append(fields, schema.Field{Name: base, TypeName: rest})
				i++

				continue
			}

			i++
			if i >= len(toks) || toks[i].Kind != lex.LBracket {
				return nil, tqerr.New(tqerr.KindDirective, lineNo, t.Col, "expected [ after %q", base+":")
			}

			i++

			var typeName string
			if i < len(toks) && toks[i].Kind == lex.Ident {
				typeName = toks[i].Text
				i++
			}

			if i >= len(toks) || toks[i].Kind != lex.RBracket {
				return nil, tqerr.New(tqerr.KindDirective, lineNo, t.Col, "expected ] to close list marker for %q", base)
			}

			i++

			fields = append(fields, schema.Field{Name: base, TypeName: typeName, IsList: true})

			continue
		}

		fields = append(fields, schema.Field{Name: name})
		i++
	}

	if len(fields) == 0 {
		return nil, tqerr.New(tqerr.KindDirective, lineNo, 0, "schema must declare at least one field")
	}

	return fields, nil
}
