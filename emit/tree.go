package emit

import (
	"strings"

	"go.tauq.dev/tauq/schema"
	"go.tauq.dev/tauq/tqerr"
	"go.tauq.dev/tauq/value"
)

// Options configures [Emit].
type Options struct {
	minify bool
}

// Option configures an Emit call.
type Option func(*Options)

// WithMinify folds the document onto a single physical line, joining
// logical lines with ';' instead of '\n'. The logical content is
// identical either way; only the physical packing differs.
func WithMinify(minify bool) Option {
	return func(o *Options) { o.minify = minify }
}

// Emit renders v as TQN text. It returns a syntax error when v is a bare
// scalar, or an array whose elements are not all objects with the same
// keys in the same order.
func Emit(v value.Value, opts ...Option) (string, error) {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}

	w := &writer{namer: newSchemaNamer()}

	if err := w.emitDocument(v); err != nil {
		return "", err
	}

	if o.minify {
		return strings.Join(w.lines, ";") + "\n", nil
	}

	return strings.Join(w.lines, "\n") + "\n", nil
}

type writer struct {
	namer *schemaNamer
	lines []string
}

func (w *writer) emit(line string) { w.lines = append(w.lines, line) }

func (w *writer) emitDocument(v value.Value) error {
	switch v.Kind() {
	case value.KindObject:
		return w.emitObjectFields(v.Object())
	case value.KindArray:
		return w.emitRootArray(v.Array())
	default:
		return tqerr.New(tqerr.KindSyntax, 0, 0,
			"a bare %s cannot be the document root; wrap it in an object field", v.Kind())
	}
}

func (w *writer) emitRootArray(arr []value.Value) error {
	if !isUniformRowArray(arr) {
		return tqerr.New(tqerr.KindSyntax, 0, 0,
			"a root-level array must contain uniform objects to round-trip through a schema")
	}

	return w.emitSchemaRows("T", arr)
}

func (w *writer) emitObjectFields(obj *value.Object) error {
	for _, k := range obj.Keys() {
		v, _ := obj.Get(k)

		if err := w.emitField(k, v); err != nil {
			return err
		}
	}

	return nil
}

func (w *writer) emitField(key string, v value.Value) error {
	switch v.Kind() {
	case value.KindArray:
		arr := v.Array()
		if isUniformRowArray(arr) {
			w.emit(renderString(key) + " [")

			if err := w.emitSchemaRows(singularize(key), arr); err != nil {
				return err
			}

			w.emit("]")

			return nil
		}

		w.emit(renderString(key) + " " + renderInlineArray(arr))

		return nil
	case value.KindObject:
		w.emit(renderString(key) + " " + renderInlineObject(v.Object()))

		return nil
	default:
		w.emit(renderString(key) + " " + renderScalar(v))

		return nil
	}
}

// emitSchemaRows derives (or reuses) a schema for arr's shared shape,
// writes its !def or !use, then one row line per element. Nested schemas
// first claimed while deriving the fields get their own !def lines ahead
// of the schema that references them.
func (w *writer) emitSchemaRows(baseName string, arr []value.Value) error {
	claimed := len(w.namer.reg.Names())
	fields := deriveFields(arr[0].Object(), w.namer)

	name, isNew := w.namer.resolve(baseName, fields)

	for _, nestedName := range w.namer.reg.Names()[claimed:] {
		if nestedName == name {
			continue
		}

		nested, _ := w.namer.reg.Lookup(nestedName)
		w.emit("!def " + nestedName + " " + fieldDeclText(nested.Fields))
	}

	if isNew {
		w.emit("!def " + name + " " + fieldDeclText(fields))
	} else {
		w.emit("!use " + name)
	}

	for _, row := range arr {
		line, err := renderRow(fields, row.Object(), w.namer)
		if err != nil {
			return err
		}

		w.emit(line)
	}

	return nil
}

func fieldDeclText(fields []schema.Field) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f.String()
	}

	return strings.Join(parts, " ")
}

func renderRow(fields []schema.Field, obj *value.Object, namer *schemaNamer) (string, error) {
	parts := make([]string, 0, len(fields))

	for _, f := range fields {
		v, ok := obj.Get(f.Name)
		if !ok {
			v = value.Null()
		}

		part, err := renderFieldValue(f, v, namer)
		if err != nil {
			return "", err
		}

		parts = append(parts, part)
	}

	return strings.Join(parts, " "), nil
}

func renderFieldValue(f schema.Field, v value.Value, namer *schemaNamer) (string, error) {
	switch {
	case f.IsList && f.TypeName != "":
		nested, ok := namer.reg.Lookup(f.TypeName)
		if !ok {
			return "", tqerr.New(tqerr.KindSchema, 0, 0, "undefined nested schema %q", f.TypeName)
		}

		parts := make([]string, 0, len(v.Array()))

		for _, e := range v.Array() {
			row, err := renderRow(nested.Fields, e.Object(), namer)
			if err != nil {
				return "", err
			}

			parts = append(parts, "{ "+row+" }")
		}

		return "[ " + strings.Join(parts, " ") + " ]", nil
	case f.IsList:
		return renderInlineArray(v.Array()), nil
	case f.TypeName != "":
		nested, ok := namer.reg.Lookup(f.TypeName)
		if !ok {
			return "", tqerr.New(tqerr.KindSchema, 0, 0, "undefined nested schema %q", f.TypeName)
		}

		row, err := renderRow(nested.Fields, v.Object(), namer)
		if err != nil {
			return "", err
		}

		return "{ " + row + " }", nil
	default:
		return renderScalar(v), nil
	}
}

func renderInlineArray(arr []value.Value) string {
	parts := make([]string, len(arr))
	for i, e := range arr {
		parts[i] = renderValueInline(e)
	}

	return "[" + strings.Join(parts, " ") + "]"
}

func renderInlineObject(obj *value.Object) string {
	var sb strings.Builder

	sb.WriteByte('{')

	for _, k := range obj.Keys() {
		sb.WriteByte(' ')

		v, _ := obj.Get(k)
		sb.WriteString(renderString(k))
		sb.WriteByte(' ')
		sb.WriteString(renderValueInline(v))
	}

	sb.WriteString(" }")

	return sb.String()
}

// renderValueInline renders any Value (including nested arrays/objects)
// as a free-form inline expression, with no schema annotation. It is used
// for fields that did not qualify for schema-block emission.
func renderValueInline(v value.Value) string {
	switch v.Kind() {
	case value.KindArray:
		return renderInlineArray(v.Array())
	case value.KindObject:
		return renderInlineObject(v.Object())
	default:
		return renderScalar(v)
	}
}
