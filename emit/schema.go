package emit

import (
	"fmt"
	"strings"

	"go.tauq.dev/tauq/schema"
	"go.tauq.dev/tauq/value"
)

// schemaNamer derives !def names for synthesized schemas as the emitter
// walks the tree, deduplicating an array's row shape against schemas it
// has already emitted so repeated shapes reuse a single !def (matching
// the parser-side registry's "redefinition is an error" rule: the
// emitter must never emit the same name twice with different fields).
type schemaNamer struct {
	reg  *schema.Registry
	sigs map[string]string // name -> field-list signature already claimed
}

func newSchemaNamer() *schemaNamer {
	return &schemaNamer{reg: schema.NewRegistry(), sigs: make(map[string]string)}
}

// resolve returns the name to use for fields under baseName, and whether
// this is the first time that name has been claimed (isNew == true means
// the caller must emit a !def; otherwise a !use suffices).
func (n *schemaNamer) resolve(baseName string, fields []schema.Field) (name string, isNew bool) {
	sig := fieldSignature(fields)

	if existing, ok := n.sigs[baseName]; ok {
		if existing == sig {
			return baseName, false
		}

		for i := 2; ; i++ {
			candidate := fmt.Sprintf("%s%d", baseName, i)

			existing, ok := n.sigs[candidate]
			if !ok {
				n.claim(candidate, sig, fields)

				return candidate, true
			}

			if existing == sig {
				return candidate, false
			}
		}
	}

	n.claim(baseName, sig, fields)

	return baseName, true
}

func (n *schemaNamer) claim(name, sig string, fields []schema.Field) {
	n.sigs[name] = sig
	_ = n.reg.Define(&schema.Schema{Name: name, Fields: fields}, 0, 0)
}

func fieldSignature(fields []schema.Field) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f.String()
	}

	return strings.Join(parts, ",")
}

// singularize derives a schema name from the plural field/key name it
// annotates: "users" -> "User", "categories" -> "Category". A trailing
// "ies" becomes "y"; otherwise a single trailing 's' is dropped unless the
// key ends in "ss". An "es" ending is not treated specially ("boxes"
// becomes "Boxe"), and irregular plurals are kept as-is, capitalized.
func singularize(key string) string {
	name := key
	if strings.HasSuffix(name, "ies") && len(name) > 3 {
		name = name[:len(name)-3] + "y"
	} else if strings.HasSuffix(name, "s") && !strings.HasSuffix(name, "ss") && len(name) > 1 {
		name = name[:len(name)-1]
	}

	if name == "" {
		return "Item"
	}

	return strings.ToUpper(name[:1]) + name[1:]
}

// deriveFields inspects one exemplar object and produces the schema field
// list the emitter will declare for it, recursing into object- and
// object-array-valued fields to synthesize nested schemas via namer.
func deriveFields(exemplar *value.Object, namer *schemaNamer) []schema.Field {
	fields := make([]schema.Field, 0, exemplar.Len())

	for _, k := range exemplar.Keys() {
		fv, _ := exemplar.Get(k)

		switch fv.Kind() {
		case value.KindObject:
			nested := deriveFields(fv.Object(), namer)
			name, _ := namer.resolve(singularize(k), nested)
			fields = append(fields, schema.Field{Name: k, TypeName: name})
		case value.KindArray:
			elems := fv.Array()
			if len(elems) > 0 && elems[0].Kind() == value.KindObject {
				nested := deriveFields(elems[0].Object(), namer)
				name, _ := namer.resolve(singularize(k), nested)
				fields = append(fields, schema.Field{Name: k, TypeName: name, IsList: true})
			} else {
				fields = append(fields, schema.Field{Name: k, IsList: true})
			}
		default:
			fields = append(fields, schema.Field{Name: k})
		}
	}

	return fields
}

// isUniformRowArray reports whether every element of arr is an object
// sharing the same key set in the same order, making it eligible for
// schema-block emission instead of a plain bracketed list.
func isUniformRowArray(arr []value.Value) bool {
	if len(arr) == 0 || arr[0].Kind() != value.KindObject {
		return false
	}

	want := arr[0].Object().Keys()

	for _, e := range arr[1:] {
		if e.Kind() != value.KindObject {
			return false
		}

		got := e.Object().Keys()
		if len(got) != len(want) {
			return false
		}

		for i := range want {
			if got[i] != want[i] {
				return false
			}
		}
	}

	return true
}
