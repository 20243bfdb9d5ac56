// Package schema holds the field-list schemas introduced by a tauq
// document's !def directives, and the registry that tracks them by name
// for later !use lookups.
package schema

import (
	"fmt"

	"go.tauq.dev/tauq/tqerr"
)

// Field is one column of a schema. TypeName, if non-empty, names another
// registered schema whose row shape the field's value must follow; IsList
// marks the field as an array (of bare values if TypeName is empty, of
// TypeName rows otherwise).
type Field struct {
	Name     string
	TypeName string
	IsList   bool
}

// Schema is a named, ordered field list, as introduced by a single !def
// line.
type Schema struct {
	Name   string
	Fields []Field
}

// Arity is the number of values one row of this schema carries.
func (s *Schema) Arity() int { return len(s.Fields) }

// FieldNames returns the field names in declaration order.
func (s *Schema) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}

	return names
}

// Registry tracks schemas by name across a document (and, for tqq, across
// an import chain that shares one schema namespace).
type Registry struct {
	byName map[string]*Schema
	order  []string
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Schema)}
}

// Define registers s. It is a schema error to redefine an existing name,
// or to declare a field whose TypeName refers to a schema not yet
// defined: nested schemas must be declared before the schema that
// references them, matching !def's "defined before first use" rule.
func (r *Registry) Define(s *Schema, line, col int) error {
	if _, exists := r.byName[s.Name]; exists {
		return tqerr.New(tqerr.KindSchema, line, col, "schema %q already defined", s.Name)
	}

	for _, f := range s.Fields {
		if f.TypeName == "" {
			continue
		}

		if _, ok := r.byName[f.TypeName]; !ok {
			return tqerr.New(tqerr.KindSchema, line, col,
				"field %q references undefined schema %q", f.Name, f.TypeName)
		}
	}

	r.byName[s.Name] = s
	r.order = append(r.order, s.Name)

	return nil
}

// Lookup returns the schema registered under name.
func (r *Registry) Lookup(name string) (*Schema, bool) {
	s, ok := r.byName[name]

	return s, ok
}

// MustUse looks up name for a !use directive, returning a schema error if
// it is undefined.
func (r *Registry) MustUse(name string, line, col int) (*Schema, error) {
	s, ok := r.byName[name]
	if !ok {
		return nil, tqerr.New(tqerr.KindSchema, line, col, "!use references undefined schema %q", name)
	}

	return s, nil
}

// Names returns the registered schema names in definition order.
func (r *Registry) Names() []string {
	return r.order
}

func (f Field) String() string {
	switch {
	case f.IsList && f.TypeName != "":
		return fmt.Sprintf("%s:[%s]", f.Name, f.TypeName)
	case f.IsList:
		return fmt.Sprintf("%s:[]", f.Name)
	case f.TypeName != "":
		return fmt.Sprintf("%s:%s", f.Name, f.TypeName)
	default:
		return f.Name
	}
}
