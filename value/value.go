// Package value defines the in-memory representation every tauq document
// parses into: a small tagged union ([Value]) plus an insertion-order
// preserving [Object], shared by the parser (package tqn), the emitter
// (package emit) and the tqq preprocessor.
package value

import (
	"fmt"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInteger
	KindFloat
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a tauq scalar, array or object. The zero Value is Null. Values
// are immutable from the caller's perspective: mutating methods live on
// [Object], not on Value itself.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	arr  []Value
	obj  *Object
}

// Null returns the null value.
func Null() Value { return Value{kind: KindNull} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int wraps a 64-bit integer.
func Int(i int64) Value { return Value{kind: KindInteger, i: i} }

// Float wraps a 64-bit float.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// Str wraps a string.
func Str(s string) Value { return Value{kind: KindString, s: s} }

// NewArray wraps a slice of elements. The slice is retained, not copied.
func NewArray(elems []Value) Value {
	if elems == nil {
		elems = []Value{}
	}

	return Value{kind: KindArray, arr: elems}
}

// Arr is a variadic convenience over [NewArray].
func Arr(elems ...Value) Value { return NewArray(elems) }

// Obj wraps an *Object. A nil Object is treated as empty.
func Obj(o *Object) Value {
	if o == nil {
		o = NewObject()
	}

	return Value{kind: KindObject, obj: o}
}

// Kind reports the variant held.
func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

// Bool returns the boolean payload; false if v is not a bool.
func (v Value) Bool() bool { return v.b }

// Int returns the integer payload; zero if v is not an integer.
func (v Value) Int() int64 { return v.i }

// Float returns the float payload; zero if v is not a float.
func (v Value) Float() float64 { return v.f }

// String returns the string payload; empty if v is not a string. For
// debugging use [Dump] instead, which renders the Kind too.
func (v Value) String() string { return v.s }

// Array returns the element slice; nil if v is not an array.
func (v Value) Array() []Value { return v.arr }

// Object returns the backing *Object; nil if v is not an object.
func (v Value) Object() *Object {
	if v.kind != KindObject {
		return nil
	}

	return v.obj
}

// Equal reports deep equality. Array element order is significant; object
// key order is not (insertion order is a presentation detail, preserved
// for emission but not semantically meaningful). Integer and float are
// distinct kinds and never compare equal to one another, matching tauq's
// JSON-equivalence invariant that 1 and 1.0 round-trip as different types.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}

	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindInteger:
		return a.i == b.i
	case KindFloat:
		return a.f == b.f
	case KindString:
		return a.s == b.s
	case KindArray:
		if len(a.arr) != len(b.arr) {
			return false
		}

		for i := range a.arr {
			if !Equal(a.arr[i], b.arr[i]) {
				return false
			}
		}

		return true
	case KindObject:
		return objectsEqual(a.obj, b.obj)
	default:
		return false
	}
}

func objectsEqual(a, b *Object) bool {
	if a.Len() != b.Len() {
		return false
	}

	for _, k := range a.Keys() {
		av, _ := a.Get(k)

		bv, ok := b.Get(k)
		if !ok || !Equal(av, bv) {
			return false
		}
	}

	return true
}

// Dump renders v for debugging, annotating the Kind of every node. It is
// not a serialization format; use the emit package for that.
func Dump(v Value) string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return fmt.Sprintf("bool(%v)", v.b)
	case KindInteger:
		return fmt.Sprintf("integer(%d)", v.i)
	case KindFloat:
		return fmt.Sprintf("float(%v)", v.f)
	case KindString:
		return fmt.Sprintf("string(%q)", v.s)
	case KindArray:
		s := "array["
		for i, e := range v.arr {
			if i > 0 {
				s += ", "
			}

			s += Dump(e)
		}

		return s + "]"
	case KindObject:
		s := "object{"
		for i, k := range v.obj.Keys() {
			if i > 0 {
				s += ", "
			}

			fv, _ := v.obj.Get(k)
			s += fmt.Sprintf("%q: %s", k, Dump(fv))
		}

		return s + "}"
	default:
		return "?"
	}
}
