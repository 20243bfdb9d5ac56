package tqn

import (
	"go.tauq.dev/tauq/schema"
	"go.tauq.dev/tauq/value"
)

type frameKind int

const (
	frameRoot frameKind = iota
	frameArray
	frameFreeObject
)

type attachKind int

const (
	attachNone attachKind = iota
	attachArrayAppend
	attachObjectKey
)

// attachTarget records where a frame's completed container value goes
// once it is popped: appended to the parent array, or set as a field on
// the parent object.
type attachTarget struct {
	kind attachKind
	key  string
}

// frame is one level of the parse-context stack: the root document, an
// open array, or an open free (non-schema) object. Multi-line containers
// (an array or object whose opening bracket is the last token of its
// line) live on this stack until their closing bracket is seen; inline
// containers never touch it, since [parseInlineValue] resolves them
// within a single logical line.
type frame struct {
	kind   frameKind
	schema *schema.Schema // active schema for this scope, nil if none
	attach attachTarget

	// object accumulates fields for frameRoot (once it resolves to an
	// object) and frameFreeObject.
	object *value.Object

	// array accumulates elements for frameArray and for frameRoot once it
	// resolves to an array. onRow, when set by a streaming reader,
	// intercepts row/element production instead of appending to array,
	// keeping memory use constant for that scope.
	array []value.Value
	onRow func(value.Value)

	// rootIsArray records root's one-time object/array resolution.
	rootIsArray  bool
	rootResolved bool

	openLine, openCol int
}

func newRootFrame() *frame {
	return &frame{kind: frameRoot}
}

// appendValue records v as an element of an array-shaped frame (frameArray,
// or frameRoot once resolved to array), routing through onRow if a
// streaming reader has armed this frame.
func (f *frame) appendValue(v value.Value) {
	if f.onRow != nil {
		f.onRow(v)

		return
	}

	f.array = append(f.array, v)
}

// resolveRootAsArray upgrades an as-yet-empty, undetermined root frame
// into array mode. It is a no-op if root has already resolved either way.
func (f *frame) resolveRootAsArray() bool {
	if f.rootResolved {
		return f.rootIsArray
	}

	f.rootResolved = true
	f.rootIsArray = true

	return true
}

func (f *frame) resolveRootAsObject() bool {
	if f.rootResolved {
		return !f.rootIsArray
	}

	f.rootResolved = true
	f.rootIsArray = false

	if f.object == nil {
		f.object = value.NewObject()
	}

	return true
}

// finalValue renders the frame's accumulated content as a Value, used
// when the root frame finishes or a nested frame is popped.
func (f *frame) finalValue() value.Value {
	if f.kind == frameArray || (f.kind == frameRoot && f.rootIsArray) {
		return value.NewArray(f.array)
	}

	if f.object == nil {
		f.object = value.NewObject()
	}

	return value.Obj(f.object)
}
