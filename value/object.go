package value

// Object is an insertion-order preserving string-keyed map. Tauq objects
// must replay their fields in source order when re-emitted, which
// map[string]any cannot do, so every object-producing path in the parser
// and the tqq engine builds one of these instead of a bare Go map.
type Object struct {
	keys []string
	vals map[string]Value
}

// NewObject returns an empty Object ready for use.
func NewObject() *Object {
	return &Object{vals: make(map[string]Value)}
}

// Set assigns key to v. Re-setting an existing key updates its value in
// place without moving its position in iteration order: the second
// occurrence wins, the first position is kept.
func (o *Object) Set(key string, v Value) {
	if _, ok := o.vals[key]; !ok {
		o.keys = append(o.keys, key)
	}

	o.vals[key] = v
}

// Get returns the value for key and whether it was present.
func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.vals[key]

	return v, ok
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.vals[key]

	return ok
}

// Delete removes key, preserving the order of remaining keys.
func (o *Object) Delete(key string) {
	if _, ok := o.vals[key]; !ok {
		return
	}

	delete(o.vals, key)

	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)

			break
		}
	}
}

// Keys returns the keys in insertion order. The returned slice must not
// be mutated by the caller.
func (o *Object) Keys() []string { return o.keys }

// Len reports the number of fields.
func (o *Object) Len() int { return len(o.keys) }

// Range calls fn for each field in insertion order, stopping early if fn
// returns false.
func (o *Object) Range(fn func(key string, v Value) bool) {
	for _, k := range o.keys {
		if !fn(k, o.vals[k]) {
			return
		}
	}
}
