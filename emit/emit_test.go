package emit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.tauq.dev/tauq/emit"
	"go.tauq.dev/tauq/tqn"
	"go.tauq.dev/tauq/value"
)

func buildUsers() value.Value {
	u1 := value.NewObject()
	u1.Set("id", value.Int(1))
	u1.Set("name", value.Str("Alice"))

	u2 := value.NewObject()
	u2.Set("id", value.Int(2))
	u2.Set("name", value.Str("Bob"))

	root := value.NewObject()
	root.Set("users", value.Arr(value.Obj(u1), value.Obj(u2)))

	return value.Obj(root)
}

func TestEmitSchemaBlock(t *testing.T) {
	t.Parallel()

	text, err := emit.Emit(buildUsers())
	require.NoError(t, err)

	assert.Contains(t, text, "!def User id name")
	assert.Contains(t, text, "users [")
	assert.Contains(t, text, "1 Alice")
	assert.Contains(t, text, "2 Bob")
	assert.Contains(t, text, "]")
}

func TestEmitMinify(t *testing.T) {
	t.Parallel()

	text, err := emit.Emit(buildUsers(), emit.WithMinify(true))
	require.NoError(t, err)

	assert.NotContains(t, text[:len(text)-1], "\n")
	assert.Contains(t, text, ";")
}

func TestEmitParseRoundTrip(t *testing.T) {
	t.Parallel()

	orig := buildUsers()

	text, err := emit.Emit(orig)
	require.NoError(t, err)

	reparsed, err := tqn.Parse(text)
	require.NoError(t, err)

	assert.True(t, value.Equal(orig, reparsed))
}

func TestEmitMinifyRoundTrip(t *testing.T) {
	t.Parallel()

	orig := buildUsers()

	text, err := emit.Emit(orig, emit.WithMinify(true))
	require.NoError(t, err)

	reparsed, err := tqn.Parse(text)
	require.NoError(t, err)

	assert.True(t, value.Equal(orig, reparsed))
}

func TestEmitInlineArrayField(t *testing.T) {
	t.Parallel()

	obj := value.NewObject()
	obj.Set("tags", value.Arr(value.Str("smartphone"), value.Str("5g"), value.Str("flagship")))

	text, err := emit.Emit(value.Obj(obj))
	require.NoError(t, err)

	assert.Contains(t, text, "tags [smartphone 5g flagship]")

	reparsed, err := tqn.Parse(text)
	require.NoError(t, err)
	assert.True(t, value.Equal(value.Obj(obj), reparsed))
}

func TestEmitNestedSchemaField(t *testing.T) {
	t.Parallel()

	geo := value.NewObject()
	geo.Set("lat", value.Float(40.71))
	geo.Set("lon", value.Float(-74.0))

	city := value.NewObject()
	city.Set("name", value.Str("NYC"))
	city.Set("loc", value.Obj(geo))

	root := value.NewObject()
	root.Set("cities", value.Arr(value.Obj(city)))

	orig := value.Obj(root)

	text, err := emit.Emit(orig)
	require.NoError(t, err)
	assert.Contains(t, text, "loc:Loc")

	reparsed, err := tqn.Parse(text)
	require.NoError(t, err)
	assert.True(t, value.Equal(orig, reparsed))
}

func TestEmitSchemaDedup(t *testing.T) {
	t.Parallel()

	mk := func(id int64, name string) value.Value {
		o := value.NewObject()
		o.Set("id", value.Int(id))
		o.Set("name", value.Str(name))

		return value.Obj(o)
	}

	root := value.NewObject()
	root.Set("users", value.Arr(mk(1, "Alice")))
	root.Set("admins", value.Arr(mk(2, "Bob")))

	text, err := emit.Emit(value.Obj(root))
	require.NoError(t, err)

	// Both arrays have the same field list, but deduplication is keyed on
	// (name, field-list): "admins" singularizes to "Admin", a different
	// name from "User", so each array gets its own !def.
	assert.Contains(t, text, "!def User id name")
	assert.Contains(t, text, "!def Admin id name")
}

func TestEmitRootNonUniformArrayError(t *testing.T) {
	t.Parallel()

	_, err := emit.Emit(value.Arr(value.Int(1), value.Str("a")))
	require.Error(t, err)
}

func TestEmitQuotesStringsThatWouldMislex(t *testing.T) {
	t.Parallel()

	obj := value.NewObject()
	obj.Set("note", value.Str("true"))
	obj.Set("count", value.Str("42"))
	obj.Set("plain", value.Str("hello"))

	text, err := emit.Emit(value.Obj(obj))
	require.NoError(t, err)

	assert.Contains(t, text, `note "true"`)
	assert.Contains(t, text, `count "42"`)
	assert.Contains(t, text, "plain hello")

	reparsed, err := tqn.Parse(text)
	require.NoError(t, err)
	assert.True(t, value.Equal(value.Obj(obj), reparsed))
}
