package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.tauq.dev/tauq/schema"
)

func TestRegistryDefineAndLookup(t *testing.T) {
	t.Parallel()

	reg := schema.NewRegistry()

	err := reg.Define(&schema.Schema{
		Name:   "User",
		Fields: []schema.Field{{Name: "id"}, {Name: "name"}},
	}, 1, 1)
	require.NoError(t, err)

	s, ok := reg.Lookup("User")
	require.True(t, ok)
	assert.Equal(t, 2, s.Arity())
	assert.Equal(t, []string{"id", "name"}, s.FieldNames())
}

func TestRegistryRedefineError(t *testing.T) {
	t.Parallel()

	reg := schema.NewRegistry()
	require.NoError(t, reg.Define(&schema.Schema{Name: "User", Fields: []schema.Field{{Name: "id"}}}, 1, 1))

	err := reg.Define(&schema.Schema{Name: "User", Fields: []schema.Field{{Name: "id"}}}, 2, 1)
	require.Error(t, err)
}

func TestRegistryUndefinedNestedReference(t *testing.T) {
	t.Parallel()

	reg := schema.NewRegistry()

	err := reg.Define(&schema.Schema{
		Name:   "City",
		Fields: []schema.Field{{Name: "name"}, {Name: "loc", TypeName: "Geo"}},
	}, 1, 1)
	require.Error(t, err)
}

func TestRegistryMustUse(t *testing.T) {
	t.Parallel()

	reg := schema.NewRegistry()
	require.NoError(t, reg.Define(&schema.Schema{Name: "User", Fields: []schema.Field{{Name: "id"}}}, 1, 1))

	_, err := reg.MustUse("Missing", 1, 1)
	require.Error(t, err)

	s, err := reg.MustUse("User", 1, 1)
	require.NoError(t, err)
	assert.Equal(t, "User", s.Name)
}

func TestFieldString(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		field schema.Field
		want  string
	}{
		"plain":          {schema.Field{Name: "id"}, "id"},
		"nested":         {schema.Field{Name: "loc", TypeName: "Geo"}, "loc:Geo"},
		"bare list":      {schema.Field{Name: "tags", IsList: true}, "tags:[]"},
		"nested list":    {schema.Field{Name: "users", TypeName: "User", IsList: true}, "users:[User]"},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, tc.field.String())
		})
	}
}
