package tqn_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.tauq.dev/tauq/tqn"
)

func TestRecordStreamRootRows(t *testing.T) {
	t.Parallel()

	text := "!def User id name\n1 Alice\n2 Bob\n3 Carol\n"

	rs, err := tqn.NewRecordStream(text)
	require.NoError(t, err)

	var names []string

	for {
		row, ok, err := rs.Next()
		require.NoError(t, err)

		if !ok {
			break
		}

		name, _ := row.Object().Get("name")
		names = append(names, name.String())
	}

	assert.Equal(t, []string{"Alice", "Bob", "Carol"}, names)
}

func TestRecordStreamMatchesParseForRoot(t *testing.T) {
	t.Parallel()

	text := "!def User id name; 1 Alice; 2 Bob\n"

	tree, err := tqn.Parse(text)
	require.NoError(t, err)

	rs, err := tqn.NewRecordStream(text)
	require.NoError(t, err)

	var streamed int

	for {
		_, ok, err := rs.Next()
		require.NoError(t, err)

		if !ok {
			break
		}

		streamed++
	}

	assert.Len(t, tree.Array(), streamed)
}

func TestRecordStreamAtField(t *testing.T) {
	t.Parallel()

	text := "!def User id name\n" +
		"---\n" +
		"users [\n" +
		"!use User\n" +
		"1 Alice\n" +
		"2 Bob\n" +
		"]\n"

	rs, err := tqn.NewRecordStreamAt(text, "users")
	require.NoError(t, err)

	var count int

	for {
		_, ok, err := rs.Next()
		require.NoError(t, err)

		if !ok {
			break
		}

		count++
	}

	assert.Equal(t, 2, count)
}

func TestRecordStreamPropagatesErrors(t *testing.T) {
	t.Parallel()

	rs, err := tqn.NewRecordStream("!def User id name\n1\n")
	require.NoError(t, err)

	_, _, err = rs.Next()
	require.Error(t, err)
}
