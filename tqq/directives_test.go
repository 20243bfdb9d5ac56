package tqq_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.tauq.dev/tauq/tqq"
)

func TestRunDirectiveSplicesStdout(t *testing.T) {
	t.Parallel()

	src := "before\n!run sh {\necho hello\n}\nafter"

	out, err := tqq.NewEngine().Process(context.Background(), src, "")
	require.NoError(t, err)
	assert.Equal(t, "before\nhello\nafter", out)
}

func TestRunDirectiveRequiresClosingBrace(t *testing.T) {
	t.Parallel()

	_, err := tqq.NewEngine().Process(context.Background(), "!run sh {\necho hello", "")
	require.Error(t, err)
}

func TestRunDirectiveIsBlockedInSafeMode(t *testing.T) {
	t.Parallel()

	_, err := tqq.NewEngine(tqq.WithSafeMode(true)).
		Process(context.Background(), "!run sh {\necho hello\n}", "")
	require.Error(t, err)
}

func TestPipeDirectiveConsumesRemainderAsStdin(t *testing.T) {
	t.Parallel()

	src := "header\n!pipe cat\nbody line one\nbody line two"

	out, err := tqq.NewEngine().Process(context.Background(), src, "")
	require.NoError(t, err)
	assert.Equal(t, "header\nbody line one\nbody line two", out)
}

func TestEmitDirectiveSpawnsCommandAndAppendsStdout(t *testing.T) {
	t.Parallel()

	src := "before\n" + `!emit echo "name Alice"`

	out, err := tqq.NewEngine().Process(context.Background(), src, "")
	require.NoError(t, err)
	assert.Equal(t, "before\nname Alice", out)
}

func TestEmitDirectiveIsBlockedInSafeMode(t *testing.T) {
	t.Parallel()

	_, err := tqq.NewEngine(tqq.WithSafeMode(true)).
		Process(context.Background(), `!emit echo hello`, "")
	require.Error(t, err)
}
