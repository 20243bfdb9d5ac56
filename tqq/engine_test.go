package tqq_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.tauq.dev/tauq/tqq"
)

func TestSetAndSubstitute(t *testing.T) {
	t.Parallel()

	src := "!set NAME Alice\nuser ${NAME}\n"

	out, err := tqq.NewEngine().Process(context.Background(), src, "")
	require.NoError(t, err)
	assert.Equal(t, "user Alice\n", out)
}

func TestUndefinedVariableSubstitutesEmpty(t *testing.T) {
	t.Parallel()

	out, err := tqq.NewEngine().Process(context.Background(), "user ${MISSING}", "")
	require.NoError(t, err)
	assert.Equal(t, "user ", out)
}

func TestBarewordVariableSubstitution(t *testing.T) {
	t.Parallel()

	src := "!set NAME Alice\nuser $NAME\n"

	out, err := tqq.NewEngine().Process(context.Background(), src, "")
	require.NoError(t, err)
	assert.Equal(t, "user Alice\n", out)
}

func TestEnvDirectiveInjectsLine(t *testing.T) {
	t.Setenv("TQQ_TEST_VAR", "fromenv")

	out, err := tqq.NewEngine().Process(context.Background(), "!env TQQ_TEST_VAR", "")
	require.NoError(t, err)
	assert.Equal(t, `TQQ_TEST_VAR "fromenv"`, out)
}

func TestEnvDirectiveUnsetIsEmptyString(t *testing.T) {
	t.Parallel()

	out, err := tqq.NewEngine().Process(context.Background(), "!env TQQ_TEST_VAR_UNSET", "")
	require.NoError(t, err)
	assert.Equal(t, `TQQ_TEST_VAR_UNSET ""`, out)
}

func TestImportDirective(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	childPath := filepath.Join(dir, "child.tqq")
	require.NoError(t, os.WriteFile(childPath, []byte("greeting hello"), 0o644))

	mainPath := filepath.Join(dir, "main.tqq")
	mainText := "!import child.tqq"

	out, err := tqq.NewEngine().Process(context.Background(), mainText, mainPath)
	require.NoError(t, err)
	assert.Equal(t, "greeting hello", out)
}

func TestImportCycleDetected(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	selfPath := filepath.Join(dir, "self.tqq")
	require.NoError(t, os.WriteFile(selfPath, []byte("!import self.tqq"), 0o644))

	_, err := tqq.NewEngine().Process(context.Background(), "!import self.tqq", selfPath)
	require.Error(t, err)
}

func TestImportChildScopeDoesNotLeak(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	childPath := filepath.Join(dir, "child.tqq")
	require.NoError(t, os.WriteFile(childPath, []byte("!set LOCAL hidden"), 0o644))

	mainPath := filepath.Join(dir, "main.tqq")
	mainText := "!import child.tqq\nvalue ${LOCAL}"

	out, err := tqq.NewEngine().Process(context.Background(), mainText, mainPath)
	require.NoError(t, err)
	assert.Equal(t, "\nvalue ", out)
}

func TestReadDirectiveIsVerbatim(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	path := filepath.Join(dir, "raw.txt")
	require.NoError(t, os.WriteFile(path, []byte("${NOT_SUBSTITUTED}"), 0o644))

	mainPath := filepath.Join(dir, "main.tqq")
	out, err := tqq.NewEngine().Process(context.Background(), "!read raw.txt", mainPath)
	require.NoError(t, err)
	assert.Equal(t, "${NOT_SUBSTITUTED}", out)
}

func TestJSONDirective(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	path := filepath.Join(dir, "data.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name":"Alice","age":30}`), 0o644))

	mainPath := filepath.Join(dir, "main.tqq")
	out, err := tqq.NewEngine().Process(context.Background(), "!json data.json", mainPath)
	require.NoError(t, err)
	assert.Contains(t, out, "name Alice")
	assert.Contains(t, out, "age 30")
}

func TestSafeModeBlocksUnsafeDirectives(t *testing.T) {
	t.Parallel()

	e := tqq.NewEngine(tqq.WithSafeMode(true))

	_, err := e.Process(context.Background(), "!import whatever.tqq", "")
	require.Error(t, err)

	_, err = e.Process(context.Background(), "!set X 1\nvalue ${X}", "")
	require.NoError(t, err)
}

func TestTraceCallback(t *testing.T) {
	t.Parallel()

	var seen []string

	e := tqq.NewEngine(tqq.WithTrace(func(event string, fields map[string]any) {
		seen = append(seen, fields["name"].(string))
	}))

	_, err := e.Process(context.Background(), "!set X 1", "")
	require.NoError(t, err)

	assert.Equal(t, []string{"set"}, seen)
}

func TestMaxImportDepthExceeded(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	// a imports b, b imports a. With a limit of 1 the depth check fires
	// when a is imported at depth 2, before the cycle check would see b
	// imported a second time.
	aPath := filepath.Join(dir, "a.tqq")
	bPath := filepath.Join(dir, "b.tqq")

	require.NoError(t, os.WriteFile(aPath, []byte("!import b.tqq"), 0o644))
	require.NoError(t, os.WriteFile(bPath, []byte("!import a.tqq"), 0o644))

	e := tqq.NewEngine(tqq.WithMaxImportDepth(1))

	_, err := e.Process(context.Background(), "!import b.tqq", aPath)
	require.Error(t, err)
}
