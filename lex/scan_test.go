package lex_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.tauq.dev/tauq/lex"
)

func kinds(ll lex.LogicalLine) []lex.Kind {
	ks := make([]lex.Kind, len(ll.Tokens))
	for i, t := range ll.Tokens {
		ks[i] = t.Kind
	}

	return ks
}

func TestScanLineBasicTokens(t *testing.T) {
	t.Parallel()

	lls, err := lex.ScanLine(`name "Alice" age 30 active true loc null`, 1)
	require.NoError(t, err)
	require.Len(t, lls, 1)

	assert.Equal(t, []lex.Kind{
		lex.Ident, lex.String, lex.Ident, lex.Number, lex.Ident, lex.Bool, lex.Ident, lex.Null,
	}, kinds(lls[0]))
}

func TestScanLineSemicolonSplits(t *testing.T) {
	t.Parallel()

	lls, err := lex.ScanLine(`1 Alice; 2 Bob; 3 Carol`, 1)
	require.NoError(t, err)
	require.Len(t, lls, 3)

	assert.Equal(t, "Alice", lls[0].Tokens[1].Text)
	assert.Equal(t, "Bob", lls[1].Tokens[1].Text)
	assert.Equal(t, "Carol", lls[2].Tokens[1].Text)
}

func TestScanLineComment(t *testing.T) {
	t.Parallel()

	lls, err := lex.ScanLine(`id 1 # trailing comment`, 1)
	require.NoError(t, err)
	require.Len(t, lls, 1)
	assert.Len(t, lls[0].Tokens, 2)
}

func TestScanLineDirective(t *testing.T) {
	t.Parallel()

	lls, err := lex.ScanLine(`!def User id name`, 1)
	require.NoError(t, err)
	require.Len(t, lls, 1)
	require.Len(t, lls[0].Tokens, 1)

	tok := lls[0].Tokens[0]
	assert.Equal(t, lex.Directive, tok.Kind)
	assert.Equal(t, "def", tok.Text)
	require.Len(t, tok.DirectiveArgs, 3)
	assert.Equal(t, "User", tok.DirectiveArgs[0].Text)
}

func TestScanLineSchemaSep(t *testing.T) {
	t.Parallel()

	lls, err := lex.ScanLine(`---`, 1)
	require.NoError(t, err)
	require.Len(t, lls, 1)
	require.Len(t, lls[0].Tokens, 1)
	assert.Equal(t, lex.SchemaSep, lls[0].Tokens[0].Kind)
}

func TestScanLineBrackets(t *testing.T) {
	t.Parallel()

	lls, err := lex.ScanLine(`tags [smartphone 5g flagship]`, 1)
	require.NoError(t, err)
	require.Len(t, lls, 1)

	assert.Equal(t, []lex.Kind{
		lex.Ident, lex.LBracket, lex.Ident, lex.Ident, lex.Ident, lex.RBracket,
	}, kinds(lls[0]))

	// "5g" must not be split into a number "5" and an ident "g": the
	// boundary-char rule reads it as one bareword first, then classifies.
	assert.Equal(t, "5g", lls[0].Tokens[3].Text)
}

func TestScanLineNumberKinds(t *testing.T) {
	t.Parallel()

	lls, err := lex.ScanLine(`a -7 b 3.5 c 1e10 d -0.001`, 1)
	require.NoError(t, err)
	require.Len(t, lls, 1)

	toks := lls[0].Tokens
	assert.Equal(t, lex.Integer, toks[1].NumberKind)
	assert.Equal(t, lex.Float, toks[3].NumberKind)
	assert.Equal(t, lex.Float, toks[5].NumberKind)
	assert.Equal(t, lex.Float, toks[7].NumberKind)
}

func TestScanStringEscapes(t *testing.T) {
	t.Parallel()

	lls, err := lex.ScanLine(`"line\nbreak \"quoted\" end"`, 1)
	require.NoError(t, err)
	require.Len(t, lls, 1)
	require.Len(t, lls[0].Tokens, 1)

	assert.Equal(t, "line\nbreak \"quoted\" end", lls[0].Tokens[0].Text)
}

func TestScanStringUnterminated(t *testing.T) {
	t.Parallel()

	_, err := lex.ScanLine(`"unterminated`, 1)
	require.Error(t, err)
}

func TestScanLineBlank(t *testing.T) {
	t.Parallel()

	lls, err := lex.ScanLine(`   `, 1)
	require.NoError(t, err)
	require.Len(t, lls, 1)
	assert.Empty(t, lls[0].Tokens)
}
