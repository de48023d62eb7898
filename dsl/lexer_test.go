package dsl_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/filterql"
	"github.com/syssam/filterql/dsl"
)

func TestTokenizeBasic(t *testing.T) {
	t.Parallel()

	tokens, err := dsl.Tokenize("f1 & (f2 | !f3)", filterql.DefaultDslPolicy())
	require.NoError(t, err)

	kinds := make([]dsl.Kind, len(tokens))
	for i, tok := range tokens {
		kinds[i] = tok.Kind
	}
	assert.Equal(t, []dsl.Kind{
		dsl.Ident, dsl.And, dsl.LParen, dsl.Ident, dsl.Or, dsl.Not, dsl.Ident, dsl.RParen,
	}, kinds)
	assert.Equal(t, "f1", tokens[0].Text)
	assert.Equal(t, "f3", tokens[6].Text)
}

func TestTokenizeShorthandExpansion(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		expr string
		kind dsl.Kind
	}{
		{"AND", dsl.And},
		{"OR", dsl.Or},
		{"NOT", dsl.Not},
		{"  AND  ", dsl.And},
	} {
		tokens, err := dsl.Tokenize(tt.expr, filterql.DefaultDslPolicy())
		require.NoError(t, err)
		require.Len(t, tokens, 1)
		assert.Equal(t, tt.kind, tokens[0].Kind)
	}
}

func TestTokenizeShorthandOnlyWholeExpression(t *testing.T) {
	t.Parallel()

	// "AND" is an ordinary identifier when it's not the entire expression.
	tokens, err := dsl.Tokenize("AND & f1", filterql.DefaultDslPolicy())
	require.NoError(t, err)
	require.Len(t, tokens, 3)
	assert.Equal(t, dsl.Ident, tokens[0].Kind)
	assert.Equal(t, "AND", tokens[0].Text)
}

func TestTokenizeEmptyExpression(t *testing.T) {
	t.Parallel()

	_, err := dsl.Tokenize("   ", filterql.DefaultDslPolicy())
	require.Error(t, err)
	assert.ErrorIs(t, err, filterql.ErrDSLSyntax)
}

func TestTokenizeMaxExpressionLength(t *testing.T) {
	t.Parallel()

	policy := filterql.DslPolicy{MaxExpressionLength: 3}
	_, err := dsl.Tokenize("f1 & f2", policy)
	require.Error(t, err)
	assert.ErrorIs(t, err, filterql.ErrDSLSyntax)
}

func TestTokenizeMaxTokens(t *testing.T) {
	t.Parallel()

	policy := filterql.DslPolicy{MaxTokens: 2}
	_, err := dsl.Tokenize("f1 & f2 & f3", policy)
	require.Error(t, err)
}

func TestTokenizeRejectsIdentifierPattern(t *testing.T) {
	t.Parallel()

	policy := filterql.DslPolicy{IdentifierPattern: `[a-z]+`}
	_, err := dsl.Tokenize("F1", policy)
	require.Error(t, err)

	var syntaxErr *filterql.DSLSyntaxError
	require.ErrorAs(t, err, &syntaxErr)
	assert.Equal(t, 0, syntaxErr.Position)
}

func TestTokenizeUnexpectedCharacter(t *testing.T) {
	t.Parallel()

	_, err := dsl.Tokenize("f1 & f2 ^ f3", filterql.DefaultDslPolicy())
	require.Error(t, err)

	var syntaxErr *filterql.DSLSyntaxError
	require.ErrorAs(t, err, &syntaxErr)
	assert.Equal(t, 8, syntaxErr.Position)
}

func TestTokenPositionsPreserveOriginalOffsets(t *testing.T) {
	t.Parallel()

	tokens, err := dsl.Tokenize("foo & bar", filterql.DefaultDslPolicy())
	require.NoError(t, err)
	require.Len(t, tokens, 3)
	assert.Equal(t, 0, tokens[0].Position)
	assert.Equal(t, 4, tokens[1].Position)
	assert.Equal(t, 6, tokens[2].Position)
}
