package dsl_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/filterql"
	"github.com/syssam/filterql/dsl"
)

func postfixText(t *testing.T, parsed *dsl.Parsed) []string {
	t.Helper()
	out := make([]string, len(parsed.Postfix))
	for i, tok := range parsed.Postfix {
		out[i] = tok.Text
	}
	return out
}

func TestParsePrecedence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		expr string
		want []string
	}{
		{"and binds tighter than or (right)", "f1 & f2 | f3", []string{"f1", "f2", "&", "f3", "|"}},
		{"and binds tighter than or (left)", "f1 | f2 & f3", []string{"f1", "f2", "f3", "&", "|"}},
		{"not binds to the next atom", "!f1 & f2", []string{"f1", "!", "f2", "&"}},
		{"parens override precedence", "(f1 | f2) & f3", []string{"f1", "f2", "|", "f3", "&"}},
		{"negated group", "!(f1 & f2)", []string{"f1", "f2", "&", "!"}},
		{"double negation stays two nodes", "!!f1", []string{"f1", "!", "!"}},
		{"left associative and chain", "f1 & f2 & f3", []string{"f1", "f2", "&", "f3", "&"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			parsed, err := dsl.Parse(tt.expr, filterql.DefaultDslPolicy())
			require.NoError(t, err)
			assert.Equal(t, tt.want, postfixText(t, parsed))
		})
	}
}

func TestParseShorthandKeyword(t *testing.T) {
	t.Parallel()

	parsed, err := dsl.Parse("AND", filterql.DefaultDslPolicy())
	require.Error(t, err)
	assert.Nil(t, parsed)
}

func TestParseUnbalancedParens(t *testing.T) {
	t.Parallel()

	_, err := dsl.Parse("f1 & (f2 | f3", filterql.DefaultDslPolicy())
	require.Error(t, err)
	assert.ErrorIs(t, err, filterql.ErrDSLSyntax)

	_, err = dsl.Parse("(f1 & f2))", filterql.DefaultDslPolicy())
	require.Error(t, err)
	assert.ErrorIs(t, err, filterql.ErrDSLSyntax)
}

func TestParseEmptyParens(t *testing.T) {
	t.Parallel()

	_, err := dsl.Parse("()", filterql.DefaultDslPolicy())
	require.Error(t, err)
}

func TestParseDanglingOperator(t *testing.T) {
	t.Parallel()

	_, err := dsl.Parse("f1 &", filterql.DefaultDslPolicy())
	require.Error(t, err)

	_, err = dsl.Parse("& f1", filterql.DefaultDslPolicy())
	require.Error(t, err)
}

func TestParseAdjacentIdentifiersWithoutOperator(t *testing.T) {
	t.Parallel()

	_, err := dsl.Parse("f1 f2", filterql.DefaultDslPolicy())
	require.Error(t, err)

	var syntaxErr *filterql.DSLSyntaxError
	require.ErrorAs(t, err, &syntaxErr)
}

func TestParseMaxDepthExceeded(t *testing.T) {
	t.Parallel()

	policy := filterql.DefaultDslPolicy()
	policy.MaxDepth = 1
	_, err := dsl.Parse("((f1))", policy)
	require.Error(t, err)
	assert.ErrorIs(t, err, filterql.ErrDSLSyntax)
}

func TestParseMaxDepthWithinLimit(t *testing.T) {
	t.Parallel()

	policy := filterql.DefaultDslPolicy()
	policy.MaxDepth = 2
	parsed, err := dsl.Parse("((f1 & f2))", policy)
	require.NoError(t, err)
	assert.Equal(t, 2, parsed.MaxDepth)
}

func TestParseSingleIdentifier(t *testing.T) {
	t.Parallel()

	parsed, err := dsl.Parse("f1", filterql.DefaultDslPolicy())
	require.NoError(t, err)
	assert.Equal(t, []string{"f1"}, postfixText(t, parsed))
	assert.Equal(t, 0, parsed.MaxDepth)
}
