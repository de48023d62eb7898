package compile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/filterql"
	"github.com/syssam/filterql/boolean"
	"github.com/syssam/filterql/compile"
)

func TestCompilerCompilesAndResolves(t *testing.T) {
	t.Parallel()

	statusRef := filterql.NewPropertyReference("status", "Order", "string", filterql.EQ)
	ageRef := filterql.NewPropertyReference("age", "Order", "int", filterql.GT)
	defs := map[string]filterql.FilterDefinition{
		"f1": filterql.NewFilterDefinition(statusRef, filterql.EQ, nil),
		"f2": filterql.NewFilterDefinition(ageRef, filterql.GT, nil),
	}

	c := compile.NewCompiler()
	result, err := c.Compile("f1 & !f2", defs, echoContext{})
	require.NoError(t, err)
	assert.Equal(t, "status:EQ age:GT ! &", result.Key)

	got, err := result.Condition.Resolve(filterql.ArgumentMap{"f1": "shipped", "f2": 3}, nil, nil, stringBuilder{})
	require.NoError(t, err)
	assert.Equal(t, "(status EQ shipped AND NOT(age GT 3))", got)
}

func TestCompilerValueIndependentKey(t *testing.T) {
	t.Parallel()

	ref := filterql.NewPropertyReference("status", "Order", "string", filterql.EQ)
	defs := map[string]filterql.FilterDefinition{
		"f1": filterql.NewFilterDefinition(ref, filterql.EQ, "shipped"),
	}
	c := compile.NewCompiler()

	r1, err := c.Compile("f1", defs, echoContext{})
	require.NoError(t, err)

	defs["f1"] = filterql.NewFilterDefinition(ref, filterql.EQ, "pending")
	r2, err := c.Compile("f1", defs, echoContext{})
	require.NoError(t, err)

	assert.Equal(t, r1.Key, r2.Key)
}

func TestCompilerCanonicalStructureMode(t *testing.T) {
	t.Parallel()

	statusRef := filterql.NewPropertyReference("status", "Order", "string", filterql.EQ)
	ageRef := filterql.NewPropertyReference("age", "Order", "int", filterql.GT)
	defs := map[string]filterql.FilterDefinition{
		"f1": filterql.NewFilterDefinition(statusRef, filterql.EQ, nil),
		"f2": filterql.NewFilterDefinition(ageRef, filterql.GT, nil),
	}

	c := compile.NewCompiler(compile.WithSimplifierMode(boolean.CanonicalStructure))

	r1, err := c.Compile("f1 & f2", defs, echoContext{})
	require.NoError(t, err)
	r2, err := c.Compile("f2 & f1", defs, echoContext{})
	require.NoError(t, err)

	assert.Equal(t, r1.Key, r2.Key)
}

func TestCompilerInvalidExpressionSurfacesDSLSyntaxError(t *testing.T) {
	t.Parallel()

	c := compile.NewCompiler()
	_, err := c.Compile("f1 &", map[string]filterql.FilterDefinition{}, echoContext{})
	require.Error(t, err)
	assert.ErrorIs(t, err, filterql.ErrDSLSyntax)
}

func TestCompilerPolicyOverride(t *testing.T) {
	t.Parallel()

	policy := filterql.DslPolicy{MaxExpressionLength: 2}
	c := compile.NewCompiler(compile.WithDslPolicy(policy))

	_, err := c.Compile("f1 & f2", map[string]filterql.FilterDefinition{}, echoContext{})
	require.Error(t, err)
}
