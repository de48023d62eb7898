package compile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/filterql"
	"github.com/syssam/filterql/compile"
)

func TestToResolverStrictExceptionRaisesOnNilValue(t *testing.T) {
	t.Parallel()

	ctx := compile.NewStandardFilterContext(fixedFactory{}, nil)
	ref := filterql.NewPropertyReference("status", "Order", "string", filterql.EQ)
	cond, err := ctx.ToCondition("f1", ref, filterql.EQ)
	require.NoError(t, err)

	resolver := ctx.ToResolver(cond, filterql.ExecutionParams{Arguments: filterql.ArgumentMap{"f1": nil}})
	_, err = resolver(nil, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, filterql.ErrFilterValidation)
}

func TestToResolverCoerceToIsNullRewritesEQAndNE(t *testing.T) {
	t.Parallel()

	eqCtx := compile.NewStandardFilterContext(fixedFactory{}, nil).WithConfig(filterql.FilterConfig{NullValuePolicy: filterql.CoerceToIsNull})
	ref := filterql.NewPropertyReference("deletedAt", "Order", "string", filterql.EQ, filterql.IsNull)
	cond, err := eqCtx.ToCondition("f1", ref, filterql.EQ)
	require.NoError(t, err)

	resolver := eqCtx.ToResolver(cond, filterql.ExecutionParams{Arguments: filterql.ArgumentMap{"f1": nil}})
	got, err := resolver(nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "deletedAt.IS_NULL=<nil>", got)

	neCtx := compile.NewStandardFilterContext(fixedFactory{}, nil).WithConfig(filterql.FilterConfig{NullValuePolicy: filterql.CoerceToIsNull})
	ref2 := filterql.NewPropertyReference("deletedAt", "Order", "string", filterql.NE, filterql.NotNull)
	cond2, err := neCtx.ToCondition("f1", ref2, filterql.NE)
	require.NoError(t, err)

	resolver2 := neCtx.ToResolver(cond2, filterql.ExecutionParams{Arguments: filterql.ArgumentMap{"f1": nil}})
	got2, err := resolver2(nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "deletedAt.NOT_NULL=<nil>", got2)
}

func TestToResolverCoerceToIsNullStillRaisesForOtherOperators(t *testing.T) {
	t.Parallel()

	ctx := compile.NewStandardFilterContext(fixedFactory{}, nil).WithConfig(filterql.FilterConfig{NullValuePolicy: filterql.CoerceToIsNull})
	ref := filterql.NewPropertyReference("amount", "Order", "int64", filterql.GT)
	cond, err := ctx.ToCondition("f1", ref, filterql.GT)
	require.NoError(t, err)

	resolver := ctx.ToResolver(cond, filterql.ExecutionParams{Arguments: filterql.ArgumentMap{"f1": nil}})
	_, err = resolver(nil, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, filterql.ErrFilterValidation)
}

func TestToResolverIgnoreFilterReplacesLeafWithAlwaysTrue(t *testing.T) {
	t.Parallel()

	builder := alwaysBuilder{}
	ctx := compile.NewStandardFilterContext(fixedFactory{}, nil).WithConfig(filterql.FilterConfig{NullValuePolicy: filterql.IgnoreFilter})
	ref := filterql.NewPropertyReference("status", "Order", "string", filterql.EQ)
	cond, err := ctx.ToCondition("f1", ref, filterql.EQ)
	require.NoError(t, err)

	resolver := ctx.ToResolver(cond, filterql.ExecutionParams{Arguments: filterql.ArgumentMap{"f1": nil}})
	got, err := resolver(nil, nil, builder)
	require.NoError(t, err)
	assert.Equal(t, "ALWAYS_TRUE", got)
}

func TestToResolverPresentNilFreeValuePassesThroughRegardlessOfPolicy(t *testing.T) {
	t.Parallel()

	ctx := compile.NewStandardFilterContext(fixedFactory{}, nil).WithConfig(filterql.FilterConfig{NullValuePolicy: filterql.StrictException})
	ref := filterql.NewPropertyReference("status", "Order", "string", filterql.EQ)
	cond, err := ctx.ToCondition("f1", ref, filterql.EQ)
	require.NoError(t, err)

	resolver := ctx.ToResolver(cond, filterql.ExecutionParams{Arguments: filterql.ArgumentMap{"f1": "shipped"}})
	got, err := resolver(nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "status.EQ=shipped", got)
}

func TestToResolverStringCaseStrategyFoldsStringTypedValues(t *testing.T) {
	t.Parallel()

	ctx := compile.NewStandardFilterContext(fixedFactory{}, nil).WithConfig(filterql.FilterConfig{StringCaseStrategy: filterql.CaseLower})
	ref := filterql.NewPropertyReference("status", "Order", "string", filterql.EQ)
	cond, err := ctx.ToCondition("f1", ref, filterql.EQ)
	require.NoError(t, err)

	resolver := ctx.ToResolver(cond, filterql.ExecutionParams{Arguments: filterql.ArgumentMap{"f1": "SHIPPED"}})
	got, err := resolver(nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "status.EQ=shipped", got)
}

func TestToResolverEnumCaseInsensitiveFoldsEnumTypedValuesOnly(t *testing.T) {
	t.Parallel()

	ctx := compile.NewStandardFilterContext(fixedFactory{}, nil).WithConfig(filterql.FilterConfig{EnumMatchMode: filterql.EnumCaseInsensitive})

	enumRef := filterql.NewPropertyReference("state", "Order", "enum", filterql.EQ)
	enumCond, err := ctx.ToCondition("f1", enumRef, filterql.EQ)
	require.NoError(t, err)
	enumResolver := ctx.ToResolver(enumCond, filterql.ExecutionParams{Arguments: filterql.ArgumentMap{"f1": "SHIPPED"}})
	got, err := enumResolver(nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "state.EQ=shipped", got)

	stringRef := filterql.NewPropertyReference("status", "Order", "string", filterql.EQ)
	stringCond, err := ctx.ToCondition("f2", stringRef, filterql.EQ)
	require.NoError(t, err)
	stringResolver := ctx.ToResolver(stringCond, filterql.ExecutionParams{Arguments: filterql.ArgumentMap{"f2": "SHIPPED"}})
	got2, err := stringResolver(nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "status.EQ=SHIPPED", got2)
}

type alwaysBuilder struct{}

func (alwaysBuilder) And(predicates []any) any { return predicates }
func (alwaysBuilder) Or(predicates []any) any  { return predicates }
func (alwaysBuilder) Not(predicate any) any    { return predicate }
func (alwaysBuilder) AlwaysTrue() any          { return "ALWAYS_TRUE" }
func (alwaysBuilder) AlwaysFalse() any         { return "ALWAYS_FALSE" }
