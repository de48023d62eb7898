package compile_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/filterql"
	"github.com/syssam/filterql/compile"
)

type fixedFactory struct{}

func (fixedFactory) Resolver(ref filterql.PropertyReference, op filterql.Operator) (filterql.LeafResolver, error) {
	return func(value any, root, query, builder any) (any, error) {
		return fmt.Sprintf("%s.%s=%v", ref.Name, op, value), nil
	}, nil
}

type fullTextProvider struct{}

func (fullTextProvider) SupportedOperators() map[string]struct{} {
	return map[string]struct{}{"FULL_TEXT": {}}
}

func (fullTextProvider) ToResolver(def filterql.FilterDefinition, code string) (filterql.LeafResolver, error) {
	return func(value any, root, query, builder any) (any, error) {
		return fmt.Sprintf("%s @@ %v", def.Ref.Name, value), nil
	}, nil
}

func TestStandardFilterContextDispatchesStandardOperators(t *testing.T) {
	t.Parallel()

	ctx := compile.NewStandardFilterContext(fixedFactory{}, nil)
	ref := filterql.NewPropertyReference("status", "Order", "string", filterql.EQ)

	cond, err := ctx.ToCondition("f1", ref, filterql.EQ)
	require.NoError(t, err)

	got, err := cond.Resolve(filterql.ArgumentMap{"f1": "shipped"}, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "status.EQ=shipped", got)
}

func TestStandardFilterContextDispatchesCustomOperators(t *testing.T) {
	t.Parallel()

	registry := filterql.NewCustomOperatorRegistry()
	registry.Register(fullTextProvider{})

	ctx := compile.NewStandardFilterContext(fixedFactory{}, registry)
	ref := filterql.NewPropertyReference("description", "Order", "string", filterql.Operator("FULL_TEXT"))

	cond, err := ctx.ToCondition("f1", ref, filterql.Operator("FULL_TEXT"))
	require.NoError(t, err)

	got, err := cond.Resolve(filterql.ArgumentMap{"f1": "wireless mouse"}, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "description @@ wireless mouse", got)
}

func TestStandardFilterContextUnregisteredCustomOperatorFails(t *testing.T) {
	t.Parallel()

	ctx := compile.NewStandardFilterContext(fixedFactory{}, filterql.NewCustomOperatorRegistry())
	ref := filterql.NewPropertyReference("description", "Order", "string", filterql.Operator("GEO_NEAR"))

	_, err := ctx.ToCondition("f1", ref, filterql.Operator("GEO_NEAR"))
	require.Error(t, err)
	assert.ErrorIs(t, err, filterql.ErrFilterDefinition)
}

func TestStandardFilterContextNilRegistryFailsForCustomOperator(t *testing.T) {
	t.Parallel()

	ctx := compile.NewStandardFilterContext(fixedFactory{}, nil)
	ref := filterql.NewPropertyReference("description", "Order", "string", filterql.Operator("GEO_NEAR"))

	_, err := ctx.ToCondition("f1", ref, filterql.Operator("GEO_NEAR"))
	require.Error(t, err)
	assert.ErrorIs(t, err, filterql.ErrFilterDefinition)
}
