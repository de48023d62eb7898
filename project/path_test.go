package project_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/filterql/project"
)

func TestExpandPathsCommaGroup(t *testing.T) {
	t.Parallel()

	paths, _, err := project.ExpandPaths([]string{"address.(city,street)"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"address.city", "address.street"}, paths)
}

func TestExpandPathsCommaGroupWithSuffix(t *testing.T) {
	t.Parallel()

	paths, _, err := project.ExpandPaths([]string{"orders.(id,total).label"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"orders.id.label", "orders.total.label"}, paths)
}

func TestExpandPathsPlainPathUnchanged(t *testing.T) {
	t.Parallel()

	paths, _, err := project.ExpandPaths([]string{"name", "email"})
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "email"}, paths)
}

func TestExpandPathsBracketOptions(t *testing.T) {
	t.Parallel()

	paths, options, err := project.ExpandPaths([]string{"orders[limit=10,offset=5,sort=date:desc]"})
	require.NoError(t, err)
	assert.Equal(t, []string{"orders"}, paths)

	opt, ok := options["orders"]
	require.True(t, ok)
	assert.True(t, opt.HasLimit)
	assert.Equal(t, 10, opt.Limit)
	assert.True(t, opt.HasOffset)
	assert.Equal(t, 5, opt.Offset)
	assert.Equal(t, "date", opt.SortField)
	assert.True(t, opt.SortDesc)
}

func TestExpandPathsBracketOptionsAscendingSort(t *testing.T) {
	t.Parallel()

	_, options, err := project.ExpandPaths([]string{"orders[sort=date:asc]"})
	require.NoError(t, err)
	assert.False(t, options["orders"].SortDesc)
}

func TestExpandPathsMalformedOptionFails(t *testing.T) {
	t.Parallel()

	_, _, err := project.ExpandPaths([]string{"orders[limit]"})
	require.Error(t, err)
}

func TestExpandPathsUnknownOptionFails(t *testing.T) {
	t.Parallel()

	_, _, err := project.ExpandPaths([]string{"orders[bogus=1]"})
	require.Error(t, err)
}

func TestExpandPathsInvalidIntegerFails(t *testing.T) {
	t.Parallel()

	_, _, err := project.ExpandPaths([]string{"orders[limit=abc]"})
	require.Error(t, err)
}
