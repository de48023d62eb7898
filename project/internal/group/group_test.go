package group_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/filterql/project/internal/group"
)

func TestByKeyGroupsPreservingOrder(t *testing.T) {
	t.Parallel()

	type row struct {
		parent string
		value  int
	}
	rows := []row{{"a", 1}, {"b", 1}, {"a", 2}, {"a", 3}, {"b", 2}}

	grouped := group.ByKey(rows, func(r row) string { return r.parent })
	assert.Equal(t, []row{{"a", 1}, {"a", 2}, {"a", 3}}, grouped["a"])
	assert.Equal(t, []row{{"b", 1}, {"b", 2}}, grouped["b"])
}

func TestOrderedByKeysMatchesRequestedOrderAndFillsGaps(t *testing.T) {
	t.Parallel()

	groups := map[string][]int{"a": {1, 2}, "b": {3}}
	ordered := group.OrderedByKeys([]string{"b", "a", "c"}, groups)

	assert.Equal(t, [][]int{{3}, {1, 2}, nil}, ordered)
}

func TestBatchesSplitsIntoChunks(t *testing.T) {
	t.Parallel()

	ids := []int{1, 2, 3, 4, 5}
	batches := group.Batches(ids, 2)

	assert.Equal(t, [][]int{{1, 2}, {3, 4}, {5}}, batches)
}

func TestBatchesSingleBatchWhenSizeNonPositive(t *testing.T) {
	t.Parallel()

	ids := []int{1, 2, 3}
	assert.Equal(t, [][]int{{1, 2, 3}}, group.Batches(ids, 0))
}

func TestBatchesEmptyInput(t *testing.T) {
	t.Parallel()

	assert.Empty(t, group.Batches([]int{}, 2))
}
