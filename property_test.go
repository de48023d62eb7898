package filterql_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/filterql"
)

func TestPropertyRegistry(t *testing.T) {
	t.Parallel()

	reg := filterql.NewPropertyRegistry()
	name := filterql.NewPropertyReference("name", "User", "string", filterql.EQ, filterql.MATCHES)
	reg.Register(name)

	got, ok := reg.Lookup("name")
	require.True(t, ok)
	assert.Equal(t, "User", got.EntityType)
	assert.True(t, got.SupportsOperator(filterql.EQ))
	assert.False(t, got.SupportsOperator(filterql.GT))

	_, ok = reg.Lookup("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"name"}, reg.Names())

	reg.Clear()
	_, ok = reg.Lookup("name")
	assert.False(t, ok)
}
