package project_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/filterql/project"
)

func TestFieldSchemaAddAndSlot(t *testing.T) {
	t.Parallel()

	schema := project.NewFieldSchema()
	id := schema.Add("id", "id", true, false)
	name := schema.Add("name", "name", false, false)

	assert.Equal(t, 0, id.Index)
	assert.True(t, id.Hidden)
	assert.Equal(t, 1, name.Index)
	assert.False(t, name.Hidden)
	assert.Equal(t, 2, schema.Len())

	got, ok := schema.Slot("name")
	assert.True(t, ok)
	assert.Equal(t, name, got)

	_, ok = schema.Slot("missing")
	assert.False(t, ok)
}

func TestFieldSchemaAddPromotesHiddenSlotToVisible(t *testing.T) {
	t.Parallel()

	schema := project.NewFieldSchema()
	schema.Add("id", "id", true, false)

	promoted := schema.Add("id", "id", false, false)
	assert.False(t, promoted.Hidden)

	got, ok := schema.Slot("id")
	assert.True(t, ok)
	assert.False(t, got.Hidden)
}

func TestFieldSchemaAddIsIdempotent(t *testing.T) {
	t.Parallel()

	schema := project.NewFieldSchema()
	first := schema.Add("name", "name", false, false)
	second := schema.Add("name", "name", false, false)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, schema.Len())
}

func TestRowBufferToMapExcludesHiddenSlots(t *testing.T) {
	t.Parallel()

	schema := project.NewFieldSchema()
	idSlot := schema.Add("id", "id", true, false)
	nameSlot := schema.Add("name", "name", false, false)

	buf := project.NewRowBuffer(schema)
	buf.Set(idSlot.Index, "u1")
	buf.Set(nameSlot.Index, "Ada")

	out := buf.ToMap()
	assert.Equal(t, map[string]any{"name": "Ada"}, out)
}

func TestRowBufferToMapSerializesCollectionSlot(t *testing.T) {
	t.Parallel()

	childSchema := project.NewFieldSchema()
	childName := childSchema.Add("productName", "productName", false, false)

	rootSchema := project.NewFieldSchema()
	rootName := rootSchema.Add("name", "name", false, false)
	orders := rootSchema.Add("orders", "", false, true)

	root := project.NewRowBuffer(rootSchema)
	root.Set(rootName.Index, "Ada")

	child1 := project.NewRowBuffer(childSchema)
	child1.Set(childName.Index, "Widget")
	child2 := project.NewRowBuffer(childSchema)
	child2.Set(childName.Index, "Gadget")

	root.AppendChild(orders.Index, child1)
	root.AppendChild(orders.Index, child2)

	out := root.ToMap()
	assert.Equal(t, "Ada", out["name"])
	list, ok := out["orders"].([]any)
	assert.True(t, ok)
	assert.Len(t, list, 2)
	assert.Equal(t, map[string]any{"productName": "Widget"}, list[0])
	assert.Equal(t, map[string]any{"productName": "Gadget"}, list[1])
}

func TestFieldSchemaAddNestedRecordsSegments(t *testing.T) {
	t.Parallel()

	schema := project.NewFieldSchema()
	slot := schema.AddNested("address.city", "address.city")

	assert.Equal(t, []string{"address", "city"}, slot.NestedSegments)
	assert.False(t, slot.Hidden)

	got, ok := schema.Slot("address.city")
	assert.True(t, ok)
	assert.Equal(t, slot, got)
}

func TestRowBufferToMapNestsEmbeddableScalarPaths(t *testing.T) {
	t.Parallel()

	schema := project.NewFieldSchema()
	nameSlot := schema.Add("name", "name", false, false)
	citySlot := schema.AddNested("address.city", "address.city")
	streetSlot := schema.AddNested("address.street", "address.street")

	buf := project.NewRowBuffer(schema)
	buf.Set(nameSlot.Index, "Ada")
	buf.Set(citySlot.Index, "Springfield")
	buf.Set(streetSlot.Index, "Elm St")

	out := buf.ToMap()
	assert.Equal(t, "Ada", out["name"])
	assert.Equal(t, map[string]any{"city": "Springfield", "street": "Elm St"}, out["address"])
}

func TestKeyJoinsOrderedValues(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "1", project.Key(1))
	assert.NotEqual(t, project.Key(1, 2), project.Key(2, 1))
	assert.Equal(t, project.Key("a", "b"), project.Key("a", "b"))
}
