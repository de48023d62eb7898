package project

import (
	"fmt"
	"strings"
)

// FieldSlot is one positional output slot in a FieldSchema.
type FieldSlot struct {
	// Name is the DTO-facing output name.
	Name string
	// EntityPath is the entity-side field/column the slot is sourced from.
	// Empty for computed-output slots, which have no direct source.
	EntityPath string
	Index      int
	// Hidden slots (root/element id fields, parent-reference join-back
	// fields) are populated and used internally but excluded from the
	// serialized map (spec §4.6 step 5).
	Hidden bool
	// Collection marks a slot whose value is a list of nested RowBuffers.
	Collection bool
	// NestedSegments splits an embeddable-object DTO path on "." (e.g.
	// "address.city" -> ["address", "city"]), so ToMap nests the value
	// under intermediate maps instead of using the dotted string as a
	// literal key. Nil for a flat (non-nested) field.
	NestedSegments []string
}

// FieldSchema is an ordered, name-indexed set of FieldSlots for one level of
// a projection: the root, or one CollectionPlan.
type FieldSchema struct {
	slots  []FieldSlot
	byName map[string]int
}

// NewFieldSchema returns an empty FieldSchema.
func NewFieldSchema() *FieldSchema {
	return &FieldSchema{byName: make(map[string]int)}
}

// Add appends a new slot, returning it. Adding a name that already exists
// returns the existing slot, promoting it to visible if it was previously
// added only as a hidden id/parent-reference slot — an id field explicitly
// requested by the caller must be projected (spec §4.6 step 4: "the element
// id fields (hidden if not projected)").
func (s *FieldSchema) Add(name, entityPath string, hidden, collection bool) FieldSlot {
	if i, ok := s.byName[name]; ok {
		if !hidden && s.slots[i].Hidden {
			s.slots[i].Hidden = false
		}
		return s.slots[i]
	}
	slot := FieldSlot{Name: name, EntityPath: entityPath, Index: len(s.slots), Hidden: hidden, Collection: collection}
	s.slots = append(s.slots, slot)
	s.byName[name] = slot.Index
	return slot
}

// AddNested appends a slot for a dotted embeddable-object scalar path (spec
// §3 "nesting", e.g. "address.city"): name is kept as the full dotted path
// for lookup, but ToMap builds a nested map from NestedSegments rather than
// using the dotted string as a literal output key.
func (s *FieldSchema) AddNested(name, entityPath string) FieldSlot {
	if i, ok := s.byName[name]; ok {
		return s.slots[i]
	}
	slot := FieldSlot{
		Name:           name,
		EntityPath:     entityPath,
		Index:          len(s.slots),
		NestedSegments: strings.Split(name, "."),
	}
	s.slots = append(s.slots, slot)
	s.byName[name] = slot.Index
	return slot
}

// Slot looks up a slot by its DTO output name.
func (s *FieldSchema) Slot(name string) (FieldSlot, bool) {
	i, ok := s.byName[name]
	if !ok {
		return FieldSlot{}, false
	}
	return s.slots[i], true
}

// Len returns the number of slots.
func (s *FieldSchema) Len() int { return len(s.slots) }

// Slots returns the schema's slots in declaration order.
func (s *FieldSchema) Slots() []FieldSlot { return s.slots }

// RowBuffer holds one materialized row: one value per schema slot, plus,
// for collection slots, the attached child RowBuffers (spec glossary: "Row
// buffer — a fixed-shape record of slots, one per projected field plus
// nested collection slots").
type RowBuffer struct {
	Schema      *FieldSchema
	values      []any
	collections [][]*RowBuffer
}

// NewRowBuffer allocates a RowBuffer sized to schema.
func NewRowBuffer(schema *FieldSchema) *RowBuffer {
	return &RowBuffer{
		Schema:      schema,
		values:      make([]any, schema.Len()),
		collections: make([][]*RowBuffer, schema.Len()),
	}
}

// Set stores a scalar value in slot index.
func (b *RowBuffer) Set(index int, value any) { b.values[index] = value }

// Get returns the scalar value in slot index.
func (b *RowBuffer) Get(index int) any { return b.values[index] }

// AppendChild attaches a child RowBuffer under a collection slot.
func (b *RowBuffer) AppendChild(index int, child *RowBuffer) {
	b.collections[index] = append(b.collections[index], child)
}

// Children returns the child RowBuffers attached under a collection slot.
func (b *RowBuffer) Children(index int) []*RowBuffer { return b.collections[index] }

// ToMap serializes the row, excluding hidden slots (spec §4.6 step 5:
// "hidden slots and dependency-only slots are excluded from the projected
// map").
func (b *RowBuffer) ToMap() map[string]any {
	out := make(map[string]any, len(b.Schema.slots))
	for _, slot := range b.Schema.slots {
		if slot.Hidden {
			continue
		}
		if slot.Collection {
			children := b.collections[slot.Index]
			list := make([]any, len(children))
			for i, c := range children {
				list[i] = c.ToMap()
			}
			out[slot.Name] = list
			continue
		}
		if len(slot.NestedSegments) > 1 {
			setNested(out, slot.NestedSegments, b.values[slot.Index])
			continue
		}
		out[slot.Name] = b.values[slot.Index]
	}
	return out
}

// setNested writes value into out at the map path described by segments,
// creating intermediate maps as needed.
func setNested(out map[string]any, segments []string, value any) {
	m := out
	for _, seg := range segments[:len(segments)-1] {
		next, ok := m[seg].(map[string]any)
		if !ok {
			next = make(map[string]any)
			m[seg] = next
		}
		m = next
	}
	m[segments[len(segments)-1]] = value
}

// Key renders one or more id values as an ordered, comparable composite key
// (spec §4.6: "Composite keys: when id fields are multiple, keys are
// compared as ordered value lists").
func Key(values ...any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, "\x1f")
}
