// Package project implements C6: the projection planner and the five-step
// batched runner that executes it. The planner consumes projection and
// persistence metadata the same way the compiler consumes PropertyReference
// and FilterDefinition — as data supplied by the caller, since generating it
// from annotations is an out-of-scope processor concern (spec §1, §6).
package project

// CollectionKind classifies what a *-to-many edge's elements are, or, for a
// to-one field, whether it is a traversable embedded value object
// (CollectionEmbeddable) rather than a reference to a full related entity
// (CollectionEntity).
type CollectionKind int

const (
	CollectionScalar CollectionKind = iota
	CollectionEmbeddable
	CollectionEntity
)

// CollectionType is the host-language container shape of a collection edge.
type CollectionType int

const (
	CollectionList CollectionType = iota
	CollectionSet
	CollectionMap
)

// PersistenceMetadata describes one entity field's relationship to another
// entity or value, the way a code-generated processor would emit it
// (spec §6).
type PersistenceMetadata struct {
	RelatedType    string
	IsCollection   bool
	MappedBy       string // "" means no declared back-reference
	OrderBy        string // "" means no declared default order
	CollectionKind CollectionKind
	CollectionType CollectionType
}

// Reducer is one of the aggregate functions a computed field's dependency
// can request instead of a plain value (spec §4.6 step 6).
type Reducer int

const (
	ReducerNone Reducer = iota
	ReducerSum
	ReducerAvg
	ReducerCount
	ReducerCountDistinct
	ReducerMin
	ReducerMax
)

// String returns the reducer's canonical SQL-ish name.
func (r Reducer) String() string {
	switch r {
	case ReducerSum:
		return "SUM"
	case ReducerAvg:
		return "AVG"
	case ReducerCount:
		return "COUNT"
	case ReducerCountDistinct:
		return "COUNT_DISTINCT"
	case ReducerMin:
		return "MIN"
	case ReducerMax:
		return "MAX"
	default:
		return "NONE"
	}
}

// ComputedFieldMetadata describes one DTO field computed from other fields.
// A dependency present as a key in Reducers is resolved by a batch aggregate
// query instead of being read straight off the root row (spec §4.6 step 6).
type ComputedFieldMetadata struct {
	Dependencies []string
	Reducers     map[string]Reducer
	Method       string // "" means no explicit target; resolve by convention
}

// EntityMetadata describes one persistent entity type.
type EntityMetadata interface {
	// IDFields returns the entity's id field names, in order, for composite
	// key comparisons (spec §4.6: "Composite keys ... compared as ordered
	// value lists").
	IDFields() []string
	// Field returns the persistence metadata for name, if name is an
	// association (to-one or to-many) rather than a plain scalar field.
	Field(name string) (PersistenceMetadata, bool)
}

// FieldEnumerator is an optional EntityMetadata capability used by the
// parent-reference-field scan (spec §4.6 step 5, fallback 2): "scanning
// element metadata for a field whose declared related type equals the
// parent entity". An EntityMetadata that does not implement it skips
// straight to the naming-convention fallback.
type FieldEnumerator interface {
	FieldNames() []string
}

// ProjectionMetadata describes one DTO/projection class.
type ProjectionMetadata interface {
	EntityType() string
	ScalarFields() map[string]string               // dto field name -> entity path
	ComputedFields() map[string]ComputedFieldMetadata // dto field name -> descriptor
	CollectionFields() map[string]string           // dto field name -> entity path (crosses a *-to-many edge)
}

// MetadataRegistry is the process-wide projection and persistence metadata
// service (spec §6: "Global registries ... are explicit process-wide
// services with register/lookup/clear; initialization is the caller's
// responsibility").
type MetadataRegistry interface {
	Projection(dtoName string) (ProjectionMetadata, bool)
	Entity(entityType string) (EntityMetadata, bool)
}

// StaticEntityMetadata is a plain-struct EntityMetadata, the shape a caller
// without a code generator builds by hand.
type StaticEntityMetadata struct {
	IDs    []string
	Fields map[string]PersistenceMetadata
}

func (m StaticEntityMetadata) IDFields() []string { return append([]string(nil), m.IDs...) }

func (m StaticEntityMetadata) Field(name string) (PersistenceMetadata, bool) {
	pm, ok := m.Fields[name]
	return pm, ok
}

func (m StaticEntityMetadata) FieldNames() []string {
	names := make([]string, 0, len(m.Fields))
	for name := range m.Fields {
		names = append(names, name)
	}
	return names
}

// StaticProjectionMetadata is a plain-struct ProjectionMetadata.
type StaticProjectionMetadata struct {
	Entity     string
	Scalars    map[string]string
	Computeds  map[string]ComputedFieldMetadata
	Collections map[string]string
}

func (m StaticProjectionMetadata) EntityType() string                           { return m.Entity }
func (m StaticProjectionMetadata) ScalarFields() map[string]string              { return m.Scalars }
func (m StaticProjectionMetadata) ComputedFields() map[string]ComputedFieldMetadata { return m.Computeds }
func (m StaticProjectionMetadata) CollectionFields() map[string]string         { return m.Collections }

// StaticRegistry is an in-memory MetadataRegistry, registered explicitly by
// the caller at process startup (spec §6).
type StaticRegistry struct {
	projections map[string]ProjectionMetadata
	entities    map[string]EntityMetadata
}

// NewStaticRegistry returns an empty StaticRegistry.
func NewStaticRegistry() *StaticRegistry {
	return &StaticRegistry{
		projections: make(map[string]ProjectionMetadata),
		entities:    make(map[string]EntityMetadata),
	}
}

// RegisterProjection registers projection metadata under dtoName.
func (r *StaticRegistry) RegisterProjection(dtoName string, meta ProjectionMetadata) {
	r.projections[dtoName] = meta
}

// RegisterEntity registers entity metadata under entityType.
func (r *StaticRegistry) RegisterEntity(entityType string, meta EntityMetadata) {
	r.entities[entityType] = meta
}

func (r *StaticRegistry) Projection(dtoName string) (ProjectionMetadata, bool) {
	m, ok := r.projections[dtoName]
	return m, ok
}

func (r *StaticRegistry) Entity(entityType string) (EntityMetadata, bool) {
	m, ok := r.entities[entityType]
	return m, ok
}

// Clear removes every registered projection and entity (spec §6).
func (r *StaticRegistry) Clear() {
	r.projections = make(map[string]ProjectionMetadata)
	r.entities = make(map[string]EntityMetadata)
}
