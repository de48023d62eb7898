package filterql

import "sort"

// PropertyReference is a closed, identifier for a filterable property of an
// entity (spec §3). References are produced by an out-of-scope code
// generator in the source system; here they are registered explicitly
// through a process-wide PropertyRegistry (spec §6: "Global registries... are
// explicit process-wide services with register/lookup/clear").
type PropertyReference struct {
	// Name is the canonical, stable identifier used in normalized cache
	// keys (spec §4.3: "PROP" in the "PROP:OP" token).
	Name string
	// EntityType is the logical entity type the property belongs to.
	EntityType string
	// ValueType names the Go-equivalent value type of the property
	// (e.g. "string", "int64", "time.Time").
	ValueType string
	// Operators is the set of operators this property supports. The
	// invariant that a FilterDefinition's operator is a member of this set
	// is validated on resolve, not on construction (spec §3).
	Operators map[Operator]struct{}
}

// SupportsOperator reports whether op is declared in the reference's
// supported set.
func (p PropertyReference) SupportsOperator(op Operator) bool {
	_, ok := p.Operators[op]
	return ok
}

// NewPropertyReference builds a PropertyReference supporting the given
// operators.
func NewPropertyReference(name, entityType, valueType string, ops ...Operator) PropertyReference {
	set := make(map[Operator]struct{}, len(ops))
	for _, op := range ops {
		set[op] = struct{}{}
	}
	return PropertyReference{Name: name, EntityType: entityType, ValueType: valueType, Operators: set}
}

// PropertyRegistry is a process-wide registry of PropertyReference values,
// keyed by canonical name. It is the caller's responsibility to populate it
// during initialization (spec §6).
type PropertyRegistry struct {
	byName map[string]PropertyReference
}

// NewPropertyRegistry returns an empty PropertyRegistry.
func NewPropertyRegistry() *PropertyRegistry {
	return &PropertyRegistry{byName: make(map[string]PropertyReference)}
}

// Register adds or replaces a PropertyReference under its canonical name.
func (r *PropertyRegistry) Register(ref PropertyReference) {
	r.byName[ref.Name] = ref
}

// Lookup returns the PropertyReference registered under name.
func (r *PropertyRegistry) Lookup(name string) (PropertyReference, bool) {
	ref, ok := r.byName[name]
	return ref, ok
}

// Names returns all registered property names in sorted order.
func (r *PropertyRegistry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clear removes all registered references.
func (r *PropertyRegistry) Clear() {
	r.byName = make(map[string]PropertyReference)
}
