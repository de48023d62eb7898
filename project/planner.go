package project

import (
	"fmt"
	"strings"

	"github.com/go-openapi/inflect"

	"github.com/syssam/filterql"
)

// Planner compiles a DTO class and a requested set of DTO field paths into
// an ExecutionPlan (spec §4.6, "Planning").
type Planner struct {
	registry MetadataRegistry
	policy   filterql.ProjectionPolicy
}

// PlannerOption configures a Planner at construction time.
type PlannerOption func(*Planner)

// WithProjectionPolicy overrides the default (case-sensitive) field
// resolution policy.
func WithProjectionPolicy(policy filterql.ProjectionPolicy) PlannerOption {
	return func(p *Planner) { p.policy = policy }
}

// NewPlanner constructs a Planner backed by registry.
func NewPlanner(registry MetadataRegistry, opts ...PlannerOption) *Planner {
	p := &Planner{registry: registry, policy: filterql.DefaultProjectionPolicy()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Plan compiles requested DTO paths for dtoName into an ExecutionPlan.
func (p *Planner) Plan(dtoName string, requested []string) (*ExecutionPlan, error) {
	meta, ok := p.registry.Projection(dtoName)
	if !ok {
		return nil, &filterql.PlanConstructionError{Stage: "metadata", Reason: fmt.Sprintf("no projection metadata registered for %q", dtoName)}
	}
	rootEntity, ok := p.registry.Entity(meta.EntityType())
	if !ok {
		return nil, &filterql.PlanConstructionError{Stage: "metadata", Reason: fmt.Sprintf("no entity metadata registered for %q", meta.EntityType())}
	}

	// Step 1: expand compact notation.
	paths, options, err := ExpandPaths(requested)
	if err != nil {
		return nil, err
	}

	// Step 3 (root schema) starts with the hidden root id slots.
	rootSchema := NewFieldSchema()
	var rootIDSlots []int
	for _, idf := range rootEntity.IDFields() {
		slot := rootSchema.Add(idf, idf, true, false)
		rootIDSlots = append(rootIDSlots, slot.Index)
	}

	var computedNames []string
	collectionRemainders := make(map[string][]string)

	// Step 2: classify each requested path.
	for _, path := range paths {
		first, rest, hasRest := cutPath(path)

		name, entityPath, found := lookupByCase(p.policy, meta.ScalarFields(), first)
		if found && !hasRest {
			rootSchema.Add(name, entityPath, false, false)
			continue
		}

		name, _, found = lookupComputedByCase(p.policy, meta.ComputedFields(), first)
		if found && !hasRest {
			rootSchema.Add(name, "", false, false)
			computedNames = append(computedNames, name)
			continue
		}

		name, _, found = lookupByCase(p.policy, meta.CollectionFields(), first)
		if found {
			rootSchema.Add(name, "", false, true)
			collectionRemainders[name] = append(collectionRemainders[name], rest)
			continue
		}

		// Embeddable nested scalar path (spec §3/§4.6 step 1: dot-paths for
		// "nesting", e.g. "address.city"): first is a to-one association
		// PersistenceMetadata marks CollectionEmbeddable rather than a plain
		// scalar/computed/collection DTO field name. A to-one association
		// marked CollectionEntity is a join to a full related entity and
		// stays unsupported (sqlstore has no join support); only one level
		// of embedding nests.
		if hasRest {
			if persistence, ok := rootEntity.Field(first); ok && !persistence.IsCollection && persistence.CollectionKind == CollectionEmbeddable {
				sub, _, hasSubRest := cutPath(rest)
				if hasSubRest {
					return nil, &filterql.ProjectionDefinitionError{Path: path, Reason: "embeddable object paths support only one level of nesting"}
				}
				rootSchema.AddNested(path, first+"."+sub)
				continue
			}
		}

		return nil, &filterql.ProjectionDefinitionError{Path: path, Reason: "unresolvable dto field"}
	}

	// Step 4+5: build a CollectionPlan (recursively, for nested collections)
	// per distinct first-level collection name.
	depthGroups := make(map[int][]*CollectionPlan)
	maxDepth := 0
	for _, name := range sortKeys(collectionRemainders) {
		entityPath, _ := lookupCollectionPath(p.policy, meta.CollectionFields(), name)
		persistence, ok := rootEntity.Field(entityPath)
		if !ok || !persistence.IsCollection {
			return nil, &filterql.PlanConstructionError{Stage: "collection-metadata", Reason: fmt.Sprintf("field %q is not a collection edge", entityPath)}
		}
		_, err := p.buildCollectionPlan(depthGroups, &maxDepth, name, persistence, collectionRemainders[name], options, 1, "", meta.EntityType())
		if err != nil {
			return nil, err
		}
	}

	// Step 6: computed-field descriptors.
	computedPlans, err := p.buildComputedPlans(meta, rootSchema, computedNames)
	if err != nil {
		return nil, err
	}

	return &ExecutionPlan{
		EntityType:         meta.EntityType(),
		RootSchema:         rootSchema,
		RootIDSlots:        rootIDSlots,
		ComputedFields:     computedPlans,
		CollectionsByDepth: depthGroups,
		MaxDepth:           maxDepth,
	}, nil
}

func (p *Planner) buildCollectionPlan(
	acc map[int][]*CollectionPlan,
	maxDepth *int,
	dtoName string,
	persistence PersistenceMetadata,
	remainders []string,
	options map[string]CollectionOptions,
	depth int,
	parentPath string,
	parentEntityType string,
) (*CollectionPlan, error) {
	childEntity, ok := p.registry.Entity(persistence.RelatedType)
	if !ok {
		return nil, &filterql.PlanConstructionError{Stage: "metadata", Reason: fmt.Sprintf("no entity metadata registered for %q", persistence.RelatedType)}
	}

	fullPath := dtoName
	if parentPath != "" {
		fullPath = parentPath + "." + dtoName
	}

	schema := NewFieldSchema()
	var elementIDSlots []int
	for _, idf := range childEntity.IDFields() {
		slot := schema.Add(idf, idf, true, false)
		elementIDSlots = append(elementIDSlots, slot.Index)
	}

	parentField, err := p.resolveParentRefField(persistence, childEntity, parentEntityType)
	if err != nil {
		return nil, err
	}
	parentRefSlot := schema.Add("_i_pid_0", parentField, true, false)

	nestedRemainders := make(map[string][]string)
	for _, rest := range remainders {
		if rest == "" {
			continue
		}
		first, sub, hasSub := cutPath(rest)
		childPersistence, isAssoc := childEntity.Field(first)
		switch {
		case isAssoc && childPersistence.IsCollection:
			nestedRemainders[first] = append(nestedRemainders[first], sub)
		case !hasSub:
			schema.Add(first, first, false, false)
		default:
			return nil, &filterql.ProjectionDefinitionError{Path: fullPath + "." + rest, Reason: "unresolvable nested dto field"}
		}
	}

	opt := options[fullPath]
	plan := &CollectionPlan{
		Depth:          depth,
		Path:           fullPath,
		ParentPath:     parentPath,
		DTOName:        dtoName,
		EntityType:     persistence.RelatedType,
		Schema:         schema,
		ElementIDSlots: elementIDSlots,
		ParentRefSlots: []int{parentRefSlot.Index},
		Options:        opt,
	}
	switch {
	case opt.SortField != "":
		if slot, ok := schema.Slot(opt.SortField); ok {
			plan.SortSlots = []int{slot.Index}
			plan.SortDesc = []bool{opt.SortDesc}
		}
	case persistence.OrderBy != "":
		// No explicit bracket-notation sort was requested: fall back to the
		// entity's declared default order (spec §6 PersistenceMetadata.orderBy),
		// the same @OrderBy-style default-ordering convention the field
		// exists to express. Add it as a hidden slot if the caller didn't
		// also request it as a projected column.
		slot := schema.Add(persistence.OrderBy, persistence.OrderBy, true, false)
		plan.SortSlots = []int{slot.Index}
		plan.SortDesc = []bool{false}
	}

	acc[depth] = append(acc[depth], plan)
	if depth > *maxDepth {
		*maxDepth = depth
	}

	for _, name := range sortKeys(nestedRemainders) {
		childPersistence, _ := childEntity.Field(name)
		schema.Add(name, name, false, true)
		if _, err := p.buildCollectionPlan(acc, maxDepth, name, childPersistence, nestedRemainders[name], options, depth+1, fullPath, persistence.RelatedType); err != nil {
			return nil, err
		}
	}

	return plan, nil
}

// resolveParentRefField implements spec §4.6 step 5's three-tier fallback.
func (p *Planner) resolveParentRefField(persistence PersistenceMetadata, childEntity EntityMetadata, parentEntityType string) (string, error) {
	if persistence.MappedBy != "" {
		return persistence.MappedBy, nil
	}
	if scanner, ok := childEntity.(FieldEnumerator); ok {
		for _, name := range scanner.FieldNames() {
			pm, ok := childEntity.Field(name)
			if ok && !pm.IsCollection && pm.RelatedType == parentEntityType {
				return name, nil
			}
		}
	}
	return inflect.CamelizeDownFirst(parentEntityType), nil
}

// buildComputedPlans implements step 6. A reducer dependency is resolved
// against the *projection's* declared collection fields, not against the
// set of collections the current request happens to also project — a
// computed field's aggregate dependency is valid whether or not its source
// collection is separately requested as a DTO path.
func (p *Planner) buildComputedPlans(meta ProjectionMetadata, rootSchema *FieldSchema, names []string) ([]ComputedFieldPlan, error) {
	var plans []ComputedFieldPlan
	for _, name := range names {
		cm := meta.ComputedFields()[name]
		outSlot, _ := rootSchema.Slot(name)

		var deps []DependencyPlan
		for _, depName := range cm.Dependencies {
			if reducer, ok := cm.Reducers[depName]; ok && reducer != ReducerNone {
				collPath, ok := findReducerCollectionPath(p.policy, meta, depName)
				if !ok {
					return nil, &filterql.PlanConstructionError{
						Stage:  "computed-field",
						Reason: fmt.Sprintf("no declared collection field found to aggregate reducer dependency %q for computed field %q", depName, name),
					}
				}
				deps = append(deps, DependencyPlan{Name: depName, Slot: -1, Reducer: reducer, CollectionPath: collPath})
				continue
			}
			slot, ok := rootSchema.Slot(depName)
			if !ok {
				return nil, &filterql.PlanConstructionError{
					Stage:  "computed-field",
					Reason: fmt.Sprintf("dependency %q for computed field %q is not a root schema slot", depName, name),
				}
			}
			deps = append(deps, DependencyPlan{Name: depName, Slot: slot.Index})
		}
		plans = append(plans, ComputedFieldPlan{Name: name, OutputSlot: outSlot.Index, Dependencies: deps, Method: cm.Method})
	}
	return plans, nil
}

// findReducerCollectionPath resolves a reducer dependency name, which must
// take the form "collectionDtoField.scalarField" (or bare "collectionDtoField"
// when the reducer targets the collection itself, e.g. COUNT), against the
// projection's declared collection fields.
func findReducerCollectionPath(policy filterql.ProjectionPolicy, meta ProjectionMetadata, depName string) (string, bool) {
	collField, _, _ := strings.Cut(depName, ".")
	name, _, ok := lookupByCase(policy, meta.CollectionFields(), collField)
	if !ok {
		return "", false
	}
	return name, true
}

// lookupByCase resolves name against m, honoring ProjectionPolicy.FieldCase.
func lookupByCase(policy filterql.ProjectionPolicy, m map[string]string, name string) (matchedName, value string, ok bool) {
	if v, ok := m[name]; ok {
		return name, v, true
	}
	if policy.FieldCase == filterql.FieldCaseInsensitive {
		for k, v := range m {
			if strings.EqualFold(k, name) {
				return k, v, true
			}
		}
	}
	return "", "", false
}

func lookupCollectionPath(policy filterql.ProjectionPolicy, m map[string]string, name string) (string, bool) {
	_, v, ok := lookupByCase(policy, m, name)
	return v, ok
}

func lookupComputedByCase(policy filterql.ProjectionPolicy, m map[string]ComputedFieldMetadata, name string) (matchedName string, value ComputedFieldMetadata, ok bool) {
	if v, ok := m[name]; ok {
		return name, v, true
	}
	if policy.FieldCase == filterql.FieldCaseInsensitive {
		for k, v := range m {
			if strings.EqualFold(k, name) {
				return k, v, true
			}
		}
	}
	return "", ComputedFieldMetadata{}, false
}

// sortKeys returns map keys in a deterministic (lexical) order, so plan
// construction — and therefore slot indices — does not depend on Go's
// randomized map iteration order.
func sortKeys[V any](m map[string][]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}
