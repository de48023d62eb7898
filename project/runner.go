package project

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/syssam/filterql"
	"github.com/syssam/filterql/project/internal/group"
)

// defaultBatchSize is the reference ≤1000-id-per-statement limit for
// collection-query IN predicates (spec §4.6 step 3). Aggregate queries are
// not batched: each receives every root id in one call.
const defaultBatchSize = 1000

// Row is one raw row returned by a DataSource query, keyed by the
// requested schema's slot names (including hidden id and parent-reference
// slots, which the data source must still select and alias).
type Row map[string]any

// SortSpec is one ORDER BY clause the data source must apply.
type SortSpec struct {
	Field string
	Desc  bool
}

// Pagination is the root query's offset/size (spec §4.6 execution step 2;
// the reference default, per spec §9's open question, is unbounded — a
// zero-value Pagination applies no limit).
type Pagination struct {
	HasOffset bool
	Offset    int
	HasSize   bool
	Size      int
}

// QuerySpec describes one query the Runner asks the DataSource to execute.
// ParentIDs is empty for the root query and non-empty (already batched to
// at most the Runner's batch size) for a collection query.
type QuerySpec struct {
	EntityType string
	Schema     *FieldSchema
	Resolver   filterql.PredicateResolver
	ParentIDs  []string
	Sort       []SortSpec
	Pagination Pagination
}

// AggregateSpec describes one batch aggregate query for a computed field's
// reducer dependency: one query per (CollectionPath, Reducer, Field),
// covering every requested root id at once (spec §4.6 execution step 4).
type AggregateSpec struct {
	CollectionPath string
	Reducer        Reducer
	Field          string
	RootIDs        []string
}

// ExecutionContext is attached to the DataSource at Bind time (spec §4.6
// execution step 1: "bind the root predicate resolver, attach the plan").
type ExecutionContext struct {
	Plan     *ExecutionPlan
	Resolver filterql.PredicateResolver
}

// DataSource is the out-of-core collaborator that turns QuerySpecs and
// AggregateSpecs into real backend queries (spec §6: the root/query/builder
// types stay opaque to the core). One DataSource is scoped to a single
// request: the Runner binds it at step 1 and closes it on every exit path
// (spec §5: "the executor acquires it at step 1 and releases it on any exit
// path").
type DataSource interface {
	Bind(ctx context.Context, execCtx *ExecutionContext) error
	Query(ctx context.Context, spec QuerySpec) ([]Row, error)
	Aggregate(ctx context.Context, spec AggregateSpec) (map[string]float64, error)
	Close() error
}

// ComputationFunc computes one computed field's value from its resolved
// dependency values, in declaration order (spec §9: "a typed function table
// constructed at plan time", replacing reflection-based dispatch).
type ComputationFunc func(deps []any) (any, error)

// ComputationProvider resolves a computed field's named computation method.
// The Runner searches registered providers in order and reports all of
// their names in ComputationResolutionError on a miss.
type ComputationProvider interface {
	Name() string
	Resolve(field, method string) (ComputationFunc, bool)
}

// Stats is a snapshot of one request's query counters, modeled on the
// teacher's dialect/sql stats: it makes the no-N+1 invariant (spec §4.6,
// §8 P6) independently observable by callers.
type Stats struct {
	RootQueries       int
	CollectionQueries int
	AggregateQueries  int
	Duration          time.Duration
}

// Result is the Runner's output: the serialized rows plus query stats.
type Result struct {
	Rows  []map[string]any
	Stats Stats
}

// Runner executes an ExecutionPlan against a DataSource (spec §4.6,
// "Execution").
type Runner struct {
	ds        DataSource
	providers []ComputationProvider
	logger    *slog.Logger
	batchSize int
}

// RunnerOption configures a Runner at construction time.
type RunnerOption func(*Runner)

// WithComputationProviders registers computation providers, searched in
// the given order.
func WithComputationProviders(providers ...ComputationProvider) RunnerOption {
	return func(r *Runner) { r.providers = providers }
}

// WithRunnerLogger overrides the Runner's logger.
func WithRunnerLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = logger }
}

// WithBatchSize overrides the IN-predicate batch size. Values above the
// ≤1000 reference limit are clamped back down to it.
func WithBatchSize(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 && n <= defaultBatchSize {
			r.batchSize = n
		}
	}
}

// NewRunner constructs a Runner over ds.
func NewRunner(ds DataSource, opts ...RunnerOption) *Runner {
	r := &Runner{ds: ds, batchSize: defaultBatchSize}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runner) log() *slog.Logger {
	if r.logger != nil {
		return r.logger
	}
	return slog.Default()
}

// levelBuffers is the set of materialized RowBuffers at one depth (root, or
// one CollectionPlan), keyed by their own composite id so a deeper nested
// collection can treat them as parents.
type levelBuffers struct {
	buffers []*RowBuffer
	keys    []string
}

// Run executes the five-step pipeline against plan (spec §4.6, "Execution").
func (r *Runner) Run(ctx context.Context, plan *ExecutionPlan, resolver filterql.PredicateResolver, rootQuery QuerySpec) (*Result, error) {
	start := time.Now()
	stats := Stats{}

	execCtx := &ExecutionContext{Plan: plan, Resolver: resolver}
	if err := r.ds.Bind(ctx, execCtx); err != nil {
		return nil, err
	}
	defer r.ds.Close()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rootSpec := rootQuery
	rootSpec.EntityType = plan.EntityType
	rootSpec.Schema = plan.RootSchema
	rootSpec.Resolver = resolver

	rootRows, err := r.ds.Query(ctx, rootSpec)
	if err != nil {
		return nil, err
	}
	stats.RootQueries++
	r.log().Debug("filterql/project: root query executed", "rows", len(rootRows))

	root := materializeLevel(plan.RootSchema, plan.RootIDSlots, rootRows)
	levels := map[string]*levelBuffers{"": root}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for depth := 1; depth <= plan.MaxDepth; depth++ {
		for _, collPlan := range plan.CollectionsAtDepth(depth) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			parentLevel := levels[collPlan.ParentPath]
			parentSchema := parentSchemaFor(plan, collPlan)
			parentSlot, ok := parentSchema.Slot(collPlan.DTOName)
			if !ok {
				return nil, &filterql.PlanConstructionError{Stage: "collection-attach", Reason: "collection plan path has no matching parent schema slot: " + collPlan.Path}
			}

			childLevel, collectionQueries, err := r.executeCollection(ctx, collPlan, parentLevel, parentSlot.Index)
			if err != nil {
				return nil, err
			}
			stats.CollectionQueries += collectionQueries
			levels[collPlan.Path] = childLevel
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	aggregateQueries, err := r.applyComputedFields(ctx, plan, root)
	if err != nil {
		return nil, err
	}
	stats.AggregateQueries += aggregateQueries

	stats.Duration = time.Since(start)
	r.log().Debug("filterql/project: run complete",
		"rootQueries", stats.RootQueries,
		"collectionQueries", stats.CollectionQueries,
		"aggregateQueries", stats.AggregateQueries,
		"duration", stats.Duration,
	)

	return &Result{Rows: serialize(root.buffers), Stats: stats}, nil
}

func materializeLevel(schema *FieldSchema, idSlots []int, rows []Row) *levelBuffers {
	level := &levelBuffers{buffers: make([]*RowBuffer, 0, len(rows)), keys: make([]string, 0, len(rows))}
	for _, row := range rows {
		buf := NewRowBuffer(schema)
		for _, slot := range schema.Slots() {
			if slot.Collection {
				continue
			}
			buf.Set(slot.Index, row[slot.Name])
		}
		level.buffers = append(level.buffers, buf)
		level.keys = append(level.keys, compositeKey(idSlots, buf))
	}
	return level
}

func compositeKey(idSlots []int, buf *RowBuffer) string {
	values := make([]any, len(idSlots))
	for i, slot := range idSlots {
		values[i] = buf.Get(slot)
	}
	return Key(values...)
}

// executeCollection runs step 3 for one CollectionPlan: batched IN-predicate
// queries over the parent level's ids, grouped back by parent, attaching
// each child row to its parent's collection slot as it materializes it
// (spec §4.6 execution step 3).
func (r *Runner) executeCollection(ctx context.Context, collPlan *CollectionPlan, parentLevel *levelBuffers, parentSlot int) (*levelBuffers, int, error) {
	var allRows []Row
	queries := 0
	for _, batch := range group.Batches(parentLevel.keys, r.batchSize) {
		if err := ctx.Err(); err != nil {
			return nil, queries, err
		}
		rows, err := r.ds.Query(ctx, QuerySpec{
			EntityType: collPlan.EntityType,
			Schema:     collPlan.Schema,
			ParentIDs:  batch,
			Sort:       sortSpecsFor(collPlan),
		})
		if err != nil {
			return nil, queries, err
		}
		queries++
		allRows = append(allRows, rows...)
	}

	grouped := group.ByKey(allRows, func(row Row) string { return parentKeyOfRow(collPlan, row) })
	orderedPerParent := group.OrderedByKeys(parentLevel.keys, grouped)

	child := &levelBuffers{}
	for i, rows := range orderedPerParent {
		rows = applyInMemoryPagination(rows, collPlan.Options)
		parent := parentLevel.buffers[i]
		for _, row := range rows {
			buf := NewRowBuffer(collPlan.Schema)
			for _, slot := range collPlan.Schema.Slots() {
				if slot.Collection {
					continue
				}
				buf.Set(slot.Index, row[slot.Name])
			}
			child.buffers = append(child.buffers, buf)
			child.keys = append(child.keys, compositeKey(collPlan.ElementIDSlots, buf))
			parent.AppendChild(parentSlot, buf)
		}
	}
	return child, queries, nil
}

func parentKeyOfRow(collPlan *CollectionPlan, row Row) string {
	slots := collPlan.Schema.Slots()
	values := make([]any, len(collPlan.ParentRefSlots))
	for i, idx := range collPlan.ParentRefSlots {
		values[i] = row[slots[idx].Name]
	}
	return Key(values...)
}

func parentSchemaFor(plan *ExecutionPlan, collPlan *CollectionPlan) *FieldSchema {
	if collPlan.ParentPath == "" {
		return plan.RootSchema
	}
	parentPlan, ok := plan.CollectionByPath(collPlan.ParentPath)
	if !ok {
		return plan.RootSchema
	}
	return parentPlan.Schema
}

func sortSpecsFor(collPlan *CollectionPlan) []SortSpec {
	if len(collPlan.SortSlots) == 0 {
		return nil
	}
	slots := collPlan.Schema.Slots()
	specs := make([]SortSpec, len(collPlan.SortSlots))
	for i, idx := range collPlan.SortSlots {
		specs[i] = SortSpec{Field: slots[idx].Name, Desc: collPlan.SortDesc[i]}
	}
	return specs
}

// applyInMemoryPagination applies a collection's per-parent limit/offset
// after grouping (spec §4.6 execution step 3: "apply per-parent limit/offset
// in memory by grouping results by parent id").
func applyInMemoryPagination(rows []Row, opt CollectionOptions) []Row {
	start := 0
	if opt.HasOffset {
		start = opt.Offset
	}
	if start > len(rows) {
		start = len(rows)
	}
	end := len(rows)
	if opt.HasLimit {
		if limEnd := start + opt.Limit; limEnd < end {
			end = limEnd
		}
	}
	if start > end {
		start = end
	}
	return rows[start:end]
}

// applyComputedFields runs step 4: resolves every computed field's reducer
// dependencies with one batch aggregate query per distinct
// (collection-path, reducer, field) triple across ALL computed fields, then
// invokes each field's resolved computation method once per row. Spec
// §4.6's no-N+1 invariant counts aggregate queries by that triple, not by
// computed field, so two computed fields that both depend on e.g.
// orders.amount/SUM share a single Aggregate call via aggCache.
func (r *Runner) applyComputedFields(ctx context.Context, plan *ExecutionPlan, root *levelBuffers) (int, error) {
	queries := 0
	aggCache := make(map[string]map[string]float64)

	resolveDep := func(dep DependencyPlan) (map[string]float64, error) {
		if dep.Reducer == ReducerNone {
			return nil, nil
		}
		field := dep.Name
		if _, f, hasDot := strings.Cut(dep.Name, "."); hasDot {
			field = f
		}
		key := dep.CollectionPath + "\x00" + dep.Reducer.String() + "\x00" + field
		if cached, ok := aggCache[key]; ok {
			return cached, nil
		}
		result, err := r.ds.Aggregate(ctx, AggregateSpec{
			CollectionPath: dep.CollectionPath,
			Reducer:        dep.Reducer,
			Field:          field,
			RootIDs:        root.keys,
		})
		if err != nil {
			return nil, err
		}
		queries++
		aggCache[key] = result
		return result, nil
	}

	for _, cf := range plan.ComputedFields {
		if err := ctx.Err(); err != nil {
			return queries, err
		}

		depValues := make([]map[string]float64, len(cf.Dependencies))
		for di, dep := range cf.Dependencies {
			result, err := resolveDep(dep)
			if err != nil {
				return queries, err
			}
			depValues[di] = result
		}

		fn, err := r.resolveComputation(cf)
		if err != nil {
			return queries, err
		}

		for ri, buf := range root.buffers {
			args := make([]any, len(cf.Dependencies))
			for di, dep := range cf.Dependencies {
				if dep.Reducer != ReducerNone {
					args[di] = depValues[di][root.keys[ri]]
					continue
				}
				args[di] = buf.Get(dep.Slot)
			}
			value, err := fn(args)
			if err != nil {
				return queries, err
			}
			buf.Set(cf.OutputSlot, value)
		}
	}
	return queries, nil
}

func (r *Runner) resolveComputation(cf ComputedFieldPlan) (ComputationFunc, error) {
	var searched []string
	for _, provider := range r.providers {
		if fn, ok := provider.Resolve(cf.Name, cf.Method); ok {
			return fn, nil
		}
		searched = append(searched, provider.Name())
	}
	return nil, &filterql.ComputationResolutionError{Field: cf.Name, SearchedMethods: searched}
}

func serialize(buffers []*RowBuffer) []map[string]any {
	out := make([]map[string]any, len(buffers))
	for i, buf := range buffers {
		out[i] = buf.ToMap()
	}
	return out
}
