// Package filterql compiles declarative, boolean filter requests into
// executable predicates against a tabular data store.
//
// The package holds the data model shared by every stage of the pipeline:
// [PropertyReference] and [Operator] describe what a request is allowed to
// filter on, [FilterDefinition] and [FilterRequest] describe what a caller
// actually asked for, and [Condition] is the immutable, cacheable predicate
// tree produced by the compiler.
//
// # Pipeline
//
// A request's DSL expression (e.g. "f1 & (f2 | !f3)") flows through four
// sub-packages before it becomes a [Condition]:
//
//	filterql/dsl      tokenizes and parses the expression (C1)
//	filterql/boolean   simplifies it to a canonical fixed point (C2)
//	filterql/compile   normalizes it to a structural cache key and builds
//	                   the Condition tree against a FilterContext (C3, C4)
//	filterql/cache     memoizes compiled Condition trees by structural key,
//	                   with single-flight build coalescing (C5)
//
// [filterql/project] is a second, independent component: it compiles a
// requested set of DTO field paths into a batched multi-query execution
// plan and runs it against an abstract data source.
//
// Logging uses the standard library's log/slog; callers may inject their
// own *slog.Logger anywhere one is accepted, and a nil logger falls back to
// slog.Default().
package filterql
