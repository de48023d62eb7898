// Package sqlstore adapts the dialect/sql Driver family into a
// project.DataSource: a reference (not required) implementation of the
// projection runner's execution backend over PostgreSQL, MySQL, or SQLite,
// wired through lib/pq, go-sql-driver/mysql, and modernc.org/sqlite
// respectively.
//
// sqlstore has no join support: every entity's columns are assumed to live
// on a single table (Config.Tables), and collection/aggregate queries are
// plain parent-id IN-predicate SELECTs (Config.Collections) — the shape the
// projection runner's no-N+1 execution model already assumes.
package sqlstore

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/syssam/filterql/dialect"
	dsql "github.com/syssam/filterql/dialect/sql"
	"github.com/syssam/filterql/driver/sqlstore/internal/sqlb"
	"github.com/syssam/filterql/project"
)

// reducerSQL renders a project.Reducer as the SQL aggregate function that
// computes it.
func reducerSQL(r project.Reducer, column string) (string, error) {
	switch r {
	case project.ReducerSum:
		return "SUM(" + sqlb.Quote(column) + ")", nil
	case project.ReducerAvg:
		return "AVG(" + sqlb.Quote(column) + ")", nil
	case project.ReducerCount:
		return "COUNT(" + sqlb.Quote(column) + ")", nil
	case project.ReducerCountDistinct:
		return "COUNT(DISTINCT " + sqlb.Quote(column) + ")", nil
	case project.ReducerMin:
		return "MIN(" + sqlb.Quote(column) + ")", nil
	case project.ReducerMax:
		return "MAX(" + sqlb.Quote(column) + ")", nil
	default:
		return "", fmt.Errorf("sqlstore: unsupported reducer %q", r)
	}
}

// Option configures a Store at construction time.
type Option func(*Store)

// WithLogger overrides the Store's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithStatementTimeout bounds every statement issued for a request via the
// driver's session-variable mechanism (dsql.WithIntVar): dialect/sql.Conn
// SETs the variable before each statement. Statements run on the request's
// transaction opened at Bind, where no RESET follows. Only honored when the underlying
// driver reports the postgres dialect; MySQL and SQLite have no equivalent
// per-statement session variable.
func WithStatementTimeout(d time.Duration) Option {
	return func(s *Store) { s.statementTimeout = d }
}

// Store is a project.DataSource backed by a dialect.Driver. drv may be a
// plain *dsql.Driver or any wrapper around one — in particular
// *dsql.StatsDriver (see DriverStats) or *dsql.DebugDriver.
type Store struct {
	drv    dialect.Driver
	cfg    Config
	logger *slog.Logger

	statementTimeout time.Duration
	tx               dialect.Tx
}

// New constructs a Store over drv, configured by cfg.
func New(drv dialect.Driver, cfg Config, opts ...Option) *Store {
	s := &Store{drv: drv, cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return slog.Default()
}

// DriverStats reports the underlying driver's query statistics. It returns
// false unless Store was constructed over a *dsql.StatsDriver (typically via
// dsql.OpenWithStats), in which case project.Stats.Duration can be
// cross-checked against real driver-level timing instead of only the
// Runner's own stopwatch.
func (s *Store) DriverStats() (dsql.StatsSnapshot, bool) {
	sd, ok := s.drv.(*dsql.StatsDriver)
	if !ok {
		return dsql.StatsSnapshot{}, false
	}
	return sd.QueryStats().Stats(), true
}

// Bind opens a transaction scoped to the request (spec §5: "the executor
// acquires it at step 1 and releases it on any exit path"). Running the
// whole request inside one transaction also means every statement the
// request issues shares one pinned connection, which is what lets
// WithStatementTimeout's session variable apply consistently across the
// request's root, collection, and aggregate queries.
func (s *Store) Bind(ctx context.Context, _ *project.ExecutionContext) error {
	tx, err := s.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("sqlstore: begin request transaction: %w", err)
	}
	s.tx = tx
	return nil
}

// Close commits the transaction opened at Bind. The request is read-only, so
// Commit and Rollback are equivalent; Commit is used so a driver that
// degrades read transactions to no-ops doesn't log spurious rollbacks.
func (s *Store) Close() error {
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	return tx.Commit()
}

func (s *Store) withTimeout(ctx context.Context) context.Context {
	if s.statementTimeout <= 0 || s.drv.Dialect() != dialect.Postgres {
		return ctx
	}
	return dsql.WithIntVar(ctx, "statement_timeout", int(s.statementTimeout/time.Millisecond))
}

// Query implements project.DataSource.
func (s *Store) Query(ctx context.Context, spec project.QuerySpec) ([]project.Row, error) {
	table, ok := s.cfg.tableFor(spec.EntityType)
	if !ok {
		return nil, fmt.Errorf("sqlstore: no table configured for entity type %q", spec.EntityType)
	}

	sel := &sqlb.Select{Table: table}
	for _, slot := range spec.Schema.Slots() {
		if slot.Collection {
			continue
		}
		sel.Columns = append(sel.Columns, sqlb.ColumnRef{Column: slot.EntityPath, Alias: slot.Name})
	}

	if len(spec.ParentIDs) > 0 {
		parentColumn, ok := parentRefColumn(spec.Schema)
		if !ok {
			return nil, fmt.Errorf("sqlstore: collection query for %q has no parent-reference slot", spec.EntityType)
		}
		ids := make([]any, len(spec.ParentIDs))
		for i, id := range spec.ParentIDs {
			ids[i] = id
		}
		sel.Where = sqlb.In(parentColumn, ids)
	} else if spec.Resolver != nil {
		pred, err := spec.Resolver(table, sel, predicateBuilder{})
		if err != nil {
			return nil, fmt.Errorf("sqlstore: resolve root predicate: %w", err)
		}
		if pred != nil {
			sel.Where = mustPred(pred)
		}
	}

	for _, sort := range spec.Sort {
		dir := "ASC"
		if sort.Desc {
			dir = "DESC"
		}
		sel.OrderBy = append(sel.OrderBy, sqlb.Quote(sort.Field)+" "+dir)
	}
	if spec.Pagination.HasSize {
		sel.HasLim, sel.Limit = true, spec.Pagination.Size
	}
	if spec.Pagination.HasOffset {
		sel.HasOff, sel.Offset = true, spec.Pagination.Offset
	}

	query, args := sel.Build()
	s.log().Debug("sqlstore: query", "sql", query, "args", args)

	var rows dsql.Rows
	if err := s.tx.Query(s.withTimeout(ctx), query, args, &rows); err != nil {
		return nil, fmt.Errorf("sqlstore: query: %w", err)
	}
	defer rows.Close()

	aliases := make([]string, len(sel.Columns))
	for i, c := range sel.Columns {
		aliases[i] = c.Alias
	}

	var out []project.Row
	for rows.Next() {
		values := make([]any, len(aliases))
		ptrs := make([]any, len(aliases))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("sqlstore: scan: %w", err)
		}
		row := make(project.Row, len(aliases))
		for i, alias := range aliases {
			row[alias] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlstore: rows: %w", err)
	}
	return out, nil
}

// Aggregate implements project.DataSource: one GROUP BY query per
// (CollectionPath, Reducer, Field) across every requested root id at once
// (spec §4.6 execution step 4, the no-N+1 invariant).
func (s *Store) Aggregate(ctx context.Context, spec project.AggregateSpec) (map[string]float64, error) {
	ct, ok := s.cfg.Collections[spec.CollectionPath]
	if !ok {
		return nil, fmt.Errorf("sqlstore: no collection table configured for path %q", spec.CollectionPath)
	}
	aggExpr, err := reducerSQL(spec.Reducer, spec.Field)
	if err != nil {
		return nil, err
	}

	ids := make([]any, len(spec.RootIDs))
	for i, id := range spec.RootIDs {
		ids[i] = id
	}
	where := sqlb.In(ct.ParentColumn, ids)

	query := fmt.Sprintf(
		"SELECT %s, %s AS agg FROM %s WHERE %s GROUP BY %s",
		sqlb.Quote(ct.ParentColumn), aggExpr, sqlb.Quote(ct.Table), where.Clause, sqlb.Quote(ct.ParentColumn),
	)
	s.log().Debug("sqlstore: aggregate", "sql", query, "args", where.Args)

	var rows dsql.Rows
	if err := s.tx.Query(s.withTimeout(ctx), query, where.Args, &rows); err != nil {
		return nil, fmt.Errorf("sqlstore: aggregate query: %w", err)
	}
	defer rows.Close()

	out := make(map[string]float64, len(spec.RootIDs))
	for rows.Next() {
		var parentID string
		var agg any
		if err := rows.Scan(&parentID, &agg); err != nil {
			return nil, fmt.Errorf("sqlstore: aggregate scan: %w", err)
		}
		v, err := toFloat64(agg)
		if err != nil {
			return nil, err
		}
		out[parentID] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlstore: aggregate rows: %w", err)
	}
	return out, nil
}

func parentRefColumn(schema *project.FieldSchema) (string, bool) {
	slot, ok := schema.Slot("_i_pid_0")
	if !ok {
		return "", false
	}
	return slot.EntityPath, true
}

func toFloat64(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case int64:
		return float64(t), nil
	case []byte:
		var f float64
		if _, err := fmt.Sscanf(strings.TrimSpace(string(t)), "%g", &f); err != nil {
			return 0, fmt.Errorf("sqlstore: parse aggregate value %q: %w", t, err)
		}
		return f, nil
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("sqlstore: unsupported aggregate scan type %T", v)
	}
}

var _ project.DataSource = (*Store)(nil)
