// Package sqlb is a minimal parameterized-SQL fragment builder for the
// sqlstore DataSource: just enough Selector/Predicate machinery to translate
// project.QuerySpec/AggregateSpec and filterql's opaque root/query/builder
// triple into a database/sql-executable statement, without the full
// generated-code query-builder surface the rest of the dialect/sql family
// assumes.
package sqlb

import (
	"fmt"
	"regexp"
	"strings"
)

var identifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Quote renders name as a double-quoted SQL identifier. It panics on a
// non-identifier name: callers only ever pass column/table names sourced
// from registered metadata, never raw user input.
func Quote(name string) string {
	if !identifierRe.MatchString(name) {
		panic(fmt.Sprintf("sqlb: invalid identifier %q", name))
	}
	return `"` + name + `"`
}

// Predicate is one WHERE-clause fragment: a parameterized clause plus its
// positional arguments, in the order their '?' placeholders appear.
type Predicate struct {
	Clause string
	Args   []any
}

func leaf(column, op string, args ...any) *Predicate {
	placeholders := strings.Repeat("?, ", len(args))
	placeholders = strings.TrimSuffix(placeholders, ", ")
	clause := fmt.Sprintf("%s %s %s", Quote(column), op, placeholders)
	return &Predicate{Clause: clause, Args: args}
}

func EQ(column string, v any) *Predicate  { return leaf(column, "=", v) }
func NEQ(column string, v any) *Predicate { return leaf(column, "<>", v) }
func GT(column string, v any) *Predicate  { return leaf(column, ">", v) }
func GTE(column string, v any) *Predicate { return leaf(column, ">=", v) }
func LT(column string, v any) *Predicate  { return leaf(column, "<", v) }
func LTE(column string, v any) *Predicate { return leaf(column, "<=", v) }

// Like builds a LIKE predicate. pattern is passed through unescaped — the
// caller (a ResolverFactory) is responsible for turning a MATCHES/NOT_MATCHES
// filter value into SQL LIKE wildcard syntax.
func Like(column, pattern string) *Predicate {
	return &Predicate{Clause: fmt.Sprintf("%s LIKE ?", Quote(column)), Args: []any{pattern}}
}

func NotLike(column, pattern string) *Predicate {
	return &Predicate{Clause: fmt.Sprintf("%s NOT LIKE ?", Quote(column)), Args: []any{pattern}}
}

func IsNull(column string) *Predicate {
	return &Predicate{Clause: Quote(column) + " IS NULL"}
}

func IsNotNull(column string) *Predicate {
	return &Predicate{Clause: Quote(column) + " IS NOT NULL"}
}

// In builds a column IN (...) predicate. An empty vs list produces an
// always-false predicate, matching SQL's own "IN ()" semantics without
// relying on a dialect extension.
func In(column string, vs []any) *Predicate {
	if len(vs) == 0 {
		return &Predicate{Clause: "1 = 0"}
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(vs)), ", ")
	return &Predicate{Clause: fmt.Sprintf("%s IN (%s)", Quote(column), placeholders), Args: vs}
}

func NotIn(column string, vs []any) *Predicate {
	if len(vs) == 0 {
		return &Predicate{Clause: "1 = 1"}
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(vs)), ", ")
	return &Predicate{Clause: fmt.Sprintf("%s NOT IN (%s)", Quote(column), placeholders), Args: vs}
}

// Range builds a BETWEEN predicate.
func Range(column string, from, to any) *Predicate {
	return &Predicate{Clause: fmt.Sprintf("%s BETWEEN ? AND ?", Quote(column)), Args: []any{from, to}}
}

func NotRange(column string, from, to any) *Predicate {
	return &Predicate{Clause: fmt.Sprintf("%s NOT BETWEEN ? AND ?", Quote(column)), Args: []any{from, to}}
}

// AlwaysTrue and AlwaysFalse are unconditional predicates, used by the
// boolean simplifier's normalized ALWAYS_TRUE/ALWAYS_FALSE leaves.
func AlwaysTrue() *Predicate  { return &Predicate{Clause: "1 = 1"} }
func AlwaysFalse() *Predicate { return &Predicate{Clause: "1 = 0"} }

// And joins predicates with AND, flattening argument lists in order.
func And(predicates []*Predicate) *Predicate { return join(predicates, "AND") }

// Or joins predicates with OR, flattening argument lists in order.
func Or(predicates []*Predicate) *Predicate { return join(predicates, "OR") }

func join(predicates []*Predicate, op string) *Predicate {
	if len(predicates) == 0 {
		if op == "AND" {
			return AlwaysTrue()
		}
		return AlwaysFalse()
	}
	if len(predicates) == 1 {
		return predicates[0]
	}
	clauses := make([]string, len(predicates))
	var args []any
	for i, p := range predicates {
		clauses[i] = p.Clause
		args = append(args, p.Args...)
	}
	return &Predicate{Clause: "(" + strings.Join(clauses, " "+op+" ") + ")", Args: args}
}

// Not negates a predicate.
func Not(p *Predicate) *Predicate {
	return &Predicate{Clause: "NOT (" + p.Clause + ")", Args: p.Args}
}

// ColumnRef is one selected column, optionally aliased — the projection
// schema's EntityPath (the source column) and Name (the DTO-facing output,
// used to scan the row back into a project.Row) commonly differ.
type ColumnRef struct {
	Column string
	Alias  string
}

// Select is a minimal SELECT statement builder: a fixed column list and
// table, an optional WHERE predicate, ORDER BY clauses, and LIMIT/OFFSET.
type Select struct {
	Columns []ColumnRef
	Table   string
	Where   *Predicate
	OrderBy []string
	Limit   int
	HasLim  bool
	Offset  int
	HasOff  bool
}

// Build renders the statement and its positional arguments.
func (s *Select) Build() (string, []any) {
	var b strings.Builder
	cols := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		if c.Alias == "" || c.Alias == c.Column {
			cols[i] = Quote(c.Column)
			continue
		}
		cols[i] = Quote(c.Column) + " AS " + Quote(c.Alias)
	}
	fmt.Fprintf(&b, "SELECT %s FROM %s", strings.Join(cols, ", "), Quote(s.Table))
	var args []any
	if s.Where != nil {
		b.WriteString(" WHERE ")
		b.WriteString(s.Where.Clause)
		args = append(args, s.Where.Args...)
	}
	if len(s.OrderBy) > 0 {
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(s.OrderBy, ", "))
	}
	if s.HasLim {
		fmt.Fprintf(&b, " LIMIT %d", s.Limit)
	}
	if s.HasOff {
		fmt.Fprintf(&b, " OFFSET %d", s.Offset)
	}
	return b.String(), args
}
