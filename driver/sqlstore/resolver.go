package sqlstore

import (
	"fmt"

	"github.com/syssam/filterql"
	"github.com/syssam/filterql/driver/sqlstore/internal/sqlb"
)

// predicateBuilder adapts sqlb's And/Or/Not/AlwaysTrue/AlwaysFalse free
// functions to filterql.PredicateBuilder, the interface And/Or/Not
// Conditions require of the opaque "builder" value (spec §6).
type predicateBuilder struct{}

func (predicateBuilder) And(predicates []any) any { return sqlb.And(toPreds(predicates)) }
func (predicateBuilder) Or(predicates []any) any  { return sqlb.Or(toPreds(predicates)) }
func (predicateBuilder) Not(predicate any) any    { return sqlb.Not(mustPred(predicate)) }
func (predicateBuilder) AlwaysTrue() any          { return sqlb.AlwaysTrue() }
func (predicateBuilder) AlwaysFalse() any         { return sqlb.AlwaysFalse() }

var _ filterql.PredicateBuilder = predicateBuilder{}

func toPreds(vs []any) []*sqlb.Predicate {
	out := make([]*sqlb.Predicate, len(vs))
	for i, v := range vs {
		out[i] = mustPred(v)
	}
	return out
}

func mustPred(v any) *sqlb.Predicate {
	p, ok := v.(*sqlb.Predicate)
	if !ok {
		panic(fmt.Sprintf("sqlstore: expected *sqlb.Predicate, got %T", v))
	}
	return p
}

// ResolverFactory implements compile.StandardResolverFactory: it translates
// a (PropertyReference, Operator) pair into a LeafResolver that, given the
// leaf's bound argument value, produces a *sqlb.Predicate column fragment.
// root and query are unused by this factory (the column fragment is
// attached to the Select built by Store.Query); only builder — the
// predicateBuilder instance passed at resolve time — matters for combining
// leaves, and that combination happens in filterql's And/Or/Not Condition
// nodes, not here.
type ResolverFactory struct{}

func (ResolverFactory) Resolver(ref filterql.PropertyReference, op filterql.Operator) (filterql.LeafResolver, error) {
	column := ref.Name
	switch op {
	case filterql.EQ:
		return leafResolver(func(v any) (*sqlb.Predicate, error) { return sqlb.EQ(column, v), nil }), nil
	case filterql.NE:
		return leafResolver(func(v any) (*sqlb.Predicate, error) { return sqlb.NEQ(column, v), nil }), nil
	case filterql.GT:
		return leafResolver(func(v any) (*sqlb.Predicate, error) { return sqlb.GT(column, v), nil }), nil
	case filterql.GTE:
		return leafResolver(func(v any) (*sqlb.Predicate, error) { return sqlb.GTE(column, v), nil }), nil
	case filterql.LT:
		return leafResolver(func(v any) (*sqlb.Predicate, error) { return sqlb.LT(column, v), nil }), nil
	case filterql.LTE:
		return leafResolver(func(v any) (*sqlb.Predicate, error) { return sqlb.LTE(column, v), nil }), nil
	case filterql.MATCHES:
		return leafResolver(func(v any) (*sqlb.Predicate, error) {
			pattern, err := likePattern(v)
			if err != nil {
				return nil, err
			}
			return sqlb.Like(column, pattern), nil
		}), nil
	case filterql.NotMatches:
		return leafResolver(func(v any) (*sqlb.Predicate, error) {
			pattern, err := likePattern(v)
			if err != nil {
				return nil, err
			}
			return sqlb.NotLike(column, pattern), nil
		}), nil
	case filterql.IN:
		return leafResolver(func(v any) (*sqlb.Predicate, error) {
			vs, err := toSlice(v)
			if err != nil {
				return nil, err
			}
			return sqlb.In(column, vs), nil
		}), nil
	case filterql.NotIn:
		return leafResolver(func(v any) (*sqlb.Predicate, error) {
			vs, err := toSlice(v)
			if err != nil {
				return nil, err
			}
			return sqlb.NotIn(column, vs), nil
		}), nil
	case filterql.IsNull:
		return leafResolver(func(any) (*sqlb.Predicate, error) { return sqlb.IsNull(column), nil }), nil
	case filterql.NotNull:
		return leafResolver(func(any) (*sqlb.Predicate, error) { return sqlb.IsNotNull(column), nil }), nil
	case filterql.RANGE:
		return leafResolver(func(v any) (*sqlb.Predicate, error) {
			from, to, err := rangeBounds(v)
			if err != nil {
				return nil, err
			}
			return sqlb.Range(column, from, to), nil
		}), nil
	case filterql.NotRange:
		return leafResolver(func(v any) (*sqlb.Predicate, error) {
			from, to, err := rangeBounds(v)
			if err != nil {
				return nil, err
			}
			return sqlb.NotRange(column, from, to), nil
		}), nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported operator %q", op)
	}
}

func leafResolver(fn func(value any) (*sqlb.Predicate, error)) filterql.LeafResolver {
	return func(value, _, _, _ any) (any, error) { return fn(value) }
}

func toSlice(v any) ([]any, error) {
	vs, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("sqlstore: expected []any for IN/NOT_IN, got %T", v)
	}
	return vs, nil
}

func rangeBounds(v any) (any, any, error) {
	vs, ok := v.([]any)
	if !ok || len(vs) != 2 {
		return nil, nil, fmt.Errorf("sqlstore: expected a 2-element []any{from, to} for RANGE/NOT_RANGE, got %T", v)
	}
	return vs[0], vs[1], nil
}

func likePattern(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("sqlstore: expected string for MATCHES/NOT_MATCHES, got %T", v)
	}
	return s, nil
}
