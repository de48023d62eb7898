package filterql

import "fmt"

// ArgumentMap is the per-invocation argument table threaded explicitly
// through Resolve calls. Spec §5 requires that "each execute(resolver,
// params) call sees only the arguments passed on that call"; an explicit
// map satisfies that contract without thread-local state.
type ArgumentMap map[string]any

// PredicateBuilder is the minimal capability the opaque "builder" value
// passed to Resolve must provide so that And/Or/Not nodes can combine their
// children's backend predicates. The backend's concrete query-builder type
// (e.g. a SQL WHERE-clause builder) is expected to implement it; the core
// never inspects it beyond this interface (spec §6: builder is opaque to
// the core beyond the operations it must expose).
type PredicateBuilder interface {
	And(predicates []any) any
	Or(predicates []any) any
	Not(predicate any) any
	AlwaysTrue() any
	AlwaysFalse() any
}

// LeafResolver is the deferred function a FilterContext attaches to a leaf
// Condition. It receives the argument value bound to the leaf's key (which
// may be nil/absent — resolution of null values is lazy, per spec §7) plus
// the opaque backend triple, and returns a backend-predicate.
type LeafResolver func(value any, root, query, builder any) (any, error)

// Condition is the immutable predicate tree produced by the postfix
// condition builder (C4) and memoized by the cache (C5). It is polymorphic
// over {and, or, not, resolve} per spec §3; Go expresses that as an
// interface over tagged variants rather than class inheritance (spec §9).
type Condition interface {
	// And returns a new Condition requiring both c and other.
	And(other Condition) Condition
	// Or returns a new Condition requiring either c or other.
	Or(other Condition) Condition
	// Negate returns a new Condition requiring the logical complement of c.
	Negate() Condition
	// Resolve evaluates the condition tree against a per-invocation
	// argument map and the opaque backend triple, producing a
	// backend-predicate.
	Resolve(args ArgumentMap, root, query, builder any) (any, error)
}

// Leaf is a Condition produced by a FilterContext from a (name, ref, op)
// triple and a deferred LeafResolver (spec §3).
type Leaf struct {
	ArgKey   string
	Ref      PropertyReference
	Op       Operator
	Resolver LeafResolver
}

// NewLeaf constructs a Leaf condition.
func NewLeaf(argKey string, ref PropertyReference, op Operator, resolver LeafResolver) *Leaf {
	return &Leaf{ArgKey: argKey, Ref: ref, Op: op, Resolver: resolver}
}

func (l *Leaf) And(other Condition) Condition { return NewAnd(l, other) }
func (l *Leaf) Or(other Condition) Condition  { return NewOr(l, other) }
func (l *Leaf) Negate() Condition             { return NewNot(l) }

// Resolve looks up the leaf's bound argument value and delegates to the
// attached LeafResolver.
func (l *Leaf) Resolve(args ArgumentMap, root, query, builder any) (any, error) {
	value := args[l.ArgKey]
	return l.Resolver(value, root, query, builder)
}

// AndNode requires all of its Operands.
type AndNode struct {
	Operands []Condition
}

// NewAnd flattens nested AndNode operands into a single n-ary node
// (associativity flattening, spec §4.2 rule 6).
func NewAnd(operands ...Condition) *AndNode {
	flat := make([]Condition, 0, len(operands))
	for _, op := range operands {
		if and, ok := op.(*AndNode); ok {
			flat = append(flat, and.Operands...)
			continue
		}
		flat = append(flat, op)
	}
	return &AndNode{Operands: flat}
}

func (n *AndNode) And(other Condition) Condition { return NewAnd(n, other) }
func (n *AndNode) Or(other Condition) Condition  { return NewOr(n, other) }
func (n *AndNode) Negate() Condition             { return NewNot(n) }

// Resolve resolves every operand, then combines the results via the
// backend builder's And.
func (n *AndNode) Resolve(args ArgumentMap, root, query, builder any) (any, error) {
	preds, err := resolveAll(n.Operands, args, root, query, builder)
	if err != nil {
		return nil, err
	}
	pb, err := asPredicateBuilder(builder)
	if err != nil {
		return nil, err
	}
	return pb.And(preds), nil
}

// OrNode requires any of its Operands.
type OrNode struct {
	Operands []Condition
}

// NewOr flattens nested OrNode operands into a single n-ary node.
func NewOr(operands ...Condition) *OrNode {
	flat := make([]Condition, 0, len(operands))
	for _, op := range operands {
		if or, ok := op.(*OrNode); ok {
			flat = append(flat, or.Operands...)
			continue
		}
		flat = append(flat, op)
	}
	return &OrNode{Operands: flat}
}

func (n *OrNode) And(other Condition) Condition { return NewAnd(n, other) }
func (n *OrNode) Or(other Condition) Condition  { return NewOr(n, other) }
func (n *OrNode) Negate() Condition             { return NewNot(n) }

// Resolve resolves every operand, then combines the results via the
// backend builder's Or.
func (n *OrNode) Resolve(args ArgumentMap, root, query, builder any) (any, error) {
	preds, err := resolveAll(n.Operands, args, root, query, builder)
	if err != nil {
		return nil, err
	}
	pb, err := asPredicateBuilder(builder)
	if err != nil {
		return nil, err
	}
	return pb.Or(preds), nil
}

// NotNode negates its single Operand.
type NotNode struct {
	Operand Condition
}

// NewNot wraps operand in negation, collapsing double negation (involution,
// spec §4.2 rule 1) so that !!x normalizes to x even when composed directly
// rather than via the simplifier.
func NewNot(operand Condition) Condition {
	if not, ok := operand.(*NotNode); ok {
		return not.Operand
	}
	return &NotNode{Operand: operand}
}

func (n *NotNode) And(other Condition) Condition { return NewAnd(n, other) }
func (n *NotNode) Or(other Condition) Condition  { return NewOr(n, other) }
func (n *NotNode) Negate() Condition             { return n.Operand }

// Resolve resolves the operand, then negates the result via the backend
// builder's Not.
func (n *NotNode) Resolve(args ArgumentMap, root, query, builder any) (any, error) {
	pred, err := n.Operand.Resolve(args, root, query, builder)
	if err != nil {
		return nil, err
	}
	pb, err := asPredicateBuilder(builder)
	if err != nil {
		return nil, err
	}
	return pb.Not(pred), nil
}

// alwaysTrue and alwaysFalse are the constants ⊤ and ⊥ introduced by the
// boolean simplifier (spec §4.2); AlwaysTrue and AlwaysFalse are their
// Condition-tree representations.
type alwaysTrue struct{}

// AlwaysTrue is the Condition that matches every row.
var AlwaysTrue Condition = alwaysTrue{}

func (alwaysTrue) And(other Condition) Condition { return other }
func (alwaysTrue) Or(_ Condition) Condition       { return AlwaysTrue }
func (alwaysTrue) Negate() Condition              { return AlwaysFalse }
func (alwaysTrue) Resolve(_ ArgumentMap, _, _, builder any) (any, error) {
	pb, err := asPredicateBuilder(builder)
	if err != nil {
		return nil, err
	}
	return pb.AlwaysTrue(), nil
}

type alwaysFalse struct{}

// AlwaysFalse is the Condition that matches no row.
var AlwaysFalse Condition = alwaysFalse{}

func (alwaysFalse) And(_ Condition) Condition      { return AlwaysFalse }
func (alwaysFalse) Or(other Condition) Condition   { return other }
func (alwaysFalse) Negate() Condition              { return AlwaysTrue }
func (alwaysFalse) Resolve(_ ArgumentMap, _, _, builder any) (any, error) {
	pb, err := asPredicateBuilder(builder)
	if err != nil {
		return nil, err
	}
	return pb.AlwaysFalse(), nil
}

func resolveAll(operands []Condition, args ArgumentMap, root, query, builder any) ([]any, error) {
	preds := make([]any, 0, len(operands))
	for _, op := range operands {
		pred, err := op.Resolve(args, root, query, builder)
		if err != nil {
			return nil, err
		}
		preds = append(preds, pred)
	}
	return preds, nil
}

func asPredicateBuilder(builder any) (PredicateBuilder, error) {
	pb, ok := builder.(PredicateBuilder)
	if !ok {
		return nil, fmt.Errorf("filterql: builder %T does not implement PredicateBuilder", builder)
	}
	return pb, nil
}
