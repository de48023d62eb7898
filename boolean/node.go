package boolean

import (
	"sort"
	"strings"
)

// node is the internal tree form a postfix Symbol stream is parsed into
// before simplification. Associativity flattening (rule 6) happens at
// construction time: newAnd/newOr fold nested same-operator children
// straight into the parent's operand list instead of keeping them nested.
type node interface {
	canonKey() string
}

type leafNode struct{ name string }

func (n leafNode) canonKey() string { return n.name }

type constNode struct{ val bool }

func (n constNode) canonKey() string {
	if n.val {
		return "⊤"
	}
	return "⊥"
}

type notNode struct{ x node }

func (n notNode) canonKey() string { return "!" + n.x.canonKey() }

type andNode struct{ xs []node }

func (n andNode) canonKey() string { return "(" + joinSorted(n.xs, "&") + ")" }

type orNode struct{ xs []node }

func (n orNode) canonKey() string { return "(" + joinSorted(n.xs, "|") + ")" }

func joinSorted(xs []node, sep string) string {
	keys := make([]string, len(xs))
	for i, x := range xs {
		keys[i] = x.canonKey()
	}
	sort.Strings(keys)
	return strings.Join(keys, sep)
}

// complementKey returns the canonKey of !n without constructing a node,
// used to test for a complementary operand already present in a list.
func complementKey(n node) string {
	if nn, ok := n.(notNode); ok {
		return nn.x.canonKey()
	}
	return "!" + n.canonKey()
}

// newNot applies involution (rule 1): !!x -> x.
func newNot(x node) node {
	if nn, ok := x.(notNode); ok {
		return nn.x
	}
	if c, ok := x.(constNode); ok {
		return constNode{val: !c.val}
	}
	return notNode{x: x}
}

// newAnd flattens nested conjunctions (rule 6) and applies annihilation
// (rule 5: x & ⊥ -> ⊥), identity (rule 4: x & ⊤ -> x), complement (rule 2:
// x & !x -> ⊥) and idempotence (rule 3: x & x -> x).
func newAnd(operands []node) node {
	return newAssoc(operands, false)
}

// newOr mirrors newAnd for disjunction with the dual identity/annihilation
// constants (rule 4: x | ⊥ -> x; rule 5: x | ⊤ -> ⊤; rule 2: x | !x -> ⊤).
func newOr(operands []node) node {
	return newAssoc(operands, true)
}

// newAssoc implements newAnd/newOr; isOr selects which constant is the
// absorbing (annihilating) one and which is the identity one.
func newAssoc(operands []node, isOr bool) node {
	var flat []node
	for _, o := range operands {
		switch v := o.(type) {
		case andNode:
			if !isOr {
				flat = append(flat, v.xs...)
				continue
			}
		case orNode:
			if isOr {
				flat = append(flat, v.xs...)
				continue
			}
		}
		flat = append(flat, o)
	}

	var kept []node
	for _, o := range flat {
		if c, ok := o.(constNode); ok {
			if c.val == isOr {
				// x | true -> true ; x & false -> false.
				return constNode{val: isOr}
			}
			// x | false is dropped ; x & true is dropped.
			continue
		}
		kept = append(kept, o)
	}

	present := make(map[string]bool, len(kept))
	for _, o := range kept {
		present[o.canonKey()] = true
	}
	for _, o := range kept {
		if present[complementKey(o)] {
			return constNode{val: isOr}
		}
	}

	var deduped []node
	seen := make(map[string]bool, len(kept))
	for _, o := range kept {
		k := o.canonKey()
		if seen[k] {
			continue
		}
		seen[k] = true
		deduped = append(deduped, o)
	}

	switch len(deduped) {
	case 0:
		return constNode{val: !isOr}
	case 1:
		return deduped[0]
	default:
		if isOr {
			return orNode{xs: deduped}
		}
		return andNode{xs: deduped}
	}
}
