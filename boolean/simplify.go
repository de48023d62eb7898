package boolean

import (
	"fmt"
	"sort"

	"github.com/syssam/filterql"
)

// Mode selects how commutative operands are ordered in the emitted postfix
// stream (spec §4.2 rule 7).
type Mode int

const (
	// EvaluationPreserving keeps operands in source order, so that a
	// backend relying on short-circuit evaluation or on the selectivity of
	// the first operand sees unchanged behavior. This is the reference
	// mode: the source's cache treats "A & B" and "B & A" as distinct.
	EvaluationPreserving Mode = iota
	// CanonicalStructure sorts each flattened operator's operands by their
	// canonical string key, maximizing cache-key sharing across
	// structurally equivalent but differently-ordered expressions.
	CanonicalStructure
)

// Simplify rewrites postfix to a fixed point under the rules in spec §4.2
// and re-emits it as postfix in the requested mode. The returned slice may
// be shorter than the input (rules 2-5 can collapse whole subexpressions to
// ⊤/⊥) but is always a valid postfix stream with the same free variables or
// a strict subset of them.
func Simplify(postfix []Symbol, mode Mode) ([]Symbol, error) {
	tree, err := build(postfix)
	if err != nil {
		return nil, err
	}

	// The bottom-up construction in build already applies every rule as
	// each node is assembled, so a single pass reaches the fixed point in
	// practice. We still iterate defensively (bounded by expression size,
	// per spec §4.2) and stop as soon as a pass changes nothing: re-parsing
	// and re-building exercises the rules afresh, in case flattening a
	// substituted expression (compile package's C3 layer re-runs Simplify
	// after replacing identifiers) exposes new collapses.
	prevKey := tree.canonKey()
	limit := len(postfix) + 2
	for i := 0; i < limit; i++ {
		out := emit(tree, EvaluationPreserving)
		next, err := build(out)
		if err != nil {
			return nil, err
		}
		nextKey := next.canonKey()
		if nextKey == prevKey {
			tree = next
			break
		}
		tree = next
		prevKey = nextKey
	}

	return emit(tree, mode), nil
}

// build runs the single-pass stack evaluator that turns a postfix symbol
// stream into a node tree, applying newAnd/newOr/newNot (and therefore
// every rewrite rule) at each combination step.
func build(postfix []Symbol) (node, error) {
	var stack []node
	for _, sym := range postfix {
		switch sym.Kind {
		case Var:
			stack = append(stack, leafNode{name: sym.Name})
		case True:
			stack = append(stack, constNode{val: true})
		case False:
			stack = append(stack, constNode{val: false})
		case Not:
			if len(stack) < 1 {
				return nil, badArity(len(stack))
			}
			x := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			stack = append(stack, newNot(x))
		case And:
			if len(stack) < 2 {
				return nil, badArity(len(stack))
			}
			b := stack[len(stack)-1]
			a := stack[len(stack)-2]
			stack = stack[:len(stack)-2]
			stack = append(stack, newAnd([]node{a, b}))
		case Or:
			if len(stack) < 2 {
				return nil, badArity(len(stack))
			}
			b := stack[len(stack)-1]
			a := stack[len(stack)-2]
			stack = stack[:len(stack)-2]
			stack = append(stack, newOr([]node{a, b}))
		default:
			return nil, fmt.Errorf("boolean: unknown postfix symbol kind %d: %w", sym.Kind, filterql.ErrDSLSyntax)
		}
	}
	if len(stack) != 1 {
		return nil, badArity(len(stack))
	}
	return stack[0], nil
}

func badArity(depth int) error {
	return &filterql.BadArityError{StackDepth: depth}
}

// emit walks the simplified tree back into a flat postfix stream (rule 8,
// parenthesis removal, is implicit: the tree never records parens).
func emit(n node, mode Mode) []Symbol {
	switch v := n.(type) {
	case leafNode:
		return []Symbol{Ident(v.name)}
	case constNode:
		if v.val {
			return []Symbol{TrueSym}
		}
		return []Symbol{FalseSym}
	case notNode:
		return append(emit(v.x, mode), NotOp())
	case andNode:
		return foldBinary(orderOperands(v.xs, mode), mode, AndOp())
	case orNode:
		return foldBinary(orderOperands(v.xs, mode), mode, OrOp())
	default:
		return nil
	}
}

// orderOperands applies rule 7 (commutative ordering) only in
// CanonicalStructure mode.
func orderOperands(xs []node, mode Mode) []node {
	if mode != CanonicalStructure {
		return xs
	}
	sorted := make([]node, len(xs))
	copy(sorted, xs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].canonKey() < sorted[j].canonKey()
	})
	return sorted
}

// foldBinary re-expands an n-ary operand list into a left-associative chain
// of the binary postfix operator op, since the output grammar (consumed by
// C3/C4) only ever has binary & and |.
func foldBinary(xs []node, mode Mode, op Symbol) []Symbol {
	out := emit(xs[0], mode)
	for _, x := range xs[1:] {
		out = append(out, emit(x, mode)...)
		out = append(out, op)
	}
	return out
}

// String renders a postfix symbol stream space-joined, the form used for
// cache keys and test expectations.
func String(postfix []Symbol) string {
	parts := make([]string, len(postfix))
	for i, s := range postfix {
		parts[i] = s.String()
	}
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += " "
		}
		out += p
	}
	return out
}
