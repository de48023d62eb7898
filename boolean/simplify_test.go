package boolean_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/filterql/boolean"
)

func TestSimplifyIdempotence(t *testing.T) {
	t.Parallel()

	postfix := []boolean.Symbol{boolean.Ident("f1"), boolean.Ident("f1"), boolean.AndOp()}
	out, err := boolean.Simplify(postfix, boolean.EvaluationPreserving)
	require.NoError(t, err)
	assert.Equal(t, "f1", boolean.String(out))
}

func TestSimplifyComplementAnd(t *testing.T) {
	t.Parallel()

	postfix := []boolean.Symbol{boolean.Ident("f1"), boolean.Ident("f1"), boolean.NotOp(), boolean.AndOp()}
	out, err := boolean.Simplify(postfix, boolean.EvaluationPreserving)
	require.NoError(t, err)
	assert.Equal(t, "⊥", boolean.String(out))
}

func TestSimplifyComplementOr(t *testing.T) {
	t.Parallel()

	postfix := []boolean.Symbol{boolean.Ident("f1"), boolean.Ident("f1"), boolean.NotOp(), boolean.OrOp()}
	out, err := boolean.Simplify(postfix, boolean.EvaluationPreserving)
	require.NoError(t, err)
	assert.Equal(t, "⊤", boolean.String(out))
}

func TestSimplifyComplementDetectedBothOrderings(t *testing.T) {
	t.Parallel()

	// !f1 & f1 -- complement with the negation on the left operand.
	postfix := []boolean.Symbol{boolean.Ident("f1"), boolean.NotOp(), boolean.Ident("f1"), boolean.AndOp()}
	out, err := boolean.Simplify(postfix, boolean.EvaluationPreserving)
	require.NoError(t, err)
	assert.Equal(t, "⊥", boolean.String(out))
}

func TestSimplifyInvolution(t *testing.T) {
	t.Parallel()

	postfix := []boolean.Symbol{boolean.Ident("f1"), boolean.NotOp(), boolean.NotOp()}
	out, err := boolean.Simplify(postfix, boolean.EvaluationPreserving)
	require.NoError(t, err)
	assert.Equal(t, "f1", boolean.String(out))
}

func TestSimplifyIdentity(t *testing.T) {
	t.Parallel()

	andTrue := []boolean.Symbol{boolean.Ident("f1"), boolean.TrueSym, boolean.AndOp()}
	out, err := boolean.Simplify(andTrue, boolean.EvaluationPreserving)
	require.NoError(t, err)
	assert.Equal(t, "f1", boolean.String(out))

	orFalse := []boolean.Symbol{boolean.Ident("f1"), boolean.FalseSym, boolean.OrOp()}
	out, err = boolean.Simplify(orFalse, boolean.EvaluationPreserving)
	require.NoError(t, err)
	assert.Equal(t, "f1", boolean.String(out))
}

func TestSimplifyAnnihilation(t *testing.T) {
	t.Parallel()

	andFalse := []boolean.Symbol{boolean.Ident("f1"), boolean.FalseSym, boolean.AndOp()}
	out, err := boolean.Simplify(andFalse, boolean.EvaluationPreserving)
	require.NoError(t, err)
	assert.Equal(t, "⊥", boolean.String(out))

	orTrue := []boolean.Symbol{boolean.Ident("f1"), boolean.TrueSym, boolean.OrOp()}
	out, err = boolean.Simplify(orTrue, boolean.EvaluationPreserving)
	require.NoError(t, err)
	assert.Equal(t, "⊤", boolean.String(out))
}

func TestSimplifyAssociativityFlatten(t *testing.T) {
	t.Parallel()

	// f1 & f2 & f3, already left-associative; a repeated operand anywhere
	// in the flattened chain should still collapse via idempotence.
	postfix := []boolean.Symbol{
		boolean.Ident("f1"), boolean.Ident("f2"), boolean.AndOp(),
		boolean.Ident("f1"), boolean.AndOp(),
	}
	out, err := boolean.Simplify(postfix, boolean.EvaluationPreserving)
	require.NoError(t, err)
	assert.Equal(t, "f1 f2 &", boolean.String(out))
}

func TestSimplifyEvaluationPreservingKeepsOrder(t *testing.T) {
	t.Parallel()

	postfix := []boolean.Symbol{boolean.Ident("f2"), boolean.Ident("f1"), boolean.AndOp()}
	out, err := boolean.Simplify(postfix, boolean.EvaluationPreserving)
	require.NoError(t, err)
	assert.Equal(t, "f2 f1 &", boolean.String(out))
}

func TestSimplifyCanonicalStructureSortsOperands(t *testing.T) {
	t.Parallel()

	postfix := []boolean.Symbol{boolean.Ident("f2"), boolean.Ident("f1"), boolean.AndOp()}
	out, err := boolean.Simplify(postfix, boolean.CanonicalStructure)
	require.NoError(t, err)
	assert.Equal(t, "f1 f2 &", boolean.String(out))
}

func TestSimplifyCanonicalStructureMakesCommutedExpressionsShareAKey(t *testing.T) {
	t.Parallel()

	a := []boolean.Symbol{boolean.Ident("f2"), boolean.Ident("f1"), boolean.AndOp()}
	b := []boolean.Symbol{boolean.Ident("f1"), boolean.Ident("f2"), boolean.AndOp()}

	outA, err := boolean.Simplify(a, boolean.CanonicalStructure)
	require.NoError(t, err)
	outB, err := boolean.Simplify(b, boolean.CanonicalStructure)
	require.NoError(t, err)
	assert.Equal(t, boolean.String(outA), boolean.String(outB))

	outA, err = boolean.Simplify(a, boolean.EvaluationPreserving)
	require.NoError(t, err)
	outB, err = boolean.Simplify(b, boolean.EvaluationPreserving)
	require.NoError(t, err)
	assert.NotEqual(t, boolean.String(outA), boolean.String(outB))
}

func TestSimplifyBadArity(t *testing.T) {
	t.Parallel()

	_, err := boolean.Simplify([]boolean.Symbol{boolean.AndOp()}, boolean.EvaluationPreserving)
	require.Error(t, err)

	_, err = boolean.Simplify([]boolean.Symbol{boolean.Ident("f1"), boolean.Ident("f2")}, boolean.EvaluationPreserving)
	require.Error(t, err)
}

// eval interprets a postfix symbol stream under a variable assignment, used
// to check P4 (simplifier equivalence): eval(e) == eval(simplify(e)).
func eval(t *testing.T, postfix []boolean.Symbol, assignment map[string]bool) bool {
	t.Helper()
	var stack []bool
	for _, s := range postfix {
		switch s.Kind {
		case boolean.Var:
			stack = append(stack, assignment[s.Name])
		case boolean.True:
			stack = append(stack, true)
		case boolean.False:
			stack = append(stack, false)
		case boolean.Not:
			x := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			stack = append(stack, !x)
		case boolean.And:
			b := stack[len(stack)-1]
			a := stack[len(stack)-2]
			stack = stack[:len(stack)-2]
			stack = append(stack, a && b)
		case boolean.Or:
			b := stack[len(stack)-1]
			a := stack[len(stack)-2]
			stack = stack[:len(stack)-2]
			stack = append(stack, a || b)
		}
	}
	require.Len(t, stack, 1)
	return stack[0]
}

func TestSimplifyPreservesEvaluationAcrossAssignments(t *testing.T) {
	t.Parallel()

	exprs := [][]boolean.Symbol{
		{boolean.Ident("f1"), boolean.Ident("f2"), boolean.AndOp(), boolean.Ident("f1"), boolean.OrOp()},
		{boolean.Ident("f1"), boolean.NotOp(), boolean.NotOp(), boolean.Ident("f2"), boolean.AndOp()},
		{boolean.Ident("f1"), boolean.Ident("f2"), boolean.OrOp(), boolean.Ident("f3"), boolean.NotOp(), boolean.AndOp()},
	}

	for _, expr := range exprs {
		simplified, err := boolean.Simplify(expr, boolean.EvaluationPreserving)
		require.NoError(t, err)

		for _, f1 := range []bool{true, false} {
			for _, f2 := range []bool{true, false} {
				for _, f3 := range []bool{true, false} {
					assignment := map[string]bool{"f1": f1, "f2": f2, "f3": f3}
					assert.Equal(t, eval(t, expr, assignment), eval(t, simplified, assignment))
				}
			}
		}
	}
}
