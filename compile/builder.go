package compile

import (
	"github.com/syssam/filterql"
	"github.com/syssam/filterql/boolean"
)

// BuildCondition implements C4: a single-pass stack evaluator over an
// already-simplified postfix stream. It is the one place a FilterContext is
// consulted to turn a variable symbol into a Condition leaf.
func BuildCondition(postfix []boolean.Symbol, defs map[string]filterql.FilterDefinition, ctx filterql.FilterContext) (filterql.Condition, error) {
	var stack []filterql.Condition

	pop1 := func() (filterql.Condition, bool) {
		if len(stack) < 1 {
			return nil, false
		}
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return top, true
	}
	pop2 := func() (filterql.Condition, filterql.Condition, bool) {
		if len(stack) < 2 {
			return nil, nil, false
		}
		b := stack[len(stack)-1]
		a := stack[len(stack)-2]
		stack = stack[:len(stack)-2]
		return a, b, true
	}

	for _, sym := range postfix {
		switch sym.Kind {
		case boolean.Var:
			def, ok := defs[sym.Name]
			if !ok {
				return nil, &filterql.UndefinedFilterError{Name: sym.Name, Available: availableNames(defs)}
			}
			leaf, err := ctx.ToCondition(sym.Name, def.Ref, def.Op)
			if err != nil {
				return nil, err
			}
			if leaf == nil {
				return nil, &filterql.FilterDefinitionError{
					Property: def.Ref.Name,
					Operator: string(def.Op),
					Reason:   "context returned no condition for this filter",
				}
			}
			stack = append(stack, leaf)

		case boolean.True:
			stack = append(stack, filterql.AlwaysTrue)

		case boolean.False:
			stack = append(stack, filterql.AlwaysFalse)

		case boolean.Not:
			operand, ok := pop1()
			if !ok {
				return nil, &filterql.BadArityError{StackDepth: len(stack)}
			}
			stack = append(stack, operand.Negate())

		case boolean.And:
			a, b, ok := pop2()
			if !ok {
				return nil, &filterql.BadArityError{StackDepth: len(stack)}
			}
			stack = append(stack, a.And(b))

		case boolean.Or:
			a, b, ok := pop2()
			if !ok {
				return nil, &filterql.BadArityError{StackDepth: len(stack)}
			}
			stack = append(stack, a.Or(b))
		}
	}

	if len(stack) != 1 {
		return nil, &filterql.BadArityError{StackDepth: len(stack)}
	}
	return stack[0], nil
}
