package compile

import (
	"fmt"

	"github.com/syssam/filterql"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	lowerCaser = cases.Lower(language.Und)
	upperCaser = cases.Upper(language.Und)
)

// applyNullPolicy rewrites condition for one request's bound arguments,
// implementing the null-value policy (spec §7): STRICT_EXCEPTION raises
// FilterValidationError, COERCE_TO_IS_NULL rewrites (EQ,nil)->IS_NULL and
// (NE,nil)->NOT_NULL (any other operator with a nil value still raises),
// IGNORE_FILTER replaces the leaf with AlwaysTrue. A leaf whose bound value
// is present and non-nil passes through unchanged.
func applyNullPolicy(factory StandardResolverFactory, condition filterql.Condition, args filterql.ArgumentMap, policy filterql.NullValuePolicy) (filterql.Condition, error) {
	switch c := condition.(type) {
	case *filterql.Leaf:
		if v, ok := args[c.ArgKey]; ok && v != nil {
			return c, nil
		}
		switch policy {
		case filterql.StrictException:
			return nil, &filterql.FilterValidationError{
				Property: c.Ref.Name, Operator: string(c.Op),
				Reason: "null value under the STRICT_EXCEPTION null-value policy",
			}
		case filterql.IgnoreFilter:
			return filterql.AlwaysTrue, nil
		case filterql.CoerceToIsNull:
			var newOp filterql.Operator
			switch c.Op {
			case filterql.EQ:
				newOp = filterql.IsNull
			case filterql.NE:
				newOp = filterql.NotNull
			default:
				return nil, &filterql.FilterValidationError{
					Property: c.Ref.Name, Operator: string(c.Op),
					Reason: "null value with an operator other than EQ/NE cannot be coerced to IS_NULL/NOT_NULL",
				}
			}
			resolver, err := factory.Resolver(c.Ref, newOp)
			if err != nil {
				return nil, err
			}
			return filterql.NewLeaf(c.ArgKey, c.Ref, newOp, resolver), nil
		default:
			return nil, fmt.Errorf("compile: unknown null-value policy %d", policy)
		}
	case *filterql.AndNode:
		operands, err := applyNullPolicyAll(factory, c.Operands, args, policy)
		if err != nil {
			return nil, err
		}
		return filterql.NewAnd(operands...), nil
	case *filterql.OrNode:
		operands, err := applyNullPolicyAll(factory, c.Operands, args, policy)
		if err != nil {
			return nil, err
		}
		return filterql.NewOr(operands...), nil
	case *filterql.NotNode:
		operand, err := applyNullPolicy(factory, c.Operand, args, policy)
		if err != nil {
			return nil, err
		}
		return filterql.NewNot(operand), nil
	default:
		// AlwaysTrue/AlwaysFalse carry no bound argument.
		return condition, nil
	}
}

func applyNullPolicyAll(factory StandardResolverFactory, operands []filterql.Condition, args filterql.ArgumentMap, policy filterql.NullValuePolicy) ([]filterql.Condition, error) {
	out := make([]filterql.Condition, len(operands))
	for i, op := range operands {
		rewritten, err := applyNullPolicy(factory, op, args, policy)
		if err != nil {
			return nil, err
		}
		out[i] = rewritten
	}
	return out, nil
}

// normalizeArguments returns args unchanged if cfg applies no case folding,
// or a copy with every leaf's bound string value folded per
// FilterConfig.StringCaseStrategy ("string"-typed properties) or
// FilterConfig.EnumMatchMode ("enum"-typed properties), per spec §6.
func normalizeArguments(condition filterql.Condition, args filterql.ArgumentMap, cfg filterql.FilterConfig) filterql.ArgumentMap {
	if cfg.StringCaseStrategy == filterql.CaseNone && cfg.EnumMatchMode == filterql.EnumCaseSensitive {
		return args
	}
	out := make(filterql.ArgumentMap, len(args))
	for k, v := range args {
		out[k] = v
	}
	walkLeaves(condition, func(l *filterql.Leaf) {
		v, ok := out[l.ArgKey]
		if !ok || v == nil {
			return
		}
		s, ok := v.(string)
		if !ok {
			return
		}
		switch l.Ref.ValueType {
		case "string":
			switch cfg.StringCaseStrategy {
			case filterql.CaseLower:
				out[l.ArgKey] = lowerCaser.String(s)
			case filterql.CaseUpper:
				out[l.ArgKey] = upperCaser.String(s)
			}
		case "enum":
			if cfg.EnumMatchMode == filterql.EnumCaseInsensitive {
				out[l.ArgKey] = lowerCaser.String(s)
			}
		}
	})
	return out
}

func walkLeaves(condition filterql.Condition, fn func(*filterql.Leaf)) {
	switch c := condition.(type) {
	case *filterql.Leaf:
		fn(c)
	case *filterql.AndNode:
		for _, op := range c.Operands {
			walkLeaves(op, fn)
		}
	case *filterql.OrNode:
		for _, op := range c.Operands {
			walkLeaves(op, fn)
		}
	case *filterql.NotNode:
		walkLeaves(c.Operand, fn)
	}
}
