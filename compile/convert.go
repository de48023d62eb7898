// Package compile wires the DSL parser (C1) and the boolean simplifier (C2)
// into the structural normalizer (C3), the postfix condition builder (C4),
// and the Compiler that orchestrates all four against a FilterContext.
package compile

import (
	"sort"

	"github.com/syssam/filterql"
	"github.com/syssam/filterql/boolean"
	"github.com/syssam/filterql/dsl"
)

// ToBooleanPostfix adapts a dsl postfix token stream (C1's output, one of
// Ident/And/Or/Not — the parser never emits parens in postfix form) into the
// boolean package's Symbol stream that C2 operates on.
func ToBooleanPostfix(tokens []dsl.Token) []boolean.Symbol {
	out := make([]boolean.Symbol, 0, len(tokens))
	for _, tok := range tokens {
		switch tok.Kind {
		case dsl.Ident:
			out = append(out, boolean.Ident(tok.Text))
		case dsl.And:
			out = append(out, boolean.AndOp())
		case dsl.Or:
			out = append(out, boolean.OrOp())
		case dsl.Not:
			out = append(out, boolean.NotOp())
		}
	}
	return out
}

func availableNames(defs map[string]filterql.FilterDefinition) []string {
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
