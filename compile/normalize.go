package compile

import (
	"fmt"

	"github.com/syssam/filterql"
	"github.com/syssam/filterql/boolean"
)

// Normalize implements C3: it substitutes each variable symbol in an
// already-simplified postfix stream with its canonical "PROP:OP" token,
// then re-runs the C2 simplifier so that repeated (property, op) pairs
// introduced by the substitution collapse to one token (spec §4.3: "Collapse
// repeated (property, op) pairs to a single token"). The result, rendered
// space-joined, is the structural cache key; constants short-circuit to the
// fixed keys "⊤"/"⊥" because a fully-collapsed stream is a single True/False
// symbol.
func Normalize(simplified []boolean.Symbol, defs map[string]filterql.FilterDefinition, mode boolean.Mode) (string, error) {
	substituted := make([]boolean.Symbol, len(simplified))
	for i, sym := range simplified {
		if sym.Kind != boolean.Var {
			substituted[i] = sym
			continue
		}
		def, ok := defs[sym.Name]
		if !ok {
			return "", &filterql.UndefinedFilterError{Name: sym.Name, Available: availableNames(defs)}
		}
		substituted[i] = boolean.Ident(canonicalToken(def))
	}

	collapsed, err := boolean.Simplify(substituted, mode)
	if err != nil {
		return "", err
	}
	return boolean.String(collapsed), nil
}

// canonicalToken renders a FilterDefinition as the "PROP:OP" token spec §4.3
// describes: PROP is the property reference's canonical name, OP its
// canonical operator code. Values never appear (value-independence, P1).
func canonicalToken(def filterql.FilterDefinition) string {
	return fmt.Sprintf("%s:%s", def.Ref.Name, def.Op)
}
