package dsl

import (
	"fmt"

	"github.com/syssam/filterql"
)

// precedence assigns shunting-yard precedence to the binary operators.
// '!' is handled separately as a unary prefix operator (spec §4.1:
// "operator precedence ! > & > |, left-associative & and |,
// right-associative !").
var precedence = map[Kind]int{And: 2, Or: 1}

// Parsed is the result of parsing a DSL expression: the postfix (RPN) token
// stream consumed by the condition builder (C4), plus the maximum
// parenthesis nesting depth observed (for diagnostics).
type Parsed struct {
	Postfix  []Token
	MaxDepth int
}

// Parse validates expr against policy and produces its postfix token form
// using the shunting-yard algorithm (spec §4.1).
func Parse(expr string, policy filterql.DslPolicy) (*Parsed, error) {
	tokens, err := Tokenize(expr, policy)
	if err != nil {
		return nil, err
	}
	return ParseTokens(tokens, policy)
}

// ParseTokens runs the shunting-yard algorithm over an already-lexed token
// stream.
func ParseTokens(tokens []Token, policy filterql.DslPolicy) (*Parsed, error) {
	var (
		output       []Token
		opStack      []Token
		expectOperand = true
		depth         int
		maxDepth      int
	)

	popUnary := func() {
		for len(opStack) > 0 && opStack[len(opStack)-1].Kind == Not {
			output = append(output, opStack[len(opStack)-1])
			opStack = opStack[:len(opStack)-1]
		}
	}

	for _, tok := range tokens {
		switch tok.Kind {
		case Ident:
			if !expectOperand {
				return nil, filterql.NewDSLSyntaxErrorAt(fmt.Sprintf("unexpected identifier %q", tok.Text), tok.Position)
			}
			output = append(output, tok)
			expectOperand = false
			popUnary()

		case LParen:
			if !expectOperand {
				return nil, filterql.NewDSLSyntaxErrorAt("unexpected '('", tok.Position)
			}
			opStack = append(opStack, tok)
			depth++
			if depth > maxDepth {
				maxDepth = depth
			}
			if policy.MaxDepth > 0 && depth > policy.MaxDepth {
				return nil, filterql.NewDSLSyntaxErrorAt(
					fmt.Sprintf("nesting depth exceeds maxDepth %d", policy.MaxDepth), tok.Position)
			}
			expectOperand = true

		case RParen:
			if expectOperand {
				return nil, filterql.NewDSLSyntaxErrorAt("unexpected ')'", tok.Position)
			}
			found := false
			for len(opStack) > 0 {
				top := opStack[len(opStack)-1]
				opStack = opStack[:len(opStack)-1]
				if top.Kind == LParen {
					found = true
					break
				}
				output = append(output, top)
			}
			if !found {
				return nil, filterql.NewDSLSyntaxErrorAt("unbalanced parenthesis: unmatched ')'", tok.Position)
			}
			depth--
			expectOperand = false
			popUnary()

		case Not:
			if !expectOperand {
				return nil, filterql.NewDSLSyntaxErrorAt("unexpected '!'", tok.Position)
			}
			opStack = append(opStack, tok)
			expectOperand = true

		case And, Or:
			if expectOperand {
				return nil, filterql.NewDSLSyntaxErrorAt(fmt.Sprintf("unexpected %s", tok.Kind), tok.Position)
			}
			curPrec := precedence[tok.Kind]
			for len(opStack) > 0 {
				top := opStack[len(opStack)-1]
				if top.Kind != And && top.Kind != Or {
					break
				}
				topPrec := precedence[top.Kind]
				if topPrec < curPrec {
					break
				}
				// Equal precedence: both & and | are left-associative, so pop.
				output = append(output, top)
				opStack = opStack[:len(opStack)-1]
			}
			opStack = append(opStack, tok)
			expectOperand = true

		default:
			return nil, filterql.NewDSLSyntaxErrorAt(fmt.Sprintf("unknown operator token %q", tok.Text), tok.Position)
		}
	}

	if expectOperand {
		return nil, filterql.NewDSLSyntaxError("unexpected end of expression: dangling operator")
	}
	for len(opStack) > 0 {
		top := opStack[len(opStack)-1]
		opStack = opStack[:len(opStack)-1]
		if top.Kind == LParen {
			return nil, filterql.NewDSLSyntaxErrorAt("unbalanced parenthesis: unmatched '('", top.Position)
		}
		output = append(output, top)
	}

	return &Parsed{Postfix: output, MaxDepth: maxDepth}, nil
}
