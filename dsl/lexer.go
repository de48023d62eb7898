package dsl

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/syssam/filterql"
)

// expandShorthand applies the single-token AND/OR/NOT shorthand expansion
// described in spec §4.1: these words expand to &, |, ! only when they are
// the *entire* (trimmed) expression. Inside any larger expression they are
// ordinary identifiers, validated like any other filter name.
func expandShorthand(expr string) string {
	switch strings.TrimSpace(expr) {
	case "AND":
		return "&"
	case "OR":
		return "|"
	case "NOT":
		return "!"
	default:
		return expr
	}
}

// Tokenize lexes expr into a flat token stream, enforcing policy's
// maxExpressionLength and identifier pattern as it scans (spec §4.1: "Each
// is checked early").
func Tokenize(expr string, policy filterql.DslPolicy) ([]Token, error) {
	if len(expr) > policy.MaxExpressionLength && policy.MaxExpressionLength > 0 {
		return nil, filterql.NewDSLSyntaxError(
			fmt.Sprintf("expression length %d exceeds maxExpressionLength %d", len(expr), policy.MaxExpressionLength))
	}

	expanded := expandShorthand(expr)
	idPattern := policy.Identifier()

	runes := []rune(expanded)
	var tokens []Token
	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '&':
			tokens = append(tokens, Token{Kind: And, Text: "&", Position: i})
			i++
		case r == '|':
			tokens = append(tokens, Token{Kind: Or, Text: "|", Position: i})
			i++
		case r == '!':
			tokens = append(tokens, Token{Kind: Not, Text: "!", Position: i})
			i++
		case r == '(':
			tokens = append(tokens, Token{Kind: LParen, Text: "(", Position: i})
			i++
		case r == ')':
			tokens = append(tokens, Token{Kind: RParen, Text: ")", Position: i})
			i++
		case isIdentStart(r):
			start := i
			j := i + 1
			for j < len(runes) && isIdentPart(runes[j]) {
				j++
			}
			text := string(runes[start:j])
			if !idPattern.MatchString(text) {
				return nil, filterql.NewDSLSyntaxErrorAt(
					fmt.Sprintf("identifier %q rejected by policy pattern", text), start)
			}
			tokens = append(tokens, Token{Kind: Ident, Text: text, Position: start})
			i = j
		default:
			return nil, filterql.NewDSLSyntaxErrorAt(fmt.Sprintf("unexpected character %q", r), i)
		}

		if policy.MaxTokens > 0 && len(tokens) > policy.MaxTokens {
			return nil, filterql.NewDSLSyntaxError(
				fmt.Sprintf("token count exceeds maxTokens %d", policy.MaxTokens))
		}
	}

	if len(tokens) == 0 {
		return nil, filterql.NewDSLSyntaxError("empty expression")
	}
	return tokens, nil
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
