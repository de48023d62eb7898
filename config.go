package filterql

import "regexp"

// DefaultIdentifierPattern is the default identifier regex per spec §4.1.
const DefaultIdentifierPattern = `[A-Za-z_][A-Za-z0-9_]*`

// DslPolicy bounds the DSL parser (C1): expression length, token count,
// nesting depth, and the identifier pattern filter names must match
// (spec §4.1, §6).
type DslPolicy struct {
	MaxExpressionLength int
	MaxTokens           int
	MaxDepth            int
	IdentifierPattern   string

	compiled *regexp.Regexp
}

// Identifier compiles (and caches) the policy's identifier regex, anchored
// on both ends so that partial matches are rejected.
func (p *DslPolicy) Identifier() *regexp.Regexp {
	if p.compiled == nil {
		pattern := p.IdentifierPattern
		if pattern == "" {
			pattern = DefaultIdentifierPattern
		}
		p.compiled = regexp.MustCompile("^(?:" + pattern + ")$")
	}
	return p.compiled
}

// DefaultDslPolicy is the "defaults" predefined policy (spec §4.1).
func DefaultDslPolicy() DslPolicy {
	return DslPolicy{MaxExpressionLength: 5000, MaxTokens: 200, MaxDepth: 50, IdentifierPattern: DefaultIdentifierPattern}
}

// StrictDslPolicy is the "strict" predefined policy.
func StrictDslPolicy() DslPolicy {
	return DslPolicy{MaxExpressionLength: 1000, MaxTokens: 50, MaxDepth: 20, IdentifierPattern: DefaultIdentifierPattern}
}

// RelaxedDslPolicy is the "relaxed" predefined policy.
func RelaxedDslPolicy() DslPolicy {
	return DslPolicy{MaxExpressionLength: 10000, MaxTokens: 500, MaxDepth: 100, IdentifierPattern: DefaultIdentifierPattern}
}

// CachePolicy configures the compiled-condition cache (C5, spec §4.5).
type CachePolicy struct {
	MaxSize int
}

// DefaultCachePolicy returns the spec's default maxSize of 1024.
func DefaultCachePolicy() CachePolicy {
	return CachePolicy{MaxSize: 1024}
}

// NullValuePolicy determines resolve-time behavior when a filter's bound
// value is null (spec §7).
type NullValuePolicy int

const (
	// StrictException raises FilterValidationError on any null value.
	StrictException NullValuePolicy = iota
	// CoerceToIsNull rewrites (EQ,null)->IS_NULL and (NE,null)->NOT_NULL;
	// any other operator with a null value still raises.
	CoerceToIsNull
	// IgnoreFilter replaces the leaf with AlwaysTrue.
	IgnoreFilter
)

// StringCaseStrategy determines how string filter values are normalized
// before comparison (spec §6).
type StringCaseStrategy int

const (
	// CaseNone performs no case normalization.
	CaseNone StringCaseStrategy = iota
	// CaseLower lowercases string values before comparison.
	CaseLower
	// CaseUpper uppercases string values before comparison.
	CaseUpper
)

// EnumMatchMode determines whether enum-valued filters match case
// sensitively (spec §6).
type EnumMatchMode int

const (
	// EnumCaseSensitive requires an exact-case match.
	EnumCaseSensitive EnumMatchMode = iota
	// EnumCaseInsensitive folds case before comparing.
	EnumCaseInsensitive
)

// FilterConfig configures resolve-time semantic policy (spec §6).
type FilterConfig struct {
	NullValuePolicy    NullValuePolicy
	StringCaseStrategy StringCaseStrategy
	EnumMatchMode      EnumMatchMode
}

// DefaultFilterConfig returns the default configuration: strict null handling, no
// case normalization, case-sensitive enum matching.
func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		NullValuePolicy:    StrictException,
		StringCaseStrategy: CaseNone,
		EnumMatchMode:      EnumCaseSensitive,
	}
}

// FieldCaseMode determines whether the projection planner resolves DTO path
// segments case-sensitively (spec §6).
type FieldCaseMode int

const (
	// FieldCaseSensitive requires exact-case DTO path segments.
	FieldCaseSensitive FieldCaseMode = iota
	// FieldCaseInsensitive folds case when resolving DTO path segments.
	FieldCaseInsensitive
)

// ProjectionPolicy configures the projection planner (C6, spec §6).
type ProjectionPolicy struct {
	FieldCase FieldCaseMode
}

// DefaultProjectionPolicy returns case-sensitive field resolution.
func DefaultProjectionPolicy() ProjectionPolicy {
	return ProjectionPolicy{FieldCase: FieldCaseSensitive}
}
