package compile

import (
	"log/slog"

	"github.com/syssam/filterql"
	"github.com/syssam/filterql/boolean"
	"github.com/syssam/filterql/dsl"
)

// Compiler orchestrates C1 through C4: it parses a DSL expression, simplifies
// it to a fixed point, derives its structural key, and builds a Condition
// tree against a FilterContext. It performs no caching itself — that is
// filterql/cache's job; Compiler is what a cache miss calls.
type Compiler struct {
	policy filterql.DslPolicy
	mode   boolean.Mode
	logger *slog.Logger
}

// CompilerOption configures a Compiler.
type CompilerOption func(*Compiler)

// WithDslPolicy overrides the default DslPolicy (filterql.DefaultDslPolicy).
func WithDslPolicy(policy filterql.DslPolicy) CompilerOption {
	return func(c *Compiler) { c.policy = policy }
}

// WithSimplifierMode overrides the default boolean.EvaluationPreserving
// mode. Use boolean.CanonicalStructure to maximize cache-key sharing across
// commuted but structurally equivalent expressions, at the cost of losing
// the source's left-right short-circuit order (spec §9 open question).
func WithSimplifierMode(mode boolean.Mode) CompilerOption {
	return func(c *Compiler) { c.mode = mode }
}

// WithLogger injects a *slog.Logger for Debug-level compile tracing. A nil
// logger (the default) falls back to slog.Default() lazily at log time.
func WithLogger(logger *slog.Logger) CompilerOption {
	return func(c *Compiler) { c.logger = logger }
}

// NewCompiler constructs a Compiler with spec defaults, overridden by opts.
func NewCompiler(opts ...CompilerOption) *Compiler {
	c := &Compiler{
		policy: filterql.DefaultDslPolicy(),
		mode:   boolean.EvaluationPreserving,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Compiler) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slog.Default()
}

// Result is everything a cache-miss build produces: the compiled Condition
// tree and the structural key it is stored under.
type Result struct {
	Condition filterql.Condition
	Key       string
}

// Compile runs C1 (dsl.Parse) -> C2 (boolean.Simplify) -> C3 (Normalize) ->
// C4 (BuildCondition) for one expr against defs, consulting ctx for leaves.
func (c *Compiler) Compile(expr string, defs map[string]filterql.FilterDefinition, ctx filterql.FilterContext) (*Result, error) {
	parsed, err := dsl.Parse(expr, c.policy)
	if err != nil {
		c.log().Debug("filterql: dsl parse failed", "expr", expr, "error", err)
		return nil, err
	}

	raw := ToBooleanPostfix(parsed.Postfix)
	simplified, err := boolean.Simplify(raw, c.mode)
	if err != nil {
		c.log().Debug("filterql: boolean simplify failed", "expr", expr, "error", err)
		return nil, err
	}

	key, err := Normalize(simplified, defs, c.mode)
	if err != nil {
		return nil, err
	}

	condition, err := BuildCondition(simplified, defs, ctx)
	if err != nil {
		return nil, err
	}

	c.log().Debug("filterql: compiled filter expression", "expr", expr, "key", key)
	return &Result{Condition: condition, Key: key}, nil
}
