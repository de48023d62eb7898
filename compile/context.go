package compile

import (
	"github.com/syssam/filterql"
)

// StandardResolverFactory builds a LeafResolver for a standard (non-CUSTOM)
// operator kind. A backend adapter (e.g. driver/sqlstore) implements this to
// translate (ref, op) into a resolver that evaluates against its own
// root/query/builder triple; the core never depends on a concrete backend.
type StandardResolverFactory interface {
	Resolver(ref filterql.PropertyReference, op filterql.Operator) (filterql.LeafResolver, error)
}

// StandardFilterContext is a reusable FilterContext: any operator for which
// op.IsStandard() is true is dispatched to Factory; anything else is
// treated as a custom operator whose code is the operator's own string and
// dispatched through Registry (spec §6: "must fail with
// FilterDefinitionError if op is CUSTOM and no provider is registered for
// its code").
type StandardFilterContext struct {
	Factory  StandardResolverFactory
	Registry *filterql.CustomOperatorRegistry
	// Config governs resolve-time semantic policy (spec §6/§7): null-value
	// handling and string/enum case normalization. Zero value is
	// filterql.DefaultFilterConfig's STRICT_EXCEPTION/NONE/CASE_SENSITIVE.
	Config filterql.FilterConfig
}

// NewStandardFilterContext constructs a StandardFilterContext. registry may
// be nil if the backend registers no custom operators.
func NewStandardFilterContext(factory StandardResolverFactory, registry *filterql.CustomOperatorRegistry) *StandardFilterContext {
	return &StandardFilterContext{Factory: factory, Registry: registry, Config: filterql.DefaultFilterConfig()}
}

// WithConfig overrides c's FilterConfig, returning c for chaining.
func (c *StandardFilterContext) WithConfig(cfg filterql.FilterConfig) *StandardFilterContext {
	c.Config = cfg
	return c
}

// ToCondition implements filterql.FilterContext.
func (c *StandardFilterContext) ToCondition(argKey string, ref filterql.PropertyReference, op filterql.Operator) (filterql.Condition, error) {
	resolver, err := c.resolverFor(ref, op)
	if err != nil {
		return nil, err
	}
	return filterql.NewLeaf(argKey, ref, op, resolver), nil
}

func (c *StandardFilterContext) resolverFor(ref filterql.PropertyReference, op filterql.Operator) (filterql.LeafResolver, error) {
	if op.IsStandard() {
		return c.Factory.Resolver(ref, op)
	}

	code := string(op)
	if c.Registry == nil {
		return nil, &filterql.FilterDefinitionError{
			Property: ref.Name, Operator: code,
			Reason: "no custom operator provider registered (registry is nil)",
		}
	}
	provider, ok := c.Registry.Lookup(code)
	if !ok {
		return nil, &filterql.FilterDefinitionError{
			Property: ref.Name, Operator: code,
			Reason: "no custom operator provider registered for this code",
		}
	}
	def := filterql.NewFilterDefinition(ref, op, nil)
	return provider.ToResolver(def, code)
}

// ToResolver implements filterql.FilterContext: it closes over params and
// returns a PredicateResolver evaluating condition against that invocation's
// backend triple. Per spec §7, validation is lazy — the null-value policy
// and case normalization below run only when the returned resolver is
// actually invoked, never inside ToResolver itself.
func (c *StandardFilterContext) ToResolver(condition filterql.Condition, params filterql.ExecutionParams) filterql.PredicateResolver {
	return func(root, query, builder any) (any, error) {
		resolved, err := applyNullPolicy(c.Factory, condition, params.Arguments, c.Config.NullValuePolicy)
		if err != nil {
			return nil, err
		}
		args := normalizeArguments(resolved, params.Arguments, c.Config)
		return resolved.Resolve(args, root, query, builder)
	}
}
