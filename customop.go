package filterql

import "strings"

// CustomOperatorProvider resolves CUSTOM operator codes into
// LeafResolvers (spec §6). Codes are case-insensitive; UPPER_SNAKE_CASE
// is recommended.
type CustomOperatorProvider interface {
	// SupportedOperators returns the set of codes this provider handles.
	SupportedOperators() map[string]struct{}
	// ToResolver builds a LeafResolver for the given FilterDefinition,
	// whose Op must be CUSTOM.
	ToResolver(def FilterDefinition, code string) (LeafResolver, error)
}

// CustomOperatorRegistry is a process-wide registry of CustomOperatorProvider
// instances, keyed by normalized (uppercased) operator code (spec §6, §9:
// "Global registries... are explicit process-wide services with
// register/lookup/clear").
type CustomOperatorRegistry struct {
	providers map[string]CustomOperatorProvider
}

// NewCustomOperatorRegistry returns an empty CustomOperatorRegistry.
func NewCustomOperatorRegistry() *CustomOperatorRegistry {
	return &CustomOperatorRegistry{providers: make(map[string]CustomOperatorProvider)}
}

// Register adds provider under every code it reports supporting.
func (r *CustomOperatorRegistry) Register(provider CustomOperatorProvider) {
	for code := range provider.SupportedOperators() {
		r.providers[normalizeOpCode(code)] = provider
	}
}

// Lookup returns the provider registered for code, if any.
func (r *CustomOperatorRegistry) Lookup(code string) (CustomOperatorProvider, bool) {
	p, ok := r.providers[normalizeOpCode(code)]
	return p, ok
}

// Clear removes all registered providers.
func (r *CustomOperatorRegistry) Clear() {
	r.providers = make(map[string]CustomOperatorProvider)
}

func normalizeOpCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
