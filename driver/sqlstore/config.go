package sqlstore

// TableConfig names the physical table backing an entity type. Every column
// referenced by a FieldSchema (scalar, hidden id, hidden parent-reference)
// is assumed to live directly on this table — sqlstore has no join support,
// matching the reference scope of an IN-predicate-per-depth execution model
// rather than a joined eager-load.
type TableConfig struct {
	Table string
}

// CollectionTableConfig names the table and parent-reference column backing
// one projected collection path, for Aggregate's GROUP BY queries (spec
// §4.6 execution step 4).
type CollectionTableConfig struct {
	Table        string
	ParentColumn string
}

// Config maps each projected entity type to its table, and each projected
// collection path to its aggregate table/parent-column pair.
type Config struct {
	Tables      map[string]TableConfig
	Collections map[string]CollectionTableConfig
}

func (c Config) tableFor(entityType string) (string, bool) {
	t, ok := c.Tables[entityType]
	if !ok {
		return "", false
	}
	return t.Table, true
}
