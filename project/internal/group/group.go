// Package group adapts the root module's DataLoader-style batch-key
// grouping utilities (originally written for one-to-many loader fan-out) to
// the projection runner's need to attach each collection-query row to its
// parent's RowBuffer (spec §4.6 step 3).
package group

// KeyFunc extracts a grouping key from a value.
type KeyFunc[K comparable, V any] func(V) K

// ByKey groups values by a key function, preserving each group's internal
// order (the order rows were returned by the collection query).
func ByKey[K comparable, V any](values []V, keyFn KeyFunc[K, V]) map[K][]V {
	result := make(map[K][]V)
	for _, v := range values {
		key := keyFn(v)
		result[key] = append(result[key], v)
	}
	return result
}

// OrderedByKeys reorders grouped values to match the order of requested
// keys (the order parent RowBuffers were materialized in), so that a
// collection's rows attach to parents in a stable, request-independent
// order.
func OrderedByKeys[K comparable, V any](keys []K, groups map[K][]V) [][]V {
	result := make([][]V, len(keys))
	for i, key := range keys {
		result[i] = groups[key]
	}
	return result
}

// Batches splits ids into chunks of at most size, the shape the runner uses
// to keep every collection-query IN predicate at or below the 1000-id
// batching limit
// (spec §4.6 step 3).
func Batches[K any](ids []K, size int) [][]K {
	if size <= 0 {
		return [][]K{ids}
	}
	var out [][]K
	for len(ids) > 0 {
		n := size
		if n > len(ids) {
			n = len(ids)
		}
		out = append(out, ids[:n])
		ids = ids[n:]
	}
	return out
}
