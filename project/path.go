package project

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/syssam/filterql"
)

// CollectionOptions carries the bracket-notation options parsed for one
// collection path (spec §4.6 step 1): `orders[limit=10,offset=0,sort=date:desc]`.
type CollectionOptions struct {
	HasLimit  bool
	Limit     int
	HasOffset bool
	Offset    int
	SortField string
	SortDesc  bool
}

// ExpandPaths expands comma-group notation (`address.(city,street)`) and
// strips bracket collection-option notation from a requested list of DTO
// paths, returning the flat individual paths plus a collectionPath →
// CollectionOptions mapping (spec §4.6 step 1).
func ExpandPaths(requested []string) ([]string, map[string]CollectionOptions, error) {
	var expanded []string
	for _, raw := range requested {
		expanded = append(expanded, expandCommaGroup(raw)...)
	}

	paths := make([]string, 0, len(expanded))
	options := make(map[string]CollectionOptions)
	for _, p := range expanded {
		path, bracket, hasBracket := splitBracket(p)
		if !hasBracket {
			paths = append(paths, p)
			continue
		}
		opt, err := parseCollectionOptions(bracket)
		if err != nil {
			return nil, nil, &filterql.ProjectionDefinitionError{Path: p, Reason: err.Error()}
		}
		options[path] = opt
		paths = append(paths, path)
	}
	return paths, options, nil
}

// splitBracket splits "orders[limit=10]" into ("orders", "limit=10", true);
// a path with no trailing bracket returns (path, "", false).
func splitBracket(path string) (string, string, bool) {
	if !strings.HasSuffix(path, "]") {
		return path, "", false
	}
	open := strings.LastIndex(path, "[")
	if open < 0 {
		return path, "", false
	}
	return path[:open], path[open+1 : len(path)-1], true
}

// expandCommaGroup recursively expands the first "(a,b,c)" sibling group
// found in path, if any.
func expandCommaGroup(path string) []string {
	open := strings.Index(path, ".(")
	if open < 0 {
		return []string{path}
	}
	closeIdx := strings.Index(path[open:], ")")
	if closeIdx < 0 {
		return []string{path}
	}
	closeIdx += open

	prefix := path[:open]
	group := path[open+2 : closeIdx]
	suffix := path[closeIdx+1:]

	var out []string
	for _, part := range strings.Split(group, ",") {
		part = strings.TrimSpace(part)
		combined := prefix + "." + part + suffix
		out = append(out, expandCommaGroup(combined)...)
	}
	return out
}

func parseCollectionOptions(raw string) (CollectionOptions, error) {
	var opt CollectionOptions
	if raw == "" {
		return opt, nil
	}
	for _, pair := range strings.Split(raw, ",") {
		kv := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(kv) != 2 {
			return opt, fmt.Errorf("malformed collection option %q", pair)
		}
		key, val := strings.TrimSpace(kv[0]), strings.TrimSpace(kv[1])
		switch key {
		case "limit":
			n, err := strconv.Atoi(val)
			if err != nil {
				return opt, fmt.Errorf("invalid limit %q: %w", val, err)
			}
			opt.HasLimit, opt.Limit = true, n
		case "offset":
			n, err := strconv.Atoi(val)
			if err != nil {
				return opt, fmt.Errorf("invalid offset %q: %w", val, err)
			}
			opt.HasOffset, opt.Offset = true, n
		case "sort":
			field, dir, hasDir := strings.Cut(val, ":")
			opt.SortField = field
			if hasDir && strings.EqualFold(dir, "desc") {
				opt.SortDesc = true
			}
		default:
			return opt, fmt.Errorf("unknown collection option %q", key)
		}
	}
	return opt, nil
}

// cutPath splits a dot-path into its first segment and the remainder.
func cutPath(path string) (first, rest string, hasRest bool) {
	return strings.Cut(path, ".")
}
