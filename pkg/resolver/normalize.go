// Package resolver extracts a canonical fact record from linked-data
// documents describing museum objects. Input arrives in one of two
// encodings: an explicit node list under "@graph", or a single deeply
// nested object. Both normalize to a flat node list plus an id-lookup
// table, and every extractor reads that uniform shape.
package resolver

import (
	"sort"
	"strings"
)

// asList normalizes a value to a slice: nil becomes empty, a non-slice
// becomes a one-element slice.
func asList(v any) []any {
	if v == nil {
		return nil
	}
	if list, ok := v.([]any); ok {
		return list
	}
	return []any{v}
}

// asNode returns v as an object, or nil when it is not one.
func asNode(v any) map[string]any {
	node, _ := v.(map[string]any)
	return node
}

// nodeID extracts the node identifier from @id, id, or _id.
func nodeID(node map[string]any) string {
	for _, key := range []string{"@id", "id", "_id"} {
		if s, ok := node[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// nodeTypes extracts all type values, handling both "type" and "@type"
// keys and both string and list forms.
func nodeTypes(node map[string]any) []string {
	v := node["type"]
	if v == nil {
		v = node["@type"]
	}
	switch t := v.(type) {
	case string:
		return []string{t}
	case []any:
		types := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				types = append(types, s)
			}
		}
		return types
	}
	return nil
}

// hasType reports whether the node carries the given short type name. A
// type expressed as a URI ending in "/Name", "#Name", or ":Name" counts as
// equivalent to the short name.
func hasType(node map[string]any, short string) bool {
	for _, t := range nodeTypes(node) {
		if t == short ||
			strings.HasSuffix(t, "/"+short) ||
			strings.HasSuffix(t, "#"+short) ||
			strings.HasSuffix(t, ":"+short) {
			return true
		}
	}
	return false
}

// label extracts a human-readable label from a node, trying textual
// content first and generic label fields after.
func label(node map[string]any) string {
	for _, key := range []string{"content", "_label", "label", "name"} {
		if s, ok := node[key].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// normalize converts a linked-data document to a flat node list. A
// document with an explicit "@graph" list is used as-is; otherwise every
// sub-object carrying an identifier or type tag is collected recursively,
// the root first, sub-objects in sorted key order so the list is stable
// across runs.
func normalize(doc map[string]any) []map[string]any {
	if graph, ok := doc["@graph"].([]any); ok {
		nodes := make([]map[string]any, 0, len(graph))
		for _, item := range graph {
			if node := asNode(item); node != nil {
				nodes = append(nodes, node)
			}
		}
		return nodes
	}

	var nodes []map[string]any
	var walk func(v any)
	walk = func(v any) {
		switch obj := v.(type) {
		case map[string]any:
			if nodeID(obj) != "" || len(nodeTypes(obj)) > 0 {
				nodes = append(nodes, obj)
			}
			keys := make([]string, 0, len(obj))
			for key := range obj {
				keys = append(keys, key)
			}
			sort.Strings(keys)
			for _, key := range keys {
				walk(obj[key])
			}
		case []any:
			for _, item := range obj {
				walk(item)
			}
		}
	}
	walk(doc)

	return nodes
}

// buildIDMap builds the identifier-to-node lookup table used for
// reference resolution.
func buildIDMap(nodes []map[string]any) map[string]map[string]any {
	m := make(map[string]map[string]any, len(nodes))
	for _, node := range nodes {
		if id := nodeID(node); id != "" {
			if _, seen := m[id]; !seen {
				m[id] = node
			}
		}
	}
	return m
}

// resolveRef resolves a reference-only object to its full node. Any
// object whose identifier appears in the lookup table resolves; everything
// else passes through unchanged.
func resolveRef(v any, idMap map[string]map[string]any) any {
	if node := asNode(v); node != nil {
		if id := nodeID(node); id != "" {
			if full, ok := idMap[id]; ok {
				return full
			}
		}
	}
	return v
}

// labelOf resolves v and extracts its label, or "" when none.
func labelOf(v any, idMap map[string]map[string]any) string {
	if node := asNode(resolveRef(v, idMap)); node != nil {
		return label(node)
	}
	return ""
}

// collectLabels gathers unique labels from a list value, preserving
// first-seen order.
func collectLabels(v any, idMap map[string]map[string]any) []string {
	var out []string
	seen := make(map[string]bool)
	for _, item := range asList(v) {
		if lab := labelOf(item, idMap); lab != "" && !seen[lab] {
			seen[lab] = true
			out = append(out, lab)
		}
	}
	return out
}
