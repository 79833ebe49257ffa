package defs

import (
	"sort"
	"strings"
)

// MaxTagValueLen is the longest tag map value kept verbatim, in runes.
const MaxTagValueLen = 200

const ellipsis = "…"

// TagMap indexes every tag name and attribute name in the subtree of el
// to the deduplicated, sorted set of trimmed text and attribute values
// observed for it. Blank values are skipped and long values truncated.
func TagMap(el *Element) map[string][]string {
	seen := make(map[string]map[string]struct{})
	add := func(name, value string) {
		v := strings.TrimSpace(value)
		if v == "" {
			return
		}
		v = truncate(v)
		set, ok := seen[name]
		if !ok {
			set = make(map[string]struct{})
			seen[name] = set
		}
		set[v] = struct{}{}
	}

	el.Walk(func(n *Element) {
		for _, a := range n.Attrs {
			add(a.Name, a.Value)
		}
		add(n.Name, n.Text)
	})

	out := make(map[string][]string, len(seen))
	for name, set := range seen {
		vals := make([]string, 0, len(set))
		for v := range set {
			vals = append(vals, v)
		}
		sort.Strings(vals)
		out[name] = vals
	}
	return out
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= MaxTagValueLen {
		return s
	}
	return string(r[:MaxTagValueLen-3]) + ellipsis
}
