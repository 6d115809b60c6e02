package content

import (
	"sort"
	"strings"
)

// Paths is a tree of requested relations, e.g. ["createdBy", "connections.term"]
// becomes {createdBy: {}, connections: {term: {}}}.
type Paths map[string]Paths

// ExpandPaths merges dotted relation strings into a Paths tree. Blank
// segments are dropped.
func ExpandPaths(relations []string) Paths {
	root := Paths{}
	for _, rel := range relations {
		node := root
		for _, seg := range strings.Split(rel, ".") {
			seg = strings.TrimSpace(seg)
			if seg == "" {
				continue
			}
			next, ok := node[seg]
			if !ok {
				next = Paths{}
				node[seg] = next
			}
			node = next
		}
	}
	return root
}

// CollapsePaths flattens a tree back to sorted dotted leaf paths.
func CollapsePaths(p Paths) []string {
	out := collapse(p, "", nil)
	sort.Strings(out)
	return out
}

func collapse(p Paths, prefix string, out []string) []string {
	for key, sub := range p {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		if len(sub) == 0 {
			out = append(out, path)
			continue
		}
		out = collapse(sub, path, out)
	}
	return out
}

// SplitRelations parses the comma separated ?relations= query value.
func SplitRelations(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, r := range strings.Split(raw, ",") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}
