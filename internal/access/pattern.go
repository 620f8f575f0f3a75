package access

import "strings"

// pattern is a path matcher supporting exact paths and a trailing "/**"
// that matches the prefix itself and everything below it.
type pattern struct {
	prefix string
	tree   bool
}

func compile(raw string) pattern {
	if prefix, ok := strings.CutSuffix(raw, "/**"); ok {
		return pattern{prefix: prefix, tree: true}
	}
	return pattern{prefix: raw}
}

func (p pattern) match(path string) bool {
	if !p.tree {
		return path == p.prefix
	}
	if path == p.prefix {
		return true
	}
	if p.prefix == "" {
		return true
	}
	return strings.HasPrefix(path, p.prefix+"/")
}
