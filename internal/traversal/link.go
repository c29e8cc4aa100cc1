// Package traversal walks edge lists without inspecting the entities behind
// them. Only endpoints and the bidirectional flag matter.
package traversal

import "sort"

// Link is one edge as the traversal engine sees it.
type Link struct {
	Source        string
	Target        string
	Bidirectional bool
}

// Linker is implemented by edge types that can be reduced to a Link.
type Linker interface {
	Endpoints() (source, target string, bidirectional bool)
}

// Links converts any edge slice into Links.
func Links[T Linker](items []T) []Link {
	out := make([]Link, 0, len(items))
	for _, item := range items {
		source, target, bidirectional := item.Endpoints()
		out = append(out, Link{Source: source, Target: target, Bidirectional: bidirectional})
	}
	return out
}

// Set is a set of node ids.
type Set map[string]struct{}

func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the members in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// nodeOrder lists every endpoint in order of first appearance.
func nodeOrder(links []Link) []string {
	seen := make(map[string]struct{})
	var order []string
	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		order = append(order, id)
	}
	for _, l := range links {
		add(l.Source)
		add(l.Target)
	}
	return order
}
