// Package commentary holds the pure tree operations over the per-verse
// commentary forest. Nodes live in a flat table keyed by a nullable parent id;
// the forest view is assembled on demand from an adjacency map, never kept as
// a cyclic object graph.
package commentary

import (
	"sort"

	"granthalaya/api/internal/store"
)

// UndeclaredOrder sorts commentaries whose name has no declared definition
// after every declared one.
const UndeclaredOrder = 999

// Node is one commentary with its assembled children. SubCommentaries is
// omitted from JSON entirely for leaves; callers treat absent and empty as
// equivalent.
type Node struct {
	store.Commentary
	SubCommentaries []*Node `json:"subCommentaries,omitempty"`
}

// OrderFor builds a sibling-order lookup from a grantha's declared
// commentary definitions.
func OrderFor(defs []store.CommentaryDefinition) func(name string) int {
	byName := make(map[string]int, len(defs))
	for _, def := range defs {
		byName[def.Name] = def.Order
	}
	return func(name string) int {
		if order, ok := byName[name]; ok {
			return order
		}
		return UndeclaredOrder
	}
}

// BuildForest assembles the forest view of a verse's flat commentary set.
// Roots are nodes with no parent, plus nodes whose parent id does not resolve
// within the set (a deleted or never-created parent must not make a node
// disappear from the view). Siblings at every depth sort by the declared
// order of their commentary name, then by creation time. The returned forest
// always contains exactly len(nodes) nodes.
func BuildForest(nodes []store.Commentary, orderOf func(name string) int) []*Node {
	if orderOf == nil {
		orderOf = func(string) int { return UndeclaredOrder }
	}

	inSet := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		inSet[n.ID] = true
	}

	children := make(map[string][]store.Commentary)
	var roots []store.Commentary
	for _, n := range nodes {
		if n.ParentCommentaryID == nil || *n.ParentCommentaryID == "" || !inSet[*n.ParentCommentaryID] {
			roots = append(roots, n)
			continue
		}
		parent := *n.ParentCommentaryID
		children[parent] = append(children[parent], n)
	}

	var build func(siblings []store.Commentary) []*Node
	build = func(siblings []store.Commentary) []*Node {
		sortSiblings(siblings, orderOf)
		out := make([]*Node, 0, len(siblings))
		for _, c := range siblings {
			node := &Node{Commentary: c}
			if kids := children[c.ID]; len(kids) > 0 {
				node.SubCommentaries = build(kids)
			}
			out = append(out, node)
		}
		return out
	}
	return build(roots)
}

func sortSiblings(siblings []store.Commentary, orderOf func(name string) int) {
	sort.SliceStable(siblings, func(i, j int) bool {
		oi, oj := orderOf(siblings[i].CommentaryName), orderOf(siblings[j].CommentaryName)
		if oi != oj {
			return oi < oj
		}
		return siblings[i].CreatedAt.Before(siblings[j].CreatedAt)
	})
}

// Count returns the total number of nodes in a forest at every depth.
func Count(forest []*Node) int {
	total := 0
	for _, node := range forest {
		total += 1 + Count(node.SubCommentaries)
	}
	return total
}
