// Package pagetree assembles the flat, owner-scoped page records returned by
// a store into the ordered forest the navigation UI renders, and flattens
// that forest into visible sidebar rows.
package pagetree

import (
	"sort"

	"github.com/notefold/notefold/pkg/models"
)

// Node is one page with its resolved children, ordered by Position.
type Node struct {
	Page     *models.Page `json:"page"`
	Children []*Node      `json:"children"`
}

// Assemble builds an ordered forest from a flat page list.
//
// It runs two passes over the input. The first creates a node per page,
// indexed by id. The second links each node under its parent, or into the
// root list when ParentID is nil or refers to a page absent from the input
// (deleted parents leave their children reachable as roots rather than
// orphaned). Finally every sibling group is sorted ascending by Position;
// the sort is stable, so equal positions keep their input order.
//
// No ancestor chain is ever walked, so cyclic or self-referential parent
// data cannot cause non-termination; every input page appears in the forest
// exactly once. Duplicate ids violate data integrity and yield an
// unspecified result. A nil or empty input returns an empty forest.
func Assemble(pages []*models.Page) []*Node {
	byID := make(map[models.PageID]*Node, len(pages))
	for _, p := range pages {
		byID[p.ID] = &Node{Page: p, Children: []*Node{}}
	}

	roots := []*Node{}
	for _, p := range pages {
		node := byID[p.ID]
		if p.ParentID != nil {
			if parent, ok := byID[*p.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	sortForest(roots)
	return roots
}

func sortForest(nodes []*Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].Page.Position < nodes[j].Page.Position
	})
	for _, n := range nodes {
		sortForest(n.Children)
	}
}
