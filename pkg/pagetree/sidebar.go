package pagetree

import "github.com/notefold/notefold/pkg/models"

// ExpandedSet tracks which pages the user has expanded in the sidebar.
// It is pure set membership: toggling a page in or out never touches the
// stored pages or the assembled forest.
type ExpandedSet map[models.PageID]struct{}

// NewExpandedSet returns an empty set.
func NewExpandedSet() ExpandedSet {
	return make(ExpandedSet)
}

// Has reports whether id is expanded.
func (s ExpandedSet) Has(id models.PageID) bool {
	_, ok := s[id]
	return ok
}

// Expand marks id as expanded.
func (s ExpandedSet) Expand(id models.PageID) {
	s[id] = struct{}{}
}

// Collapse removes id from the set.
func (s ExpandedSet) Collapse(id models.PageID) {
	delete(s, id)
}

// Toggle flips the expansion state of id.
func (s ExpandedSet) Toggle(id models.PageID) {
	if s.Has(id) {
		s.Collapse(id)
	} else {
		s.Expand(id)
	}
}

// Row is one visible sidebar entry produced by Flatten.
type Row struct {
	Node     *Node
	Depth    int
	Expanded bool
}

// Flatten walks the forest in pre-order and returns the rows the sidebar
// should render. A node's children are visited when the node is expanded or
// when the node is a root (depth 0); collapsed subtrees below the first
// level contribute their top node and nothing beneath it.
func Flatten(forest []*Node, expanded ExpandedSet) []Row {
	rows := []Row{}
	var visit func(n *Node, depth int)
	visit = func(n *Node, depth int) {
		isExpanded := expanded.Has(n.Page.ID)
		rows = append(rows, Row{Node: n, Depth: depth, Expanded: isExpanded})
		if isExpanded || depth == 0 {
			for _, child := range n.Children {
				visit(child, depth+1)
			}
		}
	}
	for _, root := range forest {
		visit(root, 0)
	}
	return rows
}
