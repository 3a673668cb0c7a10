package tree

import (
	"github.com/mesh-intelligence/cardsets/pkg/types"
)

// Node is one card set in a Forest with its children, sorted by name.
type Node struct {
	CardSet  *types.CardSet
	Children []*Node
	// MissingParent is set on a top-level node whose parent name matches no
	// stored card set.
	MissingParent bool
}

// Loop is a parent loop together with everything that hangs off it. Tree is
// rooted at Names[0].
type Loop struct {
	Names []string
	Tree  *Node
}

// Forest is the whole table arranged for display: the trees under each root
// and, separately, the loops that no root can reach.
type Forest struct {
	Roots []*Node
	Loops []Loop
}

// Forest builds the nested listing of the table. Roots and every level of
// children are sorted by name. Card sets whose parent is missing are listed
// as roots with MissingParent set. Card sets in or under a loop appear only
// in Loops.
func (s *Service) Forest() (*Forest, error) {
	all, err := s.table.Fetch(nil)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]*types.CardSet, len(all))
	for _, cs := range all {
		byName[cs.Name] = cs
	}
	// all is ordered by name, so each child list is too.
	childrenOf := make(map[string][]*types.CardSet)
	for _, cs := range all {
		if !cs.IsRoot() {
			childrenOf[cs.Parent] = append(childrenOf[cs.Parent], cs)
		}
	}

	visited := make(map[string]bool, len(all))
	var build func(cs *types.CardSet) *Node
	build = func(cs *types.CardSet) *Node {
		visited[cs.Name] = true
		node := &Node{CardSet: cs, Children: []*Node{}}
		for _, child := range childrenOf[cs.Name] {
			if visited[child.Name] {
				continue
			}
			node.Children = append(node.Children, build(child))
		}
		return node
	}

	forest := &Forest{Roots: []*Node{}, Loops: []Loop{}}
	for _, cs := range all {
		_, parentKnown := byName[cs.Parent]
		if cs.IsRoot() || !parentKnown {
			node := build(cs)
			node.MissingParent = !cs.IsRoot()
			forest.Roots = append(forest.Roots, node)
		}
	}

	var rest []*types.CardSet
	for _, cs := range all {
		if !visited[cs.Name] {
			rest = append(rest, cs)
		}
	}
	if len(rest) == 0 {
		return forest, nil
	}

	// Everything left either sits on a loop or descends from one, and every
	// walk from it ends in a loop, since orphans and roots were consumed above.
	loops, err := findLoops(rest, snapshot(all))
	if err != nil {
		return nil, err
	}
	for _, names := range loops {
		forest.Loops = append(forest.Loops, Loop{Names: names, Tree: build(byName[names[0]])})
	}
	return forest, nil
}

// Walk calls fn for every node in the forest in display order (roots first,
// then loops), depth first, with the node's depth below its top-level node.
func (f *Forest) Walk(fn func(node *Node, depth int)) {
	var visit func(n *Node, depth int)
	visit = func(n *Node, depth int) {
		fn(n, depth)
		for _, child := range n.Children {
			visit(child, depth+1)
		}
	}
	for _, root := range f.Roots {
		visit(root, 0)
	}
	for _, loop := range f.Loops {
		visit(loop.Tree, 0)
	}
}
