package workoutflat

import "fmt"

// Node is one taxonomy entry with its subtree.
type Node struct {
	ID       string
	Label    string
	Level    Level
	Children []Node
}

// Taxonomy returns the tree of a taxonomy-backed domain. This is read-only;
// consumers can inspect the available ids but not modify them.
func (f *Flattener) Taxonomy(domain Domain) ([]Node, error) {
	cat := f.engine.Catalog(domain)
	if cat == nil {
		return nil, fmt.Errorf("%w: %q has no taxonomy", ErrUnknownDomain, domain)
	}

	var build func(id string) Node
	build = func(id string) Node {
		n, _ := cat.Node(id)
		out := Node{ID: n.ID, Label: n.Label, Level: n.Level}
		for _, c := range n.ChildIDs {
			out.Children = append(out.Children, build(c))
		}
		return out
	}

	roots := cat.Roots()
	nodes := make([]Node, len(roots))
	for i, id := range roots {
		nodes[i] = build(id)
	}
	return nodes, nil
}
