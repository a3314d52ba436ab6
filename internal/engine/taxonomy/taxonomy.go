package taxonomy

import (
	"fmt"
	"slices"

	"github.com/aiworkoutgenerator/workoutflat/internal/model"
)

// Catalog is the immutable, indexed hierarchy of one domain. Parent, child
// and descendant lookups are precomputed at construction, so every query is
// a map read. A Catalog is safe for concurrent use; a nil *Catalog behaves
// as an empty taxonomy.
type Catalog struct {
	domain      model.Domain
	tiers       int
	nodes       map[string]model.TaxonomyNode
	order       []string // depth-first, as supplied
	roots       []string
	descendants map[string][]string
}

// New indexes a flat node list. Nodes must be ordered so that the forest can
// be walked depth-first by following ChildIDs from the roots; the node order
// is retained by Nodes.
func New(domain model.Domain, tiers int, nodes []model.TaxonomyNode) (*Catalog, error) {
	if tiers != 1 && tiers != 3 {
		return nil, fmt.Errorf("taxonomy %s: unsupported tier count %d", domain, tiers)
	}

	c := &Catalog{
		domain:      domain,
		tiers:       tiers,
		nodes:       make(map[string]model.TaxonomyNode, len(nodes)),
		descendants: make(map[string][]string, len(nodes)),
	}

	for _, n := range nodes {
		if n.ID == "" {
			return nil, fmt.Errorf("taxonomy %s: node with empty id", domain)
		}
		if _, dup := c.nodes[n.ID]; dup {
			return nil, fmt.Errorf("taxonomy %s: duplicate node id %q", domain, n.ID)
		}
		if !levelAllowed(tiers, n.Level) {
			return nil, fmt.Errorf("taxonomy %s: node %q has level %q in a %d-tier taxonomy", domain, n.ID, n.Level, tiers)
		}
		if len(n.ChildIDs) == 0 {
			n.ChildIDs = nil
		} else {
			n.ChildIDs = slices.Clone(n.ChildIDs)
		}
		c.nodes[n.ID] = n
		c.order = append(c.order, n.ID)
		if n.ParentID == "" {
			c.roots = append(c.roots, n.ID)
		}
	}

	for _, id := range c.order {
		if err := c.checkLinks(c.nodes[id]); err != nil {
			return nil, fmt.Errorf("taxonomy %s: %w", domain, err)
		}
	}

	// Parent edges always climb exactly one tier, so the walk terminates.
	for _, id := range c.order {
		if d := c.collect(id, nil); len(d) > 0 {
			c.descendants[id] = d
		}
	}
	return c, nil
}

func levelAllowed(tiers int, l model.Level) bool {
	if tiers == 1 {
		return l == model.LevelCategory
	}
	return l == model.LevelPrimary || l == model.LevelSecondary || l == model.LevelTertiary
}

func (c *Catalog) checkLinks(n model.TaxonomyNode) error {
	if n.ParentID == "" {
		if n.Level != model.LevelPrimary && n.Level != model.LevelCategory {
			return fmt.Errorf("%s node %q has no parent", n.Level, n.ID)
		}
	} else {
		p, ok := c.nodes[n.ParentID]
		if !ok {
			return fmt.Errorf("node %q references unknown parent %q", n.ID, n.ParentID)
		}
		if p.Level != n.Level.ParentLevel() {
			return fmt.Errorf("node %q (%s) cannot sit under %q (%s)", n.ID, n.Level, p.ID, p.Level)
		}
		if !slices.Contains(p.ChildIDs, n.ID) {
			return fmt.Errorf("parent %q does not list child %q", p.ID, n.ID)
		}
	}
	for _, cid := range n.ChildIDs {
		child, ok := c.nodes[cid]
		if !ok {
			return fmt.Errorf("node %q lists unknown child %q", n.ID, cid)
		}
		if child.ParentID != n.ID {
			return fmt.Errorf("child %q of %q names parent %q", cid, n.ID, child.ParentID)
		}
	}
	return nil
}

func (c *Catalog) collect(id string, acc []string) []string {
	for _, cid := range c.nodes[id].ChildIDs {
		acc = append(acc, cid)
		acc = c.collect(cid, acc)
	}
	return acc
}

// Domain returns the domain this catalog describes.
func (c *Catalog) Domain() model.Domain {
	if c == nil {
		return ""
	}
	return c.domain
}

// Tiers returns 1 for category domains and 3 for hierarchical ones.
func (c *Catalog) Tiers() int {
	if c == nil {
		return 0
	}
	return c.tiers
}

// Parent returns the id of the node one tier above id. Secondary nodes
// resolve to their primary, tertiary nodes to their secondary; primary,
// category and unknown nodes, or a level that does not match the node,
// report false.
func (c *Catalog) Parent(id string, level model.Level) (string, bool) {
	n, ok := c.lookup(id, level)
	if !ok || n.ParentID == "" {
		return "", false
	}
	return n.ParentID, true
}

// Children returns the direct children of id, or nil for leaves.
func (c *Catalog) Children(id string, level model.Level) []string {
	n, ok := c.lookup(id, level)
	if !ok {
		return nil
	}
	return slices.Clone(n.ChildIDs)
}

// Descendants returns every node below id: for a primary, its secondaries
// and all of their tertiaries; for a secondary, its tertiaries.
func (c *Catalog) Descendants(id string, level model.Level) []string {
	if _, ok := c.lookup(id, level); !ok {
		return nil
	}
	return slices.Clone(c.descendants[id])
}

func (c *Catalog) lookup(id string, level model.Level) (model.TaxonomyNode, bool) {
	if c == nil {
		return model.TaxonomyNode{}, false
	}
	n, ok := c.nodes[id]
	if !ok || n.Level != level {
		return model.TaxonomyNode{}, false
	}
	return n, true
}

// Node returns the node with the given id.
func (c *Catalog) Node(id string) (model.TaxonomyNode, bool) {
	if c == nil {
		return model.TaxonomyNode{}, false
	}
	n, ok := c.nodes[id]
	if ok {
		n.ChildIDs = slices.Clone(n.ChildIDs)
	}
	return n, ok
}

// Label returns the display label for id, falling back to id itself.
func (c *Catalog) Label(id string) string {
	if n, ok := c.Node(id); ok {
		return n.Label
	}
	return id
}

// Nodes returns every node in depth-first order.
func (c *Catalog) Nodes() []model.TaxonomyNode {
	if c == nil {
		return nil
	}
	out := make([]model.TaxonomyNode, 0, len(c.order))
	for _, id := range c.order {
		n, _ := c.Node(id)
		out = append(out, n)
	}
	return out
}

// Roots returns the ids of the top-level nodes.
func (c *Catalog) Roots() []string {
	if c == nil {
		return nil
	}
	return slices.Clone(c.roots)
}

// Len returns the number of nodes.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.nodes)
}
