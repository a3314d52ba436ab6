package selection

import (
	"slices"

	"github.com/aiworkoutgenerator/workoutflat/internal/engine/taxonomy"
	"github.com/aiworkoutgenerator/workoutflat/internal/model"
)

// Manager applies mutations to selections of one domain. Every mutation
// returns a new Selection; the caller's map is never modified. A Manager
// holds no selection state and is safe for concurrent use.
type Manager struct {
	catalog *taxonomy.Catalog
}

// NewManager binds a Manager to a catalog. A nil catalog is allowed and
// treats every id as unknown.
func NewManager(cat *taxonomy.Catalog) *Manager {
	return &Manager{catalog: cat}
}

// Catalog returns the taxonomy the manager resolves ids against.
func (m *Manager) Catalog() *taxonomy.Catalog {
	return m.catalog
}

// Toggle selects id when it is absent and deselects it otherwise.
//
// Selecting records a taxonomy snapshot (label, parent, children) and
// returns the child ids so the caller can expand that subtree. Deselecting
// removes id together with every taxonomy descendant, whether or not the
// descendants were chosen explicitly, and returns nil.
//
// Ids unknown to the taxonomy are accepted as opaque keys labelled by the
// id itself.
func (m *Manager) Toggle(sel Selection, id string, level model.Level) (Selection, []string) {
	next := sel.Clone()

	if sel.Has(id) {
		delete(next, id)
		for _, d := range m.catalog.Descendants(id, level) {
			delete(next, d)
		}
		return next, nil
	}

	parent, _ := m.catalog.Parent(id, level)
	children := m.catalog.Children(id, level)
	next[id] = Entry{
		Selected:  true,
		Label:     m.catalog.Label(id),
		Level:     level,
		ParentKey: parent,
		Children:  children,
	}
	return next, slices.Clone(children)
}

// ToggleCategory flips presence of a single-tier category. There is no
// cascade: categories have no children. An existing rating is discarded
// when the category is removed.
func (m *Manager) ToggleCategory(sel Selection, id string) Selection {
	next := sel.Clone()
	if sel.Has(id) {
		delete(next, id)
		return next
	}
	next[id] = Entry{
		Selected: true,
		Label:    m.catalog.Label(id),
		Level:    model.LevelCategory,
	}
	return next
}

// SetRating overwrites the rating of a category that is already present.
// Values outside 1–5 are stored as given. When the category is absent the
// selection is returned as is.
func (m *Manager) SetRating(sel Selection, id string, rating int) Selection {
	if !sel.Has(id) {
		return sel
	}
	next := sel.Clone()
	e := next[id]
	e.Rating = &rating
	next[id] = e
	return next
}

// Clear returns an empty selection.
func (m *Manager) Clear() Selection {
	return Selection{}
}
