// Package selection holds the sparse, user-driven selection state of one
// domain and the cascade-aware mutations applied to it.
package selection

import (
	"maps"
	"slices"

	"github.com/aiworkoutgenerator/workoutflat/internal/model"
)

// Entry records one selected node. ParentKey and Children are snapshots of
// the taxonomy at selection time; they describe the node and do not require
// the parent or children to be selected.
type Entry struct {
	Selected  bool        `json:"selected"`
	Label     string      `json:"label"`
	Level     model.Level `json:"level,omitempty"`
	Rating    *int        `json:"rating,omitempty"`
	ParentKey string      `json:"parentKey,omitempty"`
	Children  []string    `json:"children,omitempty"`
}

// Selection maps node ids to entries. Key uniqueness is the only invariant;
// iteration order carries no meaning.
type Selection map[string]Entry

// Has reports whether id is present and marked selected.
func (s Selection) Has(id string) bool {
	e, ok := s[id]
	return ok && e.Selected
}

// Clone returns a deep copy that shares no slices or pointers with s.
func (s Selection) Clone() Selection {
	out := make(Selection, len(s))
	for id, e := range s {
		out[id] = e.clone()
	}
	return out
}

// IDs returns the keys of the selected entries in sorted order.
func (s Selection) IDs() []string {
	ids := make([]string, 0, len(s))
	for id, e := range s {
		if e.Selected {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// Equal reports whether two selections hold the same entries.
func (s Selection) Equal(o Selection) bool {
	return maps.EqualFunc(s, o, func(a, b Entry) bool { return a.equal(b) })
}

func (e Entry) clone() Entry {
	if e.Rating != nil {
		r := *e.Rating
		e.Rating = &r
	}
	if e.Children != nil {
		e.Children = slices.Clone(e.Children)
	}
	return e
}

func (e Entry) equal(o Entry) bool {
	if e.Selected != o.Selected || e.Label != o.Label || e.Level != o.Level || e.ParentKey != o.ParentKey {
		return false
	}
	if (e.Rating == nil) != (o.Rating == nil) || (e.Rating != nil && *e.Rating != *o.Rating) {
		return false
	}
	return slices.Equal(e.Children, o.Children)
}

// RatingValue returns the rating, or 0 when none has been set.
func (e Entry) RatingValue() int {
	if e.Rating == nil {
		return 0
	}
	return *e.Rating
}
