package flatten

import (
	"slices"

	"github.com/aiworkoutgenerator/workoutflat/internal/engine/taxonomy"
	"github.com/aiworkoutgenerator/workoutflat/internal/model"
)

// Gap is a disagreement between a catalog and a key table.
type Gap struct {
	ID    string      `json:"id"`
	Level model.Level `json:"level,omitempty"`
	// Want is the level the key table declares, set for level mismatches.
	Want model.Level `json:"want,omitempty"`
}

// CoverageReport lists the gaps between a catalog and the key table of its
// domain.
type CoverageReport struct {
	Domain model.Domain `json:"domain"`
	// Unmapped nodes would be dropped when selected.
	Unmapped []Gap `json:"unmapped,omitempty"`
	// Orphaned table entries have no catalog node.
	Orphaned []Gap `json:"orphaned,omitempty"`
	// Mismatched entries exist in both with different levels.
	Mismatched []Gap `json:"mismatched,omitempty"`
}

// OK reports whether the catalog and table agree exactly.
func (r CoverageReport) OK() bool {
	return len(r.Unmapped) == 0 && len(r.Orphaned) == 0 && len(r.Mismatched) == 0
}

// Coverage compares cat against the key table of its domain.
func Coverage(cat *taxonomy.Catalog) CoverageReport {
	rep := CoverageReport{Domain: cat.Domain()}
	table := tableLevels(cat.Domain())

	for _, n := range cat.Nodes() {
		want, ok := table[n.ID]
		switch {
		case !ok:
			rep.Unmapped = append(rep.Unmapped, Gap{ID: n.ID, Level: n.Level})
		case want != n.Level:
			rep.Mismatched = append(rep.Mismatched, Gap{ID: n.ID, Level: n.Level, Want: want})
		}
	}

	ids := make([]string, 0, len(table))
	for id := range table {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		if _, ok := cat.Node(id); !ok {
			rep.Orphaned = append(rep.Orphaned, Gap{ID: id, Want: table[id]})
		}
	}
	return rep
}

// tableLevels returns the level each key-table entry of d declares.
func tableLevels(d model.Domain) map[string]model.Level {
	switch d {
	case model.Focus:
		return tierLevels(focusFlags)
	case model.Equipment:
		return tierLevels(equipmentFlags)
	case model.Soreness:
		return ratedLevels(sorenessFlags)
	case model.Stress:
		return ratedLevels(stressFlags)
	}
	return nil
}

func tierLevels[R any](table map[string]tierFlag[R]) map[string]model.Level {
	out := make(map[string]model.Level, len(table))
	for id, tf := range table {
		out[id] = tf.level
	}
	return out
}

func ratedLevels[R any](table map[string]ratedFlag[R]) map[string]model.Level {
	out := make(map[string]model.Level, len(table))
	for id := range table {
		out[id] = model.LevelCategory
	}
	return out
}
