package flatten

import (
	"slices"

	"github.com/aiworkoutgenerator/workoutflat/internal/engine/selection"
	"github.com/aiworkoutgenerator/workoutflat/internal/model"
)

// tierFlag binds a taxonomy id to its level and the record field it sets.
type tierFlag[R any] struct {
	level model.Level
	flag  func(*R) *bool
}

func primary[R any](f func(*R) *bool) tierFlag[R]   { return tierFlag[R]{model.LevelPrimary, f} }
func secondary[R any](f func(*R) *bool) tierFlag[R] { return tierFlag[R]{model.LevelSecondary, f} }
func tertiary[R any](f func(*R) *bool) tierFlag[R]  { return tierFlag[R]{model.LevelTertiary, f} }

type tierCounts struct {
	selection int
	primary   int
	secondary int
	tertiary  int
}

// applyTiers sets the flag of every selected, mapped entry and counts it by
// the level its table entry declares. Unmapped ids are returned sorted and
// contribute to nothing else.
func applyTiers[R any](sel selection.Selection, table map[string]tierFlag[R], rec *R) (tierCounts, []string) {
	var tc tierCounts
	var dropped []string
	for id, e := range sel {
		if !e.Selected {
			continue
		}
		tf, ok := table[id]
		if !ok {
			dropped = append(dropped, id)
			continue
		}
		*tf.flag(rec) = true
		tc.selection++
		switch tf.level {
		case model.LevelPrimary:
			tc.primary++
		case model.LevelSecondary:
			tc.secondary++
		case model.LevelTertiary:
			tc.tertiary++
		}
	}
	slices.Sort(dropped)
	return tc, dropped
}
