package flatten

import (
	"math"
	"slices"

	"github.com/aiworkoutgenerator/workoutflat/internal/engine/rubric"
	"github.com/aiworkoutgenerator/workoutflat/internal/engine/selection"
)

// Rating bands for category + severity domains.
const (
	mildMax     = 2
	moderateMax = 3
)

// severityFlags points at the four flags of one rated category.
type severityFlags struct {
	has, mild, moderate, severe *bool
}

type ratedFlag[R any] func(*R) severityFlags

type ratedCounts struct {
	total    int
	rated    int
	mild     int
	moderate int
	high     int
	average  float64
}

// severity maps an average rating onto [0,100].
func (rc ratedCounts) severity() int {
	return rubric.Clamp(int(math.Round(min(rc.average*20, 100))))
}

// applyRated sets has_<c> for every selected, mapped category and the band
// flag for categories with a positive rating.
func applyRated[R any](sel selection.Selection, table map[string]ratedFlag[R], rec *R) (ratedCounts, []string) {
	var rc ratedCounts
	var dropped []string
	sum := 0.0
	for id, e := range sel {
		if !e.Selected {
			continue
		}
		fn, ok := table[id]
		if !ok {
			dropped = append(dropped, id)
			continue
		}
		f := fn(rec)
		*f.has = true
		rc.total++

		rating := e.RatingValue()
		if rating <= 0 {
			continue
		}
		rc.rated++
		sum += float64(rating)
		switch {
		case rating <= mildMax:
			*f.mild = true
			rc.mild++
		case rating <= moderateMax:
			*f.moderate = true
			rc.moderate++
		default:
			*f.severe = true
			rc.high++
		}
	}
	if rc.rated > 0 {
		rc.average = rubric.Round2(sum / float64(rc.rated))
	}
	slices.Sort(dropped)
	return rc, dropped
}
