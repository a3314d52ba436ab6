// Package rubric implements additive scoring: an ordered list of
// (predicate, points) rules is evaluated, the points of every rule whose
// predicate holds are summed, and the total is clamped to [0, 100].
package rubric

import "math"

const (
	MinScore = 0
	MaxScore = 100
)

// Rule awards Points when Applies holds for the subject.
// Points may be negative.
type Rule[T any] struct {
	Name    string
	Points  int
	Applies func(T) bool
}

// Rules is an ordered rubric over subjects of type T.
type Rules[T any] []Rule[T]

// Contribution is one rule that fired during scoring.
type Contribution struct {
	Rule   string `json:"rule"`
	Points int    `json:"points"`
}

// Score sums the points of every applicable rule and clamps the result.
func (rs Rules[T]) Score(v T) int {
	total := 0
	for _, r := range rs {
		if r.Applies(v) {
			total += r.Points
		}
	}
	return Clamp(total)
}

// Explain lists the rules that fired, in rubric order.
func (rs Rules[T]) Explain(v T) []Contribution {
	var out []Contribution
	for _, r := range rs {
		if r.Applies(v) {
			out = append(out, Contribution{Rule: r.Name, Points: r.Points})
		}
	}
	return out
}

// Clamp bounds n to [MinScore, MaxScore].
func Clamp(n int) int {
	return min(max(n, MinScore), MaxScore)
}

// Percent returns part/whole as a rounded percentage, 0 when whole <= 0.
func Percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(float64(part) * 100 / float64(whole)))
}

// Round2 rounds to two decimal places.
func Round2(f float64) float64 {
	return math.Round(f*100) / 100
}
