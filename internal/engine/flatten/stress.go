package flatten

import (
	"github.com/aiworkoutgenerator/workoutflat/internal/engine/rubric"
	"github.com/aiworkoutgenerator/workoutflat/internal/engine/selection"
	"github.com/aiworkoutgenerator/workoutflat/internal/model"
)

// StressRecord is the flattened form of a life stress selection.
type StressRecord struct {
	// Physical.
	HasPhysical      bool `json:"stress_has_physical"`
	PhysicalMild     bool `json:"stress_physical_mild"`
	PhysicalModerate bool `json:"stress_physical_moderate"`
	PhysicalSevere   bool `json:"stress_physical_severe"`

	// Mental.
	HasMental      bool `json:"stress_has_mental"`
	MentalMild     bool `json:"stress_mental_mild"`
	MentalModerate bool `json:"stress_mental_moderate"`
	MentalSevere   bool `json:"stress_mental_severe"`

	// Emotional.
	HasEmotional      bool `json:"stress_has_emotional"`
	EmotionalMild     bool `json:"stress_emotional_mild"`
	EmotionalModerate bool `json:"stress_emotional_moderate"`
	EmotionalSevere   bool `json:"stress_emotional_severe"`

	// Work.
	HasWork      bool `json:"stress_has_work"`
	WorkMild     bool `json:"stress_work_mild"`
	WorkModerate bool `json:"stress_work_moderate"`
	WorkSevere   bool `json:"stress_work_severe"`

	// Sleep.
	HasSleep      bool `json:"stress_has_sleep"`
	SleepMild     bool `json:"stress_sleep_mild"`
	SleepModerate bool `json:"stress_sleep_moderate"`
	SleepSevere   bool `json:"stress_sleep_severe"`

	// Financial.
	HasFinancial      bool `json:"stress_has_financial"`
	FinancialMild     bool `json:"stress_financial_mild"`
	FinancialModerate bool `json:"stress_financial_moderate"`
	FinancialSevere   bool `json:"stress_financial_severe"`

	// Aggregates.
	HasPhysicalStressOnly bool `json:"stress_has_physical_stress_only"`
	HasCognitiveStress    bool `json:"stress_has_cognitive_stress"`
	HasSevereStress       bool `json:"stress_has_severe_stress"`

	// Counts.
	TotalAreas      int `json:"stress_total_areas"`
	RatedCount      int `json:"stress_rated_count"`
	MildCount       int `json:"stress_mild_count"`
	ModerateCount   int `json:"stress_moderate_count"`
	HighCount       int `json:"stress_high_count"`
	DroppedKeyCount int `json:"stress_dropped_key_count"`

	AverageLevel float64 `json:"stress_average_level"`

	// Scores.
	SeverityScore  int `json:"stress_severity_score"`
	AllostaticLoad int `json:"stress_allostatic_load"`

	// Backup.
	DataJSON         *string `json:"stress_data_json"`
	LastUpdated      string  `json:"stress_last_updated"`
	FlattenerVersion string  `json:"stress_flattener_version"`
}

var stressFlags = map[string]ratedFlag[StressRecord]{
	"physical":  func(r *StressRecord) severityFlags { return severityFlags{&r.HasPhysical, &r.PhysicalMild, &r.PhysicalModerate, &r.PhysicalSevere} },
	"mental":    func(r *StressRecord) severityFlags { return severityFlags{&r.HasMental, &r.MentalMild, &r.MentalModerate, &r.MentalSevere} },
	"emotional": func(r *StressRecord) severityFlags { return severityFlags{&r.HasEmotional, &r.EmotionalMild, &r.EmotionalModerate, &r.EmotionalSevere} },
	"work":      func(r *StressRecord) severityFlags { return severityFlags{&r.HasWork, &r.WorkMild, &r.WorkModerate, &r.WorkSevere} },
	"sleep":     func(r *StressRecord) severityFlags { return severityFlags{&r.HasSleep, &r.SleepMild, &r.SleepModerate, &r.SleepSevere} },
	"financial": func(r *StressRecord) severityFlags { return severityFlags{&r.HasFinancial, &r.FinancialMild, &r.FinancialModerate, &r.FinancialSevere} },
}

var stressLoadRules = rubric.Rules[*StressRecord]{
	{Name: "severe_source", Points: 30, Applies: func(r *StressRecord) bool { return r.HasSevereStress }},
	{Name: "poor_sleep", Points: 20, Applies: func(r *StressRecord) bool { return r.HasSleep }},
	{Name: "cognitive", Points: 15, Applies: func(r *StressRecord) bool { return r.HasCognitiveStress }},
	{Name: "physical", Points: 10, Applies: func(r *StressRecord) bool { return r.HasPhysical }},
	{Name: "multiple_sources", Points: 15, Applies: func(r *StressRecord) bool { return r.TotalAreas >= 3 }},
	{Name: "multiple_moderate", Points: 10, Applies: func(r *StressRecord) bool { return r.ModerateCount+r.HighCount >= 2 }},
	{Name: "high_average", Points: 10, Applies: func(r *StressRecord) bool { return r.AverageLevel >= 3.5 }},
}

// Stress flattens a life stress selection.
func (c *Compiler) Stress(sel selection.Selection) StressRecord {
	return c.StressFrom(sel, Source{})
}

// StressFrom flattens sel, recording src in the backup region.
func (c *Compiler) StressFrom(sel selection.Selection, src Source) StressRecord {
	var r StressRecord

	rc, dropped := applyRated(sel, stressFlags, &r)
	r.TotalAreas = rc.total
	r.RatedCount = rc.rated
	r.MildCount = rc.mild
	r.ModerateCount = rc.moderate
	r.HighCount = rc.high
	dropped = withInvalid(dropped, src)
	r.DroppedKeyCount = len(dropped)
	r.AverageLevel = rc.average
	r.SeverityScore = rc.severity()

	r.HasCognitiveStress = anyOf(r.HasMental, r.HasEmotional, r.HasWork, r.HasFinancial)
	r.HasPhysicalStressOnly = r.HasPhysical && !r.HasCognitiveStress && !r.HasSleep
	r.HasSevereStress = rc.high > 0

	r.AllostaticLoad = stressLoadRules.Score(&r)

	b := c.backup(sel, src, len(sel)+len(src.Invalid) == 0, StressVersion)
	r.DataJSON, r.LastUpdated, r.FlattenerVersion = b.data, b.updated, b.version

	c.finish(model.Stress, dropped)
	return r
}
