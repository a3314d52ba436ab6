package flatten

import (
	"github.com/aiworkoutgenerator/workoutflat/internal/engine/rubric"
	"github.com/aiworkoutgenerator/workoutflat/internal/model"
)

// Upper bounds (inclusive, minutes) of the session length categories.
const (
	microMax    = 15
	quickMax    = 29
	standardMax = 59
	extendedMax = 89
)

// DurationRecord is the flattened form of a session duration.
type DurationRecord struct {
	// Length category.
	CategoryMicro     bool `json:"duration_category_micro"`
	CategoryQuick     bool `json:"duration_category_quick"`
	CategoryStandard  bool `json:"duration_category_standard"`
	CategoryExtended  bool `json:"duration_category_extended"`
	CategoryEndurance bool `json:"duration_category_endurance"`

	// Structure.
	HasWarmUp        bool `json:"duration_has_warm_up"`
	HasCoolDown      bool `json:"duration_has_cool_down"`
	HasFullStructure bool `json:"duration_has_full_structure"`
	IsConsistent     bool `json:"duration_is_consistent"`

	// Minutes.
	TotalMinutes     int `json:"duration_total_minutes"`
	WorkingMinutes   int `json:"duration_working_minutes"`
	WarmUpMinutes    int `json:"duration_warm_up_minutes"`
	CoolDownMinutes  int `json:"duration_cool_down_minutes"`
	StructureMinutes int `json:"duration_structure_minutes"`

	// Ratios.
	WorkingPercentage   int `json:"duration_working_percentage"`
	StructurePercentage int `json:"duration_structure_percentage"`

	// Scores.
	IntensityCapacity int `json:"duration_intensity_capacity"`
	StructureScore    int `json:"duration_structure_score"`

	// Backup.
	DataJSON         *string `json:"duration_data_json"`
	LastUpdated      string  `json:"duration_last_updated"`
	FlattenerVersion string  `json:"duration_flattener_version"`
}

var durationIntensityRules = rubric.Rules[*DurationRecord]{
	{Name: "working_30", Points: 25, Applies: func(r *DurationRecord) bool { return r.WorkingMinutes >= 30 }},
	{Name: "working_45", Points: 20, Applies: func(r *DurationRecord) bool { return r.WorkingMinutes >= 45 }},
	{Name: "working_60", Points: 15, Applies: func(r *DurationRecord) bool { return r.WorkingMinutes >= 60 }},
	{Name: "dense_session", Points: 20, Applies: func(r *DurationRecord) bool { return r.WorkingPercentage >= 75 }},
	{Name: "warm_up", Points: 10, Applies: func(r *DurationRecord) bool { return r.HasWarmUp }},
	{Name: "short_session", Points: 10, Applies: func(r *DurationRecord) bool {
		return r.CategoryQuick || r.CategoryMicro
	}},
}

var durationStructureRules = rubric.Rules[*DurationRecord]{
	{Name: "warm_up", Points: 30, Applies: func(r *DurationRecord) bool { return r.HasWarmUp }},
	{Name: "cool_down", Points: 30, Applies: func(r *DurationRecord) bool { return r.HasCoolDown }},
	{Name: "full_structure", Points: 10, Applies: func(r *DurationRecord) bool { return r.HasFullStructure }},
	{Name: "consistent", Points: 20, Applies: func(r *DurationRecord) bool { return r.IsConsistent }},
	{Name: "balanced", Points: 10, Applies: func(r *DurationRecord) bool {
		return r.WorkingPercentage >= 60 && r.WorkingPercentage <= 90
	}},
}

// Duration flattens a session duration. A nil config yields the empty
// record.
func (c *Compiler) Duration(cfg *model.DurationConfig) DurationRecord {
	return c.DurationFrom(cfg, Source{})
}

// DurationFrom flattens cfg, recording src in the backup region.
func (c *Compiler) DurationFrom(cfg *model.DurationConfig, src Source) DurationRecord {
	var r DurationRecord
	if cfg != nil {
		deriveDuration(&r, *cfg)
	}

	r.IntensityCapacity = durationIntensityRules.Score(&r)
	r.StructureScore = durationStructureRules.Score(&r)

	b := c.backup(cfg, src, cfg == nil, DurationVersion)
	r.DataJSON, r.LastUpdated, r.FlattenerVersion = b.data, b.updated, b.version

	c.finish(model.Duration, nil)
	return r
}

func deriveDuration(r *DurationRecord, cfg model.DurationConfig) {
	r.TotalMinutes = boundMinutes(cfg.TotalDuration)
	r.WorkingMinutes = boundMinutes(cfg.WorkingTime)
	if cfg.WarmUp.Included {
		r.WarmUpMinutes = boundMinutes(cfg.WarmUp.Duration)
	}
	if cfg.CoolDown.Included {
		r.CoolDownMinutes = boundMinutes(cfg.CoolDown.Duration)
	}
	r.StructureMinutes = r.WarmUpMinutes + r.CoolDownMinutes

	r.HasWarmUp = r.WarmUpMinutes > 0
	r.HasCoolDown = r.CoolDownMinutes > 0
	r.HasFullStructure = r.HasWarmUp && r.HasCoolDown

	total := r.TotalMinutes
	if total <= 0 {
		return
	}
	switch {
	case total <= microMax:
		r.CategoryMicro = true
	case total <= quickMax:
		r.CategoryQuick = true
	case total <= standardMax:
		r.CategoryStandard = true
	case total <= extendedMax:
		r.CategoryExtended = true
	default:
		r.CategoryEndurance = true
	}

	r.IsConsistent = r.WorkingMinutes+r.StructureMinutes == total
	r.WorkingPercentage = rubric.Percent(r.WorkingMinutes, total)
	r.StructurePercentage = rubric.Percent(r.StructureMinutes, total)
}

// boundMinutes saturates a minute count into [0, model.MaxMinutes].
func boundMinutes(v int) int {
	return min(max(v, 0), model.MaxMinutes)
}
