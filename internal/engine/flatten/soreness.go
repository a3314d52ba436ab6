package flatten

import (
	"github.com/aiworkoutgenerator/workoutflat/internal/engine/rubric"
	"github.com/aiworkoutgenerator/workoutflat/internal/engine/selection"
	"github.com/aiworkoutgenerator/workoutflat/internal/model"
)

// SorenessRecord is the flattened form of a muscle soreness selection.
// Each area carries a presence flag plus one flag per rating band.
type SorenessRecord struct {
	// Neck.
	HasNeck      bool `json:"soreness_has_neck"`
	NeckMild     bool `json:"soreness_neck_mild"`
	NeckModerate bool `json:"soreness_neck_moderate"`
	NeckSevere   bool `json:"soreness_neck_severe"`

	// Shoulders.
	HasShoulders      bool `json:"soreness_has_shoulders"`
	ShouldersMild     bool `json:"soreness_shoulders_mild"`
	ShouldersModerate bool `json:"soreness_shoulders_moderate"`
	ShouldersSevere   bool `json:"soreness_shoulders_severe"`

	// Upper back.
	HasUpperBack      bool `json:"soreness_has_upper_back"`
	UpperBackMild     bool `json:"soreness_upper_back_mild"`
	UpperBackModerate bool `json:"soreness_upper_back_moderate"`
	UpperBackSevere   bool `json:"soreness_upper_back_severe"`

	// Lower back.
	HasLowerBack      bool `json:"soreness_has_lower_back"`
	LowerBackMild     bool `json:"soreness_lower_back_mild"`
	LowerBackModerate bool `json:"soreness_lower_back_moderate"`
	LowerBackSevere   bool `json:"soreness_lower_back_severe"`

	// Chest.
	HasChest      bool `json:"soreness_has_chest"`
	ChestMild     bool `json:"soreness_chest_mild"`
	ChestModerate bool `json:"soreness_chest_moderate"`
	ChestSevere   bool `json:"soreness_chest_severe"`

	// Arms.
	HasArms      bool `json:"soreness_has_arms"`
	ArmsMild     bool `json:"soreness_arms_mild"`
	ArmsModerate bool `json:"soreness_arms_moderate"`
	ArmsSevere   bool `json:"soreness_arms_severe"`

	// Core.
	HasCore      bool `json:"soreness_has_core"`
	CoreMild     bool `json:"soreness_core_mild"`
	CoreModerate bool `json:"soreness_core_moderate"`
	CoreSevere   bool `json:"soreness_core_severe"`

	// Hips.
	HasHips      bool `json:"soreness_has_hips"`
	HipsMild     bool `json:"soreness_hips_mild"`
	HipsModerate bool `json:"soreness_hips_moderate"`
	HipsSevere   bool `json:"soreness_hips_severe"`

	// Glutes.
	HasGlutes      bool `json:"soreness_has_glutes"`
	GlutesMild     bool `json:"soreness_glutes_mild"`
	GlutesModerate bool `json:"soreness_glutes_moderate"`
	GlutesSevere   bool `json:"soreness_glutes_severe"`

	// Quads.
	HasQuads      bool `json:"soreness_has_quads"`
	QuadsMild     bool `json:"soreness_quads_mild"`
	QuadsModerate bool `json:"soreness_quads_moderate"`
	QuadsSevere   bool `json:"soreness_quads_severe"`

	// Hamstrings.
	HasHamstrings      bool `json:"soreness_has_hamstrings"`
	HamstringsMild     bool `json:"soreness_hamstrings_mild"`
	HamstringsModerate bool `json:"soreness_hamstrings_moderate"`
	HamstringsSevere   bool `json:"soreness_hamstrings_severe"`

	// Knees.
	HasKnees      bool `json:"soreness_has_knees"`
	KneesMild     bool `json:"soreness_knees_mild"`
	KneesModerate bool `json:"soreness_knees_moderate"`
	KneesSevere   bool `json:"soreness_knees_severe"`

	// Calves.
	HasCalves      bool `json:"soreness_has_calves"`
	CalvesMild     bool `json:"soreness_calves_mild"`
	CalvesModerate bool `json:"soreness_calves_moderate"`
	CalvesSevere   bool `json:"soreness_calves_severe"`

	// Ankles.
	HasAnkles      bool `json:"soreness_has_ankles"`
	AnklesMild     bool `json:"soreness_ankles_mild"`
	AnklesModerate bool `json:"soreness_ankles_moderate"`
	AnklesSevere   bool `json:"soreness_ankles_severe"`

	// Aggregates.
	HasUpperBodySoreness bool `json:"soreness_has_upper_body_soreness"`
	HasLowerBodySoreness bool `json:"soreness_has_lower_body_soreness"`
	HasBackSoreness      bool `json:"soreness_has_back_soreness"`
	HasJointSoreness     bool `json:"soreness_has_joint_soreness"`
	HasSevereSoreness    bool `json:"soreness_has_severe_soreness"`

	// Counts.
	TotalAreas      int `json:"soreness_total_areas"`
	RatedCount      int `json:"soreness_rated_count"`
	MildCount       int `json:"soreness_mild_count"`
	ModerateCount   int `json:"soreness_moderate_count"`
	HighCount       int `json:"soreness_high_count"`
	DroppedKeyCount int `json:"soreness_dropped_key_count"`

	AverageLevel float64 `json:"soreness_average_level"`

	// Scores.
	SeverityScore       int `json:"soreness_severity_score"`
	TrainingRestriction int `json:"soreness_training_restriction"`

	// Backup.
	DataJSON         *string `json:"soreness_data_json"`
	LastUpdated      string  `json:"soreness_last_updated"`
	FlattenerVersion string  `json:"soreness_flattener_version"`
}

var sorenessFlags = map[string]ratedFlag[SorenessRecord]{
	"neck":       func(r *SorenessRecord) severityFlags { return severityFlags{&r.HasNeck, &r.NeckMild, &r.NeckModerate, &r.NeckSevere} },
	"shoulders":  func(r *SorenessRecord) severityFlags { return severityFlags{&r.HasShoulders, &r.ShouldersMild, &r.ShouldersModerate, &r.ShouldersSevere} },
	"upper_back": func(r *SorenessRecord) severityFlags { return severityFlags{&r.HasUpperBack, &r.UpperBackMild, &r.UpperBackModerate, &r.UpperBackSevere} },
	"lower_back": func(r *SorenessRecord) severityFlags { return severityFlags{&r.HasLowerBack, &r.LowerBackMild, &r.LowerBackModerate, &r.LowerBackSevere} },
	"chest":      func(r *SorenessRecord) severityFlags { return severityFlags{&r.HasChest, &r.ChestMild, &r.ChestModerate, &r.ChestSevere} },
	"arms":       func(r *SorenessRecord) severityFlags { return severityFlags{&r.HasArms, &r.ArmsMild, &r.ArmsModerate, &r.ArmsSevere} },
	"core":       func(r *SorenessRecord) severityFlags { return severityFlags{&r.HasCore, &r.CoreMild, &r.CoreModerate, &r.CoreSevere} },
	"hips":       func(r *SorenessRecord) severityFlags { return severityFlags{&r.HasHips, &r.HipsMild, &r.HipsModerate, &r.HipsSevere} },
	"glutes":     func(r *SorenessRecord) severityFlags { return severityFlags{&r.HasGlutes, &r.GlutesMild, &r.GlutesModerate, &r.GlutesSevere} },
	"quads":      func(r *SorenessRecord) severityFlags { return severityFlags{&r.HasQuads, &r.QuadsMild, &r.QuadsModerate, &r.QuadsSevere} },
	"hamstrings": func(r *SorenessRecord) severityFlags { return severityFlags{&r.HasHamstrings, &r.HamstringsMild, &r.HamstringsModerate, &r.HamstringsSevere} },
	"knees":      func(r *SorenessRecord) severityFlags { return severityFlags{&r.HasKnees, &r.KneesMild, &r.KneesModerate, &r.KneesSevere} },
	"calves":     func(r *SorenessRecord) severityFlags { return severityFlags{&r.HasCalves, &r.CalvesMild, &r.CalvesModerate, &r.CalvesSevere} },
	"ankles":     func(r *SorenessRecord) severityFlags { return severityFlags{&r.HasAnkles, &r.AnklesMild, &r.AnklesModerate, &r.AnklesSevere} },
}

var sorenessRestrictionRules = rubric.Rules[*SorenessRecord]{
	{Name: "severe_area", Points: 30, Applies: func(r *SorenessRecord) bool { return r.HasSevereSoreness }},
	{Name: "lower_back", Points: 20, Applies: func(r *SorenessRecord) bool { return r.HasLowerBack }},
	{Name: "joint", Points: 20, Applies: func(r *SorenessRecord) bool { return r.HasJointSoreness }},
	{Name: "multiple_moderate", Points: 10, Applies: func(r *SorenessRecord) bool { return r.ModerateCount >= 2 }},
	{Name: "widespread", Points: 10, Applies: func(r *SorenessRecord) bool { return r.TotalAreas >= 4 }},
	{Name: "lower_body", Points: 10, Applies: func(r *SorenessRecord) bool { return r.HasLowerBodySoreness }},
	{Name: "upper_body", Points: 5, Applies: func(r *SorenessRecord) bool { return r.HasUpperBodySoreness }},
	{Name: "high_average", Points: 10, Applies: func(r *SorenessRecord) bool { return r.AverageLevel >= 3.5 }},
}

// Soreness flattens a muscle soreness selection.
func (c *Compiler) Soreness(sel selection.Selection) SorenessRecord {
	return c.SorenessFrom(sel, Source{})
}

// SorenessFrom flattens sel, recording src in the backup region.
func (c *Compiler) SorenessFrom(sel selection.Selection, src Source) SorenessRecord {
	var r SorenessRecord

	rc, dropped := applyRated(sel, sorenessFlags, &r)
	r.TotalAreas = rc.total
	r.RatedCount = rc.rated
	r.MildCount = rc.mild
	r.ModerateCount = rc.moderate
	r.HighCount = rc.high
	dropped = withInvalid(dropped, src)
	r.DroppedKeyCount = len(dropped)
	r.AverageLevel = rc.average
	r.SeverityScore = rc.severity()

	r.HasUpperBodySoreness = anyOf(r.HasNeck, r.HasShoulders, r.HasUpperBack, r.HasChest, r.HasArms)
	r.HasLowerBodySoreness = anyOf(r.HasHips, r.HasGlutes, r.HasQuads, r.HasHamstrings, r.HasKnees, r.HasCalves, r.HasAnkles)
	r.HasBackSoreness = anyOf(r.HasUpperBack, r.HasLowerBack)
	r.HasJointSoreness = anyOf(r.HasShoulders, r.HasHips, r.HasKnees, r.HasAnkles)
	r.HasSevereSoreness = rc.high > 0

	r.TrainingRestriction = sorenessRestrictionRules.Score(&r)

	b := c.backup(sel, src, len(sel)+len(src.Invalid) == 0, SorenessVersion)
	r.DataJSON, r.LastUpdated, r.FlattenerVersion = b.data, b.updated, b.version

	c.finish(model.Soreness, dropped)
	return r
}
