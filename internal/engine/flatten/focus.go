package flatten

import (
	"github.com/aiworkoutgenerator/workoutflat/internal/engine/rubric"
	"github.com/aiworkoutgenerator/workoutflat/internal/engine/selection"
	"github.com/aiworkoutgenerator/workoutflat/internal/model"
)

// FocusRecord is the flattened form of a focus-area selection.
type FocusRecord struct {
	// Regions (primary).
	RegionUpperBody bool `json:"focus_region_upper_body"`
	RegionLowerBody bool `json:"focus_region_lower_body"`
	RegionCore      bool `json:"focus_region_core"`
	RegionFullBody  bool `json:"focus_region_full_body"`

	// Muscle groups (secondary).
	UpperChest             bool `json:"focus_upper_chest"`
	UpperBack              bool `json:"focus_upper_back"`
	UpperShoulders         bool `json:"focus_upper_shoulders"`
	UpperArms              bool `json:"focus_upper_arms"`
	LowerGlutes            bool `json:"focus_lower_glutes"`
	LowerQuads             bool `json:"focus_lower_quads"`
	LowerHamstrings        bool `json:"focus_lower_hamstrings"`
	LowerCalves            bool `json:"focus_lower_calves"`
	CoreAbs                bool `json:"focus_core_abs"`
	CoreObliques           bool `json:"focus_core_obliques"`
	CoreLowerBack          bool `json:"focus_core_lower_back"`
	FullOlympicLifts       bool `json:"focus_full_olympic_lifts"`
	FullCompoundMovements  bool `json:"focus_full_compound_movements"`
	FullFunctionalTraining bool `json:"focus_full_functional_training"`

	// Specific areas (tertiary).
	ChestUpperPecs          bool `json:"focus_chest_upper_pecs"`
	ChestMiddlePecs         bool `json:"focus_chest_middle_pecs"`
	ChestLowerPecs          bool `json:"focus_chest_lower_pecs"`
	BackLats                bool `json:"focus_back_lats"`
	BackRhomboids           bool `json:"focus_back_rhomboids"`
	BackTraps               bool `json:"focus_back_traps"`
	ShouldersFrontDelts     bool `json:"focus_shoulders_front_delts"`
	ShouldersSideDelts      bool `json:"focus_shoulders_side_delts"`
	ShouldersRearDelts      bool `json:"focus_shoulders_rear_delts"`
	ArmsBiceps              bool `json:"focus_arms_biceps"`
	ArmsTriceps             bool `json:"focus_arms_triceps"`
	ArmsForearms            bool `json:"focus_arms_forearms"`
	GlutesGluteMax          bool `json:"focus_glutes_glute_max"`
	GlutesGluteMed          bool `json:"focus_glutes_glute_med"`
	QuadsOuter              bool `json:"focus_quads_outer"`
	QuadsInner              bool `json:"focus_quads_inner"`
	HamstringsInner         bool `json:"focus_hamstrings_inner"`
	HamstringsOuter         bool `json:"focus_hamstrings_outer"`
	CalvesGastrocnemius     bool `json:"focus_calves_gastrocnemius"`
	CalvesSoleus            bool `json:"focus_calves_soleus"`
	AbsUpper                bool `json:"focus_abs_upper"`
	AbsLower                bool `json:"focus_abs_lower"`
	LowerBackSpinalErectors bool `json:"focus_lower_back_spinal_erectors"`
	OlympicClean            bool `json:"focus_olympic_clean"`
	OlympicSnatch           bool `json:"focus_olympic_snatch"`
	OlympicJerk             bool `json:"focus_olympic_jerk"`
	CompoundDeadlift        bool `json:"focus_compound_deadlift"`
	CompoundSquat           bool `json:"focus_compound_squat"`
	CompoundPress           bool `json:"focus_compound_press"`
	FunctionalLoadedCarries bool `json:"focus_functional_loaded_carries"`
	FunctionalSledWork      bool `json:"focus_functional_sled_work"`

	// Aggregates.
	HasUpperBody      bool `json:"focus_has_upper_body"`
	HasLowerBody      bool `json:"focus_has_lower_body"`
	HasCore           bool `json:"focus_has_core"`
	HasFullBody       bool `json:"focus_has_full_body"`
	HasPushMuscles    bool `json:"focus_has_push_muscles"`
	HasPullMuscles    bool `json:"focus_has_pull_muscles"`
	HasPosteriorChain bool `json:"focus_has_posterior_chain"`
	HasOlympicLifts   bool `json:"focus_has_olympic_lifts"`

	// Counts.
	SelectionCount  int `json:"focus_selection_count"`
	PrimaryCount    int `json:"focus_primary_count"`
	SecondaryCount  int `json:"focus_secondary_count"`
	TertiaryCount   int `json:"focus_tertiary_count"`
	RegionCount     int `json:"focus_region_count"`
	DroppedKeyCount int `json:"focus_dropped_key_count"`

	// Ratios.
	RegionCoveragePercentage int `json:"focus_region_coverage_percentage"`
	SpecificityPercentage    int `json:"focus_specificity_percentage"`

	// Scores.
	IntensityCapacity int `json:"focus_intensity_capacity"`
	RecoveryDemand    int `json:"focus_recovery_demand"`

	// Backup.
	DataJSON         *string `json:"focus_data_json"`
	LastUpdated      string  `json:"focus_last_updated"`
	FlattenerVersion string  `json:"focus_flattener_version"`
}

type focusFlag = tierFlag[FocusRecord]

var focusFlags = map[string]focusFlag{
	"upper_body": primary(func(r *FocusRecord) *bool { return &r.RegionUpperBody }),
	"lower_body": primary(func(r *FocusRecord) *bool { return &r.RegionLowerBody }),
	"core":       primary(func(r *FocusRecord) *bool { return &r.RegionCore }),
	"full_body":  primary(func(r *FocusRecord) *bool { return &r.RegionFullBody }),

	"chest":               secondary(func(r *FocusRecord) *bool { return &r.UpperChest }),
	"back":                secondary(func(r *FocusRecord) *bool { return &r.UpperBack }),
	"shoulders":           secondary(func(r *FocusRecord) *bool { return &r.UpperShoulders }),
	"arms":                secondary(func(r *FocusRecord) *bool { return &r.UpperArms }),
	"glutes":              secondary(func(r *FocusRecord) *bool { return &r.LowerGlutes }),
	"quads":               secondary(func(r *FocusRecord) *bool { return &r.LowerQuads }),
	"hamstrings":          secondary(func(r *FocusRecord) *bool { return &r.LowerHamstrings }),
	"calves":              secondary(func(r *FocusRecord) *bool { return &r.LowerCalves }),
	"abs":                 secondary(func(r *FocusRecord) *bool { return &r.CoreAbs }),
	"obliques":            secondary(func(r *FocusRecord) *bool { return &r.CoreObliques }),
	"lower_back":          secondary(func(r *FocusRecord) *bool { return &r.CoreLowerBack }),
	"olympic_lifts":       secondary(func(r *FocusRecord) *bool { return &r.FullOlympicLifts }),
	"compound_movements":  secondary(func(r *FocusRecord) *bool { return &r.FullCompoundMovements }),
	"functional_training": secondary(func(r *FocusRecord) *bool { return &r.FullFunctionalTraining }),

	"upper_pecs":       tertiary(func(r *FocusRecord) *bool { return &r.ChestUpperPecs }),
	"middle_pecs":      tertiary(func(r *FocusRecord) *bool { return &r.ChestMiddlePecs }),
	"lower_pecs":       tertiary(func(r *FocusRecord) *bool { return &r.ChestLowerPecs }),
	"lats":             tertiary(func(r *FocusRecord) *bool { return &r.BackLats }),
	"rhomboids":        tertiary(func(r *FocusRecord) *bool { return &r.BackRhomboids }),
	"traps":            tertiary(func(r *FocusRecord) *bool { return &r.BackTraps }),
	"front_delts":      tertiary(func(r *FocusRecord) *bool { return &r.ShouldersFrontDelts }),
	"side_delts":       tertiary(func(r *FocusRecord) *bool { return &r.ShouldersSideDelts }),
	"rear_delts":       tertiary(func(r *FocusRecord) *bool { return &r.ShouldersRearDelts }),
	"biceps":           tertiary(func(r *FocusRecord) *bool { return &r.ArmsBiceps }),
	"triceps":          tertiary(func(r *FocusRecord) *bool { return &r.ArmsTriceps }),
	"forearms":         tertiary(func(r *FocusRecord) *bool { return &r.ArmsForearms }),
	"glute_max":        tertiary(func(r *FocusRecord) *bool { return &r.GlutesGluteMax }),
	"glute_med":        tertiary(func(r *FocusRecord) *bool { return &r.GlutesGluteMed }),
	"outer_quads":      tertiary(func(r *FocusRecord) *bool { return &r.QuadsOuter }),
	"inner_quads":      tertiary(func(r *FocusRecord) *bool { return &r.QuadsInner }),
	"inner_hamstrings": tertiary(func(r *FocusRecord) *bool { return &r.HamstringsInner }),
	"outer_hamstrings": tertiary(func(r *FocusRecord) *bool { return &r.HamstringsOuter }),
	"gastrocnemius":    tertiary(func(r *FocusRecord) *bool { return &r.CalvesGastrocnemius }),
	"soleus":           tertiary(func(r *FocusRecord) *bool { return &r.CalvesSoleus }),
	"upper_abs":        tertiary(func(r *FocusRecord) *bool { return &r.AbsUpper }),
	"lower_abs":        tertiary(func(r *FocusRecord) *bool { return &r.AbsLower }),
	"spinal_erectors":  tertiary(func(r *FocusRecord) *bool { return &r.LowerBackSpinalErectors }),
	"clean":            tertiary(func(r *FocusRecord) *bool { return &r.OlympicClean }),
	"snatch":           tertiary(func(r *FocusRecord) *bool { return &r.OlympicSnatch }),
	"jerk":             tertiary(func(r *FocusRecord) *bool { return &r.OlympicJerk }),
	"deadlift_pattern": tertiary(func(r *FocusRecord) *bool { return &r.CompoundDeadlift }),
	"squat_pattern":    tertiary(func(r *FocusRecord) *bool { return &r.CompoundSquat }),
	"press_pattern":    tertiary(func(r *FocusRecord) *bool { return &r.CompoundPress }),
	"loaded_carries":   tertiary(func(r *FocusRecord) *bool { return &r.FunctionalLoadedCarries }),
	"sled_work":        tertiary(func(r *FocusRecord) *bool { return &r.FunctionalSledWork }),
}

const focusRegions = 4

var focusIntensityRules = rubric.Rules[*FocusRecord]{
	{Name: "olympic_lifts", Points: 40, Applies: func(r *FocusRecord) bool { return r.HasOlympicLifts }},
	{Name: "compound_movements", Points: 25, Applies: func(r *FocusRecord) bool {
		return anyOf(r.FullCompoundMovements, r.CompoundDeadlift, r.CompoundSquat, r.CompoundPress)
	}},
	{Name: "full_body_region", Points: 15, Applies: func(r *FocusRecord) bool { return r.RegionFullBody }},
	{Name: "lower_body", Points: 15, Applies: func(r *FocusRecord) bool { return r.HasLowerBody }},
	{Name: "upper_body", Points: 10, Applies: func(r *FocusRecord) bool { return r.HasUpperBody }},
	{Name: "posterior_chain", Points: 10, Applies: func(r *FocusRecord) bool { return r.HasPosteriorChain }},
	{Name: "broad_coverage", Points: 10, Applies: func(r *FocusRecord) bool { return r.RegionCoveragePercentage >= 75 }},
}

var focusRecoveryRules = rubric.Rules[*FocusRecord]{
	{Name: "lower_body", Points: 20, Applies: func(r *FocusRecord) bool { return r.HasLowerBody }},
	{Name: "olympic_lifts", Points: 25, Applies: func(r *FocusRecord) bool { return r.HasOlympicLifts }},
	{Name: "compound_movements", Points: 20, Applies: func(r *FocusRecord) bool {
		return anyOf(r.FullCompoundMovements, r.CompoundDeadlift, r.CompoundSquat, r.CompoundPress)
	}},
	{Name: "posterior_chain", Points: 15, Applies: func(r *FocusRecord) bool { return r.HasPosteriorChain }},
	{Name: "high_volume", Points: 15, Applies: func(r *FocusRecord) bool { return r.SelectionCount >= 8 }},
	{Name: "full_coverage", Points: 10, Applies: func(r *FocusRecord) bool { return r.RegionCoveragePercentage == 100 }},
	{Name: "push_and_pull", Points: 10, Applies: func(r *FocusRecord) bool { return r.HasPushMuscles && r.HasPullMuscles }},
}

// Focus flattens a focus-area selection.
func (c *Compiler) Focus(sel selection.Selection) FocusRecord {
	return c.FocusFrom(sel, Source{})
}

// FocusFrom flattens sel, recording src in the backup region.
func (c *Compiler) FocusFrom(sel selection.Selection, src Source) FocusRecord {
	var r FocusRecord

	tc, dropped := applyTiers(sel, focusFlags, &r)
	r.SelectionCount = tc.selection
	r.PrimaryCount = tc.primary
	r.SecondaryCount = tc.secondary
	r.TertiaryCount = tc.tertiary
	dropped = withInvalid(dropped, src)
	r.DroppedKeyCount = len(dropped)

	deriveFocus(&r)

	r.IntensityCapacity = focusIntensityRules.Score(&r)
	r.RecoveryDemand = focusRecoveryRules.Score(&r)

	b := c.backup(sel, src, len(sel)+len(src.Invalid) == 0, FocusVersion)
	r.DataJSON, r.LastUpdated, r.FlattenerVersion = b.data, b.updated, b.version

	c.finish(model.Focus, dropped)
	return r
}

func deriveFocus(r *FocusRecord) {
	r.HasUpperBody = anyOf(r.RegionUpperBody,
		r.UpperChest, r.UpperBack, r.UpperShoulders, r.UpperArms,
		r.ChestUpperPecs, r.ChestMiddlePecs, r.ChestLowerPecs,
		r.BackLats, r.BackRhomboids, r.BackTraps,
		r.ShouldersFrontDelts, r.ShouldersSideDelts, r.ShouldersRearDelts,
		r.ArmsBiceps, r.ArmsTriceps, r.ArmsForearms)
	r.HasLowerBody = anyOf(r.RegionLowerBody,
		r.LowerGlutes, r.LowerQuads, r.LowerHamstrings, r.LowerCalves,
		r.GlutesGluteMax, r.GlutesGluteMed, r.QuadsOuter, r.QuadsInner,
		r.HamstringsInner, r.HamstringsOuter, r.CalvesGastrocnemius, r.CalvesSoleus)
	r.HasCore = anyOf(r.RegionCore,
		r.CoreAbs, r.CoreObliques, r.CoreLowerBack,
		r.AbsUpper, r.AbsLower, r.LowerBackSpinalErectors)
	r.HasFullBody = anyOf(r.RegionFullBody,
		r.FullOlympicLifts, r.FullCompoundMovements, r.FullFunctionalTraining,
		r.OlympicClean, r.OlympicSnatch, r.OlympicJerk,
		r.CompoundDeadlift, r.CompoundSquat, r.CompoundPress,
		r.FunctionalLoadedCarries, r.FunctionalSledWork)

	r.HasPushMuscles = anyOf(r.UpperChest, r.ChestUpperPecs, r.ChestMiddlePecs, r.ChestLowerPecs,
		r.ShouldersFrontDelts, r.ArmsTriceps, r.CompoundPress)
	r.HasPullMuscles = anyOf(r.UpperBack, r.BackLats, r.BackRhomboids, r.BackTraps,
		r.ShouldersRearDelts, r.ArmsBiceps)
	r.HasPosteriorChain = anyOf(r.LowerGlutes, r.GlutesGluteMax, r.GlutesGluteMed,
		r.LowerHamstrings, r.HamstringsInner, r.HamstringsOuter,
		r.CoreLowerBack, r.LowerBackSpinalErectors, r.CompoundDeadlift)
	r.HasOlympicLifts = anyOf(r.FullOlympicLifts, r.OlympicClean, r.OlympicSnatch, r.OlympicJerk)

	r.RegionCount = countTrue(r.HasUpperBody, r.HasLowerBody, r.HasCore, r.HasFullBody)
	r.RegionCoveragePercentage = rubric.Percent(r.RegionCount, focusRegions)
	r.SpecificityPercentage = rubric.Percent(r.TertiaryCount, r.SelectionCount)
}
