package flatten

import (
	"github.com/aiworkoutgenerator/workoutflat/internal/engine/rubric"
	"github.com/aiworkoutgenerator/workoutflat/internal/engine/selection"
	"github.com/aiworkoutgenerator/workoutflat/internal/model"
)

// EquipmentRecord is the flattened form of an available-equipment selection.
type EquipmentRecord struct {
	// Categories (primary).
	CategoryFreeWeights bool `json:"equipment_category_free_weights"`
	CategoryMachines    bool `json:"equipment_category_machines"`
	CategoryBodyweight  bool `json:"equipment_category_bodyweight"`
	CategoryCardio      bool `json:"equipment_category_cardio"`
	CategoryAccessories bool `json:"equipment_category_accessories"`

	// Items (secondary).
	Dumbbells         bool `json:"equipment_dumbbells"`
	Barbells          bool `json:"equipment_barbells"`
	Kettlebells       bool `json:"equipment_kettlebells"`
	CableMachine      bool `json:"equipment_cable_machine"`
	SmithMachine      bool `json:"equipment_smith_machine"`
	LegPress          bool `json:"equipment_leg_press"`
	PullUpBar         bool `json:"equipment_pull_up_bar"`
	DipStation        bool `json:"equipment_dip_station"`
	SuspensionTrainer bool `json:"equipment_suspension_trainer"`
	Treadmill         bool `json:"equipment_treadmill"`
	StationaryBike    bool `json:"equipment_stationary_bike"`
	RowingMachine     bool `json:"equipment_rowing_machine"`
	JumpRope          bool `json:"equipment_jump_rope"`
	ResistanceBands   bool `json:"equipment_resistance_bands"`
	Bench             bool `json:"equipment_bench"`
	MedicineBall      bool `json:"equipment_medicine_ball"`
	FoamRoller        bool `json:"equipment_foam_roller"`

	// Variants (tertiary).
	AdjustableDumbbells bool `json:"equipment_adjustable_dumbbells"`
	FixedDumbbells      bool `json:"equipment_fixed_dumbbells"`
	OlympicBarbell      bool `json:"equipment_olympic_barbell"`
	EzCurlBar           bool `json:"equipment_ez_curl_bar"`
	TrapBar             bool `json:"equipment_trap_bar"`
	LightKettlebells    bool `json:"equipment_light_kettlebells"`
	HeavyKettlebells    bool `json:"equipment_heavy_kettlebells"`
	CableSingleStack    bool `json:"equipment_cable_single_stack"`
	CableDualCable      bool `json:"equipment_cable_dual_cable"`
	DoorwayBar          bool `json:"equipment_doorway_bar"`
	PowerTower          bool `json:"equipment_power_tower"`
	LoopBands           bool `json:"equipment_loop_bands"`
	TubeBands           bool `json:"equipment_tube_bands"`
	FlatBench           bool `json:"equipment_flat_bench"`
	AdjustableBench     bool `json:"equipment_adjustable_bench"`

	// Aggregates.
	HasFreeWeights  bool `json:"equipment_has_free_weights"`
	HasMachines     bool `json:"equipment_has_machines"`
	HasBodyweight   bool `json:"equipment_has_bodyweight"`
	HasCardio       bool `json:"equipment_has_cardio"`
	HasAccessories  bool `json:"equipment_has_accessories"`
	HasHeavyLoading bool `json:"equipment_has_heavy_loading"`
	BodyweightOnly  bool `json:"equipment_bodyweight_only"`

	// Counts.
	SelectionCount  int `json:"equipment_selection_count"`
	PrimaryCount    int `json:"equipment_primary_count"`
	SecondaryCount  int `json:"equipment_secondary_count"`
	TertiaryCount   int `json:"equipment_tertiary_count"`
	CategoryCount   int `json:"equipment_category_count"`
	DroppedKeyCount int `json:"equipment_dropped_key_count"`

	// Ratios.
	CategoryCoveragePercentage int `json:"equipment_category_coverage_percentage"`

	// Scores.
	VersatilityScore  int `json:"equipment_versatility_score"`
	IntensityCapacity int `json:"equipment_intensity_capacity"`

	// Backup.
	DataJSON         *string `json:"equipment_data_json"`
	LastUpdated      string  `json:"equipment_last_updated"`
	FlattenerVersion string  `json:"equipment_flattener_version"`
}

type equipmentFlag = tierFlag[EquipmentRecord]

var equipmentFlags = map[string]equipmentFlag{
	"free_weights": primary(func(r *EquipmentRecord) *bool { return &r.CategoryFreeWeights }),
	"machines":     primary(func(r *EquipmentRecord) *bool { return &r.CategoryMachines }),
	"bodyweight":   primary(func(r *EquipmentRecord) *bool { return &r.CategoryBodyweight }),
	"cardio":       primary(func(r *EquipmentRecord) *bool { return &r.CategoryCardio }),
	"accessories":  primary(func(r *EquipmentRecord) *bool { return &r.CategoryAccessories }),

	"dumbbells":          secondary(func(r *EquipmentRecord) *bool { return &r.Dumbbells }),
	"barbells":           secondary(func(r *EquipmentRecord) *bool { return &r.Barbells }),
	"kettlebells":        secondary(func(r *EquipmentRecord) *bool { return &r.Kettlebells }),
	"cable_machine":      secondary(func(r *EquipmentRecord) *bool { return &r.CableMachine }),
	"smith_machine":      secondary(func(r *EquipmentRecord) *bool { return &r.SmithMachine }),
	"leg_press":          secondary(func(r *EquipmentRecord) *bool { return &r.LegPress }),
	"pull_up_bar":        secondary(func(r *EquipmentRecord) *bool { return &r.PullUpBar }),
	"dip_station":        secondary(func(r *EquipmentRecord) *bool { return &r.DipStation }),
	"suspension_trainer": secondary(func(r *EquipmentRecord) *bool { return &r.SuspensionTrainer }),
	"treadmill":          secondary(func(r *EquipmentRecord) *bool { return &r.Treadmill }),
	"stationary_bike":    secondary(func(r *EquipmentRecord) *bool { return &r.StationaryBike }),
	"rowing_machine":     secondary(func(r *EquipmentRecord) *bool { return &r.RowingMachine }),
	"jump_rope":          secondary(func(r *EquipmentRecord) *bool { return &r.JumpRope }),
	"resistance_bands":   secondary(func(r *EquipmentRecord) *bool { return &r.ResistanceBands }),
	"bench":              secondary(func(r *EquipmentRecord) *bool { return &r.Bench }),
	"medicine_ball":      secondary(func(r *EquipmentRecord) *bool { return &r.MedicineBall }),
	"foam_roller":        secondary(func(r *EquipmentRecord) *bool { return &r.FoamRoller }),

	"adjustable_dumbbells": tertiary(func(r *EquipmentRecord) *bool { return &r.AdjustableDumbbells }),
	"fixed_dumbbells":      tertiary(func(r *EquipmentRecord) *bool { return &r.FixedDumbbells }),
	"olympic_barbell":      tertiary(func(r *EquipmentRecord) *bool { return &r.OlympicBarbell }),
	"ez_curl_bar":          tertiary(func(r *EquipmentRecord) *bool { return &r.EzCurlBar }),
	"trap_bar":             tertiary(func(r *EquipmentRecord) *bool { return &r.TrapBar }),
	"light_kettlebells":    tertiary(func(r *EquipmentRecord) *bool { return &r.LightKettlebells }),
	"heavy_kettlebells":    tertiary(func(r *EquipmentRecord) *bool { return &r.HeavyKettlebells }),
	"single_stack":         tertiary(func(r *EquipmentRecord) *bool { return &r.CableSingleStack }),
	"dual_cable":           tertiary(func(r *EquipmentRecord) *bool { return &r.CableDualCable }),
	"doorway_bar":          tertiary(func(r *EquipmentRecord) *bool { return &r.DoorwayBar }),
	"power_tower":          tertiary(func(r *EquipmentRecord) *bool { return &r.PowerTower }),
	"loop_bands":           tertiary(func(r *EquipmentRecord) *bool { return &r.LoopBands }),
	"tube_bands":           tertiary(func(r *EquipmentRecord) *bool { return &r.TubeBands }),
	"flat_bench":           tertiary(func(r *EquipmentRecord) *bool { return &r.FlatBench }),
	"adjustable_bench":     tertiary(func(r *EquipmentRecord) *bool { return &r.AdjustableBench }),
}

const equipmentCategories = 5

var equipmentVersatilityRules = rubric.Rules[*EquipmentRecord]{
	{Name: "free_weights", Points: 25, Applies: func(r *EquipmentRecord) bool { return r.HasFreeWeights }},
	{Name: "dumbbells", Points: 15, Applies: func(r *EquipmentRecord) bool {
		return anyOf(r.Dumbbells, r.AdjustableDumbbells, r.FixedDumbbells)
	}},
	{Name: "machines", Points: 15, Applies: func(r *EquipmentRecord) bool { return r.HasMachines }},
	{Name: "bodyweight", Points: 10, Applies: func(r *EquipmentRecord) bool { return r.HasBodyweight }},
	{Name: "cardio", Points: 10, Applies: func(r *EquipmentRecord) bool { return r.HasCardio }},
	{Name: "accessories", Points: 10, Applies: func(r *EquipmentRecord) bool { return r.HasAccessories }},
	{Name: "broad_coverage", Points: 15, Applies: func(r *EquipmentRecord) bool { return r.CategoryCoveragePercentage >= 60 }},
	{Name: "wide_selection", Points: 10, Applies: func(r *EquipmentRecord) bool { return r.SelectionCount >= 6 }},
}

var equipmentIntensityRules = rubric.Rules[*EquipmentRecord]{
	{Name: "heavy_loading", Points: 35, Applies: func(r *EquipmentRecord) bool { return r.HasHeavyLoading }},
	{Name: "barbells", Points: 20, Applies: func(r *EquipmentRecord) bool {
		return anyOf(r.Barbells, r.OlympicBarbell, r.EzCurlBar, r.TrapBar)
	}},
	{Name: "kettlebells", Points: 10, Applies: func(r *EquipmentRecord) bool {
		return anyOf(r.Kettlebells, r.LightKettlebells, r.HeavyKettlebells)
	}},
	{Name: "cable_machine", Points: 10, Applies: func(r *EquipmentRecord) bool {
		return anyOf(r.CableMachine, r.CableSingleStack, r.CableDualCable)
	}},
	{Name: "pull_up_bar", Points: 10, Applies: func(r *EquipmentRecord) bool {
		return anyOf(r.PullUpBar, r.DoorwayBar, r.PowerTower)
	}},
	{Name: "cardio", Points: 10, Applies: func(r *EquipmentRecord) bool { return r.HasCardio }},
	{Name: "suspension_trainer", Points: 5, Applies: func(r *EquipmentRecord) bool { return r.SuspensionTrainer }},
}

// Equipment flattens an available-equipment selection.
func (c *Compiler) Equipment(sel selection.Selection) EquipmentRecord {
	return c.EquipmentFrom(sel, Source{})
}

// EquipmentFrom flattens sel, recording src in the backup region.
func (c *Compiler) EquipmentFrom(sel selection.Selection, src Source) EquipmentRecord {
	var r EquipmentRecord

	tc, dropped := applyTiers(sel, equipmentFlags, &r)
	r.SelectionCount = tc.selection
	r.PrimaryCount = tc.primary
	r.SecondaryCount = tc.secondary
	r.TertiaryCount = tc.tertiary
	dropped = withInvalid(dropped, src)
	r.DroppedKeyCount = len(dropped)

	deriveEquipment(&r)

	r.VersatilityScore = equipmentVersatilityRules.Score(&r)
	r.IntensityCapacity = equipmentIntensityRules.Score(&r)

	b := c.backup(sel, src, len(sel)+len(src.Invalid) == 0, EquipmentVersion)
	r.DataJSON, r.LastUpdated, r.FlattenerVersion = b.data, b.updated, b.version

	c.finish(model.Equipment, dropped)
	return r
}

func deriveEquipment(r *EquipmentRecord) {
	r.HasFreeWeights = anyOf(r.CategoryFreeWeights,
		r.Dumbbells, r.Barbells, r.Kettlebells,
		r.AdjustableDumbbells, r.FixedDumbbells, r.OlympicBarbell, r.EzCurlBar, r.TrapBar,
		r.LightKettlebells, r.HeavyKettlebells)
	r.HasMachines = anyOf(r.CategoryMachines,
		r.CableMachine, r.SmithMachine, r.LegPress, r.CableSingleStack, r.CableDualCable)
	r.HasBodyweight = anyOf(r.CategoryBodyweight,
		r.PullUpBar, r.DipStation, r.SuspensionTrainer, r.DoorwayBar, r.PowerTower)
	r.HasCardio = anyOf(r.CategoryCardio,
		r.Treadmill, r.StationaryBike, r.RowingMachine, r.JumpRope)
	r.HasAccessories = anyOf(r.CategoryAccessories,
		r.ResistanceBands, r.Bench, r.MedicineBall, r.FoamRoller,
		r.LoopBands, r.TubeBands, r.FlatBench, r.AdjustableBench)

	r.HasHeavyLoading = anyOf(r.Barbells, r.OlympicBarbell, r.TrapBar,
		r.HeavyKettlebells, r.SmithMachine, r.LegPress)
	r.BodyweightOnly = r.HasBodyweight &&
		!anyOf(r.HasFreeWeights, r.HasMachines, r.HasCardio, r.HasAccessories)

	r.CategoryCount = countTrue(r.HasFreeWeights, r.HasMachines, r.HasBodyweight, r.HasCardio, r.HasAccessories)
	r.CategoryCoveragePercentage = rubric.Percent(r.CategoryCount, equipmentCategories)
}
