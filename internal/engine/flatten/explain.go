package flatten

import "github.com/aiworkoutgenerator/workoutflat/internal/engine/rubric"

// Explain lists, per score field, the rubric rules that fired for a record
// produced by this package. Unknown types yield nil.
func Explain(record any) map[string][]rubric.Contribution {
	switch r := record.(type) {
	case FocusRecord:
		return Explain(&r)
	case *FocusRecord:
		return map[string][]rubric.Contribution{
			"focus_intensity_capacity": focusIntensityRules.Explain(r),
			"focus_recovery_demand":    focusRecoveryRules.Explain(r),
		}
	case EquipmentRecord:
		return Explain(&r)
	case *EquipmentRecord:
		return map[string][]rubric.Contribution{
			"equipment_versatility_score":  equipmentVersatilityRules.Explain(r),
			"equipment_intensity_capacity": equipmentIntensityRules.Explain(r),
		}
	case SorenessRecord:
		return Explain(&r)
	case *SorenessRecord:
		return map[string][]rubric.Contribution{
			"soreness_training_restriction": sorenessRestrictionRules.Explain(r),
		}
	case StressRecord:
		return Explain(&r)
	case *StressRecord:
		return map[string][]rubric.Contribution{
			"stress_allostatic_load": stressLoadRules.Explain(r),
		}
	case DurationRecord:
		return Explain(&r)
	case *DurationRecord:
		return map[string][]rubric.Contribution{
			"duration_intensity_capacity": durationIntensityRules.Explain(r),
			"duration_structure_score":    durationStructureRules.Explain(r),
		}
	}
	return nil
}
