package workoutflat

import (
	"github.com/aiworkoutgenerator/workoutflat/internal/engine/flatten"
	"github.com/aiworkoutgenerator/workoutflat/internal/engine/rubric"
	"github.com/aiworkoutgenerator/workoutflat/internal/engine/selection"
	"github.com/aiworkoutgenerator/workoutflat/internal/model"
)

// Domain names a selection domain; it is also the field prefix of its
// record.
type Domain = model.Domain

const (
	Focus     = model.Focus
	Equipment = model.Equipment
	Soreness  = model.Soreness
	Stress    = model.Stress
	Duration  = model.Duration
)

// Level is a taxonomy tier.
type Level = model.Level

const (
	LevelPrimary   = model.LevelPrimary
	LevelSecondary = model.LevelSecondary
	LevelTertiary  = model.LevelTertiary
	LevelCategory  = model.LevelCategory
)

// Selection is the sparse selection state of one domain, keyed by node id.
type Selection = selection.Selection

// Entry is one selected node.
type Entry = selection.Entry

// DurationConfig is a structured session-duration input.
type DurationConfig = model.DurationConfig

// Phase is an optional warm-up or cool-down block.
type Phase = model.Phase

// Flattened records. Field names and JSON keys are stable.
type (
	FocusRecord     = flatten.FocusRecord
	EquipmentRecord = flatten.EquipmentRecord
	SorenessRecord  = flatten.SorenessRecord
	StressRecord    = flatten.StressRecord
	DurationRecord  = flatten.DurationRecord
)

// Contribution is one scoring rule that fired for a record.
type Contribution = rubric.Contribution
