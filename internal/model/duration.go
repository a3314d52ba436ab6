package model

// Phase is an optional warm-up or cool-down block of a session.
type Phase struct {
	Included bool `json:"included"`
	Duration int  `json:"duration"` // minutes
}

// DurationConfig is the canonical structured session-duration input.
type DurationConfig struct {
	TotalDuration int   `json:"totalDuration"` // minutes
	WorkingTime   int   `json:"workingTime"`   // minutes
	WarmUp        Phase `json:"warmUp"`
	CoolDown      Phase `json:"coolDown"`
}

// MaxMinutes bounds every minute count the duration domain accepts. Larger
// values are saturated when flattened; legacy scalars beyond it are read as
// absent.
const MaxMinutes = 7 * 24 * 60
