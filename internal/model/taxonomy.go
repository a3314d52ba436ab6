package model

// Level is the tier a taxonomy node occupies within its domain.
type Level string

const (
	LevelPrimary   Level = "primary"
	LevelSecondary Level = "secondary"
	LevelTertiary  Level = "tertiary"
	LevelCategory  Level = "category" // single-tier rating domains
)

// ParentLevel returns the level one tier above l, or "" when l has no parent tier.
func (l Level) ParentLevel() Level {
	switch l {
	case LevelSecondary:
		return LevelPrimary
	case LevelTertiary:
		return LevelSecondary
	default:
		return ""
	}
}

// Valid reports whether l is one of the known levels.
func (l Level) Valid() bool {
	switch l {
	case LevelPrimary, LevelSecondary, LevelTertiary, LevelCategory:
		return true
	}
	return false
}

// TaxonomyNode is a single static node in a domain taxonomy.
type TaxonomyNode struct {
	ID       string
	Label    string
	Level    Level
	ParentID string   // empty for primary and category nodes
	ChildIDs []string // ordered; nil for leaves
}
