package model

// Domain identifies a selection domain. Its name doubles as the field
// prefix of every flattened field it produces.
type Domain string

const (
	Focus     Domain = "focus"
	Equipment Domain = "equipment"
	Soreness  Domain = "soreness"
	Stress    Domain = "stress"
	Duration  Domain = "duration"
)

// Domains returns every supported domain in a stable order.
func Domains() []Domain {
	return []Domain{Focus, Equipment, Soreness, Stress, Duration}
}

// ParseDomain maps a name to a Domain.
func ParseDomain(s string) (Domain, bool) {
	for _, d := range Domains() {
		if string(d) == s {
			return d, true
		}
	}
	return "", false
}

// Prefix returns the flattened field prefix, e.g. "focus_".
func (d Domain) Prefix() string {
	return string(d) + "_"
}

// HasTaxonomy reports whether the domain is backed by a taxonomy catalog.
func (d Domain) HasTaxonomy() bool {
	return d != Duration && d != ""
}
