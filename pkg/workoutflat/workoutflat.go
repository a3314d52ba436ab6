package workoutflat

import (
	"encoding/json"
	"fmt"

	"github.com/aiworkoutgenerator/workoutflat/internal/engine"
	"github.com/aiworkoutgenerator/workoutflat/internal/engine/flatten"
	"github.com/aiworkoutgenerator/workoutflat/internal/engine/selection"
	"github.com/aiworkoutgenerator/workoutflat/internal/engine/taxonomy"
	"github.com/aiworkoutgenerator/workoutflat/internal/metrics"
	"github.com/aiworkoutgenerator/workoutflat/internal/model"
)

// ErrUnknownDomain is returned for domain names the Flattener does not
// serve.
var ErrUnknownDomain = engine.ErrUnknownDomain

// Flattener manages selections and compiles them into records.
// Safe for concurrent use.
type Flattener struct {
	engine *engine.Engine
}

// New creates a Flattener over the built-in taxonomies, or over the
// tables found in WithTaxonomyDir.
func New(opts ...Option) (*Flattener, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	cats, err := taxonomy.LoadDir(o.taxonomyDir)
	if err != nil {
		return nil, fmt.Errorf("workoutflat: %w", err)
	}

	copts := []flatten.Option{flatten.WithClock(o.now)}
	var obs engine.Observer
	if o.registerer != nil {
		c := metrics.New(o.registerer, nil)
		copts = append(copts, flatten.WithObserver(c))
		obs = c
	}
	return &Flattener{engine: engine.New(cats, flatten.New(copts...), obs)}, nil
}

// Flatten compiles raw input for the named domain. raw may be the
// structured JSON form, a legacy id list, a legacy number (duration only)
// or empty. Malformed input yields the empty record.
func (f *Flattener) Flatten(domain string, raw json.RawMessage) (any, error) {
	d, ok := model.ParseDomain(domain)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDomain, domain)
	}
	return f.engine.Flatten(d, raw)
}

// FlattenFocus compiles a focus selection.
func (f *Flattener) FlattenFocus(sel Selection) FocusRecord {
	return f.engine.Compiler().Focus(sel)
}

// FlattenEquipment compiles an equipment selection.
func (f *Flattener) FlattenEquipment(sel Selection) EquipmentRecord {
	return f.engine.Compiler().Equipment(sel)
}

// FlattenSoreness compiles a soreness selection.
func (f *Flattener) FlattenSoreness(sel Selection) SorenessRecord {
	return f.engine.Compiler().Soreness(sel)
}

// FlattenStress compiles a stress selection.
func (f *Flattener) FlattenStress(sel Selection) StressRecord {
	return f.engine.Compiler().Stress(sel)
}

// FlattenDuration compiles a duration configuration. nil yields the empty
// record.
func (f *Flattener) FlattenDuration(cfg *DurationConfig) DurationRecord {
	return f.engine.Compiler().Duration(cfg)
}

// Toggle selects or deselects id at level in a three-tier domain. On
// selection it returns the child ids of id; deselecting removes the whole
// subtree. sel is not modified.
func (f *Flattener) Toggle(domain Domain, sel Selection, id string, level Level) (Selection, []string, error) {
	m, err := f.manager(domain)
	if err != nil {
		return nil, nil, err
	}
	next, children := m.Toggle(sel, id, level)
	return next, children, nil
}

// ToggleCategory selects or deselects a category of a single-tier domain.
func (f *Flattener) ToggleCategory(domain Domain, sel Selection, id string) (Selection, error) {
	m, err := f.manager(domain)
	if err != nil {
		return nil, err
	}
	return m.ToggleCategory(sel, id), nil
}

// SetRating rates a selected category. Unselected categories are left
// alone.
func (f *Flattener) SetRating(domain Domain, sel Selection, id string, rating int) (Selection, error) {
	m, err := f.manager(domain)
	if err != nil {
		return nil, err
	}
	return m.SetRating(sel, id, rating), nil
}

// Explain lists the scoring rules that fired for a record returned by
// this package, keyed by score field. Unknown values yield nil.
func (f *Flattener) Explain(record any) map[string][]Contribution {
	return flatten.Explain(record)
}

// Domains returns every supported domain in a stable order.
func (f *Flattener) Domains() []Domain {
	var out []Domain
	for _, d := range model.Domains() {
		if f.engine.Serves(d) {
			out = append(out, d)
		}
	}
	return out
}

func (f *Flattener) manager(d Domain) (*selection.Manager, error) {
	m := f.engine.Manager(d)
	if m == nil {
		return nil, fmt.Errorf("%w: %q has no taxonomy", ErrUnknownDomain, d)
	}
	return m, nil
}
