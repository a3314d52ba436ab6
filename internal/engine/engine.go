package engine

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aiworkoutgenerator/workoutflat/internal/engine/flatten"
	"github.com/aiworkoutgenerator/workoutflat/internal/engine/normalize"
	"github.com/aiworkoutgenerator/workoutflat/internal/engine/selection"
	"github.com/aiworkoutgenerator/workoutflat/internal/engine/taxonomy"
	"github.com/aiworkoutgenerator/workoutflat/internal/model"
)

// ErrUnknownDomain is returned for requests naming a domain the engine does
// not serve.
var ErrUnknownDomain = errors.New("engine: unknown domain")

// Observer receives engine events. It extends the compiler's observer with
// the input shape detected for each request.
type Observer interface {
	flatten.Observer
	InputShape(domain model.Domain, kind normalize.Kind)
}

// Engine orchestrates the detect → normalize → flatten pipeline for every
// domain.
type Engine struct {
	catalogs map[model.Domain]*taxonomy.Catalog
	managers map[model.Domain]*selection.Manager
	compiler *flatten.Compiler
	observer Observer
}

// New creates an Engine over the provided catalogs. Taxonomy-backed
// domains without a catalog are rejected by Process.
func New(catalogs map[model.Domain]*taxonomy.Catalog, cmp *flatten.Compiler, obs Observer) *Engine {
	e := &Engine{
		catalogs: make(map[model.Domain]*taxonomy.Catalog, len(catalogs)),
		managers: make(map[model.Domain]*selection.Manager, len(catalogs)),
		compiler: cmp,
		observer: obs,
	}
	for d, cat := range catalogs {
		e.catalogs[d] = cat
		e.managers[d] = selection.NewManager(cat)
	}
	if e.compiler == nil {
		e.compiler = flatten.New()
	}
	return e
}

// Catalog returns the taxonomy for d, or nil.
func (e *Engine) Catalog(d model.Domain) *taxonomy.Catalog {
	return e.catalogs[d]
}

// Manager returns the selection manager for d, or nil.
func (e *Engine) Manager(d model.Domain) *selection.Manager {
	return e.managers[d]
}

// Compiler returns the engine's flattening compiler.
func (e *Engine) Compiler() *flatten.Compiler {
	return e.compiler
}

// Serves reports whether the engine can flatten requests for d.
func (e *Engine) Serves(d model.Domain) bool {
	if d == model.Duration {
		return true
	}
	_, ok := e.catalogs[d]
	return ok
}

// Flatten normalizes raw input for d, in any accepted shape, and compiles
// it. Malformed input yields the empty record; only an unserved domain is
// an error.
func (e *Engine) Flatten(d model.Domain, raw json.RawMessage) (any, error) {
	if !e.Serves(d) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDomain, d)
	}
	in := normalize.Detect(raw)
	if e.observer != nil {
		e.observer.InputShape(d, in.Kind)
	}
	return e.FlattenInput(d, in), nil
}

// FlattenInput compiles an already-detected input. d must be served.
// Structured input is recorded verbatim in the record's backup region.
func (e *Engine) FlattenInput(d model.Domain, in normalize.Input) any {
	if d == model.Duration {
		return e.compiler.DurationFrom(normalize.Duration(in), flatten.Source{Raw: in.Raw()})
	}
	doc := normalize.Resolve(e.catalogs[d], in)
	src := flatten.Source{Raw: in.Raw(), Invalid: doc.Invalid}
	switch d {
	case model.Focus:
		return e.compiler.FocusFrom(doc.Selection, src)
	case model.Equipment:
		return e.compiler.EquipmentFrom(doc.Selection, src)
	case model.Soreness:
		return e.compiler.SorenessFrom(doc.Selection, src)
	case model.Stress:
		return e.compiler.StressFrom(doc.Selection, src)
	}
	return nil
}

// Process flattens a single request.
func (e *Engine) Process(req model.Request) (model.Result, error) {
	rec, err := e.Flatten(req.Domain, req.Data)
	if err != nil {
		return model.Result{}, err
	}
	return model.Result{ID: req.ID, Domain: req.Domain, Record: rec}, nil
}

// ProcessBatch flattens a slice of requests, stopping at the first request
// for an unserved domain.
func (e *Engine) ProcessBatch(reqs []model.Request) ([]model.Result, error) {
	results := make([]model.Result, 0, len(reqs))
	for _, req := range reqs {
		res, err := e.Process(req)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}
