package taxonomy

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"maps"
	"sync"

	"github.com/aiworkoutgenerator/workoutflat/internal/model"
)

//go:embed data/*.yaml
var builtinFS embed.FS

// ErrNoTaxonomy is returned for domains that are not taxonomy-backed.
var ErrNoTaxonomy = errors.New("taxonomy: domain has no taxonomy")

var loadBuiltins = sync.OnceValues(func() (map[model.Domain]*Catalog, error) {
	cats := make(map[model.Domain]*Catalog)
	for _, d := range model.Domains() {
		if !d.HasTaxonomy() {
			continue
		}
		data, err := builtinFS.ReadFile("data/" + string(d) + ".yaml")
		if err != nil {
			return nil, fmt.Errorf("taxonomy: builtin %s: %w", d, err)
		}
		c, err := Load(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("taxonomy: builtin %s: %w", d, err)
		}
		cats[d] = c
	}
	return cats, nil
})

// Builtins returns the catalogs that ship with the binary, keyed by domain.
// The catalogs are parsed once per process and shared; the returned map is
// a fresh copy the caller may modify.
func Builtins() (map[model.Domain]*Catalog, error) {
	cats, err := loadBuiltins()
	if err != nil {
		return nil, err
	}
	return maps.Clone(cats), nil
}

// Builtin returns the shipped catalog for one domain.
func Builtin(d model.Domain) (*Catalog, error) {
	if !d.HasTaxonomy() {
		return nil, fmt.Errorf("%w: %s", ErrNoTaxonomy, d)
	}
	cats, err := loadBuiltins()
	if err != nil {
		return nil, err
	}
	c, ok := cats[d]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoTaxonomy, d)
	}
	return c, nil
}

// MustBuiltin is Builtin for package-level initialisation and tests.
func MustBuiltin(d model.Domain) *Catalog {
	c, err := Builtin(d)
	if err != nil {
		panic(err)
	}
	return c
}
