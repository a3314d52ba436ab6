package taxonomy

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/aiworkoutgenerator/workoutflat/internal/model"
)

// document is the on-disk YAML form of a taxonomy. Nodes nest through
// children; levels are implied by depth.
type document struct {
	Domain string    `yaml:"domain" validate:"required"`
	Tiers  int       `yaml:"tiers" validate:"oneof=1 3"`
	Nodes  []docNode `yaml:"nodes" validate:"required,min=1,dive"`
}

type docNode struct {
	ID       string    `yaml:"id" validate:"required"`
	Label    string    `yaml:"label" validate:"required"`
	Children []docNode `yaml:"children,omitempty" validate:"omitempty,dive"`
}

var docValidate = validator.New()

// Load decodes and indexes a YAML taxonomy document. Unknown fields are
// rejected so that typos in hand-edited tables surface immediately.
func Load(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("taxonomy: decode: %w", err)
	}
	if err := docValidate.Struct(doc); err != nil {
		return nil, fmt.Errorf("taxonomy: validate: %w", err)
	}

	domain, ok := model.ParseDomain(doc.Domain)
	if !ok || !domain.HasTaxonomy() {
		return nil, fmt.Errorf("taxonomy: unknown domain %q", doc.Domain)
	}

	levels := levelsFor(doc.Tiers)
	var nodes []model.TaxonomyNode
	var walk func(ns []docNode, depth int, parent string) error
	walk = func(ns []docNode, depth int, parent string) error {
		for _, dn := range ns {
			if depth >= len(levels) {
				return fmt.Errorf("taxonomy %s: node %q nested deeper than %d tiers", domain, dn.ID, doc.Tiers)
			}
			n := model.TaxonomyNode{
				ID:       dn.ID,
				Label:    dn.Label,
				Level:    levels[depth],
				ParentID: parent,
			}
			for _, c := range dn.Children {
				n.ChildIDs = append(n.ChildIDs, c.ID)
			}
			nodes = append(nodes, n)
			if err := walk(dn.Children, depth+1, dn.ID); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(doc.Nodes, 0, ""); err != nil {
		return nil, err
	}

	return New(domain, doc.Tiers, nodes)
}

func levelsFor(tiers int) []model.Level {
	if tiers == 1 {
		return []model.Level{model.LevelCategory}
	}
	return []model.Level{model.LevelPrimary, model.LevelSecondary, model.LevelTertiary}
}

// LoadFile reads a taxonomy document from disk.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("taxonomy: read %s: %w", path, err)
	}
	c, err := Load(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// LoadDir returns the built-in catalogs with any <domain>.yaml found in dir
// taking the place of the shipped table. An empty dir yields the built-ins.
func LoadDir(dir string) (map[model.Domain]*Catalog, error) {
	cats, err := Builtins()
	if err != nil {
		return nil, err
	}
	if dir == "" {
		return cats, nil
	}
	for domain := range cats {
		path := filepath.Join(dir, string(domain)+".yaml")
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		c, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		if c.Domain() != domain {
			return nil, fmt.Errorf("taxonomy: %s declares domain %q", path, c.Domain())
		}
		cats[domain] = c
	}
	return cats, nil
}
