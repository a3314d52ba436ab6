// Package normalize resolves the accepted input shapes of a domain into the
// single canonical form the flattening compiler consumes. Shape detection
// happens once, in Detect or one of the constructors; the per-domain
// normalizers switch on the resulting Kind and never inspect raw bytes again.
package normalize

import (
	"bytes"
	"encoding/json"
	"math"
	"slices"

	"github.com/aiworkoutgenerator/workoutflat/internal/engine/selection"
	"github.com/aiworkoutgenerator/workoutflat/internal/engine/taxonomy"
	"github.com/aiworkoutgenerator/workoutflat/internal/model"
)

// Kind tags the shape of an Input.
type Kind int

const (
	KindAbsent       Kind = iota // undefined or null
	KindObject                   // current structured format
	KindList                     // legacy flat list of node ids
	KindScalar                   // legacy bare number
	KindUnrecognized             // anything else; normalizes to empty
)

func (k Kind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindObject:
		return "object"
	case KindList:
		return "list"
	case KindScalar:
		return "scalar"
	default:
		return "unrecognized"
	}
}

// Input is a tagged union over the accepted input shapes. The zero value is
// KindAbsent.
type Input struct {
	Kind   Kind
	object json.RawMessage
	list   []string
	scalar float64
}

// Detect classifies raw JSON. It never fails: malformed documents and
// shapes outside the accepted three come back as Unrecognized.
func Detect(raw json.RawMessage) Input {
	b := bytes.TrimSpace(raw)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return Input{Kind: KindAbsent}
	}

	switch b[0] {
	case '{':
		if json.Valid(b) {
			return Input{Kind: KindObject, object: bytes.Clone(b)}
		}
	case '[':
		var ids []string
		if err := json.Unmarshal(b, &ids); err == nil {
			return List(ids...)
		}
	default:
		var n float64
		if err := json.Unmarshal(b, &n); err == nil {
			return Scalar(n)
		}
	}
	return Input{Kind: KindUnrecognized}
}

// ObjectJSON wraps an already-encoded structured document.
func ObjectJSON(raw json.RawMessage) Input {
	in := Detect(raw)
	if in.Kind != KindObject && in.Kind != KindAbsent {
		return Input{Kind: KindUnrecognized}
	}
	return in
}

// FromSelection wraps a selection in the current structured format.
func FromSelection(sel selection.Selection) Input {
	if sel == nil {
		return Input{Kind: KindAbsent}
	}
	b, err := json.Marshal(sel)
	if err != nil {
		return Input{Kind: KindUnrecognized}
	}
	return Input{Kind: KindObject, object: b}
}

// FromDuration wraps a structured duration configuration.
func FromDuration(cfg *model.DurationConfig) Input {
	if cfg == nil {
		return Input{Kind: KindAbsent}
	}
	b, err := json.Marshal(cfg)
	if err != nil {
		return Input{Kind: KindUnrecognized}
	}
	return Input{Kind: KindObject, object: b}
}

// List wraps a legacy flat list of node ids.
func List(ids ...string) Input {
	return Input{Kind: KindList, list: append([]string(nil), ids...)}
}

// Scalar wraps a legacy bare number.
func Scalar(n float64) Input {
	return Input{Kind: KindScalar, scalar: n}
}

// Raw returns the structured document of an object input, or nil for every
// other shape.
func (in Input) Raw() json.RawMessage {
	if in.Kind != KindObject {
		return nil
	}
	return in.object
}

// Document is the canonical selection of a taxonomy-backed domain together
// with the keys of the structured input whose entries could not be decoded.
type Document struct {
	Selection selection.Selection
	Invalid   []string // sorted
}

// Selection produces the canonical selection map for a taxonomy-backed
// domain. See Resolve.
func Selection(cat *taxonomy.Catalog, in Input) selection.Selection {
	return Resolve(cat, in).Selection
}

// Resolve produces the canonical selection for a taxonomy-backed domain.
// Structured input is decoded entry by entry: an entry that does not decode
// is left out of the selection and reported in Invalid, and its siblings are
// kept. Absent, scalar and unrecognized input yield an empty map. Legacy
// lists are only meaningful for three-tier taxonomies; for single-tier
// domains they also yield an empty map.
func Resolve(cat *taxonomy.Catalog, in Input) Document {
	switch in.Kind {
	case KindObject:
		return fromObject(in.object)
	case KindList:
		if cat.Tiers() != 3 {
			return Document{Selection: selection.Selection{}}
		}
		return Document{Selection: fromList(cat, in.list)}
	default:
		return Document{Selection: selection.Selection{}}
	}
}

func fromObject(raw json.RawMessage) Document {
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return Document{Selection: selection.Selection{}}
	}
	doc := Document{Selection: make(selection.Selection, len(entries))}
	for id, data := range entries {
		var e selection.Entry
		if err := json.Unmarshal(data, &e); err != nil {
			doc.Invalid = append(doc.Invalid, id)
			continue
		}
		doc.Selection[id] = e
	}
	slices.Sort(doc.Invalid)
	return doc
}

// fromList synthesizes entries for legacy id lists. Each id is placed at the
// level the taxonomy knows it by; ids the taxonomy does not know are kept as
// opaque entries so that the compiler can account for them as dropped keys.
func fromList(cat *taxonomy.Catalog, ids []string) selection.Selection {
	sel := make(selection.Selection, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		n, ok := cat.Node(id)
		if !ok {
			sel[id] = selection.Entry{Selected: true, Label: id}
			continue
		}
		sel[id] = selection.Entry{
			Selected:  true,
			Label:     n.Label,
			Level:     n.Level,
			ParentKey: n.ParentID,
			Children:  n.ChildIDs,
		}
	}
	return sel
}

// Duration produces the canonical duration configuration, or nil when the
// input carries none. A legacy scalar is read as a total in minutes with no
// warm-up or cool-down structure, all of it working time; scalars beyond
// model.MaxMinutes in magnitude are read as absent.
func Duration(in Input) *model.DurationConfig {
	switch in.Kind {
	case KindObject:
		var cfg model.DurationConfig
		if err := json.Unmarshal(in.object, &cfg); err != nil {
			return nil
		}
		return &cfg
	case KindScalar:
		if math.IsNaN(in.scalar) || math.Abs(in.scalar) > model.MaxMinutes {
			return nil
		}
		minutes := int(math.Round(in.scalar))
		return &model.DurationConfig{
			TotalDuration: minutes,
			WorkingTime:   minutes,
		}
	default:
		return nil
	}
}
