// Package flatten compiles normalized selections into fixed-shape,
// analytics-ready records. Every record field is always present; flags are
// set through explicit per-domain key tables, so an id without a table entry
// is dropped (and counted) rather than guessed at.
package flatten

import (
	"bytes"
	"encoding/json"
	"slices"
	"time"

	"github.com/aiworkoutgenerator/workoutflat/internal/model"
)

// TimestampLayout is the ISO-8601 layout of every *_last_updated field.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Schema versions embedded in each record's backup region.
const (
	FocusVersion     = "1.0.0"
	EquipmentVersion = "1.0.0"
	SorenessVersion  = "1.0.0"
	StressVersion    = "1.0.0"
	DurationVersion  = "1.0.0"
)

// Observer is notified after each flatten call. Implementations must be
// safe for concurrent use.
type Observer interface {
	Flattened(domain model.Domain)
	Dropped(domain model.Domain, keys []string)
}

type nopObserver struct{}

func (nopObserver) Flattened(model.Domain)         {}
func (nopObserver) Dropped(model.Domain, []string) {}

// Option configures a Compiler.
type Option func(*Compiler)

// WithClock replaces the wall clock used for *_last_updated.
func WithClock(now func() time.Time) Option {
	return func(c *Compiler) { c.now = now }
}

// WithObserver registers an Observer for flatten and dropped-key events.
func WithObserver(o Observer) Option {
	return func(c *Compiler) {
		if o != nil {
			c.obs = o
		}
	}
}

// Compiler turns normalized selections into records. It keeps no state
// between calls and is safe for concurrent use. The clock is read once per
// call; apart from the timestamp, output is a pure function of input.
type Compiler struct {
	now func() time.Time
	obs Observer
}

// New creates a Compiler.
func New(opts ...Option) *Compiler {
	c := &Compiler{now: time.Now, obs: nopObserver{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Source describes the encoded document a selection or duration config was
// decoded from. Raw, when set, is recorded verbatim in the backup region so
// that fields the decoded view does not model survive. Invalid names the
// entries of Raw that could not be decoded; they are dropped and counted
// like unmapped keys.
type Source struct {
	Raw     json.RawMessage
	Invalid []string
}

type backup struct {
	data    *string
	updated string
	version string
}

// backup serializes the normalized input, preferring the source document
// when there is one. Empty input is recorded as JSON null.
func (c *Compiler) backup(v any, src Source, empty bool, version string) backup {
	b := backup{
		updated: c.now().UTC().Format(TimestampLayout),
		version: version,
	}
	if empty {
		return b
	}
	if len(src.Raw) > 0 {
		var buf bytes.Buffer
		if err := json.Compact(&buf, src.Raw); err == nil {
			s := buf.String()
			b.data = &s
			return b
		}
	}
	if data, err := json.Marshal(v); err == nil {
		s := string(data)
		b.data = &s
	}
	return b
}

// withInvalid merges undecodable source keys into the sorted dropped list.
func withInvalid(dropped []string, src Source) []string {
	if len(src.Invalid) == 0 {
		return dropped
	}
	out := append(slices.Clone(dropped), src.Invalid...)
	slices.Sort(out)
	return slices.Compact(out)
}

func (c *Compiler) finish(domain model.Domain, dropped []string) {
	if len(dropped) > 0 {
		c.obs.Dropped(domain, dropped)
	}
	c.obs.Flattened(domain)
}

func anyOf(flags ...bool) bool {
	for _, f := range flags {
		if f {
			return true
		}
	}
	return false
}

func countTrue(flags ...bool) int {
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return n
}
