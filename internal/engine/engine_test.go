package engine

import (
	"encoding/json"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/aiworkoutgenerator/workoutflat/internal/engine/flatten"
	"github.com/aiworkoutgenerator/workoutflat/internal/engine/normalize"
	"github.com/aiworkoutgenerator/workoutflat/internal/engine/taxonomy"
	"github.com/aiworkoutgenerator/workoutflat/internal/engine/testdata"
	"github.com/aiworkoutgenerator/workoutflat/internal/model"
)

var testNow = time.Date(2026, 2, 19, 12, 0, 0, 0, time.UTC)

type countingObserver struct {
	mu        sync.Mutex
	flattened map[model.Domain]int
	dropped   map[model.Domain]int
	shapes    map[string]int
}

func newCountingObserver() *countingObserver {
	return &countingObserver{
		flattened: map[model.Domain]int{},
		dropped:   map[model.Domain]int{},
		shapes:    map[string]int{},
	}
}

func (o *countingObserver) Flattened(d model.Domain) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.flattened[d]++
}

func (o *countingObserver) Dropped(d model.Domain, keys []string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.dropped[d] += len(keys)
}

func (o *countingObserver) InputShape(d model.Domain, k normalize.Kind) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.shapes[string(d)+"/"+k.String()]++
}

// newTestEngine creates a fully wired engine over the built-in catalogs and
// a fixed clock.
func newTestEngine(t *testing.T, obs *countingObserver) *Engine {
	t.Helper()

	cats, err := taxonomy.Builtins()
	if err != nil {
		t.Fatalf("failed to load taxonomies: %v", err)
	}
	opts := []flatten.Option{flatten.WithClock(func() time.Time { return testNow })}
	if obs != nil {
		opts = append(opts, flatten.WithObserver(obs))
		return New(cats, flatten.New(opts...), obs)
	}
	return New(cats, flatten.New(opts...), nil)
}

func recordFields(t *testing.T, rec any) map[string]any {
	t.Helper()
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal record: %v", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("unmarshal record: %v", err)
	}
	return fields
}

func TestProcessCorpus(t *testing.T) {
	eng := newTestEngine(t, nil)

	entries, err := testdata.LoadCorpus()
	if err != nil {
		t.Fatalf("LoadCorpus() error: %v", err)
	}

	for _, e := range entries {
		t.Run(e.Name, func(t *testing.T) {
			if got := normalize.Detect(e.Data).Kind.String(); got != e.Shape {
				t.Errorf("shape = %s, want %s", got, e.Shape)
			}

			res, err := eng.Process(model.Request{ID: "x", Domain: model.Domain(e.Domain), Data: e.Data})
			if err != nil {
				t.Fatalf("Process() error: %v", err)
			}
			if res.ID != "x" || string(res.Domain) != e.Domain {
				t.Errorf("result header = (%q, %q)", res.ID, res.Domain)
			}

			fields := recordFields(t, res.Record)
			for field, want := range e.Expect {
				got, ok := fields[field]
				if !ok {
					t.Errorf("field %s missing", field)
					continue
				}
				if got != want {
					t.Errorf("%s = %v, want %v", field, got, want)
				}
			}
			if got := fields[e.Domain+"_last_updated"]; got != "2026-02-19T12:00:00.000Z" {
				t.Errorf("last_updated = %v", got)
			}
		})
	}
}

func TestProcessUnknownDomain(t *testing.T) {
	eng := newTestEngine(t, nil)

	_, err := eng.Process(model.Request{Domain: "diet", Data: json.RawMessage(`{}`)})
	if !errors.Is(err, ErrUnknownDomain) {
		t.Fatalf("err = %v, want ErrUnknownDomain", err)
	}
}

func TestProcessMissingCatalog(t *testing.T) {
	cats, err := taxonomy.Builtins()
	if err != nil {
		t.Fatal(err)
	}
	delete(cats, model.Stress)
	eng := New(cats, nil, nil)

	if eng.Serves(model.Stress) {
		t.Error("Serves(stress) = true without a catalog")
	}
	if !eng.Serves(model.Duration) {
		t.Error("Serves(duration) = false")
	}
	if _, err := eng.Flatten(model.Stress, nil); !errors.Is(err, ErrUnknownDomain) {
		t.Errorf("err = %v, want ErrUnknownDomain", err)
	}
}

func TestProcessBatch(t *testing.T) {
	obs := newCountingObserver()
	eng := newTestEngine(t, obs)

	reqs := []model.Request{
		{ID: "1", Domain: model.Focus, Data: json.RawMessage(`["upper_body","chest","biceps_old"]`)},
		{ID: "2", Domain: model.Duration, Data: json.RawMessage(`30`)},
		{ID: "3", Domain: model.Soreness, Data: json.RawMessage(`{"knees":{"selected":true,"rating":4}}`)},
	}

	results, err := eng.ProcessBatch(reqs)
	if err != nil {
		t.Fatalf("ProcessBatch() error: %v", err)
	}
	if len(results) != len(reqs) {
		t.Fatalf("got %d results, want %d", len(results), len(reqs))
	}
	for i, res := range results {
		if res.ID != reqs[i].ID {
			t.Errorf("results[%d].ID = %q, want %q", i, res.ID, reqs[i].ID)
		}
	}

	focus, ok := results[0].Record.(flatten.FocusRecord)
	if !ok {
		t.Fatalf("results[0].Record is %T", results[0].Record)
	}
	if focus.DroppedKeyCount != 1 {
		t.Errorf("dropped_key_count = %d, want 1", focus.DroppedKeyCount)
	}
	if dur := results[1].Record.(flatten.DurationRecord); !dur.CategoryStandard {
		t.Error("30 minutes should be standard")
	}

	if obs.dropped[model.Focus] != 1 {
		t.Errorf("observer dropped = %d, want 1", obs.dropped[model.Focus])
	}
	if obs.flattened[model.Soreness] != 1 {
		t.Errorf("observer flattened soreness = %d, want 1", obs.flattened[model.Soreness])
	}
	if obs.shapes["duration/scalar"] != 1 || obs.shapes["focus/list"] != 1 {
		t.Errorf("shapes = %v", obs.shapes)
	}
}

func TestProcessBatchStopsOnError(t *testing.T) {
	eng := newTestEngine(t, nil)

	_, err := eng.ProcessBatch([]model.Request{
		{Domain: model.Focus},
		{Domain: "nutrition"},
	})
	if !errors.Is(err, ErrUnknownDomain) {
		t.Fatalf("err = %v, want ErrUnknownDomain", err)
	}
}

func TestProcessConcurrent(t *testing.T) {
	obs := newCountingObserver()
	eng := newTestEngine(t, obs)
	want := eng.Compiler().Focus(eng.Manager(model.Focus).Clear())

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := eng.Process(model.Request{Domain: model.Focus, Data: json.RawMessage(`{}`)})
			if err != nil {
				t.Errorf("Process() error: %v", err)
				return
			}
			if got := res.Record.(flatten.FocusRecord); !reflect.DeepEqual(got, want) {
				t.Errorf("concurrent record differs: %+v", got)
			}
		}()
	}
	wg.Wait()

	if obs.flattened[model.Focus] != 17 {
		t.Errorf("flattened = %d, want 17", obs.flattened[model.Focus])
	}
}

func TestFlattenKeepsSourceFields(t *testing.T) {
	eng := newTestEngine(t, nil)

	rec, err := eng.Flatten(model.Focus, json.RawMessage(
		`{"chest":{"selected":true,"label":"Chest","level":"secondary","icon":"pec","expanded":true}}`))
	if err != nil {
		t.Fatalf("Flatten() error: %v", err)
	}
	focus := rec.(flatten.FocusRecord)
	if !focus.UpperChest {
		t.Error("focus_upper_chest = false")
	}
	want := `{"chest":{"selected":true,"label":"Chest","level":"secondary","icon":"pec","expanded":true}}`
	if focus.DataJSON == nil || *focus.DataJSON != want {
		t.Errorf("data_json = %v, want %s", focus.DataJSON, want)
	}

	dur, err := eng.Flatten(model.Duration, json.RawMessage(`{"totalDuration":30,"workingTime":30,"preset":"quick"}`))
	if err != nil {
		t.Fatalf("Flatten() error: %v", err)
	}
	if got := dur.(flatten.DurationRecord).DataJSON; got == nil || *got != `{"totalDuration":30,"workingTime":30,"preset":"quick"}` {
		t.Errorf("duration data_json = %v", got)
	}
}

func TestFlattenBadEntryKeepsSiblings(t *testing.T) {
	obs := newCountingObserver()
	eng := newTestEngine(t, obs)

	rec, err := eng.Flatten(model.Soreness, json.RawMessage(
		`{"neck":{"selected":true,"label":"Neck","rating":3},"knees":{"selected":true,"label":"Knees","rating":3.5}}`))
	if err != nil {
		t.Fatalf("Flatten() error: %v", err)
	}
	sore := rec.(flatten.SorenessRecord)
	if !sore.HasNeck || sore.TotalAreas != 1 {
		t.Errorf("has_neck = %v, total_areas = %d", sore.HasNeck, sore.TotalAreas)
	}
	if sore.DroppedKeyCount != 1 || sore.DataJSON == nil {
		t.Errorf("dropped_key_count = %d, data_json = %v", sore.DroppedKeyCount, sore.DataJSON)
	}

	rec, err = eng.Flatten(model.Focus, json.RawMessage(
		`{"upper_body":{"selected":true,"label":"Upper Body","level":"primary"},"chest":true}`))
	if err != nil {
		t.Fatalf("Flatten() error: %v", err)
	}
	focus := rec.(flatten.FocusRecord)
	if !focus.RegionUpperBody || focus.SelectionCount != 1 {
		t.Errorf("region_upper_body = %v, selection_count = %d", focus.RegionUpperBody, focus.SelectionCount)
	}
	if obs.dropped[model.Soreness] != 1 || obs.dropped[model.Focus] != 1 {
		t.Errorf("observer dropped = %v", obs.dropped)
	}
}

func TestFlattenOversizedDuration(t *testing.T) {
	eng := newTestEngine(t, nil)

	rec, err := eng.Flatten(model.Duration, json.RawMessage(`1e20`))
	if err != nil {
		t.Fatalf("Flatten() error: %v", err)
	}
	dur := rec.(flatten.DurationRecord)
	if dur.DataJSON != nil || dur.TotalMinutes != 0 {
		t.Errorf("oversized scalar: total = %d, data_json = %v", dur.TotalMinutes, dur.DataJSON)
	}
}
