package flatten

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aiworkoutgenerator/workoutflat/internal/engine/normalize"
	"github.com/aiworkoutgenerator/workoutflat/internal/engine/rubric"
	"github.com/aiworkoutgenerator/workoutflat/internal/engine/selection"
	"github.com/aiworkoutgenerator/workoutflat/internal/engine/taxonomy"
	"github.com/aiworkoutgenerator/workoutflat/internal/model"
)

var fixedTime = time.Date(2026, 3, 14, 9, 26, 53, 589_000_000, time.FixedZone("CET", 3600))

func newTestCompiler(opts ...Option) *Compiler {
	return New(append([]Option{WithClock(func() time.Time { return fixedTime })}, opts...)...)
}

type recordingObserver struct {
	flattened []model.Domain
	dropped   map[model.Domain][]string
}

func (o *recordingObserver) Flattened(d model.Domain) { o.flattened = append(o.flattened, d) }

func (o *recordingObserver) Dropped(d model.Domain, keys []string) {
	if o.dropped == nil {
		o.dropped = make(map[model.Domain][]string)
	}
	o.dropped[d] = append(o.dropped[d], keys...)
}

func toggleAll(t *testing.T, d model.Domain, ids ...string) selection.Selection {
	t.Helper()
	cat := taxonomy.MustBuiltin(d)
	m := selection.NewManager(cat)
	sel := selection.Selection{}
	for _, id := range ids {
		n, ok := cat.Node(id)
		require.True(t, ok, "unknown id %q", id)
		sel, _ = m.Toggle(sel, id, n.Level)
	}
	return sel
}

func TestFocusLegacyEquivalence(t *testing.T) {
	c := newTestCompiler()
	cat := taxonomy.MustBuiltin(model.Focus)

	legacy := c.Focus(normalize.Selection(cat, normalize.List("upper_body", "chest")))
	modern := c.Focus(toggleAll(t, model.Focus, "upper_body", "chest"))

	assert.True(t, legacy.RegionUpperBody)
	assert.True(t, legacy.UpperChest)
	assert.True(t, legacy.HasUpperBody)
	if diff := cmp.Diff(modern, legacy); diff != "" {
		t.Errorf("legacy and modern records differ (-modern +legacy):\n%s", diff)
	}
}

func TestFocusCounts(t *testing.T) {
	c := newTestCompiler()
	r := c.Focus(toggleAll(t, model.Focus, "upper_body", "chest", "upper_pecs", "lats", "deadlift_pattern"))

	assert.Equal(t, 5, r.SelectionCount)
	assert.Equal(t, 1, r.PrimaryCount)
	assert.Equal(t, 1, r.SecondaryCount)
	assert.Equal(t, 3, r.TertiaryCount)
	assert.Equal(t, 2, r.RegionCount)
	assert.Equal(t, 50, r.RegionCoveragePercentage)
	assert.Equal(t, 60, r.SpecificityPercentage)
	assert.True(t, r.HasPushMuscles)
	assert.True(t, r.HasPullMuscles)
	assert.True(t, r.HasPosteriorChain)
	assert.False(t, r.HasOlympicLifts)
}

func TestFocusOlympicScores(t *testing.T) {
	c := newTestCompiler()
	r := c.Focus(toggleAll(t, model.Focus, "full_body", "olympic_lifts", "clean", "snatch"))

	// olympic_lifts + full_body_region
	assert.Equal(t, 55, r.IntensityCapacity)
	assert.Equal(t, 25, r.RecoveryDemand)
}

func TestSorenessNeckScenario(t *testing.T) {
	cat := taxonomy.MustBuiltin(model.Soreness)
	m := selection.NewManager(cat)
	sel := m.ToggleCategory(selection.Selection{}, "neck")
	sel = m.SetRating(sel, "neck", 3)

	r := newTestCompiler().Soreness(sel)

	assert.True(t, r.HasNeck)
	assert.True(t, r.NeckModerate)
	assert.False(t, r.NeckMild)
	assert.False(t, r.NeckSevere)
	assert.Equal(t, 1, r.TotalAreas)
	assert.Equal(t, 1, r.RatedCount)
	assert.Equal(t, 1, r.ModerateCount)
	assert.Equal(t, 3.0, r.AverageLevel)
	assert.Equal(t, 60, r.SeverityScore)
	assert.True(t, r.HasUpperBodySoreness)
	assert.False(t, r.HasSevereSoreness)
}

func TestRatingBands(t *testing.T) {
	tests := []struct {
		rating                   int
		mild, moderate, severe   bool
		wantRated, wantHighCount int
	}{
		{rating: 0},
		{rating: -1},
		{rating: 1, mild: true, wantRated: 1},
		{rating: 2, mild: true, wantRated: 1},
		{rating: 3, moderate: true, wantRated: 1},
		{rating: 4, severe: true, wantRated: 1, wantHighCount: 1},
		{rating: 5, severe: true, wantRated: 1, wantHighCount: 1},
		{rating: 9, severe: true, wantRated: 1, wantHighCount: 1},
	}
	c := newTestCompiler()
	for _, tt := range tests {
		rating := tt.rating
		r := c.Stress(selection.Selection{"physical": {Selected: true, Label: "Physical", Rating: &rating}})

		if !r.HasPhysical {
			t.Errorf("rating %d: has_physical = false", tt.rating)
		}
		if r.PhysicalMild != tt.mild || r.PhysicalModerate != tt.moderate || r.PhysicalSevere != tt.severe {
			t.Errorf("rating %d: bands = (%v, %v, %v), want (%v, %v, %v)", tt.rating,
				r.PhysicalMild, r.PhysicalModerate, r.PhysicalSevere, tt.mild, tt.moderate, tt.severe)
		}
		if r.RatedCount != tt.wantRated || r.HighCount != tt.wantHighCount {
			t.Errorf("rating %d: rated=%d high=%d, want rated=%d high=%d", tt.rating,
				r.RatedCount, r.HighCount, tt.wantRated, tt.wantHighCount)
		}
		if r.TotalAreas != 1 {
			t.Errorf("rating %d: total_areas = %d, want 1", tt.rating, r.TotalAreas)
		}
	}
}

func TestAverageLevelIgnoresUnrated(t *testing.T) {
	two, four := 2, 4
	r := newTestCompiler().Soreness(selection.Selection{
		"knees":  {Selected: true, Rating: &two},
		"ankles": {Selected: true, Rating: &four},
		"hips":   {Selected: true},
	})

	assert.Equal(t, 3, r.TotalAreas)
	assert.Equal(t, 2, r.RatedCount)
	assert.Equal(t, 3.0, r.AverageLevel)
	assert.Equal(t, 60, r.SeverityScore)
	assert.True(t, r.HasJointSoreness)
	assert.True(t, r.HasSevereSoreness)
	assert.True(t, r.HasLowerBodySoreness)
	assert.False(t, r.HasUpperBodySoreness)
}

func TestAverageLevelRounding(t *testing.T) {
	one, two := 1, 2
	r := newTestCompiler().Stress(selection.Selection{
		"work":      {Selected: true, Rating: &one},
		"mental":    {Selected: true, Rating: &two},
		"financial": {Selected: true, Rating: &two},
	})
	assert.Equal(t, 1.67, r.AverageLevel)
	assert.Equal(t, 33, r.SeverityScore)
}

func TestStressAggregates(t *testing.T) {
	five := 5
	c := newTestCompiler()

	only := c.Stress(selection.Selection{"physical": {Selected: true, Rating: &five}})
	assert.True(t, only.HasPhysicalStressOnly)
	assert.False(t, only.HasCognitiveStress)
	assert.True(t, only.HasSevereStress)

	mixed := c.Stress(selection.Selection{
		"physical": {Selected: true},
		"work":     {Selected: true},
	})
	assert.False(t, mixed.HasPhysicalStressOnly)
	assert.True(t, mixed.HasCognitiveStress)
}

func TestDurationScenario(t *testing.T) {
	r := newTestCompiler().Duration(&model.DurationConfig{
		TotalDuration: 45,
		WorkingTime:   35,
		WarmUp:        model.Phase{Included: true, Duration: 5},
		CoolDown:      model.Phase{Included: true, Duration: 5},
	})

	assert.True(t, r.CategoryStandard)
	assert.False(t, r.CategoryQuick)
	assert.Equal(t, 78, r.WorkingPercentage)
	assert.Equal(t, 22, r.StructurePercentage)
	assert.Equal(t, 10, r.StructureMinutes)
	assert.True(t, r.HasFullStructure)
	assert.True(t, r.IsConsistent)
	assert.Equal(t, 55, r.IntensityCapacity)
	assert.Equal(t, 100, r.StructureScore)
}

func TestDurationCategories(t *testing.T) {
	tests := []struct {
		total int
		want  func(DurationRecord) bool
	}{
		{10, func(r DurationRecord) bool { return r.CategoryMicro }},
		{15, func(r DurationRecord) bool { return r.CategoryMicro }},
		{16, func(r DurationRecord) bool { return r.CategoryQuick }},
		{29, func(r DurationRecord) bool { return r.CategoryQuick }},
		{30, func(r DurationRecord) bool { return r.CategoryStandard }},
		{59, func(r DurationRecord) bool { return r.CategoryStandard }},
		{60, func(r DurationRecord) bool { return r.CategoryExtended }},
		{89, func(r DurationRecord) bool { return r.CategoryExtended }},
		{90, func(r DurationRecord) bool { return r.CategoryEndurance }},
		{240, func(r DurationRecord) bool { return r.CategoryEndurance }},
	}
	c := newTestCompiler()
	for _, tt := range tests {
		r := c.Duration(&model.DurationConfig{TotalDuration: tt.total, WorkingTime: tt.total})
		if !tt.want(r) {
			t.Errorf("total %d: expected category flag not set: %+v", tt.total, r)
		}
		set := countTrue(r.CategoryMicro, r.CategoryQuick, r.CategoryStandard, r.CategoryExtended, r.CategoryEndurance)
		if set != 1 {
			t.Errorf("total %d: %d category flags set, want 1", tt.total, set)
		}
	}
}

func TestDurationZeroTotal(t *testing.T) {
	r := newTestCompiler().Duration(&model.DurationConfig{WorkingTime: 20})

	set := countTrue(r.CategoryMicro, r.CategoryQuick, r.CategoryStandard, r.CategoryExtended, r.CategoryEndurance)
	assert.Zero(t, set)
	assert.Zero(t, r.WorkingPercentage)
	assert.False(t, r.IsConsistent)
	require.NotNil(t, r.DataJSON)
}

func TestDurationExcludedPhases(t *testing.T) {
	r := newTestCompiler().Duration(&model.DurationConfig{
		TotalDuration: 30,
		WorkingTime:   30,
		WarmUp:        model.Phase{Included: false, Duration: 10},
	})
	assert.False(t, r.HasWarmUp)
	assert.Zero(t, r.WarmUpMinutes)
	assert.True(t, r.IsConsistent)
	assert.Equal(t, 100, r.WorkingPercentage)
}

func TestEmptyInputsYieldNullBackup(t *testing.T) {
	c := newTestCompiler()
	records := map[string]any{
		"focus":     c.Focus(nil),
		"equipment": c.Equipment(selection.Selection{}),
		"soreness":  c.Soreness(nil),
		"stress":    c.Stress(selection.Selection{}),
		"duration":  c.Duration(nil),
	}
	for prefix, rec := range records {
		t.Run(prefix, func(t *testing.T) {
			fields := marshalFields(t, rec)
			assert.Equal(t, json.RawMessage("null"), fields[prefix+"_data_json"])
			assert.JSONEq(t, `"2026-03-14T08:26:53.589Z"`, string(fields[prefix+"_last_updated"]))
			assert.JSONEq(t, `"1.0.0"`, string(fields[prefix+"_flattener_version"]))
			for name, v := range fields {
				assert.True(t, strings.HasPrefix(name, prefix+"_"), "field %s lacks prefix", name)
				if s := string(v); s == "true" {
					t.Errorf("field %s is true on empty input", name)
				}
			}
		})
	}
}

func TestUnselectedEntriesIgnored(t *testing.T) {
	r := newTestCompiler().Focus(selection.Selection{
		"chest": {Selected: false, Label: "Chest"},
	})
	assert.False(t, r.UpperChest)
	assert.Zero(t, r.SelectionCount)
	assert.Zero(t, r.DroppedKeyCount)
}

func TestDroppedKeysObserved(t *testing.T) {
	obs := &recordingObserver{}
	c := newTestCompiler(WithObserver(obs))

	r := c.Focus(selection.Selection{
		"chest":       {Selected: true, Label: "Chest"},
		"old_biceps":  {Selected: true, Label: "Biceps (old)"},
		"zz_renamed":  {Selected: true},
		"not_chosen":  {Selected: false},
		"middle_pecs": {Selected: true},
	})

	assert.Equal(t, 2, r.SelectionCount)
	assert.Equal(t, 2, r.DroppedKeyCount)
	assert.Equal(t, []string{"old_biceps", "zz_renamed"}, obs.dropped[model.Focus])
	assert.Equal(t, []model.Domain{model.Focus}, obs.flattened)

	c.Duration(nil)
	assert.NotContains(t, obs.dropped, model.Duration)
	assert.Equal(t, []model.Domain{model.Focus, model.Duration}, obs.flattened)
}

func TestEquipmentAggregates(t *testing.T) {
	c := newTestCompiler()

	bw := c.Equipment(toggleAll(t, model.Equipment, "bodyweight", "pull_up_bar", "doorway_bar"))
	assert.True(t, bw.BodyweightOnly)
	assert.Equal(t, 1, bw.CategoryCount)
	assert.Equal(t, 20, bw.CategoryCoveragePercentage)
	assert.False(t, bw.HasHeavyLoading)

	gym := c.Equipment(toggleAll(t, model.Equipment,
		"free_weights", "barbells", "olympic_barbell", "dumbbells", "machines", "cable_machine", "treadmill", "bench"))
	assert.False(t, gym.BodyweightOnly)
	assert.True(t, gym.HasHeavyLoading)
	assert.Equal(t, 4, gym.CategoryCount)
	assert.Equal(t, 80, gym.CategoryCoveragePercentage)
	// free_weights, dumbbells, machines, cardio, accessories, broad_coverage, wide_selection
	assert.Equal(t, 100, gym.VersatilityScore)
	// heavy_loading, barbells, cable_machine, cardio
	assert.Equal(t, 75, gym.IntensityCapacity)
}

func TestIdempotent(t *testing.T) {
	c := newTestCompiler()
	sel := toggleAll(t, model.Focus, "lower_body", "glutes", "glute_max", "core")

	a, b := c.Focus(sel), c.Focus(sel)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("repeat flatten differs:\n%s", diff)
	}
}

func TestCompilerDoesNotMutateInput(t *testing.T) {
	sel := toggleAll(t, model.Equipment, "free_weights", "kettlebells")
	sel["ghost"] = selection.Entry{Selected: true}
	before := sel.Clone()

	newTestCompiler().Equipment(sel)
	assert.True(t, sel.Equal(before))
}

func TestDataJSONRoundTrip(t *testing.T) {
	c := newTestCompiler()
	three := 3

	focusSel := toggleAll(t, model.Focus, "upper_body", "back", "lats")
	soreSel := selection.Selection{"knees": {Selected: true, Label: "Knees", Level: model.LevelCategory, Rating: &three}}
	dur := &model.DurationConfig{TotalDuration: 60, WorkingTime: 50, WarmUp: model.Phase{Included: true, Duration: 10}}

	var gotFocus, gotSore selection.Selection
	require.NoError(t, json.Unmarshal([]byte(*c.Focus(focusSel).DataJSON), &gotFocus))
	require.NoError(t, json.Unmarshal([]byte(*c.Soreness(soreSel).DataJSON), &gotSore))
	var gotDur model.DurationConfig
	require.NoError(t, json.Unmarshal([]byte(*c.Duration(dur).DataJSON), &gotDur))

	if diff := cmp.Diff(focusSel, gotFocus, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("focus round trip (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(soreSel, gotSore); diff != "" {
		t.Errorf("soreness round trip (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(*dur, gotDur); diff != "" {
		t.Errorf("duration round trip (-want +got):\n%s", diff)
	}
}

func TestExplainMatchesScores(t *testing.T) {
	c := newTestCompiler()
	r := c.Focus(toggleAll(t, model.Focus, "lower_body", "hamstrings", "compound_movements", "squat_pattern"))

	exp := Explain(r)
	require.Contains(t, exp, "focus_intensity_capacity")
	assert.Equal(t, r.IntensityCapacity, sumPoints(exp["focus_intensity_capacity"]))
	assert.Equal(t, r.RecoveryDemand, sumPoints(exp["focus_recovery_demand"]))

	d := c.Duration(&model.DurationConfig{TotalDuration: 20, WorkingTime: 20})
	dexp := Explain(&d)
	assert.Equal(t, d.IntensityCapacity, sumPoints(dexp["duration_intensity_capacity"]))
	assert.Equal(t, d.StructureScore, sumPoints(dexp["duration_structure_score"]))

	assert.Nil(t, Explain("not a record"))
}

func sumPoints(cs []rubric.Contribution) int {
	total := 0
	for _, c := range cs {
		total += c.Points
	}
	return total
}

func marshalFields(t *testing.T, rec any) map[string]json.RawMessage {
	t.Helper()
	data, err := json.Marshal(rec)
	require.NoError(t, err)
	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &fields))
	return fields
}

func TestSourceRecordedVerbatim(t *testing.T) {
	raw := json.RawMessage(`{"chest": {"selected":true,"label":"Chest","level":"secondary","icon":"pec","expanded":true}}`)
	sel := selection.Selection{"chest": {Selected: true, Label: "Chest", Level: model.LevelSecondary}}

	r := newTestCompiler().FocusFrom(sel, Source{Raw: raw})

	assert.True(t, r.UpperChest)
	require.NotNil(t, r.DataJSON)
	assert.Equal(t, `{"chest":{"selected":true,"label":"Chest","level":"secondary","icon":"pec","expanded":true}}`, *r.DataJSON)

	// Flattening the backup again yields the same record.
	again := newTestCompiler().FocusFrom(sel, Source{Raw: json.RawMessage(*r.DataJSON)})
	assert.Equal(t, r, again)
}

func TestSourceEmptyObjectIsNull(t *testing.T) {
	r := newTestCompiler().StressFrom(selection.Selection{}, Source{Raw: json.RawMessage(`{}`)})
	assert.Nil(t, r.DataJSON)
}

func TestSourceInvalidEntriesDropped(t *testing.T) {
	obs := &recordingObserver{}
	c := newTestCompiler(WithObserver(obs))
	three := 3

	r := c.SorenessFrom(
		selection.Selection{"neck": {Selected: true, Label: "Neck", Rating: &three}, "ghost": {Selected: true}},
		Source{
			Raw:     json.RawMessage(`{"neck":{"selected":true,"label":"Neck","rating":3},"knees":{"rating":3.5},"ghost":{"selected":true}}`),
			Invalid: []string{"knees"},
		})

	assert.True(t, r.HasNeck)
	assert.True(t, r.NeckModerate)
	assert.False(t, r.HasKnees)
	assert.Equal(t, 1, r.TotalAreas)
	assert.Equal(t, 2, r.DroppedKeyCount)
	assert.Equal(t, []string{"ghost", "knees"}, obs.dropped[model.Soreness])
	require.NotNil(t, r.DataJSON)
	assert.Contains(t, *r.DataJSON, `"knees"`)

	// A source whose entries all failed is still backed up.
	only := c.FocusFrom(selection.Selection{}, Source{Raw: json.RawMessage(`{"chest":true}`), Invalid: []string{"chest"}})
	assert.Zero(t, only.SelectionCount)
	assert.Equal(t, 1, only.DroppedKeyCount)
	require.NotNil(t, only.DataJSON)
	assert.Equal(t, `{"chest":true}`, *only.DataJSON)
}

func TestDurationSaturatesMinutes(t *testing.T) {
	huge := int(^uint(0) >> 1)
	r := newTestCompiler().Duration(&model.DurationConfig{
		TotalDuration: huge,
		WorkingTime:   huge,
		WarmUp:        model.Phase{Included: true, Duration: huge},
		CoolDown:      model.Phase{Included: true, Duration: huge},
	})

	assert.Equal(t, model.MaxMinutes, r.TotalMinutes)
	assert.Equal(t, model.MaxMinutes, r.WarmUpMinutes)
	assert.Equal(t, 2*model.MaxMinutes, r.StructureMinutes)
	assert.True(t, r.HasFullStructure)
	assert.True(t, r.CategoryEndurance)
	assert.Equal(t, 200, r.StructurePercentage)
	assert.Positive(t, r.WorkingPercentage)
	assertScore(t, "duration_intensity_capacity", r.IntensityCapacity)
	assertScore(t, "duration_structure_score", r.StructureScore)
}

func TestAverageLevelLargeRatings(t *testing.T) {
	big := int(^uint(0) >> 1)
	r := newTestCompiler().Stress(selection.Selection{
		"work":  {Selected: true, Rating: &big},
		"sleep": {Selected: true, Rating: &big},
	})
	assert.Positive(t, r.AverageLevel)
	assert.Equal(t, 100, r.SeverityScore)
	assert.Equal(t, 2, r.HighCount)
}
