// Package workoutflat turns hierarchical workout selections into flat,
// analytics-ready records.
//
// Quick start:
//
//	f, err := workoutflat.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	sel, _, _ := f.Toggle(workoutflat.Focus, nil, "upper_body", workoutflat.LevelPrimary)
//	rec := f.FlattenFocus(sel)
//	fmt.Println(rec.HasUpperBody, rec.SelectionCount) // true 1
//
// Inputs in the legacy list and scalar shapes are accepted through Flatten.
// A Flattener is safe for concurrent use. Create once, reuse across
// requests.
package workoutflat
