package main

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/spf13/cobra"

	"github.com/aiworkoutgenerator/workoutflat/internal/engine"
	"github.com/aiworkoutgenerator/workoutflat/internal/engine/flatten"
	"github.com/aiworkoutgenerator/workoutflat/internal/engine/normalize"
	"github.com/aiworkoutgenerator/workoutflat/internal/engine/rubric"
	"github.com/aiworkoutgenerator/workoutflat/internal/engine/selection"
	"github.com/aiworkoutgenerator/workoutflat/internal/model"
)

type selectResult struct {
	Selection selection.Selection              `json:"selection"`
	Record    any                              `json:"record"`
	Explain   map[string][]rubric.Contribution `json:"explain,omitempty"`
}

func newSelectCmd(a *app) *cobra.Command {
	var (
		ratings map[string]int
		explain bool
	)
	cmd := &cobra.Command{
		Use:   "select <domain> <id>...",
		Short: "Replay toggles and print the selection with its record",
		Long: `Toggles each id in order, as a user tapping through the picker would:
a repeated id deselects it, and deselecting a parent removes its subtree.
--rate sets category ratings afterwards for soreness and stress.`,
		Example: `  workoutflat select focus upper_body chest
  workoutflat select soreness neck knees --rate neck=3,knees=5 --explain`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, ok := model.ParseDomain(args[0])
			if !ok || !d.HasTaxonomy() {
				return fmt.Errorf("%w: %q", engine.ErrUnknownDomain, args[0])
			}
			eng, err := a.newEngine(nil)
			if err != nil {
				return err
			}
			sel := replay(eng, d, args[1:], ratings)
			res := selectResult{
				Selection: sel,
				Record:    eng.FlattenInput(d, normalize.FromSelection(sel)),
			}
			if explain {
				res.Explain = flatten.Explain(res.Record)
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringToIntVar(&ratings, "rate", nil, "category ratings, id=1..5")
	cmd.Flags().BoolVar(&explain, "explain", false, "include the scoring rules that fired")
	return cmd
}

func replay(eng *engine.Engine, d model.Domain, ids []string, ratings map[string]int) selection.Selection {
	m := eng.Manager(d)
	cat := eng.Catalog(d)
	sel := m.Clear()

	for _, id := range ids {
		n, known := cat.Node(id)
		if !known {
			slog.Warn("id not in taxonomy, kept as opaque key", "domain", d, "id", id)
		}
		if cat.Tiers() == 1 {
			sel = m.ToggleCategory(sel, id)
			continue
		}
		sel, _ = m.Toggle(sel, id, n.Level)
	}

	keys := make([]string, 0, len(ratings))
	for id := range ratings {
		keys = append(keys, id)
	}
	sort.Strings(keys)
	for _, id := range keys {
		if !sel.Has(id) {
			slog.Warn("rating ignored for unselected category", "domain", d, "id", id)
			continue
		}
		sel = m.SetRating(sel, id, ratings[id])
	}
	return sel
}
