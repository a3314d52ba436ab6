package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/aiworkoutgenerator/workoutflat/internal/engine"
	"github.com/aiworkoutgenerator/workoutflat/internal/engine/taxonomy"
	"github.com/aiworkoutgenerator/workoutflat/internal/model"
)

func newTaxonomyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "taxonomy [domain]",
		Short: "Print taxonomy trees",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := a.newEngine(nil)
			if err != nil {
				return err
			}
			domains := model.Domains()
			if len(args) == 1 {
				d, ok := model.ParseDomain(args[0])
				if !ok || eng.Catalog(d) == nil {
					return fmt.Errorf("%w: %q", engine.ErrUnknownDomain, args[0])
				}
				domains = []model.Domain{d}
			}
			for _, d := range domains {
				if cat := eng.Catalog(d); cat != nil {
					printTree(cmd.OutOrStdout(), cat)
				}
			}
			return nil
		},
	}
}

func printTree(w io.Writer, cat *taxonomy.Catalog) {
	title := cases.Title(language.English)
	fmt.Fprintf(w, "%s (%d tiers, %d nodes)\n", title.String(string(cat.Domain())), cat.Tiers(), cat.Len())

	var walk func(id string, depth int)
	walk = func(id string, depth int) {
		n, _ := cat.Node(id)
		fmt.Fprintf(w, "%s%-*s %s\n", strings.Repeat("  ", depth+1), 28-2*depth, n.ID, n.Label)
		for _, c := range n.ChildIDs {
			walk(c, depth+1)
		}
	}
	for _, id := range cat.Roots() {
		walk(id, 0)
	}
}
