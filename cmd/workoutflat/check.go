package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aiworkoutgenerator/workoutflat/internal/engine/flatten"
	"github.com/aiworkoutgenerator/workoutflat/internal/engine/taxonomy"
	"github.com/aiworkoutgenerator/workoutflat/internal/model"
)

func newCheckCmd(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report ids the taxonomy and flat field tables disagree on",
		Long: `Compares each taxonomy against the key table that maps its ids to flat
fields. Unmapped nodes would be dropped when selected; orphaned entries name
ids the taxonomy no longer has. Exits non-zero on any gap.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var cats []*taxonomy.Catalog
			if file != "" {
				c, err := taxonomy.LoadFile(file)
				if err != nil {
					return err
				}
				cats = append(cats, c)
			} else {
				all, err := taxonomy.LoadDir(a.cfg.Engine.TaxonomyDir)
				if err != nil {
					return err
				}
				for _, d := range model.Domains() {
					if c, ok := all[d]; ok {
						cats = append(cats, c)
					}
				}
			}

			ok := true
			for _, c := range cats {
				rep := flatten.Coverage(c)
				printReport(cmd.OutOrStdout(), rep, c.Len())
				ok = ok && rep.OK()
			}
			if !ok {
				return errGaps
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "taxonomy", "", "check a single taxonomy YAML file")
	return cmd
}

func printReport(w io.Writer, rep flatten.CoverageReport, nodes int) {
	if rep.OK() {
		fmt.Fprintf(w, "%s: ok (%d nodes mapped)\n", rep.Domain, nodes)
		return
	}
	fmt.Fprintf(w, "%s: %d unmapped, %d orphaned, %d mismatched\n",
		rep.Domain, len(rep.Unmapped), len(rep.Orphaned), len(rep.Mismatched))
	for _, g := range rep.Unmapped {
		fmt.Fprintf(w, "  unmapped    %s (%s)\n", g.ID, g.Level)
	}
	for _, g := range rep.Orphaned {
		fmt.Fprintf(w, "  orphaned    %s (%s)\n", g.ID, g.Want)
	}
	for _, g := range rep.Mismatched {
		fmt.Fprintf(w, "  mismatched  %s is %s, table wants %s\n", g.ID, g.Level, g.Want)
	}
}
