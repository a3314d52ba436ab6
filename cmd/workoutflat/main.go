package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/aiworkoutgenerator/workoutflat/internal/config"
	"github.com/aiworkoutgenerator/workoutflat/internal/engine"
	"github.com/aiworkoutgenerator/workoutflat/internal/engine/flatten"
	"github.com/aiworkoutgenerator/workoutflat/internal/engine/taxonomy"
	"github.com/aiworkoutgenerator/workoutflat/internal/logging"
)

// errGaps signals a coverage report with gaps; the report itself has
// already been printed.
var errGaps = errors.New("taxonomy coverage has gaps")

// app carries state shared by subcommands.
type app struct {
	cfg        config.Config
	configPath string
	logLevel   string
}

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		if !errors.Is(err, errGaps) {
			fmt.Fprintf(os.Stderr, "workoutflat: %v\n", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "workoutflat",
		Short:         "Flatten hierarchical workout selections into analytics records",
		Version:       config.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML config file (env WORKOUTFLAT_* still applies)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newFlattenCmd(a),
		newSelectCmd(a),
		newTaxonomyCmd(a),
		newCheckCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg := config.Load()
	if a.configPath != "" {
		var err error
		if cfg, err = config.LoadFile(a.configPath); err != nil {
			return err
		}
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	logging.Init(recordsOnStdout(cmd), logging.ParseLevel(cfg.LogLevel))
	return nil
}

// recordsOnStdout reports whether cmd writes machine-readable records to
// stdout, in which case logs go out as JSON.
func recordsOnStdout(cmd *cobra.Command) bool {
	if cmd.Name() != "flatten" {
		return false
	}
	outs, err := cmd.Flags().GetStringSlice("out")
	if err != nil || len(outs) == 0 {
		return true
	}
	for _, o := range outs {
		if o == "-" {
			return true
		}
	}
	return false
}

// newEngine builds an engine over the configured taxonomies.
func (a *app) newEngine(obs engine.Observer) (*engine.Engine, error) {
	cats, err := taxonomy.LoadDir(a.cfg.Engine.TaxonomyDir)
	if err != nil {
		return nil, err
	}
	var opts []flatten.Option
	if obs != nil {
		opts = append(opts, flatten.WithObserver(obs))
	}
	return engine.New(cats, flatten.New(opts...), obs), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
