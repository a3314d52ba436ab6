package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/aiworkoutgenerator/workoutflat/internal/config"
	"github.com/aiworkoutgenerator/workoutflat/internal/engine/dedup"
	"github.com/aiworkoutgenerator/workoutflat/internal/metrics"
	"github.com/aiworkoutgenerator/workoutflat/internal/output"
	"github.com/aiworkoutgenerator/workoutflat/internal/output/async"
	"github.com/aiworkoutgenerator/workoutflat/internal/output/file"
	"github.com/aiworkoutgenerator/workoutflat/internal/output/multi"
	"github.com/aiworkoutgenerator/workoutflat/internal/output/stdout"
	"github.com/aiworkoutgenerator/workoutflat/internal/pipeline"
)

type flattenFlags struct {
	outs    []string
	pretty  bool
	workers int
	compact bool
	metrics bool
}

func newFlattenCmd(a *app) *cobra.Command {
	var f flattenFlags
	cmd := &cobra.Command{
		Use:   "flatten [file]",
		Short: "Flatten NDJSON requests into NDJSON records",
		Long: `Reads one request per line, {"id","domain","data"}, from file or stdin
and writes one result per line, {"id","domain","record"}. data may be the
structured selection, a legacy id list or, for duration, a bare number.
Malformed lines and unknown domains are logged and skipped.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runFlatten(cmd, args, f)
		},
	}
	cmd.Flags().StringSliceVarP(&f.outs, "out", "o", nil, `output path, repeatable; "-" is stdout (default: config output)`)
	cmd.Flags().BoolVar(&f.pretty, "pretty", false, "indent stdout records")
	cmd.Flags().IntVarP(&f.workers, "workers", "w", 0, "parallel flatten workers (default: config engine.workers)")
	cmd.Flags().BoolVar(&f.compact, "compact", false, "omit the *_data_json backup fields")
	cmd.Flags().BoolVar(&f.metrics, "metrics", false, "print Prometheus counters to stderr on exit")
	return cmd
}

func (a *app) runFlatten(cmd *cobra.Command, args []string, f flattenFlags) error {
	cfg := a.cfg
	if cmd.Flags().Changed("pretty") {
		cfg.Output.Pretty = f.pretty
	}
	if cmd.Flags().Changed("workers") {
		cfg.Engine.Workers = f.workers
	}
	if f.compact {
		cfg.Output.Verbosity = "compact"
	}
	if f.metrics {
		cfg.Output.Metrics = true
	}

	in := cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		fh, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer fh.Close()
		in = fh
	}

	reg := prometheus.NewRegistry()
	eng, err := a.newEngine(metrics.New(reg, slog.Default()))
	if err != nil {
		return err
	}

	out, err := buildOutput(cmd.OutOrStdout(), f.outs, cfg)
	if err != nil {
		return err
	}

	opts := []pipeline.Option{
		pipeline.WithWorkers(cfg.Engine.Workers),
		pipeline.WithBatchSize(cfg.Engine.BatchSize),
		pipeline.WithFlushWindow(cfg.Engine.FlushWindow),
	}
	if cfg.Engine.MemoCapacity > 0 {
		opts = append(opts, pipeline.WithDedup(dedup.New(dedup.Config{Capacity: cfg.Engine.MemoCapacity})))
	}
	p := pipeline.New(eng, out, opts...)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	streamErr := p.Stream(ctx, in)
	if errors.Is(streamErr, context.Canceled) {
		slog.Info("interrupted, pending requests flushed")
		streamErr = nil
	}
	closeErr := p.Close()

	st := p.Stats()
	slog.Info("flatten finished",
		"processed", st.Processed,
		"skipped", st.Skipped,
		"reused", st.Reused,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	if cfg.Output.Metrics {
		if err := metrics.Dump(cmd.ErrOrStderr(), reg); err != nil {
			slog.Warn("metrics dump failed", "error", err)
		}
	}
	return errors.Join(streamErr, closeErr)
}

// buildOutput resolves the record sinks. Explicit --out values win over the
// configured output; more than one sink fans out through multi. File sinks
// are written asynchronously and drained on close.
func buildOutput(w io.Writer, outs []string, cfg config.Config) (output.Output, error) {
	verbosity, err := output.ParseVerbosity(cfg.Output.Verbosity)
	if err != nil {
		return nil, err
	}

	if len(outs) == 0 {
		if cfg.Output.Format == "file" {
			outs = []string{cfg.Output.Path}
		} else {
			outs = []string{"-"}
		}
	}

	sinks := make([]output.Output, 0, len(outs))
	closeAll := func() {
		for _, s := range sinks {
			s.Close()
		}
	}
	for _, o := range outs {
		if o == "-" {
			sinks = append(sinks, stdout.New(w, verbosity, cfg.Output.Pretty))
			continue
		}
		fo, err := file.New(o, verbosity, file.WithMaxSize(cfg.Output.MaxSize))
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("output %s: %w", o, err)
		}
		aopts := []async.Option{
			async.WithOnError(func(err error) {
				slog.Error("file output write failed", "path", o, "error", err)
			}),
		}
		if cfg.ShutdownTimeout > 0 {
			aopts = append(aopts, async.WithDrainTimeout(cfg.ShutdownTimeout))
		}
		sinks = append(sinks, async.New(fo, aopts...))
	}
	if len(sinks) == 1 {
		return sinks[0], nil
	}
	return multi.New(sinks...), nil
}
