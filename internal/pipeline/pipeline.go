package pipeline

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"slices"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/aiworkoutgenerator/workoutflat/internal/engine/dedup"
	"github.com/aiworkoutgenerator/workoutflat/internal/model"
	"github.com/aiworkoutgenerator/workoutflat/internal/output"
)

const (
	defaultBatchSize   = 256
	defaultFlushWindow = 200 * time.Millisecond
	maxLineSize        = 4 << 20
)

// Processor flattens requests. *engine.Engine satisfies it.
type Processor interface {
	Process(req model.Request) (model.Result, error)
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithDedup collapses identical requests within a batch and reuses records
// the deduplicator remembers from earlier batches.
func WithDedup(d *dedup.Deduplicator) Option {
	return func(p *Pipeline) { p.dedup = d }
}

// WithWorkers bounds how many requests of a batch are flattened at once.
// Default: GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithBatchSize sets how many requests are buffered before a flush.
// 0 means unlimited (flush on the timer or at end of input only).
func WithBatchSize(n int) Option {
	return func(p *Pipeline) { p.batchSize = n }
}

// WithFlushWindow sets how long a partial batch may wait for more input.
// 0 disables the timer.
func WithFlushWindow(d time.Duration) Option {
	return func(p *Pipeline) { p.window = d }
}

// WithIDFunc replaces the generator used for requests without an id.
func WithIDFunc(f func() string) Option {
	return func(p *Pipeline) { p.newID = f }
}

// Stats summarizes a pipeline's work so far.
type Stats struct {
	Processed int64 // results written
	Skipped   int64 // malformed lines and failed requests
	Reused    int64 // results served by the deduplicator
}

// Pipeline reads flatten requests, processes them in bounded parallel
// batches and writes results in input order.
type Pipeline struct {
	proc      Processor
	out       output.Output
	dedup     *dedup.Deduplicator
	workers   int
	batchSize int
	window    time.Duration
	newID     func() string

	processed atomic.Int64
	skipped   atomic.Int64
	reused    atomic.Int64
}

// New creates a Pipeline from the given components.
func New(proc Processor, out output.Output, opts ...Option) *Pipeline {
	p := &Pipeline{
		proc:      proc,
		out:       out,
		workers:   runtime.GOMAXPROCS(0),
		batchSize: defaultBatchSize,
		window:    defaultFlushWindow,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Stats returns the pipeline counters.
func (p *Pipeline) Stats() Stats {
	return Stats{
		Processed: p.processed.Load(),
		Skipped:   p.skipped.Load(),
		Reused:    p.reused.Load(),
	}
}

type line struct {
	n    int
	data []byte
	err  error
}

// Stream reads NDJSON requests from r until EOF or ctx is cancelled.
// Malformed lines are logged and skipped. Pending requests are flushed
// before returning.
func (p *Pipeline) Stream(ctx context.Context, r io.Reader) error {
	lines := make(chan line)
	stop := make(chan struct{})
	defer close(stop)
	go scanLines(r, lines, stop)

	buf := newStreamBuffer(p.window, p.batchSize)
	for {
		select {
		case <-ctx.Done():
			if err := p.flush(context.WithoutCancel(ctx), buf.take()); err != nil {
				return err
			}
			return ctx.Err()
		case <-buf.flushCh():
			if err := p.flush(ctx, buf.take()); err != nil {
				return err
			}
		case l, ok := <-lines:
			if !ok {
				return p.flush(ctx, buf.take())
			}
			if l.err != nil {
				return errors.Join(p.flush(ctx, buf.take()), fmt.Errorf("pipeline read: %w", l.err))
			}
			req, ok := p.decode(l)
			if !ok {
				continue
			}
			if buf.add(req) {
				if err := p.flush(ctx, buf.take()); err != nil {
					return err
				}
			}
		}
	}
}

// Query processes a fixed set of requests as one batch. reqs is not
// modified; requests without an ID are given one in a copy.
func (p *Pipeline) Query(ctx context.Context, reqs []model.Request) error {
	batch := slices.Clone(reqs)
	for i := range batch {
		if batch[i].ID == "" {
			batch[i].ID = p.newID()
		}
	}
	return p.flush(ctx, batch)
}

// Close shuts down the output.
func (p *Pipeline) Close() error {
	st := p.Stats()
	if st.Skipped > 0 {
		slog.Warn("pipeline skipped requests", "skipped", st.Skipped, "processed", st.Processed)
	}
	return p.out.Close()
}

func scanLines(r io.Reader, out chan<- line, stop <-chan struct{}) {
	defer close(out)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	n := 0
	for sc.Scan() {
		n++
		data := bytes.TrimSpace(sc.Bytes())
		if len(data) == 0 {
			continue
		}
		select {
		case out <- line{n: n, data: bytes.Clone(data)}:
		case <-stop:
			return
		}
	}
	if err := sc.Err(); err != nil {
		select {
		case out <- line{n: n, err: err}:
		case <-stop:
		}
	}
}

func (p *Pipeline) decode(l line) (model.Request, bool) {
	var req model.Request
	if err := json.Unmarshal(l.data, &req); err != nil {
		p.skipped.Add(1)
		slog.Warn("skipping malformed request", "line", l.n, "error", err)
		return req, false
	}
	if req.ID == "" {
		req.ID = p.newID()
	}
	return req, true
}

// flush processes one batch and writes its results in input order.
func (p *Pipeline) flush(ctx context.Context, reqs []model.Request) error {
	if len(reqs) == 0 {
		return nil
	}

	groups := p.group(reqs)
	results := make([]*model.Result, len(groups))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, grp := range groups {
		if p.dedup != nil {
			if rec, ok := p.dedup.Lookup(grp.Key); ok {
				p.reused.Add(1)
				results[i] = &model.Result{Domain: grp.Request.Domain, Record: rec}
				continue
			}
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := p.proc.Process(grp.Request)
			if err != nil {
				p.skipped.Add(int64(len(grp.Indexes)))
				slog.Warn("skipping request", "id", grp.Request.ID, "domain", grp.Request.Domain, "error", err)
				return nil
			}
			if p.dedup != nil {
				p.dedup.Store(grp.Key, res.Record)
			}
			results[i] = &res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("pipeline process: %w", err)
	}

	ordered := make([]*model.Result, len(reqs))
	for i, grp := range groups {
		if results[i] == nil {
			continue
		}
		for _, idx := range grp.Indexes {
			res := *results[i]
			res.ID = reqs[idx].ID
			ordered[idx] = &res
		}
	}
	for _, res := range ordered {
		if res == nil {
			continue
		}
		if err := p.out.Write(ctx, *res); err != nil {
			return fmt.Errorf("pipeline output: %w", err)
		}
		p.processed.Add(1)
	}
	return nil
}

func (p *Pipeline) group(reqs []model.Request) []dedup.Group {
	if p.dedup != nil {
		return p.dedup.DeduplicateBatch(reqs)
	}
	groups := make([]dedup.Group, len(reqs))
	for i, r := range reqs {
		groups[i] = dedup.Group{Request: r, Indexes: []int{i}}
	}
	return groups
}
