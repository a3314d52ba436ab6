package async

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aiworkoutgenerator/workoutflat/internal/model"
	"github.com/aiworkoutgenerator/workoutflat/internal/output"
)

const (
	defaultBufferSize   = 1024
	defaultDrainTimeout = 5 * time.Second
)

// Option configures an Async wrapper.
type Option func(*Async)

// WithBufferSize sets the channel buffer capacity. Default: 1024.
func WithBufferSize(n int) Option {
	return func(a *Async) { a.bufSize = n }
}

// WithOnError sets the callback invoked when the inner output's Write fails.
// Default: logs a warning via slog.
func WithOnError(f func(error)) Option {
	return func(a *Async) { a.errFunc = f }
}

// WithDropOnFull makes Write return immediately (dropping the result) when
// the buffer is full, instead of blocking.
func WithDropOnFull() Option {
	return func(a *Async) { a.dropOnFull = true }
}

// WithDrainTimeout bounds how long Close waits for buffered results.
// Default: 5s.
func WithDrainTimeout(d time.Duration) Option {
	return func(a *Async) { a.drainTimeout = d }
}

// Async decouples result production from consumption via a buffered
// channel. A background goroutine drains it to the wrapped output. Errors
// from the inner output go to errFunc rather than to the caller.
type Async struct {
	inner        output.Output
	ch           chan model.Result
	done         chan struct{}
	errFunc      func(error)
	bufSize      int
	dropOnFull   bool
	drainTimeout time.Duration
	dropped      atomic.Int64
	closeOnce    sync.Once
}

// New wraps an output.Output in an async channel-based writer.
// The background drain goroutine starts immediately.
func New(inner output.Output, opts ...Option) *Async {
	a := &Async{
		inner:        inner,
		bufSize:      defaultBufferSize,
		drainTimeout: defaultDrainTimeout,
		errFunc:      func(err error) { slog.Warn("async output write error", "error", err) },
	}
	for _, opt := range opts {
		opt(a)
	}
	a.ch = make(chan model.Result, a.bufSize)
	a.done = make(chan struct{})
	go a.drain()
	return a
}

// Write sends the result into the channel. By default it blocks while the
// channel is full, until ctx is done. With WithDropOnFull it returns nil
// immediately and the result is lost.
func (a *Async) Write(ctx context.Context, res model.Result) error {
	if a.dropOnFull {
		select {
		case a.ch <- res:
		default:
			a.dropped.Add(1)
			slog.Warn("async output buffer full, dropping result",
				"id", res.ID, "domain", res.Domain)
		}
		return nil
	}
	select {
	case a.ch <- res:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dropped returns the number of results discarded by WithDropOnFull.
func (a *Async) Dropped() int64 {
	return a.dropped.Load()
}

// Close closes the channel, waits for the drain goroutine to finish
// (with a timeout), then closes the inner output.
func (a *Async) Close() error {
	var err error
	a.closeOnce.Do(func() {
		close(a.ch)
		timer := time.NewTimer(a.drainTimeout)
		defer timer.Stop()
		select {
		case <-a.done:
		case <-timer.C:
			slog.Warn("async output drain timed out", "timeout", a.drainTimeout)
		}
		err = a.inner.Close()
	})
	return err
}

func (a *Async) drain() {
	defer close(a.done)
	for res := range a.ch {
		if err := a.inner.Write(context.Background(), res); err != nil {
			a.errFunc(err)
		}
	}
}
