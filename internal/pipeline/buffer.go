package pipeline

import (
	"sync"
	"time"

	"github.com/aiworkoutgenerator/workoutflat/internal/model"
)

// streamBuffer accumulates requests and signals a flush on a timer or when
// it reaches maxSize.
type streamBuffer struct {
	window  time.Duration
	maxSize int // 0 means unlimited

	mu      sync.Mutex
	pending []model.Request
	timer   *time.Timer
}

func newStreamBuffer(window time.Duration, maxSize int) *streamBuffer {
	return &streamBuffer{
		window:  window,
		maxSize: maxSize,
	}
}

// add appends a request. The first request of a batch starts the flush
// timer. Returns true when the buffer is full and needs flushing.
func (b *streamBuffer) add(req model.Request) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.pending = append(b.pending, req)
	if len(b.pending) == 1 && b.window > 0 {
		b.timer = time.NewTimer(b.window)
	}
	return b.maxSize > 0 && len(b.pending) >= b.maxSize
}

// flushCh returns the timer's channel, or nil if no timer is active.
func (b *streamBuffer) flushCh() <-chan time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer == nil {
		return nil
	}
	return b.timer.C
}

// take empties the buffer and returns what it held.
func (b *streamBuffer) take() []model.Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	reqs := b.pending
	b.pending = nil
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	return reqs
}
