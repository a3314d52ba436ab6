package file

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/aiworkoutgenerator/workoutflat/internal/model"
	"github.com/aiworkoutgenerator/workoutflat/internal/output"
)

const (
	defaultBufSize = 64 * 1024
	maxRotated     = 9
)

// Option configures a file Output.
type Option func(*Output)

// WithMaxSize sets the file size (bytes) at which rotation triggers.
// 0 (default) disables rotation.
func WithMaxSize(bytes int64) Option {
	return func(o *Output) { o.maxSize = bytes }
}

// WithBufSize sets the bufio.Writer buffer size. Default: 64KB.
func WithBufSize(bytes int) Option {
	return func(o *Output) { o.bufSize = bytes }
}

// WithTruncate discards existing file contents on open instead of
// appending.
func WithTruncate() Option {
	return func(o *Output) { o.truncate = true }
}

// Output writes NDJSON results to a file with buffered I/O and optional
// size-based rotation.
type Output struct {
	mu        sync.Mutex
	w         *bufio.Writer
	f         *os.File
	path      string
	verbosity output.Verbosity
	maxSize   int64
	written   int64
	bufSize   int
	truncate  bool
}

// New creates a file output that writes NDJSON to the given path.
func New(path string, verbosity output.Verbosity, opts ...Option) (*Output, error) {
	o := &Output{
		path:      path,
		verbosity: verbosity,
		bufSize:   defaultBufSize,
	}
	for _, opt := range opts {
		opt(o)
	}
	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if o.truncate {
		flags = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	}
	if err := o.open(flags); err != nil {
		return nil, err
	}
	return o, nil
}

// Write encodes the result and appends it as a line to the file.
func (o *Output) Write(_ context.Context, res model.Result) error {
	formatted, err := output.FormatResult(res, o.verbosity)
	if err != nil {
		return fmt.Errorf("file output: %w", err)
	}
	data, err := json.Marshal(formatted)
	if err != nil {
		return fmt.Errorf("file output: marshal: %w", err)
	}
	data = append(data, '\n')

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.maxSize > 0 && o.written > 0 && o.written+int64(len(data)) > o.maxSize {
		if err := o.rotate(); err != nil {
			return fmt.Errorf("file output: rotate: %w", err)
		}
	}

	n, err := o.w.Write(data)
	o.written += int64(n)
	if err != nil {
		return fmt.Errorf("file output: write: %w", err)
	}
	return nil
}

// Close flushes the buffer and closes the file.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.w.Flush(); err != nil {
		o.f.Close()
		return fmt.Errorf("file output: flush: %w", err)
	}
	return o.f.Close()
}

func (o *Output) open(flags int) error {
	f, err := os.OpenFile(o.path, flags, 0o644)
	if err != nil {
		return fmt.Errorf("file output: open %s: %w", o.path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("file output: stat %s: %w", o.path, err)
	}
	o.f = f
	o.w = bufio.NewWriterSize(f, o.bufSize)
	o.written = info.Size()
	return nil
}

// rotate closes the current file, shifts {path}.N to {path}.N+1, moves the
// current file to {path}.1 and opens a fresh one.
func (o *Output) rotate() error {
	if err := o.w.Flush(); err != nil {
		return err
	}
	if err := o.f.Close(); err != nil {
		return err
	}

	for i := maxRotated; i >= 1; i-- {
		from := fmt.Sprintf("%s.%d", o.path, i)
		to := fmt.Sprintf("%s.%d", o.path, i+1)
		os.Rename(from, to) // missing files are expected
	}
	if err := os.Rename(o.path, o.path+".1"); err != nil {
		return err
	}

	return o.open(os.O_CREATE | os.O_WRONLY | os.O_APPEND)
}
