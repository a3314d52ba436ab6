package stdout

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/aiworkoutgenerator/workoutflat/internal/model"
	"github.com/aiworkoutgenerator/workoutflat/internal/output"
)

// Output writes JSON-encoded results to stdout or another stream.
type Output struct {
	mu        sync.Mutex
	enc       *json.Encoder
	verbosity output.Verbosity
}

// New creates a stream Output with verbosity-aware field omission and
// optional pretty-printed JSON. A nil writer means os.Stdout.
func New(w io.Writer, verbosity output.Verbosity, pretty bool) *Output {
	if w == nil {
		w = os.Stdout
	}
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return &Output{enc: enc, verbosity: verbosity}
}

func (o *Output) Write(_ context.Context, res model.Result) error {
	formatted, err := output.FormatResult(res, o.verbosity)
	if err != nil {
		return fmt.Errorf("stdout output: %w", err)
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.enc.Encode(formatted); err != nil {
		return fmt.Errorf("stdout output: %w", err)
	}
	return nil
}

func (o *Output) Close() error {
	return nil
}
