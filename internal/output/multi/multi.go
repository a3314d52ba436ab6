package multi

import (
	"context"
	"errors"

	"github.com/aiworkoutgenerator/workoutflat/internal/model"
	"github.com/aiworkoutgenerator/workoutflat/internal/output"
)

// Multi fans out results to multiple output.Output implementations.
// Each Write call delivers the result to every wrapped output in order.
// If one output fails, the remaining outputs still receive the result.
type Multi struct {
	outputs []output.Output
}

// New creates a Multi that fans out to the given outputs.
func New(outputs ...output.Output) *Multi {
	return &Multi{outputs: outputs}
}

// Write delivers the result to every wrapped output. Errors are joined and
// do not prevent delivery to subsequent outputs. A cancelled context stops
// delivery before the next output.
func (m *Multi) Write(ctx context.Context, res model.Result) error {
	var errs []error
	for _, o := range m.outputs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := o.Write(ctx, res); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Len returns the number of wrapped outputs.
func (m *Multi) Len() int {
	return len(m.outputs)
}

// Close calls Close on every wrapped output, collecting errors.
func (m *Multi) Close() error {
	var errs []error
	for _, o := range m.outputs {
		if err := o.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
