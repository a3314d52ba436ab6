package output

import (
	"context"

	"github.com/aiworkoutgenerator/workoutflat/internal/model"
)

// Output defines the interface for flattened result destinations.
type Output interface {
	Write(ctx context.Context, res model.Result) error
	Close() error
}
