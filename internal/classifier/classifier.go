// Package classifier wraps the trained scoring function behind a small
// interface so the rest of the service never touches ONNX runtime types.
package classifier

import (
	"context"
	"fmt"

	"github.com/example/mushroomid/internal/imageproc"
)

// Classifier scores a normalized image tensor and returns one probability
// per registry class, index-aligned with the class registry.
type Classifier interface {
	Predict(ctx context.Context, t *imageproc.Tensor) ([]float32, error)
	NumClasses() int
}

// InferenceError marks a scoring-function failure or shape mismatch. It is a
// server-side contract violation, not a client-input fault.
type InferenceError struct {
	Err error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("inference: %v", e.Err)
}

func (e *InferenceError) Unwrap() error {
	return e.Err
}
