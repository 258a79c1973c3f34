// Package ranking selects the top-N entries of a probability vector.
package ranking

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidArgument marks a caller fault: non-positive n or an empty vector.
var ErrInvalidArgument = errors.New("invalid argument")

// Prediction pairs a registry index with its confidence. The caller resolves
// the index to a label through the class registry.
type Prediction struct {
	Index      int
	Confidence float32
}

// TopN returns the min(n, len(probs)) highest-confidence predictions in
// descending order. Equal confidences are ordered by ascending registry
// index, so the result is deterministic even for near-uniform distributions.
// Confidence values pass through unmodified; no re-normalization happens here.
func TopN(probs []float32, n int) ([]Prediction, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: n must be positive, got %d", ErrInvalidArgument, n)
	}
	if len(probs) == 0 {
		return nil, fmt.Errorf("%w: probability vector is empty", ErrInvalidArgument)
	}

	preds := make([]Prediction, len(probs))
	for i, p := range probs {
		preds[i] = Prediction{Index: i, Confidence: p}
	}

	sort.Slice(preds, func(a, b int) bool {
		if preds[a].Confidence != preds[b].Confidence {
			return preds[a].Confidence > preds[b].Confidence
		}
		return preds[a].Index < preds[b].Index
	})

	if n > len(preds) {
		n = len(preds)
	}
	return preds[:n], nil
}
