package ranking

import (
	"errors"
	"testing"
)

func TestTopNOrdersByConfidenceDescending(t *testing.T) {
	probs := []float32{0.1, 0.5, 0.05, 0.3, 0.05}

	preds, err := TopN(probs, 3)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if len(preds) != 3 {
		t.Fatalf("expected 3 predictions, got %d", len(preds))
	}

	wantIndexes := []int{1, 3, 0}
	for i, want := range wantIndexes {
		if preds[i].Index != want {
			t.Fatalf("position %d: expected index %d, got %d", i, want, preds[i].Index)
		}
	}
	for i := 1; i < len(preds); i++ {
		if preds[i].Confidence > preds[i-1].Confidence {
			t.Fatalf("confidence increased at position %d: %f > %f", i, preds[i].Confidence, preds[i-1].Confidence)
		}
	}
}

func TestTopNBreaksTiesByAscendingIndex(t *testing.T) {
	probs := []float32{0.25, 0.25, 0.25, 0.25}

	preds, err := TopN(probs, 4)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	for i, p := range preds {
		if p.Index != i {
			t.Fatalf("tie-break violated: position %d holds index %d", i, p.Index)
		}
	}
}

func TestTopNTieBreakAmongPartialTies(t *testing.T) {
	probs := []float32{0.2, 0.4, 0.2, 0.1, 0.1}

	preds, err := TopN(probs, 5)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	wantIndexes := []int{1, 0, 2, 3, 4}
	for i, want := range wantIndexes {
		if preds[i].Index != want {
			t.Fatalf("position %d: expected index %d, got %d", i, want, preds[i].Index)
		}
	}
}

func TestTopNClampsToVectorLength(t *testing.T) {
	probs := []float32{0.6, 0.4}

	preds, err := TopN(probs, 10)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if len(preds) != 2 {
		t.Fatalf("expected 2 predictions, got %d", len(preds))
	}
}

func TestTopNPassesConfidencesThrough(t *testing.T) {
	// Deliberately does not sum to 1; the ranking stage must not correct it.
	probs := []float32{3.0, 1.0, 2.0}

	preds, err := TopN(probs, 3)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if preds[0].Confidence != 3.0 || preds[1].Confidence != 2.0 || preds[2].Confidence != 1.0 {
		t.Fatalf("confidences modified: %+v", preds)
	}
}

func TestTopNRejectsNonPositiveN(t *testing.T) {
	for _, n := range []int{0, -1} {
		_, err := TopN([]float32{0.5, 0.5}, n)
		if err == nil {
			t.Fatalf("n=%d: expected error, got nil", n)
		}
		if !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("n=%d: expected ErrInvalidArgument, got %v", n, err)
		}
	}
}

func TestTopNRejectsEmptyVector(t *testing.T) {
	_, err := TopN(nil, 3)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestTopNDoesNotMutateInput(t *testing.T) {
	probs := []float32{0.1, 0.7, 0.2}

	if _, err := TopN(probs, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if probs[0] != 0.1 || probs[1] != 0.7 || probs[2] != 0.2 {
		t.Fatalf("input vector mutated: %v", probs)
	}
}
