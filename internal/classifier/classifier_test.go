package classifier

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/example/mushroomid/internal/config"
	"github.com/example/mushroomid/internal/imageproc"
)

func TestNewRejectsNonPositiveClassCount(t *testing.T) {
	_, err := New(Options{ModelPath: "model.onnx", ImageSize: 128, NumClasses: 0})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var cfgErr *config.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %T", err)
	}
}

func TestNewRejectsNonPositiveImageSize(t *testing.T) {
	_, err := New(Options{ModelPath: "model.onnx", ImageSize: 0, NumClasses: 10})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var cfgErr *config.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %T", err)
	}
}

func TestPredictRejectsShapeMismatch(t *testing.T) {
	// The length check runs before any session is touched, so a Model
	// without a pool exercises it safely.
	m := &Model{imageSize: 4, numClasses: 2, logger: zap.NewNop()}

	tensor := &imageproc.Tensor{Data: make([]float32, 7), Height: 4, Width: 4}
	_, err := m.Predict(context.Background(), tensor)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var infErr *InferenceError
	if !errors.As(err, &infErr) {
		t.Fatalf("expected InferenceError, got %T", err)
	}
}

func TestPredictRejectsNilTensor(t *testing.T) {
	m := &Model{imageSize: 4, numClasses: 2, logger: zap.NewNop()}

	_, err := m.Predict(context.Background(), nil)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var infErr *InferenceError
	if !errors.As(err, &infErr) {
		t.Fatalf("expected InferenceError, got %T", err)
	}
}
