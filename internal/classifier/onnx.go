package classifier

import (
	"context"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
	"go.uber.org/zap"

	"github.com/example/mushroomid/internal/config"
	"github.com/example/mushroomid/internal/imageproc"
)

// Node names of the exported Keras model.
const (
	inputName  = "input"
	outputName = "output"
)

var ortInit sync.Once

// Options configures the ONNX-backed classifier.
type Options struct {
	ModelPath  string
	ImageSize  int
	NumClasses int
	PoolSize   int
	// SharedLibraryPath points ONNX runtime at its native library when it is
	// not on the default search path. Empty means use the default.
	SharedLibraryPath string
	Logger            *zap.Logger
}

// Model runs the trained mushroom classifier through ONNX runtime. A session
// owns fixed input/output tensors, so sessions are pooled rather than shared;
// each Predict call runs on exactly one session at a time.
type Model struct {
	pool       *sessionPool
	imageSize  int
	numClasses int
	logger     *zap.Logger
}

// New loads the model and builds the session pool. The batch dimension the
// model expects is allocated here and never visible to callers. A zero-input
// warm-up run validates the model's input/output shapes against the
// configured image size and registry size; any disagreement is a
// ConfigurationError and the process must not serve.
func New(opts Options) (*Model, error) {
	if opts.NumClasses <= 0 {
		return nil, config.NewConfigurationError("model", fmt.Errorf("class count must be positive, got %d", opts.NumClasses))
	}
	if opts.ImageSize <= 0 {
		return nil, config.NewConfigurationError("model", fmt.Errorf("image size must be positive, got %d", opts.ImageSize))
	}
	if opts.PoolSize <= 0 {
		opts.PoolSize = 1
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	if opts.SharedLibraryPath != "" {
		ort.SetSharedLibraryPath(opts.SharedLibraryPath)
	}

	var initErr error
	ortInit.Do(func() {
		initErr = ort.InitializeEnvironment()
	})
	if initErr != nil {
		return nil, config.NewConfigurationError("model", fmt.Errorf("initialize onnx runtime: %w", initErr))
	}

	pool, err := newSessionPool(opts.ModelPath, opts.ImageSize, opts.NumClasses, opts.PoolSize)
	if err != nil {
		return nil, config.NewConfigurationError("model", err)
	}

	m := &Model{
		pool:       pool,
		imageSize:  opts.ImageSize,
		numClasses: opts.NumClasses,
		logger:     opts.Logger.Named("classifier"),
	}

	if err := m.warmup(); err != nil {
		pool.destroy()
		return nil, config.NewConfigurationError("model", fmt.Errorf("model shape check failed: %w", err))
	}

	m.logger.Info("model loaded",
		zap.String("path", opts.ModelPath),
		zap.Int("image_size", opts.ImageSize),
		zap.Int("classes", opts.NumClasses),
		zap.Int("pool_size", opts.PoolSize))

	return m, nil
}

// warmup runs one inference on a zero tensor so that a model whose input or
// output shape disagrees with the configuration fails at startup instead of
// on the first request.
func (m *Model) warmup() error {
	zero := &imageproc.Tensor{
		Data:   make([]float32, m.imageSize*m.imageSize*imageproc.Channels),
		Height: m.imageSize,
		Width:  m.imageSize,
	}
	_, err := m.Predict(context.Background(), zero)
	return err
}

// NumClasses returns the length of every probability vector Predict returns.
func (m *Model) NumClasses() int {
	return m.numClasses
}

// Predict scores a normalized tensor and returns the probability vector.
// Observably pure: identical tensors yield identical vectors and no state
// survives between calls.
func (m *Model) Predict(ctx context.Context, t *imageproc.Tensor) ([]float32, error) {
	expected := m.imageSize * m.imageSize * imageproc.Channels
	if t == nil || len(t.Data) != expected {
		got := 0
		if t != nil {
			got = len(t.Data)
		}
		return nil, &InferenceError{Err: fmt.Errorf("input shape mismatch: expected %d values (%dx%dx%d), got %d",
			expected, m.imageSize, m.imageSize, imageproc.Channels, got)}
	}

	sess, err := m.pool.acquire(ctx)
	if err != nil {
		return nil, &InferenceError{Err: err}
	}
	defer m.pool.release(sess)

	copy(sess.input.GetData(), t.Data)

	if err := sess.session.Run(); err != nil {
		return nil, &InferenceError{Err: fmt.Errorf("run session: %w", err)}
	}

	out := sess.output.GetData()
	if len(out) != m.numClasses {
		return nil, &InferenceError{Err: fmt.Errorf("output shape mismatch: expected %d classes, got %d", m.numClasses, len(out))}
	}

	probs := make([]float32, m.numClasses)
	copy(probs, out)
	return probs, nil
}

// Close releases the session pool. The ONNX environment itself stays
// initialized for the process lifetime.
func (m *Model) Close() {
	m.pool.destroy()
}
