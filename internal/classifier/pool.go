package classifier

import (
	"context"
	"fmt"
	"sync"
	"time"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/example/mushroomid/internal/imageproc"
)

const acquireTimeout = 5 * time.Second

// session bundles an ONNX session with its bound input/output tensors. The
// tensors are reused across runs, so a session must never be used by two
// requests at once.
type session struct {
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
}

func newSession(modelPath string, imageSize, numClasses int) (*session, error) {
	// NHWC with a leading singleton batch dimension, matching the exported
	// Keras model.
	inputShape := ort.NewShape(1, int64(imageSize), int64(imageSize), imageproc.Channels)
	outputShape := ort.NewShape(1, int64(numClasses))

	input, err := ort.NewEmptyTensor[float32](inputShape)
	if err != nil {
		return nil, fmt.Errorf("create input tensor: %w", err)
	}

	output, err := ort.NewEmptyTensor[float32](outputShape)
	if err != nil {
		input.Destroy()
		return nil, fmt.Errorf("create output tensor: %w", err)
	}

	sess, err := ort.NewAdvancedSession(modelPath,
		[]string{inputName}, []string{outputName},
		[]ort.ArbitraryTensor{input}, []ort.ArbitraryTensor{output},
		nil)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, fmt.Errorf("create session for %s: %w", modelPath, err)
	}

	return &session{session: sess, input: input, output: output}, nil
}

func (s *session) destroy() {
	if s.input != nil {
		s.input.Destroy()
	}
	if s.output != nil {
		s.output.Destroy()
	}
	if s.session != nil {
		s.session.Destroy()
	}
}

// sessionPool hands out sessions to concurrent requests. Capacity bounds how
// many inferences run in parallel; excess requests wait in acquire.
type sessionPool struct {
	sessions chan *session
	mu       sync.Mutex
	closed   bool
}

func newSessionPool(modelPath string, imageSize, numClasses, size int) (*sessionPool, error) {
	pool := &sessionPool{sessions: make(chan *session, size)}
	for i := 0; i < size; i++ {
		sess, err := newSession(modelPath, imageSize, numClasses)
		if err != nil {
			pool.destroy()
			return nil, fmt.Errorf("initialize session %d of %d: %w", i+1, size, err)
		}
		pool.sessions <- sess
	}
	return pool, nil
}

func (p *sessionPool) acquire(ctx context.Context) (*session, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, fmt.Errorf("session pool is closed")
	}
	p.mu.Unlock()

	select {
	case sess, ok := <-p.sessions:
		if !ok {
			return nil, fmt.Errorf("session pool is closed")
		}
		return sess, nil
	case <-time.After(acquireTimeout):
		return nil, fmt.Errorf("timeout waiting for an available session")
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *sessionPool) release(sess *session) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()

	if closed {
		sess.destroy()
		return
	}
	p.sessions <- sess
}

func (p *sessionPool) destroy() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	close(p.sessions)

	for sess := range p.sessions {
		sess.destroy()
	}
}
