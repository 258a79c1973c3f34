package usecase

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/mushroomid/internal/classifier"
	"github.com/example/mushroomid/internal/imageproc"
	"github.com/example/mushroomid/internal/logging"
	"github.com/example/mushroomid/internal/ranking"
	"github.com/example/mushroomid/internal/registry"
	"github.com/example/mushroomid/internal/repository"
)

// PredictionStore defines the persistence operations needed by the use case.
type PredictionStore interface {
	Save(ctx context.Context, log *repository.PredictionLog) error
	FindByRequestID(ctx context.Context, requestID string) (*repository.PredictionLog, error)
	AggregateMetrics(ctx context.Context) (*repository.MetricsAggregation, error)
}

// Prediction is one ranked entry of a classification result.
type Prediction struct {
	Name       string  `json:"name"`
	Confidence float32 `json:"confidence"`
}

// Result is a complete classification outcome.
type Result struct {
	RequestID string       `json:"request_id"`
	TopN      []Prediction `json:"top_n"`
}

// ClassifyUseCase runs the normalize → predict → rank pipeline per request
// and handles the result cache and prediction log around it.
type ClassifyUseCase struct {
	store     PredictionStore
	cache     Cache
	model     classifier.Classifier
	classes   *registry.Registry
	logger    *zap.Logger
	imageSize int
	cacheTTL  time.Duration
}

// NewClassifyUseCase constructs the use case. The classifier's class count
// must already be validated against the registry; this is wiring, not a
// per-request check.
func NewClassifyUseCase(store PredictionStore, cache Cache, model classifier.Classifier, classes *registry.Registry, imageSize int, cacheTTL time.Duration, logger *zap.Logger) *ClassifyUseCase {
	return &ClassifyUseCase{
		store:     store,
		cache:     cache,
		model:     model,
		classes:   classes,
		logger:    logger.Named("classify_usecase"),
		imageSize: imageSize,
		cacheTTL:  cacheTTL,
	}
}

// Classify runs one classification. n must already be validated and clamped
// by the caller; values that survive to ranking and still fail return typed
// errors. Identical upload bytes with the same n are served from the cache.
func (uc *ClassifyUseCase) Classify(ctx context.Context, imageBytes []byte, n int) (*Result, error) {
	requestID := uuid.NewString()
	opLogger := logging.WithOperation(uc.logger, "usecase.classify", requestID)
	start := time.Now()

	hash := sha1.Sum(imageBytes)
	hashHex := hex.EncodeToString(hash[:])
	cacheKey := fmt.Sprintf("prediction:%s:%d", hashHex, n)

	if cached, ok := uc.cacheLookup(ctx, opLogger, cacheKey); ok {
		opLogger.Info("served from cache", zap.String("image_sha1", hashHex), zap.Int("n", n))
		return &Result{RequestID: requestID, TopN: cached}, nil
	}

	tensor, err := imageproc.Normalize(imageBytes, uc.imageSize)
	if err != nil {
		return nil, logging.NewOperationError("usecase.normalize", requestID, err)
	}

	probs, err := uc.model.Predict(ctx, tensor)
	if err != nil {
		wrapped := logging.NewOperationError("usecase.predict", requestID, err)
		opLogger.Error("inference failed", zap.Error(wrapped))
		return nil, wrapped
	}

	ranked, err := ranking.TopN(probs, n)
	if err != nil {
		return nil, logging.NewOperationError("usecase.rank", requestID, err)
	}

	topN := make([]Prediction, len(ranked))
	for i, p := range ranked {
		name, err := uc.classes.Label(p.Index)
		if err != nil {
			wrapped := logging.NewOperationError("usecase.resolve_label", requestID, &classifier.InferenceError{Err: err})
			opLogger.Error("prediction index outside registry", zap.Error(wrapped))
			return nil, wrapped
		}
		topN[i] = Prediction{Name: name, Confidence: p.Confidence}
	}

	latency := time.Since(start)
	log := &repository.PredictionLog{
		RequestID:     requestID,
		ImageSHA1:     hashHex,
		TopLabel:      topN[0].Name,
		TopConfidence: topN[0].Confidence,
		TopN:          n,
		LatencyMs:     latency.Milliseconds(),
		CreatedAt:     time.Now().UTC(),
	}
	if err := uc.store.Save(ctx, log); err != nil {
		wrapped := logging.NewOperationError("usecase.save_prediction", requestID, err)
		opLogger.Error("failed to persist prediction log", zap.Error(wrapped))
		return nil, wrapped
	}

	uc.cacheStore(ctx, opLogger, cacheKey, topN)

	opLogger.Info("classified",
		zap.String("image_sha1", hashHex),
		zap.String("top_label", log.TopLabel),
		zap.Float32("top_confidence", log.TopConfidence),
		zap.Int("n", n),
		zap.Duration("latency", latency))

	return &Result{RequestID: requestID, TopN: topN}, nil
}

// GetPrediction retrieves a persisted prediction log by request id.
func (uc *ClassifyUseCase) GetPrediction(ctx context.Context, requestID string) (*repository.PredictionLog, error) {
	return uc.store.FindByRequestID(ctx, requestID)
}

// cacheLookup returns the cached prediction list for the key, if any. Cache
// faults are logged and treated as misses; the cache never fails a request.
func (uc *ClassifyUseCase) cacheLookup(ctx context.Context, opLogger *zap.Logger, key string) ([]Prediction, bool) {
	raw, err := uc.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			opLogger.Warn("cache read failed", zap.Error(err))
		}
		return nil, false
	}

	var cached []Prediction
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		opLogger.Warn("failed to decode cached prediction", zap.Error(err))
		return nil, false
	}
	if len(cached) == 0 {
		return nil, false
	}
	return cached, true
}

func (uc *ClassifyUseCase) cacheStore(ctx context.Context, opLogger *zap.Logger, key string, topN []Prediction) {
	serialized, err := json.Marshal(topN)
	if err != nil {
		opLogger.Warn("failed to serialize prediction for cache", zap.Error(err))
		return
	}
	if err := uc.cache.Set(ctx, key, string(serialized), uc.cacheTTL); err != nil {
		opLogger.Warn("cache write failed", zap.Error(err))
	}
}
