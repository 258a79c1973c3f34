package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/mushroomid/internal/classifier"
	"github.com/example/mushroomid/internal/imageproc"
	"github.com/example/mushroomid/internal/ranking"
	"github.com/example/mushroomid/internal/repository"
	"github.com/example/mushroomid/internal/usecase"
	"github.com/example/mushroomid/internal/web"
)

// ClassifierService is the slice of the use case the HTTP layer needs.
type ClassifierService interface {
	Classify(ctx context.Context, imageBytes []byte, n int) (*usecase.Result, error)
	GetPrediction(ctx context.Context, requestID string) (*repository.PredictionLog, error)
	GetMetricsSummary(ctx context.Context) (*usecase.MetricsSummary, error)
}

// Options carries the request-validation policy.
type Options struct {
	DefaultTopN    int
	MaxTopN        int
	MaxUploadBytes int64
	NumClasses     int
}

// RegisterRoutes wires the HTTP handlers to the Gin router. authMiddleware
// guards the operational endpoints only; prediction and health are public.
func RegisterRoutes(router *gin.Engine, svc ClassifierService, authMiddleware gin.HandlerFunc, opts Options, logger *zap.Logger) {
	logger = logger.Named("handlers")

	router.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", web.Index)
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"model":   "loaded",
			"classes": opts.NumClasses,
		})
	})

	router.POST("/predict", func(c *gin.Context) {
		// Validation order is fixed: missing field, empty file, bad n.
		file, err := c.FormFile("image")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "image field is required"})
			return
		}

		if opts.MaxUploadBytes > 0 && file.Size > opts.MaxUploadBytes {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image exceeds the upload size limit"})
			return
		}

		src, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unable to open image"})
			return
		}
		defer src.Close()

		data, err := io.ReadAll(src)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read image"})
			return
		}
		if len(data) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "image file is empty"})
			return
		}

		n, err := parseTopN(c.PostForm("n"), opts.DefaultTopN, opts.MaxTopN)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		result, err := svc.Classify(c.Request.Context(), data, n)
		if err != nil {
			status := statusForError(err)
			if status >= http.StatusInternalServerError {
				// 5xx here means the model contract broke, not bad input.
				logger.Error("classification failed", zap.Error(err))
				c.JSON(status, gin.H{"error": "prediction failed"})
				return
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, result)
	})

	router.GET("/predictions/:id", authMiddleware, func(c *gin.Context) {
		requestID := c.Param("id")
		if requestID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "id is required"})
			return
		}

		log, err := svc.GetPrediction(c.Request.Context(), requestID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "prediction not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"request_id":     log.RequestID,
			"image_sha1":     log.ImageSHA1,
			"top_label":      log.TopLabel,
			"top_confidence": log.TopConfidence,
			"n":              log.TopN,
			"latency_ms":     log.LatencyMs,
			"created_at":     log.CreatedAt,
		})
	})

	router.GET("/metrics", authMiddleware, func(c *gin.Context) {
		summary, err := svc.GetMetricsSummary(c.Request.Context())
		if err != nil {
			logger.Error("metrics aggregation failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to aggregate metrics"})
			return
		}
		c.JSON(http.StatusOK, summary)
	})
}

// parseTopN applies the n policy: absent means the default, non-numeric or
// non-positive is a client error, oversized is clamped rather than rejected.
func parseTopN(raw string, def, max int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("n must be an integer")
	}
	if n <= 0 {
		return 0, errors.New("n must be positive")
	}
	if n > max {
		return max, nil
	}
	return n, nil
}

func statusForError(err error) int {
	var decodeErr *imageproc.DecodeError
	if errors.As(err, &decodeErr) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ranking.ErrInvalidArgument) {
		return http.StatusBadRequest
	}
	var infErr *classifier.InferenceError
	if errors.As(err, &infErr) {
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}
