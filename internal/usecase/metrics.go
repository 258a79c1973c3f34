package usecase

import "context"

// MetricsSummary represents aggregated classification insights.
type MetricsSummary struct {
	TotalRequests    int64   `json:"total_requests"`
	AverageTopScore  float64 `json:"average_top_score"`
	AverageLatencyMs float64 `json:"average_latency_ms"`
	DistinctImages   int64   `json:"distinct_images"`
}

// GetMetricsSummary aggregates classification metrics from persisted logs.
func (uc *ClassifyUseCase) GetMetricsSummary(ctx context.Context) (*MetricsSummary, error) {
	aggregation, err := uc.store.AggregateMetrics(ctx)
	if err != nil {
		return nil, err
	}

	return &MetricsSummary{
		TotalRequests:    aggregation.TotalCount,
		AverageTopScore:  aggregation.AverageTopScore,
		AverageLatencyMs: aggregation.AverageLatencyMs,
		DistinctImages:   aggregation.DistinctImages,
	}, nil
}
