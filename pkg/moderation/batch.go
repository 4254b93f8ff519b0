package moderation

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/moderationhq/modgate/pkg/domain"
	"github.com/moderationhq/modgate/pkg/infra/prometheus"
)

// AnalyzeBatch runs the per-item pipeline over every item with strict
// failure isolation: one item's failure becomes its placeholder entry,
// never a batch abort. The ceiling check precedes all I/O. Results are
// always in input order regardless of completion order.
func (s *Service) AnalyzeBatch(ctx context.Context, req BatchRequest) (*BatchResult, error) {
	if len(req.Items) == 0 {
		return nil, domain.NewValidationError("items", "no items provided for batch analysis")
	}
	if len(req.Items) > s.maxBatchSize {
		return nil, domain.NewBatchTooLargeError(len(req.Items), s.maxBatchSize)
	}

	start := time.Now()
	prometheus.BatchSize.Observe(float64(len(req.Items)))

	results := make([]ModerationResult, len(req.Items))

	if req.ParallelProcessing {
		if err := s.runParallel(ctx, req, results); err != nil {
			return nil, err
		}
	} else {
		if err := s.runSequential(ctx, req, results); err != nil {
			return nil, err
		}
	}

	batch := &BatchResult{
		Results:        results,
		SummaryStats:   map[string]int{},
		ProcessingTime: time.Since(start).Seconds(),
	}

	for _, result := range results {
		if result.IsSafe {
			batch.OverallSafeCount++
		} else {
			batch.OverallUnsafeCount++
		}
		for _, category := range result.ViolationCategories {
			batch.SummaryStats[category]++
		}
	}
	batch.SummaryStats["total_items"] = len(results)
	batch.SummaryStats["safe_items"] = batch.OverallSafeCount
	batch.SummaryStats["unsafe_items"] = batch.OverallUnsafeCount

	prometheus.AnalysisLatency.WithLabelValues("batch").Observe(float64(time.Since(start).Milliseconds()))

	return batch, nil
}

func (s *Service) runParallel(ctx context.Context, req BatchRequest, results []ModerationResult) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrency)

	for i := range req.Items {
		index := i
		g.Go(func() error {
			results[index] = s.analyzeBatchItem(gctx, req, index)
			return gctx.Err()
		})
	}

	return g.Wait()
}

func (s *Service) runSequential(ctx context.Context, req BatchRequest, results []ModerationResult) error {
	for i := range req.Items {
		if err := ctx.Err(); err != nil {
			return err
		}
		results[i] = s.analyzeBatchItem(ctx, req, i)
	}
	return nil
}

func (s *Service) analyzeBatchItem(ctx context.Context, req BatchRequest, index int) ModerationResult {
	itemStart := time.Now()

	item := req.Items[index]
	item.StrictMode = item.StrictMode || req.StrictMode

	result, err := s.Analyze(ctx, item)
	if err != nil {
		s.logger.WithError(err).WithField("item", index).Warn("batch item failed")
		return errorResult(err, time.Since(itemStart))
	}
	return *result
}
