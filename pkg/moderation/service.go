package moderation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/moderationhq/modgate/pkg/infra/prometheus"
)

// VerdictCache memoizes verdicts for identical content. Implementations
// must be safe for concurrent use; a nil cache disables memoization.
type VerdictCache interface {
	Get(ctx context.Context, key string) (*ModerationResult, bool)
	Set(ctx context.Context, key string, result *ModerationResult)
}

// Service runs the single-item pipeline: normalize, analyze image and
// text, aggregate. Every invocation owns its item and intermediate
// state; the only shared resources are the classifier clients.
type Service struct {
	normalizer    *Normalizer
	imageAnalyzer *ImageAnalyzer
	textAnalyzer  *TextAnalyzer
	cache         VerdictCache
	logger        *logrus.Logger

	maxBatchSize   int
	maxConcurrency int
}

func NewService(
	normalizer *Normalizer,
	imageAnalyzer *ImageAnalyzer,
	textAnalyzer *TextAnalyzer,
	cache VerdictCache,
	logger *logrus.Logger,
	maxBatchSize int,
	maxConcurrency int,
) *Service {
	return &Service{
		normalizer:     normalizer,
		imageAnalyzer:  imageAnalyzer,
		textAnalyzer:   textAnalyzer,
		cache:          cache,
		logger:         logger,
		maxBatchSize:   maxBatchSize,
		maxConcurrency: maxConcurrency,
	}
}

// Analyze runs the full pipeline for one item. Validation and fetch
// failures are returned to the caller; analyzer-local failures are
// absorbed into the verdict.
func (s *Service) Analyze(ctx context.Context, req AnalyzeRequest) (*ModerationResult, error) {
	start := time.Now()

	item, err := s.normalizer.Normalize(ctx, req)
	if err != nil {
		return nil, err
	}

	key := verdictKey(item)
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, key); ok {
			prometheus.CacheHits.WithLabelValues("hit").Inc()
			return cached, nil
		}
		prometheus.CacheHits.WithLabelValues("miss").Inc()
	}

	var (
		imageResult *ImageAnalysisResult
		imageErr    error
		textResult  *TextAnalysisResult
		textErr     error
	)

	if item.HasImage() {
		imageResult, imageErr = s.imageAnalyzer.Analyze(ctx, item)
		if imageErr != nil {
			prometheus.AnalyzerFailures.WithLabelValues("image").Inc()
		}
	}

	extracted := ""
	if imageResult != nil {
		extracted = imageResult.ExtractedText
	}
	combined := CombineText(item.Text, extracted)

	if combined != "" {
		textResult, textErr = s.textAnalyzer.Analyze(ctx, combined, item.StrictMode)
		if textErr != nil {
			prometheus.AnalyzerFailures.WithLabelValues("text").Inc()
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := Aggregate(AggregateInput{
		Image:    imageResult,
		Text:     textResult,
		ImageErr: imageErr,
		TextErr:  textErr,
		Elapsed:  time.Since(start),
	})

	if s.cache != nil {
		s.cache.Set(ctx, key, result)
	}

	prometheus.AnalysesTotal.WithLabelValues(string(result.OverallRiskLevel), fmt.Sprintf("%t", result.IsSafe)).Inc()
	prometheus.AnalysisLatency.WithLabelValues("single").Observe(float64(time.Since(start).Milliseconds()))

	s.logger.WithFields(logrus.Fields{
		"risk_level": result.OverallRiskLevel,
		"safe":       result.IsSafe,
		"categories": result.ViolationCategories,
	}).Info("moderation completed")

	return result, nil
}

// Capabilities describes which detection categories are enabled, for
// the health endpoint.
func (s *Service) Capabilities() map[string]bool {
	return map[string]bool{
		"image_analysis":   true,
		"text_analysis":    true,
		"ocr_extraction":   true,
		"pii_detection":    true,
		"batch_processing": true,
	}
}

// MaxBatchSize returns the configured batch ceiling.
func (s *Service) MaxBatchSize() int {
	return s.maxBatchSize
}

// errorResult is the per-item placeholder used when an item fails past
// its retry budget inside a batch. Errors default to unsafe.
func errorResult(err error, elapsed time.Duration) ModerationResult {
	return ModerationResult{
		IsSafe:               false,
		OverallRiskLevel:     RiskHigh,
		Summary:              "⚠️ Content moderation failed due to processing error",
		Rationale:            fmt.Sprintf("Unable to complete content analysis: %s", err),
		ViolationCategories:  []string{},
		ViolationsFound:      []ViolationCategory{},
		ContentTypesAnalyzed: []string{},
		ProcessingTime:       elapsed.Seconds(),
	}
}

// verdictKey hashes the item's content and policy flag so identical
// submissions share one verdict.
func verdictKey(item *ContentItem) string {
	h := sha256.New()
	h.Write([]byte(item.Text))
	h.Write([]byte{0})
	h.Write(item.ImageData)
	h.Write([]byte{0})
	if item.StrictMode {
		h.Write([]byte{1})
	}
	return "verdict:" + hex.EncodeToString(h.Sum(nil))
}
