package moderation

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/moderationhq/modgate/pkg/domain"
)

// defaultMissingScore is used when a vendor flags a category but omits
// its score. Defaulting to uncertain instead of 0 avoids silently
// downgrading risk.
const defaultMissingScore = 0.5

// Thresholds are the acceptance thresholds for surfacing a category as
// a violation. Strict mode lowers the bar so weaker signals surface.
type Thresholds struct {
	Detect float64
	Strict float64
}

func (t Thresholds) forMode(strict bool) float64 {
	if strict {
		return t.Strict
	}
	return t.Detect
}

// resolveSignal applies the acceptance policy to one vendor signal:
// confidence is clamped to [0,1], a flagged category without a score
// defaults to 0.5, and detection is decided purely against the mode
// threshold.
func resolveSignal(sig CategorySignal, threshold float64) (bool, float64) {
	confidence := sig.Confidence
	if !sig.HasConfidence {
		if sig.Flagged {
			confidence = defaultMissingScore
		} else {
			confidence = 0
		}
	}
	confidence = clamp01(confidence)
	return confidence >= threshold, confidence
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ImageAnalyzer produces NSFW, violence and hate-symbol findings plus
// OCR text from one vision classification call. It is an isolated
// failure domain: classifier failures become AnalysisUnavailable and
// never abort the sibling text analysis.
type ImageAnalyzer struct {
	classifier ImageClassifier
	thresholds Thresholds
	logger     *logrus.Logger
}

func NewImageAnalyzer(classifier ImageClassifier, thresholds Thresholds, logger *logrus.Logger) *ImageAnalyzer {
	return &ImageAnalyzer{
		classifier: classifier,
		thresholds: thresholds,
		logger:     logger,
	}
}

func (a *ImageAnalyzer) Analyze(ctx context.Context, item *ContentItem) (*ImageAnalysisResult, error) {
	signals, err := a.classifier.ClassifyImage(ctx, ImageInput{
		Data:      item.ImageData,
		ImageType: item.ImageType,
		URL:       item.SourceURL,
	})
	if err != nil {
		a.logger.WithError(err).Error("image classification failed")
		return nil, domain.NewAnalysisUnavailableError("image", err)
	}

	threshold := a.thresholds.forMode(item.StrictMode)

	result := &ImageAnalysisResult{
		ExtractedText:    signals.ExtractedText,
		ConfidenceScores: make(map[string]float64, 3),
		ProcessingNotes:  signals.Notes,
	}

	categories := []struct {
		name     string
		signal   CategorySignal
		detected *bool
		evidence string
	}{
		{CategoryNSFW, signals.NSFW, &result.HasNSFW, "visual content analysis"},
		{CategoryViolence, signals.Violence, &result.HasViolence, "visual content analysis"},
		{CategoryHateSymbols, signals.HateSymbols, &result.HasHateSymbols, "visual content analysis"},
	}

	for _, c := range categories {
		detected, confidence := resolveSignal(c.signal, threshold)
		result.ConfidenceScores[c.name] = confidence
		*c.detected = detected
		if detected {
			result.Violations = append(result.Violations, ViolationCategory{
				Category:    c.name,
				Detected:    true,
				Confidence:  confidence,
				Description: c.signal.Detail,
				Evidence:    []string{c.evidence},
			})
		}
	}

	return result, nil
}
