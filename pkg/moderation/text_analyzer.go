package moderation

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/moderationhq/modgate/pkg/domain"
	"github.com/moderationhq/modgate/pkg/moderation/pii"
)

// ocrDelimiter separates direct input text from text extracted out of
// an image, so hidden-in-image text goes through the same checks.
const ocrDelimiter = "\n\n[text extracted from image]\n"

// piiConfidence is the fixed confidence for pattern-matched PII.
const piiConfidence = 0.8

// TextAnalyzer runs the moderation classifier and the PII detector over
// the combined direct + OCR text and merges both into one result. Same
// failure isolation as the image analyzer.
type TextAnalyzer struct {
	classifier TextClassifier
	thresholds Thresholds
	logger     *logrus.Logger
}

func NewTextAnalyzer(classifier TextClassifier, thresholds Thresholds, logger *logrus.Logger) *TextAnalyzer {
	return &TextAnalyzer{
		classifier: classifier,
		thresholds: thresholds,
		logger:     logger,
	}
}

// CombineText appends OCR output to the direct input text with a clear
// delimiter. Either part may be empty.
func CombineText(text, extracted string) string {
	if extracted == "" {
		return text
	}
	if text == "" {
		return extracted
	}
	return text + ocrDelimiter + extracted
}

func (a *TextAnalyzer) Analyze(ctx context.Context, text string, strictMode bool) (*TextAnalysisResult, error) {
	signals, err := a.classifier.ClassifyText(ctx, text)
	if err != nil {
		a.logger.WithError(err).Error("text classification failed")
		return nil, domain.NewAnalysisUnavailableError("text", err)
	}

	threshold := a.thresholds.forMode(strictMode)

	result := &TextAnalysisResult{
		ConfidenceScores: make(map[string]float64, 3),
	}

	categories := []struct {
		name     string
		signal   CategorySignal
		detected *bool
	}{
		{CategoryToxicity, signals.Toxicity, &result.HasToxicity},
		{CategoryHateSpeech, signals.HateSpeech, &result.HasHateSpeech},
		{CategoryHarassment, signals.Harassment, &result.HasHarassment},
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
				Evidence:    []string{"text content analysis"},
			})
		}
	}

	// Pattern-based PII detection merged with any vendor PII labels.
	detectedPII := mergePIITypes(pii.Detect(text), signals.PIITypes)
	if len(detectedPII) > 0 {
		result.HasPII = true
		result.DetectedPII = detectedPII
		result.Violations = append(result.Violations, ViolationCategory{
			Category:    CategoryPII,
			Detected:    true,
			Confidence:  piiConfidence,
			Description: "personal information found in text",
			Evidence:    detectedPII,
		})
	}

	result.CleanedText = pii.Redact(text)

	return result, nil
}

func mergePIITypes(pattern, vendor []string) []string {
	seen := make(map[string]struct{}, len(pattern)+len(vendor))
	var merged []string
	for _, t := range pattern {
		if _, ok := seen[t]; !ok {
			seen[t] = struct{}{}
			merged = append(merged, t)
		}
	}
	var extra []string
	for _, t := range vendor {
		if _, ok := seen[t]; !ok {
			seen[t] = struct{}{}
			extra = append(extra, t)
		}
	}
	sort.Strings(extra)
	return append(merged, extra...)
}
