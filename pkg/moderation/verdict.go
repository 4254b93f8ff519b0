package moderation

import (
	"fmt"
	"strings"
	"time"
)

// severityRule is one row of the risk policy. Rules are evaluated in
// order and the first match wins.
type severityRule struct {
	level   RiskLevel
	matches func(detected []ViolationCategory) bool
}

const highConfidence = 0.7
const mediumConfidence = 0.4

var criticalCategories = map[string]struct{}{
	CategoryHateSymbols: {},
	CategoryViolence:    {},
	CategoryHateSpeech:  {},
}

// severityRules is the ordered risk table. It is policy, kept as data
// so each rule can be tested on its own.
var severityRules = []severityRule{
	{
		level: RiskCritical,
		matches: func(detected []ViolationCategory) bool {
			for _, v := range detected {
				if _, ok := criticalCategories[v.Category]; ok && v.Confidence >= highConfidence {
					return true
				}
			}
			return false
		},
	},
	{
		level: RiskHigh,
		matches: func(detected []ViolationCategory) bool {
			if len(distinctCategories(detected)) >= 2 {
				return true
			}
			for _, v := range detected {
				if v.Confidence >= highConfidence {
					return true
				}
			}
			return false
		},
	},
	{
		level: RiskMedium,
		matches: func(detected []ViolationCategory) bool {
			if len(distinctCategories(detected)) != 1 {
				return false
			}
			for _, v := range detected {
				if v.Confidence >= mediumConfidence && v.Confidence < highConfidence {
					return true
				}
			}
			return false
		},
	},
	{
		level:   RiskLow,
		matches: func([]ViolationCategory) bool { return true },
	},
}

func distinctCategories(detected []ViolationCategory) []string {
	seen := make(map[string]struct{}, len(detected))
	var names []string
	for _, v := range detected {
		if _, ok := seen[v.Category]; !ok {
			seen[v.Category] = struct{}{}
			names = append(names, v.Category)
		}
	}
	return names
}

// AggregateInput carries the two analyzer outcomes into the verdict.
// A nil result with a non-nil error means that modality was attempted
// and failed.
type AggregateInput struct {
	Image    *ImageAnalysisResult
	Text     *TextAnalysisResult
	ImageErr error
	TextErr  error
	Elapsed  time.Duration
}

// Aggregate merges the analyzer outputs into one verdict. It is a pure
// function of its input and performs no I/O.
func Aggregate(in AggregateInput) *ModerationResult {
	result := &ModerationResult{
		ViolationCategories:  []string{},
		ViolationsFound:      []ViolationCategory{},
		ContentTypesAnalyzed: []string{},
		ProcessingTime:       in.Elapsed.Seconds(),
	}

	if in.Image != nil {
		result.ContentTypesAnalyzed = append(result.ContentTypesAnalyzed, "image")
		result.ImageAnalysis = in.Image
		result.ViolationsFound = append(result.ViolationsFound, in.Image.Violations...)
	}
	if in.Text != nil {
		result.ContentTypesAnalyzed = append(result.ContentTypesAnalyzed, "text")
		result.TextAnalysis = in.Text
		result.ViolationsFound = append(result.ViolationsFound, in.Text.Violations...)
	}

	detected := detectedViolations(result.ViolationsFound)
	result.ViolationCategories = distinctCategories(detected)

	attempted := in.Image != nil || in.Text != nil || in.ImageErr != nil || in.TextErr != nil
	allFailed := attempted && in.Image == nil && in.Text == nil

	if allFailed {
		// Missing data never means safe.
		result.IsSafe = false
		result.OverallRiskLevel = RiskHigh
		result.Summary = "⚠️ Content moderation failed due to processing error"
		result.Rationale = fmt.Sprintf("Unable to complete content analysis: %s", joinErrors(in.ImageErr, in.TextErr))
		return result
	}

	result.IsSafe = len(result.ViolationCategories) == 0
	result.OverallRiskLevel = riskLevel(detected)
	result.Summary = buildSummary(result.IsSafe, result.ViolationCategories)
	result.Rationale = buildRationale(result.IsSafe, detected, in)

	return result
}

func detectedViolations(violations []ViolationCategory) []ViolationCategory {
	var detected []ViolationCategory
	for _, v := range violations {
		if v.Detected {
			detected = append(detected, v)
		}
	}
	return detected
}

func riskLevel(detected []ViolationCategory) RiskLevel {
	for _, rule := range severityRules {
		if rule.matches(detected) {
			return rule.level
		}
	}
	return RiskLow
}

func buildSummary(isSafe bool, categories []string) string {
	if isSafe {
		return "✅ Content is SAFE: No significant policy violations detected."
	}
	return fmt.Sprintf("🚫 Content is NOT SAFE: Detected violations in %s", strings.Join(categories, ", "))
}

func buildRationale(isSafe bool, detected []ViolationCategory, in AggregateInput) string {
	var b strings.Builder

	if isSafe {
		b.WriteString("The content analysis found no violations that exceed the safety thresholds. ")
		if in.Image != nil {
			b.WriteString("Image analysis found no NSFW, violent, or hate-related content. ")
		}
		if in.Text != nil {
			b.WriteString("Text analysis found no toxicity, hate speech, or harassment. ")
		}
	} else {
		b.WriteString("The content analysis detected the following violations:")
		for _, v := range detected {
			b.WriteString(fmt.Sprintf("\n- %s: %s (confidence: %.2f, %s)", v.Category, v.Description, v.Confidence, confidenceBand(v.Confidence)))
		}
	}

	if in.ImageErr != nil && in.Image == nil {
		b.WriteString(" Image analysis was unavailable and is not reflected in this verdict.")
	}
	if in.TextErr != nil && in.Text == nil {
		b.WriteString(" Text analysis was unavailable and is not reflected in this verdict.")
	}

	return strings.TrimSpace(b.String())
}

func confidenceBand(confidence float64) string {
	switch {
	case confidence >= highConfidence:
		return "high confidence"
	case confidence >= mediumConfidence:
		return "medium confidence"
	default:
		return "low confidence"
	}
}

func joinErrors(errs ...error) string {
	messages := make([]string, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			messages = append(messages, err.Error())
		}
	}
	return strings.Join(messages, "; ")
}
