package moderation

import "context"

// CategorySignal is what a classifier vendor reports for one category.
// HasConfidence is false when the vendor omitted a score.
type CategorySignal struct {
	Flagged       bool
	Confidence    float64
	HasConfidence bool
	Detail        string
}

// ImageSignals is the structured outcome of one vision classification
// call: presence flags for the three image categories plus OCR output.
type ImageSignals struct {
	NSFW          CategorySignal
	Violence      CategorySignal
	HateSymbols   CategorySignal
	ExtractedText string
	Notes         string
}

// TextSignals is the structured outcome of one text moderation call.
// PIITypes carries any ML-side PII type labels the vendor reports on
// top of the local pattern matching.
type TextSignals struct {
	Toxicity   CategorySignal
	HateSpeech CategorySignal
	Harassment CategorySignal
	PIITypes   []string
	Notes      string
}

// ImageInput is the image handed to a vision vendor: raw bytes with a
// sniffed type, or a remote URL when the vendor accepts one directly.
type ImageInput struct {
	Data      []byte
	ImageType string
	URL       string
}

// ImageClassifier is the narrow capability seam for the vision vendor.
type ImageClassifier interface {
	ClassifyImage(ctx context.Context, image ImageInput) (*ImageSignals, error)
}

// TextClassifier is the narrow capability seam for the text vendor.
type TextClassifier interface {
	ClassifyText(ctx context.Context, text string) (*TextSignals, error)
}

// ImageFetcher downloads a remote image. Implementations retry once
// with backoff and return a domain.FetchError on failure.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}
