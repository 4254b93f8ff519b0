package moderation

// RiskLevel is the aggregate severity of a verdict.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// Violation category names. Image categories first, then text.
const (
	CategoryNSFW        = "nsfw"
	CategoryViolence    = "violence"
	CategoryHateSymbols = "hate_symbols"
	CategoryToxicity    = "toxicity"
	CategoryHateSpeech  = "hate_speech"
	CategoryHarassment  = "harassment"
	CategoryPII         = "pii"
)

// AnalyzeRequest is the wire shape accepted by the analyze endpoints.
// Exactly one of ImageURL or ImageBase64(+ImageFilename) may be set.
type AnalyzeRequest struct {
	Text          string `json:"text,omitempty"`
	ImageURL      string `json:"image_url,omitempty"`
	ImageBase64   string `json:"image_base64,omitempty"`
	ImageFilename string `json:"image_filename,omitempty"`
	StrictMode    bool   `json:"strict_mode"`
}

// ContentItem is one normalized unit of moderation work. Immutable once
// built; owned exclusively by the pipeline invocation that created it.
type ContentItem struct {
	Text       string
	ImageData  []byte
	ImageType  string // png, jpeg, webp or gif
	SourceURL  string
	StrictMode bool
}

func (it *ContentItem) HasText() bool {
	return it.Text != ""
}

func (it *ContentItem) HasImage() bool {
	return len(it.ImageData) > 0
}

// ViolationCategory is one analyzer finding, consumed read-only by the
// aggregator.
type ViolationCategory struct {
	Category    string   `json:"category"`
	Detected    bool     `json:"detected"`
	Confidence  float64  `json:"confidence"`
	Description string   `json:"description"`
	Evidence    []string `json:"evidence,omitempty"`
}

type ImageAnalysisResult struct {
	HasNSFW          bool                `json:"has_nsfw"`
	HasViolence      bool                `json:"has_violence"`
	HasHateSymbols   bool                `json:"has_hate_symbols"`
	ExtractedText    string              `json:"extracted_text,omitempty"`
	Violations       []ViolationCategory `json:"violations"`
	ConfidenceScores map[string]float64  `json:"confidence_scores"`
	ProcessingNotes  string              `json:"processing_notes,omitempty"`
}

type TextAnalysisResult struct {
	HasToxicity      bool                `json:"has_toxicity"`
	HasHateSpeech    bool                `json:"has_hate_speech"`
	HasHarassment    bool                `json:"has_harassment"`
	HasPII           bool                `json:"has_pii"`
	Violations       []ViolationCategory `json:"violations"`
	DetectedPII      []string            `json:"detected_pii"`
	ConfidenceScores map[string]float64  `json:"confidence_scores"`
	CleanedText      string              `json:"cleaned_text,omitempty"`
}

// ModerationResult is the aggregate verdict for one item. Created once,
// never mutated by the batch layer.
type ModerationResult struct {
	IsSafe               bool                 `json:"is_safe"`
	OverallRiskLevel     RiskLevel            `json:"overall_risk_level"`
	Summary              string               `json:"summary"`
	Rationale            string               `json:"rationale"`
	ImageAnalysis        *ImageAnalysisResult `json:"image_analysis,omitempty"`
	TextAnalysis         *TextAnalysisResult  `json:"text_analysis,omitempty"`
	ViolationCategories  []string             `json:"violation_categories"`
	ViolationsFound      []ViolationCategory  `json:"violations_found"`
	ContentTypesAnalyzed []string             `json:"content_types_analyzed"`
	ProcessingTime       float64              `json:"processing_time"`
}

type BatchRequest struct {
	Items              []AnalyzeRequest `json:"items"`
	StrictMode         bool             `json:"strict_mode"`
	ParallelProcessing bool             `json:"parallel_processing"`
}

type BatchResult struct {
	Results            []ModerationResult `json:"results"`
	SummaryStats       map[string]int     `json:"summary_stats"`
	OverallSafeCount   int                `json:"overall_safe_count"`
	OverallUnsafeCount int                `json:"overall_unsafe_count"`
	ProcessingTime     float64            `json:"processing_time"`
}
