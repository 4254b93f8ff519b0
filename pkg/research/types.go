package research

import "time"

// Citation points at a source referenced inside a synthesized answer.
type Citation struct {
	URL        string `json:"url"`
	Title      string `json:"title"`
	StartIndex int    `json:"start_index"`
	EndIndex   int    `json:"end_index"`
}

// ReasoningStep records one stage of the agent run, in order.
type ReasoningStep struct {
	StepNumber  int       `json:"step_number"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	Query       string    `json:"query,omitempty"`
	Result      string    `json:"result,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

type Request struct {
	Query       string `json:"query"`
	ContextSize string `json:"context_size,omitempty"`
}

type Response struct {
	Query                  string                 `json:"query"`
	Answer                 string                 `json:"answer"`
	Citations              []Citation             `json:"citations"`
	ReasoningSteps         []ReasoningStep        `json:"reasoning_steps"`
	SafetyCheckPassed      bool                   `json:"safety_check_passed"`
	ContentModerationFlags map[string]interface{} `json:"content_moderation_flags,omitempty"`
	ProcessingTime         float64                `json:"processing_time"`
	Timestamp              time.Time              `json:"timestamp"`
}
