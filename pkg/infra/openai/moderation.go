package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/moderationhq/modgate/pkg/infra/httpx"
	"github.com/moderationhq/modgate/pkg/moderation"
)

const ModerationURL = "https://api.openai.com/v1/moderations"

type moderationRequest struct {
	Input []moderationInput `json:"input"`
	Model string            `json:"model,omitempty"`
}

type moderationInput struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type moderationResponse struct {
	ID      string             `json:"id"`
	Model   string             `json:"model"`
	Results []moderationResult `json:"results"`
}

type moderationResult struct {
	Flagged        bool               `json:"flagged"`
	Categories     map[string]bool    `json:"categories"`
	CategoryScores map[string]float64 `json:"category_scores"`
}

// TextModerationClassifier calls the OpenAI moderation endpoint and
// folds its category taxonomy into the pipeline's three text signals.
type TextModerationClassifier struct {
	client httpx.Client
	apiKey string
	model  string
	logger *logrus.Logger
}

func NewTextModerationClassifier(client httpx.Client, apiKey, model string, logger *logrus.Logger) *TextModerationClassifier {
	if client == nil {
		client = &http.Client{}
	}
	return &TextModerationClassifier{
		client: client,
		apiKey: apiKey,
		model:  model,
		logger: logger,
	}
}

func (c *TextModerationClassifier) ClassifyText(ctx context.Context, text string) (*moderation.TextSignals, error) {
	reqBody := moderationRequest{
		Input: []moderationInput{{Type: "text", Text: text}},
		Model: c.model,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal moderation request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, ModerationURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("moderation API returned error: %s", string(body))
	}

	var resp moderationResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal moderation response: %w", err)
	}
	if len(resp.Results) == 0 {
		return nil, fmt.Errorf("no moderation results returned")
	}

	return foldModerationResult(resp.Results[0]), nil
}

// Vendor categories folded into each pipeline signal. "hate" maps to
// hate speech, the harassment pair maps to harassment, and the rest of
// the taxonomy is folded into the general toxicity signal.
var (
	hateSpeechCategories = []string{"hate", "hate/threatening"}
	harassmentCategories = []string{"harassment", "harassment/threatening"}
	toxicityCategories   = []string{"sexual", "sexual/minors", "violence", "violence/graphic", "self-harm", "self-harm/intent", "self-harm/instructions", "illicit", "illicit/violent"}
)

func foldModerationResult(result moderationResult) *moderation.TextSignals {
	return &moderation.TextSignals{
		HateSpeech: foldCategories(result, hateSpeechCategories),
		Harassment: foldCategories(result, harassmentCategories),
		Toxicity:   foldCategories(result, toxicityCategories),
		Notes:      "analyzed with openai moderation",
	}
}

func foldCategories(result moderationResult, categories []string) moderation.CategorySignal {
	signal := moderation.CategorySignal{}
	flaggedNames := make([]string, 0, 1)
	for _, name := range categories {
		if result.Categories[name] {
			signal.Flagged = true
			flaggedNames = append(flaggedNames, name)
		}
		if score, ok := result.CategoryScores[name]; ok {
			signal.HasConfidence = true
			if score > signal.Confidence {
				signal.Confidence = score
			}
		}
	}
	if len(flaggedNames) > 0 {
		signal.Detail = fmt.Sprintf("flagged by moderation classifier for: %v", flaggedNames)
	}
	return signal
}
