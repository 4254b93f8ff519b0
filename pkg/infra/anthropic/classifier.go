package anthropic

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fastjson"

	"github.com/moderationhq/modgate/pkg/moderation"
)

const promptVersion = "v1"

const imagePrompt = `Analyze this image for content policy violations and reply with a single JSON object, no prose, matching exactly this schema:
{
  "nsfw": {"detected": <bool>, "confidence": <0.0-1.0>, "detail": "<specific description>"},
  "violence": {"detected": <bool>, "confidence": <0.0-1.0>, "detail": "<specific description>"},
  "hate_symbols": {"detected": <bool>, "confidence": <0.0-1.0>, "detail": "<specific description>"},
  "extracted_text": "<all visible text in the image, or empty string>"
}
Check nsfw for nudity, sexual content and suggestive poses; violence for blood, weapons, fighting, gore and harm to people or animals; hate_symbols for extremist imagery, hate symbols and gang signs. Extract ALL visible text in the image.`

const textPrompt = `Analyze the following text for content policy violations and reply with a single JSON object, no prose, matching exactly this schema:
{
  "toxicity": {"detected": <bool>, "confidence": <0.0-1.0>, "detail": "<specific examples>"},
  "hate_speech": {"detected": <bool>, "confidence": <0.0-1.0>, "detail": "<specific examples>"},
  "harassment": {"detected": <bool>, "confidence": <0.0-1.0>, "detail": "<specific examples>"},
  "pii_types": ["<pii type labels found, e.g. email, phone>"]
}
Check toxicity for offensive, rude or disrespectful language; hate_speech for content targeting individuals or groups based on identity; harassment for threats, intimidation, stalking and bullying.

Text:
`

// Classifier backs both classifier seams with the Anthropic Messages
// API, selected when providers.*.provider is "anthropic".
type Classifier struct {
	client anthropic.Client
	model  string
	logger *logrus.Logger
}

func NewClassifier(apiKey, model string, logger *logrus.Logger) *Classifier {
	return &Classifier{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
		logger: logger,
	}
}

func (c *Classifier) ClassifyImage(ctx context.Context, image moderation.ImageInput) (*moderation.ImageSignals, error) {
	if len(image.Data) == 0 {
		return nil, fmt.Errorf("anthropic classifier requires image bytes")
	}
	mediaType := "image/" + image.ImageType
	encoded := base64.StdEncoding.EncodeToString(image.Data)

	message, err := c.complete(ctx, []anthropic.ContentBlockParamUnion{
		anthropic.NewImageBlockBase64(mediaType, encoded),
		anthropic.NewTextBlock(imagePrompt),
	})
	if err != nil {
		return nil, err
	}

	v, err := parseJSONReply(message)
	if err != nil {
		return nil, err
	}

	return &moderation.ImageSignals{
		NSFW:          parseSignal(v.Get("nsfw")),
		Violence:      parseSignal(v.Get("violence")),
		HateSymbols:   parseSignal(v.Get("hate_symbols")),
		ExtractedText: string(v.GetStringBytes("extracted_text")),
		Notes:         fmt.Sprintf("analyzed with %s vision classifier (prompt %s)", c.model, promptVersion),
	}, nil
}

func (c *Classifier) ClassifyText(ctx context.Context, text string) (*moderation.TextSignals, error) {
	message, err := c.complete(ctx, []anthropic.ContentBlockParamUnion{
		anthropic.NewTextBlock(textPrompt + text),
	})
	if err != nil {
		return nil, err
	}

	v, err := parseJSONReply(message)
	if err != nil {
		return nil, err
	}

	var piiTypes []string
	for _, t := range v.GetArray("pii_types") {
		piiTypes = append(piiTypes, string(t.GetStringBytes()))
	}

	return &moderation.TextSignals{
		Toxicity:   parseSignal(v.Get("toxicity")),
		HateSpeech: parseSignal(v.Get("hate_speech")),
		Harassment: parseSignal(v.Get("harassment")),
		PIITypes:   piiTypes,
		Notes:      fmt.Sprintf("analyzed with %s text classifier (prompt %s)", c.model, promptVersion),
	}, nil
}

func (c *Classifier) complete(ctx context.Context, blocks []anthropic.ContentBlockParamUnion) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: 500,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(blocks...),
		},
	}

	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic request failed: %w", err)
	}

	for _, content := range message.Content {
		if content.Type == "text" {
			return content.Text, nil
		}
	}
	return "", fmt.Errorf("no text content returned")
}

func parseJSONReply(content string) (*fastjson.Value, error) {
	payload := strings.TrimSpace(content)
	payload = strings.TrimPrefix(payload, "```json")
	payload = strings.TrimPrefix(payload, "```")
	payload = strings.TrimSuffix(payload, "```")

	var p fastjson.Parser
	v, err := p.Parse(payload)
	if err != nil {
		return nil, fmt.Errorf("malformed classifier response: %w", err)
	}
	return v, nil
}

func parseSignal(v *fastjson.Value) moderation.CategorySignal {
	if v == nil {
		return moderation.CategorySignal{}
	}
	signal := moderation.CategorySignal{
		Flagged: v.GetBool("detected"),
		Detail:  string(v.GetStringBytes("detail")),
	}
	if confidence := v.Get("confidence"); confidence != nil && confidence.Type() == fastjson.TypeNumber {
		signal.Confidence = confidence.GetFloat64()
		signal.HasConfidence = true
	}
	return signal
}
