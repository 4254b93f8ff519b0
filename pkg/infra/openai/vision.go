package openai

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fastjson"

	"github.com/moderationhq/modgate/pkg/moderation"
)

// visionPromptVersion pins the classification schema sent to the
// vision model. Bump it whenever the prompt or schema changes.
const visionPromptVersion = "v1"

const visionPrompt = `Analyze this image for content policy violations and reply with a single JSON object, no prose, matching exactly this schema:
{
  "nsfw": {"detected": <bool>, "confidence": <0.0-1.0>, "detail": "<specific description>"},
  "violence": {"detected": <bool>, "confidence": <0.0-1.0>, "detail": "<specific description>"},
  "hate_symbols": {"detected": <bool>, "confidence": <0.0-1.0>, "detail": "<specific description>"},
  "extracted_text": "<all visible text in the image, or empty string>"
}
Check nsfw for nudity, sexual content and suggestive poses; violence for blood, weapons, fighting, gore and harm to people or animals; hate_symbols for extremist imagery, hate symbols and gang signs. Extract ALL visible text using your OCR capability.`

// VisionOptions are the vendor-specific knobs carried in the provider
// config's free-form options map.
type VisionOptions struct {
	Detail    string `mapstructure:"detail"`
	MaxTokens int64  `mapstructure:"max_tokens"`
}

// VisionClassifier classifies images with an OpenAI vision-capable
// chat model using a fixed, versioned prompt and JSON schema.
type VisionClassifier struct {
	client  openai.Client
	model   string
	options VisionOptions
	logger  *logrus.Logger
}

func NewVisionClassifier(apiKey, model string, rawOptions map[string]interface{}, logger *logrus.Logger) (*VisionClassifier, error) {
	options := VisionOptions{MaxTokens: 500}
	if rawOptions != nil {
		if err := mapstructure.Decode(rawOptions, &options); err != nil {
			return nil, fmt.Errorf("invalid vision provider options: %w", err)
		}
	}
	return &VisionClassifier{
		client:  openai.NewClient(option.WithAPIKey(apiKey)),
		model:   model,
		options: options,
		logger:  logger,
	}, nil
}

func (c *VisionClassifier) ClassifyImage(ctx context.Context, image moderation.ImageInput) (*moderation.ImageSignals, error) {
	imageURL := image.URL
	if len(image.Data) > 0 {
		imageURL = fmt.Sprintf("data:image/%s;base64,%s", image.ImageType, base64.StdEncoding.EncodeToString(image.Data))
	}

	imagePart := openai.ChatCompletionContentPartImageImageURLParam{URL: imageURL}
	if c.options.Detail != "" {
		imagePart.Detail = c.options.Detail
	}

	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(visionPrompt),
				openai.ImageContentPart(imagePart),
			}),
		},
		MaxTokens:   openai.Int(c.options.MaxTokens),
		Temperature: openai.Float(0.1),
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("vision request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no completions returned")
	}

	signals, err := parseVisionResponse(resp.Choices[0].Message.Content)
	if err != nil {
		c.logger.WithError(err).Debug("unparsable vision response")
		return nil, err
	}
	signals.Notes = fmt.Sprintf("analyzed with %s vision classifier (prompt %s)", c.model, visionPromptVersion)
	return signals, nil
}

// parseVisionResponse reads the model's JSON output leniently: code
// fences are stripped and missing confidence fields are preserved as
// absent rather than zero.
func parseVisionResponse(content string) (*moderation.ImageSignals, error) {
	payload := strings.TrimSpace(content)
	payload = strings.TrimPrefix(payload, "```json")
	payload = strings.TrimPrefix(payload, "```")
	payload = strings.TrimSuffix(payload, "```")

	var p fastjson.Parser
	v, err := p.Parse(payload)
	if err != nil {
		return nil, fmt.Errorf("malformed classifier response: %w", err)
	}

	signals := &moderation.ImageSignals{
		NSFW:          parseCategorySignal(v.Get("nsfw")),
		Violence:      parseCategorySignal(v.Get("violence")),
		HateSymbols:   parseCategorySignal(v.Get("hate_symbols")),
		ExtractedText: string(v.GetStringBytes("extracted_text")),
	}
	return signals, nil
}

func parseCategorySignal(v *fastjson.Value) moderation.CategorySignal {
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
