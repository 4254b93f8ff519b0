package openai

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVisionResponse(t *testing.T) {
	signals, err := parseVisionResponse(`{
		"nsfw": {"detected": true, "confidence": 0.87, "detail": "explicit content"},
		"violence": {"detected": false, "confidence": 0.05, "detail": ""},
		"hate_symbols": {"detected": false, "confidence": 0.01, "detail": ""},
		"extracted_text": "visible caption"
	}`)
	require.NoError(t, err)

	assert.True(t, signals.NSFW.Flagged)
	assert.InDelta(t, 0.87, signals.NSFW.Confidence, 0.001)
	assert.True(t, signals.NSFW.HasConfidence)
	assert.Equal(t, "explicit content", signals.NSFW.Detail)
	assert.False(t, signals.Violence.Flagged)
	assert.Equal(t, "visible caption", signals.ExtractedText)
}

func TestParseVisionResponseStripsCodeFences(t *testing.T) {
	signals, err := parseVisionResponse("```json\n{\"nsfw\": {\"detected\": true, \"confidence\": 0.6}}\n```")
	require.NoError(t, err)
	assert.True(t, signals.NSFW.Flagged)
}

func TestParseVisionResponseMissingConfidence(t *testing.T) {
	signals, err := parseVisionResponse(`{"violence": {"detected": true, "detail": "weapon"}}`)
	require.NoError(t, err)

	assert.True(t, signals.Violence.Flagged)
	assert.False(t, signals.Violence.HasConfidence)
}

func TestParseVisionResponseMalformed(t *testing.T) {
	_, err := parseVisionResponse("the image looks fine to me")
	require.Error(t, err)
}

func TestNewVisionClassifier_DecodesOptions(t *testing.T) {
	classifier, err := NewVisionClassifier("test-key", "gpt-4o-mini", map[string]interface{}{
		"detail":     "low",
		"max_tokens": 800,
	}, logrus.New())
	require.NoError(t, err)

	assert.Equal(t, "low", classifier.options.Detail)
	assert.Equal(t, int64(800), classifier.options.MaxTokens)
}

func TestNewVisionClassifier_DefaultOptions(t *testing.T) {
	classifier, err := NewVisionClassifier("test-key", "gpt-4o-mini", nil, logrus.New())
	require.NoError(t, err)

	assert.Equal(t, "", classifier.options.Detail)
	assert.Equal(t, int64(500), classifier.options.MaxTokens)
}

func TestNewVisionClassifier_RejectsBadOptions(t *testing.T) {
	_, err := NewVisionClassifier("test-key", "gpt-4o-mini", map[string]interface{}{
		"max_tokens": "not a number",
	}, logrus.New())
	require.Error(t, err)
}
