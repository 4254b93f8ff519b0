package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/moderationhq/modgate/pkg/moderation"
	"github.com/moderationhq/modgate/pkg/moderation/mocks"
)

func newTestService(t *testing.T) (*moderation.Service, *mocks.MockTextClassifier) {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	textClassifier := new(mocks.MockTextClassifier)
	imageClassifier := new(mocks.MockImageClassifier)
	fetcher := new(mocks.MockImageFetcher)

	thresholds := moderation.Thresholds{Detect: 0.5, Strict: 0.25}
	service := moderation.NewService(
		moderation.NewNormalizer(fetcher, 1024*1024),
		moderation.NewImageAnalyzer(imageClassifier, thresholds, logger),
		moderation.NewTextAnalyzer(textClassifier, thresholds, logger),
		nil,
		logger,
		20,
		5,
	)
	return service, textClassifier
}

func TestAnalyzeContentHandler_Safe(t *testing.T) {
	service, textClassifier := newTestService(t)
	textClassifier.On("ClassifyText", mock.Anything, "hello").Return(&moderation.TextSignals{}, nil)

	handler := NewAnalyzeContentHandler(logrus.New(), service)
	app := fiber.New()
	app.Post("/moderation/analyze", handler.Handle)

	body, err := json.Marshal(map[string]interface{}{"text": "hello"})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/moderation/analyze", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var result moderation.ModerationResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.True(t, result.IsSafe)
	assert.Equal(t, moderation.RiskLow, result.OverallRiskLevel)
}

func TestAnalyzeContentHandler_EmptyRequest(t *testing.T) {
	service, _ := newTestService(t)

	handler := NewAnalyzeContentHandler(logrus.New(), service)
	app := fiber.New()
	app.Post("/moderation/analyze", handler.Handle)

	req := httptest.NewRequest("POST", "/moderation/analyze", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)

	var errBody map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errBody))
	assert.Contains(t, errBody["error"], "content")
}

func TestAnalyzeContentHandler_MalformedJSON(t *testing.T) {
	service, _ := newTestService(t)

	handler := NewAnalyzeContentHandler(logrus.New(), service)
	app := fiber.New()
	app.Post("/moderation/analyze", handler.Handle)

	req := httptest.NewRequest("POST", "/moderation/analyze", bytes.NewReader([]byte(`{broken`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestAnalyzeContentHandler_Unsafe(t *testing.T) {
	service, textClassifier := newTestService(t)
	textClassifier.On("ClassifyText", mock.Anything, mock.Anything).Return(&moderation.TextSignals{
		Toxicity: moderation.CategorySignal{Flagged: true, Confidence: 0.9, HasConfidence: true, Detail: "abusive"},
	}, nil)

	handler := NewAnalyzeContentHandler(logrus.New(), service)
	app := fiber.New()
	app.Post("/moderation/analyze", handler.Handle)

	body, err := json.Marshal(map[string]interface{}{"text": "abusive text"})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/moderation/analyze", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var result moderation.ModerationResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.False(t, result.IsSafe)
	assert.Contains(t, result.ViolationCategories, "toxicity")
}
