package openai_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/moderationhq/modgate/pkg/infra/httpx/mocks"
	"github.com/moderationhq/modgate/pkg/infra/openai"
)

func moderationResponseBody(t *testing.T, flagged map[string]bool, scores map[string]float64) io.ReadCloser {
	t.Helper()
	payload := map[string]interface{}{
		"id":    "modr-test",
		"model": "omni-moderation-latest",
		"results": []map[string]interface{}{
			{
				"flagged":         len(flagged) > 0,
				"categories":      flagged,
				"category_scores": scores,
			},
		},
	}
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return io.NopCloser(bytes.NewReader(data))
}

func TestClassifyTextFoldsCategories(t *testing.T) {
	client := new(mocks.MockHTTPClient)
	client.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		return req.URL.String() == openai.ModerationURL &&
			req.Header.Get("Authorization") == "Bearer test-key"
	})).Return(&http.Response{
		StatusCode: http.StatusOK,
		Body: moderationResponseBody(t,
			map[string]bool{"hate": true, "harassment/threatening": true},
			map[string]float64{
				"hate":                   0.91,
				"hate/threatening":       0.42,
				"harassment":             0.2,
				"harassment/threatening": 0.88,
				"violence":               0.13,
			}),
	}, nil)

	classifier := openai.NewTextModerationClassifier(client, "test-key", "omni-moderation-latest", logrus.New())

	signals, err := classifier.ClassifyText(context.Background(), "some text")
	require.NoError(t, err)

	assert.True(t, signals.HateSpeech.Flagged)
	assert.InDelta(t, 0.91, signals.HateSpeech.Confidence, 0.001)
	assert.True(t, signals.HateSpeech.HasConfidence)

	assert.True(t, signals.Harassment.Flagged)
	assert.InDelta(t, 0.88, signals.Harassment.Confidence, 0.001)

	assert.False(t, signals.Toxicity.Flagged)
	assert.InDelta(t, 0.13, signals.Toxicity.Confidence, 0.001)

	client.AssertExpectations(t)
}

func TestClassifyTextCleanContent(t *testing.T) {
	client := new(mocks.MockHTTPClient)
	client.On("Do", mock.Anything).Return(&http.Response{
		StatusCode: http.StatusOK,
		Body:       moderationResponseBody(t, map[string]bool{}, map[string]float64{"hate": 0.001, "sexual": 0.002}),
	}, nil)

	classifier := openai.NewTextModerationClassifier(client, "test-key", "", logrus.New())

	signals, err := classifier.ClassifyText(context.Background(), "hello")
	require.NoError(t, err)

	assert.False(t, signals.HateSpeech.Flagged)
	assert.False(t, signals.Harassment.Flagged)
	assert.False(t, signals.Toxicity.Flagged)
	assert.True(t, signals.Toxicity.HasConfidence)
}

func TestClassifyTextAPIError(t *testing.T) {
	client := new(mocks.MockHTTPClient)
	client.On("Do", mock.Anything).Return(&http.Response{
		StatusCode: http.StatusTooManyRequests,
		Body:       io.NopCloser(bytes.NewReader([]byte(`{"error":"rate limited"}`))),
	}, nil)

	classifier := openai.NewTextModerationClassifier(client, "test-key", "", logrus.New())

	_, err := classifier.ClassifyText(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestClassifyTextTransportError(t *testing.T) {
	client := new(mocks.MockHTTPClient)
	client.On("Do", mock.Anything).Return(nil, errors.New("connection reset"))

	classifier := openai.NewTextModerationClassifier(client, "test-key", "", logrus.New())

	_, err := classifier.ClassifyText(context.Background(), "hello")
	require.Error(t, err)
}

func TestClassifyTextEmptyResults(t *testing.T) {
	client := new(mocks.MockHTTPClient)
	client.On("Do", mock.Anything).Return(&http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(bytes.NewReader([]byte(`{"id":"modr-test","results":[]}`))),
	}, nil)

	classifier := openai.NewTextModerationClassifier(client, "test-key", "", logrus.New())

	_, err := classifier.ClassifyText(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no moderation results")
}
