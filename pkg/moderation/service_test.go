package moderation_test

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/moderationhq/modgate/pkg/domain"
	"github.com/moderationhq/modgate/pkg/moderation"
	"github.com/moderationhq/modgate/pkg/moderation/mocks"
)

type serviceFixture struct {
	service         *moderation.Service
	imageClassifier *mocks.MockImageClassifier
	textClassifier  *mocks.MockTextClassifier
	fetcher         *mocks.MockImageFetcher
}

func newServiceFixture(t *testing.T, cache moderation.VerdictCache) *serviceFixture {
	t.Helper()

	imageClassifier := new(mocks.MockImageClassifier)
	textClassifier := new(mocks.MockTextClassifier)
	fetcher := new(mocks.MockImageFetcher)
	logger := newTestLogger()

	normalizer := moderation.NewNormalizer(fetcher, testMaxImageBytes)
	imageAnalyzer := moderation.NewImageAnalyzer(imageClassifier, testThresholds, logger)
	textAnalyzer := moderation.NewTextAnalyzer(textClassifier, testThresholds, logger)

	return &serviceFixture{
		service:         moderation.NewService(normalizer, imageAnalyzer, textAnalyzer, cache, logger, 20, 5),
		imageClassifier: imageClassifier,
		textClassifier:  textClassifier,
		fetcher:         fetcher,
	}
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[string]*moderation.ModerationResult
	hits    int
	sets    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string]*moderation.ModerationResult{}}
}

func (c *memoryCache) Get(_ context.Context, key string) (*moderation.ModerationResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	result, ok := c.entries[key]
	if ok {
		c.hits++
	}
	return result, ok
}

func (c *memoryCache) Set(_ context.Context, key string, result *moderation.ModerationResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.entries[key] = result
}

func TestServiceAnalyzeTextOnly(t *testing.T) {
	f := newServiceFixture(t, nil)
	f.textClassifier.On("ClassifyText", mock.Anything, "hello world").Return(cleanTextSignals(), nil)

	result, err := f.service.Analyze(context.Background(), moderation.AnalyzeRequest{Text: "hello world"})
	require.NoError(t, err)

	assert.True(t, result.IsSafe)
	assert.Equal(t, []string{"text"}, result.ContentTypesAnalyzed)
	f.imageClassifier.AssertNotCalled(t, "ClassifyImage")
}

func TestServiceAnalyzeImageWithOCRFeedsTextAnalyzer(t *testing.T) {
	f := newServiceFixture(t, nil)
	f.imageClassifier.On("ClassifyImage", mock.Anything, mock.Anything).Return(&moderation.ImageSignals{
		ExtractedText: "text hidden in the image",
	}, nil)
	f.textClassifier.On("ClassifyText", mock.Anything, "text hidden in the image").Return(cleanTextSignals(), nil)

	result, err := f.service.Analyze(context.Background(), moderation.AnalyzeRequest{
		ImageBase64: base64.StdEncoding.EncodeToString(pngBytes()),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"image", "text"}, result.ContentTypesAnalyzed)
	f.textClassifier.AssertExpectations(t)
}

func TestServiceAnalyzeImageOnlyNoOCRSkipsTextAnalyzer(t *testing.T) {
	f := newServiceFixture(t, nil)
	f.imageClassifier.On("ClassifyImage", mock.Anything, mock.Anything).Return(&moderation.ImageSignals{}, nil)

	result, err := f.service.Analyze(context.Background(), moderation.AnalyzeRequest{
		ImageBase64: base64.StdEncoding.EncodeToString(pngBytes()),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"image"}, result.ContentTypesAnalyzed)
	f.textClassifier.AssertNotCalled(t, "ClassifyText")
}

func TestServiceAnalyzeValidationErrorPropagates(t *testing.T) {
	f := newServiceFixture(t, nil)

	_, err := f.service.Analyze(context.Background(), moderation.AnalyzeRequest{})
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
	f.imageClassifier.AssertNotCalled(t, "ClassifyImage")
	f.textClassifier.AssertNotCalled(t, "ClassifyText")
}

func TestServiceAnalyzeImageFailureDegradesVerdict(t *testing.T) {
	f := newServiceFixture(t, nil)
	f.imageClassifier.On("ClassifyImage", mock.Anything, mock.Anything).Return(nil, errors.New("vision down"))
	f.textClassifier.On("ClassifyText", mock.Anything, "caption").Return(cleanTextSignals(), nil)

	result, err := f.service.Analyze(context.Background(), moderation.AnalyzeRequest{
		Text:        "caption",
		ImageBase64: base64.StdEncoding.EncodeToString(pngBytes()),
	})
	require.NoError(t, err)

	// text modality still analyzed, failure surfaced in the rationale
	assert.Equal(t, []string{"text"}, result.ContentTypesAnalyzed)
	assert.Contains(t, result.Rationale, "Image analysis was unavailable")
}

func TestServiceAnalyzeAllModalitiesFailed(t *testing.T) {
	f := newServiceFixture(t, nil)
	f.imageClassifier.On("ClassifyImage", mock.Anything, mock.Anything).Return(nil, errors.New("vision down"))
	f.textClassifier.On("ClassifyText", mock.Anything, mock.Anything).Return(nil, errors.New("text down"))

	result, err := f.service.Analyze(context.Background(), moderation.AnalyzeRequest{
		Text:        "caption",
		ImageBase64: base64.StdEncoding.EncodeToString(pngBytes()),
	})
	require.NoError(t, err)

	assert.False(t, result.IsSafe)
	assert.Equal(t, moderation.RiskHigh, result.OverallRiskLevel)
}

func TestServiceAnalyzeUsesCache(t *testing.T) {
	cache := newMemoryCache()
	f := newServiceFixture(t, cache)
	f.textClassifier.On("ClassifyText", mock.Anything, "cached text").Return(cleanTextSignals(), nil).Once()

	req := moderation.AnalyzeRequest{Text: "cached text"}

	first, err := f.service.Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	second, err := f.service.Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)
	assert.Equal(t, first.IsSafe, second.IsSafe)

	f.textClassifier.AssertNumberOfCalls(t, "ClassifyText", 1)
}

func TestServiceCacheKeyHonorsStrictMode(t *testing.T) {
	cache := newMemoryCache()
	f := newServiceFixture(t, cache)
	f.textClassifier.On("ClassifyText", mock.Anything, "same text").Return(cleanTextSignals(), nil)

	_, err := f.service.Analyze(context.Background(), moderation.AnalyzeRequest{Text: "same text"})
	require.NoError(t, err)
	_, err = f.service.Analyze(context.Background(), moderation.AnalyzeRequest{Text: "same text", StrictMode: true})
	require.NoError(t, err)

	assert.Equal(t, 0, cache.hits)
	f.textClassifier.AssertNumberOfCalls(t, "ClassifyText", 2)
}

func TestServiceCapabilities(t *testing.T) {
	f := newServiceFixture(t, nil)

	capabilities := f.service.Capabilities()
	assert.True(t, capabilities["image_analysis"])
	assert.True(t, capabilities["pii_detection"])
	assert.Equal(t, 20, f.service.MaxBatchSize())
}
