package moderation_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/moderationhq/modgate/pkg/domain"
	httpxmocks "github.com/moderationhq/modgate/pkg/infra/httpx/mocks"
	"github.com/moderationhq/modgate/pkg/moderation"
)

func httpResponse(status int, body []byte) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader(body)),
		Header:     make(http.Header),
	}
}

func TestHTTPImageFetcher_Success(t *testing.T) {
	payload := pngBytes()

	client := new(httpxmocks.MockHTTPClient)
	client.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		return req.Method == http.MethodGet && req.URL.String() == "https://cdn.example.com/cat.png"
	})).Return(httpResponse(200, payload), nil)

	fetcher := moderation.NewHTTPImageFetcher(client, newTestLogger(), testMaxImageBytes)

	data, err := fetcher.Fetch(context.Background(), "https://cdn.example.com/cat.png")
	require.NoError(t, err)
	assert.Equal(t, payload, data)
	client.AssertNumberOfCalls(t, "Do", 1)
}

func TestHTTPImageFetcher_RetriesOnceThenSucceeds(t *testing.T) {
	payload := pngBytes()

	client := new(httpxmocks.MockHTTPClient)
	client.On("Do", mock.Anything).Return(nil, errors.New("connection reset")).Once()
	client.On("Do", mock.Anything).Return(httpResponse(200, payload), nil).Once()

	fetcher := moderation.NewHTTPImageFetcher(client, newTestLogger(), testMaxImageBytes)

	data, err := fetcher.Fetch(context.Background(), "https://cdn.example.com/cat.png")
	require.NoError(t, err)
	assert.Equal(t, payload, data)
	client.AssertNumberOfCalls(t, "Do", 2)
}

func TestHTTPImageFetcher_ExhaustedRetriesReturnFetchError(t *testing.T) {
	client := new(httpxmocks.MockHTTPClient)
	client.On("Do", mock.Anything).Return(nil, errors.New("connection reset"))

	fetcher := moderation.NewHTTPImageFetcher(client, newTestLogger(), testMaxImageBytes)

	_, err := fetcher.Fetch(context.Background(), "https://cdn.example.com/cat.png")
	require.Error(t, err)
	assert.True(t, domain.IsFetchError(err))
	assert.Contains(t, err.Error(), "https://cdn.example.com/cat.png")
	client.AssertNumberOfCalls(t, "Do", 2)
}

func TestHTTPImageFetcher_Non200IsFetchError(t *testing.T) {
	client := new(httpxmocks.MockHTTPClient)
	client.On("Do", mock.Anything).Return(httpResponse(404, nil), nil)

	fetcher := moderation.NewHTTPImageFetcher(client, newTestLogger(), testMaxImageBytes)

	_, err := fetcher.Fetch(context.Background(), "https://cdn.example.com/missing.png")
	require.Error(t, err)
	assert.True(t, domain.IsFetchError(err))
	assert.Contains(t, err.Error(), "status 404")
}

func TestHTTPImageFetcher_CancelledContextSkipsRetry(t *testing.T) {
	client := new(httpxmocks.MockHTTPClient)
	client.On("Do", mock.Anything).Return(nil, errors.New("connection reset"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := moderation.NewHTTPImageFetcher(client, newTestLogger(), testMaxImageBytes)

	_, err := fetcher.Fetch(ctx, "https://cdn.example.com/cat.png")
	require.Error(t, err)
	assert.True(t, domain.IsFetchError(err))
	client.AssertNumberOfCalls(t, "Do", 1)
}
