package moderation

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/moderationhq/modgate/pkg/domain"
	"github.com/moderationhq/modgate/pkg/infra/httpx"
)

const fetchRetryBackoff = 500 * time.Millisecond

// HTTPImageFetcher downloads remote images through the shared outbound
// client. A failed attempt is retried once after a short backoff; the
// final failure is a domain.FetchError so the caller can tell transport
// failures apart from validation failures.
type HTTPImageFetcher struct {
	client   httpx.Client
	breaker  httpx.CircuitBreaker
	logger   *logrus.Logger
	maxBytes int64
}

func NewHTTPImageFetcher(client httpx.Client, logger *logrus.Logger, maxBytes int64) *HTTPImageFetcher {
	return &HTTPImageFetcher{
		client:   client,
		breaker:  httpx.NewCircuitBreaker("image_fetch", 30*time.Second, 5),
		logger:   logger,
		maxBytes: maxBytes,
	}
}

func (f *HTTPImageFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	data, err := f.fetchOnce(ctx, url)
	if err == nil {
		return data, nil
	}

	f.logger.WithError(err).WithField("url", url).Warn("image fetch failed, retrying")

	select {
	case <-ctx.Done():
		return nil, domain.NewFetchError(url, ctx.Err())
	case <-time.After(fetchRetryBackoff):
	}

	data, err = f.fetchOnce(ctx, url)
	if err != nil {
		return nil, domain.NewFetchError(url, err)
	}
	return data, nil
}

func (f *HTTPImageFetcher) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	err := f.breaker.Execute(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}

		resp, err := f.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status %d", resp.StatusCode)
		}

		body, err = io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
		return err
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}
