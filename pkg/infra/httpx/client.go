package httpx

import "net/http"

// Client is the outbound HTTP seam shared by the classifier vendors and
// the image fetcher. *http.Client satisfies it; tests use a mock.
type Client interface {
	Do(req *http.Request) (*http.Response, error)
}
