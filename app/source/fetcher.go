package source

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-resty/resty/v2"
)

type Fetcher struct {
	client *resty.Client
	url    string
}

// NewFetcher returns a fetcher for url. The client has no timeout, so a
// stalled upstream holds the request until ctx is cancelled.
func NewFetcher(url, userAgent string) *Fetcher {
	client := resty.New().
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "text/html")

	return &Fetcher{
		client: client,
		url:    url,
	}
}

func (f *Fetcher) Run(ctx context.Context) ([]byte, error) {
	res, err := f.client.R().
		SetContext(ctx).
		Get(f.url)
	if err != nil {
		return nil, &FetchError{URL: f.url, Err: err}
	}

	if !res.IsSuccess() {
		return nil, &FetchError{
			URL:        f.url,
			StatusCode: res.StatusCode(),
			Status:     http.StatusText(res.StatusCode()),
		}
	}

	slog.DebugContext(ctx, "Page fetched", "url", f.url, "status", res.StatusCode(), "bytes", len(res.Body()))

	return res.Body(), nil
}
