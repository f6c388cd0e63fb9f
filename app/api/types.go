package api

import (
	"context"
	"time"

	"github.com/lysyi3m/humble-rss/app/feed"
	"github.com/lysyi3m/humble-rss/app/page"
	"github.com/lysyi3m/humble-rss/app/source"
)

type FetcherInterface interface {
	Run(ctx context.Context) ([]byte, error)
}

type ExtractorInterface interface {
	Run(html []byte) (string, error)
}

type ParserInterface interface {
	Run(raw string) ([]feed.Item, error)
}

var (
	_ FetcherInterface   = (*source.Fetcher)(nil)
	_ ExtractorInterface = (*source.Extractor)(nil)
	_ ParserInterface    = (*feed.Parser)(nil)
)

type Handler struct {
	fetcher   FetcherInterface
	extractor ExtractorInterface
	parser    ParserInterface
	filterer  *feed.Filterer
	generator *feed.Generator
	renderer  *page.Renderer
	baseUrl   string
	now       func() time.Time
}
