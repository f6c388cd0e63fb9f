package api

import (
	"context"
	_ "embed"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/humble-rss/app/feed"
	"github.com/lysyi3m/humble-rss/app/page"
	"github.com/lysyi3m/humble-rss/app/source"
)

const cacheControl = "public, max-age=3600"

//go:embed favicon.svg
var favicon []byte

func NewHandler(fetcher FetcherInterface, extractor ExtractorInterface, parser ParserInterface,
	generator *feed.Generator, renderer *page.Renderer, baseUrl string) *Handler {
	return &Handler{
		fetcher:   fetcher,
		extractor: extractor,
		parser:    parser,
		filterer:  feed.NewFilterer(),
		generator: generator,
		renderer:  renderer,
		baseUrl:   strings.TrimSuffix(baseUrl, "/"),
		now:       time.Now,
	}
}

func (h *Handler) GetHome(c *gin.Context) {
	items, err := h.loadItems(c)
	if err != nil {
		c.String(http.StatusInternalServerError, err.Error())
		return
	}

	html := h.renderer.Run(items, h.now())

	c.Header("Cache-Control", cacheControl)
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// GetFeed returns the handler serving channel's RSS document.
func (h *Handler) GetFeed(channel feed.Channel) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := h.loadItems(c)
		if err != nil {
			c.Status(http.StatusInternalServerError)
			c.Writer.WriteString(err.Error())
			return
		}

		items = h.filterer.Run(items, channel.Category)
		rss := h.generator.Run(channel, items, h.selfURL(c))

		c.Header("Cache-Control", cacheControl)
		c.Header("X-Feed-Items", strconv.Itoa(len(items)))
		c.Header("X-Feed-Name", channel.Name)
		c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", []byte(rss))
	}
}

func (h *Handler) GetFavicon(c *gin.Context) {
	c.Header("Cache-Control", cacheControl)
	c.Data(http.StatusOK, "image/svg+xml", favicon)
}

func (h *Handler) NotFound(c *gin.Context) {
	c.String(http.StatusNotFound, "Not Found")
}

// loadItems fetches the upstream page and returns its validated items. Every
// call performs a fresh fetch.
func (h *Handler) loadItems(c *gin.Context) ([]feed.Item, error) {
	ctx := c.Request.Context()

	items, err := h.runPipeline(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Pipeline failed",
			"route", c.Request.URL.Path,
			"stage", stage(err),
			"request_id", c.GetString(requestIDKey),
			"error", err)
		return nil, err
	}

	return items, nil
}

func (h *Handler) runPipeline(ctx context.Context) ([]feed.Item, error) {
	html, err := h.fetcher.Run(ctx)
	if err != nil {
		return nil, err
	}

	raw, err := h.extractor.Run(html)
	if err != nil {
		return nil, err
	}

	return h.parser.Run(raw)
}

func (h *Handler) selfURL(c *gin.Context) string {
	if h.baseUrl != "" {
		return h.baseUrl + c.Request.URL.Path
	}

	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host + c.Request.URL.Path
}

func stage(err error) string {
	var (
		fetchErr      *source.FetchError
		extractionErr *source.ExtractionError
		parseErr      *feed.ParseError
		validationErr *feed.ValidationError
	)

	switch {
	case errors.As(err, &fetchErr):
		return "fetch"
	case errors.As(err, &extractionErr):
		return "extract"
	case errors.As(err, &parseErr):
		return "parse"
	case errors.As(err, &validationErr):
		return "validate"
	default:
		return "unknown"
	}
}
