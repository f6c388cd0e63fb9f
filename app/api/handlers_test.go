package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/lysyi3m/humble-rss/app/feed"
	"github.com/lysyi3m/humble-rss/app/page"
	"github.com/lysyi3m/humble-rss/app/source"
	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type upstream struct {
	server *httptest.Server
	hits   atomic.Int32
}

func newUpstream(t *testing.T, status int, body string) *upstream {
	t.Helper()
	u := &upstream{}
	u.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.hits.Add(1)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(u.server.Close)
	return u
}

func landingPage(t *testing.T, data map[string]any) string {
	t.Helper()
	payload, err := json.Marshal(map[string]any{"data": data})
	require.NoError(t, err)
	return `<!DOCTYPE html><html><head><title>Humble Bundle</title></head><body>` +
		`<div id="site"></div>` +
		`<script id="landingPage-json-data" type="application/json">` + string(payload) + `</script>` +
		`</body></html>`
}

func product(name, title, url, stamp, start, end string) map[string]any {
	return map[string]any{
		"machine_name":             name,
		"tile_short_name":          title,
		"product_url":              url,
		"detailed_marketing_blurb": "<p>" + title + " blurb</p>",
		"tile_image":               "https://hb.imgix.net/" + name + ".png",
		"start_date|datetime":      start,
		"end_date|datetime":        end,
		"tile_stamp":               stamp,
	}
}

func mosaic(products ...map[string]any) map[string]any {
	return map[string]any{"mosaic": []any{map[string]any{"products": products}}}
}

func sku1Page(t *testing.T) string {
	return landingPage(t, map[string]any{
		"games": mosaic(product("sku1", "Cool & Fun Game", "/games/sku1", "games",
			"2024-01-01T00:00:00Z", "2024-01-10T00:00:00Z")),
	})
}

func newTestServer(t *testing.T, upstreamURL, baseUrl string) *gin.Engine {
	t.Helper()

	channels, err := feed.LoadChannels("")
	require.NoError(t, err)

	handler := NewHandler(
		source.NewFetcher(upstreamURL, "Humble RSS/test"),
		source.NewExtractor(""),
		feed.NewParser(),
		feed.NewGenerator(time.UTC, "test"),
		page.NewRenderer(channels),
		baseUrl,
	)

	return NewServer(handler, channels)
}

func serve(server http.Handler, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

func TestGetFeed_GamesExample(t *testing.T) {
	up := newUpstream(t, http.StatusOK, sku1Page(t))
	server := newTestServer(t, up.server.URL, "")

	w := serve(server, http.MethodGet, "/games")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/rss+xml; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "public, max-age=3600", w.Header().Get("Cache-Control"))
	assert.Equal(t, "1", w.Header().Get("X-Feed-Items"))
	assert.Equal(t, "games", w.Header().Get("X-Feed-Name"))

	body := w.Body.String()
	assert.Equal(t, 1, strings.Count(body, "<item>"))
	assert.Contains(t, body, "<link>https://www.humblebundle.com/games/sku1</link>")
	assert.Contains(t, body, `<guid isPermaLink="false">sku1</guid>`)
	assert.Contains(t, body, "<category>games</category>")
	assert.Contains(t, body, "<title>Cool &amp; Fun Game</title>")
	assert.Contains(t, body, "Ends: January 10, 2024")
	assert.Contains(t, body, `<atom:link href="http://example.com/games" rel="self" type="application/rss+xml" />`)

	parsed, err := gofeed.NewParser().ParseString(body)
	require.NoError(t, err)
	assert.Equal(t, "Humble Bundle - Games", parsed.Title)
	require.Len(t, parsed.Items, 1)
	assert.Equal(t, "Cool & Fun Game", parsed.Items[0].Title)
}

func TestGetFeed_BooksExampleIsEmpty(t *testing.T) {
	up := newUpstream(t, http.StatusOK, sku1Page(t))
	server := newTestServer(t, up.server.URL, "")

	w := serve(server, http.MethodGet, "/books")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-Feed-Items"))
	assert.NotContains(t, w.Body.String(), "<item>")
	assert.Contains(t, w.Body.String(), "<title>Humble Bundle - Books</title>")
}

func TestGetFeed_AllCategories(t *testing.T) {
	html := landingPage(t, map[string]any{
		"games":    mosaic(product("g1", "Game", "/games/g1", "games", "2024-01-01T00:00:00Z", "2024-01-10T00:00:00Z")),
		"books":    mosaic(product("b1", "Book", "/books/b1", "books", "2024-01-03T00:00:00Z", "2024-01-10T00:00:00Z")),
		"software": mosaic(product("s1", "Tool", "/software/s1", "software", "2024-01-02T00:00:00Z", "2024-01-10T00:00:00Z")),
	})
	up := newUpstream(t, http.StatusOK, html)
	server := newTestServer(t, up.server.URL, "https://feeds.example.com/")

	w := serve(server, http.MethodGet, "/rss")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `<atom:link href="https://feeds.example.com/rss"`)

	parsed, err := gofeed.NewParser().ParseString(w.Body.String())
	require.NoError(t, err)
	require.Len(t, parsed.Items, 3)
	assert.Equal(t, "b1", parsed.Items[0].GUID)
	assert.Equal(t, "s1", parsed.Items[1].GUID)
	assert.Equal(t, "g1", parsed.Items[2].GUID)

	for _, path := range []string{"/games", "/books", "/software"} {
		w := serve(server, http.MethodGet, path)
		require.Equal(t, http.StatusOK, w.Code, path)
		assert.Equal(t, 1, strings.Count(w.Body.String(), "<item>"), path)
		assert.Contains(t, w.Body.String(), "<category>"+strings.TrimPrefix(path, "/")+"</category>", path)
	}
}

func TestGetHome(t *testing.T) {
	up := newUpstream(t, http.StatusOK, sku1Page(t))
	server := newTestServer(t, up.server.URL, "")

	w := serve(server, http.MethodGet, "/")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "public, max-age=3600", w.Header().Get("Cache-Control"))
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	body := w.Body.String()
	assert.Contains(t, body, "[games]")
	assert.Contains(t, body, `href="https://www.humblebundle.com/games/sku1"`)
	assert.Contains(t, body, `title="Cool &amp; Fun Game"`)
	// Ended long ago.
	assert.Contains(t, body, `<li class="ok">`)
}

func TestGetFavicon(t *testing.T) {
	up := newUpstream(t, http.StatusOK, sku1Page(t))
	server := newTestServer(t, up.server.URL, "")

	w := serve(server, http.MethodGet, "/favicon.ico")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
	assert.Equal(t, "public, max-age=3600", w.Header().Get("Cache-Control"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "<svg"))
	assert.Zero(t, up.hits.Load(), "favicon must not fetch upstream")
}

func TestNotFound(t *testing.T) {
	up := newUpstream(t, http.StatusOK, sku1Page(t))
	server := newTestServer(t, up.server.URL, "")

	for _, req := range []struct{ method, path string }{
		{http.MethodGet, "/unknown"},
		{http.MethodGet, "/rss/"},
		{http.MethodGet, "/Games"},
		{http.MethodPost, "/rss"},
	} {
		w := serve(server, req.method, req.path)
		assert.Equal(t, http.StatusNotFound, w.Code, req.path)
		assert.Equal(t, "Not Found", w.Body.String(), req.path)
	}
	assert.Zero(t, up.hits.Load())
}

func TestPipelineFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{
			name:    "upstream error status",
			status:  http.StatusServiceUnavailable,
			body:    "down",
			message: "503",
		},
		{
			name:    "missing marker",
			status:  http.StatusOK,
			body:    "<html><body>maintenance</body></html>",
			message: "embedded JSON not found",
		},
		{
			name:    "malformed json",
			status:  http.StatusOK,
			body:    `<script id="landingPage-json-data" type="application/json">{"data":</script>`,
			message: "failed to parse landing page JSON",
		},
		{
			name:    "invalid shape",
			status:  http.StatusOK,
			body:    `<script id="landingPage-json-data" type="application/json">{"data":{"games":{}}}</script>`,
			message: "data.games.mosaic",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up := newUpstream(t, tt.status, tt.body)
			server := newTestServer(t, up.server.URL, "")

			w := serve(server, http.MethodGet, "/")
			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/plain"))
			assert.Contains(t, w.Body.String(), tt.message)
			assert.Empty(t, w.Header().Get("Cache-Control"))

			w = serve(server, http.MethodGet, "/games")
			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.Contains(t, w.Body.String(), tt.message)
			assert.NotContains(t, w.Body.String(), "<rss")
		})
	}
}

func TestEveryRequestFetches(t *testing.T) {
	up := newUpstream(t, http.StatusOK, sku1Page(t))
	server := newTestServer(t, up.server.URL, "")

	serve(server, http.MethodGet, "/")
	serve(server, http.MethodGet, "/rss")
	serve(server, http.MethodGet, "/games")

	assert.Equal(t, int32(3), up.hits.Load())
}

func TestRequestIDIsEchoed(t *testing.T) {
	up := newUpstream(t, http.StatusOK, sku1Page(t))
	server := newTestServer(t, up.server.URL, "")

	req := httptest.NewRequest(http.MethodGet, "/favicon.ico", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get("X-Request-Id"))
}
