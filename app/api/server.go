package api

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lysyi3m/humble-rss/app/feed"
)

const (
	requestIDKey    = "request_id"
	requestIDHeader = "X-Request-Id"
)

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler, channels []feed.Channel) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// Paths are matched exactly; "/rss/" is not "/rss".
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false

	r.Use(requestID())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %v %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.Keys[requestIDKey],
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())

	setupRoutes(r, handler, channels)

	return r
}

// setupRoutes configures all the application routes
func setupRoutes(r *gin.Engine, handler *Handler, channels []feed.Channel) {
	get(r, "/", handler.GetHome)

	for _, channel := range channels {
		get(r, channel.Route, handler.GetFeed(channel))
		slog.Debug("Feed route registered", "route", channel.Route, "category", channel.Category)
	}

	get(r, "/favicon.ico", handler.GetFavicon)

	r.NoRoute(handler.NotFound)
}

func get(r *gin.Engine, path string, handler gin.HandlerFunc) {
	r.GET(path, handler)
	r.HEAD(path, handler)
}

// requestID tags every request with an id, reusing the caller's when present.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)

		c.Next()
	}
}
