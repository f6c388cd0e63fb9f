package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/humble-rss/app/api"
	"github.com/lysyi3m/humble-rss/app/cfg"
	"github.com/lysyi3m/humble-rss/app/feed"
	"github.com/lysyi3m/humble-rss/app/page"
	"github.com/lysyi3m/humble-rss/app/source"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		log.Fatal(err)
	}
	if appCfg == nil {
		// Help was shown
		return
	}

	level := slog.LevelInfo
	if appCfg.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	slog.Info("Starting Humble RSS server", "version", appCfg.Version)

	loc, err := appCfg.ApplyTimezone()
	if err != nil {
		slog.Warn("Falling back to UTC", "error", err)
	}

	channels, err := feed.LoadChannels(appCfg.ChannelsFile)
	if err != nil {
		slog.Error("Failed to load channels", "file", appCfg.ChannelsFile, "error", err)
		os.Exit(1)
	}
	slog.Info("Channels loaded", "count", len(channels))

	handler := api.NewHandler(
		source.NewFetcher(appCfg.SourceURL, appCfg.UserAgent),
		source.NewExtractor(source.DefaultSelector),
		feed.NewParser(),
		feed.NewGenerator(loc, appCfg.Version),
		page.NewRenderer(channels),
		appCfg.BaseUrl,
	)
	server := api.NewServer(handler, channels)

	// No WriteTimeout: a slow upstream fetch holds its request open.
	httpServer := &http.Server{
		Addr:              ":" + appCfg.Port,
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port, "source", appCfg.SourceURL)
		for _, ch := range channels {
			slog.Info("Feed available", "name", ch.Name, "url", fmt.Sprintf("http://localhost:%s%s", appCfg.Port, ch.Route))
		}

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig)
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Humble RSS server shutdown complete")
}
