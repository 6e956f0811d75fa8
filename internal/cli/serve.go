package cli

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/pfrederiksen/spfc-calendar/internal/api"
	"github.com/pfrederiksen/spfc-calendar/internal/event"
	"github.com/pfrederiksen/spfc-calendar/internal/logger"
	"github.com/pfrederiksen/spfc-calendar/internal/scraper"
	"github.com/pfrederiksen/spfc-calendar/internal/storage"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	if cfg.APIKey == "" {
		logger.Warn("API_KEY is not set, every /api request will fail", nil)
	}
	if len(cfg.Credentials()) == 0 {
		logger.Warn("No Firecrawl API key configured, only cached fixtures can be served", nil)
	}

	store, err := storage.New(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	sc := scraper.New(store, scraper.Config{
		URL:         cfg.CalendarURL,
		Credentials: cfg.Credentials(),
		MaxRetries:  cfg.FirecrawlMaxRetries,
		RetryDelay:  cfg.RetryDelay(),
		BaseURL:     cfg.FirecrawlBaseURL,
	})

	handler := api.NewHandler(sc, store, Version)
	router := api.NewServer(handler, api.Options{
		APIKey:            cfg.APIKey,
		CORSOrigins:       cfg.CORSOriginList(),
		AllowedHosts:      cfg.AllowedHostList(),
		RateLimitRequests: cfg.RateLimitRequests,
		RateWindow:        cfg.RateWindow(),
	})

	ctx := cmd.Context()

	scheduler, err := startScheduler(ctx, handler, cfg.RefreshCron)
	if err != nil {
		return err
	}
	if scheduler != nil {
		defer func() { <-scheduler.Stop().Done() }()
	}

	httpServer := &http.Server{
		Addr:         cfg.Listen,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: api.DefaultFetchTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", logger.Fields{
			"listen":  cfg.Listen,
			"version": Version,
			"data":    store.Path(),
		})
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received", nil)
	case serveErr = <-serverErrChan:
		logger.Error("Server stopped unexpectedly", nil, serveErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", nil, err)
	} else {
		logger.Info("HTTP server stopped", nil)
	}

	return serveErr
}

// startScheduler registers the cache warm-up on schedule and runs one warm-up
// immediately. An empty schedule disables scheduling and returns a nil cron.
func startScheduler(ctx context.Context, handler *api.Handler, schedule string) (*cron.Cron, error) {
	if schedule == "" {
		logger.Info("Scheduled refresh disabled", nil)
		return nil, nil
	}

	warmUp := func() {
		runCtx, cancel := context.WithTimeout(ctx, api.DefaultFetchTimeout)
		defer cancel()

		start := time.Now()
		if err := handler.Refresh(runCtx); err != nil {
			logger.Error("Scheduled refresh failed", nil, err)
			logger.IncrCounter("scheduler.failures")
			return
		}
		logger.RecordTiming("scheduler.refresh", time.Since(start))
	}

	c := cron.New(cron.WithLocation(event.SourceLocation))
	if _, err := c.AddFunc(schedule, warmUp); err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", schedule, err)
	}

	go warmUp()

	c.Start()
	logger.Info("Refresh scheduler started", logger.Fields{"schedule": schedule})

	return c, nil
}
