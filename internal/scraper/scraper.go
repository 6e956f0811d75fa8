package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pfrederiksen/spfc-calendar/internal/event"
	"github.com/pfrederiksen/spfc-calendar/internal/firecrawl"
	"github.com/pfrederiksen/spfc-calendar/internal/logger"
	"github.com/pfrederiksen/spfc-calendar/internal/storage"
)

const (
	CalendarURL       = "https://www.saopaulofc.net/calendario-de-jogos/"
	DefaultMaxRetries = 3
	DefaultRetryDelay = 5 * time.Second
)

var (
	// ErrNoCredentials means no Firecrawl API key is configured.
	ErrNoCredentials = errors.New("no firecrawl api key configured")

	// ErrAllCredentialsFailed is returned when every attempt failed without
	// leaving an error behind and there is no cache to fall back to.
	ErrAllCredentialsFailed = errors.New("all firecrawl credentials failed")
)

// Extractor runs one structured extraction. *firecrawl.Client satisfies it.
type Extractor interface {
	Extract(ctx context.Context, req firecrawl.ExtractRequest) ([]byte, error)
}

// Config holds the scraper settings.
type Config struct {
	URL         string
	Credentials []string
	MaxRetries  int
	RetryDelay  time.Duration
	BaseURL     string // Firecrawl API host, empty for the hosted default
}

// Scraper handles fetching SPFC fixtures through Firecrawl with a file cache
type Scraper struct {
	store        *storage.Storage
	url          string
	credentials  []string
	maxRetries   int
	retryDelay   time.Duration
	newExtractor func(apiKey string) Extractor
	now          func() time.Time
}

// New creates a new Scraper backed by store
func New(store *storage.Storage, cfg Config) *Scraper {
	url := cfg.URL
	if url == "" {
		url = CalendarURL
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}

	credentials := make([]string, 0, len(cfg.Credentials))
	for _, key := range cfg.Credentials {
		if key != "" {
			credentials = append(credentials, key)
		}
	}

	baseURL := cfg.BaseURL
	newExtractor := func(apiKey string) Extractor {
		if baseURL == "" {
			return firecrawl.NewClient(apiKey)
		}
		return firecrawl.NewClient(apiKey, firecrawl.WithBaseURL(baseURL))
	}

	return &Scraper{
		store:        store,
		url:          url,
		credentials:  credentials,
		maxRetries:   maxRetries,
		retryDelay:   cfg.RetryDelay,
		newExtractor: newExtractor,
		now:          time.Now,
	}
}

// Fetch returns the current fixtures. A valid cache is served without any
// upstream call unless forceRefresh is set. fromCache reports whether the
// events came from the cache, including the stale fallback after every
// credential failed.
func (s *Scraper) Fetch(ctx context.Context, forceRefresh bool) ([]*event.Event, bool, error) {
	previous, hasPrevious := s.store.Load()

	if !forceRefresh && hasPrevious && event.CacheValid(previous.Events, s.now()) {
		logger.IncrCounter("cache.hits")
		logger.Info("Serving fixtures from cache", logger.Fields{
			"events":     len(previous.Events),
			"updated_at": previous.UpdatedAt,
		})
		return previous.Events, true, nil
	}
	logger.IncrCounter("cache.misses")

	if len(s.credentials) == 0 {
		return nil, false, ErrNoCredentials
	}

	logger.Info("Fetching fixtures from Firecrawl", logger.Fields{
		"url":           s.url,
		"force_refresh": forceRefresh,
		"credentials":   len(s.credentials),
	})

	rot := newRotation(s.credentials, s.maxRetries, s.retryDelay, s.extract)
	body, err := rot.run(ctx)
	if err != nil {
		logger.Error("All Firecrawl credentials failed", logger.Fields{
			"credentials": len(s.credentials),
		}, err)

		if hasPrevious && len(previous.Events) > 0 {
			logger.Warn("Serving stale cache in degraded mode", logger.Fields{
				"events":     len(previous.Events),
				"updated_at": previous.UpdatedAt,
			})
			return previous.Events, true, nil
		}

		return nil, false, fmt.Errorf("fetching fixtures: %w", err)
	}

	events := parseEvents(body)

	if hasPrevious {
		events = event.PreserveSyncState(events, previous)
	}

	if len(events) > 0 {
		if err := s.store.Save(events); err != nil {
			logger.Error("Failed to save cache", nil, err)
		}
	}

	logger.Info("Fixtures fetched", logger.Fields{"events": len(events)})
	return events, false, nil
}

func (s *Scraper) extract(ctx context.Context, apiKey string) ([]byte, error) {
	return s.newExtractor(apiKey).Extract(ctx, firecrawl.ExtractRequest{
		URLs:   []string{s.url},
		Prompt: firecrawl.SchedulePrompt,
		Schema: firecrawl.ScheduleSchema(),
	})
}
