package api

import (
	"context"

	"github.com/pfrederiksen/spfc-calendar/internal/event"
	"github.com/pfrederiksen/spfc-calendar/internal/scraper"
	"github.com/pfrederiksen/spfc-calendar/internal/storage"
)

// Fetcher returns the current fixtures. *scraper.Scraper satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, forceRefresh bool) ([]*event.Event, bool, error)
}

var _ Fetcher = (*scraper.Scraper)(nil)

// Store is the cache surface the handlers use. *storage.Storage satisfies it.
type Store interface {
	Clear() error
	Status() storage.Status
	MarkSynced(id, googleEventID string) bool
	UnmarkSynced(id string) (string, bool)
	ListSynced() []*event.Event
	ListSyncedPast() []*event.Event
}

var _ Store = (*storage.Storage)(nil)

// EventsResponse is the envelope for every fixture listing.
type EventsResponse struct {
	Success   bool           `json:"sucesso"`
	Total     int            `json:"total_jogos"`
	Events    []*event.Event `json:"jogos"`
	UpdatedAt string         `json:"atualizado_em"`
	Cache     bool           `json:"cache"`
}

// NextEventResponse carries a single upcoming fixture.
type NextEventResponse struct {
	Success   bool         `json:"sucesso"`
	Event     *event.Event `json:"jogo"`
	UpdatedAt string       `json:"atualizado_em"`
	Cache     bool         `json:"cache"`
}

// ErrorResponse is the envelope for every error.
type ErrorResponse struct {
	Success bool   `json:"sucesso"`
	Error   string `json:"erro"`
	Details string `json:"detalhes,omitempty"`
}

// MarkRequest is the optional body of the mark endpoint.
type MarkRequest struct {
	GoogleEventID string `json:"google_event_id"`
}

// MessageResponse acknowledges cache and sync mutations.
type MessageResponse struct {
	Success       bool   `json:"sucesso"`
	Message       string `json:"mensagem"`
	GoogleEventID string `json:"google_event_id,omitempty"`
	Timestamp     string `json:"timestamp"`
}
