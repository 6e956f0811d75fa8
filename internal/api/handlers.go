package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pfrederiksen/spfc-calendar/internal/calendar"
	"github.com/pfrederiksen/spfc-calendar/internal/event"
	"github.com/pfrederiksen/spfc-calendar/internal/logger"
)

const (
	minWeeks = 1
	maxWeeks = 8

	// DefaultFetchTimeout bounds one upstream refresh, including retries.
	DefaultFetchTimeout = 5 * time.Minute
)

// Handler serves the fixture API. It serializes every cache read-modify-write
// and every fetch behind one mutex, since the cache file has a single writer.
type Handler struct {
	mu           sync.Mutex
	fetcher      Fetcher
	store        Store
	version      string
	fetchTimeout time.Duration
	now          func() time.Time
}

// NewHandler creates a Handler over the given fetcher and store.
func NewHandler(fetcher Fetcher, store Store, version string) *Handler {
	return &Handler{
		fetcher:      fetcher,
		store:        store,
		version:      version,
		fetchTimeout: DefaultFetchTimeout,
		now:          time.Now,
	}
}

// Refresh runs a non-forced fetch under the handler lock. The scheduled
// warm-up uses it so it never races with API requests.
func (h *Handler) Refresh(ctx context.Context) error {
	_, _, err := h.fetch(ctx, false)
	return err
}

func (h *Handler) fetch(ctx context.Context, force bool) ([]*event.Event, bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, h.fetchTimeout)
	defer cancel()

	return h.fetcher.Fetch(ctx, force)
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"versao":    h.version,
		"timestamp": h.now().Format(time.RFC3339),
	})
}

func (h *Handler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, logger.GetMetricsSnapshot())
}

func (h *Handler) ListEvents(c *gin.Context) {
	force, ok := boolQuery(c, "force_refresh", false)
	if !ok {
		return
	}
	futureOnly, ok := boolQuery(c, "apenas_futuros", true)
	if !ok {
		return
	}

	events, fromCache, err := h.fetch(c.Request.Context(), force)
	if err != nil {
		h.fetchFailed(c, "Erro ao buscar jogos", err)
		return
	}

	event.SortByDate(events)
	if futureOnly {
		events = event.FilterFuture(events, h.now())
	}

	h.respondEvents(c, events, fromCache)
}

func (h *Handler) NextEvent(c *gin.Context) {
	force, ok := boolQuery(c, "force_refresh", false)
	if !ok {
		return
	}

	events, fromCache, err := h.fetch(c.Request.Context(), force)
	if err != nil {
		h.fetchFailed(c, "Erro ao buscar próximo jogo", err)
		return
	}

	event.SortByDate(events)
	future := event.FilterFuture(events, h.now())
	if len(future) == 0 {
		abortWithError(c, http.StatusNotFound, "Nenhum jogo futuro encontrado no calendário", "")
		return
	}

	c.JSON(http.StatusOK, NextEventResponse{
		Success:   true,
		Event:     future[0],
		UpdatedAt: h.now().Format(time.RFC3339),
		Cache:     fromCache,
	})
}

func (h *Handler) WeekEvents(c *gin.Context) {
	h.weekEvents(c, 1, false, "Erro ao buscar jogos da semana")
}

func (h *Handler) WeekPendingEvents(c *gin.Context) {
	h.weekEvents(c, 1, true, "Erro ao buscar jogos da semana pendentes")
}

func (h *Handler) PendingEvents(c *gin.Context) {
	h.weekEvents(c, 4, true, "Erro ao buscar jogos pendentes")
}

func (h *Handler) weekEvents(c *gin.Context, defaultWeeks int, pendingOnly bool, failure string) {
	weeks, ok := weeksQuery(c, defaultWeeks)
	if !ok {
		return
	}
	force, ok := boolQuery(c, "force_refresh", false)
	if !ok {
		return
	}

	events, fromCache, err := h.fetch(c.Request.Context(), force)
	if err != nil {
		h.fetchFailed(c, failure, err)
		return
	}

	event.SortByDate(events)
	events = event.FilterWithinWeeks(events, weeks, h.now())
	if pendingOnly {
		events = event.FilterPending(events)
	}

	h.respondEvents(c, events, fromCache)
}

// GetFeed serves the upcoming fixtures as an iCalendar feed.
func (h *Handler) GetFeed(c *gin.Context) {
	events, fromCache, err := h.fetch(c.Request.Context(), false)
	if err != nil {
		h.fetchFailed(c, "Erro ao gerar calendário", err)
		return
	}

	event.SortByDate(events)
	events = event.FilterFuture(events, h.now())

	c.Header("X-Feed-Items", strconv.Itoa(len(events)))
	c.Header("X-Cache", strconv.FormatBool(fromCache))
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(calendar.GenerateFeed(events, h.now())))
}

func (h *Handler) ClearCache(c *gin.Context) {
	h.mu.Lock()
	err := h.store.Clear()
	h.mu.Unlock()

	if err != nil {
		logger.Error("Failed to clear cache", nil, err)
		abortWithError(c, http.StatusInternalServerError, "Erro ao limpar cache", err.Error())
		return
	}

	c.JSON(http.StatusOK, MessageResponse{
		Success:   true,
		Message:   "Cache limpo com sucesso",
		Timestamp: h.now().Format(time.RFC3339),
	})
}

func (h *Handler) CacheStatus(c *gin.Context) {
	h.mu.Lock()
	status := h.store.Status()
	h.mu.Unlock()

	c.JSON(http.StatusOK, status)
}

func (h *Handler) MarkSynced(c *gin.Context) {
	id := c.Param("id")

	var req MarkRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			abortWithError(c, http.StatusBadRequest, "Corpo da requisição inválido", err.Error())
			return
		}
	}

	h.mu.Lock()
	marked := h.store.MarkSynced(id, req.GoogleEventID)
	h.mu.Unlock()

	if !marked {
		abortWithError(c, http.StatusNotFound, fmt.Sprintf("Jogo com ID '%s' não encontrado", id), "")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{
		Success:       true,
		Message:       fmt.Sprintf("Jogo %s marcado como criado no calendário", id),
		GoogleEventID: req.GoogleEventID,
		Timestamp:     h.now().Format(time.RFC3339),
	})
}

func (h *Handler) UnmarkSynced(c *gin.Context) {
	id := c.Param("id")

	h.mu.Lock()
	ref, ok := h.store.UnmarkSynced(id)
	h.mu.Unlock()

	if !ok {
		abortWithError(c, http.StatusNotFound, fmt.Sprintf("Jogo com ID '%s' não encontrado ou não está no calendário", id), "")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{
		Success:       true,
		Message:       fmt.Sprintf("Jogo %s desmarcado do calendário", id),
		GoogleEventID: ref,
		Timestamp:     h.now().Format(time.RFC3339),
	})
}

func (h *Handler) ListSynced(c *gin.Context) {
	h.mu.Lock()
	events := h.store.ListSynced()
	h.mu.Unlock()

	event.SortByDate(events)
	h.respondEvents(c, events, true)
}

func (h *Handler) ListSyncedPast(c *gin.Context) {
	h.mu.Lock()
	events := h.store.ListSyncedPast()
	h.mu.Unlock()

	event.SortByDate(events)
	h.respondEvents(c, events, true)
}

func (h *Handler) respondEvents(c *gin.Context, events []*event.Event, fromCache bool) {
	if events == nil {
		events = make([]*event.Event, 0)
	}
	c.JSON(http.StatusOK, EventsResponse{
		Success:   true,
		Total:     len(events),
		Events:    events,
		UpdatedAt: h.now().Format(time.RFC3339),
		Cache:     fromCache,
	})
}

func (h *Handler) fetchFailed(c *gin.Context, message string, err error) {
	logger.Error(message, logger.Fields{"path": c.Request.URL.Path}, err)
	_ = c.Error(err)
	abortWithError(c, http.StatusInternalServerError, message, err.Error())
}

func boolQuery(c *gin.Context, name string, def bool) (bool, bool) {
	raw, present := c.GetQuery(name)
	if !present || raw == "" {
		return def, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		abortWithError(c, http.StatusUnprocessableEntity, fmt.Sprintf("Parâmetro %s inválido", name), err.Error())
		return false, false
	}
	return v, true
}

func weeksQuery(c *gin.Context, def int) (int, bool) {
	raw, present := c.GetQuery("semanas")
	if !present || raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < minWeeks || n > maxWeeks {
		abortWithError(c, http.StatusUnprocessableEntity, "Parâmetro semanas inválido",
			fmt.Sprintf("semanas deve estar entre %d e %d", minWeeks, maxWeeks))
		return 0, false
	}
	return n, true
}
