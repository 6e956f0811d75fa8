package event

import (
	"time"

	"github.com/pfrederiksen/spfc-calendar/internal/logger"
)

const (
	// ValidityGrace is added to the latest kick-off before the cache is
	// considered stale, so the last fixture has finished before refetching.
	ValidityGrace = 3 * time.Hour

	// CleanupGrace is added to a synced fixture's kick-off before it is
	// offered for removal from the external calendar.
	CleanupGrace = 5 * time.Hour
)

// LatestStart returns the latest parseable kick-off across events.
// Events without a parseable instant are ignored.
func LatestStart(events []*Event) (time.Time, bool) {
	var latest time.Time
	found := false

	for _, evt := range events {
		start, ok := ParseStart(evt)
		if !ok {
			continue
		}
		if !found || start.After(latest) {
			latest = start
			found = true
		}
	}

	return latest, found
}

// CacheValid reports whether cached events can still be served without
// refetching: the latest kick-off plus ValidityGrace must be after now.
// An empty list, or one without any parseable instant, is never valid.
func CacheValid(events []*Event, now time.Time) bool {
	if len(events) == 0 {
		return false
	}

	latest, ok := LatestStart(events)
	if !ok {
		logger.Warn("Could not determine date of last event, cache invalid", nil)
		return false
	}

	valid := latest.Add(ValidityGrace).After(now)

	logger.Debug("Cache validity check", logger.Fields{
		"last_event": latest.Format(time.RFC3339),
		"now":        now.Format(time.RFC3339),
		"valid":      valid,
	})

	return valid
}

// PastForCleanup reports whether a synced event finished long enough ago to
// be removed from the external calendar.
func (e *Event) PastForCleanup(now time.Time) bool {
	start, ok := ParseStart(e)
	if !ok {
		return false
	}
	return start.Add(CleanupGrace).Before(now)
}
