package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pfrederiksen/spfc-calendar/internal/event"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortByDate        SortOrder = "date"
	SortByCompetition SortOrder = "competition"
	SortByOpponent    SortOrder = "opponent"
)

func parseSortOrder(raw string) (SortOrder, error) {
	order := SortOrder(strings.ToLower(strings.TrimSpace(raw)))
	switch order {
	case SortByDate, SortByCompetition, SortByOpponent:
		return order, nil
	}
	return "", fmt.Errorf("invalid sort: %s (must be 'date', 'competition' or 'opponent')", raw)
}

// sortEvents sorts a slice of events based on the specified sort order.
// Ties fall back to kick-off order.
func sortEvents(events []*event.Event, sortOrder SortOrder) {
	switch sortOrder {
	case SortByDate:
		event.SortByDate(events)
	case SortByCompetition:
		sort.SliceStable(events, func(i, j int) bool {
			a, b := strings.ToLower(events[i].Competition), strings.ToLower(events[j].Competition)
			if a != b {
				return a < b
			}
			return compareByDate(events[i], events[j])
		})
	case SortByOpponent:
		sort.SliceStable(events, func(i, j int) bool {
			a, b := strings.ToLower(events[i].Opponent), strings.ToLower(events[j].Opponent)
			if a != b {
				return a < b
			}
			return compareByDate(events[i], events[j])
		})
	}
}

// compareByDate reports whether i kicks off before j. Events without a
// parseable start go last.
func compareByDate(i, j *event.Event) bool {
	startI, okI := event.ParseStart(i)
	startJ, okJ := event.ParseStart(j)

	switch {
	case okI && okJ:
		return startI.Before(startJ)
	case okI:
		return true
	default:
		return false
	}
}
