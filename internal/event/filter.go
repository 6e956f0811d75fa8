package event

import (
	"sort"
	"time"
)

// SortByDate orders events by kick-off. Events without a parseable instant
// go last and keep their relative order.
func SortByDate(events []*Event) {
	sort.SliceStable(events, func(i, j int) bool {
		a, okA := ParseStart(events[i])
		b, okB := ParseStart(events[j])
		switch {
		case okA && okB:
			return a.Before(b)
		case okA:
			return true
		default:
			return false
		}
	})
}

// FilterFuture returns events whose kick-off is strictly after now.
// Events without a parseable instant are dropped.
func FilterFuture(events []*Event, now time.Time) []*Event {
	filtered := make([]*Event, 0, len(events))
	for _, evt := range events {
		if start, ok := ParseStart(evt); ok && start.After(now) {
			filtered = append(filtered, evt)
		}
	}
	return filtered
}

// FilterWithinWeeks returns events kicking off after now and no later than
// now plus the given number of weeks.
func FilterWithinWeeks(events []*Event, weeks int, now time.Time) []*Event {
	limit := now.AddDate(0, 0, 7*weeks)
	filtered := make([]*Event, 0, len(events))
	for _, evt := range events {
		start, ok := ParseStart(evt)
		if !ok {
			continue
		}
		if start.After(now) && !start.After(limit) {
			filtered = append(filtered, evt)
		}
	}
	return filtered
}

// FilterPending returns events not yet present in the external calendar.
func FilterPending(events []*Event) []*Event {
	filtered := make([]*Event, 0, len(events))
	for _, evt := range events {
		if !evt.Synced {
			filtered = append(filtered, evt)
		}
	}
	return filtered
}
