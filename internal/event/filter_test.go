package event

import (
	"testing"
	"time"
)

func TestSortByDate(t *testing.T) {
	tests := []struct {
		name      string
		events    []*Event
		wantOrder []string
	}{
		{
			name: "sorts by kick-off",
			events: []*Event{
				{ID: "c", DateText: "20/05/2025", TimeText: "16:00"},
				{ID: "a", DateText: "10/05/2025", TimeText: "16:00"},
				{ID: "b", DateText: "10/05/2025", TimeText: "21:30"},
			},
			wantOrder: []string{"a", "b", "c"},
		},
		{
			name: "canonical and raw dates mix",
			events: []*Event{
				{ID: "b", DateText: "12/05/2025", TimeText: "16:00"},
				{ID: "a", StartISO: "2025-05-11T19:00:00-03:00"},
			},
			wantOrder: []string{"a", "b"},
		},
		{
			name: "unparseable dates sort last in input order",
			events: []*Event{
				{ID: "x", DateText: "a definir"},
				{ID: "b", DateText: "20/05/2025"},
				{ID: "y", DateText: ""},
				{ID: "a", DateText: "10/05/2025"},
			},
			wantOrder: []string{"a", "b", "x", "y"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := make([]*Event, len(tt.events))
			copy(events, tt.events)

			SortByDate(events)

			for i, id := range tt.wantOrder {
				if events[i].ID != id {
					t.Errorf("position %d: got %s, want %s", i, events[i].ID, id)
				}
			}
		})
	}
}

func TestFilterFuture(t *testing.T) {
	now := time.Date(2025, 5, 10, 20, 0, 0, 0, SourceLocation)
	past := eventAt(now.Add(-time.Hour))
	present := eventAt(now)
	future := eventAt(now.Add(time.Hour))
	unknown := &Event{DateText: "a definir"}

	got := FilterFuture([]*Event{past, present, future, unknown}, now)

	if len(got) != 1 || got[0] != future {
		t.Errorf("FilterFuture() = %v, want only the future event", got)
	}

	again := FilterFuture(got, now)
	if len(again) != len(got) {
		t.Errorf("FilterFuture is not idempotent: %d then %d", len(got), len(again))
	}
}

func TestFilterWithinWeeks(t *testing.T) {
	now := time.Date(2025, 5, 10, 20, 0, 0, 0, SourceLocation)
	events := []*Event{
		eventAt(now.Add(-time.Hour)),
		eventAt(now.Add(24 * time.Hour)),
		eventAt(now.Add(7 * 24 * time.Hour)),
		eventAt(now.Add(8 * 24 * time.Hour)),
		eventAt(now.Add(30 * 24 * time.Hour)),
	}

	tests := []struct {
		weeks int
		want  int
	}{
		{0, 0},
		{1, 2},
		{2, 3},
		{5, 4},
	}

	for _, tt := range tests {
		got := FilterWithinWeeks(events, tt.weeks, now)
		if len(got) != tt.want {
			t.Errorf("FilterWithinWeeks(%d) returned %d events, want %d", tt.weeks, len(got), tt.want)
		}

		future := FilterFuture(events, now)
		for _, evt := range got {
			found := false
			for _, f := range future {
				if f == evt {
					found = true
				}
			}
			if !found {
				t.Errorf("FilterWithinWeeks(%d) returned an event not in FilterFuture", tt.weeks)
			}
		}
	}
}

func TestFilterPending(t *testing.T) {
	a := NewEvent("Brasileirão", "Palmeiras", "10/05/2025", "16:00")
	b := NewEvent("Libertadores", "Libertad", "14/05/2025", "21:30")
	b.MarkSynced("gcal-1")

	got := FilterPending([]*Event{a, b})
	if len(got) != 1 || got[0] != a {
		t.Errorf("FilterPending() = %v, want only %s", got, a.ID)
	}
}
