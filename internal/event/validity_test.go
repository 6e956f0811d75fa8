package event

import (
	"testing"
	"time"
)

func eventAt(start time.Time) *Event {
	return &Event{StartISO: start.In(SourceLocation).Format(isoLayout) + SourceOffset}
}

func TestCacheValid(t *testing.T) {
	now := time.Date(2025, 5, 10, 20, 0, 0, 0, SourceLocation)

	tests := []struct {
		name   string
		events []*Event
		want   bool
	}{
		{
			name:   "empty list",
			events: nil,
			want:   false,
		},
		{
			name:   "last kick-off four hours ago",
			events: []*Event{eventAt(now.Add(-10 * 24 * time.Hour)), eventAt(now.Add(-4 * time.Hour))},
			want:   false,
		},
		{
			name:   "last kick-off two hours ago is still in grace",
			events: []*Event{eventAt(now.Add(-2 * time.Hour))},
			want:   true,
		},
		{
			name:   "upcoming kick-off",
			events: []*Event{eventAt(now.Add(-48 * time.Hour)), eventAt(now.Add(time.Hour))},
			want:   true,
		},
		{
			name:   "exactly at grace boundary",
			events: []*Event{eventAt(now.Add(-ValidityGrace))},
			want:   false,
		},
		{
			name:   "no parseable instant",
			events: []*Event{{DateText: "a definir"}, {DateText: "sábado"}},
			want:   false,
		},
		{
			name:   "unparseable entries are ignored",
			events: []*Event{{DateText: "a definir"}, eventAt(now.Add(time.Hour))},
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CacheValid(tt.events, now); got != tt.want {
				t.Errorf("CacheValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLatestStart(t *testing.T) {
	now := time.Date(2025, 5, 10, 20, 0, 0, 0, SourceLocation)
	latest := now.Add(72 * time.Hour)

	got, ok := LatestStart([]*Event{eventAt(now), eventAt(latest), eventAt(now.Add(time.Hour)), {DateText: "x"}})
	if !ok {
		t.Fatal("LatestStart() found nothing")
	}
	if !got.Equal(latest) {
		t.Errorf("LatestStart() = %v, want %v", got, latest)
	}

	if _, ok := LatestStart(nil); ok {
		t.Error("LatestStart(nil) reported a result")
	}
}

func TestEvent_PastForCleanup(t *testing.T) {
	now := time.Date(2025, 5, 10, 20, 0, 0, 0, SourceLocation)

	tests := []struct {
		name  string
		event *Event
		want  bool
	}{
		{"six hours ago", eventAt(now.Add(-6 * time.Hour)), true},
		{"four hours ago", eventAt(now.Add(-4 * time.Hour)), false},
		{"upcoming", eventAt(now.Add(time.Hour)), false},
		{"unparseable", &Event{DateText: "a definir"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event.PastForCleanup(now); got != tt.want {
				t.Errorf("PastForCleanup() = %v, want %v", got, tt.want)
			}
		})
	}
}
