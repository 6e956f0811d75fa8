package calendar

import (
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/pfrederiksen/spfc-calendar/internal/event"
)

var testNow = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

func TestGenerateICS(t *testing.T) {
	home := true
	evt := event.NewEvent("Brasileirão", "Palmeiras", "10/05/2025", "16:00")
	evt.Venue = "Morumbis"
	evt.Home = &home

	out, err := GenerateICS(evt, testNow)
	if err != nil {
		t.Fatalf("GenerateICS() error = %v", err)
	}

	requiredFields := []string{
		"BEGIN:VCALENDAR",
		"PRODID:" + ProductID,
		"METHOD:PUBLISH",
		"BEGIN:VEVENT",
		"UID:" + evt.ID + "@spfc-calendar",
		"DTSTART:20250510T190000Z",
		"DTEND:20250510T210000Z",
		"SUMMARY:São Paulo x Palmeiras",
		"LOCATION:Morumbis",
		"STATUS:CONFIRMED",
		"END:VEVENT",
		"END:VCALENDAR",
	}

	for _, field := range requiredFields {
		if !strings.Contains(out, field) {
			t.Errorf("ICS missing required field: %s", field)
		}
	}

	if !strings.Contains(out, "\r\n") {
		t.Error("ICS should use \\r\\n line endings")
	}
}

func TestGenerateICS_UnparseableDate(t *testing.T) {
	evt := &event.Event{ID: "abc", Opponent: "Santos", DateText: "a definir"}

	if _, err := GenerateICS(evt, testNow); err == nil {
		t.Error("GenerateICS() expected error for event without kick-off")
	}
}

func TestGenerateFeed(t *testing.T) {
	events := []*event.Event{
		event.NewEvent("Brasileirão", "Palmeiras", "10/05/2025", "16:00"),
		event.NewEvent("Libertadores", "Libertad", "14/05/2025", "21:30"),
		{ID: "unknown", Opponent: "Santos", DateText: "a definir"},
	}

	out := GenerateFeed(events, testNow)

	cal, err := ical.ParseCalendar(strings.NewReader(out))
	if err != nil {
		t.Fatalf("ParseCalendar() error = %v", err)
	}

	parsed := cal.Events()
	if len(parsed) != 2 {
		t.Fatalf("feed has %d events, want 2", len(parsed))
	}

	start, err := parsed[1].GetStartAt()
	if err != nil {
		t.Fatalf("GetStartAt() error = %v", err)
	}
	want := time.Date(2025, 5, 15, 0, 30, 0, 0, time.UTC)
	if !start.Equal(want) {
		t.Errorf("start = %v, want %v", start, want)
	}
}

func TestGenerateFeed_Empty(t *testing.T) {
	out := GenerateFeed(nil, testNow)

	if !strings.Contains(out, "BEGIN:VCALENDAR") || strings.Contains(out, "BEGIN:VEVENT") {
		t.Errorf("unexpected empty feed: %s", out)
	}
}

func TestSummary(t *testing.T) {
	home, away := true, false

	tests := []struct {
		name string
		home *bool
		want string
	}{
		{"home", &home, "São Paulo x Palmeiras"},
		{"away", &away, "Palmeiras x São Paulo"},
		{"unknown", nil, "São Paulo x Palmeiras"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evt := &event.Event{Opponent: "Palmeiras", Home: tt.home}
			if got := Summary(evt); got != tt.want {
				t.Errorf("Summary() = %q, want %q", got, tt.want)
			}
		})
	}
}
