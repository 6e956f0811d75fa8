// Package calendar renders fixtures as iCalendar data so they can be
// subscribed to from any calendar client.
package calendar

import (
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/pfrederiksen/spfc-calendar/internal/event"
)

const (
	ProductID    = "-//SPFC Calendar//spfc-calendar//PT"
	CalendarName = "São Paulo FC - Jogos"
	TeamName     = "São Paulo"
	uidDomain    = "spfc-calendar"
	timezoneName = "America/Sao_Paulo"
)

// GenerateFeed builds a calendar holding every event with a known kick-off.
// Events without a parseable instant are left out.
func GenerateFeed(events []*event.Event, now time.Time) string {
	cal := newCalendar()
	for _, evt := range events {
		addEvent(cal, evt, now)
	}
	return cal.Serialize()
}

// GenerateICS builds a calendar holding a single event.
func GenerateICS(evt *event.Event, now time.Time) (string, error) {
	cal := newCalendar()
	if !addEvent(cal, evt, now) {
		return "", fmt.Errorf("event %s has no parseable kick-off", evt.ID)
	}
	return cal.Serialize(), nil
}

func newCalendar() *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(ProductID)
	cal.SetXWRCalName(CalendarName)
	cal.SetXWRTimezone(timezoneName)
	return cal
}

func addEvent(cal *ical.Calendar, evt *event.Event, now time.Time) bool {
	start, ok := event.ParseStart(evt)
	if !ok {
		return false
	}

	vevent := cal.AddEvent(fmt.Sprintf("%s@%s", evt.ID, uidDomain))
	vevent.SetDtStampTime(now)
	vevent.SetStartAt(start)
	vevent.SetEndAt(start.Add(event.MatchDuration))
	vevent.SetSummary(Summary(evt))
	vevent.SetDescription(description(evt))
	if evt.Venue != "" {
		vevent.SetLocation(evt.Venue)
	}
	vevent.SetStatus(ical.ObjectStatusConfirmed)

	return true
}

// Summary is the event title, home side first when known.
func Summary(evt *event.Event) string {
	if evt.Home != nil && !*evt.Home {
		return fmt.Sprintf("%s x %s", evt.Opponent, TeamName)
	}
	return fmt.Sprintf("%s x %s", TeamName, evt.Opponent)
}

func description(evt *event.Event) string {
	lines := []string{evt.Competition}
	if evt.Weekday != "" {
		lines = append(lines, fmt.Sprintf("%s, %s %s", evt.Weekday, evt.DateText, evt.TimeText))
	} else {
		lines = append(lines, fmt.Sprintf("%s %s", evt.DateText, evt.TimeText))
	}
	if evt.Venue != "" {
		lines = append(lines, evt.Venue)
	}
	return strings.Join(lines, "\n")
}
