package event

import (
	"crypto/md5"
	"fmt"
)

// Event represents one São Paulo FC fixture as extracted from the club's
// calendar page. JSON names match the cache file and the HTTP API.
type Event struct {
	ID            string `json:"jogo_id"`
	Competition   string `json:"competicao"`
	Opponent      string `json:"adversario"`
	OpponentLogo  string `json:"adversario_logo"`
	DateText      string `json:"data"`
	Weekday       string `json:"dia_semana"`
	TimeText      string `json:"horario"`
	Venue         string `json:"local"`
	Home          *bool  `json:"mandante"`
	StartISO      string `json:"data_iso"`
	EndISO        string `json:"data_fim_iso"`
	Synced        bool   `json:"criado_no_calendario"`
	GoogleEventID string `json:"google_event_id"`
}

// GenerateID creates a deterministic 12-character ID from the fields that
// identify a fixture. Venue, weekday and sync state do not take part.
func GenerateID(dateText, timeText, opponent, competition string) string {
	sum := md5.Sum([]byte(dateText + "_" + timeText + "_" + opponent + "_" + competition))
	return fmt.Sprintf("%x", sum)[:12]
}

// NewEvent creates an unsynced Event with its ID and canonical start/end
// populated from the raw date and time text.
func NewEvent(competition, opponent, dateText, timeText string) *Event {
	start, end := ParseDateTime(dateText, timeText)
	return &Event{
		ID:          GenerateID(dateText, timeText, opponent, competition),
		Competition: competition,
		Opponent:    opponent,
		DateText:    dateText,
		TimeText:    timeText,
		StartISO:    start,
		EndISO:      end,
	}
}

// RefreshID recomputes ID from the identifying fields.
func (e *Event) RefreshID() {
	e.ID = GenerateID(e.DateText, e.TimeText, e.Opponent, e.Competition)
}

// MarkSynced flags the event as present in the external calendar.
func (e *Event) MarkSynced(googleEventID string) {
	e.Synced = true
	e.GoogleEventID = googleEventID
}

// UnmarkSynced clears the sync flag together with the external reference and
// returns the reference that was set.
func (e *Event) UnmarkSynced() string {
	ref := e.GoogleEventID
	e.Synced = false
	e.GoogleEventID = ""
	return ref
}

// Clone returns a copy that shares no pointers with e.
func (e *Event) Clone() *Event {
	c := *e
	if e.Home != nil {
		home := *e.Home
		c.Home = &home
	}
	return &c
}
