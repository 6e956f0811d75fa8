package event

import (
	"strconv"
	"strings"
	"time"

	"github.com/pfrederiksen/spfc-calendar/internal/logger"
)

const (
	// SourceOffset is the UTC offset literal appended to canonical strings.
	// The club publishes kick-off times in São Paulo local time.
	SourceOffset = "-03:00"

	// MatchDuration is the assumed length of a fixture for calendar purposes.
	MatchDuration = 2 * time.Hour

	isoLayout = "2006-01-02T15:04:05"
)

// SourceLocation is the zone canonical instants are interpreted in.
var SourceLocation = time.FixedZone("BRT", -3*60*60)

// dateLayouts are tried in order by ParseDateTime. The last one carries no
// year and is completed with the current year.
var dateLayouts = []string{
	"2/1/2006",
	"2-1-2006",
	"2006-1-2",
	"2/1",
}

// ParseStart returns the kick-off instant of an event.
// The canonical StartISO wins when present; otherwise DateText is read as
// day/month/year and TimeText as HH:MM or HHhMM, defaulting to midnight.
// Returns false when no instant can be derived.
func ParseStart(e *Event) (time.Time, bool) {
	if e == nil {
		return time.Time{}, false
	}

	if e.StartISO != "" {
		raw := strings.TrimSuffix(strings.TrimSpace(e.StartISO), SourceOffset)
		if t, err := time.ParseInLocation(isoLayout, raw, SourceLocation); err == nil {
			return t, true
		}
		if t, err := time.Parse(time.RFC3339, strings.TrimSpace(e.StartISO)); err == nil {
			return t, true
		}
		logger.Warn("Unparseable canonical start, falling back to raw date", logger.Fields{
			"jogo_id":  e.ID,
			"data_iso": e.StartISO,
		})
	}

	if e.DateText == "" {
		return time.Time{}, false
	}

	parts := strings.Split(e.DateText, "/")
	if len(parts) != 3 {
		logger.Warn("Unparseable event date", logger.Fields{"jogo_id": e.ID, "data": e.DateText})
		return time.Time{}, false
	}

	day, errDay := strconv.Atoi(strings.TrimSpace(parts[0]))
	month, errMonth := strconv.Atoi(strings.TrimSpace(parts[1]))
	year, errYear := strconv.Atoi(strings.TrimSpace(parts[2]))
	if errDay != nil || errMonth != nil || errYear != nil || !validDate(year, month, day) {
		logger.Warn("Unparseable event date", logger.Fields{"jogo_id": e.ID, "data": e.DateText})
		return time.Time{}, false
	}

	hour, minute, ok := parseClock(e.TimeText, true)
	if !ok {
		hour, minute = 0, 0
	}

	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, SourceLocation), true
}

// ParseDateTime converts raw date and time text into canonical ISO-8601 start
// and end strings carrying SourceOffset. End is start plus MatchDuration.
// An unparseable time falls back to midnight; an unparseable date yields
// two empty strings.
func ParseDateTime(dateText, timeText string) (string, string) {
	cleanDate := strings.TrimSpace(dateText)

	var date time.Time
	parsed := false
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, cleanDate)
		if err != nil {
			continue
		}
		if layout == "2/1" {
			withYear := time.Date(time.Now().Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			if withYear.Month() != t.Month() || withYear.Day() != t.Day() {
				continue
			}
			t = withYear
		}
		date = t
		parsed = true
		break
	}

	if !parsed {
		logger.Warn("Could not parse date", logger.Fields{"data": dateText})
		return "", ""
	}

	hour, minute, ok := parseClock(timeText, false)
	if !ok {
		logger.Warn("Could not parse time, using midnight", logger.Fields{"horario": timeText})
		hour, minute = 0, 0
	}

	start := time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, time.UTC)
	end := start.Add(MatchDuration)

	return start.Format(isoLayout) + SourceOffset, end.Format(isoLayout) + SourceOffset
}

// parseClock reads "16:00", "16h00" or "16H00". With lenient set, a bare hour
// such as "16h" or "16" is accepted with zero minutes.
func parseClock(text string, lenient bool) (int, int, bool) {
	clean := strings.TrimSpace(text)
	clean = strings.NewReplacer("h", ":", "H", ":").Replace(clean)
	if clean == "" {
		return 0, 0, false
	}

	parts := strings.Split(clean, ":")
	if lenient {
		if len(parts) > 1 && strings.TrimSpace(parts[1]) == "" {
			parts = parts[:1]
		}
	} else if len(parts) != 2 {
		return 0, 0, false
	}

	hour, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, false
	}

	minute := 0
	if len(parts) > 1 {
		minute, err = strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return 0, 0, false
		}
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

func validDate(year, month, day int) bool {
	if year < 1 || month < 1 || month > 12 || day < 1 {
		return false
	}
	lastDay := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
	return day <= lastDay
}
