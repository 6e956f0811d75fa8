package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/pfrederiksen/spfc-calendar/internal/calendar"
	"github.com/pfrederiksen/spfc-calendar/internal/event"
	"github.com/pfrederiksen/spfc-calendar/internal/storage"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatICS  OutputFormat = "ics"
)

// OutputResult contains data to be output
type OutputResult struct {
	CheckedAt  time.Time      `json:"checked_at"`
	Events     []*event.Event `json:"jogos"`
	EventCount int            `json:"total_jogos"`
	FromCache  bool           `json:"cache"`
	ShowAll    bool           `json:"show_all,omitempty"`
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat, verbose bool) error {
	if result.Events == nil {
		result.Events = make([]*event.Event, 0)
	}

	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	case FormatICS:
		_, err := io.WriteString(w, calendar.GenerateFeed(result.Events, result.CheckedAt))
		return err
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *OutputResult, verbose bool) error {
	if result.EventCount == 0 {
		if result.ShowAll {
			fmt.Fprintln(w, "No fixtures found.")
		} else {
			fmt.Fprintln(w, "No upcoming fixtures found.")
		}
		return nil
	}

	for _, evt := range result.Events {
		marker := " "
		if evt.Synced {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %s %-5s  %s (%s)\n", marker, evt.DateText, evt.TimeText, calendar.Summary(evt), evt.Competition)

		if verbose {
			fmt.Fprintf(w, "     ID: %s\n", evt.ID)
			if evt.Venue != "" {
				fmt.Fprintf(w, "     Venue: %s\n", evt.Venue)
			}
			if evt.GoogleEventID != "" {
				fmt.Fprintf(w, "     Calendar: %s\n", evt.GoogleEventID)
			}
		}
	}

	source := "fresh"
	if result.FromCache {
		source = "cache"
	}
	fmt.Fprintf(w, "\nTotal: %d fixtures (%s)\n", result.EventCount, source)

	return nil
}

// WriteStatus writes a cache status report.
func WriteStatus(w io.Writer, status storage.Status, format OutputFormat) error {
	if format == FormatJSON {
		return writeJSON(w, status)
	}

	if !status.Exists {
		fmt.Fprintf(w, "No cache at %s\n", status.File)
		return nil
	}

	state := "stale"
	if status.Valid {
		state = "valid"
	}

	fmt.Fprintf(w, "File:         %s\n", status.File)
	fmt.Fprintf(w, "Updated:      %s\n", status.UpdatedAt)
	fmt.Fprintf(w, "Fixtures:     %d\n", status.TotalEvents)
	if status.LastEvent != "" {
		fmt.Fprintf(w, "Last fixture: %s\n", status.LastEvent)
	}
	fmt.Fprintf(w, "State:        %s\n", state)
	if status.NextRefresh != "" {
		fmt.Fprintf(w, "Next refresh: %s\n", status.NextRefresh)
	}

	return nil
}
