// Package cli implements the command-line interface for spfc-calendar.
//
// The cli package provides the Cobra-based CLI: fetching fixtures (text, JSON
// or iCalendar output, sorted by date, competition or opponent), inspecting
// and clearing the cache, recording which fixtures were pushed to an external
// calendar, and running the HTTP API with its scheduled cache warm-up.
package cli
