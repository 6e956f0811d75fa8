// Package event provides types and pure functions for São Paulo FC fixtures.
//
// The event package handles fixture representation and identification, date
// and time canonicalization, the cache validity policy and the reconciliation
// of calendar-sync state across refreshes. Each event is assigned a
// deterministic MD5-based ID generated from its date, time, opponent and
// competition, so the same fixture keeps its ID across extractions.
package event
