// Package storage provides JSON-based persistence for the fixture cache.
//
// The cache is a single file, cache_jogos.json, holding the last extracted
// fixtures together with the time they were fetched. Writes replace the whole
// file atomically. The store also carries the calendar-sync bookkeeping
// (mark, unmark and list synced fixtures) since that state lives inside the
// cached events.
//
// Storage has no internal lock. Callers that share a Storage across
// goroutines serialize access themselves.
package storage
