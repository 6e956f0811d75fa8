package event

import "time"

// Snapshot is the persisted set of events at the last refresh.
// Events keep the order in which they were extracted.
type Snapshot struct {
	UpdatedAt string   `json:"ultima_atualizacao"` // RFC3339 timestamp
	Events    []*Event `json:"jogos"`
}

// CreateSnapshot creates a snapshot from a list of events
func CreateSnapshot(events []*Event, updatedAt time.Time) *Snapshot {
	if events == nil {
		events = make([]*Event, 0)
	}
	return &Snapshot{
		UpdatedAt: updatedAt.Format(time.RFC3339),
		Events:    events,
	}
}

// UpdatedTime parses UpdatedAt. Returns false when it is missing or malformed.
func (s *Snapshot) UpdatedTime() (time.Time, bool) {
	if s == nil || s.UpdatedAt == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s.UpdatedAt)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Find returns the event with the given ID, or nil.
func (s *Snapshot) Find(id string) *Event {
	if s == nil {
		return nil
	}
	for _, evt := range s.Events {
		if evt.ID == id {
			return evt
		}
	}
	return nil
}

// Synced returns the events flagged as present in the external calendar.
func (s *Snapshot) Synced() []*Event {
	synced := make([]*Event, 0)
	if s == nil {
		return synced
	}
	for _, evt := range s.Events {
		if evt.Synced {
			synced = append(synced, evt)
		}
	}
	return synced
}

// PreserveSyncState copies the sync flag and external reference from events
// in the previous snapshot onto current events with the same ID. Events with
// no previous match are left untouched. Matching is by exact ID only.
func PreserveSyncState(current []*Event, previous *Snapshot) []*Event {
	if previous == nil || len(previous.Events) == 0 {
		return current
	}

	type syncState struct {
		synced bool
		ref    string
	}

	states := make(map[string]syncState, len(previous.Events))
	for _, evt := range previous.Events {
		states[evt.ID] = syncState{synced: evt.Synced, ref: evt.GoogleEventID}
	}

	for _, evt := range current {
		if state, exists := states[evt.ID]; exists {
			evt.Synced = state.synced
			evt.GoogleEventID = state.ref
		}
	}

	return current
}
