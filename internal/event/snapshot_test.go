package event

import (
	"testing"
	"time"
)

func TestCreateSnapshot(t *testing.T) {
	updated := time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)

	snap := CreateSnapshot(nil, updated)
	if snap.Events == nil {
		t.Error("expected nil events to become an empty slice")
	}

	got, ok := snap.UpdatedTime()
	if !ok || !got.Equal(updated) {
		t.Errorf("UpdatedTime() = (%v, %v), want (%v, true)", got, ok, updated)
	}
}

func TestSnapshot_UpdatedTime_Malformed(t *testing.T) {
	tests := []*Snapshot{
		nil,
		{},
		{UpdatedAt: "ontem"},
	}

	for _, snap := range tests {
		if _, ok := snap.UpdatedTime(); ok {
			t.Errorf("UpdatedTime() ok for %+v", snap)
		}
	}
}

func TestSnapshot_FindAndSynced(t *testing.T) {
	a := NewEvent("Brasileirão", "Palmeiras", "10/05/2025", "16:00")
	b := NewEvent("Libertadores", "Libertad", "14/05/2025", "21:30")
	b.MarkSynced("gcal-1")

	snap := CreateSnapshot([]*Event{a, b}, time.Now())

	if got := snap.Find(b.ID); got != b {
		t.Errorf("Find(%s) = %v, want %v", b.ID, got, b)
	}
	if got := snap.Find("missing"); got != nil {
		t.Errorf("Find(missing) = %v, want nil", got)
	}

	synced := snap.Synced()
	if len(synced) != 1 || synced[0].ID != b.ID {
		t.Errorf("Synced() = %v, want only %s", synced, b.ID)
	}
}

func TestPreserveSyncState(t *testing.T) {
	oldA := NewEvent("Brasileirão", "Palmeiras", "10/05/2025", "16:00")
	oldA.MarkSynced("gcal-1")
	oldB := NewEvent("Libertadores", "Libertad", "14/05/2025", "21:30")
	previous := CreateSnapshot([]*Event{oldA, oldB}, time.Now())

	newA := NewEvent("Brasileirão", "Palmeiras", "10/05/2025", "16:00")
	newA.Venue = "Morumbis"
	newC := NewEvent("Copa do Brasil", "Grêmio", "21/05/2025", "19:00")

	merged := PreserveSyncState([]*Event{newA, newC}, previous)

	if len(merged) != 2 {
		t.Fatalf("expected 2 events, got %d", len(merged))
	}
	if !merged[0].Synced || merged[0].GoogleEventID != "gcal-1" {
		t.Errorf("sync state not carried over: synced=%v ref=%q", merged[0].Synced, merged[0].GoogleEventID)
	}
	if merged[0].Venue != "Morumbis" {
		t.Errorf("fresh fields overwritten: venue=%q", merged[0].Venue)
	}
	if merged[1].Synced || merged[1].GoogleEventID != "" {
		t.Errorf("unmatched event picked up sync state: synced=%v ref=%q", merged[1].Synced, merged[1].GoogleEventID)
	}
}

func TestPreserveSyncState_RescheduledFixtureLosesState(t *testing.T) {
	old := NewEvent("Brasileirão", "Palmeiras", "10/05/2025", "16:00")
	old.MarkSynced("gcal-1")
	previous := CreateSnapshot([]*Event{old}, time.Now())

	moved := NewEvent("Brasileirão", "Palmeiras", "10/05/2025", "18:30")
	merged := PreserveSyncState([]*Event{moved}, previous)

	if merged[0].Synced {
		t.Error("rescheduled fixture should start unsynced")
	}
}

func TestPreserveSyncState_NoPrevious(t *testing.T) {
	current := []*Event{NewEvent("Brasileirão", "Palmeiras", "10/05/2025", "16:00")}

	if got := PreserveSyncState(current, nil); len(got) != 1 || got[0].Synced {
		t.Errorf("PreserveSyncState(nil) = %v", got)
	}
}
