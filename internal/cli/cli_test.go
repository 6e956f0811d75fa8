package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/spfc-calendar/internal/event"
	"github.com/pfrederiksen/spfc-calendar/internal/storage"
)

func seedCache(t *testing.T, dir string) []*event.Event {
	t.Helper()

	day := func(offset int) string {
		return time.Now().AddDate(0, 0, offset).Format("02/01/2006")
	}
	events := []*event.Event{
		event.NewEvent("Brasileirão", "Palmeiras", day(10), "16:00"),
		event.NewEvent("Paulistão", "Santos", day(-3), "18:30"),
		event.NewEvent("Copa do Brasil", "Athletico", day(2), "21:30"),
	}

	store, err := storage.New(dir)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	if err := store.Save(events); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	return events
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("DATA_DIR", "")

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--log-level", "error"))

	err := cmd.Execute()
	return out.String(), err
}

func TestFetch_FromCache(t *testing.T) {
	dir := t.TempDir()
	seedCache(t, dir)

	out, err := run(t, "fetch", "--data-dir", dir, "--format", "json")
	if err != nil {
		t.Fatalf("fetch error = %v", err)
	}

	var result OutputResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decoding output: %v\n%s", err, out)
	}
	if !result.FromCache {
		t.Error("expected cached result")
	}
	if result.EventCount != 2 {
		t.Fatalf("EventCount = %d, want 2 upcoming", result.EventCount)
	}
	if result.Events[0].Opponent != "Athletico" {
		t.Errorf("first = %s, want Athletico", result.Events[0].Opponent)
	}
}

func TestFetch_AllSortedByOpponent(t *testing.T) {
	dir := t.TempDir()
	seedCache(t, dir)

	out, err := run(t, "fetch", "--data-dir", dir, "--all", "--sort", "opponent")
	if err != nil {
		t.Fatalf("fetch error = %v", err)
	}

	athletico := strings.Index(out, "Athletico")
	palmeiras := strings.Index(out, "Palmeiras")
	santos := strings.Index(out, "Santos")
	if athletico < 0 || palmeiras < athletico || santos < palmeiras {
		t.Errorf("unexpected order:\n%s", out)
	}
	if !strings.Contains(out, "Total: 3 fixtures (cache)") {
		t.Errorf("missing total line:\n%s", out)
	}
}

func TestFetch_InvalidFlags(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		args []string
	}{
		{"format", []string{"fetch", "--data-dir", dir, "--format", "xml"}},
		{"sort", []string{"fetch", "--data-dir", dir, "--sort", "venue"}},
		{"weeks", []string{"fetch", "--data-dir", dir, "--weeks", "-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(t, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestMarkUnmarkSynced(t *testing.T) {
	dir := t.TempDir()
	events := seedCache(t, dir)
	id := events[0].ID

	if _, err := run(t, "mark", id, "--data-dir", dir, "--google-event-id", "gcal-1"); err != nil {
		t.Fatalf("mark error = %v", err)
	}

	out, err := run(t, "synced", "--data-dir", dir)
	if err != nil {
		t.Fatalf("synced error = %v", err)
	}
	if !strings.Contains(out, "Palmeiras") || !strings.Contains(out, "gcal-1") {
		t.Errorf("synced output missing fixture:\n%s", out)
	}

	out, err = run(t, "unmark", id, "--data-dir", dir)
	if err != nil {
		t.Fatalf("unmark error = %v", err)
	}
	if !strings.Contains(out, "gcal-1") {
		t.Errorf("unmark output = %q", out)
	}

	if _, err := run(t, "unmark", id, "--data-dir", dir); err == nil {
		t.Error("expected error unmarking a fixture that is not synced")
	}
	if _, err := run(t, "mark", "000000000000", "--data-dir", dir); err == nil {
		t.Error("expected error marking an unknown fixture")
	}
}

func TestStatusAndClear(t *testing.T) {
	dir := t.TempDir()
	seedCache(t, dir)

	out, err := run(t, "status", "--data-dir", dir, "--format", "json")
	if err != nil {
		t.Fatalf("status error = %v", err)
	}
	var status storage.Status
	if err := json.Unmarshal([]byte(out), &status); err != nil {
		t.Fatalf("decoding status: %v", err)
	}
	if !status.Exists || status.TotalEvents != 3 || !status.Valid {
		t.Errorf("status = %+v", status)
	}

	if _, err := run(t, "clear", "--data-dir", dir); err != nil {
		t.Fatalf("clear error = %v", err)
	}

	out, err = run(t, "status", "--data-dir", dir)
	if err != nil {
		t.Fatalf("status error = %v", err)
	}
	if !strings.HasPrefix(out, "No cache at") {
		t.Errorf("status after clear = %q", out)
	}
}
