package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pfrederiksen/spfc-calendar/internal/event"
	"github.com/pfrederiksen/spfc-calendar/internal/logger"
)

// CacheFileName is the name of the cache file inside the data directory.
const CacheFileName = "cache_jogos.json"

const (
	statusTimeLayout = "02/01/2006 15:04"

	nextRefreshOnExpiry = "Quando o último jogo passar"
	nextRefreshNow      = "Na próxima requisição"
	noCacheMessage      = "Nenhum cache encontrado"
)

// Storage handles persistence of the fixture cache
type Storage struct {
	dataDir string
	now     func() time.Time
}

// Status describes the cache file for operators.
type Status struct {
	Exists      bool   `json:"existe"`
	UpdatedAt   string `json:"ultima_atualizacao,omitempty"`
	TotalEvents int    `json:"total_jogos"`
	LastEvent   string `json:"ultimo_jogo_data,omitempty"`
	Valid       bool   `json:"cache_valido"`
	NextRefresh string `json:"proxima_atualizacao,omitempty"`
	File        string `json:"arquivo"`
	Message     string `json:"mensagem,omitempty"`
}

// New creates a new Storage instance
func New(dataDir string) (*Storage, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Storage{
		dataDir: dataDir,
		now:     time.Now,
	}, nil
}

// Path returns the location of the cache file.
func (s *Storage) Path() string {
	return filepath.Join(s.dataDir, CacheFileName)
}

// Load reads the cached snapshot. A missing, unreadable or corrupt file is
// reported as absent. Event IDs are recomputed from the identifying fields.
func (s *Storage) Load() (*event.Snapshot, bool) {
	path := s.Path()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Error("Failed to read cache", logger.Fields{"file": path}, err)
		}
		return nil, false
	}

	var snapshot event.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		logger.Error("Corrupt cache file, ignoring", logger.Fields{"file": path}, err)
		return nil, false
	}

	events := make([]*event.Event, 0, len(snapshot.Events))
	for _, evt := range snapshot.Events {
		if evt == nil {
			continue
		}
		evt.RefreshID()
		events = append(events, evt)
	}
	snapshot.Events = events

	logger.Debug("Cache loaded", logger.Fields{
		"file":   path,
		"events": len(snapshot.Events),
	})

	return &snapshot, true
}

// Save replaces the cache with the given events, stamped with the current time.
func (s *Storage) Save(events []*event.Event) error {
	return s.saveSnapshot(event.CreateSnapshot(events, s.now()))
}

func (s *Storage) saveSnapshot(snapshot *event.Snapshot) error {
	path := s.Path()

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding cache: %w", err)
	}

	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("writing cache: %w", err)
	}

	logger.Info("Cache saved", logger.Fields{
		"file":   path,
		"events": len(snapshot.Events),
	})
	logger.SetGauge("cache.events", float64(len(snapshot.Events)))

	return nil
}

// writeFileAtomic writes data to a temp file in the same directory and renames
// it over path, so readers never observe a partial file.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".cache-jogos-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// Clear removes the cache file. A missing file is not an error.
func (s *Storage) Clear() error {
	if err := os.Remove(s.Path()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing cache: %w", err)
	}
	logger.Info("Cache cleared", logger.Fields{"file": s.Path()})
	return nil
}

// Status summarizes the cache for the status endpoint and CLI.
func (s *Storage) Status() Status {
	snapshot, ok := s.Load()
	if !ok {
		return Status{
			Exists:  false,
			File:    s.Path(),
			Message: noCacheMessage,
		}
	}

	status := Status{
		Exists:      true,
		UpdatedAt:   snapshot.UpdatedAt,
		TotalEvents: len(snapshot.Events),
		Valid:       event.CacheValid(snapshot.Events, s.now()),
		File:        s.Path(),
	}

	if latest, found := event.LatestStart(snapshot.Events); found {
		status.LastEvent = latest.In(event.SourceLocation).Format(statusTimeLayout)
	}

	if status.Valid {
		status.NextRefresh = nextRefreshOnExpiry
	} else {
		status.NextRefresh = nextRefreshNow
	}

	return status
}

// MarkSynced flags the cached event as present in the external calendar.
// Returns false when there is no cache, the ID is unknown or saving fails.
func (s *Storage) MarkSynced(id, googleEventID string) bool {
	snapshot, ok := s.Load()
	if !ok {
		return false
	}

	evt := snapshot.Find(id)
	if evt == nil {
		return false
	}

	evt.MarkSynced(googleEventID)
	if err := s.saveSnapshot(snapshot); err != nil {
		logger.Error("Failed to save sync mark", logger.Fields{"jogo_id": id}, err)
		return false
	}

	logger.Info("Event marked as synced", logger.Fields{
		"jogo_id":         id,
		"google_event_id": googleEventID,
	})
	return true
}

// UnmarkSynced clears the sync flag of a cached event and returns the external
// reference it carried. ok is false when there is no cache, the ID is unknown,
// the event was not synced or saving fails.
func (s *Storage) UnmarkSynced(id string) (string, bool) {
	snapshot, ok := s.Load()
	if !ok {
		return "", false
	}

	evt := snapshot.Find(id)
	if evt == nil || !evt.Synced {
		return "", false
	}

	ref := evt.UnmarkSynced()
	if err := s.saveSnapshot(snapshot); err != nil {
		logger.Error("Failed to save sync unmark", logger.Fields{"jogo_id": id}, err)
		return "", false
	}

	logger.Info("Event unmarked", logger.Fields{
		"jogo_id":         id,
		"google_event_id": ref,
	})
	return ref, true
}

// ListSynced returns every cached event flagged as synced.
func (s *Storage) ListSynced() []*event.Event {
	snapshot, ok := s.Load()
	if !ok {
		return make([]*event.Event, 0)
	}
	return snapshot.Synced()
}

// ListSyncedPast returns synced events whose kick-off plus CleanupGrace is
// already behind us, i.e. candidates for removal from the external calendar.
func (s *Storage) ListSyncedPast() []*event.Event {
	now := s.now()
	past := make([]*event.Event, 0)
	for _, evt := range s.ListSynced() {
		if evt.PastForCleanup(now) {
			past = append(past, evt)
		}
	}
	return past
}
