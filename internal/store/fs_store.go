// Package store persists the roster aggregate as a JSON snapshot on disk.
package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/rosterd/internal/roster"
)

const snapshotFile = "roster-state.json"

// snapshot is the on-disk representation of the roster. The three status
// sets are stored separately; load-time repair in roster.FromSets handles
// a snapshot that drifted out of its invariants.
type snapshot struct {
	Playing               []roster.ParticipantID          `json:"playing"`
	NotPlaying            []roster.ParticipantID          `json:"not_playing"`
	Maybe                 []roster.ParticipantID          `json:"maybe"`
	EverSeen              []roster.ParticipantID          `json:"ever_seen"`
	Names                 map[roster.ParticipantID]string `json:"names,omitempty"`
	LastNotifiedThreshold int                             `json:"last_notified_threshold"`
	UpdatedAt             time.Time                       `json:"updated_at"`
}

// FileStore stores the snapshot under a data directory, writing through a
// temp file and an atomic rename so a crash mid-write cannot leave a
// corrupt or half-updated snapshot behind.
type FileStore struct {
	dataDir string
}

// NewFileStore creates the data directory if needed and returns the store.
func NewFileStore(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileStore{dataDir: dataDir}, nil
}

// Path returns the snapshot file path.
func (s *FileStore) Path() string {
	return filepath.Join(s.dataDir, snapshotFile)
}

// Load reads the persisted snapshot. A missing file is a first run and
// returns an empty roster, not an error.
func (s *FileStore) Load() (*roster.Roster, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			slog.Info("no roster snapshot found, starting fresh", "path", s.Path())
			return roster.New(), nil
		}
		return nil, fmt.Errorf("failed to read roster snapshot: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal roster snapshot: %w", err)
	}

	r := roster.FromSets(snap.Playing, snap.NotPlaying, snap.Maybe, snap.EverSeen, snap.Names, snap.LastNotifiedThreshold)
	slog.Info("roster snapshot loaded",
		"playing", len(snap.Playing),
		"ever_seen", len(r.EverSeen),
		"last_notified_threshold", r.LastNotifiedThreshold)
	return r, nil
}

// Save atomically overwrites the persisted snapshot with the given
// roster. The write is not durable until the rename succeeds; any
// failure propagates to the caller.
func (s *FileStore) Save(r *roster.Roster) error {
	snap := snapshot{
		Playing:               members(r, roster.StatusPlaying),
		NotPlaying:            members(r, roster.StatusNotPlaying),
		Maybe:                 members(r, roster.StatusMaybe),
		EverSeen:              keys(r.EverSeen),
		LastNotifiedThreshold: r.LastNotifiedThreshold,
		UpdatedAt:             time.Now(),
	}
	if len(r.Names) > 0 {
		snap.Names = r.Names
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal roster snapshot: %w", err)
	}

	statePath := s.Path()
	tempPath := statePath + ".tmp"

	// Write to temporary file first
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot to temporary file: %w", err)
	}

	// Atomically replace the snapshot
	if err := os.Rename(tempPath, statePath); err != nil {
		return fmt.Errorf("failed to replace snapshot file: %w", err)
	}

	return nil
}

func members(r *roster.Roster, s roster.Status) []roster.ParticipantID {
	out := []roster.ParticipantID{}
	for id, have := range r.StatusOf {
		if have == s {
			out = append(out, id)
		}
	}
	return out
}

func keys(set map[roster.ParticipantID]bool) []roster.ParticipantID {
	out := []roster.ParticipantID{}
	for id := range set {
		out = append(out, id)
	}
	return out
}
