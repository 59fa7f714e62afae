// Package snapshot persists the in-memory state to a single msgpack file so a
// restart picks up where the last run left off. Best effort, not a database.
package snapshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/tradedeck/tradedeck/internal/modules/portfolio"
	"github.com/tradedeck/tradedeck/internal/modules/risk"
)

const fileName = "tradedeck.snapshot"

// State is the whole-process snapshot written on shutdown.
type State struct {
	SavedAt   time.Time            `msgpack:"saved_at"`
	Positions []portfolio.Position `msgpack:"positions"`
	Alerts    []risk.Alert         `msgpack:"alerts"`
	Limits    risk.Limits          `msgpack:"limits"`
}

// Store reads and writes the snapshot file under the data directory.
type Store struct {
	path string
	log  zerolog.Logger
}

// NewStore creates a snapshot store rooted at dataDir
func NewStore(dataDir string, log zerolog.Logger) *Store {
	return &Store{
		path: filepath.Join(dataDir, fileName),
		log:  log.With().Str("component", "snapshot").Logger(),
	}
}

// Save writes the state atomically (temp file + rename).
func (s *Store) Save(state State) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	data, err := msgpack.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}

	s.log.Info().
		Int("positions", len(state.Positions)).
		Int("alerts", len(state.Alerts)).
		Str("path", s.path).
		Msg("Snapshot saved")

	return nil
}

// Load reads the snapshot file. Returns nil with no error when no snapshot
// exists yet.
func (s *Store) Load() (*State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var state State
	if err := msgpack.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}

	s.log.Info().
		Time("saved_at", state.SavedAt).
		Int("positions", len(state.Positions)).
		Msg("Snapshot loaded")

	return &state, nil
}
