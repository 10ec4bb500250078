package checkpoint

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"bridgeRelay/internal/model"
)

type fileState struct {
	LastProcessedHeight uint64           `json:"last_processed_height"`
	ProcessedEvents     []ProcessedEvent `json:"processed_events"`
	UpdatedAt           string           `json:"updated_at"`
}

// FileStore persists checkpoint state to a single JSON file, replaced
// atomically on every persist.
type FileStore struct {
	path        string
	startHeight uint64
}

// NewFileStore builds a file-backed Store. startHeight seeds the state when
// no file exists yet.
func NewFileStore(path string, startHeight uint64) *FileStore {
	return &FileStore{path: path, startHeight: startHeight}
}

// Load reads the checkpoint file. A missing file yields a zero-value state
// at the configured start height; an unparsable file is a
// CorruptStateError and is never silently reset.
func (f *FileStore) Load(_ context.Context) (*State, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewState(f.startHeight), nil
		}
		return nil, &model.CorruptStateError{Source: f.path, Err: err}
	}

	var persisted fileState
	if err := json.Unmarshal(data, &persisted); err != nil {
		return nil, &model.CorruptStateError{Source: f.path, Err: err}
	}

	return restoreState(persisted.LastProcessedHeight, persisted.ProcessedEvents), nil
}

// Persist writes the state to a temp file and renames it over the
// checkpoint path, so a crash mid-write never leaves a torn file.
func (f *FileStore) Persist(_ context.Context, state *State) error {
	persisted := fileState{
		LastProcessedHeight: state.LastProcessedHeight(),
		ProcessedEvents:     state.ProcessedEvents(),
		UpdatedAt:           time.Now().UTC().Format(time.RFC3339Nano),
	}

	data, err := json.Marshal(persisted)
	if err != nil {
		return &model.PersistenceError{Err: fmt.Errorf("marshal checkpoint: %w", err)}
	}

	dir := filepath.Dir(f.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &model.PersistenceError{Err: fmt.Errorf("create checkpoint dir: %w", err)}
		}
	}

	tmpPath := f.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return &model.PersistenceError{Err: fmt.Errorf("write checkpoint tmp: %w", err)}
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		return &model.PersistenceError{Err: fmt.Errorf("rename checkpoint: %w", err)}
	}

	return nil
}
