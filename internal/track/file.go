package track

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// FileStore keeps tracking state in a single JSON file. Writes go through a
// temp file and rename so a crash mid-write never corrupts the previous
// state.
type FileStore struct {
	path string
	log  *zap.Logger
}

// NewFileStore builds a store writing to path.
func NewFileStore(path string, log *zap.Logger) (*FileStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("tracking file path is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &FileStore{path: path, log: log}, nil
}

// Load reads the tracking file. A missing file or malformed JSON resets to
// the empty default rather than failing.
func (s *FileStore) Load(_ context.Context) (State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewState(), nil
		}
		s.log.Warn("Failed to read tracking file, starting fresh",
			zap.String("path", s.path), zap.Error(err))
		return NewState(), nil
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		s.log.Warn("Invalid JSON in tracking file, starting fresh",
			zap.String("path", s.path), zap.Error(err))
		return NewState(), nil
	}
	if state.Builds == nil {
		state.Builds = NewState().Builds
	}
	return state, nil
}

// Save writes the state atomically.
func (s *FileStore) Save(_ context.Context, state State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal tracking state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create tracking dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp tracking file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()         //nolint:errcheck
		os.Remove(tmpName)  //nolint:errcheck
		return fmt.Errorf("write tracking state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName) //nolint:errcheck
		return fmt.Errorf("close temp tracking file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName) //nolint:errcheck
		return fmt.Errorf("replace tracking file: %w", err)
	}
	return nil
}
