package statestore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	logger "github.com/sirupsen/logrus"

	"tradeconsole/src/model"
)

// Store persists the whole console session as one JSON document. Writes are
// atomic: serialize to a temp file in the target directory, then rename over
// the state file, so a concurrent reader never observes a partial document.
type Store struct {
	stateFile string
}

// New returns a store bound to the given state file path.
func New(stateFile string) *Store {
	return &Store{stateFile: stateFile}
}

// Save writes the snapshot. The saved_at stamp is set here.
func (s *Store) Save(state model.SessionState) error {
	state.Version = model.SessionStateVersion
	state.SavedAt = time.Now().UTC()

	directory := filepath.Dir(s.stateFile)
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return err
	}

	payload, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(directory, "session_*.json")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, s.stateFile); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

// Load reads the last snapshot. A missing or corrupt file is "no prior
// session", not an error.
func (s *Store) Load() *model.SessionState {
	payload, err := os.ReadFile(s.stateFile)
	if err != nil {
		return nil
	}

	var state model.SessionState
	if err := json.Unmarshal(payload, &state); err != nil {
		logger.WithFields(map[string]interface{}{
			"component": "SessionStateStore",
			"file":      s.stateFile,
		}).WithError(err).Warn("Discarding corrupt session state")
		return nil
	}
	return &state
}

// Clear removes the persisted snapshot, if any.
func (s *Store) Clear() bool {
	err := os.Remove(s.stateFile)
	return err == nil || os.IsNotExist(err)
}
