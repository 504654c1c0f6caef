package scheduler

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// SeriesState records the last successful refresh of one series.
type SeriesState struct {
	LastObservation time.Time `json:"last_observation"`
	LastRunID       string    `json:"last_run_id"`
	LastRunAt       time.Time `json:"last_run_at"`
	Outputs         []string  `json:"outputs,omitempty"`
}

// RefreshState is the persisted refresh history, keyed by series name.
type RefreshState struct {
	Series    map[string]SeriesState `json:"series"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// LoadState reads the refresh state from a JSON file. Returns an empty state if the file doesn't exist.
func LoadState(filePath string) (*RefreshState, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &RefreshState{Series: map[string]SeriesState{}}, nil
		}
		return nil, err
	}
	var state RefreshState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	if state.Series == nil {
		state.Series = map[string]SeriesState{}
	}
	return &state, nil
}

// SaveState writes the refresh state to a JSON file.
func SaveState(filePath string, state *RefreshState) error {
	state.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(filePath, data, 0644)
}

// StateStore guards the refresh state and persists every change.
type StateStore struct {
	mu       sync.Mutex
	state    *RefreshState
	filePath string
}

// NewStateStore loads or initializes state from disk.
func NewStateStore(filePath string) (*StateStore, error) {
	state, err := LoadState(filePath)
	if err != nil {
		return nil, err
	}
	return &StateStore{state: state, filePath: filePath}, nil
}

// Get returns a copy of the state for series.
func (s *StateStore) Get(series string) (SeriesState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.state.Series[series]
	return st, ok
}

// Put records st for series and saves the file.
func (s *StateStore) Put(series string, st SeriesState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Series[series] = st
	return SaveState(s.filePath, s.state)
}
