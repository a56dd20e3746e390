package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"redditsave/pkg/logger"
	"redditsave/pkg/storage"
)

// StateDir is the hidden directory inside an archive location holding run state
const StateDir = ".redditsave"

// currentVersion is bumped when RunState changes incompatibly
const currentVersion = 1

// Run status values
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// RunState records the most recent run for one output base name
type RunState struct {
	RunID            string    `json:"run_id"`
	Mode             string    `json:"mode"`
	Location         string    `json:"location"`
	Status           string    `json:"status"`
	ExistingPosts    int       `json:"existing_posts"`
	ExistingComments int       `json:"existing_comments"`
	NewPosts         int       `json:"new_posts"`
	NewComments      int       `json:"new_comments"`
	Archived         int       `json:"archived"`
	MediaFetched     int       `json:"media_fetched"`
	Failed           int       `json:"failed"`
	Inconclusive     int       `json:"inconclusive"`
	Blacklisted      int       `json:"blacklisted"`
	Pages            int       `json:"pages"`
	Error            string    `json:"error,omitempty"`
	StartedAt        time.Time `json:"started_at"`
	FinishedAt       time.Time `json:"finished_at,omitempty"`
	UpdatedAt        time.Time `json:"updated_at"`
	Version          int       `json:"version"`
}

// Duration returns how long the run took, or has taken so far
func (s *RunState) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return time.Since(s.StartedAt)
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// Manager handles run state persistence for one location and base name
type Manager struct {
	statePath string
	logger    logger.Logger
}

// NewManager creates the state directory under location if needed
func NewManager(location, name string, log logger.Logger) (*Manager, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	stateDir := filepath.Join(location, StateDir)
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	return &Manager{
		statePath: filepath.Join(stateDir, fmt.Sprintf("state-%s.json", name)),
		logger:    log,
	}, nil
}

// Path returns the state file location
func (m *Manager) Path() string {
	return m.statePath
}

// Begin records a new running state
func (m *Manager) Begin(runID, mode, location string) (*RunState, error) {
	now := time.Now().UTC()
	state := &RunState{
		RunID:     runID,
		Mode:      mode,
		Location:  location,
		Status:    StatusRunning,
		StartedAt: now,
		Version:   currentVersion,
	}

	if err := m.Save(state); err != nil {
		return nil, fmt.Errorf("failed to save initial run state: %w", err)
	}

	m.logger.DebugWithFields("Run state created", map[string]interface{}{
		"run_id": runID,
		"path":   m.statePath,
	})

	return state, nil
}

// Finish marks state as completed, or failed when runErr is set, and saves it
func (m *Manager) Finish(state *RunState, runErr error) error {
	state.FinishedAt = time.Now().UTC()
	state.Status = StatusCompleted
	if runErr != nil {
		state.Status = StatusFailed
		state.Error = runErr.Error()
	}
	return m.Save(state)
}

// Load loads the saved state; it returns nil without error when none exists
func (m *Manager) Load() (*RunState, error) {
	return load(m.statePath)
}

// Save writes state to disk atomically
func (m *Manager) Save(state *RunState) error {
	state.UpdatedAt = time.Now().UTC()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode run state: %w", err)
	}

	if err := storage.WriteFile(m.statePath, append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write run state: %w", err)
	}

	m.logger.DebugWithFields("Run state saved", map[string]interface{}{
		"run_id": state.RunID,
		"status": state.Status,
	})

	return nil
}

// Delete removes the state file
func (m *Manager) Delete() error {
	if err := os.Remove(m.statePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete run state: %w", err)
	}
	return nil
}

// Exists checks if a state file exists
func (m *Manager) Exists() bool {
	_, err := os.Stat(m.statePath)
	return err == nil
}

// List returns every run state stored under location, most recent first
func List(location string) ([]*RunState, error) {
	paths, err := filepath.Glob(filepath.Join(location, StateDir, "state-*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list run states: %w", err)
	}

	var states []*RunState
	for _, path := range paths {
		state, err := load(path)
		if err != nil {
			return nil, err
		}
		if state != nil {
			states = append(states, state)
		}
	}

	sort.Slice(states, func(i, j int) bool {
		return states[i].StartedAt.After(states[j].StartedAt)
	})
	return states, nil
}

func load(path string) (*RunState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read run state: %w", err)
	}

	var state RunState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to decode run state %s: %w", filepath.Base(path), err)
	}
	if state.Version > currentVersion {
		return nil, fmt.Errorf("run state %s has unsupported version %d", filepath.Base(path), state.Version)
	}

	return &state, nil
}
