package checkpoint

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redditsave/pkg/logger"
)

func TestRunStateLifecycle(t *testing.T) {
	location := t.TempDir()

	mgr, err := NewManager(location, "saved", logger.NewTestLogger())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(location, StateDir, "state-saved.json"), mgr.Path())
	assert.False(t, mgr.Exists())

	missing, err := mgr.Load()
	require.NoError(t, err)
	assert.Nil(t, missing)

	state, err := mgr.Begin("run-1", "saved", location)
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, state.Status)
	assert.True(t, mgr.Exists())

	state.NewPosts = 3
	state.Archived = 2
	state.Failed = 1
	require.NoError(t, mgr.Finish(state, nil))

	loaded, err := mgr.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "run-1", loaded.RunID)
	assert.Equal(t, StatusCompleted, loaded.Status)
	assert.Equal(t, 3, loaded.NewPosts)
	assert.Equal(t, 2, loaded.Archived)
	assert.False(t, loaded.FinishedAt.IsZero())
	assert.Empty(t, loaded.Error)

	require.NoError(t, mgr.Delete())
	assert.False(t, mgr.Exists())
	require.NoError(t, mgr.Delete(), "deleting twice is not an error")
}

func TestFinishWithError(t *testing.T) {
	mgr, err := NewManager(t.TempDir(), "upvoted", nil)
	require.NoError(t, err)

	state, err := mgr.Begin("run-2", "upvoted", "/tmp/x")
	require.NoError(t, err)
	require.NoError(t, mgr.Finish(state, errors.New("listing failed")))

	loaded, err := mgr.Load()
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, loaded.Status)
	assert.Equal(t, "listing failed", loaded.Error)
}

func TestListSortsMostRecentFirst(t *testing.T) {
	location := t.TempDir()

	for i, name := range []string{"saved", "upvoted", "spez"} {
		mgr, err := NewManager(location, name, nil)
		require.NoError(t, err)
		state := &RunState{
			RunID:     name,
			Mode:      name,
			StartedAt: time.Date(2024, 1, 1+i, 0, 0, 0, 0, time.UTC),
			Version:   currentVersion,
		}
		require.NoError(t, mgr.Save(state))
	}

	states, err := List(location)
	require.NoError(t, err)
	require.Len(t, states, 3)
	assert.Equal(t, "spez", states[0].RunID)
	assert.Equal(t, "saved", states[2].RunID)

	empty, err := List(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestLoadRejectsCorruptState(t *testing.T) {
	location := t.TempDir()
	mgr, err := NewManager(location, "saved", nil)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(mgr.Path(), []byte("{broken"), 0644))
	_, err = mgr.Load()
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(mgr.Path(), []byte(`{"version": 99}`), 0644))
	_, err = mgr.Load()
	assert.ErrorContains(t, err, "unsupported version")
}

func TestDuration(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	state := &RunState{StartedAt: start, FinishedAt: start.Add(90 * time.Second)}
	assert.Equal(t, 90*time.Second, state.Duration())
}
