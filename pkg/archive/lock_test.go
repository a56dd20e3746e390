package archive

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "redditsave/pkg/errors"
)

func TestLockIsExclusive(t *testing.T) {
	dir := t.TempDir()

	first, err := AcquireLock(dir, "run-1", false)
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), first.Info().PID)

	held, err := ReadLock(dir)
	require.NoError(t, err)
	require.NotNil(t, held)
	assert.Equal(t, "run-1", held.RunID)

	_, err = AcquireLock(dir, "run-2", false)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrorTypeLocked))
	assert.Contains(t, err.Error(), "run-1")

	require.NoError(t, first.Release())

	held, err = ReadLock(dir)
	require.NoError(t, err)
	assert.Nil(t, held)

	second, err := AcquireLock(dir, "run-2", false)
	require.NoError(t, err)
	require.NoError(t, second.Release())
}

func TestBreakLock(t *testing.T) {
	dir := t.TempDir()

	stale, err := AcquireLock(dir, "stale", false)
	require.NoError(t, err)

	fresh, err := AcquireLock(dir, "fresh", true)
	require.NoError(t, err)

	// releasing the broken lock must not remove the new holder's file
	require.NoError(t, stale.Release())
	held, err := ReadLock(dir)
	require.NoError(t, err)
	require.NotNil(t, held)
	assert.Equal(t, "fresh", held.RunID)

	require.NoError(t, fresh.Release())
}

func TestCorruptLockStillBlocks(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, LockFile), []byte("garbage"), 0644))

	_, err := AcquireLock(dir, "run", false)
	assert.True(t, errs.Is(err, errs.ErrorTypeLocked))

	lock, err := AcquireLock(dir, "run", true)
	require.NoError(t, err)
	require.NoError(t, lock.Release())
}
