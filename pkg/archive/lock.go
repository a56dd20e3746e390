package archive

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	errs "redditsave/pkg/errors"
)

// LockFile is the name of the single-instance lock inside an archive location
const LockFile = ".redditsave.lock"

// LockInfo is the content of the lock file
type LockInfo struct {
	PID       int       `json:"pid"`
	RunID     string    `json:"run_id"`
	Host      string    `json:"host,omitempty"`
	StartedAt time.Time `json:"started_at"`
}

// Lock is a held single-instance lock on an archive location
type Lock struct {
	path string
	info LockInfo
}

// AcquireLock takes the lock on dir for runID. When another run holds it a
// typed locked error is returned, unless breakLock removes the stale lock first.
func AcquireLock(dir, runID string, breakLock bool) (*Lock, error) {
	path := filepath.Join(dir, LockFile)

	host, _ := os.Hostname()
	info := LockInfo{
		PID:       os.Getpid(),
		RunID:     runID,
		Host:      host,
		StartedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(info)
	if err != nil {
		return nil, fmt.Errorf("failed to encode lock: %w", err)
	}

	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err == nil {
			_, werr := f.Write(append(data, '\n'))
			cerr := f.Close()
			if werr != nil || cerr != nil {
				os.Remove(path)
				return nil, errs.Wrap(errs.ErrorTypeFilesystem, "cannot write lock file", firstErr(werr, cerr))
			}
			return &Lock{path: path, info: info}, nil
		}
		if !os.IsExist(err) {
			return nil, errs.Wrap(errs.ErrorTypeFilesystem, fmt.Sprintf("cannot create lock file in %s", dir), err)
		}
		if !breakLock || attempt > 0 {
			return nil, lockedError(dir)
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrorTypeFilesystem, "cannot break lock", err)
		}
	}

	return nil, lockedError(dir)
}

func lockedError(dir string) error {
	msg := fmt.Sprintf("%s is being archived by another run", dir)
	if held, err := ReadLock(dir); err == nil && held != nil {
		msg = fmt.Sprintf("%s is being archived by run %s (pid %d) since %s",
			dir, held.RunID, held.PID, held.StartedAt.Format(time.RFC3339))
	}
	return errs.New(errs.ErrorTypeLocked, msg+"; pass --break-lock if that run is gone")
}

func firstErr(errors ...error) error {
	for _, err := range errors {
		if err != nil {
			return err
		}
	}
	return nil
}

// Info returns the lock content
func (l *Lock) Info() LockInfo {
	return l.info
}

// Release removes the lock file if it still belongs to this lock
func (l *Lock) Release() error {
	held, err := readLockFile(l.path)
	if err != nil {
		return err
	}
	if held == nil || held.RunID != l.info.RunID {
		return nil
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return errs.Wrap(errs.ErrorTypeFilesystem, "cannot release lock", err)
	}
	return nil
}

// ReadLock returns the lock currently held on dir, or nil when unlocked
func ReadLock(dir string) (*LockInfo, error) {
	return readLockFile(filepath.Join(dir, LockFile))
}

func readLockFile(path string) (*LockInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errs.Wrap(errs.ErrorTypeFilesystem, "cannot read lock file", err)
	}

	var info LockInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, errs.Wrap(errs.ErrorTypeParsing, "corrupt lock file", err)
	}
	return &info, nil
}
