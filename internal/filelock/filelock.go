// Package filelock guards the output directory of a build and writes its
// artifacts so that readers never observe a partially written file.
package filelock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// RunLockName is the lock file a build holds inside its output directory.
const RunLockName = ".rimdefs.lock"

// ErrLocked is returned when another process already holds a lock.
var ErrLocked = errors.New("lock is held by another process")

// FileLock is an advisory lock on a file shared across processes.
type FileLock struct {
	flock *flock.Flock
	path  string
}

// NewFileLock creates a lock backed by the file at path. The file is
// created on first acquisition.
func NewFileLock(path string) *FileLock {
	return &FileLock{
		flock: flock.New(path),
		path:  path,
	}
}

// Path returns the lock file path.
func (fl *FileLock) Path() string {
	return fl.path
}

// Lock blocks until the exclusive lock is held.
func (fl *FileLock) Lock() error {
	if err := fl.flock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", fl.path, err)
	}
	return nil
}

// TryLock takes the exclusive lock without blocking. It reports false
// when another holder has it.
func (fl *FileLock) TryLock() (bool, error) {
	acquired, err := fl.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to try lock on %s: %w", fl.path, err)
	}
	return acquired, nil
}

// Unlock releases the lock.
func (fl *FileLock) Unlock() error {
	if err := fl.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", fl.path, err)
	}
	return nil
}

// AcquireRunLock takes the build lock of outDir without blocking,
// creating the directory if needed. It returns ErrLocked when another
// build is writing to the same directory.
func AcquireRunLock(outDir string) (*FileLock, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", outDir, err)
	}
	lock := NewFileLock(filepath.Join(outDir, RunLockName))
	acquired, err := lock.TryLock()
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, fmt.Errorf("%s: %w", lock.Path(), ErrLocked)
	}
	return lock, nil
}
