package snapshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/spf13/afero"

	"github.com/ekaya-inc/ekaya-export/pkg/apperrors"
)

// LockFileName is created in the snapshot root while a run holds it.
const LockFileName = ".export.lock"

// RunLock keeps two runs from writing the same snapshot root at once.
type RunLock struct {
	path  string
	fs    afero.Fs
	flock *flock.Flock
}

// AcquireRunLock takes the run lock for root on fs without blocking. It returns
// apperrors.ErrSnapshotLocked when another holder has it. On the OS filesystem
// the lock is an flock; on any other afero filesystem it is an exclusively
// created lock file, removed again by Unlock.
func AcquireRunLock(fs afero.Fs, root string) (*RunLock, error) {
	if err := fs.MkdirAll(root, dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", root, err)
	}
	path := filepath.Join(root, LockFileName)

	if _, ok := fs.(*afero.OsFs); ok {
		lock := flock.New(path)
		locked, err := lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("failed to lock %s: %w", path, err)
		}
		if !locked {
			return nil, fmt.Errorf("%s: %w", root, apperrors.ErrSnapshotLocked)
		}
		return &RunLock{path: path, flock: lock}, nil
	}

	f, err := fs.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, filePerm)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("%s: %w", root, apperrors.ErrSnapshotLocked)
		}
		return nil, fmt.Errorf("failed to lock %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", path, err)
	}
	return &RunLock{path: path, fs: fs}, nil
}

// Path returns the lock file path.
func (l *RunLock) Path() string {
	return l.path
}

// Unlock releases the lock.
func (l *RunLock) Unlock() error {
	if l.flock != nil {
		return l.flock.Unlock()
	}
	return l.fs.Remove(l.path)
}
