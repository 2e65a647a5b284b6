package organizer

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

// LockFileName is created in the output root for the duration of a run. The
// leading dot keeps it out of traversal.
const LockFileName = ".photosorter.lock"

// ErrLocked reports that another run holds the output root.
var ErrLocked = errors.New("output root is in use by another photosorter run")

type outputLock struct {
	lock *flock.Flock
}

func acquireLock(root string) (*outputLock, error) {
	lock := flock.New(filepath.Join(root, LockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, root)
	}
	return &outputLock{lock: lock}, nil
}

func (l *outputLock) release() {
	if l == nil || l.lock == nil {
		return
	}
	_ = l.lock.Unlock()
}
