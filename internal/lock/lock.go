// Package lock serialises provisioning runs and sessions that share an
// identity directory.
//
// The lock file lives next to the identity directory rather than inside it,
// because provisioning recreates the directory while holding the lock.
package lock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"hwgpg/internal/domain"
)

const retryDelay = 100 * time.Millisecond

// PathFor returns the lock file path guarding home.
func PathFor(home string) string {
	clean := filepath.Clean(home)
	return filepath.Join(filepath.Dir(clean), "."+filepath.Base(clean)+".lock")
}

// FileLock is an advisory flock(2) lock on a single file.
type FileLock struct {
	fl *flock.Flock
}

// New returns an unlocked FileLock for the identity directory home.
func New(home string) *FileLock {
	return &FileLock{fl: flock.New(PathFor(home))}
}

// Path returns the lock file path.
func (l *FileLock) Path() string { return l.fl.Path() }

// Acquire takes the lock. With a zero timeout it tries exactly once;
// otherwise it retries until the timeout elapses or ctx is done.
// Contention is reported as domain.ErrLocked.
func (l *FileLock) Acquire(ctx context.Context, timeout time.Duration) error {
	if err := os.MkdirAll(filepath.Dir(l.fl.Path()), 0o700); err != nil {
		return fmt.Errorf("creating lock directory: %w", err)
	}

	var (
		ok  bool
		err error
	)
	if timeout <= 0 {
		ok, err = l.fl.TryLock()
	} else {
		waitCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		ok, err = l.fl.TryLockContext(waitCtx, retryDelay)
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			err = nil
		}
	}
	if err != nil {
		return fmt.Errorf("locking %s: %w", l.fl.Path(), err)
	}
	if !ok {
		return fmt.Errorf("%w (%s)", domain.ErrLocked, l.fl.Path())
	}
	return nil
}

// Release drops the lock. The lock file itself is left in place.
func (l *FileLock) Release() error {
	if err := l.fl.Unlock(); err != nil {
		return fmt.Errorf("unlocking %s: %w", l.fl.Path(), err)
	}
	return nil
}

// Compile-time assertion that FileLock implements domain.Locker.
var _ domain.Locker = (*FileLock)(nil)
