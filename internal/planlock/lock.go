// Package planlock implements the whole-project advisory lock used to
// serialize mutating plan operations: exclusive file creation, mtime-based
// staleness detection, atomic rename-to-reclaim, and bounded exponential
// backoff, exactly.
package planlock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// LockFileName is the transient lock file's name at a project root.
const LockFileName = ".plan-lock"

const (
	// StaleThreshold is how old an existing lock file's mtime must be
	// before a new acquirer will attempt to reclaim it.
	StaleThreshold = 30 * time.Second

	// DefaultTimeout bounds total acquisition wait time.
	DefaultTimeout = 5 * time.Second

	backoffInitial = 50 * time.Millisecond
	backoffCap     = 500 * time.Millisecond
)

// TimeoutError means the lock was not acquired within the deadline.
type TimeoutError struct {
	Path    string
	Waited  time.Duration
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("lock %s not acquired after %s (timeout %s)", e.Path, e.Waited, e.Timeout)
}

// Options configures a single WithLock call. The zero value uses the
// package defaults.
type Options struct {
	Timeout time.Duration
}

func (o Options) timeout() time.Duration {
	if o.Timeout <= 0 {
		return DefaultTimeout
	}
	return o.Timeout
}

// owner is the metadata written inside a held lock file, for diagnostics
// only — it plays no role in the acquisition algorithm itself.
type owner struct {
	PID      int
	Acquired time.Time
	Hostname string
}

// WithLock acquires the project lock at projectRoot, runs fn, and releases
// the lock on the way out regardless of whether fn returns an error.
func WithLock(projectRoot string, opts Options, fn func() error) error {
	path := filepath.Join(projectRoot, LockFileName)
	start := time.Now()
	timeout := opts.timeout()
	backoff := backoffInitial

	for {
		acquired, err := tryAcquire(path)
		if err != nil {
			return fmt.Errorf("acquiring lock: %w", err)
		}
		if acquired {
			defer release(path)
			return fn()
		}

		if reclaimed := tryReclaimStale(path); reclaimed {
			continue // no backoff — immediately retry the exclusive create
		}

		if time.Since(start) >= timeout {
			return &TimeoutError{Path: path, Waited: time.Since(start), Timeout: timeout}
		}

		remaining := timeout - time.Since(start)
		wait := backoff
		if wait > remaining {
			wait = remaining
		}
		time.Sleep(wait)
		backoff *= 2
		if backoff > backoffCap {
			backoff = backoffCap
		}
	}
}

// tryAcquire attempts the atomic exclusive create. It returns (true, nil)
// on success, (false, nil) if the file already exists, and (false, err)
// for any other I/O error.
func tryAcquire(path string) (bool, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	o := owner{PID: os.Getpid(), Acquired: time.Now().UTC()}
	if host, hErr := os.Hostname(); hErr == nil {
		o.Hostname = host
	}
	fmt.Fprintf(f, "pid: %d\nacquired_at: %s\nhostname: %s\n", o.PID, o.Acquired.Format(time.RFC3339), o.Hostname)
	return true, nil
}

// tryReclaimStale renames path aside (breaking any other racing
// reclaimer's view of it) if its mtime is older than StaleThreshold. A
// successful rename means the slot is now open for a fresh exclusive
// create on the next loop iteration; a failed rename means another
// process won the race and this caller should keep waiting.
func tryReclaimStale(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		// Lock disappeared between our failed create and this stat —
		// treat as open, let the next tryAcquire pick it up.
		return errors.Is(err, os.ErrNotExist)
	}
	if time.Since(info.ModTime()) < StaleThreshold {
		return false
	}
	side := path + ".stale-" + uuid.New().String()
	return os.Rename(path, side) == nil
}

// release unlinks the lock file. An already-absent lock file is not an
// error — nothing in the protocol requires the releaser to be the last
// writer of that exact inode (a stale-reclaimer may have renamed it away).
func release(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		// Best-effort: releasing a lock must never surface an error to
		// the caller's own fn result. Nothing else to do here.
		_ = err
	}
}
