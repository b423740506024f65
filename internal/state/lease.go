package state

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"golang.org/x/sys/unix"

	"github.com/imamik/nebuctl/internal/util/retry"
)

const lockPollInterval = 100 * time.Millisecond

// ErrLeaseReleased is returned by Commit after Release.
var ErrLeaseReleased = errors.New("machine id lease already released")

// Lease is exclusive access to the machine-id counter. The id it hands out
// is only consumed by Commit; a lease released without Commit leaves the
// counter untouched so the next run reuses the id.
type Lease struct {
	store *Store
	lock  *os.File
	id    uint64
}

// Acquire locks the counter and reads the current id. It waits up to
// timeout for a concurrent run to release its lease.
func (s *Store) Acquire(ctx context.Context, timeout time.Duration) (*Lease, error) {
	path := s.Path(lockFile)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, filePerm) //nolint:gosec // path is inside the state directory
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file %s: %w", path, err)
	}

	attempts := int(timeout / lockPollInterval)
	err = retry.Do(ctx, func(context.Context) error {
		lockErr := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB) //nolint:gosec // fd fits in int
		if lockErr == nil || errors.Is(lockErr, unix.EWOULDBLOCK) {
			return lockErr
		}
		return retry.Permanent(lockErr)
	},
		retry.WithMaxRetries(attempts),
		retry.WithInitialDelay(lockPollInterval),
		retry.WithMultiplier(1),
	)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to lock %s: %w", path, err)
	}

	id, err := s.readCounter()
	if err != nil {
		_ = unix.Flock(int(f.Fd()), unix.LOCK_UN) //nolint:gosec // fd fits in int
		_ = f.Close()
		return nil, err
	}

	return &Lease{store: s, lock: f, id: id}, nil
}

// ID returns the machine id held by the lease.
func (l *Lease) ID() uint64 {
	return l.id
}

// Commit consumes the id by advancing the counter.
func (l *Lease) Commit() error {
	if l.lock == nil {
		return ErrLeaseReleased
	}
	return l.store.write(CounterFile, strconv.FormatUint(l.id+1, 10))
}

// Release unlocks the counter. It is safe to call more than once.
func (l *Lease) Release() error {
	if l.lock == nil {
		return nil
	}
	f := l.lock
	l.lock = nil
	unlockErr := unix.Flock(int(f.Fd()), unix.LOCK_UN) //nolint:gosec // fd fits in int
	return errors.Join(unlockErr, f.Close())
}
