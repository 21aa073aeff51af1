package jsonfile

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"diarykeeper/internal/domain"
	"diarykeeper/internal/domain/repositories"

	"github.com/gofrs/flock"
)

// flockRetryDelay is how often a contended lock file is polled.
const flockRetryDelay = 10 * time.Millisecond

var errLockNotAcquired = errors.New("document lock not acquired")

// docLock guards one document. The semaphore orders goroutines in this
// process; the lock file orders processes sharing the storage root.
type docLock struct {
	sem  chan struct{}
	file *flock.Flock
}

func newDocLock(root string, kind repositories.DocumentKind) *docLock {
	return &docLock{
		sem:  make(chan struct{}, 1),
		file: flock.New(filepath.Join(root, "."+string(kind)+".lock")),
	}
}

func (l *docLock) lock(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	ok, err := l.file.TryLockContext(ctx, flockRetryDelay)
	if err != nil || !ok {
		<-l.sem
		if err == nil {
			err = errLockNotAcquired
		}
		return err
	}
	return nil
}

func (l *docLock) unlock() error {
	err := l.file.Unlock()
	<-l.sem
	return err
}

// ExecLocked runs fn holding the locks of kinds, acquired in document order.
// Kinds already held through ctx are not locked again. A nested call must
// not request a kind ordered before one its caller holds.
func (s *Store) ExecLocked(ctx context.Context, fn repositories.LockedFn, kinds ...repositories.DocumentKind) error {
	acquired := make([]repositories.DocumentKind, 0, len(kinds))
	defer func() {
		for i := len(acquired) - 1; i >= 0; i-- {
			if err := s.locks[acquired[i]].unlock(); err != nil {
				s.logger.Warn("release document lock", "document", acquired[i], "error", err)
			}
		}
	}()

	for _, kind := range repositories.SortKinds(kinds) {
		if repositories.Holds(ctx, kind) {
			continue
		}
		l, ok := s.locks[kind]
		if !ok {
			return domain.NewIOError("lock", string(kind), errUnknownDocument)
		}
		if err := l.lock(ctx, s.lockTimeout); err != nil {
			return domain.NewIOError("lock", kind.FileName(), err)
		}
		acquired = append(acquired, kind)
	}

	return fn(repositories.WithHeld(ctx, acquired...))
}
