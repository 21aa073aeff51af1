package repositories

import "context"

// LockedFn runs while the requested document locks are held.
type LockedFn func(ctx context.Context) error

// LockManager serializes read-modify-write cycles per document.
type LockManager interface {
	// ExecLocked runs fn holding the exclusive lock of every listed document.
	// Store calls made with the ctx passed to fn reuse those locks.
	ExecLocked(ctx context.Context, fn LockedFn, kinds ...DocumentKind) error
}
