package port

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrLockTimeout means the lock could not be acquired within the wait timeout.
	ErrLockTimeout = errors.New("lock wait timeout")

	// ErrLockLost means the lease expired before Release and another holder may own the key.
	ErrLockLost = errors.New("lock lost before release")
)

type Lock interface {
	Key() string
	Release(ctx context.Context) error
}

type Locker interface {
	// Acquire blocks up to wait for an exclusive lease on key
	Acquire(ctx context.Context, key string, wait, lease time.Duration) (Lock, error)
}
