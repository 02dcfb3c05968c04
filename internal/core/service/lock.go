package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nayoon/stock-service/internal/port"
)

const releaseTimeout = 3 * time.Second

func LockKey(productID int64) string {
	return fmt.Sprintf("stock:productId:%d", productID)
}

// withProductLock runs fn while holding the product's exclusive lock. Nothing
// runs when acquisition fails, and the lock is released on every return path.
func (s *StockService) withProductLock(ctx context.Context, productID int64, fn func(ctx context.Context) error) error {
	key := LockKey(productID)

	start := time.Now()
	lock, err := s.locker.Acquire(ctx, key, s.opts.LockWait, s.opts.LockLease)
	s.metrics.ObserveLockWait(time.Since(start), err == nil)
	if err != nil {
		if errors.Is(err, port.ErrLockTimeout) {
			return fmt.Errorf("%w: product %d: %w", ErrLockUnavailable, productID, err)
		}
		return fmt.Errorf("%w: acquire lock: %w", ErrDependencyFailure, err)
	}

	held := time.Now()
	defer func() {
		// detached so a cancelled caller still releases
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
		defer cancel()

		elapsed := time.Since(held)
		if err := lock.Release(releaseCtx); err != nil {
			s.logger.Warn("release stock lock",
				zap.String("key", key),
				zap.Duration("held", elapsed),
				zap.Error(err))
			return
		}
		if elapsed > s.opts.LockLease {
			s.logger.Warn("critical section outlived lock lease",
				zap.String("key", key),
				zap.Duration("held", elapsed),
				zap.Duration("lease", s.opts.LockLease))
		}
	}()

	return fn(ctx)
}
