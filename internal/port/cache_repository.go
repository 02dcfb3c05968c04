package port

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by IncrementBy/DecrementBy when the entry is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

type StockCache interface {
	// Set stores the remaining stock for a product with a fresh TTL
	Set(ctx context.Context, productID int64, remaining int, ttl time.Duration) error

	// SetIfAbsent stores the remaining stock only when no entry exists and
	// reports whether it was stored
	SetIfAbsent(ctx context.Context, productID int64, remaining int, ttl time.Duration) (bool, error)

	// Delete removes the entry; deleting an absent entry is not an error
	Delete(ctx context.Context, productID int64) error

	// Get returns the cached remaining stock; found is false when absent or expired
	Get(ctx context.Context, productID int64) (remaining int, found bool, err error)

	// Exists reports whether an unexpired entry is present
	Exists(ctx context.Context, productID int64) (bool, error)

	// IncrementBy adds delta to an existing entry, keeping its TTL
	IncrementBy(ctx context.Context, productID int64, delta int) (int, error)

	// DecrementBy subtracts delta from an existing entry, keeping its TTL
	DecrementBy(ctx context.Context, productID int64, delta int) (int, error)
}
