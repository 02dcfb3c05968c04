package client

import (
	"context"
	"sync/atomic"
)

// FixedPurchaseClient reports the same purchase quantity sum for every
// product. Used when no purchase service is configured.
type FixedPurchaseClient struct {
	sum atomic.Int64
}

func NewFixedPurchaseClient(sum int) *FixedPurchaseClient {
	c := &FixedPurchaseClient{}
	c.sum.Store(int64(sum))
	return c
}

func (c *FixedPurchaseClient) Set(sum int) {
	c.sum.Store(int64(sum))
}

func (c *FixedPurchaseClient) QuantitySum(ctx context.Context, productID int64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return int(c.sum.Load()), nil
}
