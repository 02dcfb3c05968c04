// Package client holds outbound adapters to services the stock service
// depends on.
package client

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/nayoon/stock-service/internal/adapter/rpc"
)

const defaultPurchaseTimeout = 3 * time.Second

// PurchaseGRPCClient asks the purchase service how many units of a product are
// committed in its pipeline. One connection is shared by all calls.
type PurchaseGRPCClient struct {
	conn    *grpc.ClientConn
	client  *rpc.PurchaseServiceClient
	timeout time.Duration
}

func NewPurchaseGRPCClient(addr string, timeout time.Duration, opts ...grpc.DialOption) (*PurchaseGRPCClient, error) {
	if timeout <= 0 {
		timeout = defaultPurchaseTimeout
	}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}, opts...)

	conn, err := grpc.NewClient(addr, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("connect purchase service %s: %w", addr, err)
	}

	return &PurchaseGRPCClient{
		conn:    conn,
		client:  rpc.NewPurchaseServiceClient(conn),
		timeout: timeout,
	}, nil
}

func (c *PurchaseGRPCClient) QuantitySum(ctx context.Context, productID int64) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.GetQuantitySum(ctx, &rpc.QuantitySumRequest{ProductId: productID})
	if err != nil {
		return 0, fmt.Errorf("get quantity sum of product %d: %w", productID, err)
	}
	if resp.QuantitySum < 0 {
		return 0, fmt.Errorf("purchase service returned negative quantity sum %d for product %d",
			resp.QuantitySum, productID)
	}

	return int(resp.QuantitySum), nil
}

func (c *PurchaseGRPCClient) Close() error {
	return c.conn.Close()
}
