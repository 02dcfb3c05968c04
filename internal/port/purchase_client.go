package port

import "context"

type PurchaseClient interface {
	// QuantitySum returns the quantity of the product currently in the purchase pipeline
	QuantitySum(ctx context.Context, productID int64) (int, error)
}
