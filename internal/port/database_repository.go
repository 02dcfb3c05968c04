package port

import (
	"context"

	"github.com/nayoon/stock-service/internal/core/domain"
)

type StockLedger interface {
	// ExistsByProduct reports whether a ledger entry exists for the product
	ExistsByProduct(ctx context.Context, productID int64) (bool, error)

	// FindByProduct returns the entry, or nil when the product is unknown
	FindByProduct(ctx context.Context, productID int64) (*domain.Stock, error)

	// Save inserts a new entry (ID == 0) or updates an existing one with version check
	Save(ctx context.Context, stock *domain.Stock) error
}
