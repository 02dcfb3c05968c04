package domain

import "time"

// Stock is the durable ledger entry holding a product's declared baseline.
type Stock struct {
	ID           int64
	ProductID    int64
	InitialStock int
	Version      int // optimistic locking
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func NewStock(productID int64, initialStock int) *Stock {
	now := time.Now()
	return &Stock{
		ProductID:    productID,
		InitialStock: initialStock,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// UpdateInitialStock redefines the baseline. ProductID never changes.
func (s *Stock) UpdateInitialStock(initialStock int) {
	s.InitialStock = initialStock
	s.UpdatedAt = time.Now()
}
