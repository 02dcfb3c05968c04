package handler

import (
	"context"
	"sync"
)

type adjustCall struct {
	productID int64
	quantity  int
}

type fakeStockService struct {
	mu        sync.Mutex
	remaining map[int64]int
	err       error
	increases []adjustCall
	decreases []adjustCall
}

func newFakeStockService() *fakeStockService {
	return &fakeStockService{remaining: make(map[int64]int)}
}

func (f *fakeStockService) CreateOrUpdate(ctx context.Context, productID int64, initialStock int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.remaining[productID] = initialStock
	return initialStock, nil
}

func (f *fakeStockService) GetRemaining(ctx context.Context, productID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	return f.remaining[productID], nil
}

func (f *fakeStockService) IncreaseRemaining(ctx context.Context, productID int64, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.increases = append(f.increases, adjustCall{productID, quantity})
	f.remaining[productID] += quantity
	return nil
}

func (f *fakeStockService) DecreaseRemaining(ctx context.Context, productID int64, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.decreases = append(f.decreases, adjustCall{productID, quantity})
	f.remaining[productID] -= quantity
	return nil
}
