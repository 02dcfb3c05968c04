package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/nayoon/stock-service/internal/core/domain"
	"github.com/nayoon/stock-service/internal/port"
)

// Mock StockLedger
type mockLedger struct {
	mu        sync.Mutex
	stocks    map[int64]domain.Stock
	nextID    int64
	findCalls int
	saveErr   error
}

func newMockLedger() *mockLedger {
	return &mockLedger{stocks: make(map[int64]domain.Stock)}
}

func (m *mockLedger) seed(productID int64, initialStock int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.stocks[productID] = domain.Stock{ID: m.nextID, ProductID: productID, InitialStock: initialStock}
}

func (m *mockLedger) initialStock(productID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stocks[productID].InitialStock
}

func (m *mockLedger) ExistsByProduct(ctx context.Context, productID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.stocks[productID]
	return ok, nil
}

func (m *mockLedger) FindByProduct(ctx context.Context, productID int64) (*domain.Stock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.findCalls++
	s, ok := m.stocks[productID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *mockLedger) Save(ctx context.Context, s *domain.Stock) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	if s.ID == 0 {
		m.nextID++
		s.ID = m.nextID
	}
	m.stocks[s.ProductID] = *s
	return nil
}

// Mock StockCache
type mockCache struct {
	mu       sync.Mutex
	values   map[int64]int
	ttls     map[int64]time.Duration
	missOnce bool // next adjustment finds the entry expired
	getErr   error
	setErr   error
	delErr   error
	deletes  int
}

func newMockCache() *mockCache {
	return &mockCache{
		values: make(map[int64]int),
		ttls:   make(map[int64]time.Duration),
	}
}

func (m *mockCache) value(productID int64) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[productID]
	return v, ok
}

func (m *mockCache) expire(productID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, productID)
}

func (m *mockCache) Set(ctx context.Context, productID int64, remaining int, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.values[productID] = remaining
	m.ttls[productID] = ttl
	return nil
}

func (m *mockCache) SetIfAbsent(ctx context.Context, productID int64, remaining int, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return false, m.setErr
	}
	if _, ok := m.values[productID]; ok {
		return false, nil
	}
	m.values[productID] = remaining
	m.ttls[productID] = ttl
	return true, nil
}

func (m *mockCache) Delete(ctx context.Context, productID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.delErr != nil {
		return m.delErr
	}
	m.deletes++
	delete(m.values, productID)
	return nil
}

func (m *mockCache) Get(ctx context.Context, productID int64) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return 0, false, m.getErr
	}
	v, ok := m.values[productID]
	return v, ok, nil
}

func (m *mockCache) Exists(ctx context.Context, productID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.values[productID]
	return ok, nil
}

func (m *mockCache) IncrementBy(ctx context.Context, productID int64, delta int) (int, error) {
	return m.adjust(productID, delta)
}

func (m *mockCache) DecrementBy(ctx context.Context, productID int64, delta int) (int, error) {
	return m.adjust(productID, -delta)
}

func (m *mockCache) adjust(productID int64, delta int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.missOnce {
		m.missOnce = false
		delete(m.values, productID)
		return 0, port.ErrCacheMiss
	}
	v, ok := m.values[productID]
	if !ok {
		return 0, port.ErrCacheMiss
	}
	m.values[productID] = v + delta
	return v + delta, nil
}

// Mock PurchaseClient
type mockPurchases struct {
	mu    sync.Mutex
	sums  map[int64]int
	err   error
	after func() // runs once the sum is computed, outside the mutex
}

func newMockPurchases() *mockPurchases {
	return &mockPurchases{sums: make(map[int64]int)}
}

func (m *mockPurchases) set(productID int64, sum int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sums[productID] = sum
}

func (m *mockPurchases) QuantitySum(ctx context.Context, productID int64) (int, error) {
	m.mu.Lock()
	if m.err != nil {
		m.mu.Unlock()
		return 0, m.err
	}
	sum := m.sums[productID]
	after := m.after
	m.mu.Unlock()

	if after != nil {
		after()
	}
	return sum, nil
}

// Mock Locker: one buffered channel per key
type mockLocker struct {
	mu       sync.Mutex
	slots    map[string]chan struct{}
	acquired int
	released int
	err      error
}

func newMockLocker() *mockLocker {
	return &mockLocker{slots: make(map[string]chan struct{})}
}

func (m *mockLocker) slot(key string) chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.slots[key]
	if !ok {
		ch = make(chan struct{}, 1)
		m.slots[key] = ch
	}
	return ch
}

func (m *mockLocker) counts() (acquired, released int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.acquired, m.released
}

func (m *mockLocker) Acquire(ctx context.Context, key string, wait, lease time.Duration) (port.Lock, error) {
	if m.err != nil {
		return nil, m.err
	}

	ch := m.slot(key)
	select {
	case ch <- struct{}{}:
		return m.granted(key, ch), nil
	default:
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case ch <- struct{}{}:
		return m.granted(key, ch), nil
	case <-timer.C:
		return nil, port.ErrLockTimeout
	case <-ctx.Done():
		return nil, errors.Join(port.ErrLockTimeout, ctx.Err())
	}
}

func (m *mockLocker) granted(key string, ch chan struct{}) *mockLock {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.acquired++
	return &mockLock{locker: m, key: key, ch: ch}
}

type mockLock struct {
	locker *mockLocker
	key    string
	ch     chan struct{}
}

func (l *mockLock) Key() string { return l.key }

func (l *mockLock) Release(ctx context.Context) error {
	<-l.ch
	l.locker.mu.Lock()
	l.locker.released++
	l.locker.mu.Unlock()
	return nil
}

// Mock EventPublisher
type mockPublisher struct {
	mu     sync.Mutex
	events []domain.StockChangedEvent
	err    error
}

func (m *mockPublisher) PublishStockChanged(ctx context.Context, event domain.StockChangedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, event)
	return nil
}

func (m *mockPublisher) published() []domain.StockChangedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.StockChangedEvent(nil), m.events...)
}

type testDeps struct {
	ledger    *mockLedger
	cache     *mockCache
	purchases *mockPurchases
	locker    *mockLocker
	publisher *mockPublisher
}

func newTestService(opts ...func(*Options)) (*StockService, *testDeps) {
	d := &testDeps{
		ledger:    newMockLedger(),
		cache:     newMockCache(),
		purchases: newMockPurchases(),
		locker:    newMockLocker(),
		publisher: &mockPublisher{},
	}

	o := DefaultOptions()
	o.LockWait = time.Second
	for _, fn := range opts {
		fn(&o)
	}

	svc := NewStockService(Dependencies{
		Ledger:    d.ledger,
		Cache:     d.cache,
		Purchases: d.purchases,
		Locker:    d.locker,
		Publisher: d.publisher,
	}, o)
	return svc, d
}
