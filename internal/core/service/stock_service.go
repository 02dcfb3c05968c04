package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/nayoon/stock-service/internal/core/domain"
	"github.com/nayoon/stock-service/internal/metrics"
	"github.com/nayoon/stock-service/internal/port"
)

// An entry can expire between validation and adjustment; the second attempt
// runs against a freshly reconciled entry with a full TTL.
const maxAdjustAttempts = 2

// Baselines and quantities travel as int32 over gRPC and are stored in an INT column.
const maxStock = math.MaxInt32

type Options struct {
	CacheTTL  time.Duration
	LockWait  time.Duration
	LockLease time.Duration
}

func DefaultOptions() Options {
	return Options{
		CacheTTL:  5 * time.Minute,
		LockWait:  100 * time.Second,
		LockLease: 10 * time.Second,
	}
}

// Dependencies of StockService. Publisher, Metrics and Logger are optional.
type Dependencies struct {
	Ledger    port.StockLedger
	Cache     port.StockCache
	Purchases port.PurchaseClient
	Locker    port.Locker
	Publisher port.EventPublisher
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
}

// StockService keeps the cached remaining stock of each product consistent
// with its ledger baseline and the purchase pipeline.
type StockService struct {
	ledger    port.StockLedger
	cache     port.StockCache
	purchases port.PurchaseClient
	locker    port.Locker
	publisher port.EventPublisher
	metrics   *metrics.Metrics
	logger    *zap.Logger
	opts      Options
}

func NewStockService(deps Dependencies, opts Options) *StockService {
	s := &StockService{
		ledger:    deps.Ledger,
		cache:     deps.Cache,
		purchases: deps.Purchases,
		locker:    deps.Locker,
		publisher: deps.Publisher,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
		opts:      opts,
	}
	if s.publisher == nil {
		s.publisher = nopPublisher{}
	}
	if s.metrics == nil {
		s.metrics = metrics.New(nil)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// CreateOrUpdate declares the product's baseline and returns the resulting
// remaining stock. An update is rejected when the purchase pipeline already
// holds more than the new baseline.
func (s *StockService) CreateOrUpdate(ctx context.Context, productID int64, initialStock int) (remaining int, err error) {
	defer func() { s.metrics.ObserveOperation("create_or_update", err) }()

	if initialStock < 0 {
		return 0, fmt.Errorf("%w: %d is negative", ErrInvalidBaseline, initialStock)
	}
	if initialStock > maxStock {
		return 0, fmt.Errorf("%w: %d exceeds %d", ErrInvalidBaseline, initialStock, maxStock)
	}

	op := domain.StockOperationCreate
	err = s.withProductLock(ctx, productID, func(ctx context.Context) error {
		exists, err := s.ledger.ExistsByProduct(ctx, productID)
		if err != nil {
			return s.dependencyError("check stock", productID, err)
		}

		if !exists {
			remaining, err = s.create(ctx, productID, initialStock)
			return err
		}

		op = domain.StockOperationUpdate
		remaining, err = s.update(ctx, productID, initialStock)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.publish(ctx, domain.NewStockChangedEvent(productID, op, initialStock, remaining))
	return remaining, nil
}

func (s *StockService) create(ctx context.Context, productID int64, initialStock int) (int, error) {
	stock := domain.NewStock(productID, initialStock)
	if err := s.ledger.Save(ctx, stock); err != nil {
		return 0, s.dependencyError("save stock", productID, err)
	}

	// a new product has nothing in the purchase pipeline yet
	if err := s.cache.Set(ctx, productID, initialStock, s.opts.CacheTTL); err != nil {
		return 0, s.dependencyError("cache remaining", productID, err)
	}

	s.logger.Info("stock created",
		zap.Int64("product_id", productID),
		zap.Int("initial_stock", initialStock))

	return initialStock, nil
}

func (s *StockService) update(ctx context.Context, productID int64, initialStock int) (int, error) {
	quantitySum, err := s.quantitySum(ctx, productID)
	if err != nil {
		return 0, err
	}

	if quantitySum > initialStock {
		return 0, fmt.Errorf("%w: %d is below the %d units already in purchase",
			ErrInvalidBaseline, initialStock, quantitySum)
	}

	stock, err := s.loadStock(ctx, productID)
	if err != nil {
		return 0, err
	}

	// invalidate first: any failure below leaves the entry absent and the
	// next read reconciles from the ledger
	if err := s.cache.Delete(ctx, productID); err != nil {
		return 0, s.dependencyError("invalidate remaining", productID, err)
	}

	previous := stock.InitialStock
	stock.UpdateInitialStock(initialStock)
	if err := s.ledger.Save(ctx, stock); err != nil {
		return 0, s.dependencyError("save stock", productID, err)
	}

	remaining := initialStock - quantitySum
	if err := s.cache.Set(ctx, productID, remaining, s.opts.CacheTTL); err != nil {
		return 0, s.dependencyError("cache remaining", productID, err)
	}

	s.logger.Info("stock updated",
		zap.Int64("product_id", productID),
		zap.Int("previous_initial_stock", previous),
		zap.Int("initial_stock", initialStock),
		zap.Int("quantity_sum", quantitySum),
		zap.Int("remaining", remaining))

	return remaining, nil
}

// GetRemaining serves the cached value without locking and reconciles from the
// ledger and the purchase pipeline when the entry is absent or expired.
func (s *StockService) GetRemaining(ctx context.Context, productID int64) (remaining int, err error) {
	defer func() { s.metrics.ObserveOperation("get", err) }()

	return s.current(ctx, productID, nil, false)
}

// IncreaseRemaining returns units to the remaining stock, e.g. after a cancelled
// purchase. Remaining stock may never exceed the baseline.
func (s *StockService) IncreaseRemaining(ctx context.Context, productID int64, quantity int) (err error) {
	defer func() { s.metrics.ObserveOperation("increase", err) }()

	if err := validateQuantity(quantity); err != nil {
		return err
	}

	var remaining int
	err = s.withProductLock(ctx, productID, func(ctx context.Context) error {
		stock, err := s.loadStock(ctx, productID)
		if err != nil {
			return err
		}

		remaining, err = s.adjust(ctx, productID, stock,
			func(current int) error {
				if stock.InitialStock < current+quantity {
					return fmt.Errorf("%w: %d + %d > %d",
						ErrLimitExceeded, current, quantity, stock.InitialStock)
				}
				return nil
			},
			func(ctx context.Context) (int, error) {
				return s.cache.IncrementBy(ctx, productID, quantity)
			})
		return err
	})
	if err != nil {
		return err
	}

	s.logger.Debug("remaining stock increased",
		zap.Int64("product_id", productID),
		zap.Int("quantity", quantity),
		zap.Int("remaining", remaining))
	s.publish(ctx, domain.NewStockChangedEvent(productID, domain.StockOperationIncrease, quantity, remaining))
	return nil
}

// DecreaseRemaining takes units from the remaining stock.
func (s *StockService) DecreaseRemaining(ctx context.Context, productID int64, quantity int) (err error) {
	defer func() { s.metrics.ObserveOperation("decrease", err) }()

	if err := validateQuantity(quantity); err != nil {
		return err
	}

	var remaining int
	err = s.withProductLock(ctx, productID, func(ctx context.Context) error {
		var err error
		remaining, err = s.adjust(ctx, productID, nil,
			func(current int) error {
				if current < quantity {
					return fmt.Errorf("%w: %d requested, %d remaining",
						ErrInsufficientStock, quantity, current)
				}
				return nil
			},
			func(ctx context.Context) (int, error) {
				return s.cache.DecrementBy(ctx, productID, quantity)
			})
		return err
	})
	if err != nil {
		return err
	}

	s.logger.Debug("remaining stock decreased",
		zap.Int64("product_id", productID),
		zap.Int("quantity", quantity),
		zap.Int("remaining", remaining))
	s.publish(ctx, domain.NewStockChangedEvent(productID, domain.StockOperationDecrease, quantity, remaining))
	return nil
}

// adjust validates the current remaining stock and applies the cache
// adjustment. Must be called with the product lock held.
func (s *StockService) adjust(
	ctx context.Context,
	productID int64,
	stock *domain.Stock,
	validate func(current int) error,
	apply func(ctx context.Context) (int, error),
) (int, error) {
	for attempt := 1; ; attempt++ {
		current, err := s.current(ctx, productID, stock, true)
		if err != nil {
			return 0, err
		}

		if err := validate(current); err != nil {
			return 0, err
		}

		remaining, err := apply(ctx)
		if errors.Is(err, port.ErrCacheMiss) && attempt < maxAdjustAttempts {
			s.logger.Debug("remaining stock expired during adjustment",
				zap.Int64("product_id", productID))
			continue
		}
		if err != nil {
			return 0, s.dependencyError("adjust remaining", productID, err)
		}

		return remaining, nil
	}
}

// current returns the cached remaining stock or reconciles it. stock may be nil.
// locked reports whether the caller holds the product lock.
func (s *StockService) current(ctx context.Context, productID int64, stock *domain.Stock, locked bool) (int, error) {
	remaining, found, err := s.cache.Get(ctx, productID)
	if err != nil {
		return 0, s.dependencyError("read remaining", productID, err)
	}
	if found {
		s.metrics.CacheHit()
		return remaining, nil
	}

	s.metrics.CacheMiss()
	return s.reconcile(ctx, productID, stock, locked)
}

// reconcile recomputes remaining = initial stock - purchase pipeline sum and
// caches it with a fresh TTL. Without the lock it only populates an absent
// entry, so a value computed before a locked mutation never overwrites it.
func (s *StockService) reconcile(ctx context.Context, productID int64, stock *domain.Stock, locked bool) (int, error) {
	if stock == nil {
		var err error
		if stock, err = s.loadStock(ctx, productID); err != nil {
			return 0, err
		}
	}

	quantitySum, err := s.quantitySum(ctx, productID)
	if err != nil {
		return 0, err
	}

	remaining := stock.InitialStock - quantitySum
	if remaining < 0 {
		s.logger.Warn("purchase pipeline exceeds initial stock",
			zap.Int64("product_id", productID),
			zap.Int("initial_stock", stock.InitialStock),
			zap.Int("quantity_sum", quantitySum))
	}

	if locked {
		if err := s.cache.Set(ctx, productID, remaining, s.opts.CacheTTL); err != nil {
			return 0, s.dependencyError("cache remaining", productID, err)
		}
		return remaining, nil
	}

	stored, err := s.cache.SetIfAbsent(ctx, productID, remaining, s.opts.CacheTTL)
	if err != nil {
		return 0, s.dependencyError("cache remaining", productID, err)
	}
	if stored {
		return remaining, nil
	}

	winner, found, err := s.cache.Get(ctx, productID)
	if err != nil {
		return 0, s.dependencyError("read remaining", productID, err)
	}
	if !found {
		return remaining, nil
	}

	return winner, nil
}

func (s *StockService) loadStock(ctx context.Context, productID int64) (*domain.Stock, error) {
	stock, err := s.ledger.FindByProduct(ctx, productID)
	if err != nil {
		return nil, s.dependencyError("load stock", productID, err)
	}
	if stock == nil {
		return nil, fmt.Errorf("%w: product %d", ErrStockNotFound, productID)
	}

	return stock, nil
}

func (s *StockService) quantitySum(ctx context.Context, productID int64) (int, error) {
	sum, err := s.purchases.QuantitySum(ctx, productID)
	if err != nil {
		return 0, s.dependencyError("purchase quantity sum", productID, err)
	}
	if sum < 0 {
		return 0, s.dependencyError("purchase quantity sum", productID,
			fmt.Errorf("negative sum %d", sum))
	}

	return sum, nil
}

func validateQuantity(quantity int) error {
	if quantity <= 0 || quantity > maxStock {
		return fmt.Errorf("%w: %d", ErrInvalidQuantity, quantity)
	}
	return nil
}

func (s *StockService) dependencyError(action string, productID int64, err error) error {
	s.logger.Error(action+" failed",
		zap.Int64("product_id", productID),
		zap.Error(err))
	return fmt.Errorf("%w: %s: %w", ErrDependencyFailure, action, err)
}

func (s *StockService) publish(ctx context.Context, event domain.StockChangedEvent) {
	if err := s.publisher.PublishStockChanged(ctx, event); err != nil {
		s.metrics.PublishFailed()
		s.logger.Warn("publish stock event",
			zap.Int64("product_id", event.ProductID),
			zap.String("event_id", event.EventID),
			zap.Error(err))
	}
}

type nopPublisher struct{}

func (nopPublisher) PublishStockChanged(context.Context, domain.StockChangedEvent) error {
	return nil
}
