package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nayoon/stock-service/internal/adapter/client"
	"github.com/nayoon/stock-service/internal/adapter/storage"
	"github.com/nayoon/stock-service/internal/core/service"
)

func main() {
	redisAddr := flag.String("redis", "localhost:6379", "redis address")
	productID := flag.Int64("product", 9001, "product id to stress")
	initialStock := flag.Int("stock", 20, "initial stock")
	totalRequests := flag.Int("requests", 50, "concurrent decrease requests")
	flag.Parse()

	ctx := context.Background()

	// Initialize Redis
	rdb := redis.NewClient(&redis.Options{Addr: *redisAddr, PoolSize: *totalRequests})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}
	defer rdb.Close()

	// Clear previous test data
	rdb.Del(ctx, storage.StockKey(*productID), service.LockKey(*productID))

	// In-memory ledger
	db, err := sql.Open(storage.DriverSQLite, ":memory:")
	if err != nil {
		log.Fatalf("failed to open ledger: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	ledger := storage.NewSQLAdapter(db, storage.DriverSQLite)
	if err := ledger.Migrate(ctx); err != nil {
		log.Fatalf("failed to migrate ledger: %v", err)
	}

	opts := service.DefaultOptions()
	opts.LockWait = 30 * time.Second

	stockService := service.NewStockService(service.Dependencies{
		Ledger:    ledger,
		Cache:     storage.NewRedisAdapter(rdb),
		Purchases: client.NewFixedPurchaseClient(0),
		Locker:    storage.NewRedisLocker(rdb, 5*time.Millisecond),
		Logger:    zap.NewNop(),
	}, opts)

	if _, err := stockService.CreateOrUpdate(ctx, *productID, *initialStock); err != nil {
		log.Fatalf("failed to create stock: %v", err)
	}

	// Counters
	var successCount, soldOutCount, errorCount atomic.Int32

	// Spawn concurrent requests
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < *totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			err := stockService.DecreaseRemaining(ctx, *productID, 1)
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, service.ErrInsufficientStock):
				soldOutCount.Add(1)
			default:
				errorCount.Add(1)
				log.Printf("decrease failed: %v", err)
			}
		}()
	}

	wg.Wait()
	elapsed := time.Since(start)

	// Results
	success := int(successCount.Load())
	soldOut := int(soldOutCount.Load())
	failed := int(errorCount.Load())

	expectedSuccess := min(*initialStock, *totalRequests)

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Initial Stock:    %d\n", *initialStock)
	fmt.Printf("Total Requests:   %d\n", *totalRequests)
	fmt.Printf("Successful:       %d\n", success)
	fmt.Printf("Sold out:         %d\n", soldOut)
	fmt.Printf("Errors:           %d\n", failed)
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	if success == expectedSuccess && soldOut == *totalRequests-expectedSuccess {
		fmt.Printf("PASS: exactly %d decreases succeeded, %d sold out\n", success, soldOut)
	} else {
		fmt.Printf("FAIL: expected %d success/%d sold out, got %d/%d\n",
			expectedSuccess, *totalRequests-expectedSuccess, success, soldOut)
	}

	// Verify final remaining stock
	remaining, err := stockService.GetRemaining(ctx, *productID)
	if err != nil {
		log.Fatalf("failed to read remaining stock: %v", err)
	}
	fmt.Printf("Final remaining:  %d\n", remaining)

	if remaining == *initialStock-expectedSuccess {
		fmt.Println("PASS: remaining stock matches successful decreases")
	} else {
		fmt.Printf("FAIL: expected remaining %d, got %d\n", *initialStock-expectedSuccess, remaining)
	}
}
