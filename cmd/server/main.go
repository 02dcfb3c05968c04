package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/nayoon/stock-service/internal/adapter/client"
	"github.com/nayoon/stock-service/internal/adapter/events"
	"github.com/nayoon/stock-service/internal/adapter/handler"
	"github.com/nayoon/stock-service/internal/adapter/rpc"
	"github.com/nayoon/stock-service/internal/adapter/storage"
	"github.com/nayoon/stock-service/internal/config"
	"github.com/nayoon/stock-service/internal/core/service"
	"github.com/nayoon/stock-service/internal/logger"
	"github.com/nayoon/stock-service/internal/metrics"
	"github.com/nayoon/stock-service/internal/port"
)

func main() {
	configPath := flag.String("config", os.Getenv("STOCK_CONFIG"), "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zl.Sync()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize ledger
	db, err := sql.Open(cfg.Ledger.Driver, cfg.Ledger.DSN)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Ledger.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Ledger.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Ledger.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping ledger: %w", err)
	}
	zl.Info("connected to ledger", zap.String("driver", cfg.Ledger.Driver))

	ledger := storage.NewSQLAdapter(db, cfg.Ledger.Driver)
	if cfg.Ledger.AutoMigrate {
		if err := ledger.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate ledger: %w", err)
		}
	}

	// Initialize Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	zl.Info("connected to redis", zap.String("addr", cfg.Redis.Addr))

	// Purchase pipeline
	var purchases port.PurchaseClient
	if cfg.Purchase.Addr == "" {
		zl.Warn("no purchase service configured, assuming an empty purchase pipeline")
		purchases = client.NewFixedPurchaseClient(0)
	} else {
		purchaseClient, err := client.NewPurchaseGRPCClient(cfg.Purchase.Addr, cfg.Purchase.Timeout)
		if err != nil {
			return err
		}
		defer purchaseClient.Close()
		purchases = purchaseClient
	}

	// Event publishing
	var publisher port.EventPublisher
	if cfg.Kafka.Enabled {
		producer := events.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, zl)
		defer producer.Close()
		publisher = producer
		zl.Info("publishing stock events", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	stockService := service.NewStockService(service.Dependencies{
		Ledger:    ledger,
		Cache:     storage.NewRedisAdapter(rdb),
		Purchases: purchases,
		Locker:    storage.NewRedisLocker(rdb, cfg.Stock.LockRetryInterval),
		Publisher: publisher,
		Metrics:   metrics.New(reg),
		Logger:    zl,
	}, service.Options{
		CacheTTL:  cfg.Stock.CacheTTL,
		LockWait:  cfg.Stock.LockWait,
		LockLease: cfg.Stock.LockLease,
	})

	// Initialize gRPC server
	grpcServer := grpc.NewServer()
	rpc.RegisterStockServiceServer(grpcServer, handler.NewGRPCHandler(stockService, zl))

	grpcAddr := fmt.Sprintf(":%d", cfg.Server.GRPCPort)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", grpcAddr, err)
	}

	errCh := make(chan error, 2)
	go func() {
		zl.Info("gRPC server listening", zap.String("addr", grpcAddr))
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	// Initialize HTTP server
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handler.NewRouter(handler.NewHTTPHandler(stockService, zl), reg)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		zl.Info("HTTP server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var serveErr error
	select {
	case sig := <-quit:
		zl.Info("shutting down", zap.String("signal", sig.String()))
	case serveErr = <-errCh:
		zl.Error("server failed, shutting down", zap.Error(serveErr))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zl.Warn("HTTP server shutdown", zap.Error(err))
	}
	zl.Info("HTTP server stopped")

	grpcServer.GracefulStop()
	zl.Info("gRPC server stopped")

	return serveErr
}
