package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Ledger   LedgerConfig   `mapstructure:"ledger"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Stock    StockConfig    `mapstructure:"stock"`
	Purchase PurchaseConfig `mapstructure:"purchase"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	HTTPPort        int           `mapstructure:"http_port"`
	GRPCPort        int           `mapstructure:"grpc_port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LedgerConfig struct {
	Driver          string        `mapstructure:"driver"` // mysql | sqlite3
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// StockConfig holds the coordinator tuning. LockLease must exceed the
// worst-case critical section or mutations run unsynchronized.
type StockConfig struct {
	CacheTTL          time.Duration `mapstructure:"cache_ttl"`
	LockWait          time.Duration `mapstructure:"lock_wait"`
	LockLease         time.Duration `mapstructure:"lock_lease"`
	LockRetryInterval time.Duration `mapstructure:"lock_retry_interval"`
}

type PurchaseConfig struct {
	Addr    string        `mapstructure:"addr"` // empty: fixed zero pipeline sum
	Timeout time.Duration `mapstructure:"timeout"`
}

type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.grpc_port", 50051)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)

	v.SetDefault("ledger.driver", "mysql")
	v.SetDefault("ledger.dsn", "root:root@tcp(localhost:3306)/stock?parseTime=true")
	v.SetDefault("ledger.max_open_conns", 50)
	v.SetDefault("ledger.max_idle_conns", 25)
	v.SetDefault("ledger.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("ledger.auto_migrate", false)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 100)

	v.SetDefault("stock.cache_ttl", 5*time.Minute)
	v.SetDefault("stock.lock_wait", 100*time.Second)
	v.SetDefault("stock.lock_lease", 10*time.Second)
	v.SetDefault("stock.lock_retry_interval", 50*time.Millisecond)

	v.SetDefault("purchase.addr", "")
	v.SetDefault("purchase.timeout", 3*time.Second)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "stock-events")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Load reads path (optional; empty skips the file) and applies STOCK_* env overrides,
// e.g. STOCK_REDIS_ADDR overrides redis.addr.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("STOCK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid http port: %d", c.Server.HTTPPort)
	}
	if c.Server.GRPCPort <= 0 || c.Server.GRPCPort > 65535 {
		return fmt.Errorf("invalid grpc port: %d", c.Server.GRPCPort)
	}

	switch c.Ledger.Driver {
	case "mysql", "sqlite3":
	default:
		return fmt.Errorf("unsupported ledger driver: %q", c.Ledger.Driver)
	}
	if c.Ledger.DSN == "" {
		return errors.New("ledger dsn is required")
	}

	if c.Redis.Addr == "" {
		return errors.New("redis addr is required")
	}

	if c.Stock.CacheTTL <= 0 {
		return errors.New("stock.cache_ttl must be positive")
	}
	if c.Stock.LockLease <= 0 {
		return errors.New("stock.lock_lease must be positive")
	}
	// a critical section may include a full purchase call plus ledger and cache I/O
	if c.Stock.LockLease <= c.Purchase.Timeout {
		return fmt.Errorf("stock.lock_lease (%s) must exceed purchase.timeout (%s)",
			c.Stock.LockLease, c.Purchase.Timeout)
	}
	if c.Stock.LockWait < 0 {
		return errors.New("stock.lock_wait must not be negative")
	}
	if c.Stock.LockRetryInterval <= 0 {
		return errors.New("stock.lock_retry_interval must be positive")
	}

	if c.Kafka.Enabled && (len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "") {
		return errors.New("kafka brokers and topic are required when kafka is enabled")
	}

	return nil
}
