// Package config provides configuration structures and validation for the investment ledger.
// Both binaries (api_gateway and ledger_worker) share one Config; each reads the sections it needs.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
)

// Config holds the complete application configuration. It is validated once during startup.
type Config struct {
	Application    ApplicationConfig
	Logging        LoggingConfig
	Server         ServerConfig
	Kafka          KafkaConfig
	Postgres       PostgresConfig
	MongoDB        MongoDBConfig
	Outbox         OutboxConfig
	WorkerPool     WorkerPoolConfig
	Ledger         LedgerConfig
	Auth           AuthConfig
	Pricing        PricingConfig
	Solana         SolanaConfig
	Reconciliation ReconciliationConfig
}

// ApplicationConfig contains general application configuration
type ApplicationConfig struct {
	Env     string
	Name    string
	Version string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port            int           // Port to listen on
	ShutdownTimeout time.Duration // Grace period for server shutdown
	ReadTimeout     time.Duration // Maximum duration for reading entire request
	WriteTimeout    time.Duration // Maximum duration for writing response
	IdleTimeout     time.Duration // Maximum duration to wait for next request
}

// KafkaConfig contains Kafka configuration
type KafkaConfig struct {
	Brokers           string
	InvestmentTopic   string // Topic carrying recorded-investment events
	NumPartitions     int
	ReplicationFactor int
	ConsumerGroup     string
	MinBytes          int
	MaxBytes          int
	MaxWait           time.Duration
	StartOffset       int64
	DLQTopic          string
}

// PostgresConfig contains PostgreSQL configuration
type PostgresConfig struct {
	URL             string
	MaxConns        int32
	MinConns        int32
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	MigrationsPath  string
}

// MongoDBConfig contains MongoDB configuration
type MongoDBConfig struct {
	URI             string
	Database        string
	Timeout         time.Duration
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
}

// OutboxConfig contains outbox pattern configuration
type OutboxConfig struct {
	PollingInterval  time.Duration
	BatchSize        int
	MaxRetryAttempts int
}

// WorkerPoolConfig bounds the number of concurrent investment transactions
type WorkerPoolConfig struct {
	Size        int // Maximum number of workers in the pool
	MaxBlocking int // Maximum number of callers queued for a worker; 0 means unbounded
}

// LedgerConfig contains the investment-recording rules and retry budget
type LedgerConfig struct {
	MinimumInvestment string        // Decimal string in currency units, e.g. "100" or "100.00"
	MaxTxAttempts     int           // Attempts for a transaction that hits a transient conflict
	TxTimeout         time.Duration // Deadline for a single attempt
	RetryBackoff      time.Duration // Linear backoff step between attempts
}

// AuthConfig contains session token configuration
type AuthConfig struct {
	JWTSecret string
	Issuer    string
	TokenTTL  time.Duration
}

// PricingConfig contains SOL/USD price lookup configuration
type PricingConfig struct {
	SolPriceURL      string
	FallbackSolPrice string
	Timeout          time.Duration
	CacheTTL         time.Duration
}

// SolanaConfig contains Solana JSON-RPC configuration
type SolanaConfig struct {
	RPCURL  string
	Timeout time.Duration
}

// ReconciliationConfig contains the out-of-band consistency check schedule
type ReconciliationConfig struct {
	Schedule string // Cron expression with a seconds field
}

// validate checks every value and reports all violations at once
func (c *Config) validate() error {
	var validationErrors []string

	// Server
	if c.Server.Port <= 0 {
		validationErrors = append(validationErrors, "SERVER_PORT must be greater than 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_SHUTDOWN_TIMEOUT must be greater than 0")
	}
	if c.Server.ReadTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_READ_TIMEOUT must be greater than 0")
	}
	if c.Server.WriteTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_WRITE_TIMEOUT must be greater than 0")
	}
	if c.Server.IdleTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_IDLE_TIMEOUT must be greater than 0")
	}

	// Kafka
	if len(c.Kafka.Brokers) == 0 {
		validationErrors = append(validationErrors, "KAFKA_BROKERS is required")
	}
	if c.Kafka.InvestmentTopic == "" {
		validationErrors = append(validationErrors, "KAFKA_INVESTMENT_TOPIC is required")
	}
	if c.Kafka.ConsumerGroup == "" {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_GROUP is required")
	}
	if c.Kafka.MinBytes <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MIN_BYTES must be greater than 0")
	}
	if c.Kafka.MaxBytes <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MAX_BYTES must be greater than 0")
	}
	if c.Kafka.MaxWait <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MAX_WAIT must be greater than 0")
	}
	if c.Kafka.DLQTopic == "" {
		validationErrors = append(validationErrors, "KAFKA_DLQ_TOPIC is required")
	}

	// PostgreSQL
	if c.Postgres.URL == "" {
		validationErrors = append(validationErrors, "POSTGRES_URL is required")
	}
	if c.Postgres.MaxConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONNS must be greater than 0")
	}
	if c.Postgres.MinConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MIN_CONNS must be greater than 0")
	}
	if c.Postgres.ConnMaxLifetime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_LIFETIME must be greater than 0")
	}
	if c.Postgres.ConnMaxIdleTime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_IDLE_TIME must be greater than 0")
	}

	// MongoDB
	if c.MongoDB.URI == "" {
		validationErrors = append(validationErrors, "MONGO_URI is required")
	}
	if c.MongoDB.Database == "" {
		validationErrors = append(validationErrors, "MONGO_DATABASE is required")
	}
	if c.MongoDB.Timeout <= 0 {
		validationErrors = append(validationErrors, "MONGO_TIMEOUT must be greater than 0")
	}
	if c.MongoDB.MaxPoolSize <= 0 {
		validationErrors = append(validationErrors, "MONGO_MAX_POOL_SIZE must be greater than 0")
	}
	if c.MongoDB.MinPoolSize <= 0 {
		validationErrors = append(validationErrors, "MONGO_MIN_POOL_SIZE must be greater than 0")
	}
	if c.MongoDB.MaxConnIdleTime <= 0 {
		validationErrors = append(validationErrors, "MONGO_MAX_CONN_IDLE_TIME must be greater than 0")
	}

	// Outbox
	if c.Outbox.PollingInterval <= 0 {
		validationErrors = append(validationErrors, "OUTBOX_POLLING_INTERVAL must be greater than 0")
	}
	if c.Outbox.BatchSize <= 0 {
		validationErrors = append(validationErrors, "OUTBOX_BATCH_SIZE must be greater than 0")
	}
	if c.Outbox.MaxRetryAttempts <= 0 {
		validationErrors = append(validationErrors, "OUTBOX_MAX_RETRY_ATTEMPTS must be greater than 0")
	}

	// WorkerPool
	if c.WorkerPool.Size <= 0 {
		validationErrors = append(validationErrors, "WORKER_POOL_SIZE must be greater than 0")
	}
	if c.WorkerPool.MaxBlocking < 0 {
		validationErrors = append(validationErrors, "WORKER_POOL_MAX_BLOCKING cannot be negative")
	}

	// Ledger
	minimum, err := decimal.NewFromString(c.Ledger.MinimumInvestment)
	if err != nil || !minimum.IsPositive() {
		validationErrors = append(validationErrors, "LEDGER_MINIMUM_INVESTMENT must be a positive decimal")
	} else if !minimum.Equal(minimum.Round(2)) {
		validationErrors = append(validationErrors, "LEDGER_MINIMUM_INVESTMENT cannot have more than 2 decimal places")
	}
	if c.Ledger.MaxTxAttempts <= 0 {
		validationErrors = append(validationErrors, "LEDGER_MAX_TX_ATTEMPTS must be greater than 0")
	}
	if c.Ledger.TxTimeout <= 0 {
		validationErrors = append(validationErrors, "LEDGER_TX_TIMEOUT must be greater than 0")
	}
	if c.Ledger.RetryBackoff < 0 {
		validationErrors = append(validationErrors, "LEDGER_RETRY_BACKOFF cannot be negative")
	}

	// Auth
	if c.Auth.JWTSecret == "" {
		validationErrors = append(validationErrors, "AUTH_JWT_SECRET is required")
	}
	if c.Auth.TokenTTL <= 0 {
		validationErrors = append(validationErrors, "AUTH_TOKEN_TTL must be greater than 0")
	}

	// Pricing
	if c.Pricing.SolPriceURL == "" {
		validationErrors = append(validationErrors, "PRICING_SOL_PRICE_URL is required")
	}
	if fallback, err := decimal.NewFromString(c.Pricing.FallbackSolPrice); err != nil || !fallback.IsPositive() {
		validationErrors = append(validationErrors, "PRICING_FALLBACK_SOL_PRICE must be a positive decimal")
	}
	if c.Pricing.Timeout <= 0 {
		validationErrors = append(validationErrors, "PRICING_TIMEOUT must be greater than 0")
	}

	// Solana
	if c.Solana.RPCURL == "" {
		validationErrors = append(validationErrors, "SOLANA_RPC_URL is required")
	}
	if c.Solana.Timeout <= 0 {
		validationErrors = append(validationErrors, "SOLANA_TIMEOUT must be greater than 0")
	}

	// Reconciliation
	if _, err := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow).Parse(c.Reconciliation.Schedule); err != nil {
		validationErrors = append(validationErrors, "RECONCILIATION_SCHEDULE must be a valid cron expression with seconds")
	}

	if len(validationErrors) > 0 {
		return errors.New(strings.Join(validationErrors, ", "))
	}

	return nil
}
