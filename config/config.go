package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"gambler/wagering/database"

	"github.com/shopspring/decimal"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// NATS configuration
	NATSServers string // NATS server addresses (comma-separated), empty runs with the in-process bus

	// Settlement configuration
	FeeRate               decimal.Decimal // Platform commission taken from winnings
	MoneyScale            int32           // Decimal places kept for every monetary amount
	AllowOffersInProgress bool            // Whether order-book offers stay open once a bet is in progress
	MaxTxRetries          int             // Retries on per-bet lock contention before surfacing a conflict

	// Result feed configuration
	SystemActorID int64 // Actor ID recorded in the audit log for result-feed driven transitions

	// OpenTelemetry configuration
	OTelEnabled              bool
	OTelServiceName          string
	OTelExporterType         string // "console", "otlp" or "none"
	OTelOTLPEndpoint         string
	OTelExportIntervalMillis int

	// Logging
	LogLevel string

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		NATSServers: os.Getenv("NATS_SERVERS"),

		FeeRate:      decimal.RequireFromString("0.01"),
		MoneyScale:   8,
		MaxTxRetries: 3,

		SystemActorID: 0,

		OTelEnabled:              os.Getenv("OTEL_ENABLED") == "true",
		OTelServiceName:          getEnvWithDefault("OTEL_SERVICE_NAME", "wagering-engine"),
		OTelExporterType:         getEnvWithDefault("OTEL_EXPORTER_TYPE", "none"),
		OTelOTLPEndpoint:         getEnvWithDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "otel-collector:4317"),
		OTelExportIntervalMillis: 15000,

		LogLevel: getEnvWithDefault("LOG_LEVEL", "info"),

		Environment: os.Getenv("ENVIRONMENT"),
	}

	if fee := os.Getenv("FEE_RATE"); fee != "" {
		parsed, err := decimal.NewFromString(fee)
		if err != nil {
			return nil, fmt.Errorf("invalid FEE_RATE %q: %w", fee, err)
		}
		config.FeeRate = parsed
	}
	if scale := os.Getenv("MONEY_SCALE"); scale != "" {
		parsed, err := strconv.ParseInt(scale, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid MONEY_SCALE %q: %w", scale, err)
		}
		config.MoneyScale = int32(parsed)
	}
	if allow := os.Getenv("ALLOW_OFFERS_IN_PROGRESS"); allow != "" {
		parsed, err := strconv.ParseBool(allow)
		if err != nil {
			return nil, fmt.Errorf("invalid ALLOW_OFFERS_IN_PROGRESS %q: %w", allow, err)
		}
		config.AllowOffersInProgress = parsed
	}
	if retries := os.Getenv("MAX_TX_RETRIES"); retries != "" {
		if parsed, err := strconv.Atoi(retries); err == nil {
			config.MaxTxRetries = parsed
		}
	}
	if actor := os.Getenv("SYSTEM_ACTOR_ID"); actor != "" {
		if parsed, err := strconv.ParseInt(actor, 10, 64); err == nil {
			config.SystemActorID = parsed
		}
	}
	if interval := os.Getenv("OTEL_EXPORT_INTERVAL_MILLIS"); interval != "" {
		if parsed, err := strconv.Atoi(interval); err == nil {
			config.OTelExportIntervalMillis = parsed
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the settlement parameters and required connection settings
func (c *Config) Validate() error {
	if c.FeeRate.IsNegative() || c.FeeRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("FEE_RATE must be in [0, 1), got %s", c.FeeRate)
	}
	if c.MoneyScale < 0 || c.MoneyScale > 18 {
		return fmt.Errorf("MONEY_SCALE must be between 0 and 18, got %d", c.MoneyScale)
	}
	if c.MaxTxRetries < 0 {
		return fmt.Errorf("MAX_TX_RETRIES cannot be negative")
	}
	if c.Environment != "test" {
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required")
		}
		if c.DatabaseName != "" && strings.TrimSpace(c.DatabaseName) == "" {
			return fmt.Errorf("DATABASE_NAME cannot be empty when provided")
		}
	}
	return nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:      "test",
		FeeRate:          decimal.RequireFromString("0.01"),
		MoneyScale:       8,
		MaxTxRetries:     3,
		OTelExporterType: "none",
		LogLevel:         "info",
	}
}
