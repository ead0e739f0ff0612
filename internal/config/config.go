// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Store backends accepted by STORE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendDynamoDB = "dynamodb"
)

// =============================================================================
// Consumer Config Interfaces
// =============================================================================

// SourceConfig provides settings for the remote catalog client.
type SourceConfig interface {
	GetCatalogAPIURL() string
	GetCatalogRPS() int
	GetCatalogMaxRetries() int
	GetCatalogTimeout() time.Duration
}

// InlinerConfig provides settings for image inlining and its cache.
type InlinerConfig interface {
	GetImageConcurrency() int
	GetImageCacheTTL() time.Duration
	GetImageCacheMaxEntries() int
}

// StoreConfig provides settings for the local store backend.
type StoreConfig interface {
	GetStoreBackend() string
	GetDatabaseURL() string
	GetRedisURL() string
	GetDynamoTable() string
	GetAWSRegion() string
}

// SessionConfig provides settings for the session owner.
type SessionConfig interface {
	GetSessionSecret() string
	GetSessionTTL() time.Duration
	IsDemoMode() bool
	GetDemoUsername() string
	GetDemoPasswordHash() string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                  string
	HTTPAddr             string
	CatalogAPIURL        string
	CatalogRPS           int
	CatalogMaxRetries    int
	CatalogTimeout       time.Duration
	CatalogLocale        string
	PriceCeiling         decimal.Decimal
	ImageConcurrency     int
	ImageCacheTTL        time.Duration
	ImageCacheMaxEntries int
	StoreBackend         string
	DatabaseURL          string
	RedisURL             string
	DynamoTable          string
	AWSRegion            string
	KafkaBrokers         []string
	KafkaTopic           string
	KafkaGroup           string
	SessionSecret        string
	SessionTTL           time.Duration
	DemoMode             bool
	DemoUsername         string
	DemoPasswordHash     string
	ExportDir            string
	SMTPHost             string
	SMTPPort             int
	SMTPFrom             string
	AlertEmail           string
}

func (c *Config) GetCatalogAPIURL() string         { return c.CatalogAPIURL }
func (c *Config) GetCatalogRPS() int               { return c.CatalogRPS }
func (c *Config) GetCatalogMaxRetries() int        { return c.CatalogMaxRetries }
func (c *Config) GetCatalogTimeout() time.Duration { return c.CatalogTimeout }

func (c *Config) GetImageConcurrency() int        { return c.ImageConcurrency }
func (c *Config) GetImageCacheTTL() time.Duration { return c.ImageCacheTTL }
func (c *Config) GetImageCacheMaxEntries() int    { return c.ImageCacheMaxEntries }

func (c *Config) GetStoreBackend() string { return c.StoreBackend }
func (c *Config) GetDatabaseURL() string  { return c.DatabaseURL }
func (c *Config) GetRedisURL() string     { return c.RedisURL }
func (c *Config) GetDynamoTable() string  { return c.DynamoTable }
func (c *Config) GetAWSRegion() string    { return c.AWSRegion }

func (c *Config) GetSessionSecret() string      { return c.SessionSecret }
func (c *Config) GetSessionTTL() time.Duration  { return c.SessionTTL }
func (c *Config) IsDemoMode() bool              { return c.DemoMode }
func (c *Config) GetDemoUsername() string       { return c.DemoUsername }
func (c *Config) GetDemoPasswordHash() string   { return c.DemoPasswordHash }
func (c *Config) IsKafkaEnabled() bool          { return len(c.KafkaBrokers) > 0 }
func (c *Config) IsDevelopment() bool           { return strings.EqualFold(c.Env, "development") }

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	ceiling, err := decimal.NewFromString(getEnv("PRICE_CEILING", "2000"))
	if err != nil {
		return nil, fmt.Errorf("PRICE_CEILING: %w", err)
	}

	cfg := &Config{
		Env:                  getEnv("APP_ENV", "development"),
		HTTPAddr:             getEnv("HTTP_ADDR", ":8080"),
		CatalogAPIURL:        strings.TrimRight(getEnv("CATALOG_API_URL", "https://fakestoreapi.com"), "/"),
		CatalogRPS:           mustInt(getEnv("CATALOG_RPS", "5")),
		CatalogMaxRetries:    mustInt(getEnv("CATALOG_MAX_RETRIES", "2")),
		CatalogTimeout:       mustDuration(getEnv("CATALOG_TIMEOUT", "15s")),
		CatalogLocale:        getEnv("CATALOG_LOCALE", "es"),
		PriceCeiling:         ceiling,
		ImageConcurrency:     mustInt(getEnv("IMAGE_CONCURRENCY", "8")),
		ImageCacheTTL:        mustDuration(getEnv("IMAGE_CACHE_TTL", "24h")),
		ImageCacheMaxEntries: mustInt(getEnv("IMAGE_CACHE_MAX_ENTRIES", "500")),
		StoreBackend:         strings.ToLower(getEnv("STORE_BACKEND", BackendMemory)),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		RedisURL:             getEnv("REDIS_URL", ""),
		DynamoTable:          getEnv("DYNAMODB_TABLE", "catalog-local-store"),
		AWSRegion:            getEnv("AWS_REGION", "us-east-1"),
		KafkaBrokers:         splitCSV(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:           getEnv("KAFKA_TOPIC", "catalog-events"),
		KafkaGroup:           getEnv("KAFKA_CONSUMER_GROUP", "catalog-notifier"),
		SessionSecret:        getEnv("SESSION_SECRET", ""),
		SessionTTL:           mustDuration(getEnv("SESSION_TTL", "12h")),
		DemoMode:             strings.EqualFold(getEnv("DEMO_MODE", "false"), "true"),
		DemoUsername:         getEnv("DEMO_USERNAME", ""),
		DemoPasswordHash:     getEnv("DEMO_PASSWORD_HASH", ""),
		ExportDir:            getEnv("EXPORT_DIR", "."),
		SMTPHost:             getEnv("SMTP_HOST", "localhost"),
		SMTPPort:             mustInt(getEnv("SMTP_PORT", "1025")),
		SMTPFrom:             getEnv("SMTP_FROM", "noreply@example.com"),
		AlertEmail:           getEnv("ALERT_EMAIL", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendMemory:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_BACKEND is postgres")
		}
	case BackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when STORE_BACKEND is redis")
		}
	case BackendDynamoDB:
		if c.DynamoTable == "" {
			return fmt.Errorf("DYNAMODB_TABLE is required when STORE_BACKEND is dynamodb")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}

	if c.CatalogRPS <= 0 {
		return fmt.Errorf("CATALOG_RPS must be positive")
	}
	if c.ImageConcurrency <= 0 {
		return fmt.Errorf("IMAGE_CONCURRENCY must be positive")
	}
	if c.PriceCeiling.IsNegative() {
		return fmt.Errorf("PRICE_CEILING must not be negative")
	}

	if c.DemoMode {
		if c.DemoUsername == "" || c.DemoPasswordHash == "" {
			return fmt.Errorf("DEMO_USERNAME and DEMO_PASSWORD_HASH are required when DEMO_MODE is true")
		}
		if len(c.SessionSecret) < 32 {
			return fmt.Errorf("SESSION_SECRET must be at least 32 characters when DEMO_MODE is true")
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return n
}

func splitCSV(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
