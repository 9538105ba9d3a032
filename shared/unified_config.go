package shared

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// UnifiedConfiguration holds all configuration parameters for the gateway
type UnifiedConfiguration struct {
	Upstream UpstreamConfig `json:"upstream"`
	Database DatabaseConfig `json:"database"`
	Cache    CacheConfig    `json:"cache"`
	Payment  PaymentConfig  `json:"payment"`
	Search   SearchConfig   `json:"search"`
	Logging  LoggingConfig  `json:"logging"`
}

// UpstreamConfig holds content API client configuration
type UpstreamConfig struct {
	BaseURL            string        `json:"base_url"`
	HTTPRequestTimeout time.Duration `json:"http_timeout"`
	MaxRetryAttempts   int           `json:"max_retries"`
	MaxFailureRate     float64       `json:"max_failure_rate"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	URL             string        `json:"-"`
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `json:"conn_max_idle_time"`
	PingTimeout     time.Duration `json:"ping_timeout"`
}

// CacheConfig holds cache configuration
type CacheConfig struct {
	DefaultTTL time.Duration `json:"default_ttl"`
	MaxSize    int           `json:"max_size"`
}

// PaymentConfig holds checkout configuration
type PaymentConfig struct {
	KeyID           string        `json:"key_id"`
	KeySecret       string        `json:"-"`
	Currency        string        `json:"currency"`
	CheckoutTimeout time.Duration `json:"checkout_timeout"`
}

// SearchConfig holds directory search configuration
type SearchConfig struct {
	Debounce time.Duration `json:"debounce"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level       string `json:"level"`
	Format      string `json:"format"`
	ServiceName string `json:"service_name"`
}

// NewDefaultUnifiedConfiguration returns production-ready default configuration
func NewDefaultUnifiedConfiguration() *UnifiedConfiguration {
	return &UnifiedConfiguration{
		Upstream: UpstreamConfig{
			BaseURL:            "http://localhost:4000/api",
			HTTPRequestTimeout: 15 * time.Second,
			MaxRetryAttempts:   2,
			MaxFailureRate:     0.5,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
			ConnMaxIdleTime: 5 * time.Minute,
			PingTimeout:     5 * time.Second,
		},
		Cache: CacheConfig{
			DefaultTTL: 10 * time.Minute,
			MaxSize:    1000,
		},
		Payment: PaymentConfig{
			Currency:        "INR",
			CheckoutTimeout: 15 * time.Minute,
		},
		Search: SearchConfig{
			Debounce: MinimumDebounceDelay,
		},
		Logging: LoggingConfig{
			Level:       "info",
			Format:      "text",
			ServiceName: "counsel-gateway",
		},
	}
}

// ValidateAndApplyDefaults validates configuration and applies defaults for invalid values
func (c *UnifiedConfiguration) ValidateAndApplyDefaults() {
	logger := logrus.WithField("component", "UnifiedConfiguration")
	defaults := NewDefaultUnifiedConfiguration()

	if c.Upstream.BaseURL == "" {
		c.Upstream.BaseURL = defaults.Upstream.BaseURL
		logger.Debug("Applied default Upstream.BaseURL")
	}
	if c.Upstream.HTTPRequestTimeout <= 0 {
		c.Upstream.HTTPRequestTimeout = defaults.Upstream.HTTPRequestTimeout
		logger.Debug("Applied default Upstream.HTTPRequestTimeout")
	}
	if c.Upstream.MaxRetryAttempts < 0 {
		c.Upstream.MaxRetryAttempts = defaults.Upstream.MaxRetryAttempts
		logger.Debug("Applied default Upstream.MaxRetryAttempts")
	}
	if c.Upstream.MaxFailureRate == 0 {
		c.Upstream.MaxFailureRate = defaults.Upstream.MaxFailureRate
	}

	if c.Database.MaxOpenConns <= 0 {
		c.Database.MaxOpenConns = defaults.Database.MaxOpenConns
		logger.Debug("Applied default Database.MaxOpenConns")
	}
	if c.Database.MaxIdleConns <= 0 {
		c.Database.MaxIdleConns = defaults.Database.MaxIdleConns
		logger.Debug("Applied default Database.MaxIdleConns")
	}
	if c.Database.ConnMaxLifetime <= 0 {
		c.Database.ConnMaxLifetime = defaults.Database.ConnMaxLifetime
	}
	if c.Database.ConnMaxIdleTime <= 0 {
		c.Database.ConnMaxIdleTime = defaults.Database.ConnMaxIdleTime
	}
	if c.Database.PingTimeout <= 0 {
		c.Database.PingTimeout = defaults.Database.PingTimeout
	}

	if c.Cache.DefaultTTL <= 0 {
		c.Cache.DefaultTTL = defaults.Cache.DefaultTTL
		logger.Debug("Applied default Cache.DefaultTTL")
	}
	if c.Cache.MaxSize <= 0 {
		c.Cache.MaxSize = defaults.Cache.MaxSize
		logger.Debug("Applied default Cache.MaxSize")
	}

	if c.Payment.Currency == "" {
		c.Payment.Currency = defaults.Payment.Currency
	}
	if c.Payment.CheckoutTimeout <= 0 {
		c.Payment.CheckoutTimeout = defaults.Payment.CheckoutTimeout
	}

	if c.Search.Debounce < MinimumDebounceDelay {
		c.Search.Debounce = MinimumDebounceDelay
		logger.Debug("Raised Search.Debounce to minimum")
	}

	if c.Logging.Level == "" {
		c.Logging.Level = defaults.Logging.Level
	}
	if c.Logging.Format == "" {
		c.Logging.Format = defaults.Logging.Format
	}
	if c.Logging.ServiceName == "" {
		c.Logging.ServiceName = defaults.Logging.ServiceName
	}
}

// ToJSON serializes the configuration to JSON; secrets are not serialized
func (c *UnifiedConfiguration) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// LoadFromJSON deserializes configuration from JSON
func (c *UnifiedConfiguration) LoadFromJSON(jsonData []byte) error {
	if err := json.Unmarshal(jsonData, c); err != nil {
		return fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	c.ValidateAndApplyDefaults()
	return nil
}

// ConfigureLogging applies the logging section to the global logrus logger
func (c *UnifiedConfiguration) ConfigureLogging() {
	level, err := logrus.ParseLevel(c.Logging.Level)
	if err != nil {
		logrus.Warnf("Invalid log level %q, using info", c.Logging.Level)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if c.Logging.Format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}
