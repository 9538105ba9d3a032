package config

import (
	"os"
	"strconv"
	"time"

	"github.com/fenilmodi00/counsel-backend/shared"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	ServerPort             string
	UpstreamBaseURL        string
	UpstreamTimeoutSeconds string
	UpstreamMaxRetries     string
	DatabaseURL            string
	PaymentKeyID           string
	PaymentKeySecret       string
	PaymentCurrency        string
	CacheTTLMinutes        string
	SearchDebounceMS       string
	CheckoutTimeoutMinutes string
	LogLevel               string
	LogFormat              string
	ProductCatalog         string
	PaymentLogPath         string
}

// GetCacheTTL returns the content cache TTL from environment or default
func (c *Config) GetCacheTTL() time.Duration {
	return parseDuration("CACHE_TTL_MINUTES", c.CacheTTLMinutes, time.Minute, 10*time.Minute)
}

// GetUpstreamTimeout returns the upstream HTTP timeout
func (c *Config) GetUpstreamTimeout() time.Duration {
	return parseDuration("UPSTREAM_TIMEOUT_SECONDS", c.UpstreamTimeoutSeconds, time.Second, 15*time.Second)
}

// GetCheckoutTimeout returns how long a checkout attempt may stay in progress
func (c *Config) GetCheckoutTimeout() time.Duration {
	return parseDuration("CHECKOUT_TIMEOUT_MINUTES", c.CheckoutTimeoutMinutes, time.Minute, 15*time.Minute)
}

// GetSearchDebounce returns the search quiescence window, never below the minimum
func (c *Config) GetSearchDebounce() time.Duration {
	d := parseDuration("SEARCH_DEBOUNCE_MS", c.SearchDebounceMS, time.Millisecond, shared.MinimumDebounceDelay)
	if d < shared.MinimumDebounceDelay {
		logrus.Warnf("SEARCH_DEBOUNCE_MS %s is below the %v minimum, using minimum", c.SearchDebounceMS, shared.MinimumDebounceDelay)
		return shared.MinimumDebounceDelay
	}
	return d
}

// GetUpstreamMaxRetries returns the retry count for upstream calls
func (c *Config) GetUpstreamMaxRetries() int {
	if c.UpstreamMaxRetries == "" {
		return 2
	}
	n, err := strconv.Atoi(c.UpstreamMaxRetries)
	if err != nil || n < 0 {
		logrus.Warnf("Invalid UPSTREAM_MAX_RETRIES value: %s, using default 2", c.UpstreamMaxRetries)
		return 2
	}
	return n
}

// Unified builds the shared configuration from the environment values
func (c *Config) Unified() *shared.UnifiedConfiguration {
	uc := shared.NewDefaultUnifiedConfiguration()
	uc.Upstream.BaseURL = c.UpstreamBaseURL
	uc.Upstream.HTTPRequestTimeout = c.GetUpstreamTimeout()
	uc.Upstream.MaxRetryAttempts = c.GetUpstreamMaxRetries()
	uc.Database.URL = c.DatabaseURL
	uc.Cache.DefaultTTL = c.GetCacheTTL()
	uc.Payment.KeyID = c.PaymentKeyID
	uc.Payment.KeySecret = c.PaymentKeySecret
	uc.Payment.Currency = c.PaymentCurrency
	uc.Payment.CheckoutTimeout = c.GetCheckoutTimeout()
	uc.Search.Debounce = c.GetSearchDebounce()
	uc.Logging.Level = c.LogLevel
	uc.Logging.Format = c.LogFormat
	uc.ValidateAndApplyDefaults()
	return uc
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		logrus.Warn("Error loading .env file, using system environment variables")
	}

	return &Config{
		ServerPort:             getEnv("SERVER_PORT", "8080"),
		UpstreamBaseURL:        getEnv("UPSTREAM_BASE_URL", ""),
		UpstreamTimeoutSeconds: getEnv("UPSTREAM_TIMEOUT_SECONDS", "15"),
		UpstreamMaxRetries:     getEnv("UPSTREAM_MAX_RETRIES", "2"),
		DatabaseURL:            getEnv("DATABASE_URL", ""),
		PaymentKeyID:           getEnv("PAYMENT_KEY_ID", ""),
		PaymentKeySecret:       getEnv("PAYMENT_KEY_SECRET", ""),
		PaymentCurrency:        getEnv("PAYMENT_CURRENCY", "INR"),
		CacheTTLMinutes:        getEnv("CACHE_TTL_MINUTES", "10"),
		SearchDebounceMS:       getEnv("SEARCH_DEBOUNCE_MS", "500"),
		CheckoutTimeoutMinutes: getEnv("CHECKOUT_TIMEOUT_MINUTES", "15"),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		LogFormat:              getEnv("LOG_FORMAT", "text"),
		ProductCatalog:         getEnv("PRODUCT_CATALOG", "rank-predictor:Rank Predictor:499"),
		PaymentLogPath:         getEnv("PAYMENT_LOG_PATH", ""),
	}
}

func parseDuration(key, raw string, unit, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		logrus.Warnf("Invalid %s value: %s, using default %v", key, raw, fallback)
		return fallback
	}
	return time.Duration(n) * unit
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
