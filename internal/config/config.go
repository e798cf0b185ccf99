package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Env         string
	Port        string
	PostgresURL string
	AutoMigrate bool

	RedisURL          string
	LockBackend       string // "redis" | "memory"
	CartTTL           time.Duration
	SettlementLockTTL time.Duration

	AWSRegion      string
	AWSEndpoint    string
	S3Bucket       string
	PresignExpiry  time.Duration
	OrderEventsARN string

	Payment PaymentConfig
	Loyalty LoyaltyConfig

	CallbackRateLimit float64 // requests per second per IP
	CallbackBurst     int
}

type PaymentConfig struct {
	BaseURL         string
	MerchantID      string
	SecretKey       string
	Currency        string
	CheckURL        string
	ResultURL       string
	TopUpResultURL  string
	SuccessURL      string
	FailureURL      string
	Lifetime        int
	TestingMode     bool
	Timeout         time.Duration
	AmountTolerance decimal.Decimal
}

type LoyaltyConfig struct {
	Currency string
	Divisor  decimal.Decimal
}

// Load reads .env (if present) and the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Env:         getEnv("ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		PostgresURL: os.Getenv("POSTGRES_URL"),
		AutoMigrate: getBool("DB_AUTO_MIGRATE", false),

		RedisURL:          getEnv("REDIS_URL", "redis://localhost:6379/0"),
		LockBackend:       getEnv("SETTLEMENT_LOCK_BACKEND", "redis"),
		CartTTL:           getDuration("CART_TTL", 7*24*time.Hour),
		SettlementLockTTL: getDuration("SETTLEMENT_LOCK_TTL", 30*time.Second),

		AWSRegion:      getEnv("AWS_REGION", "eu-central-1"),
		AWSEndpoint:    os.Getenv("AWS_ENDPOINT"),
		S3Bucket:       os.Getenv("S3_BUCKET"),
		PresignExpiry:  getDuration("S3_PRESIGN_EXPIRY", 15*time.Minute),
		OrderEventsARN: os.Getenv("ORDER_EVENTS_TOPIC_ARN"),

		Payment: PaymentConfig{
			BaseURL:         getEnv("FREEDOMPAY_BASE_URL", "https://api.freedompay.kz"),
			MerchantID:      os.Getenv("FREEDOMPAY_MERCHANT_ID"),
			SecretKey:       os.Getenv("FREEDOMPAY_SECRET_KEY"),
			Currency:        getEnv("PAYMENT_CURRENCY", "KZT"),
			CheckURL:        os.Getenv("FREEDOMPAY_CHECK_URL"),
			ResultURL:       os.Getenv("FREEDOMPAY_RESULT_URL"),
			TopUpResultURL:  os.Getenv("FREEDOMPAY_TOPUP_RESULT_URL"),
			SuccessURL:      os.Getenv("FREEDOMPAY_SUCCESS_URL"),
			FailureURL:      os.Getenv("FREEDOMPAY_FAILURE_URL"),
			Lifetime:        getInt("FREEDOMPAY_LIFETIME", 86400),
			TestingMode:     getBool("FREEDOMPAY_TESTING_MODE", false),
			Timeout:         getDuration("FREEDOMPAY_TIMEOUT", 15*time.Second),
			AmountTolerance: getDecimal("PAYMENT_AMOUNT_TOLERANCE", decimal.NewFromFloat(0.01)),
		},
		Loyalty: LoyaltyConfig{
			Currency: getEnv("LOYALTY_CURRENCY", "PTS"),
			Divisor:  getDecimal("LOYALTY_POINTS_DIVISOR", decimal.NewFromInt(100)),
		},

		CallbackRateLimit: getFloat("CALLBACK_RATE_LIMIT", 5),
		CallbackBurst:     getInt("CALLBACK_RATE_BURST", 20),
	}

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	var missing []string
	if c.PostgresURL == "" {
		missing = append(missing, "POSTGRES_URL")
	}
	if c.Payment.MerchantID == "" {
		missing = append(missing, "FREEDOMPAY_MERCHANT_ID")
	}
	if c.Payment.SecretKey == "" {
		missing = append(missing, "FREEDOMPAY_SECRET_KEY")
	}
	if c.Payment.CheckURL == "" || c.Payment.ResultURL == "" || c.Payment.TopUpResultURL == "" {
		missing = append(missing, "FREEDOMPAY_*_URL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing configuration: %s", strings.Join(missing, ", "))
	}
	if !c.Loyalty.Divisor.IsPositive() {
		return errors.New("LOYALTY_POINTS_DIVISOR must be positive")
	}
	if c.LockBackend != "redis" && c.LockBackend != "memory" {
		return fmt.Errorf("unknown SETTLEMENT_LOCK_BACKEND %q", c.LockBackend)
	}
	return nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultVal
}

func getFloat(key string, defaultVal float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return defaultVal
}

func getBool(key string, defaultVal bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return defaultVal
}

func getDecimal(key string, defaultVal decimal.Decimal) decimal.Decimal {
	if v, err := decimal.NewFromString(os.Getenv(key)); err == nil {
		return v
	}
	return defaultVal
}
