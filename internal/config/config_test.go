package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("POSTGRES_URL", "postgres://localhost/bookstore")
	t.Setenv("FREEDOMPAY_MERCHANT_ID", "552170")
	t.Setenv("FREEDOMPAY_SECRET_KEY", "secret")
	t.Setenv("FREEDOMPAY_CHECK_URL", "https://shop.example.com/payments/check")
	t.Setenv("FREEDOMPAY_RESULT_URL", "https://shop.example.com/payments/result")
	t.Setenv("FREEDOMPAY_TOPUP_RESULT_URL", "https://shop.example.com/wallet/process-top-up")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "KZT", cfg.Payment.Currency)
	assert.Equal(t, "PTS", cfg.Loyalty.Currency)
	assert.True(t, cfg.Loyalty.Divisor.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, 15*time.Second, cfg.Payment.Timeout)
	assert.Equal(t, "redis", cfg.LockBackend)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("LOYALTY_POINTS_DIVISOR", "50")
	t.Setenv("FREEDOMPAY_TIMEOUT", "3s")
	t.Setenv("SETTLEMENT_LOCK_BACKEND", "memory")

	cfg, err := Load()

	require.NoError(t, err)
	assert.True(t, cfg.Loyalty.Divisor.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, 3*time.Second, cfg.Payment.Timeout)
	assert.Equal(t, "memory", cfg.LockBackend)
}

func TestLoad_MissingRequired(t *testing.T) {
	setRequired(t)
	t.Setenv("FREEDOMPAY_SECRET_KEY", "")

	_, err := Load()

	assert.ErrorContains(t, err, "FREEDOMPAY_SECRET_KEY")
}

func TestValidate_RejectsZeroDivisor(t *testing.T) {
	setRequired(t)
	t.Setenv("LOYALTY_POINTS_DIVISOR", "0")

	_, err := Load()

	assert.Error(t, err)
}
