package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, int64(2000), cfg.Pricing.FreeShippingThreshold)
	assert.Equal(t, int64(80), cfg.Pricing.FlatShippingFee)
	assert.Equal(t, int64(1800), cfg.Pricing.TaxBasisPoints)
	assert.Equal(t, 5, cfg.Catalog.LowStockThreshold)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Empty(t, cfg.Postgres.URL)
	assert.Equal(t, 5*time.Minute, cfg.Cart.SweepInterval)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, 5, cfg.RateLimit.CheckoutPerWindow)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("STOREFRONT_SERVER_ADDR", ":9090")
	t.Setenv("STOREFRONT_PRICING_FLAT_SHIPPING_FEE", "99")
	t.Setenv("STOREFRONT_KAFKA_BROKERS", "a:9092,b:9092")
	t.Setenv("STOREFRONT_AUTH_BOOTSTRAP_ADMINS", "owner@example.com")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, int64(99), cfg.Pricing.FlatShippingFee)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, []string{"owner@example.com"}, cfg.Auth.BootstrapAdmins)
}

func TestFromEnvRejectsInvalid(t *testing.T) {
	t.Run("negative tax", func(t *testing.T) {
		t.Setenv("STOREFRONT_PRICING_TAX_BASIS_POINTS", "-1")
		_, err := FromEnv()
		require.Error(t, err)
	})
	t.Run("zero cart sweep interval", func(t *testing.T) {
		t.Setenv("STOREFRONT_CART_SWEEP_INTERVAL", "0s")
		_, err := FromEnv()
		require.Error(t, err)
	})
	t.Run("zero rate limit window", func(t *testing.T) {
		t.Setenv("STOREFRONT_RATELIMIT_WINDOW", "0s")
		_, err := FromEnv()
		require.Error(t, err)
	})
	t.Run("unparseable duration", func(t *testing.T) {
		t.Setenv("STOREFRONT_AUTH_TOKEN_TTL", "soon")
		_, err := FromEnv()
		require.Error(t, err)
	})
}
