package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "/api/v1", cfg.GetAPIBasePath())
	assert.Equal(t, "strict", cfg.Policy.Availability)
	assert.Equal(t, "upstream", cfg.Policy.PriceSource)
	assert.False(t, cfg.Policy.CheckoutFailureIsFatal)
	assert.Equal(t, 5*time.Second, cfg.Catalog.LookupTimeout)
	assert.Equal(t, 10*time.Second, cfg.Catalog.ListTimeout)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	require.NoError(t, cfg.Validate())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("AVAILABILITY_POLICY", "PERMISSIVE")
	t.Setenv("PRICE_SOURCE", "caller")
	t.Setenv("CHECKOUT_FAILURE_FATAL", "true")
	t.Setenv("VALIDITY_GATE_ENABLED", "1")
	t.Setenv("CATALOG_LOOKUP_TIMEOUT", "2s")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("CHECKOUT_CURRENCY", "EUR")

	cfg := Load()

	assert.Equal(t, "permissive", cfg.Policy.Availability)
	assert.Equal(t, "caller", cfg.Policy.PriceSource)
	assert.True(t, cfg.Policy.CheckoutFailureIsFatal)
	assert.True(t, cfg.Policy.ValidityGate)
	assert.Equal(t, 2*time.Second, cfg.Catalog.LookupTimeout)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "eur", cfg.Checkout.Currency)
	require.NoError(t, cfg.Validate())
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("CATALOG_PAGE_SIZE", "many")
	t.Setenv("CHECKOUT_FAILURE_FATAL", "sometimes")

	cfg := Load()

	assert.Equal(t, 25, cfg.Catalog.PageSize)
	assert.False(t, cfg.Policy.CheckoutFailureIsFatal)
}

func TestValidate_UnknownPolicy(t *testing.T) {
	t.Setenv("AVAILABILITY_POLICY", "lenient")
	assert.Error(t, Load().Validate())

	t.Setenv("AVAILABILITY_POLICY", "strict")
	t.Setenv("PRICE_SOURCE", "guess")
	assert.Error(t, Load().Validate())
}
