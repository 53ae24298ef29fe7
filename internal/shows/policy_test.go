package shows

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tixbridge/internal/catalog"
	"tixbridge/internal/shared/config"
)

func stats(count *int, lowest, average *float64) *catalog.Stats {
	return &catalog.Stats{ListingCount: count, LowestPrice: lowest, AveragePrice: average}
}

func TestDerivePricing_PriceOrder(t *testing.T) {
	p := DerivePricing(stats(catalog.IntPtr(3), catalog.FloatPtr(19.6), catalog.FloatPtr(40)), strict)
	assert.Equal(t, 20.0, p.Price)

	p = DerivePricing(stats(catalog.IntPtr(3), catalog.FloatPtr(0), catalog.FloatPtr(40.4)), strict)
	assert.Equal(t, 40.0, p.Price)

	p = DerivePricing(stats(catalog.IntPtr(3), nil, nil), strict)
	assert.Equal(t, 0.0, p.Price)

	p = DerivePricing(nil, strict)
	assert.Equal(t, Pricing{}, p)
}

func TestDerivePricing_Strict(t *testing.T) {
	assert.True(t, DerivePricing(stats(catalog.IntPtr(2), catalog.FloatPtr(10), nil), strict).IsAvailable)
	assert.False(t, DerivePricing(stats(catalog.IntPtr(0), catalog.FloatPtr(10), nil), strict).IsAvailable)
	assert.False(t, DerivePricing(stats(catalog.IntPtr(5), nil, nil), strict).IsAvailable)
}

func TestDerivePricing_Permissive(t *testing.T) {
	permissive := Policy{Availability: AvailabilityPermissive, PermissiveDefaultSeats: 100}

	p := DerivePricing(nil, permissive)
	assert.True(t, p.IsAvailable)
	assert.Equal(t, 100, p.AvailableSeats)
	assert.Equal(t, 0.0, p.Price)

	p = DerivePricing(stats(catalog.IntPtr(4), catalog.FloatPtr(12), nil), permissive)
	assert.Equal(t, 4, p.AvailableSeats)
}

func TestPolicy_Admit(t *testing.T) {
	gated := Policy{Availability: AvailabilityStrict, ValidityGate: true}

	assert.False(t, gated.Admit(catalog.Entry{ID: "1"}))
	assert.False(t, gated.Admit(catalog.Entry{ID: "1", Stats: stats(catalog.IntPtr(0), catalog.FloatPtr(0), nil)}))
	assert.True(t, gated.Admit(catalog.Entry{ID: "1", Stats: stats(catalog.IntPtr(3), nil, nil)}))
	assert.True(t, gated.Admit(catalog.Entry{ID: "1", Stats: stats(nil, nil, catalog.FloatPtr(30))}))

	assert.True(t, strict.Admit(catalog.Entry{ID: "1"}))
}

func TestPolicyFromConfig(t *testing.T) {
	p := PolicyFromConfig(config.PolicyConfig{Availability: "permissive", ValidityGate: true, PermissiveDefaultSeats: -1})
	assert.Equal(t, AvailabilityPermissive, p.Availability)
	assert.True(t, p.ValidityGate)
	assert.Equal(t, 0, p.PermissiveDefaultSeats)

	p = PolicyFromConfig(config.PolicyConfig{Availability: "whatever"})
	assert.Equal(t, AvailabilityStrict, p.Availability)
}
