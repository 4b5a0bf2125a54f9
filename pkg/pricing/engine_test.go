package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/northwind-labs/storefront-api/pkg/models"
)

func cartWith(lines ...models.CartLineItem) *models.Cart {
	return &models.Cart{SessionID: "sess-1", Items: lines}
}

func line(sku string, unitPrice float64, quantity int) models.CartLineItem {
	return models.CartLineItem{
		LineID:        models.NewLineID(),
		ProductID:     "p-" + sku,
		SKU:           sku,
		ProductName:   sku,
		Category:      "electronics",
		PriceSnapshot: models.PriceSnapshot{Amount: unitPrice},
		Quantity:      quantity,
	}
}

func percentCoupon(code string, value float64) *models.Coupon {
	return &models.Coupon{Code: code, DiscountType: models.DiscountPercentage, Value: value, Active: true}
}

func TestCompute_NoCoupon(t *testing.T) {
	e := New(0.10, 0)
	cart := cartWith(line("SKU-A", 45.00, 2), line("SKU-B", 10.00, 1))

	result := e.Compute(cart, nil, models.ShippingStandard)

	assert.Equal(t, 100.00, result.Breakdown.Subtotal)
	assert.Equal(t, 0.00, result.Breakdown.Discount)
	assert.Equal(t, 5.99, result.Breakdown.Shipping)
	assert.Equal(t, 10.00, result.Breakdown.Tax)
	assert.Equal(t, 115.99, result.Breakdown.Total)
	assert.False(t, result.CouponApplied)
}

func TestCompute_PercentageCoupon_TaxOnDiscountedSubtotal(t *testing.T) {
	e := New(0.10, 0)
	cart := cartWith(line("SKU-A", 45.00, 2), line("SKU-B", 10.00, 1))
	cart.CouponCode = "SAVE20"

	result := e.Compute(cart, percentCoupon("SAVE20", 20), models.ShippingStandard)

	assert.Equal(t, 100.00, result.Breakdown.Subtotal)
	assert.Equal(t, 20.00, result.Breakdown.Discount)
	assert.Equal(t, 5.99, result.Breakdown.Shipping)
	// Tax applies to subtotal minus discount, never to shipping.
	assert.Equal(t, 8.00, result.Breakdown.Tax)
	assert.Equal(t, 93.99, result.Breakdown.Total)
	assert.True(t, result.CouponApplied)
}

func TestCompute_Idempotent(t *testing.T) {
	e := New(0.10, 0)
	cart := cartWith(line("SKU-A", 19.99, 3))
	cpn := percentCoupon("SAVE10", 10)

	first := e.Compute(cart, cpn, models.ShippingExpress)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, e.Compute(cart, cpn, models.ShippingExpress))
	}
}

func TestCompute_EmptyCart(t *testing.T) {
	e := New(0.10, 0)

	result := e.Compute(cartWith(), nil, models.ShippingStandard)

	assert.Equal(t, models.PriceBreakdown{}, result.Breakdown)
}

func TestCompute_NilCart(t *testing.T) {
	e := New(0.10, 0)

	result := e.Compute(nil, nil, models.ShippingStandard)

	assert.Equal(t, models.PriceBreakdown{}, result.Breakdown)
}

func TestCompute_FixedCouponCappedAtSubtotal(t *testing.T) {
	e := New(0.10, 0)
	cart := cartWith(line("SKU-A", 8.00, 1))
	cpn := &models.Coupon{Code: "BIG50", DiscountType: models.DiscountFixed, Value: 50, Active: true}

	result := e.Compute(cart, cpn, models.ShippingStandard)

	assert.Equal(t, 8.00, result.Breakdown.Subtotal)
	assert.Equal(t, 8.00, result.Breakdown.Discount)
	assert.Equal(t, 0.00, result.Breakdown.Tax)
	// Shipping still applies even when the goods are free.
	assert.Equal(t, 5.99, result.Breakdown.Total)
}

func TestCompute_FullDiscountRoundTrip(t *testing.T) {
	e := New(0.10, 0)
	cart := cartWith(line("SKU-A", 25.00, 2))
	cpn := percentCoupon("FREE100", 100)

	result := e.Compute(cart, cpn, models.ShippingStandard)

	assert.Equal(t, 50.00, result.Breakdown.Discount)
	assert.Equal(t, 0.00, result.Breakdown.Tax)
	assert.Equal(t, 5.99, result.Breakdown.Total)
	assert.GreaterOrEqual(t, result.Breakdown.Total, 0.00)
}

func TestCompute_VariantModifiersInSubtotal(t *testing.T) {
	e := New(0.10, 0)
	li := line("SKU-A", 30.00, 2)
	li.SelectedVariants = []models.SelectedVariant{
		{Name: "size", Value: "XL", PriceModifier: 2.50},
		{Name: "color", Value: "red", PriceModifier: 0},
	}

	result := e.Compute(cartWith(li), nil, models.ShippingStandard)

	assert.Equal(t, 65.00, result.Breakdown.Subtotal)
}

func TestCompute_SnapshotPricing(t *testing.T) {
	e := New(0.10, 0)
	li := line("SKU-A", 40.00, 1)
	cart := cartWith(li)

	before := e.Compute(cart, nil, models.ShippingStandard)

	// A catalog price change must not leak into an existing cart; only the
	// snapshot matters.
	after := e.Compute(cart, nil, models.ShippingStandard)
	assert.Equal(t, before.Breakdown, after.Breakdown)
	assert.Equal(t, 40.00, after.Breakdown.Subtotal)
}

func TestCompute_CouponStoppedQualifying(t *testing.T) {
	e := New(0.10, 0)
	cart := cartWith(line("SKU-A", 20.00, 1))
	minSubtotal := 50.00
	cpn := percentCoupon("SAVE20", 20)
	cpn.MinSubtotal = &minSubtotal

	result := e.Compute(cart, cpn, models.ShippingStandard)

	assert.False(t, result.CouponApplied)
	assert.Equal(t, "min_subtotal", result.CouponIssue)
	assert.Equal(t, 0.00, result.Breakdown.Discount)
}

func TestCompute_ExpiredCouponSurfaces(t *testing.T) {
	e := New(0.10, 0)
	cart := cartWith(line("SKU-A", 100.00, 1))
	expired := time.Now().Add(-time.Hour)
	cpn := percentCoupon("OLD", 20)
	cpn.ExpiresAt = &expired

	result := e.Compute(cart, cpn, models.ShippingStandard)

	assert.False(t, result.CouponApplied)
	assert.Equal(t, "expired", result.CouponIssue)
}

func TestCompute_ShippingMethods(t *testing.T) {
	e := New(0.10, 0)
	cart := cartWith(line("SKU-A", 10.00, 1))

	cases := map[string]float64{
		models.ShippingStandard:  5.99,
		models.ShippingExpress:   14.99,
		models.ShippingOvernight: 29.99,
		"carrier-pigeon":         5.99, // unknown falls back to standard
	}
	for method, want := range cases {
		result := e.Compute(cart, nil, method)
		assert.Equal(t, want, result.Breakdown.Shipping, "method %s", method)
	}
}

func TestCompute_FreeShippingThreshold(t *testing.T) {
	e := New(0.10, 75)
	cart := cartWith(line("SKU-A", 50.00, 2))

	result := e.Compute(cart, nil, models.ShippingExpress)
	assert.Equal(t, 0.00, result.Breakdown.Shipping)

	// The threshold compares against the discounted subtotal.
	result = e.Compute(cart, percentCoupon("SAVE50", 50), models.ShippingExpress)
	assert.Equal(t, 14.99, result.Breakdown.Shipping)
}

func TestSubtotal(t *testing.T) {
	cart := cartWith(line("SKU-A", 19.99, 2), line("SKU-B", 5.01, 1))

	require.Equal(t, 44.99, Subtotal(cart))
	require.Equal(t, 0.00, Subtotal(nil))
}
