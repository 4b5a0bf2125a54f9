package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/northwind-labs/storefront-api/pkg/models"
)

// Flat shipping table keyed by method. Unrecognized methods fall back to
// standard, matching the checkout default.
var shippingRates = map[string]decimal.Decimal{
	models.ShippingStandard:  decimal.NewFromFloat(5.99),
	models.ShippingExpress:   decimal.NewFromFloat(14.99),
	models.ShippingOvernight: decimal.NewFromFloat(29.99),
}

// shippingOf resolves the shipping charge. The free-shipping override is
// evaluated against the discounted subtotal before the table lookup.
func (e Engine) shippingOf(method string, discountedSubtotal decimal.Decimal) decimal.Decimal {
	if e.FreeShippingThreshold > 0 &&
		discountedSubtotal.GreaterThanOrEqual(decimal.NewFromFloat(e.FreeShippingThreshold)) {
		return decimal.Zero
	}
	if rate, ok := shippingRates[method]; ok {
		return rate
	}
	return shippingRates[models.ShippingStandard]
}

// ShippingMethods lists the accepted shipping methods.
func ShippingMethods() []string {
	return []string{models.ShippingStandard, models.ShippingExpress, models.ShippingOvernight}
}

// IsValidShippingMethod reports whether the method exists in the table.
func IsValidShippingMethod(method string) bool {
	_, ok := shippingRates[method]
	return ok
}
