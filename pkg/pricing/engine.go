package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/northwind-labs/storefront-api/pkg/coupon"
	"github.com/northwind-labs/storefront-api/pkg/models"
)

// Engine turns a cart, an optional coupon, a shipping method and its tax
// rate into a price breakdown. Compute is a pure function of its inputs:
// no I/O, no caching across cart mutations.
type Engine struct {
	// TaxRate is the flat rate applied to subtotal minus discount, never
	// to shipping. Expressed as a fraction, e.g. 0.10.
	TaxRate float64
	// FreeShippingThreshold waives shipping once the discounted subtotal
	// reaches it. Zero or negative disables the promotion.
	FreeShippingThreshold float64
}

func New(taxRate, freeShippingThreshold float64) Engine {
	return Engine{TaxRate: taxRate, FreeShippingThreshold: freeShippingThreshold}
}

// Result carries the breakdown plus the coupon condition when the supplied
// coupon failed a constraint. A failed coupon is never silently ignored:
// discount is 0 and CouponIssue names the reason.
type Result struct {
	Breakdown     models.PriceBreakdown `json:"breakdown"`
	CouponApplied bool                  `json:"coupon_applied"`
	CouponIssue   string                `json:"coupon_issue,omitempty"`
}

// Compute prices the cart. All arithmetic runs on decimals; two-decimal
// rounding happens exactly once per field, at the end.
func (e Engine) Compute(cart *models.Cart, cpn *models.Coupon, shippingMethod string) Result {
	if cart == nil || len(cart.Items) == 0 {
		return Result{Breakdown: models.PriceBreakdown{}}
	}

	subtotal := subtotalOf(cart)

	var result Result
	discount := decimal.Zero
	if cpn != nil {
		subtotalFloat, _ := subtotal.Round(2).Float64()
		if issue := coupon.CheckConstraints(cpn, cart, subtotalFloat); issue != "" {
			result.CouponIssue = issue
		} else {
			discount = discountOf(cpn, subtotal)
			result.CouponApplied = true
		}
	}

	discounted := subtotal.Sub(discount)
	shipping := e.shippingOf(shippingMethod, discounted)
	tax := discounted.Mul(decimal.NewFromFloat(e.TaxRate))

	total := discounted.Add(shipping).Add(tax)
	if total.IsNegative() {
		total = decimal.Zero
	}

	result.Breakdown = models.PriceBreakdown{
		Subtotal: round2(subtotal),
		Discount: round2(discount),
		Shipping: round2(shipping),
		Tax:      round2(tax),
		Total:    round2(total),
	}
	return result
}

// Subtotal computes the rounded cart subtotal on its own, for callers that
// only need it (e.g. coupon resolution at apply time).
func Subtotal(cart *models.Cart) float64 {
	if cart == nil {
		return 0
	}
	return round2(subtotalOf(cart))
}

// subtotalOf sums (snapshot unit price + selected modifiers) x quantity.
// Unit prices come from the line's add-time snapshot, never from a live
// product read, so mid-session catalog changes cannot alter the cart.
func subtotalOf(cart *models.Cart) decimal.Decimal {
	subtotal := decimal.Zero
	for i := range cart.Items {
		item := &cart.Items[i]
		unit := decimal.NewFromFloat(item.PriceSnapshot.Amount)
		for _, sv := range item.SelectedVariants {
			unit = unit.Add(decimal.NewFromFloat(sv.PriceModifier))
		}
		subtotal = subtotal.Add(unit.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return subtotal
}

// discountOf applies the coupon rule, capped at the subtotal so the
// discount can never exceed what is being discounted.
func discountOf(cpn *models.Coupon, subtotal decimal.Decimal) decimal.Decimal {
	value := decimal.NewFromFloat(cpn.Value)
	var discount decimal.Decimal
	switch cpn.DiscountType {
	case models.DiscountPercentage:
		discount = subtotal.Mul(value).Div(decimal.NewFromInt(100))
	case models.DiscountFixed:
		discount = value
	default:
		return decimal.Zero
	}
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	if discount.IsNegative() {
		return decimal.Zero
	}
	return discount
}

func round2(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}
