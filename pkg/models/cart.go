package models

import (
	"time"

	"github.com/google/uuid"
)

// SelectedVariant records one buyer choice per variant group. The price
// modifier is copied from the product at add time so later catalog edits
// cannot alter an in-progress cart.
type SelectedVariant struct {
	Name          string  `json:"name" redis:"name"`
	Value         string  `json:"value" redis:"value"`
	PriceModifier float64 `json:"price_modifier" redis:"price_modifier"`
}

// PriceSnapshot is the unit price captured when the line entered the cart.
// Subtotals are computed from this value, never from a live product read.
type PriceSnapshot struct {
	Amount float64 `json:"amount" redis:"amount"`
}

// CartLineItem is one purchasable line in a cart. Quantity is clamped to
// [1, stockQuantity] on every mutation; SelectedVariants covers every
// variant group the product defines.
type CartLineItem struct {
	LineID           string            `json:"line_id" redis:"line_id"`
	ProductID        string            `json:"product_id" redis:"product_id"`
	SKU              string            `json:"sku" redis:"sku"`
	ProductName      string            `json:"product_name" redis:"product_name"`
	Category         string            `json:"category" redis:"category"`
	PriceSnapshot    PriceSnapshot     `json:"price_snapshot"`
	Quantity         int               `json:"quantity" redis:"quantity"`
	SelectedVariants []SelectedVariant `json:"selected_variants"`
	AddedAt          string            `json:"added_at" redis:"added_at"`
}

// UnitPrice is the snapshot amount plus the selected variant modifiers.
func (li *CartLineItem) UnitPrice() float64 {
	price := li.PriceSnapshot.Amount
	for _, sv := range li.SelectedVariants {
		price += sv.PriceModifier
	}
	return price
}

// Cart is the mutable set of line items for one session. Lines keep their
// insertion order for display; totals are derived by the pricing engine on
// every read and never stored.
type Cart struct {
	SessionID   string         `json:"session_id"`
	Items       []CartLineItem `json:"items"`
	CouponCode  string         `json:"coupon_code,omitempty"`
	LastUpdated string         `json:"last_updated"`
	ExpiresAt   string         `json:"expires_at"`
}

// FindLine returns the line with the given id, or nil.
func (c *Cart) FindLine(lineID string) *CartLineItem {
	for i := range c.Items {
		if c.Items[i].LineID == lineID {
			return &c.Items[i]
		}
	}
	return nil
}

// FindMatchingLine returns an existing line for the same product and the
// same variant selection, so repeated adds merge instead of duplicating.
func (c *Cart) FindMatchingLine(productID string, variants []SelectedVariant) *CartLineItem {
	for i := range c.Items {
		if c.Items[i].ProductID != productID {
			continue
		}
		if sameSelection(c.Items[i].SelectedVariants, variants) {
			return &c.Items[i]
		}
	}
	return nil
}

func sameSelection(a, b []SelectedVariant) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name || a[i].Value != b[i].Value {
			return false
		}
	}
	return true
}

// ClampQuantity applies the cart-boundary stock rule: requested quantities
// are silently clamped to [1, stockQuantity]. Over-asking is not an error.
func ClampQuantity(requested, stockQuantity int) int {
	if requested < 1 {
		requested = 1
	}
	if requested > stockQuantity {
		requested = stockQuantity
	}
	return requested
}

func NewLineID() string {
	return uuid.New().String()
}

func NewEmptyCart(sessionID string) *Cart {
	now := time.Now().UTC().Format(time.RFC3339)
	return &Cart{
		SessionID:   sessionID,
		Items:       []CartLineItem{},
		LastUpdated: now,
		ExpiresAt:   time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339),
	}
}

type AddToCartRequest struct {
	SKU              string            `json:"sku" binding:"required"`
	Quantity         int               `json:"quantity" binding:"required,min=1"`
	SelectedVariants []VariantChoice   `json:"selected_variants"`
}

// VariantChoice is the client-side shape of a variant selection; the price
// modifier is resolved server-side from the product.
type VariantChoice struct {
	Name  string `json:"name" binding:"required"`
	Value string `json:"value" binding:"required"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=0"`
}

type ApplyCouponRequest struct {
	Code string `json:"code" binding:"required"`
}
