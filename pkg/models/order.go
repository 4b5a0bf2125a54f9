package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Order statuses. The lifecycle state machine in pkg/order owns which
// transitions between them are legal.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
	OrderStatusReturned   = "returned"
)

// Payment statuses. An independent axis from order status: a refunded
// payment does not by itself move the order.
const (
	PaymentStatusPending           = "pending"
	PaymentStatusPaid              = "paid"
	PaymentStatusFailed            = "failed"
	PaymentStatusRefunded          = "refunded"
	PaymentStatusPartiallyRefunded = "partially_refunded"
)

// Shipping methods accepted at checkout.
const (
	ShippingStandard  = "standard"
	ShippingExpress   = "express"
	ShippingOvernight = "overnight"
)

// Payment methods accepted at checkout.
const (
	PaymentMethodCreditCard = "credit_card"
	PaymentMethodPaypal     = "paypal"
)

// PriceBreakdown is the derived monetary result of pricing a cart. All
// fields are non-negative and rounded to two decimals exactly once, at the
// end of the computation.
type PriceBreakdown struct {
	Subtotal float64 `json:"subtotal" bson:"subtotal" validate:"gte=0"`
	Discount float64 `json:"discount" bson:"discount" validate:"gte=0"`
	Shipping float64 `json:"shipping" bson:"shipping" validate:"gte=0"`
	Tax      float64 `json:"tax" bson:"tax" validate:"gte=0"`
	Total    float64 `json:"total" bson:"total" validate:"gte=0"`
}

// OrderItem is an owned, deep-copied snapshot of a cart line. It references
// nothing in the live catalog, so later product or cart mutations cannot
// retroactively alter a historical order.
type OrderItem struct {
	ProductID        string            `json:"product_id" bson:"product_id" validate:"required"`
	SKU              string            `json:"sku" bson:"sku" validate:"required"`
	Name             string            `json:"name" bson:"name" validate:"required"`
	UnitPrice        float64           `json:"unit_price" bson:"unit_price" validate:"gte=0"`
	Quantity         int               `json:"quantity" bson:"quantity" validate:"required,gte=1"`
	SelectedVariants []SelectedVariant `json:"selected_variants" bson:"selected_variants"`
}

// Timeline tracks lifecycle timestamps for an order.
type Timeline struct {
	OrderedAt   time.Time  `json:"ordered_at" bson:"ordered_at"`
	PaidAt      *time.Time `json:"paid_at" bson:"paid_at,omitempty"`
	ShippedAt   *time.Time `json:"shipped_at" bson:"shipped_at,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at" bson:"delivered_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at" bson:"cancelled_at,omitempty"`
	ReturnedAt  *time.Time `json:"returned_at" bson:"returned_at,omitempty"`
}

// Order is created once, at checkout finalization, as an immutable snapshot
// of the cart. Only the two status fields and the timeline change after
// creation, and only through the lifecycle state machine.
type Order struct {
	ID              bson.ObjectID  `json:"id" bson:"_id,omitempty"`
	OrderNumber     string         `json:"order_number" bson:"order_number" validate:"required"`
	SessionID       string         `json:"session_id" bson:"session_id"`
	CustomerID      bson.ObjectID  `json:"customer_id" bson:"customer_id" validate:"required"`
	Status          string         `json:"status" bson:"status" validate:"required,oneof=pending processing shipped delivered cancelled returned"`
	PaymentStatus   string         `json:"payment_status" bson:"payment_status" validate:"required,oneof=pending paid failed refunded partially_refunded"`
	Items           []OrderItem    `json:"items" bson:"items" validate:"required,min=1,dive"`
	Breakdown       PriceBreakdown `json:"breakdown" bson:"breakdown"`
	CouponCode      string         `json:"coupon_code,omitempty" bson:"coupon_code,omitempty"`
	ShippingAddress Address        `json:"shipping_address" bson:"shipping_address"`
	BillingAddress  Address        `json:"billing_address" bson:"billing_address"`
	ShippingMethod  string         `json:"shipping_method" bson:"shipping_method" validate:"required,oneof=standard express overnight"`
	PaymentMethod   string         `json:"payment_method" bson:"payment_method" validate:"required,oneof=credit_card paypal"`
	Timeline        Timeline       `json:"timeline" bson:"timeline"`
	CreatedAt       time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at" bson:"updated_at"`
}

// SetTimestamps sets created_at on first call and always updates updated_at.
func (o *Order) SetTimestamps() {
	now := time.Now()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
		o.Timeline.OrderedAt = now
	}
	o.UpdatedAt = now
}

// CanBeCancelled checks both status axes before offering cancellation:
// the order must still be early in fulfillment and the payment must not
// already be refunded.
func (o *Order) CanBeCancelled() bool {
	if o.PaymentStatus == PaymentStatusRefunded {
		return false
	}
	return o.Status == OrderStatusPending || o.Status == OrderStatusProcessing
}

// CanBeReturned reports whether a return may be offered.
func (o *Order) CanBeReturned() bool {
	return o.Status == OrderStatusDelivered
}

func GenerateOrderNumber() string {
	now := time.Now()
	// Format: ORD-YYYYMMDD-HHMMSS-NNN
	return fmt.Sprintf("ORD-%s-%03d",
		now.Format("20060102-150405"),
		now.Nanosecond()%1000,
	)
}
