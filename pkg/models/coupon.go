package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed_amount"
)

// Coupon is a promotion validated against cart contents. Codes are stored
// uppercase; lookups normalize casing first. A cart holds at most one
// active coupon and applying a new one replaces the prior.
type Coupon struct {
	ID                   bson.ObjectID `json:"id" bson:"_id,omitempty"`
	Code                 string        `json:"code" bson:"code" validate:"required,min=3,max=30"`
	DiscountType         string        `json:"discount_type" bson:"discount_type" validate:"required,oneof=percentage fixed_amount"`
	Value                float64       `json:"value" bson:"value" validate:"required,gt=0"`
	MinSubtotal          *float64      `json:"min_subtotal,omitempty" bson:"min_subtotal,omitempty" validate:"omitempty,gte=0"`
	ApplicableCategories []string      `json:"applicable_categories,omitempty" bson:"applicable_categories,omitempty"`
	ExpiresAt            *time.Time    `json:"expires_at,omitempty" bson:"expires_at,omitempty"`
	Active               bool          `json:"active" bson:"active"`
	CreatedAt            time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt            time.Time     `json:"updated_at" bson:"updated_at"`
}

// IsExpired reports whether the coupon's expiry has passed. Coupons without
// an expiry never expire.
func (c *Coupon) IsExpired(now time.Time) bool {
	return c.ExpiresAt != nil && now.After(*c.ExpiresAt)
}

func (c *Coupon) SetTimestamps() {
	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
}
