package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// StockMovement is an audit record written by the inventory guard for every
// stock decrement and release. Commit-time decrements and cancellation
// releases are the only two mutation points.
type StockMovement struct {
	ID              bson.ObjectID `bson:"_id,omitempty" json:"id"`
	ProductID       bson.ObjectID `bson:"product_id" json:"product_id" validate:"required"`
	SKU             string        `bson:"sku" json:"sku" validate:"required"`
	ChangeType      string        `bson:"change_type" json:"change_type" validate:"required,oneof=sale release"`
	QuantityChanged int           `bson:"quantity_changed" json:"quantity_changed"` // negative for sales, positive for releases
	OrderNumber     string        `bson:"order_number,omitempty" json:"order_number,omitempty"`
	CreatedAt       time.Time     `bson:"created_at" json:"created_at"`
}

const (
	StockChangeSale    = "sale"
	StockChangeRelease = "release"
)

// SetTimestamp sets the creation timestamp.
func (sm *StockMovement) SetTimestamp() {
	if sm.CreatedAt.IsZero() {
		sm.CreatedAt = time.Now()
	}
}

// IsIncrease returns true if the movement returned stock to the pool.
func (sm *StockMovement) IsIncrease() bool {
	return sm.QuantityChanged > 0
}
