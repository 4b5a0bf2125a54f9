package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Customer owns carts and orders. The checkout flow reads its address book
// to resolve the shipping and billing selections.
type Customer struct {
	ID            bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Email         string        `bson:"email" json:"email" validate:"required,email"`
	Password      string        `bson:"password" json:"-" validate:"required,min=8"` // Never expose in JSON
	FirstName     string        `bson:"first_name" json:"first_name" validate:"required,min=2,max=50"`
	LastName      string        `bson:"last_name" json:"last_name" validate:"required,min=2,max=50"`
	Phone         string        `bson:"phone" json:"phone" validate:"max=20"`
	Addresses     []Address     `bson:"addresses" json:"addresses" validate:"dive"`
	AccountStatus string        `bson:"account_status" json:"account_status" validate:"required,oneof=active inactive suspended deleted"`
	TotalOrders   int           `bson:"total_orders" json:"total_orders" validate:"gte=0"`
	TotalSpent    float64       `bson:"total_spent" json:"total_spent" validate:"gte=0"`
	LastOrderDate time.Time     `bson:"last_order_date,omitempty" json:"last_order_date,omitempty"`
	CreatedAt     time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `bson:"updated_at" json:"updated_at"`
}

type CreateCustomerRequest struct {
	Email     string  `json:"email" binding:"required,email"`
	Password  string  `json:"password" binding:"required,min=8"`
	FirstName string  `json:"first_name" binding:"required"`
	LastName  string  `json:"last_name" binding:"required"`
	Phone     string  `json:"phone"`
	Address   Address `json:"address" binding:"required"`
}

// SetTimestamps sets created_at on first call and always updates updated_at.
func (c *Customer) SetTimestamps() {
	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
}

// GetFullName returns the customer's full name.
func (c *Customer) GetFullName() string {
	return c.FirstName + " " + c.LastName
}

// DefaultAddressIndex returns the index of the default address, falling
// back to the first address, or -1 when the customer has none.
func (c *Customer) DefaultAddressIndex() int {
	for i := range c.Addresses {
		if c.Addresses[i].IsDefault {
			return i
		}
	}
	if len(c.Addresses) > 0 {
		return 0
	}
	return -1
}

// RecordOrder updates the customer's purchase stats after a successful
// checkout.
func (c *Customer) RecordOrder(total float64) {
	c.TotalOrders++
	c.TotalSpent += total
	c.LastOrderDate = time.Now()
	c.UpdatedAt = c.LastOrderDate
}
