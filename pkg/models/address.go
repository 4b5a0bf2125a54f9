package models

// Address represents a shipping or billing address.
type Address struct {
	Street     string `json:"street" bson:"street" binding:"required"`
	City       string `json:"city" bson:"city" binding:"required"`
	Province   string `json:"province" bson:"province" binding:"required"`
	PostalCode string `json:"postal_code" bson:"postal_code" binding:"required"`
	Country    string `json:"country" bson:"country" binding:"required"`
	IsDefault  bool   `json:"is_default" bson:"is_default"`
}
