package models

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Price holds the selling price and an optional pre-sale comparison price.
type Price struct {
	Amount         float64  `json:"amount" bson:"amount" validate:"required,gte=0"`
	CompareAtPrice *float64 `json:"compare_at_price,omitempty" bson:"compare_at_price,omitempty" validate:"omitempty,gte=0"`
}

// VariantOption is a single selectable option within a variant group.
// PriceModifier may be negative; the effective unit price (amount plus the
// sum of selected modifiers) must never drop below zero.
type VariantOption struct {
	Name          string  `json:"name" bson:"name" validate:"required,min=1,max=100"`
	PriceModifier float64 `json:"price_modifier" bson:"price_modifier"`
}

// Variant is a named option group a buyer must choose from, e.g. Size or Color.
type Variant struct {
	Name    string          `json:"name" bson:"name" validate:"required,min=1,max=100"`
	Options []VariantOption `json:"options" bson:"options" validate:"required,min=1,dive"`
}

// Product represents a catalog product. The cart and pricing engine treat
// product data as immutable at read time; only the admin surface and the
// inventory guard write to it.
type Product struct {
	ID            bson.ObjectID     `json:"id" bson:"_id,omitempty"`
	SKU           string            `json:"sku" bson:"sku" validate:"required,min=3,max=50"`
	Name          string            `json:"name" bson:"name" validate:"required,min=2,max=200"`
	Description   string            `json:"description" bson:"description" validate:"max=2000"`
	Category      string            `json:"category" bson:"category" validate:"required,min=2,max=100"`
	Brand         string            `json:"brand" bson:"brand" validate:"required,min=2,max=100"`
	Price         Price             `json:"price" bson:"price"`
	Currency      string            `json:"currency" bson:"currency" validate:"required,len=3"`
	StockQuantity int               `json:"stock_quantity" bson:"stock_quantity" validate:"gte=0"`
	Variants      []Variant         `json:"variants" bson:"variants" validate:"dive"`
	Attributes    map[string]string `json:"attributes" bson:"attributes"`
	Images        []string          `json:"images" bson:"images" validate:"dive,url"`
	Tags          []string          `json:"tags" bson:"tags" validate:"dive,min=2,max=50"`
	Status        string            `json:"status" bson:"status" validate:"required,oneof=active inactive deleted"`
	CreatedAt     time.Time         `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at" bson:"updated_at"`
}

type CreateProductRequest struct {
	Name          string            `json:"name" binding:"required"`
	Description   string            `json:"description"`
	Category      string            `json:"category" binding:"required"`
	Brand         string            `json:"brand" binding:"required"`
	Price         Price             `json:"price" binding:"required"`
	Currency      string            `json:"currency" binding:"required"`
	StockQuantity int               `json:"stock_quantity" binding:"gte=0"`
	Variants      []Variant         `json:"variants"`
	Attributes    map[string]string `json:"attributes"`
	Images        []string          `json:"images"`
	Tags          []string          `json:"tags"`
}

func (req *CreateProductRequest) GenerateSKU() string {
	brandPrefix := strings.ToUpper(req.Brand[:min(3, len(req.Brand))])
	categoryPrefix := strings.ToUpper(req.Category[:min(3, len(req.Category))])
	timestamp := time.Now().Unix()
	return fmt.Sprintf("%s-%s-%d", brandPrefix, categoryPrefix, timestamp)
}

func (req *CreateProductRequest) ToProduct() *Product {
	now := time.Now()
	product := &Product{
		ID:            bson.NewObjectID(),
		SKU:           req.GenerateSKU(),
		Name:          req.Name,
		Description:   req.Description,
		Category:      req.Category,
		Brand:         req.Brand,
		Price:         req.Price,
		Currency:      req.Currency,
		StockQuantity: req.StockQuantity,
		Variants:      req.Variants,
		Attributes:    req.Attributes,
		Images:        req.Images,
		Tags:          req.Tags,
		Status:        "active",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if product.Attributes == nil {
		product.Attributes = make(map[string]string)
	}
	return product
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func (p *Product) IsInStock() bool {
	return p.StockQuantity > 0 && p.Status == "active"
}

// FindVariantOption returns the option matching the given group and option
// names, or nil when either does not exist on this product.
func (p *Product) FindVariantOption(groupName, optionName string) *VariantOption {
	for i := range p.Variants {
		if p.Variants[i].Name != groupName {
			continue
		}
		for j := range p.Variants[i].Options {
			if p.Variants[i].Options[j].Name == optionName {
				return &p.Variants[i].Options[j]
			}
		}
	}
	return nil
}

func (p *Product) SetTimestamps() {
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
}
