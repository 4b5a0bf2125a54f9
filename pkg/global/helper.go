package global

import (
	"context"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
)

func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func GetDefaultTimer() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

func GetMongoURI() string {
	mongoURI := os.Getenv("MONGODB_URI")
	if mongoURI == "" {
		Logger.Fatal("MONGODB_URI is not set in environment variables")
	}
	return mongoURI
}

func GetDatabaseName() string {
	dbName := GetEnvOrDefault("MONGODB_DATABASE", "storefront")
	return dbName
}

// GetTaxRate returns the flat tax rate applied to the discounted subtotal,
// expressed as a fraction (0.10 for 10%).
func GetTaxRate() float64 {
	raw := GetEnvOrDefault("TAX_RATE", "0.10")
	rate, err := strconv.ParseFloat(raw, 64)
	if err != nil || rate < 0 {
		Logger.Warn("invalid TAX_RATE, falling back to default", zap.String("value", raw))
		return 0.10
	}
	return rate
}

// GetFreeShippingThreshold returns the discounted-subtotal amount at which
// shipping becomes free. Zero or negative disables the promotion, which is
// the default.
func GetFreeShippingThreshold() float64 {
	raw := GetEnvOrDefault("FREE_SHIPPING_THRESHOLD", "0")
	threshold, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		Logger.Warn("invalid FREE_SHIPPING_THRESHOLD, promotion disabled", zap.String("value", raw))
		return 0
	}
	return threshold
}
