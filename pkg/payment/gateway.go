package payment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/northwind-labs/storefront-api/pkg/checkout"
	"github.com/northwind-labs/storefront-api/pkg/global"
	"github.com/northwind-labs/storefront-api/pkg/models"
)

// MockGateway stands in for a real payment processor. Credit cards whose
// number ends in 0000 are declined, everything else is captured; paypal
// charges always succeed since the redirect flow is out of scope.
type MockGateway struct {
	// Latency simulates processor round-trip time. Zero means no delay,
	// which is what tests want.
	Latency time.Duration
}

func NewMockGateway() *MockGateway {
	return &MockGateway{Latency: 150 * time.Millisecond}
}

func (g *MockGateway) Charge(ctx context.Context, ch checkout.Charge) error {
	if g.Latency > 0 {
		select {
		case <-time.After(g.Latency):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	switch ch.PaymentMethod {
	case models.PaymentMethodPaypal:
		global.Logger.Info("payment captured",
			zap.String("order_number", ch.OrderNumber),
			zap.String("method", ch.PaymentMethod),
			zap.Float64("amount", ch.Amount))
		return nil
	case models.PaymentMethodCreditCard:
		if last4(ch.Card.Number) == "0000" {
			return fmt.Errorf("card declined: insufficient funds")
		}
		global.Logger.Info("payment captured",
			zap.String("order_number", ch.OrderNumber),
			zap.String("method", ch.PaymentMethod),
			zap.String("card_last4", last4(ch.Card.Number)),
			zap.Float64("amount", ch.Amount))
		return nil
	default:
		return fmt.Errorf("unsupported payment method %q", ch.PaymentMethod)
	}
}

func last4(cardNumber string) string {
	digits := strings.ReplaceAll(cardNumber, " ", "")
	if len(digits) < 4 {
		return digits
	}
	return digits[len(digits)-4:]
}
