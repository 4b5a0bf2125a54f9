package payment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/northwind-labs/storefront-api/pkg/checkout"
	"github.com/northwind-labs/storefront-api/pkg/global"
	"github.com/northwind-labs/storefront-api/pkg/models"
)

func TestMain(m *testing.M) {
	global.Logger = zap.NewNop()
	m.Run()
}

func testGateway() *MockGateway {
	return &MockGateway{Latency: 0}
}

func TestCharge_CreditCardCaptured(t *testing.T) {
	err := testGateway().Charge(context.Background(), checkout.Charge{
		OrderNumber:   "ORD-20260901-120000-001",
		Amount:        115.99,
		Currency:      "CAD",
		PaymentMethod: models.PaymentMethodCreditCard,
		Card:          models.CardDetails{Number: "4242 4242 4242 4242"},
	})

	assert.NoError(t, err)
}

func TestCharge_DeclinesCardEndingInZeros(t *testing.T) {
	err := testGateway().Charge(context.Background(), checkout.Charge{
		PaymentMethod: models.PaymentMethodCreditCard,
		Card:          models.CardDetails{Number: "4242 4242 4242 0000"},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "declined")
}

func TestCharge_PaypalAlwaysSucceeds(t *testing.T) {
	err := testGateway().Charge(context.Background(), checkout.Charge{
		PaymentMethod: models.PaymentMethodPaypal,
	})

	assert.NoError(t, err)
}

func TestCharge_UnknownMethod(t *testing.T) {
	err := testGateway().Charge(context.Background(), checkout.Charge{
		PaymentMethod: "barter",
	})

	assert.Error(t, err)
}

func TestCharge_ContextCancelled(t *testing.T) {
	g := NewMockGateway()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := g.Charge(ctx, checkout.Charge{PaymentMethod: models.PaymentMethodPaypal})

	assert.ErrorIs(t, err, context.Canceled)
}
