package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/northwind-labs/storefront-api/pkg/checkout"
	"github.com/northwind-labs/storefront-api/pkg/global"
	"github.com/northwind-labs/storefront-api/pkg/models"
	"github.com/northwind-labs/storefront-api/pkg/mongo"
	"github.com/northwind-labs/storefront-api/pkg/payment"
)

func TestMain(m *testing.M) {
	global.Logger = zap.NewNop()
	os.Exit(m.Run())
}

type fakePaymentOrders struct {
	order      *models.Order
	statusSets []string
}

func (f *fakePaymentOrders) GetOrderByNumber(_ context.Context, orderNumber string) (*models.Order, error) {
	if f.order == nil || f.order.OrderNumber != orderNumber {
		return nil, mongo.ErrOrderNotFound
	}
	return f.order, nil
}

func (f *fakePaymentOrders) SetOrderPaymentStatus(_ context.Context, _, paymentStatus string) (*models.Order, error) {
	f.statusSets = append(f.statusSets, paymentStatus)
	f.order.PaymentStatus = paymentStatus
	return f.order, nil
}

func paymentTestEngine(t *testing.T, orders paymentOrderStore) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	prevOrders, prevGateway := paymentOrders, gateway
	t.Cleanup(func() { paymentOrders = prevOrders; gateway = prevGateway })

	paymentOrders = orders
	gateway = &payment.MockGateway{}

	e := gin.New()
	e.POST("/api/payments/process", ProcessPayment)
	return e
}

func pendingOrder() *models.Order {
	return &models.Order{
		OrderNumber:   "ORD-20260901-120000-001",
		Status:        models.OrderStatusPending,
		PaymentStatus: models.PaymentStatusPending,
		Breakdown:     models.PriceBreakdown{Total: 115.99},
	}
}

func postPayment(e *gin.Engine, cardNumber string) *httptest.ResponseRecorder {
	body := `{
		"order_number": "ORD-20260901-120000-001",
		"payment_method": "credit_card",
		"card": {"number": "` + cardNumber + `", "name": "Ada Lovelace", "expiry": "12/27", "cvc": "123"}
	}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/payments/process", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	e.ServeHTTP(w, req)
	return w
}

func TestProcessPayment_CaptureMarksPaid(t *testing.T) {
	orders := &fakePaymentOrders{order: pendingOrder()}
	e := paymentTestEngine(t, orders)

	w := postPayment(e, "4242 4242 4242 4242")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{models.PaymentStatusPaid}, orders.statusSets)
	assert.Equal(t, models.PaymentStatusPaid, orders.order.PaymentStatus)
}

func TestProcessPayment_DeclineLeavesOrderUntouched(t *testing.T) {
	orders := &fakePaymentOrders{order: pendingOrder()}
	e := paymentTestEngine(t, orders)

	w := postPayment(e, "4000 0000 0000 0000")

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.Contains(t, w.Body.String(), "payment_declined")
	// A decline persists nothing: the order stays pending so the charge can
	// simply be retried.
	assert.Empty(t, orders.statusSets)
	assert.Equal(t, models.PaymentStatusPending, orders.order.PaymentStatus)

	// Retrying with a valid card then succeeds against the same order.
	w = postPayment(e, "4242 4242 4242 4242")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.PaymentStatusPaid, orders.order.PaymentStatus)
}

func TestProcessPayment_AlreadyPaid(t *testing.T) {
	paid := pendingOrder()
	paid.PaymentStatus = models.PaymentStatusPaid
	orders := &fakePaymentOrders{order: paid}
	e := paymentTestEngine(t, orders)

	w := postPayment(e, "4242 4242 4242 4242")

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "already_paid")
	assert.Empty(t, orders.statusSets)
}

func TestProcessPayment_UnknownOrder(t *testing.T) {
	orders := &fakePaymentOrders{}
	e := paymentTestEngine(t, orders)

	w := postPayment(e, "4242 4242 4242 4242")

	require.Equal(t, http.StatusNotFound, w.Code)
}

// Charge amounts come from the stored breakdown, never the request body.
func TestProcessPayment_ChargesStoredTotal(t *testing.T) {
	orders := &fakePaymentOrders{order: pendingOrder()}
	gin.SetMode(gin.TestMode)

	prevOrders, prevGateway := paymentOrders, gateway
	t.Cleanup(func() { paymentOrders = prevOrders; gateway = prevGateway })

	charged := &chargeRecorder{}
	paymentOrders = orders
	gateway = charged

	e := gin.New()
	e.POST("/api/payments/process", ProcessPayment)

	w := postPayment(e, "4242 4242 4242 4242")

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, charged.charges, 1)
	assert.Equal(t, 115.99, charged.charges[0].Amount)
	assert.Equal(t, "CAD", charged.charges[0].Currency)
}

type chargeRecorder struct {
	charges []checkout.Charge
}

func (r *chargeRecorder) Charge(_ context.Context, ch checkout.Charge) error {
	r.charges = append(r.charges, ch)
	return nil
}
