package router

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/northwind-labs/storefront-api/pkg/checkout"
	"github.com/northwind-labs/storefront-api/pkg/global"
	"github.com/northwind-labs/storefront-api/pkg/models"
	"github.com/northwind-labs/storefront-api/pkg/mongo"
)

type processPaymentRequest struct {
	OrderNumber   string              `json:"order_number" binding:"required"`
	PaymentMethod string              `json:"payment_method" binding:"required,oneof=credit_card paypal"`
	Card          *models.CardDetails `json:"card,omitempty"`
}

type paymentOrderStore interface {
	GetOrderByNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	SetOrderPaymentStatus(ctx context.Context, orderNumber, paymentStatus string) (*models.Order, error)
}

var paymentOrders paymentOrderStore = mongo.OrderStore{}

// ProcessPayment charges an existing order whose payment is still pending,
// for flows where capture was deferred past order placement. The normal
// checkout path charges inline and never comes through here. A decline
// leaves the order untouched so the charge can simply be retried; declined
// attempts are never persisted onto the order.
func ProcessPayment(c *gin.Context) {
	var req processPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request body", []global.ValidationError{
			{Field: "body", Message: err.Error(), Code: "json_parse_error"},
		}))
		return
	}

	ctx := c.Request.Context()
	found, err := paymentOrders.GetOrderByNumber(ctx, req.OrderNumber)
	if err != nil {
		if errors.Is(err, mongo.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Order not found", nil))
			return
		}
		global.Logger.Error("fetch order for payment", zap.Error(err))
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to process payment", nil))
		return
	}
	if found.PaymentStatus == models.PaymentStatusPaid {
		c.JSON(http.StatusConflict, global.ErrorResponse("Order already paid", []global.ValidationError{
			{Field: "order_number", Message: "This order has already been paid", Code: "already_paid"},
		}))
		return
	}

	ch := checkout.Charge{
		OrderNumber:   found.OrderNumber,
		Amount:        found.Breakdown.Total,
		Currency:      "CAD",
		PaymentMethod: req.PaymentMethod,
	}
	if req.Card != nil {
		ch.Card = *req.Card
	}

	if err := gateway.Charge(ctx, ch); err != nil {
		c.JSON(http.StatusPaymentRequired, global.ErrorResponse("Payment failed", []global.ValidationError{
			{Field: "payment", Message: err.Error(), Code: "payment_declined"},
		}))
		return
	}

	paid, err := paymentOrders.SetOrderPaymentStatus(ctx, found.OrderNumber, models.PaymentStatusPaid)
	if err != nil {
		global.Logger.Error("mark payment paid", zap.String("order_number", found.OrderNumber), zap.Error(err))
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Payment captured but order update failed", nil))
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(paid))
}
