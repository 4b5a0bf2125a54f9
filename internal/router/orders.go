package router

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"

	"github.com/northwind-labs/storefront-api/pkg/checkout"
	"github.com/northwind-labs/storefront-api/pkg/global"
	"github.com/northwind-labs/storefront-api/pkg/inventory"
	"github.com/northwind-labs/storefront-api/pkg/models"
	"github.com/northwind-labs/storefront-api/pkg/mongo"
	"github.com/northwind-labs/storefront-api/pkg/order"
	"github.com/northwind-labs/storefront-api/pkg/redis"
)

// PlaceOrder finalizes the current checkout into an order; this is the only
// write path into the orders collection.
func PlaceOrder(c *gin.Context) {
	var req models.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request body", []global.ValidationError{
			{Field: "body", Message: err.Error(), Code: "json_parse_error"},
		}))
		return
	}
	customerID, err := bson.ObjectIDFromHex(req.CustomerID)
	if err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid customer ID", []global.ValidationError{
			{Field: "customer_id", Message: "Customer ID must be a valid object id", Code: "invalid_format"},
		}))
		return
	}

	placed, err := orchestrator.Finalize(c.Request.Context(), sessionID(c), customerID)
	if err != nil {
		respondFinalizeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, global.SuccessResponse(placed))
}

func respondFinalizeError(c *gin.Context, err error) {
	var vErr *checkout.ValidationError
	var stockErr *inventory.InsufficientStockError
	var payErr *checkout.PaymentFailureError

	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Checkout validation failed", []global.ValidationError{
			{Field: vErr.Field, Message: vErr.Message, Code: vErr.Code},
		}))
	case errors.As(err, &stockErr):
		c.JSON(http.StatusConflict, global.ErrorResponse(stockErr.Error(), stockValidationErrors(stockErr)))
	case errors.As(err, &payErr):
		c.JSON(http.StatusPaymentRequired, global.ErrorResponse("Payment failed", []global.ValidationError{
			{Field: "payment", Message: payErr.Reason, Code: "payment_declined"},
		}))
	case errors.Is(err, checkout.ErrCartEmpty):
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Cart is empty", []global.ValidationError{
			{Field: "cart", Message: "Cannot place an order from an empty cart", Code: "empty_cart"},
		}))
	case errors.Is(err, checkout.ErrCheckoutIncomplete), errors.Is(err, redis.ErrCheckoutNotFound):
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Checkout not complete", []global.ValidationError{
			{Field: "checkout", Message: "Complete all checkout steps before placing the order", Code: "checkout_incomplete"},
		}))
	case errors.Is(err, mongo.ErrCustomerNotFound):
		c.JSON(http.StatusNotFound, global.ErrorResponse("Customer not found", nil))
	default:
		global.Logger.Error("place order", zap.Error(err))
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to place order", nil))
	}
}

func stockValidationErrors(stockErr *inventory.InsufficientStockError) []global.ValidationError {
	out := make([]global.ValidationError, 0, len(stockErr.Lines))
	for _, line := range stockErr.Lines {
		out = append(out, global.ValidationError{
			Field:   line.SKU,
			Message: "Insufficient stock for this item",
			Code:    "insufficient_stock",
		})
	}
	return out
}

func GetCustomerOrders(c *gin.Context) {
	customerID, err := bson.ObjectIDFromHex(c.Query("customer_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid customer ID", []global.ValidationError{
			{Field: "customer_id", Message: "customer_id query parameter must be a valid object id", Code: "invalid_format"},
		}))
		return
	}

	orders, err := mongo.GetOrdersByCustomer(c.Request.Context(), customerID)
	if err != nil {
		global.Logger.Error("list orders", zap.Error(err))
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to get orders", nil))
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(orders))
}

func GetOrderByNumber(c *gin.Context) {
	found, err := mongo.GetOrderByNumber(c.Request.Context(), c.Param("orderNumber"))
	if err != nil {
		if errors.Is(err, mongo.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Order not found", nil))
			return
		}
		global.Logger.Error("fetch order", zap.Error(err))
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to fetch order", nil))
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(found))
}

type updateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateOrderStatus applies one fulfillment transition. Illegal jumps are
// rejected and the order is left untouched.
func UpdateOrderStatus(c *gin.Context) {
	var req updateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request body", []global.ValidationError{
			{Field: "body", Message: err.Error(), Code: "json_parse_error"},
		}))
		return
	}
	if !order.IsValidStatus(req.Status) {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Unknown order status", []global.ValidationError{
			{Field: "status", Message: "Status must be one of the order lifecycle states", Code: "invalid"},
		}))
		return
	}

	transitionOrder(c, c.Param("orderNumber"), req.Status)
}

// CancelOrder is the customer-facing shortcut to the cancelled state.
func CancelOrder(c *gin.Context) {
	transitionOrder(c, c.Param("orderNumber"), models.OrderStatusCancelled)
}

func transitionOrder(c *gin.Context, orderNumber, to string) {
	ctx := c.Request.Context()

	found, err := mongo.GetOrderByNumber(ctx, orderNumber)
	if err != nil {
		if errors.Is(err, mongo.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Order not found", nil))
			return
		}
		global.Logger.Error("fetch order", zap.Error(err))
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to fetch order", nil))
		return
	}

	if to == models.OrderStatusCancelled && !found.CanBeCancelled() {
		c.JSON(http.StatusConflict, global.ErrorResponse("Order cannot be cancelled", []global.ValidationError{
			{Field: "status", Message: "Order is past the point of cancellation", Code: "illegal_transition"},
		}))
		return
	}

	from := found.Status
	if err := order.Apply(found, to); err != nil {
		var illegal *order.IllegalTransitionError
		if errors.As(err, &illegal) {
			c.JSON(http.StatusConflict, global.ErrorResponse(illegal.Error(), []global.ValidationError{
				{Field: "status", Message: illegal.Error(), Code: "illegal_transition"},
			}))
			return
		}
		global.Logger.Error("apply order transition", zap.Error(err))
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to update order", nil))
		return
	}

	if err := mongo.SaveOrderTransition(ctx, found, from); err != nil {
		if errors.Is(err, mongo.ErrStatusConflict) {
			c.JSON(http.StatusConflict, global.ErrorResponse("Order status changed concurrently", []global.ValidationError{
				{Field: "status", Message: "The order was updated by another request; reload and retry", Code: "conflict"},
			}))
			return
		}
		global.Logger.Error("save order transition", zap.Error(err))
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to update order", nil))
		return
	}

	if order.ReleasesStock(to) {
		releaseOrderStock(c, found)
		if found.PaymentStatus == models.PaymentStatusPaid {
			refunded, err := mongo.SetOrderPaymentStatus(ctx, found.OrderNumber, models.PaymentStatusRefunded)
			if err != nil {
				global.Logger.Error("refund cancelled order",
					zap.String("order_number", found.OrderNumber), zap.Error(err))
			} else {
				found = refunded
			}
		}
	}

	c.JSON(http.StatusOK, global.SuccessResponse(found))
}

// releaseOrderStock puts the order's reserved quantities back. Returned
// orders keep their stock committed until goods are inspected; only
// cancellation reaches here.
func releaseOrderStock(c *gin.Context, o *models.Order) {
	lines := make([]inventory.CommitLine, 0, len(o.Items))
	for _, item := range o.Items {
		lines = append(lines, inventory.CommitLine{
			ProductID: item.ProductID,
			SKU:       item.SKU,
			Quantity:  item.Quantity,
		})
	}
	if err := inventory.ReleaseAll(c.Request.Context(), orchestrator.Guard, lines); err != nil {
		global.Logger.Error("release cancelled order stock",
			zap.String("order_number", o.OrderNumber), zap.Error(err))
	}
}
