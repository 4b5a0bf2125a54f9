package router

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"

	"github.com/northwind-labs/storefront-api/pkg/checkout"
	"github.com/northwind-labs/storefront-api/pkg/global"
	"github.com/northwind-labs/storefront-api/pkg/models"
	"github.com/northwind-labs/storefront-api/pkg/mongo"
	"github.com/northwind-labs/storefront-api/pkg/redis"
)

// GetCheckout returns the session's checkout progress, starting a fresh flow
// at step 1 when none exists. An optional customer_id query binds the flow
// to a customer so address selection can be validated.
func GetCheckout(c *gin.Context) {
	ctx := c.Request.Context()

	session, err := redis.GetCheckoutSession(ctx, sessionID(c))
	if err != nil {
		if !errors.Is(err, redis.ErrCheckoutNotFound) {
			global.Logger.Error("load checkout session", zap.Error(err))
			c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to load checkout", nil))
			return
		}
		session = models.NewCheckoutSession(sessionID(c), c.Query("customer_id"))
		if err := redis.SaveCheckoutSession(ctx, session); err != nil {
			global.Logger.Error("save checkout session", zap.Error(err))
			c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to start checkout", nil))
			return
		}
	}

	c.JSON(http.StatusOK, global.SuccessResponse(session))
}

// UpdateCheckout advances, rewinds, or edits the in-progress flow. A "next"
// action validates the current step before moving; failed validation leaves
// the session where it was.
func UpdateCheckout(c *gin.Context) {
	var req models.UpdateCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request body", []global.ValidationError{
			{Field: "body", Message: err.Error(), Code: "json_parse_error"},
		}))
		return
	}

	ctx := c.Request.Context()
	session, err := redis.GetCheckoutSession(ctx, sessionID(c))
	if err != nil {
		if errors.Is(err, redis.ErrCheckoutNotFound) {
			session = models.NewCheckoutSession(sessionID(c), c.Query("customer_id"))
		} else {
			global.Logger.Error("load checkout session", zap.Error(err))
			c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to load checkout", nil))
			return
		}
	}
	if cid := c.Query("customer_id"); cid != "" {
		session.CustomerID = cid
	}

	addresses, err := checkoutAddresses(c, session)
	if err != nil {
		return // response already written
	}

	if err := checkout.ApplyUpdate(session, &req, addresses); err != nil {
		var vErr *checkout.ValidationError
		if errors.As(err, &vErr) {
			c.JSON(http.StatusBadRequest, global.ErrorResponse("Checkout validation failed", []global.ValidationError{
				{Field: vErr.Field, Message: vErr.Message, Code: vErr.Code},
			}))
			return
		}
		global.Logger.Error("apply checkout update", zap.Error(err))
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to update checkout", nil))
		return
	}

	if err := redis.SaveCheckoutSession(ctx, session); err != nil {
		global.Logger.Error("save checkout session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to update checkout", nil))
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(session))
}

// checkoutAddresses loads the bound customer's address book. An unbound flow
// validates against an empty book, which fails any step that needs one.
func checkoutAddresses(c *gin.Context, session *models.CheckoutSession) ([]models.Address, error) {
	if session.CustomerID == "" {
		return nil, nil
	}
	id, err := bson.ObjectIDFromHex(session.CustomerID)
	if err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid customer ID", []global.ValidationError{
			{Field: "customer_id", Message: "Customer ID must be a valid object id", Code: "invalid_format"},
		}))
		return nil, err
	}
	addresses, err := mongo.ListAddresses(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, mongo.ErrCustomerNotFound) {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Customer not found", nil))
			return nil, err
		}
		global.Logger.Error("load customer addresses", zap.Error(err))
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to load addresses", nil))
		return nil, err
	}
	return addresses, nil
}
