package router

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"

	"github.com/northwind-labs/storefront-api/pkg/global"
	"github.com/northwind-labs/storefront-api/pkg/models"
	"github.com/northwind-labs/storefront-api/pkg/mongo"
	"github.com/northwind-labs/storefront-api/pkg/pricing"
	"github.com/northwind-labs/storefront-api/pkg/redis"
)

// CartView is what every cart endpoint returns: the cart plus the breakdown
// recomputed from scratch. Totals are never read back from storage.
type CartView struct {
	Cart      *models.Cart          `json:"cart"`
	Breakdown models.PriceBreakdown `json:"breakdown"`
}

// buildCartView recomputes the authoritative breakdown for a cart. The
// coupon slot is re-validated on every read; a coupon that stopped
// qualifying surfaces as a warning with discount 0, it is not silently
// dropped from the cart.
func buildCartView(c *gin.Context, cart *models.Cart) (CartView, string) {
	var cpn *models.Coupon
	warning := ""

	if cart.CouponCode != "" {
		res, err := resolver.Resolve(c.Request.Context(), cart.CouponCode, cart, pricing.Subtotal(cart))
		if err != nil {
			global.Logger.Error("resolve cart coupon", zap.String("code", cart.CouponCode), zap.Error(err))
			warning = "coupon could not be verified"
		} else if res.Accepted {
			cpn = res.Coupon
		} else {
			warning = "coupon " + cart.CouponCode + " no longer applies: " + res.Reason
		}
	}

	result := engine.Compute(cart, cpn, models.ShippingStandard)
	return CartView{Cart: cart, Breakdown: result.Breakdown}, warning
}

func respondWithCart(c *gin.Context, status int, cart *models.Cart) {
	view, warning := buildCartView(c, cart)
	if warning != "" {
		c.JSON(status, global.SuccessResponseWithWarning(view, warning))
		return
	}
	c.JSON(status, global.SuccessResponse(view))
}

func GetCart(c *gin.Context) {
	cart, err := redis.GetCart(c.Request.Context(), sessionID(c))
	if err != nil {
		global.Logger.Error("load cart", zap.Error(err))
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to load cart", nil))
		return
	}
	respondWithCart(c, http.StatusOK, cart)
}

func AddToCart(c *gin.Context) {
	var req models.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request body", []global.ValidationError{
			{Field: "body", Message: err.Error(), Code: "json_parse_error"},
		}))
		return
	}

	ctx := c.Request.Context()
	product, err := mongo.GetProductBySKU(ctx, req.SKU)
	if err != nil {
		if errors.Is(err, mongo.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Product not found", []global.ValidationError{
				{Field: "sku", Message: "No product exists with this SKU", Code: "not_found"},
			}))
			return
		}
		global.Logger.Error("fetch product for cart", zap.String("sku", req.SKU), zap.Error(err))
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to add to cart", nil))
		return
	}
	if !product.IsInStock() {
		c.JSON(http.StatusConflict, global.ErrorResponse("Product is out of stock", []global.ValidationError{
			{Field: "sku", Message: "This product is currently out of stock", Code: "out_of_stock"},
		}))
		return
	}

	selections, verr := resolveSelections(product, req.SelectedVariants)
	if verr != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid variant selection", []global.ValidationError{*verr}))
		return
	}

	cart, err := redis.AddToCart(ctx, sessionID(c), product, req.Quantity, selections)
	if err != nil {
		global.Logger.Error("add to cart", zap.Error(err))
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to add to cart", nil))
		return
	}
	respondWithCart(c, http.StatusOK, cart)
}

// resolveSelections maps client variant choices onto the product's variant
// groups, copying each option's price modifier into the cart line. Every
// group the product defines must be chosen exactly once.
func resolveSelections(product *models.Product, choices []models.VariantChoice) ([]models.SelectedVariant, *global.ValidationError) {
	if len(choices) != len(product.Variants) {
		return nil, &global.ValidationError{
			Field:   "selected_variants",
			Message: "every variant group must have a selection",
			Code:    "incomplete_selection",
		}
	}

	selections := make([]models.SelectedVariant, 0, len(choices))
	for _, choice := range choices {
		option := product.FindVariantOption(choice.Name, choice.Value)
		if option == nil {
			return nil, &global.ValidationError{
				Field:   "selected_variants",
				Message: "unknown option " + choice.Value + " for variant " + choice.Name,
				Code:    "unknown_option",
			}
		}
		selections = append(selections, models.SelectedVariant{
			Name:          choice.Name,
			Value:         choice.Value,
			PriceModifier: option.PriceModifier,
		})
	}
	return selections, nil
}

func UpdateCartItem(c *gin.Context) {
	lineID := c.Param("lineId")

	var req models.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request body", []global.ValidationError{
			{Field: "body", Message: err.Error(), Code: "json_parse_error"},
		}))
		return
	}

	ctx := c.Request.Context()
	cart, err := redis.GetCart(ctx, sessionID(c))
	if err != nil {
		global.Logger.Error("load cart", zap.Error(err))
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to load cart", nil))
		return
	}
	line := cart.FindLine(lineID)
	if line == nil {
		c.JSON(http.StatusNotFound, global.ErrorResponse("Cart item not found", []global.ValidationError{
			{Field: "lineId", Message: "No cart item with this id", Code: "not_found"},
		}))
		return
	}

	stock, err := lineStock(c, line)
	if err != nil {
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to update cart item", nil))
		return
	}

	cart, err = redis.UpdateCartItem(ctx, sessionID(c), lineID, req.Quantity, stock)
	if err != nil {
		if errors.Is(err, redis.ErrLineNotFound) {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Cart item not found", nil))
			return
		}
		global.Logger.Error("update cart item", zap.Error(err))
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to update cart item", nil))
		return
	}
	respondWithCart(c, http.StatusOK, cart)
}

// lineStock looks up the live stock for the product behind a cart line so
// the clamp rule can apply at mutation time.
func lineStock(c *gin.Context, line *models.CartLineItem) (int, error) {
	id, err := bson.ObjectIDFromHex(line.ProductID)
	if err != nil {
		global.Logger.Error("parse cart line product id", zap.String("product_id", line.ProductID), zap.Error(err))
		return 0, err
	}
	product, err := mongo.GetProductByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, mongo.ErrProductNotFound) {
			// Product withdrawn since it was added; nothing left to sell.
			return 0, nil
		}
		global.Logger.Error("fetch product stock", zap.String("product_id", line.ProductID), zap.Error(err))
		return 0, err
	}
	return product.StockQuantity, nil
}

func RemoveFromCart(c *gin.Context) {
	cart, err := redis.RemoveFromCart(c.Request.Context(), sessionID(c), c.Param("lineId"))
	if err != nil {
		if errors.Is(err, redis.ErrLineNotFound) {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Cart item not found", nil))
			return
		}
		global.Logger.Error("remove cart item", zap.Error(err))
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to remove cart item", nil))
		return
	}
	respondWithCart(c, http.StatusOK, cart)
}

func ClearCart(c *gin.Context) {
	if err := redis.ClearCart(c.Request.Context(), sessionID(c)); err != nil {
		global.Logger.Error("clear cart", zap.Error(err))
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to clear cart", nil))
		return
	}
	respondWithCart(c, http.StatusOK, models.NewEmptyCart(sessionID(c)))
}

// ApplyCoupon validates the code against the current cart before storing it.
// A cart holds at most one code; applying a second replaces the first.
func ApplyCoupon(c *gin.Context) {
	var req models.ApplyCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request body", []global.ValidationError{
			{Field: "body", Message: err.Error(), Code: "json_parse_error"},
		}))
		return
	}

	ctx := c.Request.Context()
	cart, err := redis.GetCart(ctx, sessionID(c))
	if err != nil {
		global.Logger.Error("load cart", zap.Error(err))
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to load cart", nil))
		return
	}

	res, err := resolver.Resolve(ctx, req.Code, cart, pricing.Subtotal(cart))
	if err != nil {
		global.Logger.Error("resolve coupon", zap.String("code", req.Code), zap.Error(err))
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to apply coupon", nil))
		return
	}
	if !res.Accepted {
		c.JSON(http.StatusUnprocessableEntity, global.ErrorResponse("Coupon not applicable", []global.ValidationError{
			{Field: "code", Message: "Coupon cannot be applied to this cart", Code: res.Reason},
		}))
		return
	}

	cart, err = redis.ApplyCoupon(ctx, sessionID(c), res.Coupon.Code)
	if err != nil {
		global.Logger.Error("store coupon", zap.Error(err))
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to apply coupon", nil))
		return
	}
	respondWithCart(c, http.StatusOK, cart)
}

func RemoveCoupon(c *gin.Context) {
	cart, err := redis.RemoveCoupon(c.Request.Context(), sessionID(c))
	if err != nil {
		global.Logger.Error("remove coupon", zap.Error(err))
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to remove coupon", nil))
		return
	}
	respondWithCart(c, http.StatusOK, cart)
}
