package router

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/singleflight"

	"github.com/northwind-labs/storefront-api/pkg/global"
	"github.com/northwind-labs/storefront-api/pkg/models"
	"github.com/northwind-labs/storefront-api/pkg/mongo"
	"github.com/northwind-labs/storefront-api/pkg/redis"
)

func HealthCheck(c *gin.Context) {
	db := mongo.GetDatabase()
	if err := db.Client().Ping(c, nil); err != nil {
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Database connection failed", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(map[string]string{"status": "OK", "database": "Connected"}))
}

func GetAllProducts(c *gin.Context) {
	products, err := mongo.GetAllProducts(c.Request.Context())
	if err != nil {
		global.Logger.Error("list products", zap.Error(err))
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to get products", nil))
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(products))
}

// productLoads collapses concurrent cache-miss lookups for the same SKU into
// a single database read.
var productLoads singleflight.Group

// GetProductBySKU retrieves a product by SKU, Redis cache first.
func GetProductBySKU(c *gin.Context) {
	sku := c.Param("sku")
	if len(sku) < 3 || len(sku) > 50 {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid SKU format", []global.ValidationError{
			{Field: "sku", Message: "SKU must be between 3 and 50 characters", Code: "invalid_format"},
		}))
		return
	}

	ctx := c.Request.Context()

	product, err := redis.GetProductBySKUFromCache(ctx, sku)
	if err == nil {
		c.Header("X-Cache", "HIT")
		c.JSON(http.StatusOK, global.SuccessResponse(product))
		return
	}

	result, err, _ := productLoads.Do(sku, func() (interface{}, error) {
		p, err := mongo.GetProductBySKU(ctx, sku)
		if err != nil {
			return nil, err
		}
		if cacheErr := redis.CacheSingleProduct(ctx, p); cacheErr != nil {
			global.Logger.Warn("cache product", zap.String("sku", sku), zap.Error(cacheErr))
		}
		return p, nil
	})
	if err != nil {
		if errors.Is(err, mongo.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Product not found", []global.ValidationError{
				{Field: "sku", Message: "No product exists with this SKU", Code: "not_found"},
			}))
			return
		}
		global.Logger.Error("fetch product", zap.String("sku", sku), zap.Error(err))
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to fetch product", nil))
		return
	}

	c.Header("X-Cache", "MISS")
	c.JSON(http.StatusOK, global.SuccessResponse(result.(*models.Product)))
}

// CreateNewProducts bulk-inserts catalog entries. Back-office only.
func CreateNewProducts(c *gin.Context) {
	var requests []models.CreateProductRequest
	if err := c.ShouldBindJSON(&requests); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request body", []global.ValidationError{
			{Field: "body", Message: err.Error(), Code: "json_parse_error"},
		}))
		return
	}
	if len(requests) == 0 {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("No products provided", []global.ValidationError{
			{Field: "body", Message: "Request body must contain at least one product", Code: "empty_list"},
		}))
		return
	}

	products := make([]*models.Product, 0, len(requests))
	for i := range requests {
		products = append(products, requests[i].ToProduct())
	}

	ctx := c.Request.Context()
	created, err := mongo.CreateProducts(ctx, products)
	if err != nil {
		global.Logger.Error("create products", zap.Error(err))
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to create products", nil))
		return
	}

	if cacheErr := redis.AddProductsToCache(ctx, created); cacheErr != nil {
		global.Logger.Warn("cache created products", zap.Error(cacheErr))
	}

	c.JSON(http.StatusCreated, global.SuccessResponse(created))
}

func GetAllCategories(c *gin.Context) {
	categories, err := mongo.GetAllCategories()
	if err != nil {
		global.Logger.Error("list categories", zap.Error(err))
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to get categories", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(categories))
}

func CreateCustomer(c *gin.Context) {
	var req models.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request body", []global.ValidationError{
			{Field: "body", Message: err.Error(), Code: "json_parse_error"},
		}))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		global.Logger.Error("hash password", zap.Error(err))
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to create customer", nil))
		return
	}

	req.Address.IsDefault = true
	customer := &models.Customer{
		Email:         req.Email,
		Password:      string(hashed),
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Phone:         req.Phone,
		Addresses:     []models.Address{req.Address},
		AccountStatus: "active",
	}
	customer.SetTimestamps()

	created, err := mongo.CreateCustomer(c.Request.Context(), customer)
	if err != nil {
		if errors.Is(err, mongo.ErrEmailExists) {
			c.JSON(http.StatusConflict, global.ErrorResponse("Email already registered", []global.ValidationError{
				{Field: "email", Message: "A customer with this email already exists", Code: "duplicate"},
			}))
			return
		}
		global.Logger.Error("create customer", zap.Error(err))
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to create customer", nil))
		return
	}

	c.JSON(http.StatusCreated, global.SuccessResponse(created))
}

func GetCustomerByID(c *gin.Context) {
	id, err := bson.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid customer ID", []global.ValidationError{
			{Field: "id", Message: "Customer ID must be a valid object id", Code: "invalid_format"},
		}))
		return
	}

	customer, err := mongo.GetCustomerByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, mongo.ErrCustomerNotFound) {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Customer not found", nil))
			return
		}
		global.Logger.Error("fetch customer", zap.Error(err))
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to fetch customer", nil))
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(customer))
}
