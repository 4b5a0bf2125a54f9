package router

import (
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/northwind-labs/storefront-api/pkg/checkout"
	"github.com/northwind-labs/storefront-api/pkg/coupon"
	"github.com/northwind-labs/storefront-api/pkg/global"
	"github.com/northwind-labs/storefront-api/pkg/inventory"
	"github.com/northwind-labs/storefront-api/pkg/mongo"
	"github.com/northwind-labs/storefront-api/pkg/payment"
	"github.com/northwind-labs/storefront-api/pkg/pricing"
	"github.com/northwind-labs/storefront-api/pkg/redis"
)

var Router *gin.Engine

// Shared collaborators for the handlers. Built once at startup; tests swap
// them for fakes.
var (
	engine       pricing.Engine
	resolver     *coupon.Resolver
	gateway      checkout.Gateway
	orchestrator *checkout.Orchestrator
)

// InitDependencies wires the pricing engine, coupon resolver, payment
// gateway and checkout orchestrator from their production backends.
func InitDependencies() {
	engine = pricing.New(global.GetTaxRate(), global.GetFreeShippingThreshold())
	resolver = coupon.NewResolver(mongo.NewCouponStore())
	gateway = payment.NewMockGateway()
	orchestrator = &checkout.Orchestrator{
		Carts:     redis.CartStore{},
		Sessions:  redis.CheckoutStore{},
		Customers: mongo.CustomerStore{},
		Orders:    mongo.OrderStore{},
		Guard:     inventory.NewMongoGuard(),
		Gateway:   gateway,
		Engine:    engine,
		Resolver:  resolver,
	}
}

func InitEngine() {
	if os.Getenv("ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	Router = gin.Default()

	origins := strings.Split(global.GetEnvOrDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173"), ",")
	Router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", "X-Session-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Session-ID", "X-Cache"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}

func InitializeRoutes() {
	api := Router.Group("/api")
	api.Use(SessionMiddleware())
	{
		api.GET("/health", HealthCheck)

		products := api.Group("/products")
		{
			products.GET("", GetAllProducts)
			products.POST("", CreateNewProducts)
			products.GET("/:sku", GetProductBySKU)
		}

		api.GET("/categories", GetAllCategories)

		cart := api.Group("/cart")
		{
			cart.GET("", GetCart)
			cart.DELETE("", ClearCart)
			cart.POST("/items", AddToCart)
			cart.PUT("/items/:lineId", UpdateCartItem)
			cart.DELETE("/items/:lineId", RemoveFromCart)
			cart.POST("/coupon", ApplyCoupon)
			cart.DELETE("/coupon", RemoveCoupon)
		}

		co := api.Group("/checkout")
		{
			co.GET("", GetCheckout)
			co.PUT("", UpdateCheckout)
		}

		orders := api.Group("/orders")
		{
			orders.POST("", PlaceOrder)
			orders.GET("", GetCustomerOrders)
			orders.GET("/:orderNumber", GetOrderByNumber)
			orders.PUT("/:orderNumber/status", UpdateOrderStatus)
			orders.POST("/:orderNumber/cancel", CancelOrder)
		}

		api.POST("/payments/process", ProcessPayment)

		customers := api.Group("/customers")
		{
			customers.POST("", CreateCustomer)
			customers.GET("/:id", GetCustomerByID)
		}

		analytics := api.Group("/analytics")
		{
			ai := analytics.Group("/ai")
			{
				ai.GET("/sales-report", GenerateAISalesReport)
			}
		}
	}
}
