package main

import (
	"log"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/northwind-labs/storefront-api/internal/router"
	"github.com/northwind-labs/storefront-api/pkg/ai"
	"github.com/northwind-labs/storefront-api/pkg/global"
	"github.com/northwind-labs/storefront-api/pkg/mongo"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	global.InitLogger()
	defer global.Logger.Sync()

	mongo.InitMongoDB()
	mongo.EnsureIndexesOnStartup()
	ai.InitializeAIService()

	router.InitEngine()
	router.InitDependencies()
	router.InitializeRoutes()

	port := global.GetEnvOrDefault("PORT", "8000")
	global.Logger.Info("server starting", zap.String("port", port))

	if err := router.Router.Run(":" + port); err != nil {
		global.Logger.Fatal("server exited", zap.Error(err))
	}
}
