package mongo

import (
	"sync"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"

	"github.com/northwind-labs/storefront-api/pkg/global"
)

var (
	clientOnce sync.Once
	client     *mongo.Client
)

func GetMongoClient() *mongo.Client {
	clientOnce.Do(func() {
		serverAPI := options.ServerAPI(options.ServerAPIVersion1)

		clientOptions := options.Client().ApplyURI(global.GetMongoURI()).SetServerAPIOptions(serverAPI)
		c, err := mongo.Connect(clientOptions)
		if err != nil {
			global.Logger.Fatal("failed to create MongoDB client", zap.Error(err))
		}
		client = c
	})
	return client
}

func GetDatabase() *mongo.Database {
	return GetMongoClient().Database(global.GetDatabaseName())
}

func GetCollection(collectionName string) *mongo.Collection {
	return GetDatabase().Collection(collectionName)
}

func InitMongoDB() {

	client := GetMongoClient()
	ctx, cancel := global.GetDefaultTimer()
	defer cancel()

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		global.Logger.Fatal("failed to ping MongoDB", zap.Error(err))
	}

	global.Logger.Info("connected to MongoDB")
}
