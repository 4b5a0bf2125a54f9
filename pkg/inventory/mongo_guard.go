package inventory

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	driver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.uber.org/zap"

	"github.com/northwind-labs/storefront-api/pkg/global"
	"github.com/northwind-labs/storefront-api/pkg/models"
	"github.com/northwind-labs/storefront-api/pkg/mongo"
)

// MongoGuard backs the guard with the products collection. The conditional
// update filter makes validate-and-decrement a single server-side step, so
// there is no race window between the check and the reservation.
type MongoGuard struct{}

func NewMongoGuard() *MongoGuard {
	return &MongoGuard{}
}

func (g *MongoGuard) Reserve(ctx context.Context, productID string, quantity int) error {
	objectID, err := bson.ObjectIDFromHex(productID)
	if err != nil {
		return ErrProductNotFound
	}

	collection := mongo.GetCollection("products")

	filter := bson.D{
		{Key: "_id", Value: objectID},
		{Key: "stock_quantity", Value: bson.D{{Key: "$gte", Value: quantity}}},
	}
	update := bson.D{
		{Key: "$inc", Value: bson.D{{Key: "stock_quantity", Value: -quantity}}},
		{Key: "$currentDate", Value: bson.D{{Key: "updated_at", Value: true}}},
	}

	var updated models.Product
	err = collection.FindOneAndUpdate(ctx, filter, update).Decode(&updated)
	if err != nil {
		if err == driver.ErrNoDocuments {
			return ErrInsufficientStock
		}
		return err
	}

	g.logMovement(ctx, objectID, updated.SKU, models.StockChangeSale, -quantity)
	return nil
}

func (g *MongoGuard) Release(ctx context.Context, productID string, quantity int) error {
	objectID, err := bson.ObjectIDFromHex(productID)
	if err != nil {
		return ErrProductNotFound
	}

	collection := mongo.GetCollection("products")

	update := bson.D{
		{Key: "$inc", Value: bson.D{{Key: "stock_quantity", Value: quantity}}},
		{Key: "$currentDate", Value: bson.D{{Key: "updated_at", Value: true}}},
	}

	var updated models.Product
	err = collection.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: objectID}}, update).Decode(&updated)
	if err != nil {
		if err == driver.ErrNoDocuments {
			return ErrProductNotFound
		}
		return err
	}

	g.logMovement(ctx, objectID, updated.SKU, models.StockChangeRelease, quantity)
	return nil
}

// logMovement writes the audit record for a stock mutation. Audit failures
// are logged, not propagated: the stock change itself already committed.
func (g *MongoGuard) logMovement(ctx context.Context, productID bson.ObjectID, sku, changeType string, delta int) {
	movement := &models.StockMovement{
		ProductID:       productID,
		SKU:             sku,
		ChangeType:      changeType,
		QuantityChanged: delta,
	}
	movement.SetTimestamp()

	if _, err := mongo.GetCollection("stock_movements").InsertOne(ctx, movement); err != nil {
		global.Logger.Warn("failed to record stock movement",
			zap.String("sku", sku),
			zap.String("change_type", changeType),
			zap.Error(err))
	}
}
