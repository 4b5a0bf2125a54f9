package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/northwind-labs/storefront-api/pkg/global"
	"github.com/northwind-labs/storefront-api/pkg/models"
)

var ErrProductNotFound = errors.New("product not found")

func GetAllProducts(ctx context.Context) ([]models.Product, error) {
	collection := GetCollection("products")

	cursor, err := collection.Find(ctx, bson.D{{Key: "status", Value: "active"}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}

	return products, nil
}

func GetProductBySKU(ctx context.Context, sku string) (*models.Product, error) {
	collection := GetCollection("products")

	var product models.Product
	err := collection.FindOne(ctx, bson.D{{Key: "sku", Value: sku}}).Decode(&product)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	return &product, nil
}

func GetProductByID(ctx context.Context, id bson.ObjectID) (*models.Product, error) {
	collection := GetCollection("products")

	var product models.Product
	err := collection.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&product)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	return &product, nil
}

func CreateProducts(ctx context.Context, products []*models.Product) ([]*models.Product, error) {
	collection := GetCollection("products")

	docs := make([]interface{}, len(products))
	for i, p := range products {
		docs[i] = p
	}

	if _, err := collection.InsertMany(ctx, docs); err != nil {
		return nil, err
	}

	return products, nil
}

func GetAllCategories() ([]string, error) {
	ctx, cancel := global.GetDefaultTimer()
	defer cancel()
	collection := GetCollection("products")

	raw, err := collection.Distinct(ctx, "category", bson.D{}).Raw()
	if err != nil {
		return nil, err
	}

	values, err := raw.Values()
	if err != nil {
		return nil, err
	}

	categories := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.StringValueOK(); ok {
			categories = append(categories, s)
		}
	}
	return categories, nil
}
