package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/northwind-labs/storefront-api/pkg/models"
)

var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrEmailExists      = errors.New("email already exists")
)

// CustomerStore adapts the package-level customer functions for consumers
// that take an interface.
type CustomerStore struct{}

func (CustomerStore) GetCustomerByID(ctx context.Context, id bson.ObjectID) (*models.Customer, error) {
	return GetCustomerByID(ctx, id)
}

func (CustomerStore) RecordCustomerOrder(ctx context.Context, customerID bson.ObjectID, total float64) error {
	return RecordCustomerOrder(ctx, customerID, total)
}

func CreateCustomer(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	collection := GetCollection("customers")

	result, err := collection.InsertOne(ctx, customer)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	if oid, ok := result.InsertedID.(bson.ObjectID); ok {
		customer.ID = oid
	}

	return customer, nil
}

func GetCustomerByID(ctx context.Context, id bson.ObjectID) (*models.Customer, error) {
	collection := GetCollection("customers")

	var customer models.Customer
	err := collection.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&customer)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}

	return &customer, nil
}

// ListAddresses returns the customer's address book for checkout address
// selection.
func ListAddresses(ctx context.Context, customerID bson.ObjectID) ([]models.Address, error) {
	customer, err := GetCustomerByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return customer.Addresses, nil
}

// RecordCustomerOrder bumps the customer's purchase stats after a
// successful checkout.
func RecordCustomerOrder(ctx context.Context, customerID bson.ObjectID, total float64) error {
	collection := GetCollection("customers")

	update := bson.D{
		{Key: "$inc", Value: bson.D{
			{Key: "total_orders", Value: 1},
			{Key: "total_spent", Value: total},
		}},
		{Key: "$currentDate", Value: bson.D{
			{Key: "last_order_date", Value: true},
			{Key: "updated_at", Value: true},
		}},
	}

	result, err := collection.UpdateOne(ctx, bson.D{{Key: "_id", Value: customerID}}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrCustomerNotFound
	}
	return nil
}
