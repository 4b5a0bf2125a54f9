package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/northwind-labs/storefront-api/pkg/models"
)

// OrderStore adapts the package-level order functions to the narrow
// interfaces the checkout and order flows consume.
type OrderStore struct{}

func (OrderStore) InsertOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	return InsertOrder(ctx, order)
}

func (OrderStore) DeleteOrder(ctx context.Context, orderNumber string) error {
	return DeleteOrder(ctx, orderNumber)
}

func (OrderStore) GetOrderByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	return GetOrderByNumber(ctx, orderNumber)
}

func (OrderStore) SetOrderPaymentStatus(ctx context.Context, orderNumber, paymentStatus string) (*models.Order, error) {
	return SetOrderPaymentStatus(ctx, orderNumber, paymentStatus)
}

var (
	ErrOrderNotFound = errors.New("order not found")
	// ErrStatusConflict means the optimistic status filter did not match:
	// another writer transitioned the order first.
	ErrStatusConflict = errors.New("order status changed concurrently")
)

func InsertOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	collection := GetCollection("orders")

	result, err := collection.InsertOne(ctx, order)
	if err != nil {
		return nil, err
	}
	if oid, ok := result.InsertedID.(bson.ObjectID); ok {
		order.ID = oid
	}

	return order, nil
}

// DeleteOrder removes an order document. Used only by the payment-failure
// rollback path, before the order has ever been exposed to the customer.
func DeleteOrder(ctx context.Context, orderNumber string) error {
	collection := GetCollection("orders")

	result, err := collection.DeleteOne(ctx, bson.D{{Key: "order_number", Value: orderNumber}})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func GetOrderByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	collection := GetCollection("orders")

	var order models.Order
	err := collection.FindOne(ctx, bson.D{{Key: "order_number", Value: orderNumber}}).Decode(&order)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	return &order, nil
}

func GetOrdersByCustomer(ctx context.Context, customerID bson.ObjectID) ([]models.Order, error) {
	collection := GetCollection("orders")

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := collection.Find(ctx, bson.D{{Key: "customer_id", Value: customerID}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}

	return orders, nil
}

// SaveOrderTransition persists a status transition with an optimistic
// filter on the status the transition was computed from. If another writer
// moved the order in between, nothing is written and ErrStatusConflict is
// returned, keeping the adjacency rules intact under concurrency.
func SaveOrderTransition(ctx context.Context, order *models.Order, fromStatus string) error {
	collection := GetCollection("orders")

	filter := bson.D{
		{Key: "order_number", Value: order.OrderNumber},
		{Key: "status", Value: fromStatus},
	}
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "status", Value: order.Status},
			{Key: "timeline", Value: order.Timeline},
			{Key: "updated_at", Value: order.UpdatedAt},
		}},
	}

	result, err := collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrStatusConflict
	}
	return nil
}

// SetOrderPaymentStatus updates the independent payment axis. It never
// touches the order status.
func SetOrderPaymentStatus(ctx context.Context, orderNumber, paymentStatus string) (*models.Order, error) {
	collection := GetCollection("orders")

	dates := bson.D{{Key: "updated_at", Value: true}}
	if paymentStatus == models.PaymentStatusPaid {
		dates = append(dates, bson.E{Key: "timeline.paid_at", Value: true})
	}
	update := bson.D{
		{Key: "$set", Value: bson.D{{Key: "payment_status", Value: paymentStatus}}},
		{Key: "$currentDate", Value: dates},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var order models.Order
	err := collection.FindOneAndUpdate(ctx, bson.D{{Key: "order_number", Value: orderNumber}}, update, opts).Decode(&order)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	return &order, nil
}
