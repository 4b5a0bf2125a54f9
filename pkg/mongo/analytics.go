package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/northwind-labs/storefront-api/pkg/models"
)

type SalesBucket struct {
	Period     string  `json:"period" bson:"_id"`
	OrderCount int     `json:"order_count" bson:"order_count"`
	Revenue    float64 `json:"revenue" bson:"revenue"`
	AvgOrder   float64 `json:"avg_order" bson:"avg_order"`
	ItemsSold  int     `json:"items_sold" bson:"items_sold"`
}

type SalesAnalyticsResult struct {
	Buckets     []SalesBucket `json:"buckets"`
	TotalOrders int           `json:"total_orders"`
	TotalSales  float64       `json:"total_sales"`
}

// GetSalesAnalytics aggregates non-cancelled orders into per-period revenue
// buckets. groupBy accepts "day" or "month".
func GetSalesAnalytics(ctx context.Context, startDate, endDate time.Time, groupBy string) (*SalesAnalyticsResult, error) {
	collection := GetCollection("orders")

	dateFormat := "%Y-%m-%d"
	if groupBy == "month" {
		dateFormat = "%Y-%m"
	}

	pipeline := bson.A{
		bson.D{
			{Key: "$match", Value: bson.D{
				{Key: "created_at", Value: bson.D{
					{Key: "$gte", Value: startDate},
					{Key: "$lte", Value: endDate},
				}},
				{Key: "status", Value: bson.D{
					{Key: "$nin", Value: bson.A{models.OrderStatusCancelled, models.OrderStatusReturned}},
				}},
			}},
		},
		bson.D{
			{Key: "$addFields", Value: bson.D{
				{Key: "items_count", Value: bson.D{
					{Key: "$sum", Value: "$items.quantity"},
				}},
			}},
		},
		bson.D{
			{Key: "$group", Value: bson.D{
				{Key: "_id", Value: bson.D{
					{Key: "$dateToString", Value: bson.D{
						{Key: "format", Value: dateFormat},
						{Key: "date", Value: "$created_at"},
					}},
				}},
				{Key: "order_count", Value: bson.D{{Key: "$sum", Value: 1}}},
				{Key: "revenue", Value: bson.D{{Key: "$sum", Value: "$breakdown.total"}}},
				{Key: "avg_order", Value: bson.D{{Key: "$avg", Value: "$breakdown.total"}}},
				{Key: "items_sold", Value: bson.D{{Key: "$sum", Value: "$items_count"}}},
			}},
		},
		bson.D{
			{Key: "$addFields", Value: bson.D{
				{Key: "revenue", Value: bson.D{{Key: "$round", Value: bson.A{"$revenue", 2}}}},
				{Key: "avg_order", Value: bson.D{{Key: "$round", Value: bson.A{"$avg_order", 2}}}},
			}},
		},
		bson.D{
			{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}},
		},
	}

	cursor, err := collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var buckets []SalesBucket
	if err := cursor.All(ctx, &buckets); err != nil {
		return nil, err
	}

	result := &SalesAnalyticsResult{Buckets: buckets}
	for _, b := range buckets {
		result.TotalOrders += b.OrderCount
		result.TotalSales += b.Revenue
	}

	return result, nil
}
