package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/northwind-labs/storefront-api/pkg/coupon"
	"github.com/northwind-labs/storefront-api/pkg/models"
)

// CouponStore adapts the coupons collection to the resolver's Store
// interface.
type CouponStore struct{}

func NewCouponStore() *CouponStore {
	return &CouponStore{}
}

// FindCouponByCode looks a coupon up by its normalized (uppercase) code.
func (s *CouponStore) FindCouponByCode(ctx context.Context, code string) (*models.Coupon, error) {
	collection := GetCollection("coupons")

	var cpn models.Coupon
	err := collection.FindOne(ctx, bson.D{{Key: "code", Value: code}}).Decode(&cpn)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, coupon.ErrCouponNotFound
		}
		return nil, err
	}

	return &cpn, nil
}

// CreateCoupon inserts a coupon with its code normalized for lookup.
func CreateCoupon(ctx context.Context, cpn *models.Coupon) (*models.Coupon, error) {
	collection := GetCollection("coupons")

	cpn.Code = coupon.NormalizeCode(cpn.Code)
	cpn.SetTimestamps()

	result, err := collection.InsertOne(ctx, cpn)
	if err != nil {
		return nil, err
	}
	if oid, ok := result.InsertedID.(bson.ObjectID); ok {
		cpn.ID = oid
	}

	return cpn, nil
}
