package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/northwind-labs/storefront-api/pkg/models"
)

const productCacheTTL = 24 * time.Hour

// CacheSingleProduct stores a product in the cache under its SKU and adds
// it to the category list used for filtering.
func CacheSingleProduct(ctx context.Context, product *models.Product) error {
	client := RedisClient()
	defer client.Close()

	productJSON, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("failed to marshal product %s: %w", product.SKU, err)
	}

	pipe := client.TxPipeline()

	productKey := fmt.Sprintf("product:%s", product.SKU)
	pipe.Set(ctx, productKey, productJSON, productCacheTTL)

	categoryKey := fmt.Sprintf("category:%s", product.Category)
	pipe.LPush(ctx, categoryKey, product.SKU)
	pipe.Expire(ctx, categoryKey, productCacheTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to execute Redis pipeline for product %s: %w", product.SKU, err)
	}

	return nil
}

func AddProductsToCache(ctx context.Context, products []*models.Product) error {
	for _, product := range products {
		if err := CacheSingleProduct(ctx, product); err != nil {
			return fmt.Errorf("failed to cache product %s: %w", product.SKU, err)
		}
	}

	return nil
}

func GetProductBySKUFromCache(ctx context.Context, sku string) (*models.Product, error) {
	client := RedisClient()
	defer client.Close()

	productKey := fmt.Sprintf("product:%s", sku)
	productJSON, err := client.Get(ctx, productKey).Result()
	if err != nil {
		return nil, err
	}

	var product models.Product
	if err := json.Unmarshal([]byte(productJSON), &product); err != nil {
		return nil, fmt.Errorf("failed to unmarshal product: %w", err)
	}

	return &product, nil
}

// RemoveProductFromCache drops a product's cache entries, e.g. after an
// admin edit or stock mutation that should not serve stale data.
func RemoveProductFromCache(ctx context.Context, product *models.Product) error {
	client := RedisClient()
	defer client.Close()

	pipe := client.TxPipeline()

	productKey := fmt.Sprintf("product:%s", product.SKU)
	pipe.Del(ctx, productKey)

	categoryKey := fmt.Sprintf("category:%s", product.Category)
	pipe.LRem(ctx, categoryKey, 0, product.SKU)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to remove product from Redis cache: %w", err)
	}

	return nil
}
