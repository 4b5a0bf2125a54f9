package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	redisclient "github.com/redis/go-redis/v9"

	"github.com/northwind-labs/storefront-api/pkg/models"
)

// Cart storage layout: cart:{session} is a hash with the coupon slot and
// line ordering, cart:{session}:item:{lineID} holds one line each. The
// line_order field preserves insertion order for display; totals are never
// stored, the pricing engine derives them on every read.

const cartTTL = 24 * time.Hour

var ErrLineNotFound = errors.New("item not found in cart")

// CartStore adapts the package-level cart functions for consumers that take
// an interface.
type CartStore struct{}

func (CartStore) GetCart(ctx context.Context, sessionID string) (*models.Cart, error) {
	return GetCart(ctx, sessionID)
}

func (CartStore) ClearCart(ctx context.Context, sessionID string) error {
	return ClearCart(ctx, sessionID)
}

// GetCart retrieves a cart by session ID, returning an empty cart when none
// exists yet.
func GetCart(ctx context.Context, sessionID string) (*models.Cart, error) {
	client := RedisClient()
	defer client.Close()

	return getCart(ctx, client, sessionID)
}

func getCart(ctx context.Context, client *redisclient.Client, sessionID string) (*models.Cart, error) {
	cartKey := fmt.Sprintf("cart:%s", sessionID)

	exists, err := client.Exists(ctx, cartKey).Result()
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return models.NewEmptyCart(sessionID), nil
	}

	cartData, err := client.HGetAll(ctx, cartKey).Result()
	if err != nil {
		return nil, err
	}

	cart := &models.Cart{
		SessionID:   sessionID,
		Items:       []models.CartLineItem{},
		CouponCode:  cartData["coupon_code"],
		LastUpdated: cartData["last_updated"],
		ExpiresAt:   cartData["expires_at"],
	}

	lineOrder := cartData["line_order"]
	if lineOrder == "" {
		return cart, nil
	}

	for _, lineID := range strings.Split(lineOrder, ",") {
		itemKey := fmt.Sprintf("cart:%s:item:%s", sessionID, lineID)
		itemData, err := client.HGetAll(ctx, itemKey).Result()
		if err != nil || len(itemData) == 0 {
			continue
		}

		item := models.CartLineItem{
			LineID:      lineID,
			ProductID:   itemData["product_id"],
			SKU:         itemData["sku"],
			ProductName: itemData["product_name"],
			Category:    itemData["category"],
			AddedAt:     itemData["added_at"],
		}
		if amount, err := strconv.ParseFloat(itemData["price_amount"], 64); err == nil {
			item.PriceSnapshot.Amount = amount
		}
		if qty, err := strconv.Atoi(itemData["quantity"]); err == nil {
			item.Quantity = qty
		}
		if raw := itemData["selected_variants"]; raw != "" {
			var variants []models.SelectedVariant
			if err := json.Unmarshal([]byte(raw), &variants); err == nil {
				item.SelectedVariants = variants
			}
		}

		cart.Items = append(cart.Items, item)
	}

	return cart, nil
}

// AddToCart adds a line to the cart. The requested quantity is silently
// clamped to [1, stockQuantity]; the unit price and variant modifiers are
// snapshotted from the product at this moment and never re-read.
func AddToCart(ctx context.Context, sessionID string, product *models.Product, quantity int, selections []models.SelectedVariant) (*models.Cart, error) {
	client := RedisClient()
	defer client.Close()

	cart, err := getCart(ctx, client, sessionID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC().Format(time.RFC3339)

	if existing := cart.FindMatchingLine(product.ID.Hex(), selections); existing != nil {
		existing.Quantity = models.ClampQuantity(existing.Quantity+quantity, product.StockQuantity)
	} else {
		cart.Items = append(cart.Items, models.CartLineItem{
			LineID:           models.NewLineID(),
			ProductID:        product.ID.Hex(),
			SKU:              product.SKU,
			ProductName:      product.Name,
			Category:         product.Category,
			PriceSnapshot:    models.PriceSnapshot{Amount: product.Price.Amount},
			Quantity:         models.ClampQuantity(quantity, product.StockQuantity),
			SelectedVariants: selections,
			AddedAt:          now,
		})
	}

	cart.LastUpdated = now
	cart.ExpiresAt = time.Now().Add(cartTTL).UTC().Format(time.RFC3339)

	if err := saveCart(ctx, client, cart); err != nil {
		return nil, err
	}

	return cart, nil
}

// UpdateCartItem sets a line's quantity, clamped to [1, stockQuantity].
// Quantity 0 removes the line, as does a clamp against exhausted stock:
// a stored line always carries quantity >= 1.
func UpdateCartItem(ctx context.Context, sessionID, lineID string, quantity, stockQuantity int) (*models.Cart, error) {
	client := RedisClient()
	defer client.Close()

	cart, err := getCart(ctx, client, sessionID)
	if err != nil {
		return nil, err
	}

	line := cart.FindLine(lineID)
	if line == nil {
		return nil, ErrLineNotFound
	}

	clamped := 0
	if quantity != 0 {
		clamped = models.ClampQuantity(quantity, stockQuantity)
	}
	if clamped == 0 {
		removeLine(cart, lineID)
		itemKey := fmt.Sprintf("cart:%s:item:%s", sessionID, lineID)
		client.Del(ctx, itemKey)
	} else {
		line.Quantity = clamped
	}

	cart.LastUpdated = time.Now().UTC().Format(time.RFC3339)
	cart.ExpiresAt = time.Now().Add(cartTTL).UTC().Format(time.RFC3339)

	if err := saveCart(ctx, client, cart); err != nil {
		return nil, err
	}

	return cart, nil
}

// RemoveFromCart removes a line from the cart.
func RemoveFromCart(ctx context.Context, sessionID, lineID string) (*models.Cart, error) {
	return UpdateCartItem(ctx, sessionID, lineID, 0, 0)
}

// ClearCart removes the cart and all of its line keys.
func ClearCart(ctx context.Context, sessionID string) error {
	client := RedisClient()
	defer client.Close()

	cartPattern := fmt.Sprintf("cart:%s*", sessionID)
	keys, err := client.Keys(ctx, cartPattern).Result()
	if err != nil {
		return err
	}

	if len(keys) > 0 {
		return client.Del(ctx, keys...).Err()
	}

	return nil
}

// ApplyCoupon sets the cart's single coupon slot. Applying a second code
// replaces the first, never stacks.
func ApplyCoupon(ctx context.Context, sessionID, code string) (*models.Cart, error) {
	client := RedisClient()
	defer client.Close()

	cart, err := getCart(ctx, client, sessionID)
	if err != nil {
		return nil, err
	}

	cart.CouponCode = code
	cart.LastUpdated = time.Now().UTC().Format(time.RFC3339)

	if err := saveCart(ctx, client, cart); err != nil {
		return nil, err
	}

	return cart, nil
}

// RemoveCoupon clears the coupon slot. The next breakdown computation sees
// no coupon and a zero discount; no residual state survives.
func RemoveCoupon(ctx context.Context, sessionID string) (*models.Cart, error) {
	client := RedisClient()
	defer client.Close()

	cart, err := getCart(ctx, client, sessionID)
	if err != nil {
		return nil, err
	}

	cart.CouponCode = ""
	cart.LastUpdated = time.Now().UTC().Format(time.RFC3339)

	cartKey := fmt.Sprintf("cart:%s", sessionID)
	if err := client.HDel(ctx, cartKey, "coupon_code").Err(); err != nil {
		return nil, err
	}

	if err := saveCart(ctx, client, cart); err != nil {
		return nil, err
	}

	return cart, nil
}

func removeLine(cart *models.Cart, lineID string) {
	for i := range cart.Items {
		if cart.Items[i].LineID == lineID {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			return
		}
	}
}

func saveCart(ctx context.Context, client *redisclient.Client, cart *models.Cart) error {
	cartKey := fmt.Sprintf("cart:%s", cart.SessionID)

	lineIDs := make([]string, 0, len(cart.Items))
	for _, item := range cart.Items {
		lineIDs = append(lineIDs, item.LineID)
	}

	cartData := map[string]interface{}{
		"line_order":   strings.Join(lineIDs, ","),
		"last_updated": cart.LastUpdated,
		"expires_at":   cart.ExpiresAt,
	}
	if cart.CouponCode != "" {
		cartData["coupon_code"] = cart.CouponCode
	}

	pipe := client.TxPipeline()
	pipe.HSet(ctx, cartKey, cartData)
	pipe.Expire(ctx, cartKey, cartTTL)

	for _, item := range cart.Items {
		variantsJSON, err := json.Marshal(item.SelectedVariants)
		if err != nil {
			return fmt.Errorf("failed to marshal variants for line %s: %w", item.LineID, err)
		}

		itemKey := fmt.Sprintf("cart:%s:item:%s", cart.SessionID, item.LineID)
		itemData := map[string]interface{}{
			"product_id":        item.ProductID,
			"sku":               item.SKU,
			"product_name":      item.ProductName,
			"category":          item.Category,
			"price_amount":      fmt.Sprintf("%.2f", item.PriceSnapshot.Amount),
			"quantity":          fmt.Sprintf("%d", item.Quantity),
			"selected_variants": string(variantsJSON),
			"added_at":          item.AddedAt,
		}
		pipe.HSet(ctx, itemKey, itemData)
		pipe.Expire(ctx, itemKey, cartTTL)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save cart %s: %w", cart.SessionID, err)
	}

	return nil
}
