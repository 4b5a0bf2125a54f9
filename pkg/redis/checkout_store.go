package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redisclient "github.com/redis/go-redis/v9"

	"github.com/northwind-labs/storefront-api/pkg/models"
)

// Checkout sessions are transient: a 30 minute TTL covers abandonment, and
// Finalize deletes the key on success. Nothing here ever partially commits
// to an order.

const checkoutTTL = 30 * time.Minute

var ErrCheckoutNotFound = errors.New("checkout session not found")

// CheckoutStore adapts the package-level checkout-session functions for
// consumers that take an interface.
type CheckoutStore struct{}

func (CheckoutStore) GetCheckoutSession(ctx context.Context, sessionID string) (*models.CheckoutSession, error) {
	return GetCheckoutSession(ctx, sessionID)
}

func (CheckoutStore) SaveCheckoutSession(ctx context.Context, session *models.CheckoutSession) error {
	return SaveCheckoutSession(ctx, session)
}

func (CheckoutStore) DeleteCheckoutSession(ctx context.Context, sessionID string) error {
	return DeleteCheckoutSession(ctx, sessionID)
}

func checkoutKey(sessionID string) string {
	return fmt.Sprintf("checkout:%s", sessionID)
}

// GetCheckoutSession loads the in-progress checkout for a session.
func GetCheckoutSession(ctx context.Context, sessionID string) (*models.CheckoutSession, error) {
	client := RedisClient()
	defer client.Close()

	raw, err := client.Get(ctx, checkoutKey(sessionID)).Result()
	if err != nil {
		if err == redisclient.Nil {
			return nil, ErrCheckoutNotFound
		}
		return nil, err
	}

	var session models.CheckoutSession
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkout session: %w", err)
	}

	return &session, nil
}

// SaveCheckoutSession stores the session, refreshing its TTL. Step
// transitions are single-threaded per session; concurrent writers resolve
// as last-write-wins, which is acceptable because no monetary commitment
// happens before final submission.
func SaveCheckoutSession(ctx context.Context, session *models.CheckoutSession) error {
	client := RedisClient()
	defer client.Close()

	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal checkout session: %w", err)
	}

	return client.Set(ctx, checkoutKey(session.SessionID), raw, checkoutTTL).Err()
}

// DeleteCheckoutSession discards the session on success or abandonment.
func DeleteCheckoutSession(ctx context.Context, sessionID string) error {
	client := RedisClient()
	defer client.Close()

	return client.Del(ctx, checkoutKey(sessionID)).Err()
}
