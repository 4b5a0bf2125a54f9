package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/northwind-labs/storefront-api/pkg/models"
)

func TestCheckoutSession_RoundTrip(t *testing.T) {
	setupRedis(t)

	session := models.NewCheckoutSession("sess-1", "cust-1")
	session.Step = models.StepDeliveryOptions
	session.ShippingAddressID = 0
	session.ShippingMethod = models.ShippingExpress

	require.NoError(t, SaveCheckoutSession(context.Background(), session))

	loaded, err := GetCheckoutSession(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, session, loaded)
}

func TestGetCheckoutSession_NotFound(t *testing.T) {
	setupRedis(t)

	_, err := GetCheckoutSession(context.Background(), "missing")

	assert.ErrorIs(t, err, ErrCheckoutNotFound)
}

func TestDeleteCheckoutSession(t *testing.T) {
	setupRedis(t)
	require.NoError(t, SaveCheckoutSession(context.Background(), models.NewCheckoutSession("sess-1", "")))

	require.NoError(t, DeleteCheckoutSession(context.Background(), "sess-1"))

	_, err := GetCheckoutSession(context.Background(), "sess-1")
	assert.ErrorIs(t, err, ErrCheckoutNotFound)
}

func TestDeleteCheckoutSession_MissingIsNoop(t *testing.T) {
	setupRedis(t)

	assert.NoError(t, DeleteCheckoutSession(context.Background(), "missing"))
}
