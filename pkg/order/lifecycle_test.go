package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/northwind-labs/storefront-api/pkg/models"
)

var allStatuses = []string{
	models.OrderStatusPending,
	models.OrderStatusProcessing,
	models.OrderStatusShipped,
	models.OrderStatusDelivered,
	models.OrderStatusCancelled,
	models.OrderStatusReturned,
}

func TestCanTransition_FullAdjacency(t *testing.T) {
	allowed := map[string]map[string]bool{
		models.OrderStatusPending:    {models.OrderStatusProcessing: true, models.OrderStatusCancelled: true},
		models.OrderStatusProcessing: {models.OrderStatusShipped: true, models.OrderStatusCancelled: true},
		models.OrderStatusShipped:    {models.OrderStatusDelivered: true},
		models.OrderStatusDelivered:  {models.OrderStatusReturned: true},
		models.OrderStatusCancelled:  {},
		models.OrderStatusReturned:   {},
	}

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			want := allowed[from][to]
			assert.Equal(t, want, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestCanTransition_NoSkipping(t *testing.T) {
	assert.False(t, CanTransition(models.OrderStatusPending, models.OrderStatusShipped))
	assert.False(t, CanTransition(models.OrderStatusPending, models.OrderStatusDelivered))
	assert.False(t, CanTransition(models.OrderStatusProcessing, models.OrderStatusDelivered))
}

func TestCanTransition_NoBackwardMoves(t *testing.T) {
	assert.False(t, CanTransition(models.OrderStatusShipped, models.OrderStatusProcessing))
	assert.False(t, CanTransition(models.OrderStatusDelivered, models.OrderStatusShipped))
	assert.False(t, CanTransition(models.OrderStatusCancelled, models.OrderStatusPending))
}

func TestCancellationWindow(t *testing.T) {
	// Cancellation closes once the order ships.
	assert.True(t, CanTransition(models.OrderStatusPending, models.OrderStatusCancelled))
	assert.True(t, CanTransition(models.OrderStatusProcessing, models.OrderStatusCancelled))
	assert.False(t, CanTransition(models.OrderStatusShipped, models.OrderStatusCancelled))
	assert.False(t, CanTransition(models.OrderStatusDelivered, models.OrderStatusCancelled))
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(models.OrderStatusCancelled))
	assert.True(t, IsTerminal(models.OrderStatusReturned))
	assert.False(t, IsTerminal(models.OrderStatusDelivered))
	assert.False(t, IsTerminal(models.OrderStatusPending))
}

func TestIsValidStatus(t *testing.T) {
	for _, status := range allStatuses {
		assert.True(t, IsValidStatus(status))
	}
	assert.False(t, IsValidStatus("refunded"))
	assert.False(t, IsValidStatus(""))
}

func TestApply_HappyPathStampsTimeline(t *testing.T) {
	o := &models.Order{Status: models.OrderStatusPending}

	require.NoError(t, Apply(o, models.OrderStatusProcessing))

	require.NoError(t, Apply(o, models.OrderStatusShipped))
	require.NotNil(t, o.Timeline.ShippedAt)

	require.NoError(t, Apply(o, models.OrderStatusDelivered))
	require.NotNil(t, o.Timeline.DeliveredAt)

	require.NoError(t, Apply(o, models.OrderStatusReturned))
	require.NotNil(t, o.Timeline.ReturnedAt)
	assert.Equal(t, models.OrderStatusReturned, o.Status)
}

func TestApply_NeverStampsPaidAt(t *testing.T) {
	// PaidAt is owned by the payment axis; the fulfillment transition into
	// processing must not touch it.
	o := &models.Order{Status: models.OrderStatusPending}

	require.NoError(t, Apply(o, models.OrderStatusProcessing))

	assert.Nil(t, o.Timeline.PaidAt)
	assert.Equal(t, models.OrderStatusProcessing, o.Status)
}

func TestApply_IllegalLeavesOrderUnchanged(t *testing.T) {
	o := &models.Order{Status: models.OrderStatusDelivered}

	err := Apply(o, models.OrderStatusCancelled)

	var illegal *IllegalTransitionError
	require.ErrorAs(t, err, &illegal)
	assert.Equal(t, models.OrderStatusDelivered, illegal.From)
	assert.Equal(t, models.OrderStatusCancelled, illegal.To)
	assert.Equal(t, models.OrderStatusDelivered, o.Status)
	assert.Nil(t, o.Timeline.CancelledAt)
}

func TestApply_CancelStampsCancelledAt(t *testing.T) {
	o := &models.Order{Status: models.OrderStatusProcessing}

	require.NoError(t, Apply(o, models.OrderStatusCancelled))
	require.NotNil(t, o.Timeline.CancelledAt)
	assert.True(t, IsTerminal(o.Status))
}

func TestReleasesStock(t *testing.T) {
	assert.True(t, ReleasesStock(models.OrderStatusCancelled))
	// Returned goods stay out of sellable stock until restocked.
	assert.False(t, ReleasesStock(models.OrderStatusReturned))
	assert.False(t, ReleasesStock(models.OrderStatusDelivered))
}

func TestIsValidPaymentStatus(t *testing.T) {
	for _, status := range []string{
		models.PaymentStatusPending, models.PaymentStatusPaid, models.PaymentStatusFailed,
		models.PaymentStatusRefunded, models.PaymentStatusPartiallyRefunded,
	} {
		assert.True(t, IsValidPaymentStatus(status))
	}
	assert.False(t, IsValidPaymentStatus("shipped"))
}
