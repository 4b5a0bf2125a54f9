package order

import (
	"fmt"
	"time"

	"github.com/northwind-labs/storefront-api/pkg/models"
)

// IllegalTransitionError marks an attempted status change outside the
// adjacency set. It is a programming/integration error, not a user-facing
// condition: the order is left unchanged.
type IllegalTransitionError struct {
	From string
	To   string
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal order status transition %s -> %s", e.From, e.To)
}

// transitions is the complete adjacency set. The happy path is linear with
// no skipping; cancelled is reachable from pending or processing only;
// returned only from delivered.
var transitions = map[string][]string{
	models.OrderStatusPending:    {models.OrderStatusProcessing, models.OrderStatusCancelled},
	models.OrderStatusProcessing: {models.OrderStatusShipped, models.OrderStatusCancelled},
	models.OrderStatusShipped:    {models.OrderStatusDelivered},
	models.OrderStatusDelivered:  {models.OrderStatusReturned},
	models.OrderStatusCancelled:  {},
	models.OrderStatusReturned:   {},
}

// CanTransition reports whether from -> to is in the adjacency set.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions leave the status.
// Delivered still allows a return, so it is not terminal here.
func IsTerminal(status string) bool {
	return len(transitions[status]) == 0
}

// IsValidStatus reports whether the status is one of the fixed enumeration.
func IsValidStatus(status string) bool {
	_, ok := transitions[status]
	return ok
}

// Apply mutates the order's status and timeline for a validated transition.
// Callers must persist the change with an optimistic filter on the prior
// status so concurrent transitions cannot both win. PaidAt belongs to the
// payment axis and is stamped when the payment status moves to paid, never
// here.
func Apply(o *models.Order, to string) error {
	if !CanTransition(o.Status, to) {
		return &IllegalTransitionError{From: o.Status, To: to}
	}

	now := time.Now()
	switch to {
	case models.OrderStatusShipped:
		if o.Timeline.ShippedAt == nil {
			o.Timeline.ShippedAt = &now
		}
	case models.OrderStatusDelivered:
		if o.Timeline.DeliveredAt == nil {
			o.Timeline.DeliveredAt = &now
		}
	case models.OrderStatusCancelled:
		if o.Timeline.CancelledAt == nil {
			o.Timeline.CancelledAt = &now
		}
	case models.OrderStatusReturned:
		if o.Timeline.ReturnedAt == nil {
			o.Timeline.ReturnedAt = &now
		}
	}

	o.Status = to
	o.UpdatedAt = now
	return nil
}

// ReleasesStock reports whether entering the status must return reserved
// stock to the catalog. Only cancellation releases; a return keeps goods
// out of sellable stock until restocked through the admin surface.
func ReleasesStock(to string) bool {
	return to == models.OrderStatusCancelled
}

// IsValidPaymentStatus checks the independent payment axis. No payment
// status forces an order status transition.
func IsValidPaymentStatus(status string) bool {
	switch status {
	case models.PaymentStatusPending, models.PaymentStatusPaid, models.PaymentStatusFailed,
		models.PaymentStatusRefunded, models.PaymentStatusPartiallyRefunded:
		return true
	}
	return false
}
