package models

// Checkout steps. The flow is linear and forward-only, with one step of
// backward navigation allowed.
const (
	StepShippingAddress = 1
	StepDeliveryOptions = 2
	StepPayment         = 3
)

// CardDetails holds the payment-form scratch fields collected at step 3.
// They live only inside the transient checkout session and are never
// written to an order.
type CardDetails struct {
	Number string `json:"number"`
	Name   string `json:"name"`
	Expiry string `json:"expiry"`
	CVC    string `json:"cvc"`
}

// CheckoutSession is the transient state of one multi-step checkout. It is
// discarded on success or abandonment and never partially commits to an
// order.
type CheckoutSession struct {
	SessionID             string      `json:"session_id"`
	CustomerID            string      `json:"customer_id"`
	Step                  int         `json:"step"`
	ShippingAddressID     int         `json:"shipping_address_id"`
	BillingSameAsShipping bool        `json:"billing_same_as_shipping"`
	BillingAddressID      int         `json:"billing_address_id"`
	ShippingMethod        string      `json:"shipping_method"`
	PaymentMethod         string      `json:"payment_method"`
	Card                  CardDetails `json:"card"`
}

// NewCheckoutSession starts a checkout at the shipping-address step.
// Shipping defaults to standard; address ids start unselected.
func NewCheckoutSession(sessionID, customerID string) *CheckoutSession {
	return &CheckoutSession{
		SessionID:             sessionID,
		CustomerID:            customerID,
		Step:                  StepShippingAddress,
		ShippingAddressID:     -1,
		BillingSameAsShipping: true,
		BillingAddressID:      -1,
		ShippingMethod:        ShippingStandard,
	}
}

// UpdateCheckoutRequest is the payload for advancing or rewinding the flow.
type UpdateCheckoutRequest struct {
	Action                string       `json:"action" binding:"required,oneof=next back update"`
	ShippingAddressID     *int         `json:"shipping_address_id,omitempty"`
	BillingSameAsShipping *bool        `json:"billing_same_as_shipping,omitempty"`
	BillingAddressID      *int         `json:"billing_address_id,omitempty"`
	ShippingMethod        *string      `json:"shipping_method,omitempty"`
	PaymentMethod         *string      `json:"payment_method,omitempty"`
	Card                  *CardDetails `json:"card,omitempty"`
}

// PlaceOrderRequest finalizes a checkout into an order.
type PlaceOrderRequest struct {
	CustomerID string `json:"customer_id" binding:"required"`
}
