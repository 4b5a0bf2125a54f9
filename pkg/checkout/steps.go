package checkout

import (
	"fmt"

	"github.com/northwind-labs/storefront-api/pkg/models"
	"github.com/northwind-labs/storefront-api/pkg/pricing"
)

// ValidationError is a user-correctable problem with the checkout form. It
// never mutates persisted state.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ApplyUpdate mutates the session per the request: "update" records field
// values on the current step, "next" validates the current step before
// advancing, "back" rewinds exactly one step. The flow is forward-only
// otherwise.
func ApplyUpdate(session *models.CheckoutSession, req *models.UpdateCheckoutRequest, addresses []models.Address) error {
	applyFields(session, req)

	switch req.Action {
	case "update":
		return nil
	case "back":
		if session.Step > models.StepShippingAddress {
			session.Step--
		}
		return nil
	case "next":
		if err := ValidateStep(session, session.Step, addresses); err != nil {
			return err
		}
		if session.Step < models.StepPayment {
			session.Step++
		}
		return nil
	default:
		return &ValidationError{Field: "action", Message: "unknown action", Code: "invalid_action"}
	}
}

func applyFields(session *models.CheckoutSession, req *models.UpdateCheckoutRequest) {
	if req.ShippingAddressID != nil {
		session.ShippingAddressID = *req.ShippingAddressID
	}
	if req.BillingSameAsShipping != nil {
		session.BillingSameAsShipping = *req.BillingSameAsShipping
	}
	if req.BillingAddressID != nil {
		session.BillingAddressID = *req.BillingAddressID
	}
	if req.ShippingMethod != nil {
		session.ShippingMethod = *req.ShippingMethod
	}
	if req.PaymentMethod != nil {
		session.PaymentMethod = *req.PaymentMethod
	}
	if req.Card != nil {
		session.Card = models.CardDetails{
			Number: FormatCardNumber(req.Card.Number),
			Name:   req.Card.Name,
			Expiry: FormatExpiry(req.Card.Expiry),
			CVC:    NormalizeCVC(req.Card.CVC),
		}
	}
}

// ValidateStep checks the requirements of a single step.
func ValidateStep(session *models.CheckoutSession, step int, addresses []models.Address) error {
	switch step {
	case models.StepShippingAddress:
		if session.ShippingAddressID < 0 || session.ShippingAddressID >= len(addresses) {
			return &ValidationError{Field: "shipping_address_id", Message: "a shipping address must be selected", Code: "required"}
		}
	case models.StepDeliveryOptions:
		if !pricing.IsValidShippingMethod(session.ShippingMethod) {
			return &ValidationError{Field: "shipping_method", Message: "unknown shipping method", Code: "invalid"}
		}
		if !session.BillingSameAsShipping {
			if session.BillingAddressID < 0 || session.BillingAddressID >= len(addresses) {
				return &ValidationError{Field: "billing_address_id", Message: "a billing address must be selected", Code: "required"}
			}
		}
	case models.StepPayment:
		return validatePayment(session)
	}
	return nil
}

// validatePayment checks the payment step. Credit cards need the complete
// tuple, each field format-validated independently; paypal defers to an
// external redirect and needs nothing further.
func validatePayment(session *models.CheckoutSession) error {
	switch session.PaymentMethod {
	case models.PaymentMethodPaypal:
		return nil
	case models.PaymentMethodCreditCard:
		if !ValidCardNumber(session.Card.Number) {
			return &ValidationError{Field: "card.number", Message: "card number must be 13-16 digits", Code: "invalid_format"}
		}
		if session.Card.Name == "" {
			return &ValidationError{Field: "card.name", Message: "cardholder name is required", Code: "required"}
		}
		if !ValidExpiry(session.Card.Expiry) {
			return &ValidationError{Field: "card.expiry", Message: "expiry must be MM/YY", Code: "invalid_format"}
		}
		if !ValidCVC(session.Card.CVC) {
			return &ValidationError{Field: "card.cvc", Message: "CVC must be 3 or 4 digits", Code: "invalid_format"}
		}
		return nil
	case "":
		return &ValidationError{Field: "payment_method", Message: "a payment method must be selected", Code: "required"}
	default:
		return &ValidationError{Field: "payment_method", Message: "unknown payment method", Code: "invalid"}
	}
}
