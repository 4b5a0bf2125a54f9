package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/northwind-labs/storefront-api/pkg/models"
)

func addressBook() []models.Address {
	return []models.Address{
		{Street: "1 Main St", City: "Waterloo", Province: "ON", PostalCode: "N2L 3G1", Country: "CA", IsDefault: true},
		{Street: "2 King St", City: "Kitchener", Province: "ON", PostalCode: "N2G 1A1", Country: "CA"},
	}
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func TestApplyUpdate_NextRequiresShippingAddress(t *testing.T) {
	session := models.NewCheckoutSession("sess-1", "cust-1")

	err := ApplyUpdate(session, &models.UpdateCheckoutRequest{Action: "next"}, addressBook())

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "shipping_address_id", vErr.Field)
	assert.Equal(t, models.StepShippingAddress, session.Step)
}

func TestApplyUpdate_AdvancesThroughAllSteps(t *testing.T) {
	session := models.NewCheckoutSession("sess-1", "cust-1")
	book := addressBook()

	err := ApplyUpdate(session, &models.UpdateCheckoutRequest{
		Action:            "next",
		ShippingAddressID: intPtr(0),
	}, book)
	require.NoError(t, err)
	assert.Equal(t, models.StepDeliveryOptions, session.Step)

	err = ApplyUpdate(session, &models.UpdateCheckoutRequest{
		Action:         "next",
		ShippingMethod: strPtr(models.ShippingExpress),
	}, book)
	require.NoError(t, err)
	assert.Equal(t, models.StepPayment, session.Step)

	err = ApplyUpdate(session, &models.UpdateCheckoutRequest{
		Action:        "next",
		PaymentMethod: strPtr(models.PaymentMethodPaypal),
	}, book)
	require.NoError(t, err)
	// Payment is the last step; "next" stays put.
	assert.Equal(t, models.StepPayment, session.Step)
}

func TestApplyUpdate_BackRewindsOneStep(t *testing.T) {
	session := models.NewCheckoutSession("sess-1", "cust-1")
	session.Step = models.StepPayment

	require.NoError(t, ApplyUpdate(session, &models.UpdateCheckoutRequest{Action: "back"}, nil))
	assert.Equal(t, models.StepDeliveryOptions, session.Step)

	require.NoError(t, ApplyUpdate(session, &models.UpdateCheckoutRequest{Action: "back"}, nil))
	assert.Equal(t, models.StepShippingAddress, session.Step)

	// Already at the first step; back is a no-op.
	require.NoError(t, ApplyUpdate(session, &models.UpdateCheckoutRequest{Action: "back"}, nil))
	assert.Equal(t, models.StepShippingAddress, session.Step)
}

func TestApplyUpdate_UpdateRecordsWithoutAdvancing(t *testing.T) {
	session := models.NewCheckoutSession("sess-1", "cust-1")

	err := ApplyUpdate(session, &models.UpdateCheckoutRequest{
		Action:            "update",
		ShippingAddressID: intPtr(1),
		ShippingMethod:    strPtr(models.ShippingOvernight),
	}, addressBook())

	require.NoError(t, err)
	assert.Equal(t, models.StepShippingAddress, session.Step)
	assert.Equal(t, 1, session.ShippingAddressID)
	assert.Equal(t, models.ShippingOvernight, session.ShippingMethod)
}

func TestApplyUpdate_CardFieldsNormalizedOnWrite(t *testing.T) {
	session := models.NewCheckoutSession("sess-1", "cust-1")

	err := ApplyUpdate(session, &models.UpdateCheckoutRequest{
		Action: "update",
		Card: &models.CardDetails{
			Number: "4242424242424242",
			Name:   "Ada Lovelace",
			Expiry: "1228",
			CVC:    "123x",
		},
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, "4242 4242 4242 4242", session.Card.Number)
	assert.Equal(t, "12/28", session.Card.Expiry)
	assert.Equal(t, "123", session.Card.CVC)
}

func TestValidateStep_DeliveryOptions(t *testing.T) {
	session := models.NewCheckoutSession("sess-1", "cust-1")
	session.ShippingMethod = "teleport"

	err := ValidateStep(session, models.StepDeliveryOptions, addressBook())

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "shipping_method", vErr.Field)
}

func TestValidateStep_SeparateBillingAddressRequired(t *testing.T) {
	session := models.NewCheckoutSession("sess-1", "cust-1")
	session.BillingSameAsShipping = false

	err := ValidateStep(session, models.StepDeliveryOptions, addressBook())

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "billing_address_id", vErr.Field)

	session.BillingAddressID = 1
	assert.NoError(t, ValidateStep(session, models.StepDeliveryOptions, addressBook()))
}

func TestValidateStep_PaymentCreditCard(t *testing.T) {
	session := models.NewCheckoutSession("sess-1", "cust-1")
	session.PaymentMethod = models.PaymentMethodCreditCard
	session.Card = models.CardDetails{
		Number: "4242 4242 4242 4242",
		Name:   "Ada Lovelace",
		Expiry: "12/28",
		CVC:    "123",
	}

	assert.NoError(t, ValidateStep(session, models.StepPayment, nil))

	session.Card.Expiry = "13/28"
	err := ValidateStep(session, models.StepPayment, nil)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "card.expiry", vErr.Field)
}

func TestValidateStep_PaymentPaypalNeedsNoCard(t *testing.T) {
	session := models.NewCheckoutSession("sess-1", "cust-1")
	session.PaymentMethod = models.PaymentMethodPaypal

	assert.NoError(t, ValidateStep(session, models.StepPayment, nil))
}

func TestValidateStep_PaymentMethodRequired(t *testing.T) {
	session := models.NewCheckoutSession("sess-1", "cust-1")

	err := ValidateStep(session, models.StepPayment, nil)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "payment_method", vErr.Field)
}
