package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"

	"github.com/northwind-labs/storefront-api/pkg/coupon"
	"github.com/northwind-labs/storefront-api/pkg/global"
	"github.com/northwind-labs/storefront-api/pkg/inventory"
	"github.com/northwind-labs/storefront-api/pkg/models"
	"github.com/northwind-labs/storefront-api/pkg/pricing"
)

var (
	ErrCartEmpty          = errors.New("cart is empty")
	ErrCheckoutIncomplete = errors.New("checkout session has not reached the payment step")
)

// PaymentFailureError means the gateway declined the charge after stock was
// reserved. By the time the caller sees it the reservation has been released
// and the provisional order removed, so retrying is safe.
type PaymentFailureError struct {
	OrderNumber string
	Reason      string
}

func (e *PaymentFailureError) Error() string {
	return fmt.Sprintf("payment declined for %s: %s", e.OrderNumber, e.Reason)
}

// CartReader is the slice of the cart store the orchestrator needs.
type CartReader interface {
	GetCart(ctx context.Context, sessionID string) (*models.Cart, error)
	ClearCart(ctx context.Context, sessionID string) error
}

// SessionStore persists the in-progress checkout flow.
type SessionStore interface {
	GetCheckoutSession(ctx context.Context, sessionID string) (*models.CheckoutSession, error)
	SaveCheckoutSession(ctx context.Context, session *models.CheckoutSession) error
	DeleteCheckoutSession(ctx context.Context, sessionID string) error
}

// Customers resolves the buyer and their address book.
type Customers interface {
	GetCustomerByID(ctx context.Context, id bson.ObjectID) (*models.Customer, error)
	RecordCustomerOrder(ctx context.Context, id bson.ObjectID, total float64) error
}

// OrderWriter persists orders. DeleteOrder exists solely for the payment
// rollback path and must never be reachable from a public route.
type OrderWriter interface {
	InsertOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	DeleteOrder(ctx context.Context, orderNumber string) error
	SetOrderPaymentStatus(ctx context.Context, orderNumber, paymentStatus string) (*models.Order, error)
}

// Charge is what the orchestrator hands the payment gateway.
type Charge struct {
	OrderNumber   string
	Amount        float64
	Currency      string
	PaymentMethod string
	Card          models.CardDetails
}

// Gateway authorizes and captures a payment in one shot.
type Gateway interface {
	Charge(ctx context.Context, ch Charge) error
}

// Orchestrator runs the finalize sequence: validate, reserve stock, price,
// persist, charge, settle. Each collaborator is a narrow interface so tests
// can swap in fakes.
type Orchestrator struct {
	Carts     CartReader
	Sessions  SessionStore
	Customers Customers
	Orders    OrderWriter
	Guard     inventory.Guard
	Gateway   Gateway
	Engine    pricing.Engine
	Resolver  *coupon.Resolver
}

// Finalize converts the session's cart into a paid order. The decided failure
// policy: a declined payment deletes the provisional order and releases the
// stock reservation, leaving the cart untouched so the shopper can retry.
func (o *Orchestrator) Finalize(ctx context.Context, sessionID string, customerID bson.ObjectID) (*models.Order, error) {
	session, err := o.Sessions.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Step != models.StepPayment {
		return nil, ErrCheckoutIncomplete
	}

	customer, err := o.Customers.GetCustomerByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if err := ValidateStep(session, models.StepShippingAddress, customer.Addresses); err != nil {
		return nil, err
	}
	if err := ValidateStep(session, models.StepDeliveryOptions, customer.Addresses); err != nil {
		return nil, err
	}
	if err := ValidateStep(session, models.StepPayment, customer.Addresses); err != nil {
		return nil, err
	}

	cart, err := o.Carts.GetCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, ErrCartEmpty
	}

	// Reserve before pricing so the totals we charge are the totals we
	// committed stock for. On any shortage nothing stays reserved.
	lines := commitLines(cart)
	if err := inventory.CommitAll(ctx, o.Guard, lines); err != nil {
		return nil, err
	}

	var cpn *models.Coupon
	if cart.CouponCode != "" {
		res, rerr := o.Resolver.Resolve(ctx, cart.CouponCode, cart, pricing.Subtotal(cart))
		if rerr != nil {
			o.releaseReserved(ctx, lines)
			return nil, rerr
		}
		if res.Accepted {
			cpn = res.Coupon
		}
	}

	result := o.Engine.Compute(cart, cpn, session.ShippingMethod)
	order := buildOrder(cart, session, customer, result)
	order.SetTimestamps()

	order, err = o.Orders.InsertOrder(ctx, order)
	if err != nil {
		o.releaseReserved(ctx, lines)
		return nil, err
	}

	ch := Charge{
		OrderNumber:   order.OrderNumber,
		Amount:        order.Breakdown.Total,
		Currency:      defaultCurrency,
		PaymentMethod: session.PaymentMethod,
		Card:          session.Card,
	}
	if err := o.Gateway.Charge(ctx, ch); err != nil {
		o.rollback(ctx, order, lines)
		return nil, &PaymentFailureError{OrderNumber: order.OrderNumber, Reason: err.Error()}
	}

	paid, err := o.Orders.SetOrderPaymentStatus(ctx, order.OrderNumber, models.PaymentStatusPaid)
	if err != nil {
		global.Logger.Error("mark order paid",
			zap.String("order_number", order.OrderNumber),
			zap.Error(err))
	} else {
		order = paid
	}

	// Post-payment cleanup is best effort. The order is authoritative at
	// this point; a stale cart or session only affects the next request.
	if err := o.Carts.ClearCart(ctx, sessionID); err != nil {
		global.Logger.Warn("clear cart after order", zap.String("session_id", sessionID), zap.Error(err))
	}
	if err := o.Sessions.DeleteCheckoutSession(ctx, sessionID); err != nil {
		global.Logger.Warn("delete checkout session after order", zap.String("session_id", sessionID), zap.Error(err))
	}
	if err := o.Customers.RecordCustomerOrder(ctx, customerID, order.Breakdown.Total); err != nil {
		global.Logger.Warn("record customer order stats", zap.String("order_number", order.OrderNumber), zap.Error(err))
	}

	return order, nil
}

func (o *Orchestrator) rollback(ctx context.Context, order *models.Order, lines []inventory.CommitLine) {
	if err := o.Orders.DeleteOrder(ctx, order.OrderNumber); err != nil {
		global.Logger.Error("rollback order insert",
			zap.String("order_number", order.OrderNumber),
			zap.Error(err))
	}
	o.releaseReserved(ctx, lines)
}

func (o *Orchestrator) releaseReserved(ctx context.Context, lines []inventory.CommitLine) {
	if err := inventory.ReleaseAll(ctx, o.Guard, lines); err != nil {
		global.Logger.Error("release reserved stock", zap.Error(err))
	}
}

func commitLines(cart *models.Cart) []inventory.CommitLine {
	lines := make([]inventory.CommitLine, 0, len(cart.Items))
	for _, item := range cart.Items {
		lines = append(lines, inventory.CommitLine{
			ProductID: item.ProductID,
			SKU:       item.SKU,
			Quantity:  item.Quantity,
		})
	}
	return lines
}

// buildOrder deep-copies the cart into an immutable order snapshot. Later
// product or coupon edits must not reach into placed orders.
func buildOrder(cart *models.Cart, session *models.CheckoutSession, customer *models.Customer, result pricing.Result) *models.Order {
	items := make([]models.OrderItem, 0, len(cart.Items))
	for _, line := range cart.Items {
		variants := make([]models.SelectedVariant, len(line.SelectedVariants))
		copy(variants, line.SelectedVariants)
		items = append(items, models.OrderItem{
			ProductID:        line.ProductID,
			SKU:              line.SKU,
			Name:             line.ProductName,
			UnitPrice:        line.UnitPrice(),
			Quantity:         line.Quantity,
			SelectedVariants: variants,
		})
	}

	shipping := customer.Addresses[session.ShippingAddressID]
	billing := shipping
	if !session.BillingSameAsShipping {
		billing = customer.Addresses[session.BillingAddressID]
	}

	couponCode := ""
	if result.CouponApplied {
		couponCode = cart.CouponCode
	}

	return &models.Order{
		OrderNumber:     models.GenerateOrderNumber(),
		SessionID:       cart.SessionID,
		CustomerID:      customer.ID,
		Status:          models.OrderStatusPending,
		PaymentStatus:   models.PaymentStatusPending,
		Items:           items,
		Breakdown:       result.Breakdown,
		CouponCode:      couponCode,
		ShippingAddress: shipping,
		BillingAddress:  billing,
		ShippingMethod:  session.ShippingMethod,
		PaymentMethod:   session.PaymentMethod,
		Timeline:        models.Timeline{OrderedAt: time.Now()},
	}
}

const defaultCurrency = "CAD"
