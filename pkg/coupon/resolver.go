package coupon

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/northwind-labs/storefront-api/pkg/models"
)

// Rejection reasons returned when a coupon cannot be applied.
const (
	ReasonNotFound    = "not_found"
	ReasonInactive    = "inactive"
	ReasonExpired     = "expired"
	ReasonMinSubtotal = "min_subtotal"
	ReasonCategories  = "categories"
)

var ErrCouponNotFound = errors.New("coupon not found")

// Store provides coupon lookup. The Mongo-backed implementation lives in
// pkg/mongo; tests supply their own.
type Store interface {
	FindCouponByCode(ctx context.Context, code string) (*models.Coupon, error)
}

// Resolution is the outcome of resolving a code against a cart: either an
// accepted rule or a rejection reason.
type Resolution struct {
	Accepted bool           `json:"accepted"`
	Reason   string         `json:"reason,omitempty"`
	Coupon   *models.Coupon `json:"coupon,omitempty"`
}

type Resolver struct {
	store Store
}

func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// NormalizeCode uppercases and trims a user-supplied code before lookup.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Resolve validates a code against the cart's current contents. The cart
// subtotal must be the engine-computed subtotal for the same cart state.
func (r *Resolver) Resolve(ctx context.Context, code string, cart *models.Cart, subtotal float64) (*Resolution, error) {
	normalized := NormalizeCode(code)

	cpn, err := r.store.FindCouponByCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, ErrCouponNotFound) {
			return &Resolution{Accepted: false, Reason: ReasonNotFound}, nil
		}
		return nil, err
	}

	if reason := CheckConstraints(cpn, cart, subtotal); reason != "" {
		return &Resolution{Accepted: false, Reason: reason}, nil
	}

	return &Resolution{Accepted: true, Coupon: cpn}, nil
}

// CheckConstraints validates a known coupon against cart contents. It
// returns an empty string when the coupon applies, otherwise a rejection
// reason. The pricing engine runs the same check on every breakdown so a
// coupon that stops qualifying yields discount 0 with a surfaced condition
// rather than a silently stale discount.
func CheckConstraints(cpn *models.Coupon, cart *models.Cart, subtotal float64) string {
	if !cpn.Active {
		return ReasonInactive
	}
	if cpn.IsExpired(time.Now()) {
		return ReasonExpired
	}
	if cpn.MinSubtotal != nil && subtotal < *cpn.MinSubtotal {
		return ReasonMinSubtotal
	}
	if len(cpn.ApplicableCategories) > 0 && !cartHasCategory(cart, cpn.ApplicableCategories) {
		return ReasonCategories
	}
	return ""
}

// cartHasCategory reports whether at least one cart line belongs to one of
// the coupon's categories.
func cartHasCategory(cart *models.Cart, categories []string) bool {
	for _, item := range cart.Items {
		for _, category := range categories {
			if strings.EqualFold(item.Category, category) {
				return true
			}
		}
	}
	return false
}
