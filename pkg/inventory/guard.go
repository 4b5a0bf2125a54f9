package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Guard reserves and releases stock. Reserve is an atomic
// compare-and-decrement ("decrement only if the result stays >= 0"), never
// a read-modify-write in application code, so concurrent checkouts for the
// same product cannot oversell.
type Guard interface {
	Reserve(ctx context.Context, productID string, quantity int) error
	Release(ctx context.Context, productID string, quantity int) error
}

// CommitLine is one cart line submitted to the commit-time check.
type CommitLine struct {
	ProductID string `json:"product_id"`
	SKU       string `json:"sku"`
	Quantity  int    `json:"quantity"`
}

// InsufficientStockError reports every line whose live stock no longer
// covers its quantity at commit time. The order is never partially created.
type InsufficientStockError struct {
	Lines []CommitLine
}

func (e *InsufficientStockError) Error() string {
	skus := make([]string, 0, len(e.Lines))
	for _, l := range e.Lines {
		skus = append(skus, l.SKU)
	}
	return fmt.Sprintf("insufficient stock for: %s", strings.Join(skus, ", "))
}

// CommitAll performs the commit-time stock check and decrement as one pass:
// each line is an atomic reserve, and the first failure rolls back every
// reserve already made. On failure all lines that could not be covered are
// reported and stock is left exactly as it was found.
func CommitAll(ctx context.Context, g Guard, lines []CommitLine) error {
	var reserved []CommitLine
	var failed []CommitLine

	for _, line := range lines {
		// A reserve of zero or fewer units always "succeeds" against any
		// stock level, so a non-positive line is treated as uncoverable
		// rather than silently committed into the order.
		if line.Quantity < 1 {
			failed = append(failed, line)
			continue
		}
		if err := g.Reserve(ctx, line.ProductID, line.Quantity); err != nil {
			if errors.Is(err, ErrInsufficientStock) || errors.Is(err, ErrProductNotFound) {
				failed = append(failed, line)
				continue
			}
			rollback(ctx, g, reserved)
			return err
		}
		reserved = append(reserved, line)
	}

	if len(failed) > 0 {
		rollback(ctx, g, reserved)
		return &InsufficientStockError{Lines: failed}
	}
	return nil
}

// ReleaseAll returns every line's stock to the pool, e.g. on order
// cancellation or payment-failure rollback.
func ReleaseAll(ctx context.Context, g Guard, lines []CommitLine) error {
	var firstErr error
	for _, line := range lines {
		if err := g.Release(ctx, line.ProductID, line.Quantity); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func rollback(ctx context.Context, g Guard, reserved []CommitLine) {
	for _, line := range reserved {
		// Best effort: a release on a product we just decremented should
		// not fail, and there is no further recovery if it does.
		_ = g.Release(ctx, line.ProductID, line.Quantity)
	}
}
