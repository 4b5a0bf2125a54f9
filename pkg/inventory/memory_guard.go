package inventory

import (
	"context"
	"sync"
)

// MemoryGuard is an in-process guard for tests and local development. The
// mutex gives the same all-or-nothing semantics the Mongo filter provides.
type MemoryGuard struct {
	mu     sync.Mutex
	stocks map[string]int
}

func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{stocks: make(map[string]int)}
}

// SetStock sets the stock level for a product.
func (g *MemoryGuard) SetStock(productID string, quantity int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stocks[productID] = quantity
}

// Stock returns the current stock level for a product.
func (g *MemoryGuard) Stock(productID string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stocks[productID]
}

func (g *MemoryGuard) Reserve(_ context.Context, productID string, quantity int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	stock, exists := g.stocks[productID]
	if !exists {
		return ErrProductNotFound
	}
	if stock < quantity {
		return ErrInsufficientStock
	}
	g.stocks[productID] = stock - quantity
	return nil
}

func (g *MemoryGuard) Release(_ context.Context, productID string, quantity int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.stocks[productID]; !exists {
		return ErrProductNotFound
	}
	g.stocks[productID] += quantity
	return nil
}
