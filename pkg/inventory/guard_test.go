package inventory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGuard_Reserve(t *testing.T) {
	g := NewMemoryGuard()
	g.SetStock("p1", 5)

	require.NoError(t, g.Reserve(context.Background(), "p1", 3))
	assert.Equal(t, 2, g.Stock("p1"))
}

func TestMemoryGuard_ReserveInsufficient(t *testing.T) {
	g := NewMemoryGuard()
	g.SetStock("p1", 2)

	err := g.Reserve(context.Background(), "p1", 3)

	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 2, g.Stock("p1"))
}

func TestMemoryGuard_ReserveUnknownProduct(t *testing.T) {
	g := NewMemoryGuard()

	err := g.Reserve(context.Background(), "missing", 1)

	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestMemoryGuard_Release(t *testing.T) {
	g := NewMemoryGuard()
	g.SetStock("p1", 1)

	require.NoError(t, g.Reserve(context.Background(), "p1", 1))
	require.NoError(t, g.Release(context.Background(), "p1", 1))
	assert.Equal(t, 1, g.Stock("p1"))
}

// Two buyers race for the last unit; exactly one reservation wins.
func TestMemoryGuard_LastUnitRace(t *testing.T) {
	g := NewMemoryGuard()
	g.SetStock("p1", 1)

	const buyers = 2
	errs := make([]error, buyers)
	var wg sync.WaitGroup
	wg.Add(buyers)
	for i := 0; i < buyers; i++ {
		go func(i int) {
			defer wg.Done()
			errs[i] = g.Reserve(context.Background(), "p1", 1)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, ErrInsufficientStock)
		}
	}
	assert.Equal(t, 1, winners)
	assert.Equal(t, 0, g.Stock("p1"))
}

func TestCommitAll_AllLinesCovered(t *testing.T) {
	g := NewMemoryGuard()
	g.SetStock("p1", 5)
	g.SetStock("p2", 3)

	lines := []CommitLine{
		{ProductID: "p1", SKU: "SKU-1", Quantity: 2},
		{ProductID: "p2", SKU: "SKU-2", Quantity: 3},
	}

	require.NoError(t, CommitAll(context.Background(), g, lines))
	assert.Equal(t, 3, g.Stock("p1"))
	assert.Equal(t, 0, g.Stock("p2"))
}

func TestCommitAll_RollbackLeavesStockUnchanged(t *testing.T) {
	g := NewMemoryGuard()
	g.SetStock("p1", 5)
	g.SetStock("p2", 1)

	lines := []CommitLine{
		{ProductID: "p1", SKU: "SKU-1", Quantity: 2},
		{ProductID: "p2", SKU: "SKU-2", Quantity: 4},
	}

	err := CommitAll(context.Background(), g, lines)

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Len(t, stockErr.Lines, 1)
	assert.Equal(t, "SKU-2", stockErr.Lines[0].SKU)
	// The successful reserve on p1 was rolled back.
	assert.Equal(t, 5, g.Stock("p1"))
	assert.Equal(t, 1, g.Stock("p2"))
}

func TestCommitAll_RejectsNonPositiveQuantity(t *testing.T) {
	g := NewMemoryGuard()
	g.SetStock("p1", 5)
	g.SetStock("p2", 5)

	lines := []CommitLine{
		{ProductID: "p1", SKU: "SKU-1", Quantity: 0},
		{ProductID: "p2", SKU: "SKU-2", Quantity: 2},
	}

	err := CommitAll(context.Background(), g, lines)

	// A zero-quantity reserve would trivially succeed against any stock
	// level; the commit must refuse it instead of emitting an empty line.
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Len(t, stockErr.Lines, 1)
	assert.Equal(t, "SKU-1", stockErr.Lines[0].SKU)
	assert.Equal(t, 5, g.Stock("p1"))
	assert.Equal(t, 5, g.Stock("p2"))
}

func TestCommitAll_ReportsEveryShortLine(t *testing.T) {
	g := NewMemoryGuard()
	g.SetStock("p1", 0)
	g.SetStock("p2", 0)

	lines := []CommitLine{
		{ProductID: "p1", SKU: "SKU-1", Quantity: 1},
		{ProductID: "p2", SKU: "SKU-2", Quantity: 1},
	}

	err := CommitAll(context.Background(), g, lines)

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Len(t, stockErr.Lines, 2)
	assert.Equal(t, "insufficient stock for: SKU-1, SKU-2", stockErr.Error())
}

func TestReleaseAll(t *testing.T) {
	g := NewMemoryGuard()
	g.SetStock("p1", 0)
	g.SetStock("p2", 0)

	lines := []CommitLine{
		{ProductID: "p1", SKU: "SKU-1", Quantity: 2},
		{ProductID: "p2", SKU: "SKU-2", Quantity: 1},
	}

	require.NoError(t, ReleaseAll(context.Background(), g, lines))
	assert.Equal(t, 2, g.Stock("p1"))
	assert.Equal(t, 1, g.Stock("p2"))
}
