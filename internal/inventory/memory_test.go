package inventory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReserveDecrementsEveryLine(t *testing.T) {
	ledger := NewMemLedger()
	ledger.SetStock(VariationTarget(1), 30)
	ledger.SetStock(ProductTarget(2), 5)

	res, err := ledger.Reserve(context.Background(), []Line{
		{Target: VariationTarget(1), Quantity: 2},
		{Target: ProductTarget(2), Quantity: 5},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.ID)
	assert.Equal(t, 28, ledger.Stock(VariationTarget(1)))
	assert.Equal(t, 0, ledger.Stock(ProductTarget(2)))
}

func TestReservePartialFailureRollsBackWholeBatch(t *testing.T) {
	ledger := NewMemLedger()
	ledger.SetStock(VariationTarget(1), 10)
	ledger.SetStock(VariationTarget(2), 1)
	ledger.SetStock(VariationTarget(3), 10)

	_, err := ledger.Reserve(context.Background(), []Line{
		{Target: VariationTarget(1), Quantity: 4},
		{Target: VariationTarget(2), Quantity: 2}, // fails here
		{Target: VariationTarget(3), Quantity: 1},
	})

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, VariationTarget(2), stockErr.Target)
	assert.Equal(t, 2, stockErr.Requested)
	assert.Equal(t, 1, stockErr.Available)

	// No decrement from the failed batch may survive.
	assert.Equal(t, 10, ledger.Stock(VariationTarget(1)))
	assert.Equal(t, 1, ledger.Stock(VariationTarget(2)))
	assert.Equal(t, 10, ledger.Stock(VariationTarget(3)))
}

func TestReserveReportsFirstFailingTargetInLineOrder(t *testing.T) {
	ledger := NewMemLedger()
	ledger.SetStock(ProductTarget(7), 0)
	ledger.SetStock(ProductTarget(8), 0)

	_, err := ledger.Reserve(context.Background(), []Line{
		{Target: ProductTarget(7), Quantity: 1},
		{Target: ProductTarget(8), Quantity: 1},
	})

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, ProductTarget(7), stockErr.Target, "failure must name the first target in request order")
}

func TestReserveThenReleaseRoundTrip(t *testing.T) {
	ledger := NewMemLedger()
	targets := []Target{VariationTarget(1), VariationTarget(2), ProductTarget(3), ProductTarget(4)}
	for _, target := range targets {
		ledger.SetStock(target, 9)
	}

	lines := make([]Line, 0, len(targets))
	for i, target := range targets {
		lines = append(lines, Line{Target: target, Quantity: i + 1})
	}

	res, err := ledger.Reserve(context.Background(), lines)
	require.NoError(t, err)
	require.NoError(t, ledger.Release(context.Background(), res.ID))

	for _, target := range targets {
		assert.Equal(t, 9, ledger.Stock(target), "release must restore pre-reservation stock exactly")
	}
}

func TestDoubleReleaseRejectedWithoutDoubleCredit(t *testing.T) {
	ledger := NewMemLedger()
	ledger.SetStock(VariationTarget(1), 5)

	res, err := ledger.Reserve(context.Background(), []Line{{Target: VariationTarget(1), Quantity: 3}})
	require.NoError(t, err)

	require.NoError(t, ledger.Release(context.Background(), res.ID))
	assert.Equal(t, 5, ledger.Stock(VariationTarget(1)))

	err = ledger.Release(context.Background(), res.ID)
	assert.ErrorIs(t, err, ErrAlreadyReleased)
	assert.Equal(t, 5, ledger.Stock(VariationTarget(1)), "stock must be unchanged by the rejected release")
}

func TestReleaseUnknownReservation(t *testing.T) {
	ledger := NewMemLedger()
	err := ledger.Release(context.Background(), "no-such-reservation")
	assert.ErrorIs(t, err, ErrReservationNotFound)
}

func TestConcurrentReserveNeverOversells(t *testing.T) {
	ledger := NewMemLedger()
	target := VariationTarget(1)
	ledger.SetStock(target, 1)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ledger.Reserve(context.Background(), []Line{{Target: target, Quantity: 1}})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, conflicts int
	for err := range results {
		if err == nil {
			successes++
			continue
		}
		var stockErr *InsufficientStockError
		if errors.As(err, &stockErr) {
			conflicts++
		}
	}

	assert.Equal(t, 1, successes, "exactly one of two competing reservations may win")
	assert.Equal(t, 1, conflicts)
	assert.Equal(t, 0, ledger.Stock(target))
}

func TestConcurrentReserveManyShoppers(t *testing.T) {
	ledger := NewMemLedger()
	target := ProductTarget(42)
	ledger.SetStock(target, 25)

	const shoppers = 100
	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0

	for i := 0; i < shoppers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := ledger.Reserve(context.Background(), []Line{{Target: target, Quantity: 1}}); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 25, successes)
	assert.Equal(t, 0, ledger.Stock(target))
}
