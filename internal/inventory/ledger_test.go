package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLockOrderSortsByKindThenID(t *testing.T) {
	lines := []Line{
		{Target: VariationTarget(9), Quantity: 1},
		{Target: ProductTarget(3), Quantity: 1},
		{Target: VariationTarget(2), Quantity: 1},
		{Target: ProductTarget(1), Quantity: 1},
	}

	order := lockOrder(lines)

	var got []Target
	for _, i := range order {
		got = append(got, lines[i].Target)
	}
	assert.Equal(t, []Target{
		ProductTarget(1),
		ProductTarget(3),
		VariationTarget(2),
		VariationTarget(9),
	}, got)
}

func TestLockOrderIsIndependentOfRequestOrder(t *testing.T) {
	forward := []Line{
		{Target: ProductTarget(1), Quantity: 1},
		{Target: ProductTarget(2), Quantity: 1},
	}
	reverse := []Line{
		{Target: ProductTarget(2), Quantity: 1},
		{Target: ProductTarget(1), Quantity: 1},
	}

	// Both batches must lock product 1 first, whichever way they were asked.
	assert.Equal(t, forward[lockOrder(forward)[0]].Target, reverse[lockOrder(reverse)[0]].Target)
}

func TestLockOrderKeepsDuplicateTargetsStable(t *testing.T) {
	lines := []Line{
		{Target: ProductTarget(5), Quantity: 2},
		{Target: ProductTarget(5), Quantity: 3},
	}

	assert.Equal(t, []int{0, 1}, lockOrder(lines))
}
