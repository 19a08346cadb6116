package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"storefront-service/internal/catalog"
	"storefront-service/pkg/money"
)

func TestUnitPrice(t *testing.T) {
	product := catalog.Product{ID: 1, BasePrice: money.FromMinorUnits(1599)}

	t.Run("without variation", func(t *testing.T) {
		assert.Equal(t, money.FromMinorUnits(1599), UnitPrice(product, nil))
	})

	t.Run("variation with zero surcharge", func(t *testing.T) {
		v := catalog.Variation{ID: 10, ProductID: 1, AdditionalPrice: money.FromMinorUnits(0)}
		assert.Equal(t, money.FromMinorUnits(1599), UnitPrice(product, &v))
	})

	t.Run("variation surcharge is added to base", func(t *testing.T) {
		v := catalog.Variation{ID: 11, ProductID: 1, AdditionalPrice: money.FromMinorUnits(250)}
		assert.Equal(t, money.FromMinorUnits(1849), UnitPrice(product, &v))
	})
}

func TestLineTotal(t *testing.T) {
	assert.Equal(t, money.FromMinorUnits(3198), LineTotal(money.FromMinorUnits(1599), 2))
	assert.Equal(t, money.FromMinorUnits(0), LineTotal(money.FromMinorUnits(1599), 0))
}
