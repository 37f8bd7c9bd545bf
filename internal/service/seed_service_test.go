package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/apierror"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/dto"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/model"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const starterCatalog = `
categories:
  - name: Pulses
  - name: Dairy
    icon: milk
products:
  - name: Toor Dal 1kg
    category: Pulses
    purchase_price: 105
    selling_price: 120
    opening_stock: 20
    low_stock_threshold: 5
    unit: packet
  - name: Milk 500ml
    category: dairy
    selling_price: "27.50"
    opening_stock: 30
    barcode: "8901262150019"
    unit: packet
customers:
  - name: Asha Patil
    phone: "9876500001"
  - name: Walk-in Regular
`

func newSeed(f *fixture) service.SeedService {
	return service.NewSeedService(f.categories, f.products, f.customers)
}

func TestSeed_CreatesCatalog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := newSeed(f).Seed(ctx, strings.NewReader(starterCatalog))
	require.NoError(t, err)
	assert.Equal(t, service.SeedResult{Categories: 2, Products: 2, Customers: 2}, *res)

	milk, err := f.products.FindByBarcode(ctx, "8901262150019")
	require.NoError(t, err)
	assert.True(t, milk.SellingPrice.Equal(dec("27.5")))
	assert.True(t, milk.CurrentStock.Equal(dec("30")))
	require.NotNil(t, milk.CategoryID)

	logs, err := f.inventory.Logs(ctx, dto.InventoryLogFilter{ProductID: milk.ID})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, model.ReasonPurchase, logs[0].Reason)
}

func TestSeed_SkipsExisting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := newSeed(f).Seed(ctx, strings.NewReader(starterCatalog))
	require.NoError(t, err)
	before := f.counts(t)

	res, err := newSeed(f).Seed(ctx, strings.NewReader(starterCatalog))
	require.NoError(t, err)
	assert.Equal(t, service.SeedResult{Skipped: 6}, *res)
	assert.Equal(t, before, f.counts(t))
}

func TestSeed_Rejections(t *testing.T) {
	f := newFixture(t)

	_, err := newSeed(f).Seed(context.Background(), strings.NewReader("products:\n  - name: X\n    colour: red\n"))
	assert.ErrorIs(t, err, apierror.ErrValidation)

	_, err = newSeed(f).Seed(context.Background(), strings.NewReader(
		"products:\n  - name: Ghee\n    category: Nowhere\n    unit: kg\n"))
	assert.ErrorIs(t, err, apierror.ErrValidation)
	assert.Contains(t, err.Error(), "Ghee")

	res, err := newSeed(f).Seed(context.Background(), strings.NewReader(""))
	require.NoError(t, err)
	assert.Zero(t, *res)
}
