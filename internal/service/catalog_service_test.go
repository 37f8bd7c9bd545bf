package service_test

import (
	"context"
	"testing"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/apierror"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/dto"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLowStock_NeverOverlapsOutOfStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Matches", "2", "6", "5")

	cases := []struct {
		delta     string
		reason    string
		low, out  bool
		wantStock string
	}{
		{"-1", "damage", true, false, "5"}, // at threshold
		{"-4", "manual", true, false, "1"},
		{"-1", "damage", false, true, "0"},
		{"-2", "manual", false, true, "-2"},
		{"10", "purchase", false, false, "8"},
	}
	for _, tc := range cases {
		got, err := f.inventory.AdjustStock(ctx, p.ID, dto.AdjustStockRequest{Delta: dec(tc.delta), Reason: tc.reason})
		require.NoError(t, err)
		assert.True(t, got.CurrentStock.Equal(dec(tc.wantStock)), got.CurrentStock.String())
		assert.Equal(t, tc.low, got.IsLowStock(), "low at %s", tc.wantStock)
		assert.Equal(t, tc.out, got.IsOutOfStock(), "out at %s", tc.wantStock)
		assert.False(t, got.IsLowStock() && got.IsOutOfStock())
	}

	logs, err := f.inventory.Logs(ctx, dto.InventoryLogFilter{ProductID: p.ID})
	require.NoError(t, err)
	assert.Len(t, logs, 6, "opening stock plus five adjustments")
	assert.Equal(t, "opening stock", logs[len(logs)-1].Notes)
}

func TestAdjustStock_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Candles", "10", "3", "1")

	_, err := f.inventory.AdjustStock(ctx, p.ID, dto.AdjustStockRequest{Delta: dec("-1"), Reason: "purchase"})
	assert.ErrorIs(t, err, apierror.ErrValidation)

	_, err = f.inventory.AdjustStock(ctx, p.ID, dto.AdjustStockRequest{Delta: dec("1"), Reason: "sale"})
	assert.ErrorIs(t, err, apierror.ErrValidation, "sales only go through bills")

	_, err = f.inventory.AdjustStock(ctx, p.ID, dto.AdjustStockRequest{Delta: dec("0"), Reason: "manual"})
	assert.ErrorIs(t, err, apierror.ErrValidation)

	assert.True(t, f.stock(t, p.ID).Equal(dec("3")))
}

func TestLowStockAlerts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.product(t, "Plenty", "10", "50", "5")
	low := f.product(t, "Low", "10", "2", "5")
	out := f.product(t, "Gone", "10", "0", "5")
	inactive := f.product(t, "Retired", "10", "0", "5")
	require.NoError(t, f.products.Deactivate(ctx, inactive.ID))

	alerts, err := f.products.LowStockAlerts(ctx)
	require.NoError(t, err)
	ids := map[string]bool{}
	for _, p := range alerts {
		ids[p.ID] = true
	}
	assert.Equal(t, map[string]bool{low.ID: true, out.ID: true}, ids)

	lowOnly, err := f.products.List(ctx, dto.ProductFilter{LowStock: true})
	require.NoError(t, err)
	require.Len(t, lowOnly, 1)
	assert.Equal(t, low.ID, lowOnly[0].ID)

	rep, err := f.reports.InventoryReport(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, rep.TotalProducts)
	assert.Equal(t, 1, rep.LowStockCount)
	assert.Equal(t, 1, rep.OutOfStockCount)
	assert.True(t, rep.TotalStockValue.Equal(dec("520")))
}

func TestProducts_BarcodeAndCategoryRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cat, err := f.categories.Create(ctx, dto.CategoryRequest{Name: "Snacks"})
	require.NoError(t, err)
	_, err = f.categories.Create(ctx, dto.CategoryRequest{Name: "Snacks"})
	assert.ErrorIs(t, err, apierror.ErrConstraintViolation)

	p, err := f.products.Create(ctx, dto.CreateProductRequest{
		Name: "Chips", CategoryID: &cat.ID, SellingPrice: dec("20"), Unit: "packet", Barcode: strPtr("8901234"),
	})
	require.NoError(t, err)
	assert.Equal(t, model.UnitPacket, p.Unit)

	byCode, err := f.products.FindByBarcode(ctx, "8901234")
	require.NoError(t, err)
	assert.Equal(t, p.ID, byCode.ID)

	_, err = f.products.Create(ctx, dto.CreateProductRequest{
		Name: "Other chips", SellingPrice: dec("20"), Unit: "packet", Barcode: strPtr("8901234"),
	})
	assert.ErrorIs(t, err, apierror.ErrConstraintViolation)

	_, err = f.products.Create(ctx, dto.CreateProductRequest{Name: "Bad unit", Unit: "crate"})
	assert.ErrorIs(t, err, apierror.ErrValidation)

	// deleting a category in use is refused
	err = f.categories.Delete(ctx, cat.ID)
	assert.ErrorIs(t, err, apierror.ErrInvalidState)

	_, err = f.products.Update(ctx, p.ID, dto.UpdateProductRequest{ClearCategory: true})
	require.NoError(t, err)
	require.NoError(t, f.categories.Delete(ctx, cat.ID))

	cats, err := f.categories.List(ctx, "all")
	require.NoError(t, err)
	assert.Empty(t, cats)

	require.NoError(t, f.products.Deactivate(ctx, p.ID))
	_, err = f.products.FindByBarcode(ctx, "8901234")
	assert.ErrorIs(t, err, apierror.ErrNotFound)
}

func TestProducts_UpdateNeverTouchesStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Curd", "30", "7", "2")

	price := dec("32")
	u, err := f.products.Update(ctx, p.ID, dto.UpdateProductRequest{SellingPrice: &price})
	require.NoError(t, err)
	assert.True(t, u.SellingPrice.Equal(dec("32")))
	assert.True(t, u.CurrentStock.Equal(dec("7")))
}
