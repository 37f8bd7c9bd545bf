package repository

import (
	"context"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/dto"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/model"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/store"

	"github.com/shopspring/decimal"
)

type InventoryRepository interface {
	// ApplyTx is the only way stock changes: it moves the product's
	// current_stock by delta and appends the matching InventoryLog row.
	ApplyTx(tx *store.Tx, productID string, delta decimal.Decimal, reason model.StockReason, notes string) (*model.Product, *model.InventoryLog, error)
	List(ctx context.Context, filter dto.InventoryLogFilter) ([]model.InventoryLog, error)
}

type inventoryRepo struct {
	products *store.Collection[model.Product, *model.Product]
	logs     *store.Collection[model.InventoryLog, *model.InventoryLog]
}

func NewInventoryRepository(c *Collections) InventoryRepository {
	return &inventoryRepo{products: c.Products, logs: c.InventoryLogs}
}

func (r *inventoryRepo) ApplyTx(tx *store.Tx, productID string, delta decimal.Decimal, reason model.StockReason, notes string) (*model.Product, *model.InventoryLog, error) {
	p, err := r.products.In(tx).Update(productID, func(p *model.Product) {
		p.CurrentStock = p.CurrentStock.Add(delta)
	})
	if err != nil {
		return nil, nil, err
	}
	entry, err := r.logs.In(tx).Create(func(l *model.InventoryLog) {
		l.ProductID = productID
		l.QuantityChange = delta
		l.Reason = reason
		l.Notes = notes
	})
	if err != nil {
		return nil, nil, err
	}
	return p, entry, nil
}

// List returns the newest movements first.
func (r *inventoryRepo) List(ctx context.Context, filter dto.InventoryLogFilter) ([]model.InventoryLog, error) {
	var q []store.Clause
	if filter.ProductID != "" {
		q = append(q, store.Eq("product_id", filter.ProductID))
	}
	q = append(q, store.OrderByDesc("created_at"))
	if filter.Limit > 0 {
		q = append(q, store.Limit(filter.Limit))
	}
	return r.logs.Fetch(ctx, q...)
}
