package repository

import (
	"context"
	"fmt"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/apierror"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/dto"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/model"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/store"
)

// ProductRepository is read access plus non-stock writes. Stock changes go
// through InventoryRepository.ApplyTx so each one is logged.
type ProductRepository interface {
	FindByID(ctx context.Context, id string) (*model.Product, error)
	FindByBarcode(ctx context.Context, barcode string) (*model.Product, error)
	List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, error)
	All(ctx context.Context) ([]model.Product, error)
	Observe(filter dto.ProductFilter, cb func([]model.Product)) (*store.Subscription, error)

	FindByIDTx(tx *store.Tx, id string) (*model.Product, error)
	BarcodeTakenTx(tx *store.Tx, barcode, exceptID string) (bool, error)
	CountActiveInCategoryTx(tx *store.Tx, categoryID string) (int64, error)
	CreateTx(tx *store.Tx, init func(*model.Product)) (*model.Product, error)
	UpdateTx(tx *store.Tx, id string, mutate func(*model.Product)) (*model.Product, error)
}

type productRepo struct {
	col *store.Collection[model.Product, *model.Product]
}

func NewProductRepository(c *Collections) ProductRepository {
	return &productRepo{col: c.Products}
}

func (r *productRepo) clauses(filter dto.ProductFilter) []store.Clause {
	q := activeClauses(filter.Active)
	q = append(q, r.col.SearchClauses(filter.Search)...)
	if filter.CategoryID != "" {
		q = append(q, store.Eq("category_id", filter.CategoryID))
	}
	if filter.LowStock {
		// The threshold is per row; the upper bound is checked in Go.
		q = append(q, store.Gt("current_stock", 0))
	}
	return append(q, store.OrderBy("name"))
}

func (r *productRepo) FindByID(ctx context.Context, id string) (*model.Product, error) {
	return r.col.Find(ctx, id)
}

// FindByBarcode only matches active products.
func (r *productRepo) FindByBarcode(ctx context.Context, barcode string) (*model.Product, error) {
	rows, err := r.col.Fetch(ctx, store.Eq("barcode", barcode), store.Eq("is_active", true), store.Limit(1))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("barcode %s: %w", barcode, apierror.ErrNotFound)
	}
	return &rows[0], nil
}

func (r *productRepo) List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, error) {
	rows, err := r.col.Fetch(ctx, r.clauses(filter)...)
	if err != nil {
		return nil, err
	}
	if filter.LowStock {
		rows = lowStockOnly(rows)
	}
	return rows, nil
}

func (r *productRepo) All(ctx context.Context) ([]model.Product, error) {
	return r.col.Fetch(ctx, store.OrderBy("name"))
}

func (r *productRepo) Observe(filter dto.ProductFilter, cb func([]model.Product)) (*store.Subscription, error) {
	if filter.LowStock {
		next := cb
		cb = func(rows []model.Product) { next(lowStockOnly(rows)) }
	}
	return r.col.Observe(cb, r.clauses(filter)...)
}

func (r *productRepo) FindByIDTx(tx *store.Tx, id string) (*model.Product, error) {
	return r.col.In(tx).Find(id)
}

func (r *productRepo) BarcodeTakenTx(tx *store.Tx, barcode, exceptID string) (bool, error) {
	q := []store.Clause{store.Eq("barcode", barcode)}
	if exceptID != "" {
		q = append(q, store.NotEq("id", exceptID))
	}
	n, err := r.col.In(tx).FetchCount(q...)
	return n > 0, err
}

func (r *productRepo) CountActiveInCategoryTx(tx *store.Tx, categoryID string) (int64, error) {
	return r.col.In(tx).FetchCount(store.Eq("category_id", categoryID), store.Eq("is_active", true))
}

func (r *productRepo) CreateTx(tx *store.Tx, init func(*model.Product)) (*model.Product, error) {
	return r.col.In(tx).Create(init)
}

func (r *productRepo) UpdateTx(tx *store.Tx, id string, mutate func(*model.Product)) (*model.Product, error) {
	return r.col.In(tx).Update(id, mutate)
}

func lowStockOnly(rows []model.Product) []model.Product {
	out := rows[:0:0]
	for i := range rows {
		if rows[i].IsLowStock() {
			out = append(out, rows[i])
		}
	}
	return out
}
