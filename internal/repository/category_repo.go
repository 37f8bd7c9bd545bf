package repository

import (
	"context"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/model"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/store"
)

type CategoryRepository interface {
	FindByID(ctx context.Context, id string) (*model.Category, error)
	List(ctx context.Context, active string) ([]model.Category, error)
	ObserveAll(cb func([]model.Category)) *store.Subscription

	FindByIDTx(tx *store.Tx, id string) (*model.Category, error)
	FindByNameTx(tx *store.Tx, name string) (*model.Category, error)
	CreateTx(tx *store.Tx, init func(*model.Category)) (*model.Category, error)
	UpdateTx(tx *store.Tx, id string, mutate func(*model.Category)) (*model.Category, error)
	DeleteTx(tx *store.Tx, id string) error
}

type categoryRepo struct {
	col *store.Collection[model.Category, *model.Category]
}

func NewCategoryRepository(c *Collections) CategoryRepository {
	return &categoryRepo{col: c.Categories}
}

func (r *categoryRepo) FindByID(ctx context.Context, id string) (*model.Category, error) {
	return r.col.Find(ctx, id)
}

func (r *categoryRepo) List(ctx context.Context, active string) ([]model.Category, error) {
	return r.col.Fetch(ctx, append(activeClauses(active), store.OrderBy("name"))...)
}

func (r *categoryRepo) ObserveAll(cb func([]model.Category)) *store.Subscription {
	return r.col.ObserveAll(cb)
}

func (r *categoryRepo) FindByIDTx(tx *store.Tx, id string) (*model.Category, error) {
	return r.col.In(tx).Find(id)
}

// FindByNameTx returns nil, nil when no category has that name.
func (r *categoryRepo) FindByNameTx(tx *store.Tx, name string) (*model.Category, error) {
	rows, err := r.col.In(tx).Fetch(store.Eq("name", name), store.Limit(1))
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}

func (r *categoryRepo) CreateTx(tx *store.Tx, init func(*model.Category)) (*model.Category, error) {
	return r.col.In(tx).Create(init)
}

func (r *categoryRepo) UpdateTx(tx *store.Tx, id string, mutate func(*model.Category)) (*model.Category, error) {
	return r.col.In(tx).Update(id, mutate)
}

func (r *categoryRepo) DeleteTx(tx *store.Tx, id string) error {
	return r.col.In(tx).Destroy(id)
}
