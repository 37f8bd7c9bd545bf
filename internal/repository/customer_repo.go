package repository

import (
	"context"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/dto"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/model"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/store"
)

type CustomerRepository interface {
	FindByID(ctx context.Context, id string) (*model.Customer, error)
	List(ctx context.Context, filter dto.CustomerFilter) ([]model.Customer, error)
	Observe(filter dto.CustomerFilter, cb func([]model.Customer)) (*store.Subscription, error)

	// Used inside store.Write
	FindByIDTx(tx *store.Tx, id string) (*model.Customer, error)
	CreateTx(tx *store.Tx, init func(*model.Customer)) (*model.Customer, error)
	UpdateTx(tx *store.Tx, id string, mutate func(*model.Customer)) (*model.Customer, error)
}

type customerRepo struct {
	col *store.Collection[model.Customer, *model.Customer]
}

func NewCustomerRepository(c *Collections) CustomerRepository {
	return &customerRepo{col: c.Customers}
}

func (r *customerRepo) clauses(filter dto.CustomerFilter) []store.Clause {
	q := activeClauses(filter.Active)
	q = append(q, r.col.SearchClauses(filter.Search)...)
	return append(q, store.OrderBy("name"))
}

func (r *customerRepo) FindByID(ctx context.Context, id string) (*model.Customer, error) {
	return r.col.Find(ctx, id)
}

func (r *customerRepo) List(ctx context.Context, filter dto.CustomerFilter) ([]model.Customer, error) {
	return r.col.Fetch(ctx, r.clauses(filter)...)
}

func (r *customerRepo) Observe(filter dto.CustomerFilter, cb func([]model.Customer)) (*store.Subscription, error) {
	return r.col.Observe(cb, r.clauses(filter)...)
}

func (r *customerRepo) FindByIDTx(tx *store.Tx, id string) (*model.Customer, error) {
	return r.col.In(tx).Find(id)
}

func (r *customerRepo) CreateTx(tx *store.Tx, init func(*model.Customer)) (*model.Customer, error) {
	return r.col.In(tx).Create(init)
}

func (r *customerRepo) UpdateTx(tx *store.Tx, id string, mutate func(*model.Customer)) (*model.Customer, error) {
	return r.col.In(tx).Update(id, mutate)
}
