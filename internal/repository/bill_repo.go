package repository

import (
	"context"
	"sort"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/model"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/store"
)

// BillQuery selects bills. From/To are epoch milliseconds, inclusive; nil is
// unbounded. An empty Status matches every status.
type BillQuery struct {
	From        *int64
	To          *int64
	Status      model.BillStatus
	CustomerID  string
	Search      string
	Limit       int
	NewestFirst bool
}

type BillRepository interface {
	FindByID(ctx context.Context, id string) (*model.Bill, error)
	Items(ctx context.Context, billID string) ([]model.BillItem, error)
	ItemsForBills(ctx context.Context, billIDs []string) ([]model.BillItem, error)
	Payments(ctx context.Context, billID string) ([]model.Payment, error)
	List(ctx context.Context, q BillQuery) ([]model.Bill, error)
	Observe(q BillQuery, cb func([]model.Bill)) (*store.Subscription, error)

	FindByIDTx(tx *store.Tx, id string) (*model.Bill, error)
	ItemsTx(tx *store.Tx, billID string) ([]model.BillItem, error)
	NumberTakenTx(tx *store.Tx, number string) (bool, error)
	CreateTx(tx *store.Tx, init func(*model.Bill)) (*model.Bill, error)
	CreateItemTx(tx *store.Tx, init func(*model.BillItem)) (*model.BillItem, error)
	CreatePaymentTx(tx *store.Tx, init func(*model.Payment)) (*model.Payment, error)
	SetStatusTx(tx *store.Tx, id string, status model.BillStatus) (*model.Bill, error)
}

type billRepo struct {
	bills    *store.Collection[model.Bill, *model.Bill]
	items    *store.Collection[model.BillItem, *model.BillItem]
	payments *store.Collection[model.Payment, *model.Payment]
}

func NewBillRepository(c *Collections) BillRepository {
	return &billRepo{bills: c.Bills, items: c.BillItems, payments: c.Payments}
}

func (r *billRepo) clauses(q BillQuery) []store.Clause {
	var out []store.Clause
	switch {
	case q.From != nil && q.To != nil:
		out = append(out, store.Between("created_at", *q.From, *q.To))
	case q.From != nil:
		out = append(out, store.Gte("created_at", *q.From))
	case q.To != nil:
		out = append(out, store.Lte("created_at", *q.To))
	}
	if q.Status != "" {
		out = append(out, store.Eq("status", string(q.Status)))
	}
	if q.CustomerID != "" {
		out = append(out, store.Eq("customer_id", q.CustomerID))
	}
	out = append(out, r.bills.SearchClauses(q.Search)...)
	if q.NewestFirst {
		out = append(out, store.OrderByDesc("created_at"))
	} else {
		out = append(out, store.OrderBy("created_at"))
	}
	if q.Limit > 0 {
		out = append(out, store.Limit(q.Limit))
	}
	return out
}

func (r *billRepo) FindByID(ctx context.Context, id string) (*model.Bill, error) {
	return r.bills.Find(ctx, id)
}

func (r *billRepo) Items(ctx context.Context, billID string) ([]model.BillItem, error) {
	return r.items.Fetch(ctx, store.Eq("bill_id", billID))
}

// ItemsForBills queries in chunks to stay under SQLite's bound-variable limit.
// The result is ordered by created_at, id across all chunks.
func (r *billRepo) ItemsForBills(ctx context.Context, billIDs []string) ([]model.BillItem, error) {
	const chunk = 500
	out := []model.BillItem{}
	for start := 0; start < len(billIDs); start += chunk {
		end := min(start+chunk, len(billIDs))
		rows, err := r.items.Fetch(ctx, store.In("bill_id", billIDs[start:end]...))
		if err != nil {
			return nil, err
		}
		out = append(out, rows...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt < out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *billRepo) Payments(ctx context.Context, billID string) ([]model.Payment, error) {
	return r.payments.Fetch(ctx, store.Eq("bill_id", billID))
}

func (r *billRepo) List(ctx context.Context, q BillQuery) ([]model.Bill, error) {
	return r.bills.Fetch(ctx, r.clauses(q)...)
}

func (r *billRepo) Observe(q BillQuery, cb func([]model.Bill)) (*store.Subscription, error) {
	return r.bills.Observe(cb, r.clauses(q)...)
}

func (r *billRepo) FindByIDTx(tx *store.Tx, id string) (*model.Bill, error) {
	return r.bills.In(tx).Find(id)
}

func (r *billRepo) ItemsTx(tx *store.Tx, billID string) ([]model.BillItem, error) {
	return r.items.In(tx).Fetch(store.Eq("bill_id", billID))
}

func (r *billRepo) NumberTakenTx(tx *store.Tx, number string) (bool, error) {
	n, err := r.bills.In(tx).FetchCount(store.Eq("bill_number", number))
	return n > 0, err
}

func (r *billRepo) CreateTx(tx *store.Tx, init func(*model.Bill)) (*model.Bill, error) {
	return r.bills.In(tx).Create(init)
}

func (r *billRepo) CreateItemTx(tx *store.Tx, init func(*model.BillItem)) (*model.BillItem, error) {
	return r.items.In(tx).Create(init)
}

func (r *billRepo) CreatePaymentTx(tx *store.Tx, init func(*model.Payment)) (*model.Payment, error) {
	return r.payments.In(tx).Create(init)
}

func (r *billRepo) SetStatusTx(tx *store.Tx, id string, status model.BillStatus) (*model.Bill, error) {
	return r.bills.In(tx).Update(id, func(b *model.Bill) { b.Status = status })
}
