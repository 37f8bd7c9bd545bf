package repository

import (
	"context"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/model"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/store"

	"github.com/shopspring/decimal"
)

// CreditRepository is the customer ledger. Entries are append-only; the
// outstanding amount is the balance_after of the newest entry.
type CreditRepository interface {
	Outstanding(ctx context.Context, customerID string) (decimal.Decimal, error)
	OutstandingByCustomer(ctx context.Context) (map[string]decimal.Decimal, error)
	Ledger(ctx context.Context, customerID string) ([]model.CreditEntry, error)
	ObserveLedger(customerID string, cb func([]model.CreditEntry)) (*store.Subscription, error)

	// AppendTx folds a new entry onto the customer's latest balance.
	AppendTx(tx *store.Tx, e model.CreditEntry) (*model.CreditEntry, error)
}

type creditRepo struct {
	col *store.Collection[model.CreditEntry, *model.CreditEntry]
}

func NewCreditRepository(c *Collections) CreditRepository {
	return &creditRepo{col: c.CreditEntries}
}

func latestClauses(customerID string) []store.Clause {
	return []store.Clause{
		store.Eq("customer_id", customerID),
		store.OrderByDesc("created_at"),
		store.OrderByDesc("id"),
		store.Limit(1),
	}
}

func balanceOf(rows []model.CreditEntry) decimal.Decimal {
	if len(rows) == 0 {
		return decimal.Zero
	}
	return rows[0].BalanceAfter
}

func (r *creditRepo) Outstanding(ctx context.Context, customerID string) (decimal.Decimal, error) {
	rows, err := r.col.Fetch(ctx, latestClauses(customerID)...)
	if err != nil {
		return decimal.Zero, err
	}
	return balanceOf(rows), nil
}

// OutstandingByCustomer scans the ledger once in creation order; the last
// entry seen per customer wins. Customers without entries are absent.
func (r *creditRepo) OutstandingByCustomer(ctx context.Context) (map[string]decimal.Decimal, error) {
	rows, err := r.col.Fetch(ctx, store.OrderBy("created_at"), store.OrderBy("id"))
	if err != nil {
		return nil, err
	}
	out := make(map[string]decimal.Decimal)
	for _, e := range rows {
		out[e.CustomerID] = e.BalanceAfter
	}
	return out, nil
}

func (r *creditRepo) Ledger(ctx context.Context, customerID string) ([]model.CreditEntry, error) {
	return r.col.Fetch(ctx, store.Eq("customer_id", customerID), store.OrderBy("created_at"), store.OrderBy("id"))
}

func (r *creditRepo) ObserveLedger(customerID string, cb func([]model.CreditEntry)) (*store.Subscription, error) {
	return r.col.Observe(cb, store.Eq("customer_id", customerID), store.OrderBy("created_at"), store.OrderBy("id"))
}

func (r *creditRepo) AppendTx(tx *store.Tx, e model.CreditEntry) (*model.CreditEntry, error) {
	col := r.col.In(tx)
	rows, err := col.Fetch(latestClauses(e.CustomerID)...)
	if err != nil {
		return nil, err
	}
	prev := balanceOf(rows)
	return col.Create(func(c *model.CreditEntry) {
		c.CustomerID = e.CustomerID
		c.BillID = e.BillID
		c.EntryType = e.EntryType
		c.Amount = e.Amount
		c.Notes = e.Notes
		c.BalanceAfter = prev.Add(c.Signed())
	})
}
