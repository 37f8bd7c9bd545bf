package service

import (
	"context"
	"fmt"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/dto"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/model"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/repository"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/store"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// CreditService is the customer ledger ("udhaar"). Balances are not floored:
// an overpayment leaves a negative balance, i.e. the shop owes the customer.
type CreditService interface {
	AddCreditPayment(ctx context.Context, customerID string, req dto.CreditPaymentRequest) (*model.CreditEntry, error)
	GetOutstandingCredit(ctx context.Context, customerID string) (decimal.Decimal, error)
	Ledger(ctx context.Context, customerID string) ([]model.CreditEntry, error)
	ObserveLedger(customerID string, cb func([]model.CreditEntry)) (*store.Subscription, error)
}

type creditService struct {
	st    *store.Store
	repos *repository.Repositories
}

func NewCreditService(st *store.Store, repos *repository.Repositories) CreditService {
	return &creditService{st: st, repos: repos}
}

func (s *creditService) AddCreditPayment(ctx context.Context, customerID string, req dto.CreditPaymentRequest) (*model.CreditEntry, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	entry, err := store.WriteResult(ctx, s.st, func(tx *store.Tx) (*model.CreditEntry, error) {
		if _, err := s.repos.Customers.FindByIDTx(tx, customerID); err != nil {
			return nil, err
		}
		return s.repos.Credit.AppendTx(tx, model.CreditEntry{
			CustomerID: customerID,
			EntryType:  model.EntryPayment,
			Amount:     req.Amount,
			Notes:      req.Note,
		})
	})
	if err != nil {
		return nil, err
	}
	ev := log.Info()
	if entry.BalanceAfter.IsNegative() {
		ev = log.Warn()
	}
	ev.Str("customer_id", customerID).Str("amount", req.Amount.String()).
		Str("balance_after", entry.BalanceAfter.String()).Msg("credit payment recorded")
	return entry, nil
}

// GetOutstandingCredit is 0 for a customer with no ledger entries.
func (s *creditService) GetOutstandingCredit(ctx context.Context, customerID string) (decimal.Decimal, error) {
	return s.repos.Credit.Outstanding(ctx, customerID)
}

func (s *creditService) Ledger(ctx context.Context, customerID string) ([]model.CreditEntry, error) {
	if _, err := s.repos.Customers.FindByID(ctx, customerID); err != nil {
		return nil, fmt.Errorf("ledger: %w", err)
	}
	return s.repos.Credit.Ledger(ctx, customerID)
}

func (s *creditService) ObserveLedger(customerID string, cb func([]model.CreditEntry)) (*store.Subscription, error) {
	return s.repos.Credit.ObserveLedger(customerID, cb)
}
