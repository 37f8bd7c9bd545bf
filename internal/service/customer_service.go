package service

import (
	"context"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/dto"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/model"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/repository"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/store"

	"github.com/shopspring/decimal"
)

type CustomerService interface {
	Create(ctx context.Context, req dto.CreateCustomerRequest) (*model.Customer, error)
	Update(ctx context.Context, id string, req dto.UpdateCustomerRequest) (*model.Customer, error)
	Deactivate(ctx context.Context, id string) error
	Reactivate(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*dto.CustomerResponse, error)
	// List includes each customer's outstanding credit.
	List(ctx context.Context, filter dto.CustomerFilter) ([]dto.CustomerResponse, error)
	Observe(filter dto.CustomerFilter, cb func([]model.Customer)) (*store.Subscription, error)
}

type customerService struct {
	st    *store.Store
	repos *repository.Repositories
}

func NewCustomerService(st *store.Store, repos *repository.Repositories) CustomerService {
	return &customerService{st: st, repos: repos}
}

func (s *customerService) Create(ctx context.Context, req dto.CreateCustomerRequest) (*model.Customer, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	return store.WriteResult(ctx, s.st, func(tx *store.Tx) (*model.Customer, error) {
		return s.repos.Customers.CreateTx(tx, func(c *model.Customer) {
			c.Name = req.Name
			c.Phone = req.Phone
			c.Address = req.Address
			c.Notes = req.Notes
			c.IsActive = true
		})
	})
}

func (s *customerService) Update(ctx context.Context, id string, req dto.UpdateCustomerRequest) (*model.Customer, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	return store.WriteResult(ctx, s.st, func(tx *store.Tx) (*model.Customer, error) {
		return s.repos.Customers.UpdateTx(tx, id, func(c *model.Customer) {
			if req.Name != nil {
				c.Name = *req.Name
			}
			if req.Phone != nil {
				c.Phone = *req.Phone
			}
			if req.Address != nil {
				c.Address = *req.Address
			}
			if req.Notes != nil {
				c.Notes = *req.Notes
			}
		})
	})
}

func (s *customerService) setActive(ctx context.Context, id string, active bool) error {
	return s.st.Write(ctx, func(tx *store.Tx) error {
		_, err := s.repos.Customers.UpdateTx(tx, id, func(c *model.Customer) { c.IsActive = active })
		return err
	})
}

// Deactivate hides the customer from pickers; bills and ledger keep the reference.
func (s *customerService) Deactivate(ctx context.Context, id string) error {
	return s.setActive(ctx, id, false)
}

func (s *customerService) Reactivate(ctx context.Context, id string) error {
	return s.setActive(ctx, id, true)
}

func (s *customerService) Get(ctx context.Context, id string) (*dto.CustomerResponse, error) {
	c, err := s.repos.Customers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	bal, err := s.repos.Credit.Outstanding(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := customerToResponse(c, bal)
	return &resp, nil
}

func (s *customerService) List(ctx context.Context, filter dto.CustomerFilter) ([]dto.CustomerResponse, error) {
	if err := dto.Validate(filter); err != nil {
		return nil, err
	}
	rows, err := s.repos.Customers.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	balances, err := s.repos.Credit.OutstandingByCustomer(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CustomerResponse, 0, len(rows))
	for i := range rows {
		out = append(out, customerToResponse(&rows[i], balances[rows[i].ID]))
	}
	return out, nil
}

func (s *customerService) Observe(filter dto.CustomerFilter, cb func([]model.Customer)) (*store.Subscription, error) {
	return s.repos.Customers.Observe(filter, cb)
}

func customerToResponse(c *model.Customer, outstanding decimal.Decimal) dto.CustomerResponse {
	return dto.CustomerResponse{
		ID:          c.ID,
		Name:        c.Name,
		Phone:       c.Phone,
		Address:     c.Address,
		Notes:       c.Notes,
		IsActive:    c.IsActive,
		Outstanding: outstanding,
	}
}
