package service

import (
	"context"
	"fmt"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/apierror"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/dto"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/model"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/repository"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/store"
)

type CategoryService interface {
	Create(ctx context.Context, req dto.CategoryRequest) (*model.Category, error)
	Update(ctx context.Context, id string, req dto.UpdateCategoryRequest) (*model.Category, error)
	// Delete refuses while an active product still uses the category.
	Delete(ctx context.Context, id string) error
	Deactivate(ctx context.Context, id string) error
	List(ctx context.Context, active string) ([]model.Category, error)
}

type categoryService struct {
	st    *store.Store
	repos *repository.Repositories
}

func NewCategoryService(st *store.Store, repos *repository.Repositories) CategoryService {
	return &categoryService{st: st, repos: repos}
}

func (s *categoryService) nameFreeTx(tx *store.Tx, name, exceptID string) error {
	existing, err := s.repos.Categories.FindByNameTx(tx, name)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != exceptID {
		return fmt.Errorf("category %q already exists: %w", name, apierror.ErrConstraintViolation)
	}
	return nil
}

func (s *categoryService) Create(ctx context.Context, req dto.CategoryRequest) (*model.Category, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	return store.WriteResult(ctx, s.st, func(tx *store.Tx) (*model.Category, error) {
		if err := s.nameFreeTx(tx, req.Name, ""); err != nil {
			return nil, err
		}
		return s.repos.Categories.CreateTx(tx, func(c *model.Category) {
			c.Name = req.Name
			c.Icon = req.Icon
			c.IsActive = true
		})
	})
}

func (s *categoryService) Update(ctx context.Context, id string, req dto.UpdateCategoryRequest) (*model.Category, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	return store.WriteResult(ctx, s.st, func(tx *store.Tx) (*model.Category, error) {
		if req.Name != nil {
			if err := s.nameFreeTx(tx, *req.Name, id); err != nil {
				return nil, err
			}
		}
		return s.repos.Categories.UpdateTx(tx, id, func(c *model.Category) {
			if req.Name != nil {
				c.Name = *req.Name
			}
			if req.Icon != nil {
				c.Icon = *req.Icon
			}
		})
	})
}

func (s *categoryService) Delete(ctx context.Context, id string) error {
	return s.st.Write(ctx, func(tx *store.Tx) error {
		n, err := s.repos.Products.CountActiveInCategoryTx(tx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("category has %d active products: %w", n, apierror.ErrInvalidState)
		}
		return s.repos.Categories.DeleteTx(tx, id)
	})
}

func (s *categoryService) Deactivate(ctx context.Context, id string) error {
	return s.st.Write(ctx, func(tx *store.Tx) error {
		_, err := s.repos.Categories.UpdateTx(tx, id, func(c *model.Category) { c.IsActive = false })
		return err
	})
}

func (s *categoryService) List(ctx context.Context, active string) ([]model.Category, error) {
	return s.repos.Categories.List(ctx, active)
}
