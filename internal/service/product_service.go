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

type ProductService interface {
	Create(ctx context.Context, req dto.CreateProductRequest) (*model.Product, error)
	Update(ctx context.Context, id string, req dto.UpdateProductRequest) (*model.Product, error)
	Deactivate(ctx context.Context, id string) error
	Reactivate(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*model.Product, error)
	FindByBarcode(ctx context.Context, barcode string) (*model.Product, error)
	List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, error)
	// LowStockAlerts lists active products that are low or out of stock.
	LowStockAlerts(ctx context.Context) ([]model.Product, error)
	Observe(filter dto.ProductFilter, cb func([]model.Product)) (*store.Subscription, error)
}

type productService struct {
	st    *store.Store
	repos *repository.Repositories
}

func NewProductService(st *store.Store, repos *repository.Repositories) ProductService {
	return &productService{st: st, repos: repos}
}

func (s *productService) checkRefsTx(tx *store.Tx, id string, categoryID, barcode *string) error {
	if categoryID != nil {
		c, err := s.repos.Categories.FindByIDTx(tx, *categoryID)
		if err != nil {
			return fmt.Errorf("category: %w", err)
		}
		if !c.IsActive {
			return fmt.Errorf("category %s is inactive: %w", c.Name, apierror.ErrInvalidState)
		}
	}
	if barcode != nil && *barcode != "" {
		taken, err := s.repos.Products.BarcodeTakenTx(tx, *barcode, id)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("barcode %s already in use: %w", *barcode, apierror.ErrConstraintViolation)
		}
	}
	return nil
}

// Create posts a non-zero opening stock as a purchase log, so the product's
// stock history starts from zero like every other change.
func (s *productService) Create(ctx context.Context, req dto.CreateProductRequest) (*model.Product, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	return store.WriteResult(ctx, s.st, func(tx *store.Tx) (*model.Product, error) {
		if err := s.checkRefsTx(tx, "", req.CategoryID, req.Barcode); err != nil {
			return nil, err
		}
		p, err := s.repos.Products.CreateTx(tx, func(p *model.Product) {
			p.Name = req.Name
			p.CategoryID = req.CategoryID
			p.PurchasePrice = req.PurchasePrice
			p.SellingPrice = req.SellingPrice
			p.LowStockThreshold = req.LowStockThreshold
			p.Barcode = req.Barcode
			p.Unit = model.Unit(req.Unit)
			p.IsActive = true
		})
		if err != nil {
			return nil, err
		}
		if req.OpeningStock.IsZero() {
			return p, nil
		}
		p, _, err = s.repos.Inventory.ApplyTx(tx, p.ID, req.OpeningStock, model.ReasonPurchase, "opening stock")
		return p, err
	})
}

func (s *productService) Update(ctx context.Context, id string, req dto.UpdateProductRequest) (*model.Product, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	return store.WriteResult(ctx, s.st, func(tx *store.Tx) (*model.Product, error) {
		if err := s.checkRefsTx(tx, id, req.CategoryID, req.Barcode); err != nil {
			return nil, err
		}
		return s.repos.Products.UpdateTx(tx, id, func(p *model.Product) {
			if req.Name != nil {
				p.Name = *req.Name
			}
			if req.ClearCategory {
				p.CategoryID = nil
			} else if req.CategoryID != nil {
				p.CategoryID = req.CategoryID
			}
			if req.PurchasePrice != nil {
				p.PurchasePrice = *req.PurchasePrice
			}
			if req.SellingPrice != nil {
				p.SellingPrice = *req.SellingPrice
			}
			if req.LowStockThreshold != nil {
				p.LowStockThreshold = *req.LowStockThreshold
			}
			if req.Barcode != nil {
				p.Barcode = req.Barcode
			}
			if req.Unit != nil {
				p.Unit = model.Unit(*req.Unit)
			}
		})
	})
}

func (s *productService) setActive(ctx context.Context, id string, active bool) error {
	return s.st.Write(ctx, func(tx *store.Tx) error {
		_, err := s.repos.Products.UpdateTx(tx, id, func(p *model.Product) { p.IsActive = active })
		return err
	})
}

func (s *productService) Deactivate(ctx context.Context, id string) error {
	return s.setActive(ctx, id, false)
}

func (s *productService) Reactivate(ctx context.Context, id string) error {
	return s.setActive(ctx, id, true)
}

func (s *productService) Get(ctx context.Context, id string) (*model.Product, error) {
	return s.repos.Products.FindByID(ctx, id)
}

func (s *productService) FindByBarcode(ctx context.Context, barcode string) (*model.Product, error) {
	return s.repos.Products.FindByBarcode(ctx, barcode)
}

func (s *productService) List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, error) {
	if err := dto.Validate(filter); err != nil {
		return nil, err
	}
	return s.repos.Products.List(ctx, filter)
}

func (s *productService) LowStockAlerts(ctx context.Context) ([]model.Product, error) {
	rows, err := s.repos.Products.List(ctx, dto.ProductFilter{})
	if err != nil {
		return nil, err
	}
	out := rows[:0]
	for i := range rows {
		if rows[i].IsLowStock() || rows[i].IsOutOfStock() {
			out = append(out, rows[i])
		}
	}
	return out, nil
}

func (s *productService) Observe(filter dto.ProductFilter, cb func([]model.Product)) (*store.Subscription, error) {
	return s.repos.Products.Observe(filter, cb)
}
