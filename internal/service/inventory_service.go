package service

import (
	"context"
	"fmt"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/dto"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/model"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/repository"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/store"

	"github.com/rs/zerolog/log"
)

type InventoryService interface {
	// AdjustStock changes stock outside a sale: purchases, damage, returns
	// and manual corrections. Sales only happen through bills.
	AdjustStock(ctx context.Context, productID string, req dto.AdjustStockRequest) (*model.Product, error)
	Logs(ctx context.Context, filter dto.InventoryLogFilter) ([]model.InventoryLog, error)
}

type inventoryService struct {
	st    *store.Store
	repos *repository.Repositories
}

func NewInventoryService(st *store.Store, repos *repository.Repositories) InventoryService {
	return &inventoryService{st: st, repos: repos}
}

func (s *inventoryService) AdjustStock(ctx context.Context, productID string, req dto.AdjustStockRequest) (*model.Product, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	reason := model.StockReason(req.Reason)
	if reason == model.ReasonPurchase && req.Delta.IsNegative() {
		return nil, dto.Invalid("delta", "gt=0")
	}
	p, err := store.WriteResult(ctx, s.st, func(tx *store.Tx) (*model.Product, error) {
		p, _, err := s.repos.Inventory.ApplyTx(tx, productID, req.Delta, reason, req.Notes)
		if err != nil {
			return nil, fmt.Errorf("adjust stock: %w", err)
		}
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("product_id", productID).Str("delta", req.Delta.String()).
		Str("reason", req.Reason).Str("stock", p.CurrentStock.String()).Msg("stock adjusted")
	return p, nil
}

func (s *inventoryService) Logs(ctx context.Context, filter dto.InventoryLogFilter) ([]model.InventoryLog, error) {
	if err := dto.Validate(filter); err != nil {
		return nil, err
	}
	return s.repos.Inventory.List(ctx, filter)
}
