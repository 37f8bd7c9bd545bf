package dto

import "github.com/shopspring/decimal"

// ─── Categories ──────────────────────────────────────────────────────────────

type CategoryRequest struct {
	Name string `json:"name" validate:"required,min=1,max=80"`
	Icon string `json:"icon" validate:"max=40"`
}

type UpdateCategoryRequest struct {
	Name *string `json:"name" validate:"omitempty,min=1,max=80"`
	Icon *string `json:"icon" validate:"omitempty,max=40"`
}

// ─── Products ────────────────────────────────────────────────────────────────

// CreateProductRequest: OpeningStock is posted as a purchase InventoryLog.
type CreateProductRequest struct {
	Name              string          `json:"name"                validate:"required,min=1,max=120"`
	CategoryID        *string         `json:"category_id"         validate:"omitempty,max=64"`
	PurchasePrice     decimal.Decimal `json:"purchase_price"      validate:"gte=0"`
	SellingPrice      decimal.Decimal `json:"selling_price"       validate:"gte=0"`
	OpeningStock      decimal.Decimal `json:"opening_stock"       validate:"gte=0"`
	LowStockThreshold decimal.Decimal `json:"low_stock_threshold" validate:"gte=0"`
	Barcode           *string         `json:"barcode"             validate:"omitempty,min=4,max=32"`
	Unit              string          `json:"unit"                validate:"required,oneof=kg piece litre packet dozen"`
}

// UpdateProductRequest never touches stock; use AdjustStockRequest.
type UpdateProductRequest struct {
	Name              *string          `json:"name"                validate:"omitempty,min=1,max=120"`
	CategoryID        *string          `json:"category_id"         validate:"omitempty,max=64"`
	ClearCategory     bool             `json:"clear_category"`
	PurchasePrice     *decimal.Decimal `json:"purchase_price"      validate:"omitempty,gte=0"`
	SellingPrice      *decimal.Decimal `json:"selling_price"       validate:"omitempty,gte=0"`
	LowStockThreshold *decimal.Decimal `json:"low_stock_threshold" validate:"omitempty,gte=0"`
	Barcode           *string          `json:"barcode"             validate:"omitempty,min=4,max=32"`
	Unit              *string          `json:"unit"                validate:"omitempty,oneof=kg piece litre packet dozen"`
}

// ProductFilter: Active is "true" (default), "false" or "all".
type ProductFilter struct {
	Search     string `form:"q"`
	CategoryID string `form:"category_id" validate:"omitempty,max=64"`
	Active     string `form:"active"      validate:"omitempty,oneof=true false all"`
	LowStock   bool   `form:"low_stock"`
}

type ProductResponse struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	CategoryID        *string         `json:"category_id"`
	PurchasePrice     decimal.Decimal `json:"purchase_price"`
	SellingPrice      decimal.Decimal `json:"selling_price"`
	CurrentStock      decimal.Decimal `json:"current_stock"`
	LowStockThreshold decimal.Decimal `json:"low_stock_threshold"`
	Barcode           *string         `json:"barcode"`
	Unit              string          `json:"unit"`
	IsActive          bool            `json:"is_active"`
	IsLowStock        bool            `json:"is_low_stock"`
	IsOutOfStock      bool            `json:"is_out_of_stock"`
}

// ─── Inventory ───────────────────────────────────────────────────────────────

type AdjustStockRequest struct {
	Delta  decimal.Decimal `json:"delta"  validate:"required"`
	Reason string          `json:"reason" validate:"required,oneof=purchase damage return manual"`
	Notes  string          `json:"notes"  validate:"max=300"`
}

type InventoryLogFilter struct {
	ProductID string `form:"product_id" validate:"omitempty,max=64"`
	Limit     int    `form:"limit,default=100" validate:"min=0,max=1000"`
}
