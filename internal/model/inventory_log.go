package model

import (
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/schema"

	"github.com/shopspring/decimal"
)

// StockReason explains an inventory movement.
type StockReason string

const (
	ReasonPurchase StockReason = "purchase"
	ReasonDamage   StockReason = "damage"
	ReasonReturn   StockReason = "return"
	ReasonSale     StockReason = "sale"
	ReasonManual   StockReason = "manual"
)

func (r StockReason) Valid() bool {
	switch r {
	case ReasonPurchase, ReasonDamage, ReasonReturn, ReasonSale, ReasonManual:
		return true
	}
	return false
}

// InventoryLog records every stock change on a product.
// QuantityChange is positive for stock in, negative for stock out.
// Rows are never modified or deleted.
type InventoryLog struct {
	Base
	ProductID      string          `gorm:"column:product_id" json:"product_id"`
	QuantityChange decimal.Decimal `gorm:"column:quantity_change" json:"quantity_change"`
	Reason         StockReason     `gorm:"column:reason" json:"reason"`
	Notes          string          `gorm:"column:notes" json:"notes"`
}

func (InventoryLog) TableName() string { return schema.TableInventoryLogs }
