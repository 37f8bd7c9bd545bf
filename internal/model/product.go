package model

import (
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/schema"

	"github.com/shopspring/decimal"
)

// Unit is the selling unit of a product.
type Unit string

const (
	UnitKg     Unit = "kg"
	UnitPiece  Unit = "piece"
	UnitLitre  Unit = "litre"
	UnitPacket Unit = "packet"
	UnitDozen  Unit = "dozen"
)

// Valid reports whether u is one of the known units.
func (u Unit) Valid() bool {
	switch u {
	case UnitKg, UnitPiece, UnitLitre, UnitPacket, UnitDozen:
		return true
	}
	return false
}

// Product is a sellable catalog item.
// CurrentStock only changes together with an InventoryLog row.
type Product struct {
	Base
	Name              string          `gorm:"column:name" json:"name"`
	CategoryID        *string         `gorm:"column:category_id" json:"category_id"`
	PurchasePrice     decimal.Decimal `gorm:"column:purchase_price" json:"purchase_price"`
	SellingPrice      decimal.Decimal `gorm:"column:selling_price" json:"selling_price"`
	CurrentStock      decimal.Decimal `gorm:"column:current_stock" json:"current_stock"`
	LowStockThreshold decimal.Decimal `gorm:"column:low_stock_threshold" json:"low_stock_threshold"`
	Barcode           *string         `gorm:"column:barcode" json:"barcode"`
	Unit              Unit            `gorm:"column:unit" json:"unit"`
	IsActive          bool            `gorm:"column:is_active" json:"is_active"`
}

func (Product) TableName() string { return schema.TableProducts }

// IsOutOfStock is true when nothing is left to sell.
func (p *Product) IsOutOfStock() bool {
	return !p.CurrentStock.IsPositive()
}

// IsLowStock is true when some stock is left but at or under the threshold.
// It never overlaps with IsOutOfStock.
func (p *Product) IsLowStock() bool {
	return p.CurrentStock.IsPositive() && p.CurrentStock.LessThanOrEqual(p.LowStockThreshold)
}

// StockValue is the retail value of the current stock.
func (p *Product) StockValue() decimal.Decimal {
	return p.CurrentStock.Mul(p.SellingPrice)
}

// CostValue is the purchase value of the current stock.
func (p *Product) CostValue() decimal.Decimal {
	return p.CurrentStock.Mul(p.PurchasePrice)
}
