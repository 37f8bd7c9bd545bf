package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// CartItem is one line of the cart. UnitPrice defaults to the product's
// current selling price; Discount is the line discount in rupees.
type CartItem struct {
	ProductID string           `json:"product_id" validate:"required,max=64"`
	Quantity  decimal.Decimal  `json:"quantity"   validate:"gt=0"`
	UnitPrice *decimal.Decimal `json:"unit_price" validate:"omitempty,gte=0"`
	Discount  decimal.Decimal  `json:"discount"   validate:"gte=0"`
}

// CreateBillRequest is the checkout payload. Subtotal and GrandTotal are taken
// as given when set (the cart screen already shows them); otherwise they are
// computed from the lines and DiscountTotal.
type CreateBillRequest struct {
	Items         []CartItem       `json:"items"          validate:"required,min=1,dive"`
	PaymentMode   string           `json:"payment_mode"   validate:"required,oneof=cash upi card credit mixed"`
	CustomerID    *string          `json:"customer_id"    validate:"omitempty,max=64"`
	DiscountTotal decimal.Decimal  `json:"discount_total" validate:"gte=0"`
	Subtotal      *decimal.Decimal `json:"subtotal"       validate:"omitempty,gte=0"`
	GrandTotal    *decimal.Decimal `json:"grand_total"    validate:"omitempty,gte=0"`
	Notes         string           `json:"notes"          validate:"max=500"`
}

// ─── Filter ──────────────────────────────────────────────────────────────────

// BillFilter is bound from the query string of GET /v1/bills.
type BillFilter struct {
	From       string `form:"from"        validate:"omitempty,datetime=2006-01-02"` // local date, inclusive
	To         string `form:"to"          validate:"omitempty,datetime=2006-01-02"` // local date, inclusive
	Status     string `form:"status"      validate:"omitempty,oneof=completed cancelled all"`
	CustomerID string `form:"customer_id" validate:"omitempty,max=64"`
	Search     string `form:"q"`
	Limit      int    `form:"limit,default=50" validate:"min=0,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type BillItemResponse struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Discount    decimal.Decimal `json:"discount"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

type BillResponse struct {
	ID            string             `json:"id"`
	BillNumber    string             `json:"bill_number"`
	CustomerID    *string            `json:"customer_id"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
	DiscountTotal decimal.Decimal    `json:"discount_total"`
	GrandTotal    decimal.Decimal    `json:"grand_total"`
	PaymentMode   string             `json:"payment_mode"`
	Status        string             `json:"status"`
	Notes         string             `json:"notes"`
	Items         []BillItemResponse `json:"items,omitempty"`
	CreatedAt     string             `json:"created_at"`
}
