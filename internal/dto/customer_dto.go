package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateCustomerRequest struct {
	Name    string `json:"name"    validate:"required,min=1,max=120"`
	Phone   string `json:"phone"   validate:"omitempty,max=20"`
	Address string `json:"address" validate:"max=300"`
	Notes   string `json:"notes"   validate:"max=500"`
}

type UpdateCustomerRequest struct {
	Name    *string `json:"name"    validate:"omitempty,min=1,max=120"`
	Phone   *string `json:"phone"   validate:"omitempty,max=20"`
	Address *string `json:"address" validate:"omitempty,max=300"`
	Notes   *string `json:"notes"   validate:"omitempty,max=500"`
}

type CreditPaymentRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"gt=0"`
	Note   string          `json:"note"   validate:"max=300"`
}

// ─── Filter ──────────────────────────────────────────────────────────────────

// CustomerFilter: Active is "true" (default), "false" or "all".
type CustomerFilter struct {
	Search string `form:"q"`
	Active string `form:"active" validate:"omitempty,oneof=true false all"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CustomerResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Phone       string          `json:"phone"`
	Address     string          `json:"address"`
	Notes       string          `json:"notes"`
	IsActive    bool            `json:"is_active"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

type CreditEntryResponse struct {
	ID           string          `json:"id"`
	BillID       *string         `json:"bill_id"`
	EntryType    string          `json:"entry_type"`
	Amount       decimal.Decimal `json:"amount"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	Notes        string          `json:"notes"`
	CreatedAt    string          `json:"created_at"`
}

type LedgerResponse struct {
	CustomerID  string                `json:"customer_id"`
	Outstanding decimal.Decimal       `json:"outstanding"`
	Entries     []CreditEntryResponse `json:"entries"`
}
