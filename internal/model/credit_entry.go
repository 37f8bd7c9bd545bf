package model

import (
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/schema"

	"github.com/shopspring/decimal"
)

// CreditEntryType: "credit" raises what the customer owes, "payment" lowers it.
type CreditEntryType string

const (
	EntryCredit  CreditEntryType = "credit"
	EntryPayment CreditEntryType = "payment"
)

// CreditEntry is an append-only ledger row. BalanceAfter is the customer's
// outstanding amount right after this entry was written.
type CreditEntry struct {
	Base
	CustomerID   string          `gorm:"column:customer_id" json:"customer_id"`
	BillID       *string         `gorm:"column:bill_id" json:"bill_id"`
	EntryType    CreditEntryType `gorm:"column:entry_type" json:"entry_type"`
	Amount       decimal.Decimal `gorm:"column:amount" json:"amount"`
	BalanceAfter decimal.Decimal `gorm:"column:balance_after" json:"balance_after"`
	Notes        string          `gorm:"column:notes" json:"notes"`
}

func (CreditEntry) TableName() string { return schema.TableCreditEntries }

// Signed returns the amount with the sign it applies to the balance.
func (e *CreditEntry) Signed() decimal.Decimal {
	if e.EntryType == EntryPayment {
		return e.Amount.Neg()
	}
	return e.Amount
}
