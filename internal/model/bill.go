package model

import (
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/schema"

	"github.com/shopspring/decimal"
)

// PaymentMode is how a bill was settled.
type PaymentMode string

const (
	PaymentCash   PaymentMode = "cash"
	PaymentUPI    PaymentMode = "upi"
	PaymentCard   PaymentMode = "card"
	PaymentCredit PaymentMode = "credit"
	PaymentMixed  PaymentMode = "mixed"
)

func (m PaymentMode) Valid() bool {
	switch m {
	case PaymentCash, PaymentUPI, PaymentCard, PaymentCredit, PaymentMixed:
		return true
	}
	return false
}

// BillStatus: "completed" | "cancelled"
type BillStatus string

const (
	BillCompleted BillStatus = "completed"
	BillCancelled BillStatus = "cancelled"
)

// Bill is a completed sale. CustomerID nil means a walk-in customer.
type Bill struct {
	Base
	BillNumber    string          `gorm:"column:bill_number" json:"bill_number"`
	CustomerID    *string         `gorm:"column:customer_id" json:"customer_id"`
	Subtotal      decimal.Decimal `gorm:"column:subtotal" json:"subtotal"`
	DiscountTotal decimal.Decimal `gorm:"column:discount_total" json:"discount_total"`
	GrandTotal    decimal.Decimal `gorm:"column:grand_total" json:"grand_total"`
	PaymentMode   PaymentMode     `gorm:"column:payment_mode" json:"payment_mode"`
	Status        BillStatus      `gorm:"column:status" json:"status"`
	Notes         string          `gorm:"column:notes" json:"notes"`
}

func (Bill) TableName() string { return schema.TableBills }

// BillItem is one line of a bill. ProductName and UnitPrice are copied from the
// product at sale time and never follow later product edits.
type BillItem struct {
	Base
	BillID      string          `gorm:"column:bill_id" json:"bill_id"`
	ProductID   string          `gorm:"column:product_id" json:"product_id"`
	ProductName string          `gorm:"column:product_name" json:"product_name"`
	Quantity    decimal.Decimal `gorm:"column:quantity" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price" json:"unit_price"`
	Discount    decimal.Decimal `gorm:"column:discount" json:"discount"`
	LineTotal   decimal.Decimal `gorm:"column:line_total" json:"line_total"`
}

func (BillItem) TableName() string { return schema.TableBillItems }

// Payment records money received against a bill.
type Payment struct {
	Base
	BillID      string          `gorm:"column:bill_id" json:"bill_id"`
	CustomerID  *string         `gorm:"column:customer_id" json:"customer_id"`
	Amount      decimal.Decimal `gorm:"column:amount" json:"amount"`
	PaymentMode PaymentMode     `gorm:"column:payment_mode" json:"payment_mode"`
}

func (Payment) TableName() string { return schema.TablePayments }
