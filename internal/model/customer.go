package model

import "github.com/hardikkanajariya-in/kiranamitra-sub001/internal/schema"

// Customer is a shop customer. Deactivated instead of deleted so historical
// bills and ledger entries keep a valid reference.
type Customer struct {
	Base
	Name     string `gorm:"column:name" json:"name"`
	Phone    string `gorm:"column:phone" json:"phone"`
	Address  string `gorm:"column:address" json:"address"`
	Notes    string `gorm:"column:notes" json:"notes"`
	IsActive bool   `gorm:"column:is_active" json:"is_active"`
}

func (Customer) TableName() string { return schema.TableCustomers }
