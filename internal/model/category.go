package model

import "github.com/hardikkanajariya-in/kiranamitra-sub001/internal/schema"

// Category groups products on the catalog screens.
type Category struct {
	Base
	Name     string `gorm:"column:name" json:"name"`
	Icon     string `gorm:"column:icon" json:"icon"`
	IsActive bool   `gorm:"column:is_active" json:"is_active"`
}

func (Category) TableName() string { return schema.TableCategories }
