package model

import "time"

// Change-tracking markers stored in the _status column.
const (
	StatusCreated = "created"
	StatusUpdated = "updated"
	StatusSynced  = "synced"
)

// Base carries the id, bookkeeping and timestamp columns every table has.
// Timestamps are epoch milliseconds so raw rows survive a JSON round trip unchanged.
type Base struct {
	ID        string `gorm:"column:id;primaryKey" json:"id"`
	Status    string `gorm:"column:_status" json:"-"`
	Changed   string `gorm:"column:_changed" json:"-"`
	CreatedAt int64  `gorm:"column:created_at;autoCreateTime:false" json:"created_at"`
	UpdatedAt int64  `gorm:"column:updated_at;autoUpdateTime:false" json:"updated_at"`
}

// Record is implemented by every entity through its embedded Base.
type Record interface {
	TableName() string
	RecordBase() *Base
}

func (b *Base) RecordBase() *Base { return b }

// Created returns CreatedAt as a time in the given location.
func (b *Base) Created(loc *time.Location) time.Time {
	return time.UnixMilli(b.CreatedAt).In(loc)
}

// Updated returns UpdatedAt as a time in the given location.
func (b *Base) Updated(loc *time.Location) time.Time {
	return time.UnixMilli(b.UpdatedAt).In(loc)
}
