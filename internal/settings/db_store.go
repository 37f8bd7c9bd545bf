package settings

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Setting is one row of the app_settings table.
type Setting struct {
	Key   string `gorm:"primaryKey"`
	Value string `gorm:"not null"`
}

func (Setting) TableName() string { return "app_settings" }

// DBStore keeps settings in the local database, next to the record tables but
// outside the schema registry and therefore outside backups.
type DBStore struct{ db *gorm.DB }

// NewDBStore creates the settings table if needed.
func NewDBStore(db *gorm.DB) (*DBStore, error) {
	if err := db.AutoMigrate(&Setting{}); err != nil {
		return nil, err
	}
	return &DBStore{db: db}, nil
}

// Join returns a DBStore that reads and writes through the transaction db.
func (s *DBStore) Join(db *gorm.DB) Store { return &DBStore{db: db} }

func (s *DBStore) Get(ctx context.Context, key string) (string, bool, error) {
	var row Setting
	err := s.db.WithContext(ctx).Where(`"key" = ?`, key).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return row.Value, true, nil
}

func (s *DBStore) Set(ctx context.Context, key, value string) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&Setting{Key: key, Value: value}).Error
}

func (s *DBStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Where(`"key" IN ?`, keys).Delete(&Setting{}).Error
}
