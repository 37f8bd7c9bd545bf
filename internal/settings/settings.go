// Package settings is the small key-value store for device preferences and
// counters that live outside the record tables: PIN hash, language, theme,
// store profile, printer config, bill numbering and cloud sync metadata.
package settings

import (
	"context"
	"strconv"

	"gorm.io/gorm"
)

// Well-known keys.
const (
	KeyPinHash        = "pin_hash"
	KeyLanguage       = "language"
	KeyThemeMode      = "theme_mode"
	KeyStoreProfile   = "store_profile"
	KeyPrinterConfig  = "printer_config"
	KeyOnboardingDone = "onboarding_done"
	KeyBillSequence   = "bill_sequence"
	KeyLastBillDate   = "last_bill_date"
	KeyLastSyncedAt   = "last_synced_at"
	KeySyncAccount    = "sync_account"
)

// Store is a string key-value store. Get reports ok=false for a missing key.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// GetInt reads an integer setting; missing or unparsable values read as 0.
func GetInt(ctx context.Context, s Store, key string) (int, error) {
	v, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, nil
	}
	return n, nil
}

// SetInt writes an integer setting.
func SetInt(ctx context.Context, s Store, key string, n int) error {
	return s.Set(ctx, key, strconv.Itoa(n))
}

// Joiner is implemented by stores that can take part in an open database
// transaction, so a counter bump commits or rolls back with the records.
type Joiner interface {
	Join(db *gorm.DB) Store
}

// Within returns s bound to the transaction db when s supports it. Stores that
// cannot join (Redis) are returned unchanged and write immediately.
func Within(s Store, db *gorm.DB) Store {
	if j, ok := s.(Joiner); ok {
		return j.Join(db)
	}
	return s
}
