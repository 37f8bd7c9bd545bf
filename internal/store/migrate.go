package store

import (
	"fmt"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/apierror"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/schema"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// migrate applies the registry steps between the on-disk version and reg.Version.
// Everything runs in one transaction together with the version bump, so a
// failed upgrade leaves the previous schema untouched.
func migrate(db *gorm.DB, reg *schema.Registry) error {
	current, err := userVersion(db)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if current > reg.Version {
		return fmt.Errorf("%w: on disk v%d, app knows v%d", apierror.ErrSchemaMismatch, current, reg.Version)
	}
	if current == reg.Version {
		return nil
	}

	steps, err := reg.Steps(current, reg.Version)
	if err != nil {
		return fmt.Errorf("plan migration: %w", err)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		for _, step := range steps {
			if err := applyStep(tx, step); err != nil {
				return fmt.Errorf("%s %s: %w", step.Kind, step.Table, err)
			}
		}
		return tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", reg.Version)).Error
	})
	if err != nil {
		return fmt.Errorf("migrate v%d -> v%d: %w", current, reg.Version, err)
	}

	log.Info().Int("from", current).Int("to", reg.Version).Int("steps", len(steps)).Msg("schema migrated")
	return nil
}

func applyStep(tx *gorm.DB, step schema.Step) error {
	if step.Kind == schema.AddColumns {
		// ADD COLUMN has no IF NOT EXISTS; skip columns a half-finished upgrade already added.
		var fresh []schema.Column
		for _, c := range step.Columns {
			if !tx.Migrator().HasColumn(step.Table, c.Name) {
				fresh = append(fresh, c)
			}
		}
		step.Columns = fresh
	}
	for _, stmt := range step.SQL() {
		if err := tx.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

func userVersion(db *gorm.DB) (int, error) {
	var v int
	if err := db.Raw("PRAGMA user_version").Scan(&v).Error; err != nil {
		return 0, err
	}
	return v, nil
}
