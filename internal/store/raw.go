package store

import (
	"context"
	"fmt"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/model"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/schema"
)

// The raw path reads and writes rows as column maps, bypassing collections and
// any domain validation. Backup and restore use it to move whole tables with
// their original ids and timestamps intact.

// RawRows returns every committed row of table ordered by created_at, id.
func (s *Store) RawRows(ctx context.Context, table string) ([]map[string]any, error) {
	if _, err := s.table(table); err != nil {
		return nil, err
	}
	var rows []map[string]any
	err := s.db.WithContext(ctx).Table(table).
		Order(`"created_at" ASC`).Order(`"id" ASC`).
		Find(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	if rows == nil {
		rows = []map[string]any{}
	}
	return rows, nil
}

// Count returns the number of committed rows in table.
func (s *Store) Count(ctx context.Context, table string) (int64, error) {
	if _, err := s.table(table); err != nil {
		return 0, err
	}
	var n int64
	if err := s.db.WithContext(ctx).Table(table).Count(&n).Error; err != nil {
		return 0, translate(err)
	}
	return n, nil
}

// RawDeleteAll removes every row of table.
func (tx *Tx) RawDeleteAll(table string) error {
	if _, err := tx.store.table(table); err != nil {
		return err
	}
	if err := tx.db.Exec(fmt.Sprintf(`DELETE FROM "%s"`, table)).Error; err != nil {
		return fmt.Errorf("clear %s: %w", table, translate(err))
	}
	tx.touch(table)
	return nil
}

// RawInsert inserts row into table as-is. The id is required and preserved.
// Columns the registry does not know are dropped so that backups from other
// schema versions still load; missing columns take their defaults. Imported
// rows are marked synced, and the store clock moves past their timestamps.
func (tx *Tx) RawInsert(table string, row map[string]any) error {
	t, err := tx.store.table(table)
	if err != nil {
		return err
	}
	id, ok := row[schema.ColumnID].(string)
	if !ok || id == "" {
		return fmt.Errorf("%w: %s row without a string id", errConstraint, table)
	}

	clean := make(map[string]any, len(row)+2)
	for k, v := range row {
		if _, known := t.Column(k); !known {
			continue
		}
		clean[k] = v
	}
	clean[schema.ColumnStatus] = model.StatusSynced
	clean[schema.ColumnChanged] = ""

	if err := tx.db.Table(table).Create(clean).Error; err != nil {
		return fmt.Errorf("insert %s %s: %w", table, id, translate(err))
	}
	for _, col := range []string{"created_at", "updated_at"} {
		if ms, ok := millis(clean[col]); ok {
			tx.store.advanceClock(ms)
		}
	}
	tx.touch(table)
	return nil
}

func millis(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case float64:
		return int64(x), true
	}
	return 0, false
}

// StripBookkeeping removes the store's change-tracking columns from a raw row.
func StripBookkeeping(row map[string]any) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		if k == schema.ColumnStatus || k == schema.ColumnChanged {
			continue
		}
		out[k] = v
	}
	return out
}
