package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/apierror"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/schema"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/store"
)

// BackupVersion is the snapshot format version written by this build.
const BackupVersion = 1

// BackupTables is the dependency order used for export and restore.
// Restore deletes in reverse and inserts forward.
var BackupTables = []string{
	schema.TableCustomers,
	schema.TableCategories,
	schema.TableProducts,
	schema.TableInventoryLogs,
	schema.TableBills,
	schema.TableBillItems,
	schema.TablePayments,
	schema.TableCreditEntries,
}

// Snapshot is the whole database as one JSON document. The same shape is
// written to backup files and uploaded by cloud sync.
type Snapshot struct {
	Version   int                         `json:"version"`
	CreatedAt string                      `json:"createdAt"`
	Tables    map[string][]map[string]any `json:"tables"`
}

// Records counts every row in the snapshot.
func (s *Snapshot) Records() int64 {
	var n int64
	for _, rows := range s.Tables {
		n += int64(len(rows))
	}
	return n
}

// BuildSnapshot reads every backup table without the bookkeeping columns.
// Boolean columns are written as JSON booleans.
func BuildSnapshot(ctx context.Context, st *store.Store, now time.Time) (*Snapshot, error) {
	snap := &Snapshot{
		Version:   BackupVersion,
		CreatedAt: now.UTC().Format(time.RFC3339Nano),
		Tables:    make(map[string][]map[string]any, len(BackupTables)),
	}
	for _, name := range BackupTables {
		t, _ := st.Registry().Table(name)
		rows, err := st.RawRows(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("export %s: %w", name, err)
		}
		out := make([]map[string]any, len(rows))
		for i, row := range rows {
			row = store.StripBookkeeping(row)
			for k, v := range row {
				if col, ok := t.Column(k); ok && col.Type == schema.Boolean {
					row[k] = truthy(v)
				}
			}
			out[i] = row
		}
		snap.Tables[name] = out
	}
	return snap, nil
}

// ParseSnapshot decodes a backup document. version and tables must be present
// (ErrInvalidFormat otherwise); a table whose value is not an array is skipped.
func ParseSnapshot(r io.Reader) (*Snapshot, error) {
	var doc struct {
		Version   *json.Number               `json:"version"`
		CreatedAt string                     `json:"createdAt"`
		Tables    map[string]json.RawMessage `json:"tables"`
	}
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", apierror.ErrInvalidFormat, err)
	}
	if doc.Version == nil {
		return nil, fmt.Errorf("%w: missing version", apierror.ErrInvalidFormat)
	}
	version, err := doc.Version.Int64()
	if err != nil {
		return nil, fmt.Errorf("%w: version %q is not an integer", apierror.ErrInvalidFormat, doc.Version.String())
	}
	if doc.Tables == nil {
		return nil, fmt.Errorf("%w: missing tables", apierror.ErrInvalidFormat)
	}

	snap := &Snapshot{
		Version:   int(version),
		CreatedAt: doc.CreatedAt,
		Tables:    make(map[string][]map[string]any, len(doc.Tables)),
	}
	for name, raw := range doc.Tables {
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || raw[0] != '[' {
			continue
		}
		var rows []map[string]any
		td := json.NewDecoder(bytes.NewReader(raw))
		td.UseNumber()
		if err := td.Decode(&rows); err != nil {
			return nil, fmt.Errorf("%w: table %s: %v", apierror.ErrInvalidFormat, name, err)
		}
		snap.Tables[name] = rows
	}
	return snap, nil
}

// RestoreSnapshot replaces every backup table with the snapshot's rows in one
// transaction, keeping ids and timestamps. It goes through the store's raw
// path: no domain validation, no stock or ledger recomputation. Tables the
// snapshot lacks end up empty. Returns the number of rows inserted.
func RestoreSnapshot(ctx context.Context, st *store.Store, snap *Snapshot) (int64, error) {
	reg := st.Registry()
	return store.WriteResult(ctx, st, func(tx *store.Tx) (int64, error) {
		for i := len(BackupTables) - 1; i >= 0; i-- {
			if err := tx.RawDeleteAll(BackupTables[i]); err != nil {
				return 0, err
			}
		}
		var n int64
		for _, name := range BackupTables {
			t, _ := reg.Table(name)
			for i, row := range snap.Tables[name] {
				clean, err := coerceRow(t, row)
				if err != nil {
					return 0, fmt.Errorf("%s row %d: %w", name, i, err)
				}
				if err := tx.RawInsert(name, clean); err != nil {
					return 0, err
				}
				n++
			}
		}
		return n, nil
	})
}

// coerceRow converts decoded JSON values to the column's storage type.
// Unknown columns pass through; RawInsert drops them.
func coerceRow(t schema.Table, row map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(row))
	for k, v := range row {
		col, ok := t.Column(k)
		if !ok || v == nil {
			out[k] = v
			continue
		}
		cv, err := coerce(col.Type, v)
		if err != nil {
			return nil, fmt.Errorf("%w: column %s: %v", apierror.ErrInvalidFormat, k, err)
		}
		out[k] = cv
	}
	return out, nil
}

func coerce(typ schema.ColumnType, v any) (any, error) {
	switch x := v.(type) {
	case json.Number:
		switch typ {
		case schema.Integer:
			if n, err := x.Int64(); err == nil {
				return n, nil
			}
			f, err := x.Float64()
			if err != nil {
				return nil, err
			}
			return int64(math.Round(f)), nil
		case schema.Boolean:
			f, err := x.Float64()
			return f != 0, err
		case schema.String:
			return x.String(), nil
		default:
			return x.Float64()
		}
	case bool:
		if typ == schema.String {
			return fmt.Sprint(x), nil
		}
		return x, nil
	case string:
		return x, nil
	case float64, int64:
		return x, nil
	default:
		return nil, fmt.Errorf("unsupported value of type %T", v)
	}
}

func truthy(v any) any {
	switch x := v.(type) {
	case int64:
		return x != 0
	case float64:
		return x != 0
	case bool:
		return x
	}
	return v
}
