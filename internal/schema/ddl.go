package schema

import (
	"fmt"
	"strings"
)

// SQL renders a step as SQLite DDL statements. Every statement is idempotent
// enough to survive a crash between a step and the version bump: tables and
// indexes use IF NOT EXISTS. ADD COLUMN has no such guard, so the store checks
// existing columns before running it.
func (s Step) SQL() []string {
	switch s.Kind {
	case CreateTable:
		return createTableSQL(s.Table, s.Columns)
	case AddColumns:
		out := make([]string, 0, len(s.Columns)*2)
		for _, c := range s.Columns {
			out = append(out, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", quote(s.Table), columnDef(c)))
			if idx := indexSQL(s.Table, c); idx != "" {
				out = append(out, idx)
			}
		}
		return out
	default:
		return nil
	}
}

func createTableSQL(table string, cols []Column) []string {
	defs := []string{
		quote(ColumnID) + " TEXT PRIMARY KEY NOT NULL",
		quote(ColumnStatus) + " TEXT NOT NULL DEFAULT ''",
		quote(ColumnChanged) + " TEXT NOT NULL DEFAULT ''",
	}
	for _, c := range cols {
		defs = append(defs, columnDef(c))
	}
	out := []string{fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quote(table), strings.Join(defs, ", "))}
	for _, c := range cols {
		if idx := indexSQL(table, c); idx != "" {
			out = append(out, idx)
		}
	}
	return out
}

func columnDef(c Column) string {
	def := quote(c.Name) + " " + sqlType(c.Type)
	if c.Optional {
		return def
	}
	if c.Default != "" {
		return def + " NOT NULL DEFAULT " + c.Default
	}
	return def + " NOT NULL DEFAULT " + zeroLiteral(c.Type)
}

func indexSQL(table string, c Column) string {
	switch {
	case c.Unique:
		return fmt.Sprintf("CREATE UNIQUE INDEX IF NOT EXISTS %s ON %s (%s)",
			quote("uni_"+table+"_"+c.Name), quote(table), quote(c.Name))
	case c.Indexed:
		return fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)",
			quote("idx_"+table+"_"+c.Name), quote(table), quote(c.Name))
	}
	return ""
}

func sqlType(t ColumnType) string {
	switch t {
	case Number:
		return "REAL"
	case Integer, Boolean:
		return "INTEGER"
	default:
		return "TEXT"
	}
}

func zeroLiteral(t ColumnType) string {
	if t == String {
		return "''"
	}
	return "0"
}

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}
