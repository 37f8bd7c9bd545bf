// Package schema declares the versioned table layout of the local database and
// the forward-only migration steps between versions.
//
// The registry is pure data: it never touches a database. The store asks it for
// the steps between the on-disk version and Version and executes them.
package schema

import (
	"fmt"
	"sort"
)

// ColumnType is the logical type of a column. It decides the SQLite affinity and
// how the backup codec coerces raw values.
type ColumnType string

const (
	String  ColumnType = "string"
	Number  ColumnType = "number"  // REAL: money, quantities
	Integer ColumnType = "integer" // INTEGER: epoch-millisecond timestamps, counters
	Boolean ColumnType = "boolean" // INTEGER 0/1
)

// Bookkeeping columns present on every table. They track local change state and
// are stripped from backups.
const (
	ColumnID      = "id"
	ColumnStatus  = "_status"
	ColumnChanged = "_changed"
)

// Column is one declared column of a table.
type Column struct {
	Name     string
	Type     ColumnType
	Optional bool // NULL allowed; otherwise NOT NULL with a zero default
	Indexed  bool
	Unique   bool
	// Default is a SQL literal for NOT NULL columns; empty means the type's zero.
	Default string
}

// Table is an ordered column list. Column order is the physical order.
type Table struct {
	Name    string
	Columns []Column
}

// Column returns the named column, including the implicit id and bookkeeping ones.
func (t Table) Column(name string) (Column, bool) {
	switch name {
	case ColumnID, ColumnStatus, ColumnChanged:
		return Column{Name: name, Type: String}, true
	}
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// StepKind enumerates the structural changes a migration may make.
// There is deliberately no drop/rename kind.
type StepKind int

const (
	CreateTable StepKind = iota + 1
	AddColumns
)

func (k StepKind) String() string {
	switch k {
	case CreateTable:
		return "create_table"
	case AddColumns:
		return "add_columns"
	default:
		return "unknown"
	}
}

// Step is one structural change. For CreateTable, Columns is the full column
// list; for AddColumns it holds only the new columns.
type Step struct {
	Kind    StepKind
	Table   string
	Columns []Column
}

// Migration moves the schema from ToVersion-1 to ToVersion.
type Migration struct {
	ToVersion int
	Steps     []Step
}

// Registry is the complete schema declaration for one app release.
type Registry struct {
	Version    int
	tables     []Table
	byName     map[string]Table
	migrations map[int]Migration
}

// NewRegistry builds a registry and checks that the migrations are well formed.
// tables is the layout at version; migrations describe how older databases reach it.
func NewRegistry(version int, tables []Table, migrations ...Migration) (*Registry, error) {
	if version < 1 {
		return nil, fmt.Errorf("schema: version must be >= 1, got %d", version)
	}
	r := &Registry{
		Version:    version,
		tables:     tables,
		byName:     make(map[string]Table, len(tables)),
		migrations: make(map[int]Migration, len(migrations)),
	}
	for _, t := range tables {
		if _, dup := r.byName[t.Name]; dup {
			return nil, fmt.Errorf("schema: duplicate table %q", t.Name)
		}
		r.byName[t.Name] = t
	}
	for _, m := range migrations {
		if m.ToVersion < 2 || m.ToVersion > version {
			return nil, fmt.Errorf("schema: migration to v%d outside 2..%d", m.ToVersion, version)
		}
		if _, dup := r.migrations[m.ToVersion]; dup {
			return nil, fmt.Errorf("schema: duplicate migration to v%d", m.ToVersion)
		}
		for _, s := range m.Steps {
			if s.Kind != CreateTable && s.Kind != AddColumns {
				return nil, fmt.Errorf("schema: migration to v%d has unsupported step %v", m.ToVersion, s.Kind)
			}
			for _, c := range s.Columns {
				if s.Kind == AddColumns && !c.Optional && c.Unique {
					return nil, fmt.Errorf("schema: cannot add unique non-null column %s.%s", s.Table, c.Name)
				}
			}
		}
		r.migrations[m.ToVersion] = m
	}
	return r, nil
}

// MustRegistry is NewRegistry that panics; for package-level declarations.
func MustRegistry(version int, tables []Table, migrations ...Migration) *Registry {
	r, err := NewRegistry(version, tables, migrations...)
	if err != nil {
		panic(err)
	}
	return r
}

// Tables returns the tables in declaration order.
func (r *Registry) Tables() []Table {
	out := make([]Table, len(r.tables))
	copy(out, r.tables)
	return out
}

// Table looks up a table by name.
func (r *Registry) Table(name string) (Table, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Steps returns the ordered steps that bring a database at from up to to.
// from == 0 means an empty database: every table is created at its current layout.
// The result is a pure function of the arguments.
func (r *Registry) Steps(from, to int) ([]Step, error) {
	if to > r.Version {
		return nil, fmt.Errorf("schema: target v%d beyond registry v%d", to, r.Version)
	}
	if from > to {
		return nil, fmt.Errorf("schema: cannot go from v%d down to v%d", from, to)
	}
	if from == to {
		return nil, nil
	}
	if from == 0 {
		if to != r.Version {
			return nil, fmt.Errorf("schema: fresh databases are created at v%d only", r.Version)
		}
		steps := make([]Step, 0, len(r.tables))
		for _, t := range r.tables {
			steps = append(steps, Step{Kind: CreateTable, Table: t.Name, Columns: t.Columns})
		}
		return steps, nil
	}

	versions := make([]int, 0, to-from)
	for v := from + 1; v <= to; v++ {
		if _, ok := r.migrations[v]; !ok {
			return nil, fmt.Errorf("schema: no migration to v%d", v)
		}
		versions = append(versions, v)
	}
	sort.Ints(versions)

	var steps []Step
	for _, v := range versions {
		steps = append(steps, r.migrations[v].Steps...)
	}
	return steps, nil
}
