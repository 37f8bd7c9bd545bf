package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppRegistry_FreshInstallCreatesEveryTable(t *testing.T) {
	steps, err := App.Steps(0, AppVersion)
	require.NoError(t, err)
	require.Len(t, steps, len(App.Tables()))

	for i, tbl := range App.Tables() {
		assert.Equal(t, CreateTable, steps[i].Kind)
		assert.Equal(t, tbl.Name, steps[i].Table)
	}
}

func TestAppRegistry_UpgradeStepsAreOrdered(t *testing.T) {
	steps, err := App.Steps(1, AppVersion)
	require.NoError(t, err)
	require.Len(t, steps, 3)

	assert.Equal(t, TableCategories, steps[0].Table)
	assert.Equal(t, TableBills, steps[1].Table)
	assert.Equal(t, TableCreditEntries, steps[2].Table)
	for _, s := range steps {
		assert.Equal(t, AddColumns, s.Kind)
	}

	fromTwo, err := App.Steps(2, AppVersion)
	require.NoError(t, err)
	assert.Equal(t, steps[2:], fromTwo)
}

func TestRegistry_StepsRejectsDowngrade(t *testing.T) {
	_, err := App.Steps(AppVersion, 1)
	require.Error(t, err)

	_, err = App.Steps(0, AppVersion+1)
	require.Error(t, err)
}

func TestRegistry_StepsNoopAtSameVersion(t *testing.T) {
	steps, err := App.Steps(AppVersion, AppVersion)
	require.NoError(t, err)
	assert.Empty(t, steps)
}

func TestNewRegistry_MissingMigrationSurfacesOnSteps(t *testing.T) {
	r, err := NewRegistry(3, []Table{{Name: "t"}},
		Migration{ToVersion: 3, Steps: []Step{{Kind: AddColumns, Table: "t", Columns: []Column{{Name: "x", Type: String}}}}},
	)
	require.NoError(t, err)

	_, err = r.Steps(1, 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "v2")
}

func TestNewRegistry_Validation(t *testing.T) {
	_, err := NewRegistry(0, nil)
	require.Error(t, err)

	_, err = NewRegistry(1, []Table{{Name: "a"}, {Name: "a"}})
	require.Error(t, err)

	_, err = NewRegistry(2, []Table{{Name: "a"}},
		Migration{ToVersion: 2, Steps: []Step{{Kind: AddColumns, Table: "a", Columns: []Column{{Name: "u", Type: String, Unique: true}}}}},
	)
	require.Error(t, err, "a unique NOT NULL column cannot be added to a populated table")
}

func TestTable_ColumnIncludesBookkeeping(t *testing.T) {
	tbl, ok := App.Table(TableProducts)
	require.True(t, ok)

	for _, name := range []string{ColumnID, ColumnStatus, ColumnChanged, "barcode", "current_stock"} {
		_, ok := tbl.Column(name)
		assert.True(t, ok, name)
	}
	_, ok = tbl.Column("nope")
	assert.False(t, ok)
}

func TestStepSQL(t *testing.T) {
	create := Step{Kind: CreateTable, Table: "bills", Columns: []Column{
		{Name: "bill_number", Type: String, Unique: true},
		{Name: "customer_id", Type: String, Optional: true, Indexed: true},
		{Name: "grand_total", Type: Number},
		{Name: "is_active", Type: Boolean, Default: "1"},
	}}
	stmts := create.SQL()
	require.Len(t, stmts, 3)
	assert.True(t, strings.HasPrefix(stmts[0], `CREATE TABLE IF NOT EXISTS "bills"`))
	assert.Contains(t, stmts[0], `"id" TEXT PRIMARY KEY NOT NULL`)
	assert.Contains(t, stmts[0], `"_status" TEXT NOT NULL DEFAULT ''`)
	assert.Contains(t, stmts[0], `"customer_id" TEXT,`)
	assert.Contains(t, stmts[0], `"grand_total" REAL NOT NULL DEFAULT 0`)
	assert.Contains(t, stmts[0], `"is_active" INTEGER NOT NULL DEFAULT 1`)
	assert.Contains(t, stmts[1], `CREATE UNIQUE INDEX IF NOT EXISTS "uni_bills_bill_number"`)
	assert.Contains(t, stmts[2], `CREATE INDEX IF NOT EXISTS "idx_bills_customer_id"`)

	add := Step{Kind: AddColumns, Table: "bills", Columns: []Column{{Name: "notes", Type: String}}}
	assert.Equal(t, []string{`ALTER TABLE "bills" ADD COLUMN "notes" TEXT NOT NULL DEFAULT ''`}, add.SQL())
}
