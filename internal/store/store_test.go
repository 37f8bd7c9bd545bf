package store_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/apierror"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/model"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/schema"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_FreshDatabaseIsAtAppVersion(t *testing.T) {
	f := newFixture(t)
	v, err := f.store.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, schema.AppVersion, v)

	for _, tbl := range schema.App.Tables() {
		n, err := f.store.Count(context.Background(), tbl.Name)
		require.NoError(t, err, tbl.Name)
		assert.Zero(t, n)
	}
}

func TestOpen_NewerOnDiskVersionIsSchemaMismatch(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.DB().Exec("PRAGMA user_version = 99").Error)
	require.NoError(t, f.store.Close())

	_, err := store.Open(f.path, schema.App, store.Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apierror.ErrSchemaMismatch))
}

// v1 of the app schema: before categories.is_active, bills.notes and credit_entries.notes.
func appV1(t *testing.T) *schema.Registry {
	t.Helper()
	drop := map[string]string{
		schema.TableCategories:    "is_active",
		schema.TableBills:         "notes",
		schema.TableCreditEntries: "notes",
	}
	var tables []schema.Table
	for _, tbl := range schema.App.Tables() {
		var cols []schema.Column
		for _, c := range tbl.Columns {
			if drop[tbl.Name] == c.Name {
				continue
			}
			cols = append(cols, c)
		}
		tables = append(tables, schema.Table{Name: tbl.Name, Columns: cols})
	}
	reg, err := schema.NewRegistry(1, tables)
	require.NoError(t, err)
	return reg
}

func TestOpen_MigratesOlderDatabaseKeepingRows(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "old.db")

	old, err := store.Open(path, appV1(t), store.Options{})
	require.NoError(t, err)
	require.NoError(t, old.Write(ctx, func(tx *store.Tx) error {
		return tx.RawInsert(schema.TableCategories, map[string]any{
			"id": "cat-1", "name": "Dairy", "icon": "milk", "created_at": int64(1), "updated_at": int64(1),
		})
	}))
	require.NoError(t, old.Close())

	s, err := store.Open(path, schema.App, store.Options{})
	require.NoError(t, err)
	defer s.Close()

	v, err := s.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, schema.AppVersion, v)

	categories := store.NewCollection[model.Category](s)
	c, err := categories.Find(ctx, "cat-1")
	require.NoError(t, err)
	assert.Equal(t, "Dairy", c.Name)
	assert.True(t, c.IsActive, "added is_active column defaults to true")

	assert.True(t, s.DB().Migrator().HasColumn(schema.TableBills, "notes"))
	assert.True(t, s.DB().Migrator().HasColumn(schema.TableCreditEntries, "notes"))
}

func TestWrite_CommitsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := f.store.Write(ctx, func(tx *store.Tx) error {
		if _, err := f.customers.In(tx).Create(func(c *model.Customer) { c.Name = "Asha" }); err != nil {
			return err
		}
		if _, err := f.customers.In(tx).Create(func(c *model.Customer) { c.Name = "Ravi" }); err != nil {
			return err
		}
		return boom
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apierror.ErrTransactionAborted))
	assert.True(t, errors.Is(err, boom), "inner error stays matchable")

	n, err := f.customers.FetchCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestWrite_PanicAbortsTransaction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var err error
	assert.NotPanics(t, func() {
		err = f.store.Write(ctx, func(tx *store.Tx) error {
			_, _ = f.customers.In(tx).Create(func(c *model.Customer) { c.Name = "Asha" })
			panic("kaboom")
		})
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apierror.ErrTransactionAborted))
	assert.Contains(t, err.Error(), "kaboom")

	n, err := f.customers.FetchCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	// The writer lock was released.
	require.NoError(t, f.store.Write(ctx, func(tx *store.Tx) error {
		_, err := f.customers.In(tx).Create(func(c *model.Customer) { c.Name = "Ravi" })
		return err
	}))
}

func TestWrite_CancelledContextNeverStarts(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := f.store.Write(ctx, func(tx *store.Tx) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestWrite_NoDirtyReadsFromCommittedFetch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.Write(ctx, func(tx *store.Tx) error {
		_, err := f.customers.In(tx).Create(func(c *model.Customer) { c.Name = "Asha" })
		require.NoError(t, err)

		inside, err := f.customers.In(tx).FetchCount()
		require.NoError(t, err)
		assert.EqualValues(t, 1, inside, "the transaction sees its own write")

		outside, err := f.customers.FetchCount(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 0, outside, "committed readers do not")
		return nil
	}))

	n, err := f.customers.FetchCount(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestWrite_SerializesConcurrentWriters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var p *model.Product
	require.NoError(t, f.store.Write(ctx, func(tx *store.Tx) error {
		var err error
		p, err = f.products.In(tx).Create(func(p *model.Product) {
			p.Name = "Sugar"
			p.Unit = model.UnitKg
			p.IsActive = true
		})
		return err
	}))

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := f.store.Write(ctx, func(tx *store.Tx) error {
				_, err := f.products.In(tx).Update(p.ID, func(p *model.Product) {
					p.CurrentStock = p.CurrentStock.Add(decimal.NewFromInt(1))
				})
				return err
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := f.products.Find(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.CurrentStock.Equal(decimal.NewFromInt(writers)), got.CurrentStock.String())
}

func TestWriteResult_ReturnsValue(t *testing.T) {
	f := newFixture(t)
	c, err := store.WriteResult(context.Background(), f.store, func(tx *store.Tx) (*model.Customer, error) {
		return f.customers.In(tx).Create(func(c *model.Customer) { c.Name = "Asha" })
	})
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
}

func TestOpen_ClockStartsPastStoredTimestamps(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "shop.db")
	ahead := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	first, err := store.Open(path, schema.App, store.Options{Now: func() time.Time { return ahead }})
	require.NoError(t, err)
	customers := store.NewCollection[model.Customer](first)
	require.NoError(t, first.Write(ctx, func(tx *store.Tx) error {
		_, err := customers.In(tx).Create(func(c *model.Customer) { c.Name = "Asha" })
		return err
	}))
	require.NoError(t, first.Close())

	behind := ahead.Add(-time.Hour)
	s, err := store.Open(path, schema.App, store.Options{Now: func() time.Time { return behind }})
	require.NoError(t, err)
	defer s.Close()
	customers = store.NewCollection[model.Customer](s)

	var ravi *model.Customer
	require.NoError(t, s.Write(ctx, func(tx *store.Tx) error {
		ravi, err = customers.In(tx).Create(func(c *model.Customer) { c.Name = "Ravi" })
		return err
	}))
	assert.Greater(t, ravi.CreatedAt, ahead.UnixMilli())
}

func TestRawInsert_MovesClockPastImportedRows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	future := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli()

	require.NoError(t, f.store.Write(ctx, func(tx *store.Tx) error {
		return tx.RawInsert(schema.TableCustomers, map[string]any{
			"id": "cust-1", "name": "Asha", "created_at": future, "updated_at": future,
		})
	}))
	c := seedCustomers(t, f, "Ravi")[0]
	assert.Greater(t, c.CreatedAt, future)
}
