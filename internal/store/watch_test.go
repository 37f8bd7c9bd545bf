package store_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/apierror"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/schema"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatch_FiresOnlyAfterMatchingCommits(t *testing.T) {
	f := newFixture(t)
	var n atomic.Int32
	sub, err := f.store.Watch(func() { n.Add(1) }, schema.TableCustomers, schema.TableBills)
	require.NoError(t, err)
	defer sub.Unsubscribe()
	f.store.Flush()
	assert.Zero(t, n.Load(), "no initial delivery")

	seedCustomers(t, f, "Asha")
	f.store.Flush()
	assert.EqualValues(t, 1, n.Load())

	require.NoError(t, f.store.Write(context.Background(), func(tx *store.Tx) error {
		return tx.RawDeleteAll(schema.TableCategories)
	}))
	f.store.Flush()
	assert.EqualValues(t, 1, n.Load(), "other tables are ignored")

	sub.Unsubscribe()
	seedCustomers(t, f, "Ravi")
	f.store.Flush()
	assert.EqualValues(t, 1, n.Load())
}

func TestWatch_UnknownTable(t *testing.T) {
	f := newFixture(t)
	_, err := f.store.Watch(func() {}, "nope")
	assert.ErrorIs(t, err, apierror.ErrConstraintViolation)
	_, err = f.store.ObserveRaw("nope", func([]map[string]any) {})
	assert.ErrorIs(t, err, apierror.ErrConstraintViolation)
}

func TestObserveRaw_StripsBookkeeping(t *testing.T) {
	f := newFixture(t)
	got := newCollector[map[string]any]()
	sub, err := f.store.ObserveRaw(schema.TableCustomers, got.add)
	require.NoError(t, err)
	defer sub.Unsubscribe()
	f.store.Flush()

	seedCustomers(t, f, "Asha")
	f.store.Flush()

	d := got.deliveries()
	require.Len(t, d, 2)
	assert.Empty(t, d[0])
	require.Len(t, d[1], 1)
	assert.Equal(t, "Asha", d[1][0]["name"])
	assert.NotContains(t, d[1][0], schema.ColumnStatus)
}
