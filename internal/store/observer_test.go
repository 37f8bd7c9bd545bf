package store_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/model"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/schema"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveAll_DeliversInitialAndAfterEachCommit(t *testing.T) {
	f := newFixture(t)
	got := newCollector[model.Customer]()

	sub := f.customers.ObserveAll(got.add)
	defer sub.Unsubscribe()
	f.store.Flush()

	require.Len(t, got.deliveries(), 1)
	assert.Empty(t, got.last())

	seedCustomers(t, f, "Asha", "Ravi")
	f.store.Flush()

	d := got.deliveries()
	require.Len(t, d, 2, "one commit, one delivery")
	assert.Equal(t, []string{"Asha", "Ravi"}, customerNames(d[1]))
}

func TestObserve_IgnoresOtherTablesAndAbortedWrites(t *testing.T) {
	f := newFixture(t)
	got := newCollector[model.Customer]()
	sub := f.customers.ObserveAll(got.add)
	defer sub.Unsubscribe()
	f.store.Flush()

	require.NoError(t, f.store.Write(context.Background(), func(tx *store.Tx) error {
		_, err := f.products.In(tx).Create(func(p *model.Product) { p.Name = "Salt"; p.Unit = model.UnitKg })
		return err
	}))
	_ = f.store.Write(context.Background(), func(tx *store.Tx) error {
		_, _ = f.customers.In(tx).Create(func(c *model.Customer) { c.Name = "Ghost" })
		return assert.AnError
	})
	f.store.Flush()

	assert.Len(t, got.deliveries(), 1, "only the initial delivery")
}

func TestUnsubscribe_StopsDeliveries(t *testing.T) {
	f := newFixture(t)
	got := newCollector[model.Customer]()
	sub := f.customers.ObserveAll(got.add)
	f.store.Flush()

	sub.Unsubscribe()
	assert.False(t, sub.Active())
	sub.Unsubscribe() // idempotent

	seedCustomers(t, f, "Asha")
	f.store.Flush()
	assert.Len(t, got.deliveries(), 1)
}

func TestObserve_SubscriptionOrder(t *testing.T) {
	f := newFixture(t)

	var mu sync.Mutex
	var order []string
	record := func(name string) func([]model.Customer) {
		return func([]model.Customer) {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
		}
	}
	a := f.customers.ObserveAll(record("a"))
	b := f.customers.ObserveAll(record("b"))
	c := f.customers.ObserveAll(record("c"))
	defer a.Unsubscribe()
	defer b.Unsubscribe()
	defer c.Unsubscribe()
	f.store.Flush()

	seedCustomers(t, f, "Asha")
	f.store.Flush()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"a", "b", "c", "a", "b", "c"}, order)
}

func TestObserveByID_TracksSingleRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	asha := seedCustomers(t, f, "Asha")[0]

	var mu sync.Mutex
	var seen []*model.Customer
	sub := f.customers.ObserveByID(asha.ID, func(c *model.Customer) {
		mu.Lock()
		seen = append(seen, c)
		mu.Unlock()
	})
	defer sub.Unsubscribe()
	f.store.Flush()

	require.NoError(t, f.store.Write(ctx, func(tx *store.Tx) error {
		_, err := f.customers.In(tx).Update(asha.ID, func(c *model.Customer) { c.Name = "Asha K" })
		return err
	}))
	f.store.Flush()
	require.NoError(t, f.store.Write(ctx, func(tx *store.Tx) error {
		return f.customers.In(tx).Destroy(asha.ID)
	}))
	f.store.Flush()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 3)
	require.NotNil(t, seen[0])
	require.NotNil(t, seen[1])
	assert.Equal(t, "Asha", seen[0].Name)
	assert.Equal(t, "Asha K", seen[1].Name)
	assert.Nil(t, seen[2])
}

func TestObserveByID_BackToBackCommitsDeliverCurrentState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	asha := seedCustomers(t, f, "Asha")[0]

	var mu sync.Mutex
	var seen []*model.Customer
	sub := f.customers.ObserveByID(asha.ID, func(c *model.Customer) {
		mu.Lock()
		seen = append(seen, c)
		mu.Unlock()
	})
	defer sub.Unsubscribe()
	f.store.Flush()

	release := holdDispatcher(t, f)
	require.NoError(t, f.store.Write(ctx, func(tx *store.Tx) error {
		_, err := f.customers.In(tx).Update(asha.ID, func(c *model.Customer) { c.Name = "Asha K" })
		return err
	}))
	require.NoError(t, f.store.Write(ctx, func(tx *store.Tx) error {
		return f.customers.In(tx).Destroy(asha.ID)
	}))
	release()
	f.store.Flush()

	// One delivery per commit, each evaluated when delivered: the rename's
	// delivery runs after the destroy committed and already sees no row.
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 3)
	require.NotNil(t, seen[0])
	assert.Equal(t, "Asha", seen[0].Name)
	assert.Nil(t, seen[1])
	assert.Nil(t, seen[2])
}

func TestSearch_FiltersLiveResults(t *testing.T) {
	f := newFixture(t)
	got := newCollector[model.Customer]()
	sub, err := f.customers.Search("ra", got.add)
	require.NoError(t, err)
	defer sub.Unsubscribe()

	seedCustomers(t, f, "Ravi", "Asha", "Kiran")
	f.store.Flush()

	assert.Equal(t, []string{"Ravi", "Kiran"}, customerNames(got.last()))
}

func TestObserve_CallbackMayWrite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	done := make(chan struct{})
	var once sync.Once
	sub := f.customers.ObserveAll(func(rows []model.Customer) {
		if len(rows) != 1 {
			return
		}
		once.Do(func() {
			// Writing from a callback must not deadlock the dispatcher.
			err := f.store.Write(ctx, func(tx *store.Tx) error {
				_, err := f.products.In(tx).Create(func(p *model.Product) { p.Name = "Gift"; p.Unit = model.UnitPiece })
				return err
			})
			assert.NoError(t, err)
			close(done)
		})
	})
	defer sub.Unsubscribe()

	seedCustomers(t, f, "Asha")
	<-done

	n, err := f.products.FetchCount(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

// holdDispatcher parks the dispatcher inside a product callback until the
// returned release func is called, so later commits stay queued.
func holdDispatcher(t *testing.T, f *fixture) (release func()) {
	t.Helper()
	entered := make(chan struct{})
	gate := make(chan struct{})
	var once sync.Once
	sub, err := f.store.Watch(func() {
		once.Do(func() { close(entered) })
		<-gate
	}, schema.TableProducts)
	require.NoError(t, err)
	t.Cleanup(sub.Unsubscribe)

	require.NoError(t, f.store.Write(context.Background(), func(tx *store.Tx) error {
		_, err := f.products.In(tx).Create(func(p *model.Product) { p.Name = "Salt"; p.Unit = model.UnitKg })
		return err
	}))
	<-entered
	var closeOnce sync.Once
	release = func() { closeOnce.Do(func() { close(gate) }) }
	t.Cleanup(release)
	return release
}

func TestObserve_QueuedCommitBeforeSubscribeDeliversOnce(t *testing.T) {
	f := newFixture(t)
	release := holdDispatcher(t, f)

	seedCustomers(t, f, "Asha")

	got := newCollector[model.Customer]()
	sub := f.customers.ObserveAll(got.add)
	defer sub.Unsubscribe()
	var watched atomic.Int32
	w, err := f.store.Watch(func() { watched.Add(1) }, schema.TableCustomers)
	require.NoError(t, err)
	defer w.Unsubscribe()

	release()
	f.store.Flush()

	d := got.deliveries()
	require.Len(t, d, 1, "the earlier commit is not redelivered")
	assert.Equal(t, []string{"Asha"}, customerNames(d[0]))
	assert.Zero(t, watched.Load(), "a watch never sees commits from before it")
}

func TestObserve_InitialPrecedesLaterCommits(t *testing.T) {
	f := newFixture(t)
	release := holdDispatcher(t, f)

	got := newCollector[model.Customer]()
	sub := f.customers.ObserveAll(got.add)
	defer sub.Unsubscribe()
	seedCustomers(t, f, "Asha")

	release()
	f.store.Flush()

	d := got.deliveries()
	require.Len(t, d, 2)
	assert.Equal(t, []string{"Asha"}, customerNames(d[1]))
}
