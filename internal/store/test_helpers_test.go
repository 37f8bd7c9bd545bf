package store_test

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/model"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/schema"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/store"

	"github.com/stretchr/testify/require"
)

// testClock is a manually advanced clock.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Millisecond)
	return c.now
}

type fixture struct {
	store     *store.Store
	path      string
	customers *store.Collection[model.Customer, *model.Customer]
	bills     *store.Collection[model.Bill, *model.Bill]
	products  *store.Collection[model.Product, *model.Product]
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shop.db")
	s, err := store.Open(path, schema.App, store.Options{Now: newTestClock().Now})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return &fixture{
		store:     s,
		path:      path,
		customers: store.NewCollection[model.Customer](s, "name", "phone"),
		bills:     store.NewCollection[model.Bill](s, "bill_number"),
		products:  store.NewCollection[model.Product](s, "name", "barcode"),
	}
}

// collector records every delivery of a live query.
type collector[T any] struct {
	mu  sync.Mutex
	got [][]T
}

func newCollector[T any]() *collector[T] {
	return &collector[T]{}
}

func (c *collector[T]) add(rows []T) {
	c.mu.Lock()
	c.got = append(c.got, rows)
	c.mu.Unlock()
}

func (c *collector[T]) deliveries() [][]T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]T, len(c.got))
	copy(out, c.got)
	return out
}

func (c *collector[T]) last() []T {
	d := c.deliveries()
	if len(d) == 0 {
		return nil
	}
	return d[len(d)-1]
}
