package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/model"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/schema"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Collection gives typed access to one table. T is the entity struct and P its
// pointer type, which carries TableName and the embedded model.Base.
type Collection[T any, P interface {
	*T
	model.Record
}] struct {
	s      *Store
	table  schema.Table
	search []string
}

// NewCollection binds T to its table. searchColumns are the columns Search
// matches against. It panics if the table or a search column is not in the
// store's registry: that is a wiring bug, not a runtime condition.
func NewCollection[T any, P interface {
	*T
	model.Record
}](s *Store, searchColumns ...string) *Collection[T, P] {
	name := P(new(T)).TableName()
	t, ok := s.reg.Table(name)
	if !ok {
		panic(fmt.Sprintf("store: table %q not in schema registry", name))
	}
	for _, c := range searchColumns {
		if _, ok := t.Column(c); !ok {
			panic(fmt.Sprintf("store: search column %s.%s not in schema registry", name, c))
		}
	}
	return &Collection[T, P]{s: s, table: t, search: searchColumns}
}

// Table returns the collection's table name.
func (c *Collection[T, P]) Table() string { return c.table.Name }

// Find loads one committed record by id.
func (c *Collection[T, P]) Find(ctx context.Context, id string) (P, error) {
	return c.find(c.s.db.WithContext(ctx), id)
}

// Fetch runs a one-shot query against committed state.
func (c *Collection[T, P]) Fetch(ctx context.Context, clauses ...Clause) ([]T, error) {
	return c.fetch(c.s.db.WithContext(ctx), clauses)
}

// FetchCount counts committed rows matching the conditions in clauses.
func (c *Collection[T, P]) FetchCount(ctx context.Context, clauses ...Clause) (int64, error) {
	return c.count(c.s.db.WithContext(ctx), clauses)
}

// Observe subscribes cb to the result of a query. cb receives the current
// result right away and once more for every committed write to this table.
//
// The query runs when a delivery is made, not when the commit happened, so
// every delivery carries the committed state at delivery time. Several commits
// in quick succession can therefore produce identical deliveries, and an
// intermediate state may never be seen.
func (c *Collection[T, P]) Observe(cb func([]T), clauses ...Clause) (*Subscription, error) {
	q, err := buildQuery(c.table, clauses)
	if err != nil {
		return nil, err
	}
	sub := c.s.obs.add([]string{c.table.Name}, true, func(ctx context.Context) func() {
		var rows []T
		if err := q.scope(c.s.db.WithContext(ctx).Table(c.table.Name)).Find(&rows).Error; err != nil {
			log.Error().Err(err).Str("table", c.table.Name).Msg("live query failed")
			return nil
		}
		if rows == nil {
			rows = []T{}
		}
		return func() { cb(rows) }
	})
	return sub, nil
}

// ObserveAll subscribes cb to every row of the table.
func (c *Collection[T, P]) ObserveAll(cb func([]T)) *Subscription {
	sub, err := c.Observe(cb)
	if err != nil {
		// No clauses, nothing to validate.
		panic(err)
	}
	return sub
}

// ObserveByID subscribes cb to one record; cb gets nil while it does not exist.
// Deliveries follow Observe: each reflects the record as of delivery.
func (c *Collection[T, P]) ObserveByID(id string, cb func(P)) *Subscription {
	sub, err := c.Observe(func(rows []T) {
		if len(rows) == 0 {
			cb(nil)
			return
		}
		cb(P(&rows[0]))
	}, Eq(schema.ColumnID, id), Limit(1))
	if err != nil {
		panic(err)
	}
	return sub
}

// Search subscribes cb to rows whose search columns contain text. Empty text
// matches every row.
func (c *Collection[T, P]) Search(text string, cb func([]T), clauses ...Clause) (*Subscription, error) {
	return c.Observe(cb, append(c.SearchClauses(text), clauses...)...)
}

// SearchClauses builds the condition Search uses, for one-shot fetches.
func (c *Collection[T, P]) SearchClauses(text string) []Clause {
	if text == "" || len(c.search) == 0 {
		return nil
	}
	ors := make([]Clause, len(c.search))
	for i, col := range c.search {
		ors[i] = Contains(col, text)
	}
	return []Clause{AnyOf(ors...)}
}

// In binds the collection to a write transaction.
func (c *Collection[T, P]) In(tx *Tx) *TxCollection[T, P] {
	return &TxCollection[T, P]{c: c, tx: tx}
}

func (c *Collection[T, P]) find(db *gorm.DB, id string) (P, error) {
	rec := P(new(T))
	err := db.Table(c.table.Name).Where(`"id" = ?`, id).Take(rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%s %s: %w", c.table.Name, id, errNotFound)
		}
		return nil, translate(err)
	}
	return rec, nil
}

func (c *Collection[T, P]) fetch(db *gorm.DB, clauses []Clause) ([]T, error) {
	q, err := buildQuery(c.table, clauses)
	if err != nil {
		return nil, err
	}
	var rows []T
	if err := q.scope(db.Table(c.table.Name)).Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	if rows == nil {
		rows = []T{}
	}
	return rows, nil
}

func (c *Collection[T, P]) count(db *gorm.DB, clauses []Clause) (int64, error) {
	q, err := buildQuery(c.table, clauses)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := q.whereOnly(db.Table(c.table.Name)).Count(&n).Error; err != nil {
		return 0, translate(err)
	}
	return n, nil
}

// TxCollection is a Collection bound to a write transaction. Reads see the
// transaction's own writes.
type TxCollection[T any, P interface {
	*T
	model.Record
}] struct {
	c  *Collection[T, P]
	tx *Tx
}

func (t *TxCollection[T, P]) db() *gorm.DB { return t.tx.db }

func (t *TxCollection[T, P]) Find(id string) (P, error) {
	return t.c.find(t.db(), id)
}

func (t *TxCollection[T, P]) Fetch(clauses ...Clause) ([]T, error) {
	return t.c.fetch(t.db(), clauses)
}

func (t *TxCollection[T, P]) FetchCount(clauses ...Clause) (int64, error) {
	return t.c.count(t.db(), clauses)
}

// Create inserts a new record initialised by init. The id, timestamps and
// change marker are filled in unless init set them.
func (t *TxCollection[T, P]) Create(init func(P)) (P, error) {
	rec := P(new(T))
	if init != nil {
		init(rec)
	}
	b := rec.RecordBase()
	if b.ID == "" {
		b.ID = t.tx.store.newID()
	}
	if b.CreatedAt == 0 {
		b.CreatedAt = t.tx.Now()
	}
	if b.UpdatedAt == 0 {
		b.UpdatedAt = b.CreatedAt
	}
	b.Status = model.StatusCreated
	b.Changed = ""

	if err := t.db().Table(t.c.table.Name).Create(rec).Error; err != nil {
		return nil, fmt.Errorf("create %s: %w", t.c.table.Name, translate(err))
	}
	t.tx.touch(t.c.table.Name)
	return rec, nil
}

// Update loads the record, applies mutate and saves every column.
// The id cannot be changed.
func (t *TxCollection[T, P]) Update(id string, mutate func(P)) (P, error) {
	rec, err := t.Find(id)
	if err != nil {
		return nil, err
	}
	mutate(rec)
	b := rec.RecordBase()
	b.ID = id
	b.UpdatedAt = t.tx.Now()
	if b.Status != model.StatusCreated {
		b.Status = model.StatusUpdated
	}

	res := t.db().Table(t.c.table.Name).Where(`"id" = ?`, id).Select("*").Updates(rec)
	if res.Error != nil {
		return nil, fmt.Errorf("update %s %s: %w", t.c.table.Name, id, translate(res.Error))
	}
	t.tx.touch(t.c.table.Name)
	return rec, nil
}

// Destroy permanently deletes the record.
func (t *TxCollection[T, P]) Destroy(id string) error {
	if _, err := t.Find(id); err != nil {
		return err
	}
	if err := t.db().Table(t.c.table.Name).Where(`"id" = ?`, id).Delete(P(new(T))).Error; err != nil {
		return fmt.Errorf("destroy %s %s: %w", t.c.table.Name, id, translate(err))
	}
	t.tx.touch(t.c.table.Name)
	return nil
}
