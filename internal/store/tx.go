package store

import (
	"context"
	"fmt"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/apierror"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Tx is the handle passed to a Write function. Collections bound with In(tx)
// read their own uncommitted writes; everything else sees the state before the
// transaction until it commits.
type Tx struct {
	ctx     context.Context
	db      *gorm.DB
	store   *Store
	touched map[string]struct{}
}

// Context returns the context the transaction runs under.
func (tx *Tx) Context() context.Context { return tx.ctx }

// Now returns the store clock in epoch milliseconds. Successive calls never
// return the same value.
func (tx *Tx) Now() int64 { return tx.store.nowMillis() }

// DB exposes the transaction handle for collaborators that keep their own
// tables in the same database file, such as the settings store. Writes made
// through it are not seen by live queries.
func (tx *Tx) DB() *gorm.DB { return tx.db }

func (tx *Tx) touch(table string) {
	tx.touched[table] = struct{}{}
}

// Write runs fn inside one database transaction.
//
// Either every mutation made through tx commits and live queries over the
// touched tables are notified once, or fn's error (or a panic) rolls the whole
// transaction back and Write returns an error wrapping both
// apierror.ErrTransactionAborted and the inner error.
//
// Writes are serialized: a second Write waits for the first to finish. fn must
// not call Write itself. ctx is only checked before the transaction begins; a
// started transaction always runs to commit or rollback.
func (s *Store) Write(ctx context.Context, fn func(tx *Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	runCtx := context.WithoutCancel(ctx)
	var touched map[string]struct{}
	err := s.db.WithContext(runCtx).Transaction(func(gtx *gorm.DB) error {
		tx := &Tx{ctx: runCtx, db: gtx, store: s, touched: make(map[string]struct{})}
		if err := runRecovered(fn, tx); err != nil {
			return err
		}
		touched = tx.touched
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", apierror.ErrTransactionAborted, translate(err))
	}

	// Queued under the writer lock so notifications follow commit order.
	if len(touched) > 0 {
		s.obs.publish(touched)
	}
	return nil
}

// runRecovered turns a panic in fn into an error so the transaction rolls back
// and the writer lock is released through the normal path.
func runRecovered(fn func(tx *Tx) error, tx *Tx) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("write function panicked")
			err = fmt.Errorf("write panicked: %v", r)
		}
	}()
	return fn(tx)
}

// WriteResult is Write for functions that produce a value.
func WriteResult[R any](ctx context.Context, s *Store, fn func(tx *Tx) (R, error)) (R, error) {
	var out R
	err := s.Write(ctx, func(tx *Tx) error {
		r, err := fn(tx)
		if err != nil {
			return err
		}
		out = r
		return nil
	})
	if err != nil {
		var zero R
		return zero, err
	}
	return out, nil
}
