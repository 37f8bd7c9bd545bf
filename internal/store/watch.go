package store

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Watch calls cb after every committed write that touches one of tables.
// Unlike Observe there is no initial delivery and no query.
func (s *Store) Watch(cb func(), tables ...string) (*Subscription, error) {
	for _, name := range tables {
		if _, err := s.table(name); err != nil {
			return nil, err
		}
	}
	return s.obs.add(tables, false, func(context.Context) func() {
		return cb
	}), nil
}

// ObserveRaw is Observe for a whole table as column maps without the
// bookkeeping columns. The live websocket feed uses it.
func (s *Store) ObserveRaw(table string, cb func([]map[string]any)) (*Subscription, error) {
	if _, err := s.table(table); err != nil {
		return nil, err
	}
	return s.obs.add([]string{table}, true, func(ctx context.Context) func() {
		rows, err := s.RawRows(ctx, table)
		if err != nil {
			log.Error().Err(err).Str("table", table).Msg("live query failed")
			return nil
		}
		for i, row := range rows {
			rows[i] = StripBookkeeping(row)
		}
		return func() { cb(rows) }
	}), nil
}
