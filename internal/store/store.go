// Package store is the local record store: typed collections over the SQLite
// tables declared in package schema, atomic write transactions, and live queries
// that re-deliver their results after every committed write.
//
// One writer at a time: Write holds a store-wide lock for the duration of the
// transaction. Reads go through the connection pool and, thanks to WAL, only
// ever see committed data and never wait on a pending write.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/schema"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Options tunes a Store. Zero values pick the production defaults.
type Options struct {
	// Now is the clock used for created_at/updated_at. Defaults to time.Now.
	Now func() time.Time
	// NewID generates record ids. Defaults to random UUIDs.
	NewID func() string
	// MaxOpenConns bounds the read pool. Defaults to 4.
	MaxOpenConns int
	// LogLevel is the gorm logger level. Defaults to silent.
	LogLevel logger.LogLevel
}

// Store owns the database handle, the writer lock and the live-query registry.
type Store struct {
	db      *gorm.DB
	reg     *schema.Registry
	now     func() time.Time
	newID   func() string
	writeMu sync.Mutex
	obs     *observers

	clockMu    sync.Mutex
	lastMillis int64
}

// Open creates or opens the database at path and brings its schema up to reg.
// A database written by a newer release fails with apierror.ErrSchemaMismatch.
func Open(path string, reg *schema.Registry, opts Options) (*Store, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.MaxOpenConns <= 0 {
		opts.MaxOpenConns = 4
	}
	if opts.LogLevel == 0 {
		opts.LogLevel = logger.Silent
	}

	// Pragmas go in the DSN so every pooled connection gets them, not only the first.
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_txlock=immediate", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(opts.LogLevel),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	sqlDB.SetMaxIdleConns(opts.MaxOpenConns)

	if err := migrate(db, reg); err != nil {
		sqlDB.Close()
		return nil, err
	}

	s := &Store{
		db:    db,
		reg:   reg,
		now:   opts.Now,
		newID: opts.NewID,
	}
	if err := s.seedClock(db); err != nil {
		sqlDB.Close()
		return nil, err
	}
	s.obs = newObservers()
	go s.obs.run()
	return s, nil
}

// Close stops live-query delivery and closes the database.
// Pending notifications are delivered first.
func (s *Store) Close() error {
	s.obs.stop()
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Registry returns the schema the store was opened with.
func (s *Store) Registry() *schema.Registry { return s.reg }

// DB exposes the underlying handle for health checks. Mutations must go
// through Write so that live queries are notified.
func (s *Store) DB() *gorm.DB { return s.db }

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// SchemaVersion reads the on-disk schema version.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	return userVersion(s.db.WithContext(ctx))
}

// Flush blocks until every notification queued so far has been delivered.
func (s *Store) Flush() {
	s.obs.flush()
}

// nowMillis is strictly increasing, so created_at alone orders appends even
// when several rows are written within the same millisecond.
func (s *Store) nowMillis() int64 {
	s.clockMu.Lock()
	defer s.clockMu.Unlock()
	ms := s.now().UnixMilli()
	if ms <= s.lastMillis {
		ms = s.lastMillis + 1
	}
	s.lastMillis = ms
	return ms
}

// advanceClock makes later nowMillis values exceed ms. Rows written by another
// device may carry timestamps ahead of this device's clock; new appends must
// still sort after them.
func (s *Store) advanceClock(ms int64) {
	s.clockMu.Lock()
	if ms > s.lastMillis {
		s.lastMillis = ms
	}
	s.clockMu.Unlock()
}

// seedClock advances the clock past the newest timestamp on disk.
func (s *Store) seedClock(db *gorm.DB) error {
	for _, t := range s.reg.Tables() {
		for _, col := range []string{"created_at", "updated_at"} {
			if _, ok := t.Column(col); !ok {
				continue
			}
			var ms int64
			q := fmt.Sprintf(`SELECT COALESCE(MAX("%s"), 0) FROM "%s"`, col, t.Name)
			if err := db.Raw(q).Scan(&ms).Error; err != nil {
				return fmt.Errorf("read newest %s.%s: %w", t.Name, col, translate(err))
			}
			s.advanceClock(ms)
		}
	}
	return nil
}

func (s *Store) table(name string) (schema.Table, error) {
	t, ok := s.reg.Table(name)
	if !ok {
		return schema.Table{}, fmt.Errorf("%w: unknown table %q", errConstraint, name)
	}
	return t, nil
}
