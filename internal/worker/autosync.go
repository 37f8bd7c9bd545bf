package worker

import (
	"context"
	"sync"
	"time"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/dto"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/infra"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/store"

	"github.com/rs/zerolog/log"
)

const defaultAutoSyncTick = 5 * time.Second

// Syncer is the part of the sync service the worker drives.
type Syncer interface {
	Sync(ctx context.Context) dto.SyncResult
}

// AutoSyncConfig holds the dependencies of the background sync loop.
type AutoSyncConfig struct {
	Store  *store.Store
	Syncer Syncer
	// Tables whose writes schedule a sync.
	Tables []string
	// Debounce is how long writes must stay quiet before a sync starts.
	Debounce time.Duration
	// Tick is how often the loop checks; defaults to 5s.
	Tick time.Duration
	// CB, when set, is checked before each attempt; an open breaker skips it.
	CB  *infra.CircuitBreaker
	Now func() time.Time
}

// AutoSync uploads a snapshot once local data has been quiet for Debounce.
// A failed attempt is logged and dropped; the next write schedules another.
type AutoSync struct {
	cfg AutoSyncConfig

	mu         sync.Mutex
	dirty      bool
	lastChange time.Time
}

func NewAutoSync(cfg AutoSyncConfig) *AutoSync {
	if cfg.Tick <= 0 {
		cfg.Tick = defaultAutoSyncTick
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &AutoSync{cfg: cfg}
}

// Start subscribes to store writes and launches the loop. It stops when ctx
// is cancelled.
func (a *AutoSync) Start(ctx context.Context) error {
	sub, err := a.cfg.Store.Watch(a.markDirty, a.cfg.Tables...)
	if err != nil {
		return err
	}
	go func() {
		ticker := time.NewTicker(a.cfg.Tick)
		defer ticker.Stop()
		defer sub.Unsubscribe()

		log.Info().Dur("debounce", a.cfg.Debounce).Msg("autosync: started")
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("autosync: shutting down")
				return
			case <-ticker.C:
				if a.due() {
					a.run(ctx)
				}
			}
		}
	}()
	return nil
}

func (a *AutoSync) markDirty() {
	a.mu.Lock()
	a.dirty = true
	a.lastChange = a.cfg.Now()
	a.mu.Unlock()
}

// due clears the dirty flag when the quiet window has passed.
func (a *AutoSync) due() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.dirty || a.cfg.Now().Sub(a.lastChange) < a.cfg.Debounce {
		return false
	}
	a.dirty = false
	return true
}

func (a *AutoSync) run(ctx context.Context) {
	if a.cfg.CB != nil && a.cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("autosync: circuit breaker is open, skipping")
		return
	}
	res := a.cfg.Syncer.Sync(ctx)
	if !res.Success {
		log.Warn().Str("reason", res.Error).Msg("autosync: sync skipped")
		return
	}
	log.Info().Time("synced_at", *res.SyncedAt).Msg("autosync: snapshot uploaded")
}
