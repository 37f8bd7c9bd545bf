package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/apierror"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/cloud"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/dto"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/infra"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/settings"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/store"

	"github.com/rs/zerolog/log"
)

// Messages reported in SyncResult.Error.
const (
	MsgNotSignedIn     = "Not signed in"
	MsgOffline         = "No internet connection"
	MsgSyncDisabled    = "Cloud sync is not configured"
	MsgSyncInProgress  = "Sync already in progress"
	MsgSyncUnavailable = "Cloud backup is temporarily unavailable"
)

// RemoteBackup is a downloaded snapshot that has not been applied yet.
type RemoteBackup struct {
	Info     dto.RemoteBackup
	Snapshot *Snapshot
}

// SyncService pushes full database snapshots to a cloud Provider. The last
// device to sync wins; there is no merge.
//
//	SignedOut --SignIn--> SignedIn(never synced) --Sync--> SignedIn(lastSyncedAt)
//	any --SignOut--> SignedOut (local sync metadata cleared, data kept)
type SyncService interface {
	// Configure swaps the provider; nil disables sync.
	Configure(p cloud.Provider)
	SignIn(ctx context.Context) (string, error)
	SignOut(ctx context.Context) error
	Sync(ctx context.Context) dto.SyncResult
	CheckExistingBackup(ctx context.Context) (*RemoteBackup, error)
	RestoreFromBackup(ctx context.Context, snap *Snapshot) (int64, error)
	IsOnline(ctx context.Context) bool
	Status(ctx context.Context) (*dto.SyncStatus, error)
}

type SyncConfig struct {
	Connectivity cloud.Connectivity
	Breaker      *infra.CircuitBreaker
	Now          func() time.Time
}

type syncService struct {
	st  *store.Store
	kv  settings.Store
	cfg SyncConfig

	mu       sync.RWMutex
	provider cloud.Provider

	running sync.Mutex
}

func NewSyncService(st *store.Store, kv settings.Store, provider cloud.Provider, cfg SyncConfig) SyncService {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Breaker == nil {
		cfg.Breaker = infra.NewCircuitBreaker(infra.DefaultCBConfig())
	}
	if cfg.Connectivity == nil {
		cfg.Connectivity = cloud.ConnectivityFunc(func(context.Context) bool { return true })
	}
	return &syncService{st: st, kv: kv, cfg: cfg, provider: provider}
}

func (s *syncService) Configure(p cloud.Provider) {
	s.mu.Lock()
	s.provider = p
	s.mu.Unlock()
}

// active returns the provider, or ErrSyncDisabled when there is none or it
// lacks credentials.
func (s *syncService) active() (cloud.Provider, error) {
	s.mu.RLock()
	p := s.provider
	s.mu.RUnlock()
	if p == nil || !p.Configured() {
		return nil, apierror.ErrSyncDisabled
	}
	return p, nil
}

func (s *syncService) account(ctx context.Context) (string, error) {
	v, _, err := s.kv.Get(ctx, settings.KeySyncAccount)
	return v, err
}

func (s *syncService) IsOnline(ctx context.Context) bool {
	return s.cfg.Connectivity.Online(ctx)
}

func (s *syncService) SignIn(ctx context.Context) (string, error) {
	p, err := s.active()
	if err != nil {
		return "", err
	}
	if !s.IsOnline(ctx) {
		return "", apierror.ErrNetworkUnavailable
	}
	var account string
	err = s.cfg.Breaker.Execute(func() error {
		var err error
		account, err = p.SignIn(ctx)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("sign in: %w", err)
	}
	if err := s.kv.Set(ctx, settings.KeySyncAccount, account); err != nil {
		return "", err
	}
	log.Info().Str("account", account).Msg("cloud sync signed in")
	return account, nil
}

func (s *syncService) SignOut(ctx context.Context) error {
	if p, err := s.active(); err == nil {
		if err := p.SignOut(ctx); err != nil {
			return fmt.Errorf("sign out: %w", err)
		}
	}
	if err := s.kv.Delete(ctx, settings.KeySyncAccount, settings.KeyLastSyncedAt); err != nil {
		return err
	}
	log.Info().Msg("cloud sync signed out")
	return nil
}

// Sync uploads a fresh snapshot. Preconditions are checked in order (provider,
// sign-in, connectivity) before anything touches the network, and a failed
// upload is reported, never retried. lastSyncedAt moves only on success.
func (s *syncService) Sync(ctx context.Context) dto.SyncResult {
	if !s.running.TryLock() {
		return dto.SyncResult{Error: MsgSyncInProgress}
	}
	defer s.running.Unlock()

	p, err := s.active()
	if err != nil {
		return dto.SyncResult{Error: MsgSyncDisabled}
	}
	account, err := s.account(ctx)
	if err != nil {
		return dto.SyncResult{Error: err.Error()}
	}
	if account == "" {
		return dto.SyncResult{Error: MsgNotSignedIn}
	}
	if !s.IsOnline(ctx) {
		return dto.SyncResult{Error: MsgOffline}
	}

	now := s.cfg.Now()
	snap, err := BuildSnapshot(ctx, s.st, now)
	if err != nil {
		log.Error().Err(err).Msg("sync: build snapshot")
		return dto.SyncResult{Error: err.Error()}
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return dto.SyncResult{Error: err.Error()}
	}

	err = s.cfg.Breaker.Execute(func() error { return p.Upload(ctx, data) })
	if errors.Is(err, infra.ErrCircuitOpen) {
		return dto.SyncResult{Error: MsgSyncUnavailable}
	}
	if err != nil {
		err = fmt.Errorf("%w: %w", apierror.ErrUploadFailed, err)
		log.Error().Err(err).Str("account", account).Msg("sync: upload")
		return dto.SyncResult{Error: err.Error()}
	}

	syncedAt := now.UTC()
	if err := s.kv.Set(ctx, settings.KeyLastSyncedAt, syncedAt.Format(time.RFC3339Nano)); err != nil {
		log.Error().Err(err).Msg("sync: record last synced time")
	}
	log.Info().Str("account", account).Int64("records", snap.Records()).Int("bytes", len(data)).Msg("sync completed")
	return dto.SyncResult{Success: true, SyncedAt: &syncedAt}
}

func (s *syncService) download(ctx context.Context) (*cloud.RemoteFile, error) {
	p, err := s.active()
	if err != nil {
		return nil, err
	}
	account, err := s.account(ctx)
	if err != nil {
		return nil, err
	}
	if account == "" {
		return nil, apierror.ErrNotSignedIn
	}
	if !s.IsOnline(ctx) {
		return nil, apierror.ErrNetworkUnavailable
	}
	var f *cloud.RemoteFile
	err = s.cfg.Breaker.Execute(func() error {
		var err error
		f, err = p.Download(ctx)
		if errors.Is(err, cloud.ErrNoRemoteFile) {
			return nil
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apierror.ErrSyncFailed, err)
	}
	return f, nil
}

// CheckExistingBackup downloads the remote snapshot so the caller can offer
// "restore" or "overwrite". Nothing is applied. A missing remote file gives
// Info.Exists == false and a nil Snapshot.
func (s *syncService) CheckExistingBackup(ctx context.Context) (*RemoteBackup, error) {
	f, err := s.download(ctx)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return &RemoteBackup{}, nil
	}
	snap, err := ParseSnapshot(bytes.NewReader(f.Data))
	if err != nil {
		return nil, err
	}
	info := dto.RemoteBackup{
		Exists:    true,
		CreatedAt: snap.CreatedAt,
		Version:   snap.Version,
		Records:   snap.Records(),
	}
	if !f.ModifiedAt.IsZero() {
		mod := f.ModifiedAt
		info.ModifiedAt = &mod
	}
	for _, name := range BackupTables {
		if rows, ok := snap.Tables[name]; ok {
			info.Tables = append(info.Tables, dto.TableCount{Table: name, Count: int64(len(rows))})
		}
	}
	return &RemoteBackup{Info: info, Snapshot: snap}, nil
}

// RestoreFromBackup applies an already downloaded snapshot exactly like a
// file import.
func (s *syncService) RestoreFromBackup(ctx context.Context, snap *Snapshot) (int64, error) {
	if snap == nil {
		return 0, fmt.Errorf("%w: no snapshot", apierror.ErrInvalidFormat)
	}
	n, err := RestoreSnapshot(ctx, s.st, snap)
	if err != nil {
		return 0, err
	}
	log.Info().Int64("records", n).Str("backup_created_at", snap.CreatedAt).Msg("restored from cloud backup")
	return n, nil
}

func (s *syncService) Status(ctx context.Context) (*dto.SyncStatus, error) {
	_, err := s.active()
	st := &dto.SyncStatus{Configured: err == nil}
	account, err := s.account(ctx)
	if err != nil {
		return nil, err
	}
	st.Account = account
	st.SignedIn = account != ""

	last, ok, err := s.kv.Get(ctx, settings.KeyLastSyncedAt)
	if err != nil {
		return nil, err
	}
	if ok {
		if t, err := time.Parse(time.RFC3339Nano, last); err == nil {
			st.LastSyncedAt = &t
		}
	}
	return st, nil
}
