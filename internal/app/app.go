// Package app is the composition root: it opens the database and settings
// backend and builds every service once, for both the API server and the CLI.
package app

import (
	"context"
	"errors"
	"time"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/cloud"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/config"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/infra"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/repository"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/service"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/settings"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/store"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/worker"

	"github.com/redis/go-redis/v9"
)

// App holds the opened infrastructure and the services built on it.
type App struct {
	Config   *config.Config
	Location *time.Location

	Store    *store.Store
	Redis    *redis.Client // nil unless settings live in Redis
	Settings settings.Store
	Repos    *repository.Repositories
	Provider *cloud.Drive
	Breaker  *infra.CircuitBreaker

	Auth       service.AuthService
	Bills      service.BillService
	Credit     service.CreditService
	Customers  service.CustomerService
	Categories service.CategoryService
	Products   service.ProductService
	Inventory  service.InventoryService
	Reports    service.ReportService
	Receipts   service.ReceiptService
	Backup     service.BackupService
	Sync       service.SyncService
	Seed       service.SeedService
}

// Options tweaks New for callers other than the server.
type Options struct {
	// Sharer receives exported backup files; nil keeps them on disk only.
	Sharer service.Sharer
}

// New opens the database and wires every service. Close releases it.
func New(cfg *config.Config, opts Options) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	st, err := infra.NewDatabase(cfg.DBPath, cfg.IsDevelopment())
	if err != nil {
		return nil, err
	}
	kv, rdb, err := infra.NewSettings(st, cfg.RedisURL)
	if err != nil {
		st.Close()
		return nil, err
	}

	a := &App{
		Config:   cfg,
		Location: loc,
		Store:    st,
		Redis:    rdb,
		Settings: kv,
		Repos:    repository.New(st),
		Provider: cloud.NewDrive(cfg.GoogleCredentialsFile, cfg.GoogleTokenFile),
		Breaker:  infra.NewCircuitBreaker(infra.DefaultCBConfig()),
	}

	a.Auth = service.NewAuthService(kv, service.AuthConfig{Secret: cfg.JWTSecret, TokenTTL: cfg.TokenTTL()})
	a.Bills = service.NewBillService(st, a.Repos, kv, service.BillConfig{Prefix: cfg.BillPrefix, Location: loc})
	a.Credit = service.NewCreditService(st, a.Repos)
	a.Customers = service.NewCustomerService(st, a.Repos)
	a.Categories = service.NewCategoryService(st, a.Repos)
	a.Products = service.NewProductService(st, a.Repos)
	a.Inventory = service.NewInventoryService(st, a.Repos)
	a.Reports = service.NewReportService(a.Repos, loc)
	a.Receipts = service.NewReceiptService(a.Bills, a.Repos, kv, cfg.ReceiptDir, loc)
	a.Backup = service.NewBackupService(st, service.BackupConfig{Dir: cfg.BackupDir, Sharer: opts.Sharer, Location: loc})
	a.Seed = service.NewSeedService(a.Categories, a.Products, a.Customers)

	var net cloud.Connectivity
	if cfg.ConnectivityURL != "" {
		net = cloud.NewHTTPProbe(cfg.ConnectivityURL, 3*time.Second)
	}
	a.Sync = service.NewSyncService(st, kv, a.Provider, service.SyncConfig{Connectivity: net, Breaker: a.Breaker})
	return a, nil
}

// StartAutoSync uploads a snapshot after local writes settle. It is a no-op
// when cloud sync is not configured or the debounce is zero.
func (a *App) StartAutoSync(ctx context.Context) error {
	if !a.Provider.Configured() || a.Config.SyncDebounce() <= 0 {
		return nil
	}
	return worker.NewAutoSync(worker.AutoSyncConfig{
		Store:    a.Store,
		Syncer:   a.Sync,
		Tables:   service.BackupTables,
		Debounce: a.Config.SyncDebounce(),
		CB:       a.Breaker,
	}).Start(ctx)
}

func (a *App) Close() error {
	var errs []error
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	errs = append(errs, a.Store.Close())
	return errors.Join(errs...)
}
