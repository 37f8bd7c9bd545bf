package service_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/dto"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/model"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/repository"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/schema"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/service"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/settings"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// ist avoids depending on the tz database in tests.
var ist = time.FixedZone("IST", 5*3600+30*60)

// clock is a settable clock shared by the store and the services.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

type fixture struct {
	st    *store.Store
	kv    settings.Store
	repos *repository.Repositories
	clk   *clock
	dir   string

	bills      service.BillService
	credit     service.CreditService
	customers  service.CustomerService
	categories service.CategoryService
	products   service.ProductService
	inventory  service.InventoryService
	reports    service.ReportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	clk := &clock{now: time.Date(2026, 10, 15, 10, 0, 0, 0, ist)}
	st, err := store.Open(filepath.Join(dir, "shop.db"), schema.App, store.Options{Now: clk.Now})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	kv, err := settings.NewDBStore(st.DB())
	require.NoError(t, err)
	repos := repository.New(st)

	return &fixture{
		st:         st,
		kv:         kv,
		repos:      repos,
		clk:        clk,
		dir:        dir,
		bills:      service.NewBillService(st, repos, kv, service.BillConfig{Prefix: "KM", Location: ist}),
		credit:     service.NewCreditService(st, repos),
		customers:  service.NewCustomerService(st, repos),
		categories: service.NewCategoryService(st, repos),
		products:   service.NewProductService(st, repos),
		inventory:  service.NewInventoryService(st, repos),
		reports:    service.NewReportService(repos, ist),
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func strPtr(s string) *string { return &s }

func (f *fixture) product(t *testing.T, name, price, stock, threshold string) *model.Product {
	t.Helper()
	p, err := f.products.Create(context.Background(), dto.CreateProductRequest{
		Name:              name,
		PurchasePrice:     dec(price).Mul(dec("0.8")),
		SellingPrice:      dec(price),
		OpeningStock:      dec(stock),
		LowStockThreshold: dec(threshold),
		Unit:              "piece",
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) customer(t *testing.T, name string) *model.Customer {
	t.Helper()
	c, err := f.customers.Create(context.Background(), dto.CreateCustomerRequest{Name: name})
	require.NoError(t, err)
	return c
}

func (f *fixture) sell(t *testing.T, mode string, customerID *string, lines ...dto.CartItem) *service.BillDetail {
	t.Helper()
	d, err := f.bills.CreateBill(context.Background(), dto.CreateBillRequest{
		Items:       lines,
		PaymentMode: mode,
		CustomerID:  customerID,
	})
	require.NoError(t, err)
	return d
}

func line(p *model.Product, qty string) dto.CartItem {
	return dto.CartItem{ProductID: p.ID, Quantity: dec(qty)}
}

// counts snapshots the row count of every backup table.
func (f *fixture) counts(t *testing.T) map[string]int64 {
	t.Helper()
	out := map[string]int64{}
	for _, name := range service.BackupTables {
		n, err := f.st.Count(context.Background(), name)
		require.NoError(t, err)
		out[name] = n
	}
	return out
}

func (f *fixture) stock(t *testing.T, id string) decimal.Decimal {
	t.Helper()
	p, err := f.products.Get(context.Background(), id)
	require.NoError(t, err)
	return p.CurrentStock
}
