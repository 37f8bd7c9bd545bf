package service_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/apierror"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/dto"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/schema"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSharer struct {
	paths []string
	err   error
}

func (s *recordingSharer) Share(_ context.Context, path string) error {
	s.paths = append(s.paths, path)
	return s.err
}

// populate writes one of everything.
func populate(t *testing.T, f *fixture) {
	t.Helper()
	ctx := context.Background()
	cat, err := f.categories.Create(ctx, dto.CategoryRequest{Name: "Dairy"})
	require.NoError(t, err)
	milk, err := f.products.Create(ctx, dto.CreateProductRequest{
		Name: "Milk 500ml", CategoryID: &cat.ID, PurchasePrice: dec("24"), SellingPrice: dec("27.5"),
		OpeningStock: dec("40"), LowStockThreshold: dec("10"), Unit: "packet", Barcode: strPtr("89000111"),
	})
	require.NoError(t, err)
	c := f.customer(t, "Lata")
	f.sell(t, "cash", nil, line(milk, "2"))
	f.sell(t, "credit", &c.ID, line(milk, "0.5"))
	_, err = f.credit.AddCreditPayment(ctx, c.ID, dto.CreditPaymentRequest{Amount: dec("5"), Note: "cash"})
	require.NoError(t, err)
}

func newBackup(f *fixture, sharer service.Sharer) service.BackupService {
	return service.NewBackupService(f.st, service.BackupConfig{
		Dir:      filepath.Join(f.dir, "backups"),
		Sharer:   sharer,
		Now:      f.clk.Now,
		Location: ist,
	})
}

func TestBackup_ExportImportRoundTrip(t *testing.T) {
	src := newFixture(t)
	populate(t, src)
	ctx := context.Background()

	sharer := &recordingSharer{err: service.ErrShareCancelled}
	exp, err := newBackup(src, sharer).ExportData(ctx)
	require.NoError(t, err, "a cancelled share is not a failure")
	assert.Equal(t, "kiranamitra-backup-20261015-100000.json", filepath.Base(exp.Path))
	assert.Equal(t, []string{exp.Path}, sharer.paths)

	raw, err := os.ReadFile(exp.Path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.EqualValues(t, 1, doc["version"])
	assert.Contains(t, doc, "createdAt")

	dst := newFixture(t)
	dst.customer(t, "Will be replaced")
	imp, err := newBackup(dst, nil).ImportData(ctx, service.FilePath(exp.Path))
	require.NoError(t, err)
	assert.True(t, imp.Imported)
	assert.Equal(t, exp.Records, imp.Records)
	assert.Equal(t, src.counts(t), dst.counts(t))

	at := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	a, err := service.BuildSnapshot(ctx, src.st, at)
	require.NoError(t, err)
	b, err := service.BuildSnapshot(ctx, dst.st, at)
	require.NoError(t, err)
	ja, _ := json.Marshal(a)
	jb, _ := json.Marshal(b)
	assert.JSONEq(t, string(ja), string(jb))

	// restored data is live: balances and numbering carry on
	customers, err := dst.customers.List(ctx, dto.CustomerFilter{})
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.True(t, customers[0].Outstanding.Equal(dec("8.75")))
}

func TestBackup_Info(t *testing.T) {
	f := newFixture(t)
	populate(t, f)

	info, err := newBackup(f, nil).GetBackupInfo(context.Background())
	require.NoError(t, err)
	require.Len(t, info.Tables, len(service.BackupTables))
	assert.Equal(t, schema.TableCustomers, info.Tables[0].Table)
	var sum int64
	for _, tc := range info.Tables {
		sum += tc.Count
	}
	assert.Equal(t, sum, info.TotalRecords)
	assert.Positive(t, info.TotalRecords)
}

func TestBackup_ShareFailure(t *testing.T) {
	f := newFixture(t)
	_, err := newBackup(f, &recordingSharer{err: errors.New("no app")}).ExportData(context.Background())
	assert.Error(t, err)
}

func TestImport_PickerCancelledIsNoop(t *testing.T) {
	f := newFixture(t)
	f.customer(t, "Stays")
	before := f.counts(t)

	picker := service.PickerFunc(func(context.Context) (io.ReadCloser, error) { return nil, service.ErrPickerCancelled })
	res, err := newBackup(f, nil).ImportData(context.Background(), picker)
	require.NoError(t, err)
	assert.False(t, res.Imported)
	assert.Equal(t, before, f.counts(t))
}

func TestImport_InvalidDocumentsChangeNothing(t *testing.T) {
	f := newFixture(t)
	populate(t, f)
	before := f.counts(t)

	docs := map[string]string{
		"not json":           "{",
		"missing version":    `{"tables":{}}`,
		"missing tables":     `{"version":1}`,
		"fractional version": `{"version":1.5,"tables":{}}`,
		"row without id":     `{"version":1,"tables":{"customers":[{"name":"x"}]}}`,
	}
	for name, doc := range docs {
		_, err := newBackup(f, nil).ImportData(context.Background(), service.ReaderPicker(strings.NewReader(doc)))
		require.Error(t, err, name)
		assert.Equal(t, before, f.counts(t), name)
	}

	_, err := newBackup(f, nil).ImportData(context.Background(), service.ReaderPicker(strings.NewReader(`{"tables":{}}`)))
	assert.ErrorIs(t, err, apierror.ErrInvalidFormat)
}

func TestParseSnapshot_SkipsNonArrayTables(t *testing.T) {
	snap, err := service.ParseSnapshot(bytes.NewBufferString(`{
		"version": 1,
		"createdAt": "2026-10-15T04:30:00Z",
		"tables": {"customers": [{"id": "c1", "name": "A", "is_active": true, "created_at": 1, "updated_at": 1}], "bills": {"oops": 1}}
	}`))
	require.NoError(t, err)
	assert.Len(t, snap.Tables, 1)
	assert.EqualValues(t, 1, snap.Records())
}

func TestRestore_MissingTablesEndEmpty(t *testing.T) {
	f := newFixture(t)
	populate(t, f)

	snap, err := service.ParseSnapshot(strings.NewReader(`{"version":1,"tables":{"customers":[
		{"id":"c1","name":"Only","phone":"","address":"","notes":"","is_active":1,"created_at":5,"updated_at":5}]}}`))
	require.NoError(t, err)
	n, err := service.RestoreSnapshot(context.Background(), f.st, snap)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	counts := f.counts(t)
	assert.EqualValues(t, 1, counts[schema.TableCustomers])
	assert.Zero(t, counts[schema.TableBills])
	assert.Zero(t, counts[schema.TableProducts])

	c, err := f.customers.Get(context.Background(), "c1")
	require.NoError(t, err)
	assert.True(t, c.IsActive)
}

func TestRestore_FromDeviceWithClockAheadKeepsLedgerOrder(t *testing.T) {
	ctx := context.Background()
	src := newFixture(t)
	src.clk.Set(time.Date(2026, 10, 15, 11, 0, 0, 0, ist))
	rice := src.product(t, "Rice 1kg", "300", "10", "2")
	c := src.customer(t, "Lata")
	src.sell(t, "credit", &c.ID, line(rice, "1"))

	snap, err := service.BuildSnapshot(ctx, src.st, src.clk.Now())
	require.NoError(t, err)
	raw, err := json.Marshal(snap)
	require.NoError(t, err)
	parsed, err := service.ParseSnapshot(bytes.NewReader(raw))
	require.NoError(t, err)

	dst := newFixture(t) // an hour behind the source
	_, err = service.RestoreSnapshot(ctx, dst.st, parsed)
	require.NoError(t, err)

	first, err := dst.credit.AddCreditPayment(ctx, c.ID, dto.CreditPaymentRequest{Amount: dec("100")})
	require.NoError(t, err)
	assert.True(t, first.BalanceAfter.Equal(dec("200")), first.BalanceAfter.String())

	second, err := dst.credit.AddCreditPayment(ctx, c.ID, dto.CreditPaymentRequest{Amount: dec("100")})
	require.NoError(t, err)
	assert.True(t, second.BalanceAfter.Equal(dec("100")), second.BalanceAfter.String())

	owed, err := dst.credit.GetOutstandingCredit(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, owed.Equal(dec("100")), owed.String())
}

func TestRestore_NonUUIDIDsUsableInRequests(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	snap, err := service.ParseSnapshot(strings.NewReader(`{"version":1,"tables":{
		"customers":[{"id":"cust-1","name":"Lata","phone":"","address":"","notes":"","is_active":true,"created_at":5,"updated_at":5}],
		"categories":[{"id":"cat-1","name":"Grains","icon":"","is_active":true,"created_at":5,"updated_at":5}],
		"products":[{"id":"prod-1","name":"Rice 1kg","category_id":"cat-1","purchase_price":50,"selling_price":60,
			"current_stock":10,"low_stock_threshold":2,"barcode":null,"unit":"kg","is_active":true,"created_at":5,"updated_at":5}]}}`))
	require.NoError(t, err)
	_, err = service.RestoreSnapshot(ctx, f.st, snap)
	require.NoError(t, err)

	products, err := f.products.List(ctx, dto.ProductFilter{CategoryID: "cat-1"})
	require.NoError(t, err)
	require.Len(t, products, 1)

	d := f.sell(t, "credit", strPtr("cust-1"), dto.CartItem{ProductID: "prod-1", Quantity: dec("2")})
	assert.True(t, d.Bill.GrandTotal.Equal(dec("120")), d.Bill.GrandTotal.String())

	_, err = f.credit.AddCreditPayment(ctx, "cust-1", dto.CreditPaymentRequest{Amount: dec("20")})
	require.NoError(t, err)
	owed, err := f.credit.GetOutstandingCredit(ctx, "cust-1")
	require.NoError(t, err)
	assert.True(t, owed.Equal(dec("100")), owed.String())

	bills, err := f.bills.ListBills(ctx, dto.BillFilter{CustomerID: "cust-1"})
	require.NoError(t, err)
	assert.Len(t, bills, 1)
}
