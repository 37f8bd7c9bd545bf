package service

import (
	"context"
	"sort"
	"time"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/dto"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/model"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/repository"

	"github.com/shopspring/decimal"
)

// ReportService computes read-only summaries in memory from committed rows.
// Cancelled bills never count. Empty data gives zero values and empty slices.
type ReportService interface {
	// SalesReport covers bills created in [from, to]; a zero time is unbounded.
	SalesReport(ctx context.Context, from, to time.Time) (*dto.SalesReport, error)
	CreditReport(ctx context.Context) (*dto.CreditReport, error)
	InventoryReport(ctx context.Context) (*dto.InventoryReport, error)
	// ProductPerformance ranks products by revenue, highest first.
	ProductPerformance(ctx context.Context, from, to time.Time) ([]dto.ProductPerformance, error)
}

type reportService struct {
	repos *repository.Repositories
	loc   *time.Location
}

func NewReportService(repos *repository.Repositories, loc *time.Location) ReportService {
	if loc == nil {
		loc = time.Local
	}
	return &reportService{repos: repos, loc: loc}
}

var paymentModeOrder = []model.PaymentMode{
	model.PaymentCash, model.PaymentUPI, model.PaymentCard, model.PaymentCredit, model.PaymentMixed,
}

func (s *reportService) completedBills(ctx context.Context, from, to time.Time) ([]model.Bill, error) {
	lo, hi := window(from, to)
	return s.repos.Bills.List(ctx, repository.BillQuery{From: lo, To: hi, Status: model.BillCompleted})
}

func (s *reportService) SalesReport(ctx context.Context, from, to time.Time) (*dto.SalesReport, error) {
	bills, err := s.completedBills(ctx, from, to)
	if err != nil {
		return nil, err
	}

	rep := &dto.SalesReport{
		TotalSales:     decimal.Zero,
		AverageBill:    decimal.Zero,
		DailyBreakdown: []dto.DailySales{},
		ByPaymentMode:  []dto.PaymentModeTotal{},
	}
	days := map[string]*dto.DailySales{}
	modes := map[model.PaymentMode]*dto.PaymentModeTotal{}
	for _, b := range bills {
		rep.TotalSales = rep.TotalSales.Add(b.GrandTotal)
		rep.TotalBills++

		key := b.Created(s.loc).Format(dateLayout)
		d, ok := days[key]
		if !ok {
			d = &dto.DailySales{Date: key, Total: decimal.Zero}
			days[key] = d
		}
		d.Total = d.Total.Add(b.GrandTotal)
		d.Count++

		m, ok := modes[b.PaymentMode]
		if !ok {
			m = &dto.PaymentModeTotal{Mode: string(b.PaymentMode), Total: decimal.Zero}
			modes[b.PaymentMode] = m
		}
		m.Total = m.Total.Add(b.GrandTotal)
		m.Count++
	}
	if rep.TotalBills > 0 {
		rep.AverageBill = rep.TotalSales.Div(decimal.NewFromInt(int64(rep.TotalBills))).Round(2)
	}

	for _, d := range days {
		rep.DailyBreakdown = append(rep.DailyBreakdown, *d)
	}
	sort.Slice(rep.DailyBreakdown, func(i, j int) bool {
		return rep.DailyBreakdown[i].Date < rep.DailyBreakdown[j].Date
	})
	for _, mode := range paymentModeOrder {
		if m, ok := modes[mode]; ok {
			rep.ByPaymentMode = append(rep.ByPaymentMode, *m)
		}
	}
	return rep, nil
}

// CreditReport lists customers with a non-zero balance, largest first.
func (s *reportService) CreditReport(ctx context.Context) (*dto.CreditReport, error) {
	balances, err := s.repos.Credit.OutstandingByCustomer(ctx)
	if err != nil {
		return nil, err
	}
	customers, err := s.repos.Customers.List(ctx, dto.CustomerFilter{Active: "all"})
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(customers))
	for _, c := range customers {
		names[c.ID] = c.Name
	}

	rep := &dto.CreditReport{TotalOutstanding: decimal.Zero, Customers: []dto.CustomerCredit{}}
	for id, bal := range balances {
		if bal.IsZero() {
			continue
		}
		rep.TotalOutstanding = rep.TotalOutstanding.Add(bal)
		rep.Customers = append(rep.Customers, dto.CustomerCredit{
			CustomerID:   id,
			CustomerName: names[id],
			Outstanding:  bal,
		})
	}
	sort.Slice(rep.Customers, func(i, j int) bool {
		a, b := rep.Customers[i], rep.Customers[j]
		if !a.Outstanding.Equal(b.Outstanding) {
			return a.Outstanding.GreaterThan(b.Outstanding)
		}
		return a.CustomerID < b.CustomerID
	})
	return rep, nil
}

// InventoryReport covers active products only.
func (s *reportService) InventoryReport(ctx context.Context) (*dto.InventoryReport, error) {
	products, err := s.repos.Products.List(ctx, dto.ProductFilter{})
	if err != nil {
		return nil, err
	}
	rep := &dto.InventoryReport{
		TotalStockValue: decimal.Zero,
		TotalCostValue:  decimal.Zero,
		LowStock:        []dto.ProductResponse{},
	}
	for i := range products {
		p := &products[i]
		rep.TotalProducts++
		rep.TotalStockValue = rep.TotalStockValue.Add(p.StockValue())
		rep.TotalCostValue = rep.TotalCostValue.Add(p.CostValue())
		switch {
		case p.IsOutOfStock():
			rep.OutOfStockCount++
		case p.IsLowStock():
			rep.LowStockCount++
			rep.LowStock = append(rep.LowStock, ProductToResponse(p))
		}
	}
	return rep, nil
}

func (s *reportService) ProductPerformance(ctx context.Context, from, to time.Time) ([]dto.ProductPerformance, error) {
	bills, err := s.completedBills(ctx, from, to)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(bills))
	for i, b := range bills {
		ids[i] = b.ID
	}
	items, err := s.repos.Bills.ItemsForBills(ctx, ids)
	if err != nil {
		return nil, err
	}

	byProduct := map[string]*dto.ProductPerformance{}
	for _, it := range items {
		p, ok := byProduct[it.ProductID]
		if !ok {
			p = &dto.ProductPerformance{ProductID: it.ProductID, QuantitySold: decimal.Zero, Revenue: decimal.Zero}
			byProduct[it.ProductID] = p
		}
		// Items come back oldest first, so the newest name snapshot wins.
		p.ProductName = it.ProductName
		p.QuantitySold = p.QuantitySold.Add(it.Quantity)
		p.Revenue = p.Revenue.Add(it.LineTotal)
	}

	out := make([]dto.ProductPerformance, 0, len(byProduct))
	for _, p := range byProduct {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Revenue.Equal(out[j].Revenue) {
			return out[i].Revenue.GreaterThan(out[j].Revenue)
		}
		return out[i].ProductName < out[j].ProductName
	})
	return out, nil
}
