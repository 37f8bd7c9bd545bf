package service

import (
	"fmt"
	"time"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/dto"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/model"
)

const dateLayout = "2006-01-02"

// DayRange turns inclusive local dates ("2024-03-01") into an epoch-ms window
// covering whole days in loc. Empty strings leave that side unbounded.
func DayRange(from, to string, loc *time.Location) (*int64, *int64, error) {
	var lo, hi *int64
	if from != "" {
		t, err := time.ParseInLocation(dateLayout, from, loc)
		if err != nil {
			return nil, nil, dto.Invalid("from", "datetime")
		}
		ms := t.UnixMilli()
		lo = &ms
	}
	if to != "" {
		t, err := time.ParseInLocation(dateLayout, to, loc)
		if err != nil {
			return nil, nil, dto.Invalid("to", "datetime")
		}
		ms := t.AddDate(0, 0, 1).UnixMilli() - 1
		hi = &ms
	}
	if lo != nil && hi != nil && *lo > *hi {
		return nil, nil, dto.Invalid("to", "gtefield=from")
	}
	return lo, hi, nil
}

// DayTimes is DayRange as times; an unbounded side is the zero time.
func DayTimes(from, to string, loc *time.Location) (time.Time, time.Time, error) {
	lo, hi, err := DayRange(from, to, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	var a, b time.Time
	if lo != nil {
		a = time.UnixMilli(*lo)
	}
	if hi != nil {
		b = time.UnixMilli(*hi)
	}
	return a, b, nil
}

// window converts an optional time range to epoch-ms bounds.
func window(from, to time.Time) (*int64, *int64) {
	var lo, hi *int64
	if !from.IsZero() {
		ms := from.UnixMilli()
		lo = &ms
	}
	if !to.IsZero() {
		ms := to.UnixMilli()
		hi = &ms
	}
	return lo, hi
}

func formatMillis(ms int64, loc *time.Location) string {
	return time.UnixMilli(ms).In(loc).Format(time.RFC3339)
}

func billRef(number string) string {
	return fmt.Sprintf("Bill %s", number)
}

// ─── Response mapping ────────────────────────────────────────────────────────

func BillToResponse(b *model.Bill, items []model.BillItem, loc *time.Location) *dto.BillResponse {
	resp := &dto.BillResponse{
		ID:            b.ID,
		BillNumber:    b.BillNumber,
		CustomerID:    b.CustomerID,
		Subtotal:      b.Subtotal,
		DiscountTotal: b.DiscountTotal,
		GrandTotal:    b.GrandTotal,
		PaymentMode:   string(b.PaymentMode),
		Status:        string(b.Status),
		Notes:         b.Notes,
		CreatedAt:     formatMillis(b.CreatedAt, loc),
	}
	for _, it := range items {
		resp.Items = append(resp.Items, dto.BillItemResponse{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Discount:    it.Discount,
			LineTotal:   it.LineTotal,
		})
	}
	return resp
}

func ProductToResponse(p *model.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:                p.ID,
		Name:              p.Name,
		CategoryID:        p.CategoryID,
		PurchasePrice:     p.PurchasePrice,
		SellingPrice:      p.SellingPrice,
		CurrentStock:      p.CurrentStock,
		LowStockThreshold: p.LowStockThreshold,
		Barcode:           p.Barcode,
		Unit:              string(p.Unit),
		IsActive:          p.IsActive,
		IsLowStock:        p.IsLowStock(),
		IsOutOfStock:      p.IsOutOfStock(),
	}
}

func CreditEntryToResponse(e *model.CreditEntry, loc *time.Location) dto.CreditEntryResponse {
	return dto.CreditEntryResponse{
		ID:           e.ID,
		BillID:       e.BillID,
		EntryType:    string(e.EntryType),
		Amount:       e.Amount,
		BalanceAfter: e.BalanceAfter,
		Notes:        e.Notes,
		CreatedAt:    formatMillis(e.CreatedAt, loc),
	}
}
