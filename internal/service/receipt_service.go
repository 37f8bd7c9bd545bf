package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/dto"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/infra"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/model"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/repository"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/settings"
)

// DefaultShopName is printed until a store profile is saved.
const DefaultShopName = "KiranaMitra"

type ReceiptService interface {
	Profile(ctx context.Context) (*dto.StoreProfile, error)
	SetProfile(ctx context.Context, p dto.StoreProfile) error
	Receipt(ctx context.Context, billID string) (*infra.Receipt, error)
	WritePDF(ctx context.Context, billID string, w io.Writer) error
	// SavePDF writes the receipt into the receipt directory.
	SavePDF(ctx context.Context, billID string) (string, error)
}

type receiptService struct {
	bills BillService
	repos *repository.Repositories
	kv    settings.Store
	dir   string
	loc   *time.Location
}

func NewReceiptService(bills BillService, repos *repository.Repositories, kv settings.Store, dir string, loc *time.Location) ReceiptService {
	if loc == nil {
		loc = time.Local
	}
	return &receiptService{bills: bills, repos: repos, kv: kv, dir: dir, loc: loc}
}

func (s *receiptService) Profile(ctx context.Context) (*dto.StoreProfile, error) {
	raw, ok, err := s.kv.Get(ctx, settings.KeyStoreProfile)
	if err != nil {
		return nil, err
	}
	p := &dto.StoreProfile{Name: DefaultShopName}
	if !ok {
		return p, nil
	}
	if err := json.Unmarshal([]byte(raw), p); err != nil {
		return nil, fmt.Errorf("store profile setting: %w", err)
	}
	return p, nil
}

func (s *receiptService) SetProfile(ctx context.Context, p dto.StoreProfile) error {
	if err := dto.Validate(p); err != nil {
		return err
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, settings.KeyStoreProfile, string(raw))
}

func (s *receiptService) Receipt(ctx context.Context, billID string) (*infra.Receipt, error) {
	detail, err := s.bills.GetBill(ctx, billID)
	if err != nil {
		return nil, err
	}
	profile, err := s.Profile(ctx)
	if err != nil {
		return nil, err
	}

	b := detail.Bill
	r := &infra.Receipt{
		ShopName:    profile.Name,
		Address:     profile.Address,
		Phone:       profile.Phone,
		GSTIN:       profile.GSTIN,
		Footer:      profile.Footer,
		BillNumber:  b.BillNumber,
		Date:        b.Created(s.loc),
		Subtotal:    b.Subtotal,
		Discount:    b.DiscountTotal,
		GrandTotal:  b.GrandTotal,
		PaymentMode: string(b.PaymentMode),
		Cancelled:   b.Status == model.BillCancelled,
	}
	if b.CustomerID != nil {
		// Deactivated customers still resolve; a missing one prints as walk-in.
		if c, err := s.repos.Customers.FindByID(ctx, *b.CustomerID); err == nil {
			r.Customer = c.Name
		}
	}
	for _, it := range detail.Items {
		r.Lines = append(r.Lines, infra.ReceiptLine{
			Name:      it.ProductName,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Discount:  it.Discount,
			Total:     it.LineTotal,
		})
	}
	return r, nil
}

func (s *receiptService) WritePDF(ctx context.Context, billID string, w io.Writer) error {
	r, err := s.Receipt(ctx, billID)
	if err != nil {
		return err
	}
	return infra.WriteReceiptPDF(r, w)
}

func (s *receiptService) SavePDF(ctx context.Context, billID string) (string, error) {
	r, err := s.Receipt(ctx, billID)
	if err != nil {
		return "", err
	}
	return infra.SaveReceiptPDF(r, s.dir)
}
