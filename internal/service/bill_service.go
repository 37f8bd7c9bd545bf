package service

import (
	"context"
	"fmt"
	"time"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/apierror"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/dto"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/model"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/repository"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/settings"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/store"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// BillDetail is a bill with its lines and payments.
type BillDetail struct {
	Bill     model.Bill
	Items    []model.BillItem
	Payments []model.Payment
}

type BillService interface {
	CreateBill(ctx context.Context, req dto.CreateBillRequest) (*BillDetail, error)
	CancelBill(ctx context.Context, id string) (*model.Bill, error)
	// GenerateBillNumber allocates the next number in its own transaction.
	GenerateBillNumber(ctx context.Context) (string, error)
	GetBill(ctx context.Context, id string) (*BillDetail, error)
	GetBillItems(ctx context.Context, id string) ([]model.BillItem, error)
	ListBills(ctx context.Context, filter dto.BillFilter) ([]model.Bill, error)
	ObserveRecentBills(limit int, cb func([]model.Bill)) (*store.Subscription, error)
}

// BillConfig: Prefix starts every bill number; Location decides which
// calendar day a bill belongs to.
type BillConfig struct {
	Prefix   string
	Location *time.Location
}

type billService struct {
	st    *store.Store
	repos *repository.Repositories
	kv    settings.Store
	cfg   BillConfig
}

func NewBillService(st *store.Store, repos *repository.Repositories, kv settings.Store, cfg BillConfig) BillService {
	if cfg.Prefix == "" {
		cfg.Prefix = "KM"
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &billService{st: st, repos: repos, kv: kv, cfg: cfg}
}

// ── Bill numbering ────────────────────────────────────────────────────────────
// <PREFIX>-<YYMMDD>-<NNNN>. The sequence restarts at 0001 whenever the stored
// last_bill_date is not today. With the SQLite settings store the counter
// commits or rolls back with the bill; with Redis an aborted bill leaves a gap.

func (s *billService) nextNumberTx(tx *store.Tx) (string, error) {
	ctx := tx.Context()
	kv := settings.Within(s.kv, tx.DB())
	today := time.UnixMilli(tx.Now()).In(s.cfg.Location)
	day := today.Format(dateLayout)

	last, _, err := kv.Get(ctx, settings.KeyLastBillDate)
	if err != nil {
		return "", fmt.Errorf("read last bill date: %w", err)
	}
	seq := 0
	if last == day {
		if seq, err = settings.GetInt(ctx, kv, settings.KeyBillSequence); err != nil {
			return "", fmt.Errorf("read bill sequence: %w", err)
		}
	}

	var number string
	for {
		seq++
		number = fmt.Sprintf("%s-%s-%04d", s.cfg.Prefix, today.Format("060102"), seq)
		// A restored backup can already hold numbers past the stored counter.
		taken, err := s.repos.Bills.NumberTakenTx(tx, number)
		if err != nil {
			return "", err
		}
		if !taken {
			break
		}
	}

	if err := settings.SetInt(ctx, kv, settings.KeyBillSequence, seq); err != nil {
		return "", fmt.Errorf("store bill sequence: %w", err)
	}
	if err := kv.Set(ctx, settings.KeyLastBillDate, day); err != nil {
		return "", fmt.Errorf("store last bill date: %w", err)
	}
	return number, nil
}

func (s *billService) GenerateBillNumber(ctx context.Context) (string, error) {
	return store.WriteResult(ctx, s.st, s.nextNumberTx)
}

// ── CreateBill ────────────────────────────────────────────────────────────────
// One transaction:
//   1. allocate the bill number
//   2. resolve every cart line against the product (name/price snapshot)
//   3. create the bill and its items, decrementing stock with a sale log per line
//   4. credit: post a ledger entry; otherwise record the payment
// Any error rolls all of it back, the number counter included.

type cartLine struct {
	product  *model.Product
	quantity decimal.Decimal
	price    decimal.Decimal
	discount decimal.Decimal
	total    decimal.Decimal
}

func (s *billService) CreateBill(ctx context.Context, req dto.CreateBillRequest) (*BillDetail, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	mode := model.PaymentMode(req.PaymentMode)
	var customerID *string
	if req.CustomerID != nil && *req.CustomerID != "" {
		id := *req.CustomerID
		customerID = &id
	}
	if mode == model.PaymentCredit && customerID == nil {
		return nil, dto.Invalid("customer_id", "required_if")
	}

	detail, err := store.WriteResult(ctx, s.st, func(tx *store.Tx) (*BillDetail, error) {
		number, err := s.nextNumberTx(tx)
		if err != nil {
			return nil, err
		}

		lines := make([]cartLine, 0, len(req.Items))
		computed := decimal.Zero
		for i, item := range req.Items {
			p, err := s.repos.Products.FindByIDTx(tx, item.ProductID)
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", i+1, err)
			}
			if !p.IsActive {
				return nil, fmt.Errorf("product %s is inactive and cannot be sold: %w", p.Name, apierror.ErrInvalidState)
			}
			price := p.SellingPrice
			if item.UnitPrice != nil {
				price = *item.UnitPrice
			}
			total := item.Quantity.Mul(price).Sub(item.Discount)
			if total.IsNegative() {
				return nil, dto.Invalid(fmt.Sprintf("items[%d].discount", i), "lte=line")
			}
			computed = computed.Add(total)
			lines = append(lines, cartLine{product: p, quantity: item.Quantity, price: price, discount: item.Discount, total: total})
		}

		subtotal := computed
		if req.Subtotal != nil {
			subtotal = *req.Subtotal
		}
		grand := subtotal.Sub(req.DiscountTotal)
		if req.GrandTotal != nil {
			grand = *req.GrandTotal
		}
		if grand.IsNegative() {
			return nil, dto.Invalid("discount_total", "lte=subtotal")
		}

		bill, err := s.repos.Bills.CreateTx(tx, func(b *model.Bill) {
			b.BillNumber = number
			b.CustomerID = customerID
			b.Subtotal = subtotal
			b.DiscountTotal = req.DiscountTotal
			b.GrandTotal = grand
			b.PaymentMode = mode
			b.Status = model.BillCompleted
			b.Notes = req.Notes
		})
		if err != nil {
			return nil, err
		}

		out := &BillDetail{Bill: *bill}
		for _, l := range lines {
			item, err := s.repos.Bills.CreateItemTx(tx, func(it *model.BillItem) {
				it.BillID = bill.ID
				it.ProductID = l.product.ID
				it.ProductName = l.product.Name
				it.Quantity = l.quantity
				it.UnitPrice = l.price
				it.Discount = l.discount
				it.LineTotal = l.total
			})
			if err != nil {
				return nil, err
			}
			out.Items = append(out.Items, *item)

			p, _, err := s.repos.Inventory.ApplyTx(tx, l.product.ID, l.quantity.Neg(), model.ReasonSale, billRef(number))
			if err != nil {
				return nil, fmt.Errorf("decrement stock of %s: %w", l.product.Name, err)
			}
			if p.CurrentStock.IsNegative() {
				log.Warn().Str("product_id", p.ID).Str("stock", p.CurrentStock.String()).
					Str("bill_number", number).Msg("stock went negative")
			}
		}

		if customerID != nil {
			c, err := s.repos.Customers.FindByIDTx(tx, *customerID)
			if err != nil {
				return nil, fmt.Errorf("customer: %w", err)
			}
			if !c.IsActive {
				return nil, fmt.Errorf("customer %s is inactive: %w", c.Name, apierror.ErrInvalidState)
			}
		}

		if mode == model.PaymentCredit {
			if _, err := s.repos.Credit.AppendTx(tx, model.CreditEntry{
				CustomerID: *customerID,
				BillID:     &bill.ID,
				EntryType:  model.EntryCredit,
				Amount:     grand,
				Notes:      billRef(number),
			}); err != nil {
				return nil, err
			}
			return out, nil
		}

		pay, err := s.repos.Bills.CreatePaymentTx(tx, func(p *model.Payment) {
			p.BillID = bill.ID
			p.CustomerID = customerID
			p.Amount = grand
			p.PaymentMode = mode
		})
		if err != nil {
			return nil, err
		}
		out.Payments = append(out.Payments, *pay)
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("bill_id", detail.Bill.ID).Str("bill_number", detail.Bill.BillNumber).
		Str("payment_mode", string(mode)).Str("grand_total", detail.Bill.GrandTotal.String()).
		Int("items", len(detail.Items)).Msg("bill created")
	return detail, nil
}

// ── CancelBill ────────────────────────────────────────────────────────────────
// Restores every line's quantity with a return log. A bill that is already
// cancelled is rejected, so stock is restored at most once.

func (s *billService) CancelBill(ctx context.Context, id string) (*model.Bill, error) {
	bill, err := store.WriteResult(ctx, s.st, func(tx *store.Tx) (*model.Bill, error) {
		b, err := s.repos.Bills.FindByIDTx(tx, id)
		if err != nil {
			return nil, err
		}
		if b.Status == model.BillCancelled {
			return nil, fmt.Errorf("bill %s is already cancelled: %w", b.BillNumber, apierror.ErrInvalidState)
		}

		items, err := s.repos.Bills.ItemsTx(tx, id)
		if err != nil {
			return nil, err
		}
		note := "Cancelled " + billRef(b.BillNumber)
		for _, it := range items {
			if _, _, err := s.repos.Inventory.ApplyTx(tx, it.ProductID, it.Quantity, model.ReasonReturn, note); err != nil {
				return nil, fmt.Errorf("restore stock of %s: %w", it.ProductName, err)
			}
		}

		if b.PaymentMode == model.PaymentCredit && b.CustomerID != nil {
			if _, err := s.repos.Credit.AppendTx(tx, model.CreditEntry{
				CustomerID: *b.CustomerID,
				BillID:     &b.ID,
				EntryType:  model.EntryPayment,
				Amount:     b.GrandTotal,
				Notes:      "bill cancelled",
			}); err != nil {
				return nil, err
			}
		}

		return s.repos.Bills.SetStatusTx(tx, id, model.BillCancelled)
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("bill_id", bill.ID).Str("bill_number", bill.BillNumber).Msg("bill cancelled")
	return bill, nil
}

// ── Reads ─────────────────────────────────────────────────────────────────────

func (s *billService) GetBill(ctx context.Context, id string) (*BillDetail, error) {
	b, err := s.repos.Bills.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.repos.Bills.Items(ctx, id)
	if err != nil {
		return nil, err
	}
	pays, err := s.repos.Bills.Payments(ctx, id)
	if err != nil {
		return nil, err
	}
	return &BillDetail{Bill: *b, Items: items, Payments: pays}, nil
}

// GetBillItems returns the bill's lines in the order they were sold.
func (s *billService) GetBillItems(ctx context.Context, id string) ([]model.BillItem, error) {
	if _, err := s.repos.Bills.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repos.Bills.Items(ctx, id)
}

// ListBills defaults to every status, newest first.
func (s *billService) ListBills(ctx context.Context, filter dto.BillFilter) ([]model.Bill, error) {
	if err := dto.Validate(filter); err != nil {
		return nil, err
	}
	from, to, err := DayRange(filter.From, filter.To, s.cfg.Location)
	if err != nil {
		return nil, err
	}
	q := repository.BillQuery{
		From:        from,
		To:          to,
		CustomerID:  filter.CustomerID,
		Search:      filter.Search,
		Limit:       filter.Limit,
		NewestFirst: true,
	}
	if filter.Status != "" && filter.Status != "all" {
		q.Status = model.BillStatus(filter.Status)
	}
	return s.repos.Bills.List(ctx, q)
}

func (s *billService) ObserveRecentBills(limit int, cb func([]model.Bill)) (*store.Subscription, error) {
	return s.repos.Bills.Observe(repository.BillQuery{Limit: limit, NewestFirst: true}, cb)
}
