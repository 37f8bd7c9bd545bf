package infra

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ReceiptLine is one printed bill line.
type ReceiptLine struct {
	Name      string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Discount  decimal.Decimal
	Total     decimal.Decimal
}

// Receipt is everything printed on a bill, already resolved: shop profile,
// customer name and local date.
type Receipt struct {
	ShopName string
	Address  string
	Phone    string
	GSTIN    string
	Footer   string

	BillNumber  string
	Date        time.Time
	Customer    string
	Lines       []ReceiptLine
	Subtotal    decimal.Decimal
	Discount    decimal.Decimal
	GrandTotal  decimal.Decimal
	PaymentMode string
	Cancelled   bool
}

// DefaultReceiptWidth fits 58mm thermal printers.
const DefaultReceiptWidth = 32

const defaultFooter = "Thank you! Visit again."

var inPrinter = message.NewPrinter(language.MustParse("en-IN"))

// FormatMoney renders an amount with two decimals and Indian digit grouping
// (1,23,456.00). The currency prefix is left to the caller.
func FormatMoney(d decimal.Decimal) string {
	s := d.Round(2).StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")
	n, err := decimal.NewFromString(whole)
	if err != nil {
		return sign + s
	}
	return sign + inPrinter.Sprintf("%d", n.IntPart()) + "." + frac
}

// Text renders the receipt for a character printer of the given width.
func (r *Receipt) Text(width int) string {
	if width <= 0 {
		width = DefaultReceiptWidth
	}
	var b strings.Builder
	line := func(s string) {
		b.WriteString(s)
		b.WriteByte('\n')
	}
	rule := strings.Repeat("-", width)

	line(center(r.ShopName, width))
	if r.Address != "" {
		line(center(r.Address, width))
	}
	if r.Phone != "" {
		line(center("Ph: "+r.Phone, width))
	}
	if r.GSTIN != "" {
		line(center("GSTIN: "+r.GSTIN, width))
	}
	line(rule)
	line(clip("Bill No: "+r.BillNumber, width))
	line(clip("Date: "+r.Date.Format("02-01-2006 15:04"), width))
	line(clip("Customer: "+r.customerName(), width))
	if r.Cancelled {
		line(center("*** CANCELLED ***", width))
	}
	line(rule)
	for _, l := range r.Lines {
		line(clip(l.Name, width))
		line(columns("  "+l.Quantity.String()+" x "+FormatMoney(l.UnitPrice), FormatMoney(l.Total), width))
		if !l.Discount.IsZero() {
			line(columns("  discount", "-"+FormatMoney(l.Discount), width))
		}
	}
	line(rule)
	line(columns("Subtotal", FormatMoney(r.Subtotal), width))
	if !r.Discount.IsZero() {
		line(columns("Discount", "-"+FormatMoney(r.Discount), width))
	}
	line(columns("TOTAL", "Rs. "+FormatMoney(r.GrandTotal), width))
	line(columns("Payment", strings.ToUpper(r.PaymentMode), width))
	line(rule)
	footer := r.Footer
	if footer == "" {
		footer = defaultFooter
	}
	line(center(footer, width))
	return b.String()
}

func (r *Receipt) customerName() string {
	if r.Customer == "" {
		return "Walk-in"
	}
	return r.Customer
}

func clip(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	return string([]rune(s)[:width])
}

func center(s string, width int) string {
	s = clip(s, width)
	pad := (width - utf8.RuneCountInString(s)) / 2
	return strings.Repeat(" ", pad) + s
}

// columns puts left and right on one line, right-aligned to width.
func columns(left, right string, width int) string {
	gap := width - utf8.RuneCountInString(left) - utf8.RuneCountInString(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}
