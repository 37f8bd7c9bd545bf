package infra

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"
)

// WriteReceiptPDF draws a receipt on 80mm roll paper. The core Helvetica
// font has no rupee glyph, hence "Rs.".
func WriteReceiptPDF(r *Receipt, w io.Writer) error {
	height := 90 + 9*float64(len(r.Lines))
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 80, Ht: height},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.SetAutoPageBreak(false, 4)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(contentW, 6, tr(r.ShopName), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	for _, s := range []string{r.Address, prefixed("Ph: ", r.Phone), prefixed("GSTIN: ", r.GSTIN)} {
		if s != "" {
			pdf.CellFormat(contentW, 4, tr(s), "", 1, "C", false, 0, "")
		}
	}
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, "Bill No: "+r.BillNumber, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, r.Date.Format("02-01-2006  15:04"), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 4, tr("Customer: "+r.customerName()), "", 1, "L", false, 0, "")
	if r.Cancelled {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(contentW, 5, "CANCELLED", "", 1, "C", false, 0, "")
	}
	pdf.Ln(1)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(1)

	col1 := contentW * 0.50
	col2 := contentW * 0.18
	col3 := contentW * 0.32

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Qty", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Amount", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	for _, l := range r.Lines {
		pdf.CellFormat(col1, 5, tr(clip(l.Name, 26)), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, l.Quantity.String(), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, FormatMoney(l.Total), "", 1, "R", false, 0, "")
		if !l.Discount.IsZero() {
			pdf.CellFormat(col1+col2, 4, "  discount", "", 0, "L", false, 0, "")
			pdf.CellFormat(col3, 4, "-"+FormatMoney(l.Discount), "", 1, "R", false, 0, "")
		}
	}

	pdf.Ln(1)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(1)

	pdf.CellFormat(col1+col2, 5, "Subtotal", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 5, FormatMoney(r.Subtotal), "", 1, "R", false, 0, "")
	if !r.Discount.IsZero() {
		pdf.CellFormat(col1+col2, 5, "Discount", "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 5, "-"+FormatMoney(r.Discount), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1+col2, 6, "TOTAL", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, "Rs. "+FormatMoney(r.GrandTotal), "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(col1+col2, 4, "Payment", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 4, strings.ToUpper(r.PaymentMode), "", 1, "R", false, 0, "")

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	footer := r.Footer
	if footer == "" {
		footer = defaultFooter
	}
	pdf.CellFormat(contentW, 4, tr(footer), "", 1, "C", false, 0, "")

	return pdf.Output(w)
}

// SaveReceiptPDF writes receipt_<bill number>.pdf into dir and returns its path.
func SaveReceiptPDF(r *Receipt, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("pdf: create receipt dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("receipt_%s.pdf", r.BillNumber))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("pdf: create file: %w", err)
	}
	if err := WriteReceiptPDF(r, f); err != nil {
		f.Close()
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return path, nil
}

func prefixed(prefix, s string) string {
	if s == "" {
		return ""
	}
	return prefix + s
}
