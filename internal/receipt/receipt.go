// Package receipt renders order receipts as PDF.
package receipt

import (
	"fmt"
	"io"
	"strings"

	"github.com/antiquenepal/storefront/internal/models"
	"github.com/go-pdf/fpdf"
)

// Shop is the header printed on every receipt.
type Shop struct {
	Name     string
	Email    string
	Phone    string
	Address  string
	Currency string
}

const (
	colItem  = 90.0
	colQty   = 20.0
	colPrice = 35.0
	colTotal = 35.0
	rowH     = 7.0
)

// Render writes the receipt for o to w.
func Render(w io.Writer, shop Shop, o *models.Order) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Receipt "+o.OrderNumber, true)
	pdf.SetAuthor(shop.Name, true)
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// 1. --- Shop header ---
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, tr(shop.Name), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	for _, line := range []string{shop.Address, shop.Email, shop.Phone} {
		if line != "" {
			pdf.CellFormat(0, 5, tr(line), "", 1, "L", false, 0, "")
		}
	}
	pdf.Ln(6)

	// 2. --- Order meta ---
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, "Receipt "+o.OrderNumber, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Date: "+o.CreatedAt.Format("02 Jan 2006 15:04"), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Status: "+models.BadgeFor(o.Status).Label, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Payment: %s (%s)", strings.ToUpper(o.PaymentMethod), o.PaymentStatus), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	// 3. --- Ship to ---
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, 6, "Ship to", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 5, tr(o.ShippingAddress), "", "L", false)
	pdf.Ln(4)

	// 4. --- Items ---
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(colItem, rowH, "Item", "1", 0, "L", true, 0, "")
	pdf.CellFormat(colQty, rowH, "Qty", "1", 0, "C", true, 0, "")
	pdf.CellFormat(colPrice, rowH, "Unit price", "1", 0, "R", true, 0, "")
	pdf.CellFormat(colTotal, rowH, "Total", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, it := range o.Items {
		name := it.ProductName
		if it.VariantName != "" {
			name += " (" + it.VariantName + ")"
		}
		pdf.CellFormat(colItem, rowH, tr(truncate(name, 55)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colQty, rowH, fmt.Sprintf("%d", it.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(colPrice, rowH, it.UnitPrice.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colTotal, rowH, it.LineTotal.StringFixed(2), "1", 1, "R", false, 0, "")
	}

	// 5. --- Totals ---
	labelW := colItem + colQty + colPrice
	totals := []struct {
		label string
		value string
	}{
		{"Subtotal", o.Subtotal.StringFixed(2)},
		{"Shipping", o.ShippingFee.StringFixed(2)},
		{"Tax", o.Tax.StringFixed(2)},
	}
	for _, t := range totals {
		pdf.CellFormat(labelW, rowH, t.label, "", 0, "R", false, 0, "")
		pdf.CellFormat(colTotal, rowH, t.value, "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(labelW, rowH, "Total ("+shop.Currency+")", "", 0, "R", false, 0, "")
	pdf.CellFormat(colTotal, rowH, o.Total.StringFixed(2), "", 1, "R", false, 0, "")

	if o.Notes != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(0, 5, tr("Notes: "+o.Notes), "", "L", false)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render receipt: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
