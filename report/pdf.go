/*
pdf.go - Billing report PDF rendering

PURPOSE:
  Renders a billing report as a one-page-per-overflow PDF table, for sending
  to clients who won't read CSV. Purely offline: bytes go to the caller's
  io.Writer.
*/
package report

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"github.com/akimsoule/timelyhub/tracking"
)

// BillingPDF writes the billing report as a PDF document.
func BillingPDF(rep tracking.BillingReport, w io.Writer) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Billing Report")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s - %s",
		rep.Start.UTC().Format("2006-01-02"), rep.End.UTC().Format("2006-01-02")))
	pdf.Ln(10)

	// Table header
	widths := []float64{35, 30, 30, 20, 20, 30, 25}
	headers := []string{"Entry", "Project", "Employee", "Hours", "Billable", "Amount", "Currency"}
	pdf.SetFont("Helvetica", "B", 9)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, item := range rep.Items {
		currency := item.Currency
		if currency == "" {
			currency = "N/A"
		}
		cells := []string{
			string(item.EntryID),
			string(item.ProjectID),
			string(item.EmployeeID),
			fmt.Sprintf("%.2f", item.Hours),
			fmt.Sprintf("%t", item.Billable),
			item.Amount.StringFixed(2),
			currency,
		}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 7, c, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.Cell(0, 8, "Totals by currency")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 9)
	for currency, total := range rep.TotalsByCurrency {
		pdf.Cell(0, 6, fmt.Sprintf("%s: %s (%.2f h)", currency, total.Amount.StringFixed(2), total.Hours))
		pdf.Ln(5)
	}

	return pdf.Output(w)
}
