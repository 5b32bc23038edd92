package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/tilestock/tilestock/internal/inventory"
)

// GroupsPDF renders the full grouped inventory as a PDF table, one row per
// variant. Groups arrive in display order and are read, never mutated.
func GroupsPDF(groups []inventory.Group, title string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, title, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6, time.Now().Format("2006-01-02 15:04"), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	widths := []float64{45, 30, 35, 25, 40}
	headers := []string{"Model", "Size", "Type", "Quantity", "Created"}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, g := range groups {
		for i, v := range g.Variants {
			model, size := "", ""
			if i == 0 {
				model, size = g.ModelPrefix, g.Dimensions()
			}
			created := ""
			if !v.CreatedAt.IsZero() {
				created = v.CreatedAt.Format("2006-01-02")
			}

			pdf.CellFormat(widths[0], 7, model, "1", 0, "L", false, 0, "")
			pdf.CellFormat(widths[1], 7, size, "1", 0, "L", false, 0, "")
			pdf.CellFormat(widths[2], 7, v.Label, "1", 0, "L", false, 0, "")
			pdf.CellFormat(widths[3], 7, fmt.Sprintf("%d", v.Quantity), "1", 0, "R", false, 0, "")
			pdf.CellFormat(widths[4], 7, created, "1", 0, "L", false, 0, "")
			pdf.Ln(-1)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering PDF: %w", err)
	}
	return buf.Bytes(), nil
}
