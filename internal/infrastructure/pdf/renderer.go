package pdf

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/trainingdesk-api/internal/domain"
)

// Renderer produces invoice PDF documents.
type Renderer struct {
	companyName    string
	companyAddress string
}

func NewRenderer(companyName, companyAddress string) *Renderer {
	return &Renderer{companyName: companyName, companyAddress: companyAddress}
}

// Render lays out the invoice on a single A4 page and returns the PDF bytes.
func (r *Renderer) Render(inv *domain.Invoice) ([]byte, error) {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.AddPage()

	doc.SetFont("Arial", "B", 18)
	doc.Cell(120, 10, r.companyName)
	doc.SetFont("Arial", "B", 16)
	doc.CellFormat(70, 10, "INVOICE", "", 1, "R", false, 0, "")

	if r.companyAddress != "" {
		doc.SetFont("Arial", "", 9)
		doc.CellFormat(190, 5, r.companyAddress, "", 1, "", false, 0, "")
	}
	doc.Ln(6)

	doc.SetFont("Arial", "", 10)
	doc.CellFormat(95, 6, "Invoice No: "+inv.InvoiceNo, "", 0, "", false, 0, "")
	doc.CellFormat(95, 6, "Issue Date: "+inv.IssueDate.Format("02 Jan 2006"), "", 1, "R", false, 0, "")
	doc.CellFormat(95, 6, "Status: "+inv.Status, "", 0, "", false, 0, "")
	doc.CellFormat(95, 6, "Due Date: "+inv.DueDate.Format("02 Jan 2006"), "", 1, "R", false, 0, "")
	doc.Ln(6)

	doc.SetFont("Arial", "B", 11)
	doc.CellFormat(190, 6, "Bill To", "", 1, "", false, 0, "")
	doc.SetFont("Arial", "", 10)
	doc.CellFormat(190, 5, inv.CustomerName, "", 1, "", false, 0, "")
	doc.CellFormat(190, 5, inv.CustomerEmail, "", 1, "", false, 0, "")
	if inv.CustomerPhone != nil {
		doc.CellFormat(190, 5, *inv.CustomerPhone, "", 1, "", false, 0, "")
	}
	if inv.Address != nil {
		doc.CellFormat(190, 5, *inv.Address, "", 1, "", false, 0, "")
	}
	doc.Ln(8)

	// Line-item table. There is always exactly one line: the course run.
	doc.SetFont("Arial", "B", 10)
	doc.SetFillColor(230, 230, 230)
	doc.CellFormat(100, 8, "Description", "1", 0, "", true, 0, "")
	doc.CellFormat(30, 8, "Unit Price", "1", 0, "R", true, 0, "")
	doc.CellFormat(25, 8, "Participants", "1", 0, "R", true, 0, "")
	doc.CellFormat(35, 8, "Amount", "1", 1, "R", true, 0, "")

	doc.SetFont("Arial", "", 10)
	doc.CellFormat(100, 8, inv.CourseTitle, "1", 0, "", false, 0, "")
	doc.CellFormat(30, 8, fmt.Sprintf("%.2f", inv.UnitPrice), "1", 0, "R", false, 0, "")
	doc.CellFormat(25, 8, fmt.Sprintf("%d", inv.Participants), "1", 0, "R", false, 0, "")
	doc.CellFormat(35, 8, fmt.Sprintf("%.2f", inv.TotalAmount), "1", 1, "R", false, 0, "")

	doc.SetFont("Arial", "B", 11)
	doc.CellFormat(155, 10, "Total", "", 0, "R", false, 0, "")
	doc.CellFormat(35, 10, fmt.Sprintf("%.2f", inv.TotalAmount), "1", 1, "R", false, 0, "")

	doc.Ln(10)
	doc.SetFont("Arial", "I", 9)
	doc.CellFormat(190, 5, "This invoice was issued for a paid order. Thank you for your business.", "", 1, "", false, 0, "")

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice %s: %w", inv.InvoiceNo, err)
	}
	return buf.Bytes(), nil
}
