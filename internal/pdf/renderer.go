// Package pdf renders report tables and legal notices as PDF documents.
// Formatting of values happens upstream; this package only lays out cells
// and paragraphs it is given.
package pdf

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

// TableDocument is a titled table ready for layout. Columns and row cells
// arrive pre-formatted and in final order.
type TableDocument struct {
	Title    string
	Subtitle string
	Columns  []string
	Rows     [][]string
}

// RenderTable lays the document out in landscape A4 with a repeated header
// row on page breaks.
func RenderTable(doc TableDocument) ([]byte, error) {
	p := fpdf.New("L", "mm", "A4", "")
	p.SetAutoPageBreak(true, 15)
	p.AddPage()

	p.SetFont("Helvetica", "B", 16)
	p.CellFormat(0, 10, doc.Title, "", 1, "C", false, 0, "")
	if doc.Subtitle != "" {
		p.SetFont("Helvetica", "", 10)
		p.CellFormat(0, 6, doc.Subtitle, "", 1, "C", false, 0, "")
	}
	p.Ln(4)

	pageWidth, _ := p.GetPageSize()
	left, _, right, _ := p.GetMargins()
	usable := pageWidth - left - right
	colWidth := usable / float64(len(doc.Columns))

	header := func() {
		p.SetFont("Helvetica", "B", 9)
		p.SetFillColor(230, 230, 230)
		for _, col := range doc.Columns {
			p.CellFormat(colWidth, 8, col, "1", 0, "C", true, 0, "")
		}
		p.Ln(-1)
	}
	header()

	p.SetFont("Helvetica", "", 9)
	for _, row := range doc.Rows {
		if p.GetY() > 180 {
			p.AddPage()
			header()
			p.SetFont("Helvetica", "", 9)
		}
		for _, cell := range row {
			p.CellFormat(colWidth, 7, cell, "1", 0, "C", false, 0, "")
		}
		p.Ln(-1)
	}

	var buf bytes.Buffer
	if err := p.Output(&buf); err != nil {
		return nil, fmt.Errorf("render table pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// LegalNotice holds the pre-formatted fields of a demand notice
type LegalNotice struct {
	CompanyName     string
	CustomerName    string
	CustomerAddress string
	LoanID          int64
	Principal       string
	Outstanding     string
	EMI             string
	OverdueSince    string
	IssuedOn        string
}

// RenderLegalNotice lays out a single-page demand notice for an overdue loan
func RenderLegalNotice(n LegalNotice) ([]byte, error) {
	p := fpdf.New("P", "mm", "A4", "")
	p.SetAutoPageBreak(true, 20)
	p.AddPage()

	p.SetFont("Helvetica", "B", 16)
	p.CellFormat(0, 10, n.CompanyName, "", 1, "C", false, 0, "")
	p.SetFont("Helvetica", "B", 12)
	p.CellFormat(0, 8, "DEMAND NOTICE", "", 1, "C", false, 0, "")
	p.Ln(6)

	p.SetFont("Helvetica", "", 11)
	p.CellFormat(0, 6, "Date: "+n.IssuedOn, "", 1, "R", false, 0, "")
	p.Ln(4)

	p.CellFormat(0, 6, "To,", "", 1, "L", false, 0, "")
	p.CellFormat(0, 6, n.CustomerName, "", 1, "L", false, 0, "")
	if n.CustomerAddress != "" {
		p.MultiCell(0, 6, n.CustomerAddress, "", "L", false)
	}
	p.Ln(6)

	p.CellFormat(0, 6, fmt.Sprintf("Subject: Overdue installments on loan #%d", n.LoanID), "", 1, "L", false, 0, "")
	p.Ln(4)

	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"This is to bring to your notice that the monthly installment of %s on your "+
			"loan #%d (principal %s) has remained unpaid since %s. The total amount "+
			"outstanding against this loan as of the date of this notice is %s.\n\n"+
			"You are hereby called upon to clear the overdue amount within 15 days of "+
			"receipt of this notice, failing which %s shall be constrained to initiate "+
			"appropriate legal proceedings for recovery of the outstanding dues, at your "+
			"sole risk as to costs and consequences.\n\n"+
			"Please treat this matter as urgent.",
		n.CustomerName, n.EMI, n.LoanID, n.Principal, n.OverdueSince, n.Outstanding, n.CompanyName,
	)
	p.MultiCell(0, 6, body, "", "L", false)
	p.Ln(10)

	p.CellFormat(0, 6, "For "+n.CompanyName, "", 1, "L", false, 0, "")
	p.Ln(12)
	p.CellFormat(0, 6, "Authorised Signatory", "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := p.Output(&buf); err != nil {
		return nil, fmt.Errorf("render legal notice pdf: %w", err)
	}
	return buf.Bytes(), nil
}
