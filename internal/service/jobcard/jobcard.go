package jobcard

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"uelco_jobs/internal/model"

	"github.com/jung-kurt/gofpdf"
)

// Renderer produces the printable single-page job card for one record:
// letterhead (or plain title), a label/value table over the fields that carry
// a value, the notes block, and signature lines.
type Renderer struct {
	CompanyName    string
	LetterheadPath string

	// Now supplies the date pre-filled next to the technician signature.
	Now func() time.Time
}

func NewRenderer(companyName, letterheadPath string) *Renderer {
	return &Renderer{
		CompanyName:    companyName,
		LetterheadPath: letterheadPath,
		Now:            time.Now,
	}
}

// cardFields is the whitelisted subset of columns printed on the card, in
// print order with their display labels.
var cardFields = []struct {
	col   string
	label string
}{
	{model.ColCategory, "Job Category"},
	{model.ColDate, "Date"},
	{model.ColClientName, "Client"},
	{model.ColClientContact, "Contact"},
	{model.ColLocation, "Location"},
	{model.ColServiceType, "Service Type"},
	{model.ColTechnician, "Technician"},
	{model.ColQuoteAmount, "Quote Amount"},
	{model.ColPlaceReceived, "Place Received"},
	{model.ColDateReceived, "Date Received"},
	{model.ColDateSentToVendor, "Sent to Vendor"},
	{model.ColDateBackFromVendor, "Back from Vendor"},
	{model.ColDateClientPickup, "Client Pickup"},
}

// Render builds the PDF. It has no side effects; the same record, render
// date and letterhead asset produce the same card.
func (r *Renderer) Render(record model.Record) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	// The core fonts are cp1252; tr maps UTF-8 text onto them.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetCreationDate(r.Now())
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	r.header(pdf, tr)

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, "JOB CARD", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 10)
	for _, f := range cardFields {
		val := record.Value(f.col)
		if val == "" {
			continue
		}
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(45, 7, f.label, "1", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(135, 7, tr(sanitize(val)), "1", 1, "L", false, 0, "")
	}

	if record.Notes != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(0, 6, "Notes", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(180, 5, tr(sanitize(record.Notes)), "1", "L", false)
	}

	r.signatures(pdf)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("error rendering job card: %w", err)
	}
	return buf.Bytes(), nil
}

// header draws the letterhead image when the asset is available, otherwise a
// plain company title. A broken asset never fails the render.
func (r *Renderer) header(pdf *gofpdf.Fpdf, tr func(string) string) {
	if r.LetterheadPath != "" {
		if _, err := os.Stat(r.LetterheadPath); err == nil {
			pdf.ImageOptions(r.LetterheadPath, 15, 10, 180, 0, false,
				gofpdf.ImageOptions{ReadDpi: true}, 0, "")
			if pdf.Err() {
				pdf.ClearError()
			} else {
				pdf.SetY(45)
				return
			}
		}
	}
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, tr(sanitize(r.CompanyName)), "", 1, "C", false, 0, "")
}

func (r *Renderer) signatures(pdf *gofpdf.Fpdf) {
	pdf.SetY(-45)
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(90, 7, "_______________________", "", 0, "L", false, 0, "")
	pdf.CellFormat(90, 7, "_______________________", "", 1, "L", false, 0, "")
	pdf.CellFormat(90, 6, fmt.Sprintf("Technician Signature    Date: %s", r.Now().Format("2006-01-02")), "", 0, "L", false, 0, "")
	pdf.CellFormat(90, 6, "Client Signature", "", 1, "L", false, 0, "")
}

// sanitize maps text onto the latin-1 subset the core PDF fonts can encode.
// Out-of-range runes are replaced, never fatal.
func sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n' || r == '\t':
			b.WriteRune(r)
		case r < 0x20:
			b.WriteRune(' ')
		case r <= 0xFF:
			b.WriteRune(r)
		default:
			b.WriteRune('?')
		}
	}
	return b.String()
}
