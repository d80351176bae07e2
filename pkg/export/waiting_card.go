package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// WaitingCard holds the values printed on a replacement acknowledgement.
type WaitingCard struct {
	ApplicationNumber string
	FullName          string
	District          string
	ApplicationType   string
	OfficerName       string
	Date              time.Time
}

// FileName is the download name of the rendered card.
func (w WaitingCard) FileName() string {
	return fmt.Sprintf("application-%s.pdf", w.ApplicationNumber)
}

// WaitingCardRenderer draws waiting cards onto an A4 page.
type WaitingCardRenderer struct{}

// NewWaitingCardRenderer constructs a renderer.
func NewWaitingCardRenderer() *WaitingCardRenderer {
	return &WaitingCardRenderer{}
}

// Render returns the PDF bytes for a waiting card.
func (r *WaitingCardRenderer) Render(card WaitingCard) ([]byte, error) {
	if card.ApplicationNumber == "" {
		return nil, fmt.Errorf("waiting card requires an application number")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pageWidth, _ := pdf.GetPageSize()

	pdf.SetFont("Helvetica", "B", 20)
	centerText(pdf, pageWidth, 30, "DIGITAL ID WAITING CARD")

	pdf.Rect(20, 50, 170, 180, "D")

	const lineHeight = 20.0
	y := 70.0
	fields := []struct{ label, value string }{
		{"Application No:", card.ApplicationNumber},
		{"Full Name:", card.FullName},
		{"District:", card.District},
		{"Type of Application:", card.ApplicationType},
		{"Registration Officer:", card.OfficerName},
		{"Date:", card.Date.Format("02/01/2006")},
	}
	for _, f := range fields {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Text(30, y, f.label)
		pdf.SetFont("Helvetica", "", 12)
		pdf.Text(100, y, f.value)
		y += lineHeight
	}

	y += lineHeight
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Text(30, y, "Officer Signature:")
	pdf.Line(110, y, 170, y)

	y += lineHeight * 2
	pdf.SetFont("Helvetica", "I", 10)
	centerText(pdf, pageWidth, y+20, "Note: This acknowledgement is not an identity card")

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render waiting card: %w", err)
	}
	return buf.Bytes(), nil
}

func centerText(pdf *gofpdf.Fpdf, pageWidth, y float64, text string) {
	x := (pageWidth - pdf.GetStringWidth(text)) / 2
	pdf.Text(x, y, text)
}
