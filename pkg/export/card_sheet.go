package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/noah-isme/id-portal/pkg/idcard"
)

// CardSheetRenderer prints both faces of an ID card on one page for proofing before dispatch.
type CardSheetRenderer struct{}

// NewCardSheetRenderer constructs a card sheet renderer.
func NewCardSheetRenderer() *CardSheetRenderer {
	return &CardSheetRenderer{}
}

const (
	faceX      = 35.0
	faceWidth  = 140.0
	faceHeight = 88.0
	frontY     = 20.0
	backY      = 130.0
)

// Render draws the front and back faces of card.
func (r *CardSheetRenderer) Render(card idcard.Card) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	drawFront(pdf, card.Front)
	drawBack(pdf, card.Back)

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render card sheet: %w", err)
	}
	return buf.Bytes(), nil
}

func drawFront(pdf *gofpdf.Fpdf, front idcard.Front) {
	pdf.RoundedRect(faceX, frontY, faceWidth, faceHeight, 4, "1234", "D")

	pdf.SetFont("Arial", "B", 11)
	pdf.SetXY(faceX, frontY+4)
	pdf.CellFormat(faceWidth, 5, front.HeaderSwahili, "", 2, "C", false, 0, "")
	pdf.CellFormat(faceWidth, 5, front.HeaderEnglish, "", 2, "C", false, 0, "")

	pdf.Rect(faceX+6, frontY+18, 32, 40, "D")
	pdf.SetFont("Arial", "", 8)
	pdf.SetXY(faceX+6, frontY+36)
	pdf.CellFormat(32, 4, idcard.PhotoPlaceholder, "", 0, "C", false, 0, "")

	rows := []struct{ label, value string }{
		{"SERIAL NUMBER", front.SerialNumber},
		{"ID NUMBER", front.IDNumber},
		{"FULL NAME", front.FullName},
		{"DATE OF BIRTH", front.DateOfBirth},
		{"SEX", front.Sex},
		{"DISTRICT OF BIRTH", front.DistrictOfBirth},
		{"PLACE OF BIRTH", front.PlaceOfBirth},
		{"DATE OF ISSUE", front.DateOfIssue},
	}
	drawRows(pdf, faceX+44, frontY+18, rows)
}

func drawBack(pdf *gofpdf.Fpdf, back idcard.Back) {
	pdf.RoundedRect(faceX, backY, faceWidth, faceHeight, 4, "1234", "D")

	rows := []struct{ label, value string }{
		{"DISTRICT", back.District},
		{"DIVISION", back.Division},
		{"LOCATION", back.Location},
		{"SUB-LOCATION", back.SubLocation},
		{"ID NUMBER", back.IDNumber},
	}
	drawRows(pdf, faceX+6, backY+8, rows)

	pdf.SetFont("Courier", "B", 9)
	y := backY + faceHeight - 20
	for _, line := range back.MRZ {
		pdf.SetXY(faceX+4, y)
		pdf.CellFormat(faceWidth-8, 5, line, "", 0, "L", false, 0, "")
		y += 5
	}
}

func drawRows(pdf *gofpdf.Fpdf, x, y float64, rows []struct{ label, value string }) {
	for _, row := range rows {
		pdf.SetXY(x, y)
		pdf.SetFont("Arial", "", 6)
		pdf.CellFormat(0, 3, row.label, "", 2, "L", false, 0, "")
		pdf.SetX(x)
		pdf.SetFont("Arial", "B", 8)
		pdf.CellFormat(0, 4, row.value, "", 0, "L", false, 0, "")
		y += 8
	}
}
