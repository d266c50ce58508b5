package utils

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	models "github.com/phillip/culture-events-go/models"
)

// RenderTicketsPDF lays out one A4 page per ticket with the QR code that was
// stored on the ticket at issuance.
func RenderTicketsPDF(event *models.Event, order *models.Order, tickets []models.Ticket) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	when := event.StartDateTime.UTC().Format("Mon 02 Jan 2006, 15:04 MST")
	where := event.Venue
	if event.City != "" {
		where = fmt.Sprintf("%s, %s", event.Venue, event.City)
	}

	for i, t := range tickets {
		pdf.AddPage()

		pdf.SetFont("Helvetica", "B", 22)
		pdf.CellFormat(0, 14, tr(event.Title), "", 1, "L", false, 0, "")

		pdf.SetFont("Helvetica", "", 12)
		pdf.CellFormat(0, 8, tr(when), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 8, tr(where), "", 1, "L", false, 0, "")
		pdf.Ln(6)

		pdf.SetFont("Helvetica", "B", 13)
		pdf.CellFormat(0, 8, "Ticket", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 12)
		pdf.CellFormat(0, 7, "Code: "+t.TicketCode, "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 7, tr("Type: "+t.TicketType), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 7, tr("Attendee: "+t.AttendeeName), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 7, "Order: "+order.OrderNumber, "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 7, fmt.Sprintf("Ticket %d of %d", i+1, len(tickets)), "", 1, "L", false, 0, "")

		png, err := DecodePNGDataURL(t.QRCode)
		if err != nil {
			return nil, fmt.Errorf("ticket %s: %w", t.TicketCode, err)
		}
		name := "qr-" + t.TicketCode
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
		pdf.ImageOptions(name, 130, 40, 60, 0, false, opts, 0, "")

		pdf.SetY(280)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(0, 6, "Present this code at the entrance. Each code admits one person once.", "", 0, "C", false, 0, "")
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("render tickets pdf: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render tickets pdf: %w", err)
	}
	return buf.Bytes(), nil
}
