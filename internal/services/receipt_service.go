package services

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"

	"travel-desk/bookingcart/internal/models/entities"
)

// ReceiptService renders a printable PDF receipt for a visa application.
// The QR code links back to the application's public status URL.
type ReceiptService struct {
	publicBaseURL string
}

func NewReceiptService(publicBaseURL string) *ReceiptService {
	return &ReceiptService{publicBaseURL: strings.TrimRight(publicBaseURL, "/")}
}

func (svc *ReceiptService) StatusURL(id string) string {
	return fmt.Sprintf("%s/api/visa/applications/%s", svc.publicBaseURL, id)
}

func (svc *ReceiptService) Render(app *entities.VisaApplication) ([]byte, error) {
	qr, err := qrcode.Encode(svc.StatusURL(app.ID), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to encode receipt QR code: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 20)
	pdf.CellFormat(0, 15, "Visa Application Receipt", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	e := app.Eligibility
	lines := []string{
		"Reference: " + app.ID,
		"Status: " + app.Status.String(),
		"Applicant: " + app.Applicant.FullName,
		"Email: " + app.Applicant.Email,
		fmt.Sprintf("Trip: %s passport to %s (%s)", e.Nationality, e.Destination, e.Purpose),
		"Arrival: " + e.ArrivalDate,
		"Requirement: " + string(e.Category),
		"Created: " + app.CreatedAt.Format("02 Jan 2006 15:04 MST"),
	}
	if app.ProcessingOption != "" {
		lines = append(lines, "Processing: "+app.ProcessingOption)
	}

	pdf.SetFont("Arial", "", 12)
	pdf.MultiCell(120, 8, tr(strings.Join(lines, "\n")), "", "L", false)

	imgOpts := gofpdf.ImageOptions{ImageType: "png"}
	pdf.RegisterImageOptionsReader("qr", imgOpts, bytes.NewReader(qr))
	pdf.ImageOptions("qr", 150, 42, 40, 40, false, imgOpts, 0, "")

	if len(e.RequiredDocuments) > 0 {
		pdf.Ln(6)
		pdf.SetFont("Arial", "B", 13)
		pdf.CellFormat(0, 10, "Documents to prepare", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		for _, doc := range e.RequiredDocuments {
			pdf.CellFormat(0, 7, tr("- "+doc), "", 1, "L", false, 0, "")
		}
	}

	if app.AdminNotes != "" {
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 13)
		pdf.CellFormat(0, 10, "Notes from our team", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		pdf.MultiCell(0, 7, tr(app.AdminNotes), "", "L", false)
	}

	pdf.SetY(-30)
	pdf.SetFont("Arial", "I", 9)
	pdf.CellFormat(0, 10, "Scan the code to check the latest status of this application.", "T", 0, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render receipt: %w", err)
	}
	return buf.Bytes(), nil
}
