package services

import (
	"bytes"
	"testing"
	"time"

	"travel-desk/bookingcart/internal/constants"
	"travel-desk/bookingcart/internal/models/entities"
)

func TestReceiptService_Render(t *testing.T) {
	svc := NewReceiptService("https://cart.example/")

	if got := svc.StatusURL("abc"); got != "https://cart.example/api/visa/applications/abc" {
		t.Errorf("Unexpected status URL %s", got)
	}

	app := &entities.VisaApplication{
		ID:        "4b7a9f1e-0000-4000-8000-000000000001",
		CreatedAt: time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC),
		Status:    constants.StatusSubmitted,
		Applicant: entities.Applicant{FullName: "Zoë Müller", Email: "zoe@example.com"},
		Eligibility: entities.Eligibility{
			Nationality:       "DE",
			Destination:       "AU",
			Purpose:           "tourism",
			ArrivalDate:       "2026-12-03",
			Category:          entities.CategoryETA,
			RequiredDocuments: RequiredDocumentsFor(entities.CategoryETA, "tourism"),
		},
		ProcessingOption: "Standard",
		AdminNotes:       "Approved pending payment.",
	}

	pdf, err := svc.Render(app)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Errorf("Expected PDF output, got prefix %q", pdf[:min(len(pdf), 8)])
	}
}
