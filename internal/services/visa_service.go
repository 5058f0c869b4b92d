package services

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"travel-desk/bookingcart/internal/common"
	"travel-desk/bookingcart/internal/metrics"
	"travel-desk/bookingcart/internal/models/dtos"
	"travel-desk/bookingcart/internal/models/entities"
)

var countryCodePattern = regexp.MustCompile(`^[A-Za-z]{2}$`)

const arrivalDateLayout = "2006-01-02"

type VisaService struct {
	table   *VisaTable
	metrics *metrics.MetricsRegistry
}

func NewVisaService(table *VisaTable, m *metrics.MetricsRegistry) *VisaService {
	return &VisaService{table: table, metrics: m}
}

func (svc *VisaService) Countries() []entities.Country {
	return svc.table.Countries()
}

// Check classifies one pair and attaches curated or synthetic details.
func (svc *VisaService) Check(passport, destination string) (entities.Classification, error) {
	if err := validateCountryCode("passport", passport); err != nil {
		return entities.Classification{}, err
	}
	if err := validateCountryCode("destination", destination); err != nil {
		return entities.Classification{}, err
	}

	c := svc.table.Classify(passport, destination)
	if !c.NotApplicable {
		details := svc.details(c)
		c.Details = &details
	}
	svc.record(c)
	return c, nil
}

// PassportOverview aggregates every destination for passport.
func (svc *VisaService) PassportOverview(passport string) (dtos.PassportVisaResponse, error) {
	if err := validateCountryCode("passport", passport); err != nil {
		return dtos.PassportVisaResponse{}, err
	}

	code := strings.ToUpper(strings.TrimSpace(passport))
	buckets := svc.table.Aggregate(code)
	return dtos.PassportVisaResponse{
		Ok:       true,
		Passport: code,
		HasData:  svc.table.HasPassport(code),
		Buckets:  buckets,
		Counts: map[string]int{
			"visa_free":       len(buckets.VisaFree),
			"evisa":           len(buckets.EVisa),
			"visa_on_arrival": len(buckets.VisaOnArrival),
			"required":        len(buckets.Required),
		},
	}, nil
}

// CheckEligibility validates the request and derives processing options and
// required documents from the pair's category.
func (svc *VisaService) CheckEligibility(req dtos.EligibilityRequest) (entities.Eligibility, error) {
	missing := []string{}
	if strings.TrimSpace(req.Nationality) == "" {
		missing = append(missing, "nationality")
	}
	if strings.TrimSpace(req.Destination) == "" {
		missing = append(missing, "destination")
	}
	if strings.TrimSpace(req.Purpose) == "" {
		missing = append(missing, "purpose")
	}
	if strings.TrimSpace(req.ArrivalDate) == "" {
		missing = append(missing, "arrivalDate")
	}
	if len(missing) > 0 {
		return entities.Eligibility{}, common.NewValidationError("missing required fields: %s", strings.Join(missing, ", "))
	}

	if _, err := time.Parse(arrivalDateLayout, strings.TrimSpace(req.ArrivalDate)); err != nil {
		return entities.Eligibility{}, common.NewValidationError("arrivalDate must be formatted YYYY-MM-DD")
	}

	c, err := svc.Check(req.Nationality, req.Destination)
	if err != nil {
		return entities.Eligibility{}, err
	}

	purpose := strings.ToLower(strings.TrimSpace(req.Purpose))
	e := entities.Eligibility{
		Nationality:       c.Passport,
		Destination:       c.Destination,
		Purpose:           purpose,
		ArrivalDate:       strings.TrimSpace(req.ArrivalDate),
		Category:          c.Category,
		NotApplicable:     c.NotApplicable,
		AllowedStayDays:   c.AllowedStayDays,
		Details:           c.Details,
		ProcessingOptions: []entities.ProcessingOption{},
		RequiredDocuments: []string{},
	}
	if c.NotApplicable {
		return e, nil
	}

	e.ProcessingOptions = ProcessingOptionsFor(c.Category)
	e.RequiredDocuments = RequiredDocumentsFor(c.Category, purpose)
	return e, nil
}

func (svc *VisaService) details(c entities.Classification) entities.VisaDetails {
	if d, ok := svc.table.Details(c.Passport, c.Destination); ok {
		return d
	}
	return SyntheticDetails(c.Category, c.AllowedStayDays)
}

func (svc *VisaService) record(c entities.Classification) {
	if svc.metrics == nil {
		return
	}
	label := string(c.Category)
	if c.NotApplicable {
		label = "not_applicable"
	}
	svc.metrics.VisaClassificationsTotal.WithLabelValues(label).Inc()
}

func validateCountryCode(field, code string) error {
	if !countryCodePattern.MatchString(strings.TrimSpace(code)) {
		return common.NewValidationError("%s must be a two-letter country code", field)
	}
	return nil
}

// SyntheticDetails derives a details record from the category alone.
func SyntheticDetails(category entities.VisaCategory, stayDays *int) entities.VisaDetails {
	d := entities.VisaDetails{
		PassportValidity: "6 months beyond the date of arrival",
		ReturnTicket:     true,
		Synthetic:        true,
	}

	switch category {
	case entities.CategoryVisaFree:
		d.StayDuration = "Varies by nationality"
		d.ProcessingTime = "None"
		d.Fee = "None"
	case entities.CategoryETA:
		d.StayDuration = "Short stays for tourism or business"
		d.ProcessingTime = "Usually within 72 hours"
		d.Fee = "Small online fee"
		d.Notes = "Apply online before boarding."
	case entities.CategoryEVisa:
		d.StayDuration = "As stated on the e-visa"
		d.ProcessingTime = "3-5 business days"
		d.Fee = "Varies by destination"
		d.ProofOfFunds = true
		d.Notes = "Apply online and carry a printed approval."
	case entities.CategoryVisaOnArrival:
		d.StayDuration = "As granted at the border"
		d.ProcessingTime = "On arrival"
		d.Fee = "Paid at the border"
		d.ProofOfFunds = true
	default:
		d.StayDuration = "As stated on the visa"
		d.ProcessingTime = "15-30 business days"
		d.Fee = "Varies by embassy"
		d.ProofOfFunds = true
		d.Notes = "Apply at an embassy or consulate before travelling."
	}

	if stayDays != nil && *stayDays > 0 {
		d.StayDuration = fmt.Sprintf("Up to %d days", *stayDays)
	}
	return d
}

var processingOptions = map[entities.VisaCategory][]entities.ProcessingOption{
	entities.CategoryVisaFree: {
		{Label: "No visa needed", Days: "0", GovernmentFee: 0, ServiceFee: 0, Note: "Travel with a valid passport"},
	},
	entities.CategoryETA: {
		{Label: "Standard", Days: "1-3", GovernmentFee: 20, ServiceFee: 25},
		{Label: "Express", Days: "Within 24 hours", GovernmentFee: 20, ServiceFee: 45},
	},
	entities.CategoryEVisa: {
		{Label: "Standard", Days: "3-5", GovernmentFee: 50, ServiceFee: 35},
		{Label: "Express", Days: "1-2", GovernmentFee: 50, ServiceFee: 75},
	},
	entities.CategoryVisaOnArrival: {
		{Label: "Pre-arrival support", Days: "On arrival", GovernmentFee: 0, ServiceFee: 20, Note: "Government fee is paid at the border"},
	},
	entities.CategoryVisaRequired: {
		{Label: "Standard", Days: "15-30", GovernmentFee: 80, ServiceFee: 60, Note: "Embassy appointment required"},
		{Label: "Priority", Days: "7-10", GovernmentFee: 80, ServiceFee: 120, Note: "Embassy appointment required"},
	},
}

// ProcessingOptionsFor returns a fresh copy of the options for category.
func ProcessingOptionsFor(category entities.VisaCategory) []entities.ProcessingOption {
	opts := processingOptions[category]
	if opts == nil {
		opts = processingOptions[entities.CategoryVisaRequired]
	}
	out := make([]entities.ProcessingOption, len(opts))
	copy(out, opts)
	return out
}

const passportDocument = "Passport valid for at least 6 months beyond arrival"

var categoryDocuments = map[entities.VisaCategory][]string{
	entities.CategoryVisaFree: {
		"Return or onward ticket",
		"Proof of accommodation",
	},
	entities.CategoryETA: {
		"Email address for the electronic authorisation",
		"Credit or debit card for the fee",
	},
	entities.CategoryEVisa: {
		"Passport-style digital photo",
		"Scan of passport bio page",
		"Return or onward ticket",
	},
	entities.CategoryVisaOnArrival: {
		"Passport photo",
		"Return or onward ticket",
		"Cash for the visa fee",
	},
	entities.CategoryVisaRequired: {
		"Completed visa application form",
		"Two passport photos",
		"Bank statements for the last 3 months",
		"Travel itinerary",
		"Proof of accommodation",
	},
}

var purposeDocuments = map[string]string{
	"business": "Invitation letter from the host company",
	"study":    "Acceptance letter from the institution",
	"work":     "Employment contract or work permit approval",
	"transit":  "Onward ticket to the final destination",
}

func RequiredDocumentsFor(category entities.VisaCategory, purpose string) []string {
	extra, ok := categoryDocuments[category]
	if !ok {
		extra = categoryDocuments[entities.CategoryVisaRequired]
	}
	docs := make([]string, 0, len(extra)+2)
	docs = append(docs, passportDocument)
	docs = append(docs, extra...)
	if doc, ok := purposeDocuments[strings.ToLower(purpose)]; ok {
		docs = append(docs, doc)
	}
	return docs
}
