package entities

import (
	"time"

	"travel-desk/bookingcart/internal/constants"
)

// VisaCategory is one of the five canonical requirement categories.
type VisaCategory string

const (
	CategoryVisaFree      VisaCategory = "Visa-free"
	CategoryEVisa         VisaCategory = "eVisa"
	CategoryETA           VisaCategory = "eTA"
	CategoryVisaOnArrival VisaCategory = "Visa on arrival"
	CategoryVisaRequired  VisaCategory = "Visa required"
)

type Country struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type VisaDetails struct {
	StayDuration     string `json:"stayDuration"`
	PassportValidity string `json:"passportValidity"`
	ReturnTicket     bool   `json:"returnTicket"`
	ProofOfFunds     bool   `json:"proofOfFunds"`
	ProcessingTime   string `json:"processingTime"`
	Fee              string `json:"fee"`
	Notes            string `json:"notes,omitempty"`
	// Synthetic is true when no record exists for the pair and the details
	// were derived from the category.
	Synthetic bool `json:"synthetic"`
}

// Classification is the result of looking up one passport/destination pair.
type Classification struct {
	Passport        string       `json:"passport"`
	Destination     string       `json:"destination"`
	DestinationName string       `json:"destinationName,omitempty"`
	Category        VisaCategory `json:"category,omitempty"`
	Raw             string       `json:"raw,omitempty"`
	AllowedStayDays *int         `json:"allowedStayDays,omitempty"`
	NotApplicable   bool         `json:"notApplicable"`
	Details         *VisaDetails `json:"details,omitempty"`
}

// VisaBuckets partitions every destination for one passport.
type VisaBuckets struct {
	VisaFree      []string `json:"visa_free"`
	EVisa         []string `json:"evisa"`
	VisaOnArrival []string `json:"visa_on_arrival"`
	Required      []string `json:"required"`
}

type ProcessingOption struct {
	Label         string `json:"label"`
	Days          string `json:"days"`
	GovernmentFee int    `json:"governmentFee"`
	ServiceFee    int    `json:"serviceFee"`
	Note          string `json:"note,omitempty"`
}

// Eligibility is what the eligibility check returns and what an application
// records as its origin.
type Eligibility struct {
	Nationality       string             `json:"nationality"`
	Destination       string             `json:"destination"`
	Purpose           string             `json:"purpose"`
	ArrivalDate       string             `json:"arrivalDate"`
	Category          VisaCategory       `json:"category,omitempty"`
	NotApplicable     bool               `json:"notApplicable"`
	AllowedStayDays   *int               `json:"allowedStayDays,omitempty"`
	Details           *VisaDetails       `json:"details,omitempty"`
	ProcessingOptions []ProcessingOption `json:"processingOptions"`
	RequiredDocuments []string           `json:"requiredDocuments"`
}

type Applicant struct {
	FullName       string `json:"fullName"`
	Email          string `json:"email"`
	PassportNumber string `json:"passportNumber,omitempty"`
}

type VisaApplication struct {
	ID               string                      `json:"id"`
	CreatedAt        time.Time                   `json:"createdAt"`
	UpdatedAt        time.Time                   `json:"updatedAt"`
	Status           constants.ApplicationStatus `json:"status"`
	Applicant        Applicant                   `json:"applicant"`
	Eligibility      Eligibility                 `json:"eligibility"`
	ProcessingOption string                      `json:"processingOption,omitempty"`
	AdminNotes       string                      `json:"adminNotes"`
}
