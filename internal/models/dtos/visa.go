package dtos

import "travel-desk/bookingcart/internal/models/entities"

type VisaCheckResponse struct {
	Ok             bool                    `json:"ok"`
	Classification entities.Classification `json:"classification"`
}

type PassportVisaResponse struct {
	Ok       bool                 `json:"ok"`
	Passport string               `json:"passport"`
	HasData  bool                 `json:"hasData"`
	Buckets  entities.VisaBuckets `json:"buckets"`
	Counts   map[string]int       `json:"counts"`
}

type CountriesResponse struct {
	Ok        bool               `json:"ok"`
	Countries []entities.Country `json:"countries"`
}

type EligibilityRequest struct {
	Nationality string `json:"nationality"`
	Destination string `json:"destination"`
	Purpose     string `json:"purpose"`
	ArrivalDate string `json:"arrivalDate"`
}

type EligibilityResponse struct {
	Ok          bool                 `json:"ok"`
	Eligibility entities.Eligibility `json:"eligibility"`
}

type CreateApplicationRequest struct {
	Applicant        entities.Applicant   `json:"applicant"`
	Eligibility      entities.Eligibility `json:"eligibility"`
	ProcessingOption string               `json:"processingOption,omitempty"`
}

type UpdateApplicationRequest struct {
	Status     *string `json:"status,omitempty"`
	AdminNotes *string `json:"adminNotes,omitempty"`
}

type ApplicationResponse struct {
	Ok          bool                     `json:"ok"`
	ID          string                   `json:"id"`
	Application entities.VisaApplication `json:"application"`
}

type ApplicationListResponse struct {
	Ok           bool                       `json:"ok"`
	Count        int                        `json:"count"`
	Applications []entities.VisaApplication `json:"applications"`
}

type ApplicationStatsResponse struct {
	Ok     bool           `json:"ok"`
	Total  int            `json:"total"`
	Counts map[string]int `json:"counts"`
}

type AdminLoginRequest struct {
	Token string `json:"token"`
}

type AdminLoginResponse struct {
	Ok        bool   `json:"ok"`
	Token     string `json:"token"`
	ExpiresIn int    `json:"expiresIn"`
}
