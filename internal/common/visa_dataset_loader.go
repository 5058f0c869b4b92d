package common

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jszwec/csvutil"

	"travel-desk/bookingcart/internal/data"
	"travel-desk/bookingcart/internal/logging"
	"travel-desk/bookingcart/internal/models/entities"
)

// VisaRequirementRow is one passport-index row
type VisaRequirementRow struct {
	Passport    string `csv:"Passport"`
	Destination string `csv:"Destination"`
	Requirement string `csv:"Requirement"`
}

type countryRow struct {
	Code string `csv:"code"`
	Name string `csv:"name"`
}

// VisaDataset is the decoded, code-normalized visa source data
type VisaDataset struct {
	Countries    []entities.Country
	Requirements []VisaRequirementRow
	Details      map[string]entities.VisaDetails
}

// LoadVisaDataset decodes the three source documents. Codes are upper-cased
// and rows with a blank passport or destination are skipped.
func LoadVisaDataset(requirementsCSV, countriesCSV, detailsJSON []byte) (*VisaDataset, error) {
	var rawCountries []countryRow
	if err := csvutil.Unmarshal(countriesCSV, &rawCountries); err != nil {
		return nil, fmt.Errorf("failed to decode countries: %w", err)
	}

	var rawRequirements []VisaRequirementRow
	if err := csvutil.Unmarshal(requirementsCSV, &rawRequirements); err != nil {
		return nil, fmt.Errorf("failed to decode visa requirements: %w", err)
	}

	details := map[string]entities.VisaDetails{}
	if len(detailsJSON) > 0 {
		if err := json.Unmarshal(detailsJSON, &details); err != nil {
			return nil, fmt.Errorf("failed to decode visa details: %w", err)
		}
	}

	ds := &VisaDataset{
		Countries:    make([]entities.Country, 0, len(rawCountries)),
		Requirements: make([]VisaRequirementRow, 0, len(rawRequirements)),
		Details:      make(map[string]entities.VisaDetails, len(details)),
	}

	for _, c := range rawCountries {
		code := normalizeCode(c.Code)
		if code == "" {
			continue
		}
		ds.Countries = append(ds.Countries, entities.Country{Code: code, Name: strings.TrimSpace(c.Name)})
	}

	for _, r := range rawRequirements {
		r.Passport = normalizeCode(r.Passport)
		r.Destination = normalizeCode(r.Destination)
		if r.Passport == "" || r.Destination == "" {
			continue
		}
		r.Requirement = strings.TrimSpace(r.Requirement)
		ds.Requirements = append(ds.Requirements, r)
	}

	for key, d := range details {
		ds.Details[strings.ToUpper(strings.TrimSpace(key))] = d
	}

	logging.Debug("Visa dataset loaded",
		"countries", len(ds.Countries),
		"requirements", len(ds.Requirements),
		"details", len(ds.Details),
	)
	return ds, nil
}

// LoadEmbeddedVisaDataset decodes the dataset compiled into the binary.
func LoadEmbeddedVisaDataset() (*VisaDataset, error) {
	return LoadVisaDataset(data.VisaRequirementsCSV, data.CountriesCSV, data.VisaDetailsJSON)
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
