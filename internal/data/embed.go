// Package data holds the static visa dataset compiled into the binary.
//
// visa_requirements.csv follows the passport-index layout: one
// Passport,Destination,Requirement row per ISO alpha-2 pair, where
// Requirement is a day count, "-1" for the passport's own country, or one
// of the free-text labels (visa free, e-visa, eta, visa on arrival,
// visa required, no admission).
package data

import _ "embed"

//go:embed visa_requirements.csv
var VisaRequirementsCSV []byte

//go:embed countries.csv
var CountriesCSV []byte

// VisaDetailsJSON maps "PASSPORT-DESTINATION" to a details record.
//
//go:embed visa_details.json
var VisaDetailsJSON []byte
