package services

import (
	"strconv"
	"strings"

	"travel-desk/bookingcart/internal/common"
	"travel-desk/bookingcart/internal/models/entities"
)

const defaultRequirementToken = "visa required"

// CategorizeRequirement maps one raw dataset token onto a canonical category.
// A non-negative integer is a visa-free stay in days and is returned as well.
// Unknown tokens are Visa required.
func CategorizeRequirement(raw string) (entities.VisaCategory, *int) {
	token := strings.ToLower(strings.TrimSpace(raw))

	if token != "-1" {
		if days, err := strconv.Atoi(token); err == nil && days >= 0 {
			return entities.CategoryVisaFree, &days
		}
	}

	switch token {
	case "visa free", "visa-free":
		return entities.CategoryVisaFree, nil
	case "visa on arrival":
		return entities.CategoryVisaOnArrival, nil
	case "e-visa":
		return entities.CategoryEVisa, nil
	case "eta":
		return entities.CategoryETA, nil
	default:
		// "-1", "no admission", "covid ban", "visa required" and anything unknown.
		return entities.CategoryVisaRequired, nil
	}
}

// VisaTable is an immutable passport/destination lookup built once from a
// dataset and shared read-only between requests.
type VisaTable struct {
	countries    []entities.Country
	names        map[string]string
	requirements map[string]map[string]string
	details      map[string]entities.VisaDetails
}

func NewVisaTable(ds *common.VisaDataset) *VisaTable {
	t := &VisaTable{
		countries:    make([]entities.Country, 0, len(ds.Countries)),
		names:        make(map[string]string, len(ds.Countries)),
		requirements: make(map[string]map[string]string),
		details:      make(map[string]entities.VisaDetails, len(ds.Details)),
	}

	for _, c := range ds.Countries {
		if _, dup := t.names[c.Code]; dup {
			continue
		}
		t.names[c.Code] = c.Name
		t.countries = append(t.countries, c)
	}

	for _, r := range ds.Requirements {
		row, ok := t.requirements[r.Passport]
		if !ok {
			row = make(map[string]string)
			t.requirements[r.Passport] = row
		}
		row[r.Destination] = r.Requirement
	}

	for key, d := range ds.Details {
		t.details[key] = d
	}
	return t
}

// Countries returns a copy of the known countries in dataset order.
func (t *VisaTable) Countries() []entities.Country {
	out := make([]entities.Country, len(t.countries))
	copy(out, t.countries)
	return out
}

func (t *VisaTable) CountryName(code string) (string, bool) {
	name, ok := t.names[strings.ToUpper(code)]
	return name, ok
}

// HasPassport reports whether the dataset carries any row for passport.
func (t *VisaTable) HasPassport(passport string) bool {
	_, ok := t.requirements[strings.ToUpper(passport)]
	return ok
}

// Lookup returns the raw token for a pair and whether one exists.
func (t *VisaTable) Lookup(passport, destination string) (string, bool) {
	row, ok := t.requirements[strings.ToUpper(passport)]
	if !ok {
		return "", false
	}
	raw, ok := row[strings.ToUpper(destination)]
	return raw, ok
}

// Details returns the curated record for a pair, if any.
func (t *VisaTable) Details(passport, destination string) (entities.VisaDetails, bool) {
	d, ok := t.details[strings.ToUpper(passport)+"-"+strings.ToUpper(destination)]
	return d, ok
}

// Classify resolves one pair. Identical codes are marked NotApplicable and
// carry no category; pairs missing from the table are Visa required.
func (t *VisaTable) Classify(passport, destination string) entities.Classification {
	passport = strings.ToUpper(strings.TrimSpace(passport))
	destination = strings.ToUpper(strings.TrimSpace(destination))

	c := entities.Classification{Passport: passport, Destination: destination}
	c.DestinationName, _ = t.CountryName(destination)

	if passport == destination {
		c.NotApplicable = true
		return c
	}

	raw, ok := t.Lookup(passport, destination)
	if !ok {
		raw = defaultRequirementToken
	}
	c.Raw = raw
	c.Category, c.AllowedStayDays = CategorizeRequirement(raw)
	return c
}

// Aggregate partitions every known destination except the passport's own
// country into four buckets of destination names, in dataset order.
// eVisa and eTA share the evisa bucket.
func (t *VisaTable) Aggregate(passport string) entities.VisaBuckets {
	passport = strings.ToUpper(strings.TrimSpace(passport))
	buckets := entities.VisaBuckets{
		VisaFree:      []string{},
		EVisa:         []string{},
		VisaOnArrival: []string{},
		Required:      []string{},
	}

	for _, c := range t.countries {
		if c.Code == passport {
			continue
		}
		raw, ok := t.Lookup(passport, c.Code)
		if !ok {
			raw = defaultRequirementToken
		}
		category, _ := CategorizeRequirement(raw)

		switch category {
		case entities.CategoryVisaFree:
			buckets.VisaFree = append(buckets.VisaFree, c.Name)
		case entities.CategoryEVisa, entities.CategoryETA:
			buckets.EVisa = append(buckets.EVisa, c.Name)
		case entities.CategoryVisaOnArrival:
			buckets.VisaOnArrival = append(buckets.VisaOnArrival, c.Name)
		default:
			buckets.Required = append(buckets.Required, c.Name)
		}
	}
	return buckets
}
