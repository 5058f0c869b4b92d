package constants

import (
	"database/sql/driver"
	"fmt"
)

// ApplicationStatus is the lifecycle state of a visa application.
type ApplicationStatus string

const (
	StatusDraft                 ApplicationStatus = "Draft"
	StatusNeedsCorrection       ApplicationStatus = "Needs correction"
	StatusReadyToSubmit         ApplicationStatus = "Ready to submit"
	StatusSubmitted             ApplicationStatus = "Submitted"
	StatusUnderGovernmentReview ApplicationStatus = "Under government review"
	StatusApproved              ApplicationStatus = "Approved"
	StatusRejected              ApplicationStatus = "Rejected"
)

// ApplicationStatuses lists every status in lifecycle order.
var ApplicationStatuses = []ApplicationStatus{
	StatusDraft,
	StatusNeedsCorrection,
	StatusReadyToSubmit,
	StatusSubmitted,
	StatusUnderGovernmentReview,
	StatusApproved,
	StatusRejected,
}

func (s ApplicationStatus) String() string { return string(s) }

// Valid reports whether s is one of the known statuses.
func (s ApplicationStatus) Valid() bool {
	for _, known := range ApplicationStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Scan implements the sql.Scanner interface
func (s *ApplicationStatus) Scan(src interface{}) error {
	if src == nil {
		*s = ""
		return nil
	}
	switch v := src.(type) {
	case string:
		*s = ApplicationStatus(v)
	case []byte:
		*s = ApplicationStatus(v)
	default:
		return fmt.Errorf("ApplicationStatus: cannot scan type %T", src)
	}
	return nil
}

// Value implements the driver.Valuer interface
func (s ApplicationStatus) Value() (driver.Value, error) { return string(s), nil }
