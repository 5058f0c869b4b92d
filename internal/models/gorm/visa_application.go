package gorm

import (
	"time"

	"travel-desk/bookingcart/internal/constants"
)

// VisaApplication stores the queryable columns alongside the full record as
// a JSON payload.
type VisaApplication struct {
	ID             string                      `gorm:"column:id;primaryKey;type:varchar(36)"`
	Status         constants.ApplicationStatus `gorm:"column:status;type:varchar(40);not null;index"`
	Nationality    string                      `gorm:"column:nationality;type:varchar(2);not null"`
	Destination    string                      `gorm:"column:destination;type:varchar(2);not null"`
	ApplicantEmail string                      `gorm:"column:applicant_email;type:varchar(255)"`
	Payload        string                      `gorm:"column:payload;type:text;not null"`
	AdminNotes     string                      `gorm:"column:admin_notes;type:text"`
	CreatedAt      time.Time                   `gorm:"column:created_at;index"`
	UpdatedAt      time.Time                   `gorm:"column:updated_at"`
}

// TableName specifies the table name for GORM
func (VisaApplication) TableName() string {
	return "visa_applications"
}
