package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	gormlib "gorm.io/gorm"

	"travel-desk/bookingcart/internal/common"
	"travel-desk/bookingcart/internal/constants"
	"travel-desk/bookingcart/internal/models/entities"
	"travel-desk/bookingcart/internal/models/gorm"
)

// VisaApplicationRepository stores applications in SQL. CRUD goes through
// GORM; the status aggregate is a plain sqlx query.
type VisaApplicationRepository struct {
	db  *gormlib.DB
	sql *sqlx.DB
}

func NewVisaApplicationRepository(db *gormlib.DB, sqlDB *sqlx.DB) *VisaApplicationRepository {
	return &VisaApplicationRepository{db: db, sql: sqlDB}
}

func (r *VisaApplicationRepository) Create(ctx context.Context, app *entities.VisaApplication) error {
	row, err := toApplicationRow(app)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *VisaApplicationRepository) Get(ctx context.Context, id string) (*entities.VisaApplication, error) {
	var row gorm.VisaApplication
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gormlib.ErrRecordNotFound) {
			return nil, common.ErrApplicationNotFound
		}
		return nil, err
	}
	return fromApplicationRow(row)
}

func (r *VisaApplicationRepository) List(ctx context.Context, status constants.ApplicationStatus) ([]entities.VisaApplication, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC").Order("id")
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var rows []gorm.VisaApplication
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	apps := make([]entities.VisaApplication, 0, len(rows))
	for _, row := range rows {
		app, err := fromApplicationRow(row)
		if err != nil {
			return nil, err
		}
		apps = append(apps, *app)
	}
	return apps, nil
}

// Update overwrites the stored record; the last writer wins.
func (r *VisaApplicationRepository) Update(ctx context.Context, app *entities.VisaApplication) error {
	row, err := toApplicationRow(app)
	if err != nil {
		return err
	}

	res := r.db.WithContext(ctx).
		Model(&gorm.VisaApplication{}).
		Where("id = ?", app.ID).
		Updates(map[string]interface{}{
			"status":      row.Status,
			"payload":     row.Payload,
			"admin_notes": row.AdminNotes,
			"updated_at":  row.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return common.ErrApplicationNotFound
	}
	return nil
}

type statusCount struct {
	Status string `db:"status"`
	Total  int    `db:"total"`
}

func (r *VisaApplicationRepository) CountByStatus(ctx context.Context) (map[constants.ApplicationStatus]int, error) {
	var rows []statusCount
	if err := r.sql.SelectContext(ctx, &rows, constants.CountApplicationsByStatus); err != nil {
		return nil, fmt.Errorf("failed to count applications: %w", err)
	}

	counts := make(map[constants.ApplicationStatus]int, len(rows))
	for _, row := range rows {
		counts[constants.ApplicationStatus(row.Status)] = row.Total
	}
	return counts, nil
}

func (r *VisaApplicationRepository) Ping(ctx context.Context) error {
	return r.sql.PingContext(ctx)
}

func toApplicationRow(app *entities.VisaApplication) (*gorm.VisaApplication, error) {
	payload, err := json.Marshal(app)
	if err != nil {
		return nil, fmt.Errorf("failed to encode application %s: %w", app.ID, err)
	}
	return &gorm.VisaApplication{
		ID:             app.ID,
		Status:         app.Status,
		Nationality:    app.Eligibility.Nationality,
		Destination:    app.Eligibility.Destination,
		ApplicantEmail: app.Applicant.Email,
		Payload:        string(payload),
		AdminNotes:     app.AdminNotes,
		CreatedAt:      app.CreatedAt,
		UpdatedAt:      app.UpdatedAt,
	}, nil
}

// fromApplicationRow decodes the payload and lets the indexed columns win.
func fromApplicationRow(row gorm.VisaApplication) (*entities.VisaApplication, error) {
	var app entities.VisaApplication
	if err := json.Unmarshal([]byte(row.Payload), &app); err != nil {
		return nil, fmt.Errorf("failed to decode application %s: %w", row.ID, err)
	}
	app.ID = row.ID
	app.Status = row.Status
	app.AdminNotes = row.AdminNotes
	app.CreatedAt = row.CreatedAt.UTC()
	app.UpdatedAt = row.UpdatedAt.UTC()
	return &app, nil
}
