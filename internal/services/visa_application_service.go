package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"travel-desk/bookingcart/internal/common"
	"travel-desk/bookingcart/internal/constants"
	"travel-desk/bookingcart/internal/logging"
	"travel-desk/bookingcart/internal/metrics"
	"travel-desk/bookingcart/internal/models/dtos"
	"travel-desk/bookingcart/internal/models/entities"
)

// ApplicationStore persists visa applications. Get and Update return
// common.ErrApplicationNotFound for unknown ids. List returns newest first.
type ApplicationStore interface {
	Create(ctx context.Context, app *entities.VisaApplication) error
	Get(ctx context.Context, id string) (*entities.VisaApplication, error)
	List(ctx context.Context, status constants.ApplicationStatus) ([]entities.VisaApplication, error)
	Update(ctx context.Context, app *entities.VisaApplication) error
	CountByStatus(ctx context.Context) (map[constants.ApplicationStatus]int, error)
	Ping(ctx context.Context) error
}

// ApplicationEventPublisher receives lifecycle events after they are stored.
type ApplicationEventPublisher interface {
	Publish(ctx context.Context, event *common.ApplicationEvent) error
}

type VisaApplicationService struct {
	store     ApplicationStore
	visa      *VisaService
	metrics   *metrics.MetricsRegistry
	publisher ApplicationEventPublisher
	now       func() time.Time
}

// NewVisaApplicationService accepts a nil store; every call then fails with
// common.ErrStorageUnavailable so callers can fall back to local storage.
func NewVisaApplicationService(store ApplicationStore, visa *VisaService, m *metrics.MetricsRegistry) *VisaApplicationService {
	return &VisaApplicationService{
		store:   store,
		visa:    visa,
		metrics: m,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// SetPublisher enables lifecycle events. A nil publisher disables them.
func (svc *VisaApplicationService) SetPublisher(p ApplicationEventPublisher) {
	svc.publisher = p
}

func (svc *VisaApplicationService) Available() bool {
	return svc.store != nil
}

func (svc *VisaApplicationService) Ping(ctx context.Context) error {
	if svc.store == nil {
		return common.ErrStorageUnavailable
	}
	return svc.store.Ping(ctx)
}

// Create stores a new Draft application. The eligibility block is recomputed
// from its nationality, destination, purpose and arrival date so a stored
// application always reflects the current dataset.
func (svc *VisaApplicationService) Create(ctx context.Context, req dtos.CreateApplicationRequest) (*entities.VisaApplication, error) {
	if svc.store == nil {
		svc.record("create", "unavailable")
		return nil, common.ErrStorageUnavailable
	}

	applicant := entities.Applicant{
		FullName:       strings.TrimSpace(req.Applicant.FullName),
		Email:          strings.TrimSpace(req.Applicant.Email),
		PassportNumber: strings.ToUpper(strings.TrimSpace(req.Applicant.PassportNumber)),
	}
	if applicant.FullName == "" {
		return nil, common.NewValidationError("applicant.fullName is required")
	}
	if _, err := mail.ParseAddress(applicant.Email); err != nil {
		return nil, common.NewValidationError("applicant.email must be a valid email address")
	}

	eligibility, err := svc.visa.CheckEligibility(dtos.EligibilityRequest{
		Nationality: req.Eligibility.Nationality,
		Destination: req.Eligibility.Destination,
		Purpose:     req.Eligibility.Purpose,
		ArrivalDate: req.Eligibility.ArrivalDate,
	})
	if err != nil {
		return nil, err
	}
	if eligibility.NotApplicable {
		return nil, common.NewValidationError("no visa is needed to enter your own country")
	}

	option := strings.TrimSpace(req.ProcessingOption)
	if option != "" && !hasProcessingOption(eligibility.ProcessingOptions, option) {
		return nil, common.NewValidationError("unknown processingOption %q", option)
	}

	now := svc.now()
	app := &entities.VisaApplication{
		ID:               uuid.New().String(),
		CreatedAt:        now,
		UpdatedAt:        now,
		Status:           constants.StatusDraft,
		Applicant:        applicant,
		Eligibility:      eligibility,
		ProcessingOption: option,
	}

	if err := svc.store.Create(ctx, app); err != nil {
		svc.record("create", "error")
		return nil, err
	}
	svc.record("create", "ok")
	logging.Info("Visa application created",
		"id", app.ID,
		"nationality", eligibility.Nationality,
		"destination", eligibility.Destination,
		"category", eligibility.Category,
	)
	svc.publish(ctx, common.EventApplicationCreated, app, "")
	return app, nil
}

func (svc *VisaApplicationService) Get(ctx context.Context, id string) (*entities.VisaApplication, error) {
	if svc.store == nil {
		svc.record("get", "unavailable")
		return nil, common.ErrStorageUnavailable
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, common.NewValidationError("application id is required")
	}

	app, err := svc.store.Get(ctx, id)
	if err != nil {
		svc.record("get", outcome(err))
		return nil, err
	}
	svc.record("get", "ok")
	return app, nil
}

// List returns every application, or only those in status when it is set.
func (svc *VisaApplicationService) List(ctx context.Context, status string) ([]entities.VisaApplication, error) {
	if svc.store == nil {
		svc.record("list", "unavailable")
		return nil, common.ErrStorageUnavailable
	}

	filter := constants.ApplicationStatus(strings.TrimSpace(status))
	if filter != "" && !filter.Valid() {
		return nil, common.NewValidationError("unknown status %q", status)
	}

	apps, err := svc.store.List(ctx, filter)
	if err != nil {
		svc.record("list", "error")
		return nil, err
	}
	svc.record("list", "ok")
	return apps, nil
}

// Update applies an admin status and/or notes change. Concurrent updates to
// the same id are last-write-wins.
func (svc *VisaApplicationService) Update(ctx context.Context, id string, req dtos.UpdateApplicationRequest) (*entities.VisaApplication, error) {
	if svc.store == nil {
		svc.record("update", "unavailable")
		return nil, common.ErrStorageUnavailable
	}
	if req.Status == nil && req.AdminNotes == nil {
		return nil, common.NewValidationError("status or adminNotes is required")
	}

	var status constants.ApplicationStatus
	if req.Status != nil {
		status = constants.ApplicationStatus(strings.TrimSpace(*req.Status))
		if !status.Valid() {
			return nil, common.NewValidationError("unknown status %q", *req.Status)
		}
	}

	app, err := svc.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	previous := app.Status
	if req.Status != nil {
		app.Status = status
	}
	if req.AdminNotes != nil {
		app.AdminNotes = strings.TrimSpace(*req.AdminNotes)
	}
	app.UpdatedAt = svc.now()

	if err := svc.store.Update(ctx, app); err != nil {
		svc.record("update", outcome(err))
		return nil, err
	}
	svc.record("update", "ok")
	logging.Info("Visa application updated", "id", app.ID, "from", previous, "to", app.Status)
	if app.Status != previous {
		svc.publish(ctx, common.EventApplicationStatusChanged, app, previous)
	}
	return app, nil
}

// Stats counts applications per status. Every known status is present.
func (svc *VisaApplicationService) Stats(ctx context.Context) (int, map[string]int, error) {
	if svc.store == nil {
		return 0, nil, common.ErrStorageUnavailable
	}

	byStatus, err := svc.store.CountByStatus(ctx)
	if err != nil {
		return 0, nil, err
	}

	counts := make(map[string]int, len(constants.ApplicationStatuses))
	for _, s := range constants.ApplicationStatuses {
		counts[s.String()] = 0
	}
	total := 0
	for s, n := range byStatus {
		counts[s.String()] += n
		total += n
	}
	return total, counts, nil
}

// publish never fails the request; the application is already stored.
func (svc *VisaApplicationService) publish(ctx context.Context, eventType string, app *entities.VisaApplication, from constants.ApplicationStatus) {
	if svc.publisher == nil {
		return
	}
	event := &common.ApplicationEvent{
		Type:           eventType,
		ApplicationID:  app.ID,
		FromStatus:     from,
		ToStatus:       app.Status,
		ApplicantEmail: app.Applicant.Email,
		Destination:    app.Eligibility.Destination,
		OccurredAt:     app.UpdatedAt,
	}
	result := "published"
	if err := svc.publisher.Publish(ctx, event); err != nil {
		result = "publish_failed"
		logging.Warn("Failed to publish application event", "id", app.ID, "type", eventType, "error", err)
	}
	if svc.metrics != nil {
		svc.metrics.ApplicationEventsTotal.WithLabelValues(eventType, result).Inc()
	}
}

func (svc *VisaApplicationService) record(operation, result string) {
	if svc.metrics != nil {
		svc.metrics.ApplicationsTotal.WithLabelValues(operation, result).Inc()
	}
}

func outcome(err error) string {
	if errors.Is(err, common.ErrApplicationNotFound) {
		return "not_found"
	}
	return "error"
}

func hasProcessingOption(options []entities.ProcessingOption, label string) bool {
	for _, o := range options {
		if strings.EqualFold(o.Label, label) {
			return true
		}
	}
	return false
}
