package appointment

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/practice-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/practice-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/practice-scheduler/internal/domain/user"
	"github.com/BruksfildServices01/practice-scheduler/internal/httperr"
	"github.com/BruksfildServices01/practice-scheduler/internal/metrics"
	"github.com/BruksfildServices01/practice-scheduler/internal/models"
)

// ======================================================
// INPUT
// ======================================================

type CreateAppointmentInput struct {
	Principal user.Principal

	PractitionerID string
	// ClientID is ignored when a CLIENT books.
	ClientID string

	StartsAt time.Time
	EndsAt   time.Time
}

// ======================================================
// USE CASE
// ======================================================

type CreateAppointment struct {
	repo     domain.Repository
	users    user.Repository
	cache    domain.AvailabilityCache
	audit    *audit.Dispatcher
	metrics  *metrics.SchedulingMetrics
	schedule Schedule
	logger   zerolog.Logger
}

func NewCreateAppointment(
	repo domain.Repository,
	users user.Repository,
	cache domain.AvailabilityCache,
	audit *audit.Dispatcher,
	m *metrics.SchedulingMetrics,
	schedule Schedule,
	logger zerolog.Logger,
) *CreateAppointment {
	return &CreateAppointment{
		repo:     repo,
		users:    users,
		cache:    cache,
		audit:    audit,
		metrics:  m,
		schedule: schedule,
		logger:   logger,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateAppointment) Execute(
	ctx context.Context,
	in CreateAppointmentInput,
) (*models.Appointment, error) {

	ap, err := uc.execute(ctx, in)
	switch {
	case err == nil:
		uc.metrics.ObserveBooking(metrics.BookingCreated)
	case httperr.IsKind(err, httperr.KindSlotConflict):
		uc.metrics.ObserveBooking(metrics.BookingConflict)
	case isBusiness(err):
		uc.metrics.ObserveBooking(metrics.BookingRejected)
	default:
		uc.metrics.ObserveBooking(metrics.BookingFailed)
	}
	return ap, err
}

func (uc *CreateAppointment) execute(
	ctx context.Context,
	in CreateAppointmentInput,
) (*models.Appointment, error) {

	// --------------------------------------------------
	// 1. Client from role
	// --------------------------------------------------
	clientID, err := domain.ResolveBookingClient(in.Principal, strings.TrimSpace(in.ClientID))
	if err != nil {
		return nil, err
	}

	practitionerID := strings.TrimSpace(in.PractitionerID)
	if practitionerID == "" {
		return nil, httperr.ErrInvalidInput("practitioner_id_required", "practitioner_id is required")
	}

	// --------------------------------------------------
	// 2. Window
	// --------------------------------------------------
	if in.StartsAt.IsZero() || in.EndsAt.IsZero() {
		return nil, httperr.ErrInvalidInput("invalid_date", "starts_at and ends_at are required")
	}
	if !in.EndsAt.After(in.StartsAt) {
		return nil, httperr.ErrInvalidInput("invalid_time_range", "end time must be after start time")
	}

	// --------------------------------------------------
	// 3. Participants
	// --------------------------------------------------
	practitioner, err := loadPractitioner(ctx, uc.users, practitionerID)
	if err != nil {
		return nil, err
	}

	client, err := uc.users.GetUserByID(ctx, clientID)
	if err != nil {
		if httperr.IsKind(err, httperr.KindNotFound) {
			return nil, httperr.ErrNotFound("client_not_found", "Client not found")
		}
		return nil, err
	}

	// --------------------------------------------------
	// 4. Locked check-then-create
	// --------------------------------------------------
	ap := &models.Appointment{
		ID:             uuid.NewString(),
		PractitionerID: practitioner.ID,
		ClientID:       client.ID,
		StartsAt:       in.StartsAt,
		EndsAt:         in.EndsAt,
		Status:         string(domain.InitialStatus()),
	}

	days := domain.BookingDays(ap.StartsAt, ap.EndsAt, uc.schedule.Location)

	err = uc.repo.WithBookingLock(ctx, practitioner.ID, days, func(tx domain.Repository) error {
		overlapping, err := tx.FindOverlapping(ctx, ap.PractitionerID, ap.StartsAt, ap.EndsAt)
		if err != nil {
			return err
		}
		if len(overlapping) > 0 {
			return httperr.ErrSlotConflict()
		}
		return tx.CreateAppointment(ctx, ap)
	})
	if err != nil {
		if httperr.IsKind(err, httperr.KindSlotConflict) {
			uc.audit.Dispatch(audit.Event{
				ActorID: in.Principal.ID,
				Action:  "appointment_conflict",
				Entity:  "appointment",
				Metadata: map[string]any{
					"practitioner_id": ap.PractitionerID,
					"starts_at":       ap.StartsAt,
					"ends_at":         ap.EndsAt,
				},
			})
		}
		return nil, err
	}

	invalidate(ctx, uc.cache, uc.logger, ap.PractitionerID, days)

	// --------------------------------------------------
	// 5. Audit
	// --------------------------------------------------
	uc.audit.Dispatch(audit.Event{
		ActorID:  in.Principal.ID,
		Action:   "appointment_created",
		Entity:   "appointment",
		EntityID: ap.ID,
		Metadata: map[string]any{
			"practitioner_id": ap.PractitionerID,
			"client_id":       ap.ClientID,
			"starts_at":       ap.StartsAt,
			"ends_at":         ap.EndsAt,
		},
	})

	ap.Practitioner = *practitioner
	ap.Client = *client
	return ap, nil
}

func isBusiness(err error) bool {
	_, ok := httperr.AsBusiness(err)
	return ok
}

func invalidate(
	ctx context.Context,
	cache domain.AvailabilityCache,
	logger zerolog.Logger,
	practitionerID string,
	days []string,
) {
	if cache == nil {
		return
	}
	if err := cache.Invalidate(ctx, practitionerID, days...); err != nil {
		logger.Warn().Err(err).
			Str("practitioner_id", practitionerID).
			Strs("days", days).
			Msg("availability cache invalidation failed")
	}
}
