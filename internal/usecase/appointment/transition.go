package appointment

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/practice-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/practice-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/practice-scheduler/internal/domain/user"
	"github.com/BruksfildServices01/practice-scheduler/internal/httperr"
	"github.com/BruksfildServices01/practice-scheduler/internal/metrics"
	"github.com/BruksfildServices01/practice-scheduler/internal/models"
	"github.com/BruksfildServices01/practice-scheduler/internal/timezone"
)

type TransitionInput struct {
	Principal     user.Principal
	AppointmentID string
	Target        domain.Status
}

type TransitionAppointment struct {
	repo     domain.Repository
	cache    domain.AvailabilityCache
	audit    *audit.Dispatcher
	metrics  *metrics.SchedulingMetrics
	clock    timezone.Clock
	schedule Schedule
	logger   zerolog.Logger
}

func NewTransitionAppointment(
	repo domain.Repository,
	cache domain.AvailabilityCache,
	audit *audit.Dispatcher,
	m *metrics.SchedulingMetrics,
	clock timezone.Clock,
	schedule Schedule,
	logger zerolog.Logger,
) *TransitionAppointment {
	return &TransitionAppointment{
		repo:     repo,
		cache:    cache,
		audit:    audit,
		metrics:  m,
		clock:    clock,
		schedule: schedule,
		logger:   logger,
	}
}

func (uc *TransitionAppointment) Execute(
	ctx context.Context,
	in TransitionInput,
) (*models.Appointment, error) {

	ap, err := uc.repo.GetAppointment(ctx, in.AppointmentID)
	if err != nil {
		return nil, err
	}

	if !domain.CanTransition(in.Principal, ap, in.Target) {
		return nil, httperr.ErrForbidden("forbidden", "not allowed to change this appointment")
	}

	from := domain.Status(ap.Status)
	if err := domain.Transition(ap, in.Target, uc.clock.Now()); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateAppointmentStatus(ctx, ap, from); err != nil {
		return nil, err
	}

	uc.metrics.ObserveTransition(string(from), ap.Status)

	invalidate(ctx, uc.cache, uc.logger, ap.PractitionerID,
		domain.BookingDays(ap.StartsAt, ap.EndsAt, uc.schedule.Location))

	uc.audit.Dispatch(audit.Event{
		ActorID:  in.Principal.ID,
		Action:   "appointment_" + strings.ToLower(ap.Status),
		Entity:   "appointment",
		EntityID: ap.ID,
		Metadata: map[string]any{"from": string(from), "to": ap.Status},
	})

	return ap, nil
}
