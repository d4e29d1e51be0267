package appointment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/practice-scheduler/internal/models"
)

type ListFilter struct {
	ClientID       string
	PractitionerID string
	From           *time.Time
	To             *time.Time
	Limit          int
}

type Repository interface {
	// -------- Appointment (create / conflict) --------

	// WithBookingLock runs fn in one transaction holding an exclusive lock
	// for every (practitionerID, day) key. fn must use the Repository it
	// receives.
	WithBookingLock(
		ctx context.Context,
		practitionerID string,
		days []string,
		fn func(tx Repository) error,
	) error

	FindOverlapping(
		ctx context.Context,
		practitionerID string,
		start time.Time,
		end time.Time,
	) ([]models.Appointment, error)

	CreateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	// -------- Appointment (state change) --------
	GetAppointment(
		ctx context.Context,
		id string,
	) (*models.Appointment, error)

	// UpdateAppointmentStatus persists ap only if the stored status is
	// still from.
	UpdateAppointmentStatus(
		ctx context.Context,
		ap *models.Appointment,
		from Status,
	) error

	// -------- Availability / listing --------
	ListBusy(
		ctx context.Context,
		practitionerID string,
		start time.Time,
		end time.Time,
	) ([]models.Appointment, error)

	ListAppointments(
		ctx context.Context,
		f ListFilter,
	) ([]models.Appointment, error)
}

// AvailabilityCache stores resolved slots per practitioner and date.
//
// Every Invalidate bumps the day's generation. Get reports the generation
// it saw and Set stores only while that generation is still current, so a
// result computed before a booking is never written back after it.
type AvailabilityCache interface {
	Get(ctx context.Context, practitionerID, date string) (slots []Slot, gen int64, hit bool, err error)
	Set(ctx context.Context, practitionerID, date string, gen int64, slots []Slot) (stored bool, err error)
	Invalidate(ctx context.Context, practitionerID string, dates ...string) error
}
