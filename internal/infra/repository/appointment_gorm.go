package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/practice-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/practice-scheduler/internal/httperr"
	"github.com/BruksfildServices01/practice-scheduler/internal/models"
)

type AppointmentGormRepository struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

func NewAppointmentGormRepository(db *gorm.DB, lockTimeout time.Duration) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db, lockTimeout: lockTimeout}
}

// --------------------------------------------------
// Booking lock
// --------------------------------------------------

func BookingLockKey(practitionerID, day string) string {
	return practitionerID + "|" + day
}

// lockTimeoutMillis rounds up so a positive timeout never becomes 0ms,
// which Postgres reads as no timeout.
func lockTimeoutMillis(d time.Duration) int64 {
	ms := d.Milliseconds()
	if d%time.Millisecond != 0 {
		ms++
	}
	return ms
}

func (r *AppointmentGormRepository) WithBookingLock(
	ctx context.Context,
	practitionerID string,
	days []string,
	fn func(tx domain.Repository) error,
) error {

	keys := make([]string, 0, len(days))
	for _, d := range days {
		keys = append(keys, BookingLockKey(practitionerID, d))
	}
	sort.Strings(keys)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if r.lockTimeout > 0 {
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", lockTimeoutMillis(r.lockTimeout))
			if err := tx.Exec(stmt).Error; err != nil {
				return errors.Wrap(err, "set lock_timeout")
			}
		}

		for _, key := range keys {
			if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", key).Error; err != nil {
				if isSlotConflict(err) {
					return httperr.ErrSlotConflict()
				}
				return errors.Wrapf(err, "acquire booking lock %s", key)
			}
		}

		return fn(&AppointmentGormRepository{db: tx, lockTimeout: r.lockTimeout})
	})
}

// --------------------------------------------------
// Appointment (create / conflict)
// --------------------------------------------------

func (r *AppointmentGormRepository) FindOverlapping(
	ctx context.Context,
	practitionerID string,
	start time.Time,
	end time.Time,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where(
			"practitioner_id = ? AND status <> ? AND starts_at < ? AND ends_at > ?",
			practitionerID,
			string(domain.StatusCancelled),
			end,
			start,
		).
		Order("starts_at ASC").
		Find(&apps).Error; err != nil {
		return nil, errors.Wrap(err, "find overlapping appointments")
	}

	return apps, nil
}

func (r *AppointmentGormRepository) CreateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	if ap.ID == "" {
		ap.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(ap).Error; err != nil {
		if isSlotConflict(err) {
			return httperr.ErrSlotConflict()
		}
		return errors.Wrap(err, "create appointment")
	}
	return nil
}

// --------------------------------------------------
// Appointment (state change)
// --------------------------------------------------

func (r *AppointmentGormRepository) GetAppointment(
	ctx context.Context,
	id string,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Practitioner").
		Where("id = ?", id).
		Take(&ap).Error; err != nil {
		return nil, notFoundOr(err, "appointment_not_found", "Appointment not found", "get appointment")
	}

	return &ap, nil
}

func (r *AppointmentGormRepository) UpdateAppointmentStatus(
	ctx context.Context,
	ap *models.Appointment,
	from domain.Status,
) error {

	res := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("id = ? AND status = ?", ap.ID, string(from)).
		Updates(map[string]any{
			"status":       ap.Status,
			"confirmed_at": ap.ConfirmedAt,
			"cancelled_at": ap.CancelledAt,
			"completed_at": ap.CompletedAt,
		})
	if res.Error != nil {
		return errors.Wrap(res.Error, "update appointment status")
	}
	if res.RowsAffected == 0 {
		return httperr.ErrInvalidTransition(string(from), ap.Status)
	}

	return nil
}

// --------------------------------------------------
// Availability / listing
// --------------------------------------------------

func (r *AppointmentGormRepository) ListBusy(
	ctx context.Context,
	practitionerID string,
	start time.Time,
	end time.Time,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	if err := r.db.WithContext(ctx).
		Select("id", "starts_at", "ends_at", "status").
		Where(
			"practitioner_id = ? AND status <> ? AND starts_at < ? AND ends_at > ?",
			practitionerID,
			string(domain.StatusCancelled),
			end,
			start,
		).
		Order("starts_at ASC").
		Find(&apps).Error; err != nil {
		return nil, errors.Wrap(err, "list busy appointments")
	}

	return apps, nil
}

func (r *AppointmentGormRepository) ListAppointments(
	ctx context.Context,
	f domain.ListFilter,
) ([]models.Appointment, error) {

	q := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Practitioner")

	if f.ClientID != "" {
		q = q.Where("client_id = ?", f.ClientID)
	}
	if f.PractitionerID != "" {
		q = q.Where("practitioner_id = ?", f.PractitionerID)
	}
	if f.From != nil {
		q = q.Where("starts_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("starts_at < ?", *f.To)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var apps []models.Appointment
	if err := q.Order("starts_at ASC").Find(&apps).Error; err != nil {
		return nil, errors.Wrap(err, "list appointments")
	}

	return apps, nil
}

// Compile-time check
var _ domain.Repository = (*AppointmentGormRepository)(nil)
