package dto

import (
	"time"

	"github.com/BruksfildServices01/practice-scheduler/internal/models"
)

type ParticipantDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type AppointmentDTO struct {
	ID             string     `json:"id"`
	PractitionerID string     `json:"practitioner_id"`
	ClientID       string     `json:"client_id"`
	StartsAt       time.Time  `json:"starts_at"`
	EndsAt         time.Time  `json:"ends_at"`
	Status         string     `json:"status"`
	ConfirmedAt    *time.Time `json:"confirmed_at"`
	CancelledAt    *time.Time `json:"cancelled_at"`
	CompletedAt    *time.Time `json:"completed_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	Practitioner *ParticipantDTO `json:"practitioner,omitempty"`
	Client       *ParticipantDTO `json:"client,omitempty"`
}

// PublicAppointmentDTO is what anonymous callers see: no client identity.
type PublicAppointmentDTO struct {
	ID             string    `json:"id"`
	PractitionerID string    `json:"practitioner_id"`
	Practitioner   string    `json:"practitioner_name"`
	StartsAt       time.Time `json:"starts_at"`
	EndsAt         time.Time `json:"ends_at"`
	Status         string    `json:"status"`
}

func participant(u models.User) *ParticipantDTO {
	if u.ID == "" {
		return nil
	}
	return &ParticipantDTO{ID: u.ID, Name: u.FullName(), Email: u.Email}
}

func AppointmentFromModel(ap *models.Appointment) AppointmentDTO {
	return AppointmentDTO{
		ID:             ap.ID,
		PractitionerID: ap.PractitionerID,
		ClientID:       ap.ClientID,
		StartsAt:       ap.StartsAt,
		EndsAt:         ap.EndsAt,
		Status:         ap.Status,
		ConfirmedAt:    ap.ConfirmedAt,
		CancelledAt:    ap.CancelledAt,
		CompletedAt:    ap.CompletedAt,
		CreatedAt:      ap.CreatedAt,
		UpdatedAt:      ap.UpdatedAt,
		Practitioner:   participant(ap.Practitioner),
		Client:         participant(ap.Client),
	}
}

func AppointmentsFromModels(aps []models.Appointment) []AppointmentDTO {
	out := make([]AppointmentDTO, 0, len(aps))
	for i := range aps {
		out = append(out, AppointmentFromModel(&aps[i]))
	}
	return out
}

func PublicAppointmentsFromModels(aps []models.Appointment) []PublicAppointmentDTO {
	out := make([]PublicAppointmentDTO, 0, len(aps))
	for _, ap := range aps {
		out = append(out, PublicAppointmentDTO{
			ID:             ap.ID,
			PractitionerID: ap.PractitionerID,
			Practitioner:   ap.Practitioner.FullName(),
			StartsAt:       ap.StartsAt,
			EndsAt:         ap.EndsAt,
			Status:         ap.Status,
		})
	}
	return out
}
