package intake

import (
	"context"

	apptdomain "github.com/BruksfildServices01/practice-scheduler/internal/domain/appointment"
	domain "github.com/BruksfildServices01/practice-scheduler/internal/domain/intake"
	"github.com/BruksfildServices01/practice-scheduler/internal/domain/user"
	"github.com/BruksfildServices01/practice-scheduler/internal/httperr"
	"github.com/BruksfildServices01/practice-scheduler/internal/models"
)

// AppointmentIntake is the active template plus what the appointment's
// client already answered, if anything.
type AppointmentIntake struct {
	Template   *domain.Template
	Submission *Submission
	Client     models.User
}

type GetAppointmentIntake struct {
	repo         domain.Repository
	appointments apptdomain.Repository
}

func NewGetAppointmentIntake(repo domain.Repository, appointments apptdomain.Repository) *GetAppointmentIntake {
	return &GetAppointmentIntake{repo: repo, appointments: appointments}
}

func (uc *GetAppointmentIntake) Execute(
	ctx context.Context,
	p user.Principal,
	appointmentID string,
) (*AppointmentIntake, error) {

	ap, err := uc.appointments.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if !apptdomain.CanView(p, ap) {
		return nil, httperr.ErrForbidden("forbidden", "Not allowed to access this appointment")
	}

	row, err := uc.repo.LatestActiveTemplate(ctx)
	if err != nil {
		return nil, err
	}
	tpl, err := domain.TemplateFromModel(row)
	if err != nil {
		return nil, err
	}

	out := &AppointmentIntake{Template: tpl, Client: ap.Client}

	existing, err := uc.repo.FindSubmission(ctx, ap.ID, ap.ClientID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		out.Submission = submissionFromModel(existing)
	}

	return out, nil
}
