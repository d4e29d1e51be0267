package appointment

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/practice-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/practice-scheduler/internal/domain/user"
	"github.com/BruksfildServices01/practice-scheduler/internal/httperr"
	"github.com/BruksfildServices01/practice-scheduler/internal/models"
)

// ListAppointmentsInput narrows by period. Date (YYYY-MM-DD) and Month
// (YYYY-MM) are shorthands for a From/To range in the business zone.
type ListAppointmentsInput struct {
	Principal user.Principal

	Date  string
	Month string
	From  *time.Time
	To    *time.Time
}

type ListAppointments struct {
	repo     domain.Repository
	schedule Schedule
}

func NewListAppointments(repo domain.Repository, schedule Schedule) *ListAppointments {
	return &ListAppointments{repo: repo, schedule: schedule}
}

func (uc *ListAppointments) Execute(
	ctx context.Context,
	in ListAppointmentsInput,
) ([]models.Appointment, error) {

	f := domain.ListFilter{From: in.From, To: in.To}

	switch {
	case in.Date != "":
		day, err := uc.schedule.ParseDay(in.Date)
		if err != nil {
			return nil, httperr.ErrInvalidInput("invalid_date", "date must be YYYY-MM-DD")
		}
		end := day.AddDate(0, 0, 1)
		f.From, f.To = &day, &end

	case in.Month != "":
		start, err := time.ParseInLocation("2006-01", in.Month, uc.schedule.Location)
		if err != nil {
			return nil, httperr.ErrInvalidInput("invalid_month", "month must be YYYY-MM")
		}
		end := start.AddDate(0, 1, 0)
		f.From, f.To = &start, &end
	}

	if f.From != nil && f.To != nil && !f.To.After(*f.From) {
		return nil, httperr.ErrInvalidInput("invalid_time_range", "to must be after from")
	}

	f, err := domain.ScopeFor(in.Principal, f)
	if err != nil {
		return nil, err
	}

	return uc.repo.ListAppointments(ctx, f)
}
