package appointment

import (
	"context"

	domain "github.com/BruksfildServices01/practice-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/practice-scheduler/internal/models"
	"github.com/BruksfildServices01/practice-scheduler/internal/timezone"
)

const PublicUpcomingLimit = 10

// ListUpcomingPublic returns the next appointments across all
// practitioners, starting now.
type ListUpcomingPublic struct {
	repo  domain.Repository
	clock timezone.Clock
}

func NewListUpcomingPublic(repo domain.Repository, clock timezone.Clock) *ListUpcomingPublic {
	return &ListUpcomingPublic{repo: repo, clock: clock}
}

func (uc *ListUpcomingPublic) Execute(ctx context.Context) ([]models.Appointment, error) {
	now := uc.clock.Now()
	return uc.repo.ListAppointments(ctx, domain.ListFilter{
		From:  &now,
		Limit: PublicUpcomingLimit,
	})
}
