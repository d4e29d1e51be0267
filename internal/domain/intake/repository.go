package intake

import (
	"context"

	"github.com/BruksfildServices01/practice-scheduler/internal/models"
)

type Repository interface {
	// -------- Templates --------
	CreateTemplate(
		ctx context.Context,
		t *models.IntakeTemplate,
	) error

	GetTemplate(
		ctx context.Context,
		id string,
	) (*models.IntakeTemplate, error)

	// LatestActiveTemplate returns the most recently created active template.
	LatestActiveTemplate(
		ctx context.Context,
	) (*models.IntakeTemplate, error)

	ListActiveTemplates(
		ctx context.Context,
	) ([]models.IntakeTemplate, error)

	SetTemplateActive(
		ctx context.Context,
		id string,
		active bool,
	) error

	// -------- Submissions --------

	// UpsertSubmission inserts or overwrites the submission keyed by
	// (AppointmentID, ClientID) and returns the stored row.
	UpsertSubmission(
		ctx context.Context,
		s *models.IntakeSubmission,
	) (*models.IntakeSubmission, error)

	// FindSubmission returns nil without error when nothing was submitted.
	FindSubmission(
		ctx context.Context,
		appointmentID string,
		clientID string,
	) (*models.IntakeSubmission, error)

	CountSubmissions(
		ctx context.Context,
		appointmentID string,
	) (int64, error)
}

// Archiver keeps an off-database copy of stored submissions.
type Archiver interface {
	ArchiveSubmission(ctx context.Context, s *models.IntakeSubmission) error
}
