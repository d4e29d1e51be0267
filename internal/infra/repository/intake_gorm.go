package repository

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BruksfildServices01/practice-scheduler/internal/domain/intake"
	"github.com/BruksfildServices01/practice-scheduler/internal/httperr"
	"github.com/BruksfildServices01/practice-scheduler/internal/models"
)

type IntakeGormRepository struct {
	db *gorm.DB
}

func NewIntakeGormRepository(db *gorm.DB) *IntakeGormRepository {
	return &IntakeGormRepository{db: db}
}

// --------------------------------------------------
// Templates
// --------------------------------------------------

func (r *IntakeGormRepository) CreateTemplate(ctx context.Context, t *models.IntakeTemplate) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		return errors.Wrap(err, "create intake template")
	}
	return nil
}

func (r *IntakeGormRepository) GetTemplate(ctx context.Context, id string) (*models.IntakeTemplate, error) {
	var t models.IntakeTemplate
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&t).Error; err != nil {
		return nil, notFoundOr(err, "template_not_found", "Intake template not found", "get intake template")
	}
	return &t, nil
}

func (r *IntakeGormRepository) LatestActiveTemplate(ctx context.Context) (*models.IntakeTemplate, error) {
	var rows []models.IntakeTemplate
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC").
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "latest active intake template")
	}
	if len(rows) == 0 {
		return nil, httperr.ErrNotFound("no_active_template", "No active intake template")
	}
	return &rows[0], nil
}

func (r *IntakeGormRepository) ListActiveTemplates(ctx context.Context) ([]models.IntakeTemplate, error) {
	var rows []models.IntakeTemplate
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "list active intake templates")
	}
	return rows, nil
}

func (r *IntakeGormRepository) SetTemplateActive(ctx context.Context, id string, active bool) error {
	res := r.db.WithContext(ctx).
		Model(&models.IntakeTemplate{}).
		Where("id = ?", id).
		Update("is_active", active)
	if res.Error != nil {
		return notFoundOr(res.Error, "template_not_found", "Intake template not found", "set intake template active")
	}
	if res.RowsAffected == 0 {
		return httperr.ErrNotFound("template_not_found", "Intake template not found")
	}
	return nil
}

// --------------------------------------------------
// Submissions
// --------------------------------------------------

func (r *IntakeGormRepository) UpsertSubmission(
	ctx context.Context,
	s *models.IntakeSubmission,
) (*models.IntakeSubmission, error) {

	if s.ID == "" {
		s.ID = uuid.NewString()
	}

	if err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "appointment_id"}, {Name: "client_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"template_id", "answers_json", "submitted_at", "updated_at",
			}),
		}).
		Create(s).Error; err != nil {
		return nil, errors.Wrap(err, "upsert intake submission")
	}

	// On conflict the generated id above was discarded; read the stored row.
	stored, err := r.FindSubmission(ctx, s.AppointmentID, s.ClientID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, errors.Newf("intake submission for appointment %s vanished after upsert", s.AppointmentID)
	}
	return stored, nil
}

func (r *IntakeGormRepository) FindSubmission(
	ctx context.Context,
	appointmentID string,
	clientID string,
) (*models.IntakeSubmission, error) {

	var rows []models.IntakeSubmission
	if err := r.db.WithContext(ctx).
		Where("appointment_id = ? AND client_id = ?", appointmentID, clientID).
		Limit(1).
		Find(&rows).Error; err != nil {
		if isMissing(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "find intake submission")
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *IntakeGormRepository) CountSubmissions(ctx context.Context, appointmentID string) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).
		Model(&models.IntakeSubmission{}).
		Where("appointment_id = ?", appointmentID).
		Count(&n).Error; err != nil {
		return 0, errors.Wrap(err, "count intake submissions")
	}
	return n, nil
}

var _ intake.Repository = (*IntakeGormRepository)(nil)
