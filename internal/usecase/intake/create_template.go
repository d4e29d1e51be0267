package intake

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/practice-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/practice-scheduler/internal/domain/intake"
	"github.com/BruksfildServices01/practice-scheduler/internal/domain/user"
	"github.com/BruksfildServices01/practice-scheduler/internal/httperr"
	"github.com/BruksfildServices01/practice-scheduler/internal/models"
)

type CreateTemplateInput struct {
	Principal   user.Principal
	Name        string
	Description *string
	// IsActive defaults to true when nil.
	IsActive *bool
	Fields   []domain.Field
}

type CreateTemplate struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewCreateTemplate(repo domain.Repository, audit *audit.Dispatcher) *CreateTemplate {
	return &CreateTemplate{repo: repo, audit: audit}
}

func (uc *CreateTemplate) Execute(ctx context.Context, in CreateTemplateInput) (*domain.Template, error) {
	if !domain.CanManageTemplates(in.Principal) {
		return nil, httperr.ErrForbidden("forbidden", "Clients cannot create templates")
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, httperr.ErrInvalidInput("name_required", "template name is required")
	}
	if err := domain.CheckFields(in.Fields); err != nil {
		return nil, err
	}

	blob, err := domain.EncodeFields(in.Fields)
	if err != nil {
		return nil, err
	}

	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}

	t := &models.IntakeTemplate{
		ID:          uuid.NewString(),
		Name:        name,
		Description: in.Description,
		IsActive:    active,
		FieldsJSON:  blob,
	}
	if err := uc.repo.CreateTemplate(ctx, t); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		ActorID:  in.Principal.ID,
		Action:   "intake_template_created",
		Entity:   "intake_template",
		EntityID: t.ID,
		Metadata: map[string]any{"name": t.Name, "fields": len(in.Fields)},
	})

	return &domain.Template{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		IsActive:    t.IsActive,
		Fields:      in.Fields,
		CreatedAt:   t.CreatedAt,
	}, nil
}
