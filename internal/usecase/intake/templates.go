package intake

import (
	"context"

	"github.com/BruksfildServices01/practice-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/practice-scheduler/internal/domain/intake"
	"github.com/BruksfildServices01/practice-scheduler/internal/domain/user"
	"github.com/BruksfildServices01/practice-scheduler/internal/httperr"
)

// --------------------------------------------------
// Active templates
// --------------------------------------------------

type ListActiveTemplates struct {
	repo domain.Repository
}

func NewListActiveTemplates(repo domain.Repository) *ListActiveTemplates {
	return &ListActiveTemplates{repo: repo}
}

func (uc *ListActiveTemplates) Execute(ctx context.Context) ([]domain.Template, error) {
	rows, err := uc.repo.ListActiveTemplates(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Template, 0, len(rows))
	for i := range rows {
		t, err := domain.TemplateFromModel(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, nil
}

type ResolveActiveTemplate struct {
	repo domain.Repository
}

func NewResolveActiveTemplate(repo domain.Repository) *ResolveActiveTemplate {
	return &ResolveActiveTemplate{repo: repo}
}

// Execute returns the most recently created active template.
func (uc *ResolveActiveTemplate) Execute(ctx context.Context) (*domain.Template, error) {
	row, err := uc.repo.LatestActiveTemplate(ctx)
	if err != nil {
		return nil, err
	}
	return domain.TemplateFromModel(row)
}

// --------------------------------------------------
// Deactivation
// --------------------------------------------------

type DeactivateTemplate struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewDeactivateTemplate(repo domain.Repository, audit *audit.Dispatcher) *DeactivateTemplate {
	return &DeactivateTemplate{repo: repo, audit: audit}
}

func (uc *DeactivateTemplate) Execute(ctx context.Context, p user.Principal, id string) (*domain.Template, error) {
	if !domain.CanManageTemplates(p) {
		return nil, httperr.ErrForbidden("forbidden", "Clients cannot manage templates")
	}

	if err := uc.repo.SetTemplateActive(ctx, id, false); err != nil {
		return nil, err
	}

	row, err := uc.repo.GetTemplate(ctx, id)
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		ActorID:  p.ID,
		Action:   "intake_template_deactivated",
		Entity:   "intake_template",
		EntityID: id,
	})

	return domain.TemplateFromModel(row)
}
