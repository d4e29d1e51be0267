package intake

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/practice-scheduler/internal/audit"
	apptdomain "github.com/BruksfildServices01/practice-scheduler/internal/domain/appointment"
	domain "github.com/BruksfildServices01/practice-scheduler/internal/domain/intake"
	"github.com/BruksfildServices01/practice-scheduler/internal/domain/user"
	"github.com/BruksfildServices01/practice-scheduler/internal/httperr"
	"github.com/BruksfildServices01/practice-scheduler/internal/metrics"
	"github.com/BruksfildServices01/practice-scheduler/internal/models"
	"github.com/BruksfildServices01/practice-scheduler/internal/timezone"
)

// ======================================================
// INPUT / OUTPUT
// ======================================================

type SubmitIntakeInput struct {
	Principal     user.Principal
	AppointmentID string
	TemplateID    string
	Answers       json.RawMessage
}

// Submission is a stored answer-set with the answers echoed as received.
type Submission struct {
	ID            string          `json:"id"`
	AppointmentID string          `json:"appointment_id"`
	ClientID      string          `json:"client_id"`
	TemplateID    string          `json:"template_id"`
	Answers       json.RawMessage `json:"answers"`
	SubmittedAt   time.Time       `json:"submitted_at"`
}

func submissionFromModel(s *models.IntakeSubmission) *Submission {
	return &Submission{
		ID:            s.ID,
		AppointmentID: s.AppointmentID,
		ClientID:      s.ClientID,
		TemplateID:    s.TemplateID,
		Answers:       json.RawMessage(s.AnswersJSON),
		SubmittedAt:   s.SubmittedAt,
	}
}

// ======================================================
// USE CASE
// ======================================================

type SubmitIntake struct {
	repo         domain.Repository
	appointments apptdomain.Repository
	archiver     domain.Archiver
	audit        *audit.Dispatcher
	metrics      *metrics.SchedulingMetrics
	clock        timezone.Clock
	logger       zerolog.Logger
}

// NewSubmitIntake wires the submission engine. archiver and m may be nil.
func NewSubmitIntake(
	repo domain.Repository,
	appointments apptdomain.Repository,
	archiver domain.Archiver,
	audit *audit.Dispatcher,
	m *metrics.SchedulingMetrics,
	clock timezone.Clock,
	logger zerolog.Logger,
) *SubmitIntake {
	return &SubmitIntake{
		repo:         repo,
		appointments: appointments,
		archiver:     archiver,
		audit:        audit,
		metrics:      m,
		clock:        clock,
		logger:       logger,
	}
}

func (uc *SubmitIntake) Execute(ctx context.Context, in SubmitIntakeInput) (*Submission, error) {
	out, err := uc.execute(ctx, in)
	switch {
	case err == nil:
		uc.metrics.ObserveSubmission(metrics.SubmissionStored)
	case httperr.IsKind(err, httperr.KindValidation):
		uc.metrics.ObserveSubmission(metrics.SubmissionInvalid)
	case isBusiness(err):
		uc.metrics.ObserveSubmission(metrics.SubmissionRejected)
	default:
		uc.metrics.ObserveSubmission(metrics.SubmissionFailed)
	}
	return out, err
}

func (uc *SubmitIntake) execute(ctx context.Context, in SubmitIntakeInput) (*Submission, error) {

	// --------------------------------------------------
	// 1. Shape
	// --------------------------------------------------
	appointmentID := strings.TrimSpace(in.AppointmentID)
	templateID := strings.TrimSpace(in.TemplateID)
	if appointmentID == "" {
		return nil, httperr.ErrInvalidInput("appointment_id_required", "appointment_id is required")
	}
	if templateID == "" {
		return nil, httperr.ErrInvalidInput("template_id_required", "template_id is required")
	}

	answers, err := domain.DecodeAnswers(in.Answers)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 2. Appointment + authorization
	// --------------------------------------------------
	ap, err := uc.appointments.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if !domain.CanSubmitIntake(in.Principal, ap) {
		return nil, httperr.ErrForbidden("forbidden", "You are not the client for this appointment")
	}

	// --------------------------------------------------
	// 3. Template + answers
	// --------------------------------------------------
	row, err := uc.repo.GetTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}
	tpl, err := domain.TemplateFromModel(row)
	if err != nil {
		return nil, err
	}

	if problems := domain.ValidateAnswers(tpl.Fields, answers); len(problems) > 0 {
		return nil, httperr.ErrValidation("intake_validation_failed", problems)
	}

	// --------------------------------------------------
	// 4. Upsert on (appointment, client)
	// --------------------------------------------------
	stored, err := uc.repo.UpsertSubmission(ctx, &models.IntakeSubmission{
		ID:            uuid.NewString(),
		AppointmentID: ap.ID,
		ClientID:      ap.ClientID,
		TemplateID:    tpl.ID,
		AnswersJSON:   string(in.Answers),
		SubmittedAt:   uc.clock.Now(),
	})
	if err != nil {
		return nil, err
	}

	if uc.archiver != nil {
		if err := uc.archiver.ArchiveSubmission(ctx, stored); err != nil {
			uc.logger.Warn().Err(err).Str("submission_id", stored.ID).Msg("intake archive failed")
		}
	}

	uc.audit.Dispatch(audit.Event{
		ActorID:  in.Principal.ID,
		Action:   "intake_submitted",
		Entity:   "intake_submission",
		EntityID: stored.ID,
		Metadata: map[string]any{
			"appointment_id": ap.ID,
			"template_id":    tpl.ID,
		},
	})

	return submissionFromModel(stored), nil
}

func isBusiness(err error) bool {
	_, ok := httperr.AsBusiness(err)
	return ok
}
