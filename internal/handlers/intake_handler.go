package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/practice-scheduler/internal/domain/intake"
	"github.com/BruksfildServices01/practice-scheduler/internal/dto"
	"github.com/BruksfildServices01/practice-scheduler/internal/httperr"
	"github.com/BruksfildServices01/practice-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/practice-scheduler/internal/middleware"
	"github.com/BruksfildServices01/practice-scheduler/internal/usecase/intake"
)

// ======================================================
// HANDLER
// ======================================================

type IntakeHandler struct {
	create     *intake.CreateTemplate
	active     *intake.ListActiveTemplates
	deactivate *intake.DeactivateTemplate
	forAppt    *intake.GetAppointmentIntake
	submit     *intake.SubmitIntake
}

func NewIntakeHandler(
	create *intake.CreateTemplate,
	active *intake.ListActiveTemplates,
	deactivate *intake.DeactivateTemplate,
	forAppt *intake.GetAppointmentIntake,
	submit *intake.SubmitIntake,
) *IntakeHandler {
	return &IntakeHandler{
		create:     create,
		active:     active,
		deactivate: deactivate,
		forAppt:    forAppt,
		submit:     submit,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateTemplateRequest struct {
	Name        string         `json:"name"`
	Description *string        `json:"description"`
	IsActive    *bool          `json:"is_active"`
	Fields      []domain.Field `json:"fields"`
}

// SubmitIntakeRequest keeps answers raw; the submission engine decodes
// and validates them against the template.
type SubmitIntakeRequest struct {
	AppointmentID string          `json:"appointment_id"`
	TemplateID    string          `json:"template_id"`
	Answers       json.RawMessage `json:"answers"`
}

// ======================================================
// TEMPLATES
// ======================================================

func (h *IntakeHandler) CreateTemplate(c *gin.Context) {
	p, _ := middleware.PrincipalFrom(c)

	var req CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Template body is not valid JSON")
		return
	}

	t, err := h.create.Execute(c.Request.Context(), intake.CreateTemplateInput{
		Principal:   p,
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
		Fields:      req.Fields,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Created(c, t)
}

func (h *IntakeHandler) ListActive(c *gin.Context) {
	ts, err := h.active.Execute(c.Request.Context())
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.List(c, ts)
}

func (h *IntakeHandler) Deactivate(c *gin.Context) {
	p, _ := middleware.PrincipalFrom(c)

	t, err := h.deactivate.Execute(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, t)
}

// ======================================================
// SUBMISSIONS
// ======================================================

func (h *IntakeHandler) ForAppointment(c *gin.Context) {
	p, _ := middleware.PrincipalFrom(c)

	out, err := h.forAppt.Execute(c.Request.Context(), p, c.Param("appointmentId"))
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"template":   out.Template,
		"submission": out.Submission,
		"client":     dto.UserFromModel(&out.Client),
	})
}

func (h *IntakeHandler) Submit(c *gin.Context) {
	p, _ := middleware.PrincipalFrom(c)

	var req SubmitIntakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Submission body is not valid JSON")
		return
	}

	s, err := h.submit.Execute(c.Request.Context(), intake.SubmitIntakeInput{
		Principal:     p,
		AppointmentID: req.AppointmentID,
		TemplateID:    req.TemplateID,
		Answers:       req.Answers,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, s)
}
