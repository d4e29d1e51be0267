package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/practice-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/practice-scheduler/internal/dto"
	"github.com/BruksfildServices01/practice-scheduler/internal/httperr"
	"github.com/BruksfildServices01/practice-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/practice-scheduler/internal/middleware"
	"github.com/BruksfildServices01/practice-scheduler/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	create     *appointment.CreateAppointment
	list       *appointment.ListAppointments
	upcoming   *appointment.ListUpcomingPublic
	transition *appointment.TransitionAppointment
}

func NewAppointmentHandler(
	create *appointment.CreateAppointment,
	list *appointment.ListAppointments,
	upcoming *appointment.ListUpcomingPublic,
	transition *appointment.TransitionAppointment,
) *AppointmentHandler {
	return &AppointmentHandler{
		create:     create,
		list:       list,
		upcoming:   upcoming,
		transition: transition,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateAppointmentRequest struct {
	PractitionerID string    `json:"practitioner_id"`
	ClientID       string    `json:"client_id"`
	StartsAt       time.Time `json:"starts_at"`
	EndsAt         time.Time `json:"ends_at"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ======================================================
// CREATE
// ======================================================

func (h *AppointmentHandler) Create(c *gin.Context) {
	p, _ := middleware.PrincipalFrom(c)

	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Request body must be JSON with RFC3339 starts_at and ends_at")
		return
	}

	ap, err := h.create.Execute(c.Request.Context(), appointment.CreateAppointmentInput{
		Principal:      p,
		PractitionerID: req.PractitionerID,
		ClientID:       req.ClientID,
		StartsAt:       req.StartsAt,
		EndsAt:         req.EndsAt,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Created(c, dto.AppointmentFromModel(ap))
}

// ======================================================
// LIST
// ======================================================

func (h *AppointmentHandler) List(c *gin.Context) {
	p, _ := middleware.PrincipalFrom(c)

	from, err := queryInstant(c, "from")
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	to, err := queryInstant(c, "to")
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	aps, err := h.list.Execute(c.Request.Context(), appointment.ListAppointmentsInput{
		Principal: p,
		Date:      c.Query("date"),
		Month:     c.Query("month"),
		From:      from,
		To:        to,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.List(c, dto.AppointmentsFromModels(aps))
}

func (h *AppointmentHandler) ListPublic(c *gin.Context) {
	aps, err := h.upcoming.Execute(c.Request.Context())
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.List(c, dto.PublicAppointmentsFromModels(aps))
}

// ======================================================
// STATUS
// ======================================================

func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "status is required")
		return
	}

	target, err := domain.ParseStatus(req.Status)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	h.move(c, target)
}

func (h *AppointmentHandler) Confirm(c *gin.Context)  { h.move(c, domain.StatusConfirmed) }
func (h *AppointmentHandler) Cancel(c *gin.Context)   { h.move(c, domain.StatusCancelled) }
func (h *AppointmentHandler) Complete(c *gin.Context) { h.move(c, domain.StatusCompleted) }

func (h *AppointmentHandler) move(c *gin.Context, target domain.Status) {
	p, _ := middleware.PrincipalFrom(c)

	ap, err := h.transition.Execute(c.Request.Context(), appointment.TransitionInput{
		Principal:     p,
		AppointmentID: c.Param("id"),
		Target:        target,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AppointmentFromModel(ap))
}
