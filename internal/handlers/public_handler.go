package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/practice-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/practice-scheduler/internal/dto"
	"github.com/BruksfildServices01/practice-scheduler/internal/httperr"
	"github.com/BruksfildServices01/practice-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/practice-scheduler/internal/usecase/account"
	"github.com/BruksfildServices01/practice-scheduler/internal/usecase/appointment"
)

////////////////////////////////////////////////////////
// HANDLER
////////////////////////////////////////////////////////

// PublicHandler serves the unauthenticated booking surface.
type PublicHandler struct {
	availability *appointment.GetAvailability
	accounts     *account.Service
}

func NewPublicHandler(availability *appointment.GetAvailability, accounts *account.Service) *PublicHandler {
	return &PublicHandler{availability: availability, accounts: accounts}
}

////////////////////////////////////////////////////////
// AVAILABILITY
////////////////////////////////////////////////////////

func (h *PublicHandler) Availability(c *gin.Context) {
	practitionerID := c.Query("practitioner_id")
	date := c.Query("date")

	slots, err := h.availability.Execute(
		c.Request.Context(),
		domain.AvailabilityInput{
			PractitionerID: practitionerID,
			Date:           date,
		},
	)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	if slots == nil {
		slots = []domain.Slot{}
	}

	c.JSON(http.StatusOK, gin.H{
		"practitioner_id": practitionerID,
		"date":            date,
		"slots":           slots,
	})
}

////////////////////////////////////////////////////////
// PRACTITIONERS
////////////////////////////////////////////////////////

func (h *PublicHandler) Practitioners(c *gin.Context) {
	users, err := h.accounts.ListPractitioners(c.Request.Context())
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.List(c, dto.PractitionersFromModels(users))
}
