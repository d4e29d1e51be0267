package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/practice-scheduler/internal/models"
)

func TestAppointmentFromModel_Participants(t *testing.T) {
	ap := models.Appointment{
		ID:             "a-1",
		PractitionerID: "p-1",
		ClientID:       "c-1",
		StartsAt:       time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
		EndsAt:         time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC),
		Status:         "PENDING",
		Practitioner:   models.User{ID: "p-1", FirstName: "Ana", LastName: "Lima", Email: "ana@example.com"},
	}

	got := AppointmentFromModel(&ap)

	require.NotNil(t, got.Practitioner)
	assert.Equal(t, "Ana Lima", got.Practitioner.Name)
	assert.Nil(t, got.Client)
}

func TestPublicAppointments_HideClient(t *testing.T) {
	aps := []models.Appointment{{
		ID:             "a-1",
		PractitionerID: "p-1",
		ClientID:       "c-1",
		Client:         models.User{ID: "c-1", Email: "secret@example.com"},
		Practitioner:   models.User{ID: "p-1", FirstName: "Ana"},
	}}

	b, err := json.Marshal(PublicAppointmentsFromModels(aps))
	require.NoError(t, err)

	assert.NotContains(t, string(b), "c-1")
	assert.NotContains(t, string(b), "secret@example.com")
	assert.Contains(t, string(b), `"practitioner_name":"Ana"`)
}
