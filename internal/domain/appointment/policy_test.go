package appointment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/practice-scheduler/internal/domain/user"
	"github.com/BruksfildServices01/practice-scheduler/internal/httperr"
	"github.com/BruksfildServices01/practice-scheduler/internal/models"
)

func TestCanTransition(t *testing.T) {
	ap := &models.Appointment{PractitionerID: "prac-1", ClientID: "client-1"}

	cases := []struct {
		name   string
		p      user.Principal
		target Status
		want   bool
	}{
		{"client cancels own", user.Principal{ID: "client-1", Role: user.RoleClient}, StatusCancelled, true},
		{"client confirms own", user.Principal{ID: "client-1", Role: user.RoleClient}, StatusConfirmed, false},
		{"client cancels other", user.Principal{ID: "client-2", Role: user.RoleClient}, StatusCancelled, false},
		{"practitioner confirms own", user.Principal{ID: "prac-1", Role: user.RolePractitioner}, StatusConfirmed, true},
		{"practitioner completes other", user.Principal{ID: "prac-2", Role: user.RolePractitioner}, StatusCompleted, false},
		{"admin completes any", user.Principal{ID: "admin", Role: user.RoleAdmin}, StatusCompleted, true},
		{"unknown role", user.Principal{ID: "client-1", Role: "GUEST"}, StatusCancelled, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanTransition(tc.p, ap, tc.target))
		})
	}
}

func TestResolveBookingClient(t *testing.T) {
	id, err := ResolveBookingClient(user.Principal{ID: "client-1", Role: user.RoleClient}, "someone-else")
	require.NoError(t, err)
	assert.Equal(t, "client-1", id)

	_, err = ResolveBookingClient(user.Principal{ID: "prac-1", Role: user.RolePractitioner}, "")
	assert.True(t, httperr.IsKind(err, httperr.KindInvalidInput))

	id, err = ResolveBookingClient(user.Principal{ID: "admin", Role: user.RoleAdmin}, "client-9")
	require.NoError(t, err)
	assert.Equal(t, "client-9", id)
}

func TestScopeFor(t *testing.T) {
	f, err := ScopeFor(user.Principal{ID: "client-1", Role: user.RoleClient}, ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, ListFilter{ClientID: "client-1"}, f)

	f, err = ScopeFor(user.Principal{ID: "prac-1", Role: user.RolePractitioner}, ListFilter{ClientID: "x"})
	require.NoError(t, err)
	assert.Equal(t, "prac-1", f.PractitionerID)

	f, err = ScopeFor(user.Principal{ID: "admin", Role: user.RoleAdmin}, ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, ListFilter{}, f)
}
