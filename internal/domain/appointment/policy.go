package appointment

import (
	"github.com/BruksfildServices01/practice-scheduler/internal/domain/user"
	"github.com/BruksfildServices01/practice-scheduler/internal/httperr"
	"github.com/BruksfildServices01/practice-scheduler/internal/models"
)

// CanView reports whether p may read ap.
func CanView(p user.Principal, ap *models.Appointment) bool {
	switch p.Role {
	case user.RoleAdmin:
		return true
	case user.RolePractitioner:
		return ap.PractitionerID == p.ID
	case user.RoleClient:
		return ap.ClientID == p.ID
	}
	return false
}

// CanTransition reports whether p may move ap to target. Clients may only
// cancel their own bookings.
func CanTransition(p user.Principal, ap *models.Appointment, target Status) bool {
	switch p.Role {
	case user.RoleAdmin:
		return true
	case user.RolePractitioner:
		return ap.PractitionerID == p.ID
	case user.RoleClient:
		return ap.ClientID == p.ID && target == StatusCancelled
	}
	return false
}

// ResolveBookingClient picks the client a booking is made for.
func ResolveBookingClient(p user.Principal, requested string) (string, error) {
	switch p.Role {
	case user.RoleClient:
		return p.ID, nil
	case user.RolePractitioner, user.RoleAdmin:
		if requested == "" {
			return "", httperr.ErrInvalidInput(
				"client_id_required",
				"client_id is required when booking as practitioner or admin",
			)
		}
		return requested, nil
	}
	return "", httperr.ErrForbidden("forbidden", "not allowed to create appointments")
}

// ScopeFor narrows a listing to what p is allowed to see.
func ScopeFor(p user.Principal, f ListFilter) (ListFilter, error) {
	switch p.Role {
	case user.RoleClient:
		f.ClientID = p.ID
	case user.RolePractitioner:
		f.PractitionerID = p.ID
	case user.RoleAdmin:
	default:
		return f, httperr.ErrForbidden("forbidden", "unknown role")
	}
	return f, nil
}
