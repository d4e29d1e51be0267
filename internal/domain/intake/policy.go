package intake

import (
	"github.com/BruksfildServices01/practice-scheduler/internal/domain/user"
	"github.com/BruksfildServices01/practice-scheduler/internal/models"
)

// CanSubmitIntake allows the appointment's own client and admins.
func CanSubmitIntake(p user.Principal, ap *models.Appointment) bool {
	switch p.Role {
	case user.RoleAdmin:
		return true
	case user.RoleClient:
		return ap.ClientID == p.ID
	}
	return false
}

func CanManageTemplates(p user.Principal) bool {
	return p.Role == user.RolePractitioner || p.Role == user.RoleAdmin
}
