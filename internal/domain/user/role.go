package user

type Role string

const (
	RoleClient       Role = "CLIENT"
	RolePractitioner Role = "PRACTITIONER"
	RoleAdmin        Role = "ADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleClient, RolePractitioner, RoleAdmin:
		return true
	}
	return false
}

// Principal is the verified actor attached to a request.
type Principal struct {
	ID   string
	Role Role
}

func (p Principal) IsAdmin() bool        { return p.Role == RoleAdmin }
func (p Principal) IsPractitioner() bool { return p.Role == RolePractitioner }
func (p Principal) IsClient() bool       { return p.Role == RoleClient }
