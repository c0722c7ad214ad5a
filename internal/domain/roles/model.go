package roles

import "time"

// Role is one of the fixed role kinds a principal may hold. A principal may
// hold several roles at once.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleFacility     Role = "facility"
	RolePractitioner Role = "practitioner"
	RoleIndividual   Role = "individual"
)

// Valid reports whether r is one of the known role kinds.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleFacility, RolePractitioner, RoleIndividual:
		return true
	}
	return false
}

// Assignment maps to the role_assignment table.
type Assignment struct {
	Principal string    `db:"principal" json:"principal"`
	Role      Role      `db:"role" json:"role"`
	GrantedBy string    `db:"granted_by" json:"granted_by"`
	GrantedAt time.Time `db:"granted_at" json:"granted_at"`
}
