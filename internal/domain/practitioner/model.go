package practitioner

import "time"

// Practitioner maps to the practitioner table. The principal is the primary
// key; each practitioner is bound to exactly one facility for life. Removal
// from the roster is a tombstone, never a row delete, so re-registration
// under a new facility is blocked by design.
type Practitioner struct {
	ID             string    `db:"id" json:"id"`
	LicenseNumber  string    `db:"license_number" json:"license_number"`
	FacilityID     string    `db:"facility_id" json:"facility_id"`
	Name           string    `db:"name" json:"name"`
	Specialization string    `db:"specialization" json:"specialization"`
	IsActive       bool      `db:"is_active" json:"is_active"`
	RegisteredAt   time.Time `db:"registered_at" json:"registered_at"`
}
