package consent

import "time"

// Grant maps to the consent_grant table. At most one row exists per
// (patient, grantee) pair; revocation flips isActive and a later re-grant
// flips it back, so the row doubles as the audit trail of the pair.
type Grant struct {
	PatientID string     `db:"patient_id" json:"patient_id"`
	GranteeID string     `db:"grantee_id" json:"grantee_id"`
	IsActive  bool       `db:"is_active" json:"is_active"`
	GrantedAt time.Time  `db:"granted_at" json:"granted_at"`
	RevokedAt *time.Time `db:"revoked_at" json:"revoked_at,omitempty"`
}
