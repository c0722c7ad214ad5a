package individual

import "time"

// Individual maps to the individual table. The principal is the primary key;
// one record per principal, never deleted, deactivation is a tombstone flag.
type Individual struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	DateOfBirth  string    `db:"date_of_birth" json:"date_of_birth"`
	BloodGroup   string    `db:"blood_group" json:"blood_group"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	RegisteredAt time.Time `db:"registered_at" json:"registered_at"`
}
