package facility

import "time"

// Facility maps to the facility table. The principal is the primary key.
// Registration is blocked only on a duplicate principal; two facilities may
// share a registration number.
type Facility struct {
	ID                 string    `db:"id" json:"id"`
	Name               string    `db:"name" json:"name"`
	RegistrationNumber string    `db:"registration_number" json:"registration_number"`
	IsActive           bool      `db:"is_active" json:"is_active"`
	DoctorCount        int       `db:"doctor_count" json:"doctor_count"`
	PatientCount       int       `db:"patient_count" json:"patient_count"`
	RegisteredAt       time.Time `db:"registered_at" json:"registered_at"`
}

// ObservedPatient maps to the facility_patient table: one row per distinct
// patient any of the facility's practitioners has written a record for.
type ObservedPatient struct {
	FacilityID  string    `db:"facility_id" json:"facility_id"`
	PatientID   string    `db:"patient_id" json:"patient_id"`
	FirstSeenAt time.Time `db:"first_seen_at" json:"first_seen_at"`
}
