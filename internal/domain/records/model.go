package records

import "time"

// Record maps to the medical_record table. IDs are assigned by a ledger-wide
// monotonic sequence. Rows are never deleted; isActive is carried for parity
// with the audit posture of the rest of the system although no operation
// currently flips it.
type Record struct {
	ID                 int64     `db:"id" json:"id"`
	PatientID          string    `db:"patient_id" json:"patient_id"`
	DoctorID           string    `db:"doctor_id" json:"doctor_id"`
	Diagnosis          string    `db:"diagnosis" json:"diagnosis"`
	Symptoms           []string  `db:"symptoms" json:"symptoms"`
	Prescription       string    `db:"prescription" json:"prescription"`
	TreatmentPlan      string    `db:"treatment_plan" json:"treatment_plan"`
	ExternalDocPointer string    `db:"external_doc_pointer" json:"external_doc_pointer"`
	IsActive           bool      `db:"is_active" json:"is_active"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// CreateInput carries the fields a practitioner submits for a new record.
type CreateInput struct {
	PatientID          string   `json:"patient_id"`
	Diagnosis          string   `json:"diagnosis"`
	Symptoms           []string `json:"symptoms"`
	Prescription       string   `json:"prescription"`
	TreatmentPlan      string   `json:"treatment_plan"`
	ExternalDocPointer string   `json:"external_doc_pointer"`
}

// UpdateInput patches a record. Nil fields keep the stored value.
type UpdateInput struct {
	Diagnosis          *string   `json:"diagnosis"`
	Symptoms           *[]string `json:"symptoms"`
	Prescription       *string   `json:"prescription"`
	TreatmentPlan      *string   `json:"treatment_plan"`
	ExternalDocPointer *string   `json:"external_doc_pointer"`
}
