package records

import "context"

// Repository defines the persistence interface for the record ledger.
type Repository interface {
	Create(ctx context.Context, r *Record) (int64, error)
	GetByID(ctx context.Context, id int64) (*Record, error)
	// GetForUpdate locks the row for the rest of the transaction.
	GetForUpdate(ctx context.Context, id int64) (*Record, error)
	Update(ctx context.Context, r *Record) error
	ListIDsForPatient(ctx context.Context, patientID string) ([]int64, error)
	ListIDsForDoctor(ctx context.Context, doctorID string) ([]int64, error)
	ListForPatient(ctx context.Context, patientID string) ([]*Record, error)
	// CountByDoctorForPatient reports how many of the patient's records the
	// doctor authored. The history read policy uses a nonzero count as the
	// implicit treating-practitioner grant.
	CountByDoctorForPatient(ctx context.Context, doctorID, patientID string) (int, error)
}
