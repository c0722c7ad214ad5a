package facility

import "context"

// Repository defines the persistence interface for facilities.
type Repository interface {
	Create(ctx context.Context, f *Facility) error
	GetByID(ctx context.Context, id string) (*Facility, error)
	// GetForUpdate locks the row for the rest of the transaction.
	GetForUpdate(ctx context.Context, id string) (*Facility, error)
	SetActive(ctx context.Context, id string, active bool) error
	AddDoctorCount(ctx context.Context, id string, delta int) error
	AddPatientCount(ctx context.Context, id string, delta int) error
	// ObservePatient records a (facility, patient) sighting; reports whether
	// the pair was new.
	ObservePatient(ctx context.Context, facilityID, patientID string) (bool, error)
	ListObservedPatients(ctx context.Context, facilityID string, limit, offset int) ([]*ObservedPatient, int, error)
	List(ctx context.Context, limit, offset int) ([]*Facility, int, error)
}
