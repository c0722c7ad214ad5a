package practitioner

import "context"

// Repository defines the persistence interface for practitioners.
type Repository interface {
	Create(ctx context.Context, p *Practitioner) error
	GetByID(ctx context.Context, id string) (*Practitioner, error)
	// GetForUpdate locks the row for the rest of the transaction.
	GetForUpdate(ctx context.Context, id string) (*Practitioner, error)
	UpdateProfile(ctx context.Context, id, name, specialization string) error
	SetActive(ctx context.Context, id string, active bool) error
	ListByFacility(ctx context.Context, facilityID string, limit, offset int) ([]*Practitioner, int, error)
}
