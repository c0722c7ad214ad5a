package consent

import "context"

// Repository defines the persistence interface for consent grants.
type Repository interface {
	// Upsert creates the pair's grant or reactivates a revoked one.
	// Idempotent when the grant is already live.
	Upsert(ctx context.Context, patientID, granteeID string) error
	// Revoke deactivates a live grant; reports whether one existed.
	Revoke(ctx context.Context, patientID, granteeID string) (bool, error)
	HasActive(ctx context.Context, patientID, granteeID string) (bool, error)
	ListForPatient(ctx context.Context, patientID string) ([]*Grant, error)
}
