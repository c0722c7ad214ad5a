package individual

import "context"

// Repository defines the persistence interface for individuals.
type Repository interface {
	Create(ctx context.Context, ind *Individual) error
	GetByID(ctx context.Context, id string) (*Individual, error)
	// GetForUpdate locks the row for the rest of the transaction.
	GetForUpdate(ctx context.Context, id string) (*Individual, error)
	SetActive(ctx context.Context, id string, active bool) error
	List(ctx context.Context, limit, offset int) ([]*Individual, int, error)
}
