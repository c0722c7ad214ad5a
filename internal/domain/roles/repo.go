package roles

import "context"

// Repository defines the persistence interface for role assignments.
type Repository interface {
	Grant(ctx context.Context, a *Assignment) error
	Revoke(ctx context.Context, principal string, role Role) error
	Has(ctx context.Context, principal string, role Role) (bool, error)
	ListForPrincipal(ctx context.Context, principal string) ([]Role, error)
}
