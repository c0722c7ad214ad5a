package review

import "context"

// Repository defines the persistence interface for review applications and
// their counters.
type Repository interface {
	Get(ctx context.Context, patientID, insurerID string) (*Application, error)
	// EnsureRow materializes the pair's row in StatusNone when it does not
	// exist yet, so GetForUpdate always has a row to lock. Without it two
	// concurrent first requests would both see no row, and row locks cannot
	// serialize what is not there.
	EnsureRow(ctx context.Context, patientID, insurerID string) error
	// GetForUpdate locks the pair's row for the rest of the transaction.
	GetForUpdate(ctx context.Context, patientID, insurerID string) (*Application, error)
	// Save overwrites (or creates) the pair's single row.
	Save(ctx context.Context, app *Application) error
	ListForPatient(ctx context.Context, patientID string) ([]*Application, error)
	ListForInsurer(ctx context.Context, insurerID string, statusFilter Status) ([]*Application, error)
	Totals(ctx context.Context) (*Totals, error)
	// AdjustTotal moves one status counter by delta.
	AdjustTotal(ctx context.Context, status Status, delta int) error
}
