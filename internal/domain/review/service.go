package review

import (
	"context"
	"errors"
	"time"

	"github.com/careledger/careledger/internal/domain/core"
	"github.com/careledger/careledger/internal/platform/db"
)

// Service drives the per-(patient, insurer) application lattice. Granting an
// application never touches the consent ledger; the two ledgers are composed
// by the caller, on purpose.
type Service struct {
	repo Repository
	tx   db.Transactor
}

func NewService(repo Repository, tx db.Transactor) *Service {
	return &Service{repo: repo, tx: tx}
}

// Request opens a new pending cycle for (caller, insurer). A still-pending
// cycle blocks the request; a terminal one is overwritten.
func (s *Service) Request(ctx context.Context, caller, insurerID string) (*Application, error) {
	app := &Application{
		PatientID:   caller,
		InsurerID:   insurerID,
		Status:      StatusPending,
		RequestedAt: time.Now().UTC(),
	}
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		// Materialize the pair's row first so the lock below serializes
		// concurrent first requests; two of them must not both count.
		if err := s.repo.EnsureRow(ctx, caller, insurerID); err != nil {
			return err
		}
		prior, err := s.repo.GetForUpdate(ctx, caller, insurerID)
		if err != nil {
			return err
		}
		switch prior.Status {
		case StatusPending:
			return core.ErrAlreadyPending
		case StatusNone:
			// Fresh pair, no bucket to release.
		default:
			if err := s.repo.AdjustTotal(ctx, prior.Status, -1); err != nil {
				return err
			}
		}
		if err := s.repo.Save(ctx, app); err != nil {
			return err
		}
		return s.repo.AdjustTotal(ctx, StatusPending, 1)
	})
	if err != nil {
		return nil, err
	}
	return app, nil
}

// Cancel moves the caller's pending application to cancelled. The row is
// keyed by the calling patient, so only the owning patient can reach it.
func (s *Service) Cancel(ctx context.Context, caller, insurerID, reason string) error {
	return s.transition(ctx, caller, insurerID, StatusCancelled, reason)
}

// Grant moves a pending application to granted. The row is keyed by the
// calling insurer; a principal that is not the named insurer sees the pair
// in StatusNone and fails ErrInvalidState.
// Granting deliberately does not create a consent grant.
func (s *Service) Grant(ctx context.Context, caller, patientID string) error {
	return s.transition(ctx, patientID, caller, StatusGranted, "")
}

// Reject moves a pending application to rejected with the insurer's reason.
func (s *Service) Reject(ctx context.Context, caller, patientID, reason string) error {
	return s.transition(ctx, patientID, caller, StatusRejected, reason)
}

func (s *Service) transition(ctx context.Context, patientID, insurerID string, to Status, reason string) error {
	return s.tx.WithTx(ctx, func(ctx context.Context) error {
		app, err := s.repo.GetForUpdate(ctx, patientID, insurerID)
		if errors.Is(err, core.ErrNotFound) {
			// A pair with no row is in StatusNone, which permits no
			// transition. This also covers a principal that is not the
			// named party: its lookup key matches no application.
			return core.ErrInvalidState
		}
		if err != nil {
			return err
		}
		if app.Status != StatusPending {
			return core.ErrInvalidState
		}
		app.Status = to
		if reason != "" {
			app.Reason = reason
		}
		if err := s.repo.Save(ctx, app); err != nil {
			return err
		}
		if err := s.repo.AdjustTotal(ctx, StatusPending, -1); err != nil {
			return err
		}
		return s.repo.AdjustTotal(ctx, to, 1)
	})
}

// UpdateReason lets either party amend the reason in any state.
func (s *Service) UpdateReason(ctx context.Context, caller, patientID, insurerID, reason string) (*Application, error) {
	var app *Application
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		app, err = s.repo.GetForUpdate(ctx, patientID, insurerID)
		if err != nil {
			return err
		}
		if caller != app.PatientID && caller != app.InsurerID {
			return core.ErrForbidden
		}
		app.Reason = reason
		return s.repo.Save(ctx, app)
	})
	if err != nil {
		return nil, err
	}
	return app, nil
}

// Get returns the pair's current application.
func (s *Service) Get(ctx context.Context, patientID, insurerID string) (*Application, error) {
	return s.repo.Get(ctx, patientID, insurerID)
}

// ListForPatient returns every application naming the patient.
func (s *Service) ListForPatient(ctx context.Context, patientID string) ([]*Application, error) {
	return s.repo.ListForPatient(ctx, patientID)
}

// ListForInsurer returns the insurer's applications, optionally filtered by
// status.
func (s *Service) ListForInsurer(ctx context.Context, insurerID string, statusFilter Status) ([]*Application, error) {
	return s.repo.ListForInsurer(ctx, insurerID, statusFilter)
}

// TotalsSnapshot returns the running counters.
func (s *Service) TotalsSnapshot(ctx context.Context) (*Totals, error) {
	return s.repo.Totals(ctx)
}
