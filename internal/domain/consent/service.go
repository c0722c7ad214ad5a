package consent

import (
	"context"
	"errors"
	"fmt"

	"github.com/careledger/careledger/internal/domain/core"
	"github.com/careledger/careledger/internal/platform/db"
)

// Checker is the read-only consent predicate injected into the history read
// path. Self-access always passes.
type Checker interface {
	HasAccess(ctx context.Context, granteeID, patientID string) (bool, error)
}

// PatientGate verifies the caller is a live individual before a grant is
// accepted. Satisfied by *individual.Service.
type PatientGate interface {
	RequireActive(ctx context.Context, principal string) error
}

type Service struct {
	repo     Repository
	patients PatientGate
	tx       db.Transactor
}

func NewService(repo Repository, gate PatientGate, tx db.Transactor) *Service {
	return &Service{repo: repo, patients: gate, tx: tx}
}

// GrantAccess lets the calling individual open their aggregated history to a
// grantee. Granting twice is a no-op; re-granting after a revocation
// reactivates the pair.
func (s *Service) GrantAccess(ctx context.Context, caller, granteeID string) error {
	if granteeID == "" {
		return fmt.Errorf("%w: grantee is required", core.ErrInvalidInput)
	}
	if err := s.requireActivePatient(ctx, caller); err != nil {
		return err
	}
	return s.tx.WithTx(ctx, func(ctx context.Context) error {
		return s.repo.Upsert(ctx, caller, granteeID)
	})
}

// RevokeAccess withdraws a live grant. A pair with no live grant yields
// ErrNotFound.
func (s *Service) RevokeAccess(ctx context.Context, caller, granteeID string) error {
	if err := s.requireActivePatient(ctx, caller); err != nil {
		return err
	}
	return s.tx.WithTx(ctx, func(ctx context.Context) error {
		revoked, err := s.repo.Revoke(ctx, caller, granteeID)
		if err != nil {
			return err
		}
		if !revoked {
			return core.ErrNotFound
		}
		return nil
	})
}

// HasAccess reports whether the grantee may read the patient's aggregated
// history. A principal always has access to its own history.
func (s *Service) HasAccess(ctx context.Context, granteeID, patientID string) (bool, error) {
	if granteeID == patientID {
		return true, nil
	}
	return s.repo.HasActive(ctx, patientID, granteeID)
}

// ListForPatient returns the patient's grant rows, revoked ones included.
func (s *Service) ListForPatient(ctx context.Context, patientID string) ([]*Grant, error) {
	return s.repo.ListForPatient(ctx, patientID)
}

func (s *Service) requireActivePatient(ctx context.Context, caller string) error {
	err := s.patients.RequireActive(ctx, caller)
	if errors.Is(err, core.ErrNotFound) {
		return core.ErrUnauthorized
	}
	return err
}
