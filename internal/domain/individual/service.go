package individual

import (
	"context"
	"errors"
	"fmt"

	"github.com/careledger/careledger/internal/domain/core"
	"github.com/careledger/careledger/internal/domain/roles"
	"github.com/careledger/careledger/internal/platform/db"
)

type Service struct {
	repo  Repository
	roles roles.Checker
	tx    db.Transactor
}

func NewService(repo Repository, rc roles.Checker, tx db.Transactor) *Service {
	return &Service{repo: repo, roles: rc, tx: tx}
}

// Register creates the caller's own Individual record. The caller must hold
// the individual role and must not already be registered.
func (s *Service) Register(ctx context.Context, caller, name, dateOfBirth, bloodGroup string) (*Individual, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", core.ErrInvalidInput)
	}
	ok, err := s.roles.Has(ctx, caller, roles.RoleIndividual)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, core.ErrUnauthorized
	}

	ind := &Individual{
		ID:          caller,
		Name:        name,
		DateOfBirth: dateOfBirth,
		BloodGroup:  bloodGroup,
		IsActive:    true,
	}
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetForUpdate(ctx, caller); err == nil {
			return core.ErrAlreadyRegistered
		} else if !errors.Is(err, core.ErrNotFound) {
			return err
		}
		return s.repo.Create(ctx, ind)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, caller)
}

// Deactivate tombstones the caller's own record. No third party may
// deactivate an individual.
func (s *Service) Deactivate(ctx context.Context, caller string) error {
	return s.tx.WithTx(ctx, func(ctx context.Context) error {
		ind, err := s.repo.GetForUpdate(ctx, caller)
		if err != nil {
			return err
		}
		if !ind.IsActive {
			return core.ErrInactiveIndividual
		}
		return s.repo.SetActive(ctx, caller, false)
	})
}

// Get returns the individual's profile.
func (s *Service) Get(ctx context.Context, id string) (*Individual, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns a page of individuals.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*Individual, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// RequireActive returns nil only when the principal has an active Individual
// record. Consumed by the consent ledger and, when the walk-in toggle is on,
// by the record ledger.
func (s *Service) RequireActive(ctx context.Context, principal string) error {
	ind, err := s.repo.GetByID(ctx, principal)
	if err != nil {
		return err
	}
	if !ind.IsActive {
		return core.ErrInactiveIndividual
	}
	return nil
}
