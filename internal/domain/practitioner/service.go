package practitioner

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

// Register creates a practitioner bound to a facility. Invoked only by the
// facility service, which has already verified the calling facility.
// Re-registering an existing principal fails even when the prior record is a
// tombstone; moving facilities requires an explicit remove then a fresh
// principal.
func (s *Service) Register(ctx context.Context, principal, licenseNumber, facilityID string) error {
	if licenseNumber == "" {
		return fmt.Errorf("%w: license number is required", core.ErrInvalidInput)
	}
	ok, err := s.roles.Has(ctx, principal, roles.RolePractitioner)
	if err != nil {
		return err
	}
	if !ok {
		return core.ErrUnauthorized
	}

	return s.tx.WithTx(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetForUpdate(ctx, principal); err == nil {
			return core.ErrAlreadyRegistered
		} else if !errors.Is(err, core.ErrNotFound) {
			return err
		}
		return s.repo.Create(ctx, &Practitioner{
			ID:            principal,
			LicenseNumber: licenseNumber,
			FacilityID:    facilityID,
			IsActive:      true,
		})
	})
}

// UpdateProfile lets a practitioner set their own name and specialization.
// The owning facility has no say in these fields.
func (s *Service) UpdateProfile(ctx context.Context, caller, name, specialization string) (*Practitioner, error) {
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		p, err := s.repo.GetForUpdate(ctx, caller)
		if err != nil {
			return err
		}
		if !p.IsActive {
			return core.ErrInactivePractitioner
		}
		return s.repo.UpdateProfile(ctx, caller, name, specialization)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, caller)
}

// Deactivate tombstones a practitioner. Invoked only by the owning facility.
// Idempotent; reports whether the flag actually flipped so the caller can
// keep its roster count in step.
func (s *Service) Deactivate(ctx context.Context, principal string) (bool, error) {
	var changed bool
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		p, err := s.repo.GetForUpdate(ctx, principal)
		if err != nil {
			return err
		}
		if !p.IsActive {
			return nil
		}
		changed = true
		return s.repo.SetActive(ctx, principal, false)
	})
	return changed, err
}

// Get returns the practitioner's details.
func (s *Service) Get(ctx context.Context, id string) (*Practitioner, error) {
	return s.repo.GetByID(ctx, id)
}

// ListByFacility returns a facility's roster, tombstones included.
func (s *Service) ListByFacility(ctx context.Context, facilityID string, limit, offset int) ([]*Practitioner, int, error) {
	return s.repo.ListByFacility(ctx, facilityID, limit, offset)
}

// OwningFacility returns the facility a practitioner is bound to.
func (s *Service) OwningFacility(ctx context.Context, principal string) (string, error) {
	p, err := s.repo.GetByID(ctx, principal)
	if err != nil {
		return "", err
	}
	return p.FacilityID, nil
}

// ActiveFacility returns the facility of an active practitioner. The record
// ledger uses this as its liveness gate before accepting a write.
func (s *Service) ActiveFacility(ctx context.Context, principal string) (string, error) {
	p, err := s.repo.GetByID(ctx, principal)
	if err != nil {
		return "", err
	}
	if !p.IsActive {
		return "", core.ErrInactivePractitioner
	}
	return p.FacilityID, nil
}
