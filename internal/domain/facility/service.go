package facility

import (
	"context"
	"errors"
	"fmt"

	"github.com/careledger/careledger/internal/domain/core"
	"github.com/careledger/careledger/internal/domain/practitioner"
	"github.com/careledger/careledger/internal/domain/roles"
	"github.com/careledger/careledger/internal/platform/db"
)

// PractitionerDirectory is the slice of the practitioner registry the
// facility service drives. Satisfied by *practitioner.Service.
type PractitionerDirectory interface {
	Register(ctx context.Context, principal, licenseNumber, facilityID string) error
	Deactivate(ctx context.Context, principal string) (bool, error)
	OwningFacility(ctx context.Context, principal string) (string, error)
	ListByFacility(ctx context.Context, facilityID string, limit, offset int) ([]*practitioner.Practitioner, int, error)
}

type Service struct {
	repo          Repository
	roles         roles.Checker
	practitioners PractitionerDirectory
	tx            db.Transactor
}

func NewService(repo Repository, rc roles.Checker, dir PractitionerDirectory, tx db.Transactor) *Service {
	return &Service{repo: repo, roles: rc, practitioners: dir, tx: tx}
}

// Register creates the caller's own Facility record with zero counts. Only a
// duplicate principal is rejected; registration numbers may collide.
func (s *Service) Register(ctx context.Context, caller, name, registrationNumber string) (*Facility, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: facility name is required", core.ErrInvalidInput)
	}
	if registrationNumber == "" {
		return nil, fmt.Errorf("%w: registration number is required", core.ErrInvalidInput)
	}
	ok, err := s.roles.Has(ctx, caller, roles.RoleFacility)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, core.ErrUnauthorized
	}

	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetForUpdate(ctx, caller); err == nil {
			return core.ErrAlreadyRegistered
		} else if !errors.Is(err, core.ErrNotFound) {
			return err
		}
		return s.repo.Create(ctx, &Facility{
			ID:                 caller,
			Name:               name,
			RegistrationNumber: registrationNumber,
			IsActive:           true,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, caller)
}

// AddPractitioner registers a practitioner onto the caller's roster and
// bumps doctorCount in the same transaction.
func (s *Service) AddPractitioner(ctx context.Context, caller, principal, licenseNumber string) error {
	return s.tx.WithTx(ctx, func(ctx context.Context) error {
		f, err := s.repo.GetForUpdate(ctx, caller)
		if err != nil {
			return err
		}
		if !f.IsActive {
			return core.ErrInactiveFacility
		}
		if err := s.practitioners.Register(ctx, principal, licenseNumber, caller); err != nil {
			return err
		}
		return s.repo.AddDoctorCount(ctx, caller, 1)
	})
}

// RemovePractitioner tombstones a roster member and decrements doctorCount.
// Only the owning facility may remove, and only while it is itself active.
func (s *Service) RemovePractitioner(ctx context.Context, caller, principal string) error {
	return s.tx.WithTx(ctx, func(ctx context.Context) error {
		f, err := s.repo.GetForUpdate(ctx, caller)
		if err != nil {
			return err
		}
		if !f.IsActive {
			return core.ErrInactiveFacility
		}
		owner, err := s.practitioners.OwningFacility(ctx, principal)
		if err != nil {
			return err
		}
		if owner != caller {
			return core.ErrForbidden
		}
		changed, err := s.practitioners.Deactivate(ctx, principal)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}
		return s.repo.AddDoctorCount(ctx, caller, -1)
	})
}

// Deactivate tombstones a facility. Admin only.
func (s *Service) Deactivate(ctx context.Context, caller, facilityID string) error {
	ok, err := s.roles.Has(ctx, caller, roles.RoleAdmin)
	if err != nil {
		return err
	}
	if !ok {
		return core.ErrUnauthorized
	}
	return s.tx.WithTx(ctx, func(ctx context.Context) error {
		f, err := s.repo.GetForUpdate(ctx, facilityID)
		if err != nil {
			return err
		}
		if !f.IsActive {
			return core.ErrInactiveFacility
		}
		return s.repo.SetActive(ctx, facilityID, false)
	})
}

// Get returns the facility's details.
func (s *Service) Get(ctx context.Context, id string) (*Facility, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns a page of facilities.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*Facility, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// ListPractitioners returns the facility's roster.
func (s *Service) ListPractitioners(ctx context.Context, facilityID string, limit, offset int) ([]*practitioner.Practitioner, int, error) {
	return s.practitioners.ListByFacility(ctx, facilityID, limit, offset)
}

// ListObservedPatients returns the distinct patients the facility's
// practitioners have written records for.
func (s *Service) ListObservedPatients(ctx context.Context, facilityID string, limit, offset int) ([]*ObservedPatient, int, error) {
	return s.repo.ListObservedPatients(ctx, facilityID, limit, offset)
}

// ObservePatient notes that one of the facility's practitioners wrote a
// record for the patient. The first sighting of a pair bumps patientCount;
// the record ledger calls this inside its create transaction so the counter
// never drifts.
func (s *Service) ObservePatient(ctx context.Context, facilityID, patientID string) error {
	inserted, err := s.repo.ObservePatient(ctx, facilityID, patientID)
	if err != nil {
		return err
	}
	if !inserted {
		return nil
	}
	return s.repo.AddPatientCount(ctx, facilityID, 1)
}
