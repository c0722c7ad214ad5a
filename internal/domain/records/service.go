package records

import (
	"context"
	"errors"
	"fmt"

	"github.com/careledger/careledger/internal/domain/core"
	"github.com/careledger/careledger/internal/platform/db"
)

// PractitionerDirectory gates writes: only an active practitioner may author
// or amend records. Satisfied by *practitioner.Service.
type PractitionerDirectory interface {
	ActiveFacility(ctx context.Context, principal string) (string, error)
}

// FacilityObserver receives patient sightings so the facility's distinct
// patient count moves in the same transaction as the record insert.
// Satisfied by *facility.Service.
type FacilityObserver interface {
	ObservePatient(ctx context.Context, facilityID, patientID string) error
}

// PatientGate is consulted only when the registered-patient toggle is on.
// Satisfied by *individual.Service.
type PatientGate interface {
	RequireActive(ctx context.Context, principal string) error
}

type Service struct {
	repo          Repository
	practitioners PractitionerDirectory
	facilities    FacilityObserver
	patients      PatientGate
	tx            db.Transactor

	// requirePatient turns on the walk-in guard: when set, the target
	// patient must be a registered, active individual.
	requirePatient bool
}

func NewService(repo Repository, dir PractitionerDirectory, obs FacilityObserver, gate PatientGate, tx db.Transactor, requirePatient bool) *Service {
	return &Service{
		repo:           repo,
		practitioners:  dir,
		facilities:     obs,
		patients:       gate,
		tx:             tx,
		requirePatient: requirePatient,
	}
}

// Create appends a record to the ledger and returns its id. The caller must
// be an active practitioner; the target patient is not validated unless the
// walk-in guard is configured on.
func (s *Service) Create(ctx context.Context, caller string, in CreateInput) (int64, error) {
	if in.PatientID == "" {
		return 0, fmt.Errorf("%w: patient_id is required", core.ErrInvalidInput)
	}
	if in.Diagnosis == "" {
		return 0, fmt.Errorf("%w: diagnosis is required", core.ErrInvalidInput)
	}

	facilityID, err := s.practitioners.ActiveFacility(ctx, caller)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return 0, core.ErrUnauthorized
		}
		return 0, err
	}

	if s.requirePatient {
		if err := s.patients.RequireActive(ctx, in.PatientID); err != nil {
			return 0, err
		}
	}

	rec := &Record{
		PatientID:          in.PatientID,
		DoctorID:           caller,
		Diagnosis:          in.Diagnosis,
		Symptoms:           in.Symptoms,
		Prescription:       in.Prescription,
		TreatmentPlan:      in.TreatmentPlan,
		ExternalDocPointer: in.ExternalDocPointer,
		IsActive:           true,
	}
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		if _, err := s.repo.Create(ctx, rec); err != nil {
			return err
		}
		return s.facilities.ObservePatient(ctx, facilityID, in.PatientID)
	})
	if err != nil {
		return 0, err
	}
	return rec.ID, nil
}

// Update amends a record in place. Only the authoring practitioner may
// update, and only while still active. Nil patch fields keep stored values.
func (s *Service) Update(ctx context.Context, caller string, id int64, patch UpdateInput) (*Record, error) {
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		rec, err := s.repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if rec.DoctorID != caller {
			return core.ErrForbidden
		}
		if _, err := s.practitioners.ActiveFacility(ctx, caller); err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return core.ErrForbidden
			}
			return err
		}

		if patch.Diagnosis != nil {
			rec.Diagnosis = *patch.Diagnosis
		}
		if patch.Symptoms != nil {
			rec.Symptoms = *patch.Symptoms
		}
		if patch.Prescription != nil {
			rec.Prescription = *patch.Prescription
		}
		if patch.TreatmentPlan != nil {
			rec.TreatmentPlan = *patch.TreatmentPlan
		}
		if patch.ExternalDocPointer != nil {
			rec.ExternalDocPointer = *patch.ExternalDocPointer
		}
		return s.repo.Update(ctx, rec)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// GetByID is a pure storage read. Consent gating happens one level up, in
// the history read path; this layer stays policy-free so both sides of that
// split can be tested in isolation.
func (s *Service) GetByID(ctx context.Context, id int64) (*Record, error) {
	return s.repo.GetByID(ctx, id)
}

// ListIDsForPatient returns the patient's record ids in ledger order.
func (s *Service) ListIDsForPatient(ctx context.Context, patientID string) ([]int64, error) {
	return s.repo.ListIDsForPatient(ctx, patientID)
}

// ListIDsForDoctor returns the ids of records the doctor authored.
func (s *Service) ListIDsForDoctor(ctx context.Context, doctorID string) ([]int64, error) {
	return s.repo.ListIDsForDoctor(ctx, doctorID)
}

// ListForPatient returns the patient's full record rows in ledger order.
func (s *Service) ListForPatient(ctx context.Context, patientID string) ([]*Record, error) {
	return s.repo.ListForPatient(ctx, patientID)
}

// HasAuthored reports whether the doctor wrote at least one of the patient's
// records.
func (s *Service) HasAuthored(ctx context.Context, doctorID, patientID string) (bool, error) {
	count, err := s.repo.CountByDoctorForPatient(ctx, doctorID, patientID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
