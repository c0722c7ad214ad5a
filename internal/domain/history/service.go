// Package history assembles the patient-facing aggregated view. The record
// ledger itself is policy-free; every read that crosses a patient boundary
// goes through this façade, which composes the consent predicate and the
// implicit treating-practitioner rule over injected capabilities.
package history

import (
	"context"

	"github.com/careledger/careledger/internal/domain/core"
	"github.com/careledger/careledger/internal/domain/individual"
	"github.com/careledger/careledger/internal/domain/records"
)

// ConsentChecker is the consent ledger predicate. Satisfied by
// *consent.Service.
type ConsentChecker interface {
	HasAccess(ctx context.Context, granteeID, patientID string) (bool, error)
}

// RecordReader is the slice of the record ledger the façade reads from.
// Satisfied by *records.Service.
type RecordReader interface {
	ListForPatient(ctx context.Context, patientID string) ([]*records.Record, error)
	HasAuthored(ctx context.Context, doctorID, patientID string) (bool, error)
}

// ProfileReader looks up the patient profile. Satisfied by
// *individual.Service.
type ProfileReader interface {
	Get(ctx context.Context, id string) (*individual.Individual, error)
}

// PatientHistory is the aggregated view: the profile plus every record in
// ledger order.
type PatientHistory struct {
	Patient *individual.Individual `json:"patient"`
	Records []*records.Record      `json:"records"`
}

type Service struct {
	profiles ProfileReader
	records  RecordReader
	consent  ConsentChecker
}

func NewService(profiles ProfileReader, rr RecordReader, cc ConsentChecker) *Service {
	return &Service{profiles: profiles, records: rr, consent: cc}
}

// PatientHistory returns the patient's profile and full record list. The
// caller must be the patient, a practitioner who authored at least one of
// the records, or the holder of a live consent grant; anyone else gets
// ErrAccessDenied and should request a grant from the patient.
func (s *Service) PatientHistory(ctx context.Context, caller, patientID string) (*PatientHistory, error) {
	allowed, err := s.mayRead(ctx, caller, patientID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, core.ErrAccessDenied
	}

	patient, err := s.profiles.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}
	recs, err := s.records.ListForPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	return &PatientHistory{Patient: patient, Records: recs}, nil
}

func (s *Service) mayRead(ctx context.Context, caller, patientID string) (bool, error) {
	// Self-access and explicit grants first; HasAccess covers both.
	ok, err := s.consent.HasAccess(ctx, caller, patientID)
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}
	// A practitioner who treated the patient reads without a grant.
	return s.records.HasAuthored(ctx, caller, patientID)
}
