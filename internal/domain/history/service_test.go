package history

import (
	"context"
	"errors"
	"testing"

	"github.com/careledger/careledger/internal/domain/core"
	"github.com/careledger/careledger/internal/domain/individual"
	"github.com/careledger/careledger/internal/domain/records"
)

// -- Mocks --

type mockConsent struct {
	grants map[string]map[string]bool // patient -> grantee
}

func (m *mockConsent) HasAccess(_ context.Context, granteeID, patientID string) (bool, error) {
	if granteeID == patientID {
		return true, nil
	}
	return m.grants[patientID][granteeID], nil
}

func (m *mockConsent) grant(patientID, granteeID string) {
	if m.grants[patientID] == nil {
		m.grants[patientID] = make(map[string]bool)
	}
	m.grants[patientID][granteeID] = true
}

type mockRecords struct {
	byPatient map[string][]*records.Record
}

func (m *mockRecords) ListForPatient(_ context.Context, patientID string) ([]*records.Record, error) {
	return m.byPatient[patientID], nil
}

func (m *mockRecords) HasAuthored(_ context.Context, doctorID, patientID string) (bool, error) {
	for _, r := range m.byPatient[patientID] {
		if r.DoctorID == doctorID {
			return true, nil
		}
	}
	return false, nil
}

type mockProfiles struct {
	profiles map[string]*individual.Individual
}

func (m *mockProfiles) Get(_ context.Context, id string) (*individual.Individual, error) {
	p, ok := m.profiles[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return p, nil
}

type fixture struct {
	svc     *Service
	consent *mockConsent
	records *mockRecords
}

func newFixture() *fixture {
	cc := &mockConsent{grants: make(map[string]map[string]bool)}
	rr := &mockRecords{byPatient: map[string][]*records.Record{
		"0xpatient": {
			{ID: 1, PatientID: "0xpatient", DoctorID: "0xdoc", Diagnosis: "flu"},
			{ID: 2, PatientID: "0xpatient", DoctorID: "0xdoc", Diagnosis: "follow-up"},
		},
	}}
	pr := &mockProfiles{profiles: map[string]*individual.Individual{
		"0xpatient": {ID: "0xpatient", Name: "Asha Rao", IsActive: true},
	}}
	return &fixture{svc: NewService(pr, rr, cc), consent: cc, records: rr}
}

// -- Tests --

func TestPatientHistory_Self(t *testing.T) {
	f := newFixture()
	view, err := f.svc.PatientHistory(context.Background(), "0xpatient", "0xpatient")
	if err != nil {
		t.Fatalf("self read: %v", err)
	}
	if view.Patient.ID != "0xpatient" || len(view.Records) != 2 {
		t.Errorf("unexpected view: %+v", view)
	}
}

func TestPatientHistory_AuthoringPractitioner(t *testing.T) {
	f := newFixture()
	// No explicit grant exists; authorship alone admits the doctor.
	view, err := f.svc.PatientHistory(context.Background(), "0xdoc", "0xpatient")
	if err != nil {
		t.Fatalf("authoring practitioner read: %v", err)
	}
	if len(view.Records) != 2 {
		t.Errorf("expected full record list, got %d", len(view.Records))
	}
}

func TestPatientHistory_GrantedThirdParty(t *testing.T) {
	f := newFixture()
	f.consent.grant("0xpatient", "0xinsurer")
	view, err := f.svc.PatientHistory(context.Background(), "0xinsurer", "0xpatient")
	if err != nil {
		t.Fatalf("granted third-party read: %v", err)
	}
	if len(view.Records) != 2 {
		t.Errorf("expected full record list, got %d", len(view.Records))
	}
}

func TestPatientHistory_StrangerDenied(t *testing.T) {
	f := newFixture()
	// An active practitioner who never treated this patient and holds no
	// grant is refused.
	_, err := f.svc.PatientHistory(context.Background(), "0xotherdoc", "0xpatient")
	if !errors.Is(err, core.ErrAccessDenied) {
		t.Errorf("expected ErrAccessDenied, got %v", err)
	}
}

func TestPatientHistory_GrantBeatsNoAuthorship(t *testing.T) {
	f := newFixture()
	f.consent.grant("0xpatient", "0xotherdoc")
	if _, err := f.svc.PatientHistory(context.Background(), "0xotherdoc", "0xpatient"); err != nil {
		t.Errorf("expected grant to admit non-treating practitioner, got %v", err)
	}
}
