package records

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/careledger/careledger/internal/domain/core"
)

// -- Mocks --

type mockRepo struct {
	records map[int64]*Record
	nextID  int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{records: make(map[int64]*Record), nextID: 1}
}

func (m *mockRepo) Create(_ context.Context, r *Record) (int64, error) {
	r.ID = m.nextID
	m.nextID++
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt
	stored := *r
	m.records[r.ID] = &stored
	return r.ID, nil
}

func (m *mockRepo) GetByID(_ context.Context, id int64) (*Record, error) {
	r, ok := m.records[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	copied := *r
	return &copied, nil
}

func (m *mockRepo) GetForUpdate(ctx context.Context, id int64) (*Record, error) {
	return m.GetByID(ctx, id)
}

func (m *mockRepo) Update(_ context.Context, r *Record) error {
	if _, ok := m.records[r.ID]; !ok {
		return core.ErrNotFound
	}
	updated := *r
	updated.UpdatedAt = time.Now()
	m.records[r.ID] = &updated
	return nil
}

func (m *mockRepo) ListIDsForPatient(_ context.Context, patientID string) ([]int64, error) {
	var ids []int64
	for id := int64(1); id < m.nextID; id++ {
		if r, ok := m.records[id]; ok && r.PatientID == patientID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *mockRepo) ListIDsForDoctor(_ context.Context, doctorID string) ([]int64, error) {
	var ids []int64
	for id := int64(1); id < m.nextID; id++ {
		if r, ok := m.records[id]; ok && r.DoctorID == doctorID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *mockRepo) ListForPatient(_ context.Context, patientID string) ([]*Record, error) {
	var result []*Record
	for id := int64(1); id < m.nextID; id++ {
		if r, ok := m.records[id]; ok && r.PatientID == patientID {
			copied := *r
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (m *mockRepo) CountByDoctorForPatient(_ context.Context, doctorID, patientID string) (int, error) {
	count := 0
	for _, r := range m.records {
		if r.DoctorID == doctorID && r.PatientID == patientID {
			count++
		}
	}
	return count, nil
}

type mockDirectory struct {
	// principal -> facility; empty facility means tombstoned
	active map[string]string
}

func (m *mockDirectory) ActiveFacility(_ context.Context, principal string) (string, error) {
	fid, ok := m.active[principal]
	if !ok {
		return "", core.ErrNotFound
	}
	if fid == "" {
		return "", core.ErrInactivePractitioner
	}
	return fid, nil
}

type mockObserver struct {
	observed map[string][]string
}

func (m *mockObserver) ObservePatient(_ context.Context, facilityID, patientID string) error {
	m.observed[facilityID] = append(m.observed[facilityID], patientID)
	return nil
}

type mockGate struct {
	active map[string]bool
}

func (m *mockGate) RequireActive(_ context.Context, principal string) error {
	active, ok := m.active[principal]
	if !ok {
		return core.ErrNotFound
	}
	if !active {
		return core.ErrInactiveIndividual
	}
	return nil
}

type noopTx struct{}

func (noopTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newFixture(requirePatient bool) (*Service, *mockDirectory, *mockObserver, *mockGate) {
	dir := &mockDirectory{active: map[string]string{"0xdoc": "0xhospital"}}
	obs := &mockObserver{observed: make(map[string][]string)}
	gate := &mockGate{active: make(map[string]bool)}
	svc := NewService(newMockRepo(), dir, obs, gate, noopTx{}, requirePatient)
	return svc, dir, obs, gate
}

func sampleInput() CreateInput {
	return CreateInput{
		PatientID:          "0xpatient",
		Diagnosis:          "acute bronchitis",
		Symptoms:           []string{"cough", "fever", "fatigue"},
		Prescription:       "amoxicillin 500mg",
		TreatmentPlan:      "rest, fluids, review in 7 days",
		ExternalDocPointer: "4c9af1",
	}
}

// -- Tests --

func TestCreate_MissingFields(t *testing.T) {
	svc, _, _, _ := newFixture(false)
	ctx := context.Background()

	in := sampleInput()
	in.Diagnosis = ""
	if _, err := svc.Create(ctx, "0xdoc", in); !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty diagnosis, got %v", err)
	}

	in = sampleInput()
	in.PatientID = ""
	if _, err := svc.Create(ctx, "0xdoc", in); !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty patient id, got %v", err)
	}
}

func TestCreate_RoundTrip(t *testing.T) {
	svc, _, obs, _ := newFixture(false)
	ctx := context.Background()

	in := sampleInput()
	id, err := svc.Create(ctx, "0xdoc", in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id != 1 {
		t.Errorf("expected first ledger id 1, got %d", id)
	}

	rec, err := svc.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.PatientID != in.PatientID || rec.DoctorID != "0xdoc" ||
		rec.Diagnosis != in.Diagnosis || !reflect.DeepEqual(rec.Symptoms, in.Symptoms) ||
		rec.Prescription != in.Prescription || rec.TreatmentPlan != in.TreatmentPlan ||
		rec.ExternalDocPointer != in.ExternalDocPointer {
		t.Errorf("round-trip mismatch: %+v", rec)
	}

	if got := obs.observed["0xhospital"]; len(got) != 1 || got[0] != "0xpatient" {
		t.Errorf("expected facility to observe the patient, got %v", got)
	}
}

func TestCreate_AppearsInBothIndices(t *testing.T) {
	svc, _, _, _ := newFixture(false)
	ctx := context.Background()

	id, err := svc.Create(ctx, "0xdoc", sampleInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	forPatient, _ := svc.ListIDsForPatient(ctx, "0xpatient")
	forDoctor, _ := svc.ListIDsForDoctor(ctx, "0xdoc")
	if len(forPatient) != 1 || forPatient[0] != id {
		t.Errorf("patient index missing record: %v", forPatient)
	}
	if len(forDoctor) != 1 || forDoctor[0] != id {
		t.Errorf("doctor index missing record: %v", forDoctor)
	}
}

func TestCreate_MonotonicIDs(t *testing.T) {
	svc, _, _, _ := newFixture(false)
	ctx := context.Background()

	var last int64
	for i := 0; i < 3; i++ {
		id, err := svc.Create(ctx, "0xdoc", sampleInput())
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		if id <= last {
			t.Errorf("expected strictly increasing ids, got %d after %d", id, last)
		}
		last = id
	}
}

func TestCreate_RequiresActivePractitioner(t *testing.T) {
	svc, dir, _, _ := newFixture(false)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "0xstranger", sampleInput()); !errors.Is(err, core.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized for unregistered caller, got %v", err)
	}

	dir.active["0xdoc"] = ""
	if _, err := svc.Create(ctx, "0xdoc", sampleInput()); !errors.Is(err, core.ErrInactivePractitioner) {
		t.Errorf("expected ErrInactivePractitioner for tombstoned caller, got %v", err)
	}
}

func TestCreate_WalkInAllowedByDefault(t *testing.T) {
	svc, _, _, _ := newFixture(false)
	// The patient has never registered; the default configuration accepts
	// the record anyway.
	if _, err := svc.Create(context.Background(), "0xdoc", sampleInput()); err != nil {
		t.Errorf("expected walk-in create to succeed, got %v", err)
	}
}

func TestCreate_RegisteredPatientToggle(t *testing.T) {
	svc, _, _, gate := newFixture(true)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "0xdoc", sampleInput()); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unregistered patient with guard on, got %v", err)
	}

	gate.active["0xpatient"] = true
	if _, err := svc.Create(ctx, "0xdoc", sampleInput()); err != nil {
		t.Errorf("expected create for registered patient to succeed, got %v", err)
	}

	gate.active["0xpatient"] = false
	if _, err := svc.Create(ctx, "0xdoc", sampleInput()); !errors.Is(err, core.ErrInactiveIndividual) {
		t.Errorf("expected ErrInactiveIndividual with guard on, got %v", err)
	}
}

func TestUpdate_PartialPatch(t *testing.T) {
	svc, _, _, _ := newFixture(false)
	ctx := context.Background()

	id, err := svc.Create(ctx, "0xdoc", sampleInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	newDiagnosis := "chronic bronchitis"
	rec, err := svc.Update(ctx, "0xdoc", id, UpdateInput{Diagnosis: &newDiagnosis})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if rec.Diagnosis != newDiagnosis {
		t.Errorf("expected patched diagnosis, got %q", rec.Diagnosis)
	}
	// Omitted fields keep their stored values.
	if rec.Prescription != "amoxicillin 500mg" || len(rec.Symptoms) != 3 {
		t.Errorf("expected untouched fields preserved: %+v", rec)
	}
}

func TestUpdate_OnlyAuthorMayAmend(t *testing.T) {
	svc, dir, _, _ := newFixture(false)
	ctx := context.Background()

	id, err := svc.Create(ctx, "0xdoc", sampleInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Another active practitioner at the same facility is still refused.
	dir.active["0xcolleague"] = "0xhospital"
	d := "tampered"
	if _, err := svc.Update(ctx, "0xcolleague", id, UpdateInput{Diagnosis: &d}); !errors.Is(err, core.ErrForbidden) {
		t.Errorf("expected ErrForbidden for non-author, got %v", err)
	}
}

func TestUpdate_AuthorMustStillBeActive(t *testing.T) {
	svc, dir, _, _ := newFixture(false)
	ctx := context.Background()

	id, err := svc.Create(ctx, "0xdoc", sampleInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	dir.active["0xdoc"] = ""
	d := "late edit"
	if _, err := svc.Update(ctx, "0xdoc", id, UpdateInput{Diagnosis: &d}); !errors.Is(err, core.ErrInactivePractitioner) {
		t.Errorf("expected ErrInactivePractitioner, got %v", err)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	svc, _, _, _ := newFixture(false)
	d := "x"
	if _, err := svc.Update(context.Background(), "0xdoc", 99, UpdateInput{Diagnosis: &d}); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestHasAuthored(t *testing.T) {
	svc, _, _, _ := newFixture(false)
	ctx := context.Background()

	ok, err := svc.HasAuthored(ctx, "0xdoc", "0xpatient")
	if err != nil || ok {
		t.Errorf("expected no authorship before create, got ok=%v err=%v", ok, err)
	}

	if _, err := svc.Create(ctx, "0xdoc", sampleInput()); err != nil {
		t.Fatalf("create: %v", err)
	}
	ok, err = svc.HasAuthored(ctx, "0xdoc", "0xpatient")
	if err != nil || !ok {
		t.Errorf("expected authorship after create, got ok=%v err=%v", ok, err)
	}
}
