package facility

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/careledger/careledger/internal/domain/core"
	"github.com/careledger/careledger/internal/domain/practitioner"
	"github.com/careledger/careledger/internal/domain/roles"
)

// -- Mocks --

type mockRepo struct {
	facilities map[string]*Facility
	observed   map[string]map[string]time.Time
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		facilities: make(map[string]*Facility),
		observed:   make(map[string]map[string]time.Time),
	}
}

func (m *mockRepo) Create(_ context.Context, f *Facility) error {
	f.RegisteredAt = time.Now()
	m.facilities[f.ID] = f
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id string) (*Facility, error) {
	f, ok := m.facilities[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return f, nil
}

func (m *mockRepo) GetForUpdate(ctx context.Context, id string) (*Facility, error) {
	return m.GetByID(ctx, id)
}

func (m *mockRepo) SetActive(_ context.Context, id string, active bool) error {
	f, ok := m.facilities[id]
	if !ok {
		return core.ErrNotFound
	}
	f.IsActive = active
	return nil
}

func (m *mockRepo) AddDoctorCount(_ context.Context, id string, delta int) error {
	m.facilities[id].DoctorCount += delta
	return nil
}

func (m *mockRepo) AddPatientCount(_ context.Context, id string, delta int) error {
	m.facilities[id].PatientCount += delta
	return nil
}

func (m *mockRepo) ObservePatient(_ context.Context, facilityID, patientID string) (bool, error) {
	pats, ok := m.observed[facilityID]
	if !ok {
		pats = make(map[string]time.Time)
		m.observed[facilityID] = pats
	}
	if _, seen := pats[patientID]; seen {
		return false, nil
	}
	pats[patientID] = time.Now()
	return true, nil
}

func (m *mockRepo) ListObservedPatients(_ context.Context, facilityID string, limit, offset int) ([]*ObservedPatient, int, error) {
	var result []*ObservedPatient
	for pid, seen := range m.observed[facilityID] {
		result = append(result, &ObservedPatient{FacilityID: facilityID, PatientID: pid, FirstSeenAt: seen})
	}
	return result, len(result), nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Facility, int, error) {
	var result []*Facility
	for _, f := range m.facilities {
		result = append(result, f)
	}
	return result, len(result), nil
}

type mockRoles struct {
	granted map[string]map[roles.Role]bool
}

func newMockRoles() *mockRoles {
	return &mockRoles{granted: make(map[string]map[roles.Role]bool)}
}

func (m *mockRoles) grant(principal string, role roles.Role) {
	if m.granted[principal] == nil {
		m.granted[principal] = make(map[roles.Role]bool)
	}
	m.granted[principal][role] = true
}

func (m *mockRoles) Has(_ context.Context, principal string, role roles.Role) (bool, error) {
	return m.granted[principal][role], nil
}

type mockDirectory struct {
	practitioners map[string]*practitioner.Practitioner
}

func newMockDirectory() *mockDirectory {
	return &mockDirectory{practitioners: make(map[string]*practitioner.Practitioner)}
}

func (m *mockDirectory) Register(_ context.Context, principal, licenseNumber, facilityID string) error {
	if _, ok := m.practitioners[principal]; ok {
		return core.ErrAlreadyRegistered
	}
	m.practitioners[principal] = &practitioner.Practitioner{
		ID:            principal,
		LicenseNumber: licenseNumber,
		FacilityID:    facilityID,
		IsActive:      true,
	}
	return nil
}

func (m *mockDirectory) Deactivate(_ context.Context, principal string) (bool, error) {
	p, ok := m.practitioners[principal]
	if !ok {
		return false, core.ErrNotFound
	}
	if !p.IsActive {
		return false, nil
	}
	p.IsActive = false
	return true, nil
}

func (m *mockDirectory) OwningFacility(_ context.Context, principal string) (string, error) {
	p, ok := m.practitioners[principal]
	if !ok {
		return "", core.ErrNotFound
	}
	return p.FacilityID, nil
}

func (m *mockDirectory) ListByFacility(_ context.Context, facilityID string, limit, offset int) ([]*practitioner.Practitioner, int, error) {
	var result []*practitioner.Practitioner
	for _, p := range m.practitioners {
		if p.FacilityID == facilityID {
			result = append(result, p)
		}
	}
	return result, len(result), nil
}

type noopTx struct{}

func (noopTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixture struct {
	svc   *Service
	roles *mockRoles
	dir   *mockDirectory
}

func newFixture() *fixture {
	rc := newMockRoles()
	dir := newMockDirectory()
	return &fixture{
		svc:   NewService(newMockRepo(), rc, dir, noopTx{}),
		roles: rc,
		dir:   dir,
	}
}

func (f *fixture) registerFacility(t *testing.T, principal string) *Facility {
	t.Helper()
	f.roles.grant(principal, roles.RoleFacility)
	fac, err := f.svc.Register(context.Background(), principal, "City Care", "REG-9")
	if err != nil {
		t.Fatalf("register facility: %v", err)
	}
	return fac
}

// -- Tests --

func TestRegister(t *testing.T) {
	f := newFixture()
	fac := f.registerFacility(t, "0xhospital")
	if !fac.IsActive || fac.DoctorCount != 0 || fac.PatientCount != 0 {
		t.Errorf("expected active facility with zero counts, got %+v", fac)
	}
}

func TestRegister_MissingFields(t *testing.T) {
	f := newFixture()
	if _, err := f.svc.Register(context.Background(), "0xhospital", "", "REG-9"); !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty name, got %v", err)
	}
	if _, err := f.svc.Register(context.Background(), "0xhospital", "City Care", ""); !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty registration number, got %v", err)
	}
}

func TestRegister_RequiresRole(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Register(context.Background(), "0xnobody", "City Care", "REG-9")
	if !errors.Is(err, core.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestRegister_DuplicatePrincipal(t *testing.T) {
	f := newFixture()
	f.registerFacility(t, "0xhospital")
	_, err := f.svc.Register(context.Background(), "0xhospital", "Other Name", "REG-10")
	if !errors.Is(err, core.ErrAlreadyRegistered) {
		t.Errorf("expected ErrAlreadyRegistered, got %v", err)
	}
}

func TestRegister_SharedRegistrationNumber(t *testing.T) {
	f := newFixture()
	f.registerFacility(t, "0xhospital")
	f.roles.grant("0xclinic", roles.RoleFacility)
	if _, err := f.svc.Register(context.Background(), "0xclinic", "Clinic", "REG-9"); err != nil {
		t.Errorf("expected registration number collisions to be allowed, got %v", err)
	}
}

func TestAddPractitioner_BumpsDoctorCount(t *testing.T) {
	f := newFixture()
	f.registerFacility(t, "0xhospital")
	ctx := context.Background()

	if err := f.svc.AddPractitioner(ctx, "0xhospital", "0xdoc", "LIC-1"); err != nil {
		t.Fatalf("add practitioner: %v", err)
	}
	fac, _ := f.svc.Get(ctx, "0xhospital")
	if fac.DoctorCount != 1 {
		t.Errorf("expected doctorCount 1, got %d", fac.DoctorCount)
	}
}

func TestAddPractitioner_UnknownFacility(t *testing.T) {
	f := newFixture()
	err := f.svc.AddPractitioner(context.Background(), "0xghost", "0xdoc", "LIC-1")
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRemovePractitioner(t *testing.T) {
	f := newFixture()
	f.registerFacility(t, "0xhospital")
	ctx := context.Background()

	if err := f.svc.AddPractitioner(ctx, "0xhospital", "0xdoc", "LIC-1"); err != nil {
		t.Fatalf("add practitioner: %v", err)
	}
	if err := f.svc.RemovePractitioner(ctx, "0xhospital", "0xdoc"); err != nil {
		t.Fatalf("remove practitioner: %v", err)
	}

	fac, _ := f.svc.Get(ctx, "0xhospital")
	if fac.DoctorCount != 0 {
		t.Errorf("expected doctorCount back to 0, got %d", fac.DoctorCount)
	}
	// The roster row survives as a tombstone.
	roster, _, _ := f.svc.ListPractitioners(ctx, "0xhospital", 20, 0)
	if len(roster) != 1 || roster[0].IsActive {
		t.Errorf("expected one tombstoned roster entry, got %+v", roster)
	}
}

func TestRemovePractitioner_NotOwner(t *testing.T) {
	f := newFixture()
	f.registerFacility(t, "0xhospital")
	f.registerFacility(t, "0xclinic")
	ctx := context.Background()

	if err := f.svc.AddPractitioner(ctx, "0xhospital", "0xdoc", "LIC-1"); err != nil {
		t.Fatalf("add practitioner: %v", err)
	}
	err := f.svc.RemovePractitioner(ctx, "0xclinic", "0xdoc")
	if !errors.Is(err, core.ErrForbidden) {
		t.Errorf("expected ErrForbidden for non-owning facility, got %v", err)
	}
}

func TestRemovePractitioner_IdempotentCount(t *testing.T) {
	f := newFixture()
	f.registerFacility(t, "0xhospital")
	ctx := context.Background()

	if err := f.svc.AddPractitioner(ctx, "0xhospital", "0xdoc", "LIC-1"); err != nil {
		t.Fatalf("add practitioner: %v", err)
	}
	if err := f.svc.RemovePractitioner(ctx, "0xhospital", "0xdoc"); err != nil {
		t.Fatalf("first remove: %v", err)
	}
	if err := f.svc.RemovePractitioner(ctx, "0xhospital", "0xdoc"); err != nil {
		t.Fatalf("second remove: %v", err)
	}
	fac, _ := f.svc.Get(ctx, "0xhospital")
	if fac.DoctorCount != 0 {
		t.Errorf("expected doctorCount to stay 0 after repeated removal, got %d", fac.DoctorCount)
	}
}

func TestDeactivate_AdminOnly(t *testing.T) {
	f := newFixture()
	f.registerFacility(t, "0xhospital")
	ctx := context.Background()

	err := f.svc.Deactivate(ctx, "0xhospital", "0xhospital")
	if !errors.Is(err, core.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized for non-admin, got %v", err)
	}

	f.roles.grant("0xadmin", roles.RoleAdmin)
	if err := f.svc.Deactivate(ctx, "0xadmin", "0xhospital"); err != nil {
		t.Fatalf("admin deactivate: %v", err)
	}
	fac, _ := f.svc.Get(ctx, "0xhospital")
	if fac.IsActive {
		t.Error("expected tombstoned facility")
	}
}

func TestInactiveFacility_CannotManageRoster(t *testing.T) {
	f := newFixture()
	f.registerFacility(t, "0xhospital")
	ctx := context.Background()

	if err := f.svc.AddPractitioner(ctx, "0xhospital", "0xdoc", "LIC-1"); err != nil {
		t.Fatalf("add practitioner: %v", err)
	}
	f.roles.grant("0xadmin", roles.RoleAdmin)
	if err := f.svc.Deactivate(ctx, "0xadmin", "0xhospital"); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	if err := f.svc.AddPractitioner(ctx, "0xhospital", "0xdoc2", "LIC-2"); !errors.Is(err, core.ErrInactiveFacility) {
		t.Errorf("expected ErrInactiveFacility on add, got %v", err)
	}
	if err := f.svc.RemovePractitioner(ctx, "0xhospital", "0xdoc"); !errors.Is(err, core.ErrInactiveFacility) {
		t.Errorf("expected ErrInactiveFacility on remove, got %v", err)
	}

	// Existing roster members stay queryable.
	roster, _, _ := f.svc.ListPractitioners(ctx, "0xhospital", 20, 0)
	if len(roster) != 1 {
		t.Errorf("expected roster to survive facility deactivation, got %d entries", len(roster))
	}
}

func TestObservePatient_CountsDistinct(t *testing.T) {
	f := newFixture()
	f.registerFacility(t, "0xhospital")
	ctx := context.Background()

	if err := f.svc.ObservePatient(ctx, "0xhospital", "0xpatient"); err != nil {
		t.Fatalf("observe: %v", err)
	}
	if err := f.svc.ObservePatient(ctx, "0xhospital", "0xpatient"); err != nil {
		t.Fatalf("repeat observe: %v", err)
	}
	if err := f.svc.ObservePatient(ctx, "0xhospital", "0xother"); err != nil {
		t.Fatalf("observe other: %v", err)
	}

	fac, _ := f.svc.Get(ctx, "0xhospital")
	if fac.PatientCount != 2 {
		t.Errorf("expected patientCount 2 for distinct patients, got %d", fac.PatientCount)
	}
	patients, total, _ := f.svc.ListObservedPatients(ctx, "0xhospital", 20, 0)
	if total != 2 || len(patients) != 2 {
		t.Errorf("expected 2 observed patients, got total=%d len=%d", total, len(patients))
	}
}
