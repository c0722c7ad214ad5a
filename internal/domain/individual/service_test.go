package individual

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/careledger/careledger/internal/domain/core"
	"github.com/careledger/careledger/internal/domain/roles"
)

// -- Mocks --

type mockRepo struct {
	individuals map[string]*Individual
}

func newMockRepo() *mockRepo {
	return &mockRepo{individuals: make(map[string]*Individual)}
}

func (m *mockRepo) Create(_ context.Context, ind *Individual) error {
	ind.RegisteredAt = time.Now()
	m.individuals[ind.ID] = ind
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id string) (*Individual, error) {
	ind, ok := m.individuals[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return ind, nil
}

func (m *mockRepo) GetForUpdate(ctx context.Context, id string) (*Individual, error) {
	return m.GetByID(ctx, id)
}

func (m *mockRepo) SetActive(_ context.Context, id string, active bool) error {
	ind, ok := m.individuals[id]
	if !ok {
		return core.ErrNotFound
	}
	ind.IsActive = active
	return nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Individual, int, error) {
	var result []*Individual
	for _, ind := range m.individuals {
		result = append(result, ind)
	}
	return result, len(result), nil
}

type mockRoles struct {
	granted map[string]map[roles.Role]bool
}

func newMockRoles(grants ...string) *mockRoles {
	m := &mockRoles{granted: make(map[string]map[roles.Role]bool)}
	for _, p := range grants {
		m.grant(p, roles.RoleIndividual)
	}
	return m
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

type noopTx struct{}

func (noopTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestService(grants ...string) *Service {
	return NewService(newMockRepo(), newMockRoles(grants...), noopTx{})
}

// -- Tests --

func TestRegister(t *testing.T) {
	svc := newTestService("0xpatient")
	ctx := context.Background()

	ind, err := svc.Register(ctx, "0xpatient", "Asha Rao", "1991-04-02", "B+")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if !ind.IsActive {
		t.Error("expected new individual to be active")
	}
	if ind.ID != "0xpatient" {
		t.Errorf("expected id to be the caller principal, got %q", ind.ID)
	}
}

func TestRegister_RequiresRole(t *testing.T) {
	svc := newTestService()
	_, err := svc.Register(context.Background(), "0xnobody", "Asha Rao", "1991-04-02", "B+")
	if !errors.Is(err, core.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestRegister_DuplicatePrincipal(t *testing.T) {
	svc := newTestService("0xpatient")
	ctx := context.Background()

	if _, err := svc.Register(ctx, "0xpatient", "Asha Rao", "1991-04-02", "B+"); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := svc.Register(ctx, "0xpatient", "Someone Else", "1980-01-01", "O-")
	if !errors.Is(err, core.ErrAlreadyRegistered) {
		t.Errorf("expected ErrAlreadyRegistered, got %v", err)
	}
}

func TestDeactivate_SelfOnly(t *testing.T) {
	svc := newTestService("0xpatient")
	ctx := context.Background()

	if _, err := svc.Register(ctx, "0xpatient", "Asha Rao", "1991-04-02", "B+"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := svc.Deactivate(ctx, "0xpatient"); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	ind, err := svc.Get(ctx, "0xpatient")
	if err != nil {
		t.Fatalf("get after deactivate: %v", err)
	}
	if ind.IsActive {
		t.Error("expected tombstone, record still active")
	}

	// Second deactivation hits the tombstone.
	if err := svc.Deactivate(ctx, "0xpatient"); !errors.Is(err, core.ErrInactiveIndividual) {
		t.Errorf("expected ErrInactiveIndividual, got %v", err)
	}
}

func TestDeactivate_Unregistered(t *testing.T) {
	svc := newTestService("0xpatient")
	if err := svc.Deactivate(context.Background(), "0xpatient"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRequireActive(t *testing.T) {
	svc := newTestService("0xpatient")
	ctx := context.Background()

	if err := svc.RequireActive(ctx, "0xpatient"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound before registration, got %v", err)
	}

	if _, err := svc.Register(ctx, "0xpatient", "Asha Rao", "1991-04-02", "B+"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := svc.RequireActive(ctx, "0xpatient"); err != nil {
		t.Errorf("expected nil for active individual, got %v", err)
	}

	if err := svc.Deactivate(ctx, "0xpatient"); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if err := svc.RequireActive(ctx, "0xpatient"); !errors.Is(err, core.ErrInactiveIndividual) {
		t.Errorf("expected ErrInactiveIndividual after tombstone, got %v", err)
	}
}
