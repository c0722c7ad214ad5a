package roles

import (
	"context"
	"fmt"

	"github.com/careledger/careledger/internal/domain/core"
)

// Checker is the read-only view of the role registry the other registries
// consult before accepting a self-registration.
type Checker interface {
	Has(ctx context.Context, principal string, role Role) (bool, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Grant assigns a role to a principal. Only an admin may grant.
func (s *Service) Grant(ctx context.Context, caller, principal string, role Role) error {
	if !role.Valid() {
		return fmt.Errorf("%w: unknown role %q", core.ErrInvalidInput, role)
	}
	if err := s.requireAdmin(ctx, caller); err != nil {
		return err
	}
	return s.repo.Grant(ctx, &Assignment{Principal: principal, Role: role, GrantedBy: caller})
}

// Revoke removes a role from a principal. Only an admin may revoke.
func (s *Service) Revoke(ctx context.Context, caller, principal string, role Role) error {
	if !role.Valid() {
		return fmt.Errorf("%w: unknown role %q", core.ErrInvalidInput, role)
	}
	if err := s.requireAdmin(ctx, caller); err != nil {
		return err
	}
	return s.repo.Revoke(ctx, principal, role)
}

// Has reports whether the principal holds the role. Pure read, never gated.
func (s *Service) Has(ctx context.Context, principal string, role Role) (bool, error) {
	return s.repo.Has(ctx, principal, role)
}

// ListForPrincipal returns every role the principal holds.
func (s *Service) ListForPrincipal(ctx context.Context, principal string) ([]Role, error) {
	return s.repo.ListForPrincipal(ctx, principal)
}

// Seed grants the genesis admin role without a caller check. Idempotent;
// called once at startup with the configured admin principal.
func (s *Service) Seed(ctx context.Context, principal string) error {
	if principal == "" {
		return nil
	}
	return s.repo.Grant(ctx, &Assignment{Principal: principal, Role: RoleAdmin, GrantedBy: principal})
}

func (s *Service) requireAdmin(ctx context.Context, caller string) error {
	ok, err := s.repo.Has(ctx, caller, RoleAdmin)
	if err != nil {
		return err
	}
	if !ok {
		return core.ErrUnauthorized
	}
	return nil
}
