// Gente Networking | 2026
// service.go

package member

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/gente-networking/backend/internal/core"
	"github.com/gente-networking/backend/internal/scoring"
)

type Service struct {
	repo  Repository
	rules scoring.Rules
}

func NewService(repo Repository, rules scoring.Rules) *Service {
	return &Service{repo: repo, rules: rules}
}

func (s *Service) Rules() scoring.Rules {
	return s.rules
}

// Create registers a new profile at zero points and the lowest rank tier.
func (s *Service) Create(
	ctx context.Context,
	req CreateMemberRequest,
) (*Member, error) {
	member := &Member{
		ID:      uuid.New().String(),
		Email:   strings.ToLower(req.Email),
		Name:    req.Name,
		Company: req.Company,
		City:    req.City,
		Role:    RoleMember,
	}

	if err := s.repo.Create(ctx, member); err != nil {
		return nil, err
	}

	return member, nil
}

func (s *Service) GetMember(ctx context.Context, id string) (*Member, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*Member, error) {
	return s.repo.GetByEmail(ctx, strings.ToLower(email))
}

func (s *Service) GetMe(ctx context.Context, memberID string) (*Member, error) {
	if memberID == "" {
		return nil, fmt.Errorf("get me: %w", core.ErrUnauthorized)
	}

	return s.repo.GetByID(ctx, memberID)
}

func (s *Service) UpdateMember(
	ctx context.Context,
	id string,
	req UpdateMemberRequest,
) (*Member, error) {
	member, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		member.Name = *req.Name
	}
	if req.Company != nil {
		member.Company = *req.Company
	}
	if req.City != nil {
		member.City = *req.City
	}

	if err := s.repo.Update(ctx, member); err != nil {
		return nil, err
	}

	return member, nil
}

func (s *Service) UpdateMe(
	ctx context.Context,
	memberID string,
	req UpdateMemberRequest,
) (*Member, error) {
	if memberID == "" {
		return nil, fmt.Errorf("update me: %w", core.ErrUnauthorized)
	}

	return s.UpdateMember(ctx, memberID, req)
}

func (s *Service) UpdateMemberRole(
	ctx context.Context,
	id, role string,
) (*Member, error) {
	if role != RoleMember && role != RoleAdmin {
		return nil, fmt.Errorf(
			"update role: invalid role %q: %w",
			role,
			core.ErrInvalidInput,
		)
	}

	member, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	member.Role = role

	if err := s.repo.Update(ctx, member); err != nil {
		return nil, err
	}

	return member, nil
}

// DeactivateMember soft deletes the profile. Deactivated members keep their
// ledger but drop out of directories and bulk recalculation.
func (s *Service) DeactivateMember(ctx context.Context, id string) error {
	return s.repo.SoftDelete(ctx, id)
}

func (s *Service) ListMembers(
	ctx context.Context,
	params ListMembersParams,
) ([]Member, int, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) EmailExists(
	ctx context.Context,
	email string,
) (bool, error) {
	return s.repo.ExistsByEmail(ctx, strings.ToLower(email))
}

func (s *Service) CanDeactivateMember(
	ctx context.Context,
	requesterID, targetID string,
) error {
	if requesterID == targetID {
		return nil
	}

	requester, err := s.repo.GetByID(ctx, requesterID)
	if err != nil {
		return err
	}

	if !requester.IsAdmin() {
		return fmt.Errorf("deactivate member: %w", core.ErrForbidden)
	}

	target, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		return err
	}

	if target.IsAdmin() {
		return fmt.Errorf(
			"cannot deactivate admin members: %w",
			core.ErrForbidden,
		)
	}

	return nil
}
