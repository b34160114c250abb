package roles

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/healthpass/healthpass/internal/domain/profile"
)

// ErrDuplicateRole means the user already holds the role being added. Handlers
// map it to a conflict with a specific message instead of a generic failure.
var ErrDuplicateRole = errors.New("user already has this role")

// ProfileLister supplies the profile rows the admin listing joins roles onto.
type ProfileLister interface {
	List(ctx context.Context, limit, offset int) ([]*profile.Profile, int, error)
}

type Service struct {
	repo     RoleRepository
	profiles ProfileLister
}

func NewService(repo RoleRepository, profiles ProfileLister) *Service {
	return &Service{repo: repo, profiles: profiles}
}

func (s *Service) AddRole(ctx context.Context, userID uuid.UUID, role string) (*UserRole, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user_id is required")
	}
	if !ValidRole(role) {
		return nil, fmt.Errorf("role must be one of %s, %s, %s, %s",
			RolePatient, RoleDoctor, RoleAdmin, RolePharmacist)
	}
	return s.repo.Add(ctx, userID, role)
}

func (s *Service) RemoveRole(ctx context.Context, userID uuid.UUID, role string) error {
	if !ValidRole(role) {
		return fmt.Errorf("role must be one of %s, %s, %s, %s",
			RolePatient, RoleDoctor, RoleAdmin, RolePharmacist)
	}
	return s.repo.Remove(ctx, userID, role)
}

func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID) ([]*UserRole, error) {
	return s.repo.ListByUser(ctx, userID)
}

// UserWithRoles is one row of the admin user listing.
type UserWithRoles struct {
	Profile *profile.Profile `json:"profile"`
	Roles   []string         `json:"roles"`
}

// ListUsersWithRoles joins the profile page onto role assignments with a
// single pass over each set, keyed by user id.
func (s *Service) ListUsersWithRoles(ctx context.Context, limit, offset int) ([]*UserWithRoles, int, error) {
	profiles, total, err := s.profiles.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	assignments, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, 0, err
	}

	byUser := make(map[uuid.UUID][]string, len(assignments))
	for _, a := range assignments {
		byUser[a.UserID] = append(byUser[a.UserID], a.Role)
	}

	items := make([]*UserWithRoles, len(profiles))
	for i, p := range profiles {
		items[i] = &UserWithRoles{Profile: p, Roles: byUser[p.ID]}
	}
	return items, total, nil
}
