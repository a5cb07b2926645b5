package roles

import (
	"context"
	"errors"
	"strings"

	"github.com/112Alex/authgate/internal/catalog"
)

// Service orchestrates role store operations.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateRole inserts a new role with a unique name.
func (s *Service) CreateRole(ctx context.Context, name string) (Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Role{}, errors.New("roles: role name required")
	}
	return s.repo.CreateRole(ctx, name)
}

// GetRole fetches a role by ID.
func (s *Service) GetRole(ctx context.Context, id int64) (Role, error) {
	return s.repo.GetRole(ctx, id)
}

// ListRoles returns all roles.
func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	return s.repo.ListRoles(ctx)
}

// UpdateRole renames a role.
func (s *Service) UpdateRole(ctx context.Context, id int64, name string) (Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Role{}, errors.New("roles: role name required")
	}
	return s.repo.UpdateRole(ctx, id, name)
}

// DeleteRole removes a role.
func (s *Service) DeleteRole(ctx context.Context, id int64) error {
	return s.repo.DeleteRole(ctx, id)
}

// AddPermission attaches a permission to a role, a no-op when present.
func (s *Service) AddPermission(ctx context.Context, roleID, permissionID int64) error {
	return s.repo.AddPermission(ctx, roleID, permissionID)
}

// RemovePermission detaches a permission from a role.
func (s *Service) RemovePermission(ctx context.Context, roleID, permissionID int64) error {
	return s.repo.RemovePermission(ctx, roleID, permissionID)
}

// PermissionsOf returns the permission set of a role.
func (s *Service) PermissionsOf(ctx context.Context, roleID int64) ([]catalog.Permission, error) {
	return s.repo.PermissionsOf(ctx, roleID)
}

// SetPermissions replaces the permission set of a role by diffing the
// current attachments against the desired IDs: missing ones are attached,
// surplus ones detached. Permissions already in both sets are untouched.
func (s *Service) SetPermissions(ctx context.Context, roleID int64, permissionIDs []int64) error {
	if _, err := s.repo.GetRole(ctx, roleID); err != nil {
		return err
	}
	current, err := s.repo.PermissionsOf(ctx, roleID)
	if err != nil {
		return err
	}
	existing := make(map[int64]struct{}, len(current))
	for _, p := range current {
		existing[p.ID] = struct{}{}
	}
	keep := make(map[int64]struct{}, len(permissionIDs))
	for _, id := range permissionIDs {
		keep[id] = struct{}{}
		if _, ok := existing[id]; !ok {
			if err := s.repo.AddPermission(ctx, roleID, id); err != nil {
				return err
			}
		}
	}
	for id := range existing {
		if _, ok := keep[id]; !ok {
			if err := s.repo.RemovePermission(ctx, roleID, id); err != nil {
				return err
			}
		}
	}
	return nil
}
