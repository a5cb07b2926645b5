package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/112Alex/authgate/internal/shared"
)

// Service wraps catalog business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateAction inserts a named action.
func (s *Service) CreateAction(ctx context.Context, name string) (Action, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Action{}, errors.New("catalog: action name required")
	}
	return s.repo.CreateAction(ctx, name)
}

// ListActions returns all actions.
func (s *Service) ListActions(ctx context.Context) ([]Action, error) {
	return s.repo.ListActions(ctx)
}

// UpdateAction renames an action.
func (s *Service) UpdateAction(ctx context.Context, id int64, name string) (Action, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Action{}, errors.New("catalog: action name required")
	}
	return s.repo.UpdateAction(ctx, id, name)
}

// DeleteAction removes an action and, through cascade, its permissions.
func (s *Service) DeleteAction(ctx context.Context, id int64) error {
	return s.repo.DeleteAction(ctx, id)
}

// CreateResource inserts a named resource.
func (s *Service) CreateResource(ctx context.Context, name string) (Resource, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Resource{}, errors.New("catalog: resource name required")
	}
	return s.repo.CreateResource(ctx, name)
}

// ListResources returns all resources.
func (s *Service) ListResources(ctx context.Context) ([]Resource, error) {
	return s.repo.ListResources(ctx)
}

// UpdateResource renames a resource.
func (s *Service) UpdateResource(ctx context.Context, id int64, name string) (Resource, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Resource{}, errors.New("catalog: resource name required")
	}
	return s.repo.UpdateResource(ctx, id, name)
}

// DeleteResource removes a resource and, through cascade, its permissions.
func (s *Service) DeleteResource(ctx context.Context, id int64) error {
	return s.repo.DeleteResource(ctx, id)
}

// EnsurePermission idempotently upserts the (resource, action) pair.
// Both names must already exist in the catalog.
func (s *Service) EnsurePermission(ctx context.Context, resource, action string) (Permission, error) {
	resource = strings.TrimSpace(resource)
	action = strings.TrimSpace(action)
	if resource == "" || action == "" {
		return Permission{}, shared.ErrNotFound
	}
	return s.repo.GetOrCreatePermission(ctx, resource, action)
}

// ListPermissions returns all permissions with resolved names.
func (s *Service) ListPermissions(ctx context.Context) ([]Permission, error) {
	return s.repo.ListPermissions(ctx)
}
