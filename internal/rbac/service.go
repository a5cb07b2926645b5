package rbac

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/112Alex/authgate/internal/shared"
)

// Repository answers permission-membership queries against current
// committed state.
type Repository interface {
	HasPermission(ctx context.Context, userID int64, action, resource string) (bool, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// HasPermission reports whether any of the user's roles carries the
// (action, resource) pair. A single EXISTS query over the join tables
// evaluates the union lazily instead of materializing the whole set.
func (r *PGRepository) HasPermission(ctx context.Context, userID int64, action, resource string) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM user_roles ur
			JOIN role_permissions rp ON rp.role_id = ur.role_id
			JOIN permissions p ON p.id = rp.permission_id
			JOIN actions a ON a.id = p.action_id
			JOIN resources res ON res.id = p.resource_id
			WHERE ur.user_id = $1 AND a.name = $2 AND res.name = $3
		)`, userID, action, resource,
	).Scan(&ok)
	if err != nil {
		return false, err
	}
	return ok, nil
}

var _ Repository = (*PGRepository)(nil)

// Service is the authorization decision engine.
type Service struct {
	repo Repository
}

// NewService constructs a Service backed by the provided repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Authorize decides whether the principal may perform the requirement.
// It returns nil on allow, ErrUnauthenticated when no principal is
// attached, and ErrForbidden otherwise. Superusers are allowed
// unconditionally; everyone else needs the exact (action, resource) pair
// in the union of their roles' permissions, read from storage at call
// time so role changes take effect on the next request. Any ambiguity
// (zero requirement, storage failure) denies.
func (s *Service) Authorize(ctx context.Context, p *shared.Principal, req Requirement) error {
	if p == nil {
		return shared.ErrUnauthenticated
	}
	if p.IsSuperuser {
		return nil
	}
	if req.IsZero() {
		return shared.ErrForbidden
	}
	ok, err := s.repo.HasPermission(ctx, p.ID, req.Action, req.Resource)
	if err != nil {
		return err
	}
	if !ok {
		return shared.ErrForbidden
	}
	return nil
}
