package roles

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/112Alex/authgate/internal/catalog"
	"github.com/112Alex/authgate/internal/shared"
)

// Repository defines persistence operations for the role store.
type Repository interface {
	CreateRole(ctx context.Context, name string) (Role, error)
	GetRole(ctx context.Context, id int64) (Role, error)
	ListRoles(ctx context.Context) ([]Role, error)
	UpdateRole(ctx context.Context, id int64, name string) (Role, error)
	DeleteRole(ctx context.Context, id int64) error

	AddPermission(ctx context.Context, roleID, permissionID int64) error
	RemovePermission(ctx context.Context, roleID, permissionID int64) error
	PermissionsOf(ctx context.Context, roleID int64) ([]catalog.Permission, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// CreateRole inserts a new role. Duplicate names map to ErrAlreadyExists.
func (r *PGRepository) CreateRole(ctx context.Context, name string) (Role, error) {
	var role Role
	err := r.pool.QueryRow(ctx,
		`INSERT INTO roles (name) VALUES ($1) RETURNING id, name`, name,
	).Scan(&role.ID, &role.Name)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Role{}, shared.ErrAlreadyExists
		}
		return Role{}, err
	}
	return role, nil
}

// GetRole fetches a role by ID.
func (r *PGRepository) GetRole(ctx context.Context, id int64) (Role, error) {
	var role Role
	err := r.pool.QueryRow(ctx,
		`SELECT id, name FROM roles WHERE id = $1`, id,
	).Scan(&role.ID, &role.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Role{}, shared.ErrNotFound
		}
		return Role{}, err
	}
	return role, nil
}

// ListRoles returns all roles ordered by name.
func (r *PGRepository) ListRoles(ctx context.Context) ([]Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM roles ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, err
		}
		out = append(out, role)
	}
	return out, rows.Err()
}

// UpdateRole renames a role.
func (r *PGRepository) UpdateRole(ctx context.Context, id int64, name string) (Role, error) {
	var role Role
	err := r.pool.QueryRow(ctx,
		`UPDATE roles SET name = $2 WHERE id = $1 RETURNING id, name`, id, name,
	).Scan(&role.ID, &role.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Role{}, shared.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Role{}, shared.ErrAlreadyExists
		}
		return Role{}, err
	}
	return role, nil
}

// DeleteRole removes a role; assignments cascade.
func (r *PGRepository) DeleteRole(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// AddPermission attaches a permission to a role. Re-attaching an already
// present permission is a no-op (set semantics).
func (r *PGRepository) AddPermission(ctx context.Context, roleID, permissionID int64) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO role_permissions (role_id, permission_id)
		VALUES ($1, $2)
		ON CONFLICT (role_id, permission_id) DO NOTHING`,
		roleID, permissionID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return shared.ErrNotFound
		}
		return err
	}
	return nil
}

// RemovePermission detaches a permission from a role.
func (r *PGRepository) RemovePermission(ctx context.Context, roleID, permissionID int64) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM role_permissions WHERE role_id = $1 AND permission_id = $2`,
		roleID, permissionID)
	return err
}

// PermissionsOf returns the permission set attached to a role.
func (r *PGRepository) PermissionsOf(ctx context.Context, roleID int64) ([]catalog.Permission, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.resource_id, p.action_id, res.name, a.name
		FROM role_permissions rp
		JOIN permissions p ON p.id = rp.permission_id
		JOIN resources res ON res.id = p.resource_id
		JOIN actions a ON a.id = p.action_id
		WHERE rp.role_id = $1
		ORDER BY res.name, a.name`, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var perms []catalog.Permission
	for rows.Next() {
		var p catalog.Permission
		if err := rows.Scan(&p.ID, &p.ResourceID, &p.ActionID, &p.Resource, &p.Action); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

var _ Repository = (*PGRepository)(nil)
