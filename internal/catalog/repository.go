package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/112Alex/authgate/internal/shared"
)

// Repository defines persistence operations for the permission catalog.
type Repository interface {
	CreateAction(ctx context.Context, name string) (Action, error)
	ListActions(ctx context.Context) ([]Action, error)
	UpdateAction(ctx context.Context, id int64, name string) (Action, error)
	DeleteAction(ctx context.Context, id int64) error

	CreateResource(ctx context.Context, name string) (Resource, error)
	ListResources(ctx context.Context) ([]Resource, error)
	UpdateResource(ctx context.Context, id int64, name string) (Resource, error)
	DeleteResource(ctx context.Context, id int64) error

	GetOrCreatePermission(ctx context.Context, resource, action string) (Permission, error)
	ListPermissions(ctx context.Context) ([]Permission, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// CreateAction inserts a new action. Duplicate names map to ErrAlreadyExists.
func (r *PGRepository) CreateAction(ctx context.Context, name string) (Action, error) {
	var a Action
	err := r.pool.QueryRow(ctx,
		`INSERT INTO actions (name) VALUES ($1) RETURNING id, name`, name,
	).Scan(&a.ID, &a.Name)
	if err != nil {
		return Action{}, mapUniqueViolation(err)
	}
	return a, nil
}

// ListActions returns all actions ordered by name.
func (r *PGRepository) ListActions(ctx context.Context) ([]Action, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM actions ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var actions []Action
	for rows.Next() {
		var a Action
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	return actions, rows.Err()
}

// UpdateAction renames an action.
func (r *PGRepository) UpdateAction(ctx context.Context, id int64, name string) (Action, error) {
	var a Action
	err := r.pool.QueryRow(ctx,
		`UPDATE actions SET name = $2 WHERE id = $1 RETURNING id, name`, id, name,
	).Scan(&a.ID, &a.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Action{}, shared.ErrNotFound
		}
		return Action{}, mapUniqueViolation(err)
	}
	return a, nil
}

// DeleteAction removes an action; dependent permissions cascade.
func (r *PGRepository) DeleteAction(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM actions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CreateResource inserts a new resource. Duplicate names map to ErrAlreadyExists.
func (r *PGRepository) CreateResource(ctx context.Context, name string) (Resource, error) {
	var res Resource
	err := r.pool.QueryRow(ctx,
		`INSERT INTO resources (name) VALUES ($1) RETURNING id, name`, name,
	).Scan(&res.ID, &res.Name)
	if err != nil {
		return Resource{}, mapUniqueViolation(err)
	}
	return res, nil
}

// ListResources returns all resources ordered by name.
func (r *PGRepository) ListResources(ctx context.Context) ([]Resource, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM resources ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var resources []Resource
	for rows.Next() {
		var res Resource
		if err := rows.Scan(&res.ID, &res.Name); err != nil {
			return nil, err
		}
		resources = append(resources, res)
	}
	return resources, rows.Err()
}

// UpdateResource renames a resource.
func (r *PGRepository) UpdateResource(ctx context.Context, id int64, name string) (Resource, error) {
	var res Resource
	err := r.pool.QueryRow(ctx,
		`UPDATE resources SET name = $2 WHERE id = $1 RETURNING id, name`, id, name,
	).Scan(&res.ID, &res.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Resource{}, shared.ErrNotFound
		}
		return Resource{}, mapUniqueViolation(err)
	}
	return res, nil
}

// DeleteResource removes a resource; dependent permissions cascade.
func (r *PGRepository) DeleteResource(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM resources WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// GetOrCreatePermission upserts the (resource, action) pair by name and
// returns the record, existing or new. The no-op DO UPDATE makes the
// RETURNING clause yield the existing row on conflict, so re-creating an
// identical pair never duplicates it.
func (r *PGRepository) GetOrCreatePermission(ctx context.Context, resource, action string) (Permission, error) {
	var p Permission
	err := r.pool.QueryRow(ctx, `
		INSERT INTO permissions (resource_id, action_id)
		SELECT res.id, a.id FROM resources res, actions a
		WHERE res.name = $1 AND a.name = $2
		ON CONFLICT (resource_id, action_id)
		DO UPDATE SET resource_id = EXCLUDED.resource_id
		RETURNING id, resource_id, action_id`,
		resource, action,
	).Scan(&p.ID, &p.ResourceID, &p.ActionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Unknown resource or action name.
			return Permission{}, shared.ErrNotFound
		}
		return Permission{}, err
	}
	p.Resource = resource
	p.Action = action
	return p, nil
}

// ListPermissions returns all permissions with resolved names.
func (r *PGRepository) ListPermissions(ctx context.Context) ([]Permission, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.resource_id, p.action_id, res.name, a.name
		FROM permissions p
		JOIN resources res ON res.id = p.resource_id
		JOIN actions a ON a.id = p.action_id
		ORDER BY res.name, a.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var perms []Permission
	for rows.Next() {
		var p Permission
		if err := rows.Scan(&p.ID, &p.ResourceID, &p.ActionID, &p.Resource, &p.Action); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return shared.ErrAlreadyExists
	}
	return err
}

var _ Repository = (*PGRepository)(nil)
