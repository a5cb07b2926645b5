package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/112Alex/authgate/internal/platform/db"
	"github.com/112Alex/authgate/internal/shared"
)

// TokenRevoker blacklists all outstanding tokens of a user within a
// transaction. Implemented by the credential lifecycle repository.
type TokenRevoker interface {
	RevokeAllTx(ctx context.Context, tx pgx.Tx, userID int64) error
}

// Repository defines persistence operations for the principal store.
type Repository interface {
	Create(ctx context.Context, email, passwordHash, firstName, lastName string) (User, error)
	FindByID(ctx context.Context, id int64) (User, error)
	UpdateName(ctx context.Context, id int64, firstName, lastName string) (User, error)
	Deactivate(ctx context.Context, id int64) error
	AssignRoleByName(ctx context.Context, userID int64, roleName string) error
	AssignRole(ctx context.Context, userID, roleID int64) error
	RemoveRole(ctx context.Context, userID, roleID int64) error
	RoleNamesOf(ctx context.Context, userID int64) ([]string, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool    *pgxpool.Pool
	revoker TokenRevoker
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool, revoker TokenRevoker) *PGRepository {
	return &PGRepository{pool: pool, revoker: revoker}
}

const userColumns = `id, email, first_name, last_name, is_active, is_staff, is_superuser, joined_at`

// Create inserts a new account. Duplicate emails map to ErrAlreadyExists.
func (r *PGRepository) Create(ctx context.Context, email, passwordHash, firstName, lastName string) (User, error) {
	var u User
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, first_name, last_name)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userColumns,
		email, passwordHash, firstName, lastName,
	).Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.IsActive, &u.IsStaff, &u.IsSuperuser, &u.JoinedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return User{}, shared.ErrAlreadyExists
		}
		return User{}, err
	}
	return u, nil
}

// FindByID fetches an account by ID.
func (r *PGRepository) FindByID(ctx context.Context, id int64) (User, error) {
	var u User
	err := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.IsActive, &u.IsStaff, &u.IsSuperuser, &u.JoinedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, shared.ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

// UpdateName updates the account's name fields.
func (r *PGRepository) UpdateName(ctx context.Context, id int64, firstName, lastName string) (User, error) {
	var u User
	err := r.pool.QueryRow(ctx, `
		UPDATE users SET first_name = $2, last_name = $3, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns,
		id, firstName, lastName,
	).Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.IsActive, &u.IsStaff, &u.IsSuperuser, &u.JoinedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, shared.ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

// Deactivate soft-deletes the account and blacklists every outstanding
// refresh token in one transaction, so the inactive flag and the
// revocations become visible together.
func (r *PGRepository) Deactivate(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE users SET is_active = FALSE, updated_at = now() WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		return r.revoker.RevokeAllTx(ctx, tx, id)
	})
}

// AssignRoleByName attaches the named role to a user. Returns ErrNotFound
// when the role does not exist; re-assigning is a no-op.
func (r *PGRepository) AssignRoleByName(ctx context.Context, userID int64, roleName string) error {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO user_roles (user_id, role_id)
		SELECT $1, id FROM roles WHERE name = $2
		ON CONFLICT (user_id, role_id) DO NOTHING`,
		userID, roleName)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Either the role is missing or the assignment already exists;
		// distinguish so callers can log missing seed roles.
		var exists bool
		if err := r.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM roles WHERE name = $1)`, roleName,
		).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return shared.ErrNotFound
		}
	}
	return nil
}

// AssignRole attaches a role to a user; a no-op when already assigned.
func (r *PGRepository) AssignRole(ctx context.Context, userID, roleID int64) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_roles (user_id, role_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, role_id) DO NOTHING`,
		userID, roleID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return shared.ErrNotFound
		}
		return err
	}
	return nil
}

// RemoveRole detaches a role from a user.
func (r *PGRepository) RemoveRole(ctx context.Context, userID, roleID int64) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM user_roles WHERE user_id = $1 AND role_id = $2`, userID, roleID)
	return err
}

// RoleNamesOf returns the names of the user's assigned roles.
func (r *PGRepository) RoleNamesOf(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT r.name FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		WHERE ur.user_id = $1
		ORDER BY r.name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

var _ Repository = (*PGRepository)(nil)
