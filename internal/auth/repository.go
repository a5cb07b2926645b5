package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/112Alex/authgate/internal/shared"
)

// Repository defines persistence operations for the credential lifecycle.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	CreateOutstanding(ctx context.Context, record OutstandingToken) error
	EnsureOutstanding(ctx context.Context, record OutstandingToken) error
	IsBlacklisted(ctx context.Context, jti uuid.UUID) (bool, error)
	Blacklist(ctx context.Context, jti uuid.UUID) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const userColumns = `id, email, password_hash, is_active, is_staff, is_superuser`

// FindByEmail fetches a user by normalized email.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.findUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

// FindByID fetches a user by ID.
func (r *PGRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	return r.findUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *PGRepository) findUser(ctx context.Context, query string, arg any) (*User, error) {
	var u User
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.IsActive, &u.IsStaff, &u.IsSuperuser,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// CreateOutstanding persists the record of an issued refresh token.
func (r *PGRepository) CreateOutstanding(ctx context.Context, record OutstandingToken) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO outstanding_tokens (jti, user_id, issued_at, expires_at)
		VALUES ($1, $2, $3, $4)`,
		record.JTI, record.UserID, record.IssuedAt, record.ExpiresAt)
	return err
}

// EnsureOutstanding reinstates an outstanding record when missing, so a
// token whose record was purged can still be blacklisted on logout.
func (r *PGRepository) EnsureOutstanding(ctx context.Context, record OutstandingToken) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO outstanding_tokens (jti, user_id, issued_at, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (jti) DO NOTHING`,
		record.JTI, record.UserID, record.IssuedAt, record.ExpiresAt)
	return err
}

// IsBlacklisted reports committed blacklist membership at call time.
func (r *PGRepository) IsBlacklisted(ctx context.Context, jti uuid.UUID) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM token_blacklist WHERE jti = $1)`, jti,
	).Scan(&ok)
	if err != nil {
		return false, err
	}
	return ok, nil
}

// Blacklist tombstones an outstanding token. Idempotent.
func (r *PGRepository) Blacklist(ctx context.Context, jti uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO token_blacklist (jti, blacklisted_at)
		VALUES ($1, now())
		ON CONFLICT (jti) DO NOTHING`, jti)
	return err
}

// RevokeAllTx blacklists every outstanding token of a user inside the
// caller's transaction. Deactivation runs this in the same transaction as
// the is_active write so no window exists where the account is inactive
// but a refresh token still works.
func (r *PGRepository) RevokeAllTx(ctx context.Context, tx pgx.Tx, userID int64) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO token_blacklist (jti, blacklisted_at)
		SELECT jti, now() FROM outstanding_tokens WHERE user_id = $1
		ON CONFLICT (jti) DO NOTHING`, userID)
	return err
}

var _ Repository = (*PGRepository)(nil)
