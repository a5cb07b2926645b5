package users

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/112Alex/authgate/internal/auth"
	"github.com/112Alex/authgate/internal/shared"
)

// Service handles principal store business logic.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// RegisterInput carries self-registration fields.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Register creates an account with a hashed password and the default
// role. A missing default role is a seed defect: the account is still
// created, the assignment is logged and skipped.
func (s *Service) Register(ctx context.Context, input RegisterInput) (User, error) {
	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return User{}, err
	}
	user, err := s.repo.Create(ctx,
		shared.NormalizeEmail(input.Email), hash,
		strings.TrimSpace(input.FirstName), strings.TrimSpace(input.LastName))
	if err != nil {
		return User{}, err
	}
	if err := s.repo.AssignRoleByName(ctx, user.ID, DefaultRoleName); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("default role missing, skipping assignment",
				slog.String("role", DefaultRoleName), slog.Int64("user_id", user.ID))
		} else {
			return User{}, err
		}
	}
	return user, nil
}

// Profile returns the account with its role names.
func (s *Service) Profile(ctx context.Context, id int64) (Profile, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Profile{}, err
	}
	roleNames, err := s.repo.RoleNamesOf(ctx, id)
	if err != nil {
		return Profile{}, err
	}
	return Profile{User: user, Roles: roleNames}, nil
}

// UpdateProfile updates the account's name fields.
func (s *Service) UpdateProfile(ctx context.Context, id int64, firstName, lastName string) (User, error) {
	return s.repo.UpdateName(ctx, id, strings.TrimSpace(firstName), strings.TrimSpace(lastName))
}

// Deactivate soft-deletes the account; the repository revokes all
// outstanding tokens in the same transaction.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	return s.repo.Deactivate(ctx, id)
}

// AssignRole attaches a role to a user.
func (s *Service) AssignRole(ctx context.Context, userID, roleID int64) error {
	return s.repo.AssignRole(ctx, userID, roleID)
}

// RemoveRole detaches a role from a user.
func (s *Service) RemoveRole(ctx context.Context, userID, roleID int64) error {
	return s.repo.RemoveRole(ctx, userID, roleID)
}
