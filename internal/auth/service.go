package auth

import (
	"context"
	"errors"

	"github.com/112Alex/authgate/internal/shared"
)

// decoyHash is a fixed argon2id hash of a random throwaway password.
// Login attempts against unknown accounts verify the submitted password
// against it so the hash comparison runs regardless of whether the
// account exists, keeping response timing flat.
const decoyHash = "$argon2id$v=19$m=65536,t=3,p=4$gVYCI1Ps2SqUYzRiUMrcgQ$eFEYdBZo3q3x3pRteM1mSc+VoAgXsVgIVEUO9DPAt70"

// Service implements the credential lifecycle: issuance, refresh, and
// revocation of access/refresh token pairs.
type Service struct {
	repo   Repository
	tokens *TokenManager
}

// NewService constructs a new Service.
func NewService(repo Repository, tokens *TokenManager) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// Login verifies email/password credentials and issues a token pair.
// Unknown accounts and wrong passwords both return ErrInvalidCredentials;
// a correct password on a deactivated account returns ErrInactive, and
// only after the hash comparison has run.
func (s *Service) Login(ctx context.Context, email, password string) (TokenPair, error) {
	user, err := s.repo.FindByEmail(ctx, shared.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			_, _ = VerifyPassword(decoyHash, password)
			return TokenPair{}, shared.ErrInvalidCredentials
		}
		return TokenPair{}, err
	}

	ok, err := VerifyPassword(user.PasswordHash, password)
	if err != nil || !ok {
		return TokenPair{}, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return TokenPair{}, shared.ErrInactive
	}

	return s.issuePair(ctx, user.ID)
}

func (s *Service) issuePair(ctx context.Context, userID int64) (TokenPair, error) {
	access, err := s.tokens.IssueAccess(userID)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, record, err := s.tokens.IssueRefresh(userID)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.repo.CreateOutstanding(ctx, record); err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

// Refresh validates a refresh token and mints a new access token. The
// token must be well-formed, unexpired, and absent from the blacklist,
// and its principal must still be active; the blacklist and account state
// are read from committed storage on every call.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.Verify(refreshToken, TokenTypeRefresh)
	if err != nil {
		return "", err
	}
	record, err := claims.Outstanding()
	if err != nil {
		return "", err
	}

	revoked, err := s.repo.IsBlacklisted(ctx, record.JTI)
	if err != nil {
		return "", err
	}
	if revoked {
		return "", shared.ErrInvalidToken
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return "", shared.ErrInvalidToken
		}
		return "", err
	}
	if !user.IsActive {
		return "", shared.ErrInvalidToken
	}

	return s.tokens.IssueAccess(user.ID)
}

// Logout blacklists the refresh token's identity. A token that is already
// blacklisted logs out successfully a second time; the record is
// reinstated first in case housekeeping purged it.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.tokens.Verify(refreshToken, TokenTypeRefresh)
	if err != nil {
		return err
	}
	record, err := claims.Outstanding()
	if err != nil {
		return err
	}
	if err := s.repo.EnsureOutstanding(ctx, record); err != nil {
		return err
	}
	return s.repo.Blacklist(ctx, record.JTI)
}

// Principal resolves a bearer access token to its principal, reading the
// account row so a deactivation is observed immediately even while the
// stateless access token is still within its lifetime.
func (s *Service) Principal(ctx context.Context, accessToken string) (*shared.Principal, error) {
	claims, err := s.tokens.Verify(accessToken, TokenTypeAccess)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrInvalidToken
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidToken
	}
	return &shared.Principal{
		ID:          user.ID,
		Email:       user.Email,
		IsActive:    user.IsActive,
		IsStaff:     user.IsStaff,
		IsSuperuser: user.IsSuperuser,
	}, nil
}
