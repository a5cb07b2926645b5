package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/112Alex/authgate/internal/shared"
)

// Token types carried in the typ claim. Access tokens are stateless and
// short-lived; refresh tokens are tracked as outstanding records.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims is the JWT payload for both token types.
type Claims struct {
	UserID    int64  `json:"uid"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 credentials.
type TokenManager struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenManager constructs a TokenManager.
func NewTokenManager(secret, issuer string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:     []byte(secret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// IssueAccess mints a short-lived stateless access token.
func (tm *TokenManager) IssueAccess(userID int64) (string, error) {
	token, _, err := tm.issue(userID, TokenTypeAccess, tm.accessTTL)
	return token, err
}

// IssueRefresh mints a refresh token together with the outstanding record
// the caller must persist.
func (tm *TokenManager) IssueRefresh(userID int64) (string, OutstandingToken, error) {
	return tm.issue(userID, TokenTypeRefresh, tm.refreshTTL)
}

func (tm *TokenManager) issue(userID int64, typ string, ttl time.Duration) (string, OutstandingToken, error) {
	now := tm.now().UTC()
	record := OutstandingToken{
		JTI:       uuid.New(),
		UserID:    userID,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
	claims := Claims{
		UserID:    userID,
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        record.JTI.String(),
			Issuer:    tm.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(record.ExpiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.secret)
	if err != nil {
		return "", OutstandingToken{}, fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, record, nil
}

// Verify parses and validates a token of the expected type. Signature,
// expiry, and issuer checks all collapse into ErrInvalidToken so callers
// fail closed without leaking the reason.
func (tm *TokenManager) Verify(token, wantType string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (any, error) { return tm.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tm.issuer),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(func() time.Time { return tm.now() }),
	)
	if err != nil {
		return nil, shared.ErrInvalidToken
	}
	if claims.TokenType != wantType || claims.ID == "" {
		return nil, shared.ErrInvalidToken
	}
	return claims, nil
}

// Outstanding reconstructs the outstanding record from refresh claims,
// for blacklisting tokens whose record was already purged.
func (c *Claims) Outstanding() (OutstandingToken, error) {
	jti, err := uuid.Parse(c.ID)
	if err != nil {
		return OutstandingToken{}, shared.ErrInvalidToken
	}
	record := OutstandingToken{JTI: jti, UserID: c.UserID}
	if c.IssuedAt != nil {
		record.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		record.ExpiresAt = c.ExpiresAt.Time
	}
	return record, nil
}
