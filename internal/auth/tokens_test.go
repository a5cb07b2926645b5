package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/112Alex/authgate/internal/shared"
)

func newTestManager() *TokenManager {
	return NewTokenManager("test-secret", "authgate-test", 15*time.Minute, 7*24*time.Hour)
}

func TestIssueAndVerifyAccess(t *testing.T) {
	tm := newTestManager()

	token, err := tm.IssueAccess(42)
	require.NoError(t, err)

	claims, err := tm.Verify(token, TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	_, err = uuid.Parse(claims.ID)
	assert.NoError(t, err)
}

func TestIssueRefreshReturnsRecord(t *testing.T) {
	tm := newTestManager()

	token, record, err := tm.IssueRefresh(7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), record.UserID)
	assert.True(t, record.ExpiresAt.After(record.IssuedAt))

	claims, err := tm.Verify(token, TokenTypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, record.JTI.String(), claims.ID)

	got, err := claims.Outstanding()
	require.NoError(t, err)
	assert.Equal(t, record.JTI, got.JTI)
	assert.Equal(t, record.UserID, got.UserID)
}

func TestVerifyRejectsWrongType(t *testing.T) {
	tm := newTestManager()

	access, err := tm.IssueAccess(1)
	require.NoError(t, err)
	refresh, _, err := tm.IssueRefresh(1)
	require.NoError(t, err)

	_, err = tm.Verify(access, TokenTypeRefresh)
	assert.ErrorIs(t, err, shared.ErrInvalidToken)
	_, err = tm.Verify(refresh, TokenTypeAccess)
	assert.ErrorIs(t, err, shared.ErrInvalidToken)
}

func TestVerifyRejectsExpired(t *testing.T) {
	tm := newTestManager()

	token, err := tm.IssueAccess(1)
	require.NoError(t, err)

	tm.now = func() time.Time { return time.Now().Add(16 * time.Minute) }
	_, err = tm.Verify(token, TokenTypeAccess)
	assert.ErrorIs(t, err, shared.ErrInvalidToken)
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	other := NewTokenManager("other-secret", "authgate-test", time.Minute, time.Hour)
	token, err := other.IssueAccess(1)
	require.NoError(t, err)

	_, err = newTestManager().Verify(token, TokenTypeAccess)
	assert.ErrorIs(t, err, shared.ErrInvalidToken)
}

func TestVerifyRejectsForeignIssuer(t *testing.T) {
	other := NewTokenManager("test-secret", "someone-else", time.Minute, time.Hour)
	token, err := other.IssueAccess(1)
	require.NoError(t, err)

	_, err = newTestManager().Verify(token, TokenTypeAccess)
	assert.ErrorIs(t, err, shared.ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	_, err := newTestManager().Verify("not.a.jwt", TokenTypeAccess)
	assert.ErrorIs(t, err, shared.ErrInvalidToken)
}
