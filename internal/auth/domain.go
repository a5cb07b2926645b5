package auth

import (
	"time"

	"github.com/google/uuid"
)

// User is the authentication view of an account.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	IsActive     bool
	IsStaff      bool
	IsSuperuser  bool
}

// TokenPair is an issued access/refresh credential pair.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// OutstandingToken records an issued refresh token. A refresh token stays
// usable until its expiry passes or a BlacklistEntry tombstones it.
type OutstandingToken struct {
	JTI       uuid.UUID
	UserID    int64
	IssuedAt  time.Time
	ExpiresAt time.Time
}
