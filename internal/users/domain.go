package users

import "time"

// DefaultRoleName is assigned to self-registered accounts.
const DefaultRoleName = "User"

// User represents an account capable of authenticating.
type User struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	IsActive    bool      `json:"is_active"`
	IsStaff     bool      `json:"is_staff"`
	IsSuperuser bool      `json:"is_superuser"`
	JoinedAt    time.Time `json:"joined_at"`
}

// Profile is the self-service view of an account.
type Profile struct {
	User
	Roles []string `json:"roles"`
}
