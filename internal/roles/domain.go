package roles

// Role represents a named bundle of permissions assignable to users.
type Role struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
