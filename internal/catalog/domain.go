package catalog

// Action represents a named operation, e.g. read or write.
type Action struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Resource represents a named protected object category.
type Resource struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Permission is an allowed (resource, action) pair, unique on the pair.
type Permission struct {
	ID         int64  `json:"id"`
	ResourceID int64  `json:"resource_id"`
	ActionID   int64  `json:"action_id"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
}
