package rbac

import (
	"fmt"
	"strings"
)

// Requirement is the permission an endpoint demands, declared as
// "<action> <resource>" and parsed once at route registration. The zero
// Requirement always denies, so a route without a declaration (or with a
// malformed one) fails closed instead of allowing by accident.
type Requirement struct {
	Action   string
	Resource string
}

// IsZero reports whether the requirement carries no declaration.
func (r Requirement) IsZero() bool {
	return r.Action == "" || r.Resource == ""
}

// String renders the declaration form.
func (r Requirement) String() string {
	return r.Action + " " + r.Resource
}

// ParseRequirement splits a "<action> <resource>" declaration on the first
// space. The resource part may itself contain spaces.
func ParseRequirement(s string) (Requirement, error) {
	action, resource, found := strings.Cut(s, " ")
	if !found || action == "" || strings.TrimSpace(resource) == "" {
		return Requirement{}, fmt.Errorf("rbac: malformed requirement %q", s)
	}
	return Requirement{Action: action, Resource: strings.TrimSpace(resource)}, nil
}

// MustRequirement parses a static declaration, panicking on a malformed
// one. Intended for route registration, where a bad declaration is a
// configuration defect that should surface at startup.
func MustRequirement(s string) Requirement {
	req, err := ParseRequirement(s)
	if err != nil {
		panic(err)
	}
	return req
}
