package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedPermissionSet(t *testing.T) {
	assert.ElementsMatch(t, []struct {
		action   string
		resource string
	}{
		{"read", "SecretDocument"},
		{"write", "SecretDocument"},
		{"read", "UserProfile"},
		{"write", "UserProfile"},
	}, seedPermissions)

	// The delete action exists in the catalog but is deliberately left
	// without a permission row.
	assert.Contains(t, seedActions, "delete")
	for _, p := range seedPermissions {
		assert.NotEqual(t, "delete", p.action)
	}
}

func TestSeedRoleGrants(t *testing.T) {
	assert.ElementsMatch(t, seedPermissions, roleGrantPairs(t, "Admin"))
	assert.ElementsMatch(t, []struct {
		action   string
		resource string
	}{
		{"read", "SecretDocument"},
		{"read", "UserProfile"},
	}, roleGrantPairs(t, "User"))
}

func TestSeedAccountsCarryRoles(t *testing.T) {
	byEmail := map[string]string{}
	for _, a := range seedAccounts {
		byEmail[a.email] = a.role
	}
	assert.Equal(t, "Admin", byEmail["admin@example.com"])
	assert.Equal(t, "User", byEmail["user@example.com"])

	// Every granted role must exist in the role catalog.
	for _, a := range seedAccounts {
		if a.role != "" {
			assert.Contains(t, roleGrants, a.role)
		}
	}
}

func roleGrantPairs(t *testing.T, role string) []struct {
	action   string
	resource string
} {
	t.Helper()
	grants, ok := roleGrants[role]
	require.True(t, ok, "role %q not seeded", role)
	pairs := make([]struct {
		action   string
		resource string
	}, 0, len(grants))
	for _, g := range grants {
		pairs = append(pairs, struct {
			action   string
			resource string
		}{g[0], g[1]})
	}
	return pairs
}
