package roles

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/112Alex/authgate/internal/catalog"
	"github.com/112Alex/authgate/internal/shared"
)

type mockRepository struct {
	roles       map[int64]Role
	attachments map[int64]map[int64]struct{}
	nextID      int64

	addCalls    int
	removeCalls int
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		roles:       make(map[int64]Role),
		attachments: make(map[int64]map[int64]struct{}),
		nextID:      1,
	}
}

func (m *mockRepository) CreateRole(ctx context.Context, name string) (Role, error) {
	for _, r := range m.roles {
		if r.Name == name {
			return Role{}, shared.ErrAlreadyExists
		}
	}
	role := Role{ID: m.nextID, Name: name}
	m.roles[role.ID] = role
	m.attachments[role.ID] = make(map[int64]struct{})
	m.nextID++
	return role, nil
}

func (m *mockRepository) GetRole(ctx context.Context, id int64) (Role, error) {
	r, ok := m.roles[id]
	if !ok {
		return Role{}, shared.ErrNotFound
	}
	return r, nil
}

func (m *mockRepository) ListRoles(ctx context.Context) ([]Role, error) {
	out := make([]Role, 0, len(m.roles))
	for _, r := range m.roles {
		out = append(out, r)
	}
	return out, nil
}

func (m *mockRepository) UpdateRole(ctx context.Context, id int64, name string) (Role, error) {
	r, ok := m.roles[id]
	if !ok {
		return Role{}, shared.ErrNotFound
	}
	r.Name = name
	m.roles[id] = r
	return r, nil
}

func (m *mockRepository) DeleteRole(ctx context.Context, id int64) error {
	if _, ok := m.roles[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.roles, id)
	delete(m.attachments, id)
	return nil
}

func (m *mockRepository) AddPermission(ctx context.Context, roleID, permissionID int64) error {
	if _, ok := m.roles[roleID]; !ok {
		return shared.ErrNotFound
	}
	m.addCalls++
	m.attachments[roleID][permissionID] = struct{}{}
	return nil
}

func (m *mockRepository) RemovePermission(ctx context.Context, roleID, permissionID int64) error {
	m.removeCalls++
	delete(m.attachments[roleID], permissionID)
	return nil
}

func (m *mockRepository) PermissionsOf(ctx context.Context, roleID int64) ([]catalog.Permission, error) {
	var out []catalog.Permission
	for id := range m.attachments[roleID] {
		out = append(out, catalog.Permission{ID: id})
	}
	return out, nil
}

var _ Repository = (*mockRepository)(nil)

func TestCreateRoleValidatesName(t *testing.T) {
	svc := NewService(newMockRepository())

	_, err := svc.CreateRole(context.Background(), "   ")
	assert.Error(t, err)

	role, err := svc.CreateRole(context.Background(), "  Admin ")
	require.NoError(t, err)
	assert.Equal(t, "Admin", role.Name)
}

func TestCreateRoleDuplicate(t *testing.T) {
	svc := NewService(newMockRepository())

	_, err := svc.CreateRole(context.Background(), "Admin")
	require.NoError(t, err)
	_, err = svc.CreateRole(context.Background(), "Admin")
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
}

func TestSetPermissionsDiffs(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	role, err := svc.CreateRole(context.Background(), "Editor")
	require.NoError(t, err)
	require.NoError(t, svc.AddPermission(context.Background(), role.ID, 1))
	require.NoError(t, svc.AddPermission(context.Background(), role.ID, 2))
	repo.addCalls = 0

	// Keep 2, drop 1, add 3.
	require.NoError(t, svc.SetPermissions(context.Background(), role.ID, []int64{2, 3}))

	perms, err := svc.PermissionsOf(context.Background(), role.ID)
	require.NoError(t, err)
	ids := make([]int64, 0, len(perms))
	for _, p := range perms {
		ids = append(ids, p.ID)
	}
	assert.ElementsMatch(t, []int64{2, 3}, ids)

	// Only the delta touched storage.
	assert.Equal(t, 1, repo.addCalls)
	assert.Equal(t, 1, repo.removeCalls)
}

func TestSetPermissionsUnknownRole(t *testing.T) {
	svc := NewService(newMockRepository())
	err := svc.SetPermissions(context.Background(), 99, []int64{1})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestSetPermissionsEmptyClearsAll(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	role, err := svc.CreateRole(context.Background(), "Viewer")
	require.NoError(t, err)
	require.NoError(t, svc.AddPermission(context.Background(), role.ID, 1))

	require.NoError(t, svc.SetPermissions(context.Background(), role.ID, nil))
	perms, err := svc.PermissionsOf(context.Background(), role.ID)
	require.NoError(t, err)
	assert.Empty(t, perms)
}
