package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/112Alex/authgate/internal/shared"
)

type mockRepository struct {
	actions   map[int64]Action
	resources map[int64]Resource
	perms     map[[2]int64]Permission
	nextID    int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		actions:   make(map[int64]Action),
		resources: make(map[int64]Resource),
		perms:     make(map[[2]int64]Permission),
		nextID:    1,
	}
}

func (m *mockRepository) id() int64 {
	id := m.nextID
	m.nextID++
	return id
}

func (m *mockRepository) CreateAction(ctx context.Context, name string) (Action, error) {
	for _, a := range m.actions {
		if a.Name == name {
			return Action{}, shared.ErrAlreadyExists
		}
	}
	a := Action{ID: m.id(), Name: name}
	m.actions[a.ID] = a
	return a, nil
}

func (m *mockRepository) ListActions(ctx context.Context) ([]Action, error) {
	out := make([]Action, 0, len(m.actions))
	for _, a := range m.actions {
		out = append(out, a)
	}
	return out, nil
}

func (m *mockRepository) UpdateAction(ctx context.Context, id int64, name string) (Action, error) {
	a, ok := m.actions[id]
	if !ok {
		return Action{}, shared.ErrNotFound
	}
	a.Name = name
	m.actions[id] = a
	return a, nil
}

func (m *mockRepository) DeleteAction(ctx context.Context, id int64) error {
	if _, ok := m.actions[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.actions, id)
	return nil
}

func (m *mockRepository) CreateResource(ctx context.Context, name string) (Resource, error) {
	for _, r := range m.resources {
		if r.Name == name {
			return Resource{}, shared.ErrAlreadyExists
		}
	}
	r := Resource{ID: m.id(), Name: name}
	m.resources[r.ID] = r
	return r, nil
}

func (m *mockRepository) ListResources(ctx context.Context) ([]Resource, error) {
	out := make([]Resource, 0, len(m.resources))
	for _, r := range m.resources {
		out = append(out, r)
	}
	return out, nil
}

func (m *mockRepository) UpdateResource(ctx context.Context, id int64, name string) (Resource, error) {
	r, ok := m.resources[id]
	if !ok {
		return Resource{}, shared.ErrNotFound
	}
	r.Name = name
	m.resources[id] = r
	return r, nil
}

func (m *mockRepository) DeleteResource(ctx context.Context, id int64) error {
	if _, ok := m.resources[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.resources, id)
	return nil
}

func (m *mockRepository) GetOrCreatePermission(ctx context.Context, resource, action string) (Permission, error) {
	var res *Resource
	for _, r := range m.resources {
		if r.Name == resource {
			r := r
			res = &r
		}
	}
	var act *Action
	for _, a := range m.actions {
		if a.Name == action {
			a := a
			act = &a
		}
	}
	if res == nil || act == nil {
		return Permission{}, shared.ErrNotFound
	}
	key := [2]int64{res.ID, act.ID}
	if p, ok := m.perms[key]; ok {
		return p, nil
	}
	p := Permission{ID: m.id(), ResourceID: res.ID, ActionID: act.ID, Resource: resource, Action: action}
	m.perms[key] = p
	return p, nil
}

func (m *mockRepository) ListPermissions(ctx context.Context) ([]Permission, error) {
	out := make([]Permission, 0, len(m.perms))
	for _, p := range m.perms {
		out = append(out, p)
	}
	return out, nil
}

var _ Repository = (*mockRepository)(nil)

func TestCreateActionValidatesName(t *testing.T) {
	svc := NewService(newMockRepository())

	_, err := svc.CreateAction(context.Background(), "  ")
	assert.Error(t, err)

	a, err := svc.CreateAction(context.Background(), " read ")
	require.NoError(t, err)
	assert.Equal(t, "read", a.Name)
}

func TestEnsurePermissionIdempotent(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	_, err := svc.CreateAction(context.Background(), "read")
	require.NoError(t, err)
	_, err = svc.CreateResource(context.Background(), "SecretDocument")
	require.NoError(t, err)

	first, err := svc.EnsurePermission(context.Background(), "SecretDocument", "read")
	require.NoError(t, err)
	second, err := svc.EnsurePermission(context.Background(), "SecretDocument", "read")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	perms, err := svc.ListPermissions(context.Background())
	require.NoError(t, err)
	assert.Len(t, perms, 1)
}

func TestEnsurePermissionUnknownNames(t *testing.T) {
	svc := NewService(newMockRepository())

	_, err := svc.EnsurePermission(context.Background(), "SecretDocument", "read")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = svc.EnsurePermission(context.Background(), "", "read")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
