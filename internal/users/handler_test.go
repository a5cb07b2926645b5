package users

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/112Alex/authgate/internal/rbac"
	"github.com/112Alex/authgate/internal/shared"
	_ "github.com/112Alex/authgate/testing"
)

type allowAllPermissions struct{}

func (allowAllPermissions) HasPermission(ctx context.Context, userID int64, action, resource string) (bool, error) {
	return true, nil
}

func newTestRouter(repo *mockRepository, principal *shared.Principal) chi.Router {
	rbacMW := rbac.Middleware{Service: rbac.NewService(allowAllPermissions{})}
	h := NewHandler(discardLogger(), NewService(repo, discardLogger()), rbacMW)

	r := chi.NewRouter()
	if principal != nil {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(shared.ContextWithPrincipal(req.Context(), principal)))
			})
		})
	}
	h.MountRoutes(r)
	r.Route("/admin", h.MountAdminRoutes)
	return r
}

func doJSON(t *testing.T, router chi.Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res
}

func TestRegisterEndpoint(t *testing.T) {
	repo := newMockRepository(DefaultRoleName)
	router := newTestRouter(repo, nil)

	res := doJSON(t, router, http.MethodPost, "/register", map[string]string{
		"email":      "new@example.com",
		"password":   "long-enough-pass",
		"first_name": "New",
	})
	require.Equal(t, http.StatusCreated, res.Code)

	var user User
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &user))
	assert.Equal(t, "new@example.com", user.Email)
	assert.NotContains(t, res.Body.String(), "password")
}

func TestRegisterEndpointRejectsShortPassword(t *testing.T) {
	router := newTestRouter(newMockRepository(DefaultRoleName), nil)

	res := doJSON(t, router, http.MethodPost, "/register", map[string]string{
		"email": "new@example.com", "password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestRegisterEndpointDuplicate(t *testing.T) {
	repo := newMockRepository(DefaultRoleName)
	router := newTestRouter(repo, nil)

	body := map[string]string{"email": "new@example.com", "password": "long-enough-pass"}
	res := doJSON(t, router, http.MethodPost, "/register", body)
	require.Equal(t, http.StatusCreated, res.Code)
	res = doJSON(t, router, http.MethodPost, "/register", body)
	assert.Equal(t, http.StatusConflict, res.Code)
}

func TestProfileRequiresAuthentication(t *testing.T) {
	router := newTestRouter(newMockRepository(DefaultRoleName), nil)

	res := doJSON(t, router, http.MethodGet, "/profile", nil)
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestProfileRoundTrip(t *testing.T) {
	repo := newMockRepository(DefaultRoleName)
	svc := NewService(repo, discardLogger())
	user, err := svc.Register(context.Background(), RegisterInput{
		Email: "jo@example.com", Password: "long-enough-pass", FirstName: "Jo",
	})
	require.NoError(t, err)

	router := newTestRouter(repo, &shared.Principal{ID: user.ID, Email: user.Email, IsActive: true})

	res := doJSON(t, router, http.MethodGet, "/profile", nil)
	require.Equal(t, http.StatusOK, res.Code)

	var profile Profile
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &profile))
	assert.Equal(t, "jo@example.com", profile.Email)
	assert.Equal(t, []string{DefaultRoleName}, profile.Roles)

	res = doJSON(t, router, http.MethodPatch, "/profile", map[string]string{
		"first_name": "Joanna", "last_name": "Doe",
	})
	require.Equal(t, http.StatusOK, res.Code)

	var updated User
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &updated))
	assert.Equal(t, "Joanna", updated.FirstName)
}

func TestDeleteProfileDeactivates(t *testing.T) {
	repo := newMockRepository(DefaultRoleName)
	svc := NewService(repo, discardLogger())
	user, err := svc.Register(context.Background(), RegisterInput{
		Email: "jo@example.com", Password: "long-enough-pass",
	})
	require.NoError(t, err)

	router := newTestRouter(repo, &shared.Principal{ID: user.ID, IsActive: true})

	res := doJSON(t, router, http.MethodDelete, "/profile", nil)
	assert.Equal(t, http.StatusNoContent, res.Code)

	got, err := repo.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.Equal(t, []int64{user.ID}, repo.revoked)
}

func TestAdminRoleAssignment(t *testing.T) {
	repo := newMockRepository(DefaultRoleName, "Admin")
	svc := NewService(repo, discardLogger())
	user, err := svc.Register(context.Background(), RegisterInput{
		Email: "jo@example.com", Password: "long-enough-pass",
	})
	require.NoError(t, err)

	router := newTestRouter(repo, &shared.Principal{ID: 99, IsSuperuser: true})

	res := doJSON(t, router, http.MethodPost, "/admin/users/1/roles", map[string]int64{
		"role_id": repo.roles["Admin"],
	})
	require.Equal(t, http.StatusNoContent, res.Code)
	assert.Contains(t, repo.granted[user.ID], "Admin")

	res = doJSON(t, router, http.MethodDelete,
		"/admin/users/1/roles/"+strconv.FormatInt(repo.roles["Admin"], 10), nil)
	require.Equal(t, http.StatusNoContent, res.Code)
	assert.NotContains(t, repo.granted[user.ID], "Admin")

	res = doJSON(t, router, http.MethodPost, "/admin/users/not-a-number/roles", map[string]int64{
		"role_id": repo.roles["Admin"],
	})
	assert.Equal(t, http.StatusBadRequest, res.Code)
}
