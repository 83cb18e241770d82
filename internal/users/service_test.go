package users

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-pos/internal/rbac"
	"github.com/odyssey-erp/odyssey-pos/internal/shared"
	_ "github.com/odyssey-erp/odyssey-pos/testing"
)

type memoryRepo struct {
	users  map[int64]User
	hashes map[int64]string
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: map[int64]User{}, hashes: map[int64]string{}}
}

func (m *memoryRepo) List(ctx context.Context, commerceID int64) ([]User, error) {
	var out []User
	for id := int64(1); id <= m.nextID; id++ {
		if u, ok := m.users[id]; ok && u.CommerceID == commerceID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *memoryRepo) Get(ctx context.Context, commerceID, id int64) (User, error) {
	u, ok := m.users[id]
	if !ok || u.CommerceID != commerceID {
		return User{}, httpx.ErrNotFound
	}
	return u, nil
}

func (m *memoryRepo) Create(ctx context.Context, user User, passwordHash string) (User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, user.Email) {
			return User{}, httpx.ErrDuplicate
		}
	}
	m.nextID++
	user.ID = m.nextID
	m.users[user.ID] = user
	m.hashes[user.ID] = passwordHash
	return user, nil
}

func (m *memoryRepo) Update(ctx context.Context, user User, passwordHash string) (User, error) {
	if _, ok := m.users[user.ID]; !ok {
		return User{}, httpx.ErrNotFound
	}
	m.users[user.ID] = user
	if passwordHash != "" {
		m.hashes[user.ID] = passwordHash
	}
	return user, nil
}

type recordingAuditor struct {
	logs []shared.AuditLog
}

func (a *recordingAuditor) Record(ctx context.Context, log shared.AuditLog) error {
	a.logs = append(a.logs, log)
	return nil
}

func newTestService() (*Service, *memoryRepo, *recordingAuditor) {
	repo := newMemoryRepo()
	audit := &recordingAuditor{}
	svc := NewService(repo, audit, nil)
	svc.cost = bcrypt.MinCost
	return svc, repo, audit
}

func ptr[T any](v T) *T { return &v }

func TestCreateHashesPassword(t *testing.T) {
	svc, repo, audit := newTestService()
	user, err := svc.Create(context.Background(), 1, 5, CreateUserRequest{
		Email: "till@cafe.test", Name: " Till ", Password: "long-enough", Role: shared.RoleCashier,
	})
	require.NoError(t, err)
	assert.Equal(t, "Till", user.Name)
	assert.True(t, user.IsActive)
	assert.Equal(t, int64(5), user.CommerceID)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.hashes[user.ID]), []byte("long-enough")))
	require.Len(t, audit.logs, 1)
	assert.Equal(t, "user.create", audit.logs[0].Action)
	assert.NotContains(t, audit.logs[0].Meta, "password")

	_, err = svc.Create(context.Background(), 1, 5, CreateUserRequest{
		Email: "TILL@cafe.test", Name: "Dup", Password: "long-enough", Role: shared.RoleCashier,
	})
	assert.True(t, errors.Is(err, httpx.ErrDuplicate))
}

func TestUpdateGuardsSelf(t *testing.T) {
	svc, _, _ := newTestService()
	admin, err := svc.Create(context.Background(), 0, 5, CreateUserRequest{
		Email: "boss@cafe.test", Name: "Boss", Password: "long-enough", Role: shared.RoleAdmin,
	})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), admin.ID, 5, admin.ID, UpdateUserRequest{IsActive: ptr(false)})
	assert.True(t, errors.Is(err, httpx.ErrConflict))

	_, err = svc.Update(context.Background(), admin.ID, 5, admin.ID, UpdateUserRequest{Role: ptr(shared.RoleCashier)})
	assert.True(t, errors.Is(err, httpx.ErrConflict))

	renamed, err := svc.Update(context.Background(), admin.ID, 5, admin.ID, UpdateUserRequest{Name: ptr("Head Boss")})
	require.NoError(t, err)
	assert.Equal(t, "Head Boss", renamed.Name)
}

func TestUpdateOtherAccount(t *testing.T) {
	svc, repo, audit := newTestService()
	cashier, err := svc.Create(context.Background(), 1, 5, CreateUserRequest{
		Email: "till@cafe.test", Name: "Till", Password: "long-enough", Role: shared.RoleCashier,
	})
	require.NoError(t, err)
	oldHash := repo.hashes[cashier.ID]

	updated, err := svc.Update(context.Background(), 1, 5, cashier.ID, UpdateUserRequest{
		IsActive: ptr(false), Password: ptr("another-secret"),
	})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.NotEqual(t, oldHash, repo.hashes[cashier.ID])
	assert.Equal(t, "reset", audit.logs[len(audit.logs)-1].Meta["password"])

	_, err = svc.Update(context.Background(), 1, 6, cashier.ID, UpdateUserRequest{Name: ptr("x")})
	assert.True(t, errors.Is(err, httpx.ErrNotFound), "other tenant")
}

func newTestRouter(t *testing.T, role string) http.Handler {
	t.Helper()
	svc, _, _ := newTestService()
	h := NewHandler(nil, svc, rbac.Middleware{Service: rbac.NewService()})
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := shared.ContextWithPrincipal(req.Context(), shared.Principal{UserID: 99, Role: role, CommerceID: 5})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Route("/users", h.MountRoutes)
	return r
}

func TestHandlerCreateAndList(t *testing.T) {
	router := newTestRouter(t, shared.RoleAdmin)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/users",
		strings.NewReader(`{"email":"till@cafe.test","name":"Till","password":"long-enough","role":"cashier"}`)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "password")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []User
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "till@cafe.test", listed[0].Email)
}

func TestHandlerRejectsSuperadminRole(t *testing.T) {
	router := newTestRouter(t, shared.RoleAdmin)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/users",
		strings.NewReader(`{"email":"x@cafe.test","name":"X","password":"long-enough","role":"superadmin"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCashierCannotManageUsers(t *testing.T) {
	router := newTestRouter(t, shared.RoleCashier)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
