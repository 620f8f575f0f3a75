package authorities

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templatecore/core/internal/platform/httpx"
	"github.com/templatecore/core/internal/shared"
)

type mockRepository struct {
	items  map[int64]Authority
	nextID int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{items: make(map[int64]Authority)}
}

func (m *mockRepository) List(ctx context.Context, page shared.PageRequest) ([]Authority, int64, error) {
	var out []Authority
	for _, a := range m.items {
		out = append(out, a)
	}
	return out, int64(len(out)), nil
}

func (m *mockRepository) Get(ctx context.Context, id int64) (Authority, error) {
	a, ok := m.items[id]
	if !ok {
		return Authority{}, ErrNotFound
	}
	return a, nil
}

func (m *mockRepository) Count(ctx context.Context) (int64, error) {
	return int64(len(m.items)), nil
}

func (m *mockRepository) hasName(name string, except int64) bool {
	for id, a := range m.items {
		if id != except && a.Name == name {
			return true
		}
	}
	return false
}

func (m *mockRepository) Create(ctx context.Context, authority Authority) (Authority, error) {
	if m.hasName(authority.Name, 0) {
		return Authority{}, ErrDuplicate
	}
	m.nextID++
	authority.ID = m.nextID
	m.items[authority.ID] = authority
	return authority, nil
}

func (m *mockRepository) Update(ctx context.Context, authority Authority) error {
	if _, ok := m.items[authority.ID]; !ok {
		return ErrNotFound
	}
	if m.hasName(authority.Name, authority.ID) {
		return ErrDuplicate
	}
	m.items[authority.ID] = authority
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func TestCreateAuthority(t *testing.T) {
	svc := NewService(newMockRepository(), nil)
	ctx := context.Background()

	a, err := svc.Create(ctx, Authority{Name: " authority teste "})
	require.NoError(t, err)
	assert.Equal(t, "AUTHORITY TESTE", a.Name)

	_, err = svc.Create(ctx, Authority{Name: "Authority Teste"})
	assert.ErrorIs(t, err, httpx.ErrDuplicate)

	_, err = svc.Create(ctx, a)
	assert.ErrorIs(t, err, httpx.ErrHasID)

	_, err = svc.Create(ctx, Authority{Name: "  "})
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestUpdateAndDeleteAuthority(t *testing.T) {
	svc := NewService(newMockRepository(), nil)
	ctx := context.Background()
	a, err := svc.Create(ctx, Authority{Name: "auditor"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, Authority{Name: "gestor"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, Authority{ID: a.ID, Name: "auditoria"})
	require.NoError(t, err)
	assert.Equal(t, "AUDITORIA", updated.Name)

	_, err = svc.Update(ctx, Authority{ID: a.ID, Name: "gestor"})
	assert.ErrorIs(t, err, httpx.ErrDuplicate)

	_, err = svc.Update(ctx, Authority{ID: 99, Name: "ghost"})
	assert.ErrorIs(t, err, httpx.ErrNotFound)

	require.NoError(t, svc.Delete(ctx, a.ID))
	_, err = svc.Get(ctx, a.ID)
	assert.ErrorIs(t, err, httpx.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, a.ID), httpx.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, 0), httpx.ErrValidation)
}

func TestEnsureAdminAuthoritySeedsOnce(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)
	ctx := context.Background()

	created, err := svc.EnsureAdminAuthority(ctx)
	require.NoError(t, err)
	assert.True(t, created)
	require.Len(t, repo.items, 1)
	assert.Equal(t, AdminAuthority, repo.items[1].Name)

	created, err = svc.EnsureAdminAuthority(ctx)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Len(t, repo.items, 1)
}

func TestHandlerRoutes(t *testing.T) {
	h := NewHandler(nil, NewService(newMockRepository(), nil))
	assert.Equal(t, []string{
		"/api/authority/{id}",
		"/api/authority/find",
		"/api/authority/save",
		"/api/authority/update",
		"/api/authority/delete/{id}",
	}, h.Routes().Endpoints())

	r := chi.NewRouter()
	httpx.Mount(r, h.Routes(), nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/authority/save", strings.NewReader(`{"name":"admin"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"ADMIN"`)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/authority/1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/authority/delete/1", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/authority/1", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
