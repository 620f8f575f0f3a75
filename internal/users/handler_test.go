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

	"github.com/templatecore/core/internal/platform/httpx"
)

func newTestRouter(t *testing.T) (http.Handler, *Service) {
	t.Helper()
	svc := NewService(newMemoryRepo(), nil, nil)
	r := chi.NewRouter()
	httpx.Mount(r, NewHandler(nil, svc).Routes(), nil)
	return r, svc
}

func TestRoutesDeclareCrudEndpoints(t *testing.T) {
	h := NewHandler(nil, nil)
	assert.Equal(t, []string{
		"/api/user/get/{id}",
		"/api/user/find",
		"/api/user/save",
		"/api/user/update",
		"/api/user/delete/{id}",
	}, h.Routes().Endpoints())
}

func TestHandlerSaveAndGet(t *testing.T) {
	router, _ := newTestRouter(t)

	body := `{"username":"lucas","email":"lucas@test.local","password":"secret"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/user/save", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")

	var created User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/user/get/1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"lucas"`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/user/get/99", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerSaveWithIDConflicts(t *testing.T) {
	router, _ := newTestRouter(t)
	body := `{"id":4,"username":"lucas","email":"lucas@test.local","password":"secret"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/user/save", strings.NewReader(body)))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandlerDelete(t *testing.T) {
	router, svc := newTestRouter(t)
	created, err := svc.Save(context.Background(), SaveInput{Username: "bia", Email: "bia@test.local", Password: "secret"})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/user/delete/1", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	stored, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/user/delete/abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerFind(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/user/find", strings.NewReader(`{"page":0,"size":5}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"content":[]`)
}

func TestHandlerDeleteReportsCacheFailure(t *testing.T) {
	svc := NewService(newMemoryRepo(), &recordingInvalidator{err: errors.New("cache unreachable")}, nil)
	r := chi.NewRouter()
	httpx.Mount(r, NewHandler(nil, svc).Routes(), nil)
	_, err := svc.Save(context.Background(), SaveInput{Username: "davi", Email: "davi@test.local", Password: "secret"})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/user/delete/1", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
