package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func ok(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }

func TestEndpointsCartesianProduct(t *testing.T) {
	table := RouteTable{
		BasePaths: []string{"/a", "/b"},
		Operations: []RouteOperation{
			{Method: http.MethodGet, Paths: []string{"/x", "/y"}, Handler: ok},
			{Method: http.MethodPost, Handler: ok},
		},
	}
	assert.Equal(t, []string{"/a/x", "/a/y", "/a", "/b/x", "/b/y", "/b"}, table.Endpoints())
}

func TestEndpointsWithoutBase(t *testing.T) {
	table := RouteTable{Operations: []RouteOperation{{Method: http.MethodGet, Paths: []string{"/swagger-ui.html"}, Handler: ok}}}
	assert.Equal(t, []string{"/swagger-ui.html"}, table.Endpoints())
	assert.Empty(t, RouteTable{}.Endpoints())
}

func TestMountResolvesBase(t *testing.T) {
	r := chi.NewRouter()
	table := RouteTable{
		BasePaths:  []string{"${docs.api-path}"},
		Operations: []RouteOperation{{Method: http.MethodGet, Handler: ok}},
	}
	Mount(r, table, func(base string) string {
		if base == "${docs.api-path}" {
			return "/v3/api-docs"
		}
		return base
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v3/api-docs", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v3/api-docs", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRespondErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{err: fmt.Errorf("users: %w", ErrNotFound), status: http.StatusNotFound},
		{err: ErrDuplicate, status: http.StatusConflict},
		{err: ErrHasID, status: http.StatusConflict},
		{err: fmt.Errorf("%w: bad", ErrValidation), status: http.StatusBadRequest},
		{err: ErrUnauthorized, status: http.StatusForbidden},
		{err: ErrForbidden, status: http.StatusForbidden},
		{err: errors.New("boom"), status: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		RespondError(rec, tt.err)
		assert.Equal(t, tt.status, rec.Code, tt.err.Error())
		assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	}
	assert.False(t, IsClientError(errors.New("boom")))
	assert.True(t, IsClientError(ErrHasID))
}

func TestRejectHasNoDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	Reject(rec)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"title":"Forbidden","status":403}`, rec.Body.String())
}
