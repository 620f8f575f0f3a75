package access

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var serviceKey = base64.StdEncoding.EncodeToString([]byte("service-key-abc"))

type verdicts map[string]int

func (v verdicts) ObserveAccessDecision(decision string) { v[decision]++ }

func newPoint(t *testing.T) *DecisionPoint {
	t.Helper()
	dp, err := NewDecisionPoint(serviceKey, DefaultPublicPaths)
	require.NoError(t, err)
	return dp
}

func TestNewDecisionPointRejectsBadKey(t *testing.T) {
	_, err := NewDecisionPoint("***", nil)
	assert.ErrorIs(t, err, ErrInvalidKey)
	_, err = NewDecisionPoint("", nil)
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestDecide(t *testing.T) {
	dp := newPoint(t)

	tests := []struct {
		name string
		path string
		key  string
		want Decision
	}{
		{name: "matching key", path: "/api/user/find", key: serviceKey, want: Allow},
		{name: "missing key", path: "/api/user/find", key: "", want: Deny},
		{name: "wrong key", path: "/api/user/find", key: base64.StdEncoding.EncodeToString([]byte("nope")), want: Deny},
		{name: "not base64", path: "/api/user/find", key: "%%%not-base64", want: Deny},
		{name: "raw key instead of encoded", path: "/api/user/find", key: "service-key-abc", want: Deny},
		{name: "docs root", path: "/v3/api-docs", want: Allow},
		{name: "docs subtree", path: "/v3/api-docs/swagger-config", want: Allow},
		{name: "swagger ui", path: "/swagger-ui/index.html", want: Allow},
		{name: "swagger html", path: "/swagger-ui.html", want: Allow},
		{name: "public prefix lookalike", path: "/v3/api-docsextra", want: Deny},
		{name: "public path ignores bad key", path: "/swagger-ui/index.html", key: "%%%", want: Allow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dp.Decide(tt.path, tt.key))
		})
	}
}

func TestExactPublicPattern(t *testing.T) {
	dp, err := NewDecisionPoint(serviceKey, []string{"/status", " "})
	require.NoError(t, err)
	assert.Equal(t, Allow, dp.Decide("/status", ""))
	assert.Equal(t, Deny, dp.Decide("/status/deep", ""))
}

func TestMiddleware(t *testing.T) {
	rec := verdicts{}
	dp := newPoint(t).WithMetrics(rec)
	reached := false
	handler := dp.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	}))

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/api/user/find", nil))
	assert.Equal(t, http.StatusForbidden, res.Code)
	assert.JSONEq(t, `{"title":"Forbidden","status":403}`, res.Body.String())
	assert.False(t, reached)

	req := httptest.NewRequest(http.MethodGet, "/api/user/find", nil)
	req.Header.Set(HeaderName, serviceKey)
	res = httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	assert.Equal(t, http.StatusOK, res.Code)
	assert.True(t, reached)

	assert.Equal(t, verdicts{"deny": 1, "allow": 1}, rec)
}
