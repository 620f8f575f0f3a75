// Package access implements the service-key gate evaluated ahead of
// token authentication.
package access

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/templatecore/core/internal/platform/httpx"
)

// HeaderName carries the base64 encoded service key.
const HeaderName = "X-Service-Token"

// ErrInvalidKey is returned when the configured service key cannot be decoded.
var ErrInvalidKey = errors.New("access: service key must be non-empty base64")

// DefaultPublicPaths are reachable without a service key.
var DefaultPublicPaths = []string{"/swagger-ui.html/**", "/v3/api-docs/**", "/swagger-ui/**"}

// Decision is the verdict for one request.
type Decision int

const (
	// Deny rejects the request with the generic 403.
	Deny Decision = iota
	// Allow passes the request on to authentication.
	Allow
)

func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "deny"
}

// DecisionRecorder counts gate verdicts.
type DecisionRecorder interface {
	ObserveAccessDecision(decision string)
}

// DecisionPoint compares the presented service key with the configured one.
type DecisionPoint struct {
	expected []byte
	public   []pattern
	logger   *slog.Logger
	metrics  DecisionRecorder
}

// NewDecisionPoint decodes the expected key once. public lists the path
// patterns that bypass the key check.
func NewDecisionPoint(expectedKeyB64 string, public []string) (*DecisionPoint, error) {
	key, err := base64.StdEncoding.DecodeString(expectedKeyB64)
	if err != nil || len(key) == 0 {
		return nil, ErrInvalidKey
	}
	patterns := make([]pattern, 0, len(public))
	for _, p := range public {
		if p = strings.TrimSpace(p); p != "" {
			patterns = append(patterns, compile(p))
		}
	}
	return &DecisionPoint{expected: key, public: patterns, logger: slog.Default()}, nil
}

// WithLogger sets the logger and returns d.
func (d *DecisionPoint) WithLogger(logger *slog.Logger) *DecisionPoint {
	if logger != nil {
		d.logger = logger
	}
	return d
}

// WithMetrics sets the verdict recorder and returns d.
func (d *DecisionPoint) WithMetrics(m DecisionRecorder) *DecisionPoint {
	d.metrics = m
	return d
}

// IsPublic reports whether path matches a public pattern.
func (d *DecisionPoint) IsPublic(path string) bool {
	for _, p := range d.public {
		if p.match(path) {
			return true
		}
	}
	return false
}

// Decide returns Allow for public paths or a matching key.
func (d *DecisionPoint) Decide(path, presentedKey string) Decision {
	if d.IsPublic(path) {
		return Allow
	}
	if presentedKey == "" {
		return Deny
	}
	presented, err := base64.StdEncoding.DecodeString(presentedKey)
	if err != nil {
		return Deny
	}
	if subtle.ConstantTimeCompare(presented, d.expected) != 1 {
		return Deny
	}
	return Allow
}

// Middleware ends denied requests with the generic rejection.
func (d *DecisionPoint) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decision := d.Decide(r.URL.Path, r.Header.Get(HeaderName))
		if d.metrics != nil {
			d.metrics.ObserveAccessDecision(decision.String())
		}
		if decision == Deny {
			d.logger.Debug("service key rejected", slog.String("path", r.URL.Path))
			httpx.Reject(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}
