package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/templatecore/core/internal/platform/httpx"
	"github.com/templatecore/core/internal/users"
)

const bearerPrefix = "Bearer "

// State is the outcome of authenticating one request.
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateAuthenticated   State = "authenticated"
)

// OutcomeRecorder counts authentication outcomes.
type OutcomeRecorder interface {
	ObserveAuthOutcome(state string)
}

// IdentityResolver resolves a subject ID to an identity.
type IdentityResolver interface {
	Resolve(ctx context.Context, id int64) (*users.User, error)
}

// Authenticator attaches the caller's principal to requests that carry a
// valid bearer token. Requests without one pass through unauthenticated.
type Authenticator struct {
	verifier *TokenVerifier
	resolver IdentityResolver
	logger   *slog.Logger
	metrics  OutcomeRecorder
}

// NewAuthenticator builds an Authenticator.
func NewAuthenticator(verifier *TokenVerifier, resolver IdentityResolver, logger *slog.Logger) *Authenticator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Authenticator{verifier: verifier, resolver: resolver, logger: logger}
}

// WithMetrics sets the outcome recorder and returns a.
func (a *Authenticator) WithMetrics(m OutcomeRecorder) *Authenticator {
	a.metrics = m
	return a
}

// Authenticate evaluates the Authorization header value.
func (a *Authenticator) Authenticate(ctx context.Context, header string) (Principal, State) {
	token, ok := strings.CutPrefix(header, bearerPrefix)
	if !ok {
		return Principal{}, StateUnauthenticated
	}
	subject, ok := a.verifier.Verify(token)
	if !ok {
		return Principal{}, StateUnauthenticated
	}
	user, err := a.resolver.Resolve(ctx, subject)
	if err != nil {
		switch {
		case errors.Is(err, ErrIdentityNotFound):
			a.logger.Debug("token subject has no identity", slog.Int64("user_id", subject))
		case errors.Is(err, context.Canceled):
		default:
			a.logger.Warn("identity lookup failed", slog.Int64("user_id", subject), slog.Any("error", err))
		}
		return Principal{}, StateUnauthenticated
	}
	if !user.IsActive {
		return Principal{}, StateUnauthenticated
	}
	return Principal{User: *user, Authorities: user.Authorities()}, StateAuthenticated
}

// Middleware runs Authenticate once per request.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if _, ok := PrincipalFromContext(ctx); ok {
			next.ServeHTTP(w, r)
			return
		}
		principal, state := a.Authenticate(ctx, r.Header.Get("Authorization"))
		if ctx.Err() != nil {
			return
		}
		if a.metrics != nil {
			a.metrics.ObserveAuthOutcome(string(state))
		}
		if state == StateAuthenticated {
			r = r.WithContext(WithPrincipal(ctx, principal))
		}
		next.ServeHTTP(w, r)
	})
}

// RequirePrincipal rejects requests that reached it unauthenticated.
func RequirePrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := PrincipalFromContext(r.Context()); !ok {
			httpx.Reject(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}
