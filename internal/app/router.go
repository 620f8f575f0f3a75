package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/templatecore/core/internal/access"
	"github.com/templatecore/core/internal/auth"
	"github.com/templatecore/core/internal/observability"
	"github.com/templatecore/core/internal/platform/httpx"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger        *slog.Logger
	Config        *Config
	Metrics       *observability.Metrics
	Gate          *access.DecisionPoint
	Authenticator *auth.Authenticator
	Docs          *DocsHandler
	SwaggerUI     *SwaggerUIHandler
	// Protected handlers additionally require an authenticated principal.
	Protected []httpx.RouteDeclarer
}

// Public returns the declarers mounted without RequirePrincipal.
func (p RouterParams) Public() []httpx.RouteDeclarer {
	var out []httpx.RouteDeclarer
	if p.Docs != nil {
		out = append(out, p.Docs)
	}
	if p.SwaggerUI != nil {
		out = append(out, p.SwaggerUI)
	}
	return out
}

// Declarers returns every declarer the router mounts behind the gates.
func (p RouterParams) Declarers() []httpx.RouteDeclarer {
	return append(p.Public(), p.Protected...)
}

// NewRouter constructs the chi.Router with the service defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	var resolve func(string) string
	if params.Docs != nil {
		resolve = params.Docs.ResolveBasePath
	}

	r.Group(func(r chi.Router) {
		r.Use(params.Gate.Middleware)
		r.Use(params.Authenticator.Middleware)
		for _, d := range params.Public() {
			httpx.Mount(r, d.Routes(), resolve)
		}
		r.Group(func(r chi.Router) {
			r.Use(auth.RequirePrincipal)
			for _, d := range params.Protected {
				httpx.Mount(r, d.Routes(), resolve)
			}
		})
	})

	r.NotFound(params.Gate.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpx.RespondError(w, httpx.ErrNotFound)
	})).ServeHTTP)
	r.MethodNotAllowed(params.Gate.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpx.Problem(w, http.StatusMethodNotAllowed, "Method Not Allowed", "")
	})).ServeHTTP)

	return r
}
