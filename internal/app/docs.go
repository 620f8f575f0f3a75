package app

import (
	"net/http"
	"strings"

	"github.com/templatecore/core/internal/platform/httpx"
	"github.com/templatecore/core/internal/rbac"
)

// DocsBasePath is replaced by the configured docs path when mounting.
const DocsBasePath = rbac.DocsPlaceholderPrefix + "}"

// SwaggerUIPath is the browser entry point for the docs listing.
const SwaggerUIPath = "/swagger-ui.html"

// DocsEntry is one mounted endpoint in the listing.
type DocsEntry struct {
	Method string `json:"method"`
	Path   string `json:"path"`
}

// DocsHandler lists the endpoints of the declared route tables.
type DocsHandler struct {
	apiPath   string
	declarers []httpx.RouteDeclarer
}

// NewDocsHandler lists declarers under apiPath.
func NewDocsHandler(apiPath string, declarers ...httpx.RouteDeclarer) *DocsHandler {
	return &DocsHandler{apiPath: apiPath, declarers: declarers}
}

// Routes declares the docs listing under DocsBasePath; the placeholder is
// rewritten to the configured path by ResolveBasePath.
func (h *DocsHandler) Routes() httpx.RouteTable {
	return httpx.RouteTable{
		BasePaths: []string{DocsBasePath},
		Operations: []httpx.RouteOperation{
			{Method: http.MethodGet, Handler: h.list},
		},
	}
}

// ResolveBasePath substitutes the docs placeholder.
func (h *DocsHandler) ResolveBasePath(base string) string {
	if base == DocsBasePath {
		return h.apiPath
	}
	return base
}

// Entries returns every mounted endpoint with its method.
func (h *DocsHandler) Entries() []DocsEntry {
	tables := make([]httpx.RouteTable, 0, len(h.declarers)+1)
	tables = append(tables, h.Routes())
	for _, d := range h.declarers {
		tables = append(tables, d.Routes())
	}
	var entries []DocsEntry
	for _, table := range tables {
		for _, base := range nonEmpty(table.BasePaths) {
			base = h.ResolveBasePath(base)
			for _, op := range table.Operations {
				for _, sub := range nonEmpty(op.Paths) {
					entries = append(entries, DocsEntry{Method: op.Method, Path: base + sub})
				}
			}
		}
	}
	return entries
}

func (h *DocsHandler) list(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{"endpoints": h.Entries()})
}

// SwaggerUIHandler redirects the conventional UI path to the listing.
type SwaggerUIHandler struct {
	apiPath string
}

// NewSwaggerUIHandler points the UI path at apiPath.
func NewSwaggerUIHandler(apiPath string) *SwaggerUIHandler {
	return &SwaggerUIHandler{apiPath: apiPath}
}

// Routes declares the UI redirect at SwaggerUIPath.
func (h *SwaggerUIHandler) Routes() httpx.RouteTable {
	return httpx.RouteTable{
		BasePaths: []string{SwaggerUIPath},
		Operations: []httpx.RouteOperation{
			{Method: http.MethodGet, Handler: h.redirect},
		},
	}
}

func (h *SwaggerUIHandler) redirect(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, strings.TrimSuffix(h.apiPath, "/"), http.StatusFound)
}

func nonEmpty(paths []string) []string {
	if len(paths) == 0 {
		return []string{""}
	}
	return paths
}
