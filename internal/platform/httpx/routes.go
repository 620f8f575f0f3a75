package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RouteOperation is a single handler and the sub-paths it answers on.
type RouteOperation struct {
	Method  string
	Paths   []string
	Handler http.HandlerFunc
}

// RouteTable is the static set of endpoints exposed by one handler.
// Every operation is reachable under every base path.
type RouteTable struct {
	BasePaths  []string
	Operations []RouteOperation
}

// RouteDeclarer is implemented by handlers that expose HTTP endpoints.
type RouteDeclarer interface {
	Routes() RouteTable
}

// Endpoints returns the concatenation of every base path with every
// operation sub-path, in declaration order. A table without base paths
// behaves as if it declared "", likewise for an operation without paths.
func (t RouteTable) Endpoints() []string {
	bases := orEmpty(t.BasePaths)
	var endpoints []string
	for _, base := range bases {
		for _, op := range t.Operations {
			for _, sub := range orEmpty(op.Paths) {
				endpoints = append(endpoints, base+sub)
			}
		}
	}
	return endpoints
}

// Mount registers every operation of table on r. resolve rewrites declared
// base paths before mounting; nil mounts them verbatim.
func Mount(r chi.Router, table RouteTable, resolve func(string) string) {
	for _, base := range orEmpty(table.BasePaths) {
		if resolve != nil {
			base = resolve(base)
		}
		for _, op := range table.Operations {
			for _, sub := range orEmpty(op.Paths) {
				pattern := base + sub
				if pattern == "" {
					pattern = "/"
				}
				r.Method(op.Method, pattern, op.Handler)
			}
		}
	}
}

func orEmpty(paths []string) []string {
	if len(paths) == 0 {
		return []string{""}
	}
	return paths
}
