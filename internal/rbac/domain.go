package rbac

import (
	"fmt"
	"strings"
	"time"

	"github.com/templatecore/core/internal/platform/httpx"
)

var (
	// ErrNotFound indicates that the requested record does not exist.
	ErrNotFound = fmt.Errorf("rbac: %w", httpx.ErrNotFound)
	// ErrPermissionConflict is raised when a permission endpoint is already stored.
	ErrPermissionConflict = fmt.Errorf("rbac: permission endpoint %w", httpx.ErrDuplicate)
	// ErrRouteConflict is raised when a route URL is already stored.
	ErrRouteConflict = fmt.Errorf("rbac: route url %w", httpx.ErrDuplicate)
)

// AccessKind is one of the operations an access group grants on its route.
type AccessKind string

const (
	AccessRead   AccessKind = "READ"
	AccessWrite  AccessKind = "WRITE"
	AccessUpdate AccessKind = "UPDATE"
	AccessDelete AccessKind = "DELETE"
)

// AllAccessKinds lists every access kind in canonical order.
var AllAccessKinds = []AccessKind{AccessRead, AccessWrite, AccessUpdate, AccessDelete}

// ParseAccessKind accepts any casing of a known kind.
func ParseAccessKind(raw string) (AccessKind, error) {
	kind := AccessKind(strings.ToUpper(strings.TrimSpace(raw)))
	for _, k := range AllAccessKinds {
		if k == kind {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: unknown access kind %q", httpx.ErrValidation, raw)
}

// Permission is one cataloged endpoint string, matched exactly.
type Permission struct {
	ID        int64     `json:"id"`
	Endpoint  string    `json:"endpoint"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// Route is a named UI route bundling the permissions it needs.
type Route struct {
	ID          int64        `json:"id"`
	Description string       `json:"description"`
	URL         string       `json:"url"`
	Permissions []Permission `json:"permissions"`
	IsActive    bool         `json:"isActive"`
}

// PermissionIDs returns the IDs of the route's permissions.
func (r Route) PermissionIDs() []int64 {
	ids := make([]int64, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		ids = append(ids, p.ID)
	}
	return ids
}

// AccessGroup grants a set of access kinds on exactly one route.
type AccessGroup struct {
	ID       int64        `json:"id"`
	Route    Route        `json:"route"`
	Kinds    []AccessKind `json:"accessKinds"`
	IsActive bool         `json:"isActive"`
}

// Role is a named set of access groups.
type Role struct {
	ID           int64         `json:"id"`
	Name         string        `json:"name"`
	AccessGroups []AccessGroup `json:"accessGroups"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}
