package rbac

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/templatecore/core/internal/platform/httpx"
	"github.com/templatecore/core/internal/shared"
)

// Repository is the persistence port of Service.
type Repository interface {
	PermissionStore
	GetPermission(ctx context.Context, id int64) (Permission, error)
	FindPermissions(ctx context.Context, page shared.PageRequest) ([]Permission, int64, error)
	PermissionsByEndpoints(ctx context.Context, endpoints []string) ([]Permission, error)
	UpdatePermission(ctx context.Context, p Permission) error
	SetPermissionInactive(ctx context.Context, id int64) error

	GetRoute(ctx context.Context, id int64) (Route, error)
	FindRouteByURL(ctx context.Context, url string) (Route, error)
	FindRoutes(ctx context.Context, page shared.PageRequest) ([]Route, int64, error)
	CreateRoute(ctx context.Context, r Route) (Route, error)
	UpdateRoute(ctx context.Context, r Route) error
	SetRouteInactive(ctx context.Context, id int64) error

	EffectiveEndpoints(ctx context.Context, userID int64) ([]string, error)
}

// Service orchestrates permission and route operations.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// PermissionInput is accepted by permission save and update.
type PermissionInput struct {
	ID       int64  `json:"id"`
	Endpoint string `json:"endpoint" validate:"required,startswith=/"`
	IsActive *bool  `json:"isActive"`
}

// RouteInput is accepted by route save and update.
type RouteInput struct {
	ID            int64   `json:"id"`
	Description   string  `json:"description" validate:"required,max=255"`
	URL           string  `json:"url" validate:"required,startswith=/"`
	PermissionIDs []int64 `json:"permissionIds"`
	IsActive      *bool   `json:"isActive"`
}

// GetPermission returns one permission.
func (s *Service) GetPermission(ctx context.Context, id int64) (Permission, error) {
	return s.repo.GetPermission(ctx, id)
}

// FindPermissions returns a page of permissions.
func (s *Service) FindPermissions(ctx context.Context, req shared.PageRequest) (shared.Page[Permission], error) {
	req = req.Normalize()
	items, total, err := s.repo.FindPermissions(ctx, req)
	if err != nil {
		return shared.Page[Permission]{}, err
	}
	return shared.NewPage(items, req, total), nil
}

// PermissionsByEndpoints returns the stored permissions among endpoints.
func (s *Service) PermissionsByEndpoints(ctx context.Context, endpoints []string) ([]Permission, error) {
	return s.repo.PermissionsByEndpoints(ctx, endpoints)
}

// SavePermission stores a new permission. The endpoint is kept verbatim.
func (s *Service) SavePermission(ctx context.Context, in PermissionInput) (Permission, error) {
	if in.ID != 0 {
		return Permission{}, httpx.ErrHasID
	}
	if err := shared.Validate(in); err != nil {
		return Permission{}, err
	}
	return s.repo.InsertPermission(ctx, in.Endpoint, boolOr(in.IsActive, true))
}

// UpdatePermission overwrites an existing permission.
func (s *Service) UpdatePermission(ctx context.Context, in PermissionInput) (Permission, error) {
	if in.ID <= 0 {
		return Permission{}, fmt.Errorf("%w: id is required", httpx.ErrValidation)
	}
	if err := shared.Validate(in); err != nil {
		return Permission{}, err
	}
	current, err := s.repo.GetPermission(ctx, in.ID)
	if err != nil {
		return Permission{}, err
	}
	current.Endpoint = in.Endpoint
	current.IsActive = boolOr(in.IsActive, current.IsActive)
	if err := s.repo.UpdatePermission(ctx, current); err != nil {
		return Permission{}, err
	}
	return current, nil
}

// DeletePermission deactivates a permission.
func (s *Service) DeletePermission(ctx context.Context, id int64) error {
	return s.repo.SetPermissionInactive(ctx, id)
}

// GetRoute returns one route.
func (s *Service) GetRoute(ctx context.Context, id int64) (Route, error) {
	return s.repo.GetRoute(ctx, id)
}

// FindRouteByURL returns the route registered under url.
func (s *Service) FindRouteByURL(ctx context.Context, url string) (Route, error) {
	return s.repo.FindRouteByURL(ctx, url)
}

// FindRoutes returns a page of routes.
func (s *Service) FindRoutes(ctx context.Context, req shared.PageRequest) (shared.Page[Route], error) {
	req = req.Normalize()
	items, total, err := s.repo.FindRoutes(ctx, req)
	if err != nil {
		return shared.Page[Route]{}, err
	}
	return shared.NewPage(items, req, total), nil
}

// SaveRoute stores a new route.
func (s *Service) SaveRoute(ctx context.Context, in RouteInput) (Route, error) {
	if in.ID != 0 {
		return Route{}, httpx.ErrHasID
	}
	route, err := s.routeFromInput(ctx, in)
	if err != nil {
		return Route{}, err
	}
	route.IsActive = boolOr(in.IsActive, true)
	return s.repo.CreateRoute(ctx, route)
}

// UpdateRoute overwrites an existing route.
func (s *Service) UpdateRoute(ctx context.Context, in RouteInput) (Route, error) {
	if in.ID <= 0 {
		return Route{}, fmt.Errorf("%w: id is required", httpx.ErrValidation)
	}
	current, err := s.repo.GetRoute(ctx, in.ID)
	if err != nil {
		return Route{}, err
	}
	route, err := s.routeFromInput(ctx, in)
	if err != nil {
		return Route{}, err
	}
	route.ID = current.ID
	route.IsActive = boolOr(in.IsActive, current.IsActive)
	if err := s.repo.UpdateRoute(ctx, route); err != nil {
		return Route{}, err
	}
	return route, nil
}

// DeleteRoute deactivates a route.
func (s *Service) DeleteRoute(ctx context.Context, id int64) error {
	return s.repo.SetRouteInactive(ctx, id)
}

// EffectiveEndpoints returns the permission endpoints a user reaches
// through its roles. Requests are not gated on this set.
func (s *Service) EffectiveEndpoints(ctx context.Context, userID int64) ([]string, error) {
	endpoints, err := s.repo.EffectiveEndpoints(ctx, userID)
	if err != nil {
		return nil, err
	}
	if endpoints == nil {
		endpoints = []string{}
	}
	return endpoints, nil
}

func (s *Service) routeFromInput(ctx context.Context, in RouteInput) (Route, error) {
	in.Description = strings.TrimSpace(in.Description)
	in.URL = strings.TrimSpace(in.URL)
	if err := shared.Validate(in); err != nil {
		return Route{}, err
	}
	route := Route{Description: in.Description, URL: in.URL}
	seen := make(map[int64]struct{}, len(in.PermissionIDs))
	for _, id := range in.PermissionIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		p, err := s.repo.GetPermission(ctx, id)
		if errors.Is(err, ErrNotFound) {
			return Route{}, fmt.Errorf("%w: permission %d does not exist", httpx.ErrValidation, id)
		}
		if err != nil {
			return Route{}, err
		}
		route.Permissions = append(route.Permissions, p)
	}
	return route, nil
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}
