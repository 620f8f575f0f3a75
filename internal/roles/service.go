package roles

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/templatecore/core/internal/platform/httpx"
	"github.com/templatecore/core/internal/rbac"
	"github.com/templatecore/core/internal/shared"
	"github.com/templatecore/core/internal/users"
)

// Bootstrap role and the route it manages.
const (
	AdminRoleName  = "ADMIN"
	AdminRouteURL  = "/usuarios"
	AdminRouteDesc = "Manage users"
)

var (
	// ErrNotFound is returned when no role matches the lookup.
	ErrNotFound = fmt.Errorf("roles: %w", httpx.ErrNotFound)
	// ErrDuplicate is returned when the role name is taken.
	ErrDuplicate = fmt.Errorf("roles: name %w", httpx.ErrDuplicate)
)

// RepositoryPort defines data access methods for roles.
type RepositoryPort interface {
	Get(ctx context.Context, id int64) (rbac.Role, error)
	FindByName(ctx context.Context, name string) (rbac.Role, error)
	Find(ctx context.Context, page shared.PageRequest) ([]rbac.Role, int64, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, role rbac.Role) (rbac.Role, error)
	Update(ctx context.Context, role rbac.Role) error
	Delete(ctx context.Context, id int64) error
}

// RouteCatalog resolves and seeds routes referenced by access groups.
type RouteCatalog interface {
	GetRoute(ctx context.Context, id int64) (rbac.Route, error)
	FindRouteByURL(ctx context.Context, url string) (rbac.Route, error)
	SaveRoute(ctx context.Context, in rbac.RouteInput) (rbac.Route, error)
	PermissionsByEndpoints(ctx context.Context, endpoints []string) ([]rbac.Permission, error)
}

// Invalidator drops every cached identity after a role change.
type Invalidator interface {
	InvalidateAll(ctx context.Context) error
}

// AccessGroupInput describes one access group of a role.
type AccessGroupInput struct {
	RouteID  int64    `json:"routeId" validate:"required,gt=0"`
	Kinds    []string `json:"accessKinds" validate:"required,min=1,dive,required"`
	IsActive *bool    `json:"isActive"`
}

// RoleInput is accepted by role save and update.
type RoleInput struct {
	ID           int64              `json:"id"`
	Name         string             `json:"name" validate:"required,max=64"`
	AccessGroups []AccessGroupInput `json:"accessGroups" validate:"dive"`
}

// Service handles role business logic.
type Service struct {
	repo        RepositoryPort
	routes      RouteCatalog
	invalidator Invalidator
	logger      *slog.Logger
}

// NewService builds Service instance. invalidator may be nil.
func NewService(repo RepositoryPort, routes RouteCatalog, invalidator Invalidator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:        repo,
		routes:      routes,
		invalidator: invalidator,
		logger:      logger,
	}
}

// Get returns one role.
func (s *Service) Get(ctx context.Context, id int64) (rbac.Role, error) {
	return s.repo.Get(ctx, id)
}

// Find returns a page of roles.
func (s *Service) Find(ctx context.Context, req shared.PageRequest) (shared.Page[rbac.Role], error) {
	req = req.Normalize()
	items, total, err := s.repo.Find(ctx, req)
	if err != nil {
		return shared.Page[rbac.Role]{}, err
	}
	return shared.NewPage(items, req, total), nil
}

// Save creates a role. The name is stored upper-case.
func (s *Service) Save(ctx context.Context, in RoleInput) (rbac.Role, error) {
	if in.ID != 0 {
		return rbac.Role{}, httpx.ErrHasID
	}
	role, err := s.roleFromInput(ctx, in)
	if err != nil {
		return rbac.Role{}, err
	}
	return s.repo.Create(ctx, role)
}

// Update renames a role and replaces its access groups.
func (s *Service) Update(ctx context.Context, in RoleInput) (rbac.Role, error) {
	if in.ID <= 0 {
		return rbac.Role{}, fmt.Errorf("%w: id is required", httpx.ErrValidation)
	}
	current, err := s.repo.Get(ctx, in.ID)
	if err != nil {
		return rbac.Role{}, err
	}
	role, err := s.roleFromInput(ctx, in)
	if err != nil {
		return rbac.Role{}, err
	}
	role.ID = current.ID
	role.CreatedAt = current.CreatedAt
	if err := s.repo.Update(ctx, role); err != nil {
		return rbac.Role{}, err
	}
	if err := s.invalidate(ctx); err != nil {
		return rbac.Role{}, err
	}
	return role, nil
}

// Delete removes a role.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	return s.invalidate(ctx)
}

// EnsureAdminRole seeds the ADMIN role on an empty store and returns the
// ADMIN role if one exists afterwards. found is false when roles exist but
// none is named ADMIN.
func (s *Service) EnsureAdminRole(ctx context.Context) (role rbac.Role, found bool, err error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return rbac.Role{}, false, fmt.Errorf("roles: count: %w", err)
	}
	if count == 0 {
		route, err := s.ensureAdminRoute(ctx)
		if err != nil {
			return rbac.Role{}, false, err
		}
		kinds := make([]rbac.AccessKind, len(rbac.AllAccessKinds))
		copy(kinds, rbac.AllAccessKinds)
		created, err := s.repo.Create(ctx, rbac.Role{
			Name:         AdminRoleName,
			AccessGroups: []rbac.AccessGroup{{Route: route, Kinds: kinds, IsActive: true}},
		})
		if err != nil {
			return rbac.Role{}, false, err
		}
		s.logger.Info("bootstrap role created", slog.String("role", created.Name), slog.Int64("role_id", created.ID))
		return created, true, nil
	}
	role, err = s.repo.FindByName(ctx, AdminRoleName)
	if errors.Is(err, ErrNotFound) {
		return rbac.Role{}, false, nil
	}
	if err != nil {
		return rbac.Role{}, false, err
	}
	return role, true, nil
}

// AdminEndpoints are the user management permissions granted by the
// bootstrap role.
func AdminEndpoints() []string {
	return []string{
		users.BasePath + "/find",
		users.BasePath + "/get/{id}",
		users.BasePath + "/save",
		users.BasePath + "/update",
		users.BasePath + "/delete/{id}",
	}
}

func (s *Service) ensureAdminRoute(ctx context.Context) (rbac.Route, error) {
	route, err := s.routes.FindRouteByURL(ctx, AdminRouteURL)
	if err == nil {
		return route, nil
	}
	if !errors.Is(err, rbac.ErrNotFound) {
		return rbac.Route{}, err
	}
	perms, err := s.routes.PermissionsByEndpoints(ctx, AdminEndpoints())
	if err != nil {
		return rbac.Route{}, err
	}
	ids := make([]int64, 0, len(perms))
	for _, p := range perms {
		ids = append(ids, p.ID)
	}
	return s.routes.SaveRoute(ctx, rbac.RouteInput{
		Description:   AdminRouteDesc,
		URL:           AdminRouteURL,
		PermissionIDs: ids,
	})
}

func (s *Service) roleFromInput(ctx context.Context, in RoleInput) (rbac.Role, error) {
	in.Name = shared.UpperName(in.Name)
	if err := shared.Validate(in); err != nil {
		return rbac.Role{}, err
	}
	role := rbac.Role{Name: in.Name}
	for i, g := range in.AccessGroups {
		route, err := s.routes.GetRoute(ctx, g.RouteID)
		if errors.Is(err, rbac.ErrNotFound) {
			return rbac.Role{}, fmt.Errorf("%w: access group %d references unknown route %d", httpx.ErrValidation, i, g.RouteID)
		}
		if err != nil {
			return rbac.Role{}, err
		}
		group := rbac.AccessGroup{Route: route, IsActive: true}
		if g.IsActive != nil {
			group.IsActive = *g.IsActive
		}
		seen := make(map[rbac.AccessKind]struct{}, len(g.Kinds))
		for _, raw := range g.Kinds {
			kind, err := rbac.ParseAccessKind(raw)
			if err != nil {
				return rbac.Role{}, err
			}
			if _, dup := seen[kind]; dup {
				continue
			}
			seen[kind] = struct{}{}
			group.Kinds = append(group.Kinds, kind)
		}
		role.AccessGroups = append(role.AccessGroups, group)
	}
	return role, nil
}

func (s *Service) invalidate(ctx context.Context) error {
	if s.invalidator == nil {
		return nil
	}
	if err := s.invalidator.InvalidateAll(ctx); err != nil {
		s.logger.Error("invalidate identity cache", slog.Any("error", err))
		return fmt.Errorf("roles: invalidate identity cache: %w", err)
	}
	return nil
}
