package rbac

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/templatecore/core/internal/platform/db"
	"github.com/templatecore/core/internal/shared"
)

// Store persists permissions and routes in PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore constructs a Store backed by the provided pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const permissionColumns = `id, endpoint, is_active, created_at`

func scanPermission(row pgx.Row) (Permission, error) {
	var p Permission
	err := row.Scan(&p.ID, &p.Endpoint, &p.IsActive, &p.CreatedAt)
	return p, err
}

// FindPermissionByEndpoint returns the permission stored under endpoint,
// compared byte for byte.
func (s *Store) FindPermissionByEndpoint(ctx context.Context, endpoint string) (*Permission, error) {
	p, err := scanPermission(s.pool.QueryRow(ctx, `SELECT `+permissionColumns+` FROM permissions WHERE endpoint = $1`, endpoint))
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// InsertPermission stores a new permission row.
func (s *Store) InsertPermission(ctx context.Context, endpoint string, active bool) (Permission, error) {
	p, err := scanPermission(s.pool.QueryRow(ctx,
		`INSERT INTO permissions (endpoint, is_active) VALUES ($1, $2) RETURNING `+permissionColumns,
		endpoint, active,
	))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Permission{}, fmt.Errorf("%w: %s", ErrPermissionConflict, endpoint)
		}
		return Permission{}, err
	}
	return p, nil
}

// GetPermission fetches a permission by ID.
func (s *Store) GetPermission(ctx context.Context, id int64) (Permission, error) {
	p, err := scanPermission(s.pool.QueryRow(ctx, `SELECT `+permissionColumns+` FROM permissions WHERE id = $1`, id))
	if err != nil {
		if db.IsNoRows(err) {
			return Permission{}, ErrNotFound
		}
		return Permission{}, err
	}
	return p, nil
}

// FindPermissions returns a page of permissions ordered by endpoint.
func (s *Store) FindPermissions(ctx context.Context, page shared.PageRequest) ([]Permission, int64, error) {
	var total int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM permissions`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+permissionColumns+` FROM permissions ORDER BY endpoint LIMIT $1 OFFSET $2`,
		page.Size, page.Offset(),
	)
	if err != nil {
		return nil, 0, err
	}
	perms, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Permission, error) {
		return scanPermission(row)
	})
	return perms, total, err
}

// PermissionsByEndpoints returns the stored permissions among endpoints.
func (s *Store) PermissionsByEndpoints(ctx context.Context, endpoints []string) ([]Permission, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+permissionColumns+` FROM permissions WHERE endpoint = ANY($1) ORDER BY endpoint`,
		endpoints,
	)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Permission, error) {
		return scanPermission(row)
	})
}

// UpdatePermission overwrites endpoint and activity of a permission.
func (s *Store) UpdatePermission(ctx context.Context, p Permission) error {
	tag, err := s.pool.Exec(ctx, `UPDATE permissions SET endpoint = $1, is_active = $2 WHERE id = $3`, p.Endpoint, p.IsActive, p.ID)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrPermissionConflict
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetPermissionInactive soft-deletes a permission.
func (s *Store) SetPermissionInactive(ctx context.Context, id int64) error {
	return s.deactivate(ctx, `UPDATE permissions SET is_active = FALSE WHERE id = $1`, id)
}

const routeColumns = `id, description, url, is_active`

// GetRoute fetches a route and its permissions.
func (s *Store) GetRoute(ctx context.Context, id int64) (Route, error) {
	var r Route
	err := s.pool.QueryRow(ctx, `SELECT `+routeColumns+` FROM routes WHERE id = $1`, id).
		Scan(&r.ID, &r.Description, &r.URL, &r.IsActive)
	if err != nil {
		if db.IsNoRows(err) {
			return Route{}, ErrNotFound
		}
		return Route{}, err
	}
	perms, err := routePermissions(ctx, s.pool, []int64{r.ID})
	if err != nil {
		return Route{}, err
	}
	r.Permissions = perms[r.ID]
	return r, nil
}

// FindRouteByURL fetches a route by its unique URL.
func (s *Store) FindRouteByURL(ctx context.Context, url string) (Route, error) {
	var id int64
	if err := s.pool.QueryRow(ctx, `SELECT id FROM routes WHERE url = $1`, url).Scan(&id); err != nil {
		if db.IsNoRows(err) {
			return Route{}, ErrNotFound
		}
		return Route{}, err
	}
	return s.GetRoute(ctx, id)
}

// FindRoutes returns a page of routes ordered by URL.
func (s *Store) FindRoutes(ctx context.Context, page shared.PageRequest) ([]Route, int64, error) {
	var total int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM routes`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := s.pool.Query(ctx, `SELECT `+routeColumns+` FROM routes ORDER BY url LIMIT $1 OFFSET $2`, page.Size, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	routes, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Route, error) {
		var r Route
		err := row.Scan(&r.ID, &r.Description, &r.URL, &r.IsActive)
		return r, err
	})
	if err != nil {
		return nil, 0, err
	}
	ids := make([]int64, 0, len(routes))
	for _, r := range routes {
		ids = append(ids, r.ID)
	}
	perms, err := routePermissions(ctx, s.pool, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range routes {
		routes[i].Permissions = perms[routes[i].ID]
	}
	return routes, total, nil
}

// CreateRoute inserts a route and links its permissions.
func (s *Store) CreateRoute(ctx context.Context, r Route) (Route, error) {
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx,
			`INSERT INTO routes (description, url, is_active) VALUES ($1, $2, $3) RETURNING id`,
			r.Description, r.URL, r.IsActive,
		).Scan(&r.ID); err != nil {
			return err
		}
		return linkPermissions(ctx, tx, r.ID, r.PermissionIDs())
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Route{}, ErrRouteConflict
		}
		return Route{}, fmt.Errorf("rbac: create route: %w", err)
	}
	return r, nil
}

// UpdateRoute overwrites a route and replaces its permission links.
func (s *Store) UpdateRoute(ctx context.Context, r Route) error {
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE routes SET description = $1, url = $2, is_active = $3 WHERE id = $4`,
			r.Description, r.URL, r.IsActive, r.ID,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return linkPermissions(ctx, tx, r.ID, r.PermissionIDs())
	})
	if err != nil && db.IsUniqueViolation(err) {
		return ErrRouteConflict
	}
	return err
}

// SetRouteInactive soft-deletes a route.
func (s *Store) SetRouteInactive(ctx context.Context, id int64) error {
	return s.deactivate(ctx, `UPDATE routes SET is_active = FALSE WHERE id = $1`, id)
}

// EffectiveEndpoints returns the endpoints reachable by a user through
// roles, active access groups, active routes and active permissions.
func (s *Store) EffectiveEndpoints(ctx context.Context, userID int64) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT p.endpoint
		FROM user_roles ur
		JOIN role_access_groups rag ON rag.role_id = ur.role_id
		JOIN access_groups ag ON ag.id = rag.access_group_id AND ag.is_active
		JOIN routes rt ON rt.id = ag.route_id AND rt.is_active
		JOIN route_permissions rp ON rp.route_id = rt.id
		JOIN permissions p ON p.id = rp.permission_id AND p.is_active
		WHERE ur.user_id = $1
		ORDER BY p.endpoint`, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (s *Store) deactivate(ctx context.Context, query string, id int64) error {
	tag, err := s.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func linkPermissions(ctx context.Context, q db.DBTX, routeID int64, permissionIDs []int64) error {
	if _, err := q.Exec(ctx, `DELETE FROM route_permissions WHERE route_id = $1`, routeID); err != nil {
		return err
	}
	if len(permissionIDs) == 0 {
		return nil
	}
	_, err := q.Exec(ctx,
		`INSERT INTO route_permissions (route_id, permission_id) SELECT $1, UNNEST($2::BIGINT[]) ON CONFLICT DO NOTHING`,
		routeID, permissionIDs,
	)
	return err
}

func routePermissions(ctx context.Context, q db.DBTX, routeIDs []int64) (map[int64][]Permission, error) {
	out := make(map[int64][]Permission, len(routeIDs))
	if len(routeIDs) == 0 {
		return out, nil
	}
	rows, err := q.Query(ctx, `
		SELECT rp.route_id, p.id, p.endpoint, p.is_active, p.created_at
		FROM route_permissions rp JOIN permissions p ON p.id = rp.permission_id
		WHERE rp.route_id = ANY($1) ORDER BY p.endpoint`, routeIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var routeID int64
		var p Permission
		if err := rows.Scan(&routeID, &p.ID, &p.Endpoint, &p.IsActive, &p.CreatedAt); err != nil {
			return nil, err
		}
		out[routeID] = append(out[routeID], p)
	}
	return out, rows.Err()
}
