package roles

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/templatecore/core/internal/platform/db"
	"github.com/templatecore/core/internal/rbac"
	"github.com/templatecore/core/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const roleColumns = `id, name, created_at, updated_at`

// Get fetches a role with its access groups.
func (r *Repository) Get(ctx context.Context, id int64) (rbac.Role, error) {
	return r.getOne(ctx, `SELECT `+roleColumns+` FROM roles WHERE id = $1`, id)
}

// FindByName fetches a role by its upper-case name.
func (r *Repository) FindByName(ctx context.Context, name string) (rbac.Role, error) {
	return r.getOne(ctx, `SELECT `+roleColumns+` FROM roles WHERE name = $1`, name)
}

func (r *Repository) getOne(ctx context.Context, query string, arg any) (rbac.Role, error) {
	var role rbac.Role
	err := r.pool.QueryRow(ctx, query, arg).Scan(&role.ID, &role.Name, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if db.IsNoRows(err) {
			return rbac.Role{}, ErrNotFound
		}
		return rbac.Role{}, err
	}
	groups, err := accessGroups(ctx, r.pool, []int64{role.ID})
	if err != nil {
		return rbac.Role{}, err
	}
	role.AccessGroups = groups[role.ID]
	return role, nil
}

// Find returns a page of roles ordered by name.
func (r *Repository) Find(ctx context.Context, page shared.PageRequest) ([]rbac.Role, int64, error) {
	total, err := r.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+roleColumns+` FROM roles ORDER BY name LIMIT $1 OFFSET $2`, page.Size, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	roles, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (rbac.Role, error) {
		var role rbac.Role
		err := row.Scan(&role.ID, &role.Name, &role.CreatedAt, &role.UpdatedAt)
		return role, err
	})
	if err != nil {
		return nil, 0, err
	}
	ids := make([]int64, 0, len(roles))
	for _, role := range roles {
		ids = append(ids, role.ID)
	}
	groups, err := accessGroups(ctx, r.pool, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range roles {
		roles[i].AccessGroups = groups[roles[i].ID]
	}
	return roles, total, nil
}

// Count returns the number of stored roles.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM roles`).Scan(&total)
	return total, err
}

// Create inserts the role together with its access groups.
func (r *Repository) Create(ctx context.Context, role rbac.Role) (rbac.Role, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx,
			`INSERT INTO roles (name) VALUES ($1) RETURNING id, created_at, updated_at`, role.Name,
		).Scan(&role.ID, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return err
		}
		return insertAccessGroups(ctx, tx, role.ID, role.AccessGroups)
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			return rbac.Role{}, ErrDuplicate
		}
		return rbac.Role{}, fmt.Errorf("roles: create: %w", err)
	}
	return role, nil
}

// Update renames the role and replaces its access groups.
func (r *Repository) Update(ctx context.Context, role rbac.Role) error {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE roles SET name = $1, updated_at = NOW() WHERE id = $2`, role.Name, role.ID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		if err := deleteAccessGroups(ctx, tx, role.ID); err != nil {
			return err
		}
		return insertAccessGroups(ctx, tx, role.ID, role.AccessGroups)
	})
	if err != nil && db.IsUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// Delete removes the role, its access groups and its user links.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := deleteAccessGroups(ctx, tx, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func insertAccessGroups(ctx context.Context, q db.DBTX, roleID int64, groups []rbac.AccessGroup) error {
	for _, group := range groups {
		kinds := make([]string, 0, len(group.Kinds))
		for _, k := range group.Kinds {
			kinds = append(kinds, string(k))
		}
		var groupID int64
		if err := q.QueryRow(ctx,
			`INSERT INTO access_groups (route_id, access_kinds, is_active) VALUES ($1, $2, $3) RETURNING id`,
			group.Route.ID, kinds, group.IsActive,
		).Scan(&groupID); err != nil {
			return err
		}
		if _, err := q.Exec(ctx,
			`INSERT INTO role_access_groups (role_id, access_group_id) VALUES ($1, $2)`, roleID, groupID,
		); err != nil {
			return err
		}
	}
	return nil
}

func deleteAccessGroups(ctx context.Context, q db.DBTX, roleID int64) error {
	_, err := q.Exec(ctx,
		`DELETE FROM access_groups WHERE id IN (SELECT access_group_id FROM role_access_groups WHERE role_id = $1)`,
		roleID,
	)
	return err
}

func accessGroups(ctx context.Context, q db.DBTX, roleIDs []int64) (map[int64][]rbac.AccessGroup, error) {
	out := make(map[int64][]rbac.AccessGroup, len(roleIDs))
	if len(roleIDs) == 0 {
		return out, nil
	}
	rows, err := q.Query(ctx, `
		SELECT rag.role_id, ag.id, ag.access_kinds, ag.is_active, rt.id, rt.description, rt.url, rt.is_active
		FROM role_access_groups rag
		JOIN access_groups ag ON ag.id = rag.access_group_id
		JOIN routes rt ON rt.id = ag.route_id
		WHERE rag.role_id = ANY($1)
		ORDER BY ag.id`, roleIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var roleID int64
		var group rbac.AccessGroup
		var kinds []string
		if err := rows.Scan(&roleID, &group.ID, &kinds, &group.IsActive,
			&group.Route.ID, &group.Route.Description, &group.Route.URL, &group.Route.IsActive); err != nil {
			return nil, err
		}
		for _, k := range kinds {
			group.Kinds = append(group.Kinds, rbac.AccessKind(k))
		}
		out[roleID] = append(out[roleID], group)
	}
	return out, rows.Err()
}
