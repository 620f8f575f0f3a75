package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migration is one idempotent schema step.
type Migration struct {
	Version     int
	Description string
	SQL         string
}

// Migrations returns the schema steps in application order.
func Migrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "permissions catalog",
			SQL: `
				CREATE TABLE IF NOT EXISTS permissions (
					id BIGSERIAL PRIMARY KEY,
					endpoint TEXT NOT NULL,
					is_active BOOLEAN NOT NULL DEFAULT TRUE,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					CONSTRAINT uq_permissions_endpoint UNIQUE (endpoint)
				);
			`,
		},
		{
			Version:     2,
			Description: "routes and access groups",
			SQL: `
				CREATE TABLE IF NOT EXISTS routes (
					id BIGSERIAL PRIMARY KEY,
					description TEXT NOT NULL,
					url TEXT NOT NULL,
					is_active BOOLEAN NOT NULL DEFAULT TRUE,
					CONSTRAINT uq_routes_url UNIQUE (url)
				);
				CREATE TABLE IF NOT EXISTS route_permissions (
					route_id BIGINT NOT NULL REFERENCES routes(id) ON DELETE CASCADE,
					permission_id BIGINT NOT NULL REFERENCES permissions(id) ON DELETE CASCADE,
					PRIMARY KEY (route_id, permission_id)
				);
				CREATE TABLE IF NOT EXISTS access_groups (
					id BIGSERIAL PRIMARY KEY,
					route_id BIGINT NOT NULL REFERENCES routes(id),
					access_kinds TEXT[] NOT NULL CHECK (cardinality(access_kinds) > 0),
					is_active BOOLEAN NOT NULL DEFAULT TRUE
				);
			`,
		},
		{
			Version:     3,
			Description: "roles",
			SQL: `
				CREATE TABLE IF NOT EXISTS roles (
					id BIGSERIAL PRIMARY KEY,
					name TEXT NOT NULL,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					CONSTRAINT uq_roles_name UNIQUE (name)
				);
				CREATE TABLE IF NOT EXISTS role_access_groups (
					role_id BIGINT NOT NULL REFERENCES roles(id) ON DELETE CASCADE,
					access_group_id BIGINT NOT NULL REFERENCES access_groups(id) ON DELETE CASCADE,
					PRIMARY KEY (role_id, access_group_id)
				);
			`,
		},
		{
			Version:     4,
			Description: "users",
			SQL: `
				CREATE TABLE IF NOT EXISTS users (
					id BIGSERIAL PRIMARY KEY,
					username TEXT NOT NULL,
					email TEXT NOT NULL,
					password_hash TEXT NOT NULL,
					is_active BOOLEAN NOT NULL DEFAULT TRUE,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					CONSTRAINT uq_users_username UNIQUE (username),
					CONSTRAINT uq_users_email UNIQUE (email)
				);
				CREATE TABLE IF NOT EXISTS user_roles (
					user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
					role_id BIGINT NOT NULL REFERENCES roles(id) ON DELETE CASCADE,
					PRIMARY KEY (user_id, role_id)
				);
			`,
		},
		{
			Version:     5,
			Description: "products",
			SQL: `
				CREATE TABLE IF NOT EXISTS products (
					id BIGSERIAL PRIMARY KEY,
					description TEXT NOT NULL,
					is_active BOOLEAN NOT NULL DEFAULT TRUE,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					CONSTRAINT uq_products_description UNIQUE (description)
				);
			`,
		},
		{
			Version:     6,
			Description: "authorities and personal data",
			SQL: `
				CREATE TABLE IF NOT EXISTS authorities (
					id BIGSERIAL PRIMARY KEY,
					name TEXT NOT NULL,
					CONSTRAINT uq_authorities_name UNIQUE (name)
				);
				CREATE TABLE IF NOT EXISTS personal_data (
					id BIGSERIAL PRIMARY KEY,
					name TEXT NOT NULL,
					tax_id TEXT NOT NULL,
					CONSTRAINT uq_personal_data_tax_id UNIQUE (tax_id)
				);
			`,
		},
		{
			Version:     7,
			Description: "user personal data link",
			SQL: `
				ALTER TABLE users ADD COLUMN IF NOT EXISTS personal_data_id BIGINT REFERENCES personal_data(id) ON DELETE SET NULL;
			`,
		},
	}
}

// Migrate applies every migration. Each step is safe to re-run.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, m := range Migrations() {
		if _, err := pool.Exec(ctx, m.SQL); err != nil {
			return fmt.Errorf("platform/db: migration %d (%s): %w", m.Version, m.Description, err)
		}
	}
	return nil
}
