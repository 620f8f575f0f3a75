package db

import (
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", ConstraintName: "uq_permissions_endpoint"}
	assert.True(t, IsUniqueViolation(dup))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", dup)))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(pgx.ErrNoRows))
	assert.False(t, IsUniqueViolation(nil))
}

func TestIsForeignKeyViolation(t *testing.T) {
	assert.True(t, IsForeignKeyViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23503"})))
	assert.False(t, IsForeignKeyViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsForeignKeyViolation(nil))
}

func TestIsNoRows(t *testing.T) {
	assert.True(t, IsNoRows(fmt.Errorf("get: %w", pgx.ErrNoRows)))
	assert.False(t, IsNoRows(&pgconn.PgError{Code: "23505"}))
}

func TestMigrationsAreOrderedAndIdempotent(t *testing.T) {
	migrations := Migrations()
	for i, m := range migrations {
		assert.Equal(t, i+1, m.Version)
		for _, stmt := range strings.Split(m.SQL, ";") {
			stmt = strings.TrimSpace(stmt)
			if stmt == "" {
				continue
			}
			assert.Contains(t, stmt, "IF NOT EXISTS", "migration %d must be re-runnable", m.Version)
		}
	}
}

func TestPermissionEndpointIsUnique(t *testing.T) {
	assert.Contains(t, Migrations()[0].SQL, "UNIQUE (endpoint)")
}

func TestLookupTablesCarryUniqueKeys(t *testing.T) {
	sql := Migrations()[5].SQL
	assert.Contains(t, sql, "UNIQUE (name)")
	assert.Contains(t, sql, "UNIQUE (tax_id)")
	assert.Contains(t, Migrations()[6].SQL, "REFERENCES personal_data(id)")
}
