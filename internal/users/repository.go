package users

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/templatecore/core/internal/platform/db"
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

const userColumns = `id, username, email, password_hash, is_active, personal_data_id, created_at, updated_at`

// FindByID loads a user with its roles.
func (r *Repository) FindByID(ctx context.Context, id int64) (*User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// FindByUsername loads a user by its login name.
func (r *Repository) FindByUsername(ctx context.Context, username string) (*User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *Repository) findOne(ctx context.Context, query string, arg any) (*User, error) {
	var user User
	err := r.pool.QueryRow(ctx, query, arg).Scan(userFields(&user)...)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	roles, err := loadRoles(ctx, r.pool, []int64{user.ID})
	if err != nil {
		return nil, err
	}
	user.Roles = roles[user.ID]
	return &user, nil
}

// Find returns one page of users ordered by id.
func (r *Repository) Find(ctx context.Context, page shared.PageRequest) ([]User, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id LIMIT $1 OFFSET $2`, page.Size, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var users []User
	var ids []int64
	for rows.Next() {
		var user User
		if err := rows.Scan(userFields(&user)...); err != nil {
			return nil, 0, err
		}
		users = append(users, user)
		ids = append(ids, user.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	roles, err := loadRoles(ctx, r.pool, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range users {
		users[i].Roles = roles[users[i].ID]
	}
	return users, total, nil
}

// Count returns the number of stored users.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total)
	return total, err
}

// Create inserts the user and its role links in one transaction.
func (r *Repository) Create(ctx context.Context, user User) (User, error) {
	now := time.Now().UTC()
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO users (username, email, password_hash, is_active, personal_data_id, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $6) RETURNING id`,
			user.Username, user.Email, user.PasswordHash, user.IsActive, user.PersonalDataID, now,
		).Scan(&user.ID)
		if err != nil {
			return err
		}
		return replaceRoles(ctx, tx, user.ID, user.RoleIDs())
	})
	if err != nil {
		switch {
		case db.IsUniqueViolation(err):
			return User{}, ErrDuplicate
		case db.IsForeignKeyViolation(err):
			return User{}, ErrUnknownPersonalData
		}
		return User{}, fmt.Errorf("users: create: %w", err)
	}
	user.CreatedAt = now
	user.UpdatedAt = now
	return user, nil
}

// Update overwrites the stored user and replaces its role links.
func (r *Repository) Update(ctx context.Context, user User) error {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE users SET username = $1, email = $2, password_hash = $3, is_active = $4, personal_data_id = $5, updated_at = NOW()
			 WHERE id = $6`,
			user.Username, user.Email, user.PasswordHash, user.IsActive, user.PersonalDataID, user.ID,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return replaceRoles(ctx, tx, user.ID, user.RoleIDs())
	})
	switch {
	case err == nil:
		return nil
	case db.IsUniqueViolation(err):
		return ErrDuplicate
	case db.IsForeignKeyViolation(err):
		return ErrUnknownPersonalData
	}
	return err
}

// SetInactive soft-deletes the user.
func (r *Repository) SetInactive(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func userFields(u *User) []any {
	return []any{&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsActive, &u.PersonalDataID, &u.CreatedAt, &u.UpdatedAt}
}

func replaceRoles(ctx context.Context, q db.DBTX, userID int64, roleIDs []int64) error {
	if _, err := q.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, userID); err != nil {
		return err
	}
	if len(roleIDs) == 0 {
		return nil
	}
	_, err := q.Exec(ctx,
		`INSERT INTO user_roles (user_id, role_id) SELECT $1, UNNEST($2::BIGINT[]) ON CONFLICT DO NOTHING`,
		userID, roleIDs,
	)
	return err
}

func loadRoles(ctx context.Context, q db.DBTX, userIDs []int64) (map[int64][]RoleRef, error) {
	out := make(map[int64][]RoleRef, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	rows, err := q.Query(ctx,
		`SELECT ur.user_id, r.id, r.name
		 FROM user_roles ur JOIN roles r ON r.id = ur.role_id
		 WHERE ur.user_id = ANY($1) ORDER BY r.name`,
		userIDs,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var userID int64
		var role RoleRef
		if err := rows.Scan(&userID, &role.ID, &role.Name); err != nil {
			return nil, err
		}
		out[userID] = append(out[userID], role)
	}
	return out, rows.Err()
}
