package authorities

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/templatecore/core/internal/platform/db"
	"github.com/templatecore/core/internal/shared"
)

type Repository interface {
	List(ctx context.Context, page shared.PageRequest) ([]Authority, int64, error)
	Get(ctx context.Context, id int64) (Authority, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, authority Authority) (Authority, error)
	Update(ctx context.Context, authority Authority) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, page shared.PageRequest) ([]Authority, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM authorities`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.Query(ctx, `SELECT id, name FROM authorities ORDER BY id LIMIT $1 OFFSET $2`, page.Size, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Authority
	for rows.Next() {
		var a Authority
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Authority, error) {
	var a Authority
	err := r.db.QueryRow(ctx, `SELECT id, name FROM authorities WHERE id = $1`, id).Scan(&a.ID, &a.Name)
	if db.IsNoRows(err) {
		return Authority{}, ErrNotFound
	}
	return a, err
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM authorities`).Scan(&total)
	return total, err
}

func (r *repository) Create(ctx context.Context, authority Authority) (Authority, error) {
	err := r.db.QueryRow(ctx, `INSERT INTO authorities (name) VALUES ($1) RETURNING id`, authority.Name).Scan(&authority.ID)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Authority{}, ErrDuplicate
		}
		return Authority{}, err
	}
	return authority, nil
}

func (r *repository) Update(ctx context.Context, authority Authority) error {
	tag, err := r.db.Exec(ctx, `UPDATE authorities SET name = $1 WHERE id = $2`, authority.Name, authority.ID)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM authorities WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
