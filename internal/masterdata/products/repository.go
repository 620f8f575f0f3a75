package products

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/templatecore/core/internal/platform/db"
	"github.com/templatecore/core/internal/shared"
)

type Repository interface {
	List(ctx context.Context, page shared.PageRequest) ([]Product, int64, error)
	Get(ctx context.Context, id int64) (Product, error)
	Create(ctx context.Context, product Product) (Product, error)
	Update(ctx context.Context, product Product) error
	SetInactive(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, page shared.PageRequest) ([]Product, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, description, is_active, created_at, updated_at FROM products ORDER BY description LIMIT $1 OFFSET $2`,
		page.Size, page.Offset(),
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Description, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Product, error) {
	query := `SELECT id, description, is_active, created_at, updated_at FROM products WHERE id = $1`
	var p Product
	err := r.db.QueryRow(ctx, query, id).Scan(&p.ID, &p.Description, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if db.IsNoRows(err) {
		return Product{}, ErrNotFound
	}
	return p, err
}

func (r *repository) Create(ctx context.Context, product Product) (Product, error) {
	query := `INSERT INTO products (description, is_active, created_at, updated_at) VALUES ($1, $2, $3, $3) RETURNING id`
	now := time.Now().UTC()
	err := r.db.QueryRow(ctx, query, product.Description, product.IsActive, now).Scan(&product.ID)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Product{}, ErrDuplicate
		}
		return Product{}, err
	}
	product.CreatedAt = now
	product.UpdatedAt = now
	return product, nil
}

func (r *repository) Update(ctx context.Context, product Product) error {
	query := `UPDATE products SET description = $1, is_active = $2, updated_at = $3 WHERE id = $4`
	tag, err := r.db.Exec(ctx, query, product.Description, product.IsActive, time.Now().UTC(), product.ID)
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

func (r *repository) SetInactive(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE products SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
