package personaldata

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/templatecore/core/internal/platform/db"
	"github.com/templatecore/core/internal/shared"
)

type Repository interface {
	List(ctx context.Context, page shared.PageRequest) ([]PersonalData, int64, error)
	Get(ctx context.Context, id int64) (PersonalData, error)
	FindByTaxID(ctx context.Context, taxID string) (PersonalData, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, data PersonalData) (PersonalData, error)
	Update(ctx context.Context, data PersonalData) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, page shared.PageRequest) ([]PersonalData, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM personal_data`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, name, tax_id FROM personal_data ORDER BY id LIMIT $1 OFFSET $2`,
		page.Size, page.Offset(),
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []PersonalData
	for rows.Next() {
		var p PersonalData
		if err := rows.Scan(&p.ID, &p.Name, &p.TaxID); err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (PersonalData, error) {
	return r.findOne(ctx, `SELECT id, name, tax_id FROM personal_data WHERE id = $1`, id)
}

func (r *repository) FindByTaxID(ctx context.Context, taxID string) (PersonalData, error) {
	return r.findOne(ctx, `SELECT id, name, tax_id FROM personal_data WHERE tax_id = $1`, taxID)
}

func (r *repository) findOne(ctx context.Context, query string, arg any) (PersonalData, error) {
	var p PersonalData
	err := r.db.QueryRow(ctx, query, arg).Scan(&p.ID, &p.Name, &p.TaxID)
	if db.IsNoRows(err) {
		return PersonalData{}, ErrNotFound
	}
	return p, err
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM personal_data`).Scan(&total)
	return total, err
}

func (r *repository) Create(ctx context.Context, data PersonalData) (PersonalData, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO personal_data (name, tax_id) VALUES ($1, $2) RETURNING id`,
		data.Name, data.TaxID,
	).Scan(&data.ID)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return PersonalData{}, ErrDuplicate
		}
		return PersonalData{}, err
	}
	return data, nil
}

func (r *repository) Update(ctx context.Context, data PersonalData) error {
	tag, err := r.db.Exec(ctx, `UPDATE personal_data SET name = $1, tax_id = $2 WHERE id = $3`, data.Name, data.TaxID, data.ID)
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
	tag, err := r.db.Exec(ctx, `DELETE FROM personal_data WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
