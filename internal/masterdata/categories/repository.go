package categories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ssth/ssth-inventory/internal/masterdata/shared"
	"github.com/ssth/ssth-inventory/internal/platform/db"
)

type Repository interface {
	FindByName(ctx context.Context, name string) (Category, error)
	// Upsert inserts the category or returns the existing row whose name
	// matches case-insensitively.
	Upsert(ctx context.Context, category Category) (Category, error)
	List(ctx context.Context) ([]Category, error)
}

const codeConstraint = "categories_category_code_key"

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) FindByName(ctx context.Context, name string) (Category, error) {
	const query = `SELECT category_id, category_code, category_name, is_active
FROM categories WHERE lower(category_name) = lower($1) LIMIT 1`
	var c Category
	err := r.pool.QueryRow(ctx, query, name).Scan(&c.ID, &c.Code, &c.Name, &c.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return Category{}, shared.ErrNotFound
	}
	return c, err
}

// Upsert relies on the unique index categories_name_lower_key. A clash on
// category_code returns shared.ErrDuplicateCode.
func (r *repository) Upsert(ctx context.Context, category Category) (Category, error) {
	const query = `INSERT INTO categories (category_id, category_code, category_name, is_active)
VALUES ($1, $2, $3, TRUE)
ON CONFLICT ((lower(category_name))) DO UPDATE SET category_name = categories.category_name
RETURNING category_id, category_code, category_name, is_active`
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	var c Category
	err := r.pool.QueryRow(ctx, query, category.ID, category.Code, category.Name).
		Scan(&c.ID, &c.Code, &c.Name, &c.IsActive)
	if db.IsUniqueViolation(err, codeConstraint) {
		return Category{}, fmt.Errorf("%w: %s", shared.ErrDuplicateCode, category.Code)
	}
	return c, err
}

func (r *repository) List(ctx context.Context) ([]Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT category_id, category_code, category_name, is_active
FROM categories ORDER BY category_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.IsActive); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
