package suppliers

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
	FindByName(ctx context.Context, name string) (Supplier, error)
	Upsert(ctx context.Context, supplier Supplier) (Supplier, error)
	List(ctx context.Context) ([]Supplier, error)
}

const codeConstraint = "suppliers_supplier_code_key"

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) FindByName(ctx context.Context, name string) (Supplier, error) {
	var s Supplier
	err := r.pool.QueryRow(ctx, `SELECT supplier_id, supplier_code, supplier_name, is_active
FROM suppliers WHERE lower(supplier_name) = lower($1) LIMIT 1`, name).
		Scan(&s.ID, &s.Code, &s.Name, &s.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return Supplier{}, shared.ErrNotFound
	}
	return s, err
}

// Upsert relies on the unique index suppliers_name_lower_key; a concurrent
// insert of the same name returns the row that won. A clash on supplier_code
// returns shared.ErrDuplicateCode.
func (r *repository) Upsert(ctx context.Context, supplier Supplier) (Supplier, error) {
	if supplier.ID == uuid.Nil {
		supplier.ID = uuid.New()
	}
	var s Supplier
	err := r.pool.QueryRow(ctx, `INSERT INTO suppliers (supplier_id, supplier_code, supplier_name, is_active)
VALUES ($1, $2, $3, TRUE)
ON CONFLICT ((lower(supplier_name))) DO UPDATE SET supplier_name = suppliers.supplier_name
RETURNING supplier_id, supplier_code, supplier_name, is_active`,
		supplier.ID, supplier.Code, supplier.Name).
		Scan(&s.ID, &s.Code, &s.Name, &s.IsActive)
	if db.IsUniqueViolation(err, codeConstraint) {
		return Supplier{}, fmt.Errorf("%w: %s", shared.ErrDuplicateCode, supplier.Code)
	}
	return s, err
}

func (r *repository) List(ctx context.Context) ([]Supplier, error) {
	rows, err := r.pool.Query(ctx, `SELECT supplier_id, supplier_code, supplier_name, is_active
FROM suppliers ORDER BY supplier_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Supplier
	for rows.Next() {
		var s Supplier
		if err := rows.Scan(&s.ID, &s.Code, &s.Name, &s.IsActive); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
