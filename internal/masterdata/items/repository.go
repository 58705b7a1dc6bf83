package items

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ssth/ssth-inventory/internal/masterdata/shared"
)

type Repository interface {
	GetByCode(ctx context.Context, code string) (Item, error)
	Create(ctx context.Context, item Item) (Item, error)
	Update(ctx context.Context, id uuid.UUID, changes Changes) error
	// ListDescriptions returns item ids keyed by trimmed description. The
	// first item wins when two share a description.
	ListDescriptions(ctx context.Context) (map[string]uuid.UUID, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const itemColumns = `item_id, item_code, description, category_id, base_uom, unit_cost, reorder_level,
image_path, image_url, is_active, created_by, created_at, updated_at`

func scanItem(row pgx.Row) (Item, error) {
	var it Item
	err := row.Scan(&it.ID, &it.Code, &it.Description, &it.CategoryID, &it.BaseUOM, &it.UnitCost,
		&it.ReorderLevel, &it.ImagePath, &it.ImageURL, &it.IsActive, &it.CreatedBy, &it.CreatedAt, &it.UpdatedAt)
	return it, err
}

func (r *repository) GetByCode(ctx context.Context, code string) (Item, error) {
	it, err := scanItem(r.db.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE item_code = $1`, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return Item{}, shared.ErrNotFound
	}
	return it, err
}

func (r *repository) Create(ctx context.Context, item Item) (Item, error) {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	now := time.Now()
	query := `INSERT INTO items (item_id, item_code, description, category_id, base_uom, unit_cost, reorder_level,
image_path, image_url, is_active, created_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
RETURNING ` + itemColumns
	return scanItem(r.db.QueryRow(ctx, query, item.ID, item.Code, item.Description, item.CategoryID, item.BaseUOM,
		item.UnitCost, item.ReorderLevel, item.ImagePath, item.ImageURL, item.IsActive, item.CreatedBy, now))
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, c Changes) error {
	query := `UPDATE items SET description = $1, category_id = $2, base_uom = $3, unit_cost = $4,
reorder_level = $5, is_active = TRUE,
image_path = COALESCE($6, image_path), image_url = COALESCE($7, image_url), updated_at = $8
WHERE item_id = $9`
	tag, err := r.db.Exec(ctx, query, c.Description, c.CategoryID, c.BaseUOM, c.UnitCost, c.ReorderLevel,
		c.ImagePath, c.ImageURL, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) ListDescriptions(ctx context.Context) (map[string]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `SELECT item_id, description FROM items ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]uuid.UUID{}
	for rows.Next() {
		var (
			id   uuid.UUID
			desc string
		)
		if err := rows.Scan(&id, &desc); err != nil {
			return nil, err
		}
		key := DescriptionKey(desc)
		if _, seen := out[key]; !seen {
			out[key] = id
		}
	}
	return out, rows.Err()
}
