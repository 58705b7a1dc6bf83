package procurement

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/ssth/ssth-inventory/internal/platform/db"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes transactional operations.
type TxRepository interface {
	CreatePO(ctx context.Context, po PurchaseOrder) (uuid.UUID, error)
	InsertPOLine(ctx context.Context, line POLine) error
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx wraps callback in a read-committed transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

// GetPO returns purchase order and lines.
func (r *Repository) GetPO(ctx context.Context, id uuid.UUID) (PurchaseOrder, []POLine, error) {
	var (
		po                         PurchaseOrder
		expected                   pgtype.Date
		ref, notes                 pgtype.Text
		subtotal, vat, rate, total pgtype.Numeric
		status                     string
	)
	err := r.pool.QueryRow(ctx, `SELECT po_id, po_number, supplier_id, po_date, expected_date, reference_number,
subtotal_amount, vat_amount, vat_rate, total_amount, status, notes, created_by
FROM purchase_order WHERE po_id = $1`, id).Scan(&po.ID, &po.Number, &po.SupplierID, &po.PODate, &expected, &ref,
		&subtotal, &vat, &rate, &total, &status, &notes, &po.CreatedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return PurchaseOrder{}, nil, ErrNotFound
	}
	if err != nil {
		return PurchaseOrder{}, nil, err
	}
	po.ExpectedDate = expected.Time
	po.ReferenceNumber = ref.String
	po.Notes = notes.String
	po.Status = POStatus(status)
	po.Subtotal, po.VATAmount, po.VATRate, po.Total = fromNumeric(subtotal), fromNumeric(vat), fromNumeric(rate), fromNumeric(total)

	rows, err := r.pool.Query(ctx, `SELECT po_line_id, po_id, item_id, quantity, unit_cost, line_total
FROM purchase_order_line WHERE po_id = $1 ORDER BY created_at, po_line_id`, id)
	if err != nil {
		return PurchaseOrder{}, nil, err
	}
	defer rows.Close()
	var lines []POLine
	for rows.Next() {
		var (
			line              POLine
			qty, cost, amount pgtype.Numeric
		)
		if err := rows.Scan(&line.ID, &line.POID, &line.ItemID, &qty, &cost, &amount); err != nil {
			return PurchaseOrder{}, nil, err
		}
		line.Quantity, line.UnitCost, line.LineTotal = fromNumeric(qty), fromNumeric(cost), fromNumeric(amount)
		lines = append(lines, line)
	}
	return po, lines, rows.Err()
}

func (tx *txRepo) CreatePO(ctx context.Context, po PurchaseOrder) (uuid.UUID, error) {
	if po.ID == uuid.Nil {
		po.ID = uuid.New()
	}
	var expected pgtype.Date
	if !po.ExpectedDate.IsZero() {
		expected = pgtype.Date{Time: po.ExpectedDate, Valid: true}
	}
	var id uuid.UUID
	err := tx.tx.QueryRow(ctx, `INSERT INTO purchase_order (po_id, po_number, supplier_id, po_date, expected_date,
reference_number, subtotal_amount, vat_amount, vat_rate, total_amount, status, notes, created_by)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13) RETURNING po_id`,
		po.ID, po.Number, po.SupplierID, pgtype.Date{Time: po.PODate, Valid: true}, expected, po.ReferenceNumber,
		toNumeric(po.Subtotal), toNumeric(po.VATAmount), toNumeric(po.VATRate), toNumeric(po.Total),
		string(po.Status), po.Notes, po.CreatedBy).Scan(&id)
	if db.IsUniqueViolation(err, "purchase_order_po_number_key") {
		return uuid.Nil, ErrDuplicateNumber
	}
	return id, err
}

func (tx *txRepo) InsertPOLine(ctx context.Context, line POLine) error {
	if line.ID == uuid.Nil {
		line.ID = uuid.New()
	}
	_, err := tx.tx.Exec(ctx, `INSERT INTO purchase_order_line (po_line_id, po_id, item_id, quantity, unit_cost, line_total)
VALUES ($1, $2, $3, $4, $5, $6)`,
		line.ID, line.POID, line.ItemID, toNumeric(line.Quantity), toNumeric(line.UnitCost), toNumeric(line.LineTotal))
	return err
}

func toNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.String())
	return n
}

func fromNumeric(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}
