package procurement

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetPO(ctx context.Context, id uuid.UUID) (PurchaseOrder, []POLine, error)
}

// Service orchestrates procurement flows.
type Service struct {
	repo RepositoryPort
}

// NewService constructs procurement service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// WriteError reports which part of a purchase order failed to persist.
type WriteError struct {
	Target string
	Err    error
}

func (e *WriteError) Error() string { return "failed to create " + e.Target + ": " + e.Err.Error() }

func (e *WriteError) Unwrap() error { return e.Err }

// ImportPOInput describes a purchase order read from a spreadsheet.
type ImportPOInput struct {
	Number          string
	SupplierID      uuid.UUID
	PODate          time.Time
	ExpectedDate    time.Time
	ReferenceNumber string
	CreatedBy       uuid.UUID
	Lines           []ImportLineInput
}

// ImportLineInput is one resolved spreadsheet line. Gross becomes the line total.
type ImportLineInput struct {
	ItemID   uuid.UUID
	Quantity float64
	UnitCost float64
	Gross    float64
}

// ImportPurchaseOrder writes a completed purchase order and its lines in a
// single transaction; a failed line leaves no header behind.
func (s *Service) ImportPurchaseOrder(ctx context.Context, input ImportPOInput) (PurchaseOrder, error) {
	input.Number = strings.TrimSpace(input.Number)
	if input.Number == "" {
		return PurchaseOrder{}, fmt.Errorf("%w: po number required", ErrValidation)
	}
	if input.SupplierID == uuid.Nil {
		return PurchaseOrder{}, fmt.Errorf("%w: supplier required", ErrValidation)
	}
	if len(input.Lines) == 0 {
		return PurchaseOrder{}, fmt.Errorf("%w: minimal 1 line", ErrValidation)
	}

	lines := make([]POLine, len(input.Lines))
	for i, l := range input.Lines {
		if l.ItemID == uuid.Nil {
			return PurchaseOrder{}, fmt.Errorf("%w: line %d has no item", ErrValidation, i+1)
		}
		lines[i] = POLine{
			ItemID:    l.ItemID,
			Quantity:  decimal.NewFromFloat(l.Quantity),
			UnitCost:  decimal.NewFromFloat(l.UnitCost),
			LineTotal: RoundMoney(decimal.NewFromFloat(l.Gross)),
		}
	}
	totals := ComputeTotals(lines)

	po := PurchaseOrder{
		Number:          input.Number,
		SupplierID:      input.SupplierID,
		PODate:          input.PODate,
		ExpectedDate:    input.ExpectedDate,
		ReferenceNumber: input.ReferenceNumber,
		Subtotal:        totals.Subtotal,
		VATAmount:       totals.VAT,
		VATRate:         VATRate,
		Total:           totals.Total,
		Status:          POStatusCompleted,
		Notes:           ImportedNote,
		CreatedBy:       input.CreatedBy,
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		id, err := tx.CreatePO(ctx, po)
		if err != nil {
			return &WriteError{Target: "PO", Err: err}
		}
		po.ID = id
		for i := range lines {
			lines[i].POID = id
			if err := tx.InsertPOLine(ctx, lines[i]); err != nil {
				return &WriteError{Target: "PO lines", Err: err}
			}
		}
		return nil
	})
	if err != nil {
		return PurchaseOrder{}, err
	}
	return po, nil
}

// GetPurchaseOrder returns a stored purchase order with its lines.
func (s *Service) GetPurchaseOrder(ctx context.Context, id uuid.UUID) (PurchaseOrder, []POLine, error) {
	return s.repo.GetPO(ctx, id)
}
