package procurement

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Purchase order lifecycle statuses.
type POStatus string

const (
	POStatusDraft     POStatus = "DRAFT"
	POStatusApproved  POStatus = "APPROVED"
	POStatusCompleted POStatus = "COMPLETED"
	POStatusCancelled POStatus = "CANCELLED"
)

// ImportedNote is stored on every purchase order created by a spreadsheet import.
const ImportedNote = "Imported from Excel"

// VATRate is the percentage applied to imported purchase order subtotals.
var VATRate = decimal.NewFromInt(7)

// PurchaseOrder domain model.
type PurchaseOrder struct {
	ID              uuid.UUID
	Number          string
	SupplierID      uuid.UUID
	PODate          time.Time
	ExpectedDate    time.Time
	ReferenceNumber string
	Subtotal        decimal.Decimal
	VATAmount       decimal.Decimal
	VATRate         decimal.Decimal
	Total           decimal.Decimal
	Status          POStatus
	Notes           string
	CreatedBy       uuid.UUID
}

// POLine represents PO lines.
type POLine struct {
	ID        uuid.UUID
	POID      uuid.UUID
	ItemID    uuid.UUID
	Quantity  decimal.Decimal
	UnitCost  decimal.Decimal
	LineTotal decimal.Decimal
}

// Totals holds the money figures derived from a set of lines.
type Totals struct {
	Subtotal decimal.Decimal
	VAT      decimal.Decimal
	Total    decimal.Decimal
}

// MoneyPlaces is the scale of stored amounts.
const MoneyPlaces = 2

// RoundMoney rounds half away from zero to MoneyPlaces, matching NUMERIC(18,2).
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// ComputeTotals sums line totals rounded to cents and applies VATRate. VAT is
// rounded before Total is derived, so the stored Total always equals the
// stored Subtotal plus VAT.
func ComputeTotals(lines []POLine) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(RoundMoney(l.LineTotal))
	}
	vat := RoundMoney(subtotal.Mul(VATRate).Div(decimal.NewFromInt(100)))
	return Totals{Subtotal: subtotal, VAT: vat, Total: subtotal.Add(vat)}
}

var (
	// ErrNotFound indicates record missing.
	ErrNotFound = errors.New("procurement: not found")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("procurement: invalid input")
	// ErrDuplicateNumber indicates a purchase order number already in use.
	ErrDuplicateNumber = errors.New("procurement: duplicate po number")
)
