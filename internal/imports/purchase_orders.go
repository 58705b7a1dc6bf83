package imports

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ssth/ssth-inventory/internal/masterdata/items"
	mdshared "github.com/ssth/ssth-inventory/internal/masterdata/shared"
	"github.com/ssth/ssth-inventory/internal/procurement"
)

// MsgNoValidPOs is returned when no sheet row carries a PO number.
const MsgNoValidPOs = "No valid POs found in Excel. Check column headers: PO No., Date Open PO, Item, Quantity, UOM, Price/Unit, Gross, Vendor, Invoice No., Invoice Issue"

// ItemIndex lists items keyed by description.
type ItemIndex interface {
	DescriptionIndex(ctx context.Context) (map[string]uuid.UUID, error)
}

// SupplierDirectory lists and creates suppliers.
type SupplierDirectory interface {
	Index(ctx context.Context) (map[string]uuid.UUID, error)
	Resolve(ctx context.Context, name string) (uuid.UUID, error)
}

// POWriter persists a purchase order with its lines atomically.
type POWriter interface {
	ImportPurchaseOrder(ctx context.Context, input procurement.ImportPOInput) (procurement.PurchaseOrder, error)
}

// POImporter writes grouped purchase orders.
type POImporter struct {
	items     ItemIndex
	suppliers SupplierDirectory
	orders    POWriter
	logger    *slog.Logger
}

func NewPOImporter(itemIndex ItemIndex, suppliers SupplierDirectory, orders POWriter, logger *slog.Logger) *POImporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &POImporter{items: itemIndex, suppliers: suppliers, orders: orders, logger: logger}
}

// poRun carries the lookup tables shared by every PO of one import.
type poRun struct {
	imp       *POImporter
	items     map[string]uuid.UUID
	suppliers map[string]uuid.UUID
}

// Import preloads items and suppliers concurrently, then processes each PO
// in order. One failed PO never stops the others.
func (imp *POImporter) Import(ctx context.Context, pos []PORow, userID uuid.UUID) (POImportResult, error) {
	run := &poRun{imp: imp}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		idx, err := imp.items.DescriptionIndex(gctx)
		run.items = idx
		return err
	})
	g.Go(func() error {
		idx, err := imp.suppliers.Index(gctx)
		run.suppliers = idx
		return err
	})
	if err := g.Wait(); err != nil {
		return POImportResult{}, fmt.Errorf("imports: preload lookups: %w", err)
	}

	result := NewPOImportResult()
	for _, po := range pos {
		id, err := run.ProcessPO(ctx, po, userID)
		if err != nil {
			imp.logger.WarnContext(ctx, "purchase order import failed",
				slog.String("po_number", po.PONumber), slog.Any("error", err))
		}
		result.Add(POOutcome{PONumber: po.PONumber, POID: id, Err: err})
	}
	return result, nil
}

// ProcessPO resolves the vendor and every line item, then writes the PO. Any
// unresolved line fails the whole PO.
func (run *poRun) ProcessPO(ctx context.Context, po PORow, userID uuid.UUID) (uuid.UUID, error) {
	if err := ValidatePORow(po); err != nil {
		return uuid.Nil, err
	}
	supplierID, err := run.supplier(ctx, po.VendorName)
	if err != nil {
		return uuid.Nil, err
	}

	lines := make([]procurement.ImportLineInput, 0, len(po.Lines))
	for _, line := range po.Lines {
		itemID, ok := run.items[items.DescriptionKey(line.ItemName)]
		if !ok {
			return uuid.Nil, fmt.Errorf("item not found: %s", line.ItemName)
		}
		lines = append(lines, procurement.ImportLineInput{
			ItemID:   itemID,
			Quantity: line.Quantity,
			UnitCost: line.UnitCost,
			Gross:    line.Gross,
		})
	}

	created, err := run.imp.orders.ImportPurchaseOrder(ctx, procurement.ImportPOInput{
		Number:          po.PONumber,
		SupplierID:      supplierID,
		PODate:          po.PODate,
		ExpectedDate:    po.InvoiceDate,
		ReferenceNumber: po.InvoiceNo,
		CreatedBy:       userID,
		Lines:           lines,
	})
	if err != nil {
		return uuid.Nil, err
	}
	return created.ID, nil
}

func (run *poRun) supplier(ctx context.Context, name string) (uuid.UUID, error) {
	key := mdshared.NameKey(name)
	if key == "" {
		return uuid.Nil, fmt.Errorf("supplier not found: %s", name)
	}
	if id, ok := run.suppliers[key]; ok {
		return id, nil
	}
	id, err := run.imp.suppliers.Resolve(ctx, name)
	if err != nil {
		return uuid.Nil, fmt.Errorf("supplier not found: %s: %w", name, err)
	}
	run.suppliers[key] = id
	return id, nil
}
