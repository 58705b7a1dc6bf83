package imports

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Spreadsheet headers understood by the item importer.
const (
	colItemCode      = "Item Code"
	colDescription   = "Description"
	colItemName      = "Item Name"
	colCategory      = "Category"
	colUOM           = "UOM"
	colBaseUOM       = "Base UOM"
	colUnitCost      = "Unit Cost"
	colReorderLevel  = "Reorder Level"
	colImage         = "Image"
	colImageFilename = "Image Filename"
)

// Spreadsheet headers understood by the purchase order importer.
const (
	colPONumber     = "PO No."
	colPODate       = "Date Open PO"
	colVendor       = "Vendor"
	colInvoiceNo    = "Invoice No."
	colInvoiceIssue = "Invoice Issue"
	colItem         = "Item"
	colQuantity     = "Quantity"
	colPriceUnit    = "Price/Unit"
	colGross        = "Gross"
)

// ItemHeaders and POHeaders list the template columns in order.
var (
	ItemHeaders = []string{colItemCode, colDescription, colCategory, colUOM, colUnitCost, colReorderLevel, colImage}
	POHeaders   = []string{colPONumber, colPODate, colItem, colQuantity, colUOM, colPriceUnit, colGross, colVendor, colInvoiceNo, colInvoiceIssue}
)

const defaultUOM = "PCS"

// ItemRow is a validated item import record.
type ItemRow struct {
	ItemCode      string   `json:"item_code" validate:"required,max=50"`
	Description   string   `json:"description" validate:"required,max=500"`
	Category      string   `json:"category" validate:"max=100"`
	BaseUOM       string   `json:"base_uom" validate:"required,max=20"`
	UnitCost      *float64 `json:"unit_cost" validate:"omitempty,gt=0"`
	ReorderLevel  *float64 `json:"reorder_level" validate:"omitempty,gte=0"`
	ImageFilename string   `json:"image_filename" validate:"max=255"`
}

// POLineRow is one purchase order line as read from the sheet.
type POLineRow struct {
	ItemName string  `json:"item_name"`
	Quantity float64 `json:"quantity" validate:"gte=0"`
	UOM      string  `json:"uom"`
	UnitCost float64 `json:"unit_cost" validate:"gte=0"`
	Gross    float64 `json:"gross" validate:"gte=0"`
}

// PORow groups every sheet row sharing a PO number.
type PORow struct {
	PONumber    string      `json:"po_number" validate:"required,max=50"`
	PODate      time.Time   `json:"po_date"`
	VendorName  string      `json:"vendor_name" validate:"max=200"`
	InvoiceNo   string      `json:"invoice_no" validate:"max=100"`
	InvoiceDate time.Time   `json:"invoice_date"`
	Lines       []POLineRow `json:"lines" validate:"required,min=1,dive"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// NormalizeItemRow maps a sheet row onto an ItemRow. ok is false when the row
// has no item code; such rows are ignored entirely.
func NormalizeItemRow(row Row) (rec ItemRow, ok bool, err error) {
	code := row.Get(colItemCode)
	if code == "" {
		return ItemRow{}, false, nil
	}
	rec = ItemRow{
		ItemCode:      code,
		Description:   row.Get(colDescription, colItemName),
		Category:      row.Get(colCategory),
		BaseUOM:       row.Get(colUOM, colBaseUOM),
		ImageFilename: row.Get(colImage, colImageFilename),
	}
	if rec.Description == "" {
		rec.Description = code
	}
	if rec.BaseUOM == "" {
		rec.BaseUOM = defaultUOM
	}
	if v, parsed := ParseNumber(row.Get(colUnitCost)); parsed && v > 0 {
		rec.UnitCost = &v
	}
	if v, parsed := ParseNumber(row.Get(colReorderLevel)); parsed {
		rec.ReorderLevel = &v
	}
	if err := validate.Struct(rec); err != nil {
		return rec, true, validationError(err)
	}
	return rec, true, nil
}

// GroupPORows folds sheet rows into purchase orders keyed by PO number, in
// the order each number first appears. Header fields come from the first row
// of each group. Rows without a PO number are ignored.
func GroupPORows(rows []Row, now time.Time) []PORow {
	var (
		order  []string
		groups = map[string]*PORow{}
	)
	for _, row := range rows {
		number := row.Get(colPONumber)
		if number == "" {
			continue
		}
		po, seen := groups[number]
		if !seen {
			po = &PORow{
				PONumber:    number,
				PODate:      ParseDate(row.Get(colPODate), now),
				VendorName:  row.Get(colVendor),
				InvoiceNo:   row.Get(colInvoiceNo),
				InvoiceDate: ParseDate(row.Get(colInvoiceIssue), now),
			}
			groups[number] = po
			order = append(order, number)
		}
		po.Lines = append(po.Lines, POLineRow{
			ItemName: row.Get(colItem),
			Quantity: numberOrZero(row.Get(colQuantity)),
			UOM:      row.Get(colUOM),
			UnitCost: numberOrZero(row.Get(colPriceUnit)),
			Gross:    numberOrZero(row.Get(colGross)),
		})
	}
	out := make([]PORow, 0, len(order))
	for _, number := range order {
		out = append(out, *groups[number])
	}
	return out
}

// ValidatePORow checks a grouped purchase order before it is resolved.
func ValidatePORow(po PORow) error {
	if err := validate.Struct(po); err != nil {
		return validationError(err)
	}
	return nil
}

// ParseNumber strips every character except digits and '.' then parses the
// rest as a float. parsed is false for empty or malformed input.
func ParseNumber(s string) (v float64, parsed bool) {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, s)
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func numberOrZero(s string) float64 {
	v, _ := ParseNumber(s)
	return v
}

func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must have at least %s entries", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must not be less than %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}
