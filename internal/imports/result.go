package imports

import "github.com/google/uuid"

// ItemStatus classifies an item row outcome.
type ItemStatus string

const (
	StatusCreated ItemStatus = "created"
	StatusUpdated ItemStatus = "updated"
	StatusSkipped ItemStatus = "skipped"
)

// ItemOutcome is the result of processing one item row.
type ItemOutcome struct {
	ItemCode      string
	Status        ItemStatus
	ImageUploaded bool
	ImageError    string
	// Err is set when Status is StatusSkipped.
	Err error
}

// SkippedItem records why a row was not written.
type SkippedItem struct {
	ItemCode string `json:"item_code"`
	Reason   string `json:"reason"`
}

// ImageError records an image that could not be attached to its item.
type ImageError struct {
	ItemCode string `json:"item_code"`
	Error    string `json:"error"`
}

// ItemDetails lists item codes per outcome.
type ItemDetails struct {
	Created     []string      `json:"created"`
	Updated     []string      `json:"updated"`
	Skipped     []SkippedItem `json:"skipped"`
	ImageErrors []ImageError  `json:"imageErrors"`
}

// ItemImportResult summarises an item import.
type ItemImportResult struct {
	Created       int         `json:"created"`
	Updated       int         `json:"updated"`
	Skipped       int         `json:"skipped"`
	ImageUploaded int         `json:"imageUploaded"`
	Details       ItemDetails `json:"details"`
}

// NewItemImportResult returns a result with empty, non-nil detail lists.
func NewItemImportResult() ItemImportResult {
	return ItemImportResult{Details: ItemDetails{
		Created:     []string{},
		Updated:     []string{},
		Skipped:     []SkippedItem{},
		ImageErrors: []ImageError{},
	}}
}

// Add folds one outcome into the counters.
func (r *ItemImportResult) Add(o ItemOutcome) {
	switch o.Status {
	case StatusCreated:
		r.Created++
		r.Details.Created = append(r.Details.Created, o.ItemCode)
	case StatusUpdated:
		r.Updated++
		r.Details.Updated = append(r.Details.Updated, o.ItemCode)
	default:
		reason := "Unknown error"
		if o.Err != nil {
			reason = o.Err.Error()
		}
		r.Skipped++
		r.Details.Skipped = append(r.Details.Skipped, SkippedItem{ItemCode: o.ItemCode, Reason: reason})
	}
	if o.ImageUploaded && o.Status != StatusSkipped {
		r.ImageUploaded++
	}
	if o.ImageError != "" {
		r.Details.ImageErrors = append(r.Details.ImageErrors, ImageError{ItemCode: o.ItemCode, Error: o.ImageError})
	}
}

// POOutcome is the result of importing one purchase order.
type POOutcome struct {
	PONumber string
	POID     uuid.UUID
	Err      error
}

// FailedPO records why a purchase order was not written.
type FailedPO struct {
	PONumber string `json:"po_number"`
	Error    string `json:"error"`
}

// PODetails lists PO numbers per outcome.
type PODetails struct {
	Successful []string   `json:"successful"`
	Failed     []FailedPO `json:"failed"`
}

// POImportResult summarises a purchase order import.
type POImportResult struct {
	Total      int       `json:"total"`
	Successful int       `json:"successful"`
	Failed     int       `json:"failed"`
	Details    PODetails `json:"details"`
}

// NewPOImportResult returns a result with empty, non-nil detail lists.
func NewPOImportResult() POImportResult {
	return POImportResult{Details: PODetails{Successful: []string{}, Failed: []FailedPO{}}}
}

// Add folds one outcome into the counters.
func (r *POImportResult) Add(o POOutcome) {
	r.Total++
	if o.Err != nil {
		r.Failed++
		r.Details.Failed = append(r.Details.Failed, FailedPO{PONumber: o.PONumber, Error: o.Err.Error()})
		return
	}
	r.Successful++
	r.Details.Successful = append(r.Details.Successful, o.PONumber)
}
