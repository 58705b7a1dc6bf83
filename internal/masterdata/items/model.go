package items

import (
	"time"

	"github.com/google/uuid"
)

// DefaultUOM is the base unit applied when a row carries none.
const DefaultUOM = "PCS"

// Item is a stocked inventory item.
type Item struct {
	ID           uuid.UUID  `json:"item_id"`
	Code         string     `json:"item_code"`
	Description  string     `json:"description"`
	CategoryID   *uuid.UUID `json:"category_id,omitempty"`
	BaseUOM      string     `json:"base_uom"`
	UnitCost     *float64   `json:"unit_cost,omitempty"`
	ReorderLevel *float64   `json:"reorder_level,omitempty"`
	ImagePath    *string    `json:"image_path,omitempty"`
	ImageURL     *string    `json:"image_url,omitempty"`
	IsActive     bool       `json:"is_active"`
	CreatedBy    *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Changes describes the columns an import writes onto an existing item.
// Image fields are only touched when non-nil.
type Changes struct {
	Description  string
	CategoryID   *uuid.UUID
	BaseUOM      string
	UnitCost     *float64
	ReorderLevel *float64
	ImagePath    *string
	ImageURL     *string
}
