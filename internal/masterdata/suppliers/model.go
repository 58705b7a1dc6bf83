package suppliers

import "github.com/google/uuid"

// Supplier is a vendor purchase orders are raised against.
type Supplier struct {
	ID       uuid.UUID `json:"supplier_id"`
	Code     string    `json:"supplier_code"`
	Name     string    `json:"supplier_name"`
	IsActive bool      `json:"is_active"`
}
