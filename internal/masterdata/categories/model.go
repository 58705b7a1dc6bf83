package categories

import "github.com/google/uuid"

// Category groups items for reporting.
type Category struct {
	ID       uuid.UUID `json:"category_id"`
	Code     string    `json:"category_code"`
	Name     string    `json:"category_name"`
	IsActive bool      `json:"is_active"`
}
