package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Categories lists the menu tags an item may carry.
var Categories = []string{"Veg", "Non-Veg", "Soup", "Rice", "Thali", "Drinks"}

// IsCategory reports whether c is one of Categories, ignoring case.
func IsCategory(c string) bool {
	for _, known := range Categories {
		if strings.EqualFold(known, c) {
			return true
		}
	}
	return false
}

// NormalizeCategory returns the canonical spelling of c, or c trimmed when unknown.
func NormalizeCategory(c string) string {
	c = strings.TrimSpace(c)
	for _, known := range Categories {
		if strings.EqualFold(known, c) {
			return known
		}
	}
	return c
}

// Item represents a menu item in the database.
// Quantity is on-hand stock and may go negative when orders outrun it.
type Item struct {
	ID        int64           `json:"id" db:"id"`
	Name      string          `json:"name" db:"name"`
	Price     decimal.Decimal `json:"price" db:"price"`
	Quantity  int             `json:"quantity" db:"quantity"`
	ImageURL  string          `json:"imageUrl,omitempty" db:"image_url"`
	Category  string          `json:"category,omitempty" db:"category"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time       `json:"updatedAt" db:"updated_at"`
}

// CreateItemRequest represents the request body for creating an item
// Example: {"name": "Paneer Tikka", "price": "180.00", "quantity": 25, "category": "Veg"}
type CreateItemRequest struct {
	Name     string          `json:"name" validate:"required,max=120"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity" validate:"gte=0"`
	Category string          `json:"category,omitempty" validate:"omitempty,category"`
	ImageURL string          `json:"imageUrl,omitempty" validate:"omitempty,url"`
}

// UpdateItemRequest represents the request body for updating an item.
// Nil fields are left untouched.
// Example: {"price": "190.00", "quantity": 30}
type UpdateItemRequest struct {
	Name     *string          `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Price    *decimal.Decimal `json:"price,omitempty"`
	Quantity *int             `json:"quantity,omitempty"`
	Category *string          `json:"category,omitempty" validate:"omitempty,category"`
}

// ItemFilter narrows item listings.
type ItemFilter struct {
	Category string
}
