package domain

import "time"

// Product represents a product in the catalog. Prices are integer
// paisa (100 paisa = 1 rupee); they are never stored as floats.
type Product struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
	ImageURL    string           `json:"image_url"`
	PricePaise  int64            `json:"price_paise"`
	IsUpcoming  bool             `json:"is_upcoming"`
	IsFeatured  bool             `json:"is_featured"`
	Inventory   *InventoryRecord `json:"inventory,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// InventoryRecord is a product's stock bookkeeping.
// Invariant: 0 <= Remaining <= Total.
type InventoryRecord struct {
	Total             int `json:"total"`
	Remaining         int `json:"remaining"`
	LowStockThreshold int `json:"low_stock_threshold"`
}

// LowStock reports whether the product is running low but not yet out.
func (r *InventoryRecord) LowStock() bool {
	return r != nil && r.Remaining > 0 && r.Remaining <= r.LowStockThreshold
}

// OutOfStock reports whether no units remain. A product without an
// inventory record is treated as always in stock.
func (r *InventoryRecord) OutOfStock() bool {
	return r != nil && r.Remaining <= 0
}

// ProductPatch carries a partial product update. Nil fields are left
// untouched; presence is explicit rather than inferred from zero values.
type ProductPatch struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Category    *string          `json:"category,omitempty"`
	ImageURL    *string          `json:"image_url,omitempty"`
	PricePaise  *int64           `json:"price_paise,omitempty"`
	IsUpcoming  *bool            `json:"is_upcoming,omitempty"`
	IsFeatured  *bool            `json:"is_featured,omitempty"`
	Inventory   *InventoryRecord `json:"inventory,omitempty"`
}
