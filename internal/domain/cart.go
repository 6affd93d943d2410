package domain

// CartLine is one product's quantity and snapshotted unit price within
// a cart. The price is captured at add-time so later catalog edits do
// not retroactively change an existing cart's total.
type CartLine struct {
	ProductID      string `json:"product_id"`
	Quantity       int    `json:"quantity"`
	UnitPricePaise int64  `json:"unit_price_paise"`
}

// WishlistEntry records non-binding intent for a product. Entries are
// deduplicated by product id and carry no quantity or reservation.
type WishlistEntry struct {
	ProductID string `json:"product_id"`
}
