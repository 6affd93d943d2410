// Package catalog owns the product list and its inventory records,
// materialized over the persistence layer under a single document key.
// The Catalog is the sole writer of a product's persisted
// representation; every other component reads through it.
package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"shopkart/internal/domain"
	"shopkart/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// productsKey is the document that holds the whole product list.
const productsKey = "products"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidProduct  = errors.New("product requires a name and a positive price")
	ErrNotPersisted    = errors.New("could not save to storage")
)

// InventoryStats aggregates stock bookkeeping across the catalog.
// Units sold are derived per product as total - remaining.
type InventoryStats struct {
	TotalUnitsRemaining int `json:"total_units_remaining"`
	TotalUnitsSold      int `json:"total_units_sold"`
	LowStockCount       int `json:"low_stock_count"`
}

// Catalog is the product list service.
type Catalog struct {
	store  *store.Store
	logger *zap.Logger
}

// New creates a Catalog over the given store.
func New(s *store.Store, logger *zap.Logger) *Catalog {
	return &Catalog{store: s, logger: logger}
}

// load reads the current product list. A missing or corrupted document
// yields an empty catalog; the store has already self-healed by then.
func (c *Catalog) load(ctx context.Context) []domain.Product {
	return store.Get(ctx, c.store, productsKey, []domain.Product{})
}

func (c *Catalog) save(ctx context.Context, products []domain.Product) bool {
	return c.store.Set(ctx, productsKey, products)
}

// List returns all products. Order is not significant to callers.
func (c *Catalog) List(ctx context.Context) []domain.Product {
	return c.load(ctx)
}

// ByID returns the product with the given id.
func (c *Catalog) ByID(ctx context.Context, id string) (*domain.Product, error) {
	for _, p := range c.load(ctx) {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, ErrProductNotFound
}

// ByCategory returns all products in the given category.
func (c *Catalog) ByCategory(ctx context.Context, category string) []domain.Product {
	matched := []domain.Product{}
	for _, p := range c.load(ctx) {
		if strings.EqualFold(p.Category, category) {
			matched = append(matched, p)
		}
	}
	return matched
}

// Create assigns a fresh id, appends the product, and persists the
// catalog. The inventory record, when present, is normalized so that
// 0 <= remaining <= total holds from the start.
func (c *Catalog) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	if strings.TrimSpace(p.Name) == "" || p.PricePaise <= 0 {
		return nil, ErrInvalidProduct
	}

	products := c.load(ctx)

	p.ID = c.freshID(products)
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	normalizeInventory(p.Inventory)

	products = append(products, p)
	if !c.save(ctx, products) {
		return nil, ErrNotPersisted
	}

	c.logger.Info("product created",
		zap.String("product_id", p.ID),
		zap.String("name", p.Name),
	)
	return &p, nil
}

// Update merges non-nil patch fields into the existing record.
func (c *Catalog) Update(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	products := c.load(ctx)

	for i := range products {
		if products[i].ID != id {
			continue
		}

		applyPatch(&products[i], patch)
		products[i].UpdatedAt = time.Now().UTC()

		if !c.save(ctx, products) {
			return nil, ErrNotPersisted
		}
		updated := products[i]
		return &updated, nil
	}

	return nil, ErrProductNotFound
}

// Delete removes the product with the given id.
func (c *Catalog) Delete(ctx context.Context, id string) error {
	products := c.load(ctx)

	for i := range products {
		if products[i].ID != id {
			continue
		}

		products = append(products[:i], products[i+1:]...)
		if !c.save(ctx, products) {
			return ErrNotPersisted
		}

		c.logger.Info("product deleted", zap.String("product_id", id))
		return nil
	}

	return ErrProductNotFound
}

// LowStockList returns products that are running low but not yet out
// of stock: 0 < remaining <= threshold.
func (c *Catalog) LowStockList(ctx context.Context) []domain.Product {
	low := []domain.Product{}
	for _, p := range c.load(ctx) {
		if p.Inventory.LowStock() {
			low = append(low, p)
		}
	}
	return low
}

// AggregateStats sums stock bookkeeping across all tracked products.
func (c *Catalog) AggregateStats(ctx context.Context) InventoryStats {
	var stats InventoryStats
	for _, p := range c.load(ctx) {
		inv := p.Inventory
		if inv == nil {
			continue
		}
		stats.TotalUnitsRemaining += inv.Remaining
		stats.TotalUnitsSold += inv.Total - inv.Remaining
		if inv.LowStock() {
			stats.LowStockCount++
		}
	}
	return stats
}

// freshID generates an id that does not collide with any existing
// product. UUIDs make a collision vanishingly unlikely, but the check
// keeps the id contract unconditional.
func (c *Catalog) freshID(products []domain.Product) string {
	for {
		id := uuid.NewString()
		taken := false
		for _, p := range products {
			if p.ID == id {
				taken = true
				break
			}
		}
		if !taken {
			return id
		}
	}
}

func applyPatch(p *domain.Product, patch domain.ProductPatch) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.ImageURL != nil {
		p.ImageURL = *patch.ImageURL
	}
	if patch.PricePaise != nil && *patch.PricePaise > 0 {
		p.PricePaise = *patch.PricePaise
	}
	if patch.IsUpcoming != nil {
		p.IsUpcoming = *patch.IsUpcoming
	}
	if patch.IsFeatured != nil {
		p.IsFeatured = *patch.IsFeatured
	}
	if patch.Inventory != nil {
		inv := *patch.Inventory
		normalizeInventory(&inv)
		p.Inventory = &inv
	}
}

func normalizeInventory(inv *domain.InventoryRecord) {
	if inv == nil {
		return
	}
	if inv.Total < 0 {
		inv.Total = 0
	}
	if inv.LowStockThreshold < 0 {
		inv.LowStockThreshold = 0
	}
	if inv.Remaining < 0 {
		inv.Remaining = 0
	}
	if inv.Remaining > inv.Total {
		inv.Remaining = inv.Total
	}
}
