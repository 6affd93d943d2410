package catalog

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidDelta      = errors.New("restock delta would leave stock outside [0, total]")
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
	ErrInvalidThreshold  = errors.New("threshold must be non-negative")
	ErrNoInventory       = errors.New("product has no inventory record")
)

// InventoryLedger is the only component allowed to change a product's
// remaining stock. Each operation is a single read-modify-write of the
// products document; two concurrent writers against the same storage
// can still lose an update (last writer wins), which is an accepted
// limitation of the storage model.
type InventoryLedger struct {
	catalog *Catalog
	logger  *zap.Logger
}

// NewLedger creates a ledger over the given catalog.
func NewLedger(c *Catalog, logger *zap.Logger) *InventoryLedger {
	return &InventoryLedger{catalog: c, logger: logger}
}

// CurrentRemaining returns the product's remaining stock.
func (l *InventoryLedger) CurrentRemaining(ctx context.Context, productID string) (int, error) {
	p, err := l.catalog.ByID(ctx, productID)
	if err != nil {
		return 0, err
	}
	if p.Inventory == nil {
		return 0, ErrNoInventory
	}
	return p.Inventory.Remaining, nil
}

// Decrement removes quantity units from the product's remaining stock,
// e.g. when an order is fulfilled. If quantity exceeds remaining, the
// record is left unchanged and ErrInsufficientStock is returned.
func (l *InventoryLedger) Decrement(ctx context.Context, productID string, quantity int) (int, error) {
	if quantity < 1 {
		return 0, ErrInvalidQuantity
	}

	return l.mutate(ctx, productID, func(remaining, total int) (int, error) {
		if quantity > remaining {
			return 0, ErrInsufficientStock
		}
		return remaining - quantity, nil
	})
}

// Restock adds delta units back to the product's remaining stock. A
// delta that would push remaining above total (or below zero) is
// rejected as ErrInvalidDelta rather than silently clamped, so the
// caller can tell "added too much" apart from a no-op.
func (l *InventoryLedger) Restock(ctx context.Context, productID string, delta int) (int, error) {
	return l.mutate(ctx, productID, func(remaining, total int) (int, error) {
		next := remaining + delta
		if next < 0 || next > total {
			return 0, ErrInvalidDelta
		}
		return next, nil
	})
}

// SetLowStockThreshold updates the level at which the product is
// reported as low stock.
func (l *InventoryLedger) SetLowStockThreshold(ctx context.Context, productID string, threshold int) error {
	if threshold < 0 {
		return ErrInvalidThreshold
	}

	products := l.catalog.load(ctx)
	for i := range products {
		if products[i].ID != productID {
			continue
		}
		if products[i].Inventory == nil {
			return ErrNoInventory
		}

		products[i].Inventory.LowStockThreshold = threshold
		if !l.catalog.save(ctx, products) {
			return ErrNotPersisted
		}
		return nil
	}

	return ErrProductNotFound
}

// mutate applies fn to the product's remaining stock inside one
// read-modify-write of the products document.
func (l *InventoryLedger) mutate(ctx context.Context, productID string, fn func(remaining, total int) (int, error)) (int, error) {
	products := l.catalog.load(ctx)

	for i := range products {
		if products[i].ID != productID {
			continue
		}
		inv := products[i].Inventory
		if inv == nil {
			return 0, ErrNoInventory
		}

		next, err := fn(inv.Remaining, inv.Total)
		if err != nil {
			return 0, err
		}

		inv.Remaining = next
		if !l.catalog.save(ctx, products) {
			return 0, ErrNotPersisted
		}

		l.logger.Debug("inventory updated",
			zap.String("product_id", productID),
			zap.Int("remaining", next),
		)
		return next, nil
	}

	return 0, ErrProductNotFound
}
