// Package wishlist implements the per-session wishlist: a set of
// product ids expressing non-binding intent. Unlike the cart it has no
// quantity or stock invariants.
package wishlist

import (
	"context"

	"shopkart/internal/catalog"
	"shopkart/internal/domain"
	"shopkart/internal/notify"
	"shopkart/internal/store"

	"go.uber.org/zap"
)

// Snapshot is the wishlist state returned from every mutation.
type Snapshot struct {
	Scope      string   `json:"scope"`
	ProductIDs []string `json:"product_ids"`
	Persisted  bool     `json:"persisted"`
}

// Service is the wishlist service.
type Service struct {
	store   *store.Store
	catalog *catalog.Catalog
	sink    notify.Sink
	logger  *zap.Logger
}

// NewService creates a wishlist service.
func NewService(s *store.Store, c *catalog.Catalog, sink notify.Sink, logger *zap.Logger) *Service {
	return &Service{store: s, catalog: c, sink: sink, logger: logger}
}

func wishlistKey(scope string) string {
	if scope == "" {
		scope = "guest"
	}
	return "wishlist:" + scope
}

// Add puts a product on the wishlist. Adding a product that is already
// present is a no-op; entries are a set.
func (s *Service) Add(ctx context.Context, scope, productID string) *Snapshot {
	entries := s.loadEntries(ctx, scope)

	for _, e := range entries {
		if e.ProductID == productID {
			return s.snapshot(scope, entries, true)
		}
	}

	entries = append(entries, domain.WishlistEntry{ProductID: productID})
	return s.persist(ctx, scope, entries)
}

// Remove takes a product off the wishlist.
func (s *Service) Remove(ctx context.Context, scope, productID string) *Snapshot {
	entries := s.loadEntries(ctx, scope)

	for i, e := range entries {
		if e.ProductID == productID {
			entries = append(entries[:i], entries[i+1:]...)
			return s.persist(ctx, scope, entries)
		}
	}

	return s.snapshot(scope, entries, true)
}

// Contains reports whether a product is on the wishlist.
func (s *Service) Contains(ctx context.Context, scope, productID string) bool {
	for _, e := range s.loadEntries(ctx, scope) {
		if e.ProductID == productID {
			return true
		}
	}
	return false
}

// List hydrates the wishlist from the catalog. Entries whose product
// has since been deleted are dropped from the result but left in
// storage until the next write; stale intent is harmless.
func (s *Service) List(ctx context.Context, scope string) []domain.Product {
	products := []domain.Product{}
	for _, e := range s.loadEntries(ctx, scope) {
		if p, err := s.catalog.ByID(ctx, e.ProductID); err == nil {
			products = append(products, *p)
		}
	}
	return products
}

func (s *Service) loadEntries(ctx context.Context, scope string) []domain.WishlistEntry {
	return store.Get(ctx, s.store, wishlistKey(scope), []domain.WishlistEntry{})
}

func (s *Service) persist(ctx context.Context, scope string, entries []domain.WishlistEntry) *Snapshot {
	persisted := s.store.Set(ctx, wishlistKey(scope), entries)
	if !persisted {
		s.sink.Publish(notify.Event{
			Level:   notify.LevelError,
			Code:    "storage_unavailable",
			Message: "could not save your wishlist",
		})
	}

	s.logger.Debug("wishlist persisted",
		zap.String("scope", scope),
		zap.Int("entries", len(entries)),
		zap.Bool("persisted", persisted),
	)
	return s.snapshot(scope, entries, persisted)
}

func (s *Service) snapshot(scope string, entries []domain.WishlistEntry, persisted bool) *Snapshot {
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ProductID)
	}
	return &Snapshot{Scope: scope, ProductIDs: ids, Persisted: persisted}
}
