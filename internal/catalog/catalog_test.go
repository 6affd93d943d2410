package catalog

import (
	"context"
	"testing"

	"shopkart/internal/domain"
	"shopkart/internal/store"

	"go.uber.org/zap"
)

func newTestCatalog(t *testing.T) (*Catalog, *store.FileBackend) {
	t.Helper()

	backend, err := store.NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create file backend: %v", err)
	}
	st := store.New(backend, zap.NewNop())
	return New(st, zap.NewNop()), backend
}

func stocked(name string, price int64, total, remaining, threshold int) domain.Product {
	return domain.Product{
		Name:       name,
		Category:   "pottery",
		PricePaise: price,
		Inventory: &domain.InventoryRecord{
			Total:             total,
			Remaining:         remaining,
			LowStockThreshold: threshold,
		},
	}
}

func TestCreateAssignsFreshIDAndPersists(t *testing.T) {
	c, _ := newTestCatalog(t)
	ctx := context.Background()

	created, err := c.Create(ctx, stocked("Clay Vase", 150000, 10, 10, 3))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == "" {
		t.Fatal("Create did not assign an id")
	}

	got, err := c.ByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("ByID failed: %v", err)
	}
	if got.Name != "Clay Vase" || got.PricePaise != 150000 {
		t.Errorf("ByID returned %+v, want created product", got)
	}

	second, err := c.Create(ctx, stocked("Clay Bowl", 90000, 5, 5, 2))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if second.ID == created.ID {
		t.Error("ids must not collide")
	}
	if len(c.List(ctx)) != 2 {
		t.Errorf("List returned %d products, want 2", len(c.List(ctx)))
	}
}

func TestCreateRejectsInvalidProduct(t *testing.T) {
	c, _ := newTestCatalog(t)
	ctx := context.Background()

	if _, err := c.Create(ctx, domain.Product{Name: "   ", PricePaise: 100}); err != ErrInvalidProduct {
		t.Errorf("empty name: got %v, want ErrInvalidProduct", err)
	}
	if _, err := c.Create(ctx, domain.Product{Name: "Bad Price", PricePaise: -1}); err != ErrInvalidProduct {
		t.Errorf("negative price: got %v, want ErrInvalidProduct", err)
	}
	if _, err := c.Create(ctx, domain.Product{Name: "Free", PricePaise: 0}); err != ErrInvalidProduct {
		t.Errorf("zero price: got %v, want ErrInvalidProduct", err)
	}
}

func TestCreateNormalizesInventory(t *testing.T) {
	c, _ := newTestCatalog(t)

	created, err := c.Create(context.Background(), stocked("Overfull", 100, 5, 9, 2))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.Inventory.Remaining != 5 {
		t.Errorf("remaining = %d, want clamped to total 5", created.Inventory.Remaining)
	}
}

func TestByIDNotFound(t *testing.T) {
	c, _ := newTestCatalog(t)

	if _, err := c.ByID(context.Background(), "nope"); err != ErrProductNotFound {
		t.Errorf("got %v, want ErrProductNotFound", err)
	}
}

func TestByCategory(t *testing.T) {
	c, _ := newTestCatalog(t)
	ctx := context.Background()

	c.Create(ctx, stocked("Vase", 100, 1, 1, 0))
	mug := stocked("Mug", 100, 1, 1, 0)
	mug.Category = "kitchen"
	c.Create(ctx, mug)

	got := c.ByCategory(ctx, "Pottery")
	if len(got) != 1 || got[0].Name != "Vase" {
		t.Errorf("ByCategory returned %+v, want only the vase", got)
	}
	if len(c.ByCategory(ctx, "garden")) != 0 {
		t.Error("unknown category should return empty slice")
	}
}

func TestUpdateMergesPatch(t *testing.T) {
	c, _ := newTestCatalog(t)
	ctx := context.Background()

	created, _ := c.Create(ctx, stocked("Vase", 150000, 10, 10, 3))

	name := "Painted Vase"
	price := int64(200000)
	updated, err := c.Update(ctx, created.ID, domain.ProductPatch{Name: &name, PricePaise: &price})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if updated.Name != "Painted Vase" || updated.PricePaise != 200000 {
		t.Errorf("Update returned %+v, want patched fields", updated)
	}
	// Untouched fields survive the merge
	if updated.Category != "pottery" || updated.Inventory == nil || updated.Inventory.Total != 10 {
		t.Errorf("Update clobbered unpatched fields: %+v", updated)
	}
}

func TestUpdateUnknownID(t *testing.T) {
	c, _ := newTestCatalog(t)

	name := "x"
	if _, err := c.Update(context.Background(), "nope", domain.ProductPatch{Name: &name}); err != ErrProductNotFound {
		t.Errorf("got %v, want ErrProductNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	c, _ := newTestCatalog(t)
	ctx := context.Background()

	created, _ := c.Create(ctx, stocked("Vase", 100, 1, 1, 0))

	if err := c.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := c.ByID(ctx, created.ID); err != ErrProductNotFound {
		t.Error("deleted product should not be found")
	}
	if err := c.Delete(ctx, created.ID); err != ErrProductNotFound {
		t.Errorf("second delete: got %v, want ErrProductNotFound", err)
	}
}

func TestLowStockList(t *testing.T) {
	c, _ := newTestCatalog(t)
	ctx := context.Background()

	low, _ := c.Create(ctx, stocked("Low", 100, 10, 2, 3))
	c.Create(ctx, stocked("Out", 100, 10, 0, 3))
	c.Create(ctx, stocked("Plenty", 100, 10, 8, 3))

	got := c.LowStockList(ctx)
	if len(got) != 1 || got[0].ID != low.ID {
		t.Errorf("LowStockList returned %+v, want only the low-stock product", got)
	}
}

func TestAggregateStats(t *testing.T) {
	c, _ := newTestCatalog(t)
	ctx := context.Background()

	c.Create(ctx, stocked("A", 100, 10, 2, 3))  // sold 8, low
	c.Create(ctx, stocked("B", 100, 20, 20, 3)) // sold 0
	c.Create(ctx, domain.Product{Name: "Untracked", PricePaise: 100})

	stats := c.AggregateStats(ctx)
	if stats.TotalUnitsRemaining != 22 {
		t.Errorf("TotalUnitsRemaining = %d, want 22", stats.TotalUnitsRemaining)
	}
	if stats.TotalUnitsSold != 8 {
		t.Errorf("TotalUnitsSold = %d, want 8", stats.TotalUnitsSold)
	}
	if stats.LowStockCount != 1 {
		t.Errorf("LowStockCount = %d, want 1", stats.LowStockCount)
	}
}

func TestCorruptedProductsDocumentResets(t *testing.T) {
	c, backend := newTestCatalog(t)
	ctx := context.Background()

	if err := backend.Set(ctx, "products", "{not json"); err != nil {
		t.Fatalf("Failed to plant corrupted document: %v", err)
	}

	if got := c.List(ctx); len(got) != 0 {
		t.Errorf("List over corrupted document returned %+v, want empty", got)
	}

	// The store self-healed; creating works as if starting fresh
	created, err := c.Create(ctx, stocked("Fresh Start", 100, 1, 1, 0))
	if err != nil {
		t.Fatalf("Create after corruption failed: %v", err)
	}
	if got := c.List(ctx); len(got) != 1 || got[0].ID != created.ID {
		t.Errorf("List returned %+v, want the fresh product", got)
	}
}
