package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"shopkart/internal/cart"
	"shopkart/internal/catalog"
	"shopkart/internal/domain"
	"shopkart/internal/middleware"
	"shopkart/internal/notify"
	"shopkart/internal/store"
	"shopkart/internal/wishlist"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) (chi.Router, *catalog.Catalog) {
	t.Helper()

	backend, err := store.NewFileBackend(t.TempDir())
	require.NoError(t, err)

	logger := zap.NewNop()
	st := store.New(backend, logger)
	c := catalog.New(st, logger)
	cartService := cart.NewService(st, c, notify.Discard{}, logger)
	wishlistService := wishlist.NewService(st, c, notify.Discard{}, logger)

	router := chi.NewRouter()
	session := middleware.SessionScope()
	NewCartHandler(cartService, logger).RegisterRoutes(router, session)
	NewWishlistHandler(wishlistService, logger).RegisterRoutes(router, session)

	return router, c
}

func seedProduct(t *testing.T, c *catalog.Catalog, remaining int) *domain.Product {
	t.Helper()

	p, err := c.Create(context.Background(), domain.Product{
		Name:       "Clay Vase",
		PricePaise: 150000,
		Inventory: &domain.InventoryRecord{
			Total:             10,
			Remaining:         remaining,
			LowStockThreshold: 3,
		},
	})
	require.NoError(t, err)
	return p
}

func doJSON(t *testing.T, router chi.Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.SessionHeader, "test-session")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCartFlow(t *testing.T) {
	router, c := newTestRouter(t)
	p := seedProduct(t, c, 5)

	// Add two units
	rec := doJSON(t, router, "POST", "/api/cart/items", AddItemRequest{ProductID: p.ID, Quantity: 2})
	require.Equal(t, http.StatusOK, rec.Code)

	var snap cart.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, 2, snap.TotalItems)
	assert.Equal(t, int64(300000), snap.TotalPaise)
	assert.Equal(t, "₹3,000", snap.TotalText)
	assert.True(t, snap.Persisted)

	// Exceeding stock is a conflict
	rec = doJSON(t, router, "POST", "/api/cart/items", AddItemRequest{ProductID: p.ID, Quantity: 4})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Quantity can be set outright
	rec = doJSON(t, router, "PUT", "/api/cart/items/"+p.ID, SetQuantityRequest{Quantity: 5})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, 5, snap.TotalItems)

	// Zero removes the line
	rec = doJSON(t, router, "PUT", "/api/cart/items/"+p.ID, SetQuantityRequest{Quantity: 0})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Empty(t, snap.Lines)
}

func TestCartRejectionsOverHTTP(t *testing.T) {
	router, c := newTestRouter(t)

	rec := doJSON(t, router, "POST", "/api/cart/items", AddItemRequest{ProductID: "nope", Quantity: 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	upcoming, err := c.Create(context.Background(), domain.Product{Name: "Soon", PricePaise: 100, IsUpcoming: true})
	require.NoError(t, err)

	rec = doJSON(t, router, "POST", "/api/cart/items", AddItemRequest{ProductID: upcoming.ID, Quantity: 1})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Missing product_id fails validation
	rec = doJSON(t, router, "POST", "/api/cart/items", map[string]any{"quantity": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrderTextEndpoint(t *testing.T) {
	router, c := newTestRouter(t)
	p := seedProduct(t, c, 5)

	doJSON(t, router, "POST", "/api/cart/items", AddItemRequest{ProductID: p.ID, Quantity: 2})

	rec := doJSON(t, router, "GET", "/api/cart/order-text", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp OrderTextResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Text, "Clay Vase x2")
	assert.Contains(t, resp.Text, "Total: ₹3,000")
}

func TestWishlistOverHTTP(t *testing.T) {
	router, c := newTestRouter(t)
	p := seedProduct(t, c, 5)

	rec := doJSON(t, router, "POST", "/api/wishlist/items", WishlistItemRequest{ProductID: p.ID})
	require.Equal(t, http.StatusOK, rec.Code)

	// Adding twice keeps one entry
	rec = doJSON(t, router, "POST", "/api/wishlist/items", WishlistItemRequest{ProductID: p.ID})
	require.Equal(t, http.StatusOK, rec.Code)

	var snap wishlist.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, []string{p.ID}, snap.ProductIDs)

	rec = doJSON(t, router, "GET", "/api/wishlist", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var products []ProductView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &products))
	require.Len(t, products, 1)
	assert.Equal(t, "₹1,500", products[0].PriceText)
}
