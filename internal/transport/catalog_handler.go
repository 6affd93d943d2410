package transport

import (
	"net/http"

	"shopkart/internal/catalog"
	"shopkart/internal/domain"
	"shopkart/internal/middleware"
	"shopkart/internal/money"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CreateProductRequest represents the admin product creation payload.
// Prices arrive in rupees and are converted to paisa at the boundary.
type CreateProductRequest struct {
	Name        string            `json:"name" validate:"required"`
	Description string            `json:"description"`
	Category    string            `json:"category"`
	ImageURL    string            `json:"image_url"`
	PriceRupees float64           `json:"price" validate:"gte=0"`
	IsUpcoming  bool              `json:"is_upcoming"`
	IsFeatured  bool              `json:"is_featured"`
	Inventory   *InventoryRequest `json:"inventory,omitempty"`
}

// InventoryRequest represents inventory fields in admin payloads
type InventoryRequest struct {
	Total             int `json:"total" validate:"gte=0"`
	Remaining         int `json:"remaining" validate:"gte=0"`
	LowStockThreshold int `json:"low_stock_threshold" validate:"gte=0"`
}

// UpdateProductRequest represents a partial product update. Absent
// fields are left untouched.
type UpdateProductRequest struct {
	Name        *string           `json:"name,omitempty"`
	Description *string           `json:"description,omitempty"`
	Category    *string           `json:"category,omitempty"`
	ImageURL    *string           `json:"image_url,omitempty"`
	PriceRupees *float64          `json:"price,omitempty"`
	IsUpcoming  *bool             `json:"is_upcoming,omitempty"`
	IsFeatured  *bool             `json:"is_featured,omitempty"`
	Inventory   *InventoryRequest `json:"inventory,omitempty"`
}

// RestockRequest represents an admin restock payload. A zero delta is
// a valid no-op; the ledger decides what the delta may do.
type RestockRequest struct {
	Delta int `json:"delta"`
}

// ThresholdRequest represents a low-stock threshold update
type ThresholdRequest struct {
	Threshold int `json:"threshold" validate:"gte=0"`
}

// FulfillRequest decrements stock when an order is fulfilled
type FulfillRequest struct {
	Quantity int `json:"quantity" validate:"required,gte=1"`
}

// StockResponse reports the stock level after a ledger operation
type StockResponse struct {
	ProductID string `json:"product_id"`
	Remaining int    `json:"remaining"`
}

// ProductView is the product representation returned to clients
type ProductView struct {
	ID          string                  `json:"id"`
	Name        string                  `json:"name"`
	Description string                  `json:"description"`
	Category    string                  `json:"category"`
	ImageURL    string                  `json:"image_url"`
	PricePaise  int64                   `json:"price_paise"`
	PriceText   string                  `json:"price_text"`
	IsUpcoming  bool                    `json:"is_upcoming"`
	IsFeatured  bool                    `json:"is_featured"`
	Inventory   *domain.InventoryRecord `json:"inventory,omitempty"`
	LowStock    bool                    `json:"low_stock"`
	OutOfStock  bool                    `json:"out_of_stock"`
}

func viewProduct(p domain.Product) ProductView {
	return ProductView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		ImageURL:    p.ImageURL,
		PricePaise:  p.PricePaise,
		PriceText:   money.Format(p.PricePaise),
		IsUpcoming:  p.IsUpcoming,
		IsFeatured:  p.IsFeatured,
		Inventory:   p.Inventory,
		LowStock:    p.Inventory.LowStock(),
		OutOfStock:  p.Inventory.OutOfStock(),
	}
}

func viewProducts(products []domain.Product) []ProductView {
	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, viewProduct(p))
	}
	return views
}

// CatalogHandler handles HTTP requests for the catalog and inventory
type CatalogHandler struct {
	catalog *catalog.Catalog
	ledger  *catalog.InventoryLedger
	logger  *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(c *catalog.Catalog, l *catalog.InventoryLedger, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: c, ledger: l, logger: logger}
}

// RegisterRoutes registers the public catalog routes and the admin
// inventory routes behind the auth middleware
func (h *CatalogHandler) RegisterRoutes(r chi.Router, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Get("/{id}", h.GetProduct)
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(adminMiddleware)

		r.Post("/products", h.CreateProduct)
		r.Put("/products/{id}", h.UpdateProduct)
		r.Delete("/products/{id}", h.DeleteProduct)
		r.Post("/products/{id}/restock", h.Restock)
		r.Put("/products/{id}/low-stock-threshold", h.SetThreshold)
		r.Post("/products/{id}/fulfill", h.Fulfill)
		r.Get("/inventory/stats", h.InventoryStats)
		r.Get("/inventory/low-stock", h.LowStock)
	})
}

// ListProducts returns all products, optionally filtered by category
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	var products []domain.Product
	if category := r.URL.Query().Get("category"); category != "" {
		products = h.catalog.ByCategory(r.Context(), category)
	} else {
		products = h.catalog.List(r.Context())
	}

	middleware.RespondWithJSON(w, http.StatusOK, viewProducts(products))
}

// GetProduct returns a single product by id
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.ByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, viewProduct(*p))
}

// CreateProduct handles admin product creation
func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product := domain.Product{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		PricePaise:  money.ToMinorUnits(req.PriceRupees),
		IsUpcoming:  req.IsUpcoming,
		IsFeatured:  req.IsFeatured,
	}
	if req.Inventory != nil {
		product.Inventory = &domain.InventoryRecord{
			Total:             req.Inventory.Total,
			Remaining:         req.Inventory.Remaining,
			LowStockThreshold: req.Inventory.LowStockThreshold,
		}
	}

	created, err := h.catalog.Create(r.Context(), product)
	if err != nil {
		h.respondCatalogError(w, err)
		return
	}

	h.logger.Info("Product created", zap.String("product_id", created.ID))
	middleware.RespondWithJSON(w, http.StatusCreated, viewProduct(*created))
}

// UpdateProduct handles admin partial product updates
func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req UpdateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	patch := domain.ProductPatch{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		IsUpcoming:  req.IsUpcoming,
		IsFeatured:  req.IsFeatured,
	}
	if req.PriceRupees != nil {
		paise := money.ToMinorUnits(*req.PriceRupees)
		patch.PricePaise = &paise
	}
	if req.Inventory != nil {
		patch.Inventory = &domain.InventoryRecord{
			Total:             req.Inventory.Total,
			Remaining:         req.Inventory.Remaining,
			LowStockThreshold: req.Inventory.LowStockThreshold,
		}
	}

	updated, err := h.catalog.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		h.respondCatalogError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, viewProduct(*updated))
}

// DeleteProduct handles admin product deletion
func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondCatalogError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

// Restock handles admin stock additions
func (h *CatalogHandler) Restock(w http.ResponseWriter, r *http.Request) {
	var req RestockRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	productID := chi.URLParam(r, "id")
	remaining, err := h.ledger.Restock(r.Context(), productID, req.Delta)
	if err != nil {
		h.respondCatalogError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, StockResponse{ProductID: productID, Remaining: remaining})
}

// SetThreshold updates a product's low-stock threshold
func (h *CatalogHandler) SetThreshold(w http.ResponseWriter, r *http.Request) {
	var req ThresholdRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.ledger.SetLowStockThreshold(r.Context(), chi.URLParam(r, "id"), req.Threshold); err != nil {
		h.respondCatalogError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "threshold updated"})
}

// Fulfill decrements stock for a fulfilled order. This is the only
// caller of the ledger's decrement; carts never reserve stock.
func (h *CatalogHandler) Fulfill(w http.ResponseWriter, r *http.Request) {
	var req FulfillRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	productID := chi.URLParam(r, "id")
	remaining, err := h.ledger.Decrement(r.Context(), productID, req.Quantity)
	if err != nil {
		h.respondCatalogError(w, err)
		return
	}

	h.logger.Info("Order fulfilled",
		zap.String("product_id", productID),
		zap.Int("quantity", req.Quantity),
		zap.Int("remaining", remaining),
	)
	middleware.RespondWithJSON(w, http.StatusOK, StockResponse{ProductID: productID, Remaining: remaining})
}

// InventoryStats returns aggregate stock numbers for the admin dashboard
func (h *CatalogHandler) InventoryStats(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, h.catalog.AggregateStats(r.Context()))
}

// LowStock returns products running low but not yet out of stock
func (h *CatalogHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, viewProducts(h.catalog.LowStockList(r.Context())))
}

func (h *CatalogHandler) respondCatalogError(w http.ResponseWriter, err error) {
	switch err {
	case catalog.ErrProductNotFound:
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
	case catalog.ErrInvalidProduct, catalog.ErrInvalidQuantity, catalog.ErrInvalidThreshold:
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
	case catalog.ErrInsufficientStock:
		middleware.RespondWithError(w, http.StatusConflict, "insufficient stock")
	case catalog.ErrInvalidDelta:
		middleware.RespondWithError(w, http.StatusConflict, "restock would exceed total capacity")
	case catalog.ErrNoInventory:
		middleware.RespondWithError(w, http.StatusConflict, "product stock is not tracked")
	case catalog.ErrNotPersisted:
		middleware.RespondWithError(w, http.StatusServiceUnavailable, "could not save changes")
	default:
		h.logger.Error("Catalog operation failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
