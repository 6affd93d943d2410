package transport

import (
	"net/http"

	"shopkart/internal/middleware"
	"shopkart/internal/wishlist"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// WishlistItemRequest represents the add-to-wishlist payload
type WishlistItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}

// WishlistHandler handles HTTP requests for wishlist operations
type WishlistHandler struct {
	wishlist *wishlist.Service
	logger   *zap.Logger
}

// NewWishlistHandler creates a new WishlistHandler
func NewWishlistHandler(wishlistService *wishlist.Service, logger *zap.Logger) *WishlistHandler {
	return &WishlistHandler{wishlist: wishlistService, logger: logger}
}

// RegisterRoutes registers all wishlist routes
func (h *WishlistHandler) RegisterRoutes(r chi.Router, sessionMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/wishlist", func(r chi.Router) {
		r.Use(sessionMiddleware)

		r.Get("/", h.GetWishlist)
		r.Post("/items", h.AddItem)
		r.Delete("/items/{productID}", h.RemoveItem)
	})
}

// GetWishlist returns the wishlist hydrated with catalog products
func (h *WishlistHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	scope := h.scope(r)
	products := h.wishlist.List(r.Context(), scope)
	middleware.RespondWithJSON(w, http.StatusOK, viewProducts(products))
}

// AddItem puts a product on the wishlist; adding twice is a no-op
func (h *WishlistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req WishlistItemRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	snap := h.wishlist.Add(r.Context(), h.scope(r), req.ProductID)
	middleware.RespondWithJSON(w, http.StatusOK, snap)
}

// RemoveItem takes a product off the wishlist
func (h *WishlistHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	snap := h.wishlist.Remove(r.Context(), h.scope(r), chi.URLParam(r, "productID"))
	middleware.RespondWithJSON(w, http.StatusOK, snap)
}

func (h *WishlistHandler) scope(r *http.Request) string {
	scope, _ := middleware.GetSessionScope(r.Context())
	return scope
}
