package transport

import (
	"net/http"

	"shopkart/internal/cart"
	"shopkart/internal/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AddItemRequest represents the add-to-cart payload
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=0"`
}

// SetQuantityRequest represents the change-quantity payload. Zero or
// negative removes the line.
type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// OrderTextResponse carries the order summary for out-of-band handoff
type OrderTextResponse struct {
	Text string `json:"text"`
}

// CartHandler handles HTTP requests for cart operations
type CartHandler struct {
	cart   *cart.Service
	logger *zap.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService *cart.Service, logger *zap.Logger) *CartHandler {
	return &CartHandler{cart: cartService, logger: logger}
}

// RegisterRoutes registers all cart routes
func (h *CartHandler) RegisterRoutes(r chi.Router, sessionMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/cart", func(r chi.Router) {
		r.Use(sessionMiddleware)

		r.Get("/", h.GetCart)
		r.Delete("/", h.ClearCart)
		r.Post("/items", h.AddItem)
		r.Put("/items/{productID}", h.SetQuantity)
		r.Delete("/items/{productID}", h.RemoveItem)
		r.Get("/order-text", h.OrderText)
	})
}

// GetCart returns the current cart snapshot
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	scope := h.scope(r)
	middleware.RespondWithJSON(w, http.StatusOK, h.cart.Snapshot(r.Context(), scope))
}

// AddItem adds a product to the cart
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Quantity == 0 {
		req.Quantity = 1
	}

	snap, err := h.cart.AddItem(r.Context(), h.scope(r), req.ProductID, req.Quantity)
	if err != nil {
		h.respondCartError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, snap)
}

// SetQuantity sets a cart line's quantity outright
func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	var req SetQuantityRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	snap, err := h.cart.SetQuantity(r.Context(), h.scope(r), chi.URLParam(r, "productID"), req.Quantity)
	if err != nil {
		h.respondCartError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, snap)
}

// RemoveItem removes a product's line from the cart
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	snap := h.cart.RemoveItem(r.Context(), h.scope(r), chi.URLParam(r, "productID"))
	middleware.RespondWithJSON(w, http.StatusOK, snap)
}

// ClearCart empties the cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, h.cart.Clear(r.Context(), h.scope(r)))
}

// OrderText returns the human-readable order summary
func (h *CartHandler) OrderText(w http.ResponseWriter, r *http.Request) {
	text := h.cart.OrderText(r.Context(), h.scope(r))
	middleware.RespondWithJSON(w, http.StatusOK, OrderTextResponse{Text: text})
}

func (h *CartHandler) scope(r *http.Request) string {
	scope, _ := middleware.GetSessionScope(r.Context())
	return scope
}

func (h *CartHandler) respondCartError(w http.ResponseWriter, err error) {
	switch err {
	case cart.ErrProductNotFound:
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
	case cart.ErrProductNotAvailable:
		middleware.RespondWithError(w, http.StatusConflict, "product is not yet available to order")
	case cart.ErrInsufficientStock:
		middleware.RespondWithError(w, http.StatusConflict, "insufficient stock")
	case cart.ErrInvalidQuantity:
		middleware.RespondWithError(w, http.StatusBadRequest, "quantity must be at least 1")
	default:
		h.logger.Error("Cart operation failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
