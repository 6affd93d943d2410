// Package cart implements the per-session shopping cart. Quantities
// are validated against current stock on every mutation, but stock is
// never reserved or decremented by the cart itself: a line expresses
// "available to order", not "held". Decrements happen only when an
// order is actually fulfilled.
package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shopkart/internal/catalog"
	"shopkart/internal/domain"
	"shopkart/internal/money"
	"shopkart/internal/notify"
	"shopkart/internal/store"

	"go.uber.org/zap"
)

var (
	ErrProductNotFound     = catalog.ErrProductNotFound
	ErrProductNotAvailable = errors.New("product is not yet available to order")
	ErrInsufficientStock   = catalog.ErrInsufficientStock
	ErrInvalidQuantity     = catalog.ErrInvalidQuantity
)

// unlimited is the effective stock for products without an inventory
// record.
const unlimited = int(^uint(0) >> 1)

// Snapshot is the cart state returned from every operation. Persisted
// is false when the mutation could not be written through to storage;
// the in-memory result is still returned optimistically.
type Snapshot struct {
	Scope      string            `json:"scope"`
	Lines      []domain.CartLine `json:"lines"`
	TotalItems int               `json:"total_items"`
	TotalPaise int64             `json:"total_paise"`
	TotalText  string            `json:"total_text"`
	Persisted  bool              `json:"persisted"`
}

// Service is the cart service. One instance serves every session;
// the scope argument selects whose cart a call operates on.
type Service struct {
	store   *store.Store
	catalog *catalog.Catalog
	sink    notify.Sink
	logger  *zap.Logger
}

// NewService creates a cart service.
func NewService(s *store.Store, c *catalog.Catalog, sink notify.Sink, logger *zap.Logger) *Service {
	return &Service{store: s, catalog: c, sink: sink, logger: logger}
}

func cartKey(scope string) string {
	if scope == "" {
		scope = "guest"
	}
	return "cart:" + scope
}

// AddItem adds quantity units of a product to the cart. Rejections in
// priority order: unknown product, product not yet orderable, and the
// cumulative quantity (existing line + requested) exceeding remaining
// stock. When a line already exists its price snapshot is kept; the
// first-add price wins.
func (s *Service) AddItem(ctx context.Context, scope, productID string, quantity int) (*Snapshot, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	p, err := s.catalog.ByID(ctx, productID)
	if err != nil {
		return nil, ErrProductNotFound
	}
	if p.IsUpcoming {
		return nil, ErrProductNotAvailable
	}

	lines := s.loadLines(ctx, scope)

	existing := -1
	for i, line := range lines {
		if line.ProductID == productID {
			existing = i
			break
		}
	}

	cumulative := quantity
	if existing >= 0 {
		cumulative += lines[existing].Quantity
	}
	if remaining := availability(p); cumulative > remaining {
		s.sink.Publish(notify.Event{
			Level:   notify.LevelWarning,
			Code:    "insufficient_stock",
			Message: fmt.Sprintf("only %d left in stock for %s", remaining, p.Name),
		})
		return nil, ErrInsufficientStock
	}

	if existing >= 0 {
		lines[existing].Quantity = cumulative
	} else {
		lines = append(lines, domain.CartLine{
			ProductID:      productID,
			Quantity:       quantity,
			UnitPricePaise: p.PricePaise,
		})
	}

	snap := s.persist(ctx, scope, lines)
	s.sink.Publish(notify.Event{
		Level:   notify.LevelSuccess,
		Code:    "cart_item_added",
		Message: fmt.Sprintf("%s added to cart", p.Name),
	})
	return snap, nil
}

// SetQuantity sets a line's quantity outright. Zero or negative
// removes the line; a quantity above current stock is rejected (the UI
// should clamp, but the service is the final authority).
func (s *Service) SetQuantity(ctx context.Context, scope, productID string, quantity int) (*Snapshot, error) {
	if quantity <= 0 {
		return s.RemoveItem(ctx, scope, productID), nil
	}

	p, err := s.catalog.ByID(ctx, productID)
	if err != nil {
		return nil, ErrProductNotFound
	}
	if remaining := availability(p); quantity > remaining {
		s.sink.Publish(notify.Event{
			Level:   notify.LevelWarning,
			Code:    "insufficient_stock",
			Message: fmt.Sprintf("only %d left in stock for %s", remaining, p.Name),
		})
		return nil, ErrInsufficientStock
	}

	lines := s.loadLines(ctx, scope)
	found := false
	for i := range lines {
		if lines[i].ProductID == productID {
			lines[i].Quantity = quantity
			found = true
			break
		}
	}
	if !found {
		lines = append(lines, domain.CartLine{
			ProductID:      productID,
			Quantity:       quantity,
			UnitPricePaise: p.PricePaise,
		})
	}

	return s.persist(ctx, scope, lines), nil
}

// RemoveItem deletes a product's line. Removing an absent line is a
// no-op.
func (s *Service) RemoveItem(ctx context.Context, scope, productID string) *Snapshot {
	lines := s.loadLines(ctx, scope)
	for i := range lines {
		if lines[i].ProductID == productID {
			lines = append(lines[:i], lines[i+1:]...)
			break
		}
	}
	return s.persist(ctx, scope, lines)
}

// Clear empties the cart.
func (s *Service) Clear(ctx context.Context, scope string) *Snapshot {
	return s.persist(ctx, scope, []domain.CartLine{})
}

// Snapshot returns the current cart, reconciled against the catalog.
func (s *Service) Snapshot(ctx context.Context, scope string) *Snapshot {
	return s.snapshot(scope, s.loadLines(ctx, scope), true)
}

// TotalItemCount sums line quantities.
func (s *Service) TotalItemCount(ctx context.Context, scope string) int {
	total := 0
	for _, line := range s.loadLines(ctx, scope) {
		total += line.Quantity
	}
	return total
}

// TotalPrice sums snapshotted unit prices times quantities, in paisa.
func (s *Service) TotalPrice(ctx context.Context, scope string) int64 {
	var total int64
	for _, line := range s.loadLines(ctx, scope) {
		total = money.Add(total, money.MultiplyByQuantity(line.UnitPricePaise, line.Quantity))
	}
	return total
}

// OrderText renders a human-readable order summary for handoff to an
// out-of-band ordering channel.
func (s *Service) OrderText(ctx context.Context, scope string) string {
	lines := s.loadLines(ctx, scope)
	if len(lines) == 0 {
		return "Your cart is empty."
	}

	var b strings.Builder
	b.WriteString("Order summary:\n")

	var total int64
	for i, line := range lines {
		name := line.ProductID
		if p, err := s.catalog.ByID(ctx, line.ProductID); err == nil {
			name = p.Name
		}
		lineTotal := money.MultiplyByQuantity(line.UnitPricePaise, line.Quantity)
		total = money.Add(total, lineTotal)
		fmt.Fprintf(&b, "%d. %s x%d — %s\n", i+1, name, line.Quantity, money.Format(lineTotal))
	}

	fmt.Fprintf(&b, "Total: %s", money.Format(total))
	return b.String()
}

// loadLines reads the cart document and reconciles it against current
// catalog state: lines for deleted products are dropped and quantities
// are clamped to remaining stock, since stock can shrink underneath a
// cart from another session against the same storage. Changes are
// written back so the persisted cart converges too.
func (s *Service) loadLines(ctx context.Context, scope string) []domain.CartLine {
	lines := store.Get(ctx, s.store, cartKey(scope), []domain.CartLine{})

	reconciled := lines[:0:0]
	changed := false
	for _, line := range lines {
		p, err := s.catalog.ByID(ctx, line.ProductID)
		if err != nil {
			changed = true
			continue
		}
		if remaining := availability(p); line.Quantity > remaining {
			if remaining <= 0 {
				changed = true
				continue
			}
			line.Quantity = remaining
			changed = true
		}
		reconciled = append(reconciled, line)
	}

	if changed {
		s.store.Set(ctx, cartKey(scope), reconciled)
	}
	return reconciled
}

// persist writes the cart and builds the snapshot. A failed write is
// reported through the sink and reflected in Snapshot.Persisted, not
// returned as an error: the caller still gets the optimistic result.
func (s *Service) persist(ctx context.Context, scope string, lines []domain.CartLine) *Snapshot {
	persisted := s.store.Set(ctx, cartKey(scope), lines)
	if !persisted {
		s.sink.Publish(notify.Event{
			Level:   notify.LevelError,
			Code:    "storage_unavailable",
			Message: "could not save your cart",
		})
	}

	s.logger.Debug("cart persisted",
		zap.String("scope", scope),
		zap.Int("lines", len(lines)),
		zap.Bool("persisted", persisted),
	)
	return s.snapshot(scope, lines, persisted)
}

func (s *Service) snapshot(scope string, lines []domain.CartLine, persisted bool) *Snapshot {
	snap := &Snapshot{
		Scope:     scope,
		Lines:     lines,
		Persisted: persisted,
	}
	for _, line := range lines {
		snap.TotalItems += line.Quantity
		snap.TotalPaise = money.Add(snap.TotalPaise, money.MultiplyByQuantity(line.UnitPricePaise, line.Quantity))
	}
	snap.TotalText = money.Format(snap.TotalPaise)
	return snap
}

// availability is the stock a cart line may claim. Products without an
// inventory record are not stock-tracked and never limit the cart.
func availability(p *domain.Product) int {
	if p.Inventory == nil {
		return unlimited
	}
	if p.Inventory.Remaining < 0 {
		return 0
	}
	return p.Inventory.Remaining
}
