package cart

import (
	"context"
	"encoding/json"
	"log"

	"storefront/internal/domain"
	"storefront/internal/storage"
)

// storageKey is the fixed snapshot key. One cart per device, not per user.
const storageKey = "cart"

// Engine tracks desired purchase quantities against last-known stock
// ceilings, independent of server state until checkout. In-memory lines are
// authoritative; the persisted snapshot trails them by at most one mutation.
// Callers must serialize mutations: the merge is read-modify-write with no
// compare-and-swap guard.
type Engine struct {
	store  storage.Store
	logger *log.Logger
	lines  []domain.CartLine
}

// New restores the persisted snapshot if one exists. A missing or corrupt
// snapshot yields an empty cart, never an error.
func New(ctx context.Context, store storage.Store, logger *log.Logger) *Engine {
	e := &Engine{store: store, logger: logger}
	blob, ok, err := store.Get(ctx, storageKey)
	if err != nil || !ok {
		return e
	}
	if err := json.Unmarshal([]byte(blob), &e.lines); err != nil {
		logger.Printf("cart snapshot: %v: %v", domain.ErrCorrupt, err)
		e.lines = nil
	}
	return e
}

// Add merges quantity units of product into the cart. The freshest stock
// ceiling wins: a ceiling supplied on this call replaces the remembered one.
// Returns false and leaves the cart untouched when the merged quantity would
// exceed the effective ceiling.
func (e *Engine) Add(ctx context.Context, product domain.Product, quantity int) bool {
	if quantity <= 0 {
		return false
	}

	for i, line := range e.lines {
		if line.ProductID != product.ID {
			continue
		}
		ceiling := line.MaxStock
		if product.AvailableQuantity != nil {
			ceiling = product.AvailableQuantity
		}
		next := line.Quantity + quantity
		if ceiling != nil && next > *ceiling {
			return false
		}
		// The merge refreshes quantity and ceiling only; the first-seen
		// price stays.
		e.lines[i].Quantity = next
		e.lines[i].MaxStock = ceiling
		e.persist(ctx)
		return true
	}

	if product.AvailableQuantity != nil && quantity > *product.AvailableQuantity {
		return false
	}
	e.lines = append(e.lines, domain.CartLine{
		ProductID:      product.ID,
		Name:           product.Name,
		UnitPriceCents: product.PriceCents(),
		Quantity:       quantity,
		MaxStock:       product.AvailableQuantity,
	})
	e.persist(ctx)
	return true
}

// SetQuantity sets the absolute quantity of an existing line, clamped to the
// remembered stock ceiling when one is bounded. Zero or negative removes the
// line entirely; this is the decrement-to-zero path.
func (e *Engine) SetQuantity(ctx context.Context, productID int64, quantity int) {
	if quantity <= 0 {
		e.Remove(ctx, productID)
		return
	}
	for i := range e.lines {
		if e.lines[i].ProductID == productID {
			if max := e.lines[i].MaxStock; max != nil && quantity > *max {
				quantity = *max
			}
			e.lines[i].Quantity = quantity
			e.persist(ctx)
			return
		}
	}
}

// Remove deletes the line for productID if present.
func (e *Engine) Remove(ctx context.Context, productID int64) {
	for i, line := range e.lines {
		if line.ProductID == productID {
			e.lines = append(e.lines[:i], e.lines[i+1:]...)
			e.persist(ctx)
			return
		}
	}
}

// Clear empties the cart. Called after a completed checkout.
func (e *Engine) Clear(ctx context.Context) {
	if len(e.lines) == 0 {
		return
	}
	e.lines = nil
	e.persist(ctx)
}

// TotalCents recomputes the cart total from the lines on every call.
func (e *Engine) TotalCents() int64 {
	var total int64
	for _, line := range e.lines {
		total += line.LineTotalCents()
	}
	return total
}

// Items returns a copy of the current lines in insertion order.
func (e *Engine) Items() []domain.CartLine {
	out := make([]domain.CartLine, len(e.lines))
	copy(out, e.lines)
	return out
}

// Len reports the number of lines.
func (e *Engine) Len() int {
	return len(e.lines)
}

// CheckoutItems renders the lines as the invoice endpoints expect them.
func (e *Engine) CheckoutItems() []domain.CheckoutItem {
	items := make([]domain.CheckoutItem, 0, len(e.lines))
	for _, line := range e.lines {
		items = append(items, domain.CheckoutItem{ProductID: line.ProductID, Quantity: line.Quantity})
	}
	return items
}

// persist writes the whole snapshot; an empty cart deletes the key. Failures
// are logged only, the in-memory state stays authoritative.
func (e *Engine) persist(ctx context.Context) {
	if len(e.lines) == 0 {
		if err := e.store.Delete(ctx, storageKey); err != nil {
			e.logger.Printf("delete cart snapshot: %v", err)
		}
		return
	}
	blob, err := json.Marshal(e.lines)
	if err != nil {
		e.logger.Printf("encode cart snapshot: %v", err)
		return
	}
	if err := e.store.Set(ctx, storageKey, string(blob)); err != nil {
		e.logger.Printf("write cart snapshot: %v", err)
	}
}
