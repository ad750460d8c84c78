package service

import (
	"github.com/vastrakart/vastrakart-backend/internal/app/model"
)

// ChangeStatus tags the outcome of a cart mutation.
type ChangeStatus string

const (
	ChangeAdded    ChangeStatus = "added"
	ChangeMerged   ChangeStatus = "merged"
	ChangeRemoved  ChangeStatus = "removed"
	ChangeCleared  ChangeStatus = "cleared"
	ChangeNoop     ChangeStatus = "noop"
	ChangeRejected ChangeStatus = "rejected"
)

// Rejection reasons carried in ChangeResult. Stock exhaustion is an expected,
// user-recoverable condition, never a Go error.
const (
	ReasonUnavailable = "unavailable"
)

// ChangeResult reports how a requested cart mutation was satisfied. The
// presentation layer maps it to success/info/error feedback; the store itself
// never renders anything.
type ChangeResult struct {
	Status   ChangeStatus `json:"status"`
	Quantity int          `json:"quantity"`          // committed quantity after the change, 0 when absent
	Clamped  bool         `json:"clamped,omitempty"` // request exceeded the effective maximum
	Limit    int          `json:"limit,omitempty"`   // effective maximum, set when clamped
	Reason   string       `json:"reason,omitempty"`  // rejection reason
}

// Changed reports whether the mutation altered cart state.
func (r ChangeResult) Changed() bool {
	switch r.Status {
	case ChangeAdded, ChangeMerged, ChangeRemoved, ChangeCleared:
		return true
	}
	return false
}

// CartStore holds one identity's line items in insertion order and enforces
// the quantity invariants: at most one line item per (product, variant) key,
// quantities always >= 1, requests clamped to the effective maximum.
//
// The store is not safe for concurrent use; CartSession serializes access.
type CartStore struct {
	items []model.LineItem
}

func NewCartStore() *CartStore {
	return &CartStore{}
}

func normalizeQuantity(q int) int {
	if q < 1 {
		return 1
	}
	return q
}

// ceiling is the clamp target for commits: stores never go below one item,
// the zero-availability case having been rejected or removed beforehand.
func (a Availability) ceiling() int {
	if a.Max < 1 {
		return 1
	}
	return a.Max
}

func (s *CartStore) find(productID uint, normalizedSize string) int {
	for i, item := range s.items {
		if item.ID == productID && item.Size == normalizedSize {
			return i
		}
	}
	return -1
}

// Add puts a product into the cart, merging with an existing line item for the
// same (product, variant) key. The committed quantity never exceeds the
// effective maximum; a product with zero effective availability is rejected
// without state change.
func (s *CartStore) Add(p model.ProductSnapshot, variantToken string, requestedQuantity int) ChangeResult {
	requestedQuantity = normalizeQuantity(requestedQuantity)

	max := EffectiveMax(p, variantToken)
	if !max.Unbounded && max.Max <= 0 {
		return ChangeResult{Status: ChangeRejected, Reason: ReasonUnavailable}
	}

	size := model.NormalizeVariant(variantToken)
	idx := s.find(p.ID, size)
	if idx >= 0 {
		existing := &s.items[idx]
		next := existing.Quantity + requestedQuantity
		if !max.Unbounded && next > max.ceiling() {
			next = max.ceiling()
		}
		if next == existing.Quantity {
			// already saturated at the limit
			return ChangeResult{Status: ChangeNoop, Quantity: existing.Quantity, Clamped: true, Limit: max.Max}
		}
		clamped := next < existing.Quantity+requestedQuantity
		mergeTaxMetadata(existing, p)
		existing.Quantity = next
		result := ChangeResult{Status: ChangeMerged, Quantity: next, Clamped: clamped}
		if clamped {
			result.Limit = max.Max
		}
		return result
	}

	initial := requestedQuantity
	if !max.Unbounded && initial > max.ceiling() {
		initial = max.ceiling()
	}
	if initial <= 0 {
		return ChangeResult{Status: ChangeRejected, Reason: ReasonUnavailable}
	}

	s.items = append(s.items, model.LineItem{
		ProductSnapshot: p,
		Quantity:        initial,
		Size:            size,
	})
	result := ChangeResult{Status: ChangeAdded, Quantity: initial, Clamped: initial < requestedQuantity}
	if result.Clamped {
		result.Limit = max.Max
	}
	return result
}

// mergeTaxMetadata refreshes pass-through tax fields on merge: incoming values
// win, absent ones fall back to what the stored item already carries.
func mergeTaxMetadata(existing *model.LineItem, incoming model.ProductSnapshot) {
	if incoming.HSNCode != "" {
		existing.HSNCode = incoming.HSNCode
	}
	if incoming.GSTRate != nil {
		existing.GSTRate = incoming.GSTRate
	}
}

// UpdateQuantity sets the quantity of an existing line item, clamped against
// the stored item's own snapshot. A requested quantity of zero or less removes
// the item; a missing item is a no-op.
func (s *CartStore) UpdateQuantity(productID uint, variantToken string, quantity int) ChangeResult {
	idx := s.find(productID, model.NormalizeVariant(variantToken))
	if idx < 0 {
		return ChangeResult{Status: ChangeNoop}
	}
	if quantity <= 0 {
		s.removeAt(idx)
		return ChangeResult{Status: ChangeRemoved}
	}

	item := &s.items[idx]
	max := EffectiveMax(item.ProductSnapshot, item.Size)
	if !max.Unbounded && max.Max <= 0 {
		// the stored snapshot no longer admits any quantity
		s.removeAt(idx)
		return ChangeResult{Status: ChangeRemoved, Reason: ReasonUnavailable}
	}

	next := quantity
	if !max.Unbounded && next > max.ceiling() {
		next = max.ceiling()
	}
	if next == item.Quantity && next == quantity {
		return ChangeResult{Status: ChangeNoop, Quantity: item.Quantity}
	}
	item.Quantity = next
	result := ChangeResult{Status: ChangeMerged, Quantity: next, Clamped: next != quantity}
	if result.Clamped {
		result.Limit = max.Max
	}
	return result
}

func (s *CartStore) removeAt(idx int) {
	s.items = append(s.items[:idx], s.items[idx+1:]...)
}

// Remove deletes the line item matching the (product, variant) key. Idempotent.
func (s *CartStore) Remove(productID uint, variantToken string) ChangeResult {
	idx := s.find(productID, model.NormalizeVariant(variantToken))
	if idx < 0 {
		return ChangeResult{Status: ChangeNoop}
	}
	s.removeAt(idx)
	return ChangeResult{Status: ChangeRemoved}
}

// RemoveMany prunes every line item matched by the given keys, tolerating
// partial keys (SKU fallback when the product ID is absent). Used after order
// placement to drop purchased items. Returns the number of items removed.
func (s *CartStore) RemoveMany(keys []model.LineItemKey) int {
	if len(keys) == 0 {
		return 0
	}
	kept := s.items[:0]
	removed := 0
	for _, item := range s.items {
		matched := false
		for _, key := range keys {
			if key.Matches(item) {
				matched = true
				break
			}
		}
		if matched {
			removed++
			continue
		}
		kept = append(kept, item)
	}
	s.items = kept
	return removed
}

// Clear empties the store.
func (s *CartStore) Clear() {
	s.items = nil
}

// Replace swaps the store contents wholesale, used when loading a persisted
// partition. Variant tokens are re-normalized in case the blob predates a
// normalization change.
func (s *CartStore) Replace(items []model.LineItem) {
	s.items = make([]model.LineItem, 0, len(items))
	for _, item := range items {
		if item.Quantity < 1 {
			continue
		}
		item.Size = model.NormalizeVariant(item.Size)
		s.items = append(s.items, item)
	}
}

// Items returns a copy of the line items in insertion order.
func (s *CartStore) Items() []model.LineItem {
	out := make([]model.LineItem, len(s.items))
	copy(out, s.items)
	return out
}

// Get returns the stored line item for a key, if present.
func (s *CartStore) Get(productID uint, variantToken string) (model.LineItem, bool) {
	idx := s.find(productID, model.NormalizeVariant(variantToken))
	if idx < 0 {
		return model.LineItem{}, false
	}
	return s.items[idx], true
}

// Len returns the number of distinct line items.
func (s *CartStore) Len() int {
	return len(s.items)
}

// Count sums quantities across all line items.
func (s *CartStore) Count() int {
	count := 0
	for _, item := range s.items {
		count += item.Quantity
	}
	return count
}

// Subtotal sums price x quantity across all line items. This is the
// informational cart subtotal, not the checkout breakdown.
func (s *CartStore) Subtotal() float64 {
	var total float64
	for _, item := range s.items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}
