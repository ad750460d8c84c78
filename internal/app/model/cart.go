package model

import "strings"

// NormalizeVariant canonicalizes a size/option label for matching and keying.
// Variant labels compare case- and whitespace-insensitively everywhere; the
// empty string means "no variant".
func NormalizeVariant(label string) string {
	return strings.ToUpper(strings.TrimSpace(label))
}

// LineItem is the cart's unit of storage: a frozen product snapshot plus the
// chosen quantity and variant. Quantity is always >= 1 while the item exists.
type LineItem struct {
	ProductSnapshot
	Quantity int    `json:"quantity"`
	Size     string `json:"size,omitempty"` // normalized variant token, empty when the product has no variants
}

// LineItemKey identifies a line item inside one cart. A product ID plus the
// normalized variant is the canonical key; SKU is accepted as a fallback
// identifier for callers that only hold partial product records.
type LineItemKey struct {
	ProductID uint   `json:"product_id"`
	SKU       string `json:"sku,omitempty"`
	Size      string `json:"size,omitempty"`
}

// Key derives the identity key of a line item.
func (li LineItem) Key() LineItemKey {
	return LineItemKey{ProductID: li.ID, SKU: li.SKU, Size: NormalizeVariant(li.Size)}
}

// Matches reports whether the key identifies the given line item, falling back
// from product ID to SKU when the ID is absent.
func (k LineItemKey) Matches(li LineItem) bool {
	if NormalizeVariant(k.Size) != NormalizeVariant(li.Size) {
		return false
	}
	if k.ProductID != 0 {
		return k.ProductID == li.ID
	}
	if k.SKU != "" {
		return k.SKU == li.SKU
	}
	return false
}
