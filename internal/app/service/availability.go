package service

import (
	"github.com/vastrakart/vastrakart-backend/internal/app/model"
)

// Availability is the purchasable ceiling for one product/variant pair.
// Unbounded means quantity entry is not limited by stock or order caps.
type Availability struct {
	Unbounded bool
	Max       int
}

// Unlimited is the availability of products with untracked stock or an
// unchosen variant.
var Unlimited = Availability{Unbounded: true}

func bounded(n int) Availability {
	if n < 0 {
		n = 0
	}
	return Availability{Max: n}
}

// ResolveAvailability computes the maximum purchasable quantity for a product
// snapshot and an optional variant token.
//
// Products without a variant dimension resolve from product-level stock, or
// unbounded when stock is untracked. Products with variants resolve from the
// matching size entry; an explicitly requested token that matches nothing is
// unavailable rather than falling back to product-level stock. No token on a
// variant product leaves availability unbounded: variant selection is deferred
// to the caller, which must still require one before purchase.
func ResolveAvailability(p model.ProductSnapshot, variantToken string) Availability {
	if !p.ShowSizes {
		if p.Stock == nil {
			return Unlimited
		}
		return bounded(*p.Stock)
	}

	token := model.NormalizeVariant(variantToken)
	if token == "" {
		return Unlimited
	}

	for _, size := range p.Sizes {
		if model.NormalizeVariant(size.Label) != token {
			continue
		}
		if !size.IsAvailable {
			return bounded(0)
		}
		return bounded(size.Stock)
	}

	// explicit token with no matching size entry
	return bounded(0)
}

// ResolveOrderLimit reads the per-order purchase cap of a product. The cap is
// orthogonal to stock; ok is false when no valid cap is configured.
func ResolveOrderLimit(p model.ProductSnapshot) (limit int, ok bool) {
	if p.MaxPurchaseQuantity == nil || *p.MaxPurchaseQuantity <= 0 {
		return 0, false
	}
	return *p.MaxPurchaseQuantity, true
}

// EffectiveMax combines stock-derived availability with the per-order cap,
// taking the tighter of the two when both are finite.
func EffectiveMax(p model.ProductSnapshot, variantToken string) Availability {
	avail := ResolveAvailability(p, variantToken)
	limit, ok := ResolveOrderLimit(p)
	if !ok {
		return avail
	}
	if avail.Unbounded || limit < avail.Max {
		return bounded(limit)
	}
	return avail
}
