package service

import (
	"github.com/vastrakart/vastrakart-backend/internal/app/model"
)

// CalculateTotals derives the monetary breakdown for a caller-selected list of
// line items: the whole cart at checkout, or a single item on a buy-now path.
//
// The function is pure. Amounts are treated as already-rounded currency units;
// no intermediate re-rounding is applied. Negative fee inputs are treated as
// zero, and the grand total never goes below zero even when the discount
// exceeds everything else.
func CalculateTotals(items []model.LineItem, cfg model.FeeConfig) model.TotalsBreakdown {
	shipping := nonNegative(cfg.ShippingFee)
	tax := nonNegative(cfg.TaxAmount)
	discount := nonNegative(cfg.Discount)

	var subtotal float64
	for _, item := range items {
		subtotal += item.Price * float64(item.Quantity)
	}

	total := subtotal + shipping + tax - discount
	if total < 0 {
		total = 0
	}

	selected := make([]model.LineItem, len(items))
	copy(selected, items)

	return model.TotalsBreakdown{
		Items:       selected,
		Subtotal:    subtotal,
		ShippingFee: shipping,
		TaxAmount:   tax,
		Discount:    discount,
		Total:       total,
	}
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
