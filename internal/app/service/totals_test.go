package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vastrakart/vastrakart-backend/internal/app/model"
)

func lineItem(id uint, price float64, qty int) model.LineItem {
	return model.LineItem{
		ProductSnapshot: model.ProductSnapshot{ID: id, Price: price},
		Quantity:        qty,
	}
}

func TestCalculateTotals_Breakdown(t *testing.T) {
	items := []model.LineItem{
		lineItem(1, 100, 2),
		lineItem(2, 50, 1),
	}

	got := CalculateTotals(items, model.FeeConfig{ShippingFee: 49, TaxAmount: 0, Discount: 30})

	assert.Equal(t, 250.0, got.Subtotal)
	assert.Equal(t, 49.0, got.ShippingFee)
	assert.Equal(t, 0.0, got.TaxAmount)
	assert.Equal(t, 30.0, got.Discount)
	assert.Equal(t, 269.0, got.Total)
	assert.Len(t, got.Items, 2)
}

func TestCalculateTotals_OrderIndependent(t *testing.T) {
	a := []model.LineItem{lineItem(1, 100, 2), lineItem(2, 50, 1), lineItem(3, 19.5, 3)}
	b := []model.LineItem{a[2], a[0], a[1]}
	cfg := model.FeeConfig{ShippingFee: 49, TaxAmount: 12.5, Discount: 30}

	assert.Equal(t, CalculateTotals(a, cfg).Total, CalculateTotals(b, cfg).Total)
}

func TestCalculateTotals_TotalNeverNegative(t *testing.T) {
	items := []model.LineItem{lineItem(1, 100, 1)}

	got := CalculateTotals(items, model.FeeConfig{Discount: 500})

	assert.Equal(t, 100.0, got.Subtotal)
	assert.Equal(t, 0.0, got.Total)
}

func TestCalculateTotals_NegativeFeesTreatedAsZero(t *testing.T) {
	items := []model.LineItem{lineItem(1, 100, 1)}

	got := CalculateTotals(items, model.FeeConfig{ShippingFee: -10, TaxAmount: -5, Discount: -20})

	assert.Equal(t, 0.0, got.ShippingFee)
	assert.Equal(t, 0.0, got.TaxAmount)
	assert.Equal(t, 0.0, got.Discount)
	assert.Equal(t, 100.0, got.Total)
}

func TestCalculateTotals_EmptySelection(t *testing.T) {
	got := CalculateTotals(nil, model.FeeConfig{ShippingFee: 49})

	assert.Equal(t, 0.0, got.Subtotal)
	assert.Equal(t, 49.0, got.Total)
	assert.Empty(t, got.Items)
}

func TestCalculateTotals_DoesNotAliasInput(t *testing.T) {
	items := []model.LineItem{lineItem(1, 100, 1)}

	got := CalculateTotals(items, model.FeeConfig{})
	got.Items[0].Quantity = 99

	assert.Equal(t, 1, items[0].Quantity)
}
