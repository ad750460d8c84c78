package controller

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vastrakart/vastrakart-backend/internal/app/model"
)

func floatRef(f float64) *float64 { return &f }

func TestTotalsWholeCart(t *testing.T) {
	env := setupCartTest(t, model.Identity{GuestToken: "device-1"})
	kurta := env.seedProduct(t, &model.Product{SKU: "KU-01", Name: "Kurta", Price: 100, StockQuantity: intRef(10)})
	shirt := env.seedProduct(t, &model.Product{SKU: "TS-01", Name: "T-Shirt", Price: 50, StockQuantity: intRef(10)})

	env.do(t, http.MethodPost, "/api/v1/cart/items", AddItemRequest{ProductID: kurta.ID, Quantity: 2})
	env.do(t, http.MethodPost, "/api/v1/cart/items", AddItemRequest{ProductID: shirt.ID, Quantity: 1})

	w := env.do(t, http.MethodPost, "/api/v1/checkout/totals", TotalsRequest{Discount: floatRef(30)})
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, float64(250), body["subtotal"])
	assert.Equal(t, float64(49), body["shipping_fee"])
	assert.Equal(t, float64(30), body["discount"])
	assert.Equal(t, float64(269), body["total"])
}

func TestTotalsSubsetSelection(t *testing.T) {
	env := setupCartTest(t, model.Identity{GuestToken: "device-1"})
	kurta := env.seedProduct(t, &model.Product{SKU: "KU-01", Name: "Kurta", Price: 100, StockQuantity: intRef(10)})
	shirt := env.seedProduct(t, &model.Product{SKU: "TS-01", Name: "T-Shirt", Price: 50, StockQuantity: intRef(10)})

	env.do(t, http.MethodPost, "/api/v1/cart/items", AddItemRequest{ProductID: kurta.ID, Quantity: 2})
	env.do(t, http.MethodPost, "/api/v1/cart/items", AddItemRequest{ProductID: shirt.ID, Quantity: 1})

	w := env.do(t, http.MethodPost, "/api/v1/checkout/totals", TotalsRequest{
		Items: []model.LineItemKey{{ProductID: shirt.ID}},
	})
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, float64(50), body["subtotal"])
	assert.Equal(t, float64(99), body["total"])
}

func TestTotalsFreeShippingThreshold(t *testing.T) {
	env := setupCartTest(t, model.Identity{GuestToken: "device-1"})
	saree := env.seedProduct(t, &model.Product{SKU: "SA-01", Name: "Saree", Price: 1299, StockQuantity: intRef(10)})

	env.do(t, http.MethodPost, "/api/v1/cart/items", AddItemRequest{ProductID: saree.ID, Quantity: 1})

	w := env.do(t, http.MethodPost, "/api/v1/checkout/totals", TotalsRequest{})
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, float64(0), body["shipping_fee"])
	assert.Equal(t, float64(1299), body["total"])
}

func TestTotalsFeeOverrides(t *testing.T) {
	env := setupCartTest(t, model.Identity{GuestToken: "device-1"})
	kurta := env.seedProduct(t, &model.Product{SKU: "KU-01", Name: "Kurta", Price: 100, StockQuantity: intRef(10)})

	env.do(t, http.MethodPost, "/api/v1/cart/items", AddItemRequest{ProductID: kurta.ID, Quantity: 1})

	w := env.do(t, http.MethodPost, "/api/v1/checkout/totals", TotalsRequest{
		ShippingFee: floatRef(0),
		TaxAmount:   floatRef(18),
	})
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, float64(0), body["shipping_fee"])
	assert.Equal(t, float64(18), body["tax_amount"])
	assert.Equal(t, float64(118), body["total"])
}

func TestTotalsEmptyCart(t *testing.T) {
	env := setupCartTest(t, model.Identity{GuestToken: "device-1"})

	w := env.do(t, http.MethodPost, "/api/v1/checkout/totals", TotalsRequest{})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "CHECKOUT_EMPTY_SELECTION", decodeBody(t, w)["error"])
}

func TestTotalsVariantRequired(t *testing.T) {
	env := setupCartTest(t, model.Identity{GuestToken: "device-1"})
	shirt := env.seedProduct(t, &model.Product{
		SKU: "TS-01", Name: "T-Shirt", Price: 499, ShowSizes: true,
		Sizes: []model.ProductSize{{Label: "M", StockQuantity: 5, IsAvailable: true}},
	})

	// quantity entry tolerated the missing size; purchase must not
	env.do(t, http.MethodPost, "/api/v1/cart/items", AddItemRequest{ProductID: shirt.ID, Quantity: 1})

	w := env.do(t, http.MethodPost, "/api/v1/checkout/totals", TotalsRequest{})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "CHECKOUT_VARIANT_REQUIRED", decodeBody(t, w)["error"])
}

func TestTotalsBuyNow(t *testing.T) {
	env := setupCartTest(t, model.Identity{GuestToken: "device-1"})
	shirt := env.seedProduct(t, &model.Product{
		SKU: "TS-01", Name: "T-Shirt", Price: 499, ShowSizes: true,
		Sizes: []model.ProductSize{{Label: "M", StockQuantity: 2, IsAvailable: true}},
	})

	// cart contents must not leak into a buy-now breakdown
	kurta := env.seedProduct(t, &model.Product{SKU: "KU-01", Name: "Kurta", Price: 100, StockQuantity: intRef(10)})
	env.do(t, http.MethodPost, "/api/v1/cart/items", AddItemRequest{ProductID: kurta.ID, Quantity: 1})

	w := env.do(t, http.MethodPost, "/api/v1/checkout/totals", TotalsRequest{
		BuyNow: &BuyNowSelection{ProductID: shirt.ID, Size: "M", Quantity: 5},
	})
	require.Equal(t, http.StatusOK, w.Code)

	// quantity clamped to the size's stock, threshold of 999 just missed
	body := decodeBody(t, w)
	assert.Equal(t, float64(998), body["subtotal"])
	assert.Equal(t, float64(49), body["shipping_fee"])
	assert.Equal(t, float64(1047), body["total"])
}

func TestTotalsBuyNowUnavailable(t *testing.T) {
	env := setupCartTest(t, model.Identity{GuestToken: "device-1"})
	shirt := env.seedProduct(t, &model.Product{
		SKU: "TS-01", Name: "T-Shirt", Price: 499, ShowSizes: true,
		Sizes: []model.ProductSize{{Label: "M", StockQuantity: 0, IsAvailable: true}},
	})

	w := env.do(t, http.MethodPost, "/api/v1/checkout/totals", TotalsRequest{
		BuyNow: &BuyNowSelection{ProductID: shirt.ID, Size: "M", Quantity: 1},
	})
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "CART_ITEM_UNAVAILABLE", decodeBody(t, w)["error"])
}

func TestTotalsBuyNowVariantRequired(t *testing.T) {
	env := setupCartTest(t, model.Identity{GuestToken: "device-1"})
	shirt := env.seedProduct(t, &model.Product{
		SKU: "TS-01", Name: "T-Shirt", Price: 499, ShowSizes: true,
		Sizes: []model.ProductSize{{Label: "M", StockQuantity: 5, IsAvailable: true}},
	})

	w := env.do(t, http.MethodPost, "/api/v1/checkout/totals", TotalsRequest{
		BuyNow: &BuyNowSelection{ProductID: shirt.ID, Quantity: 1},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "CHECKOUT_VARIANT_REQUIRED", decodeBody(t, w)["error"])
}

func TestTotalsProductNotFoundOnBuyNow(t *testing.T) {
	env := setupCartTest(t, model.Identity{GuestToken: "device-1"})

	w := env.do(t, http.MethodPost, "/api/v1/checkout/totals", TotalsRequest{
		BuyNow: &BuyNowSelection{ProductID: 999, Quantity: 1},
	})
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "PRODUCT_NOT_FOUND", decodeBody(t, w)["error"])
}
