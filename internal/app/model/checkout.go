package model

// FeeConfig enumerates the fee and discount amounts applied on top of the
// item subtotal. All amounts are non-negative currency units; negative inputs
// are treated as zero.
type FeeConfig struct {
	ShippingFee float64 `json:"shipping_fee"`
	TaxAmount   float64 `json:"tax_amount"`
	Discount    float64 `json:"discount"`
}

// TotalsBreakdown is the monetary breakdown handed to checkout.
type TotalsBreakdown struct {
	Items       []LineItem `json:"items"`
	Subtotal    float64    `json:"subtotal"`
	ShippingFee float64    `json:"shipping_fee"`
	TaxAmount   float64    `json:"tax_amount"`
	Discount    float64    `json:"discount"`
	Total       float64    `json:"total"`
}
