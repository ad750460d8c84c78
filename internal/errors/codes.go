package errors

// Error code constants, format: CATEGORY_SPECIFIC_DETAIL.
// The frontend maps these codes to user-facing messages.

const (
	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID    = "VALIDATION_INVALID_ID"

	// ==================== Catalog (PRODUCT_) ====================
	ProductNotFound = "PRODUCT_NOT_FOUND"

	// ==================== Cart (CART_) ====================
	CartItemUnavailable = "CART_ITEM_UNAVAILABLE" // zero effective availability

	// ==================== Checkout (CHECKOUT_) ====================
	CheckoutEmptySelection  = "CHECKOUT_EMPTY_SELECTION"  // nothing to total
	CheckoutVariantRequired = "CHECKOUT_VARIANT_REQUIRED" // size not chosen on a sized product

	// ==================== Server ====================
	InternalServerError = "INTERNAL_SERVER_ERROR"
)
