package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeVariant(t *testing.T) {
	assert.Equal(t, "M", NormalizeVariant("m"))
	assert.Equal(t, "XL", NormalizeVariant("  xl "))
	assert.Equal(t, "", NormalizeVariant("   "))
	assert.Equal(t, "FREE SIZE", NormalizeVariant("Free Size"))
}

func TestLineItemKeyMatches(t *testing.T) {
	item := LineItem{
		ProductSnapshot: ProductSnapshot{ID: 7, SKU: "TS-01"},
		Quantity:        1,
		Size:            "M",
	}

	// an item's own key always identifies it
	assert.True(t, item.Key().Matches(item))

	tests := []struct {
		name string
		key  LineItemKey
		want bool
	}{
		{name: "by product id", key: LineItemKey{ProductID: 7, Size: "M"}, want: true},
		{name: "size is normalized", key: LineItemKey{ProductID: 7, Size: " m "}, want: true},
		{name: "sku fallback", key: LineItemKey{SKU: "TS-01", Size: "M"}, want: true},
		{name: "id wins over sku", key: LineItemKey{ProductID: 8, SKU: "TS-01", Size: "M"}, want: false},
		{name: "wrong size", key: LineItemKey{ProductID: 7, Size: "L"}, want: false},
		{name: "empty key", key: LineItemKey{Size: "M"}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.key.Matches(item))
		})
	}
}

func TestIdentityPartitionKey(t *testing.T) {
	assert.Equal(t, "cart:user:42", Identity{Authenticated: true, UserID: 42}.PartitionKey())
	assert.Equal(t, "cart:guest:abc", Identity{GuestToken: "abc"}.PartitionKey())
	assert.Equal(t, "cart:guest", Identity{}.PartitionKey())

	// an authenticated flag without a user id still falls through to guest
	assert.Equal(t, "cart:guest:abc", Identity{Authenticated: true, GuestToken: "abc"}.PartitionKey())
}

func TestIsGuestPartition(t *testing.T) {
	assert.True(t, IsGuestPartition("cart:guest"))
	assert.True(t, IsGuestPartition("cart:guest:abc"))
	assert.False(t, IsGuestPartition("cart:user:42"))
}
