package model

import "fmt"

// Partition key prefixes. One storage partition per identity keeps carts from
// ever blending across accounts.
const (
	UserPartitionPrefix  = "cart:user:"
	GuestPartitionPrefix = "cart:guest"
)

// Identity is the stable identity signal supplied by the auth layer. Guests
// are scoped by a device token when one is present; token-less clients share
// the fixed guest bucket.
type Identity struct {
	Authenticated bool   `json:"authenticated"`
	UserID        uint   `json:"user_id,omitempty"`
	Email         string `json:"email,omitempty"`
	GuestToken    string `json:"guest_token,omitempty"`
}

// PartitionKey maps the identity to its cart storage partition.
func (id Identity) PartitionKey() string {
	if id.Authenticated && id.UserID != 0 {
		return fmt.Sprintf("%s%d", UserPartitionPrefix, id.UserID)
	}
	if id.GuestToken != "" {
		return GuestPartitionPrefix + ":" + id.GuestToken
	}
	return GuestPartitionPrefix
}

// IsGuestPartition reports whether a partition key belongs to a guest bucket.
func IsGuestPartition(key string) bool {
	return len(key) >= len(GuestPartitionPrefix) && key[:len(GuestPartitionPrefix)] == GuestPartitionPrefix
}
