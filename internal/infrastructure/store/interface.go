package store

import (
	"context"
	"strconv"
	"time"
)

// Store is the loosely-durable key/value store backing the catalog cache,
// the image cache and the persisted session. A zero ttl means no expiry.
type Store interface {
	// Get returns the value for key. found is false for missing or expired keys.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Set stores value under key.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Keys used by the service.
const (
	KeyCatalogItems      = "catalog_items"
	KeyCatalogCategories = "catalog_categories"
	KeyAuthSession       = "auth_session"
	keyImagePrefix       = "catalog_images_base64:"
)

// ImageKey returns the key of the inlined image for a product id.
func ImageKey(id int) string {
	return keyImagePrefix + strconv.Itoa(id)
}
