// Package storage persists the small amount of client state that must survive
// a restart: the bearer token, the signed-in user, the theme and the wishlist.
package storage

import (
	"context"
	"errors"
)

// Keys of the persisted client state.
const (
	KeyAuthToken = "auth_token"
	KeyUser      = "agentfashion_user"
	KeyTheme     = "agentfashion_theme"
	KeyWishlist  = "agentfashion_wishlist"
)

// ErrNotFound is returned by Get when nothing is stored under the key.
var ErrNotFound = errors.New("storage: key not found")

// Store is a string key/value store. Each call is atomic on its own; callers
// needing multi-key consistency order their writes themselves.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
