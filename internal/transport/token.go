package transport

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/agentfashion/storefront/pkg/storage"
)

// TokenHolder keeps the bearer token in memory and mirrors it to persisted storage
// under storage.KeyAuthToken.
type TokenHolder struct {
	mu    sync.RWMutex
	token string
	store storage.Store
}

// NewTokenHolder returns a holder backed by store. A nil store keeps the token in memory only.
func NewTokenHolder(store storage.Store) *TokenHolder {
	return &TokenHolder{store: store}
}

// Token returns the held token, or "" when none is held.
func (h *TokenHolder) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// Load reads the persisted token into memory and returns it.
func (h *TokenHolder) Load(ctx context.Context) (string, error) {
	if h.store == nil {
		return h.Token(), nil
	}
	value, err := h.store.Get(ctx, storage.KeyAuthToken)
	if errors.Is(err, storage.ErrNotFound) {
		value = ""
	} else if err != nil {
		return "", fmt.Errorf("load auth token: %w", err)
	}
	value = strings.TrimSpace(value)

	h.mu.Lock()
	h.token = value
	h.mu.Unlock()
	return value, nil
}

// Set holds token and persists it.
func (h *TokenHolder) Set(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("auth token is empty")
	}
	h.mu.Lock()
	h.token = token
	h.mu.Unlock()

	if h.store == nil {
		return nil
	}
	if err := h.store.Set(ctx, storage.KeyAuthToken, token); err != nil {
		return fmt.Errorf("persist auth token: %w", err)
	}
	return nil
}

// Clear drops the held token and its persisted copy. The in-memory token is
// always dropped, even when the persisted delete fails.
func (h *TokenHolder) Clear(ctx context.Context) error {
	h.mu.Lock()
	h.token = ""
	h.mu.Unlock()

	if h.store == nil {
		return nil
	}
	if err := h.store.Delete(ctx, storage.KeyAuthToken); err != nil {
		return fmt.Errorf("clear auth token: %w", err)
	}
	return nil
}
