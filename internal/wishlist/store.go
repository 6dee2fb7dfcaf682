// Package wishlist keeps the user's saved products on the device. It is never
// synchronized with the backend.
package wishlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/agentfashion/storefront/pkg/logger"
	"github.com/agentfashion/storefront/pkg/storage"
)

type Store struct {
	storage storage.Store
	logg    *logger.Logger

	mu    sync.RWMutex
	items []string
}

func NewStore(store storage.Store, logg *logger.Logger) (*Store, error) {
	if store == nil {
		return nil, fmt.Errorf("storage is required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Store{storage: store, logg: logg}, nil
}

// Load reads the persisted list. An unreadable list is discarded.
func (s *Store) Load(ctx context.Context) error {
	raw, err := s.storage.Get(ctx, storage.KeyWishlist)
	if errors.Is(err, storage.ErrNotFound) {
		s.replace(nil)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load wishlist: %w", err)
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "discarding unreadable wishlist")
		s.replace(nil)
		return nil
	}
	s.replace(dedupe(ids))
	return nil
}

func (s *Store) Items() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.items...)
}

func (s *Store) Contains(productID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return indexOf(s.items, productID) >= 0
}

// Add saves productID; adding a saved product is a no-op.
func (s *Store) Add(ctx context.Context, productID string) error {
	_, err := s.update(ctx, productID, func(items []string, i int) ([]string, bool) {
		if i >= 0 {
			return items, false
		}
		return append(items, productID), true
	})
	return err
}

// Remove drops productID; removing an unsaved product is a no-op.
func (s *Store) Remove(ctx context.Context, productID string) error {
	_, err := s.update(ctx, productID, func(items []string, i int) ([]string, bool) {
		if i < 0 {
			return items, false
		}
		return append(items[:i], items[i+1:]...), true
	})
	return err
}

// Toggle adds or removes productID and reports whether it is now saved.
func (s *Store) Toggle(ctx context.Context, productID string) (bool, error) {
	return s.update(ctx, productID, func(items []string, i int) ([]string, bool) {
		if i >= 0 {
			return append(items[:i], items[i+1:]...), true
		}
		return append(items, productID), true
	})
}

// update applies fn and persists the result. The in-memory list is only
// replaced once the write succeeds.
func (s *Store) update(ctx context.Context, productID string, fn func(items []string, idx int) ([]string, bool)) (bool, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return false, fmt.Errorf("product id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	current := append([]string(nil), s.items...)
	next, changed := fn(current, indexOf(current, productID))
	saved := indexOf(next, productID) >= 0
	if !changed {
		return saved, nil
	}

	raw, err := json.Marshal(next)
	if err != nil {
		return false, err
	}
	if err := s.storage.Set(ctx, storage.KeyWishlist, string(raw)); err != nil {
		return indexOf(s.items, productID) >= 0, fmt.Errorf("save wishlist: %w", err)
	}
	s.items = next
	return saved, nil
}

func (s *Store) replace(items []string) {
	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
}

func indexOf(items []string, id string) int {
	for i, item := range items {
		if item == id {
			return i
		}
	}
	return -1
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
