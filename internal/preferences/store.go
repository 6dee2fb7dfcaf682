// Package preferences persists display settings.
package preferences

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/agentfashion/storefront/pkg/enums"
	"github.com/agentfashion/storefront/pkg/logger"
	"github.com/agentfashion/storefront/pkg/storage"
)

// DefaultTheme applies when nothing valid is persisted.
const DefaultTheme = enums.ThemeLight

type Store struct {
	storage storage.Store
	logg    *logger.Logger

	mu    sync.RWMutex
	theme enums.Theme
}

func NewStore(store storage.Store, logg *logger.Logger) (*Store, error) {
	if store == nil {
		return nil, fmt.Errorf("storage is required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Store{storage: store, logg: logg, theme: DefaultTheme}, nil
}

// Load reads the persisted theme, falling back to DefaultTheme.
func (s *Store) Load(ctx context.Context) (enums.Theme, error) {
	raw, err := s.storage.Get(ctx, storage.KeyTheme)
	theme := DefaultTheme
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		return DefaultTheme, fmt.Errorf("load theme: %w", err)
	default:
		parsed, parseErr := enums.ParseTheme(raw)
		if parseErr != nil {
			s.logg.Warn(s.logg.WithField(ctx, "value", raw), "ignoring unknown persisted theme")
		} else {
			theme = parsed
		}
	}

	s.mu.Lock()
	s.theme = theme
	s.mu.Unlock()
	return theme, nil
}

func (s *Store) Theme() enums.Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme
}

// SetTheme persists theme and then applies it.
func (s *Store) SetTheme(ctx context.Context, theme enums.Theme) error {
	if !theme.IsValid() {
		return fmt.Errorf("invalid theme %q", theme)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.storage.Set(ctx, storage.KeyTheme, theme.String()); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	s.theme = theme
	return nil
}

// Toggle switches between light and dark and returns the new theme.
func (s *Store) Toggle(ctx context.Context) (enums.Theme, error) {
	next := s.Theme().Opposite()
	if err := s.SetTheme(ctx, next); err != nil {
		return s.Theme(), err
	}
	return next, nil
}
