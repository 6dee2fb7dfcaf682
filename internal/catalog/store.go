// Package catalog caches products, brands and categories for browsing. The
// cache is only ever replaced by a full re-fetch.
package catalog

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/agentfashion/storefront/internal/transport"
	pkgerrors "github.com/agentfashion/storefront/pkg/errors"
	"github.com/agentfashion/storefront/pkg/logger"
	"github.com/agentfashion/storefront/pkg/types"
)

type api interface {
	Do(ctx context.Context, method, path string, body any, shape transport.Shape, out any, opts ...transport.RequestOption) error
}

type Store struct {
	api  api
	logg *logger.Logger

	mu         sync.RWMutex
	products   []types.Product
	brands     []types.Brand
	categories []types.Category
	loaded     bool
}

func NewStore(client api, logg *logger.Logger) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("transport is required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Store{api: client, logg: logg}, nil
}

// Load fetches the three collections concurrently and waits for all of them.
// A collection whose fetch fails is logged and left empty.
func (s *Store) Load(ctx context.Context) {
	var (
		products   []types.Product
		brands     []types.Brand
		categories []types.Category
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		products = fetchList[types.Product](gctx, s, "/v1/products", "products")
		return nil
	})
	g.Go(func() error {
		brands = fetchList[types.Brand](gctx, s, "/v1/brands", "brands")
		return nil
	})
	g.Go(func() error {
		categories = fetchList[types.Category](gctx, s, "/v1/categories", "categories")
		return nil
	})
	_ = g.Wait()

	s.mu.Lock()
	s.products = products
	s.brands = brands
	s.categories = categories
	s.loaded = true
	s.mu.Unlock()

	s.logg.Debug(s.logg.WithFields(ctx, map[string]any{
		"products":   len(products),
		"brands":     len(brands),
		"categories": len(categories),
	}), "catalog loaded")
}

// Refresh re-fetches the whole catalog.
func (s *Store) Refresh(ctx context.Context) {
	s.Load(ctx)
}

func fetchList[T any](ctx context.Context, s *Store, path, key string) []T {
	var out []T
	if err := s.api.Do(ctx, http.MethodGet, path, nil, transport.Payload(key), &out); err != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"collection": key,
			"error":      err.Error(),
		}), "catalog fetch failed; showing an empty list")
		return nil
	}
	return out
}

// Loaded reports whether Load has completed at least once.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

func (s *Store) Products() []types.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]types.Product(nil), s.products...)
}

func (s *Store) Brands() []types.Brand {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]types.Brand(nil), s.brands...)
}

func (s *Store) Categories() []types.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]types.Category(nil), s.categories...)
}

// ProductByID looks a product up in the cache.
func (s *Store) ProductByID(id string) (types.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ProductID == id {
			return p, true
		}
	}
	return types.Product{}, false
}

// Filter narrows the cached products. Empty fields match everything; Query is a
// case-insensitive substring of the product, brand or category name.
type Filter struct {
	Query      string
	BrandID    string
	CategoryID string
}

func (s *Store) Search(f Filter) []types.Product {
	query := strings.ToLower(strings.TrimSpace(f.Query))

	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []types.Product
	for _, p := range s.products {
		if f.BrandID != "" && p.BrandID != f.BrandID {
			continue
		}
		if f.CategoryID != "" && p.CategoryID != f.CategoryID {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(p.Name), query) &&
			!strings.Contains(strings.ToLower(p.BrandName), query) &&
			!strings.Contains(strings.ToLower(p.CategoryName), query) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// GetProduct fetches one product with its variants and refreshes the cached copy.
func (s *Store) GetProduct(ctx context.Context, id string) (types.Product, error) {
	if strings.TrimSpace(id) == "" {
		return types.Product{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	var product types.Product
	if err := s.api.Do(ctx, http.MethodGet, "/v1/products/"+id, nil, transport.Payload("product"), &product); err != nil {
		return types.Product{}, translate(err, "Could not load the product")
	}

	s.mu.Lock()
	for i := range s.products {
		if s.products[i].ProductID == product.ProductID {
			s.products[i] = product
			break
		}
	}
	s.mu.Unlock()
	return product, nil
}

func translate(err error, fallback string) error {
	if httpErr, ok := pkgerrors.AsHTTP(err); ok {
		msg := httpErr.Detail
		if msg == "" {
			msg = fallback
		}
		return pkgerrors.Wrap(httpErr.Code(), err, msg)
	}
	if pkgerrors.IsNetwork(err) {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fallback)
}
