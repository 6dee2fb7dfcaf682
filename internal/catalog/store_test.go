package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/agentfashion/storefront/internal/transport"
	"github.com/agentfashion/storefront/pkg/enums"
	pkgerrors "github.com/agentfashion/storefront/pkg/errors"
	"github.com/agentfashion/storefront/pkg/types"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

var (
	shirt = types.Product{ProductID: "p1", Name: "Linen Shirt", BrandID: "b1", BrandName: "Acme", CategoryID: "c1", CategoryName: "Tops", Price: decimal.NewFromInt(100000)}
	scarf = types.Product{ProductID: "p2", Name: "Silk Scarf", BrandID: "b2", BrandName: "Nordic", CategoryID: "c2", CategoryName: "Accessories", Price: decimal.NewFromInt(50000)}
)

type catalogAPI struct {
	failBrands bool
	lastQuery  url.Values
	mu         sync.Mutex
}

func (c *catalogAPI) router() http.Handler {
	r := chi.NewRouter()
	r.Get("/v1/products", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"message": "ok", "info": map[string]any{"products": []types.Product{shirt, scarf}}})
	})
	r.Get("/v1/products/{id}", func(w http.ResponseWriter, req *http.Request) {
		if chi.URLParam(req, "id") != "p1" {
			writeJSON(w, http.StatusNotFound, map[string]any{"detail": "Product not found"})
			return
		}
		detailed := shirt
		detailed.Variants = []types.Variant{{VariantID: "v1", Size: "M", Color: "white", Price: shirt.Price, Stock: 3}}
		writeJSON(w, http.StatusOK, map[string]any{"message": "ok", "info": map[string]any{"product": detailed}})
	})
	r.Get("/v1/brands", func(w http.ResponseWriter, req *http.Request) {
		c.mu.Lock()
		c.lastQuery = req.URL.Query()
		fail := c.failBrands
		c.mu.Unlock()
		if fail {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"detail": "boom"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"message": "ok", "info": map[string]any{
			"brands":       []types.Brand{{BrandID: "b1", Name: "Acme"}, {BrandID: "b2", Name: "Nordic"}},
			"total_count":  12,
			"current_page": 2,
			"total_pages":  3,
			"has_next":     true,
			"has_previous": true,
		}})
	})
	r.Post("/v1/brands", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]any{"message": "created", "info": map[string]any{"brand_id": "b3", "success": true}})
	})
	r.Delete("/v1/brands/{id}", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"message": "ok", "info": map[string]any{"success": true, "message": "Brand deleted"}})
	})
	r.Get("/v1/categories", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"message": "ok", "info": map[string]any{"categories": []types.Category{{CategoryID: "c1", Name: "Tops"}}}})
	})
	return r
}

func newTestStore(t *testing.T, fake *catalogAPI) *Store {
	t.Helper()
	srv := httptest.NewServer(fake.router())
	t.Cleanup(srv.Close)
	client, err := transport.NewClient(srv.URL)
	require.NoError(t, err)
	store, err := NewStore(client, nil)
	require.NoError(t, err)
	return store
}

func TestLoadFillsAllCollections(t *testing.T) {
	store := newTestStore(t, &catalogAPI{})
	require.False(t, store.Loaded())

	store.Load(context.Background())

	require.True(t, store.Loaded())
	require.Len(t, store.Products(), 2)
	require.Len(t, store.Brands(), 2)
	require.Len(t, store.Categories(), 1)

	p, ok := store.ProductByID("p2")
	require.True(t, ok)
	require.Equal(t, "Silk Scarf", p.Name)
}

func TestLoadDegradesFailedCollectionToEmpty(t *testing.T) {
	store := newTestStore(t, &catalogAPI{failBrands: true})

	store.Load(context.Background())

	require.Empty(t, store.Brands())
	require.Len(t, store.Products(), 2)
	require.Len(t, store.Categories(), 1)
}

func TestSearch(t *testing.T) {
	store := newTestStore(t, &catalogAPI{})
	store.Load(context.Background())

	require.Len(t, store.Search(Filter{}), 2)
	found := store.Search(Filter{Query: "nordic"})
	require.Len(t, found, 1)
	require.Equal(t, scarf.ProductID, found[0].ProductID)
	require.Equal(t, "p1", store.Search(Filter{CategoryID: "c1"})[0].ProductID)
	require.Empty(t, store.Search(Filter{Query: "shirt", BrandID: "b2"}))
}

func TestGetProductRefreshesCache(t *testing.T) {
	store := newTestStore(t, &catalogAPI{})
	ctx := context.Background()
	store.Load(ctx)

	product, err := store.GetProduct(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, product.Variants, 1)

	cached, ok := store.ProductByID("p1")
	require.True(t, ok)
	require.Len(t, cached.Variants, 1)

	_, err = store.GetProduct(ctx, "missing")
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
	require.Equal(t, "Product not found", pkgerrors.As(err).Message())
}

func TestListBrandsSendsQueryAndDecodesPage(t *testing.T) {
	fake := &catalogAPI{}
	store := newTestStore(t, fake)

	page, err := store.ListBrands(context.Background(), BrandQuery{
		Page:       2,
		PageSize:   5,
		NameSearch: " ac ",
		SortBy:     "name",
		SortOrder:  enums.SortOrderDesc,
	})
	require.NoError(t, err)
	require.Len(t, page.Brands, 2)
	require.Equal(t, 12, page.TotalCount)
	require.Equal(t, 3, page.TotalPages)
	require.True(t, page.HasNext)
	require.True(t, page.HasPrevious)

	fake.mu.Lock()
	q := fake.lastQuery
	fake.mu.Unlock()
	require.Equal(t, "2", q.Get("page"))
	require.Equal(t, "5", q.Get("page_size"))
	require.Equal(t, "ac", q.Get("name_search"))
	require.Equal(t, "name", q.Get("sort_by"))
	require.Equal(t, "desc", q.Get("sort_order"))

	_, err = store.ListBrands(context.Background(), BrandQuery{SortOrder: "sideways"})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestCreateAndDeleteBrandUpdateCache(t *testing.T) {
	store := newTestStore(t, &catalogAPI{})
	ctx := context.Background()
	store.Load(ctx)

	created, err := store.CreateBrand(ctx, "  Solstice ", "summer wear")
	require.NoError(t, err)
	require.True(t, created.Success)
	require.Equal(t, "b3", created.BrandID)
	require.Len(t, store.Brands(), 3)

	status, err := store.DeleteBrand(ctx, "b1")
	require.NoError(t, err)
	require.True(t, status.Success)
	require.Equal(t, "Brand deleted", status.Message)
	for _, b := range store.Brands() {
		require.NotEqual(t, "b1", b.BrandID)
	}

	_, err = store.CreateBrand(ctx, " ", "")
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}
