package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/agentfashion/storefront/internal/transport"
	pkgerrors "github.com/agentfashion/storefront/pkg/errors"
	"github.com/agentfashion/storefront/pkg/types"
)

type variant struct {
	productID string
	name      string
	price     decimal.Decimal
}

type fakeCartAPI struct {
	mu         sync.Mutex
	variants   map[string]variant
	items      []types.CartItem
	seq        int
	failRemove bool
	lastQty    int
	hits       int
}

func newFakeCartAPI() *fakeCartAPI {
	return &fakeCartAPI{variants: map[string]variant{
		"var-a": {productID: "prod-a", name: "Linen Shirt", price: decimal.NewFromInt(100000)},
		"var-b": {productID: "prod-b", name: "Silk Scarf", price: decimal.NewFromInt(50000)},
	}}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func ok(info map[string]any) map[string]any {
	return map[string]any{"message": "ok", "info": info}
}

func (f *fakeCartAPI) router() http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			f.mu.Lock()
			f.hits++
			f.mu.Unlock()
			next.ServeHTTP(w, req)
		})
	})
	r.Get("/v1/cart/{userID}", func(w http.ResponseWriter, req *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(w, http.StatusOK, ok(map[string]any{"cart_items": f.items}))
	})
	r.Post("/v1/cart", func(w http.ResponseWriter, req *http.Request) {
		var in types.AddToCartRequest
		_ = json.NewDecoder(req.Body).Decode(&in)
		f.mu.Lock()
		defer f.mu.Unlock()
		v, found := f.variants[in.VariantID]
		if !found {
			writeJSON(w, http.StatusNotFound, map[string]any{"detail": "Variant not found"})
			return
		}
		for i := range f.items {
			if f.items[i].VariantID == in.VariantID {
				f.items[i].Quantity += in.Quantity
				writeJSON(w, http.StatusOK, ok(map[string]any{"cart_item": f.items[i]}))
				return
			}
		}
		f.seq++
		item := types.CartItem{
			CartItemID:  fmt.Sprintf("ci-%d", f.seq),
			ProductID:   v.productID,
			VariantID:   in.VariantID,
			UnitPrice:   v.price,
			Quantity:    in.Quantity,
			ProductName: v.name,
		}
		f.items = append(f.items, item)
		writeJSON(w, http.StatusCreated, ok(map[string]any{"cart_item": item}))
	})
	r.Put("/v1/cart/items/{id}", func(w http.ResponseWriter, req *http.Request) {
		var in types.UpdateQuantityRequest
		_ = json.NewDecoder(req.Body).Decode(&in)
		f.mu.Lock()
		defer f.mu.Unlock()
		f.lastQty = in.Quantity
		for i := range f.items {
			if f.items[i].CartItemID == chi.URLParam(req, "id") {
				f.items[i].Quantity = in.Quantity
				writeJSON(w, http.StatusOK, ok(map[string]any{"cart_item": f.items[i]}))
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": "Cart item not found"})
	})
	r.Delete("/v1/cart/items/{id}", func(w http.ResponseWriter, req *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.failRemove {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"detail": "database unavailable"})
			return
		}
		id := chi.URLParam(req, "id")
		kept := f.items[:0]
		for _, item := range f.items {
			if item.CartItemID != id {
				kept = append(kept, item)
			}
		}
		f.items = kept
		writeJSON(w, http.StatusOK, ok(map[string]any{"success": true, "message": "removed"}))
	})
	r.Post("/v1/orders", func(w http.ResponseWriter, req *http.Request) {
		var in types.CheckoutRequest
		_ = json.NewDecoder(req.Body).Decode(&in)
		f.mu.Lock()
		defer f.mu.Unlock()
		total, _ := Totals(f.items)
		order := types.Order{OrderID: "ord-1", UserID: in.UserID, Status: "pending", TotalAmount: total, Items: f.items, ShippingAddress: in.ShippingAddress}
		f.items = nil
		writeJSON(w, http.StatusCreated, ok(map[string]any{"order": order}))
	})
	return r
}

func newTestStore(t *testing.T) (*Store, *fakeCartAPI) {
	t.Helper()
	fake := newFakeCartAPI()
	srv := httptest.NewServer(fake.router())
	t.Cleanup(srv.Close)

	client, err := transport.NewClient(srv.URL)
	require.NoError(t, err)
	store, err := NewStore(client, nil)
	require.NoError(t, err)
	return store, fake
}

func TestTotalsFollowItems(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.AddToCart(ctx, "u1", "var-a", 2)
	require.NoError(t, err)
	b, err := store.AddToCart(ctx, "u1", "var-b", 1)
	require.NoError(t, err)

	snap := store.Snapshot()
	require.Len(t, snap.Items, 2)
	require.True(t, snap.TotalAmount.Equal(decimal.NewFromInt(250000)), snap.TotalAmount.String())
	require.Equal(t, 3, snap.TotalCount)

	require.NoError(t, store.RemoveItem(ctx, b.CartItemID))
	snap = store.Snapshot()
	require.True(t, snap.TotalAmount.Equal(decimal.NewFromInt(200000)), snap.TotalAmount.String())
	require.Equal(t, 2, snap.TotalCount)
	for _, item := range snap.Items {
		require.NotEqual(t, b.CartItemID, item.CartItemID)
	}
}

func TestAddToCartMergesByCartItemID(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	first, err := store.AddToCart(ctx, "u1", "var-a", 1)
	require.NoError(t, err)
	second, err := store.AddToCart(ctx, "u1", "var-a", 2)
	require.NoError(t, err)
	require.Equal(t, first.CartItemID, second.CartItemID)

	snap := store.Snapshot()
	require.Len(t, snap.Items, 1)
	require.Equal(t, 3, snap.Items[0].Quantity)
}

func TestAddToCartRejectsNonPositiveQuantity(t *testing.T) {
	store, fake := newTestStore(t)

	for _, qty := range []int{0, -2} {
		_, err := store.AddToCart(context.Background(), "u1", "var-a", qty)
		require.Error(t, err)
		require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
	}
	require.Zero(t, fake.hits)
	require.Equal(t, "quantity must be at least 1", pkgerrors.As(store.Err()).Message())
}

func TestUpdateQuantityClampsToOne(t *testing.T) {
	store, fake := newTestStore(t)
	ctx := context.Background()
	item, err := store.AddToCart(ctx, "u1", "var-a", 3)
	require.NoError(t, err)

	updated, err := store.UpdateQuantity(ctx, item.CartItemID, 0)
	require.NoError(t, err)
	require.Equal(t, 1, fake.lastQty)
	require.Equal(t, 1, updated.Quantity)

	_, err = store.UpdateQuantity(ctx, item.CartItemID, -5)
	require.NoError(t, err)
	require.Equal(t, 1, fake.lastQty)
	for _, it := range store.Snapshot().Items {
		require.GreaterOrEqual(t, it.Quantity, 1)
	}
}

func TestRemoveFailureKeepsLocalItem(t *testing.T) {
	store, fake := newTestStore(t)
	ctx := context.Background()
	item, err := store.AddToCart(ctx, "u1", "var-a", 1)
	require.NoError(t, err)

	fake.mu.Lock()
	fake.failRemove = true
	fake.mu.Unlock()

	err = store.RemoveItem(ctx, item.CartItemID)
	require.Error(t, err)
	require.Equal(t, "database unavailable", pkgerrors.As(err).Message())
	require.Len(t, store.Snapshot().Items, 1)
	require.Equal(t, err, store.Err())
}

func TestFetchCartReplacesItems(t *testing.T) {
	store, fake := newTestStore(t)
	ctx := context.Background()

	fake.mu.Lock()
	fake.items = []types.CartItem{{CartItemID: "srv-1", VariantID: "var-b", UnitPrice: decimal.NewFromInt(50000), Quantity: 4}}
	fake.mu.Unlock()

	require.NoError(t, store.FetchCart(ctx, "u1"))
	snap := store.Snapshot()
	require.Len(t, snap.Items, 1)
	require.Equal(t, "srv-1", snap.Items[0].CartItemID)
	require.True(t, snap.TotalAmount.Equal(decimal.NewFromInt(200000)))
	require.False(t, store.Loading())
}

func TestAddUnknownVariantSurfacesDetail(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.AddToCart(context.Background(), "u1", "var-z", 1)
	require.Error(t, err)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
	require.Equal(t, "Variant not found", pkgerrors.As(store.Err()).Message())
	require.True(t, store.Snapshot().IsEmpty())
}

func TestCheckoutEmptiesCart(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Checkout(ctx, "u1", CheckoutInput{ShippingAddress: "Rua das Flores 10"})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = store.AddToCart(ctx, "u1", "var-a", 2)
	require.NoError(t, err)

	order, err := store.Checkout(ctx, "u1", CheckoutInput{ShippingAddress: "Rua das Flores 10"})
	require.NoError(t, err)
	require.Equal(t, "ord-1", order.OrderID)
	require.True(t, order.TotalAmount.Equal(decimal.NewFromInt(200000)))
	require.True(t, store.Snapshot().IsEmpty())
}

func TestClearDropsItems(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.AddToCart(context.Background(), "u1", "var-a", 1)
	require.NoError(t, err)

	store.Clear()
	snap := store.Snapshot()
	require.True(t, snap.IsEmpty())
	require.True(t, snap.TotalAmount.IsZero())
	require.Zero(t, snap.TotalCount)
}

func TestNetworkErrorIsReturnedUnchanged(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	client, err := transport.NewClient(base)
	require.NoError(t, err)
	store, err := NewStore(client, nil)
	require.NoError(t, err)

	err = store.FetchCart(context.Background(), "u1")
	require.True(t, pkgerrors.IsNetwork(err))
	require.False(t, store.Loading())
}

// gatedAPI parks every call until release is closed, then answers with fixed values.
type gatedAPI struct {
	entered chan struct{}
	release chan struct{}
	items   []types.CartItem
	item    types.CartItem
}

func newGatedAPI() *gatedAPI {
	return &gatedAPI{entered: make(chan struct{}, 8), release: make(chan struct{})}
}

func (g *gatedAPI) Do(_ context.Context, _, _ string, _ any, _ transport.Shape, out any, _ ...transport.RequestOption) error {
	g.entered <- struct{}{}
	<-g.release
	switch v := out.(type) {
	case *[]types.CartItem:
		*v = append([]types.CartItem(nil), g.items...)
	case *types.CartItem:
		*v = g.item
	}
	return nil
}

func TestClearDiscardsResponsesStillInFlight(t *testing.T) {
	line := types.CartItem{CartItemID: "ci-1", VariantID: "var-a", UnitPrice: decimal.NewFromInt(100000), Quantity: 2}
	cases := map[string]func(ctx context.Context, s *Store) error{
		"fetch": func(ctx context.Context, s *Store) error {
			return s.FetchCart(ctx, "u1")
		},
		"add": func(ctx context.Context, s *Store) error {
			_, err := s.AddToCart(ctx, "u1", "var-a", 2)
			return err
		},
		"update": func(ctx context.Context, s *Store) error {
			_, err := s.UpdateQuantity(ctx, "ci-1", 2)
			return err
		},
	}
	for name, call := range cases {
		t.Run(name, func(t *testing.T) {
			gate := newGatedAPI()
			gate.items = []types.CartItem{line}
			gate.item = line
			store, err := NewStore(gate, nil)
			require.NoError(t, err)

			done := make(chan error, 1)
			go func() { done <- call(context.Background(), store) }()
			<-gate.entered

			store.Clear()
			close(gate.release)
			require.NoError(t, <-done)

			snap := store.Snapshot()
			require.True(t, snap.IsEmpty(), "cart repopulated after clear: %d items", len(snap.Items))
			require.True(t, snap.TotalAmount.IsZero())
			require.False(t, store.Loading())
			require.NoError(t, store.Err())
		})
	}
}

func TestFetchAfterClearIsApplied(t *testing.T) {
	gate := newGatedAPI()
	gate.items = []types.CartItem{{CartItemID: "ci-9", UnitPrice: decimal.NewFromInt(30000), Quantity: 3}}
	close(gate.release)
	store, err := NewStore(gate, nil)
	require.NoError(t, err)

	store.Clear()
	require.NoError(t, store.FetchCart(context.Background(), "u2"))
	snap := store.Snapshot()
	require.Len(t, snap.Items, 1)
	require.Equal(t, "90000", snap.TotalAmount.String())
}

func TestTotalsHoldAcrossInterleavedMutations(t *testing.T) {
	store, fake := newTestStore(t)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(7))
	variants := []string{"var-a", "var-b"}

	for step := 0; step < 60; step++ {
		ids := make([]string, 0)
		for _, item := range store.Snapshot().Items {
			ids = append(ids, item.CartItemID)
		}

		switch op := rng.Intn(3); {
		case op == 0 || len(ids) == 0:
			_, err := store.AddToCart(ctx, "u1", variants[rng.Intn(len(variants))], 1+rng.Intn(3))
			require.NoError(t, err)
		case op == 1:
			_, err := store.UpdateQuantity(ctx, ids[rng.Intn(len(ids))], rng.Intn(6)-1)
			require.NoError(t, err)
		default:
			require.NoError(t, store.RemoveItem(ctx, ids[rng.Intn(len(ids))]))
		}

		snap := store.Snapshot()
		wantTotal := decimal.Zero
		wantCount := 0
		for _, item := range snap.Items {
			require.GreaterOrEqual(t, item.Quantity, 1)
			wantTotal = wantTotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
			wantCount += item.Quantity
		}
		require.True(t, snap.TotalAmount.Equal(wantTotal), "step %d: %s != %s", step, snap.TotalAmount, wantTotal)
		require.Equal(t, wantCount, snap.TotalCount, "step %d", step)

		fake.mu.Lock()
		serverTotal, serverCount := Totals(fake.items)
		fake.mu.Unlock()
		require.True(t, snap.TotalAmount.Equal(serverTotal), "step %d: local %s, server %s", step, snap.TotalAmount, serverTotal)
		require.Equal(t, serverCount, snap.TotalCount, "step %d", step)
	}
}
