package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/agentfashion/storefront/pkg/errors"
	"github.com/agentfashion/storefront/pkg/metrics"
	"github.com/agentfashion/storefront/pkg/storage"
	"github.com/agentfashion/storefront/pkg/types"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func newTestClient(t *testing.T, r http.Handler) (*Client, *storage.Memory) {
	t.Helper()
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	store := storage.NewMemory()
	client, err := NewClient(srv.URL, WithTokens(NewTokenHolder(store)))
	require.NoError(t, err)
	return client, store
}

func TestDoDecodesPayloadAndAttachesBearer(t *testing.T) {
	r := chi.NewRouter()
	var gotAuth string
	r.Get("/v1/cart/{userID}", func(w http.ResponseWriter, req *http.Request) {
		gotAuth = req.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "ok",
			"info": map[string]any{
				"cart_items": []map[string]any{{"cart_item_id": "c1", "quantity": 2, "unit_price": "100000"}},
			},
		})
	})
	client, _ := newTestClient(t, r)
	require.NoError(t, client.Tokens().Set(context.Background(), "tok-1"))

	items, err := Fetch[[]types.CartItem](context.Background(), client, http.MethodGet, "/v1/cart/u1", nil, Payload("cart_items"))
	require.NoError(t, err)
	require.Equal(t, "Bearer tok-1", gotAuth)
	require.Len(t, items, 1)
	require.Equal(t, "c1", items[0].CartItemID)
	require.Equal(t, 2, items[0].Quantity)
}

func TestDoWithoutTokenSendsNoAuthorization(t *testing.T) {
	r := chi.NewRouter()
	var hadAuth bool
	r.Get("/v1/products", func(w http.ResponseWriter, req *http.Request) {
		_, hadAuth = req.Header["Authorization"]
		writeJSON(w, http.StatusOK, map[string]any{"message": "ok", "info": map[string]any{"products": []any{}}})
	})
	client, _ := newTestClient(t, r)

	_, err := Fetch[[]types.Product](context.Background(), client, http.MethodGet, "/v1/products", nil, Payload("products"))
	require.NoError(t, err)
	require.False(t, hadAuth)
}

func TestDoShapes(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/v1/auth/login", func(w http.ResponseWriter, req *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		require.Equal(t, "ana@example.com", body["email"])
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "Login successful",
			"info":    map[string]any{"access_token": "jwt", "user_id": "u1"},
		})
	})
	r.Delete("/v1/brands/{id}", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"message": "deleted", "info": map[string]any{"success": true, "message": "Brand deleted"}})
	})
	r.Post("/v1/auth/logout", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	client, _ := newTestClient(t, r)
	ctx := context.Background()

	grant, err := Fetch[types.AuthGrant](ctx, client, http.MethodPost, "/v1/auth/login", map[string]string{"email": "ana@example.com", "password": "pw"}, Info())
	require.NoError(t, err)
	require.Equal(t, "jwt", grant.AccessToken)
	require.Equal(t, "u1", grant.UserID)

	env, err := client.Request(ctx, http.MethodDelete, "/v1/brands/b1", nil)
	require.NoError(t, err)
	require.Equal(t, "deleted", env.Message)
	var status types.Status
	require.NoError(t, json.Unmarshal(env.Info, &status))
	require.True(t, status.Success)

	require.NoError(t, client.Do(ctx, http.MethodPost, "/v1/auth/logout", nil, Discard(), nil))
}

func TestDoMissingPayloadKey(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/v1/brands", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"message": "ok", "info": map[string]any{"items": []any{}}})
	})
	client, _ := newTestClient(t, r)

	_, err := Fetch[[]types.Brand](context.Background(), client, http.MethodGet, "/v1/brands", nil, Payload("brands"))
	require.Error(t, err)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeDependency))
}

func TestDoUnauthorizedClearsTokenAndNotifiesBeforeReturn(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/v1/cart/{userID}", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Token expired", "code": "UNAUTHORIZED"})
	})
	client, store := newTestClient(t, r)
	ctx := context.Background()
	require.NoError(t, client.Tokens().Set(ctx, "stale"))

	var calls int32
	var tokenAtNotify string
	client.OnSessionExpired(func(context.Context) {
		atomic.AddInt32(&calls, 1)
		tokenAtNotify = client.Tokens().Token()
	})

	err := client.Do(ctx, http.MethodGet, "/v1/cart/u1", nil, Payload("cart_items"), &[]types.CartItem{})
	httpErr, ok := pkgerrors.AsHTTP(err)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, httpErr.Status)
	require.Equal(t, "Token expired", httpErr.Detail)

	require.Equal(t, int32(1), atomic.LoadInt32(&calls))
	require.Equal(t, "", tokenAtNotify)
	require.Equal(t, "", client.Tokens().Token())
	_, err = store.Get(ctx, storage.KeyAuthToken)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestConcurrentUnauthorizedNotifiesOncePerCall(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/v1/products", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "expired"})
	})
	client, _ := newTestClient(t, r)
	require.NoError(t, client.Tokens().Set(context.Background(), "stale"))

	var calls int32
	client.OnSessionExpired(func(context.Context) { atomic.AddInt32(&calls, 1) })

	const n = 8
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = client.Do(context.Background(), http.MethodGet, "/v1/products", nil, Discard(), nil)
		}()
	}
	wg.Wait()
	require.Equal(t, int32(n), atomic.LoadInt32(&calls))
}

func TestUnsubscribeStopsNotifications(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/v1/products", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	client, _ := newTestClient(t, r)

	var calls int32
	unsubscribe := client.OnSessionExpired(func(context.Context) { atomic.AddInt32(&calls, 1) })
	unsubscribe()

	err := client.Do(context.Background(), http.MethodGet, "/v1/products", nil, Discard(), nil)
	require.Equal(t, http.StatusUnauthorized, pkgerrors.StatusOf(err))
	require.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestWithoutExpiryLeavesTokenAndSubscribers(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/v1/auth/logout", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Token has been revoked"})
	})
	client, _ := newTestClient(t, r)
	ctx := context.Background()
	require.NoError(t, client.Tokens().Set(ctx, "tok"))

	var calls int32
	client.OnSessionExpired(func(context.Context) { atomic.AddInt32(&calls, 1) })

	err := client.Do(ctx, http.MethodPost, "/v1/auth/logout", nil, Discard(), nil, WithoutExpiry())
	require.Equal(t, http.StatusUnauthorized, pkgerrors.StatusOf(err))
	require.Equal(t, int32(0), atomic.LoadInt32(&calls))
	require.Equal(t, "tok", client.Tokens().Token())
}

func TestDoNonAuthErrorKeepsToken(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/v1/cart", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"detail": []map[string]any{{"loc": []string{"body", "quantity"}, "msg": "quantity must be at least 1"}},
		})
	})
	client, _ := newTestClient(t, r)
	ctx := context.Background()
	require.NoError(t, client.Tokens().Set(ctx, "tok"))

	var notified bool
	client.OnSessionExpired(func(context.Context) { notified = true })

	err := client.Do(ctx, http.MethodPost, "/v1/cart", map[string]any{"quantity": 0}, Payload("cart_item"), &types.CartItem{})
	httpErr, ok := pkgerrors.AsHTTP(err)
	require.True(t, ok)
	require.Equal(t, "quantity must be at least 1", httpErr.Detail)
	require.Equal(t, pkgerrors.CodeValidation, httpErr.Code())
	require.False(t, notified)
	require.Equal(t, "tok", client.Tokens().Token())
}

func TestDoNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	client, err := NewClient(base)
	require.NoError(t, err)

	err = client.Do(context.Background(), http.MethodGet, "/v1/products", nil, Discard(), nil)
	require.Error(t, err)
	require.True(t, pkgerrors.IsNetwork(err))
	_, isHTTP := pkgerrors.AsHTTP(err)
	require.False(t, isHTTP)
}

func TestRequestOptions(t *testing.T) {
	r := chi.NewRouter()
	var gotQuery url.Values
	var gotHeader string
	r.Get("/api/v1/brands", func(w http.ResponseWriter, req *http.Request) {
		gotQuery = req.URL.Query()
		gotHeader = req.Header.Get("X-Request-ID")
		writeJSON(w, http.StatusOK, map[string]any{"message": "ok", "info": map[string]any{"brands": []any{}, "total_count": 0}})
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	client, err := NewClient(srv.URL + "/api/")
	require.NoError(t, err)

	page, err := Fetch[types.BrandPage](context.Background(), client, http.MethodGet, "v1/brands", nil, Info(),
		WithQuery(url.Values{"page": {"2"}, "name_search": {"ac"}}),
		WithHeader("X-Request-ID", "req-9"),
	)
	require.NoError(t, err)
	require.Empty(t, page.Brands)
	require.Equal(t, "2", gotQuery.Get("page"))
	require.Equal(t, "ac", gotQuery.Get("name_search"))
	require.Equal(t, "req-9", gotHeader)
}

func TestNewClientRejectsBadURL(t *testing.T) {
	_, err := NewClient("ftp://example.com")
	require.Error(t, err)
}

func TestMetricsRecorded(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/v1/products", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	reg := prometheus.NewRegistry()
	client, err := NewClient(srv.URL, WithMetrics(metrics.NewTransportMetrics(reg)))
	require.NoError(t, err)

	_ = client.Do(context.Background(), http.MethodGet, "/v1/products", nil, Discard(), nil)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	found := map[string]bool{}
	for _, mf := range mfs {
		found[mf.GetName()] = true
	}
	require.True(t, found["storefront_requests_total"])
	require.True(t, found["storefront_session_expired_total"])
}

func TestErrorsAreNotWrappedTwice(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/v1/products", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"detail": "boom"})
	})
	client, _ := newTestClient(t, r)

	err := client.Do(context.Background(), http.MethodGet, "/v1/products", nil, Discard(), nil)
	var httpErr *pkgerrors.HTTPError
	require.True(t, errors.As(err, &httpErr))
	require.Equal(t, "http 500: boom", err.Error())
}
