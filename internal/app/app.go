// Package app wires the storefront stores together and runs startup.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/agentfashion/storefront/internal/cart"
	"github.com/agentfashion/storefront/internal/catalog"
	"github.com/agentfashion/storefront/internal/chat"
	"github.com/agentfashion/storefront/internal/preferences"
	"github.com/agentfashion/storefront/internal/session"
	"github.com/agentfashion/storefront/internal/transport"
	"github.com/agentfashion/storefront/internal/wishlist"
	"github.com/agentfashion/storefront/pkg/config"
	"github.com/agentfashion/storefront/pkg/logger"
	"github.com/agentfashion/storefront/pkg/metrics"
	"github.com/agentfashion/storefront/pkg/storage"
)

// Params bundles what New needs. Storage is opened from Config when nil.
type Params struct {
	Config     *config.Config
	Logger     *logger.Logger
	Storage    storage.Store
	Registerer prometheus.Registerer
	HTTPClient *http.Client
}

type App struct {
	Logger      *logger.Logger
	Transport   *transport.Client
	Session     *session.Store
	Cart        *cart.Store
	Catalog     *catalog.Store
	Wishlist    *wishlist.Store
	Preferences *preferences.Store
	Chat        *chat.Client

	closeStorage func() error
}

// New builds every store over one transport and connects the session signals:
// a 401 ends the session, an ended session empties the cart, and a fresh login
// loads the user's cart.
func New(ctx context.Context, params Params) (*App, error) {
	cfg := params.Config
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}

	store := params.Storage
	closeStorage := func() error { return nil }
	if store == nil {
		opened, closer, err := storage.Open(ctx, cfg, logg)
		if err != nil {
			return nil, fmt.Errorf("open storage: %w", err)
		}
		store, closeStorage = opened, closer
	}

	opts := []transport.Option{
		transport.WithTimeouts(cfg.Backend.Timeout, cfg.Backend.StreamTimeout),
		transport.WithTokens(transport.NewTokenHolder(store)),
		transport.WithLogger(logg),
		transport.WithMetrics(metrics.NewTransportMetrics(params.Registerer)),
	}
	if params.HTTPClient != nil {
		opts = append(opts, transport.WithHTTPClient(params.HTTPClient), transport.WithStreamHTTPClient(params.HTTPClient))
	}
	client, err := transport.NewClient(cfg.Backend.BaseURL, opts...)
	if err != nil {
		_ = closeStorage()
		return nil, err
	}

	a := &App{Logger: logg, Transport: client, closeStorage: closeStorage}
	if err := a.buildStores(store); err != nil {
		_ = closeStorage()
		return nil, err
	}
	a.wire()
	return a, nil
}

func (a *App) buildStores(store storage.Store) error {
	var err error
	if a.Session, err = session.NewStore(session.StoreParams{API: a.Transport, Storage: store, Logger: a.Logger}); err != nil {
		return err
	}
	if a.Cart, err = cart.NewStore(a.Transport, a.Logger); err != nil {
		return err
	}
	if a.Catalog, err = catalog.NewStore(a.Transport, a.Logger); err != nil {
		return err
	}
	if a.Wishlist, err = wishlist.NewStore(store, a.Logger); err != nil {
		return err
	}
	if a.Preferences, err = preferences.NewStore(store, a.Logger); err != nil {
		return err
	}
	if a.Chat, err = chat.NewClient(a.Transport, a.Logger); err != nil {
		return err
	}
	return nil
}

func (a *App) wire() {
	a.Transport.OnSessionExpired(a.Session.HandleSessionExpired)
	a.Session.OnChange(func(ctx context.Context, change session.Change) {
		switch {
		case change.To == session.StateAnonymous:
			a.Cart.Clear()
		case change.Cause == session.CauseLogin:
			// errors are recorded on the cart store
			_ = a.Cart.FetchCart(ctx, change.Session.User.ID)
		}
	})
}

// Startup tracks the network work started by Start.
type Startup struct {
	group *errgroup.Group
}

// Wait blocks until the catalog load and the cart fetch have finished and
// returns the cart fetch error, if any. Catalog failures only degrade to empty lists.
func (s *Startup) Wait() error {
	return s.group.Wait()
}

// Start restores local state, then begins loading the catalog and, for a
// restored session, the cart. It returns without waiting for the network.
func (a *App) Start(ctx context.Context) *Startup {
	if err := a.Session.InitializeAuth(ctx); err != nil {
		a.Logger.Error(ctx, "restore session", err)
	}
	if _, err := a.Preferences.Load(ctx); err != nil {
		a.Logger.Error(ctx, "load preferences", err)
	}
	if err := a.Wishlist.Load(ctx); err != nil {
		a.Logger.Error(ctx, "load wishlist", err)
	}

	g := &errgroup.Group{}
	g.Go(func() error {
		a.Catalog.Load(ctx)
		return nil
	})
	if current, ok := a.Session.Current(); ok {
		userID := current.User.ID
		g.Go(func() error {
			return a.Cart.FetchCart(ctx, userID)
		})
	}
	return &Startup{group: g}
}

// Close releases the persisted storage connection.
func (a *App) Close() error {
	if a.closeStorage == nil {
		return nil
	}
	return a.closeStorage()
}
