package storage

import (
	"context"
	"fmt"

	"github.com/agentfashion/storefront/pkg/config"
	"github.com/agentfashion/storefront/pkg/db"
	"github.com/agentfashion/storefront/pkg/logger"
	redisclient "github.com/agentfashion/storefront/pkg/redis"
)

// Open builds the store selected by cfg.Storage.Driver. The returned close
// function releases the underlying connection and is never nil.
func Open(ctx context.Context, cfg *config.Config, logg *logger.Logger) (Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		return NewMemory(), noop, nil

	case config.StorageDriverSQLite, config.StorageDriverPostgres:
		var (
			client *db.Client
			err    error
		)
		if cfg.Storage.Driver == config.StorageDriverSQLite {
			client, err = db.NewSQLite(ctx, cfg.Storage.SQLitePath, logg)
		} else {
			client, err = db.New(ctx, cfg.DB, logg)
		}
		if err != nil {
			return nil, noop, err
		}
		store, err := NewSQL(ctx, client.DB())
		if err != nil {
			_ = client.Close()
			return nil, noop, err
		}
		return store, client.Close, nil

	case config.StorageDriverRedis:
		client, err := redisclient.New(ctx, cfg.Redis, cfg.App.Env, logg)
		if err != nil {
			return nil, noop, err
		}
		return NewRedis(client), client.Close, nil
	}

	return nil, noop, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
}
