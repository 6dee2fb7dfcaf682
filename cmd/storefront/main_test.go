package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agentfashion/storefront/api/routes"
	"github.com/agentfashion/storefront/internal/backend"
	"github.com/agentfashion/storefront/pkg/config"
	"github.com/agentfashion/storefront/pkg/logger"
)

func startBackend(t *testing.T) *backend.Service {
	t.Helper()
	cfg := &config.ServerConfig{
		JWT:      config.JWTConfig{Secret: "cli-secret", Issuer: "agentfashion-test", ExpirationMinutes: 15},
		Password: config.PasswordConfig{ArgonMemoryKB: 8, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 8, ArgonKeyLen: 16},
	}
	svc, err := backend.NewService(backend.Params{JWT: cfg.JWT, Password: cfg.Password})
	require.NoError(t, err)
	svc.SeedCatalog()

	srv := httptest.NewServer(routes.NewRouter(cfg, logger.Nop(), svc, routes.Options{}))
	t.Cleanup(srv.Close)

	t.Setenv(config.EnvAPIBaseURL, srv.URL)
	t.Setenv(config.EnvStorageDriver, config.StorageDriverMemory)
	t.Setenv(config.EnvLogLevel, "error")
	return svc
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	storefront, startup = nil, nil
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCatalogCommandListsProducts(t *testing.T) {
	startBackend(t)

	out, err := execute(t, "catalog", "--brand", "brand-lumen")
	require.NoError(t, err)
	require.Contains(t, out, "Oxford Shirt")
	require.Contains(t, out, "Slim Chino")
	require.NotContains(t, out, "Cotton Tee")
}

func TestLoginCommandReportsBackendDetail(t *testing.T) {
	svc := startBackend(t)
	_, err := svc.Register(context.Background(), backend.RegisterRequest{Fullname: "Ana Lima", Email: "ana@example.com", Password: "secret-pass"})
	require.NoError(t, err)

	out, err := execute(t, "login", "--email", "ana@example.com", "--password", "secret-pass")
	require.NoError(t, err)
	require.Contains(t, out, "Welcome, Ana Lima.")

	_, err = execute(t, "login", "--email", "ana@example.com", "--password", "wrong-pass")
	require.EqualError(t, err, "Invalid email or password")
}

func TestCartRequiresSession(t *testing.T) {
	startBackend(t)

	_, err := execute(t, "cart")
	require.ErrorContains(t, err, "not signed in")
}
