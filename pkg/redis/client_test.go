package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/agentfashion/storefront/pkg/config"
	"github.com/redis/go-redis/v9"
)

func TestStateValueLifecycle(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newMockCmdable(), scope: "device-1"}

	key := client.StateKey("auth_token")
	if err := client.Set(ctx, key, "token-value", 0); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	got, err := client.Get(ctx, key)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != "token-value" {
		t.Fatalf("expected stored token, got %q", got)
	}

	if err := client.Del(ctx, key); err != nil {
		t.Fatalf("del failed: %v", err)
	}
	if _, err := client.Get(ctx, key); err != redis.Nil {
		t.Fatalf("expected redis.Nil after delete, got %v", err)
	}
}

func TestKeyBuilders(t *testing.T) {
	scoped := &Client{scope: "device-1"}
	if got := scoped.StateKey("auth_token"); got != "af:state:device-1:auth_token" {
		t.Fatalf("unexpected state key %s", got)
	}
	unscoped := &Client{}
	if got := unscoped.StateKey("agentfashion_theme"); got != "af:state:agentfashion_theme" {
		t.Fatalf("scope-less key should skip empty parts, got %s", got)
	}
}

func TestUninitializedClientErrors(t *testing.T) {
	client := &Client{}
	if err := client.Set(context.Background(), "k", "v", 0); err == nil {
		t.Fatalf("expected error from uninitialized client")
	}
	if err := client.Ping(context.Background()); err == nil {
		t.Fatalf("expected ping error from uninitialized client")
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close without raw client should be a no-op, got %v", err)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatalf("expected missing address error")
	}

	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://localhost:6379/3", ReadTimeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.DB != 3 {
		t.Fatalf("expected db from url, got %d", opts.DB)
	}
	if opts.ReadTimeout != 2*time.Second {
		t.Fatalf("expected read timeout from config, got %v", opts.ReadTimeout)
	}

	opts, err = optionsFromConfig(config.RedisConfig{Address: "cache:6379", DB: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "cache:6379" || opts.DB != 2 {
		t.Fatalf("unexpected options %+v", opts)
	}
}

type mockCmdable struct {
	data map[string]string
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{data: make(map[string]string)}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	m.data[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var removed int64
	for _, key := range keys {
		if _, ok := m.data[key]; ok {
			delete(m.data, key)
			removed++
		}
	}
	return redis.NewIntResult(removed, nil)
}
