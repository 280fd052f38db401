package redis

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestSetNXOnlySetsOnce(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	ok, err := client.SetNX(ctx, "k", "owner-1", time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected first SetNX to win")
	}

	ok, err = client.SetNX(ctx, "k", "owner-2", time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected second SetNX to lose")
	}

	value, err := client.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if value != "owner-1" {
		t.Fatalf("expected owner-1 to hold the key, got %q", value)
	}
}

func TestGetMissingKeyReturnsNil(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newMockCmdable()}

	_, err := client.Get(ctx, "missing")
	if !errors.Is(err, redis.Nil) {
		t.Fatalf("expected redis.Nil, got %v", err)
	}
}

func TestDelRemovesKey(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newMockCmdable()}

	if err := client.Set(ctx, "k", "v", 0); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := client.Del(ctx, "k"); err != nil {
		t.Fatalf("del failed: %v", err)
	}
	if _, err := client.Get(ctx, "k"); !errors.Is(err, redis.Nil) {
		t.Fatalf("expected key to be gone, got %v", err)
	}
}

func TestLockKeyNamespacing(t *testing.T) {
	client := &Client{}
	if got := client.LockKey("cron"); got != "pt:lock:cron" {
		t.Fatalf("unexpected lock key %q", got)
	}
}

func TestUninitializedClientErrors(t *testing.T) {
	ctx := context.Background()
	client := &Client{}

	if err := client.Ping(ctx); err == nil {
		t.Fatal("expected error from uninitialized client")
	}
	if _, err := client.SetNX(ctx, "k", "v", 0); err == nil {
		t.Fatal("expected error from uninitialized client")
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

func (m *mockCmdable) SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd {
	if _, exists := m.data[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(m.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}
