package nscache_test

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/unkn0wn-root/nscache"
	"github.com/unkn0wn-root/nscache/provider/redis"
)

func connectRedis(t *testing.T, opts nscache.Options) (*miniredis.Miniredis, nscache.Cache) {
	t.Helper()
	m := miniredis.RunT(t)
	port, _ := strconv.Atoi(m.Port())

	opts.Dialer = redis.NewDialer(redis.DialConfig{})
	c, err := nscache.New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.Connect(context.Background(), nscache.Config{Host: m.Host(), Port: port, Timeout: time.Second}); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { _ = c.Close(context.Background()) })
	return m, c
}

func TestRedisScenario(t *testing.T) {
	ctx := context.Background()
	m, c := connectRedis(t, nscache.Options{})

	if !c.Set(ctx, "user//42", "alice") {
		t.Fatalf("Set failed")
	}
	if got := c.Get(ctx, "user//42"); got != "alice" {
		t.Fatalf("Get = %q", got)
	}

	stored := m.Keys()
	if len(stored) != 1 || !strings.HasPrefix(stored[0], "cache:user:42:") || strings.Contains(stored[0], "//") {
		t.Fatalf("physical keys = %v", stored)
	}

	if !c.Del(ctx, "user//42") {
		t.Fatalf("Del failed")
	}
	if got := c.Get(ctx, "user//42"); got != "" {
		t.Fatalf("Get after Del = %q", got)
	}
	if !c.Flush(ctx) {
		t.Fatalf("Flush failed")
	}
	if got := c.Get(ctx, "user//42"); got != "" {
		t.Fatalf("Get after Flush = %q", got)
	}
}

func TestRedisFlushScopedToPrefix(t *testing.T) {
	ctx := context.Background()
	m, c := connectRedis(t, nscache.Options{FlushBatchSize: 7})

	for i := 0; i < 50; i++ {
		k := strconv.Itoa(i)
		c.Set(ctx, k, "v")
		c.Namespace("other").Set(ctx, k, "v")
	}
	// foreign keys that only share the text, not the namespace
	m.Set("cachex:1", "keep")
	m.Set("cache", "keep")

	n, err := c.Namespace("cache").FlushE(ctx)
	if err != nil || n != 50 {
		t.Fatalf("FlushE = %d, %v", n, err)
	}
	if got := len(m.Keys()); got != 52 {
		t.Fatalf("remaining keys = %d, want 52", got)
	}
	if c.Namespace("other").Get(ctx, "7") != "v" {
		t.Fatalf("other namespace flushed")
	}
}

func TestRedisFlushKeepsNestedPrefix(t *testing.T) {
	ctx := context.Background()
	m, c := connectRedis(t, nscache.Options{FlushBatchSize: 3})

	for i := 0; i < 10; i++ {
		k := strconv.Itoa(i)
		c.Namespace("tenant").Set(ctx, k, "outer")
		c.Namespace("tenant:7").Set(ctx, k, "inner")
	}
	n, err := c.Namespace("tenant").FlushE(ctx)
	if err != nil || n != 10 {
		t.Fatalf("FlushE = %d, %v", n, err)
	}
	if got := len(m.Keys()); got != 10 {
		t.Fatalf("remaining keys = %d, want 10", got)
	}
	if c.Namespace("tenant:7").Get(ctx, "3") != "inner" {
		t.Fatalf("nested namespace flushed")
	}
}

func TestRedisTTL(t *testing.T) {
	ctx := context.Background()
	m, c := connectRedis(t, nscache.Options{DefaultTTL: time.Minute})

	c.Set(ctx, "k", "v")
	keys := m.Keys()
	if len(keys) != 1 || m.TTL(keys[0]) != time.Minute {
		t.Fatalf("TTL = %v", m.TTL(keys[0]))
	}
	m.FastForward(2 * time.Minute)
	if r := c.Lookup(ctx, "k"); r.Status != nscache.StatusNotFound {
		t.Fatalf("expired key Lookup = %+v", r)
	}
}

func TestRedisOutageSurfacesOperationError(t *testing.T) {
	ctx := context.Background()
	m, c := connectRedis(t, nscache.Options{})
	m.Close()

	if c.Set(ctx, "k", "v") {
		t.Fatalf("Set should fail with the server down")
	}
	r := c.Lookup(ctx, "k")
	var oe *nscache.OperationError
	if r.Status != nscache.StatusFailed || !errors.As(r.Err, &oe) || oe.Op != nscache.OpGet {
		t.Fatalf("Lookup = %+v", r)
	}
	if !c.Connected() {
		t.Fatalf("operation failures do not disconnect")
	}
}

func TestRedisConnectRefused(t *testing.T) {
	m := miniredis.RunT(t)
	port, _ := strconv.Atoi(m.Port())
	m.Close()

	c, _ := nscache.New(nscache.Options{Dialer: redis.NewDialer(redis.DialConfig{})})
	err := c.Connect(context.Background(), nscache.Config{Host: "127.0.0.1", Port: port, Timeout: 200 * time.Millisecond})
	var ce *nscache.ConnectionError
	if !errors.As(err, &ce) {
		t.Fatalf("want *ConnectionError, got %v", err)
	}
	if c.Connected() {
		t.Fatalf("failed connect left client connected")
	}
}
