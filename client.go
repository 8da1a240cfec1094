package nscache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/unkn0wn-root/nscache/internal/keys"
	pr "github.com/unkn0wn-root/nscache/provider"
)

const (
	defaultFlushBatch = 500
	maxFlushPasses    = 32
)

// client serializes access to its backend handle with an RWMutex: operations
// share the read lock for their whole duration, Connect and Close take the
// write lock only to swap the handle. Providers are concurrency safe, so
// operations run in parallel with each other.
type client struct {
	dialer     pr.Dialer
	prefix     string
	defaultTTL time.Duration
	batch      int
	log        Logger
	hooks      Hooks

	mu      sync.RWMutex
	backend pr.Provider // nil => disconnected
	addr    string
}

func newClient(opts Options) *client {
	return &client{
		dialer:     opts.Dialer,
		prefix:     coalesce(opts.DefaultPrefix, DefaultPrefix),
		defaultTTL: opts.DefaultTTL,
		batch:      coalesce(opts.FlushBatchSize, defaultFlushBatch),
		log:        coalesce[Logger](opts.Logger, NopLogger{}),
		hooks:      coalesce[Hooks](opts.Hooks, NopHooks{}),
	}
}

func (c *client) Connect(ctx context.Context, cfg Config) error {
	cfg, err := cfg.Normalize()
	if err != nil {
		return err
	}
	ep := cfg.Endpoint()

	p, err := c.dialer.Dial(ctx, ep)
	if err == nil && p == nil {
		err = errors.New("dialer returned no provider")
	}
	if err != nil {
		c.log.Error("connect failed", Fields{"addr": ep.Addr(), "err": err})
		return &ConnectionError{Addr: ep.Addr(), Err: err}
	}

	c.mu.Lock()
	old := c.backend
	c.backend = p
	c.addr = ep.Addr()
	c.mu.Unlock()

	// reconnect: the previous handle is ours to release
	if old != nil && old != p {
		if err := old.Close(ctx); err != nil {
			c.log.Warn("closing previous backend", Fields{"err": err})
		}
	}
	c.log.Info("connected", Fields{"addr": ep.Addr()})
	return nil
}

func (c *client) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.backend != nil
}

// Close returns the client to the disconnected state. Safe to call multiple times.
func (c *client) Close(ctx context.Context) error {
	c.mu.Lock()
	p := c.backend
	c.backend = nil
	c.mu.Unlock()
	if p == nil {
		return nil
	}
	return p.Close(ctx)
}

func (c *client) Namespace(prefix string) Namespace { return Namespace{c: c, prefix: prefix} }

func (c *client) Set(ctx context.Context, key, value string) bool {
	return c.Namespace(c.prefix).Set(ctx, key, value)
}

func (c *client) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) bool {
	return c.Namespace(c.prefix).SetWithTTL(ctx, key, value, ttl)
}

func (c *client) Get(ctx context.Context, key string) string {
	return c.Namespace(c.prefix).Get(ctx, key)
}

func (c *client) Lookup(ctx context.Context, key string) Result {
	return c.Namespace(c.prefix).Lookup(ctx, key)
}

func (c *client) Del(ctx context.Context, key string) bool {
	return c.Namespace(c.prefix).Del(ctx, key)
}

func (c *client) Flush(ctx context.Context) bool {
	return c.Namespace(c.prefix).Flush(ctx)
}

// acquire returns the live backend with the read lock held; call release when done.
func (c *client) acquire() (p pr.Provider, release func(), err error) {
	c.mu.RLock()
	if c.backend == nil {
		c.mu.RUnlock()
		return nil, nil, ErrNotConnected
	}
	return c.backend, c.mu.RUnlock, nil
}

func (c *client) set(ctx context.Context, prefix, key string, value []byte, ttl time.Duration) (bool, error) {
	p, release, err := c.acquire()
	if err != nil {
		return false, err
	}
	defer release()

	sk := keys.Physical(prefix, key)
	ok, err := p.Set(ctx, sk, value, ttl)
	if err != nil {
		return false, c.fail(OpSet, sk, err)
	}
	if !ok {
		c.hooks.SetRejected(sk)
		c.log.Debug("set rejected by provider (pressure)", Fields{"key": sk})
	}
	return ok, nil
}

func (c *client) get(ctx context.Context, prefix, key string) ([]byte, bool, error) {
	p, release, err := c.acquire()
	if err != nil {
		return nil, false, err
	}
	defer release()

	sk := keys.Physical(prefix, key)
	b, ok, err := p.Get(ctx, sk)
	if err != nil {
		return nil, false, c.fail(OpGet, sk, err)
	}
	return b, ok, nil
}

func (c *client) del(ctx context.Context, prefix, key string) (bool, error) {
	p, release, err := c.acquire()
	if err != nil {
		return false, err
	}
	defer release()

	sk := keys.Physical(prefix, key)
	n, err := p.Del(ctx, sk)
	if err != nil {
		return false, c.fail(OpDel, sk, err)
	}
	return n > 0, nil
}

// flush deletes every key of prefix page by page: one Scan page, one Del.
// The scan also matches nested prefixes (prefix:sub), whose entries are
// filtered out by digest. Cursor-based scans may step over keys when the
// keyspace shrinks under them, so passes repeat until one removes nothing.
func (c *client) flush(ctx context.Context, prefix string) (int64, error) {
	p, release, err := c.acquire()
	if err != nil {
		return 0, err
	}
	defer release()

	ns := keys.Namespace(prefix)
	var removed int64
	for pass := 0; pass < maxFlushPasses; pass++ {
		var n int64
		err = p.Scan(ctx, ns, c.batch, func(page []string) error {
			own := make([]string, 0, len(page))
			for _, k := range page {
				if keys.Owns(prefix, k) {
					own = append(own, k)
				}
			}
			if len(own) == 0 {
				return nil
			}
			d, err := p.Del(ctx, own...)
			n += d
			return err
		})
		removed += n
		if err != nil {
			return removed, c.fail(OpFlush, ns, err)
		}
		if n == 0 {
			break
		}
	}
	c.hooks.Flushed(prefix, removed)
	c.log.Debug("flushed namespace", Fields{"prefix": prefix, "removed": removed})
	return removed, nil
}

// fail runs with the read lock held.
func (c *client) fail(op Op, storageKey string, err error) error {
	oe := &OperationError{Op: op, Key: storageKey, Err: err}
	c.log.Warn("cache operation failed", Fields{"op": string(op), "key": storageKey, "addr": c.addr, "err": err})
	c.hooks.BackendError(op, storageKey, oe)
	return oe
}

// swallow logs what the sentinel-returning methods drop. Backend failures were
// already reported by fail.
func (c *client) swallow(op Op, err error) {
	if errors.Is(err, ErrNotConnected) {
		c.log.Warn("cache not connected", Fields{"op": string(op)})
	}
}
