package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/nscache/internal/keys"
	pr "github.com/unkn0wn-root/nscache/provider"
)

var ErrNilClient = errors.New("redis provider: nil client")

type Redis struct {
	rdb         goredis.UniversalClient
	closeClient bool
	closeOnce   sync.Once
}

var _ pr.Provider = (*Redis)(nil)

type Config struct {
	Client      goredis.UniversalClient
	CloseClient bool // set true only if this provider exclusively owns the client
}

func New(cfg Config) (*Redis, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	return &Redis{rdb: cfg.Client, closeClient: cfg.CloseClient}, nil
}

func (p *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := p.rdb.Get(ctx, key).Bytes()
	if err == goredis.Nil {
		return nil, false, nil // miss
	}
	if err != nil {
		return nil, false, err // transport/server error
	}
	return b, true, nil
}

func (p *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = 0 // treat non-positive TTLs as "no expiry" per provider contract
	}

	err := p.rdb.Set(ctx, key, value, ttl).Err()
	if err != nil {
		return false, err
	}
	return true, nil
}

// Del issues one DEL for all keys. Cluster clients get a pipeline of
// single-key DELs instead, since keys may hash to different slots.
func (p *Redis) Del(ctx context.Context, ks ...string) (int64, error) {
	if len(ks) == 0 {
		return 0, nil
	}
	if _, ok := p.rdb.(*goredis.ClusterClient); !ok || len(ks) == 1 {
		return p.rdb.Del(ctx, ks...).Result()
	}

	cmds := make([]*goredis.IntCmd, 0, len(ks))
	_, err := p.rdb.Pipelined(ctx, func(pipe goredis.Pipeliner) error {
		for _, k := range ks {
			cmds = append(cmds, pipe.Del(ctx, k))
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	var n int64
	for _, c := range cmds {
		n += c.Val()
	}
	return n, nil
}

// Scan walks SCAN MATCH <prefix>* and hands out pages of keys. On a cluster
// client every master is scanned.
func (p *Redis) Scan(ctx context.Context, prefix string, batch int, fn func([]string) error) error {
	match := keys.EscapeGlob(prefix) + "*"
	if cc, ok := p.rdb.(*goredis.ClusterClient); ok {
		// ForEachMaster runs concurrently; fn is not required to be.
		var mu sync.Mutex
		return cc.ForEachMaster(ctx, func(ctx context.Context, node *goredis.Client) error {
			return scanNode(ctx, node, match, batch, func(page []string) error {
				mu.Lock()
				defer mu.Unlock()
				return fn(page)
			})
		})
	}
	return scanNode(ctx, p.rdb, match, batch, fn)
}

func scanNode(ctx context.Context, c goredis.Cmdable, match string, batch int, fn func([]string) error) error {
	if batch <= 0 {
		batch = 100
	}
	page := make([]string, 0, batch)
	iter := c.Scan(ctx, 0, match, int64(batch)).Iterator()
	for iter.Next(ctx) {
		page = append(page, iter.Val())
		if len(page) == batch {
			if err := fn(page); err != nil {
				return err
			}
			page = make([]string, 0, batch)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan %q: %w", match, err)
	}
	if len(page) > 0 {
		return fn(page)
	}
	return nil
}

// Close releases the underlying redis client only when this provider owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (p *Redis) Close(context.Context) error {
	if !p.closeClient {
		return nil
	}
	var err error
	p.closeOnce.Do(func() {
		if cerr := p.rdb.Close(); cerr != nil && !errors.Is(cerr, goredis.ErrClosed) {
			err = cerr
		}
	})
	return err
}
