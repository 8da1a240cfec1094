package ristretto

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	rc "github.com/dgraph-io/ristretto"

	pr "github.com/unkn0wn-root/nscache/provider"
)

// entry is what ristretto stores. Ristretto only hands hashed keys to its
// eviction callbacks, so the string key and a write sequence travel with the
// value to keep the key index in sync.
type entry struct {
	key string
	seq uint64
	b   []byte
}

// Provider adapts ristretto. Ristretto cannot enumerate keys, so the provider
// keeps an index of live keys for Scan.
type Provider struct {
	c    *rc.Cache
	cost func(key string, value []byte) int64

	mu    sync.Mutex
	seq   uint64
	index map[string]uint64 // key -> seq of the latest write
}

var _ pr.Provider = (*Provider)(nil)

type Config struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
	Metrics     bool
	// Cost prices a write; nil => every entry costs 1.
	Cost func(key string, value []byte) int64
}

func New(cfg Config) (*Provider, error) {
	if cfg.NumCounters <= 0 || cfg.MaxCost <= 0 || cfg.BufferItems <= 0 {
		return nil, errors.New("ristretto: invalid config")
	}
	p := &Provider{
		cost:  cfg.Cost,
		index: make(map[string]uint64),
	}
	if p.cost == nil {
		p.cost = func(string, []byte) int64 { return 1 }
	}
	c, err := rc.NewCache(&rc.Config{
		NumCounters:        cfg.NumCounters,
		MaxCost:            cfg.MaxCost,
		BufferItems:        cfg.BufferItems,
		Metrics:            cfg.Metrics,
		IgnoreInternalCost: true,
		OnEvict:            p.forget,
		OnReject:           p.forget,
	})
	if err != nil {
		return nil, err
	}
	p.c = c
	return p, nil
}

// Dialer builds a fresh in-process cache per Dial; the endpoint is ignored.
func Dialer(cfg Config) pr.Dialer {
	return pr.DialFunc(func(context.Context, pr.Endpoint) (pr.Provider, error) {
		return New(cfg)
	})
}

func (p *Provider) forget(item *rc.Item) {
	e, ok := item.Value.(entry)
	if !ok {
		return
	}
	p.mu.Lock()
	if p.index[e.key] == e.seq {
		delete(p.index, e.key)
	}
	p.mu.Unlock()
}

func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := p.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	e, ok := v.(entry)
	if !ok || e.key != key {
		// self-heal: drop unexpected entry shape
		p.c.Del(key)
		return nil, false, nil
	}
	return e.b, true, nil
}

// Set waits for ristretto's write buffer so the value is visible to the next Get.
func (p *Provider) Set(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	if ttl < 0 {
		ttl = 0 // ristretto treats negative TTLs as a no-op write
	}

	p.mu.Lock()
	p.seq++
	seq := p.seq
	p.index[key] = seq
	p.mu.Unlock()

	ok := p.c.SetWithTTL(key, entry{key: key, seq: seq, b: value}, p.cost(key, value), ttl)
	if !ok {
		p.forget(&rc.Item{Value: entry{key: key, seq: seq}})
		return false, nil
	}
	p.c.Wait()
	return true, nil
}

func (p *Provider) Del(ctx context.Context, keys ...string) (int64, error) {
	var n int64
	for _, k := range keys {
		if _, ok, _ := p.Get(ctx, k); ok {
			n++
		}
		p.c.Del(k)
		p.mu.Lock()
		delete(p.index, k)
		p.mu.Unlock()
	}
	return n, nil
}

// Scan reads the key index and drops entries that ristretto has already let go
// of without telling us (TTL expiry between cleanups).
func (p *Provider) Scan(ctx context.Context, prefix string, batch int, fn func([]string) error) error {
	p.mu.Lock()
	candidates := make([]string, 0, len(p.index))
	seqs := make(map[string]uint64)
	for k, seq := range p.index {
		if strings.HasPrefix(k, prefix) {
			candidates = append(candidates, k)
			seqs[k] = seq
		}
	}
	p.mu.Unlock()
	sort.Strings(candidates)

	live := candidates[:0]
	for _, k := range candidates {
		if _, ok, _ := p.Get(ctx, k); ok {
			live = append(live, k)
			continue
		}
		p.forget(&rc.Item{Value: entry{key: k, seq: seqs[k]}})
	}
	return pr.Pages(live, batch, fn)
}

func (p *Provider) Close(_ context.Context) error {
	p.c.Wait()
	p.c.Close()
	return nil
}

// Helper to expose metrics if desired by the application (not part of provider.Provider).
func (p *Provider) Metrics() *rc.Metrics { return p.c.Metrics }
